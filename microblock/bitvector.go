// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2018 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package microblock

import (
	"encoding/binary"

	"github.com/openshard/dsnoded/fault"
)

// wire form of a signer bitmap:
// 4 byte big endian bit count followed by the packed bits, MSB first

// PackBitvector - encode a bitmap to its wire form
func PackBitvector(bitmap []bool) []byte {

	byteCount := (len(bitmap) + 7) / 8
	buffer := make([]byte, 4+byteCount)
	binary.BigEndian.PutUint32(buffer, uint32(len(bitmap)))

	for i, bit := range bitmap {
		if bit {
			buffer[4+i/8] |= 0x80 >> uint(i%8)
		}
	}
	return buffer
}

// UnpackBitvector - decode a wire form bitmap from the front of a buffer
// returns the bitmap and the number of bytes consumed
func UnpackBitvector(buffer []byte) ([]bool, int, error) {

	if len(buffer) < 4 {
		return nil, 0, fault.ErrInvalidBitvector
	}
	bitCount := int(binary.BigEndian.Uint32(buffer))
	byteCount := (bitCount + 7) / 8
	if len(buffer) < 4+byteCount {
		return nil, 0, fault.ErrInvalidBitvector
	}

	bitmap := make([]bool, bitCount)
	for i := 0; i < bitCount; i += 1 {
		bitmap[i] = 0 != buffer[4+i/8]&(0x80>>uint(i%8))
	}

	// trailing pad bits must be zero
	if 0 != bitCount%8 {
		mask := byte(0xff) >> uint(bitCount%8)
		if 0 != buffer[4+byteCount-1]&mask {
			return nil, 0, fault.ErrInvalidBitvector
		}
	}

	return bitmap, 4 + byteCount, nil
}

// CountSet - number of true entries in a bitmap
func CountSet(bitmap []bool) int {
	n := 0
	for _, bit := range bitmap {
		if bit {
			n += 1
		}
	}
	return n
}
