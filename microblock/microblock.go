// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2018 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package microblock

import (
	"encoding/binary"

	"github.com/openshard/dsnoded/blockdigest"
	"github.com/openshard/dsnoded/fault"
	"github.com/openshard/dsnoded/multisig"
)

// MicroBlock - header plus the two co-signature rounds
//
// B1/CS1 belong to the shard's commit round one, B2/CS2 to round two;
// bitmap positions align with the producing committee's member order
type MicroBlock struct {
	Header    Header
	BlockHash blockdigest.Digest
	Timestamp uint64 // milliseconds since epoch
	B1        []bool
	CS1       multisig.Signature
	B2        []bool
	CS2       multisig.Signature
}

// SelfHashOk - the carried content hash must match the header's self-hash
func (mb *MicroBlock) SelfHashOk() bool {
	return mb.BlockHash == mb.Header.MyHash
}

// CoSignatureMessage - the byte sequence CS2 signs
//
// exact order: packed header, then CS1, then the wire form of B1
func (mb *MicroBlock) CoSignatureMessage() []byte {
	packedHeader := mb.Header.Pack()
	message := make([]byte, 0, totalHeaderSize+multisig.SignatureSize+4+(len(mb.B1)+7)/8)
	message = append(message, packedHeader[:]...)
	message = append(message, mb.CS1[:]...)
	message = append(message, PackBitvector(mb.B1)...)
	return message
}

// Pack - serialize the full record for the wire and the store
func (mb *MicroBlock) Pack() PackedMicroBlock {

	packedHeader := mb.Header.Pack()

	buffer := make([]byte, 0, totalHeaderSize+blockdigest.Length+8+2*(multisig.SignatureSize+4+(len(mb.B1)+7)/8))
	buffer = append(buffer, packedHeader[:]...)
	buffer = append(buffer, mb.BlockHash[:]...)

	timestamp := make([]byte, 8)
	binary.BigEndian.PutUint64(timestamp, mb.Timestamp)
	buffer = append(buffer, timestamp...)

	buffer = append(buffer, PackBitvector(mb.B1)...)
	buffer = append(buffer, mb.CS1[:]...)
	buffer = append(buffer, PackBitvector(mb.B2)...)
	buffer = append(buffer, mb.CS2[:]...)

	return buffer
}

// Unpack - deserialize a full record
// the whole buffer must be consumed exactly
func Unpack(buffer PackedMicroBlock) (*MicroBlock, error) {

	if len(buffer) < totalHeaderSize+blockdigest.Length+8 {
		return nil, fault.ErrNotMicroBlockHeader
	}

	packedHeader := PackedHeader{}
	copy(packedHeader[:], buffer[:totalHeaderSize])

	header, err := packedHeader.Unpack()
	if nil != err {
		return nil, err
	}

	mb := &MicroBlock{
		Header: *header,
	}

	n := totalHeaderSize
	err = blockdigest.DigestFromBytes(&mb.BlockHash, buffer[n:n+blockdigest.Length])
	if nil != err {
		return nil, err
	}
	n += blockdigest.Length

	mb.Timestamp = binary.BigEndian.Uint64(buffer[n:])
	n += 8

	b1, used, err := UnpackBitvector(buffer[n:])
	if nil != err {
		return nil, err
	}
	mb.B1 = b1
	n += used

	if len(buffer) < n+multisig.SignatureSize {
		return nil, fault.ErrInvalidSignature
	}
	copy(mb.CS1[:], buffer[n:])
	n += multisig.SignatureSize

	b2, used, err := UnpackBitvector(buffer[n:])
	if nil != err {
		return nil, err
	}
	mb.B2 = b2
	n += used

	if len(buffer) < n+multisig.SignatureSize {
		return nil, fault.ErrInvalidSignature
	}
	copy(mb.CS2[:], buffer[n:])
	n += multisig.SignatureSize

	if n != len(buffer) {
		return nil, fault.ErrNotMicroBlockHeader
	}

	return mb, nil
}
