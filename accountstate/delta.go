// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package accountstate

import (
	"bytes"
	"encoding/binary"
	"sort"

	"github.com/openshard/dsnoded/fault"
)

// wire sizes for a delta record
const (
	countSize   = 4
	balanceSize = 8
	nonceSize   = 8
	entrySize   = AddressSize + balanceSize + nonceSize
)

// DeserializeDeltaTemp - parse a state delta into the overlay
//
// wire form: count(4, big endian) then count entries of
// address(20) ++ balance(8) ++ nonce(8)
//
// the whole buffer must be consumed exactly; the overlay is only
// replaced when the buffer parses completely
func DeserializeDeltaTemp(buffer []byte) error {
	if len(buffer) < countSize {
		return fault.ErrStateDeltaProcessingFailed
	}

	count := int(binary.BigEndian.Uint32(buffer))
	if len(buffer) != countSize+count*entrySize {
		return fault.ErrStateDeltaProcessingFailed
	}

	temp := make(map[Address]Account, count)
	n := countSize
	for i := 0; i < count; i += 1 {
		address := Address{}
		copy(address[:], buffer[n:n+AddressSize])
		n += AddressSize

		balance := binary.BigEndian.Uint64(buffer[n:])
		n += balanceSize

		nonce := binary.BigEndian.Uint64(buffer[n:])
		n += nonceSize

		if _, ok := temp[address]; ok {
			return fault.ErrStateDeltaProcessingFailed
		}
		temp[address] = Account{
			Balance: balance,
			Nonce:   nonce,
		}
	}

	serialized := make([]byte, len(buffer))
	copy(serialized, buffer)

	globalData.Lock()
	globalData.temp = temp
	globalData.serialized = serialized
	globalData.Unlock()

	return nil
}

// SerializeDelta - produce the wire form of the overlay
//
// entries are ordered by address so the result is deterministic
func SerializeDelta() []byte {
	globalData.Lock()
	defer globalData.Unlock()

	addresses := make([]Address, 0, len(globalData.temp))
	for address := range globalData.temp {
		addresses = append(addresses, address)
	}
	sort.Slice(addresses, func(i, j int) bool {
		return bytes.Compare(addresses[i][:], addresses[j][:]) < 0
	})

	buffer := make([]byte, countSize, countSize+len(addresses)*entrySize)
	binary.BigEndian.PutUint32(buffer, uint32(len(addresses)))

	entry := make([]byte, entrySize)
	for _, address := range addresses {
		account := globalData.temp[address]
		copy(entry, address[:])
		binary.BigEndian.PutUint64(entry[AddressSize:], account.Balance)
		binary.BigEndian.PutUint64(entry[AddressSize+balanceSize:], account.Nonce)
		buffer = append(buffer, entry...)
	}

	globalData.serialized = buffer
	return buffer
}

// GetSerializedDelta - wire bytes of the overlay
//
// returns the bytes last deserialized or serialized without
// re-encoding; serializes if the overlay changed since
func GetSerializedDelta() []byte {
	globalData.RLock()
	serialized := globalData.serialized
	globalData.RUnlock()

	if nil != serialized {
		return serialized
	}
	return SerializeDelta()
}
