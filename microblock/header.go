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

// use fix size array to simplify validation
type PackedHeader [totalHeaderSize]byte

// packed records are just a byte slice
type PackedMicroBlock []byte

// currently supported microblock version
const (
	Version = 1
)

// byte sizes for various fields
const (
	VersionSize        = 2                       // header structure version
	DSBlockNumberSize  = 8                       // DS block this microblock extends
	EpochSize          = 8                       // transaction epoch number
	ShardIdSize        = 4                       // producing shard (wire convention: == numShards for DS)
	MinerPublicKeySize = multisig.PublicKeySize  // shard leader key
	CommitteeHashSize  = blockdigest.Length      // hash of the producing committee
	StateDeltaHashSize = 32                      // sha256 over the attached state delta
	MyHashSize         = blockdigest.Length      // self-hash over the preceding fields
)

// offsets of the fields
const (
	versionOffset        = 0
	dsBlockNumberOffset  = versionOffset + VersionSize
	epochOffset          = dsBlockNumberOffset + DSBlockNumberSize
	shardIdOffset        = epochOffset + EpochSize
	minerPublicKeyOffset = shardIdOffset + ShardIdSize
	committeeHashOffset  = minerPublicKeyOffset + MinerPublicKeySize
	stateDeltaHashOffset = committeeHashOffset + CommitteeHashSize
	myHashOffset         = stateDeltaHashOffset + StateDeltaHashSize

	// to set size of header array
	totalHeaderSize = myHashOffset + MyHashSize // total bytes in the header
)

// StateDeltaHash - binding hash for the attached state delta
// all zero means the epoch produced no delta
type StateDeltaHash [StateDeltaHashSize]byte

// IsZero - true when the header declares no state delta
func (hash StateDeltaHash) IsZero() bool {
	return hash == StateDeltaHash{}
}

// the unpacked header structure
type Header struct {
	Version        uint16              `json:"version"`
	DSBlockNumber  uint64              `json:"dsBlockNumber,string"`
	Epoch          uint64              `json:"epoch,string"`
	ShardId        uint32              `json:"shardId"`
	MinerPublicKey multisig.PublicKey  `json:"minerPublicKey"`
	CommitteeHash  blockdigest.Digest  `json:"committeeHash"`
	StateDeltaHash StateDeltaHash      `json:"stateDeltaHash"`
	MyHash         blockdigest.Digest  `json:"myHash"`
}

// turn a record into an array of bytes
func (header *Header) Pack() PackedHeader {
	buffer := PackedHeader{}

	binary.BigEndian.PutUint16(buffer[versionOffset:], header.Version)
	binary.BigEndian.PutUint64(buffer[dsBlockNumberOffset:], header.DSBlockNumber)
	binary.BigEndian.PutUint64(buffer[epochOffset:], header.Epoch)
	binary.BigEndian.PutUint32(buffer[shardIdOffset:], header.ShardId)

	copy(buffer[minerPublicKeyOffset:], header.MinerPublicKey[:])
	copy(buffer[committeeHashOffset:], header.CommitteeHash[:])
	copy(buffer[stateDeltaHashOffset:], header.StateDeltaHash[:])
	copy(buffer[myHashOffset:], header.MyHash[:])

	return buffer
}

// turn a byte slice into a record
func (record PackedHeader) Unpack() (*Header, error) {

	header := &Header{}

	header.Version = binary.BigEndian.Uint16(record[versionOffset:])
	if Version != header.Version {
		return nil, fault.ErrMicroBlockVersion
	}

	header.DSBlockNumber = binary.BigEndian.Uint64(record[dsBlockNumberOffset:])
	header.Epoch = binary.BigEndian.Uint64(record[epochOffset:])
	header.ShardId = binary.BigEndian.Uint32(record[shardIdOffset:])

	copy(header.MinerPublicKey[:], record[minerPublicKeyOffset:committeeHashOffset])

	err := blockdigest.DigestFromBytes(&header.CommitteeHash, record[committeeHashOffset:stateDeltaHashOffset])
	if nil != err {
		return nil, err
	}

	copy(header.StateDeltaHash[:], record[stateDeltaHashOffset:myHashOffset])

	err = blockdigest.DigestFromBytes(&header.MyHash, record[myHashOffset:])
	if nil != err {
		return nil, err
	}

	return header, nil
}

// digest for a packed header
// the self-hash covers all fields before the myHash field
func (record PackedHeader) Digest() blockdigest.Digest {
	return blockdigest.NewDigest(record[:myHashOffset])
}

// SealHash - compute and store the self-hash
// producers call this after filling all other fields
func (header *Header) SealHash() {
	packed := header.Pack()
	header.MyHash = packed.Digest()
}
