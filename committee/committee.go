// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2018 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package committee

import (
	"encoding/binary"

	"github.com/openshard/dsnoded/blockdigest"
	"github.com/openshard/dsnoded/fault"
	"github.com/openshard/dsnoded/multisig"
)

// Member - one committee entry
// public key doubles as the signing identity on bitmaps
type Member struct {
	PublicKey multisig.PublicKey
	Address   string
}

// Committee - an ordered list of members
// order is significant: it aligns with signer bitmap positions
type Committee []Member

// Size - number of members
func (committee Committee) Size() int {
	return len(committee)
}

// PublicKeys - the member keys in committee order
func (committee Committee) PublicKeys() []multisig.PublicKey {
	keys := make([]multisig.PublicKey, len(committee))
	for i, member := range committee {
		keys[i] = member.PublicKey
	}
	return keys
}

// IndexOf - position of a public key or -1
func (committee Committee) IndexOf(publicKey multisig.PublicKey) int {
	for i, member := range committee {
		if publicKey == member.PublicKey {
			return i
		}
	}
	return -1
}

// Contains - membership test on public key
func (committee Committee) Contains(publicKey multisig.PublicKey) bool {
	return committee.IndexOf(publicKey) >= 0
}

// Hash - content hash of the ordered membership
//
// each member contributes its public key followed by the
// length-prefixed network address
func (committee Committee) Hash() blockdigest.Digest {

	buffer := make([]byte, 0, len(committee)*(multisig.PublicKeySize+16))
	countedLength := make([]byte, 2)

	for _, member := range committee {
		buffer = append(buffer, member.PublicKey[:]...)
		binary.BigEndian.PutUint16(countedLength, uint16(len(member.Address)))
		buffer = append(buffer, countedLength...)
		buffer = append(buffer, member.Address...)
	}
	return blockdigest.NewDigest(buffer)
}

// NumForConsensus - signer count required for Byzantine agreement
//
// quorum(n) = ⌈2n/3⌉ + 1
func NumForConsensus(n int) int {
	if n <= 0 {
		return 0
	}
	return (2*n+2)/3 + 1
}

// Source - where the verifier fetches committees from
//
// the DS committee and shard committees have identical shape but
// different owners; the caller picks via a ShardRef
type Source interface {
	DSCommittee() Committee
	Shard(shardId uint32) (Committee, bool)
	NumShards() uint32
}

// Select - fetch the committee a shard reference names
func Select(source Source, ref ShardRef) (Committee, error) {
	if ref.IsDSCommittee() {
		return source.DSCommittee(), nil
	}
	shardId, _ := ref.ShardId()
	c, ok := source.Shard(shardId)
	if !ok {
		return nil, fault.ErrInvalidShardId
	}
	return c, nil
}
