// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2018 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package committee

import (
	"fmt"

	"github.com/openshard/dsnoded/fault"
)

// ShardRef - names either a numbered shard or the DS committee itself
//
// the wire format carries the convention shardId == numShards for the
// DS committee; conversion happens at the boundary so internal code
// never compares against the shard count
type ShardRef struct {
	dsCommittee bool
	shard       uint32
}

// ShardId - reference to a numbered shard
func ShardId(shardId uint32) ShardRef {
	return ShardRef{shard: shardId}
}

// DSRef - reference to the DS committee
func DSRef() ShardRef {
	return ShardRef{dsCommittee: true}
}

// IsDSCommittee - true for the DS committee reference
func (ref ShardRef) IsDSCommittee() bool {
	return ref.dsCommittee
}

// ShardId - the shard number; false for the DS committee reference
func (ref ShardRef) ShardId() (uint32, bool) {
	if ref.dsCommittee {
		return 0, false
	}
	return ref.shard, true
}

// ShardRefFromWire - decode the wire shard id
//
// shardId < numShards names a shard, shardId == numShards names the
// DS committee, anything larger is invalid
func ShardRefFromWire(shardId uint32, numShards uint32) (ShardRef, error) {
	switch {
	case shardId < numShards:
		return ShardRef{shard: shardId}, nil
	case shardId == numShards:
		return ShardRef{dsCommittee: true}, nil
	default:
		return ShardRef{}, fault.ErrInvalidShardId
	}
}

// Wire - encode back to the wire shard id
func (ref ShardRef) Wire(numShards uint32) uint32 {
	if ref.dsCommittee {
		return numShards
	}
	return ref.shard
}

// String - for logging
func (ref ShardRef) String() string {
	if ref.dsCommittee {
		return "ds-committee"
	}
	return fmt.Sprintf("shard-%d", ref.shard)
}
