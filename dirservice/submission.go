// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dirservice

import (
	"encoding/binary"
	"time"

	"github.com/openshard/dsnoded/committee"
	"github.com/openshard/dsnoded/fault"
	"github.com/openshard/dsnoded/messagebus"
	"github.com/openshard/dsnoded/microblock"
)

// validateAndCommit - the authoritative acceptance path for a shard
// microblock in the current epoch
//
// cheap structural checks run before the cryptographic ones; the stop
// flag is re-checked under the lock after crypto to close the race
// where consensus started while this submission was being verified
func validateAndCommit(mb *microblock.MicroBlock, delta []byte) error {

	globalData.Lock()
	if !globalData.initialised {
		globalData.Unlock()
		return fault.ErrNotInitialised
	}
	if globalData.lookupNode {
		globalData.Unlock()
		return nil
	}

	shardId := mb.Header.ShardId
	epoch := globalData.currentEpoch
	source := globalData.source
	numShards := source.NumShards()

	// duplicate-shard gate: cheap and a common adversarial case
	state := epochStateLocked(epoch)
	if _, ok := state.shards[shardId]; ok {
		globalData.Unlock()
		globalData.log.Warnf("duplicate microblock received for shard: %d", shardId)
		return fault.ErrShardAlreadySubmitted
	}
	globalData.Unlock()

	if !mb.SelfHashOk() {
		globalData.log.Warnf("block hash: %v does not match header self-hash: %v", mb.BlockHash, mb.Header.MyHash)
		return fault.ErrInvalidBlockHash
	}

	if microblock.Version != mb.Header.Version {
		globalData.log.Warnf("microblock version: %d  expected: %d", mb.Header.Version, microblock.Version)
		return fault.ErrMicroBlockVersion
	}

	globalData.RLock()
	fresh := blockIsLatest(mb.Header.DSBlockNumber, mb.Header.Epoch)
	globalData.RUnlock()
	if !fresh {
		return fault.ErrSubmissionNotCurrent
	}

	now := uint64(time.Now().UnixNano() / int64(time.Millisecond))
	window := uint64(timestampWindow(epoch) / time.Millisecond)
	age := now - mb.Timestamp
	if mb.Timestamp > now {
		age = mb.Timestamp - now
	}
	if age > window {
		globalData.log.Warnf("timestamp: %d out of window: %d ms", mb.Timestamp, window)
		return fault.ErrInvalidTimestamp
	}

	ref, err := committee.ShardRefFromWire(shardId, numShards)
	if nil != err {
		globalData.log.Warnf("invalid shard id: %d", shardId)
		return err
	}

	globalData.RLock()
	mapped, ok := globalData.publicKeyToShard[mb.Header.MinerPublicKey]
	globalData.RUnlock()
	if !ok {
		globalData.log.Warnf("cannot find the miner key: %x", mb.Header.MinerPublicKey[:])
		return fault.ErrSenderNotAuthorised
	}
	if mapped != shardId {
		globalData.log.Warnf("microblock shard id mismatch: claimed: %d  registered: %d", shardId, mapped)
		return fault.ErrNotShardMember
	}

	members, err := committee.Select(source, ref)
	if nil != err {
		return err
	}
	if members.Hash() != mb.Header.CommitteeHash {
		globalData.log.Warnf("committee hash: expected: %v  received: %v", members.Hash(), mb.Header.CommitteeHash)
		return fault.ErrCommitteeHashMismatch
	}

	if err := verifyCoSignature(source, mb, ref); nil != err {
		globalData.log.Warnf("microblock co-signature verification failed: %s", err)
		return err
	}

	globalData.Lock()
	defer globalData.Unlock()

	state = epochStateLocked(epoch)
	if state.stopReceiving {
		globalData.log.Warn("microblock consensus already started, ignore this submission")
		return fault.ErrUnexpectedTransitionState
	}
	if _, ok := state.shards[shardId]; ok {
		globalData.log.Warnf("duplicate microblock received for shard: %d", shardId)
		return fault.ErrShardAlreadySubmitted
	}

	if !ref.IsDSCommittee() {
		if err := globalData.handles.Coinbase.SaveCoinbase(epoch, ref, members, mb.B1, mb.B2); nil != err {
			globalData.log.Warnf("coinbase crediting failed: %s", err)
			return err
		}
	}

	body := mb.Pack()
	if err := globalData.handles.Blocks.PutMicroBlock(mb.BlockHash, mb.Header.Epoch, shardId, body); nil != err {
		globalData.log.Errorf("failed to put microblock in persistence: %s", err)
		return err
	}

	if !IsVacuousEpoch(epoch) {
		if err := processStateDelta(state, epoch, delta, mb.Header.StateDeltaHash, mb.BlockHash); nil != err {
			globalData.log.Warnf("state delta attached to the microblock is invalid: %s", err)
			return err
		}
	}

	state.microBlocks[mb.BlockHash] = mb
	state.shards[shardId] = mb.BlockHash

	globalData.log.Infof("%d of %d microblocks received for epoch: %d",
		len(state.microBlocks), numShards, epoch)

	if uint32(len(state.microBlocks)) == numShards {
		state.stopReceiving = true
		globalData.completion.Broadcast()

		parameter := make([]byte, 8)
		binary.BigEndian.PutUint64(parameter, epoch)
		messagebus.Bus.Consensus.Send("consensus-ready", parameter)
	}

	return nil
}
