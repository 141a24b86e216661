// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dirservice

import (
	"encoding/binary"

	"github.com/openshard/dsnoded/blockdigest"
	"github.com/openshard/dsnoded/committee"
	"github.com/openshard/dsnoded/fault"
	"github.com/openshard/dsnoded/messagebus"
	"github.com/openshard/dsnoded/microblock"
)

// MarkMissing - record the block hashes an epoch is still waiting for
//
// the repair path only accepts blocks previously marked missing, so a
// peer cannot inject blocks the node never asked about
func MarkMissing(epoch uint64, hashes []blockdigest.Digest) error {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.ErrNotInitialised
	}
	if globalData.lookupNode {
		return nil
	}

	gaps, ok := globalData.missing[epoch]
	if !ok {
		gaps = make(map[blockdigest.Digest]struct{})
		globalData.missing[epoch] = gaps
	}
	for _, hash := range hashes {
		gaps[hash] = struct{}{}
	}
	globalData.log.Infof("%d microblocks marked missing for epoch: %d", len(gaps), epoch)
	return nil
}

// MissingCount - number of unrepaired gaps for an epoch
func MissingCount(epoch uint64) int {
	globalData.RLock()
	defer globalData.RUnlock()
	return len(globalData.missing[epoch])
}

// MissingShards - wire shard ids with no accepted microblock yet
//
// the audit that decides whether a repair round is needed before
// final-block consensus can proceed
func MissingShards(epoch uint64) []uint32 {
	globalData.RLock()
	defer globalData.RUnlock()

	numShards := uint32(0)
	if nil != globalData.source {
		numShards = globalData.source.NumShards()
	}

	state, ok := globalData.epochs[epoch]
	gaps := make([]uint32, 0, numShards)
	for shardId := uint32(0); shardId < numShards; shardId += 1 {
		if ok {
			if _, accepted := state.shards[shardId]; accepted {
				continue
			}
		}
		gaps = append(gaps, shardId)
	}
	return gaps
}

// ProcessMissingSubmission - the repair path for previously requested
// microblocks
//
// item failures that only concern one block skip that block and keep
// going; failures that invalidate the whole batch abort it; the batch
// succeeds only when every known gap for the epoch is closed
func ProcessMissingSubmission(epoch uint64, microBlocks []*microblock.MicroBlock, deltas [][]byte) error {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.ErrNotInitialised
	}
	if globalData.lookupNode {
		return nil
	}

	// repair may arrive after the node has advanced past the epoch
	if epoch != globalData.currentEpoch {
		globalData.log.Infof("repair for epoch: %d  current: %d", epoch, globalData.currentEpoch)
	}

	if len(microBlocks) != len(deltas) {
		globalData.log.Warnf("repair batch inconsistent: %d microblocks  %d deltas", len(microBlocks), len(deltas))
		return fault.ErrMissingParameters
	}

	source := globalData.source
	numShards := source.NumShards()
	state := epochStateLocked(epoch)

	for i, mb := range microBlocks {
		if !blockIsLatest(mb.Header.DSBlockNumber, mb.Header.Epoch) {
			return fault.ErrSubmissionNotCurrent
		}

		shardId := mb.Header.ShardId
		ref, err := committee.ShardRefFromWire(shardId, numShards)
		if nil != err {
			globalData.log.Warnf("repair: invalid shard id: %d", shardId)
			continue
		}

		if ref.IsDSCommittee() {
			if !source.DSCommittee().Contains(mb.Header.MinerPublicKey) {
				globalData.log.Warnf("repair: miner key: %x not in the ds committee", mb.Header.MinerPublicKey[:])
				continue
			}
		} else {
			mapped, ok := globalData.publicKeyToShard[mb.Header.MinerPublicKey]
			if !ok || mapped != shardId {
				globalData.log.Warnf("repair: miner key: %x not registered to shard: %d", mb.Header.MinerPublicKey[:], shardId)
				continue
			}
		}

		members, err := committee.Select(source, ref)
		if nil != err {
			continue
		}
		if members.Hash() != mb.Header.CommitteeHash {
			globalData.log.Warnf("repair: committee hash mismatch for shard: %d", shardId)
			continue
		}

		// the node's own shard was verified during its consensus round
		if ref != globalData.myShard {
			if err := verifyCoSignature(source, mb, ref); nil != err {
				globalData.log.Warnf("repair: co-signature failed for shard: %d: %s", shardId, err)
				continue
			}
		}

		gaps := globalData.missing[epoch]
		if _, wanted := gaps[mb.BlockHash]; !wanted {
			globalData.log.Warnf("repair: block: %v was never requested", mb.BlockHash)
			continue
		}
		if _, present := state.microBlocks[mb.BlockHash]; present {
			globalData.log.Infof("repair: block: %v already accepted", mb.BlockHash)
			delete(gaps, mb.BlockHash)
			continue
		}

		if !ref.IsDSCommittee() {
			if err := globalData.handles.Coinbase.SaveCoinbase(epoch, ref, members, mb.B1, mb.B2); nil != err {
				globalData.log.Warnf("repair: coinbase crediting failed: %s", err)
				continue
			}
		}

		if !IsVacuousEpoch(epoch) {
			if err := processStateDelta(state, epoch, deltas[i], mb.Header.StateDeltaHash, mb.BlockHash); nil != err {
				globalData.log.Warnf("repair: state delta invalid: %s", err)
				continue
			}
		}

		body := mb.Pack()
		if err := globalData.handles.Blocks.PutMicroBlock(mb.BlockHash, mb.Header.Epoch, shardId, body); nil != err {
			globalData.log.Errorf("repair: persistence failed: %s", err)
			return err
		}

		state.microBlocks[mb.BlockHash] = mb
		state.shards[shardId] = mb.BlockHash
		delete(gaps, mb.BlockHash)
	}

	if 0 != len(globalData.missing[epoch]) {
		globalData.log.Warnf("%d microblocks still missing for epoch: %d", len(globalData.missing[epoch]), epoch)
		return fault.ErrMicroBlocksStillMissing
	}

	delete(globalData.missing, epoch)
	globalData.gapClosed.Broadcast()

	parameter := make([]byte, 8)
	binary.BigEndian.PutUint64(parameter, epoch)
	messagebus.Bus.Repair.Send("repair-complete", parameter)

	globalData.log.Infof("all missing microblocks repaired for epoch: %d", epoch)
	return nil
}

// WaitMissingRepaired - block until the epoch has no known gaps
//
// the lock is not held across the wait
func WaitMissingRepaired(epoch uint64) {
	globalData.Lock()
	for 0 != len(globalData.missing[epoch]) {
		globalData.gapClosed.Wait()
	}
	globalData.Unlock()
}
