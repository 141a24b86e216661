// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dirservice

import (
	"crypto/sha256"

	"github.com/openshard/dsnoded/blockdigest"
	"github.com/openshard/dsnoded/fault"
	"github.com/openshard/dsnoded/microblock"
)

// ProcessStateDelta - validate and apply a microblock's state delta
//
// a zero expected hash declares no delta and always succeeds without
// touching the account store; a non-zero hash requires a matching
// non-empty delta
func ProcessStateDelta(epoch uint64, delta []byte, expectedHash microblock.StateDeltaHash, blockHash blockdigest.Digest) error {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.ErrNotInitialised
	}
	if globalData.lookupNode {
		return nil
	}
	return processStateDelta(epochStateLocked(epoch), epoch, delta, expectedHash, blockHash)
}

// caller must hold the write lock
func processStateDelta(state *epochState, epoch uint64, delta []byte, expectedHash microblock.StateDeltaHash, blockHash blockdigest.Digest) error {

	if expectedHash.IsZero() {
		globalData.log.Debug("state delta hash is null, skip processing state delta")
		return nil
	}

	if 0 == len(delta) {
		globalData.log.Warn("state delta and state delta hash inconsistent")
		return fault.ErrStateDeltaEmpty
	}

	computed := microblock.StateDeltaHash(sha256.Sum256(delta))
	if computed != expectedHash {
		globalData.log.Warnf("state delta hash: computed: %x  expected: %x", computed, expectedHash)
		return fault.ErrStateDeltaHashMismatch
	}

	if err := globalData.handles.Accounts.DeserializeDeltaTemp(delta); nil != err {
		globalData.log.Warnf("account store deserialize failed: %s", err)
		return fault.ErrStateDeltaProcessingFailed
	}

	serialized := globalData.handles.Accounts.GetSerializedDelta()
	if nil == serialized {
		globalData.log.Warn("account store serialize failed")
		return fault.ErrStateDeltaProcessingFailed
	}

	if err := globalData.handles.Blocks.PutStateDelta(epoch, blockHash, delta); nil != err {
		globalData.log.Errorf("state delta persistence failed: %s", err)
		return err
	}

	// consensus forwards the cumulative snapshot, so update it after
	// every successful apply
	globalData.stateDeltaFromShards = serialized
	state.stateDeltas[blockHash] = delta

	return nil
}
