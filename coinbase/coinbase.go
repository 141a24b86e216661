// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package coinbase - record which committee members co-signed each
// microblock so the reward transaction for the epoch can credit them
//
// the ledger is in-memory only; it is rebuilt every DS epoch
package coinbase

import (
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/openshard/dsnoded/committee"
	"github.com/openshard/dsnoded/fault"
	"github.com/openshard/dsnoded/microblock"
	"github.com/openshard/dsnoded/multisig"
)

// signers of the two co-signature rounds for one microblock
type credit struct {
	round1 []multisig.PublicKey
	round2 []multisig.PublicKey
}

// globals for this module
type globalDataType struct {
	sync.RWMutex
	log *logger.L

	// epoch → producing committee → credited signers
	rewardees map[uint64]map[committee.ShardRef]credit

	initialised bool
}

// global data
var globalData globalDataType

// Initialise - prepare the coinbase ledger
func Initialise() error {
	globalData.Lock()
	defer globalData.Unlock()

	if globalData.initialised {
		return fault.ErrAlreadyInitialised
	}

	globalData.log = logger.New("coinbase")
	globalData.log.Info("starting…")

	globalData.rewardees = make(map[uint64]map[committee.ShardRef]credit)

	globalData.initialised = true
	return nil
}

// Finalise - discard the coinbase ledger
func Finalise() error {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.ErrNotInitialised
	}

	globalData.log.Info("shutting down…")
	globalData.log.Flush()

	globalData.rewardees = nil
	globalData.initialised = false
	return nil
}

// SaveCoinbase - credit the signers named by the two co-signature bitmaps
//
// each committee may be credited only once per epoch
func SaveCoinbase(epoch uint64, ref committee.ShardRef, members committee.Committee, b1 []bool, b2 []bool) error {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.ErrNotInitialised
	}

	if len(b1) != members.Size() || len(b2) != members.Size() {
		return fault.ErrBitmapSizeMismatch
	}

	epochRewardees, ok := globalData.rewardees[epoch]
	if !ok {
		epochRewardees = make(map[committee.ShardRef]credit)
		globalData.rewardees[epoch] = epochRewardees
	}

	if _, ok := epochRewardees[ref]; ok {
		globalData.log.Warnf("duplicate coinbase for epoch: %d  committee: %s", epoch, ref)
		return fault.ErrShardAlreadySubmitted
	}

	c := credit{
		round1: make([]multisig.PublicKey, 0, microblock.CountSet(b1)),
		round2: make([]multisig.PublicKey, 0, microblock.CountSet(b2)),
	}
	for i, member := range members {
		if b1[i] {
			c.round1 = append(c.round1, member.PublicKey)
		}
		if b2[i] {
			c.round2 = append(c.round2, member.PublicKey)
		}
	}
	epochRewardees[ref] = c

	globalData.log.Debugf("coinbase for epoch: %d  committee: %s  round1: %d  round2: %d",
		epoch, ref, len(c.round1), len(c.round2))
	return nil
}

// Rewardees - distinct signers credited for one committee in one epoch
//
// second return is false when nothing was recorded
func Rewardees(epoch uint64, ref committee.ShardRef) ([]multisig.PublicKey, bool) {
	globalData.RLock()
	defer globalData.RUnlock()

	epochRewardees, ok := globalData.rewardees[epoch]
	if !ok {
		return nil, false
	}
	c, ok := epochRewardees[ref]
	if !ok {
		return nil, false
	}

	seen := make(map[multisig.PublicKey]struct{}, len(c.round1)+len(c.round2))
	distinct := make([]multisig.PublicKey, 0, len(c.round1)+len(c.round2))
	for _, key := range c.round1 {
		if _, ok := seen[key]; !ok {
			seen[key] = struct{}{}
			distinct = append(distinct, key)
		}
	}
	for _, key := range c.round2 {
		if _, ok := seen[key]; !ok {
			seen[key] = struct{}{}
			distinct = append(distinct, key)
		}
	}
	return distinct, true
}

// Reset - drop all credits recorded before the given epoch
//
// called when a DS epoch completes and rewards have been paid
func Reset(beforeEpoch uint64) {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return
	}
	for epoch := range globalData.rewardees {
		if epoch < beforeEpoch {
			delete(globalData.rewardees, epoch)
		}
	}
}
