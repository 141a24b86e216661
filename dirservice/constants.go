// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dirservice

import (
	"time"
)

// protocol timing constants
const (
	// maximum age of a consensus object before it is considered stale
	consensusObjectTimeout = 10 * time.Second

	// time allowed for a shard to produce and deliver its microblock
	microBlockTimeout = 30 * time.Second

	// added to the timestamp window on the first tx-epoch after PoW,
	// when transactions are still being distributed to shards
	extraTxDistributeTime = 9 * time.Second
)

// NumFinalBlockPerPoW - tx-epochs per PoW cycle
//
// a non-zero epoch that is a multiple of this is vacuous: no transactions are
// processed and state deltas are skipped
const NumFinalBlockPerPoW = 100

// IsVacuousEpoch - true when the epoch processes no transactions
func IsVacuousEpoch(epoch uint64) bool {
	return 0 != epoch && 0 == epoch%NumFinalBlockPerPoW
}

// timestamp acceptance window for a microblock in the given epoch
func timestampWindow(epoch uint64) time.Duration {
	window := consensusObjectTimeout + microBlockTimeout
	if 0 == epoch%NumFinalBlockPerPoW {
		window += extraTxDistributeTime
	}
	return window
}
