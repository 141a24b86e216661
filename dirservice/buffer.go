// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dirservice

import (
	"sort"

	"github.com/openshard/dsnoded/fault"
	"github.com/openshard/dsnoded/microblock"
	"github.com/openshard/dsnoded/mode"
)

// DispatchShardSubmission - route an incoming shard submission
//
// only the first (microblock, delta) pair is considered; extra entries
// are a protocol violation by the sender and are ignored
//
// early submissions are buffered until their epoch becomes current;
// submissions for the current epoch are also buffered while the node
// is not yet accepting, so a slow transition does not drop them
func DispatchShardSubmission(epoch uint64, microBlocks []*microblock.MicroBlock, deltas [][]byte) error {
	globalData.Lock()
	if !globalData.initialised {
		globalData.Unlock()
		return fault.ErrNotInitialised
	}
	if globalData.lookupNode {
		globalData.Unlock()
		return nil
	}

	if 0 == len(microBlocks) || 0 == len(deltas) {
		globalData.Unlock()
		globalData.log.Warn("submission carries no microblock or no state delta")
		return fault.ErrMissingParameters
	}

	mb := microBlocks[0]
	delta := deltas[0]
	current := globalData.currentEpoch

	if epoch > current {
		globalData.buffer[epoch] = append(globalData.buffer[epoch], bufferedSubmission{mb: mb, delta: delta})
		globalData.Unlock()
		globalData.log.Infof("buffered early submission for epoch: %d  current: %d", epoch, current)
		return nil
	}

	if epoch < current {
		globalData.Unlock()
		globalData.log.Warnf("late submission for epoch: %d  current: %d", epoch, current)
		return fault.ErrSubmissionNotCurrent
	}

	if !mode.Is(mode.AcceptSubmissions) {
		globalData.buffer[epoch] = append(globalData.buffer[epoch], bufferedSubmission{mb: mb, delta: delta})
		globalData.Unlock()
		globalData.log.Infof("buffered submission for epoch: %d until accepting", epoch)
		return nil
	}
	globalData.Unlock()

	return validateAndCommit(mb, delta)
}

// CommitBufferedSubmissions - drain submissions buffered for the
// current epoch
//
// stale buckets are discarded; buckets for future epochs are left for
// a later drain; at most the single current bucket is processed
func CommitBufferedSubmissions() {
	globalData.Lock()
	if !globalData.initialised || globalData.lookupNode {
		globalData.Unlock()
		return
	}
	current := globalData.currentEpoch

	epochs := make([]uint64, 0, len(globalData.buffer))
	for epoch := range globalData.buffer {
		epochs = append(epochs, epoch)
	}
	sort.Slice(epochs, func(i, j int) bool { return epochs[i] < epochs[j] })

	var pending []bufferedSubmission
	for _, epoch := range epochs {
		if epoch < current {
			globalData.log.Infof("discarding %d stale buffered submissions for epoch: %d", len(globalData.buffer[epoch]), epoch)
			delete(globalData.buffer, epoch)
			continue
		}
		if epoch == current {
			pending = globalData.buffer[epoch]
			delete(globalData.buffer, epoch)
		}
		break
	}
	globalData.Unlock()

	if 0 == len(pending) {
		return
	}

	globalData.log.Infof("committing %d buffered submissions for epoch: %d", len(pending), current)
	for _, submission := range pending {
		if err := validateAndCommit(submission.mb, submission.delta); nil != err {
			globalData.log.Warnf("buffered submission rejected: %s", err)
		}
	}
}

// BufferedSubmissionCount - number of submissions held for an epoch
func BufferedSubmissionCount(epoch uint64) int {
	globalData.RLock()
	defer globalData.RUnlock()
	return len(globalData.buffer[epoch])
}
