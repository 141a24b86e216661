// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dirservice

import (
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/openshard/dsnoded/blockdigest"
	"github.com/openshard/dsnoded/committee"
	"github.com/openshard/dsnoded/fault"
	"github.com/openshard/dsnoded/microblock"
	"github.com/openshard/dsnoded/multisig"
)

// BlockStore - persistence for accepted microblocks and their deltas
type BlockStore interface {
	PutMicroBlock(blockHash blockdigest.Digest, epoch uint64, shardId uint32, body []byte) error
	PutStateDelta(epoch uint64, blockHash blockdigest.Digest, delta []byte) error
}

// AccountState - temporary overlay of the account store
type AccountState interface {
	DeserializeDeltaTemp(delta []byte) error
	GetSerializedDelta() []byte
}

// CoinbaseLedger - records co-signers for reward crediting
type CoinbaseLedger interface {
	SaveCoinbase(epoch uint64, ref committee.ShardRef, members committee.Committee, b1 []bool, b2 []bool) error
}

// Handles - the stores the directory service writes through
//
// nil fields select the process-wide default implementations
type Handles struct {
	Blocks   BlockStore
	Accounts AccountState
	Coinbase CoinbaseLedger
}

// a buffered (microblock, delta) pair awaiting its epoch
type bufferedSubmission struct {
	mb    *microblock.MicroBlock
	delta []byte
}

// per-epoch bucket of accepted microblocks
//
// all fields are guarded by the registry lock
type epochState struct {
	microBlocks   map[blockdigest.Digest]*microblock.MicroBlock
	shards        map[uint32]blockdigest.Digest // wire shard id → accepted hash
	stateDeltas   map[blockdigest.Digest][]byte
	stopReceiving bool
}

func newEpochState() *epochState {
	return &epochState{
		microBlocks: make(map[blockdigest.Digest]*microblock.MicroBlock),
		shards:      make(map[uint32]blockdigest.Digest),
		stateDeltas: make(map[blockdigest.Digest][]byte),
	}
}

// globals for this module
type globalDataType struct {
	sync.RWMutex
	log *logger.L

	source     committee.Source
	handles    Handles
	myShard    committee.ShardRef
	lookupNode bool

	currentEpoch  uint64
	dsBlockNumber uint64

	// miner public key → producing shard, rebuilt each DS block
	publicKeyToShard map[multisig.PublicKey]uint32

	// epoch → accepted microblocks (the registry owning all buckets)
	epochs map[uint64]*epochState

	// epoch → submissions arrived early
	buffer map[uint64][]bufferedSubmission

	// epoch → known gaps awaiting repair
	missing map[uint64]map[blockdigest.Digest]struct{}

	// cumulative delta snapshot forwarded to final-block consensus
	stateDeltaFromShards []byte

	// woken when an epoch's microblock set completes or a gap closes
	completion *sync.Cond
	gapClosed  *sync.Cond

	initialised bool
}

// global data
var globalData globalDataType

// Initialise - prepare the directory service core
func Initialise(source committee.Source, handles Handles, myShard committee.ShardRef, lookupNode bool) error {
	globalData.Lock()
	defer globalData.Unlock()

	if globalData.initialised {
		return fault.ErrAlreadyInitialised
	}
	if nil == source {
		return fault.ErrMissingParameters
	}

	globalData.log = logger.New("dirservice")
	globalData.log.Info("starting…")

	if nil == handles.Blocks {
		handles.Blocks = defaultBlockStore{}
	}
	if nil == handles.Accounts {
		handles.Accounts = defaultAccountState{}
	}
	if nil == handles.Coinbase {
		handles.Coinbase = defaultCoinbaseLedger{}
	}

	globalData.source = source
	globalData.handles = handles
	globalData.myShard = myShard
	globalData.lookupNode = lookupNode

	globalData.currentEpoch = 0
	globalData.dsBlockNumber = 0
	globalData.epochs = make(map[uint64]*epochState)
	globalData.buffer = make(map[uint64][]bufferedSubmission)
	globalData.missing = make(map[uint64]map[blockdigest.Digest]struct{})
	globalData.stateDeltaFromShards = nil
	globalData.completion = sync.NewCond(&globalData)
	globalData.gapClosed = sync.NewCond(&globalData)

	rebuildAuthorityMap()

	globalData.initialised = true
	return nil
}

// Finalise - shut down the directory service core
func Finalise() error {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.ErrNotInitialised
	}

	globalData.log.Info("shutting down…")
	globalData.log.Flush()

	globalData.epochs = nil
	globalData.buffer = nil
	globalData.missing = nil
	globalData.publicKeyToShard = nil
	globalData.stateDeltaFromShards = nil

	globalData.initialised = false
	return nil
}

// rebuild the miner → shard authority map from the committee source
// caller must hold the write lock
func rebuildAuthorityMap() {
	m := make(map[multisig.PublicKey]uint32)
	numShards := globalData.source.NumShards()
	for shardId := uint32(0); shardId < numShards; shardId += 1 {
		members, ok := globalData.source.Shard(shardId)
		if !ok {
			continue
		}
		for _, member := range members {
			m[member.PublicKey] = shardId
		}
	}
	globalData.publicKeyToShard = m
}

// SetEpoch - position the service at an epoch
//
// used at startup and after resynchronisation
func SetEpoch(epoch uint64) {
	globalData.Lock()
	globalData.currentEpoch = epoch
	globalData.Unlock()
}

// AdvanceEpoch - move to the next epoch and drain buffered submissions
func AdvanceEpoch() {
	globalData.Lock()
	globalData.currentEpoch += 1
	epoch := globalData.currentEpoch
	globalData.Unlock()

	globalData.log.Infof("advanced to epoch: %d", epoch)
	CommitBufferedSubmissions()
}

// CurrentEpoch - the epoch submissions are accepted for
func CurrentEpoch() uint64 {
	globalData.RLock()
	defer globalData.RUnlock()
	return globalData.currentEpoch
}

// SetDSBlockNumber - record the latest DS block and refresh authority
//
// the shard composition changes with each DS block
func SetDSBlockNumber(n uint64) {
	globalData.Lock()
	globalData.dsBlockNumber = n
	rebuildAuthorityMap()
	globalData.Unlock()
}

// PruneEpoch - destroy the per-epoch buckets
//
// called by the epoch manager after final-block consensus concludes
func PruneEpoch(epoch uint64) {
	globalData.Lock()
	delete(globalData.epochs, epoch)
	delete(globalData.missing, epoch)
	globalData.Unlock()
}

// MicroBlockCount - number of accepted microblocks for an epoch
func MicroBlockCount(epoch uint64) int {
	globalData.RLock()
	defer globalData.RUnlock()
	state, ok := globalData.epochs[epoch]
	if !ok {
		return 0
	}
	return len(state.microBlocks)
}

// SubmissionsStopped - true once the epoch refuses new shard submissions
func SubmissionsStopped(epoch uint64) bool {
	globalData.RLock()
	defer globalData.RUnlock()
	state, ok := globalData.epochs[epoch]
	if !ok {
		return false
	}
	return state.stopReceiving
}

// StateDeltaFromShards - the cumulative delta snapshot for consensus
func StateDeltaFromShards() []byte {
	globalData.RLock()
	defer globalData.RUnlock()
	return globalData.stateDeltaFromShards
}

// StoredStateDelta - the delta recorded for an accepted microblock
func StoredStateDelta(epoch uint64, blockHash blockdigest.Digest) ([]byte, bool) {
	globalData.RLock()
	defer globalData.RUnlock()
	state, ok := globalData.epochs[epoch]
	if !ok {
		return nil, false
	}
	delta, ok := state.stateDeltas[blockHash]
	return delta, ok
}

// WaitMicroBlocksComplete - block until the epoch stops receiving
//
// the lock is not held across the wait
func WaitMicroBlocksComplete(epoch uint64) {
	globalData.Lock()
	for {
		state, ok := globalData.epochs[epoch]
		if ok && state.stopReceiving {
			break
		}
		globalData.completion.Wait()
	}
	globalData.Unlock()
}

// CheckIfShardNode - sender authority test for shard submissions
func CheckIfShardNode(publicKey multisig.PublicKey) bool {
	globalData.RLock()
	defer globalData.RUnlock()
	_, ok := globalData.publicKeyToShard[publicKey]
	return ok
}

// CheckIfDSNode - sender authority test for repair submissions
func CheckIfDSNode(publicKey multisig.PublicKey) bool {
	globalData.RLock()
	source := globalData.source
	globalData.RUnlock()
	if nil == source {
		return false
	}
	return source.DSCommittee().Contains(publicKey)
}

// freshness test shared by the shard and repair paths
//
// the submission must extend the latest DS block and must not be for
// an epoch already concluded
// caller must hold at least the read lock
func blockIsLatest(dsBlockNumber uint64, epoch uint64) bool {
	if dsBlockNumber < globalData.dsBlockNumber {
		globalData.log.Warnf("duplicated ds block: %d  latest: %d", dsBlockNumber, globalData.dsBlockNumber)
		return false
	}
	if dsBlockNumber > globalData.dsBlockNumber {
		globalData.log.Warnf("missed ds blocks: received: %d  latest: %d", dsBlockNumber, globalData.dsBlockNumber)
		return false
	}
	if epoch < globalData.currentEpoch {
		globalData.log.Warnf("stale epoch: %d  current: %d", epoch, globalData.currentEpoch)
		return false
	}
	return true
}

// fetch or create the bucket for an epoch
// caller must hold the write lock
func epochStateLocked(epoch uint64) *epochState {
	state, ok := globalData.epochs[epoch]
	if !ok {
		state = newEpochState()
		globalData.epochs[epoch] = state
	}
	return state
}
