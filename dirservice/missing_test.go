// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dirservice_test

import (
	"encoding/binary"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/openshard/dsnoded/blockdigest"
	"github.com/openshard/dsnoded/committee"
	"github.com/openshard/dsnoded/dirservice"
	"github.com/openshard/dsnoded/dirservice/mocks"
	"github.com/openshard/dsnoded/fault"
	"github.com/openshard/dsnoded/messagebus"
	"github.com/openshard/dsnoded/microblock"
)

func repair(epoch uint64, microBlocks []*microblock.MicroBlock, deltas [][]byte) error {
	return dirservice.ProcessMissingSubmission(epoch, microBlocks, deltas)
}

func TestRepairProcessesLateEpoch(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	network := makeTestNetwork(t, 1, 4)
	blocks, _, coinbase := setupService(t, ctl, network, false)
	defer dirservice.Finalise()

	dirservice.SetEpoch(1)

	// a repair batch for a different epoch is still processed, keyed by
	// the epoch it names
	const epoch = 2
	mb := signedMicroBlock(t, network.shards[0], 0, epoch, nil)
	err := dirservice.MarkMissing(epoch, []blockdigest.Digest{mb.BlockHash})
	assert.NoError(t, err, "marking missing failed")

	blocks.EXPECT().PutMicroBlock(mb.BlockHash, uint64(epoch), uint32(0), gomock.Any()).Return(nil)
	coinbase.EXPECT().SaveCoinbase(uint64(epoch), committee.ShardId(0), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	err = repair(epoch, []*microblock.MicroBlock{mb}, [][]byte{nil})
	assert.NoError(t, err, "untimely repair failed")
	assert.Equal(t, 0, dirservice.MissingCount(epoch), "gap remains")
	assert.Equal(t, 1, dirservice.MicroBlockCount(epoch), "repaired block not accepted")

	messagebus.Bus.Repair.Drop()
}

func TestRepairRejectsInconsistentBatch(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	network := makeTestNetwork(t, 1, 4)
	setupService(t, ctl, network, false)
	defer dirservice.Finalise()

	dirservice.SetEpoch(1)

	mb := signedMicroBlock(t, network.shards[0], 0, 1, nil)
	err := repair(1, []*microblock.MicroBlock{mb}, nil)
	assert.Equal(t, fault.ErrMissingParameters, err, "inconsistent batch accepted")
}

func TestRepairClosesAllGaps(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	network := makeTestNetwork(t, 2, 4)
	blocks, accounts, coinbase := setupService(t, ctl, network, false)
	defer dirservice.Finalise()

	const epoch = 1
	dirservice.SetEpoch(epoch)

	delta0 := testDelta(1)
	delta1 := testDelta(2)
	mb0 := signedMicroBlock(t, network.shards[0], 0, epoch, delta0)
	mb1 := signedMicroBlock(t, network.shards[1], 1, epoch, delta1)

	err := dirservice.MarkMissing(epoch, []blockdigest.Digest{mb0.BlockHash, mb1.BlockHash})
	assert.NoError(t, err, "marking missing failed")
	assert.Equal(t, 2, dirservice.MissingCount(epoch), "wrong gap count")

	blocks.EXPECT().PutMicroBlock(gomock.Any(), uint64(epoch), gomock.Any(), gomock.Any()).Return(nil).Times(2)
	blocks.EXPECT().PutStateDelta(uint64(epoch), gomock.Any(), gomock.Any()).Return(nil).Times(2)
	accounts.EXPECT().DeserializeDeltaTemp(gomock.Any()).Return(nil).Times(2)
	accounts.EXPECT().GetSerializedDelta().Return(testDelta(3)).Times(2)
	coinbase.EXPECT().SaveCoinbase(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(2)

	err = repair(epoch, []*microblock.MicroBlock{mb0, mb1}, [][]byte{delta0, delta1})
	assert.NoError(t, err, "repair failed")
	assert.Equal(t, 0, dirservice.MissingCount(epoch), "gaps remain")
	assert.Equal(t, 2, dirservice.MicroBlockCount(epoch), "wrong microblock count")

	message := <-messagebus.Bus.Repair.Chan()
	assert.Equal(t, "repair-complete", message.Command, "wrong bus command")
	assert.Equal(t, uint64(epoch), binary.BigEndian.Uint64(message.Parameters[0]), "wrong epoch parameter")

	// the waiter must not block once all gaps are closed
	dirservice.WaitMissingRepaired(epoch)
}

func TestRepairSkipsBadItemKeepsGoing(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	network := makeTestNetwork(t, 2, 6)
	blocks, _, coinbase := setupService(t, ctl, network, false)
	defer dirservice.Finalise()

	const epoch = 1
	dirservice.SetEpoch(epoch)

	mb0 := signedMicroBlock(t, network.shards[0], 0, epoch, nil)
	mb1 := signedMicroBlock(t, network.shards[1], 1, epoch, nil)

	// corrupt mb1's co-signature: same signer count, different set
	mb1.B2[0] = false
	mb1.B2[len(mb1.B2)-1] = true

	err := dirservice.MarkMissing(epoch, []blockdigest.Digest{mb0.BlockHash, mb1.BlockHash})
	assert.NoError(t, err, "marking missing failed")

	blocks.EXPECT().PutMicroBlock(mb0.BlockHash, uint64(epoch), uint32(0), gomock.Any()).Return(nil)
	coinbase.EXPECT().SaveCoinbase(uint64(epoch), committee.ShardId(0), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	err = repair(epoch, []*microblock.MicroBlock{mb0, mb1}, [][]byte{nil, nil})
	assert.Equal(t, fault.ErrMicroBlocksStillMissing, err, "incomplete repair reported success")
	assert.Equal(t, 1, dirservice.MissingCount(epoch), "wrong gap count")
	assert.Equal(t, 1, dirservice.MicroBlockCount(epoch), "good item not accepted")

	// a later batch with the real microblock closes the last gap
	good := signedMicroBlock(t, network.shards[1], 1, epoch, nil)
	blocks.EXPECT().PutMicroBlock(good.BlockHash, uint64(epoch), uint32(1), gomock.Any()).Return(nil)
	coinbase.EXPECT().SaveCoinbase(uint64(epoch), committee.ShardId(1), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	err = repair(epoch, []*microblock.MicroBlock{good}, [][]byte{nil})
	assert.NoError(t, err, "follow-up repair failed")
	assert.Equal(t, 0, dirservice.MissingCount(epoch), "gaps remain")

	messagebus.Bus.Repair.Drop()
}

func TestRepairSkipsUnrequestedBlock(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	network := makeTestNetwork(t, 2, 4)
	setupService(t, ctl, network, false)
	defer dirservice.Finalise()

	const epoch = 1
	dirservice.SetEpoch(epoch)

	wanted := signedMicroBlock(t, network.shards[1], 1, epoch, nil)
	unwanted := signedMicroBlock(t, network.shards[0], 0, epoch, nil)

	err := dirservice.MarkMissing(epoch, []blockdigest.Digest{wanted.BlockHash})
	assert.NoError(t, err, "marking missing failed")

	err = repair(epoch, []*microblock.MicroBlock{unwanted}, [][]byte{nil})
	assert.Equal(t, fault.ErrMicroBlocksStillMissing, err, "unrequested block satisfied the repair")
	assert.Equal(t, 0, dirservice.MicroBlockCount(epoch), "unrequested block accepted")
}

func TestRepairAbortsOnStaleDSBlock(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	network := makeTestNetwork(t, 1, 4)
	setupService(t, ctl, network, false)
	defer dirservice.Finalise()

	const epoch = 1
	dirservice.SetEpoch(epoch)

	mb := signedMicroBlock(t, network.shards[0], 0, epoch, nil)
	err := dirservice.MarkMissing(epoch, []blockdigest.Digest{mb.BlockHash})
	assert.NoError(t, err, "marking missing failed")

	dirservice.SetDSBlockNumber(3)

	err = repair(epoch, []*microblock.MicroBlock{mb}, [][]byte{nil})
	assert.Equal(t, fault.ErrSubmissionNotCurrent, err, "stale repair batch accepted")
	assert.Equal(t, 1, dirservice.MissingCount(epoch), "gap closed by stale batch")
}

func TestMissingShardsAudit(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	network := makeTestNetwork(t, 3, 4)
	blocks, _, coinbase := setupService(t, ctl, network, false)
	defer dirservice.Finalise()

	const epoch = 1
	dirservice.SetEpoch(epoch)

	assert.Equal(t, []uint32{0, 1, 2}, dirservice.MissingShards(epoch), "wrong initial gap set")

	blocks.EXPECT().PutMicroBlock(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	coinbase.EXPECT().SaveCoinbase(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	mb := signedMicroBlock(t, network.shards[1], 1, epoch, nil)
	err := dispatch(epoch, mb, nil)
	assert.NoError(t, err, "submission rejected")

	assert.Equal(t, []uint32{0, 2}, dirservice.MissingShards(epoch), "wrong gap set after one submission")
}

func TestRepairOwnShardSkipsCoSignature(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	network := makeTestNetwork(t, 2, 4)

	blocks := mocks.NewMockBlockStore(ctl)
	accounts := mocks.NewMockAccountState(ctl)
	coinbase := mocks.NewMockCoinbaseLedger(ctl)

	// this node sits in shard 0, so its own shard's consensus already
	// verified the co-signature
	err := dirservice.Initialise(network, dirservice.Handles{
		Blocks:   blocks,
		Accounts: accounts,
		Coinbase: coinbase,
	}, committee.ShardId(0), false)
	assert.NoError(t, err, "initialise failed")
	defer dirservice.Finalise()

	const epoch = 1
	dirservice.SetEpoch(epoch)

	mb := signedMicroBlock(t, network.shards[0], 0, epoch, nil)
	mb.CS2[0] ^= 0x01 // would fail verification

	err = dirservice.MarkMissing(epoch, []blockdigest.Digest{mb.BlockHash})
	assert.NoError(t, err, "marking missing failed")

	blocks.EXPECT().PutMicroBlock(mb.BlockHash, uint64(epoch), uint32(0), gomock.Any()).Return(nil)
	coinbase.EXPECT().SaveCoinbase(uint64(epoch), committee.ShardId(0), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	err = repair(epoch, []*microblock.MicroBlock{mb}, [][]byte{nil})
	assert.NoError(t, err, "own shard repair failed")
	assert.Equal(t, 1, dirservice.MicroBlockCount(epoch), "own shard block not accepted")

	messagebus.Bus.Repair.Drop()
}
