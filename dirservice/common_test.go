// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dirservice_test

import (
	"crypto/sha256"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/openshard/dsnoded/chain"
	"github.com/openshard/dsnoded/committee"
	"github.com/openshard/dsnoded/microblock"
	"github.com/openshard/dsnoded/mode"
	"github.com/openshard/dsnoded/multisig"
)

// test configuration
const (
	testingDirName = "testing"
)

// remove all files created by test
func removeFiles() {
	os.RemoveAll(testingDirName)
}

// configure for testing
func setup(m *testing.M) int {

	removeFiles()
	os.Mkdir(testingDirName, 0700)

	logging := logger.Configuration{
		Directory: testingDirName,
		File:      "testing.log",
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	}

	// start logging
	if err := logger.Initialise(logging); nil != err {
		panic("logger setup failed: " + err.Error())
	}

	if err := mode.Initialise(chain.Testing); nil != err {
		panic("mode setup failed: " + err.Error())
	}
	mode.Set(mode.AcceptSubmissions)

	rc := m.Run()

	mode.Finalise()
	removeFiles()
	return rc
}

// main entry point for tests
func TestMain(m *testing.M) {
	os.Exit(setup(m))
}

// a committee together with its signing keys
// key order matches member order so bitmaps line up
type testShard struct {
	keys    []*multisig.PrivateKey
	members committee.Committee
}

// an in-memory committee source
type testNetwork struct {
	ds     testShard
	shards []testShard
}

func (n *testNetwork) DSCommittee() committee.Committee {
	return n.ds.members
}

func (n *testNetwork) Shard(shardId uint32) (committee.Committee, bool) {
	if shardId >= uint32(len(n.shards)) {
		return nil, false
	}
	return n.shards[shardId].members, true
}

func (n *testNetwork) NumShards() uint32 {
	return uint32(len(n.shards))
}

func makeTestShard(t *testing.T, name string, size int) testShard {
	t.Helper()

	shard := testShard{
		keys:    make([]*multisig.PrivateKey, size),
		members: make(committee.Committee, size),
	}
	for i := 0; i < size; i += 1 {
		priv, pub, err := multisig.GenerateKeyPair()
		if nil != err {
			t.Fatalf("key generation failed: %s", err)
		}
		shard.keys[i] = priv
		shard.members[i] = committee.Member{
			PublicKey: pub,
			Address:   fmt.Sprintf("%s-node-%d:2136", name, i),
		}
	}
	return shard
}

// build a network of numShards shards plus a DS committee
func makeTestNetwork(t *testing.T, numShards int, shardSize int) *testNetwork {
	t.Helper()

	n := &testNetwork{
		ds:     makeTestShard(t, "ds", shardSize),
		shards: make([]testShard, numShards),
	}
	for i := 0; i < numShards; i += 1 {
		n.shards[i] = makeTestShard(t, fmt.Sprintf("shard-%d", i), shardSize)
	}
	return n
}

func nowMilliseconds() uint64 {
	return uint64(time.Now().UnixNano() / int64(time.Millisecond))
}

// build a microblock for a shard and co-sign it with exactly the
// consensus quorum of that shard's keys
func signedMicroBlock(t *testing.T, shard testShard, wireShardId uint32, epoch uint64, delta []byte) *microblock.MicroBlock {
	t.Helper()

	size := shard.members.Size()
	quorum := committee.NumForConsensus(size)
	bitmap := make([]bool, size)
	for i := 0; i < quorum; i += 1 {
		bitmap[i] = true
	}

	header := microblock.Header{
		Version:        microblock.Version,
		DSBlockNumber:  0,
		Epoch:          epoch,
		ShardId:        wireShardId,
		MinerPublicKey: shard.members[0].PublicKey,
		CommitteeHash:  shard.members.Hash(),
	}
	if 0 != len(delta) {
		header.StateDeltaHash = microblock.StateDeltaHash(sha256.Sum256(delta))
	}
	header.SealHash()

	mb := &microblock.MicroBlock{
		Header:    header,
		BlockHash: header.MyHash,
		Timestamp: nowMilliseconds(),
		B1:        bitmap,
		B2:        append([]bool(nil), bitmap...),
	}

	message := mb.CoSignatureMessage()
	signatures := make([]multisig.Signature, 0, quorum)
	for i, signed := range mb.B2 {
		if !signed {
			continue
		}
		signature, err := shard.keys[i].Sign(message)
		if nil != err {
			t.Fatalf("signing failed: %s", err)
		}
		signatures = append(signatures, signature)
	}

	aggregated, err := multisig.AggregateSignatures(signatures)
	if nil != err {
		t.Fatalf("signature aggregation failed: %s", err)
	}
	mb.CS2 = aggregated

	return mb
}

// a deterministic account-store delta buffer: count ++ entries of
// address(20) ++ balance(8) ++ nonce(8)
func testDelta(entries int) []byte {
	buffer := make([]byte, 4+entries*36)
	buffer[3] = byte(entries)
	for i := 0; i < entries; i += 1 {
		offset := 4 + i*36
		for j := 0; j < 20; j += 1 {
			buffer[offset+j] = byte(i + 1)
		}
		buffer[offset+27] = byte(100 + i) // balance
		buffer[offset+35] = byte(i)       // nonce
	}
	return buffer
}
