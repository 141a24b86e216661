// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dirservice

import (
	"encoding/binary"

	"github.com/openshard/dsnoded/accountstate"
	"github.com/openshard/dsnoded/blockdigest"
	"github.com/openshard/dsnoded/coinbase"
	"github.com/openshard/dsnoded/committee"
	"github.com/openshard/dsnoded/storage"
)

// storage-backed block store
//
// body is stored under the block hash; a secondary index maps
// (epoch, shard id) back to the hash
type defaultBlockStore struct{}

func indexKey(epoch uint64, shardId uint32) []byte {
	key := make([]byte, 12)
	binary.BigEndian.PutUint64(key, epoch)
	binary.BigEndian.PutUint32(key[8:], shardId)
	return key
}

func (defaultBlockStore) PutMicroBlock(blockHash blockdigest.Digest, epoch uint64, shardId uint32, body []byte) error {
	storage.Pool.MicroBlocks.Put(blockHash[:], body)
	storage.Pool.MicroBlockIndex.Put(indexKey(epoch, shardId), blockHash[:])
	return nil
}

func (defaultBlockStore) PutStateDelta(epoch uint64, blockHash blockdigest.Digest, delta []byte) error {
	key := make([]byte, 8+blockdigest.Length)
	binary.BigEndian.PutUint64(key, epoch)
	copy(key[8:], blockHash[:])
	storage.Pool.StateDeltas.Put(key, delta)
	return nil
}

// FetchMicroBlock - read a persisted microblock back by hash
func FetchMicroBlock(blockHash blockdigest.Digest) ([]byte, bool) {
	body := storage.Pool.MicroBlocks.Get(blockHash[:])
	if nil == body {
		return nil, false
	}
	return body, true
}

// FetchMicroBlockHash - look a block hash up by (epoch, shard id)
func FetchMicroBlockHash(epoch uint64, shardId uint32) (blockdigest.Digest, bool) {
	value := storage.Pool.MicroBlockIndex.Get(indexKey(epoch, shardId))
	if nil == value {
		return blockdigest.Digest{}, false
	}
	blockHash := blockdigest.Digest{}
	if nil != blockdigest.DigestFromBytes(&blockHash, value) {
		return blockdigest.Digest{}, false
	}
	return blockHash, true
}

// account-store overlay
type defaultAccountState struct{}

func (defaultAccountState) DeserializeDeltaTemp(delta []byte) error {
	return accountstate.DeserializeDeltaTemp(delta)
}

func (defaultAccountState) GetSerializedDelta() []byte {
	return accountstate.GetSerializedDelta()
}

// coinbase ledger
type defaultCoinbaseLedger struct{}

func (defaultCoinbaseLedger) SaveCoinbase(epoch uint64, ref committee.ShardRef, members committee.Committee, b1 []bool, b2 []bool) error {
	return coinbase.SaveCoinbase(epoch, ref, members, b1, b2)
}
