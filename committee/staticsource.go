// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package committee

import (
	"encoding/hex"
	"encoding/json"
	"io/ioutil"

	"github.com/openshard/dsnoded/fault"
	"github.com/openshard/dsnoded/multisig"
)

// wire form of one member in the directory file
type memberEntry struct {
	PublicKey string `json:"public_key"`
	Address   string `json:"address"`
}

// wire form of the whole directory file
type directoryFile struct {
	DSCommittee []memberEntry   `json:"ds_committee"`
	Shards      [][]memberEntry `json:"shards"`
}

// StaticSource - a fixed committee registry loaded from a directory
// file; valid until the next DS block changes the shard composition
type StaticSource struct {
	ds     Committee
	shards []Committee
}

// DSCommittee - the directory service committee
func (source *StaticSource) DSCommittee() Committee {
	return source.ds
}

// Shard - membership of one shard
func (source *StaticSource) Shard(shardId uint32) (Committee, bool) {
	if shardId >= uint32(len(source.shards)) {
		return nil, false
	}
	return source.shards[shardId], true
}

// NumShards - the number of shards in the directory
func (source *StaticSource) NumShards() uint32 {
	return uint32(len(source.shards))
}

// LoadDirectoryFile - read a JSON directory of hex public keys and
// addresses
func LoadDirectoryFile(fileName string) (*StaticSource, error) {
	data, err := ioutil.ReadFile(fileName)
	if nil != err {
		return nil, err
	}
	return parseDirectory(data)
}

func parseDirectory(data []byte) (*StaticSource, error) {
	d := directoryFile{}
	if err := json.Unmarshal(data, &d); nil != err {
		return nil, err
	}
	if 0 == len(d.DSCommittee) || 0 == len(d.Shards) {
		return nil, fault.ErrMissingParameters
	}

	ds, err := convertEntries(d.DSCommittee)
	if nil != err {
		return nil, err
	}

	shards := make([]Committee, len(d.Shards))
	for i, entries := range d.Shards {
		shard, err := convertEntries(entries)
		if nil != err {
			return nil, err
		}
		shards[i] = shard
	}

	return &StaticSource{
		ds:     ds,
		shards: shards,
	}, nil
}

func convertEntries(entries []memberEntry) (Committee, error) {
	if 0 == len(entries) {
		return nil, fault.ErrMissingParameters
	}
	members := make(Committee, len(entries))
	for i, entry := range entries {
		buffer, err := hex.DecodeString(entry.PublicKey)
		if nil != err {
			return nil, err
		}
		publicKey, err := multisig.PublicKeyFromBytes(buffer)
		if nil != err {
			return nil, err
		}
		members[i] = Member{
			PublicKey: publicKey,
			Address:   entry.Address,
		}
	}
	return members, nil
}
