// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package committee_test

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openshard/dsnoded/committee"
)

// wire form matching the directory file layout
type testEntry struct {
	PublicKey string `json:"public_key"`
	Address   string `json:"address"`
}

type testDirectory struct {
	DSCommittee []testEntry   `json:"ds_committee"`
	Shards      [][]testEntry `json:"shards"`
}

func entriesFor(c committee.Committee) []testEntry {
	entries := make([]testEntry, len(c))
	for i, member := range c {
		entries[i] = testEntry{
			PublicKey: hex.EncodeToString(member.PublicKey[:]),
			Address:   member.Address,
		}
	}
	return entries
}

func writeDirectoryFile(t *testing.T, dir string, d testDirectory) string {
	data, err := json.Marshal(d)
	assert.NoError(t, err, "marshal failed")
	fileName := filepath.Join(dir, "test.directory")
	err = ioutil.WriteFile(fileName, data, 0600)
	assert.NoError(t, err, "write failed")
	return fileName
}

func TestLoadDirectoryFile(t *testing.T) {

	dir, err := ioutil.TempDir("", "directory-test")
	assert.NoError(t, err, "tempdir failed")
	defer os.RemoveAll(dir)

	ds := makeCommittee(t, 4)
	shard0 := makeCommittee(t, 3)
	shard1 := makeCommittee(t, 3)

	fileName := writeDirectoryFile(t, dir, testDirectory{
		DSCommittee: entriesFor(ds),
		Shards:      [][]testEntry{entriesFor(shard0), entriesFor(shard1)},
	})

	source, err := committee.LoadDirectoryFile(fileName)
	assert.NoError(t, err, "load failed")

	assert.Equal(t, uint32(2), source.NumShards(), "wrong shard count")
	assert.Equal(t, ds.Hash(), source.DSCommittee().Hash(), "wrong ds committee")

	c, ok := source.Shard(0)
	assert.True(t, ok, "shard 0 missing")
	assert.Equal(t, shard0.Hash(), c.Hash(), "wrong shard 0")

	c, ok = source.Shard(1)
	assert.True(t, ok, "shard 1 missing")
	assert.Equal(t, shard1.Hash(), c.Hash(), "wrong shard 1")

	_, ok = source.Shard(2)
	assert.False(t, ok, "out of range shard found")

	for i, member := range ds {
		assert.Equal(t, fmt.Sprintf("127.0.0.1:%d", 13000+i), member.Address, "wrong address")
	}

	// the loaded source must work with Select
	selected, err := committee.Select(source, committee.ShardId(1))
	assert.NoError(t, err, "select failed")
	assert.Equal(t, shard1.Hash(), selected.Hash(), "wrong committee selected")
}

func TestLoadDirectoryFileErrors(t *testing.T) {

	dir, err := ioutil.TempDir("", "directory-test")
	assert.NoError(t, err, "tempdir failed")
	defer os.RemoveAll(dir)

	_, err = committee.LoadDirectoryFile(filepath.Join(dir, "no-such-file"))
	assert.Error(t, err, "missing file accepted")

	ds := makeCommittee(t, 2)

	// not JSON at all
	fileName := filepath.Join(dir, "garbage.directory")
	err = ioutil.WriteFile(fileName, []byte("not json"), 0600)
	assert.NoError(t, err, "write failed")
	_, err = committee.LoadDirectoryFile(fileName)
	assert.Error(t, err, "garbage accepted")

	// no shards
	fileName = writeDirectoryFile(t, dir, testDirectory{
		DSCommittee: entriesFor(ds),
	})
	_, err = committee.LoadDirectoryFile(fileName)
	assert.Error(t, err, "empty shard list accepted")

	// empty shard
	fileName = writeDirectoryFile(t, dir, testDirectory{
		DSCommittee: entriesFor(ds),
		Shards:      [][]testEntry{{}},
	})
	_, err = committee.LoadDirectoryFile(fileName)
	assert.Error(t, err, "empty shard accepted")

	// corrupted public key hex
	entries := entriesFor(ds)
	entries[0].PublicKey = "zz" + entries[0].PublicKey[2:]
	fileName = writeDirectoryFile(t, dir, testDirectory{
		DSCommittee: entries,
		Shards:      [][]testEntry{entriesFor(ds)},
	})
	_, err = committee.LoadDirectoryFile(fileName)
	assert.Error(t, err, "bad hex accepted")

	// truncated public key
	entries = entriesFor(ds)
	entries[0].PublicKey = entries[0].PublicKey[:8]
	fileName = writeDirectoryFile(t, dir, testDirectory{
		DSCommittee: entries,
		Shards:      [][]testEntry{entriesFor(ds)},
	})
	_, err = committee.LoadDirectoryFile(fileName)
	assert.Error(t, err, "short key accepted")
}
