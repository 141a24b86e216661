// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package accountstate_test

import (
	"bytes"
	"encoding/binary"
	"os"
	"testing"

	"github.com/bitmark-inc/logger"
	"github.com/stretchr/testify/assert"

	"github.com/openshard/dsnoded/accountstate"
)

const (
	testingDirName = "testing"
)

func TestMain(m *testing.M) {
	os.RemoveAll(testingDirName)
	_ = os.Mkdir(testingDirName, 0o700)

	logging := logger.Configuration{
		Directory: testingDirName,
		File:      "testing.log",
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "error",
		},
	}
	_ = logger.Initialise(logging)

	if err := accountstate.Initialise(); nil != err {
		os.Exit(1)
	}

	result := m.Run()

	_ = accountstate.Finalise()
	logger.Finalise()
	os.RemoveAll(testingDirName)
	os.Exit(result)
}

func testAddress(fill byte) accountstate.Address {
	address := accountstate.Address{}
	for i := range address {
		address[i] = fill
	}
	return address
}

func TestDeltaRoundTrip(t *testing.T) {

	accountstate.InitTemp()
	accountstate.SetTemp(testAddress(0x11), accountstate.Account{Balance: 1000, Nonce: 7})
	accountstate.SetTemp(testAddress(0x02), accountstate.Account{Balance: 42, Nonce: 0})
	accountstate.SetTemp(testAddress(0xfe), accountstate.Account{Balance: 0, Nonce: 3})

	serialized := accountstate.SerializeDelta()

	accountstate.InitTemp()
	assert.Equal(t, 0, accountstate.TempCount(), "overlay not cleared")

	err := accountstate.DeserializeDeltaTemp(serialized)
	assert.NoError(t, err, "deserialize failed")
	assert.Equal(t, 3, accountstate.TempCount(), "wrong overlay size")

	account, ok := accountstate.GetTemp(testAddress(0x11))
	assert.True(t, ok, "account missing from overlay")
	assert.Equal(t, uint64(1000), account.Balance, "balance changed in round trip")
	assert.Equal(t, uint64(7), account.Nonce, "nonce changed in round trip")

	// addresses must come out in byte order
	count := binary.BigEndian.Uint32(serialized)
	assert.Equal(t, uint32(3), count, "wrong entry count")
	first := serialized[4 : 4+accountstate.AddressSize]
	second := serialized[4+36 : 4+36+accountstate.AddressSize]
	assert.True(t, bytes.Compare(first, second) < 0, "entries not ordered")
}

func TestDeserializeRejectsBadBuffers(t *testing.T) {

	accountstate.InitTemp()
	accountstate.SetTemp(testAddress(0x01), accountstate.Account{Balance: 1, Nonce: 1})
	serialized := accountstate.SerializeDelta()

	// truncated count
	err := accountstate.DeserializeDeltaTemp(serialized[:3])
	assert.Error(t, err, "truncated count accepted")

	// truncated entry
	err = accountstate.DeserializeDeltaTemp(serialized[:len(serialized)-1])
	assert.Error(t, err, "truncated entry accepted")

	// trailing garbage
	err = accountstate.DeserializeDeltaTemp(append(append([]byte{}, serialized...), 0x00))
	assert.Error(t, err, "trailing garbage accepted")

	// duplicate address
	duplicated := make([]byte, 4, 4+2*36)
	binary.BigEndian.PutUint32(duplicated, 2)
	entry := serialized[4:]
	duplicated = append(duplicated, entry...)
	duplicated = append(duplicated, entry...)
	err = accountstate.DeserializeDeltaTemp(duplicated)
	assert.Error(t, err, "duplicate address accepted")
}

func TestCommitTemp(t *testing.T) {

	accountstate.InitTemp()
	address := testAddress(0x33)
	accountstate.SetTemp(address, accountstate.Account{Balance: 900, Nonce: 2})

	_, ok := accountstate.Get(address)
	assert.False(t, ok, "overlay visible before commit")

	accountstate.CommitTemp()

	account, ok := accountstate.Get(address)
	assert.True(t, ok, "account missing after commit")
	assert.Equal(t, uint64(900), account.Balance, "balance wrong after commit")
	assert.Equal(t, 0, accountstate.TempCount(), "overlay not cleared by commit")
}

func TestGetSerializedDeltaIsStable(t *testing.T) {

	accountstate.InitTemp()
	accountstate.SetTemp(testAddress(0x44), accountstate.Account{Balance: 5, Nonce: 1})

	serialized := accountstate.SerializeDelta()
	again := accountstate.GetSerializedDelta()
	assert.True(t, bytes.Equal(serialized, again), "cached bytes differ")

	err := accountstate.DeserializeDeltaTemp(serialized)
	assert.NoError(t, err, "deserialize failed")
	assert.True(t, bytes.Equal(serialized, accountstate.GetSerializedDelta()), "deserialized bytes differ")
}
