// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package accountstate

import (
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/openshard/dsnoded/fault"
)

// AddressSize - byte length of an account address
const AddressSize = 20

// Address - account identifier
type Address [AddressSize]byte

// Account - balance and nonce for a single address
type Account struct {
	Balance uint64
	Nonce   uint64
}

// globals for this module
type globalDataType struct {
	sync.RWMutex
	log *logger.L

	// committed account states
	accounts map[Address]Account

	// overlay holding a deserialized but not yet committed delta
	temp map[Address]Account

	// wire bytes of the overlay, as last deserialized or serialized
	serialized []byte

	initialised bool
}

// global data
var globalData globalDataType

// Initialise - prepare the account store
func Initialise() error {
	globalData.Lock()
	defer globalData.Unlock()

	if globalData.initialised {
		return fault.ErrAlreadyInitialised
	}

	globalData.log = logger.New("accountstate")
	globalData.log.Info("starting…")

	globalData.accounts = make(map[Address]Account)
	globalData.temp = make(map[Address]Account)
	globalData.serialized = nil

	globalData.initialised = true
	return nil
}

// Finalise - discard the account store
func Finalise() error {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.ErrNotInitialised
	}

	globalData.log.Info("shutting down…")
	globalData.log.Flush()

	globalData.accounts = nil
	globalData.temp = nil
	globalData.serialized = nil

	globalData.initialised = false
	return nil
}

// InitTemp - clear the overlay ready for a new delta
func InitTemp() {
	globalData.Lock()
	defer globalData.Unlock()
	globalData.temp = make(map[Address]Account)
	globalData.serialized = nil
}

// CommitTemp - fold the overlay into the committed states
func CommitTemp() {
	globalData.Lock()
	defer globalData.Unlock()
	for address, account := range globalData.temp {
		globalData.accounts[address] = account
	}
	globalData.temp = make(map[Address]Account)
	globalData.serialized = nil
}

// Get - committed state for an address
//
// second return is false if the address has never been seen
func Get(address Address) (Account, bool) {
	globalData.RLock()
	defer globalData.RUnlock()
	account, ok := globalData.accounts[address]
	return account, ok
}

// GetTemp - overlay state for an address
func GetTemp(address Address) (Account, bool) {
	globalData.RLock()
	defer globalData.RUnlock()
	account, ok := globalData.temp[address]
	return account, ok
}

// SetTemp - place a single account into the overlay
func SetTemp(address Address, account Account) {
	globalData.Lock()
	defer globalData.Unlock()
	globalData.temp[address] = account
	globalData.serialized = nil
}

// TempCount - number of accounts in the overlay
func TempCount() int {
	globalData.RLock()
	defer globalData.RUnlock()
	return len(globalData.temp)
}
