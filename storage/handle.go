// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"github.com/syndtr/goleveldb/leveldb"

	"github.com/bitmark-inc/logger"
)

// PoolHandle - access to a single prefixed table in one of the databases
type PoolHandle struct {
	prefix   byte
	limit    []byte
	database *leveldb.DB
	cache    *dbCache
}

// Element - a binary data item
type Element struct {
	Key   []byte
	Value []byte
}

// prepend the prefix onto the key
func (p *PoolHandle) prefixKey(key []byte) []byte {
	prefixedKey := make([]byte, 1, len(key)+1)
	prefixedKey[0] = p.prefix
	return append(prefixedKey, key...)
}

// Put - store a key/value bytes pair to the database
func (p *PoolHandle) Put(key []byte, value []byte) {
	poolData.Lock()
	defer poolData.Unlock()
	if nil == p.database {
		logger.Panic("pool.Put nil database")
		return
	}
	prefixedKey := p.prefixKey(key)
	err := p.database.Put(prefixedKey, value, nil)
	logger.PanicIfError("pool.Put", err)

	cachedValue := make([]byte, len(value))
	copy(cachedValue, value)
	p.cache.Set(dbPut, string(prefixedKey), cachedValue)
}

// Delete - remove a key from the database
func (p *PoolHandle) Delete(key []byte) {
	poolData.Lock()
	defer poolData.Unlock()
	if nil == p.database {
		return
	}
	prefixedKey := p.prefixKey(key)
	err := p.database.Delete(prefixedKey, nil)
	logger.PanicIfError("pool.Delete", err)

	p.cache.Set(dbDelete, string(prefixedKey), nil)
}

// Get - read a value for a given key
//
// returns nil if the key does not exist
func (p *PoolHandle) Get(key []byte) []byte {
	poolData.RLock()
	defer poolData.RUnlock()
	if nil == p.database {
		return nil
	}

	prefixedKey := p.prefixKey(key)
	cacheKey := string(prefixedKey)

	if value, found := p.cache.Get(cacheKey); found {
		return value
	}
	if p.cache.IsDeleted(cacheKey) {
		return nil
	}

	value, err := p.database.Get(prefixedKey, nil)
	if leveldb.ErrNotFound == err {
		return nil
	}
	logger.PanicIfError("pool.Get", err)

	p.cache.Set(dbPut, cacheKey, value)
	return value
}

// Has - check if a key exists
func (p *PoolHandle) Has(key []byte) bool {
	poolData.RLock()
	defer poolData.RUnlock()
	if nil == p.database {
		return false
	}

	prefixedKey := p.prefixKey(key)
	cacheKey := string(prefixedKey)

	if _, found := p.cache.Get(cacheKey); found {
		return true
	}
	if p.cache.IsDeleted(cacheKey) {
		return false
	}

	value, err := p.database.Has(prefixedKey, nil)
	logger.PanicIfError("pool.Has", err)
	return value
}
