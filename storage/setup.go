// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"
	"fmt"
	"reflect"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	ldb_opt "github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/openshard/dsnoded/fault"
)

// exported storage pools
//
// note all must be exported (i.e. initial capital) or initialisation will panic
type pools struct {
	MicroBlocks     *PoolHandle `prefix:"M" database:"blocks"` // blockHash → packed microblock
	StateDeltas     *PoolHandle `prefix:"D" database:"blocks"` // epoch ‖ blockHash → delta bytes
	MicroBlockIndex *PoolHandle `prefix:"I" database:"index"`  // epoch ‖ shardId → blockHash
	TestData        *PoolHandle `prefix:"Z" database:"index"`
}

// Pool - the set of exported pools
var Pool pools

// for database version
var versionKey = []byte{0x00, 'V', 'E', 'R', 'S', 'I', 'O', 'N'}

const (
	currentBlockDBVersion = 0x100
	currentIndexDBVersion = 0x100
)

// holds the database handles
var poolData struct {
	sync.RWMutex
	dbBlocks *leveldb.DB
	dbIndex  *leveldb.DB
	cache    *dbCache
}

// Initialise - open up the database connections
//
// this must be called before any pool is accessed
func Initialise(database string) error {
	poolData.Lock()
	defer poolData.Unlock()

	if nil != poolData.dbBlocks {
		return fault.ErrAlreadyInitialised
	}

	ok := false
	defer func() {
		if !ok {
			dbClose()
		}
	}()

	blocksDatabase := database + "-blocks.leveldb"
	indexDatabase := database + "-index.leveldb"

	db, blocksVersion, err := getDB(blocksDatabase)
	if nil != err {
		return err
	}
	poolData.dbBlocks = db

	// ensure no database downgrade
	if blocksVersion > currentBlockDBVersion {
		return fmt.Errorf("blocks database version: %d > current version: %d", blocksVersion, currentBlockDBVersion)
	} else if 0 == blocksVersion {
		// database was empty so tag as current version
		if err := putVersion(poolData.dbBlocks, currentBlockDBVersion); nil != err {
			return err
		}
	}

	db, indexVersion, err := getDB(indexDatabase)
	if nil != err {
		return err
	}
	poolData.dbIndex = db

	if indexVersion > currentIndexDBVersion {
		return fmt.Errorf("index database version: %d > current version: %d", indexVersion, currentIndexDBVersion)
	} else if 0 == indexVersion {
		if err := putVersion(poolData.dbIndex, currentIndexDBVersion); nil != err {
			return err
		}
	}

	poolData.cache = newCache()

	// this will be a struct type
	poolType := reflect.TypeOf(Pool)

	// get write access by using pointer + Elem()
	poolValue := reflect.ValueOf(&Pool).Elem()

	// scan each field
	for i := 0; i < poolType.NumField(); i += 1 {

		fieldInfo := poolType.Field(i)

		prefixTag := fieldInfo.Tag.Get("prefix")
		if 1 != len(prefixTag) {
			return fmt.Errorf("pool: %v has invalid prefix: %q", fieldInfo, prefixTag)
		}

		prefix := prefixTag[0]
		limit := []byte(nil)
		if prefix < 255 {
			limit = []byte{prefix + 1}
		}

		var database *leveldb.DB
		switch dbName := fieldInfo.Tag.Get("database"); dbName {
		case "blocks":
			database = poolData.dbBlocks
		case "index":
			database = poolData.dbIndex
		default:
			return fmt.Errorf("pool: %v  has invalid database: %q", fieldInfo, dbName)
		}

		p := &PoolHandle{
			prefix:   prefix,
			limit:    limit,
			database: database,
			cache:    poolData.cache,
		}

		poolValue.Field(i).Set(reflect.ValueOf(p))
	}

	ok = true // prevent db close
	return nil
}

func dbClose() {
	if nil != poolData.dbIndex {
		poolData.dbIndex.Close()
		poolData.dbIndex = nil
	}
	if nil != poolData.dbBlocks {
		poolData.dbBlocks.Close()
		poolData.dbBlocks = nil
	}
	if nil != poolData.cache {
		poolData.cache.Clear()
		poolData.cache = nil
	}
}

// Finalise - close the database connections
func Finalise() {
	poolData.Lock()
	dbClose()
	poolData.Unlock()
}

// return:
//   database handle
//   version number
func getDB(name string) (*leveldb.DB, int, error) {
	opt := &ldb_opt.Options{
		ErrorIfExist:   false,
		ErrorIfMissing: false,
	}

	db, err := leveldb.OpenFile(name, opt)
	if nil != err {
		return nil, 0, err
	}

	versionValue, err := db.Get(versionKey, nil)
	if leveldb.ErrNotFound == err {
		return db, 0, nil
	} else if nil != err {
		db.Close()
		return nil, 0, err
	}

	if 4 != len(versionValue) {
		db.Close()
		return nil, 0, fmt.Errorf("incompatible database version length: expected: %d  actual: %d", 4, len(versionValue))
	}

	version := int(binary.BigEndian.Uint32(versionValue))
	return db, version, nil
}

func putVersion(db *leveldb.DB, version int) error {
	currentVersion := make([]byte, 4)
	binary.BigEndian.PutUint32(currentVersion, uint32(version))

	return db.Put(versionKey, currentVersion, nil)
}
