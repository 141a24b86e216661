// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package storage - maintain the on-disk data store
//
// maintain separate pools of a number of elements in key->value form
//
// This maintains two LevelDB databases, each split into a series of
// tables.  Each table is defined by a prefix byte that is obtained
// from the prefix tag in the struct defining the available tables.
//
// Notes:
// 1. each separate pool has a single byte prefix (to spread the keys in LevelDB)
// 2. ++           = concatenation of byte data
// 3. epoch        = big endian uint64 (8 bytes)
// 4. shard id     = big endian uint32 (4 bytes)
// 5. block hash   = microblock header self-hash as 32 byte SHA3-256(data)
// 6. *others*     = byte values of various length
//
// Blocks database:
//
//   M ++ block hash            - microblock store
//                                data: packed microblock (header ++ hash ++ timestamp ++ co-signatures)
//   D ++ epoch ++ block hash   - committed state delta
//                                data: serialized account delta bytes
//
// Index database:
//
//   I ++ epoch ++ shard id     - microblock lookup
//                                data: block hash
//
// Testing:
//
//   Z ++ key                   - testing data
package storage
