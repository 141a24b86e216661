// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

// error base
type GenericError string

// to allow for different classes of errors
type ExistsError GenericError
type InvalidError GenericError
type NotFoundError GenericError
type ProcessError GenericError

// common errors - keep in alphabetic order
var (
	ErrAlreadyInitialised         = ExistsError("already initialised")
	ErrBitmapSizeMismatch         = InvalidError("bitmap size does not match committee size")
	ErrCommitteeHashMismatch      = InvalidError("committee hash mismatch")
	ErrDoubleInitialise           = ExistsError("double initialise")
	ErrInsufficientSigners        = InvalidError("insufficient signers for consensus")
	ErrInvalidBitvector           = InvalidError("invalid bitvector encoding")
	ErrInvalidBlockHash           = InvalidError("invalid block hash")
	ErrInvalidChain               = InvalidError("invalid chain")
	ErrInvalidCoSignature         = InvalidError("invalid co-signature")
	ErrInvalidCount               = InvalidError("invalid count")
	ErrInvalidCursor              = InvalidError("invalid cursor")
	ErrInvalidDSBlockNumber       = InvalidError("invalid ds block number")
	ErrInvalidEpoch               = InvalidError("invalid epoch")
	ErrInvalidIPAddress           = InvalidError("invalid ip Address")
	ErrInvalidKeyLength           = InvalidError("invalid key length")
	ErrInvalidLoggerChannel       = InvalidError("invalid logger channel")
	ErrInvalidPortNumber          = InvalidError("invalid port number")
	ErrInvalidPrivateKeyFile      = InvalidError("invalid private key file")
	ErrInvalidPublicKey           = InvalidError("invalid public key")
	ErrInvalidPublicKeyFile       = InvalidError("invalid public key file")
	ErrInvalidShardId             = InvalidError("invalid shard id")
	ErrInvalidSignature           = InvalidError("invalid signature")
	ErrInvalidStructureVersion    = InvalidError("invalid structure version")
	ErrInvalidSubmissionType      = InvalidError("invalid submission type")
	ErrInvalidTimestamp           = InvalidError("invalid timestamp")
	ErrKeyFileAlreadyExists       = ExistsError("key file already exists")
	ErrMicroBlockAlreadyExists    = ExistsError("microblock already exists")
	ErrMicroBlockNotFound         = NotFoundError("microblock not found")
	ErrMicroBlockNotMissing       = InvalidError("microblock was not requested as missing")
	ErrMicroBlocksStillMissing    = ProcessError("microblocks still missing after repair")
	ErrMicroBlockVersion          = InvalidError("microblock version is not supported")
	ErrMissingParameters          = InvalidError("missing parameters")
	ErrNotConnected               = NotFoundError("not connected")
	ErrNotInitialised             = NotFoundError("not initialised")
	ErrNotMicroBlockHeader        = InvalidError("not micro block header")
	ErrNotPrivateKey              = InvalidError("not private key")
	ErrNotPublicKey               = InvalidError("not public key")
	ErrNotShardMember             = InvalidError("sender is not a member of the named shard")
	ErrRateLimiting               = ProcessError("rate limiting")
	ErrSenderNotAuthorised        = InvalidError("sender is not authorised")
	ErrShardAlreadySubmitted      = ExistsError("shard already submitted for this epoch")
	ErrStateDeltaEmpty            = InvalidError("state delta is empty")
	ErrStateDeltaHashMismatch     = InvalidError("state delta hash mismatch")
	ErrStateDeltaProcessingFailed = ProcessError("state delta processing failed")
	ErrSubmissionNotCurrent       = InvalidError("submission is not for a current block")
	ErrUnexpectedTransitionState  = InvalidError("unexpected transition state")
	ErrWrongNetworkForPublicKey   = InvalidError("wrong network for public key")
)

// the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e ExistsError) Error() string   { return string(e) }
func (e InvalidError) Error() string  { return string(e) }
func (e NotFoundError) Error() string { return string(e) }
func (e ProcessError) Error() string  { return string(e) }

// determine the class of an error
func IsErrExists(e error) bool   { _, ok := e.(ExistsError); return ok }
func IsErrInvalid(e error) bool  { _, ok := e.(InvalidError); return ok }
func IsErrNotFound(e error) bool { _, ok := e.(NotFoundError); return ok }
func IsErrProcess(e error) bool  { _, ok := e.(ProcessError); return ok }
