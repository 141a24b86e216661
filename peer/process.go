// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package peer

import (
	"github.com/gogo/protobuf/proto"

	"github.com/openshard/dsnoded/dirservice"
	"github.com/openshard/dsnoded/fault"
	"github.com/openshard/dsnoded/microblock"
	"github.com/openshard/dsnoded/multisig"
	"github.com/openshard/dsnoded/ratelimit"
)

// submission envelope types
const (
	shardMicroBlock   uint32 = 0
	missingMicroBlock uint32 = 1
)

// a repair batch carries at most one microblock per shard
const maximumSubmissionCount = 1024

// decode a submission envelope and feed it to the matching intake path
//
// every microblock in the batch is decoded first; the sender's
// authority is then checked before any block is handed to dirservice:
// a shard submission must come from a registered shard node, a repair
// batch from a fellow DS committee member
func (lstn *listener) processSubmission(parameters [][]byte) (uint64, error) {

	log := lstn.log

	if 1 != len(parameters) {
		return 0, fault.ErrMissingParameters
	}

	submission := &Submission{}
	if err := proto.Unmarshal(parameters[0], submission); nil != err {
		log.Warnf("undecodable submission: error: %s", err)
		return 0, err
	}

	if err := ratelimit.LimitN(lstn.limiter, len(submission.GetMicroBlocks()), maximumSubmissionCount); nil != err {
		return 0, err
	}

	senderKey, err := multisig.PublicKeyFromBytes(submission.GetSenderPublicKey())
	if nil != err {
		log.Warnf("invalid sender key: error: %s", err)
		return 0, err
	}

	microBlocks := make([]*microblock.MicroBlock, len(submission.GetMicroBlocks()))
	for i, packed := range submission.GetMicroBlocks() {
		mb, err := microblock.Unpack(microblock.PackedMicroBlock(packed))
		if nil != err {
			log.Warnf("undecodable microblock[%d]: error: %s", i, err)
			return 0, err
		}
		microBlocks[i] = mb
	}

	epoch := submission.GetEpoch()
	deltas := submission.GetStateDeltas()

	switch submission.GetSubmitType() {

	case shardMicroBlock:
		if !dirservice.CheckIfShardNode(senderKey) {
			log.Warnf("submission sender: %x is not a shard node", senderKey[:])
			return 0, fault.ErrSenderNotAuthorised
		}
		return epoch, dirservice.DispatchShardSubmission(epoch, microBlocks, deltas)

	case missingMicroBlock:
		if !dirservice.CheckIfDSNode(senderKey) {
			log.Warnf("repair sender: %x is not a ds node", senderKey[:])
			return 0, fault.ErrSenderNotAuthorised
		}
		return epoch, dirservice.ProcessMissingSubmission(epoch, microBlocks, deltas)
	}

	log.Warnf("unknown submission type: %d", submission.GetSubmitType())
	return 0, fault.ErrInvalidSubmissionType
}
