// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dirservice

import (
	"github.com/openshard/dsnoded/committee"
	"github.com/openshard/dsnoded/fault"
	"github.com/openshard/dsnoded/microblock"
	"github.com/openshard/dsnoded/multisig"
)

// VerifyCoSignature - check the second-round aggregate signature
//
// the signers named by B2 must be exactly the consensus quorum of the
// producing committee, and CS2 must verify over the packed header
// followed by CS1 and the wire form of B1
func VerifyCoSignature(mb *microblock.MicroBlock, ref committee.ShardRef) error {
	globalData.RLock()
	source := globalData.source
	globalData.RUnlock()

	if nil == source {
		return fault.ErrNotInitialised
	}
	return verifyCoSignature(source, mb, ref)
}

func verifyCoSignature(source committee.Source, mb *microblock.MicroBlock, ref committee.ShardRef) error {

	members, err := committee.Select(source, ref)
	if nil != err {
		return err
	}

	if members.Size() != len(mb.B2) {
		globalData.log.Warnf("committee: %s size: %d  co-sig bitmap size: %d",
			ref, members.Size(), len(mb.B2))
		return fault.ErrBitmapSizeMismatch
	}

	count := microblock.CountSet(mb.B2)
	if count != committee.NumForConsensus(members.Size()) {
		globalData.log.Warnf("co-signature signed by %d of %d, need exactly %d",
			count, members.Size(), committee.NumForConsensus(members.Size()))
		return fault.ErrInsufficientSigners
	}

	aggregated, err := multisig.AggregatePublicKeys(members.PublicKeys(), mb.B2)
	if nil != err {
		return err
	}

	message := mb.CoSignatureMessage()
	if !multisig.Verify(aggregated, message, mb.CS2) {
		globalData.log.Warn("co-signature verification failed, signers:")
		for i, member := range members {
			if mb.B2[i] {
				globalData.log.Warnf("  %x", member.PublicKey[:])
			}
		}
		return fault.ErrInvalidCoSignature
	}

	return nil
}
