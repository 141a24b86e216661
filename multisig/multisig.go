// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2018 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package multisig

import (
	"math/big"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/openshard/dsnoded/fault"
)

// byte sizes of the compressed curve points
const (
	PublicKeySize  = bls12381.SizeOfG1AffineCompressed
	SignatureSize  = bls12381.SizeOfG2AffineCompressed
	PrivateKeySize = fr.Bytes
)

// domain separation tag for hash-to-curve
var signatureDST = []byte("BLS_SIG_BLS12381G2_XMD:SHA-256_SSWU_RO_NUL_")

// PublicKey - compressed G1 point
type PublicKey [PublicKeySize]byte

// Signature - compressed G2 point
type Signature [SignatureSize]byte

// PrivateKey - scalar of the signing key
type PrivateKey struct {
	scalar fr.Element
}

// GenerateKeyPair - create a random signing key and its public key
func GenerateKeyPair() (*PrivateKey, PublicKey, error) {

	priv := new(PrivateKey)
	if _, err := priv.scalar.SetRandom(); nil != err {
		return nil, PublicKey{}, err
	}
	return priv, priv.PublicKey(), nil
}

// PrivateKeyFromBytes - reconstruct a signing key from its big endian scalar bytes
func PrivateKeyFromBytes(buffer []byte) (*PrivateKey, error) {
	if PrivateKeySize != len(buffer) {
		return nil, fault.ErrInvalidKeyLength
	}
	priv := new(PrivateKey)
	priv.scalar.SetBytes(buffer)
	if priv.scalar.IsZero() {
		return nil, fault.ErrNotPrivateKey
	}
	return priv, nil
}

// Bytes - big endian scalar bytes of the signing key
func (priv *PrivateKey) Bytes() []byte {
	b := priv.scalar.Bytes()
	return b[:]
}

// PublicKey - corresponding compressed public key
func (priv *PrivateKey) PublicKey() PublicKey {

	_, _, g1, _ := bls12381.Generators()

	var s big.Int
	priv.scalar.BigInt(&s)

	var p bls12381.G1Affine
	p.ScalarMultiplication(&g1, &s)

	return PublicKey(p.Bytes())
}

// Sign - BLS signature over a message: H(m) scaled by the secret key
func (priv *PrivateKey) Sign(message []byte) (Signature, error) {

	hm, err := bls12381.HashToG2(message, signatureDST)
	if nil != err {
		return Signature{}, err
	}

	var s big.Int
	priv.scalar.BigInt(&s)

	var sig bls12381.G2Affine
	sig.ScalarMultiplication(&hm, &s)

	return Signature(sig.Bytes()), nil
}

// PublicKeyFromBytes - validate and convert a compressed public key
func PublicKeyFromBytes(buffer []byte) (PublicKey, error) {
	if PublicKeySize != len(buffer) {
		return PublicKey{}, fault.ErrInvalidKeyLength
	}
	var p bls12381.G1Affine
	if _, err := p.SetBytes(buffer); nil != err {
		return PublicKey{}, fault.ErrNotPublicKey
	}
	var publicKey PublicKey
	copy(publicKey[:], buffer)
	return publicKey, nil
}

// IsZero - true for the all-zero placeholder key
func (publicKey PublicKey) IsZero() bool {
	return publicKey == PublicKey{}
}

// AggregatePublicKeys - sum the selected public keys into one aggregate key
//
// the keys slice and the bitmap walk in step; only keys at true
// bitmap positions contribute
func AggregatePublicKeys(keys []PublicKey, bitmap []bool) (PublicKey, error) {

	if len(keys) != len(bitmap) {
		return PublicKey{}, fault.ErrBitmapSizeMismatch
	}

	var agg bls12381.G1Jac
	count := 0

	for i, use := range bitmap {
		if !use {
			continue
		}
		var p bls12381.G1Affine
		if _, err := p.SetBytes(keys[i][:]); nil != err {
			return PublicKey{}, fault.ErrNotPublicKey
		}
		if 0 == count {
			agg.FromAffine(&p)
		} else {
			agg.AddMixed(&p)
		}
		count += 1
	}

	if 0 == count {
		return PublicKey{}, fault.ErrInsufficientSigners
	}

	var result bls12381.G1Affine
	result.FromJacobian(&agg)
	return PublicKey(result.Bytes()), nil
}

// AggregateSignatures - sum individual signatures into one aggregate signature
func AggregateSignatures(signatures []Signature) (Signature, error) {

	if 0 == len(signatures) {
		return Signature{}, fault.ErrInvalidSignature
	}

	var agg bls12381.G2Jac

	for i, signature := range signatures {
		var p bls12381.G2Affine
		if _, err := p.SetBytes(signature[:]); nil != err {
			return Signature{}, fault.ErrInvalidSignature
		}
		if 0 == i {
			agg.FromAffine(&p)
		} else {
			agg.AddMixed(&p)
		}
	}

	var result bls12381.G2Affine
	result.FromJacobian(&agg)
	return Signature(result.Bytes()), nil
}

// Verify - check an aggregate signature over a message under an aggregate public key
//
// pairing equation: e(pk, H(m)) == e(g1, sig)
func Verify(publicKey PublicKey, message []byte, signature Signature) bool {

	var pk bls12381.G1Affine
	if _, err := pk.SetBytes(publicKey[:]); nil != err {
		return false
	}
	if pk.IsInfinity() {
		return false
	}

	var sig bls12381.G2Affine
	if _, err := sig.SetBytes(signature[:]); nil != err {
		return false
	}

	hm, err := bls12381.HashToG2(message, signatureDST)
	if nil != err {
		return false
	}

	_, _, g1, _ := bls12381.Generators()
	var negG1 bls12381.G1Affine
	negG1.Neg(&g1)

	ok, err := bls12381.PairingCheck(
		[]bls12381.G1Affine{pk, negG1},
		[]bls12381.G2Affine{hm, sig},
	)
	if nil != err {
		return false
	}
	return ok
}
