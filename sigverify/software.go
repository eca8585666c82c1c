// Copyright (c) 2018 The ExchangeCoin team
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package sigverify

import (
	"github.com/cloudflare/circl/sign/mldsa/mldsa87"
	"github.com/cloudflare/circl/sign/slhdsa"

	"github.com/rubinprotocol/rubind/consensus/covenant"
)

// slhdsaParams is the SLH-DSA-SHAKE-256f parameter set named in spec.md
// section 6. It is the "fast" SHAKE-256 instance: larger signatures,
// cheaper signing, the tradeoff this chain accepts for its tail-emission
// validator set.
var slhdsaParams = slhdsa.ParamIDSHAKE256f

// Software is the deterministic, pure-software signature verifier both
// entrypoints use by default. It implements Verifier
// directly against circl's ML-DSA-87 and SLH-DSA-SHAKE-256f primitives,
// with no I/O and no shared mutable state, per spec.md section 9's
// capability-injection note.
type Software struct{}

// NewSoftware returns a ready-to-use software Verifier.
func NewSoftware() Software {
	return Software{}
}

// Verify implements Verifier.
func (Software) Verify(suiteID uint8, pubkey, signature []byte, digest [32]byte) bool {
	switch suiteID {
	case covenant.SuiteMLDSA87:
		if len(pubkey) != mldsa87.PublicKeySize {
			return false
		}
		var pk mldsa87.PublicKey
		if err := pk.UnmarshalBinary(pubkey); err != nil {
			return false
		}
		return mldsa87.Verify(&pk, digest[:], nil, signature)
	case covenant.SuiteSLHDSA:
		pk, err := slhdsaParams.PublicKeyFromBytes(pubkey)
		if err != nil {
			return false
		}
		return slhdsa.Verify(pk, digest[:], signature, slhdsa.VerifyOptions{})
	default:
		return false
	}
}
