// Copyright (c) 2018 The ExchangeCoin team
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package sigverify implements the signature-verification capability the
// consensus validator is parameterized over (spec.md section 9): a pure
// function from (suite, pubkey, signature, digest) to a boolean, backed by
// the two post-quantum suites named in spec.md section 6, plus a
// verification cache so a block validator or mempool never re-checks the
// same (digest, pubkey, signature) triple twice.
package sigverify

import "github.com/rubinprotocol/rubind/consensus/covenant"

// Verifier is the injected signature-verification capability. Suite is
// the WitnessItem's suite_id; digest is always the 32-byte sighash.
type Verifier interface {
	Verify(suiteID uint8, pubkey, signature []byte, digest [32]byte) bool
}

// Func adapts a plain function to Verifier.
type Func func(suiteID uint8, pubkey, signature []byte, digest [32]byte) bool

// Verify implements Verifier.
func (f Func) Verify(suiteID uint8, pubkey, signature []byte, digest [32]byte) bool {
	return f(suiteID, pubkey, signature, digest)
}

// AsCovenantVerifyFunc adapts a Verifier to the covenant package's
// VerifyFunc signature, so the covenant engine never imports sigverify
// directly (avoiding a cycle: sigverify already imports covenant for its
// suite constants).
func AsCovenantVerifyFunc(v Verifier) covenant.VerifyFunc {
	return func(suiteID uint8, pubkey, signature []byte, digest [32]byte) bool {
		return v.Verify(suiteID, pubkey, signature, digest)
	}
}
