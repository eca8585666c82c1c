// Copyright (c) 2018 The ExchangeCoin team
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package covenant implements the per-output spend predicates of spec.md
// section 4.5: parsing of covenant_data and the spend-authorization check
// run against the witness stack positionally aligned to an input. It is
// grounded on the predicate-recognition shape of txscript/stdscript's
// script.go/scriptv0.go, generalized from opcode-script templates to
// typed, length-prefixed covenant records.
package covenant

import "errors"

// Covenant output type tags. Mirrors consensus.CovenantXxx numerically;
// kept as a separate, self-contained constant block so this package does
// not import consensus (which imports covenant), avoiding a cycle.
const (
	TypeP2PK uint16 = iota
	TypeTimelock
	TypeHTLC
	TypeMultisig
	TypeVault
	TypeAnchor
	TypeDACommit
	TypeExtension
)

// Lock modes shared by Timelock, HTLC, and Vault.
const (
	LockModeHeight    uint8 = 0
	LockModeTimestamp uint8 = 1
)

// HTLC preimage length bounds, mirrored from consensus.Min/MaxPreimageLen.
const (
	MinPreimageLen = 16
	MaxPreimageLen = 256
)

// Suite identifiers, mirrored from consensus for the same cycle-avoidance
// reason as the covenant type tags above.
const (
	SuiteSentinel uint8 = 0x00
	SuiteMLDSA87  uint8 = 0x01
	SuiteSLHDSA   uint8 = 0x02
)

var (
	ErrUnknownCovenantType = errors.New("covenant: unknown type")
	ErrBadCovenantData     = errors.New("covenant: malformed covenant_data")
	ErrWitnessMismatch     = errors.New("covenant: witness item count or shape mismatch")
	ErrKeyBindingFailed    = errors.New("covenant: pubkey does not match key_id")
	ErrSuiteMismatch       = errors.New("covenant: witness suite does not match covenant suite")
	ErrTimelockNotMet      = errors.New("covenant: timelock not satisfied")
	ErrSignatureInvalid    = errors.New("covenant: signature verification failed")
	ErrThresholdNotMet     = errors.New("covenant: insufficient valid signatures")
	ErrVaultDelayNotMet    = errors.New("covenant: vault spend delay not satisfied")
	ErrVaultDestination    = errors.New("covenant: recovery spend forbids owner as destination")
	ErrVaultMultiInput     = errors.New("covenant: vault spend must be single-input")
	ErrExtensionNotActive  = errors.New("covenant: extension suite not in active allow-list")
)

// WitnessItem is the covenant-engine view of a parsed wire.WitnessItem.
type WitnessItem struct {
	SuiteID   uint8
	Pubkey    []byte
	Signature []byte
}

// VerifyFunc is the injected signature-verification capability: it
// verifies a suite-tagged signature over a 32-byte digest. It must not
// perform any I/O; see spec.md section 9's capability-injection note.
type VerifyFunc func(suiteID uint8, pubkey, signature []byte, digest [32]byte) bool

// HashFunc is the injected SHA3-256 capability used for key-id binding
// and HTLC preimage checks.
type HashFunc func(b []byte) [32]byte

// LockChecker evaluates absolute height/timestamp locks shared by
// Timelock, HTLC, and Vault.
type LockChecker struct {
	Height         uint64
	BlockTimestamp uint64
}

// Satisfied reports whether the lock described by (mode, value) has been
// reached at the checker's height/timestamp.
func (l LockChecker) Satisfied(mode uint8, value uint64) (bool, error) {
	switch mode {
	case LockModeHeight:
		return l.Height >= value, nil
	case LockModeTimestamp:
		return l.BlockTimestamp >= value, nil
	default:
		return false, ErrBadCovenantData
	}
}

// SpendContext carries everything a covenant's CheckSpend needs beyond the
// covenant_data itself: the witness items positionally aligned to this
// input, the lock checker, the digest to verify signatures against, the
// injected capabilities, the entry being spent, and (for Vault recovery)
// a callback to ask whether a given output would pay back to the owner.
type SpendContext struct {
	Witness        []WitnessItem
	Lock           LockChecker
	CreationHeight uint64
	Sighash        [32]byte
	Verify         VerifyFunc
	Hash           HashFunc

	// NumInputs is the total number of inputs in the spending
	// transaction; Vault requires this to equal 1.
	NumInputs int

	// FeeIsZero reports whether the spending transaction's
	// sum_in == sum_out, i.e. it sponsors no fee. Vault spends require
	// this to be true.
	FeeIsZero bool

	// DestinationForbidden reports whether any transaction output would
	// recreate a claim for the given owner key id (P2PK or Vault output
	// bound to the same key), used by Vault's recovery path.
	DestinationForbidden func(ownerKeyID [32]byte) bool

	// ActiveExtensionSuites is nil before the Extension covenant's
	// governing feature-bit deployment has reached Active; once active,
	// it holds the set of suite ids the profile allows for extension
	// spends.
	ActiveExtensionSuites map[uint8]bool
}

// WitnessItemsConsumed returns how many flat witness-stack items the
// covenant type at the front of data consumes, which the block validator
// uses to slice consensus.Tx.Witness into per-input spans before calling
// CheckSpend. Multisig is the only variable-count type.
func WitnessItemsConsumed(covenantType uint16, data []byte) (int, error) {
	switch covenantType {
	case TypeP2PK:
		return 1, nil
	case TypeTimelock:
		return 1, nil
	case TypeHTLC:
		return 2, nil
	case TypeMultisig:
		n, err := multisigSignerCount(data)
		if err != nil {
			return 0, err
		}
		return n, nil
	case TypeVault:
		return 2, nil
	case TypeExtension:
		return 1, nil
	case TypeAnchor, TypeDACommit:
		return 0, nil
	default:
		return 0, ErrUnknownCovenantType
	}
}

// CheckSpend dispatches to the per-type spend-authorization check. Anchor
// and DA-commit have no spend path at all: their entries are never
// inserted into the UTXO set, so CheckSpend is never reached for them in
// practice; calling it regardless is a hard failure.
func CheckSpend(covenantType uint16, covenantData []byte, ctx SpendContext) error {
	switch covenantType {
	case TypeP2PK:
		return checkP2PKSpend(covenantData, ctx)
	case TypeTimelock:
		return checkTimelockSpend(covenantData, ctx)
	case TypeHTLC:
		return checkHTLCSpend(covenantData, ctx)
	case TypeMultisig:
		return checkMultisigSpend(covenantData, ctx)
	case TypeVault:
		return checkVaultSpend(covenantData, ctx)
	case TypeExtension:
		return checkExtensionSpend(covenantData, ctx)
	case TypeAnchor, TypeDACommit:
		return ErrUnknownCovenantType
	default:
		return ErrUnknownCovenantType
	}
}

// ValidateOutputCovenant performs the parse-time structural check for a
// single output's covenant_data, independent of any spend attempt. Every
// unknown covenant_type is a hard failure per spec.md section 4.5.
func ValidateOutputCovenant(covenantType uint16, value uint64, data []byte) error {
	switch covenantType {
	case TypeP2PK:
		_, err := ParseP2PK(data)
		return err
	case TypeTimelock:
		_, err := ParseTimelock(data)
		return err
	case TypeHTLC:
		_, err := ParseHTLC(data)
		return err
	case TypeMultisig:
		_, err := ParseMultisig(data)
		return err
	case TypeVault:
		_, err := ParseVault(data)
		return err
	case TypeAnchor:
		return ValidateAnchor(value, data)
	case TypeDACommit:
		return ValidateDACommitOutput(data)
	case TypeExtension:
		_, err := ParseExtension(data)
		return err
	default:
		return ErrUnknownCovenantType
	}
}

// isSentinelWitness reports whether item is the keyless placeholder.
func isSentinelWitness(item WitnessItem) bool {
	return item.SuiteID == SuiteSentinel && len(item.Pubkey) == 0 && len(item.Signature) == 0
}
