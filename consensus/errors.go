// Copyright (c) 2018 The ExchangeCoin team
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package consensus

import (
	"errors"
	"fmt"
)

// ErrorKind identifies a tagged consensus error per spec.md section 7. Two
// families exist: transaction-level (ErrTx*) and block-level (ErrBlock*).
type ErrorKind int

const (
	// Transaction-level error kinds.
	ErrTxParse ErrorKind = iota
	ErrTxWitnessOverflow
	ErrTxSigNonCanonical
	ErrTxSigAlgInvalid
	ErrTxSigInvalid
	ErrTxTimelockNotMet
	ErrTxValueConservation
	ErrTxNonceInvalid
	ErrTxSequenceInvalid
	ErrTxNonceReplay
	ErrTxCovenantTypeInvalid
	ErrTxVaultDelayNotMet
	ErrTxVaultDestinationForbidden
	ErrTxVaultMultiInput
	ErrTxMissingUTXO
	ErrTxCoinbaseImmature

	// Block-level error kinds.
	ErrBlockParse
	ErrBlockWeightExceeded
	ErrBlockAnchorBytesExceeded
	ErrBlockPoWInvalid
	ErrBlockTargetInvalid
	ErrBlockLinkageInvalid
	ErrBlockMerkleInvalid
	ErrBlockWitnessCommitment
	ErrBlockCoinbaseInvalid
	ErrBlockSubsidyExceeded
	ErrBlockTimestampOld
	ErrBlockTimestampFuture
	ErrBlockDAExceeded
	ErrBlockDAInvalid
)

var errorKindStrings = map[ErrorKind]string{
	ErrTxParse:                     "TX_ERR_PARSE",
	ErrTxWitnessOverflow:           "TX_ERR_WITNESS_OVERFLOW",
	ErrTxSigNonCanonical:           "TX_ERR_SIG_NONCANONICAL",
	ErrTxSigAlgInvalid:             "TX_ERR_SIG_ALG_INVALID",
	ErrTxSigInvalid:                "TX_ERR_SIG_INVALID",
	ErrTxTimelockNotMet:            "TX_ERR_TIMELOCK_NOT_MET",
	ErrTxValueConservation:         "TX_ERR_VALUE_CONSERVATION",
	ErrTxNonceInvalid:              "TX_ERR_TX_NONCE_INVALID",
	ErrTxSequenceInvalid:           "TX_ERR_SEQUENCE_INVALID",
	ErrTxNonceReplay:               "TX_ERR_NONCE_REPLAY",
	ErrTxCovenantTypeInvalid:       "TX_ERR_COVENANT_TYPE_INVALID",
	ErrTxVaultDelayNotMet:          "TX_ERR_VAULT_DELAY_NOT_MET",
	ErrTxVaultDestinationForbidden: "TX_ERR_VAULT_DESTINATION_FORBIDDEN",
	ErrTxVaultMultiInput:           "TX_ERR_VAULT_MULTI_INPUT",
	ErrTxMissingUTXO:               "TX_ERR_MISSING_UTXO",
	ErrTxCoinbaseImmature:          "TX_ERR_COINBASE_IMMATURE",

	ErrBlockParse:               "BLOCK_ERR_PARSE",
	ErrBlockWeightExceeded:      "BLOCK_ERR_WEIGHT_EXCEEDED",
	ErrBlockAnchorBytesExceeded: "BLOCK_ERR_ANCHOR_BYTES_EXCEEDED",
	ErrBlockPoWInvalid:          "BLOCK_ERR_POW_INVALID",
	ErrBlockTargetInvalid:       "BLOCK_ERR_TARGET_INVALID",
	ErrBlockLinkageInvalid:      "BLOCK_ERR_LINKAGE_INVALID",
	ErrBlockMerkleInvalid:       "BLOCK_ERR_MERKLE_INVALID",
	ErrBlockWitnessCommitment:   "BLOCK_ERR_WITNESS_COMMITMENT",
	ErrBlockCoinbaseInvalid:     "BLOCK_ERR_COINBASE_INVALID",
	ErrBlockSubsidyExceeded:     "BLOCK_ERR_SUBSIDY_EXCEEDED",
	ErrBlockTimestampOld:        "BLOCK_ERR_TIMESTAMP_OLD",
	ErrBlockTimestampFuture:     "BLOCK_ERR_TIMESTAMP_FUTURE",
	ErrBlockDAExceeded:          "BLOCK_ERR_DA_EXCEEDED",
	ErrBlockDAInvalid:           "BLOCK_ERR_DA_INVALID",
}

// String returns the upper-case error code spec.md section 7 names, used
// verbatim on the conformance surface.
func (e ErrorKind) String() string {
	if s, ok := errorKindStrings[e]; ok {
		return s
	}
	return "UNKNOWN_ERR"
}

// RuleError identifies a rule violation. It carries both an ErrorKind for
// programmatic dispatch and a human description for logs, mirroring the
// teacher's ruleError/RuleError split in blockchain/subsidy.go.
type RuleError struct {
	Kind        ErrorKind
	Description string
}

// Error satisfies the error interface.
func (e RuleError) Error() string {
	return e.Description
}

// ruleError creates a RuleError given a kind and description.
func ruleError(kind ErrorKind, desc string) RuleError {
	return RuleError{Kind: kind, Description: desc}
}

// ruleErrorf is a convenience wrapper that formats the description.
func ruleErrorf(kind ErrorKind, format string, args ...interface{}) RuleError {
	return RuleError{Kind: kind, Description: fmt.Sprintf(format, args...)}
}

// KindOf extracts the ErrorKind from err if it is (or wraps) a RuleError.
func KindOf(err error) (ErrorKind, bool) {
	var re RuleError
	if !errors.As(err, &re) {
		return 0, false
	}
	return re.Kind, true
}
