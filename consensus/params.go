// Copyright (c) 2018 The ExchangeCoin team
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package consensus implements the pure, deterministic block and
// transaction validator: wire parsing, proof-of-work and retarget, the
// covenant engine, sighash v1, the UTXO applier, and the stateless/
// stateful block validator. It is grounded on blockchain/*.go from the
// teacher, generalized from Decred's stake-aware chain to this plain
// UTXO + PoW design.
package consensus

// Authoritative consensus constants (spec.md section 6).
const (
	TxVersion = 1

	MaxTxInputs          = 1024
	MaxTxOutputs         = 1024
	MaxWitnessItems       = 1024
	MaxWitnessBytesPerTx = 100000
	MaxScriptSigBytes    = 32

	HeaderSize = 116

	TargetBlockIntervalSeconds = 120
	RetargetWindow             = 10080
	CoinbaseMaturity           = 100
	MaxFutureDriftSeconds      = 7200
	MaxTimestampStepSeconds    = 1200

	SignalWindow    = 2016
	SignalThreshold = 1815

	EmissionSpeedFactor  = 20
	TailEmissionPerBlock = 19025875
	MineableCap          = 4900000000000000

	MLDSA87PubkeyLen    = 2592
	MLDSA87SignatureLen = 4627
	SLHDSAPubkeyLen     = 64
	SLHDSAMaxSigLen     = 49856
	SLHDSAActivationHeight = 1000000

	VerifyCostMLDSA87      = 8
	VerifyCostSLHDSA       = 64
	VerifyCostUnknownAllow = 64
	WitnessDiscountDivisor = 4

	MaxBlockWeight         = 68000000
	MaxDABytesPerBlock     = 32000000
	MaxAnchorBytesPerBlock = 131072

	MaxPreimageLen = 256
	MinPreimageLen = 16

	MaxDAChunkCount = 4096
)

// Suite identifiers for WitnessItem.suite_id.
const (
	SuiteSentinel uint8 = 0x00
	SuiteMLDSA87  uint8 = 0x01
	SuiteSLHDSA   uint8 = 0x02
)

// Transaction kinds.
const (
	TxKindStandard uint8 = 0x00
	TxKindDACommit uint8 = 0x01
	TxKindDAChunk  uint8 = 0x02
)

// Covenant types (TxOutput.covenant_type).
const (
	CovenantP2PK uint16 = iota
	CovenantTimelock
	CovenantHTLC
	CovenantMultisig
	CovenantVault
	CovenantAnchor
	CovenantDACommit
	CovenantExtension
)

// Lock modes shared by Timelock, HTLC, and Vault covenants.
const (
	LockModeHeight    uint8 = 0
	LockModeTimestamp uint8 = 1
)

// Domain-separation tags.
const (
	SighashTag      = "RUBINv2-sighash/"
	WitnessTag      = "RUBIN-WITNESS/"
	UTXOSetHashTag  = "RUBINv1-utxo-set-hash/"
	GenesisTag      = "RUBIN-GENESIS-v1"
	MerkleLeafTxID  = 0x00
	MerkleNodeTxID  = 0x01
	MerkleLeafWtxid = 0x02
	MerkleNodeWtxid = 0x03
)
