// Copyright (c) 2018 The ExchangeCoin team
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package consensus

import (
	"sort"

	"github.com/rubinprotocol/rubind/chainhash"
	"github.com/rubinprotocol/rubind/consensus/covenant"
)

// Capabilities bundles the injected, pure capabilities the validator is
// parameterized over per spec.md section 9: hashing and signature
// verification. No other external effect is permitted to reach the
// validator.
type Capabilities struct {
	Hash   chainhash.HashFunc
	Verify covenant.VerifyFunc
}

// StatelessContext carries everything a stateless check needs that is not
// contained in the block bytes themselves.
type StatelessContext struct {
	ChainID           chainhash.Hash
	ExpectedPrevHash  chainhash.Hash
	Target            [32]byte
	MedianTimePast    uint64 // MTP of the last <=11 ancestors
	ParentTimestamp   uint64
	LocalClockUnix    uint64
	Height            uint64
	Caps              Capabilities
}

// StatelessValidate runs every check spec.md section 4.10 assigns to the
// stateless phase: PoW, linkage, Merkle root, per-tx structural bounds,
// covenant parse checks, coinbase shape, nonce uniqueness, timestamp
// bounds, and the weight/anchor/DA caps.
func StatelessValidate(b *Block, ctx StatelessContext) error {
	blockHash := b.Header.BlockHash(ctx.Caps.Hash)
	if !CheckProofOfWork(blockHash, ctx.Target) {
		return ruleError(ErrBlockPoWInvalid, "block hash does not satisfy target")
	}
	if b.Header.PrevBlock != ctx.ExpectedPrevHash {
		return ruleError(ErrBlockLinkageInvalid, "prev_block_hash does not match expected parent")
	}

	if b.Header.Timestamp <= ctx.MedianTimePast {
		return ruleError(ErrBlockTimestampOld, "timestamp not after median time past")
	}
	if ctx.LocalClockUnix+MaxFutureDriftSeconds < b.Header.Timestamp {
		return ruleError(ErrBlockTimestampFuture, "timestamp too far in the future")
	}
	if b.Header.Timestamp > ctx.ParentTimestamp &&
		b.Header.Timestamp-ctx.ParentTimestamp > MaxTimestampStepSeconds {
		return ruleError(ErrBlockTimestampFuture, "timestamp step from parent too large")
	}

	gotRoot := TxIDMerkleRoot(b.TxIDs(), ctx.Caps.Hash)
	if gotRoot != b.Header.MerkleRoot {
		return ruleError(ErrBlockMerkleInvalid, "merkle root mismatch")
	}

	if len(b.Txs) == 0 || !b.Txs[0].IsCoinbase() {
		return ruleError(ErrBlockCoinbaseInvalid, "missing or malformed coinbase at index 0")
	}
	for i, tx := range b.Txs[1:] {
		if tx.IsCoinbase() {
			return ruleErrorf(ErrBlockCoinbaseInvalid, "unexpected coinbase at index %d", i+1)
		}
	}
	if cb := b.Txs[0]; cb.Locktime != uint32(ctx.Height) {
		return ruleError(ErrBlockCoinbaseInvalid, "coinbase locktime does not equal block height")
	}

	seenNonces := make(map[uint64]struct{}, len(b.Txs))
	var totalWeight, totalAnchor, totalDA uint64
	for i, tx := range b.Txs {
		if i > 0 {
			if tx.TxNonce == 0 {
				return ruleError(ErrTxNonceInvalid, "non-coinbase tx_nonce must be nonzero")
			}
			if _, dup := seenNonces[tx.TxNonce]; dup {
				return ruleError(ErrTxNonceReplay, "duplicate tx_nonce in block")
			}
			seenNonces[tx.TxNonce] = struct{}{}
		}
		for _, out := range tx.Outputs {
			if err := covenant.ValidateOutputCovenant(out.CovenantType, out.Value, out.CovenantData); err != nil {
				return ruleError(ErrTxCovenantTypeInvalid, "covenant_data failed parse-time validation")
			}
		}
		weight, _, daBytes := TxWeight(tx)
		totalWeight += weight
		totalAnchor += tx.AnchorBytes()
		totalDA += daBytes
	}
	if totalWeight > MaxBlockWeight {
		return ruleError(ErrBlockWeightExceeded, "block weight exceeds cap")
	}
	if totalAnchor > MaxAnchorBytesPerBlock {
		return ruleError(ErrBlockAnchorBytesExceeded, "anchor bytes exceed per-block cap")
	}
	if totalDA > MaxDABytesPerBlock {
		return ruleError(ErrBlockDAExceeded, "DA bytes exceed per-block cap")
	}

	return nil
}

// sortedUint64 is a tiny helper kept local for median-time-past callers
// that have not already sorted their ancestor timestamps.
func sortedUint64(xs []uint64) []uint64 {
	out := append([]uint64(nil), xs...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// MedianTimePast returns the median of up to the last 11 ancestor
// timestamps, per the MTP definition in the glossary.
func MedianTimePast(ancestorTimestamps []uint64) uint64 {
	if len(ancestorTimestamps) == 0 {
		return 0
	}
	sorted := sortedUint64(ancestorTimestamps)
	return sorted[len(sorted)/2]
}
