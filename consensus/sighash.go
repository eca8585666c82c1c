// Copyright (c) 2018 The ExchangeCoin team
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package consensus

import (
	"github.com/rubinprotocol/rubind/chainhash"
	"github.com/rubinprotocol/rubind/wire"
)

// SighashV1 computes the canonical digest binding input i of tx to its
// chain, transaction, input index, and spent input value, per spec.md
// section 4.7.
func SighashV1(chainID chainhash.Hash, tx *Tx, inputIndex int, inputValue uint64, hashFn chainhash.HashFunc) chainhash.Hash {
	pre := wire.NewWriter(256)
	pre.WriteBytes([]byte(SighashTag))
	pre.WriteBytes(chainID[:])
	pre.WriteU32LE(tx.Version)
	pre.WriteU8(tx.TxKind)
	pre.WriteU64LE(tx.TxNonce)

	daCore := tx.SerializeDACore()
	daDigest := hashFn(daCore)
	pre.WriteBytes(daDigest[:])

	prevoutBuf := wire.NewWriter(36 * len(tx.Inputs))
	seqBuf := wire.NewWriter(4 * len(tx.Inputs))
	for _, in := range tx.Inputs {
		prevoutBuf.WriteBytes(in.PrevTxID[:])
		prevoutBuf.WriteU32LE(in.PrevVout)
		seqBuf.WriteU32LE(in.Sequence)
	}
	prevoutsDigest := hashFn(prevoutBuf.Bytes())
	sequencesDigest := hashFn(seqBuf.Bytes())
	pre.WriteBytes(prevoutsDigest[:])
	pre.WriteBytes(sequencesDigest[:])

	pre.WriteU32LE(uint32(inputIndex))
	in := tx.Inputs[inputIndex]
	pre.WriteBytes(in.PrevTxID[:])
	pre.WriteU32LE(in.PrevVout)
	pre.WriteU64LE(inputValue)
	pre.WriteU32LE(in.Sequence)

	outBuf := wire.NewWriter(64 * len(tx.Outputs))
	for _, out := range tx.Outputs {
		EncodeTxOutput(outBuf, out)
	}
	outputsDigest := hashFn(outBuf.Bytes())
	pre.WriteBytes(outputsDigest[:])

	pre.WriteU32LE(tx.Locktime)

	return hashFn(pre.Bytes())
}
