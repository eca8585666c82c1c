// Copyright (c) 2018 The ExchangeCoin team
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package consensus

import (
	"testing"

	"github.com/rubinprotocol/rubind/chainhash"
	"github.com/rubinprotocol/rubind/wire"
)

// FuzzReadCompactSize checks that any bytes accepted by ReadCompactSize
// re-encode to the exact prefix that was consumed, and that rejected
// encodings never panic.
func FuzzReadCompactSize(f *testing.F) {
	f.Add([]byte{0x00})
	f.Add([]byte{0xfc})
	f.Add([]byte{0xfd, 0x00, 0x01})
	f.Add([]byte{0xfe, 0x00, 0x00, 0x01, 0x00})
	f.Add([]byte{0xff, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00})
	f.Fuzz(func(t *testing.T, b []byte) {
		r := wire.NewReader(b)
		v, err := r.ReadCompactSize()
		if err != nil {
			return
		}
		w := wire.NewWriter(9)
		w.WriteCompactSize(v)
		consumed := len(b) - r.Remaining()
		if consumed != len(w.Bytes()) {
			t.Fatalf("ReadCompactSize consumed %d bytes, canonical encoding is %d bytes", consumed, len(w.Bytes()))
		}
		for i, bb := range w.Bytes() {
			if b[i] != bb {
				t.Fatalf("ReadCompactSize accepted a non-canonical prefix: got %x want %x", b[:consumed], w.Bytes())
			}
		}
	})
}

// FuzzParseTx only asserts the parser never panics and, when it accepts a
// tx, EncodeTx(ParseTx(b)) reproduces a transaction that reparses cleanly.
func FuzzParseTx(f *testing.F) {
	f.Add(minimalCoinbaseTxBytesForFuzz())
	f.Fuzz(func(t *testing.T, b []byte) {
		if len(b) > 1<<20 {
			return
		}
		tx, err := ParseTx(wire.NewReader(b))
		if err != nil {
			return
		}
		w := wire.NewWriter(len(b))
		EncodeTx(w, tx)
		if _, err := ParseTx(wire.NewReader(w.Bytes())); err != nil {
			t.Fatalf("re-encoded tx failed to reparse: %v", err)
		}
	})
}

// FuzzParseBlock asserts the parser never panics on arbitrary input and
// never accepts a block with zero transactions.
func FuzzParseBlock(f *testing.F) {
	f.Add(minimalBlockBytesForFuzz())
	f.Fuzz(func(t *testing.T, b []byte) {
		if len(b) > 1<<20 {
			return
		}
		blk, err := ParseBlock(b)
		if err != nil {
			return
		}
		if len(blk.Txs) == 0 {
			t.Fatalf("ParseBlock accepted a block with zero transactions")
		}
	})
}

// FuzzRetargetV1Arithmetic asserts RetargetV1 is a pure, deterministic
// function of its inputs and never exceeds PowLimit.
func FuzzRetargetV1Arithmetic(f *testing.F) {
	f.Add(maxTarget[:], uint64(0), uint64(TargetBlockIntervalSeconds)*uint64(RetargetWindow))
	f.Add([]byte{0x01}, uint64(100), uint64(50))
	f.Fuzz(func(t *testing.T, oldRaw []byte, firstTs uint64, lastTs uint64) {
		if len(oldRaw) == 0 || len(oldRaw) > 32 {
			return
		}
		var old [32]byte
		copy(old[32-len(oldRaw):], oldRaw)

		got1 := RetargetV1(old, firstTs, lastTs)
		got2 := RetargetV1(old, firstTs, lastTs)
		if got1 != got2 {
			t.Fatalf("RetargetV1 is not deterministic for identical inputs")
		}
		if targetToBig(got1).Cmp(PowLimit) > 0 {
			t.Fatalf("RetargetV1 produced a target above PowLimit")
		}
	})
}

// FuzzBlockSubsidy asserts BlockSubsidy is zero at height 0 and never
// below the tail emission floor at any other height.
func FuzzBlockSubsidy(f *testing.F) {
	f.Add(uint64(1), uint64(0))
	f.Add(uint64(1), MineableCap)
	f.Add(uint64(1_000_000), MineableCap/2)
	f.Fuzz(func(t *testing.T, height uint64, alreadyGenerated uint64) {
		got := BlockSubsidy(height, alreadyGenerated)
		if height == 0 && got != 0 {
			t.Fatalf("BlockSubsidy(0, ...) = %d, want 0", got)
		}
		if got < TailEmissionPerBlock && height != 0 {
			t.Fatalf("BlockSubsidy(%d, %d) = %d, below tail emission floor", height, alreadyGenerated, got)
		}
	})
}

// FuzzCheckProofOfWork asserts the comparison is a pure function and that a
// hash is never considered valid against a target equal to itself.
func FuzzCheckProofOfWork(f *testing.F) {
	f.Add([]byte{0x00, 0x01}, []byte{0x80})
	f.Add([]byte{0xff, 0x01}, []byte{0x80})
	f.Fuzz(func(t *testing.T, hashRaw []byte, targetRaw []byte) {
		if len(hashRaw) > 32 || len(targetRaw) > 32 {
			return
		}
		var hash, target chainhash.Hash
		copy(hash[32-len(hashRaw):], hashRaw)
		copy(target[32-len(targetRaw):], targetRaw)

		got1 := CheckProofOfWork(hash, target)
		got2 := CheckProofOfWork(hash, target)
		if got1 != got2 {
			t.Fatalf("CheckProofOfWork is not deterministic")
		}
		if hash == target && got1 {
			t.Fatalf("CheckProofOfWork accepted a hash exactly equal to target")
		}
	})
}

func minimalCoinbaseTxBytesForFuzz() []byte {
	tx := &Tx{
		Version: TxVersion,
		TxKind:  TxKindStandard,
		Inputs: []TxInput{
			{PrevTxID: chainhash.Hash{}, PrevVout: 0xFFFFFFFF, Sequence: 0xFFFFFFFF},
		},
		Outputs: []TxOutput{
			{Value: 0, CovenantType: CovenantP2PK, CovenantData: make([]byte, 33)},
		},
		Witness: []WitnessItem{{SuiteID: SuiteSentinel}},
	}
	w := wire.NewWriter(128)
	EncodeTx(w, tx)
	return w.Bytes()
}

func minimalBlockBytesForFuzz() []byte {
	txBytes := minimalCoinbaseTxBytesForFuzz()
	w := wire.NewWriter(HeaderSize + 9 + len(txBytes))
	EncodeHeader(w, BlockHeader{Version: 1, Target: maxTarget, Timestamp: 1})
	w.WriteCompactSize(1)
	w.WriteBytes(txBytes)
	return w.Bytes()
}
