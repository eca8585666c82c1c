// Copyright (c) 2018 The ExchangeCoin team
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package consensus

import (
	"sort"

	"github.com/rubinprotocol/rubind/chainhash"
	"github.com/rubinprotocol/rubind/wire"
)

// outpointKey returns txid[32] || vout_le[4], the lexicographic sort key
// for the UTXO-set hash per spec.md section 4.12.
func outpointKey(op Outpoint) []byte {
	w := wire.NewWriter(36)
	w.WriteBytes(op.TxID[:])
	w.WriteU32LE(op.Vout)
	return w.Bytes()
}

// serializeUtxoEntry returns the canonical entry encoding used both by the
// UTXO-set hash and by persistent storage.
func serializeUtxoEntry(e *UtxoEntry) []byte {
	w := wire.NewWriter(32 + len(e.CovenantData))
	w.WriteU64LE(e.Value)
	w.WriteU16LE(e.CovenantType)
	w.WriteBoundedBytes(e.CovenantData)
	w.WriteU64LE(e.CreationHeight)
	if e.CreatedByCoinbase {
		w.WriteU8(1)
	} else {
		w.WriteU8(0)
	}
	return w.Bytes()
}

// UTXOSetHash computes the canonical, order-independent digest over the
// full UTXO set per spec.md section 4.12: pairs sorted lexicographically
// by outpoint_key, then concatenated and hashed with a domain tag and a
// count prefix.
func UTXOSetHash(entries map[Outpoint]*UtxoEntry, hashFn chainhash.HashFunc) chainhash.Hash {
	type pair struct {
		key   []byte
		value []byte
	}
	pairs := make([]pair, 0, len(entries))
	for op, entry := range entries {
		pairs = append(pairs, pair{key: outpointKey(op), value: serializeUtxoEntry(entry)})
	}
	sort.Slice(pairs, func(i, j int) bool {
		return compareBytes(pairs[i].key, pairs[j].key) < 0
	})

	w := wire.NewWriter(32 + 8 + len(pairs)*64)
	w.WriteBytes([]byte(UTXOSetHashTag))
	w.WriteU64LE(uint64(len(pairs)))
	for _, p := range pairs {
		w.WriteBytes(p.key)
		w.WriteBytes(p.value)
	}
	return hashFn(w.Bytes())
}

// compareBytes returns -1, 0, or 1 the way bytes.Compare does; kept local
// so this file has no extra stdlib import beyond sort.
func compareBytes(a, b []byte) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}
