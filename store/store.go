// Copyright (c) 2018 The ExchangeCoin team
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package store defines the persistent-storage contract for a chain
// instance: headers, full blocks, block-index metadata, the UTXO set,
// and per-block undo logs, plus the singleton manifest that names the
// current tip. It is grounded on the shape of the teacher's pluggable
// `database` driver, minus the driver-registration indirection: this
// repo only ever has one backend (`store/leveldb`), so the interface
// here is the whole contract, not a generic transaction/bucket API.
package store

import (
	"errors"
	"math/big"

	"github.com/rubinprotocol/rubind/chainhash"
	"github.com/rubinprotocol/rubind/consensus"
)

// ErrNotFound is returned by lookups that find nothing for the given key.
// Grounded on the teacher's database.ErrBlockNotFound/database.ErrNotFound
// sentinel idiom.
var ErrNotFound = errors.New("store: not found")

// BlockIndexEntry is the per-block metadata kept independent of the full
// block bytes, enough to walk the chain of headers and compare work
// without decoding every transaction.
type BlockIndexEntry struct {
	Hash             chainhash.Hash
	Header           consensus.BlockHeader
	Height           uint64
	CumulativeWork   *big.Int
	AlreadyGenerated uint64
}

// Manifest names the current best tip. It is the single piece of mutable
// pointer state every commit updates; everything else (headers, blocks,
// undo logs, UTXO entries) is append-only or keyed by outpoint.
type Manifest struct {
	TipHash          chainhash.Hash
	Height           uint64
	CumulativeWork   *big.Int
	AlreadyGenerated uint64
}

// UtxoWrite is one UTXO-set mutation applied as part of a block commit:
// either a new entry (Entry non-nil) or a removal (Entry nil).
type UtxoWrite struct {
	Outpoint consensus.Outpoint
	Entry    *consensus.UtxoEntry
}

// Store is the persistence contract a chain instance is built on. Every
// mutating method commits in a single atomic batch per spec.md section
// 4.11's atomicity requirement: a crash between calls never leaves
// headers, blocks, the index, the UTXO set, or undo logs inconsistent
// with each other.
type Store interface {
	// GetManifest returns the current tip pointer. Before the genesis
	// block is committed, it returns the zero Manifest and no error.
	GetManifest() (Manifest, error)

	// CommitBlock atomically writes a newly connected block's header,
	// full bytes, index entry, undo log, and UTXO-set delta, and
	// advances the manifest to point at it.
	CommitBlock(blockBytes []byte, index BlockIndexEntry, undo *consensus.UndoRecord, utxoWrites []UtxoWrite, newManifest Manifest) error

	// DisconnectTip atomically removes the tip's undo log (once
	// consumed), applies the inverse UTXO-set delta, and rewinds the
	// manifest to point at the parent. The block's header/body/index
	// entry are left in place so the block can still be looked up by
	// hash after a reorg moves away from it.
	DisconnectTip(tipHash chainhash.Hash, utxoWrites []UtxoWrite, parentManifest Manifest) error

	GetHeader(hash chainhash.Hash) (consensus.BlockHeader, error)
	GetBlockBytes(hash chainhash.Hash) ([]byte, error)
	GetIndexEntry(hash chainhash.Hash) (BlockIndexEntry, error)
	GetUndo(hash chainhash.Hash) (*consensus.UndoRecord, error)
	GetUtxoEntry(op consensus.Outpoint) (*consensus.UtxoEntry, error)

	// AllUtxoEntries calls fn for every live UTXO entry, in unspecified
	// order, used by UTXOSetHash recomputation and conformance tooling.
	AllUtxoEntries(fn func(consensus.Outpoint, *consensus.UtxoEntry) error) error

	Close() error
}
