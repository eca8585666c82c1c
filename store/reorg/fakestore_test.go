// Copyright (c) 2018 The ExchangeCoin team
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package reorg

import (
	"math/big"

	"github.com/rubinprotocol/rubind/chainhash"
	"github.com/rubinprotocol/rubind/consensus"
	"github.com/rubinprotocol/rubind/store"
)

// fakeStore is a minimal in-memory store.Store used to test fork-point
// discovery and tie-breaking without a real leveldb backend.
type fakeStore struct {
	manifest store.Manifest
	headers  map[chainhash.Hash]consensus.BlockHeader
	blocks   map[chainhash.Hash][]byte
	index    map[chainhash.Hash]store.BlockIndexEntry
	undo     map[chainhash.Hash]*consensus.UndoRecord
	utxo     map[consensus.Outpoint]*consensus.UtxoEntry
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		manifest: store.Manifest{CumulativeWork: big.NewInt(0)},
		headers:  make(map[chainhash.Hash]consensus.BlockHeader),
		blocks:   make(map[chainhash.Hash][]byte),
		index:    make(map[chainhash.Hash]store.BlockIndexEntry),
		undo:     make(map[chainhash.Hash]*consensus.UndoRecord),
		utxo:     make(map[consensus.Outpoint]*consensus.UtxoEntry),
	}
}

func (f *fakeStore) addBlock(idx store.BlockIndexEntry, body []byte, undo *consensus.UndoRecord) {
	f.headers[idx.Hash] = idx.Header
	f.blocks[idx.Hash] = body
	f.index[idx.Hash] = idx
	if undo != nil {
		f.undo[idx.Hash] = undo
	}
}

func (f *fakeStore) GetManifest() (store.Manifest, error) { return f.manifest, nil }

func (f *fakeStore) CommitBlock(blockBytes []byte, index store.BlockIndexEntry, undo *consensus.UndoRecord, writes []store.UtxoWrite, newManifest store.Manifest) error {
	f.addBlock(index, blockBytes, undo)
	for _, w := range writes {
		if w.Entry == nil {
			delete(f.utxo, w.Outpoint)
			continue
		}
		f.utxo[w.Outpoint] = w.Entry
	}
	f.manifest = newManifest
	return nil
}

func (f *fakeStore) DisconnectTip(tipHash chainhash.Hash, writes []store.UtxoWrite, parentManifest store.Manifest) error {
	delete(f.undo, tipHash)
	for _, w := range writes {
		if w.Entry == nil {
			delete(f.utxo, w.Outpoint)
			continue
		}
		f.utxo[w.Outpoint] = w.Entry
	}
	f.manifest = parentManifest
	return nil
}

func (f *fakeStore) GetHeader(hash chainhash.Hash) (consensus.BlockHeader, error) {
	h, ok := f.headers[hash]
	if !ok {
		return consensus.BlockHeader{}, store.ErrNotFound
	}
	return h, nil
}

func (f *fakeStore) GetBlockBytes(hash chainhash.Hash) ([]byte, error) {
	b, ok := f.blocks[hash]
	if !ok {
		return nil, store.ErrNotFound
	}
	return b, nil
}

func (f *fakeStore) GetIndexEntry(hash chainhash.Hash) (store.BlockIndexEntry, error) {
	e, ok := f.index[hash]
	if !ok {
		return store.BlockIndexEntry{}, store.ErrNotFound
	}
	return e, nil
}

func (f *fakeStore) GetUndo(hash chainhash.Hash) (*consensus.UndoRecord, error) {
	u, ok := f.undo[hash]
	if !ok {
		return nil, store.ErrNotFound
	}
	return u, nil
}

func (f *fakeStore) GetUtxoEntry(op consensus.Outpoint) (*consensus.UtxoEntry, error) {
	e, ok := f.utxo[op]
	if !ok {
		return nil, store.ErrNotFound
	}
	return e, nil
}

func (f *fakeStore) AllUtxoEntries(fn func(consensus.Outpoint, *consensus.UtxoEntry) error) error {
	for op, e := range f.utxo {
		if err := fn(op, e); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeStore) Close() error { return nil }

var _ store.Store = (*fakeStore)(nil)
