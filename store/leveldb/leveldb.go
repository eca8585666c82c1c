// Copyright (c) 2018 The ExchangeCoin team
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package leveldb is the only storage backend this repo ships: a
// goleveldb-backed implementation of store.Store. The teacher's database
// package sits on the same engine through a pluggable driver
// (database/ffldb); since there is only ever one backend here, this
// package talks to goleveldb directly instead of carrying that
// registration layer.
package leveldb

import (
	"math/big"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/rubinprotocol/rubind/chainhash"
	"github.com/rubinprotocol/rubind/consensus"
	"github.com/rubinprotocol/rubind/internal/rlog"
	"github.com/rubinprotocol/rubind/store"
)

// Key prefixes. Each is a single ASCII letter followed by '/' so a prefix
// iterator (util.BytesPrefix) can range over one table without touching
// the others.
var (
	prefixHeader = []byte("h/")
	prefixBlock  = []byte("b/")
	prefixIndex  = []byte("i/")
	prefixUtxo   = []byte("u/")
	prefixUndo   = []byte("n/")
)

// manifestKey is the singleton key holding the current tip pointer. It
// shares no prefix with the tables above, so it can never collide with a
// 32-byte hash suffix.
var manifestKey = []byte("MANIFEST")

// DB is the goleveldb-backed store.Store implementation.
type DB struct {
	ldb *leveldb.DB
}

var _ store.Store = (*DB)(nil)

// Open opens (creating if necessary) a leveldb database at dir.
func Open(dir string) (*DB, error) {
	ldb, err := leveldb.OpenFile(dir, &opt.Options{})
	if err != nil {
		return nil, err
	}
	return &DB{ldb: ldb}, nil
}

// Close releases the underlying database handle.
func (db *DB) Close() error {
	return db.ldb.Close()
}

func headerKey(hash chainhash.Hash) []byte  { return append(append([]byte(nil), prefixHeader...), hash[:]...) }
func blockKey(hash chainhash.Hash) []byte   { return append(append([]byte(nil), prefixBlock...), hash[:]...) }
func indexKey(hash chainhash.Hash) []byte   { return append(append([]byte(nil), prefixIndex...), hash[:]...) }
func undoKey(hash chainhash.Hash) []byte    { return append(append([]byte(nil), prefixUndo...), hash[:]...) }
func utxoKey(op consensus.Outpoint) []byte  { return append(append([]byte(nil), prefixUtxo...), store.OutpointKey(op)...) }

// GetManifest returns the zero Manifest (cumulative work zero, height
// zero, tip hash all-zero) before any block has ever been committed.
func (db *DB) GetManifest() (store.Manifest, error) {
	buf, err := db.ldb.Get(manifestKey, nil)
	if err == leveldb.ErrNotFound {
		return store.Manifest{CumulativeWork: big.NewInt(0)}, nil
	}
	if err != nil {
		return store.Manifest{}, err
	}
	return store.DecodeManifest(buf)
}

// CommitBlock writes every artifact of a newly connected block in one
// atomic leveldb batch: header+body keyed by hash, the block-index entry,
// the undo log, the UTXO-set delta, and the advanced manifest pointer.
func (db *DB) CommitBlock(blockBytes []byte, index store.BlockIndexEntry, undo *consensus.UndoRecord, utxoWrites []store.UtxoWrite, newManifest store.Manifest) error {
	batch := new(leveldb.Batch)

	batch.Put(headerKey(index.Hash), consensus.SerializeHeader(index.Header))
	batch.Put(blockKey(index.Hash), blockBytes)
	batch.Put(indexKey(index.Hash), store.EncodeIndexEntry(index))
	batch.Put(undoKey(index.Hash), store.EncodeUndoRecord(undo))
	applyUtxoWrites(batch, utxoWrites)
	batch.Put(manifestKey, store.EncodeManifest(newManifest))

	if err := db.ldb.Write(batch, nil); err != nil {
		return err
	}
	rlog.StorLog.Debugf("committed block %s at height %d", index.Hash, index.Height)
	return nil
}

// DisconnectTip atomically removes tipHash's undo log (now consumed),
// applies the inverse UTXO-set delta the caller already computed from it,
// and rewinds the manifest to parentManifest. The header/body/index entry
// for tipHash are left in place, matching spec.md section 4.11's
// requirement that a disconnected block remains look-up-able by hash.
func (db *DB) DisconnectTip(tipHash chainhash.Hash, utxoWrites []store.UtxoWrite, parentManifest store.Manifest) error {
	batch := new(leveldb.Batch)
	batch.Delete(undoKey(tipHash))
	applyUtxoWrites(batch, utxoWrites)
	batch.Put(manifestKey, store.EncodeManifest(parentManifest))

	if err := db.ldb.Write(batch, nil); err != nil {
		return err
	}
	rlog.StorLog.Debugf("disconnected tip %s, new tip %s at height %d", tipHash, parentManifest.TipHash, parentManifest.Height)
	return nil
}

func applyUtxoWrites(batch *leveldb.Batch, writes []store.UtxoWrite) {
	for _, w := range writes {
		key := utxoKey(w.Outpoint)
		if w.Entry == nil {
			batch.Delete(key)
			continue
		}
		batch.Put(key, store.EncodeUtxoEntry(w.Entry))
	}
}

func (db *DB) GetHeader(hash chainhash.Hash) (consensus.BlockHeader, error) {
	buf, err := db.ldb.Get(headerKey(hash), nil)
	if err == leveldb.ErrNotFound {
		return consensus.BlockHeader{}, store.ErrNotFound
	}
	if err != nil {
		return consensus.BlockHeader{}, err
	}
	return consensus.ParseHeader(buf)
}

func (db *DB) GetBlockBytes(hash chainhash.Hash) ([]byte, error) {
	buf, err := db.ldb.Get(blockKey(hash), nil)
	if err == leveldb.ErrNotFound {
		return nil, store.ErrNotFound
	}
	return buf, err
}

func (db *DB) GetIndexEntry(hash chainhash.Hash) (store.BlockIndexEntry, error) {
	buf, err := db.ldb.Get(indexKey(hash), nil)
	if err == leveldb.ErrNotFound {
		return store.BlockIndexEntry{}, store.ErrNotFound
	}
	if err != nil {
		return store.BlockIndexEntry{}, err
	}
	return store.DecodeIndexEntry(hash, buf)
}

func (db *DB) GetUndo(hash chainhash.Hash) (*consensus.UndoRecord, error) {
	buf, err := db.ldb.Get(undoKey(hash), nil)
	if err == leveldb.ErrNotFound {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return store.DecodeUndoRecord(buf)
}

func (db *DB) GetUtxoEntry(op consensus.Outpoint) (*consensus.UtxoEntry, error) {
	buf, err := db.ldb.Get(utxoKey(op), nil)
	if err == leveldb.ErrNotFound {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return store.DecodeUtxoEntry(buf)
}

// AllUtxoEntries iterates every key under the u/ prefix in key order,
// which is also outpoint_key order per spec.md section 4.12, so callers
// recomputing UTXOSetHash need no separate sort pass over the live set.
func (db *DB) AllUtxoEntries(fn func(consensus.Outpoint, *consensus.UtxoEntry) error) error {
	iter := db.ldb.NewIterator(util.BytesPrefix(prefixUtxo), nil)
	defer iter.Release()
	for iter.Next() {
		op, err := store.DecodeOutpointKey(iter.Key()[len(prefixUtxo):])
		if err != nil {
			return err
		}
		entry, err := store.DecodeUtxoEntry(iter.Value())
		if err != nil {
			return err
		}
		if err := fn(op, entry); err != nil {
			return err
		}
	}
	return iter.Error()
}
