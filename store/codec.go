// Copyright (c) 2018 The ExchangeCoin team
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import (
	"math/big"

	"github.com/rubinprotocol/rubind/chainhash"
	"github.com/rubinprotocol/rubind/consensus"
	"github.com/rubinprotocol/rubind/wire"
)

// OutpointKey returns txid[32] || vout_le[4], the same lexicographic sort
// key spec.md section 4.12 uses for the UTXO-set hash, reused here as the
// on-disk UTXO key so iteration order matches hash order for free.
func OutpointKey(op consensus.Outpoint) []byte {
	w := wire.NewWriter(36)
	w.WriteBytes(op.TxID[:])
	w.WriteU32LE(op.Vout)
	return w.Bytes()
}

// DecodeOutpointKey is OutpointKey's inverse, used when iterating the raw
// UTXO key range.
func DecodeOutpointKey(key []byte) (consensus.Outpoint, error) {
	r := wire.NewReader(key)
	txid, err := r.ReadHash32()
	if err != nil {
		return consensus.Outpoint{}, err
	}
	vout, err := r.ReadU32LE()
	if err != nil {
		return consensus.Outpoint{}, err
	}
	return consensus.Outpoint{TxID: chainhash.Hash(txid), Vout: vout}, nil
}

// EncodeUtxoEntry is the on-disk encoding of a UtxoEntry: value, covenant
// type/data, creation height, and the coinbase flag.
func EncodeUtxoEntry(e *consensus.UtxoEntry) []byte {
	w := wire.NewWriter(24 + len(e.CovenantData))
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

// DecodeUtxoEntry is EncodeUtxoEntry's inverse.
func DecodeUtxoEntry(buf []byte) (*consensus.UtxoEntry, error) {
	r := wire.NewReader(buf)
	value, err := r.ReadU64LE()
	if err != nil {
		return nil, err
	}
	covType, err := r.ReadU16LE()
	if err != nil {
		return nil, err
	}
	covData, err := r.ReadBoundedBytes(uint64(len(buf)))
	if err != nil {
		return nil, err
	}
	height, err := r.ReadU64LE()
	if err != nil {
		return nil, err
	}
	coinbaseFlag, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	return &consensus.UtxoEntry{
		Value:             value,
		CovenantType:      covType,
		CovenantData:      append([]byte(nil), covData...),
		CreationHeight:    height,
		CreatedByCoinbase: coinbaseFlag != 0,
	}, nil
}

// EncodeIndexEntry is the on-disk encoding of a BlockIndexEntry: height,
// cumulative work as a length-prefixed big-endian integer, then the
// fixed-size header.
func EncodeIndexEntry(e BlockIndexEntry) []byte {
	workBytes := e.CumulativeWork.Bytes()
	w := wire.NewWriter(8 + 1 + len(workBytes) + consensus.HeaderSize + 8)
	w.WriteU64LE(e.Height)
	w.WriteBoundedBytes(workBytes)
	w.WriteBytes(consensus.SerializeHeader(e.Header))
	w.WriteU64LE(e.AlreadyGenerated)
	return w.Bytes()
}

// DecodeIndexEntry is EncodeIndexEntry's inverse. hash is supplied by the
// caller since the key, not the value, carries it on disk.
func DecodeIndexEntry(hash chainhash.Hash, buf []byte) (BlockIndexEntry, error) {
	r := wire.NewReader(buf)
	height, err := r.ReadU64LE()
	if err != nil {
		return BlockIndexEntry{}, err
	}
	workBytes, err := r.ReadBoundedBytes(32)
	if err != nil {
		return BlockIndexEntry{}, err
	}
	headerBytes, err := r.ReadBytes(consensus.HeaderSize)
	if err != nil {
		return BlockIndexEntry{}, err
	}
	header, err := consensus.ParseHeader(headerBytes)
	if err != nil {
		return BlockIndexEntry{}, err
	}
	alreadyGenerated, err := r.ReadU64LE()
	if err != nil {
		return BlockIndexEntry{}, err
	}
	return BlockIndexEntry{
		Hash:             hash,
		Header:           header,
		Height:           height,
		CumulativeWork:   new(big.Int).SetBytes(workBytes),
		AlreadyGenerated: alreadyGenerated,
	}, nil
}

// EncodeUndoRecord is the on-disk encoding of an UndoRecord: the restored
// (outpoint, pre-image entry) pairs, then the created outpoints.
func EncodeUndoRecord(u *consensus.UndoRecord) []byte {
	w := wire.NewWriter(64 * (len(u.Restored) + len(u.Created)))
	w.WriteCompactSize(uint64(len(u.Restored)))
	for _, r := range u.Restored {
		w.WriteBytes(OutpointKey(r.Outpoint))
		entryBytes := EncodeUtxoEntry(&r.Entry)
		w.WriteBoundedBytes(entryBytes)
	}
	w.WriteCompactSize(uint64(len(u.Created)))
	for _, op := range u.Created {
		w.WriteBytes(OutpointKey(op))
	}
	return w.Bytes()
}

// DecodeUndoRecord is EncodeUndoRecord's inverse.
func DecodeUndoRecord(buf []byte) (*consensus.UndoRecord, error) {
	r := wire.NewReader(buf)
	restoredCount, err := r.ReadCompactSize()
	if err != nil {
		return nil, err
	}
	undo := &consensus.UndoRecord{}
	for i := uint64(0); i < restoredCount; i++ {
		opKey, err := r.ReadBytes(36)
		if err != nil {
			return nil, err
		}
		op, err := DecodeOutpointKey(opKey)
		if err != nil {
			return nil, err
		}
		entryBytes, err := r.ReadBoundedBytes(uint64(len(buf)))
		if err != nil {
			return nil, err
		}
		entry, err := DecodeUtxoEntry(entryBytes)
		if err != nil {
			return nil, err
		}
		undo.Restored = append(undo.Restored, consensus.UndoSpend{Outpoint: op, Entry: *entry})
	}
	createdCount, err := r.ReadCompactSize()
	if err != nil {
		return nil, err
	}
	for i := uint64(0); i < createdCount; i++ {
		opKey, err := r.ReadBytes(36)
		if err != nil {
			return nil, err
		}
		op, err := DecodeOutpointKey(opKey)
		if err != nil {
			return nil, err
		}
		undo.Created = append(undo.Created, op)
	}
	return undo, nil
}

// EncodeManifest is the on-disk encoding of the singleton manifest record.
func EncodeManifest(m Manifest) []byte {
	workBytes := m.CumulativeWork.Bytes()
	w := wire.NewWriter(32 + 8 + 1 + len(workBytes) + 8)
	w.WriteBytes(m.TipHash[:])
	w.WriteU64LE(m.Height)
	w.WriteBoundedBytes(workBytes)
	w.WriteU64LE(m.AlreadyGenerated)
	return w.Bytes()
}

// DecodeManifest is EncodeManifest's inverse.
func DecodeManifest(buf []byte) (Manifest, error) {
	r := wire.NewReader(buf)
	tipHash, err := r.ReadHash32()
	if err != nil {
		return Manifest{}, err
	}
	height, err := r.ReadU64LE()
	if err != nil {
		return Manifest{}, err
	}
	workBytes, err := r.ReadBoundedBytes(32)
	if err != nil {
		return Manifest{}, err
	}
	alreadyGenerated, err := r.ReadU64LE()
	if err != nil {
		return Manifest{}, err
	}
	return Manifest{
		TipHash:          chainhash.Hash(tipHash),
		Height:           height,
		CumulativeWork:   new(big.Int).SetBytes(workBytes),
		AlreadyGenerated: alreadyGenerated,
	}, nil
}
