// Copyright (c) 2018 The ExchangeCoin team
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package consensus

import (
	"github.com/rubinprotocol/rubind/chainhash"
	"github.com/rubinprotocol/rubind/wire"
)

// BlockHeader is the fixed 116-byte block header.
type BlockHeader struct {
	Version    uint32
	PrevBlock  chainhash.Hash
	MerkleRoot chainhash.Hash
	Timestamp  uint64
	Target     [32]byte
	Nonce      uint64
}

// Block is a parsed block: header plus its ordered transaction list.
type Block struct {
	Header BlockHeader
	Txs    []*Tx

	headerBytes []byte
}

// EncodeHeader writes h in its fixed 116-byte wire layout.
func EncodeHeader(w *wire.Writer, h BlockHeader) {
	w.WriteU32LE(h.Version)
	w.WriteBytes(h.PrevBlock[:])
	w.WriteBytes(h.MerkleRoot[:])
	w.WriteU64LE(h.Timestamp)
	w.WriteBytes(h.Target[:])
	w.WriteU64LE(h.Nonce)
}

// SerializeHeader returns the 116-byte encoding of h.
func SerializeHeader(h BlockHeader) []byte {
	w := wire.NewWriter(HeaderSize)
	EncodeHeader(w, h)
	return w.Bytes()
}

// ParseHeader decodes a fixed 116-byte header from buf.
func ParseHeader(buf []byte) (BlockHeader, error) {
	if len(buf) != HeaderSize {
		return BlockHeader{}, ruleError(ErrBlockParse, "header: wrong length")
	}
	r := wire.NewReader(buf)
	var h BlockHeader
	var err error
	if h.Version, err = r.ReadU32LE(); err != nil {
		return BlockHeader{}, ruleError(ErrBlockParse, "header: short read on version")
	}
	prev, err := r.ReadHash32()
	if err != nil {
		return BlockHeader{}, ruleError(ErrBlockParse, "header: short read on prev_block_hash")
	}
	h.PrevBlock = chainhash.Hash(prev)
	root, err := r.ReadHash32()
	if err != nil {
		return BlockHeader{}, ruleError(ErrBlockParse, "header: short read on merkle_root")
	}
	h.MerkleRoot = chainhash.Hash(root)
	if h.Timestamp, err = r.ReadU64LE(); err != nil {
		return BlockHeader{}, ruleError(ErrBlockParse, "header: short read on timestamp")
	}
	target, err := r.ReadHash32()
	if err != nil {
		return BlockHeader{}, ruleError(ErrBlockParse, "header: short read on target")
	}
	h.Target = target
	if h.Nonce, err = r.ReadU64LE(); err != nil {
		return BlockHeader{}, ruleError(ErrBlockParse, "header: short read on nonce")
	}
	if !r.AtEnd() {
		return BlockHeader{}, ruleError(ErrBlockParse, "header: trailing bytes")
	}
	return h, nil
}

// BlockHash returns SHA3-256(header_bytes) using the injected hash
// function, treated as a big-endian 256-bit integer for PoW comparisons.
func (h BlockHeader) BlockHash(hashFn chainhash.HashFunc) chainhash.Hash {
	return hashFn(SerializeHeader(h))
}

// ParseBlock decodes header[116] || CompactSize(n) || tx[0..n-1] from buf.
// The consumed length must equal len(buf) exactly.
func ParseBlock(buf []byte) (*Block, error) {
	if len(buf) < HeaderSize {
		return nil, ruleError(ErrBlockParse, "block: shorter than header size")
	}
	header, err := ParseHeader(buf[:HeaderSize])
	if err != nil {
		return nil, err
	}
	r := wire.NewReader(buf)
	if _, err := r.ReadBytes(HeaderSize); err != nil {
		return nil, ruleError(ErrBlockParse, "block: cannot skip header")
	}
	txCount, err := r.ReadCompactSize()
	if err != nil {
		return nil, ruleError(ErrBlockParse, "block: bad tx_count")
	}
	if txCount < 1 {
		return nil, ruleError(ErrBlockParse, "block: tx_count must be >= 1")
	}
	txs := make([]*Tx, txCount)
	for i := range txs {
		tx, err := ParseTx(r)
		if err != nil {
			return nil, err
		}
		txs[i] = tx
	}
	if !r.AtEnd() {
		return nil, ruleError(ErrBlockParse, "block: trailing bytes")
	}
	return &Block{Header: header, Txs: txs, headerBytes: append([]byte(nil), buf[:HeaderSize]...)}, nil
}

// SerializeBlock encodes b back into its wire form.
func SerializeBlock(b *Block) []byte {
	w := wire.NewWriter(HeaderSize + 9 + len(b.Txs)*256)
	EncodeHeader(w, b.Header)
	w.WriteCompactSize(uint64(len(b.Txs)))
	for _, tx := range b.Txs {
		EncodeTx(w, tx)
	}
	return w.Bytes()
}

// TxIDs returns the ordered list of txids for b.
func (b *Block) TxIDs() []chainhash.Hash {
	ids := make([]chainhash.Hash, len(b.Txs))
	for i, tx := range b.Txs {
		ids[i] = tx.TxID()
	}
	return ids
}

// WtxIDs returns the ordered list of wtxids for b.
func (b *Block) WtxIDs() []chainhash.Hash {
	ids := make([]chainhash.Hash, len(b.Txs))
	for i, tx := range b.Txs {
		ids[i] = tx.WtxID()
	}
	return ids
}
