// Copyright (c) 2018 The ExchangeCoin team
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package reorg

import (
	"math/big"
	"testing"

	"github.com/rubinprotocol/rubind/chainhash"
	"github.com/rubinprotocol/rubind/consensus"
	"github.com/rubinprotocol/rubind/sigverify"
	"github.com/rubinprotocol/rubind/store"
	"github.com/rubinprotocol/rubind/wire"
)

var maxTarget = [32]byte{
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
}

func testCaps() consensus.Capabilities {
	return consensus.Capabilities{
		Hash:   chainhash.SoftwareSHA3,
		Verify: sigverify.AsCovenantVerifyFunc(sigverify.NewSoftware()),
	}
}

// buildCoinbaseOnlyBlock returns a single-tx block: a zero-output coinbase
// whose locktime equals height, linked to prevHash.
func buildCoinbaseOnlyBlock(t *testing.T, prevHash chainhash.Hash, height uint64, timestamp uint64) (*consensus.Block, []byte) {
	t.Helper()
	txW := wire.NewWriter(64)
	txW.WriteU32LE(1)
	txW.WriteU8(consensus.TxKindStandard)
	txW.WriteU64LE(0)
	txW.WriteCompactSize(1)
	txW.WriteBytes(make([]byte, 32))
	txW.WriteU32LE(0xFFFFFFFF)
	txW.WriteBoundedBytes(nil)
	txW.WriteU32LE(0xFFFFFFFF)
	txW.WriteCompactSize(0)
	txW.WriteU32LE(uint32(height))
	txW.WriteCompactSize(0)
	txW.WriteBoundedBytes(nil)

	cb, err := consensus.ParseTx(wire.NewReader(txW.Bytes()))
	if err != nil {
		t.Fatalf("build coinbase: %v", err)
	}

	root := consensus.TxIDMerkleRoot([]chainhash.Hash{cb.TxID()}, chainhash.SoftwareSHA3)
	header := consensus.BlockHeader{
		Version:    1,
		PrevBlock:  prevHash,
		MerkleRoot: root,
		Timestamp:  timestamp,
		Target:     maxTarget,
		Nonce:      0,
	}

	blockW := wire.NewWriter(256)
	consensus.EncodeHeader(blockW, header)
	blockW.WriteCompactSize(1)
	consensus.EncodeTx(blockW, cb)
	blockBytes := blockW.Bytes()

	b, err := consensus.ParseBlock(blockBytes)
	if err != nil {
		t.Fatalf("parse built block: %v", err)
	}
	return b, blockBytes
}

func TestAcceptBlockGenesisThenExtend(t *testing.T) {
	fs := newFakeStore()
	params := ChainParams{ChainID: chainhash.HashH([]byte("test-chain")), Caps: testCaps()}
	const now = uint64(1722000000) + 365*24*3600

	genesis, genesisBytes := buildCoinbaseOnlyBlock(t, chainhash.Hash{}, 0, 1722000000)
	genIdx, err := AcceptBlock(fs, params, nil, genesis, genesisBytes, now)
	if err != nil {
		t.Fatalf("accept genesis: %v", err)
	}
	if genIdx.Height != 0 {
		t.Fatalf("genesis height = %d, want 0", genIdx.Height)
	}

	manifest, err := fs.GetManifest()
	if err != nil {
		t.Fatalf("GetManifest: %v", err)
	}
	if manifest.TipHash != genIdx.Hash {
		t.Fatalf("manifest tip = %v, want genesis hash %v", manifest.TipHash, genIdx.Hash)
	}

	child, childBytes := buildCoinbaseOnlyBlock(t, genIdx.Hash, 1, 1722000120)
	childIdx, err := AcceptBlock(fs, params, nil, child, childBytes, now)
	if err != nil {
		t.Fatalf("accept child: %v", err)
	}
	if childIdx.Height != 1 {
		t.Fatalf("child height = %d, want 1", childIdx.Height)
	}
	if childIdx.Header.PrevBlock != genIdx.Hash {
		t.Fatalf("child prev_block = %v, want genesis hash %v", childIdx.Header.PrevBlock, genIdx.Hash)
	}

	manifest, err = fs.GetManifest()
	if err != nil {
		t.Fatalf("GetManifest: %v", err)
	}
	if manifest.TipHash != childIdx.Hash || manifest.Height != 1 {
		t.Fatalf("manifest after extend = %+v, want tip=%v height=1", manifest, childIdx.Hash)
	}
}

func TestAcceptBlockRejectsWrongParent(t *testing.T) {
	fs := newFakeStore()
	params := ChainParams{ChainID: chainhash.HashH([]byte("test-chain")), Caps: testCaps()}
	const now = uint64(1722000000) + 365*24*3600

	genesis, genesisBytes := buildCoinbaseOnlyBlock(t, chainhash.Hash{}, 0, 1722000000)
	if _, err := AcceptBlock(fs, params, nil, genesis, genesisBytes, now); err != nil {
		t.Fatalf("accept genesis: %v", err)
	}

	orphan, orphanBytes := buildCoinbaseOnlyBlock(t, chainhash.Hash{0xaa}, 1, 1722000120)
	if _, err := AcceptBlock(fs, params, nil, orphan, orphanBytes, now); err == nil {
		t.Fatal("expected error for block not extending the current tip")
	}
}

func idx(hash, prev chainhash.Hash, height uint64, work int64) store.BlockIndexEntry {
	return store.BlockIndexEntry{
		Hash:           hash,
		Header:         consensus.BlockHeader{PrevBlock: prev, Timestamp: 1000 + height},
		Height:         height,
		CumulativeWork: big.NewInt(work),
	}
}

func TestFindForkPoint(t *testing.T) {
	fs := newFakeStore()

	genesis := idx(chainhash.Hash{0}, chainhash.Hash{}, 0, 10)
	fs.addBlock(genesis, nil, nil)

	a1 := idx(chainhash.Hash{1}, genesis.Hash, 1, 20)
	a2 := idx(chainhash.Hash{2}, a1.Hash, 2, 30)
	fs.addBlock(a1, nil, nil)
	fs.addBlock(a2, nil, nil)

	b1 := idx(chainhash.Hash{3}, genesis.Hash, 1, 25)
	fs.addBlock(b1, nil, nil)

	ancestor, aSide, bSide, err := FindForkPoint(fs, a2.Hash, b1.Hash)
	if err != nil {
		t.Fatalf("FindForkPoint: %v", err)
	}
	if ancestor.Hash != genesis.Hash {
		t.Fatalf("ancestor = %v, want genesis", ancestor.Hash)
	}
	if len(aSide) != 2 || aSide[0].Hash != a2.Hash || aSide[1].Hash != a1.Hash {
		t.Fatalf("aSide = %+v, want [a2, a1]", aSide)
	}
	if len(bSide) != 1 || bSide[0].Hash != b1.Hash {
		t.Fatalf("bSide = %+v, want [b1]", bSide)
	}
}

func TestFindForkPointSameHeightDifferentDepth(t *testing.T) {
	fs := newFakeStore()
	genesis := idx(chainhash.Hash{0}, chainhash.Hash{}, 0, 10)
	fs.addBlock(genesis, nil, nil)

	a1 := idx(chainhash.Hash{1}, genesis.Hash, 1, 20)
	a2 := idx(chainhash.Hash{2}, a1.Hash, 2, 30)
	a3 := idx(chainhash.Hash{4}, a2.Hash, 3, 40)
	fs.addBlock(a1, nil, nil)
	fs.addBlock(a2, nil, nil)
	fs.addBlock(a3, nil, nil)

	b1 := idx(chainhash.Hash{3}, genesis.Hash, 1, 25)
	fs.addBlock(b1, nil, nil)

	ancestor, aSide, bSide, err := FindForkPoint(fs, a3.Hash, b1.Hash)
	if err != nil {
		t.Fatalf("FindForkPoint: %v", err)
	}
	if ancestor.Hash != genesis.Hash {
		t.Fatalf("ancestor = %v, want genesis", ancestor.Hash)
	}
	if len(aSide) != 3 {
		t.Fatalf("aSide length = %d, want 3", len(aSide))
	}
	if len(bSide) != 1 {
		t.Fatalf("bSide length = %d, want 1", len(bSide))
	}
}

func TestBetterChain(t *testing.T) {
	lower := store.BlockIndexEntry{Hash: chainhash.Hash{1}, CumulativeWork: big.NewInt(100)}
	higher := store.BlockIndexEntry{Hash: chainhash.Hash{2}, CumulativeWork: big.NewInt(200)}
	if !BetterChain(lower, higher) {
		t.Fatal("higher work chain should replace lower work chain")
	}
	if BetterChain(higher, lower) {
		t.Fatal("lower work chain should not replace higher work chain")
	}

	tieSmallHash := store.BlockIndexEntry{Hash: chainhash.Hash{0x01}, CumulativeWork: big.NewInt(100)}
	tieBigHash := store.BlockIndexEntry{Hash: chainhash.Hash{0x02}, CumulativeWork: big.NewInt(100)}
	if !BetterChain(tieBigHash, tieSmallHash) {
		t.Fatal("on a work tie, the numerically smaller hash should win")
	}
	if BetterChain(tieSmallHash, tieBigHash) {
		t.Fatal("on a work tie, the numerically larger hash should not win")
	}
}

func TestDisconnectOneRestoresUtxoAndRewindsManifest(t *testing.T) {
	fs := newFakeStore()

	genesis := idx(chainhash.Hash{0}, chainhash.Hash{}, 0, 10)
	fs.addBlock(genesis, nil, nil)
	fs.manifest = store.Manifest{TipHash: genesis.Hash, Height: 0, CumulativeWork: genesis.CumulativeWork}

	spentOp := consensus.Outpoint{TxID: chainhash.Hash{0xaa}, Vout: 0}
	createdOp := consensus.Outpoint{TxID: chainhash.Hash{0xbb}, Vout: 0}
	preImage := consensus.UtxoEntry{Value: 1000, CovenantType: consensus.CovenantP2PK, CreatedByCoinbase: true}

	tip := idx(chainhash.Hash{1}, genesis.Hash, 1, 20)
	tip.AlreadyGenerated = 50
	undo := &consensus.UndoRecord{
		Restored: []consensus.UndoSpend{{Outpoint: spentOp, Entry: preImage}},
		Created:  []consensus.Outpoint{createdOp},
	}
	fs.addBlock(tip, []byte("tip-bytes"), undo)
	fs.utxo[createdOp] = &consensus.UtxoEntry{Value: 500, CovenantType: consensus.CovenantP2PK}
	fs.manifest = store.Manifest{TipHash: tip.Hash, Height: 1, CumulativeWork: tip.CumulativeWork, AlreadyGenerated: 50}

	if err := disconnectOne(fs, tip); err != nil {
		t.Fatalf("disconnectOne: %v", err)
	}

	if _, ok := fs.utxo[createdOp]; ok {
		t.Fatal("created outpoint should be removed on disconnect")
	}
	restored, ok := fs.utxo[spentOp]
	if !ok || restored.Value != 1000 {
		t.Fatalf("spent outpoint should be restored, got %+v, ok=%v", restored, ok)
	}
	if fs.manifest.TipHash != genesis.Hash || fs.manifest.Height != 0 {
		t.Fatalf("manifest after disconnect = %+v, want rewound to genesis", fs.manifest)
	}
	if _, ok := fs.undo[tip.Hash]; ok {
		t.Fatal("undo log should be consumed on disconnect")
	}
	// The block itself remains look-up-able after disconnect.
	if _, err := fs.GetHeader(tip.Hash); err != nil {
		t.Fatalf("GetHeader after disconnect: %v", err)
	}
}
