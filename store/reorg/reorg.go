// Copyright (c) 2018 The ExchangeCoin team
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package reorg implements fork-point discovery and the disconnect/
// reconnect sequence spec.md section 4.11 requires when a competing
// chain overtakes the current tip: walk both tips back to their common
// ancestor, undo blocks down to it, then apply the new branch's blocks
// in order. A failure partway through reconnecting abandons the new
// branch and replays the original one instead of leaving the store
// stuck mid-reorg.
package reorg

import (
	"errors"
	"math/big"

	"github.com/rubinprotocol/rubind/chainhash"
	"github.com/rubinprotocol/rubind/consensus"
	"github.com/rubinprotocol/rubind/internal/rlog"
	"github.com/rubinprotocol/rubind/store"
)

// ErrUnknownBlock is returned when a hash has no block-index entry.
var ErrUnknownBlock = errors.New("reorg: unknown block")

// ChainParams bundles the chain-instance values reorg needs to replay
// stateful validation, mirroring consensus.ApplyContext's fields without
// importing chaincfg (which already imports consensus; reorg importing
// chaincfg too would not cycle, but keeping this package's dependency
// surface to consensus+store matches how narrowly consensus itself is
// parameterized).
type ChainParams struct {
	ChainID chainhash.Hash
	Caps    consensus.Capabilities
}

// FindForkPoint walks the block index back from both aHash and bHash,
// first equalizing heights and then stepping both back in lockstep,
// until it finds the common ancestor. It returns the ancestor's index
// entry, plus the two sides' entries ordered from each tip down to (but
// not including) the ancestor.
func FindForkPoint(db store.Store, aHash, bHash chainhash.Hash) (ancestor store.BlockIndexEntry, aSide, bSide []store.BlockIndexEntry, err error) {
	aIdx, err := db.GetIndexEntry(aHash)
	if err != nil {
		return store.BlockIndexEntry{}, nil, nil, err
	}
	bIdx, err := db.GetIndexEntry(bHash)
	if err != nil {
		return store.BlockIndexEntry{}, nil, nil, err
	}

	for aIdx.Height > bIdx.Height {
		aSide = append(aSide, aIdx)
		aIdx, err = db.GetIndexEntry(aIdx.Header.PrevBlock)
		if err != nil {
			return store.BlockIndexEntry{}, nil, nil, err
		}
	}
	for bIdx.Height > aIdx.Height {
		bSide = append(bSide, bIdx)
		bIdx, err = db.GetIndexEntry(bIdx.Header.PrevBlock)
		if err != nil {
			return store.BlockIndexEntry{}, nil, nil, err
		}
	}
	for aIdx.Hash != bIdx.Hash {
		aSide = append(aSide, aIdx)
		bSide = append(bSide, bIdx)
		aIdx, err = db.GetIndexEntry(aIdx.Header.PrevBlock)
		if err != nil {
			return store.BlockIndexEntry{}, nil, nil, err
		}
		bIdx, err = db.GetIndexEntry(bIdx.Header.PrevBlock)
		if err != nil {
			return store.BlockIndexEntry{}, nil, nil, err
		}
	}
	return aIdx, aSide, bSide, nil
}

// BetterChain reports whether candidate should replace current as the
// best tip: strictly greater cumulative work wins; on an exact tie, the
// numerically smaller block hash wins, per spec.md section 4.11's
// deterministic tie-break.
func BetterChain(current, candidate store.BlockIndexEntry) bool {
	switch cmp := candidate.CumulativeWork.Cmp(current.CumulativeWork); {
	case cmp > 0:
		return true
	case cmp < 0:
		return false
	default:
		return compareHashes(candidate.Hash, current.Hash) < 0
	}
}

func compareHashes(a, b chainhash.Hash) int {
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// disconnectOne reverses one block: loads its undo log, inverts the
// UTXO-set delta the log describes, and rewinds the manifest to its
// parent. The block's own header/body/index entry are left in the store
// so it can be looked up and replayed later if needed.
func disconnectOne(db store.Store, tip store.BlockIndexEntry) error {
	undo, err := db.GetUndo(tip.Hash)
	if err != nil {
		return err
	}
	parent, err := db.GetIndexEntry(tip.Header.PrevBlock)
	if err != nil {
		return err
	}

	writes := make([]store.UtxoWrite, 0, len(undo.Created)+len(undo.Restored))
	for _, op := range undo.Created {
		writes = append(writes, store.UtxoWrite{Outpoint: op, Entry: nil})
	}
	for _, spend := range undo.Restored {
		entry := spend.Entry
		writes = append(writes, store.UtxoWrite{Outpoint: spend.Outpoint, Entry: &entry})
	}

	parentManifest := store.Manifest{TipHash: parent.Hash, Height: parent.Height, CumulativeWork: parent.CumulativeWork, AlreadyGenerated: parent.AlreadyGenerated}
	if err := db.DisconnectTip(tip.Hash, writes, parentManifest); err != nil {
		return err
	}
	rlog.RorgLog.Debugf("disconnected block %s, tip now %s", tip.Hash, parent.Hash)
	return nil
}

// connectOne applies one already stateless-validated block on top of
// parent, priming a UtxoView from the store for exactly the outpoints the
// block's inputs reference, then committing the stateful result.
func connectOne(db store.Store, params ChainParams, activeExtensionSuites map[uint8]bool, b *consensus.Block, blockBytes []byte, parent store.BlockIndexEntry) (store.BlockIndexEntry, error) {
	view := consensus.NewUtxoView()
	if err := primeView(db, b, view); err != nil {
		return store.BlockIndexEntry{}, err
	}

	height := parent.Height + 1
	ctx := consensus.ApplyContext{
		ChainID:               params.ChainID,
		Caps:                  params.Caps,
		Height:                height,
		BlockTimestamp:        b.Header.Timestamp,
		AlreadyGenerated:      parent.AlreadyGenerated,
		ActiveExtensionSuites: activeExtensionSuites,
	}
	fees, undo, err := consensus.ApplyBlock(b, view, ctx)
	if err != nil {
		return store.BlockIndexEntry{}, err
	}

	var coinbaseOut uint64
	for _, out := range b.Txs[0].Outputs {
		coinbaseOut += out.Value
	}
	var minted uint64
	if coinbaseOut > fees {
		minted = coinbaseOut - fees
	}
	alreadyGenerated := parent.AlreadyGenerated + minted

	blockHash := b.Header.BlockHash(params.Caps.Hash)
	work := consensus.SaturatingAddWork(parent.CumulativeWork, consensus.BlockWork(b.Header.Target))
	index := store.BlockIndexEntry{
		Hash:             blockHash,
		Header:           b.Header,
		Height:           height,
		CumulativeWork:   work,
		AlreadyGenerated: alreadyGenerated,
	}

	writes := make([]store.UtxoWrite, 0, len(undo.Created)+len(undo.Restored))
	for _, op := range undo.Created {
		entry, ok := view.LookupEntry(op)
		if !ok {
			return store.BlockIndexEntry{}, errors.New("reorg: created outpoint missing from view after apply")
		}
		writes = append(writes, store.UtxoWrite{Outpoint: op, Entry: entry})
	}
	for _, spend := range undo.Restored {
		writes = append(writes, store.UtxoWrite{Outpoint: spend.Outpoint, Entry: nil})
	}

	manifest := store.Manifest{TipHash: blockHash, Height: height, CumulativeWork: work, AlreadyGenerated: alreadyGenerated}
	if err := db.CommitBlock(blockBytes, index, undo, writes, manifest); err != nil {
		return store.BlockIndexEntry{}, err
	}
	rlog.RorgLog.Debugf("connected block %s at height %d", blockHash, height)
	return index, nil
}

// primeView loads into view the current store entry for every outpoint b's
// non-coinbase inputs reference, so ApplyBlock's lookups succeed without
// materializing the whole UTXO set in memory.
func primeView(db store.Store, b *consensus.Block, view *consensus.UtxoView) error {
	for i, tx := range b.Txs {
		if i == 0 {
			continue
		}
		for _, in := range tx.Inputs {
			op := consensus.Outpoint{TxID: in.PrevTxID, Vout: in.PrevVout}
			if _, ok := view.LookupEntry(op); ok {
				continue
			}
			entry, err := db.GetUtxoEntry(op)
			if errors.Is(err, store.ErrNotFound) {
				continue // surfaces as ErrTxMissingUTXO from ApplyBlock itself
			}
			if err != nil {
				return err
			}
			view.AddEntry(op, entry)
		}
	}
	return nil
}

// Reorganize disconnects the current best chain down to its fork point
// with candidateBlocks' branch, then connects candidateBlocks in order.
// If connecting fails partway through, the blocks connected so far are
// disconnected again and the original branch is replayed from its own
// stored bytes, leaving the store exactly as it was before the attempt.
func Reorganize(db store.Store, params ChainParams, activeExtensionSuites map[uint8]bool, disconnectSide []store.BlockIndexEntry, forkPoint store.BlockIndexEntry, candidateBlocks []*consensus.Block, candidateBytes [][]byte) error {
	if len(candidateBlocks) != len(candidateBytes) {
		return errors.New("reorg: candidateBlocks and candidateBytes length mismatch")
	}

	for _, tip := range disconnectSide {
		if err := disconnectOne(db, tip); err != nil {
			return err
		}
	}

	connected := make([]store.BlockIndexEntry, 0, len(candidateBlocks))
	parent := forkPoint
	for i, b := range candidateBlocks {
		idx, err := connectOne(db, params, activeExtensionSuites, b, candidateBytes[i], parent)
		if err != nil {
			rollbackToOriginal(db, params, activeExtensionSuites, connected, disconnectSide, forkPoint)
			return err
		}
		connected = append(connected, idx)
		parent = idx
	}
	return nil
}

// maxMTPWindow bounds how many ancestors medianTimePastFor walks back,
// matching consensus.MedianTimePast's own <=11 block window.
const maxMTPWindow = 11

// medianTimePastFor collects up to maxMTPWindow ancestor timestamps,
// starting at and including parent, for consensus.MedianTimePast.
func medianTimePastFor(db store.Store, parent store.BlockIndexEntry) (uint64, error) {
	timestamps := make([]uint64, 0, maxMTPWindow)
	cur := parent
	for i := 0; i < maxMTPWindow; i++ {
		timestamps = append(timestamps, cur.Header.Timestamp)
		if cur.Height == 0 {
			break
		}
		var err error
		cur, err = db.GetIndexEntry(cur.Header.PrevBlock)
		if err != nil {
			return 0, err
		}
	}
	return consensus.MedianTimePast(timestamps), nil
}

// NextTarget returns the proof-of-work target the block at
// parent.Height+1 must satisfy: parent's own target, unless
// parent.Height+1 lands on a retarget boundary, in which case spec.md
// section 4.6's window is walked back from parent to compute the
// adjustment.
func NextTarget(db store.Store, parent store.BlockIndexEntry) ([32]byte, error) {
	nextHeight := parent.Height + 1
	if nextHeight%consensus.RetargetWindow != 0 {
		return parent.Header.Target, nil
	}

	cur := parent
	for i := uint64(0); i < consensus.RetargetWindow-1; i++ {
		if cur.Height == 0 {
			break
		}
		var err error
		cur, err = db.GetIndexEntry(cur.Header.PrevBlock)
		if err != nil {
			return [32]byte{}, err
		}
	}
	return consensus.RetargetV1(parent.Header.Target, cur.Header.Timestamp, parent.Header.Timestamp), nil
}

// AcceptBlock stateless-validates b and connects it directly onto the
// store's current tip (or, for the very first block committed, onto the
// implicit empty-chain parent). It does not attempt to detect or switch
// onto a side branch; a block whose parent is not the current tip is
// rejected, since reconciling a side branch requires the caller to
// already hold its blocks and drive FindForkPoint/Reorganize explicitly.
func AcceptBlock(db store.Store, params ChainParams, activeExtensionSuites map[uint8]bool, b *consensus.Block, blockBytes []byte, nowUnix uint64) (store.BlockIndexEntry, error) {
	manifest, err := db.GetManifest()
	if err != nil {
		return store.BlockIndexEntry{}, err
	}

	if manifest.TipHash == (chainhash.Hash{}) {
		if b.Header.PrevBlock != (chainhash.Hash{}) {
			return store.BlockIndexEntry{}, errors.New("reorg: first block accepted must be a genesis block (zero prev_block_hash)")
		}
		ctx := consensus.StatelessContext{
			ChainID:          params.ChainID,
			ExpectedPrevHash: chainhash.Hash{},
			Target:           b.Header.Target,
			MedianTimePast:   0,
			ParentTimestamp:  b.Header.Timestamp, // no real parent: neutralize the max-step-from-parent check
			LocalClockUnix:   nowUnix,
			Height:           0,
			Caps:             params.Caps,
		}
		if err := consensus.StatelessValidate(b, ctx); err != nil {
			return store.BlockIndexEntry{}, err
		}
		// Height wraps to 0 when connectOne adds 1: there is no real
		// parent below genesis, so this is the cleanest way to hand
		// connectOne the "height 0" case through its usual parent.Height+1
		// arithmetic rather than special-casing height computation there.
		genesisParent := store.BlockIndexEntry{CumulativeWork: big.NewInt(0), Height: ^uint64(0)}
		return connectOne(db, params, activeExtensionSuites, b, blockBytes, genesisParent)
	}

	if b.Header.PrevBlock != manifest.TipHash {
		return store.BlockIndexEntry{}, errors.New("reorg: block does not extend the current tip")
	}
	parent, err := db.GetIndexEntry(manifest.TipHash)
	if err != nil {
		return store.BlockIndexEntry{}, err
	}

	target, err := NextTarget(db, parent)
	if err != nil {
		return store.BlockIndexEntry{}, err
	}
	mtp, err := medianTimePastFor(db, parent)
	if err != nil {
		return store.BlockIndexEntry{}, err
	}
	ctx := consensus.StatelessContext{
		ChainID:          params.ChainID,
		ExpectedPrevHash: parent.Hash,
		Target:           target,
		MedianTimePast:   mtp,
		ParentTimestamp:  parent.Header.Timestamp,
		LocalClockUnix:   nowUnix,
		Height:           parent.Height + 1,
		Caps:             params.Caps,
	}
	if err := consensus.StatelessValidate(b, ctx); err != nil {
		return store.BlockIndexEntry{}, err
	}
	return connectOne(db, params, activeExtensionSuites, b, blockBytes, parent)
}

// rollbackToOriginal is called when reconnecting the candidate branch
// fails partway through. It disconnects whatever candidate blocks were
// connected so far, then replays the original branch's own blocks from
// their stored bytes, restoring the pre-reorg tip.
func rollbackToOriginal(db store.Store, params ChainParams, activeExtensionSuites map[uint8]bool, connected []store.BlockIndexEntry, disconnectSide []store.BlockIndexEntry, forkPoint store.BlockIndexEntry) {
	for i := len(connected) - 1; i >= 0; i-- {
		if err := disconnectOne(db, connected[i]); err != nil {
			rlog.RorgLog.Errorf("reorg rollback: failed to disconnect candidate block %s: %v", connected[i].Hash, err)
			return
		}
	}

	parent := forkPoint
	for i := len(disconnectSide) - 1; i >= 0; i-- {
		original := disconnectSide[i]
		blockBytes, err := db.GetBlockBytes(original.Hash)
		if err != nil {
			rlog.RorgLog.Errorf("reorg rollback: failed to load original block %s: %v", original.Hash, err)
			return
		}
		b, err := consensus.ParseBlock(blockBytes)
		if err != nil {
			rlog.RorgLog.Errorf("reorg rollback: failed to parse original block %s: %v", original.Hash, err)
			return
		}
		idx, err := connectOne(db, params, activeExtensionSuites, b, blockBytes, parent)
		if err != nil {
			rlog.RorgLog.Errorf("reorg rollback: failed to reconnect original block %s: %v", original.Hash, err)
			return
		}
		parent = idx
	}
}
