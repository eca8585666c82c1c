// Copyright (c) 2018 The ExchangeCoin team
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package consensus

import (
	"github.com/rubinprotocol/rubind/consensus/covenant"
)

// ApplyContext carries the per-block state the stateful phase needs
// beyond the block itself: the chain id bound into every sighash, the
// injected capabilities, the height/timestamp the block is applied at,
// and the already-generated subsidy counter.
type ApplyContext struct {
	ChainID           [32]byte
	Caps              Capabilities
	Height            uint64
	BlockTimestamp    uint64
	AlreadyGenerated  uint64
	ActiveExtensionSuites map[uint8]bool
}

// ApplyBlock runs the stateful phase of block validation per spec.md
// section 4.10: applies every non-coinbase transaction to view in block
// order, then validates the coinbase value bound. It returns the total
// fees collected and the undo record needed to reverse the block later.
func ApplyBlock(b *Block, view *UtxoView, ctx ApplyContext) (fees uint64, undo *UndoRecord, err error) {
	undo = &UndoRecord{}
	var totalFees uint64

	for i, tx := range b.Txs {
		if i == 0 {
			continue // coinbase applied last, below
		}
		txFee, err := applyTx(tx, view, ctx, undo)
		if err != nil {
			return 0, nil, err
		}
		totalFees += txFee
	}

	coinbase := b.Txs[0]
	var coinbaseOut uint64
	for _, out := range coinbase.Outputs {
		coinbaseOut += out.Value
	}
	if err := CheckCoinbaseValue(ctx.Height, ctx.AlreadyGenerated, totalFees, coinbaseOut); err != nil {
		return 0, nil, err
	}
	applyCoinbaseOutputs(coinbase, ctx.Height, view, undo)

	return totalFees, undo, nil
}

// applyTx applies one non-coinbase transaction's inputs and outputs to
// view, per the seven-step procedure in spec.md section 4.9.
func applyTx(tx *Tx, view *UtxoView, ctx ApplyContext, undo *UndoRecord) (fee uint64, err error) {
	var sumOut uint64
	for _, out := range tx.Outputs {
		next := sumOut + out.Value
		if next < sumOut {
			return 0, ruleError(ErrTxValueConservation, "output value sum overflow")
		}
		sumOut = next
	}

	type lookedUp struct {
		op    Outpoint
		entry *UtxoEntry
	}
	entries := make([]lookedUp, len(tx.Inputs))
	var sumIn uint64
	for i, in := range tx.Inputs {
		op := Outpoint{TxID: in.PrevTxID, Vout: in.PrevVout}
		entry, ok := view.LookupEntry(op)
		if !ok || !IsProvablySpendable(entry.CovenantType) {
			return 0, ruleError(ErrTxMissingUTXO, "input spends an unknown or unspendable outpoint")
		}
		if entry.CreatedByCoinbase && ctx.Height < entry.CreationHeight+CoinbaseMaturity {
			return 0, ruleError(ErrTxCoinbaseImmature, "coinbase output spent before maturity")
		}
		next := sumIn + entry.Value
		if next < sumIn {
			return 0, ruleError(ErrTxValueConservation, "input value sum overflow")
		}
		sumIn = next
		entries[i] = lookedUp{op: op, entry: entry}
	}
	feeIsZero := sumIn == sumOut
	destinationForbidden := func(ownerKeyID [32]byte) bool {
		for _, out := range tx.Outputs {
			switch out.CovenantType {
			case CovenantP2PK:
				p2pk, err := covenant.ParseP2PK(out.CovenantData)
				if err == nil && p2pk.KeyID == ownerKeyID {
					return true
				}
			case CovenantVault:
				v, err := covenant.ParseVault(out.CovenantData)
				if err == nil && v.OwnerKeyID == ownerKeyID {
					return true
				}
			}
		}
		return false
	}

	witnessPos := 0
	for i := range tx.Inputs {
		entry := entries[i].entry
		n, err := covenant.WitnessItemsConsumed(entry.CovenantType, entry.CovenantData)
		if err != nil {
			return 0, ruleError(ErrTxCovenantTypeInvalid, "cannot determine witness item count")
		}
		if witnessPos+n > len(tx.Witness) {
			return 0, ruleError(ErrTxSigInvalid, "witness section exhausted before all inputs consumed")
		}
		items := tx.Witness[witnessPos : witnessPos+n]
		witnessPos += n

		sighash := SighashV1(ctx.ChainID, tx, i, entry.Value, ctx.Caps.Hash)

		spendCtx := covenant.SpendContext{
			Witness:        toCovenantWitness(items),
			Lock:           covenant.LockChecker{Height: ctx.Height, BlockTimestamp: ctx.BlockTimestamp},
			CreationHeight: entry.CreationHeight,
			Sighash:        sighash,
			Verify:         ctx.Caps.Verify,
			Hash:           ctx.Caps.Hash,
			NumInputs:      len(tx.Inputs),
			FeeIsZero:      feeIsZero,
			DestinationForbidden: destinationForbidden,
			ActiveExtensionSuites: ctx.ActiveExtensionSuites,
		}
		if err := covenant.CheckSpend(entry.CovenantType, entry.CovenantData, spendCtx); err != nil {
			return 0, ruleError(classifyCovenantErr(err), err.Error())
		}

		undo.Restored = append(undo.Restored, UndoSpend{Outpoint: entries[i].op, Entry: *entry})
		view.RemoveEntry(entries[i].op)
	}

	if sumOut > sumIn {
		return 0, ruleError(ErrTxValueConservation, "outputs exceed inputs")
	}

	txid := tx.TxID()
	for i, out := range tx.Outputs {
		if !IsProvablySpendable(out.CovenantType) {
			continue
		}
		op := Outpoint{TxID: txid, Vout: uint32(i)}
		view.AddEntry(op, &UtxoEntry{
			Value:             out.Value,
			CovenantType:      out.CovenantType,
			CovenantData:      out.CovenantData,
			CreationHeight:    ctx.Height,
			CreatedByCoinbase: false,
		})
		undo.Created = append(undo.Created, op)
	}

	return sumIn - sumOut, nil
}

// DisconnectBlock reverses a previously applied block's effect on view
// using its undo record: created outpoints are deleted first, then spent
// entries are restored, matching the order spec.md section 4.11 requires
// during a reorg's disconnect phase.
func DisconnectBlock(view *UtxoView, undo *UndoRecord) {
	for _, op := range undo.Created {
		view.RemoveEntry(op)
	}
	for _, restored := range undo.Restored {
		entry := restored.Entry
		view.AddEntry(restored.Outpoint, &entry)
	}
}

// applyCoinbaseOutputs inserts the coinbase's spendable outputs into view.
// The coinbase has no inputs to consume, so it contributes only creates to
// the undo record.
func applyCoinbaseOutputs(coinbase *Tx, height uint64, view *UtxoView, undo *UndoRecord) {
	txid := coinbase.TxID()
	for i, out := range coinbase.Outputs {
		if !IsProvablySpendable(out.CovenantType) {
			continue
		}
		op := Outpoint{TxID: txid, Vout: uint32(i)}
		view.AddEntry(op, &UtxoEntry{
			Value:             out.Value,
			CovenantType:      out.CovenantType,
			CovenantData:      out.CovenantData,
			CreationHeight:    height,
			CreatedByCoinbase: true,
		})
		undo.Created = append(undo.Created, op)
	}
}

// toCovenantWitness adapts consensus.WitnessItem to covenant.WitnessItem.
func toCovenantWitness(items []WitnessItem) []covenant.WitnessItem {
	out := make([]covenant.WitnessItem, len(items))
	for i, it := range items {
		out[i] = covenant.WitnessItem{SuiteID: it.SuiteID, Pubkey: it.Pubkey, Signature: it.Signature}
	}
	return out
}

// classifyCovenantErr maps a covenant package error to the nearest
// transaction-level ErrorKind from spec.md section 7.
func classifyCovenantErr(err error) ErrorKind {
	switch err {
	case covenant.ErrTimelockNotMet:
		return ErrTxTimelockNotMet
	case covenant.ErrVaultDelayNotMet:
		return ErrTxVaultDelayNotMet
	case covenant.ErrVaultDestination:
		return ErrTxVaultDestinationForbidden
	case covenant.ErrVaultMultiInput:
		return ErrTxVaultMultiInput
	case covenant.ErrSignatureInvalid, covenant.ErrThresholdNotMet:
		return ErrTxSigInvalid
	case covenant.ErrKeyBindingFailed, covenant.ErrSuiteMismatch:
		return ErrTxSigAlgInvalid
	default:
		return ErrTxCovenantTypeInvalid
	}
}
