// Copyright (c) 2018 The ExchangeCoin team
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package consensus

import (
	"bytes"

	"github.com/rubinprotocol/rubind/chainhash"
	"github.com/rubinprotocol/rubind/wire"
)

// Outpoint is the key into the UTXO set: a previous transaction id and
// output index.
type Outpoint struct {
	TxID chainhash.Hash
	Vout uint32
}

// TxInput is a single transaction input.
type TxInput struct {
	PrevTxID  chainhash.Hash
	PrevVout  uint32
	ScriptSig []byte
	Sequence  uint32
}

// TxOutput is a single transaction output: a value and a covenant
// predicate over how it may be spent.
type TxOutput struct {
	Value        uint64
	CovenantType uint16
	CovenantData []byte
}

// WitnessItem authorizes one input: a suite-tagged public key and
// signature pair.
type WitnessItem struct {
	SuiteID   uint8
	Pubkey    []byte
	Signature []byte
}

// DACommitFields are the extra core fields carried by a tx_kind ==
// TxKindDACommit transaction. Grounded on the Go conformance reference's
// tx_parse.go, since spec.md names the DA-commit kind but does not lay out
// its byte format.
type DACommitFields struct {
	DAID            chainhash.Hash
	ChunkCount      uint16
	RetlDomainID    chainhash.Hash
	BatchNumber     uint64
	TxDataRoot      chainhash.Hash
	StateRoot       chainhash.Hash
	WithdrawalsRoot chainhash.Hash
	BatchSigSuite   uint8
	BatchSig        []byte
}

// DAChunkFields are the extra core fields of a tx_kind == TxKindDAChunk
// transaction.
type DAChunkFields struct {
	DAID       chainhash.Hash
	ChunkIndex uint16
	ChunkHash  chainhash.Hash
}

// Tx is a fully parsed transaction.
type Tx struct {
	Version    uint32
	TxKind     uint8
	TxNonce    uint64
	Inputs     []TxInput
	Outputs    []TxOutput
	Locktime  uint32
	Witness   []WitnessItem // flat, consumed positionally by the covenant engine
	DAPayload []byte
	DACommit   *DACommitFields
	DAChunk    *DAChunkFields
	coreBytes  []byte
	fullBytes  []byte
}

// IsCoinbase reports whether tx is a coinbase transaction per spec.md
// section 3's coinbase-input shape.
func (tx *Tx) IsCoinbase() bool {
	if len(tx.Inputs) != 1 {
		return false
	}
	in := tx.Inputs[0]
	return in.PrevTxID == (chainhash.Hash{}) &&
		in.PrevVout == 0xFFFFFFFF &&
		in.Sequence == 0xFFFFFFFF &&
		len(in.ScriptSig) == 0 &&
		tx.TxNonce == 0
}

// TxID returns SHA3-256 of the core bytes (everything up to and including
// locktime).
func (tx *Tx) TxID() chainhash.Hash {
	return chainhash.HashH(tx.coreBytes)
}

// WtxID returns SHA3-256 of the core bytes concatenated with the witness
// bytes and the DA payload bytes.
func (tx *Tx) WtxID() chainhash.Hash {
	return chainhash.HashH(tx.fullBytes)
}

// witnessSuiteLens returns the canonical pubkey/signature length rule for
// suiteID, per spec.md section 4.2's suite catalogue. ok is false for any
// suite not in the catalogue; variablePubkey/variableSig are true for
// fields whose length is a bound rather than a fixed size.
//
// A sentinel item is either a pure keyless placeholder (both fields
// empty) or an HTLC/Vault path-selector item: a 1-byte pubkey carrying
// the claim/refund or owner/recovery selector, and a signature field
// carrying an HTLC claim preimage (empty on every other path). Both
// fields are therefore length-prefixed, not fixed at zero, so ParseTx
// can actually produce what checkHTLCSpend/checkVaultSpend expect.
func witnessSuiteLens(suiteID uint8) (pubkeyLen int, sigLen int, variablePubkey bool, variableSig bool, ok bool) {
	switch suiteID {
	case SuiteSentinel:
		return 1, MaxPreimageLen, true, true, true
	case SuiteMLDSA87:
		return MLDSA87PubkeyLen, MLDSA87SignatureLen, false, false, true
	case SuiteSLHDSA:
		return SLHDSAPubkeyLen, SLHDSAMaxSigLen, false, true, true
	default:
		return 0, 0, false, false, false
	}
}

// ParseTx parses a transaction from r per the fixed field order in
// spec.md section 4.2: version, kind, nonce, inputs, outputs, locktime,
// witness, DA payload. The witness is returned as one flat list of items
// whose length is the wire's own witness count; the parser does not tie
// it to the number of inputs. Items are assigned to inputs later, in
// order, by how many each input's covenant consumes.
func ParseTx(r *wire.Reader) (*Tx, error) {
	start := r.Offset()

	version, err := r.ReadU32LE()
	if err != nil {
		return nil, ruleError(ErrTxParse, "tx: short read on version")
	}
	kind, err := r.ReadU8()
	if err != nil {
		return nil, ruleError(ErrTxParse, "tx: short read on tx_kind")
	}
	nonce, err := r.ReadU64LE()
	if err != nil {
		return nil, ruleError(ErrTxParse, "tx: short read on tx_nonce")
	}

	inCount, err := r.ReadCompactSize()
	if err != nil {
		return nil, ruleError(ErrTxParse, "tx: bad input count")
	}
	if inCount > MaxTxInputs {
		return nil, ruleError(ErrTxParse, "tx: too many inputs")
	}
	inputs := make([]TxInput, inCount)
	for i := range inputs {
		prevTxID, err := r.ReadHash32()
		if err != nil {
			return nil, ruleError(ErrTxParse, "tx: short read on prev_txid")
		}
		prevVout, err := r.ReadU32LE()
		if err != nil {
			return nil, ruleError(ErrTxParse, "tx: short read on prev_vout")
		}
		scriptSig, err := r.ReadBoundedBytes(MaxScriptSigBytes)
		if err != nil {
			return nil, ruleError(ErrTxParse, "tx: script_sig overflow or short read")
		}
		sequence, err := r.ReadU32LE()
		if err != nil {
			return nil, ruleError(ErrTxParse, "tx: short read on sequence")
		}
		inputs[i] = TxInput{
			PrevTxID:  chainhash.Hash(prevTxID),
			PrevVout:  prevVout,
			ScriptSig: append([]byte(nil), scriptSig...),
			Sequence:  sequence,
		}
	}

	outCount, err := r.ReadCompactSize()
	if err != nil {
		return nil, ruleError(ErrTxParse, "tx: bad output count")
	}
	if outCount > MaxTxOutputs {
		return nil, ruleError(ErrTxParse, "tx: too many outputs")
	}
	outputs := make([]TxOutput, outCount)
	for i := range outputs {
		value, err := r.ReadU64LE()
		if err != nil {
			return nil, ruleError(ErrTxParse, "tx: short read on output value")
		}
		covType, err := r.ReadU16LE()
		if err != nil {
			return nil, ruleError(ErrTxParse, "tx: short read on covenant_type")
		}
		covData, err := r.ReadBoundedBytes(uint64(MaxDABytesPerBlock))
		if err != nil {
			return nil, ruleError(ErrTxParse, "tx: bad covenant_data length")
		}
		outputs[i] = TxOutput{
			Value:        value,
			CovenantType: covType,
			CovenantData: append([]byte(nil), covData...),
		}
	}

	locktime, err := r.ReadU32LE()
	if err != nil {
		return nil, ruleError(ErrTxParse, "tx: short read on locktime")
	}

	coreEnd := r.Offset()

	witCount, err := r.ReadCompactSize()
	if err != nil {
		return nil, ruleError(ErrTxParse, "tx: bad witness count")
	}
	if witCount > MaxWitnessItems {
		return nil, ruleError(ErrTxWitnessOverflow, "tx: too many witness items")
	}
	witnessItems := make([]WitnessItem, witCount)
	witnessBytes := 0
	countWitnessBytes := func(n int) error {
		witnessBytes += n
		if witnessBytes > MaxWitnessBytesPerTx {
			return ruleError(ErrTxWitnessOverflow, "tx: witness section exceeds byte cap")
		}
		return nil
	}
	for i := range witnessItems {
		suiteID, err := r.ReadU8()
		if err != nil {
			return nil, ruleError(ErrTxParse, "tx: short read on suite_id")
		}
		if err := countWitnessBytes(1); err != nil {
			return nil, err
		}
		pubkeyLen, sigLen, variablePubkey, variableSig, ok := witnessSuiteLens(suiteID)
		if !ok {
			return nil, ruleError(ErrTxSigAlgInvalid, "tx: unknown witness suite")
		}
		var pubkey []byte
		if variablePubkey {
			pk, err := r.ReadBoundedBytes(uint64(pubkeyLen))
			if err != nil {
				return nil, ruleError(ErrTxSigNonCanonical, "tx: bad variable pubkey length")
			}
			pubkey = pk
			if err := countWitnessBytes(wire.CompactSizeLen(uint64(len(pk))) + len(pk)); err != nil {
				return nil, err
			}
		} else {
			pk, err := r.ReadBytes(pubkeyLen)
			if err != nil {
				return nil, ruleError(ErrTxParse, "tx: short read on pubkey")
			}
			pubkey = pk
			if err := countWitnessBytes(len(pk)); err != nil {
				return nil, err
			}
		}
		var signature []byte
		if variableSig {
			sig, err := r.ReadBoundedBytes(uint64(sigLen))
			if err != nil {
				return nil, ruleError(ErrTxSigNonCanonical, "tx: bad variable signature length")
			}
			if suiteID != SuiteSentinel && len(sig) < 1 {
				return nil, ruleError(ErrTxSigNonCanonical, "tx: empty variable signature")
			}
			signature = sig
			if err := countWitnessBytes(wire.CompactSizeLen(uint64(len(sig))) + len(sig)); err != nil {
				return nil, err
			}
		} else {
			sig, err := r.ReadBytes(sigLen)
			if err != nil {
				return nil, ruleError(ErrTxSigNonCanonical, "tx: short read on fixed signature")
			}
			signature = sig
			if err := countWitnessBytes(len(sig)); err != nil {
				return nil, err
			}
		}
		witnessItems[i] = WitnessItem{
			SuiteID:   suiteID,
			Pubkey:    append([]byte(nil), pubkey...),
			Signature: append([]byte(nil), signature...),
		}
	}

	daPayload, err := r.ReadBoundedBytes(uint64(MaxDABytesPerBlock))
	if err != nil {
		return nil, ruleError(ErrTxParse, "tx: bad da_payload length")
	}
	if kind == TxKindStandard && len(daPayload) != 0 {
		return nil, ruleError(ErrTxParse, "tx: standard tx must carry empty da_payload")
	}

	tx := &Tx{
		Version:   version,
		TxKind:    kind,
		TxNonce:   nonce,
		Inputs:    inputs,
		Outputs:   outputs,
		Locktime:  locktime,
		DAPayload: append([]byte(nil), daPayload...),
	}

	switch kind {
	case TxKindDACommit:
		fields, err := parseDACommit(tx.DAPayload)
		if err != nil {
			return nil, err
		}
		tx.DACommit = fields
	case TxKindDAChunk:
		fields, err := parseDAChunk(tx.DAPayload)
		if err != nil {
			return nil, err
		}
		tx.DAChunk = fields
	}

	tx.Witness = witnessItems

	full := r.Offset()
	all := sliceBetween(r, start, full)
	tx.fullBytes = append([]byte(nil), all...)
	tx.coreBytes = append([]byte(nil), all[:coreEnd-start]...)

	return tx, nil
}

// sliceBetween extracts bytes [start,end) from the reader's original
// buffer, read through Reader.Underlying, so callers reconstruct spans
// from already-consumed offsets without re-serializing.
func sliceBetween(r *wire.Reader, start, end int) []byte {
	return r.Underlying()[start:end]
}

func parseDACommit(payload []byte) (*DACommitFields, error) {
	r := wire.NewReader(payload)
	daID, err := r.ReadHash32()
	if err != nil {
		return nil, ruleError(ErrBlockDAInvalid, "da_commit: short read on da_id")
	}
	chunkCount, err := r.ReadU16LE()
	if err != nil {
		return nil, ruleError(ErrBlockDAInvalid, "da_commit: short read on chunk_count")
	}
	if chunkCount > MaxDAChunkCount {
		return nil, ruleError(ErrBlockDAInvalid, "da_commit: chunk_count exceeds cap")
	}
	retlDomainID, err := r.ReadHash32()
	if err != nil {
		return nil, ruleError(ErrBlockDAInvalid, "da_commit: short read on retl_domain_id")
	}
	batchNumber, err := r.ReadU64LE()
	if err != nil {
		return nil, ruleError(ErrBlockDAInvalid, "da_commit: short read on batch_number")
	}
	txDataRoot, err := r.ReadHash32()
	if err != nil {
		return nil, ruleError(ErrBlockDAInvalid, "da_commit: short read on tx_data_root")
	}
	stateRoot, err := r.ReadHash32()
	if err != nil {
		return nil, ruleError(ErrBlockDAInvalid, "da_commit: short read on state_root")
	}
	withdrawalsRoot, err := r.ReadHash32()
	if err != nil {
		return nil, ruleError(ErrBlockDAInvalid, "da_commit: short read on withdrawals_root")
	}
	sigSuite, err := r.ReadU8()
	if err != nil {
		return nil, ruleError(ErrBlockDAInvalid, "da_commit: short read on batch_sig_suite")
	}
	sig, err := r.ReadBoundedBytes(uint64(SLHDSAMaxSigLen))
	if err != nil {
		return nil, ruleError(ErrBlockDAInvalid, "da_commit: bad batch_sig length")
	}
	if !r.AtEnd() {
		return nil, ruleError(ErrBlockDAInvalid, "da_commit: trailing bytes")
	}
	return &DACommitFields{
		DAID:            chainhash.Hash(daID),
		ChunkCount:      chunkCount,
		RetlDomainID:    chainhash.Hash(retlDomainID),
		BatchNumber:     batchNumber,
		TxDataRoot:      chainhash.Hash(txDataRoot),
		StateRoot:       chainhash.Hash(stateRoot),
		WithdrawalsRoot: chainhash.Hash(withdrawalsRoot),
		BatchSigSuite:   sigSuite,
		BatchSig:        append([]byte(nil), sig...),
	}, nil
}

func parseDAChunk(payload []byte) (*DAChunkFields, error) {
	r := wire.NewReader(payload)
	daID, err := r.ReadHash32()
	if err != nil {
		return nil, ruleError(ErrBlockDAInvalid, "da_chunk: short read on da_id")
	}
	chunkIndex, err := r.ReadU16LE()
	if err != nil {
		return nil, ruleError(ErrBlockDAInvalid, "da_chunk: short read on chunk_index")
	}
	chunkHash, err := r.ReadHash32()
	if err != nil {
		return nil, ruleError(ErrBlockDAInvalid, "da_chunk: short read on chunk_hash")
	}
	if !r.AtEnd() {
		return nil, ruleError(ErrBlockDAInvalid, "da_chunk: trailing bytes")
	}
	return &DAChunkFields{
		DAID:       chainhash.Hash(daID),
		ChunkIndex: chunkIndex,
		ChunkHash:  chainhash.Hash(chunkHash),
	}, nil
}

// EncodeTx writes tx to w in the same field order ParseTx expects.
func EncodeTx(w *wire.Writer, tx *Tx) {
	w.WriteU32LE(tx.Version)
	w.WriteU8(tx.TxKind)
	w.WriteU64LE(tx.TxNonce)

	w.WriteCompactSize(uint64(len(tx.Inputs)))
	for _, in := range tx.Inputs {
		w.WriteBytes(in.PrevTxID[:])
		w.WriteU32LE(in.PrevVout)
		w.WriteBoundedBytes(in.ScriptSig)
		w.WriteU32LE(in.Sequence)
	}

	w.WriteCompactSize(uint64(len(tx.Outputs)))
	for _, out := range tx.Outputs {
		EncodeTxOutput(w, out)
	}

	w.WriteU32LE(tx.Locktime)

	w.WriteCompactSize(uint64(len(tx.Witness)))
	for _, item := range tx.Witness {
		w.WriteU8(item.SuiteID)
		_, _, variablePubkey, variableSig, _ := witnessSuiteLens(item.SuiteID)
		if variablePubkey {
			w.WriteBoundedBytes(item.Pubkey)
		} else {
			w.WriteBytes(item.Pubkey)
		}
		if variableSig {
			w.WriteBoundedBytes(item.Signature)
		} else {
			w.WriteBytes(item.Signature)
		}
	}

	w.WriteBoundedBytes(tx.DAPayload)
}

// EncodeTxOutput writes a single output using the serialization spec.md
// section 4.7 also reuses inside the sighash preimage.
func EncodeTxOutput(w *wire.Writer, out TxOutput) {
	w.WriteU64LE(out.Value)
	w.WriteU16LE(out.CovenantType)
	w.WriteBoundedBytes(out.CovenantData)
}

// SerializeTxOutput returns the standalone encoding of a single output.
func SerializeTxOutput(out TxOutput) []byte {
	w := wire.NewWriter(8 + 2 + 9 + len(out.CovenantData))
	EncodeTxOutput(w, out)
	return w.Bytes()
}

// SerializeDACore returns the raw core-field bytes, used by the sighash
// preimage's da-core digest for tx_kind != 0.
func (tx *Tx) SerializeDACore() []byte {
	switch tx.TxKind {
	case TxKindDACommit:
		if tx.DACommit == nil {
			return nil
		}
		w := wire.NewWriter(128)
		f := tx.DACommit
		w.WriteBytes(f.DAID[:])
		w.WriteU16LE(f.ChunkCount)
		w.WriteBytes(f.RetlDomainID[:])
		w.WriteU64LE(f.BatchNumber)
		w.WriteBytes(f.TxDataRoot[:])
		w.WriteBytes(f.StateRoot[:])
		w.WriteBytes(f.WithdrawalsRoot[:])
		w.WriteU8(f.BatchSigSuite)
		w.WriteBoundedBytes(f.BatchSig)
		return w.Bytes()
	case TxKindDAChunk:
		if tx.DAChunk == nil {
			return nil
		}
		w := wire.NewWriter(64)
		f := tx.DAChunk
		w.WriteBytes(f.DAID[:])
		w.WriteU16LE(f.ChunkIndex)
		w.WriteBytes(f.ChunkHash[:])
		return w.Bytes()
	default:
		return nil
	}
}

// bytesEqual is a tiny helper kept local to avoid importing bytes in every
// caller that only needs equality.
func bytesEqual(a, b []byte) bool {
	return bytes.Equal(a, b)
}
