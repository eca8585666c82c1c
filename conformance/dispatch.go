// Copyright (c) 2018 The ExchangeCoin team
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package conformance

import (
	"encoding/hex"
	"fmt"

	"github.com/rubinprotocol/rubind/chainhash"
	"github.com/rubinprotocol/rubind/consensus"
	"github.com/rubinprotocol/rubind/wire"
)

// errBadHex is returned for malformed hex fields; it never reaches the
// caller as a Go error value, only as the response's uppercase Err string.
const errBadHex = "BAD_HEX"

// Dispatch runs req against caps and returns the response. It never
// panics: every consensus call that can fail returns a RuleError that
// errResponse maps to its code, and inputs a consensus call cannot take
// (bad hex, an out-of-range input index) get a bad-input response first.
func Dispatch(req Request, caps consensus.Capabilities) Response {
	switch req.Op {
	case "parse_tx":
		return dispatchParseTx(req)
	case "merkle_root":
		return dispatchMerkleRoot(req, caps)
	case "sighash_v1":
		return dispatchSighashV1(req, caps)
	case "block_hash":
		return dispatchBlockHash(req, caps)
	case "pow_check":
		return dispatchPowCheck(req, caps)
	case "retarget_v1":
		return dispatchRetargetV1(req)
	default:
		return Response{Ok: false, Err: fmt.Sprintf("UNKNOWN_OP:%s", req.Op)}
	}
}

func hexToHash32(s string) (chainhash.Hash, bool) {
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != chainhash.HashSize {
		return chainhash.Hash{}, false
	}
	var h chainhash.Hash
	copy(h[:], b)
	return h, true
}

func dispatchParseTx(req Request) Response {
	txBytes, err := hex.DecodeString(req.TxHex)
	if err != nil {
		return Response{Ok: false, Err: errBadHex}
	}
	tx, err := consensus.ParseTx(wire.NewReader(txBytes))
	if err != nil {
		return errResponse(err)
	}
	txid := tx.TxID()
	wtxid := tx.WtxID()
	return Response{
		Ok:       true,
		TxidHex:  hex.EncodeToString(txid[:]),
		WtxidHex: hex.EncodeToString(wtxid[:]),
	}
}

func dispatchMerkleRoot(req Request, caps consensus.Capabilities) Response {
	txids := make([]chainhash.Hash, len(req.Txids))
	for i, s := range req.Txids {
		h, ok := hexToHash32(s)
		if !ok {
			return Response{Ok: false, Err: errBadHex}
		}
		txids[i] = h
	}
	root := consensus.TxIDMerkleRoot(txids, caps.Hash)
	return Response{Ok: true, MerkleHex: hex.EncodeToString(root[:])}
}

func dispatchSighashV1(req Request, caps consensus.Capabilities) Response {
	txBytes, err := hex.DecodeString(req.TxHex)
	if err != nil {
		return Response{Ok: false, Err: errBadHex}
	}
	tx, err := consensus.ParseTx(wire.NewReader(txBytes))
	if err != nil {
		return errResponse(err)
	}
	if req.InputIndex < 0 || req.InputIndex >= len(tx.Inputs) {
		return Response{Ok: false, Err: "BAD_INPUT_INDEX"}
	}
	chainID, ok := hexToHash32(req.ChainIDHex)
	if !ok {
		return Response{Ok: false, Err: errBadHex}
	}
	digest := consensus.SighashV1(chainID, tx, req.InputIndex, req.InputValue, caps.Hash)
	return Response{Ok: true, DigestHex: hex.EncodeToString(digest[:])}
}

func dispatchBlockHash(req Request, caps consensus.Capabilities) Response {
	headerBytes, err := hex.DecodeString(req.HeaderHex)
	if err != nil {
		return Response{Ok: false, Err: errBadHex}
	}
	header, err := consensus.ParseHeader(headerBytes)
	if err != nil {
		return errResponse(err)
	}
	hash := header.BlockHash(caps.Hash)
	return Response{Ok: true, BlockHash: hex.EncodeToString(hash[:])}
}

func dispatchPowCheck(req Request, caps consensus.Capabilities) Response {
	headerBytes, err := hex.DecodeString(req.HeaderHex)
	if err != nil {
		return Response{Ok: false, Err: errBadHex}
	}
	header, err := consensus.ParseHeader(headerBytes)
	if err != nil {
		return errResponse(err)
	}
	target, ok := hexToHash32(req.TargetHex)
	if !ok {
		return Response{Ok: false, Err: errBadHex}
	}
	blockHash := header.BlockHash(caps.Hash)
	if !consensus.CheckProofOfWork(blockHash, target) {
		return Response{Ok: false, Err: consensus.ErrBlockPoWInvalid.String()}
	}
	return Response{Ok: true}
}

func dispatchRetargetV1(req Request) Response {
	old, ok := hexToHash32(req.TargetOldHex)
	if !ok {
		return Response{Ok: false, Err: errBadHex}
	}
	newTarget := consensus.RetargetV1([32]byte(old), req.TimestampFirst, req.TimestampLast)
	return Response{Ok: true, TargetNew: hex.EncodeToString(newTarget[:])}
}

func errResponse(err error) Response {
	if kind, ok := consensus.KindOf(err); ok {
		return Response{Ok: false, Err: kind.String()}
	}
	return Response{Ok: false, Err: err.Error()}
}
