// Copyright (c) 2018 The ExchangeCoin team
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"github.com/rubinprotocol/rubind/chainhash"
	"github.com/rubinprotocol/rubind/consensus"
	"github.com/rubinprotocol/rubind/wire"
)

// genesisCoinbase builds the single coinbase transaction shared by every
// preset network: a standard-kind tx with the canonical null coinbase
// input, no outputs, and an empty witness/da_payload section. Real
// premine, if any, is a network-specific concern layered on top of the
// shared genesis shape; none of the presets below mint one.
func genesisCoinbase() *consensus.Tx {
	w := wire.NewWriter(64)
	w.WriteU32LE(1)                 // version
	w.WriteU8(consensus.TxKindStandard)
	w.WriteU64LE(0)                 // tx_nonce: zero is allowed for the coinbase
	w.WriteCompactSize(1)           // input count
	w.WriteBytes(make([]byte, 32))  // prev_txid: all-zero
	w.WriteU32LE(0xFFFFFFFF)        // prev_vout
	w.WriteBoundedBytes(nil)        // script_sig: empty
	w.WriteU32LE(0xFFFFFFFF)        // sequence
	w.WriteCompactSize(0)           // output count
	w.WriteU32LE(0)                 // locktime: genesis is height 0
	w.WriteCompactSize(0)           // witness count
	w.WriteBoundedBytes(nil)        // da_payload: empty

	tx, err := consensus.ParseTx(wire.NewReader(w.Bytes()))
	if err != nil {
		// The bytes above are hand-built to satisfy ParseTx's own field
		// order; a failure here means this file has drifted from
		// consensus/tx.go and must be fixed, not recovered from.
		panic("chaincfg: malformed genesis coinbase: " + err.Error())
	}
	return tx
}

// buildGenesis assembles the 116-byte genesis header bytes and the
// genesis coinbase bytes for a preset network, computing the header's
// merkle_root from the actual coinbase txid rather than hard-coding it,
// mirroring the teacher's MainNetParams genesis construction.
func buildGenesis(timestamp uint64, target [32]byte) ([]byte, []byte) {
	cb := genesisCoinbase()
	root := consensus.TxIDMerkleRoot([]chainhash.Hash{cb.TxID()}, chainhash.SoftwareSHA3)

	header := consensus.BlockHeader{
		Version:    1,
		PrevBlock:  chainhash.Hash{},
		MerkleRoot: root,
		Timestamp:  timestamp,
		Target:     target,
		Nonce:      0,
	}
	headerBytes := consensus.SerializeHeader(header)

	w := wire.NewWriter(128)
	consensus.EncodeTx(w, cb)
	return headerBytes, w.Bytes()
}

// powLimitAll is the loosest possible target: every header hash below
// 2^256-1 satisfies it. All three presets below use it unchanged as their
// genesis target; none narrows it per network.
var powLimitAll = [32]byte{
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
}

// MainNetProfile returns the chain instance profile for the primary
// network. Its DNS seeds and genesis timestamp are placeholders until a
// real network launches; the wire format and chain_id derivation are not.
func MainNetProfile() *Profile {
	header, tx := buildGenesis(1722000000, powLimitAll) // Fri Jul 26 2024
	return &Profile{
		Name:               "mainnet",
		DefaultPort:        "18555",
		DNSSeeds:           []string{"seed.rubinprotocol.org"},
		GenesisHeaderBytes: header,
		GenesisTxBytes:     tx,
		Deployments: []Deployment{
			{Name: "extension-suites-v1", Bit: 0, StartHeight: 0, TimeoutHeight: 262800},
		},
		ExtensionActivationHeight: 262800,
		ExtensionAllowedSuites:    []uint8{consensus.SuiteMLDSA87, consensus.SuiteSLHDSA},
	}
}

// TestNetProfile returns the chain instance profile for the public test
// network: same wire/consensus rules as mainnet, a distinct genesis
// timestamp so its chain_id and blocks never collide with mainnet's, and
// a shorter deployment window for faster feature-bit iteration.
func TestNetProfile() *Profile {
	header, tx := buildGenesis(1722086400, powLimitAll)
	return &Profile{
		Name:               "testnet",
		DefaultPort:        "28555",
		DNSSeeds:           []string{"testnet-seed.rubinprotocol.org"},
		GenesisHeaderBytes: header,
		GenesisTxBytes:     tx,
		Deployments: []Deployment{
			{Name: "extension-suites-v1", Bit: 0, StartHeight: 0, TimeoutHeight: 4032},
		},
		ExtensionActivationHeight: 4032,
		ExtensionAllowedSuites:    []uint8{consensus.SuiteMLDSA87, consensus.SuiteSLHDSA},
	}
}

// SimNetProfile returns the chain instance profile for local simulation: a
// distinct genesis, no DNS seeds (peers are configured explicitly), and
// extension suites active from height zero so harnesses can exercise the
// Extension covenant without waiting out a deployment window.
func SimNetProfile() *Profile {
	header, tx := buildGenesis(1577836800, powLimitAll) // Wed Jan 1 2020
	return &Profile{
		Name:                      "simnet",
		DefaultPort:               "18565",
		DNSSeeds:                  nil,
		GenesisHeaderBytes:        header,
		GenesisTxBytes:            tx,
		Deployments:               nil,
		ExtensionActivationHeight: 0,
		ExtensionAllowedSuites:    []uint8{consensus.SuiteMLDSA87, consensus.SuiteSLHDSA},
	}
}
