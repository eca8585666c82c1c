// Copyright (c) 2018 The ExchangeCoin team
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package consensus

import "github.com/rubinprotocol/rubind/wire"

// verifyCost returns the fixed weight contributed by one witness item's
// signature verification, per the per-suite weight table in spec.md
// section 6.
func verifyCost(suiteID uint8) uint64 {
	switch suiteID {
	case SuiteMLDSA87:
		return VerifyCostMLDSA87
	case SuiteSLHDSA:
		return VerifyCostSLHDSA
	case SuiteSentinel:
		return 0
	default:
		return VerifyCostUnknownAllow
	}
}

// TxWeight computes a transaction's contribution to block weight per the
// formula in spec.md section 4.10, along with the raw witness and DA byte
// counts the stateless validator caps independently.
func TxWeight(tx *Tx) (weight uint64, witnessBytes uint64, daBytes uint64) {
	base := uint64(len(tx.coreBytes))
	daWithPrefix := uint64(wire.CompactSizeLen(uint64(len(tx.DAPayload))) + len(tx.DAPayload))
	full := uint64(len(tx.fullBytes))
	witness := full - base - daWithPrefix

	var sigCost uint64
	for _, item := range tx.Witness {
		sigCost += verifyCost(item.SuiteID)
	}

	weight = WitnessDiscountDivisor*base + witness + daWithPrefix + sigCost
	return weight, witness, daWithPrefix
}

// AnchorBytes returns the total covenant_data length across a
// transaction's Anchor-type outputs, counted toward the per-block anchor
// byte cap.
func (tx *Tx) AnchorBytes() uint64 {
	var total uint64
	for _, out := range tx.Outputs {
		if out.CovenantType == CovenantAnchor {
			total += uint64(len(out.CovenantData))
		}
	}
	return total
}
