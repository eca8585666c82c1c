// Copyright (c) 2018 The ExchangeCoin team
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package covenant

import "testing"

// FuzzValidateOutputCovenant asserts that parsing arbitrary covenant_data
// against any known type never panics, regardless of byte content.
func FuzzValidateOutputCovenant(f *testing.F) {
	f.Add(uint16(TypeP2PK), uint64(0), make([]byte, 33))
	f.Add(uint16(TypeTimelock), uint64(0), []byte{})
	f.Add(uint16(TypeHTLC), uint64(0), []byte{0xFF})
	f.Add(uint16(TypeMultisig), uint64(0), []byte{0x00, 0x00})
	f.Add(uint16(TypeVault), uint64(1000), []byte{})
	f.Add(uint16(TypeAnchor), uint64(0), []byte{})
	f.Add(uint16(TypeDACommit), uint64(0), []byte{})
	f.Add(uint16(TypeExtension), uint64(0), []byte{})
	f.Add(uint16(0xFFFF), uint64(0), []byte{})

	f.Fuzz(func(t *testing.T, covenantType uint16, value uint64, data []byte) {
		if len(data) > 1<<16 {
			return
		}
		_ = ValidateOutputCovenant(covenantType, value, data)
	})
}

// FuzzCheckSpend asserts that a spend check over arbitrary covenant_data
// and witness bytes never panics, for any recognized covenant type and a
// fixed, deterministic Verify/Hash capability pair.
func FuzzCheckSpend(f *testing.F) {
	f.Add(uint16(TypeP2PK), append([]byte{SuiteMLDSA87}, make([]byte, 32)...), uint8(SuiteMLDSA87), []byte{0x01}, []byte{0x02})
	f.Add(uint16(TypeTimelock), []byte{LockModeHeight, 0, 0, 0, 0, 0, 0, 0, 0}, SuiteSentinel, []byte{}, []byte{})
	f.Add(uint16(TypeMultisig), []byte{0x01, 0x01}, SuiteMLDSA87, []byte{0x01}, []byte{0x02})

	f.Fuzz(func(t *testing.T, covenantType uint16, data []byte, suiteID uint8, pubkey []byte, signature []byte) {
		if len(data) > 1<<14 || len(pubkey) > 1<<14 || len(signature) > 1<<14 {
			return
		}
		n, err := WitnessItemsConsumed(covenantType, data)
		if err != nil {
			return
		}
		witness := make([]WitnessItem, n)
		for i := range witness {
			witness[i] = WitnessItem{SuiteID: suiteID, Pubkey: pubkey, Signature: signature}
		}
		ctx := SpendContext{
			Witness: witness,
			Lock:    LockChecker{Height: 1, BlockTimestamp: 1},
			Verify:  func(uint8, []byte, []byte, [32]byte) bool { return false },
			Hash:    func(b []byte) [32]byte { var h [32]byte; copy(h[:], b); return h },
			NumInputs: 1,
			DestinationForbidden: func([32]byte) bool { return false },
		}
		_ = CheckSpend(covenantType, data, ctx)
	})
}
