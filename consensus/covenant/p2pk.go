// Copyright (c) 2018 The ExchangeCoin team
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package covenant

// P2PKData is the parsed covenant_data for a P2PK output: a single-key
// spend predicate.
type P2PKData struct {
	SuiteID uint8
	KeyID   [32]byte
}

// ParseP2PK decodes a P2PK covenant_data blob: suite_id:u8 || key_id:[32].
func ParseP2PK(data []byte) (P2PKData, error) {
	if len(data) != 1+32 {
		return P2PKData{}, ErrBadCovenantData
	}
	var out P2PKData
	out.SuiteID = data[0]
	copy(out.KeyID[:], data[1:33])
	return out, nil
}

func checkP2PKSpend(data []byte, ctx SpendContext) error {
	p2pk, err := ParseP2PK(data)
	if err != nil {
		return err
	}
	if len(ctx.Witness) != 1 {
		return ErrWitnessMismatch
	}
	item := ctx.Witness[0]
	if item.SuiteID != p2pk.SuiteID {
		return ErrSuiteMismatch
	}
	if ctx.Hash(item.Pubkey) != p2pk.KeyID {
		return ErrKeyBindingFailed
	}
	if !ctx.Verify(item.SuiteID, item.Pubkey, item.Signature, ctx.Sighash) {
		return ErrSignatureInvalid
	}
	return nil
}
