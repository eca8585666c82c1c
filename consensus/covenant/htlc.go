// Copyright (c) 2018 The ExchangeCoin team
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package covenant

// HTLCData is the parsed covenant_data for a hash/time-locked output.
type HTLCData struct {
	Hash        [32]byte
	LockMode    uint8
	LockValue   uint64
	ClaimKeyID  [32]byte
	RefundKeyID [32]byte
}

// ParseHTLC decodes hash:[32] || lock_mode:u8 || lock_value:u64 ||
// claim_key_id:[32] || refund_key_id:[32], rejecting the degenerate case
// where the two paths share a key id.
func ParseHTLC(data []byte) (HTLCData, error) {
	if len(data) != 32+1+8+32+32 {
		return HTLCData{}, ErrBadCovenantData
	}
	var out HTLCData
	copy(out.Hash[:], data[0:32])
	out.LockMode = data[32]
	out.LockValue = leU64(data[33:41])
	copy(out.ClaimKeyID[:], data[41:73])
	copy(out.RefundKeyID[:], data[73:105])
	if out.ClaimKeyID == out.RefundKeyID {
		return HTLCData{}, ErrBadCovenantData
	}
	return out, nil
}

// HTLC path selectors, carried in the first witness item's pubkey byte.
const (
	htlcPathClaim  = 0x00
	htlcPathRefund = 0x01
)

func checkHTLCSpend(data []byte, ctx SpendContext) error {
	h, err := ParseHTLC(data)
	if err != nil {
		return err
	}
	if len(ctx.Witness) != 2 {
		return ErrWitnessMismatch
	}
	selector := ctx.Witness[0]
	spend := ctx.Witness[1]
	if selector.SuiteID != SuiteSentinel || len(selector.Pubkey) != 1 {
		return ErrWitnessMismatch
	}

	switch selector.Pubkey[0] {
	case htlcPathClaim:
		preimage := selector.Signature
		if len(preimage) < MinPreimageLen || len(preimage) > MaxPreimageLen {
			return ErrBadCovenantData
		}
		if ctx.Hash(preimage) != h.Hash {
			return ErrBadCovenantData
		}
		if spend.SuiteID == SuiteSentinel || ctx.Hash(spend.Pubkey) != h.ClaimKeyID {
			return ErrKeyBindingFailed
		}
	case htlcPathRefund:
		ok, err := ctx.Lock.Satisfied(h.LockMode, h.LockValue)
		if err != nil {
			return err
		}
		if !ok {
			return ErrTimelockNotMet
		}
		if spend.SuiteID == SuiteSentinel || ctx.Hash(spend.Pubkey) != h.RefundKeyID {
			return ErrKeyBindingFailed
		}
	default:
		return ErrWitnessMismatch
	}

	if !ctx.Verify(spend.SuiteID, spend.Pubkey, spend.Signature, ctx.Sighash) {
		return ErrSignatureInvalid
	}
	return nil
}
