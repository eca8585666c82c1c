// Copyright (c) 2018 The ExchangeCoin team
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package covenant

// MultisigData is the parsed covenant_data for a k-of-n multisig output.
type MultisigData struct {
	Threshold uint8
	KeyIDs    [][32]byte
}

func multisigSignerCount(data []byte) (int, error) {
	if len(data) < 2 {
		return 0, ErrBadCovenantData
	}
	n := int(data[1])
	return n, nil
}

// ParseMultisig decodes threshold:u8 || n:u8 || key_id_1..n, requiring the
// key ids to be sorted ascending and unique.
func ParseMultisig(data []byte) (MultisigData, error) {
	if len(data) < 2 {
		return MultisigData{}, ErrBadCovenantData
	}
	threshold := data[0]
	n := int(data[1])
	if n == 0 || int(threshold) > n || len(data) != 2+32*n {
		return MultisigData{}, ErrBadCovenantData
	}
	keyIDs := make([][32]byte, n)
	for i := 0; i < n; i++ {
		copy(keyIDs[i][:], data[2+32*i:2+32*(i+1)])
		if i > 0 && compare32(keyIDs[i-1], keyIDs[i]) >= 0 {
			return MultisigData{}, ErrBadCovenantData
		}
	}
	return MultisigData{Threshold: threshold, KeyIDs: keyIDs}, nil
}

func compare32(a, b [32]byte) int {
	for i := 0; i < 32; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

func checkMultisigSpend(data []byte, ctx SpendContext) error {
	ms, err := ParseMultisig(data)
	if err != nil {
		return err
	}
	if len(ctx.Witness) != len(ms.KeyIDs) {
		return ErrWitnessMismatch
	}
	valid := 0
	for i, item := range ctx.Witness {
		if isSentinelWitness(item) {
			continue
		}
		if ctx.Hash(item.Pubkey) != ms.KeyIDs[i] {
			return ErrKeyBindingFailed
		}
		if !ctx.Verify(item.SuiteID, item.Pubkey, item.Signature, ctx.Sighash) {
			continue
		}
		valid++
	}
	if valid < int(ms.Threshold) {
		return ErrThresholdNotMet
	}
	return nil
}
