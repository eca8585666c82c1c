// Copyright (c) 2018 The ExchangeCoin team
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package covenant

// VaultData is the parsed covenant_data for a Vault output: an owner key
// whose path waits out a spend delay, a recovery key whose path waits on
// an absolute lock, and an optional destination whitelist.
type VaultData struct {
	OwnerKeyID    [32]byte
	RecoveryKeyID [32]byte
	SpendDelay    uint64
	LockMode      uint8
	LockValue     uint64
	Whitelist     [][32]byte
}

// ParseVault decodes owner_key_id || recovery_key_id || spend_delay:u64 ||
// lock_mode:u8 || lock_value:u64 || whitelist_count:u8 ||
// whitelist_key_id*count.
func ParseVault(data []byte) (VaultData, error) {
	const fixed = 32 + 32 + 8 + 1 + 8 + 1
	if len(data) < fixed {
		return VaultData{}, ErrBadCovenantData
	}
	var v VaultData
	copy(v.OwnerKeyID[:], data[0:32])
	copy(v.RecoveryKeyID[:], data[32:64])
	v.SpendDelay = leU64(data[64:72])
	v.LockMode = data[72]
	v.LockValue = leU64(data[73:81])
	count := int(data[81])
	if len(data) != fixed+32*count {
		return VaultData{}, ErrBadCovenantData
	}
	v.Whitelist = make([][32]byte, count)
	for i := 0; i < count; i++ {
		copy(v.Whitelist[i][:], data[fixed+32*i:fixed+32*(i+1)])
	}
	return v, nil
}

// Vault path selectors, carried in the first witness item's pubkey byte.
const (
	vaultPathOwner    = 0x00
	vaultPathRecovery = 0x01
)

func checkVaultSpend(data []byte, ctx SpendContext) error {
	v, err := ParseVault(data)
	if err != nil {
		return err
	}
	if ctx.NumInputs != 1 {
		return ErrVaultMultiInput
	}
	if !ctx.FeeIsZero {
		return ErrVaultMultiInput
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
	case vaultPathOwner:
		if ctx.Lock.Height < ctx.CreationHeight+v.SpendDelay {
			return ErrVaultDelayNotMet
		}
		if spend.SuiteID == SuiteSentinel || ctx.Hash(spend.Pubkey) != v.OwnerKeyID {
			return ErrKeyBindingFailed
		}
	case vaultPathRecovery:
		ok, err := ctx.Lock.Satisfied(v.LockMode, v.LockValue)
		if err != nil {
			return err
		}
		if !ok {
			return ErrTimelockNotMet
		}
		if spend.SuiteID == SuiteSentinel || ctx.Hash(spend.Pubkey) != v.RecoveryKeyID {
			return ErrKeyBindingFailed
		}
		if ctx.DestinationForbidden != nil && ctx.DestinationForbidden(v.OwnerKeyID) {
			return ErrVaultDestination
		}
	default:
		return ErrWitnessMismatch
	}

	if !ctx.Verify(spend.SuiteID, spend.Pubkey, spend.Signature, ctx.Sighash) {
		return ErrSignatureInvalid
	}
	return nil
}
