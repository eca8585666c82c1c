// Copyright (c) 2018 The ExchangeCoin team
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package covenant

import "github.com/rubinprotocol/rubind/wire"

// ExtensionData is the parsed covenant_data for a profile-gated future
// covenant: an extension id plus an opaque, length-prefixed payload.
type ExtensionData struct {
	ExtID   uint16
	Payload []byte
}

// ParseExtension decodes ext_id:u16 || CompactSize(len) || payload.
func ParseExtension(data []byte) (ExtensionData, error) {
	r := wire.NewReader(data)
	extID, err := r.ReadU16LE()
	if err != nil {
		return ExtensionData{}, ErrBadCovenantData
	}
	payload, err := r.ReadBoundedBytes(uint64(len(data)))
	if err != nil {
		return ExtensionData{}, ErrBadCovenantData
	}
	if !r.AtEnd() {
		return ExtensionData{}, ErrBadCovenantData
	}
	return ExtensionData{ExtID: extID, Payload: append([]byte(nil), payload...)}, nil
}

// checkExtensionSpend enforces the pre/post activation rule: before the
// extension's governing profile activates it, only the keyless sentinel
// witness is accepted; once active, the spending suite must appear in the
// profile's allow-list and native verification is forwarded unchanged.
func checkExtensionSpend(data []byte, ctx SpendContext) error {
	if _, err := ParseExtension(data); err != nil {
		return err
	}
	if len(ctx.Witness) != 1 {
		return ErrWitnessMismatch
	}
	item := ctx.Witness[0]

	active := ctx.ActiveExtensionSuites != nil
	if !active {
		if !isSentinelWitness(item) {
			return ErrExtensionNotActive
		}
		return nil
	}
	if !ctx.ActiveExtensionSuites[item.SuiteID] {
		return ErrExtensionNotActive
	}
	if !ctx.Verify(item.SuiteID, item.Pubkey, item.Signature, ctx.Sighash) {
		return ErrSignatureInvalid
	}
	return nil
}
