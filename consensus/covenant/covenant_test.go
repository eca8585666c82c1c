// Copyright (c) 2018 The ExchangeCoin team
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package covenant

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
)

// fakeHash is a deterministic, non-cryptographic stand-in for
// chainhash.SoftwareSHA3 that lets these tests bind a witness pubkey to a
// key_id without pulling in the chainhash package.
func fakeHash(b []byte) [32]byte {
	var out [32]byte
	if len(b) == 0 {
		out[0] = 0xff
		return out
	}
	for i, c := range b {
		out[i%32] ^= c
	}
	return out
}

func keyID(pubkey []byte) [32]byte {
	return fakeHash(pubkey)
}

func alwaysValid(uint8, []byte, []byte, [32]byte) bool { return true }
func alwaysInvalid(uint8, []byte, []byte, [32]byte) bool { return false }

func sentinelItem() WitnessItem {
	return WitnessItem{SuiteID: SuiteSentinel}
}

func TestParseP2PKRoundTrip(t *testing.T) {
	data := make([]byte, 33)
	data[0] = SuiteMLDSA87
	data[1] = 0xAB
	got, err := ParseP2PK(data)
	if err != nil {
		t.Fatalf("ParseP2PK: %v", err)
	}
	if got.SuiteID != SuiteMLDSA87 || got.KeyID[0] != 0xAB {
		t.Fatalf("unexpected parse: %s", spew.Sdump(got))
	}
	if _, err := ParseP2PK(data[:32]); err != ErrBadCovenantData {
		t.Fatalf("short data: got %v, want ErrBadCovenantData", err)
	}
}

func TestCheckP2PKSpend(t *testing.T) {
	pubkey := []byte{1, 2, 3}
	data := append([]byte{SuiteMLDSA87}, keyID(pubkey)[:]...)

	ctx := SpendContext{
		Witness: []WitnessItem{{SuiteID: SuiteMLDSA87, Pubkey: pubkey, Signature: []byte{9}}},
		Hash:    fakeHash,
		Verify:  alwaysValid,
	}
	if err := checkP2PKSpend(data, ctx); err != nil {
		t.Fatalf("valid spend rejected: %v", err)
	}

	badSig := ctx
	badSig.Verify = alwaysInvalid
	if err := checkP2PKSpend(data, badSig); err != ErrSignatureInvalid {
		t.Fatalf("got %v, want ErrSignatureInvalid", err)
	}

	wrongSuite := ctx
	wrongSuite.Witness = []WitnessItem{{SuiteID: SuiteSLHDSA, Pubkey: pubkey}}
	if err := checkP2PKSpend(data, wrongSuite); err != ErrSuiteMismatch {
		t.Fatalf("got %v, want ErrSuiteMismatch", err)
	}

	wrongKey := ctx
	wrongKey.Witness = []WitnessItem{{SuiteID: SuiteMLDSA87, Pubkey: []byte{9, 9, 9}}}
	if err := checkP2PKSpend(data, wrongKey); err != ErrKeyBindingFailed {
		t.Fatalf("got %v, want ErrKeyBindingFailed", err)
	}

	noWitness := ctx
	noWitness.Witness = nil
	if err := checkP2PKSpend(data, noWitness); err != ErrWitnessMismatch {
		t.Fatalf("got %v, want ErrWitnessMismatch", err)
	}
}

func TestCheckTimelockSpend(t *testing.T) {
	data := make([]byte, 9)
	data[0] = LockModeHeight
	data[1] = 100 // lock_value little-endian, low byte only

	notMet := SpendContext{
		Witness: []WitnessItem{sentinelItem()},
		Lock:    LockChecker{Height: 50},
	}
	if err := checkTimelockSpend(data, notMet); err != ErrTimelockNotMet {
		t.Fatalf("got %v, want ErrTimelockNotMet", err)
	}

	met := notMet
	met.Lock = LockChecker{Height: 100}
	if err := checkTimelockSpend(data, met); err != nil {
		t.Fatalf("met lock rejected: %v", err)
	}

	nonSentinel := met
	nonSentinel.Witness = []WitnessItem{{SuiteID: SuiteMLDSA87, Pubkey: []byte{1}}}
	if err := checkTimelockSpend(data, nonSentinel); err != ErrWitnessMismatch {
		t.Fatalf("got %v, want ErrWitnessMismatch", err)
	}
}

func TestCheckHTLCSpendClaimAndRefund(t *testing.T) {
	preimage := make([]byte, 32)
	for i := range preimage {
		preimage[i] = byte(i)
	}
	claimPub := []byte{1, 1, 1}
	refundPub := []byte{2, 2, 2}

	data := make([]byte, 0, 32+1+8+32+32)
	data = append(data, fakeHash(preimage)[:]...)
	data = append(data, LockModeHeight)
	lockValue := make([]byte, 8)
	lockValue[0] = 10
	data = append(data, lockValue...)
	data = append(data, keyID(claimPub)[:]...)
	data = append(data, keyID(refundPub)[:]...)

	claimCtx := SpendContext{
		Witness: []WitnessItem{
			{SuiteID: SuiteSentinel, Pubkey: []byte{htlcPathClaim}, Signature: preimage},
			{SuiteID: SuiteMLDSA87, Pubkey: claimPub, Signature: []byte{7}},
		},
		Hash:   fakeHash,
		Verify: alwaysValid,
	}
	if err := checkHTLCSpend(data, claimCtx); err != nil {
		t.Fatalf("claim path rejected: %v", err)
	}

	refundCtx := SpendContext{
		Witness: []WitnessItem{
			{SuiteID: SuiteSentinel, Pubkey: []byte{htlcPathRefund}},
			{SuiteID: SuiteMLDSA87, Pubkey: refundPub, Signature: []byte{7}},
		},
		Hash:   fakeHash,
		Verify: alwaysValid,
		Lock:   LockChecker{Height: 10},
	}
	if err := checkHTLCSpend(data, refundCtx); err != nil {
		t.Fatalf("refund path rejected: %v", err)
	}

	refundTooEarly := refundCtx
	refundTooEarly.Lock = LockChecker{Height: 0}
	if err := checkHTLCSpend(data, refundTooEarly); err != ErrTimelockNotMet {
		t.Fatalf("got %v, want ErrTimelockNotMet", err)
	}

	badPreimage := claimCtx
	badPreimage.Witness = []WitnessItem{
		{SuiteID: SuiteSentinel, Pubkey: []byte{htlcPathClaim}, Signature: make([]byte, 32)},
		claimCtx.Witness[1],
	}
	if err := checkHTLCSpend(data, badPreimage); err != ErrBadCovenantData {
		t.Fatalf("got %v, want ErrBadCovenantData", err)
	}
}

func TestParseHTLCRejectsSharedKeyID(t *testing.T) {
	data := make([]byte, 32+1+8+32+32)
	if _, err := ParseHTLC(data); err != ErrBadCovenantData {
		t.Fatalf("got %v, want ErrBadCovenantData for identical claim/refund key ids", err)
	}
}

func TestParseMultisigOrderingAndCount(t *testing.T) {
	var k1, k2 [32]byte
	k1[0] = 1
	k2[0] = 2
	data := append([]byte{2, 2}, k1[:]...)
	data = append(data, k2[:]...)
	ms, err := ParseMultisig(data)
	if err != nil {
		t.Fatalf("ParseMultisig: %v", err)
	}
	if ms.Threshold != 2 || len(ms.KeyIDs) != 2 {
		t.Fatalf("unexpected parse: %s", spew.Sdump(ms))
	}

	unsorted := append([]byte{2, 2}, k2[:]...)
	unsorted = append(unsorted, k1[:]...)
	if _, err := ParseMultisig(unsorted); err != ErrBadCovenantData {
		t.Fatalf("got %v, want ErrBadCovenantData for unsorted keys", err)
	}

	thresholdTooHigh := append([]byte{3, 2}, k1[:]...)
	thresholdTooHigh = append(thresholdTooHigh, k2[:]...)
	if _, err := ParseMultisig(thresholdTooHigh); err != ErrBadCovenantData {
		t.Fatalf("got %v, want ErrBadCovenantData for threshold > n", err)
	}
}

func TestCheckMultisigSpendThreshold(t *testing.T) {
	pub1 := []byte{1}
	pub2 := []byte{2}
	k1 := keyID(pub1)
	k2 := keyID(pub2)
	// ParseMultisig requires ascending order; swap if needed.
	data := []byte{2, 2}
	if compare32(k1, k2) < 0 {
		data = append(data, k1[:]...)
		data = append(data, k2[:]...)
	} else {
		data = append(data, k2[:]...)
		data = append(data, k1[:]...)
		pub1, pub2 = pub2, pub1
	}

	oneValid := SpendContext{
		Witness: []WitnessItem{
			{SuiteID: SuiteMLDSA87, Pubkey: pub1, Signature: []byte{1}},
			sentinelItem(),
		},
		Hash:   fakeHash,
		Verify: alwaysValid,
	}
	if err := checkMultisigSpend(data, oneValid); err != ErrThresholdNotMet {
		t.Fatalf("got %v, want ErrThresholdNotMet with 1 of 2 signed", err)
	}

	bothValid := SpendContext{
		Witness: []WitnessItem{
			{SuiteID: SuiteMLDSA87, Pubkey: pub1, Signature: []byte{1}},
			{SuiteID: SuiteMLDSA87, Pubkey: pub2, Signature: []byte{2}},
		},
		Hash:   fakeHash,
		Verify: alwaysValid,
	}
	if err := checkMultisigSpend(data, bothValid); err != nil {
		t.Fatalf("2-of-2 rejected: %v", err)
	}
}

func TestCheckVaultSpendOwnerAndRecovery(t *testing.T) {
	ownerPub := []byte{1, 1}
	recoveryPub := []byte{2, 2}
	owner := keyID(ownerPub)
	recovery := keyID(recoveryPub)

	const fixed = 32 + 32 + 8 + 1 + 8 + 1
	data := make([]byte, fixed)
	copy(data[0:32], owner[:])
	copy(data[32:64], recovery[:])
	data[64] = 5 // spend_delay low byte
	data[72] = LockModeHeight
	data[73] = 20 // lock_value low byte

	ownerCtx := SpendContext{
		Witness: []WitnessItem{
			{SuiteID: SuiteSentinel, Pubkey: []byte{vaultPathOwner}},
			{SuiteID: SuiteMLDSA87, Pubkey: ownerPub, Signature: []byte{1}},
		},
		Hash:           fakeHash,
		Verify:         alwaysValid,
		NumInputs:      1,
		FeeIsZero:      true,
		CreationHeight: 100,
		Lock:           LockChecker{Height: 105},
	}
	if err := checkVaultSpend(data, ownerCtx); err != nil {
		t.Fatalf("owner spend rejected: %v", err)
	}

	tooEarly := ownerCtx
	tooEarly.Lock = LockChecker{Height: 104}
	if err := checkVaultSpend(data, tooEarly); err != ErrVaultDelayNotMet {
		t.Fatalf("got %v, want ErrVaultDelayNotMet", err)
	}

	multiInput := ownerCtx
	multiInput.NumInputs = 2
	if err := checkVaultSpend(data, multiInput); err != ErrVaultMultiInput {
		t.Fatalf("got %v, want ErrVaultMultiInput", err)
	}

	recoveryCtx := SpendContext{
		Witness: []WitnessItem{
			{SuiteID: SuiteSentinel, Pubkey: []byte{vaultPathRecovery}},
			{SuiteID: SuiteMLDSA87, Pubkey: recoveryPub, Signature: []byte{1}},
		},
		Hash:                 fakeHash,
		Verify:               alwaysValid,
		NumInputs:            1,
		FeeIsZero:            true,
		Lock:                 LockChecker{Height: 1000, BlockTimestamp: 0},
		DestinationForbidden: func(k [32]byte) bool { return k == owner },
	}
	if err := checkVaultSpend(data, recoveryCtx); err != ErrVaultDestination {
		t.Fatalf("got %v, want ErrVaultDestination", err)
	}

	recoveryCtx.DestinationForbidden = func([32]byte) bool { return false }
	if err := checkVaultSpend(data, recoveryCtx); err != nil {
		t.Fatalf("recovery spend rejected: %v", err)
	}
}

func TestCheckExtensionSpendActivation(t *testing.T) {
	data := []byte{0x01, 0x00, 0x01, 0xAA}

	preActivation := SpendContext{
		Witness: []WitnessItem{sentinelItem()},
	}
	if err := checkExtensionSpend(data, preActivation); err != nil {
		t.Fatalf("sentinel witness before activation rejected: %v", err)
	}

	preActivationSigned := preActivation
	preActivationSigned.Witness = []WitnessItem{{SuiteID: SuiteMLDSA87, Pubkey: []byte{1}}}
	if err := checkExtensionSpend(data, preActivationSigned); err != ErrExtensionNotActive {
		t.Fatalf("got %v, want ErrExtensionNotActive before activation", err)
	}

	active := SpendContext{
		Witness:               []WitnessItem{{SuiteID: SuiteMLDSA87, Pubkey: []byte{1}, Signature: []byte{2}}},
		ActiveExtensionSuites: map[uint8]bool{SuiteMLDSA87: true},
		Verify:                alwaysValid,
	}
	if err := checkExtensionSpend(data, active); err != nil {
		t.Fatalf("active, allow-listed suite rejected: %v", err)
	}

	notAllowed := active
	notAllowed.ActiveExtensionSuites = map[uint8]bool{SuiteSLHDSA: true}
	if err := checkExtensionSpend(data, notAllowed); err != ErrExtensionNotActive {
		t.Fatalf("got %v, want ErrExtensionNotActive for disallowed suite", err)
	}
}

func TestValidateAnchorAndDACommit(t *testing.T) {
	if err := ValidateAnchor(0, []byte{1}); err != nil {
		t.Fatalf("valid anchor rejected: %v", err)
	}
	if err := ValidateAnchor(1, []byte{1}); err != ErrBadCovenantData {
		t.Fatalf("got %v, want ErrBadCovenantData for nonzero value", err)
	}
	if err := ValidateAnchor(0, nil); err != ErrBadCovenantData {
		t.Fatalf("got %v, want ErrBadCovenantData for empty payload", err)
	}

	if err := ValidateDACommitOutput([]byte{1}); err != nil {
		t.Fatalf("valid da-commit rejected: %v", err)
	}
	if err := ValidateDACommitOutput(nil); err != ErrBadCovenantData {
		t.Fatalf("got %v, want ErrBadCovenantData for empty da-commit data", err)
	}
}

func TestWitnessItemsConsumed(t *testing.T) {
	cases := []struct {
		covenantType uint16
		data         []byte
		want         int
	}{
		{TypeP2PK, nil, 1},
		{TypeTimelock, nil, 1},
		{TypeHTLC, nil, 2},
		{TypeVault, nil, 2},
		{TypeExtension, nil, 1},
		{TypeAnchor, nil, 0},
		{TypeDACommit, nil, 0},
		{TypeMultisig, []byte{1, 3}, 3},
	}
	for _, c := range cases {
		got, err := WitnessItemsConsumed(c.covenantType, c.data)
		if err != nil {
			t.Fatalf("type %d: %v", c.covenantType, err)
		}
		if got != c.want {
			t.Fatalf("type %d: got %d, want %d", c.covenantType, got, c.want)
		}
	}

	if _, err := WitnessItemsConsumed(0xFFFF, nil); err != ErrUnknownCovenantType {
		t.Fatalf("got %v, want ErrUnknownCovenantType", err)
	}
}

func TestCheckSpendUnknownAndUnspendableTypes(t *testing.T) {
	if err := CheckSpend(TypeAnchor, nil, SpendContext{}); err != ErrUnknownCovenantType {
		t.Fatalf("got %v, want ErrUnknownCovenantType for anchor", err)
	}
	if err := CheckSpend(TypeDACommit, nil, SpendContext{}); err != ErrUnknownCovenantType {
		t.Fatalf("got %v, want ErrUnknownCovenantType for da-commit", err)
	}
	if err := CheckSpend(0xFFFF, nil, SpendContext{}); err != ErrUnknownCovenantType {
		t.Fatalf("got %v, want ErrUnknownCovenantType", err)
	}
}

func TestValidateOutputCovenantUnknownType(t *testing.T) {
	if err := ValidateOutputCovenant(0xFFFF, 0, nil); err != ErrUnknownCovenantType {
		t.Fatalf("got %v, want ErrUnknownCovenantType", err)
	}
}
