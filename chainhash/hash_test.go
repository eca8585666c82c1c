// Copyright (c) 2018 The ExchangeCoin team
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainhash

import "testing"

func TestHashStringRoundTrip(t *testing.T) {
	var h Hash
	for i := range h {
		h[i] = byte(i)
	}
	s := h.String()
	got, err := NewHashFromStr(s)
	if err != nil {
		t.Fatalf("NewHashFromStr: %v", err)
	}
	if *got != h {
		t.Fatalf("round trip mismatch: got %x, want %x", *got, h)
	}
}

func TestNewHashFromStrTooLong(t *testing.T) {
	long := make([]byte, MaxHashStringSize+2)
	for i := range long {
		long[i] = '0'
	}
	if _, err := NewHashFromStr(string(long)); err != ErrHashStrSize {
		t.Fatalf("got %v, want ErrHashStrSize", err)
	}
}

func TestSetBytesWrongLength(t *testing.T) {
	var h Hash
	if err := h.SetBytes([]byte{1, 2, 3}); err == nil {
		t.Fatalf("expected error setting bytes with wrong length")
	}
}

func TestIsEqual(t *testing.T) {
	a := Hash{1}
	b := Hash{1}
	c := Hash{2}
	if !a.IsEqual(&b) {
		t.Fatalf("expected a == b")
	}
	if a.IsEqual(&c) {
		t.Fatalf("expected a != c")
	}
	var nilHash *Hash
	if !nilHash.IsEqual(nil) {
		t.Fatalf("expected nil == nil")
	}
	if nilHash.IsEqual(&a) {
		t.Fatalf("expected nil != non-nil")
	}
}

func TestSoftwareSHA3Deterministic(t *testing.T) {
	input := []byte("rubin")
	got1 := SoftwareSHA3(input)
	got2 := SoftwareSHA3(input)
	if got1 != got2 {
		t.Fatalf("SoftwareSHA3 not deterministic: %x vs %x", got1, got2)
	}
	if got1 == SoftwareSHA3([]byte("different")) {
		t.Fatalf("SoftwareSHA3 collided on different inputs")
	}
}

func TestHashHMatchesHashB(t *testing.T) {
	input := []byte("rubin consensus")
	h := HashH(input)
	b := HashB(input)
	if string(h[:]) != string(b) {
		t.Fatalf("HashH and HashB disagree: %x vs %x", h, b)
	}
}

func TestCloneBytesIsIndependentCopy(t *testing.T) {
	h := Hash{1, 2, 3}
	clone := h.CloneBytes()
	clone[0] = 0xFF
	if h[0] == 0xFF {
		t.Fatalf("mutating clone affected original hash")
	}
}
