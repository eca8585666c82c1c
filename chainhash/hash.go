// Copyright (c) 2018 The ExchangeCoin team
// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2016 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chainhash provides the 32-byte hash type used throughout the
// consensus core and the SHA3-256 helpers that produce it.
package chainhash

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/sha3"
)

// HashSize is the number of bytes in a hash produced by this package.
const HashSize = 32

// MaxHashStringSize is the maximum length of a hash string.
const MaxHashStringSize = HashSize * 2

// ErrHashStrSize describes an error that indicates the caller specified a
// hash string that has too many characters.
var ErrHashStrSize = fmt.Errorf("max hash string length is %v bytes", MaxHashStringSize)

// Hash is used in several of the consensus messages and common structures.
// It typically represents SHA3-256(data), unlike the double-SHA256 the
// teacher's chainhash used.
type Hash [HashSize]byte

// String returns the Hash as the big-endian hex-encoded string, which is
// the canonical display and RPC representation.
func (h Hash) String() string {
	var hexBytes [HashSize * 2]byte
	hex.Encode(hexBytes[:], h[:])
	return string(hexBytes[:])
}

// CloneBytes returns a copy of the bytes which represent the hash as a byte
// slice. Changing the returned slice does not mutate the hash.
func (h Hash) CloneBytes() []byte {
	b := make([]byte, HashSize)
	copy(b, h[:])
	return b
}

// SetBytes sets the bytes which represent the hash. An error is returned if
// the number of bytes passed in is not HashSize.
func (h *Hash) SetBytes(newHash []byte) error {
	if len(newHash) != HashSize {
		return fmt.Errorf("invalid hash length of %v, want %v", len(newHash), HashSize)
	}
	copy(h[:], newHash)
	return nil
}

// IsEqual returns true if target is the same as the hash.
func (h *Hash) IsEqual(target *Hash) bool {
	if h == nil && target == nil {
		return true
	}
	if h == nil || target == nil {
		return false
	}
	return *h == *target
}

// NewHash returns a new Hash from a byte slice. An error is returned if the
// number of bytes passed in is not HashSize.
func NewHash(newHash []byte) (*Hash, error) {
	var sh Hash
	err := sh.SetBytes(newHash)
	if err != nil {
		return nil, err
	}
	return &sh, nil
}

// NewHashFromStr creates a Hash from a hash string. The string should be
// the canonical hex representation produced by String.
func NewHashFromStr(hash string) (*Hash, error) {
	ret := new(Hash)
	err := Decode(ret, hash)
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// Decode decodes the canonical hex string encoding of a Hash into dst.
func Decode(dst *Hash, src string) error {
	if len(src) > MaxHashStringSize {
		return ErrHashStrSize
	}
	srcBytes := []byte(src)
	if len(src)%2 != 0 {
		srcBytes = append([]byte{'0'}, srcBytes...)
	}
	var reversedHash Hash
	_, err := hex.Decode(reversedHash[HashSize-hex.DecodedLen(len(srcBytes)):], srcBytes)
	if err != nil {
		return err
	}
	copy(dst[:], reversedHash[:])
	return nil
}

// HashB calculates SHA3-256(b) and returns the resulting bytes.
func HashB(b []byte) []byte {
	sum := sha3.Sum256(b)
	return sum[:]
}

// HashH calculates SHA3-256(b) and returns the resulting bytes as a Hash.
func HashH(b []byte) Hash {
	return Hash(sha3.Sum256(b))
}

// HashFunc is the injected hashing capability signature consensus code is
// parameterized over; see SPEC_FULL.md's capability-injection design note.
type HashFunc func(b []byte) [32]byte

// SoftwareSHA3 is the deterministic, pure-software instantiation of
// HashFunc used by tests and by default in the validator.
func SoftwareSHA3(b []byte) [32]byte {
	return sha3.Sum256(b)
}
