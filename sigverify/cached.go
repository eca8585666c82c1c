// Copyright (c) 2018 The ExchangeCoin team
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package sigverify

import "github.com/rubinprotocol/rubind/chainhash"

// Cached wraps a Verifier with a Cache, so a digest/pubkey/signature
// triple already proven valid once is never re-verified.
type Cached struct {
	Verifier Verifier
	Cache    *Cache
}

// Verify implements Verifier, consulting the cache before falling
// through to the wrapped verifier and recording newly-valid signatures.
// Cache population by digest/pubkey/signature alone (txID unknown here)
// uses the zero hash as a degenerate shortTxID bucket, so Cache.Evict
// called with a block's transaction ids does not remove entries added
// here; they leave the cache only through its random eviction when full.
func (c Cached) Verify(suiteID uint8, pubkey, signature []byte, digest [32]byte) bool {
	h := chainhash.Hash(digest)
	if c.Cache.Exists(h, pubkey, signature) {
		return true
	}
	if !c.Verifier.Verify(suiteID, pubkey, signature, digest) {
		return false
	}
	c.Cache.Add(h, pubkey, signature, chainhash.Hash{})
	return true
}
