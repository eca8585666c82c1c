// Copyright (c) 2015-2016 The btcsuite developers
// Copyright (c) 2016-2020 The Decred developers
// Copyright (c) 2018 The ExchangeCoin team
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package sigverify

import (
	"crypto/rand"
	"encoding/binary"
	"sync"

	"github.com/dchest/siphash"

	"github.com/rubinprotocol/rubind/chainhash"
)

// shortKeySize is the size of the byte array required for key material for
// the SipHash keyed short-key function.
const shortKeySize = 16

// DefaultCacheMaxEntries is the default capacity the daemon entrypoints
// pass to NewCache.
const DefaultCacheMaxEntries = 100000

// cacheEntry represents an entry in the Cache, keyed by the sighash digest
// of the verified spend.
type cacheEntry struct {
	pubkey    string
	signature string
	shortKey  uint64
}

// Cache is a signature-verification cache with a randomized entry
// eviction policy, adapted from txscript/sigcache.go's ECDSA SigCache to
// this chain's suite-tagged lattice/hash signatures. Only valid
// signatures are ever added. As in the teacher's cache, this mitigates a
// DoS vector where crafted invalid signatures force repeated expensive
// verification, and it lets a block validator skip re-verifying a
// signature already checked once for the same sighash.
type Cache struct {
	mu           sync.RWMutex
	validSigs    map[chainhash.Hash]cacheEntry
	maxEntries   uint
	shortKeyBits [shortKeySize]byte
}

// NewCache creates a Cache that holds at most maxEntries verified
// signatures before falling back to random eviction.
func NewCache(maxEntries uint) (*Cache, error) {
	var key [shortKeySize]byte
	if _, err := rand.Read(key[:]); err != nil {
		return nil, err
	}
	return &Cache{
		validSigs:    make(map[chainhash.Hash]cacheEntry, maxEntries),
		maxEntries:   maxEntries,
		shortKeyBits: key,
	}, nil
}

// Exists reports whether a cached, already-verified entry matches digest,
// pubkey, and signature exactly.
func (c *Cache) Exists(digest chainhash.Hash, pubkey, signature []byte) bool {
	c.mu.RLock()
	entry, ok := c.validSigs[digest]
	c.mu.RUnlock()
	return ok && entry.pubkey == string(pubkey) && entry.signature == string(signature)
}

// Add records a known-valid (pubkey, signature) pair for digest, keyed
// additionally by a SipHash-2-4 short hash of the spending transaction's
// id for later bulk eviction via Evict.
func (c *Cache) Add(digest chainhash.Hash, pubkey, signature []byte, txID chainhash.Hash) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxEntries == 0 {
		return
	}
	if uint(len(c.validSigs)+1) > c.maxEntries {
		for k := range c.validSigs {
			delete(c.validSigs, k)
			break
		}
	}
	c.validSigs[digest] = cacheEntry{
		pubkey:    string(pubkey),
		signature: string(signature),
		shortKey:  c.shortTxID(txID),
	}
}

func (c *Cache) shortTxID(txID chainhash.Hash) uint64 {
	k0 := binary.LittleEndian.Uint64(c.shortKeyBits[0:8])
	k1 := binary.LittleEndian.Uint64(c.shortKeyBits[8:16])
	return siphash.Hash(k0, k1, txID[:])
}

// Evict removes every cached entry belonging to one of txIDs, called once
// the block containing those transactions is deep enough that its
// signatures are no longer likely to be re-checked (mirrors the teacher's
// ProactiveEvictionDepth idiom).
func (c *Cache) Evict(txIDs []chainhash.Hash) {
	c.mu.RLock()
	if len(c.validSigs) == 0 {
		c.mu.RUnlock()
		return
	}
	c.mu.RUnlock()

	shortSet := make(map[uint64]struct{}, len(txIDs))
	for _, id := range txIDs {
		shortSet[c.shortTxID(id)] = struct{}{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for digest, entry := range c.validSigs {
		if _, ok := shortSet[entry.shortKey]; ok {
			delete(c.validSigs, digest)
		}
	}
}
