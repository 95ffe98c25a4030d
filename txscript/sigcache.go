// Copyright (c) 2015-2016 The btcsuite developers
// Copyright (c) 2016-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/decred/dcrd/container/lru"
)

// sigCacheEntry represents an entry in the SigCache.  Entries within the
// SigCache are keyed according to the signature hash, the serialized
// signature, and the serialized public key.
type sigCacheEntry struct {
	sigHash chainhash.Hash
	sig     [SigLen]byte
	pubKey  [PubKeyLen]byte
}

// makeSigCacheEntry returns the cache key for the provided triplet and whether
// the signature and public key have the lengths the cache stores.
func makeSigCacheEntry(sigHash chainhash.Hash, sig, pubKey []byte) (sigCacheEntry, bool) {
	entry := sigCacheEntry{sigHash: sigHash}
	if len(sig) != SigLen || len(pubKey) != PubKeyLen {
		return entry, false
	}
	copy(entry.sig[:], sig)
	copy(entry.pubKey[:], pubKey)
	return entry, true
}

// SigCache implements a signature verification cache with a least recently
// used eviction policy.  It is safe for concurrent access.  Script validation
// is the most expensive part of processing a block, so transactions that are
// validated more than once (for example when a block template is built and
// later when the mined block is connected, or while reorganizing) only pay for
// signature verification the first time.
//
// Only valid signatures are added to the cache.  Since the cache key includes
// the signature hash, an attacker is unable to fill the cache with invalid
// signatures for free.
type SigCache struct {
	validSigs *lru.Set[sigCacheEntry]
}

// NewSigCache creates and initializes a new instance of SigCache.  Its sole
// parameter 'maxEntries' represents the maximum number of entries allowed to
// exist in the SigCache at any particular moment.  The least recently used
// entry is evicted to make room for new entries that would cause the number of
// entries in the cache to exceed the max.
func NewSigCache(maxEntries uint32) *SigCache {
	return &SigCache{
		validSigs: lru.NewSet[sigCacheEntry](maxEntries),
	}
}

// Exists returns true if an existing entry of 'sig' over 'sigHash' for public
// key 'pubKey' is found within the SigCache.  Otherwise, false is returned.
//
// NOTE: This function is safe for concurrent access.  Readers won't be blocked
// unless there exists a writer, adding an entry to the SigCache.
func (s *SigCache) Exists(sigHash chainhash.Hash, sig, pubKey []byte) bool {
	entry, ok := makeSigCacheEntry(sigHash, sig, pubKey)
	if !ok {
		return false
	}
	return s.validSigs.Contains(entry)
}

// Add adds an entry for a signature over 'sigHash' under public key 'pubKey'
// to the signature cache.
//
// NOTE: This function is safe for concurrent access.  Writers will block
// simultaneous readers until function execution has concluded.
func (s *SigCache) Add(sigHash chainhash.Hash, sig, pubKey []byte) {
	entry, ok := makeSigCacheEntry(sigHash, sig, pubKey)
	if !ok {
		return
	}
	s.validSigs.Put(entry)
}

// Len returns the number of entries in the cache.
func (s *SigCache) Len() int {
	return int(s.validSigs.Len())
}
