// Copyright (c) 2015-2016 The btcsuite developers
// Copyright (c) 2016-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"crypto/rand"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/schnorr"
)

// genRandomSig returns a random message, a signature of the message under the
// public key and the public key. This function is used to generate randomized
// test data.
func genRandomSig(t *testing.T) (*chainhash.Hash, []byte, []byte) {
	t.Helper()

	privKey, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("error generating private key: %v", err)
	}

	var msgHash chainhash.Hash
	if _, err := rand.Read(msgHash[:]); err != nil {
		t.Fatalf("error reading random hash: %v", err)
	}

	sig, err := schnorr.Sign(privKey, msgHash[:])
	if err != nil {
		t.Fatalf("error signing: %v", err)
	}
	return &msgHash, sig.Serialize(), privKey.PubKey().SerializeCompressed()
}

// TestSigCacheAddExists tests the ability to add, and later check the
// existence of a signature triplet in the signature cache.
func TestSigCacheAddExists(t *testing.T) {
	sigCache := NewSigCache(200)

	// Generate a random sigCache entry triplet.
	msg1, sig1, key1 := genRandomSig(t)

	// Add the triplet to the signature cache.
	sigCache.Add(*msg1, sig1, key1)

	// The previously added triplet should now be found within the sigcache.
	if !sigCache.Exists(*msg1, sig1, key1) {
		t.Errorf("previously added item not found in signature cache")
	}

	// A different message with the same signature and key must not match.
	msg2, _, _ := genRandomSig(t)
	if sigCache.Exists(*msg2, sig1, key1) {
		t.Errorf("unexpected match for a different message")
	}
}

// TestSigCacheAddEvictEntry tests the eviction case where a new signature
// triplet is added to a full signature cache which should trigger randomized
// eviction, followed by adding the new element to the cache.
func TestSigCacheAddEvictEntry(t *testing.T) {
	// Create a sigcache that can hold up to 100 entries.
	sigCacheSize := uint32(100)
	sigCache := NewSigCache(sigCacheSize)

	// Fill the sigcache up with some random sig triplets.
	type triplet struct {
		msg *chainhash.Hash
		sig []byte
		key []byte
	}
	entries := make([]triplet, 0, sigCacheSize)
	for i := uint32(0); i < sigCacheSize; i++ {
		msg, sig, key := genRandomSig(t)
		sigCache.Add(*msg, sig, key)
		entries = append(entries, triplet{msg, sig, key})

		if !sigCache.Exists(*msg, sig, key) {
			t.Errorf("previously added item not found in signature " +
				"cache")
		}
	}

	// The sigcache should now have sigCacheSize entries within it.
	if sigCache.Len() != int(sigCacheSize) {
		t.Fatalf("sigcache should now have %v entries, instead it has %v",
			sigCacheSize, sigCache.Len())
	}

	// Add a new entry, this should cause eviction of the least recently
	// used entry.
	msgNew, sigNew, keyNew := genRandomSig(t)
	sigCache.Add(*msgNew, sigNew, keyNew)

	// The sigcache should still have sigCache entries.
	if sigCache.Len() != int(sigCacheSize) {
		t.Fatalf("sigcache should now have %v entries, instead it has %v",
			sigCacheSize, sigCache.Len())
	}

	// The entry added last should be found within the sigcache.
	if !sigCache.Exists(*msgNew, sigNew, keyNew) {
		t.Fatalf("previously added item not found in signature cache")
	}

	// The first entry added was the least recently used and is now gone.
	first := entries[0]
	if sigCache.Exists(*first.msg, first.sig, first.key) {
		t.Fatalf("least recently used entry was not evicted")
	}
}

// TestSigCacheAddMaxEntriesZeroOrNegative tests that if a sigCache is created
// with a max size <= 0, then no entries are added to the sigcache at all.
func TestSigCacheAddMaxEntriesZeroOrNegative(t *testing.T) {
	// Create a sigcache that can hold up to 0 entries.
	sigCache := NewSigCache(0)

	// Generate a random sigCache entry triplet.
	msg1, sig1, key1 := genRandomSig(t)

	// Add the triplet to the signature cache.
	sigCache.Add(*msg1, sig1, key1)

	// The generated triplet should not be found.
	if sigCache.Exists(*msg1, sig1, key1) {
		t.Errorf("previously added signature found in sigcache, but " +
			"shouldn't have been")
	}

	// There shouldn't be any entries in the sigCache.
	if sigCache.Len() != 0 {
		t.Errorf("%v items found in sigcache, no items should have "+
			"been added", sigCache.Len())
	}
}

// TestSigCacheIgnoresMalformed ensures triplets with unexpected signature or
// public key lengths are never cached.
func TestSigCacheIgnoresMalformed(t *testing.T) {
	sigCache := NewSigCache(10)
	msg, sig, key := genRandomSig(t)
	sigCache.Add(*msg, sig[:SigLen-1], key)
	sigCache.Add(*msg, sig, key[:PubKeyLen-1])
	if sigCache.Len() != 0 {
		t.Fatalf("malformed entries were cached")
	}
	if sigCache.Exists(*msg, sig[:SigLen-1], key) {
		t.Fatalf("malformed entry reported as cached")
	}
}
