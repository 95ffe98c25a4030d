// Copyright (c) 2016-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txauthor

import (
	"bytes"
	"sort"
	"sync"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/ledgerd/ledgerd/txscript"
)

// PubKeyHash is the hash160 of a compressed public key.
type PubKeyHash [20]byte

// PubKeyHashFromKey returns the hash of the compressed serialization of the
// public key of the provided private key.
func PubKeyHashFromKey(privKey *secp256k1.PrivateKey) PubKeyHash {
	var pkh PubKeyHash
	copy(pkh[:], txscript.Hash160(privKey.PubKey().SerializeCompressed()))
	return pkh
}

// KeyStore holds private keys indexed by the hash of their public key.  It is
// an explicit value passed to the builder and signer rather than process wide
// state, so its owner controls its lifetime.
//
// It is safe for concurrent access.
type KeyStore struct {
	mtx  sync.RWMutex
	keys map[PubKeyHash]*secp256k1.PrivateKey
}

// NewKeyStore returns an empty key store.
func NewKeyStore() *KeyStore {
	return &KeyStore{keys: make(map[PubKeyHash]*secp256k1.PrivateKey)}
}

// AddKey adds the provided private key and returns the hash of its public
// key.  Adding a key that is already present has no effect.
func (s *KeyStore) AddKey(privKey *secp256k1.PrivateKey) PubKeyHash {
	pkh := PubKeyHashFromKey(privKey)
	s.mtx.Lock()
	s.keys[pkh] = privKey
	s.mtx.Unlock()
	return pkh
}

// GenerateKey creates a new random private key, adds it to the store, and
// returns it along with the hash of its public key.
func (s *KeyStore) GenerateKey() (*secp256k1.PrivateKey, PubKeyHash, error) {
	privKey, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, PubKeyHash{}, err
	}
	return privKey, s.AddKey(privKey), nil
}

// Key returns the private key for the provided public key hash and whether or
// not the store holds it.
func (s *KeyStore) Key(pkh PubKeyHash) (*secp256k1.PrivateKey, bool) {
	s.mtx.RLock()
	privKey, ok := s.keys[pkh]
	s.mtx.RUnlock()
	return privKey, ok
}

// HasKey returns whether the store holds the private key for the provided
// public key hash.
func (s *KeyStore) HasKey(pkh PubKeyHash) bool {
	_, ok := s.Key(pkh)
	return ok
}

// PubKeyHashes returns the public key hashes of all keys in the store in
// ascending byte order.
func (s *KeyStore) PubKeyHashes() []PubKeyHash {
	s.mtx.RLock()
	hashes := make([]PubKeyHash, 0, len(s.keys))
	for pkh := range s.keys {
		hashes = append(hashes, pkh)
	}
	s.mtx.RUnlock()

	sort.Slice(hashes, func(i, j int) bool {
		return bytes.Compare(hashes[i][:], hashes[j][:]) < 0
	})
	return hashes
}

// Len returns the number of keys in the store.
func (s *KeyStore) Len() int {
	s.mtx.RLock()
	n := len(s.keys)
	s.mtx.RUnlock()
	return n
}

// pubKeyHashFromScript returns the public key hash the provided
// pay-to-pubkey-hash script is locked to.  It returns false for any other
// script.
func pubKeyHashFromScript(pkScript []byte) (PubKeyHash, bool) {
	var pkh PubKeyHash
	hash := txscript.ExtractPubKeyHash(pkScript)
	if hash == nil {
		return pkh, false
	}
	copy(pkh[:], hash)
	return pkh, true
}
