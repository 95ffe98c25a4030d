// Copyright (c) 2013, 2014 The btcsuite developers
// Copyright (c) 2015-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledgerutil

import (
	"errors"
	"fmt"

	"github.com/decred/base58"
	"github.com/decred/dcrd/crypto/ripemd160"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/ledgerd/ledgerd/chaincfg"
	"github.com/ledgerd/ledgerd/txscript"
)

var (
	// ErrChecksumMismatch describes an error where decoding failed due
	// to a bad checksum.
	ErrChecksumMismatch = errors.New("checksum mismatch")

	// ErrUnknownAddressType describes an error where an address can not be
	// decoded as a specific address type due to the string encoding
	// beginning with values that do not identify a pay-to-pubkey-hash
	// address on the expected network.
	ErrUnknownAddressType = errors.New("unknown address type")

	// ErrMalformedAddress describes an error where an address has a valid
	// checksum but a payload of the wrong length.
	ErrMalformedAddress = errors.New("malformed address")
)

// encodeAddress returns a human-readable payment address given a ripemd160 hash
// and netID which encodes the network and address type.
func encodeAddress(hash160 []byte, netID [2]byte) string {
	// Format is 2 bytes for a network and address class, 20 bytes for a
	// RIPEMD160 hash, and 4 bytes of checksum.
	return base58.CheckEncode(hash160[:ripemd160.Size], netID)
}

// AddressPubKeyHash is an address for a pay-to-pubkey-hash (P2PKH)
// transaction output.
type AddressPubKeyHash struct {
	hash  [ripemd160.Size]byte
	netID [2]byte
}

// NewAddressPubKeyHash returns a new AddressPubKeyHash for the network
// defined by the provided parameters.  pkHash must be 20 bytes.
func NewAddressPubKeyHash(pkHash []byte, params *chaincfg.Params) (*AddressPubKeyHash, error) {
	if len(pkHash) != ripemd160.Size {
		return nil, fmt.Errorf("pkHash must be %d bytes", ripemd160.Size)
	}
	addr := &AddressPubKeyHash{netID: params.PubKeyHashAddrID}
	copy(addr.hash[:], pkHash)
	return addr, nil
}

// NewAddressPubKeyHashFromPubKey returns the pay-to-pubkey-hash address of the
// compressed serialization of the provided public key.
func NewAddressPubKeyHashFromPubKey(pubKey *secp256k1.PublicKey, params *chaincfg.Params) *AddressPubKeyHash {
	addr := &AddressPubKeyHash{netID: params.PubKeyHashAddrID}
	copy(addr.hash[:], txscript.Hash160(pubKey.SerializeCompressed()))
	return addr
}

// DecodeAddress decodes the string encoding of an address and returns the
// address if it is a valid pay-to-pubkey-hash address for the network
// defined by the provided parameters.
func DecodeAddress(addr string, params *chaincfg.Params) (*AddressPubKeyHash, error) {
	decoded, netID, err := base58.CheckDecode(addr)
	if err != nil {
		if errors.Is(err, base58.ErrChecksum) {
			return nil, ErrChecksumMismatch
		}
		return nil, fmt.Errorf("decoded address is of unknown format: %w", err)
	}
	if netID != params.PubKeyHashAddrID {
		return nil, ErrUnknownAddressType
	}
	if len(decoded) != ripemd160.Size {
		return nil, ErrMalformedAddress
	}
	return NewAddressPubKeyHash(decoded, params)
}

// ExtractAddress returns the address a pay-to-pubkey-hash script pays to.  It
// returns ErrUnknownAddressType for any other script.
func ExtractAddress(pkScript []byte, params *chaincfg.Params) (*AddressPubKeyHash, error) {
	pkHash := txscript.ExtractPubKeyHash(pkScript)
	if pkHash == nil {
		return nil, ErrUnknownAddressType
	}
	return NewAddressPubKeyHash(pkHash, params)
}

// String returns the string encoding of the pay-to-pubkey-hash address.
func (a *AddressPubKeyHash) String() string {
	return encodeAddress(a.hash[:], a.netID)
}

// Hash160 returns the underlying array of the pubkey hash.  This can be useful
// when an array is more appropriate than a slice (for example, when used as map
// keys).
func (a *AddressPubKeyHash) Hash160() *[ripemd160.Size]byte {
	return &a.hash
}

// PayToAddrScript returns the pay-to-pubkey-hash script that locks an output
// to the address.
func (a *AddressPubKeyHash) PayToAddrScript() ([]byte, error) {
	return txscript.PayToPubKeyHashScript(a.hash[:])
}
