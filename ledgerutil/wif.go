// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledgerutil

import (
	"errors"
	"fmt"

	"github.com/decred/base58"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/ledgerd/ledgerd/chaincfg"
)

// ErrMalformedPrivateKey describes an error where a WIF-encoded private key
// cannot be decoded due to being improperly formatted.  This may occur if
// the byte length is incorrect or the key is not a valid scalar.
var ErrMalformedPrivateKey = errors.New("malformed private key")

// ErrWrongWIFNetwork describes an error in which the provided WIF is not for
// the expected network.
type ErrWrongWIFNetwork [2]byte

// Error implements the error interface.
func (e ErrWrongWIFNetwork) Error() string {
	return fmt.Sprintf("WIF is not for the network identified by %#04x",
		[2]byte(e))
}

// WIF contains the individual components described by the Wallet Import Format
// (WIF).  A WIF string is typically used to represent a private key in a way
// that may be easily copied and imported into or exported from wallet
// software.  WIF strings may be decoded into this structure by calling
// DecodeWIF or created with a user-provided private key by calling NewWIF.
type WIF struct {
	// PrivKey is the private key being imported or exported.
	PrivKey *secp256k1.PrivateKey

	// netID is the network identifier bytes used when WIF encoding the
	// private key.
	netID [2]byte
}

// NewWIF creates a new WIF structure to export a private key as a string
// encoded in the Wallet Import Format for the network defined by the provided
// parameters.
func NewWIF(privKey *secp256k1.PrivateKey, params *chaincfg.Params) *WIF {
	return &WIF{PrivKey: privKey, netID: params.PrivateKeyID}
}

// DecodeWIF creates a new WIF structure by decoding the string encoding of
// the import format which is required to be for the network defined by the
// provided parameters.
//
// The WIF string must be a base58-encoded string of the following byte
// sequence:
//
//   - 2 bytes to identify the network
//   - 32 bytes of a binary-encoded, big-endian, zero-padded private key
//   - 4 bytes of checksum, must equal the first four bytes of the double
//     BLAKE-256 of every byte before the checksum in this sequence
//
// ErrMalformedPrivateKey is returned when the WIF is of an impossible length
// or does not encode a valid private key.  ErrChecksumMismatch is returned if
// the expected WIF checksum does not match the calculated checksum.
func DecodeWIF(wif string, params *chaincfg.Params) (*WIF, error) {
	decoded, netID, err := base58.CheckDecode(wif)
	if err != nil {
		if errors.Is(err, base58.ErrChecksum) {
			return nil, ErrChecksumMismatch
		}
		return nil, ErrMalformedPrivateKey
	}
	if len(decoded) != secp256k1.PrivKeyBytesLen {
		return nil, ErrMalformedPrivateKey
	}
	if netID != params.PrivateKeyID {
		return nil, ErrWrongWIFNetwork(params.PrivateKeyID)
	}

	var scalar secp256k1.ModNScalar
	overflow := scalar.SetByteSlice(decoded)
	if overflow || scalar.IsZero() {
		return nil, ErrMalformedPrivateKey
	}
	return &WIF{PrivKey: secp256k1.NewPrivateKey(&scalar), netID: netID}, nil
}

// String creates the Wallet Import Format string encoding of a WIF structure.
// See DecodeWIF for a detailed breakdown of the format and requirements of
// a valid WIF string.
func (w *WIF) String() string {
	return base58.CheckEncode(w.PrivKey.Serialize(), w.netID)
}

// SerializePubKey serializes the associated public key of the imported or
// exported private key in compressed format.
func (w *WIF) SerializePubKey() []byte {
	return w.PrivKey.PubKey().SerializeCompressed()
}

// Address returns the pay-to-pubkey-hash address of the public key of the
// imported or exported private key.
func (w *WIF) Address(params *chaincfg.Params) *AddressPubKeyHash {
	return NewAddressPubKeyHashFromPubKey(w.PrivKey.PubKey(), params)
}
