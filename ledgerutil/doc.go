// Copyright (c) 2013-2014 The btcsuite developers
// Copyright (c) 2015-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package ledgerutil provides ledger-specific convenience functions and types.

# Amount Type

An Amount is a count of atoms, the smallest unit of the coin, with helpers to
convert to and format in other units.

# Address Type

AddressPubKeyHash is the human-readable form of a pay-to-pubkey-hash output
script.  The string encoding is the base58 check encoding of the 20-byte
public key hash prefixed by the pay-to-pubkey-hash identifier of a network, so
an address for one network is rejected by DecodeAddress on another.

# WIF Type

WIF is the Wallet Import Format encoding of a secp256k1 private key for a
network.
*/
package ledgerutil
