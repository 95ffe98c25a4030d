// Copyright (c) 2013-2015 The btcsuite developers
// Copyright (c) 2015-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/schnorr"
	"github.com/ledgerd/ledgerd/wire"
)

// RawTxInSignature returns the serialized Schnorr signature for the input idx
// of the given transaction spending an output with the provided public key
// script and value.
func RawTxInSignature(tx *wire.MsgTx, idx int, prevPkScript []byte,
	amount int64, privKey *secp256k1.PrivateKey) ([]byte, error) {

	hash, err := CalcSignatureHash(tx, idx, prevPkScript, amount)
	if err != nil {
		return nil, err
	}

	sig, err := schnorr.Sign(privKey, hash)
	if err != nil {
		return nil, fmt.Errorf("cannot sign tx input: %w", err)
	}
	return sig.Serialize(), nil
}

// SignatureScript creates an input signature script for tx to spend coins sent
// from a previous output to the owner of privKey.  tx must include all
// transaction inputs and outputs, however txin scripts are allowed to be filled
// or empty.  The returned script is calculated to be used as the idx'th txin
// sigscript for tx.  prevPkScript and amount describe the previous output being
// used as the idx'th input.
//
// The script pushes the signature followed by the compressed public key, which
// is the form a pay-to-pubkey-hash output requires.
func SignatureScript(tx *wire.MsgTx, idx int, prevPkScript []byte, amount int64,
	privKey *secp256k1.PrivateKey) ([]byte, error) {

	sig, err := RawTxInSignature(tx, idx, prevPkScript, amount, privKey)
	if err != nil {
		return nil, err
	}

	pkData := privKey.PubKey().SerializeCompressed()
	return NewScriptBuilder().AddData(sig).AddData(pkData).Script()
}
