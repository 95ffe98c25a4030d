// Copyright (c) 2016-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txauthor

import (
	"encoding/hex"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/ledgerd/ledgerd/blockchain"
	"github.com/ledgerd/ledgerd/txscript"
	"github.com/ledgerd/ledgerd/wire"
)

// hexToBytes converts the passed hex string into bytes and will panic if there
// is an error.  This is only provided for the hard-coded constants so errors in
// the source code can be detected.  It will only (and must only) be called with
// hard-coded values.
func hexToBytes(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic("invalid hex in source file: " + s)
	}
	return b
}

// testPrivKey is a fixed private key used by the tests.
var testPrivKey = secp256k1.PrivKeyFromBytes(hexToBytes(
	"eaf02ca348c524e6392655ba4d29603cd1a7347d9d65cfe93ce1ebffdca22694"))

// p2pkhScript returns the pay-to-pubkey-hash script for the provided key.
func p2pkhScript(t *testing.T, privKey *secp256k1.PrivateKey) []byte {
	t.Helper()

	pkh := PubKeyHashFromKey(privKey)
	script, err := txscript.PayToPubKeyHashScript(pkh[:])
	if err != nil {
		t.Fatalf("unable to create script: %v", err)
	}
	return script
}

// fundingTx returns a transaction creating outputs of the provided amounts
// locked to the provided script.
func fundingTx(pkScript []byte, amounts ...int64) *wire.MsgTx {
	tx := wire.NewMsgTx()
	prevOut := wire.OutPoint{Hash: [32]byte{0xaa}}
	tx.AddTxIn(wire.NewTxIn(&prevOut, nil))
	for _, amount := range amounts {
		tx.AddTxOut(wire.NewTxOut(amount, pkScript))
	}
	return tx
}

// newTestUtxos returns an unspent output set holding the outputs of the
// provided transactions.
func newTestUtxos(txs ...*wire.MsgTx) *blockchain.UtxoSet {
	utxos := blockchain.NewUtxoSet()
	for _, tx := range txs {
		utxos.AddTxOuts(tx, 1)
	}
	return utxos
}
