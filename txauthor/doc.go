// Copyright (c) 2016-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package txauthor provides transaction creation, signing, and verification
for pay-to-pubkey-hash outputs.

A Builder selects unspent outputs until they cover the requested outputs and
returns an unsigned AuthoredTx with a change output for any surplus.  A Signer
fills in the unlocking scripts with keys from a KeyStore and reports every
input it could not sign individually.  A Verifier executes the unlocking and
locking scripts of every input with the script engine.

	keys := txauthor.NewKeyStore()
	keys.AddKey(privKey)
	authored, err := txauthor.NewBuilder(utxos, keys).Build(outputs, changeScript)
	if err != nil || authored.Shortfall() > 0 {
		// Handle error.
	}
	if errs := txauthor.NewSigner(utxos, keys).Sign(authored.Tx); errs != nil {
		// Handle errors.
	}
	err = txauthor.NewVerifier(utxos, nil).Verify(authored.Tx)
*/
package txauthor
