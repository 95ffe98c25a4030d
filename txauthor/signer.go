// Copyright (c) 2016-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txauthor

import (
	"fmt"

	"github.com/ledgerd/ledgerd/blockchain"
	"github.com/ledgerd/ledgerd/txscript"
	"github.com/ledgerd/ledgerd/wire"
)

// Signer signs the inputs of transactions that spend pay-to-pubkey-hash
// outputs locked to the keys of a key store.
type Signer struct {
	utxos blockchain.UtxoViewer
	keys  *KeyStore
}

// NewSigner returns a signer that looks up the outputs spent by the inputs in
// the provided view and signs with the keys of the provided key store.
func NewSigner(utxos blockchain.UtxoViewer, keys *KeyStore) *Signer {
	return &Signer{utxos: utxos, keys: keys}
}

// SignInput replaces the unlocking script of the input at the provided index
// with a signature over the transaction and the output the input spends,
// followed by the public key.  The signature commits to the input index and
// to the script and amount of the spent output, so it cannot be reused for
// another input.
func (s *Signer) SignInput(tx *wire.MsgTx, idx int) error {
	if idx < 0 || idx >= len(tx.TxIn) {
		str := fmt.Sprintf("input index %d is out of range for a "+
			"transaction with %d inputs", idx, len(tx.TxIn))
		return makeError(ErrInvalidIndex, str, nil)
	}

	prevOut := tx.TxIn[idx].PreviousOutPoint
	entry := s.utxos.LookupEntry(prevOut)
	if entry == nil {
		str := fmt.Sprintf("input %d spends unknown output %v", idx, prevOut)
		return makeError(ErrMissingUtxo, str, nil)
	}
	pkh, ok := pubKeyHashFromScript(entry.PkScript)
	if !ok {
		str := fmt.Sprintf("input %d spends output %v with a script that is "+
			"not pay-to-pubkey-hash", idx, prevOut)
		return makeError(ErrUnsupportedScript, str, nil)
	}
	privKey, ok := s.keys.Key(pkh)
	if !ok {
		str := fmt.Sprintf("no key for public key hash %x of output %v", pkh,
			prevOut)
		return makeError(ErrMissingKey, str, nil)
	}

	sigScript, err := txscript.SignatureScript(tx, idx, entry.PkScript,
		entry.Amount, privKey)
	if err != nil {
		str := fmt.Sprintf("unable to sign input %d", idx)
		return makeError(ErrScriptFailed, str, err)
	}
	tx.TxIn[idx].SignatureScript = sigScript
	return nil
}

// Sign signs every input of the provided transaction in place.  An input that
// cannot be signed keeps its unlocking script and is reported in the returned
// errors while the remaining inputs are still signed.  The result is nil when
// every input was signed.
func (s *Signer) Sign(tx *wire.MsgTx) []SignError {
	var signErrs []SignError
	for idx := range tx.TxIn {
		if err := s.SignInput(tx, idx); err != nil {
			log.Debugf("Unable to sign input %d of %v: %v", idx, tx.TxHash(),
				err)
			signErrs = append(signErrs, SignError{InputIndex: idx, Err: err})
		}
	}
	return signErrs
}
