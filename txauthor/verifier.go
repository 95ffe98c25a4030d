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

// Verifier checks the input scripts of transactions against the outputs they
// spend.
type Verifier struct {
	utxos    blockchain.UtxoViewer
	sigCache *txscript.SigCache
}

// NewVerifier returns a verifier that looks up the outputs spent by the inputs
// in the provided view.  The signature cache may be nil.
func NewVerifier(utxos blockchain.UtxoViewer, sigCache *txscript.SigCache) *Verifier {
	return &Verifier{utxos: utxos, sigCache: sigCache}
}

// VerifyInput executes the unlocking script of the input at the provided
// index followed by the locking script of the output it spends.  The unlocking
// script must only push data.  The input is valid when the scripts execute
// successfully.
func (v *Verifier) VerifyInput(tx *wire.MsgTx, idx int) error {
	if idx < 0 || idx >= len(tx.TxIn) {
		str := fmt.Sprintf("input index %d is out of range for a "+
			"transaction with %d inputs", idx, len(tx.TxIn))
		return makeError(ErrInvalidIndex, str, nil)
	}

	prevOut := tx.TxIn[idx].PreviousOutPoint
	entry := v.utxos.LookupEntry(prevOut)
	if entry == nil {
		str := fmt.Sprintf("input %d spends unknown output %v", idx, prevOut)
		return makeError(ErrMissingUtxo, str, nil)
	}

	vm, err := txscript.NewEngine(entry.PkScript, tx, idx, entry.Amount,
		v.sigCache)
	if err != nil {
		str := fmt.Sprintf("input %d spending %v is malformed", idx, prevOut)
		return makeError(ErrScriptFailed, str, err)
	}
	if err := vm.Execute(); err != nil {
		str := fmt.Sprintf("input %d spending %v failed to validate", idx,
			prevOut)
		return makeError(ErrScriptFailed, str, err)
	}
	return nil
}

// Verify verifies every input of the provided transaction and returns the
// error of the first input that is not valid.
func (v *Verifier) Verify(tx *wire.MsgTx) error {
	if len(tx.TxIn) == 0 {
		return makeError(ErrInvalidIndex, "transaction has no inputs", nil)
	}
	for idx := range tx.TxIn {
		if err := v.VerifyInput(tx, idx); err != nil {
			return err
		}
	}
	return nil
}

// Valid returns whether every input of the provided transaction is valid.
func (v *Verifier) Valid(tx *wire.MsgTx) bool {
	return v.Verify(tx) == nil
}
