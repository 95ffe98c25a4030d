// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"context"
	"fmt"
	"runtime"

	"github.com/ledgerd/ledgerd/blockchain/standalone"
	"github.com/ledgerd/ledgerd/txscript"
	"github.com/ledgerd/ledgerd/wire"
	"golang.org/x/sync/errgroup"
)

// txValidateItem holds a transaction along with which input to validate.
type txValidateItem struct {
	txInIndex int
	tx        *wire.MsgTx
}

// validateInput executes the public key script of the output referenced by
// the input of the provided item with the input's signature script.
func validateInput(item *txValidateItem, view UtxoViewer, sigCache *txscript.SigCache) error {
	txIn := item.tx.TxIn[item.txInIndex]
	entry := view.LookupEntry(txIn.PreviousOutPoint)
	if entry == nil {
		str := fmt.Sprintf("unable to find unspent output %v referenced "+
			"from transaction %s:%d", txIn.PreviousOutPoint,
			item.tx.TxHash(), item.txInIndex)
		return ruleError(ErrMissingTxOut, str)
	}

	vm, err := txscript.NewEngine(entry.PkScript, item.tx, item.txInIndex,
		entry.Amount, sigCache)
	if err != nil {
		str := fmt.Sprintf("failed to parse input %s:%d which references "+
			"output %v - %v (input script bytes %x, prev output script "+
			"bytes %x)", item.tx.TxHash(), item.txInIndex,
			txIn.PreviousOutPoint, err, txIn.SignatureScript, entry.PkScript)
		return ruleError(ErrScriptMalformed, str)
	}

	if err := vm.Execute(); err != nil {
		str := fmt.Sprintf("failed to validate input %s:%d which "+
			"references output %v - %v (input script bytes %x, prev "+
			"output script bytes %x)", item.tx.TxHash(), item.txInIndex,
			txIn.PreviousOutPoint, err, txIn.SignatureScript, entry.PkScript)
		return ruleError(ErrScriptValidation, str)
	}
	return nil
}

// ValidateTransactionScripts validates the scripts of every input of the
// provided transactions against the outputs they reference in the view.
// Coinbase transactions are skipped.  The inputs are validated concurrently
// and the first failure is returned.
func ValidateTransactionScripts(txs []*wire.MsgTx, view UtxoViewer, sigCache *txscript.SigCache) error {
	var items []txValidateItem
	for _, tx := range txs {
		if standalone.IsCoinBaseTx(tx) {
			continue
		}
		for i := range tx.TxIn {
			items = append(items, txValidateItem{txInIndex: i, tx: tx})
		}
	}
	if len(items) == 0 {
		return nil
	}

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(runtime.NumCPU() * 3)
	for i := range items {
		item := &items[i]
		g.Go(func() error {
			// Stop early once another input failed.
			if ctx.Err() != nil {
				return nil
			}
			return validateInput(item, view, sigCache)
		})
	}
	return g.Wait()
}
