// Copyright (c) 2016-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txauthor

import (
	"bytes"
	"fmt"
	"math"

	"github.com/ledgerd/ledgerd/blockchain"
	"github.com/ledgerd/ledgerd/txscript"
	"github.com/ledgerd/ledgerd/wire"
)

// UtxoSource provides the unspent outputs a transaction is authored from.
// *blockchain.UtxoSet satisfies it.
type UtxoSource interface {
	blockchain.UtxoViewer

	// Entries returns all unspent outputs in a deterministic order.
	Entries() []blockchain.UtxoSetEntry
}

// Enforce blockchain.UtxoSet implements the UtxoSource interface.
var _ UtxoSource = (*blockchain.UtxoSet)(nil)

// placeholderSigScript is the unlocking script inputs carry until they are
// signed.  It pushes zero bytes of the same sizes as a signature and a public
// key, so the size of an unsigned transaction matches the signed one.
var placeholderSigScript = func() []byte {
	script, err := txscript.NewScriptBuilder().
		AddData(make([]byte, txscript.SigLen)).
		AddData(make([]byte, txscript.PubKeyLen)).
		Script()
	if err != nil {
		panic(err)
	}
	return script
}()

// AuthoredTx holds the state of a newly-created transaction along with the
// outputs it spends.
type AuthoredTx struct {
	Tx          *wire.MsgTx
	PrevScripts [][]byte
	PrevAmounts []int64
	TotalInput  int64
	TotalOutput int64

	// ChangeIndex is the index of the change output or -1 when the
	// transaction has no change output.
	ChangeIndex int
}

// Shortfall returns the amount by which the selected inputs fail to cover the
// outputs.  A transaction with a shortfall is invalid and must not be
// broadcast.
func (tx *AuthoredTx) Shortfall() int64 {
	if tx.TotalInput >= tx.TotalOutput {
		return 0
	}
	return tx.TotalOutput - tx.TotalInput
}

// Builder authors unsigned transactions that spend pay-to-pubkey-hash outputs
// of an unspent output set.
type Builder struct {
	utxos UtxoSource
	keys  *KeyStore

	// spendHeight and coinbaseMaturity exclude immature coinbase outputs
	// when coinbaseMaturity is not zero.
	spendHeight      uint64
	coinbaseMaturity uint16
}

// NewBuilder returns a builder selecting inputs from the provided unspent
// outputs.  When a key store is provided, only outputs locked to its keys are
// selected.
func NewBuilder(utxos UtxoSource, keys *KeyStore) *Builder {
	return &Builder{utxos: utxos, keys: keys}
}

// SetSpendHeight configures the builder to skip coinbase outputs that have
// not reached the provided maturity at the height the transaction is expected
// to be mined at.
func (b *Builder) SetSpendHeight(height uint64, coinbaseMaturity uint16) {
	b.spendHeight = height
	b.coinbaseMaturity = coinbaseMaturity
}

// spendable returns whether the provided output may be selected as an input.
func (b *Builder) spendable(entry *blockchain.UtxoEntry) bool {
	pkh, ok := pubKeyHashFromScript(entry.PkScript)
	if !ok {
		return false
	}
	if b.keys != nil && !b.keys.HasKey(pkh) {
		return false
	}
	if entry.IsCoinBase && b.coinbaseMaturity != 0 {
		if b.spendHeight < entry.BlockHeight ||
			b.spendHeight-entry.BlockHeight < uint64(b.coinbaseMaturity) {

			return false
		}
	}
	return true
}

// Build returns an unsigned transaction paying the provided outputs.
//
// Candidate outputs are selected in the order of the unspent output source
// until their total covers the outputs.  Every selected input carries a
// placeholder unlocking script.  Any surplus is paid to the change script.
//
// When the candidates do not cover the outputs, the transaction is still
// returned with every candidate as an input and no change output.  Its
// Shortfall reports the missing amount and the caller must not use it.
func (b *Builder) Build(outputs []*wire.TxOut, changeScript []byte) (*AuthoredTx, error) {
	if len(outputs) == 0 {
		return nil, makeError(ErrNoOutputs, "no outputs to pay", nil)
	}

	tx := wire.NewMsgTx()
	var targetAmount int64
	for i, txOut := range outputs {
		if txOut.Value < 0 || txOut.Value > math.MaxInt64-targetAmount {
			str := fmt.Sprintf("output %d has invalid amount %d", i,
				txOut.Value)
			return nil, makeError(ErrInvalidAmount, str, nil)
		}
		targetAmount += txOut.Value
		tx.AddTxOut(wire.NewTxOut(txOut.Value, bytes.Clone(txOut.PkScript)))
	}

	authored := &AuthoredTx{
		Tx:          tx,
		TotalOutput: targetAmount,
		ChangeIndex: -1,
	}
	for _, candidate := range b.utxos.Entries() {
		if authored.TotalInput >= targetAmount {
			break
		}
		entry := candidate.Entry
		if !b.spendable(entry) {
			continue
		}

		outpoint := candidate.OutPoint
		tx.AddTxIn(wire.NewTxIn(&outpoint, bytes.Clone(placeholderSigScript)))
		authored.PrevScripts = append(authored.PrevScripts, entry.PkScript)
		authored.PrevAmounts = append(authored.PrevAmounts, entry.Amount)
		authored.TotalInput += entry.Amount
	}

	if shortfall := authored.Shortfall(); shortfall > 0 {
		log.Debugf("Selected inputs totaling %d do not cover outputs "+
			"totaling %d", authored.TotalInput, targetAmount)
		return authored, nil
	}

	if change := authored.TotalInput - targetAmount; change > 0 {
		authored.ChangeIndex = len(tx.TxOut)
		tx.AddTxOut(wire.NewTxOut(change, bytes.Clone(changeScript)))
		authored.TotalOutput += change
	}

	log.Tracef("Built transaction %v with %d inputs and %d outputs",
		tx.TxHash(), len(tx.TxIn), len(tx.TxOut))
	return authored, nil
}
