// Copyright (c) 2016-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txauthor

import (
	"errors"
	"math"
	"testing"

	"github.com/ledgerd/ledgerd/blockchain"
	"github.com/ledgerd/ledgerd/txscript"
	"github.com/ledgerd/ledgerd/wire"
)

// TestBuild ensures coin selection picks inputs in order until the outputs
// are covered, adds change for any surplus, and reports a shortfall when the
// available outputs do not suffice.
func TestBuild(t *testing.T) {
	t.Parallel()

	pkScript := p2pkhScript(t, testPrivKey)
	changeScript := []byte{txscript.OP_TRUE}
	utxos := newTestUtxos(fundingTx(pkScript, 100, 100, 100, 100, 100))

	tests := []struct {
		name        string
		amounts     []int64
		numInputs   int
		totalInput  int64
		totalOutput int64
		change      int64
		shortfall   int64
	}{{
		name:        "single input with change",
		amounts:     []int64{50},
		numInputs:   1,
		totalInput:  100,
		totalOutput: 100,
		change:      50,
	}, {
		name:        "exact amount without change",
		amounts:     []int64{150, 50},
		numInputs:   2,
		totalInput:  200,
		totalOutput: 200,
	}, {
		name:        "multiple inputs with change",
		amounts:     []int64{301},
		numInputs:   4,
		totalInput:  400,
		totalOutput: 400,
		change:      99,
	}, {
		name:        "insufficient inputs",
		amounts:     []int64{10000},
		numInputs:   5,
		totalInput:  500,
		totalOutput: 10000,
		shortfall:   9500,
	}, {
		name:        "zero value output",
		amounts:     []int64{0},
		numInputs:   0,
		totalInput:  0,
		totalOutput: 0,
	}}

	for _, test := range tests {
		outputs := make([]*wire.TxOut, 0, len(test.amounts))
		for _, amount := range test.amounts {
			outputs = append(outputs, wire.NewTxOut(amount, pkScript))
		}
		authored, err := NewBuilder(utxos, nil).Build(outputs, changeScript)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", test.name, err)
			continue
		}

		tx := authored.Tx
		if len(tx.TxIn) != test.numInputs {
			t.Errorf("%q: unexpected number of inputs %d, want %d",
				test.name, len(tx.TxIn), test.numInputs)
		}
		if authored.TotalInput != test.totalInput ||
			authored.TotalOutput != test.totalOutput {

			t.Errorf("%q: unexpected totals %d/%d, want %d/%d", test.name,
				authored.TotalInput, authored.TotalOutput, test.totalInput,
				test.totalOutput)
		}
		if authored.Shortfall() != test.shortfall {
			t.Errorf("%q: unexpected shortfall %d, want %d", test.name,
				authored.Shortfall(), test.shortfall)
		}
		if len(authored.PrevScripts) != len(tx.TxIn) ||
			len(authored.PrevAmounts) != len(tx.TxIn) {

			t.Errorf("%q: previous outputs do not match the inputs", test.name)
		}

		switch {
		case test.change == 0 && authored.ChangeIndex != -1:
			t.Errorf("%q: unexpected change output", test.name)
		case test.change != 0 && (authored.ChangeIndex != len(test.amounts) ||
			tx.TxOut[authored.ChangeIndex].Value != test.change ||
			len(tx.TxOut) != len(test.amounts)+1):

			t.Errorf("%q: missing change output of %d", test.name,
				test.change)
		}

		// Inputs carry the placeholder and follow the order of the set.
		entries := utxos.Entries()
		for i, txIn := range tx.TxIn {
			if txIn.PreviousOutPoint != entries[i].OutPoint {
				t.Errorf("%q: input %d out of order", test.name, i)
			}
			if string(txIn.SignatureScript) != string(placeholderSigScript) {
				t.Errorf("%q: input %d has no placeholder", test.name, i)
			}
		}
	}

	// The source set is never modified.
	if utxos.Len() != 5 {
		t.Fatalf("builder modified the unspent output set")
	}
}

// TestBuildSelection ensures only spendable outputs are selected.
func TestBuildSelection(t *testing.T) {
	t.Parallel()

	pkScript := p2pkhScript(t, testPrivKey)
	keys := NewKeyStore()
	keys.AddKey(testPrivKey)
	otherKeys := NewKeyStore()
	otherKey, _, err := otherKeys.GenerateKey()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	owned := fundingTx(pkScript, 100)
	foreign := fundingTx(p2pkhScript(t, otherKey), 1000)
	foreign.TxIn[0].PreviousOutPoint.Index = 1
	nonStandard := fundingTx([]byte{txscript.OP_TRUE}, 1000)
	nonStandard.TxIn[0].PreviousOutPoint.Index = 2
	utxos := newTestUtxos(owned, foreign, nonStandard)

	outputs := []*wire.TxOut{wire.NewTxOut(500, pkScript)}
	authored, err := NewBuilder(utxos, keys).Build(outputs, pkScript)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(authored.Tx.TxIn) != 1 || authored.TotalInput != 100 {
		t.Fatalf("unexpected selection of %d inputs totaling %d",
			len(authored.Tx.TxIn), authored.TotalInput)
	}

	// Without a key store every pay-to-pubkey-hash output is a candidate.
	allOutputs := []*wire.TxOut{wire.NewTxOut(1050, pkScript)}
	authored, err = NewBuilder(utxos, nil).Build(allOutputs, pkScript)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if authored.TotalInput != 1100 || authored.Shortfall() != 0 {
		t.Fatalf("unexpected selection totaling %d", authored.TotalInput)
	}

	// Immature coinbase outputs are skipped once a spend height is set.
	coinbase, err := blockchain.NewCoinbaseTx(10, 700, pkScript, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cbUtxos := blockchain.NewUtxoSet()
	cbUtxos.AddTxOuts(coinbase, 10)
	builder := NewBuilder(cbUtxos, keys)
	builder.SetSpendHeight(12, 16)
	authored, err = builder.Build(outputs, pkScript)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(authored.Tx.TxIn) != 0 {
		t.Fatal("immature coinbase output selected")
	}
	builder.SetSpendHeight(26, 16)
	authored, err = builder.Build(outputs, pkScript)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(authored.Tx.TxIn) != 1 {
		t.Fatal("mature coinbase output not selected")
	}
}

// TestBuildErrors ensures invalid requests are rejected.
func TestBuildErrors(t *testing.T) {
	t.Parallel()

	utxos := blockchain.NewUtxoSet()
	tests := []struct {
		name    string
		outputs []*wire.TxOut
		err     error
	}{{
		name:    "no outputs",
		outputs: nil,
		err:     ErrNoOutputs,
	}, {
		name:    "negative output",
		outputs: []*wire.TxOut{wire.NewTxOut(-1, nil)},
		err:     ErrInvalidAmount,
	}, {
		name: "overflowing outputs",
		outputs: []*wire.TxOut{wire.NewTxOut(math.MaxInt64, nil),
			wire.NewTxOut(1, nil)},
		err: ErrInvalidAmount,
	}}

	for _, test := range tests {
		_, err := NewBuilder(utxos, nil).Build(test.outputs, nil)
		if !errors.Is(err, test.err) {
			t.Errorf("%q: mismatched error -- got %v, want %v", test.name,
				err, test.err)
		}
	}
}
