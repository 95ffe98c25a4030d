// Copyright (c) 2015-2016 The btcsuite developers
// Copyright (c) 2015-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"errors"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/ledgerd/ledgerd/txscript"
	"github.com/ledgerd/ledgerd/wire"
)

// newUnsignedBlock returns a block at the provided height with a coinbase
// paying the provided value followed by the provided transactions.  The
// header is not solved since the unspent output set does not look at it.
func newUnsignedBlock(t *testing.T, height uint64, value int64, txs ...*wire.MsgTx) *wire.MsgBlock {
	t.Helper()

	coinbase, err := NewCoinbaseTx(height, value, testPkScript, 0)
	if err != nil {
		t.Fatalf("unable to create coinbase: %v", err)
	}
	block := wire.NewMsgBlock(&wire.BlockHeader{Height: height})
	block.AddTransaction(coinbase)
	for _, tx := range txs {
		block.AddTransaction(tx)
	}
	return block
}

// unsignedSpend returns a transaction spending the provided outpoints into a
// single output of the provided value.
func unsignedSpend(value int64, outpoints ...wire.OutPoint) *wire.MsgTx {
	tx := wire.NewMsgTx()
	for i := range outpoints {
		tx.AddTxIn(wire.NewTxIn(&outpoints[i], nil))
	}
	tx.AddTxOut(wire.NewTxOut(value, testPkScript))
	return tx
}

// TestUtxoSetConnectDisconnect ensures connecting blocks spends and adds the
// expected outputs, including spends within the same block, and that
// disconnecting them restores the previous set.
func TestUtxoSetConnectDisconnect(t *testing.T) {
	t.Parallel()

	const maturity = 2
	set := NewUtxoSet()
	block0 := newUnsignedBlock(t, 0, 100)
	if _, err := set.ConnectBlock(block0, maturity); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	block1 := newUnsignedBlock(t, 1, 100)
	if _, err := set.ConnectBlock(block1, maturity); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before := set.Clone()

	// Spend the genesis coinbase and then spend that output within the
	// same block.
	tx1 := unsignedSpend(90, coinbaseOutPoint(block0))
	tx2 := unsignedSpend(80, wire.OutPoint{Hash: tx1.TxHash()})
	block2 := newUnsignedBlock(t, 2, 100, tx1, tx2)
	stxos, err := set.ConnectBlock(block2, maturity)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stxos) != 2 || stxos[0].OutPoint != coinbaseOutPoint(block0) ||
		stxos[0].Entry.Amount != 100 || !stxos[0].Entry.IsCoinBase ||
		stxos[1].Entry.Amount != 90 || stxos[1].Entry.IsCoinBase {

		t.Fatalf("unexpected spent outputs: %v", spew.Sdump(stxos))
	}

	// The set holds both remaining coinbases and the final output.
	if set.Len() != 3 {
		t.Fatalf("unexpected set size %d", set.Len())
	}
	if set.LookupEntry(coinbaseOutPoint(block0)) != nil {
		t.Fatal("spent output still in the set")
	}
	if set.LookupEntry(wire.OutPoint{Hash: tx1.TxHash()}) != nil {
		t.Fatal("output spent in the same block reached the set")
	}
	entry := set.LookupEntry(wire.OutPoint{Hash: tx2.TxHash()})
	if entry == nil || entry.Amount != 80 || entry.BlockHeight != 2 ||
		entry.IsCoinBase {

		t.Fatalf("unexpected entry %v", spew.Sdump(entry))
	}
	if set.TotalAmount() != 280 {
		t.Fatalf("unexpected total amount %d", set.TotalAmount())
	}

	if err := set.DisconnectBlock(block2, stxos); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := set.Entries(), before.Entries(); !equalEntries(got, want) {
		t.Fatalf("disconnect did not restore the set\ngot: %v\nwant: %v",
			spew.Sdump(got), spew.Sdump(want))
	}

	// Mismatched spent outputs must be rejected without changing anything.
	err = set.DisconnectBlock(block2, stxos[:1])
	var aErr AssertError
	if !errors.As(err, &aErr) {
		t.Fatalf("unexpected error %v", err)
	}
}

// equalEntries returns whether the provided sorted entries are the same.
func equalEntries(a, b []UtxoSetEntry) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].OutPoint != b[i].OutPoint || !equalEntry(a[i].Entry, b[i].Entry) {
			return false
		}
	}
	return true
}

// equalEntry returns whether the provided entries are the same.
func equalEntry(a, b *UtxoEntry) bool {
	return a.Amount == b.Amount && a.BlockHeight == b.BlockHeight &&
		a.IsCoinBase == b.IsCoinBase && string(a.PkScript) == string(b.PkScript)
}

// TestUtxoSetConnectErrors ensures blocks with invalid spends are rejected
// with the expected error and leave the set unchanged.
func TestUtxoSetConnectErrors(t *testing.T) {
	t.Parallel()

	const maturity = 2
	set := NewUtxoSet()
	block0 := newUnsignedBlock(t, 0, 100)
	if _, err := set.ConnectBlock(block0, maturity); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cbOut := coinbaseOutPoint(block0)
	missing := wire.OutPoint{Hash: cbOut.Hash, Index: 5}

	tests := []struct {
		name  string
		block *wire.MsgBlock
		err   error
	}{{
		name:  "immature coinbase spend",
		block: newUnsignedBlock(t, 1, 100, unsignedSpend(10, cbOut)),
		err:   ErrImmatureSpend,
	}, {
		name:  "missing output",
		block: newUnsignedBlock(t, 2, 100, unsignedSpend(10, missing)),
		err:   ErrMissingTxOut,
	}, {
		name: "double spend across transactions",
		block: newUnsignedBlock(t, 2, 100, unsignedSpend(10, cbOut),
			unsignedSpend(20, cbOut)),
		err: ErrDuplicateSpend,
	}, {
		name: "valid spend followed by a missing output",
		block: newUnsignedBlock(t, 2, 100, unsignedSpend(10, cbOut),
			unsignedSpend(20, missing)),
		err: ErrMissingTxOut,
	}, {
		name:  "overwrite of an unspent output",
		block: newUnsignedBlock(t, 0, 100),
		err:   ErrOverwriteTx,
	}}

	for _, test := range tests {
		before := set.Entries()
		_, err := set.ConnectBlock(test.block, maturity)
		if !errors.Is(err, test.err) {
			t.Errorf("%q: mismatched error -- got %v, want %v", test.name,
				err, test.err)
			continue
		}
		if !equalEntries(set.Entries(), before) {
			t.Errorf("%q: failed connect modified the set", test.name)
		}
	}
}

// TestUtxoSetUnspendable ensures provably unspendable outputs are never added
// to the set.
func TestUtxoSetUnspendable(t *testing.T) {
	t.Parallel()

	nullData, err := txscript.NullDataScript([]byte("ledger"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	block := newUnsignedBlock(t, 0, 100)
	block.Transactions[0].AddTxOut(wire.NewTxOut(0, nullData))

	set := NewUtxoSet()
	if _, err := set.ConnectBlock(block, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if set.Len() != 1 {
		t.Fatalf("unexpected set size %d", set.Len())
	}
}

// TestUtxoSetSerialization ensures the set and spend journal entries survive
// a round trip through their serialized forms and that corrupt data is
// detected.
func TestUtxoSetSerialization(t *testing.T) {
	t.Parallel()

	set := NewUtxoSet()
	block0 := newUnsignedBlock(t, 0, 100)
	if _, err := set.ConnectBlock(block0, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	block1 := newUnsignedBlock(t, 1, 100, unsignedSpend(40,
		coinbaseOutPoint(block0)))
	stxos, err := set.ConnectBlock(block1, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	serialized := set.Bytes()
	decoded, err := UtxoSetFromBytes(serialized)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !equalEntries(decoded.Entries(), set.Entries()) {
		t.Fatalf("mismatched set\ngot: %v\nwant: %v",
			spew.Sdump(decoded.Entries()), spew.Sdump(set.Entries()))
	}

	journal, err := deserializeSpendJournalEntry(
		serializeSpendJournalEntry(stxos))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(journal) != 1 || journal[0].OutPoint != stxos[0].OutPoint ||
		!equalEntry(&journal[0].Entry, &stxos[0].Entry) {

		t.Fatalf("mismatched spend journal %v", spew.Sdump(journal))
	}

	empty, err := UtxoSetFromBytes(NewUtxoSet().Bytes())
	if err != nil || empty.Len() != 0 {
		t.Fatalf("unexpected empty set result %v, %v", empty, err)
	}

	corrupt := []struct {
		name string
		data []byte
	}{
		{"truncated", serialized[:len(serialized)-1]},
		{"trailing bytes", append(append([]byte{}, serialized...), 0x00)},
		{"huge count", []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
			0xff, 0xff}},
		{"no data", nil},
	}
	for _, test := range corrupt {
		_, err := UtxoSetFromBytes(test.data)
		if !errors.Is(err, ErrCorruptUtxoSet) {
			t.Errorf("%q: mismatched error -- got %v, want %v", test.name,
				err, ErrCorruptUtxoSet)
		}
	}
}
