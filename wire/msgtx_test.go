// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"errors"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/davecgh/go-spew/spew"
)

// testTx returns a transaction with the requested number of inputs and
// outputs.  The contents are deterministic.
func testTx(numIn, numOut int) *MsgTx {
	tx := NewMsgTx()
	tx.LockTime = 0x0102030405
	for i := 0; i < numIn; i++ {
		var hash chainhash.Hash
		for j := range hash {
			hash[j] = byte(i + j)
		}
		sigScript := bytes.Repeat([]byte{byte(i)}, i*3)
		txIn := NewTxIn(NewOutPoint(&hash, uint32(i)), sigScript)
		txIn.Sequence = uint32(0xfffffff0 + i)
		tx.AddTxIn(txIn)
	}
	for i := 0; i < numOut; i++ {
		pkScript := bytes.Repeat([]byte{0x51}, i+1)
		tx.AddTxOut(NewTxOut(int64(i)*1000+1, pkScript))
	}
	return tx
}

// TestTxSerializeKnown ensures a small transaction serializes to the exact
// expected canonical layout.
func TestTxSerializeKnown(t *testing.T) {
	t.Parallel()

	var hash chainhash.Hash
	for i := range hash {
		hash[i] = 0x11
	}
	tx := NewMsgTx()
	tx.AddTxIn(NewTxIn(NewOutPoint(&hash, 2), []byte{0x51}))
	tx.AddTxOut(NewTxOut(100, []byte{0x51}))

	want := hexToBytes("01" + // version
		"01" + // input count
		"1111111111111111111111111111111111111111111111111111111111111111" +
		"00000002" + // previous output index
		"0151" + // signature script
		"ffffffff" + // sequence
		"01" + // output count
		"0000000000000064" + // value
		"0151" + // public key script
		"0000000000000000") // lock time

	got, err := tx.Bytes()
	if err != nil {
		t.Fatalf("Bytes: unexpected error %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("unexpected serialization\n got: %x\nwant: %x", got, want)
	}
	if tx.SerializeSize() != len(want) {
		t.Fatalf("SerializeSize: got %d, want %d", tx.SerializeSize(),
			len(want))
	}
	if tx.TxHash() != chainhash.HashH(want) {
		t.Fatalf("TxHash is not the digest of the serialization")
	}
}

// TestTxRoundTrip ensures transactions with zero, one, and many inputs and
// outputs reproduce identical bytes and ids after a decode.
func TestTxRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		numIn  int
		numOut int
	}{
		{"no inputs or outputs", 0, 0},
		{"one input one output", 1, 1},
		{"one input no outputs", 1, 0},
		{"no inputs one output", 0, 1},
		{"many inputs and outputs", 7, 12},
		{"varint boundary inputs", 253, 2},
	}

	for _, test := range tests {
		tx := testTx(test.numIn, test.numOut)
		serialized, err := tx.Bytes()
		if err != nil {
			t.Errorf("%q: unexpected serialize error %v", test.name, err)
			continue
		}

		var decoded MsgTx
		if err := decoded.FromBytes(serialized); err != nil {
			t.Errorf("%q: unexpected decode error %v", test.name, err)
			continue
		}
		reserialized, err := decoded.Bytes()
		if err != nil {
			t.Errorf("%q: unexpected reserialize error %v", test.name, err)
			continue
		}
		if !bytes.Equal(serialized, reserialized) {
			t.Errorf("%q: mismatched bytes\n got: %x\nwant: %x", test.name,
				reserialized, serialized)
			continue
		}
		if decoded.TxHash() != tx.TxHash() {
			t.Errorf("%q: mismatched ids -- got %v, want %v", test.name,
				decoded.TxHash(), tx.TxHash())
			continue
		}
		if len(decoded.TxIn) != test.numIn || len(decoded.TxOut) != test.numOut {
			t.Errorf("%q: decoded counts %d/%d, want %d/%d", test.name,
				len(decoded.TxIn), len(decoded.TxOut), test.numIn,
				test.numOut)
			continue
		}
	}
}

// TestTxDecodeErrors ensures decoding malformed transactions returns typed
// errors instead of panicking.
func TestTxDecodeErrors(t *testing.T) {
	t.Parallel()

	serialized, err := testTx(2, 2).Bytes()
	if err != nil {
		t.Fatalf("unexpected serialize error %v", err)
	}

	// Every truncation must fail with insufficient data.
	for i := 0; i < len(serialized); i++ {
		var tx MsgTx
		err := tx.FromBytes(serialized[:i])
		if !errors.Is(err, ErrInsufficientData) {
			t.Fatalf("truncated at %d: got %v, want %v", i, err,
				ErrInsufficientData)
		}
	}

	// Trailing bytes must be rejected.
	var tx MsgTx
	err = tx.FromBytes(append(append([]byte{}, serialized...), 0x00))
	if !errors.Is(err, ErrExcessData) {
		t.Fatalf("trailing data: got %v, want %v", err, ErrExcessData)
	}

	// A non-minimal input count invalidates the whole transaction.
	nonMinimal := append([]byte{serialized[0], 0xfd, 0x00, 0x02},
		serialized[2:]...)
	err = tx.FromBytes(nonMinimal)
	if !errors.Is(err, ErrNonCanonicalVarInt) {
		t.Fatalf("non-minimal count: got %v, want %v", err,
			ErrNonCanonicalVarInt)
	}

	// An input count that can't possibly fit is rejected up front.
	tooMany := []byte{0x01, 0xff, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00,
		0x00}
	err = tx.FromBytes(tooMany)
	if !errors.Is(err, ErrTooManyTxIns) {
		t.Fatalf("too many inputs: got %v, want %v", err, ErrTooManyTxIns)
	}
}

// TestTxCopy ensures a copied transaction is deep and serializes the same.
func TestTxCopy(t *testing.T) {
	t.Parallel()

	tx := testTx(3, 2)
	txCopy := tx.Copy()
	if tx.TxHash() != txCopy.TxHash() {
		t.Fatalf("copy hash mismatch\n got: %s\nwant: %s",
			spew.Sdump(txCopy), spew.Sdump(tx))
	}

	txCopy.TxIn[1].SignatureScript[0] ^= 0xff
	txCopy.TxOut[0].PkScript[0] = 0x00
	if tx.TxIn[1].SignatureScript[0] == txCopy.TxIn[1].SignatureScript[0] {
		t.Fatal("modifying the copy's signature script changed the original")
	}
	if tx.TxOut[0].PkScript[0] == 0x00 {
		t.Fatal("modifying the copy's public key script changed the original")
	}
}

// TestOutPointString ensures the human-readable form of an outpoint.
func TestOutPointString(t *testing.T) {
	t.Parallel()

	var hash chainhash.Hash
	hash[31] = 0xab
	op := NewOutPoint(&hash, 7)
	want := hash.String() + ":7"
	if op.String() != want {
		t.Fatalf("got %q, want %q", op.String(), want)
	}
}
