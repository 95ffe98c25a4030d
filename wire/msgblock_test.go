// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"errors"
	"testing"
)

// TestBlockRoundTrip ensures blocks serialize as the header followed by the
// transaction count and transactions, and decode back to identical bytes.
func TestBlockRoundTrip(t *testing.T) {
	t.Parallel()

	header := testHeader()
	block := NewMsgBlock(&header)
	block.AddTransaction(testTx(1, 1))
	block.AddTransaction(testTx(2, 3))

	serialized, err := block.Bytes()
	if err != nil {
		t.Fatalf("Bytes: unexpected error %v", err)
	}
	if len(serialized) != block.SerializeSize() {
		t.Fatalf("SerializeSize %d, serialized %d", block.SerializeSize(),
			len(serialized))
	}
	headerBytes, _ := header.Bytes()
	if !bytes.Equal(serialized[:MaxBlockHeaderPayload], headerBytes) {
		t.Fatal("block does not start with its header")
	}
	if serialized[MaxBlockHeaderPayload] != 0x02 {
		t.Fatalf("tx count byte %x, want 02", serialized[MaxBlockHeaderPayload])
	}

	var decoded MsgBlock
	if err := decoded.FromBytes(serialized); err != nil {
		t.Fatalf("FromBytes: unexpected error %v", err)
	}
	reserialized, _ := decoded.Bytes()
	if !bytes.Equal(reserialized, serialized) {
		t.Fatal("block bytes changed across a round trip")
	}
	if decoded.BlockHash() != block.BlockHash() {
		t.Fatal("block hash changed across a round trip")
	}
	hashes := decoded.TxHashes()
	if len(hashes) != 2 || hashes[1] != block.Transactions[1].TxHash() {
		t.Fatalf("unexpected tx hashes %v", hashes)
	}

	if err := decoded.FromBytes(serialized[:len(serialized)-3]); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("truncated: got %v, want %v", err, ErrInsufficientData)
	}

	block.ClearTransactions()
	if len(block.Transactions) != 0 {
		t.Fatal("ClearTransactions left transactions behind")
	}
}
