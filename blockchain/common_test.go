// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2015-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"encoding/binary"
	"encoding/hex"
	"testing"
	"time"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/ledgerd/ledgerd/blockchain/standalone"
	"github.com/ledgerd/ledgerd/chaincfg"
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

var (
	// testPrivKey is the key the test coinbases pay to.
	testPrivKey = secp256k1.PrivKeyFromBytes(hexToBytes(
		"eaf02ca348c524e6392655ba4d29603cd1a7347d9d65cfe93ce1ebffdca22694"))

	// testPkScript is the pay-to-pubkey-hash script of testPrivKey.
	testPkScript = func() []byte {
		pubKey := testPrivKey.PubKey().SerializeCompressed()
		script, err := txscript.PayToPubKeyHashScript(txscript.Hash160(pubKey))
		if err != nil {
			panic(err)
		}
		return script
	}()
)

// solveHeader searches for a nonce for which every proof of work slot the
// network uses yields a digest that does not exceed the target of the header
// and stores the digests in the slots.  The test networks use easy targets, so
// the search finishes quickly.
func solveHeader(t *testing.T, header *wire.BlockHeader, params *chaincfg.Params) {
	t.Helper()

	for i, algo := range params.PowAlgos {
		header.PowSlots[i] = wire.PowSlot{Algo: algo}
	}
	for nonce := uint64(0); nonce < 1<<20; nonce++ {
		binary.BigEndian.PutUint64(header.Nonce[24:], nonce)
		solved := true
		for i := range header.PowSlots {
			slot := &header.PowSlots[i]
			if slot.Algo == wire.PowAlgoNone {
				continue
			}
			hash, _ := header.PowHash(slot.Algo)
			if standalone.CheckProofOfWorkHash(&hash, &header.Target) != nil {
				solved = false
				break
			}
			slot.Hash = hash
		}
		if solved {
			return
		}
	}
	t.Fatalf("unable to solve header at height %d", header.Height)
}

// newTestGenesisBlock returns a solved genesis block for the provided network
// whose coinbase pays the base subsidy to testPkScript.
func newTestGenesisBlock(t *testing.T, params *chaincfg.Params) *wire.MsgBlock {
	t.Helper()

	coinbase, err := NewCoinbaseTx(0, params.BaseSubsidy, testPkScript, 0)
	if err != nil {
		t.Fatalf("unable to create coinbase: %v", err)
	}
	header := wire.BlockHeader{
		MerkleRoot: standalone.CalcTxMerkleRoot([]*wire.MsgTx{coinbase}),
		Timestamp:  params.GenesisTimestamp,
		Target:     params.PowLimitTarget(),
	}
	solveHeader(t, &header, params)
	block := wire.NewMsgBlock(&header)
	block.AddTransaction(coinbase)
	return block
}

// blockOpts houses optional modifications applied when a test block is made.
type blockOpts struct {
	extraNonce  uint64
	coinbaseAdd int64
	timeOffset  time.Duration
}

// newTestBlock returns a solved block that extends the provided header chain
// with a coinbase paying the subsidy plus the fees of the provided
// transactions to testPkScript, followed by the transactions.  The fees are
// computed from the provided view.
func newTestBlock(t *testing.T, chain *HeaderChain, view UtxoViewer, txs []*wire.MsgTx, opts blockOpts) *wire.MsgBlock {
	t.Helper()

	params := chain.Params()
	height := chain.Height() + 1
	value := chain.CoinbaseAmount(height) + opts.coinbaseAdd
	for _, tx := range txs {
		for _, txIn := range tx.TxIn {
			if entry := view.LookupEntry(txIn.PreviousOutPoint); entry != nil {
				value += entry.Amount
			}
		}
		for _, txOut := range tx.TxOut {
			value -= txOut.Value
		}
	}
	coinbase, err := NewCoinbaseTx(height, value, testPkScript,
		opts.extraNonce)
	if err != nil {
		t.Fatalf("unable to create coinbase: %v", err)
	}

	allTxns := append([]*wire.MsgTx{coinbase}, txs...)
	tip := chain.Tip()
	timestamp := tip.Timestamp.Add(params.TargetTimePerBlock + opts.timeOffset)
	merkleRoot := standalone.CalcTxMerkleRoot(allTxns)
	header := chain.NextHeader(&merkleRoot, timestamp)
	solveHeader(t, &header, params)
	block := wire.NewMsgBlock(&header)
	for _, tx := range allTxns {
		block.AddTransaction(tx)
	}
	return block
}

// spendTx returns a transaction that spends the provided output of
// testPrivKey and pays the provided amount back to testPkScript.  The
// transaction is signed for an output of the provided input amount.
func spendTx(t *testing.T, outpoint wire.OutPoint, inputAmount, outputAmount int64) *wire.MsgTx {
	t.Helper()

	tx := wire.NewMsgTx()
	tx.AddTxIn(wire.NewTxIn(&outpoint, nil))
	tx.AddTxOut(wire.NewTxOut(outputAmount, testPkScript))
	sigScript, err := txscript.SignatureScript(tx, 0, testPkScript,
		inputAmount, testPrivKey)
	if err != nil {
		t.Fatalf("unable to sign: %v", err)
	}
	tx.TxIn[0].SignatureScript = sigScript
	return tx
}

// coinbaseOutPoint returns the outpoint of the first output of the coinbase
// of the provided block.
func coinbaseOutPoint(block *wire.MsgBlock) wire.OutPoint {
	return wire.OutPoint{Hash: block.Transactions[0].TxHash(), Index: 0}
}
