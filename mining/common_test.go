// Copyright (c) 2019-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mining

import (
	"context"
	"encoding/hex"
	"testing"
	"time"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/ledgerd/ledgerd/blockchain"
	"github.com/ledgerd/ledgerd/chaincfg"
	"github.com/ledgerd/ledgerd/database"
	_ "github.com/ledgerd/ledgerd/database/ldb"
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
	// testPrivKey is the key the test blocks pay to.
	testPrivKey = secp256k1.PrivKeyFromBytes(hexToBytes(
		"a2a9e4bfcb4d6d1b4ae3b8c9b4ad59bfa4e8fa8a7f7f7e8cc5b42c1a7c0d6e11"))

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

// newTestGenesis returns the solved genesis block of the provided network that
// pays to testPkScript.
func newTestGenesis(t *testing.T, params *chaincfg.Params) *wire.MsgBlock {
	t.Helper()

	builder, err := FromGenesis(params, testPkScript)
	if err != nil {
		t.Fatalf("unable to build genesis block: %v", err)
	}
	solved, err := builder.Solve(context.Background(), params)
	if err != nil {
		t.Fatalf("unable to solve genesis block: %v", err)
	}
	return solved.Block()
}

// newTestChain returns a regression test network chain backed by an in-memory
// database.
func newTestChain(t *testing.T) *blockchain.BlockChain {
	t.Helper()

	db, err := database.Create("leveldb", "")
	if err != nil {
		t.Fatalf("unable to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	params := chaincfg.RegNetParams()
	chain, err := blockchain.New(context.Background(), &blockchain.Config{
		DB:           db,
		ChainParams:  params,
		GenesisBlock: newTestGenesis(t, params),
		SigCache:     txscript.NewSigCache(1000),
	})
	if err != nil {
		t.Fatalf("unable to create chain: %v", err)
	}
	return chain
}

// nextBlockTime returns a time one target block interval after the tip of the
// provided chain, which keeps the difficulty of the test network unchanged.
func nextBlockTime(chain *blockchain.BlockChain) time.Time {
	tip := chain.HeaderChain().Tip()
	return tip.Timestamp.Add(chain.ChainParams().TargetTimePerBlock)
}

// newTestMiner returns a CPU miner for the provided chain that pays to
// testPkScript and advances time one block interval per block.
func newTestMiner(chain *blockchain.BlockChain, txSource func() []*wire.MsgTx) *CPUMiner {
	return NewCPUMiner(&CPUMinerConfig{
		ChainParams: chain.ChainParams(),
		Chain:       chain,
		PayScripts:  [][]byte{testPkScript},
		TxSource:    txSource,
		Now:         func() time.Time { return nextBlockTime(chain) },
	})
}

// spendTx returns a transaction that spends the provided outpoint, which is
// locked to testPkScript, with a single output of the provided amount.
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
