// Copyright (c) 2019-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mining

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/davecgh/go-spew/spew"
	"github.com/ledgerd/ledgerd/blockchain"
	"github.com/ledgerd/ledgerd/blockchain/standalone"
	"github.com/ledgerd/ledgerd/chaincfg"
	"github.com/ledgerd/ledgerd/wire"
)

// fakeChainSource provides a header chain and unspent outputs that are not
// backed by a database.
type fakeChainSource struct {
	headers *blockchain.HeaderChain
	utxos   *blockchain.UtxoSet
}

func (s *fakeChainSource) HeaderChain() *blockchain.HeaderChain {
	return s.headers
}

func (s *fakeChainSource) UtxoSnapshot() *blockchain.UtxoSet {
	return s.utxos.Clone()
}

// TestFromGenesis ensures the genesis builder produces a block with a single
// coinbase paying the base subsidy and a header committing to it.
func TestFromGenesis(t *testing.T) {
	t.Parallel()

	for _, params := range []*chaincfg.Params{chaincfg.RegNetParams(),
		chaincfg.SimNetParams()} {

		builder, err := FromGenesis(params, testPkScript)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", params.Name, err)
		}

		header := builder.Header()
		if header.Height != 0 || header.PrevBlock != (chainhash.Hash{}) {
			t.Errorf("%s: genesis header does not start the chain: %v",
				params.Name, spew.Sdump(header))
		}
		if header.Target != params.PowLimitTarget() {
			t.Errorf("%s: unexpected genesis target %x", params.Name,
				header.Target)
		}
		if !header.Timestamp.Equal(params.GenesisTimestamp) {
			t.Errorf("%s: unexpected genesis timestamp %v", params.Name,
				header.Timestamp)
		}
		for i, algo := range params.PowAlgos {
			if header.PowSlots[i].Algo != algo {
				t.Errorf("%s: slot %d has algorithm %v, want %v",
					params.Name, i, header.PowSlots[i].Algo, algo)
			}
		}

		block := builder.Block()
		if len(block.Transactions) != 1 {
			t.Fatalf("%s: genesis block has %d transactions", params.Name,
				len(block.Transactions))
		}
		coinbase := block.Transactions[0]
		if !standalone.IsCoinBaseTx(coinbase) {
			t.Errorf("%s: genesis transaction is not a coinbase", params.Name)
		}
		if coinbase.TxOut[0].Value != params.BaseSubsidy {
			t.Errorf("%s: genesis coinbase pays %d, want %d", params.Name,
				coinbase.TxOut[0].Value, params.BaseSubsidy)
		}
		wantRoot := standalone.CalcTxMerkleRoot(block.Transactions)
		if header.MerkleRoot != wantRoot {
			t.Errorf("%s: genesis merkle root %v, want %v", params.Name,
				header.MerkleRoot, wantRoot)
		}
		if !builder.Verify() {
			t.Errorf("%s: genesis builder does not verify", params.Name)
		}
		if err := blockchain.CheckBlockSanity(block, params); err != nil {
			t.Errorf("%s: genesis block is not sane: %v", params.Name, err)
		}

		// Solving returns a new builder and leaves the original unsolved.
		solved, err := builder.Solve(context.Background(), params)
		if err != nil {
			t.Fatalf("%s: unable to solve: %v", params.Name, err)
		}
		solvedHeader := solved.Header()
		if err := blockchain.CheckProofOfWork(&solvedHeader, params); err != nil {
			t.Errorf("%s: solved header fails proof of work: %v",
				params.Name, err)
		}
		if builder.Header() != header {
			t.Errorf("%s: solving modified the original builder", params.Name)
		}
		if solvedHeader.MerkleRoot != header.MerkleRoot {
			t.Errorf("%s: solving changed the merkle root", params.Name)
		}
	}
}

// TestFromBlock ensures builders created from existing blocks re-derive the
// merkle tree, detect blocks that do not commit to their transactions and are
// isolated from later changes to the block.
func TestFromBlock(t *testing.T) {
	t.Parallel()

	params := chaincfg.RegNetParams()
	genesis := newTestGenesis(t, params)

	builder := FromBlock(genesis)
	if !builder.Verify() {
		t.Fatal("builder from a valid block does not verify")
	}
	if builder.MerkleTxs().Len() != 1 {
		t.Fatalf("unexpected number of transactions %d",
			builder.MerkleTxs().Len())
	}
	coinbaseHash := genesis.Transactions[0].TxHash()
	proof, ok := builder.MerkleTxs().Proof(&coinbaseHash)
	if !ok || !proof.Verify(&coinbaseHash) {
		t.Fatal("no valid proof for the coinbase")
	}

	// Changing the original block must not affect the builder.
	genesis.Transactions[0].TxOut[0].Value++
	genesis.Header.Height = 5
	if !builder.Verify() {
		t.Fatal("builder affected by changes to the original block")
	}
	if got := builder.Header(); got.Height != 0 {
		t.Fatalf("builder header affected by changes to the original block")
	}

	// A block whose transactions do not match the header root must not
	// verify.
	if FromBlock(genesis).Verify() {
		t.Fatal("builder from a tampered block verifies")
	}
}

// TestBlockCopies ensures the blocks returned by a builder are copies.
func TestBlockCopies(t *testing.T) {
	t.Parallel()

	params := chaincfg.RegNetParams()
	builder, err := FromGenesis(params, testPkScript)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	block := builder.Block()
	wantHash := block.BlockHash()
	block.Header.Nonce[0] = 0xff
	block.Transactions[0].TxOut[0].Value = 1
	block.AddTransaction(wire.NewMsgTx())

	again := builder.Block()
	if again.BlockHash() != wantHash {
		t.Fatal("header modified through a returned block")
	}
	if len(again.Transactions) != 1 {
		t.Fatalf("unexpected number of transactions %d",
			len(again.Transactions))
	}
	if again.Transactions[0].TxOut[0].Value != params.BaseSubsidy {
		t.Fatal("transaction modified through a returned block")
	}
}

// TestNewBlockTemplate ensures templates extend the tip of the chain and pay
// the subsidy to the requested script.
func TestNewBlockTemplate(t *testing.T) {
	t.Parallel()

	chain := newTestChain(t)
	params := chain.ChainParams()
	tip := chain.HeaderChain().Tip()
	tipHash := chain.HeaderChain().TipHash()

	tests := []struct {
		name     string
		now      time.Time
		wantTime time.Time
	}{{
		name:     "time after tip",
		now:      tip.Timestamp.Add(5*time.Second + 300*time.Millisecond),
		wantTime: tip.Timestamp.Add(5 * time.Second),
	}, {
		name:     "time before tip",
		now:      tip.Timestamp.Add(-time.Hour),
		wantTime: tip.Timestamp,
	}}

	for _, test := range tests {
		builder, err := NewBlockTemplate(chain, testPkScript, 7, nil, test.now)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", test.name, err)
			continue
		}

		header := builder.Header()
		if header.Height != 1 || header.PrevBlock != tipHash {
			t.Errorf("%s: template does not extend the tip: %v", test.name,
				spew.Sdump(header))
		}
		if header.Target != chain.HeaderChain().NextTarget() {
			t.Errorf("%s: unexpected target %x", test.name, header.Target)
		}
		if !header.Timestamp.Equal(test.wantTime) {
			t.Errorf("%s: timestamp %v, want %v", test.name,
				header.Timestamp, test.wantTime)
		}
		if !builder.Verify() {
			t.Errorf("%s: template does not verify", test.name)
		}

		block := builder.Block()
		if len(block.Transactions) != 1 {
			t.Errorf("%s: unexpected number of transactions %d", test.name,
				len(block.Transactions))
			continue
		}
		value := block.Transactions[0].TxOut[0].Value
		if value != chain.HeaderChain().CoinbaseAmount(1) {
			t.Errorf("%s: coinbase pays %d", test.name, value)
		}
		if err := blockchain.CheckBlockSanity(block, params); err != nil {
			t.Errorf("%s: template is not sane: %v", test.name, err)
		}
	}

	// Different extra nonces must produce different coinbases.
	a, err := NewBlockTemplate(chain, testPkScript, 1, nil, tip.Timestamp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := NewBlockTemplate(chain, testPkScript, 2, nil, tip.Timestamp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Header().MerkleRoot == b.Header().MerkleRoot {
		t.Fatal("extra nonce does not change the merkle root")
	}
}

// TestNewBlockTemplateErrors ensures templates with transactions that do not
// connect to the chain are rejected with the expected error.
func TestNewBlockTemplateErrors(t *testing.T) {
	t.Parallel()

	chain := newTestChain(t)
	genesis, err := chain.FetchBlockByHeight(0)
	if err != nil {
		t.Fatalf("unable to fetch genesis block: %v", err)
	}
	genesisOut := wire.OutPoint{Hash: genesis.Transactions[0].TxHash()}
	subsidy := chain.ChainParams().BaseSubsidy
	missingOut := wire.OutPoint{Hash: chainhash.Hash{0x01}}

	coinbase, err := blockchain.NewCoinbaseTx(1, 1, testPkScript, 0)
	if err != nil {
		t.Fatalf("unable to create coinbase: %v", err)
	}

	tests := []struct {
		name string
		txs  []*wire.MsgTx
	}{{
		name: "spend of missing output",
		txs:  []*wire.MsgTx{spendTx(t, missingOut, 100, 50)},
	}, {
		name: "spend of immature coinbase",
		txs:  []*wire.MsgTx{spendTx(t, genesisOut, subsidy, subsidy-1000)},
	}, {
		name: "extra coinbase",
		txs:  []*wire.MsgTx{coinbase},
	}, {
		name: "transaction without inputs",
		txs:  []*wire.MsgTx{wire.NewMsgTx()},
	}}

	tip := chain.HeaderChain().Tip()
	for _, test := range tests {
		_, err := NewBlockTemplate(chain, testPkScript, 0, test.txs,
			tip.Timestamp)
		if !errors.Is(err, ErrTemplateTx) {
			t.Errorf("%s: mismatched error -- got %v, want %v", test.name,
				err, ErrTemplateTx)
		}
	}

	// The chain state is unchanged by rejected templates.
	if chain.BestSnapshot().Height != 0 {
		t.Fatal("rejected template changed the chain")
	}
}

// TestNewBlockTemplateTooLarge ensures templates that exceed the maximum block
// size of the network are rejected.
func TestNewBlockTemplateTooLarge(t *testing.T) {
	t.Parallel()

	params := chaincfg.RegNetParams()
	genesis := newTestGenesis(t, params)
	params.MaxBlockSize = wire.MaxBlockHeaderPayload
	headers, err := blockchain.NewHeaderChain(params, &genesis.Header)
	if err != nil {
		t.Fatalf("unable to create header chain: %v", err)
	}
	src := &fakeChainSource{headers: headers, utxos: blockchain.NewUtxoSet()}

	_, err = NewBlockTemplate(src, testPkScript, 0, nil, genesis.Header.Timestamp)
	if !errors.Is(err, ErrBlockTooLarge) {
		t.Fatalf("mismatched error -- got %v, want %v", err, ErrBlockTooLarge)
	}
}

// TestTemplateTimestampRange ensures builders reject timestamps that can't be
// encoded in a block header.
func TestTemplateTimestampRange(t *testing.T) {
	t.Parallel()

	params := chaincfg.RegNetParams()
	params.GenesisTimestamp = time.Time{}
	if _, err := FromGenesis(params, testPkScript); !errors.Is(err, ErrBadTimestamp) {
		t.Fatalf("FromGenesis: mismatched error -- got %v, want %v", err,
			ErrBadTimestamp)
	}

	params = chaincfg.RegNetParams()
	genesis := newTestGenesis(t, params)
	headers, err := blockchain.NewHeaderChain(params, &genesis.Header)
	if err != nil {
		t.Fatalf("unable to create header chain: %v", err)
	}
	src := &fakeChainSource{headers: headers, utxos: blockchain.NewUtxoSet()}

	// The maximum usable number of seconds of a Go time value.
	const maxSecs = math.MaxInt64 - 62135596800
	_, err = NewBlockTemplate(src, testPkScript, 0, nil,
		time.Unix(maxSecs+1, 0))
	if !errors.Is(err, ErrBadTimestamp) {
		t.Fatalf("NewBlockTemplate: mismatched error -- got %v, want %v",
			err, ErrBadTimestamp)
	}

	// Times before the tip are raised to the tip rather than rejected.
	builder, err := NewBlockTemplate(src, testPkScript, 0, nil, time.Time{})
	if err != nil {
		t.Fatalf("NewBlockTemplate: unexpected error: %v", err)
	}
	if header := builder.Header(); !header.Timestamp.Equal(genesis.Header.Timestamp) {
		t.Fatalf("unexpected template timestamp %v", header.Timestamp)
	}
}

// TestGenesisBlock ensures the network genesis block is deterministic, sane
// and satisfies the proof of work rules of the network.
func TestGenesisBlock(t *testing.T) {
	t.Parallel()

	for _, params := range []*chaincfg.Params{chaincfg.RegNetParams(),
		chaincfg.SimNetParams()} {

		genesis, err := GenesisBlock(context.Background(), params)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", params.Name, err)
		}
		again, err := GenesisBlock(context.Background(), params)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", params.Name, err)
		}
		if genesis.BlockHash() != again.BlockHash() {
			t.Errorf("%s: genesis block is not deterministic", params.Name)
		}
		if err := blockchain.CheckBlockSanity(genesis, params); err != nil {
			t.Errorf("%s: genesis block is not sane: %v", params.Name, err)
		}
		if err := blockchain.CheckProofOfWork(&genesis.Header, params); err != nil {
			t.Errorf("%s: genesis block fails proof of work: %v",
				params.Name, err)
		}
		if _, err := blockchain.NewHeaderChain(params, &genesis.Header); err != nil {
			t.Errorf("%s: genesis header rejected: %v", params.Name, err)
		}
	}
}
