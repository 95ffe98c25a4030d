// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2015-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mining

import (
	"context"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/ledgerd/ledgerd/blockchain"
	"github.com/ledgerd/ledgerd/blockchain/standalone"
	"github.com/ledgerd/ledgerd/chaincfg"
	"github.com/ledgerd/ledgerd/txscript"
	"github.com/ledgerd/ledgerd/wire"
)

// ChainSource provides the chain state needed to build a block that extends
// the current best chain.
type ChainSource interface {
	// HeaderChain returns the header chain of the current best chain.
	HeaderChain() *blockchain.HeaderChain

	// UtxoSnapshot returns a copy of the unspent transaction outputs of the
	// current best chain that is safe to modify.
	UtxoSnapshot() *blockchain.UtxoSet
}

// Enforce BlockChain implements the ChainSource interface.
var _ ChainSource = (*blockchain.BlockChain)(nil)

// BlockBuilder binds a block header to an ordered list of transactions through
// the merkle tree over their ids.
//
// A builder is immutable once created.  The header and transactions it was
// created from are copied, and every accessor returns copies, so it is safe
// for concurrent access.
type BlockBuilder struct {
	header    wire.BlockHeader
	merkleTxs *standalone.MerkleTxs
}

// newBlockBuilder returns a builder for the provided header and transactions
// with the merkle root of the header replaced by the root over the
// transactions.
func newBlockBuilder(header *wire.BlockHeader, txs []*wire.MsgTx) *BlockBuilder {
	merkleTxs := standalone.NewMerkleTxs(txs)
	b := &BlockBuilder{header: *header, merkleTxs: merkleTxs}
	b.header.MerkleRoot = merkleTxs.Root()
	return b
}

// FromGenesis builds the genesis block of the network defined by the provided
// parameters.  The block holds a single coinbase transaction that pays the
// base subsidy to the provided script, and its header references no previous
// block and carries the proof of work limit as its target.
//
// The header is not solved.  Use Solve to find a nonce that satisfies every
// proof of work slot.
func FromGenesis(params *chaincfg.Params, payScript []byte) (*BlockBuilder, error) {
	if err := wire.CheckTimestamp(params.GenesisTimestamp); err != nil {
		str := fmt.Sprintf("invalid genesis timestamp: %v", err)
		return nil, makeError(ErrBadTimestamp, str)
	}
	coinbase, err := blockchain.NewCoinbaseTx(0, params.BaseSubsidy,
		payScript, 0)
	if err != nil {
		str := fmt.Sprintf("unable to create genesis coinbase: %v", err)
		return nil, makeError(ErrCreateCoinbase, str)
	}

	header := wire.BlockHeader{
		Timestamp: params.GenesisTimestamp,
		Height:    0,
		Target:    params.PowLimitTarget(),
	}
	for i, algo := range params.PowAlgos {
		header.PowSlots[i].Algo = algo
	}
	return newBlockBuilder(&header, []*wire.MsgTx{coinbase}), nil
}

// genesisMessage is the data carried by the output of the genesis coinbase
// built by GenesisBlock.
const genesisMessage = "ledgerd genesis"

// GenesisBlock returns the genesis block of the network defined by the
// provided parameters.  The coinbase pays the base subsidy to an unspendable
// null data script and the header is solved by a single worker, so every node
// derives the same block.
func GenesisBlock(ctx context.Context, params *chaincfg.Params) (*wire.MsgBlock, error) {
	payScript, err := txscript.NullDataScript([]byte(genesisMessage))
	if err != nil {
		return nil, err
	}
	b, err := FromGenesis(params, payScript)
	if err != nil {
		return nil, err
	}
	header := b.header
	if err := solveBlock(ctx, &header, params, 1); err != nil {
		return nil, err
	}
	solved := &BlockBuilder{header: header, merkleTxs: b.merkleTxs}
	return solved.Block(), nil
}

// FromBlock returns a builder that re-derives the merkle tree of an existing
// block.  The header is kept as is, so Verify reports whether the block
// commits to its transactions.
func FromBlock(block *wire.MsgBlock) *BlockBuilder {
	return &BlockBuilder{
		header:    block.Header,
		merkleTxs: standalone.NewMerkleTxs(block.Transactions),
	}
}

// NewBlockTemplate builds an unsolved block that extends the tip of the
// provided chain with the provided transactions.
//
// The coinbase pays the subsidy for the next height plus the fees of the
// transactions to payScript and commits to the extra nonce.  The timestamp is
// the provided time truncated to seconds, unless that is before the tip, in
// which case the timestamp of the tip is used.  A timestamp that can't be
// encoded in a header is rejected.
//
// Transactions may spend outputs created by transactions before them in the
// template.
func NewBlockTemplate(src ChainSource, payScript []byte, extraNonce uint64,
	txs []*wire.MsgTx, now time.Time) (*BlockBuilder, error) {

	chain := src.HeaderChain()
	params := chain.Params()
	tip := chain.Tip()
	nextHeight := tip.Height + 1

	timestamp := now
	if timestamp.Before(tip.Timestamp) {
		timestamp = tip.Timestamp
	}
	if err := wire.CheckTimestamp(timestamp); err != nil {
		str := fmt.Sprintf("invalid template timestamp: %v", err)
		return nil, makeError(ErrBadTimestamp, str)
	}

	view := src.UtxoSnapshot()
	var totalFees int64
	for i, tx := range txs {
		err := standalone.CheckTransactionSanity(tx, uint64(params.MaxTxSize))
		if err != nil {
			str := fmt.Sprintf("template transaction %d (%v) is invalid: %v",
				i, tx.TxHash(), err)
			return nil, makeError(ErrTemplateTx, str)
		}
		if standalone.IsCoinBaseTx(tx) {
			str := fmt.Sprintf("template transaction %d (%v) is a coinbase",
				i, tx.TxHash())
			return nil, makeError(ErrTemplateTx, str)
		}
		fee, err := blockchain.CheckTransactionInputs(tx, nextHeight, view,
			params)
		if err != nil {
			str := fmt.Sprintf("template transaction %d (%v) does not "+
				"connect: %v", i, tx.TxHash(), err)
			return nil, makeError(ErrTemplateTx, str)
		}
		totalFees += fee
		view.AddTxOuts(tx, nextHeight)
	}

	coinbase, err := blockchain.NewCoinbaseTx(nextHeight,
		chain.CoinbaseAmount(nextHeight)+totalFees, payScript, extraNonce)
	if err != nil {
		str := fmt.Sprintf("unable to create coinbase: %v", err)
		return nil, makeError(ErrCreateCoinbase, str)
	}

	blockTxns := make([]*wire.MsgTx, 0, len(txs)+1)
	blockTxns = append(blockTxns, coinbase)
	blockTxns = append(blockTxns, txs...)

	var zeroRoot chainhash.Hash
	header := chain.NextHeader(&zeroRoot, timestamp)
	b := newBlockBuilder(&header, blockTxns)

	blockSize := b.header.SerializeSize() + wire.VarIntSerializeSize(
		uint64(len(blockTxns)))
	for _, tx := range blockTxns {
		blockSize += tx.SerializeSize()
	}
	if blockSize > params.MaxBlockSize {
		str := fmt.Sprintf("block template of %d bytes exceeds the maximum "+
			"block size of %d", blockSize, params.MaxBlockSize)
		return nil, makeError(ErrBlockTooLarge, str)
	}

	log.Debugf("Created block template at height %d with %d transactions "+
		"and %d atoms in fees", nextHeight, len(blockTxns), totalFees)
	return b, nil
}

// Header returns a copy of the block header.
func (b *BlockBuilder) Header() wire.BlockHeader {
	return b.header
}

// MerkleTxs returns the merkle tree over the transactions of the block.
func (b *BlockBuilder) MerkleTxs() *standalone.MerkleTxs {
	return b.merkleTxs
}

// Block returns a copy of the block.
func (b *BlockBuilder) Block() *wire.MsgBlock {
	block := wire.NewMsgBlock(&b.header)
	for _, tx := range b.merkleTxs.Transactions() {
		block.AddTransaction(tx)
	}
	return block
}

// Verify returns whether the merkle tree over the transactions is consistent
// and its root is the one committed to by the header.
func (b *BlockBuilder) Verify() bool {
	return b.merkleTxs.Root() == b.header.MerkleRoot && b.merkleTxs.Verify()
}

// Solve searches for a nonce that satisfies every proof of work slot of the
// header with SolveBlock and returns a new builder with the solved header.
// The receiver is not modified.
func (b *BlockBuilder) Solve(ctx context.Context, params *chaincfg.Params) (*BlockBuilder, error) {
	header := b.header
	if err := SolveBlock(ctx, &header, params); err != nil {
		return nil, err
	}
	return &BlockBuilder{header: header, merkleTxs: b.merkleTxs}, nil
}
