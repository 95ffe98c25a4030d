// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/decred/dcrd/container/lru"
	"github.com/decred/dcrd/math/uint256"
	"github.com/ledgerd/ledgerd/blockchain/standalone"
	"github.com/ledgerd/ledgerd/chaincfg"
	"github.com/ledgerd/ledgerd/database"
	"github.com/ledgerd/ledgerd/txscript"
	"github.com/ledgerd/ledgerd/wire"
)

const (
	// defaultRecentBlockCacheSize is the number of recently accessed blocks
	// kept in memory when the configuration does not specify a size.
	defaultRecentBlockCacheSize = 64
)

// panicf is a convenience function that formats according to the given format
// specifier and arguments and logs the result at the critical level and panics
// with it.
func panicf(format string, args ...interface{}) {
	str := fmt.Sprintf(format, args...)
	log.Critical(str)
	panic(str)
}

// BestState houses information about the current best block and other info
// related to the state of the main chain as it exists from the point of view
// of the current best block.
//
// The BestSnapshot method can be used to obtain access to this information
// in a concurrent safe manner and the data will not be changed out from under
// the caller when chain state changes occur as the function name implies.
// However, the returned snapshot must be treated as immutable since it is
// shared by all callers.
type BestState struct {
	Hash      chainhash.Hash  // The hash of the block.
	PrevHash  chainhash.Hash  // The previous block hash.
	Height    uint64          // The height of the block.
	Target    [32]byte        // The proof of work target of the block.
	NumTxns   uint64          // The number of txns in the block.
	TotalTxns uint64          // The total number of txns in the chain.
	Timestamp time.Time       // The timestamp of the block.
	ChainWork uint256.Uint256 // The total work of the chain.
	UtxoCount uint64          // The number of unspent outputs.
}

// newBestState returns a new best stats instance for the given parameters.
func newBestState(headers *HeaderChain, numTxns, totalTxns uint64, utxos *UtxoSet) *BestState {
	tip := headers.Tip()
	return &BestState{
		Hash:      headers.TipHash(),
		PrevHash:  tip.PrevBlock,
		Height:    tip.Height,
		Target:    tip.Target,
		NumTxns:   numTxns,
		TotalTxns: totalTxns,
		Timestamp: tip.Timestamp,
		ChainWork: headers.ChainWork(),
		UtxoCount: uint64(utxos.Len()),
	}
}

// BlockChain provides functions for working with the ledger block chain.  It
// includes functionality such as rejecting invalid blocks, connecting blocks
// to the main chain along with the unspent outputs they create and spend,
// switching to a better competing chain, and persisting everything to the
// database.
type BlockChain struct {
	// The following fields are set when the instance is created and can't
	// be changed afterwards, so there is no need to protect them with a
	// separate mutex.
	chainParams  *chaincfg.Params
	db           database.DB
	sigCache     *txscript.SigCache
	subsidyCache *standalone.SubsidyCache

	// chainLock protects concurrent access to the vast majority of the
	// fields in this struct below this point.
	chainLock sync.RWMutex

	// These fields describe the main chain.  The header chain and the
	// unspent output set are replaced as a whole when a block is connected
	// or the chain is reorganized.
	headers   *HeaderChain
	utxos     *UtxoSet
	totalTxns uint64

	// recentBlocks houses recently accessed blocks of the main chain.
	recentBlocks *lru.Map[chainhash.Hash, *wire.MsgBlock]

	// stateSnapshot is the current best state.  It is protected by its own
	// lock so it can be read without the chain lock.
	stateLock     sync.RWMutex
	stateSnapshot *BestState
}

// Config is a descriptor which specifies the blockchain instance configuration.
type Config struct {
	// DB defines the database which houses the blocks and will be used to
	// store all metadata created by this package such as the headers, the
	// transaction index, and the unspent output set.
	//
	// This field is required.
	DB database.DB

	// ChainParams identifies which chain parameters the chain is associated
	// with.
	//
	// This field is required.
	ChainParams *chaincfg.Params

	// GenesisBlock is the first block of the chain.  It is stored when the
	// database does not contain a chain yet and otherwise must match the
	// stored one.
	//
	// This field is required when the database is empty.
	GenesisBlock *wire.MsgBlock

	// SigCache defines a signature cache to use when validating signatures.
	// This is typically the same cache as the one used by the signature
	// verifier of the transaction author so signatures that were already
	// checked do not need to be checked again.
	//
	// This field can be nil if the caller is not interested in using a
	// signature cache.
	SigCache *txscript.SigCache

	// RecentBlockCacheSize is the number of blocks kept in memory.  Zero
	// selects a default.
	RecentBlockCacheSize uint32
}

// New returns a BlockChain instance using the provided configuration details.
// The chain is loaded from the database when it contains one and is otherwise
// bootstrapped from the configured genesis block.
func New(ctx context.Context, config *Config) (*BlockChain, error) {
	// Enforce required config fields.
	if config.DB == nil {
		return nil, AssertError("blockchain.New database is nil")
	}
	if config.ChainParams == nil {
		return nil, AssertError("blockchain.New chain parameters nil")
	}

	cacheSize := config.RecentBlockCacheSize
	if cacheSize == 0 {
		cacheSize = defaultRecentBlockCacheSize
	}
	b := BlockChain{
		chainParams:  config.ChainParams,
		db:           config.DB,
		sigCache:     config.SigCache,
		subsidyCache: standalone.NewSubsidyCache(config.ChainParams),
		recentBlocks: lru.NewMap[chainhash.Hash, *wire.MsgBlock](cacheSize),
	}

	if err := b.db.Update(dbCreateBuckets); err != nil {
		return nil, err
	}

	var state bestChainState
	var haveState bool
	err := b.db.View(func(dbTx database.Tx) error {
		var err error
		state, haveState, err = dbFetchBestState(dbTx)
		return err
	})
	if err != nil {
		return nil, err
	}

	if !haveState {
		if config.GenesisBlock == nil {
			return nil, ruleError(ErrMissingGenesis, "the database does not "+
				"contain a chain and no genesis block was provided")
		}
		if err := b.createChainState(config.GenesisBlock); err != nil {
			return nil, err
		}
	} else {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := b.loadChainState(state, config.GenesisBlock); err != nil {
			return nil, err
		}
	}

	best := b.BestSnapshot()
	log.Infof("Chain state: height %d, hash %v, total transactions %d, "+
		"unspent outputs %d", best.Height, best.Hash, best.TotalTxns,
		best.UtxoCount)
	return &b, nil
}

// createChainState initializes the database and chain state with the provided
// genesis block.
func (b *BlockChain) createChainState(genesis *wire.MsgBlock) error {
	if err := CheckBlockSanity(genesis, b.chainParams); err != nil {
		return err
	}
	headers, err := NewHeaderChain(b.chainParams, &genesis.Header)
	if err != nil {
		return err
	}
	utxos := NewUtxoSet()
	stxos, err := b.connectBlock(utxos, genesis)
	if err != nil {
		return err
	}

	numTxns := uint64(len(genesis.Transactions))
	state := bestChainState{
		hash:      headers.TipHash(),
		height:    0,
		totalTxns: numTxns,
		workSum:   headers.ChainWork(),
	}
	err = b.db.Update(func(dbTx database.Tx) error {
		if err := dbPutBlock(dbTx, genesis, stxos); err != nil {
			return err
		}
		if err := dbPutUtxoSet(dbTx, utxos); err != nil {
			return err
		}
		return dbPutBestState(dbTx, state)
	})
	if err != nil {
		return err
	}

	log.Infof("Created chain with genesis block %v", state.hash)
	b.setChainState(headers, utxos, numTxns, numTxns)
	b.recentBlocks.Put(state.hash, genesis)
	return nil
}

// loadChainState loads the headers, the unspent output set, and the best
// state from the database and ensures they agree with each other.
func (b *BlockChain) loadChainState(state bestChainState, genesis *wire.MsgBlock) error {
	var loadedHeaders []wire.BlockHeader
	var utxos *UtxoSet
	var tipBlock *wire.MsgBlock
	err := b.db.View(func(dbTx database.Tx) error {
		var err error
		loadedHeaders, err = dbFetchHeaders(dbTx)
		if err != nil {
			return err
		}
		utxos, err = dbFetchUtxoSet(dbTx)
		if err != nil {
			return err
		}
		tipBlock, err = dbFetchBlock(dbTx, &state.hash)
		return err
	})
	if err != nil {
		return err
	}
	if len(loadedHeaders) == 0 || tipBlock == nil {
		return AssertError("chain state references missing blocks")
	}

	// The stored headers were validated when they were connected, so only
	// the ordering of their timestamps matters when they are replayed.
	refTime := loadedHeaders[len(loadedHeaders)-1].Timestamp
	headers, err := NewHeaderChainFromHeaders(b.chainParams, loadedHeaders,
		refTime)
	if err != nil {
		return err
	}
	if genesis != nil {
		storedGenesis, _ := headers.HashByHeight(0)
		if genesisHash := genesis.BlockHash(); storedGenesis != genesisHash {
			str := fmt.Sprintf("stored genesis block %v does not match the "+
				"provided genesis block %v", storedGenesis, genesisHash)
			return ruleError(ErrBadGenesis, str)
		}
	}
	if headers.TipHash() != state.hash || headers.Height() != state.height {
		str := fmt.Sprintf("best chain state %v (height %d) does not match "+
			"the stored headers", state.hash, state.height)
		return AssertError(str)
	}

	log.Debugf("Loaded %d headers and %d unspent outputs",
		len(loadedHeaders), utxos.Len())
	b.setChainState(headers, utxos, uint64(len(tipBlock.Transactions)),
		state.totalTxns)
	return nil
}

// setChainState replaces the main chain state and updates the best state
// snapshot accordingly.
//
// This function MUST be called with the chain lock held (for writes) or before
// the chain is shared.
func (b *BlockChain) setChainState(headers *HeaderChain, utxos *UtxoSet, numTxns, totalTxns uint64) {
	b.headers = headers
	b.utxos = utxos
	b.totalTxns = totalTxns

	state := newBestState(headers, numTxns, totalTxns, utxos)
	b.stateLock.Lock()
	b.stateSnapshot = state
	b.stateLock.Unlock()
}

// BestSnapshot returns information about the current best chain block and
// related state as of the current point in time.  The returned instance must
// be treated as immutable since it is shared by all callers.
//
// This function is safe for concurrent access.
func (b *BlockChain) BestSnapshot() *BestState {
	b.stateLock.RLock()
	snapshot := b.stateSnapshot
	b.stateLock.RUnlock()
	return snapshot
}

// ChainParams returns the network parameters of the chain.
func (b *BlockChain) ChainParams() *chaincfg.Params {
	return b.chainParams
}

// HeaderChain returns the header chain of the current main chain.  The
// returned chain is replaced rather than modified when the chain reorganizes,
// so callers holding it keep a consistent view.
//
// This function is safe for concurrent access.
func (b *BlockChain) HeaderChain() *HeaderChain {
	b.chainLock.RLock()
	headers := b.headers
	b.chainLock.RUnlock()
	return headers
}

// UtxoSnapshot returns a copy of the current unspent output set.
//
// This function is safe for concurrent access.
func (b *BlockChain) UtxoSnapshot() *UtxoSet {
	b.chainLock.RLock()
	utxos := b.utxos.Clone()
	b.chainLock.RUnlock()
	return utxos
}

// FetchUtxoEntry returns a copy of the unspent output for the provided
// outpoint.  It returns nil when the output does not exist or is spent.
//
// This function is safe for concurrent access.
func (b *BlockChain) FetchUtxoEntry(outpoint wire.OutPoint) *UtxoEntry {
	b.chainLock.RLock()
	entry := b.utxos.LookupEntry(outpoint)
	b.chainLock.RUnlock()
	return entry
}

// FetchMerkleProof returns the merkle inclusion proof of the provided
// transaction along with its location in the main chain.  The proof commits
// to the merkle root of the block that contains the transaction.
//
// This function is safe for concurrent access.
func (b *BlockChain) FetchMerkleProof(txHash *chainhash.Hash) (*standalone.MerkleProof, TxLocation, error) {
	var proof *standalone.MerkleProof
	var loc TxLocation
	err := b.db.View(func(dbTx database.Tx) error {
		var ok bool
		var err error
		loc, ok, err = dbFetchTxLocation(dbTx, txHash)
		if err != nil {
			return err
		}
		if !ok {
			str := fmt.Sprintf("transaction %v is not in the main chain",
				txHash)
			return contextError(ErrUnknownTx, str)
		}
		proof, err = dbFetchMerkleProof(dbTx, txHash)
		if err != nil {
			return err
		}
		if proof == nil {
			str := fmt.Sprintf("missing merkle proof for %v", txHash)
			return AssertError(str)
		}
		return nil
	})
	return proof, loc, err
}

// BlockByHash returns the block of the main chain with the provided hash.
//
// This function is safe for concurrent access.
func (b *BlockChain) BlockByHash(hash *chainhash.Hash) (*wire.MsgBlock, error) {
	if block, ok := b.recentBlocks.Get(*hash); ok {
		return block, nil
	}

	var block *wire.MsgBlock
	err := b.db.View(func(dbTx database.Tx) error {
		var err error
		block, err = dbFetchBlock(dbTx, hash)
		return err
	})
	if err != nil {
		return nil, err
	}
	if block == nil {
		return nil, unknownBlockError(hash)
	}
	b.recentBlocks.Put(*hash, block)
	return block, nil
}

// FetchBlockByHeight returns the block at the provided height of the main
// chain.
//
// This function is safe for concurrent access.
func (b *BlockChain) FetchBlockByHeight(height uint64) (*wire.MsgBlock, error) {
	hash, ok := b.HeaderChain().HashByHeight(height)
	if !ok {
		str := fmt.Sprintf("no block at height %d exists", height)
		return nil, contextError(ErrUnknownBlock, str)
	}
	return b.BlockByHash(&hash)
}

// connectBlock connects the provided block to the provided unspent output set
// and performs all of the checks that depend on the outputs the block spends:
// the inputs of every transaction must cover its outputs, the coinbase must
// not pay more than the subsidy plus the fees, and every input script must
// validate.  It returns the outputs the block spent.
//
// The set is modified even when an error is returned after the outputs were
// connected, so callers MUST pass a copy they are willing to discard.
func (b *BlockChain) connectBlock(view *UtxoSet, block *wire.MsgBlock) ([]SpentTxOut, error) {
	stxos, err := view.ConnectBlock(block, b.chainParams.CoinbaseMaturity)
	if err != nil {
		return nil, err
	}

	spent := newSpentView(stxos)
	height := block.Header.Height
	var totalFees int64
	for _, tx := range block.Transactions[1:] {
		fee, err := CheckTransactionInputs(tx, height, spent, b.chainParams)
		if err != nil {
			return nil, err
		}
		lastTotalFees := totalFees
		totalFees += fee
		if totalFees < lastTotalFees {
			return nil, ruleError(ErrBadTxOutValue, "total fees for block "+
				"overflows accumulator")
		}
	}

	subsidy := b.subsidyCache.CalcBlockSubsidy(height)
	if err := checkCoinbaseValue(block, subsidy, totalFees); err != nil {
		return nil, err
	}

	err = ValidateTransactionScripts(block.Transactions, spent, b.sigCache)
	if err != nil {
		return nil, err
	}
	return stxos, nil
}

// ProcessBlock is the main workhorse for handling insertion of new blocks into
// the block chain.  The block must extend the current tip.  It is fully
// validated, its outputs are connected to the unspent output set, and it is
// stored in the database along with its header, the location and merkle proof
// of its transactions, and the updated unspent output set.
//
// The provided time is used as the reference for the timestamp drift checks.
// The chain state is left unchanged when an error is returned.
//
// This function is safe for concurrent access.
func (b *BlockChain) ProcessBlock(block *wire.MsgBlock, now time.Time) error {
	b.chainLock.Lock()
	defer b.chainLock.Unlock()

	blockHash := block.BlockHash()
	log.Tracef("Processing block %v", blockHash)

	// The block must not already exist in the main chain.
	if hash, ok := b.headers.HashByHeight(block.Header.Height); ok && hash == blockHash {
		str := fmt.Sprintf("already have block %v", blockHash)
		return ruleError(ErrDuplicateBlock, str)
	}

	if err := CheckBlockSanity(block, b.chainParams); err != nil {
		return err
	}
	if err := b.headers.CheckHeader(&block.Header, now); err != nil {
		return err
	}

	view := b.utxos.Clone()
	stxos, err := b.connectBlock(view, block)
	if err != nil {
		return err
	}

	numTxns := uint64(len(block.Transactions))
	totalTxns := b.totalTxns + numTxns
	workSum := b.headers.ChainWork()
	work := standalone.CalcWork(&block.Header.Target)
	workSum.Add(&work)
	state := bestChainState{
		hash:      blockHash,
		height:    block.Header.Height,
		totalTxns: totalTxns,
		workSum:   workSum,
	}
	err = b.db.Update(func(dbTx database.Tx) error {
		if err := dbPutBlock(dbTx, block, stxos); err != nil {
			return err
		}
		if err := dbPutUtxoSet(dbTx, view); err != nil {
			return err
		}
		return dbPutBestState(dbTx, state)
	})
	if err != nil {
		return err
	}

	if err := b.headers.AddHeader(&block.Header, now); err != nil {
		// The header was already checked under the chain lock.
		panicf("connected block %v rejected by header chain: %v",
			blockHash, err)
	}
	b.setChainState(b.headers, view, numTxns, totalTxns)
	b.recentBlocks.Put(blockHash, block)

	log.Debugf("Connected block %v (height %d, %d transactions)", blockHash,
		block.Header.Height, numTxns)
	return nil
}

// Reorganize switches the main chain to the competing chain formed by the
// main chain up to and including the block at the provided fork height
// followed by the provided blocks.  The competing chain must be better than
// the current main chain according to BetterChain.
//
// The blocks after the fork point are disconnected from the unspent output set
// using the spent outputs recorded when they were connected and the provided
// blocks are then fully validated and connected.  Everything happens on copies
// and the result is persisted in a single database transaction, so the chain
// state is left unchanged when an error is returned.
//
// This function is safe for concurrent access.
func (b *BlockChain) Reorganize(forkHeight uint64, blocks []*wire.MsgBlock, now time.Time) error {
	b.chainLock.Lock()
	defer b.chainLock.Unlock()

	tipHeight := b.headers.Height()
	if forkHeight > tipHeight {
		str := fmt.Sprintf("fork height %d is beyond the tip height %d",
			forkHeight, tipHeight)
		return ruleError(ErrBadReorg, str)
	}
	if len(blocks) == 0 {
		return ruleError(ErrBadReorg, "no blocks to reorganize to")
	}

	// Build and validate the competing header chain.  The current header
	// chain is never modified.
	curHeaders := b.headers.Headers()
	newHeaders := make([]wire.BlockHeader, 0, int(forkHeight)+1+len(blocks))
	newHeaders = append(newHeaders, curHeaders[:forkHeight+1]...)
	for _, block := range blocks {
		newHeaders = append(newHeaders, block.Header)
	}
	newChain, err := NewHeaderChainFromHeaders(b.chainParams, newHeaders, now)
	if err != nil {
		return err
	}
	if !BetterChain(newChain, b.headers) {
		str := fmt.Sprintf("chain ending at %v (height %d) is not better "+
			"than the current chain ending at %v (height %d)",
			newChain.TipHash(), newChain.Height(), b.headers.TipHash(),
			tipHeight)
		return ruleError(ErrReorgNotBetter, str)
	}

	// Load the blocks to disconnect along with the outputs they spent.
	type detachedBlock struct {
		block *wire.MsgBlock
		stxos []SpentTxOut
	}
	detach := make([]detachedBlock, 0, tipHeight-forkHeight)
	err = b.db.View(func(dbTx database.Tx) error {
		for height := tipHeight; height > forkHeight; height-- {
			hash, _ := b.headers.HashByHeight(height)
			block, err := dbFetchBlock(dbTx, &hash)
			if err != nil {
				return err
			}
			if block == nil {
				return unknownBlockError(&hash)
			}
			stxos, err := dbFetchSpendJournalEntry(dbTx, &hash)
			if err != nil {
				return err
			}
			detach = append(detach, detachedBlock{block, stxos})
		}
		return nil
	})
	if err != nil {
		return err
	}

	view := b.utxos.Clone()
	totalTxns := b.totalTxns
	for _, d := range detach {
		if err := view.DisconnectBlock(d.block, d.stxos); err != nil {
			return err
		}
		totalTxns -= uint64(len(d.block.Transactions))
	}

	attach := make([][]SpentTxOut, 0, len(blocks))
	for _, block := range blocks {
		if err := CheckBlockSanity(block, b.chainParams); err != nil {
			return err
		}
		stxos, err := b.connectBlock(view, block)
		if err != nil {
			return err
		}
		attach = append(attach, stxos)
		totalTxns += uint64(len(block.Transactions))
	}

	newTip := blocks[len(blocks)-1]
	state := bestChainState{
		hash:      newChain.TipHash(),
		height:    newChain.Height(),
		totalTxns: totalTxns,
		workSum:   newChain.ChainWork(),
	}
	err = b.db.Update(func(dbTx database.Tx) error {
		for _, d := range detach {
			if err := dbRemoveBlock(dbTx, d.block); err != nil {
				return err
			}
		}
		for i, block := range blocks {
			if err := dbPutBlock(dbTx, block, attach[i]); err != nil {
				return err
			}
		}
		if err := dbPutUtxoSet(dbTx, view); err != nil {
			return err
		}
		return dbPutBestState(dbTx, state)
	})
	if err != nil {
		return err
	}

	for _, d := range detach {
		b.recentBlocks.Delete(d.block.BlockHash())
	}
	b.setChainState(newChain, view, uint64(len(newTip.Transactions)),
		totalTxns)

	log.Infof("Reorganized chain from height %d to %v (height %d), "+
		"disconnected %d and connected %d blocks", tipHeight, state.hash,
		state.height, len(detach), len(blocks))
	return nil
}
