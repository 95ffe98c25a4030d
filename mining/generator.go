// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2015-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mining

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/ledgerd/ledgerd/blockchain"
	"github.com/ledgerd/ledgerd/chaincfg"
	"github.com/ledgerd/ledgerd/wire"
)

// Chain is the chain the CPU miner builds on and submits solved blocks to.
type Chain interface {
	ChainSource

	// ProcessBlock validates the provided block and extends the best chain
	// with it.
	ProcessBlock(block *wire.MsgBlock, now time.Time) error
}

// Enforce BlockChain implements the Chain interface.
var _ Chain = (*blockchain.BlockChain)(nil)

// CPUMinerConfig is a descriptor containing the cpu miner configuration.
type CPUMinerConfig struct {
	// ChainParams identifies which chain parameters the cpu miner is
	// associated with.
	ChainParams *chaincfg.Params

	// Chain is the chain blocks are generated for.
	Chain Chain

	// PayScripts are the scripts generated blocks pay to.  Each block pays
	// to the next script in turn.
	PayScripts [][]byte

	// TxSource optionally returns the transactions to include in the next
	// block.
	TxSource func() []*wire.MsgTx

	// BlockMaxSize is the maximum serialized size of generated blocks.
	// Transactions from the end of the source are left out until the block
	// fits.  Zero uses the maximum size allowed by the network.
	BlockMaxSize int

	// Now returns the current time.  It defaults to time.Now.
	Now func() time.Time

	// BlockConnected is optionally invoked with every generated block once
	// the chain accepted it.
	BlockConnected func(block *wire.MsgBlock)
}

// CPUMiner provides facilities for solving blocks (mining) using the CPU in a
// concurrency-safe manner.  Each block is generated from a new template built
// on the current tip, solved with SolveBlock and submitted to the chain.
type CPUMiner struct {
	sync.Mutex
	cfg        *CPUMinerConfig
	extraNonce uint64
	payIndex   int
	started    bool
}

// NewCPUMiner returns a new instance of a CPU miner for the provided
// configuration.
func NewCPUMiner(cfg *CPUMinerConfig) *CPUMiner {
	return &CPUMiner{cfg: cfg}
}

// now returns the current time according to the configuration.
func (m *CPUMiner) now() time.Time {
	if m.cfg.Now != nil {
		return m.cfg.Now()
	}
	return time.Now()
}

// nextTemplateParams returns the pay script and extra nonce for the next
// block template.
func (m *CPUMiner) nextTemplateParams() ([]byte, uint64) {
	m.Lock()
	defer m.Unlock()

	payScript := m.cfg.PayScripts[m.payIndex%len(m.cfg.PayScripts)]
	m.payIndex++
	m.extraNonce++
	return payScript, m.extraNonce
}

// newTemplate creates a block template on the current tip with as many of the
// provided transactions, in order, as fit in the configured maximum block
// size.
func (m *CPUMiner) newTemplate(payScript []byte, extraNonce uint64, txs []*wire.MsgTx) (*BlockBuilder, error) {
	for {
		template, err := NewBlockTemplate(m.cfg.Chain, payScript,
			extraNonce, txs, m.now())
		if err != nil {
			return nil, err
		}
		if m.cfg.BlockMaxSize <= 0 {
			return template, nil
		}
		size := template.Block().SerializeSize()
		if size <= m.cfg.BlockMaxSize {
			return template, nil
		}
		if len(txs) == 0 {
			str := fmt.Sprintf("block template of %d bytes exceeds the "+
				"configured maximum block size of %d bytes", size,
				m.cfg.BlockMaxSize)
			return nil, makeError(ErrBlockTooLarge, str)
		}
		log.Debugf("Leaving transaction %v out of a %d byte template",
			txs[len(txs)-1].TxHash(), size)
		txs = txs[:len(txs)-1]
	}
}

// generateBlock creates a block template on the current tip, solves it and
// submits it to the chain.
func (m *CPUMiner) generateBlock(ctx context.Context) (chainhash.Hash, error) {
	payScript, extraNonce := m.nextTemplateParams()
	var txs []*wire.MsgTx
	if m.cfg.TxSource != nil {
		txs = m.cfg.TxSource()
	}

	template, err := m.newTemplate(payScript, extraNonce, txs)
	if err != nil {
		return chainhash.Hash{}, err
	}
	solved, err := template.Solve(ctx, m.cfg.ChainParams)
	if err != nil {
		return chainhash.Hash{}, err
	}

	block := solved.Block()
	blockHash := block.BlockHash()
	if err := m.cfg.Chain.ProcessBlock(block, m.now()); err != nil {
		// Anything other than a rule violation is an unexpected error, so
		// log that error as an internal error.
		var rErr blockchain.RuleError
		if !errors.As(err, &rErr) {
			log.Errorf("Unexpected error while processing block "+
				"submitted via CPU miner: %v", err)
		} else {
			log.Errorf("Block submitted via CPU miner rejected: %v", err)
		}
		return chainhash.Hash{}, err
	}

	log.Debugf("Block submitted via CPU miner accepted (hash %s, height %d)",
		blockHash, block.Header.Height)
	if m.cfg.BlockConnected != nil {
		m.cfg.BlockConnected(block)
	}
	return blockHash, nil
}

// begin marks the miner as started and returns an error when it already is.
func (m *CPUMiner) begin() error {
	m.Lock()
	defer m.Unlock()

	if !m.cfg.ChainParams.GenerateSupported {
		str := fmt.Sprintf("block generation is not supported on %s",
			m.cfg.ChainParams.Name)
		return makeError(ErrGenerateUnsupported, str)
	}
	if len(m.cfg.PayScripts) == 0 {
		return makeError(ErrNoPayScripts, "no mining pay scripts "+
			"are configured")
	}
	if m.started {
		return makeError(ErrMinerRunning, "the CPU miner is "+
			"already running")
	}
	m.started = true
	return nil
}

// end marks the miner as stopped.
func (m *CPUMiner) end() {
	m.Lock()
	m.started = false
	m.Unlock()
}

// GenerateNBlocks generates the requested number of blocks on top of the
// current tip and returns their hashes.  It stops with the error of the
// context when the context is done.
func (m *CPUMiner) GenerateNBlocks(ctx context.Context, n uint32) ([]chainhash.Hash, error) {
	if err := m.begin(); err != nil {
		return nil, err
	}
	defer m.end()

	log.Tracef("Generating %d blocks", n)
	blockHashes := make([]chainhash.Hash, 0, n)
	for uint32(len(blockHashes)) < n {
		blockHash, err := m.generateBlock(ctx)
		if err != nil {
			return blockHashes, err
		}
		blockHashes = append(blockHashes, blockHash)
	}
	log.Tracef("Generated %d blocks", n)
	return blockHashes, nil
}

// Run generates blocks until the context is done.
func (m *CPUMiner) Run(ctx context.Context) error {
	if err := m.begin(); err != nil {
		return err
	}
	defer m.end()

	log.Infof("CPU miner started")
	defer log.Infof("CPU miner stopped")
	for {
		_, err := m.generateBlock(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
