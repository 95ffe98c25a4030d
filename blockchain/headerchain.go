// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"fmt"
	"sync"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/decred/dcrd/math/uint256"
	"github.com/ledgerd/ledgerd/blockchain/standalone"
	"github.com/ledgerd/ledgerd/chaincfg"
	"github.com/ledgerd/ledgerd/wire"
)

// HeaderChain is an append-only sequence of block headers that starts with a
// genesis header and only grows by headers that satisfy the consensus rules
// given the headers before them.
//
// A chain is never rewound.  Switching to a competing chain is done by building
// a new HeaderChain from the competing headers with NewHeaderChainFromHeaders
// and comparing the two with BetterChain.
//
// It is safe for concurrent access.
type HeaderChain struct {
	params       *chaincfg.Params
	subsidyCache *standalone.SubsidyCache

	mtx       sync.RWMutex
	headers   []wire.BlockHeader
	hashes    []chainhash.Hash
	chainWork uint256.Uint256
}

// checkGenesisHeader ensures the provided header is a valid genesis header for
// the network defined by the provided parameters.
func checkGenesisHeader(params *chaincfg.Params, genesis *wire.BlockHeader) error {
	if genesis.Height != 0 {
		str := fmt.Sprintf("genesis header has height %d", genesis.Height)
		return ruleError(ErrBadGenesis, str)
	}
	if genesis.PrevBlock != *zeroHash {
		str := fmt.Sprintf("genesis header references previous block %v",
			genesis.PrevBlock)
		return ruleError(ErrBadGenesis, str)
	}
	if err := checkHeaderTime(genesis); err != nil {
		return err
	}
	if genesis.Target != params.PowLimitTarget() {
		str := fmt.Sprintf("genesis header target %x is not the proof of "+
			"work limit", genesis.Target)
		return ruleError(ErrBadGenesis, str)
	}
	return checkProofOfWork(genesis, params)
}

// checkHeaderTime ensures the header timestamp is within the range the header
// encoding is able to represent.
func checkHeaderTime(header *wire.BlockHeader) error {
	if err := wire.CheckTimestamp(header.Timestamp); err != nil {
		str := fmt.Sprintf("block timestamp of %v is invalid: %v",
			header.Timestamp, err)
		return ruleError(ErrInvalidTime, str)
	}
	return nil
}

// NewHeaderChain returns a header chain for the network defined by the provided
// parameters that consists of only the provided genesis header.
//
// The genesis header must have a height of zero, a zero previous block hash,
// the proof of work limit of the network as its target, and valid proof of
// work.
func NewHeaderChain(params *chaincfg.Params, genesis *wire.BlockHeader) (*HeaderChain, error) {
	if err := checkGenesisHeader(params, genesis); err != nil {
		return nil, err
	}

	c := &HeaderChain{
		params:       params,
		subsidyCache: standalone.NewSubsidyCache(params),
	}
	c.appendHeader(genesis)
	return c, nil
}

// NewHeaderChainFromHeaders builds a header chain from the provided headers,
// the first of which must be the genesis header, validating every header
// against the ones before it.
//
// Timestamps of historical headers are only checked against the time of the
// header before them and the future limit derived from the provided current
// time, since their distance from the current time is expected to grow as the
// chain ages.
func NewHeaderChainFromHeaders(params *chaincfg.Params, headers []wire.BlockHeader, now time.Time) (*HeaderChain, error) {
	if len(headers) == 0 {
		return nil, ruleError(ErrBadGenesis, "no genesis header")
	}
	c, err := NewHeaderChain(params, &headers[0])
	if err != nil {
		return nil, err
	}
	for i := 1; i < len(headers); i++ {
		header := &headers[i]
		if err := c.checkHeader(header, now, false); err != nil {
			return nil, err
		}
		c.appendHeader(header)
	}
	return c, nil
}

// appendHeader adds the header to the end of the chain and updates the
// cumulative work.
//
// This function MUST be called with the chain lock held (for writes) or before
// the chain is shared.
func (c *HeaderChain) appendHeader(header *wire.BlockHeader) {
	c.headers = append(c.headers, *header)
	c.hashes = append(c.hashes, header.BlockHash())
	work := standalone.CalcWork(&header.Target)
	c.chainWork.Add(&work)
}

// Params returns the network parameters the chain validates headers with.
func (c *HeaderChain) Params() *chaincfg.Params {
	return c.params
}

// Tip returns a copy of the most recent header in the chain.
func (c *HeaderChain) Tip() wire.BlockHeader {
	c.mtx.RLock()
	tip := c.headers[len(c.headers)-1]
	c.mtx.RUnlock()
	return tip
}

// TipHash returns the hash of the most recent header in the chain.
func (c *HeaderChain) TipHash() chainhash.Hash {
	c.mtx.RLock()
	hash := c.hashes[len(c.hashes)-1]
	c.mtx.RUnlock()
	return hash
}

// Height returns the height of the most recent header in the chain.
func (c *HeaderChain) Height() uint64 {
	c.mtx.RLock()
	height := uint64(len(c.headers) - 1)
	c.mtx.RUnlock()
	return height
}

// HeaderByHeight returns a copy of the header at the provided height and
// whether or not the chain contains it.
func (c *HeaderChain) HeaderByHeight(height uint64) (wire.BlockHeader, bool) {
	c.mtx.RLock()
	defer c.mtx.RUnlock()

	if height >= uint64(len(c.headers)) {
		return wire.BlockHeader{}, false
	}
	return c.headers[height], true
}

// HashByHeight returns the hash of the header at the provided height and
// whether or not the chain contains it.
func (c *HeaderChain) HashByHeight(height uint64) (chainhash.Hash, bool) {
	c.mtx.RLock()
	defer c.mtx.RUnlock()

	if height >= uint64(len(c.hashes)) {
		return chainhash.Hash{}, false
	}
	return c.hashes[height], true
}

// Headers returns a copy of all of the headers in the chain starting with the
// genesis header.
func (c *HeaderChain) Headers() []wire.BlockHeader {
	c.mtx.RLock()
	headers := make([]wire.BlockHeader, len(c.headers))
	copy(headers, c.headers)
	c.mtx.RUnlock()
	return headers
}

// ChainWork returns the total work of all of the headers in the chain.
func (c *HeaderChain) ChainWork() uint256.Uint256 {
	c.mtx.RLock()
	work := c.chainWork
	c.mtx.RUnlock()
	return work
}

// nextTarget returns the target the header after the current tip must carry.
//
// This function MUST be called with the chain lock held (for reads).
func (c *HeaderChain) nextTarget() [32]byte {
	tip := &c.headers[len(c.headers)-1]
	nextHeight := tip.Height + 1

	// Return the previous target when this block doesn't start a new
	// retarget interval.
	interval := uint64(c.params.BlocksPerTargetAdj)
	if interval == 0 || nextHeight%interval != 0 {
		return tip.Target
	}

	// Measure how long the last interval took, starting from the block
	// before the window.  The first window has no such block, so it is
	// measured from genesis against a span shortened by one block.  The
	// timestamps are never decreasing along the chain.
	firstHeight := uint64(0)
	if nextHeight > interval {
		firstHeight = nextHeight - interval - 1
	}
	first := &c.headers[firstHeight]
	gaps := int64(tip.Height - firstHeight)
	actualTimespan := tip.Timestamp.Unix() - first.Timestamp.Unix()
	targetTimespan := int64(c.params.TargetTimespan/time.Second) * gaps /
		int64(interval)
	nextTarget := standalone.CalcNextTarget(&tip.Target, actualTimespan,
		targetTimespan, c.params.RetargetAdjustmentFactor, c.params.PowLimit)

	log.Debugf("Difficulty retarget at block height %d", nextHeight)
	log.Debugf("Old target %x", tip.Target)
	log.Debugf("New target %x", nextTarget)
	log.Debugf("Actual timespan %v, target timespan %v",
		time.Duration(actualTimespan)*time.Second, c.params.TargetTimespan)
	return nextTarget
}

// NextTarget returns the target the header after the current tip must carry.
// Every BlocksPerTargetAdj blocks the target is recalculated from the time the
// last interval took compared to the expected time.  Otherwise it is the target
// of the tip.
func (c *HeaderChain) NextTarget() [32]byte {
	c.mtx.RLock()
	target := c.nextTarget()
	c.mtx.RUnlock()
	return target
}

// checkHeader ensures the provided header may extend the chain given the
// provided reference time.  The lower drift bound is only enforced when
// checkPastDrift is set.
//
// This function MUST be called with the chain lock held (for reads).
func (c *HeaderChain) checkHeader(header *wire.BlockHeader, refTime time.Time, checkPastDrift bool) error {
	tip := &c.headers[len(c.headers)-1]
	tipHash := &c.hashes[len(c.hashes)-1]

	// The height must be one more than the tip.
	if header.Height != tip.Height+1 {
		str := fmt.Sprintf("block header height of %d is not one more than "+
			"the tip height of %d", header.Height, tip.Height)
		return ruleError(ErrBadBlockHeight, str)
	}

	// The header must extend the tip.
	if header.PrevBlock != *tipHash {
		str := fmt.Sprintf("block header references previous block %v "+
			"instead of the tip %v", header.PrevBlock, tipHash)
		return ruleError(ErrBadPrevBlock, str)
	}

	// The timestamp must be encodable, must not precede the tip and must be
	// within the allowed drift of the reference time.
	if err := checkHeaderTime(header); err != nil {
		return err
	}
	if header.Timestamp.Before(tip.Timestamp) {
		str := fmt.Sprintf("block timestamp of %v is before the tip "+
			"timestamp of %v", header.Timestamp, tip.Timestamp)
		return ruleError(ErrTimeTooOld, str)
	}
	maxTime := refTime.Add(c.params.MaxTimeDrift)
	if header.Timestamp.After(maxTime) {
		str := fmt.Sprintf("block timestamp of %v is too far in the "+
			"future (max %v)", header.Timestamp, maxTime)
		return ruleError(ErrTimeTooNew, str)
	}
	minTime := refTime.Add(-c.params.MaxTimeDrift)
	if checkPastDrift && header.Timestamp.Before(minTime) {
		str := fmt.Sprintf("block timestamp of %v is too far in the past "+
			"(min %v)", header.Timestamp, minTime)
		return ruleError(ErrTimeTooOld, str)
	}

	// The target must be the one required by the retarget rules.
	if wantTarget := c.nextTarget(); header.Target != wantTarget {
		str := fmt.Sprintf("block target of %x is not the expected value "+
			"of %x", header.Target, wantTarget)
		return ruleError(ErrUnexpectedDifficulty, str)
	}

	return checkProofOfWork(header, c.params)
}

// CheckHeader ensures the provided header may extend the chain given the
// provided reference time.  The header must:
//
//   - have a height one more than the tip
//   - reference the tip as its previous block
//   - have an encodable timestamp no earlier than the tip and within the
//     allowed drift of the reference time in both directions
//   - carry the target required by the retarget rules
//   - have valid proof of work for every slot the network uses
//
// A RuleError describing the first violated rule is returned otherwise.
func (c *HeaderChain) CheckHeader(header *wire.BlockHeader, refTime time.Time) error {
	c.mtx.RLock()
	err := c.checkHeader(header, refTime, true)
	c.mtx.RUnlock()
	return err
}

// NewHeaderIsValidAt returns whether or not the provided header may extend the
// chain given the provided reference time.  See CheckHeader for the rules.
func (c *HeaderChain) NewHeaderIsValidAt(header *wire.BlockHeader, refTime time.Time) bool {
	return c.CheckHeader(header, refTime) == nil
}

// AddHeader validates the provided header with CheckHeader and appends it to
// the chain when it is valid.
func (c *HeaderChain) AddHeader(header *wire.BlockHeader, refTime time.Time) error {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if err := c.checkHeader(header, refTime, true); err != nil {
		return err
	}
	c.appendHeader(header)
	log.Tracef("Added header %v at height %d", c.hashes[len(c.hashes)-1],
		header.Height)
	return nil
}

// CoinbaseAmount returns the subsidy a coinbase at the provided height may
// create.  It only depends on the height.
func (c *HeaderChain) CoinbaseAmount(height uint64) int64 {
	return c.subsidyCache.CalcBlockSubsidy(height)
}

// NextCoinbaseTx returns the coinbase transaction for the block after the
// current tip.  It pays the full subsidy to the provided script and commits to
// the height and the provided extra nonce.
func (c *HeaderChain) NextCoinbaseTx(payScript []byte, extraNonce uint64) (*wire.MsgTx, error) {
	height := c.Height() + 1
	return NewCoinbaseTx(height, c.CoinbaseAmount(height), payScript,
		extraNonce)
}

// NextHeader returns the header for the block after the current tip with the
// provided merkle root and timestamp.  It references the tip, carries the next
// height and target, and tags the proof of work slots with the algorithms of
// the network.  The nonce and the proof of work digests are left for the
// miner.
func (c *HeaderChain) NextHeader(merkleRoot *chainhash.Hash, timestamp time.Time) wire.BlockHeader {
	c.mtx.RLock()
	defer c.mtx.RUnlock()

	tip := &c.headers[len(c.headers)-1]
	header := wire.BlockHeader{
		Version:    tip.Version,
		PrevBlock:  c.hashes[len(c.hashes)-1],
		MerkleRoot: *merkleRoot,
		Timestamp:  time.Unix(timestamp.Unix(), 0),
		Height:     tip.Height + 1,
		Target:     c.nextTarget(),
	}
	for i, algo := range c.params.PowAlgos {
		header.PowSlots[i].Algo = algo
	}
	return header
}

// BetterChain returns whether chain a is better than chain b.  The chain with
// more cumulative work is better and the longer chain is better when both have
// the same work.  Neither chain is better when they tie on both.
func BetterChain(a, b *HeaderChain) bool {
	workA, workB := a.ChainWork(), b.ChainWork()
	if !workA.Eq(&workB) {
		return workA.Gt(&workB)
	}
	return a.Height() > b.Height()
}
