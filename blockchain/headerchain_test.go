// Copyright (c) 2015-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"errors"
	"testing"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/ledgerd/ledgerd/blockchain/standalone"
	"github.com/ledgerd/ledgerd/chaincfg"
	"github.com/ledgerd/ledgerd/wire"
)

// newTestHeaderChain returns a header chain for the provided network that
// starts with a solved genesis header.
func newTestHeaderChain(t *testing.T, params *chaincfg.Params) *HeaderChain {
	t.Helper()

	genesis := newTestGenesisBlock(t, params)
	chain, err := NewHeaderChain(params, &genesis.Header)
	if err != nil {
		t.Fatalf("unable to create header chain: %v", err)
	}
	return chain
}

// nextTestHeader returns a solved header that extends the provided chain with
// a timestamp offset from the tip by the provided duration.
func nextTestHeader(t *testing.T, chain *HeaderChain, offset time.Duration) wire.BlockHeader {
	t.Helper()

	tip := chain.Tip()
	header := chain.NextHeader(&chainhash.Hash{0x01}, tip.Timestamp.Add(offset))
	solveHeader(t, &header, chain.Params())
	return header
}

// TestNewHeaderChain ensures genesis headers are validated.
func TestNewHeaderChain(t *testing.T) {
	t.Parallel()

	params := chaincfg.RegNetParams()
	genesis := newTestGenesisBlock(t, params).Header

	tests := []struct {
		name   string
		modify func(h *wire.BlockHeader)
		err    error
	}{{
		name:   "valid genesis",
		modify: func(h *wire.BlockHeader) {},
		err:    nil,
	}, {
		name:   "nonzero height",
		modify: func(h *wire.BlockHeader) { h.Height = 1 },
		err:    ErrBadGenesis,
	}, {
		name:   "nonzero previous block",
		modify: func(h *wire.BlockHeader) { h.PrevBlock[0] = 0x01 },
		err:    ErrBadGenesis,
	}, {
		name:   "target below pow limit",
		modify: func(h *wire.BlockHeader) { h.Target[0] = 0x00 },
		err:    ErrBadGenesis,
	}, {
		name:   "zero timestamp",
		modify: func(h *wire.BlockHeader) { h.Timestamp = time.Time{} },
		err:    ErrInvalidTime,
	}, {
		name:   "timestamp before unix epoch",
		modify: func(h *wire.BlockHeader) { h.Timestamp = time.Unix(-1, 0) },
		err:    ErrInvalidTime,
	}, {
		name:   "tampered work digest",
		modify: func(h *wire.BlockHeader) { h.PowSlots[0].Hash[31] ^= 0x01 },
		err:    ErrBadPowHash,
	}, {
		name: "wrong algorithm",
		modify: func(h *wire.BlockHeader) {
			h.PowSlots[0].Algo = wire.PowAlgoSHA256d
		},
		err: ErrBadPowAlgo,
	}}

	for _, test := range tests {
		header := genesis
		test.modify(&header)
		chain, err := NewHeaderChain(params, &header)
		if !errors.Is(err, test.err) {
			t.Errorf("%q: mismatched error -- got %v, want %v", test.name,
				err, test.err)
			continue
		}
		if err != nil {
			continue
		}
		if chain.Height() != 0 || chain.TipHash() != header.BlockHash() {
			t.Errorf("%q: unexpected tip %v at height %d", test.name,
				chain.TipHash(), chain.Height())
		}
		wantWork := standalone.CalcWork(&header.Target)
		if gotWork := chain.ChainWork(); !gotWork.Eq(&wantWork) {
			t.Errorf("%q: unexpected chain work", test.name)
		}
	}
}

// TestCheckHeader ensures headers that violate the rules for extending the
// chain are rejected with the expected error kinds.
func TestCheckHeader(t *testing.T) {
	t.Parallel()

	params := chaincfg.RegNetParams()
	chain := newTestHeaderChain(t, params)
	tip := chain.Tip()
	valid := nextTestHeader(t, chain, time.Second)
	now := valid.Timestamp

	tests := []struct {
		name    string
		modify  func(h *wire.BlockHeader)
		refTime time.Time
		err     error
	}{{
		name:    "valid header",
		modify:  func(h *wire.BlockHeader) {},
		refTime: now,
		err:     nil,
	}, {
		name:    "wrong height",
		modify:  func(h *wire.BlockHeader) { h.Height = 2 },
		refTime: now,
		err:     ErrBadBlockHeight,
	}, {
		name:    "wrong previous block",
		modify:  func(h *wire.BlockHeader) { h.PrevBlock[0] ^= 0x01 },
		refTime: now,
		err:     ErrBadPrevBlock,
	}, {
		name: "timestamp before tip",
		modify: func(h *wire.BlockHeader) {
			h.Timestamp = tip.Timestamp.Add(-time.Second)
		},
		refTime: now,
		err:     ErrTimeTooOld,
	}, {
		name:    "timestamp too far in the future",
		modify:  func(h *wire.BlockHeader) {},
		refTime: now.Add(-params.MaxTimeDrift - time.Second),
		err:     ErrTimeTooNew,
	}, {
		name:    "timestamp too far in the past",
		modify:  func(h *wire.BlockHeader) {},
		refTime: now.Add(params.MaxTimeDrift + time.Second),
		err:     ErrTimeTooOld,
	}, {
		name:    "zero timestamp",
		modify:  func(h *wire.BlockHeader) { h.Timestamp = time.Time{} },
		refTime: now,
		err:     ErrInvalidTime,
	}, {
		name:    "unexpected target",
		modify:  func(h *wire.BlockHeader) { h.Target[0] = 0x3f },
		refTime: now,
		err:     ErrUnexpectedDifficulty,
	}, {
		name:    "tampered nonce",
		modify:  func(h *wire.BlockHeader) { h.Nonce[0] ^= 0x01 },
		refTime: now,
		err:     ErrBadPowHash,
	}}

	for _, test := range tests {
		header := valid
		test.modify(&header)
		err := chain.CheckHeader(&header, test.refTime)
		if !errors.Is(err, test.err) {
			t.Errorf("%q: mismatched error -- got %v, want %v", test.name,
				err, test.err)
			continue
		}
		if got := chain.NewHeaderIsValidAt(&header, test.refTime); got != (err == nil) {
			t.Errorf("%q: NewHeaderIsValidAt returned %v", test.name, got)
		}
	}

	// Checking headers must not modify the chain.
	if chain.Height() != 0 {
		t.Fatalf("unexpected height %d", chain.Height())
	}
}

// TestUnusedPowSlot ensures a network that leaves the second slot unused
// rejects headers that fill it.
func TestUnusedPowSlot(t *testing.T) {
	t.Parallel()

	params := chaincfg.SimNetParams()
	chain := newTestHeaderChain(t, params)
	header := nextTestHeader(t, chain, time.Second)
	if err := chain.CheckHeader(&header, header.Timestamp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	header.PowSlots[1].Hash[0] = 0x01
	err := chain.CheckHeader(&header, header.Timestamp)
	if !errors.Is(err, ErrBadPowHash) {
		t.Fatalf("mismatched error -- got %v, want %v", err, ErrBadPowHash)
	}
}

// TestAddHeaderAndRetarget ensures headers are appended in order and the
// target is recalculated at every retarget interval according to how long the
// previous interval took.
func TestAddHeaderAndRetarget(t *testing.T) {
	t.Parallel()

	params := chaincfg.RegNetParams()
	chain := newTestHeaderChain(t, params)
	interval := uint64(params.BlocksPerTargetAdj)

	// Blocks twice as fast as expected make the next target harder.
	for chain.Height()+1 < interval {
		header := nextTestHeader(t, chain, params.TargetTimePerBlock/2)
		if err := chain.AddHeader(&header, header.Timestamp); err != nil {
			t.Fatalf("height %d: unexpected error: %v", header.Height, err)
		}
		if header.Target != params.PowLimitTarget() {
			t.Fatalf("height %d: unexpected retarget", header.Height)
		}
	}

	nextTarget := chain.NextTarget()
	tip := chain.Tip()
	curTarget := standalone.TargetToUint256(&tip.Target)
	next := standalone.TargetToUint256(&nextTarget)
	if !curTarget.Gt(&next) {
		t.Fatalf("target did not get harder: %x", nextTarget)
	}

	header := nextTestHeader(t, chain, params.TargetTimePerBlock/2)
	if header.Target != nextTarget {
		t.Fatalf("next header does not carry the next target")
	}
	if err := chain.AddHeader(&header, header.Timestamp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chain.Height() != interval {
		t.Fatalf("unexpected height %d", chain.Height())
	}
	got, ok := chain.HeaderByHeight(interval)
	if !ok || got.BlockHash() != header.BlockHash() {
		t.Fatalf("unexpected header at height %d", interval)
	}
	if _, ok := chain.HeaderByHeight(interval + 1); ok {
		t.Fatalf("header beyond the tip reported")
	}
	if len(chain.Headers()) != int(interval)+1 {
		t.Fatalf("unexpected number of headers %d", len(chain.Headers()))
	}

	// A header that fails validation must not be appended.
	bad := nextTestHeader(t, chain, time.Second)
	bad.Height++
	if err := chain.AddHeader(&bad, bad.Timestamp); !errors.Is(err, ErrBadBlockHeight) {
		t.Fatalf("mismatched error -- got %v, want %v", err,
			ErrBadBlockHeight)
	}
	if chain.Height() != interval {
		t.Fatalf("invalid header changed the chain")
	}
}

// TestRetargetOnSchedule ensures intervals that take exactly the target
// timespan leave the target unchanged, both for the first interval after
// genesis and for later intervals.
func TestRetargetOnSchedule(t *testing.T) {
	t.Parallel()

	params := chaincfg.RegNetParams()
	chain := newTestHeaderChain(t, params)
	interval := uint64(params.BlocksPerTargetAdj)

	for chain.Height() < 3*interval {
		if (chain.Height()+1)%interval == 0 {
			tip := chain.Tip()
			if got := chain.NextTarget(); got != tip.Target {
				t.Fatalf("height %d: on schedule target changed from %x "+
					"to %x", chain.Height()+1, tip.Target, got)
			}
		}
		header := nextTestHeader(t, chain, params.TargetTimePerBlock)
		if err := chain.AddHeader(&header, header.Timestamp); err != nil {
			t.Fatalf("height %d: unexpected error: %v", header.Height, err)
		}
		if header.Target != params.PowLimitTarget() {
			t.Fatalf("height %d: unexpected target %x", header.Height,
				header.Target)
		}
	}

	// An interval that runs ahead of schedule after on schedule ones makes
	// the target harder.
	for (chain.Height()+1)%interval != 0 {
		header := nextTestHeader(t, chain, params.TargetTimePerBlock/2)
		if err := chain.AddHeader(&header, header.Timestamp); err != nil {
			t.Fatalf("height %d: unexpected error: %v", header.Height, err)
		}
	}
	tip := chain.Tip()
	nextTarget := chain.NextTarget()
	curTarget := standalone.TargetToUint256(&tip.Target)
	next := standalone.TargetToUint256(&nextTarget)
	if !curTarget.Gt(&next) {
		t.Fatalf("target did not get harder: %x", nextTarget)
	}
}

// TestNewHeaderChainFromHeaders ensures a chain rebuilt from its headers
// matches the original and that historic headers are accepted regardless of
// how far in the past they are.
func TestNewHeaderChainFromHeaders(t *testing.T) {
	t.Parallel()

	params := chaincfg.RegNetParams()
	chain := newTestHeaderChain(t, params)
	for i := 0; i < 3; i++ {
		header := nextTestHeader(t, chain, time.Second)
		if err := chain.AddHeader(&header, header.Timestamp); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	now := time.Now()
	rebuilt, err := NewHeaderChainFromHeaders(params, chain.Headers(), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rebuilt.TipHash() != chain.TipHash() {
		t.Fatalf("mismatched tip %v, want %v", rebuilt.TipHash(),
			chain.TipHash())
	}
	gotWork, wantWork := rebuilt.ChainWork(), chain.ChainWork()
	if !gotWork.Eq(&wantWork) {
		t.Fatal("mismatched chain work")
	}
	if BetterChain(rebuilt, chain) || BetterChain(chain, rebuilt) {
		t.Fatal("identical chains must not be better than each other")
	}

	// Headers from the future relative to the reference time are rejected.
	past := params.GenesisTimestamp.Add(-params.MaxTimeDrift)
	_, err = NewHeaderChainFromHeaders(params, chain.Headers(), past)
	if !errors.Is(err, ErrTimeTooNew) {
		t.Fatalf("mismatched error -- got %v, want %v", err, ErrTimeTooNew)
	}

	// Headers out of order are rejected.
	headers := chain.Headers()
	headers[1], headers[2] = headers[2], headers[1]
	_, err = NewHeaderChainFromHeaders(params, headers, now)
	if !errors.Is(err, ErrBadBlockHeight) {
		t.Fatalf("mismatched error -- got %v, want %v", err,
			ErrBadBlockHeight)
	}

	if _, err := NewHeaderChainFromHeaders(params, nil, now); !errors.Is(err, ErrBadGenesis) {
		t.Fatalf("mismatched error -- got %v, want %v", err, ErrBadGenesis)
	}
}

// TestBetterChain ensures chains are compared by work and then by length.
func TestBetterChain(t *testing.T) {
	t.Parallel()

	params := chaincfg.RegNetParams()
	genesis := newTestGenesisBlock(t, params)
	short, err := NewHeaderChain(params, &genesis.Header)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	long, err := NewHeaderChain(params, &genesis.Header)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	header := nextTestHeader(t, long, time.Second)
	if err := long.AddHeader(&header, header.Timestamp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !BetterChain(long, short) {
		t.Fatal("longer chain with more work is not better")
	}
	if BetterChain(short, long) {
		t.Fatal("shorter chain with less work is better")
	}
}

// TestCoinbaseHelpers ensures the next coinbase pays the subsidy for the next
// height and commits to it.
func TestCoinbaseHelpers(t *testing.T) {
	t.Parallel()

	params := chaincfg.RegNetParams()
	chain := newTestHeaderChain(t, params)
	if got := chain.CoinbaseAmount(0); got != params.BaseSubsidy {
		t.Fatalf("unexpected subsidy %d", got)
	}
	interval := uint64(params.SubsidyReductionInterval)
	if got := chain.CoinbaseAmount(interval); got != params.BaseSubsidy/2 {
		t.Fatalf("unexpected subsidy %d after the first reduction", got)
	}

	coinbase, err := chain.NextCoinbaseTx(testPkScript, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !standalone.IsCoinBaseTx(coinbase) {
		t.Fatal("next coinbase is not a coinbase")
	}
	if coinbase.TxOut[0].Value != chain.CoinbaseAmount(1) {
		t.Fatalf("unexpected coinbase value %d", coinbase.TxOut[0].Value)
	}
	if err := checkCoinbaseHeight(coinbase, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
