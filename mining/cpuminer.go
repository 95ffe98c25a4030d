// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2015-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mining

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/ledgerd/ledgerd/blockchain/standalone"
	"github.com/ledgerd/ledgerd/chaincfg"
	"github.com/ledgerd/ledgerd/wire"
	"golang.org/x/sync/errgroup"
)

const (
	// maxNonce is the maximum value of the part of the header nonce each
	// worker iterates.
	maxNonce = ^uint64(0)

	// ctxCheckInterval is the number of nonces a worker tries between checks
	// for cancellation.
	ctxCheckInterval = 1 << 10
)

var (
	// defaultNumWorkers is the default number of workers to use for mining
	// and is based on the number of processor cores.
	defaultNumWorkers = runtime.NumCPU()

	// errSolved is returned by the worker that finds a solution in order to
	// stop the remaining workers.
	errSolved = errors.New("solved")
)

// speedStats houses tracking information used to monitor the hashing speed of
// the CPU miner.
type speedStats struct {
	totalHashes atomic.Uint64
}

// AddTotalHashes increments the total number of hashes by the provided number
// of hashes.
//
// This function is safe for concurrent access.
func (s *speedStats) AddTotalHashes(numHashes uint64) {
	s.totalHashes.Add(numHashes)
}

// solveResult records the first header solved by any of the workers.
type solveResult struct {
	mtx    sync.Mutex
	header *wire.BlockHeader
}

// set records the provided header unless a solution was already recorded.
func (r *solveResult) set(header *wire.BlockHeader) {
	r.mtx.Lock()
	if r.header == nil {
		r.header = header
	}
	r.mtx.Unlock()
}

// solveHeader attempts every nonce of a single worker until the header
// satisfies every proof of work slot in use.  The worker index is stored in
// bytes 16 through 23 of the nonce and the iterated value in the final 8
// bytes, so each worker searches a disjoint range.  The first 16 bytes are
// left as provided by the caller.
//
// It returns whether or not a solution was found.  The search stops early when
// the context is done.
func solveHeader(ctx context.Context, header *wire.BlockHeader, worker uint64,
	stats *speedStats) bool {

	binary.BigEndian.PutUint64(header.Nonce[16:24], worker)

	var hashesCompleted uint64
	for nonce := uint64(0); ; nonce++ {
		if nonce%ctxCheckInterval == 0 {
			stats.AddTotalHashes(hashesCompleted)
			hashesCompleted = 0
			if ctx.Err() != nil {
				return false
			}
		}

		binary.BigEndian.PutUint64(header.Nonce[24:], nonce)
		prefix := header.MiningPrefix()
		solved := true
		for i := range header.PowSlots {
			slot := &header.PowSlots[i]
			if slot.Algo == wire.PowAlgoNone {
				slot.Hash = chainhash.Hash{}
				continue
			}
			hash, _ := wire.PowHashPrefix(prefix, slot.Algo)
			hashesCompleted++
			if standalone.CheckProofOfWorkHash(&hash, &header.Target) != nil {
				solved = false
				break
			}
			slot.Hash = hash
		}
		if solved {
			stats.AddTotalHashes(hashesCompleted)
			return true
		}

		if nonce == maxNonce {
			break
		}
	}
	stats.AddTotalHashes(hashesCompleted)
	return false
}

// SolveBlock searches for a nonce that makes the digest of every proof of work
// slot of the provided header not higher than its target.  The slots are
// tagged with the algorithms of the network defined by the provided parameters
// and the header is updated in place with the nonce and digests of the
// solution.  The header is left untouched when no solution is found.
//
// The search is split over one worker goroutine per processor.  It returns
// the error of the context when the context is done before a solution is
// found.
func SolveBlock(ctx context.Context, header *wire.BlockHeader, params *chaincfg.Params) error {
	return solveBlock(ctx, header, params, defaultNumWorkers)
}

// solveBlock is the implementation of SolveBlock with a configurable number of
// workers.  A single worker always finds the lowest solving nonce of its range,
// so the result is deterministic.
func solveBlock(ctx context.Context, header *wire.BlockHeader, params *chaincfg.Params, numWorkers int) error {
	if params.PowAlgos[0] == wire.PowAlgoNone {
		str := fmt.Sprintf("network %s does not define a proof of work "+
			"algorithm", params.Name)
		return makeError(ErrGenerateUnsupported, str)
	}

	template := *header
	for i, algo := range params.PowAlgos {
		template.PowSlots[i] = wire.PowSlot{Algo: algo}
	}

	var stats speedStats
	var result solveResult
	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < numWorkers; i++ {
		worker := uint64(i)
		g.Go(func() error {
			workHeader := template
			if solveHeader(gctx, &workHeader, worker, &stats) {
				result.set(&workHeader)
				return errSolved
			}
			return nil
		})
	}
	err := g.Wait()

	elapsed := time.Since(start)
	hashes := stats.totalHashes.Load()
	if secs := elapsed.Seconds(); secs > 0 {
		log.Debugf("Hash speed: %6.0f kilohashes/s over %d hashes",
			float64(hashes)/1000/secs, hashes)
	}

	switch {
	case errors.Is(err, errSolved):
		*header = *result.header
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	}
	str := fmt.Sprintf("no solution for the header at height %d in the "+
		"nonce space of %d workers", header.Height, numWorkers)
	return makeError(ErrNonceExhausted, str)
}
