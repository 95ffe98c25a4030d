// Copyright (c) 2015-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package standalone

import (
	"sort"
	"sync"
)

// SubsidyParams defines an interface that is used to provide the parameters
// required when calculating block subsidies.  These values are typically
// well-defined and unique per network.
type SubsidyParams interface {
	// BaseSubsidyValue returns the starting subsidy amount for mined blocks.
	// This value is reduced over time per the SubsidyReductionIntervalBlocks,
	// SubsidyReductionMultiplier, and SubsidyReductionDivisor parameters.
	BaseSubsidyValue() int64

	// SubsidyReductionMultiplier returns the multiplier to use when performing
	// the exponential subsidy reduction described by the CalcBlockSubsidy
	// documentation.
	SubsidyReductionMultiplier() int64

	// SubsidyReductionDivisor returns the divisor to use when performing the
	// exponential subsidy reduction described by the CalcBlockSubsidy
	// documentation.  A multiplier of 1 and a divisor of 2 result in the
	// subsidy halving every interval.
	SubsidyReductionDivisor() int64

	// SubsidyReductionIntervalBlocks returns the reduction interval in number
	// of blocks.
	SubsidyReductionIntervalBlocks() int64
}

// CalcBlockSubsidy returns the subsidy for a block at the provided height
// without making use of a cache.  It is a pure function of the height and the
// parameters.
//
// Subsidy calculation for exponential reductions:
//
//	subsidy := BaseSubsidyValue()
//	for i := 0; i < (height / SubsidyReductionIntervalBlocks()); i++ {
//	  subsidy *= SubsidyReductionMultiplier()
//	  subsidy /= SubsidyReductionDivisor()
//	}
func CalcBlockSubsidy(height uint64, params SubsidyParams) int64 {
	subsidy := params.BaseSubsidyValue()
	interval := params.SubsidyReductionIntervalBlocks()
	if interval <= 0 {
		return subsidy
	}
	multiplier := params.SubsidyReductionMultiplier()
	divisor := params.SubsidyReductionDivisor()
	for i := uint64(0); i < height/uint64(interval) && subsidy != 0; i++ {
		subsidy *= multiplier
		subsidy /= divisor
	}
	return subsidy
}

// SubsidyCache provides efficient access to consensus-critical subsidy
// calculations for blocks.
//
// It makes using of caching to avoid repeated calculations.
type SubsidyCache struct {
	// The following fields are protected by the mtx mutex.
	//
	// cache houses the cached subsidies keyed by reduction interval.
	//
	// cachedIntervals contains an ordered list of all cached intervals.  It is
	// used to efficiently track sparsely cached intervals with O(log N)
	// discovery of a prior cached interval.
	mtx             sync.RWMutex
	cache           map[uint64]int64
	cachedIntervals []uint64

	// params stores the subsidy parameters to use during subsidy calculation.
	params SubsidyParams
}

// NewSubsidyCache creates and initializes a new subsidy cache instance.  See
// the SubsidyCache documentation for more details.
func NewSubsidyCache(params SubsidyParams) *SubsidyCache {
	// Initialize the cache with the first interval set to the base subsidy and
	// enough initial space for a few sparse entries for typical usage patterns.
	const prealloc = 5
	cache := make(map[uint64]int64, prealloc)
	cache[0] = params.BaseSubsidyValue()

	return &SubsidyCache{
		cache:           cache,
		cachedIntervals: make([]uint64, 1, prealloc),
		params:          params,
	}
}

// uint64s implements sort.Interface for *[]uint64.
type uint64s []uint64

func (s *uint64s) Len() int           { return len(*s) }
func (s *uint64s) Less(i, j int) bool { return (*s)[i] < (*s)[j] }
func (s *uint64s) Swap(i, j int)      { (*s)[i], (*s)[j] = (*s)[j], (*s)[i] }

// CalcBlockSubsidy returns the subsidy for a block at the provided height.
// The result is identical to the package level CalcBlockSubsidy function.
//
// This function is safe for concurrent access.
func (c *SubsidyCache) CalcBlockSubsidy(height uint64) int64 {
	intervalBlocks := c.params.SubsidyReductionIntervalBlocks()
	if intervalBlocks <= 0 {
		return c.params.BaseSubsidyValue()
	}

	// Calculate the reduction interval associated with the requested height and
	// attempt to look it up in cache.  When it's not in the cache, look up the
	// latest cached interval and subsidy while the mutex is still held for use
	// below.
	reqInterval := height / uint64(intervalBlocks)
	c.mtx.RLock()
	if cachedSubsidy, ok := c.cache[reqInterval]; ok {
		c.mtx.RUnlock()
		return cachedSubsidy
	}
	lastCachedInterval := c.cachedIntervals[len(c.cachedIntervals)-1]
	lastCachedSubsidy := c.cache[lastCachedInterval]
	c.mtx.RUnlock()

	// When the requested interval is after the latest cached interval, avoid
	// additional work by either determining if the subsidy is already exhausted
	// at that interval or using the interval as a starting point to calculate
	// and store the subsidy for the requested interval.
	//
	// Otherwise, the requested interval is prior to the final cached interval,
	// so use a binary search to find the latest cached interval prior to the
	// requested one and use it as a starting point.
	if reqInterval > lastCachedInterval {
		// Return zero for all intervals after the subsidy reaches zero.  This
		// enforces an upper bound on the the number of entries in the cache.
		if lastCachedSubsidy == 0 {
			return 0
		}
	} else {
		c.mtx.RLock()
		cachedIdx := sort.Search(len(c.cachedIntervals), func(i int) bool {
			return c.cachedIntervals[i] >= reqInterval
		})
		lastCachedInterval = c.cachedIntervals[cachedIdx-1]
		lastCachedSubsidy = c.cache[lastCachedInterval]
		c.mtx.RUnlock()
	}

	// Finally, calculate the subsidy by applying the appropriate number of
	// reductions per the starting and requested interval.
	reductionMultiplier := c.params.SubsidyReductionMultiplier()
	reductionDivisor := c.params.SubsidyReductionDivisor()
	subsidy := lastCachedSubsidy
	neededIntervals := reqInterval - lastCachedInterval
	for i := uint64(0); i < neededIntervals; i++ {
		subsidy *= reductionMultiplier
		subsidy /= reductionDivisor

		// Stop once no further reduction is possible.  This ensures a bounded
		// computation for large requested intervals and that all future
		// requests for intervals at or after the final reduction interval
		// return 0 without recalculating.
		if subsidy == 0 {
			reqInterval = lastCachedInterval + i + 1
			break
		}
	}

	// Update the cache for the requested interval or the interval in which the
	// subsidy became zero when applicable.
	c.mtx.Lock()
	if _, ok := c.cache[reqInterval]; !ok {
		c.cache[reqInterval] = subsidy
		c.cachedIntervals = append(c.cachedIntervals, reqInterval)
		sort.Sort((*uint64s)(&c.cachedIntervals))
	}
	c.mtx.Unlock()
	return subsidy
}
