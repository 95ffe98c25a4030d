// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2015-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"encoding/hex"
	"time"

	"github.com/decred/dcrd/math/uint256"
	"github.com/ledgerd/ledgerd/wire"
)

// Params defines a network by its parameters.  These parameters may be used by
// applications to differentiate networks as well as addresses and keys for one
// network from those intended for use on another network.
type Params struct {
	// Name defines a human-readable identifier for the network.
	Name string

	// GenesisTimestamp is the timestamp stamped into the genesis block
	// header.
	GenesisTimestamp time.Time

	// PowLimit defines the highest allowed proof of work value for a block
	// as a uint256.  It is also the target of the genesis block.
	PowLimit *uint256.Uint256

	// PowAlgos defines the proof-of-work algorithm for each work slot of a
	// block header.  The first slot must be set.  A slot set to
	// wire.PowAlgoNone is unused and must be empty in every header.
	PowAlgos [wire.NumPowSlots]wire.PowAlgo

	// GenerateSupported specifies whether or not CPU mining is allowed.
	GenerateSupported bool

	// MaxBlockSize is the maximum number of bytes a serialized block can
	// be.
	MaxBlockSize int

	// MaxTxSize is the maximum number of bytes a serialized transaction can
	// be.
	MaxTxSize int

	// TargetTimePerBlock is the desired amount of time to generate each
	// block.
	TargetTimePerBlock time.Duration

	// BlocksPerTargetAdj is the number of blocks between each target
	// difficulty adjustment.
	BlocksPerTargetAdj int64

	// TargetTimespan is the desired amount of time that should elapse
	// before the block difficulty requirement is examined to determine how
	// it should be changed in order to maintain the desired block
	// generation rate.  It is BlocksPerTargetAdj blocks of
	// TargetTimePerBlock.
	TargetTimespan time.Duration

	// RetargetAdjustmentFactor is the adjustment factor used to limit
	// the minimum and maximum amount of adjustment that can occur between
	// difficulty retargets.
	RetargetAdjustmentFactor int64

	// MaxTimeDrift is the maximum amount of time a block timestamp may be
	// ahead of or behind the time it is validated at.
	MaxTimeDrift time.Duration

	// Subsidy parameters.
	//
	// Subsidy calculation for exponential reductions:
	// 0 for i in range (0, height / SubsidyReductionInterval):
	// 1     subsidy *= MulSubsidy
	// 2     subsidy /= DivSubsidy
	//
	// BaseSubsidy is the starting subsidy amount for mined blocks.
	BaseSubsidy int64

	// Subsidy reduction multiplier.
	MulSubsidy int64

	// Subsidy reduction divisor.
	DivSubsidy int64

	// SubsidyReductionInterval is the reduction interval in blocks.
	SubsidyReductionInterval int64

	// CoinbaseMaturity is the number of blocks required before newly mined
	// coins can be spent.
	CoinbaseMaturity uint16

	// Address encoding magics
	PubKeyHashAddrID [2]byte // First 2 bytes of a P2PKH address

	// Private key encoding magics
	PrivateKeyID [2]byte
}

// AddrIDPubKeyHashSchnorrV0 returns the magic prefix bytes for
// pay-to-pubkey-hash addresses where the underlying pubkey is secp256k1 and the
// signature algorithm is Schnorr.
func (p *Params) AddrIDPubKeyHashSchnorrV0() [2]byte {
	return p.PubKeyHashAddrID
}

// PrivKeyID returns the magic prefix bytes for encoded private keys.
func (p *Params) PrivKeyID() [2]byte {
	return p.PrivateKeyID
}

// PowLimitTarget returns the proof of work limit in the big-endian target
// representation stored in block headers.
func (p *Params) PowLimitTarget() [32]byte {
	var target [32]byte
	p.PowLimit.PutBytes(&target)
	return target
}

// BaseSubsidyValue returns the starting subsidy amount for mined blocks.  The
// reduction is controlled by the SubsidyReductionInterval,
// SubsidyReductionMultiplier, and SubsidyReductionDivisor parameters.
func (p *Params) BaseSubsidyValue() int64 {
	return p.BaseSubsidy
}

// SubsidyReductionMultiplier returns the multiplier to use when performing
// the exponential subsidy reduction.
func (p *Params) SubsidyReductionMultiplier() int64 {
	return p.MulSubsidy
}

// SubsidyReductionDivisor returns the divisor to use when performing the
// exponential subsidy reduction.
func (p *Params) SubsidyReductionDivisor() int64 {
	return p.DivSubsidy
}

// SubsidyReductionIntervalBlocks returns the reduction interval in number of
// blocks.
func (p *Params) SubsidyReductionIntervalBlocks() int64 {
	return p.SubsidyReductionInterval
}

// hexToUint256 converts the passed big-endian hex string into an unsigned
// 256-bit integer and will panic if there is an error.  This is only provided
// for the hard-coded constants so errors in the source code can be detected.
// It will only (and must only) be called with hard-coded values.
func hexToUint256(hexStr string) *uint256.Uint256 {
	b, err := hex.DecodeString(hexStr)
	if err != nil || len(b) > 32 {
		panic("failed to parse uint256 from hex: " + hexStr)
	}
	var buf [32]byte
	copy(buf[32-len(b):], b)
	return new(uint256.Uint256).SetBytes(&buf)
}
