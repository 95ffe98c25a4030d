// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package standalone

import (
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/decred/dcrd/math/uint256"
)

// TargetToUint256 converts the provided big-endian target as stored in block
// headers to an unsigned 256-bit integer that can be used to perform math
// comparisons.
func TargetToUint256(target *[32]byte) uint256.Uint256 {
	return *new(uint256.Uint256).SetBytes(target)
}

// Uint256ToTarget converts the provided unsigned 256-bit integer to the
// big-endian target representation stored in block headers.
func Uint256ToTarget(n *uint256.Uint256) [32]byte {
	var target [32]byte
	n.PutBytes(&target)
	return target
}

// HashToUint256 converts the provided hash to an unsigned 256-bit integer that
// can be used to perform math comparisons.
func HashToUint256(hash *chainhash.Hash) uint256.Uint256 {
	// Hashes are a stream of bytes that do not have any inherent endianness to
	// them.  They are interpreted as big endian so the first byte of a proof of
	// work digest is the most significant, the same as the target.
	return *new(uint256.Uint256).SetBytes((*[32]byte)(hash))
}

// CalcWork calculates a work value from a target difficulty.  The difficulty
// for generating a block is increased by decreasing the value which the
// generated hash must be less than.  The main chain is selected by choosing
// the chain that has the most proof of work (highest difficulty).  Since a
// lower target difficulty value equates to higher actual difficulty, the work
// value which will be accumulated must be the inverse of the difficulty.  The
// result is zero when the target is zero.  Finally, to avoid really small
// floating point numbers, the result multiplies the numerator by 2^256 and
// adds 1 to the denominator.
func CalcWork(target *[32]byte) uint256.Uint256 {
	diff := TargetToUint256(target)
	if diff.IsZero() {
		return uint256.Uint256{}
	}

	// The goal is to calculate 2^256 / (diff+1), where diff > 0 using a
	// fixed-precision uint256.
	//
	// Since 2^256 can't be represented by a uint256, the calc is performed as
	// follows:
	//
	//    work = (2^256 / (diff+1))
	// => work = ((2^256-diff-1) / (diff+1))+1
	//
	// Next, observe that 2^256-diff-1 is the one's complement of diff as a
	// uint256 which is equivalent to the bitwise not.  The case diff = 2^256-1
	// would divide by zero, so it is handled separately:
	//
	// {work = 1                   , where diff = 2^256-1
	// {work = (^diff / (diff+1))+1, where 0 < diff < 2^256-1
	divisor := new(uint256.Uint256).SetUint64(1).Add(&diff)
	if divisor.IsZero() {
		return *new(uint256.Uint256).SetUint64(1)
	}
	return *diff.Not().Div(divisor).AddUint64(1)
}

// checkProofOfWorkRange ensures the provided target difficulty is in min/max
// range per the provided proof-of-work limit.
func checkProofOfWorkRange(target *[32]byte, powLimit *uint256.Uint256) (uint256.Uint256, error) {
	// The target difficulty must be larger than zero.
	targetNum := TargetToUint256(target)
	if targetNum.IsZero() {
		str := "target difficulty is zero"
		return uint256.Uint256{}, ruleError(ErrUnexpectedDifficulty, str)
	}

	// The target difficulty must not exceed the maximum allowed.
	if targetNum.Gt(powLimit) {
		str := fmt.Sprintf("target difficulty %064x is higher than max %064x",
			targetNum, powLimit)
		return uint256.Uint256{}, ruleError(ErrUnexpectedDifficulty, str)
	}

	return targetNum, nil
}

// CheckProofOfWorkRange ensures the provided target difficulty is in min/max
// range per the provided proof-of-work limit.
func CheckProofOfWorkRange(target *[32]byte, powLimit *uint256.Uint256) error {
	_, err := checkProofOfWorkRange(target, powLimit)
	return err
}

// checkProofOfWorkHash ensures the provided hash is less than or equal to the
// provided target difficulty.
func checkProofOfWorkHash(powHash *chainhash.Hash, target *uint256.Uint256) error {
	hashNum := HashToUint256(powHash)
	if hashNum.Gt(target) {
		str := fmt.Sprintf("proof of work hash %064x is higher than expected "+
			"max of %064x", hashNum, target)
		return ruleError(ErrHighHash, str)
	}
	return nil
}

// CheckProofOfWorkHash ensures the provided hash is less than or equal to the
// provided target difficulty.
func CheckProofOfWorkHash(powHash *chainhash.Hash, target *[32]byte) error {
	targetNum := TargetToUint256(target)
	return checkProofOfWorkHash(powHash, &targetNum)
}

// CheckProofOfWork ensures the provided hash is less than or equal to the
// provided target difficulty and that the target difficulty is in min/max
// range per the provided proof-of-work limit.
//
// This is semantically equivalent to and slightly more efficient than calling
// CheckProofOfWorkRange followed by CheckProofOfWorkHash.
func CheckProofOfWork(powHash *chainhash.Hash, target *[32]byte, powLimit *uint256.Uint256) error {
	targetNum, err := checkProofOfWorkRange(target, powLimit)
	if err != nil {
		return err
	}

	// The proof of work hash must not exceed the target difficulty.
	return checkProofOfWorkHash(powHash, &targetNum)
}

// CalcNextTarget calculates the target difficulty for the period that follows
// one which took actualTimespan seconds when it was expected to take
// targetTimespan seconds.
//
// The new target is the previous target scaled by the ratio of the actual to
// the expected timespan, so blocks that arrived too quickly result in a lower
// (harder) target and vice versa.  The actual timespan is first clamped to the
// range [targetTimespan/adjustmentFactor, targetTimespan*adjustmentFactor] to
// limit the change of any single adjustment, and the result never exceeds the
// provided proof-of-work limit nor drops to zero.
//
// An adjustment factor less than one is treated as one, which disables the
// clamp.  A non-positive target timespan leaves the target unchanged.
//
// This function is safe for concurrent access.
func CalcNextTarget(prevTarget *[32]byte, actualTimespan, targetTimespan,
	adjustmentFactor int64, powLimit *uint256.Uint256) [32]byte {

	if targetTimespan <= 0 {
		return *prevTarget
	}
	if adjustmentFactor < 1 {
		adjustmentFactor = 1
	}

	// Limit the amount of adjustment that can occur to the previous
	// difficulty.
	minTimespan := targetTimespan / adjustmentFactor
	maxTimespan := targetTimespan * adjustmentFactor
	switch {
	case actualTimespan < minTimespan:
		actualTimespan = minTimespan
	case actualTimespan > maxTimespan:
		actualTimespan = maxTimespan
	}
	if actualTimespan < 1 {
		actualTimespan = 1
	}

	// Calculate new target difficulty as:
	//  currentDifficulty * (adjustedTimespan / targetTimespan)
	//
	// The intermediate product can exceed 256 bits, so it is calculated with
	// arbitrary precision.
	newTarget := new(big.Int).SetBytes(prevTarget[:])
	newTarget.Mul(newTarget, big.NewInt(actualTimespan))
	newTarget.Div(newTarget, big.NewInt(targetTimespan))

	// Limit new value to the proof of work limit and never allow a zero
	// target since nothing could satisfy it.
	var limitBytes [32]byte
	powLimit.PutBytes(&limitBytes)
	limit := new(big.Int).SetBytes(limitBytes[:])
	if newTarget.Cmp(limit) > 0 {
		newTarget.Set(limit)
	}
	if newTarget.Sign() == 0 {
		newTarget.SetInt64(1)
	}

	var result [32]byte
	newTarget.FillBytes(result[:])
	return result
}
