// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package standalone

import (
	"encoding/hex"
	"errors"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/decred/dcrd/math/uint256"
)

// hexToTarget converts the passed big-endian hex string into a target,
// left-padding it with zeros, and will panic if there is an error.  This is
// only provided for the hard-coded constants so errors in the source code can
// be detected.  It will only (and must only) be called with hard-coded values.
func hexToTarget(s string) [32]byte {
	if len(s)%2 != 0 {
		s = "0" + s
	}
	b, err := hex.DecodeString(s)
	if err != nil || len(b) > 32 {
		panic("invalid target in source file: " + s)
	}
	var target [32]byte
	copy(target[32-len(b):], b)
	return target
}

// hexToUint256 converts the passed big-endian hex string into an unsigned
// 256-bit integer and will panic if there is an error.  This is only provided
// for the hard-coded constants so errors in the source code can be detected.
// It will only (and must only) be called with hard-coded values.
func hexToUint256(s string) *uint256.Uint256 {
	target := hexToTarget(s)
	return new(uint256.Uint256).SetBytes(&target)
}

// TestCalcWork ensures calculating a work value from a target produces the
// expected results.
func TestCalcWork(t *testing.T) {
	tests := []struct {
		name   string // test description
		target string // big-endian target
		want   string // expected work
	}{{
		name:   "zero target",
		target: "00",
		want:   "00",
	}, {
		name:   "target of one",
		target: "01",
		want:   "8000000000000000000000000000000000000000000000000000000000000000",
	}, {
		name:   "target 2^255 - 1",
		target: "7fffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff",
		want:   "02",
	}, {
		name:   "max target",
		target: "ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff",
		want:   "01",
	}, {
		name:   "target 2^224 - 1",
		target: "00000000ffffffffffffffffffffffffffffffffffffffffffffffffffffffff",
		want:   "0100000000",
	}}

	for _, test := range tests {
		target := hexToTarget(test.target)
		result := CalcWork(&target)
		if !result.Eq(hexToUint256(test.want)) {
			t.Errorf("%s: mismatched result -- got %064x, want %s", test.name,
				result, test.want)
		}
	}
}

// TestTargetConversions ensures targets and hashes are interpreted as
// big-endian numbers.
func TestTargetConversions(t *testing.T) {
	target := hexToTarget("0102")
	n := TargetToUint256(&target)
	if !n.Eq(new(uint256.Uint256).SetUint64(0x0102)) {
		t.Fatalf("unexpected target value %064x", n)
	}
	if back := Uint256ToTarget(&n); back != target {
		t.Fatalf("mismatched target -- got %x, want %x", back, target)
	}

	hash := chainhash.Hash(target)
	if h := HashToUint256(&hash); !h.Eq(&n) {
		t.Fatalf("unexpected hash value %064x", h)
	}
}

// TestCheckProofOfWork ensures hashes and targets are checked against each
// other and the proof-of-work limit as expected.
func TestCheckProofOfWork(t *testing.T) {
	powLimit := hexToUint256("00ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff")
	tests := []struct {
		name    string // test description
		hash    string // big-endian proof of work hash
		target  string // big-endian target
		wantErr error  // expected error
	}{{
		name:    "hash below target",
		hash:    "0000000000000000000000000000000000000000000000000000000000000001",
		target:  "0000ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff",
		wantErr: nil,
	}, {
		name:    "hash equal to target",
		hash:    "0000ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff",
		target:  "0000ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff",
		wantErr: nil,
	}, {
		name:    "hash above target",
		hash:    "0001000000000000000000000000000000000000000000000000000000000000",
		target:  "0000ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff",
		wantErr: ErrHighHash,
	}, {
		name:    "target equal to pow limit",
		hash:    "0000000000000000000000000000000000000000000000000000000000000001",
		target:  "00ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff",
		wantErr: nil,
	}, {
		name:    "target above pow limit",
		hash:    "0000000000000000000000000000000000000000000000000000000000000001",
		target:  "01ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff",
		wantErr: ErrUnexpectedDifficulty,
	}, {
		name:    "zero target",
		hash:    "0000000000000000000000000000000000000000000000000000000000000000",
		target:  "00",
		wantErr: ErrUnexpectedDifficulty,
	}}

	for _, test := range tests {
		hash := chainhash.Hash(hexToTarget(test.hash))
		target := hexToTarget(test.target)
		err := CheckProofOfWork(&hash, &target, powLimit)
		if !errors.Is(err, test.wantErr) {
			t.Errorf("%s: mismatched err -- got %v, want %v", test.name, err,
				test.wantErr)
			continue
		}

		// The range and hash checks must agree with the combined check.
		rangeErr := CheckProofOfWorkRange(&target, powLimit)
		hashErr := CheckProofOfWorkHash(&hash, &target)
		switch {
		case errors.Is(test.wantErr, ErrUnexpectedDifficulty):
			if !errors.Is(rangeErr, ErrUnexpectedDifficulty) {
				t.Errorf("%s: unexpected range err %v", test.name, rangeErr)
			}
		case errors.Is(test.wantErr, ErrHighHash):
			if rangeErr != nil || !errors.Is(hashErr, ErrHighHash) {
				t.Errorf("%s: unexpected errs %v, %v", test.name, rangeErr,
					hashErr)
			}
		default:
			if rangeErr != nil || hashErr != nil {
				t.Errorf("%s: unexpected errs %v, %v", test.name, rangeErr,
					hashErr)
			}
		}

		var rErr RuleError
		if test.wantErr != nil && !errors.As(err, &rErr) {
			t.Errorf("%s: error is not a RuleError: %T", test.name, err)
		}
	}
}

// TestCalcNextTarget ensures the retarget calculation scales, clamps, and
// limits as expected.
func TestCalcNextTarget(t *testing.T) {
	powLimit := hexToUint256("00ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff")
	const span = 600
	tests := []struct {
		name   string // test description
		prev   string // previous target
		actual int64  // actual timespan
		factor int64  // adjustment factor
		want   string // expected target
	}{{
		name:   "on schedule",
		prev:   "0000100000000000000000000000000000000000000000000000000000000000",
		actual: span,
		factor: 4,
		want:   "0000100000000000000000000000000000000000000000000000000000000000",
	}, {
		name:   "twice as fast halves the target",
		prev:   "0000100000000000000000000000000000000000000000000000000000000000",
		actual: span / 2,
		factor: 4,
		want:   "0000080000000000000000000000000000000000000000000000000000000000",
	}, {
		name:   "twice as slow doubles the target",
		prev:   "0000100000000000000000000000000000000000000000000000000000000000",
		actual: span * 2,
		factor: 4,
		want:   "0000200000000000000000000000000000000000000000000000000000000000",
	}, {
		name:   "too fast is clamped to a quarter",
		prev:   "0000100000000000000000000000000000000000000000000000000000000000",
		actual: 1,
		factor: 4,
		want:   "0000040000000000000000000000000000000000000000000000000000000000",
	}, {
		name:   "negative span is clamped to a quarter",
		prev:   "0000100000000000000000000000000000000000000000000000000000000000",
		actual: -100,
		factor: 4,
		want:   "0000040000000000000000000000000000000000000000000000000000000000",
	}, {
		name:   "too slow is clamped to four times",
		prev:   "0000100000000000000000000000000000000000000000000000000000000000",
		actual: span * 100,
		factor: 4,
		want:   "0000400000000000000000000000000000000000000000000000000000000000",
	}, {
		name:   "capped at the pow limit",
		prev:   "00f0000000000000000000000000000000000000000000000000000000000000",
		actual: span * 4,
		factor: 4,
		want:   "00ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff",
	}, {
		name:   "never zero",
		prev:   "01",
		actual: 1,
		factor: 4,
		want:   "01",
	}}

	for _, test := range tests {
		prev := hexToTarget(test.prev)
		result := CalcNextTarget(&prev, test.actual, span, test.factor,
			powLimit)
		if want := hexToTarget(test.want); result != want {
			t.Errorf("%s: mismatched target -- got %x, want %x", test.name,
				result, want)
		}
	}
}
