// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2015-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"time"

	"github.com/ledgerd/ledgerd/wire"
)

// MainNetParams returns the network parameters for the main network.
func MainNetParams() *Params {
	// mainPowLimit is the highest proof of work value a block can have for the
	// main network.  It is the value 2^236 - 1.
	mainPowLimit := hexToUint256("00000fffffffffffffffffffffffffffffffffffffffffffffffffffffffffff")

	return &Params{
		Name: "mainnet",

		// Chain parameters
		GenesisTimestamp:  time.Unix(1735689600, 0), // 2025-01-01 00:00:00 +0000 UTC
		PowLimit:          mainPowLimit,
		PowAlgos:          [wire.NumPowSlots]wire.PowAlgo{wire.PowAlgoSHA256d, wire.PowAlgoBlake3},
		GenerateSupported: false,
		MaxBlockSize:      393216,
		MaxTxSize:         393216,
		MaxTimeDrift:      time.Hour * 2,

		// Difficulty retarget parameters.
		TargetTimePerBlock:       time.Minute * 5,
		BlocksPerTargetAdj:       144,
		TargetTimespan:           time.Minute * 5 * 144, // TimePerBlock * BlocksPerTargetAdj
		RetargetAdjustmentFactor: 4,

		// Subsidy parameters.
		BaseSubsidy:              50 * 1e8, // 21m
		MulSubsidy:               1,
		DivSubsidy:               2,
		SubsidyReductionInterval: 210000,
		CoinbaseMaturity:         100,

		// Address encoding magics
		PubKeyHashAddrID: [2]byte{0x07, 0x01}, // starts with DS
		PrivateKeyID:     [2]byte{0x22, 0xde}, // starts with Pm
	}
}
