// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2015-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"time"

	"github.com/ledgerd/ledgerd/wire"
)

// SimNetParams returns the network parameters for the simulation test network.
// This network is similar to the normal test network except it is intended for
// private use within a group of individuals doing simulation testing and full
// integration tests between different applications such as wallets, voting
// service providers, mining pools, block explorers, and other services that
// build on the ledger.
//
// The functionality is intended to differ in that the only nodes which are
// specifically specified are used to create the network rather than following
// normal discovery rules.  This is important as otherwise it would just turn
// into another public testnet.
func SimNetParams() *Params {
	// simNetPowLimit is the highest proof of work value a block can have for
	// the simulation test network.  It is the value 2^255 - 1.
	simNetPowLimit := hexToUint256("7fffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff")

	return &Params{
		Name: "simnet",

		// Chain parameters
		GenesisTimestamp:  time.Unix(1401292357, 0), // 2014-05-28 15:52:37 +0000 UTC
		PowLimit:          simNetPowLimit,
		PowAlgos:          [wire.NumPowSlots]wire.PowAlgo{wire.PowAlgoSHA256d, wire.PowAlgoNone},
		GenerateSupported: true,
		MaxBlockSize:      1310720,
		MaxTxSize:         1000000,
		MaxTimeDrift:      time.Hour * 2,

		// Difficulty retarget parameters.
		TargetTimePerBlock:       time.Second,
		BlocksPerTargetAdj:       8,
		TargetTimespan:           time.Second * 8, // TimePerBlock * BlocksPerTargetAdj
		RetargetAdjustmentFactor: 4,

		// Subsidy parameters.
		BaseSubsidy:              50 * 1e8,
		MulSubsidy:               1,
		DivSubsidy:               2,
		SubsidyReductionInterval: 128,
		CoinbaseMaturity:         16,

		// Address encoding magics
		PubKeyHashAddrID: [2]byte{0x0e, 0x53}, // starts with SS
		PrivateKeyID:     [2]byte{0x23, 0x07}, // starts with Ps
	}
}
