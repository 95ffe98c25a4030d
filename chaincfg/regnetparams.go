// Copyright (c) 2018-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"time"

	"github.com/ledgerd/ledgerd/wire"
)

// RegNetParams returns the network parameters for the regression test network.
// This should not be confused with the public test network or the simulation
// test network.  The purpose of this network is primarily for unit tests and
// RPC server tests.  On the other hand, the simulation test network is intended
// for full integration tests between different applications such as wallets,
// voting service providers, mining pools, block explorers, and other services
// that build on the ledger.
//
// Since this network is only intended for unit testing, its values are subject
// to change even if it would cause a hard fork.
//
// Unlike the other networks, both work slots are in use, so every header
// carries a BLAKE-256 and a BLAKE3 proof of work.
func RegNetParams() *Params {
	// regNetPowLimit is the highest proof of work value a block can have for
	// the regression test network.  It is the value 2^255 - 1.
	regNetPowLimit := hexToUint256("7fffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff")

	return &Params{
		Name: "regnet",

		// Chain parameters
		GenesisTimestamp:  time.Unix(1538524800, 0), // 2018-10-03 00:00:00 +0000 UTC
		PowLimit:          regNetPowLimit,
		PowAlgos:          [wire.NumPowSlots]wire.PowAlgo{wire.PowAlgoBlake256, wire.PowAlgoBlake3},
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
		PubKeyHashAddrID: [2]byte{0x0d, 0xc2}, // starts with RS
		PrivateKeyID:     [2]byte{0x22, 0xfe}, // starts with Pr
	}
}
