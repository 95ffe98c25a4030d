// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chaincfg defines chain configuration parameters.
//
// In addition to the main network, there also exists two standard networks:
// the simulation test network and the regression test network.  These networks
// are incompatible with each other (each sharing a different genesis block and
// proof of work configuration) and software should handle errors where input
// intended for one network is used on an application instance running on a
// different network.
//
// For main packages, a (typically global) var may be assigned the address of
// one of the standard Param vars for use as the application's "active" network.
// When a network parameter is needed, it may then be looked up through this
// variable (either directly, or hidden in a library call).
//
//	package main
//
//	import (
//		"flag"
//		"fmt"
//		"log"
//
//		"github.com/ledgerd/ledgerd/chaincfg"
//		"github.com/ledgerd/ledgerd/ledgerutil"
//	)
//
//	func main() {
//		var simnet = flag.Bool("simnet", false, "operate on the simulation network")
//		flag.Parse()
//
//		// By default (without -simnet), use mainnet.
//		var chainParams = chaincfg.MainNetParams()
//
//		// Modify active network parameters if operating on simnet.
//		if *simnet {
//			chainParams = chaincfg.SimNetParams()
//		}
//
//		// later...
//
//		// Create and print new payment address, specific to the active network.
//		pubKeyHash := make([]byte, 20)
//		addr, err := ledgerutil.NewAddressPubKeyHash(pubKeyHash, chainParams)
//		if err != nil {
//			log.Fatal(err)
//		}
//		fmt.Println(addr)
//	}
//
// If an application does not use one of the standard networks, a new Params
// struct may be created which defines the parameters for the non-standard
// network.  As a general rule of thumb, all network parameters should be
// unique to the network, but parameter collisions can still occur.
package chaincfg
