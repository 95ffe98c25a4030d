// Copyright (c) 2017-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package sampleconfig

import (
	_ "embed"
)

// sampleLedgerdConf is a string containing the commented example config for
// ledgerd.
//
//go:embed sample-ledgerd.conf
var sampleLedgerdConf string

// Ledgerd returns a string containing the commented example config for
// ledgerd.
func Ledgerd() string {
	return sampleLedgerdConf
}
