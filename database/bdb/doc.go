// Copyright (c) 2016-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package bdb implements a driver for the database package that uses bolt for the
backing store.

Database transactions map directly to bolt transactions and buckets map to
top-level bolt buckets.

# Usage

This package is a driver to the database package and provides the database type
of "bolt".  The only parameter the Open and Create functions take is the path
of the database file as a string:

	db, err := database.Create("bolt", "path/to/blocks.db")
	if err != nil {
		// Handle error
	}
*/
package bdb
