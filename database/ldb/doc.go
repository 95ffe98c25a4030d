// Copyright (c) 2015-2016 The btcsuite developers
// Copyright (c) 2016-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package ldb implements a driver for the database package that uses leveldb for
the backing store.

Every writable database transaction maps to a leveldb transaction, so all of
its changes are committed together.  Read-only transactions run against a
leveldb snapshot.

# Usage

This package is a driver to the database package and provides the database type
of "leveldb".  The only parameter the Open and Create functions take is the
database path as a string.  Passing an empty path to Create opens a database
that lives only in memory, which is useful for tests:

	db, err := database.Open("leveldb", "path/to/database")
	if err != nil {
		// Handle error
	}

	db, err := database.Create("leveldb", "path/to/database")
	if err != nil {
		// Handle error
	}
*/
package ldb
