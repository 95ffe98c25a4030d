// Copyright (c) 2015-2016 The btcsuite developers
// Copyright (c) 2016-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package database provides a key/value database interface for the ledger.

The interface is intentionally small: a database is a set of named buckets and
every read or write happens inside a managed transaction obtained with View or
Update.  Either every change made by an Update is persisted or none of them are,
which lets callers store a block, its indexes and the resulting unspent output
set as one unit.

# Drivers

Backends register themselves with RegisterDriver from an init function, so a
driver is made available by importing its package for side effects:

	import (
		"github.com/ledgerd/ledgerd/database"
		_ "github.com/ledgerd/ledgerd/database/ldb"
	)

	db, err := database.Create("leveldb", "path/to/database")
	if err != nil {
		// Handle error
	}
	defer db.Close()

	err = db.Update(func(tx database.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte("mybucket"))
		if err != nil {
			return err
		}
		return bucket.Put([]byte("mykey"), []byte("myvalue"))
	})

The ldb package provides the "leveldb" type and the bdb package provides the
"bolt" type.

# Errors

Errors returned by this package and its drivers are of type database.Error and
wrap an ErrorKind, so they can be identified with errors.Is.
*/
package database
