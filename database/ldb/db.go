// Copyright (c) 2015-2016 The btcsuite developers
// Copyright (c) 2016-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ldb

import (
	"fmt"
	"os"
	"sync"

	"github.com/ledgerd/ledgerd/database"
	"github.com/syndtr/goleveldb/leveldb"
	ldberrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

const (
	// bucketIndexPrefix is the first byte of every key that records the
	// existence of a bucket.  Bucket data keys start with the length of the
	// bucket name instead, which is never zero.
	bucketIndexPrefix = 0x00

	// maxBucketNameLen is the longest supported bucket name.  It is the
	// largest length that fits in the single byte data key prefix.
	maxBucketNameLen = 255
)

// convertErr converts the passed leveldb error into a database error with an
// equivalent error kind and the passed description.  It also sets the passed
// error as the underlying error.
func convertErr(desc string, ldbErr error) database.Error {
	kind := database.ErrDriverSpecific
	if ldbErr == leveldb.ErrClosed {
		kind = database.ErrDbNotOpen
	}
	if ldberrors.IsCorrupted(ldbErr) {
		kind = database.ErrInvalid
	}
	return database.MakeError(kind, desc, ldbErr)
}

// fileExists reports whether the named file or directory exists.
func fileExists(name string) bool {
	if _, err := os.Stat(name); err != nil {
		if os.IsNotExist(err) {
			return false
		}
	}
	return true
}

// bucketIndexKey returns the key that records the existence of the named
// bucket.
func bucketIndexKey(name []byte) []byte {
	key := make([]byte, 1+len(name))
	key[0] = bucketIndexPrefix
	copy(key[1:], name)
	return key
}

// bucketPrefix returns the prefix shared by every data key of the named
// bucket.
func bucketPrefix(name []byte) []byte {
	prefix := make([]byte, 1+len(name))
	prefix[0] = byte(len(name))
	copy(prefix[1:], name)
	return prefix
}

// reader is the read interface shared by leveldb snapshots and transactions.
type reader interface {
	Get(key []byte, ro *opt.ReadOptions) ([]byte, error)
	NewIterator(slice *util.Range, ro *opt.ReadOptions) iterator.Iterator
}

// db represents a collection of namespaces which are persisted and implements
// the database.DB interface.  All database access is performed through
// transactions which are obtained through the specific Namespace.
type db struct {
	closeLock sync.RWMutex // Make database close block while txns active.
	closed    bool         // Is the database closed?
	ldb       *leveldb.DB  // The underlying leveldb instance.
}

// Enforce db implements the database.DB interface.
var _ database.DB = (*db)(nil)

// Type returns the database driver type the current database instance was
// created with.
//
// This function is part of the database.DB interface implementation.
func (db *db) Type() string {
	return DbType
}

// View invokes the passed function in the context of a managed read-only
// transaction backed by a leveldb snapshot.
//
// This function is part of the database.DB interface implementation.
func (db *db) View(fn func(database.Tx) error) error {
	db.closeLock.RLock()
	defer db.closeLock.RUnlock()
	if db.closed {
		return database.MakeError(database.ErrDbNotOpen, "database is not open",
			nil)
	}

	snap, err := db.ldb.GetSnapshot()
	if err != nil {
		return convertErr("failed to open snapshot", err)
	}
	defer snap.Release()

	return fn(&transaction{reader: snap})
}

// Update invokes the passed function in the context of a managed read-write
// transaction.  The changes are written atomically when the function returns
// nil and discarded otherwise.
//
// This function is part of the database.DB interface implementation.
func (db *db) Update(fn func(database.Tx) error) error {
	db.closeLock.RLock()
	defer db.closeLock.RUnlock()
	if db.closed {
		return database.MakeError(database.ErrDbNotOpen, "database is not open",
			nil)
	}

	ldbTx, err := db.ldb.OpenTransaction()
	if err != nil {
		return convertErr("failed to open transaction", err)
	}
	tx := &transaction{reader: ldbTx, ldbTx: ldbTx}
	if err := fn(tx); err != nil {
		ldbTx.Discard()
		return err
	}
	if err := ldbTx.Commit(); err != nil {
		ldbTx.Discard()
		return convertErr("failed to commit transaction", err)
	}
	return nil
}

// Close cleanly shuts down the database and syncs all data.  It will block
// until all database transactions have been finalized.
//
// This function is part of the database.DB interface implementation.
func (db *db) Close() error {
	db.closeLock.Lock()
	defer db.closeLock.Unlock()

	if db.closed {
		return database.MakeError(database.ErrDbNotOpen, "database is not open",
			nil)
	}
	db.closed = true
	if err := db.ldb.Close(); err != nil {
		return convertErr("failed to close database", err)
	}
	return nil
}

// openDB opens the database at the provided path.  database.ErrDbDoesNotExist
// is returned if the database doesn't exist and the create flag is not set.
// An empty path with the create flag set opens a database that lives only in
// memory.
func openDB(dbPath string, create bool) (database.DB, error) {
	var ldb *leveldb.DB
	var err error
	switch {
	case dbPath == "" && create:
		ldb, err = leveldb.Open(storage.NewMemStorage(), nil)

	case dbPath == "":
		return nil, database.MakeError(database.ErrDbDoesNotExist,
			"in-memory databases can only be created", nil)

	default:
		dbExists := fileExists(dbPath)
		if !create && !dbExists {
			str := fmt.Sprintf("database %q does not exist", dbPath)
			return nil, database.MakeError(database.ErrDbDoesNotExist, str,
				nil)
		}
		if create && dbExists {
			str := fmt.Sprintf("database %q already exists", dbPath)
			return nil, database.MakeError(database.ErrDbExists, str, nil)
		}

		opts := opt.Options{
			ErrorIfExist: create,
			Strict:       opt.DefaultStrict,
			Compression:  opt.NoCompression,
		}
		ldb, err = leveldb.OpenFile(dbPath, &opts)
	}
	if err != nil {
		return nil, convertErr("failed to open database", err)
	}

	log.Tracef("Opened leveldb database at %q", dbPath)
	return &db{ldb: ldb}, nil
}
