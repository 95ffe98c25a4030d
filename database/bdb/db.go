// Copyright (c) 2016-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package bdb

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ledgerd/ledgerd/database"
	bolt "go.etcd.io/bbolt"
)

// openTimeout is how long opening a database waits for the file lock held by
// another process.
const openTimeout = time.Second

// convertErr converts the passed bolt error into a database error with an
// equivalent error kind and the passed description.
func convertErr(desc string, boltErr error) database.Error {
	kind := database.ErrDriverSpecific
	switch {
	case errors.Is(boltErr, bolt.ErrDatabaseNotOpen):
		kind = database.ErrDbNotOpen
	case errors.Is(boltErr, bolt.ErrTxNotWritable):
		kind = database.ErrTxNotWritable
	case errors.Is(boltErr, bolt.ErrBucketNotFound):
		kind = database.ErrBucketNotFound
	case errors.Is(boltErr, bolt.ErrBucketNameRequired):
		kind = database.ErrBucketNameRequired
	case errors.Is(boltErr, bolt.ErrKeyRequired):
		kind = database.ErrKeyRequired
	case errors.Is(boltErr, bolt.ErrInvalid), errors.Is(boltErr, bolt.ErrChecksum):
		kind = database.ErrInvalid
	}
	return database.MakeError(kind, desc, boltErr)
}

// db wraps a bolt database and implements the database.DB interface.
type db struct {
	bdb *bolt.DB
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

// View invokes the passed function in the context of a managed read-only bolt
// transaction.
//
// This function is part of the database.DB interface implementation.
func (db *db) View(fn func(database.Tx) error) error {
	return db.run(db.bdb.View, fn)
}

// Update invokes the passed function in the context of a managed read-write
// bolt transaction.
//
// This function is part of the database.DB interface implementation.
func (db *db) Update(fn func(database.Tx) error) error {
	return db.run(db.bdb.Update, fn)
}

// run invokes fn through the provided bolt transaction runner.  Errors that
// originate in bolt itself are converted while errors returned by fn are
// passed through untouched.
func (db *db) run(runner func(func(*bolt.Tx) error) error, fn func(database.Tx) error) error {
	var userErr error
	err := runner(func(btx *bolt.Tx) error {
		userErr = fn(&transaction{btx: btx})
		return userErr
	})
	if err == nil || userErr != nil {
		return err
	}
	return convertErr("database transaction failed", err)
}

// Close cleanly shuts down the database and syncs all data.
//
// This function is part of the database.DB interface implementation.
func (db *db) Close() error {
	if err := db.bdb.Close(); err != nil {
		return convertErr("failed to close database", err)
	}
	return nil
}

// openDB opens the database file at the provided path.
// database.ErrDbDoesNotExist is returned if the database doesn't exist and the
// create flag is not set.
func openDB(dbPath string, create bool) (database.DB, error) {
	_, err := os.Stat(dbPath)
	dbExists := err == nil
	if !create && !dbExists {
		str := fmt.Sprintf("database %q does not exist", dbPath)
		return nil, database.MakeError(database.ErrDbDoesNotExist, str, nil)
	}
	if create && dbExists {
		str := fmt.Sprintf("database %q already exists", dbPath)
		return nil, database.MakeError(database.ErrDbExists, str, nil)
	}

	bdb, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, convertErr("failed to open database", err)
	}

	log.Tracef("Opened bolt database at %q", dbPath)
	return &db{bdb: bdb}, nil
}
