// Copyright (c) 2016-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package bdb

import (
	"github.com/ledgerd/ledgerd/database"
	bolt "go.etcd.io/bbolt"
)

// transaction wraps a bolt transaction and implements the database.Tx
// interface.
type transaction struct {
	btx *bolt.Tx
}

// Enforce transaction implements the database.Tx interface.
var _ database.Tx = (*transaction)(nil)

// Writable returns whether or not the transaction is writable.
//
// This function is part of the database.Tx interface implementation.
func (tx *transaction) Writable() bool {
	return tx.btx.Writable()
}

// Bucket retrieves the bucket with the given name.  Returns nil if the bucket
// does not exist.
//
// This function is part of the database.Tx interface implementation.
func (tx *transaction) Bucket(name []byte) database.Bucket {
	b := tx.btx.Bucket(name)
	if b == nil {
		return nil
	}
	return &bucket{b: b}
}

// CreateBucketIfNotExists creates and returns a new bucket with the given name
// if it does not already exist.
//
// This function is part of the database.Tx interface implementation.
func (tx *transaction) CreateBucketIfNotExists(name []byte) (database.Bucket, error) {
	if len(name) == 0 {
		return nil, database.MakeError(database.ErrBucketNameRequired,
			"bucket name required", nil)
	}
	if !tx.Writable() {
		return nil, database.MakeError(database.ErrTxNotWritable,
			"create bucket requires a writable database transaction", nil)
	}
	b, err := tx.btx.CreateBucketIfNotExists(name)
	if err != nil {
		return nil, convertErr("failed to create bucket", err)
	}
	return &bucket{b: b}, nil
}

// DeleteBucket removes the bucket with the given name along with every key it
// holds.
//
// This function is part of the database.Tx interface implementation.
func (tx *transaction) DeleteBucket(name []byte) error {
	if !tx.Writable() {
		return database.MakeError(database.ErrTxNotWritable,
			"delete bucket requires a writable database transaction", nil)
	}
	if err := tx.btx.DeleteBucket(name); err != nil {
		return convertErr("failed to delete bucket", err)
	}
	return nil
}

// bucket wraps a bolt bucket and implements the database.Bucket interface.
type bucket struct {
	b *bolt.Bucket
}

// Enforce bucket implements the database.Bucket interface.
var _ database.Bucket = (*bucket)(nil)

// Writable returns whether or not the bucket is writable.
//
// This function is part of the database.Bucket interface implementation.
func (b *bucket) Writable() bool {
	return b.b.Writable()
}

// Get returns the value for the given key.  Returns nil if the key does not
// exist in this bucket.
//
// This function is part of the database.Bucket interface implementation.
func (b *bucket) Get(key []byte) []byte {
	if len(key) == 0 {
		return nil
	}
	return b.b.Get(key)
}

// checkWrite ensures a write with the provided key may be performed.
func (b *bucket) checkWrite(key []byte) error {
	if !b.Writable() {
		return database.MakeError(database.ErrTxNotWritable,
			"write requires a writable database transaction", nil)
	}
	if len(key) == 0 {
		return database.MakeError(database.ErrKeyRequired, "key required",
			nil)
	}
	return nil
}

// Put saves the specified key/value pair to the bucket.
//
// This function is part of the database.Bucket interface implementation.
func (b *bucket) Put(key, value []byte) error {
	if err := b.checkWrite(key); err != nil {
		return err
	}
	if err := b.b.Put(key, value); err != nil {
		return convertErr("failed to put key", err)
	}
	return nil
}

// Delete removes the specified key from the bucket.
//
// This function is part of the database.Bucket interface implementation.
func (b *bucket) Delete(key []byte) error {
	if err := b.checkWrite(key); err != nil {
		return err
	}
	if err := b.b.Delete(key); err != nil {
		return convertErr("failed to delete key", err)
	}
	return nil
}

// ForEach invokes the passed function with every key/value pair in the bucket
// in ascending key order.
//
// This function is part of the database.Bucket interface implementation.
func (b *bucket) ForEach(fn func(k, v []byte) error) error {
	return b.b.ForEach(fn)
}
