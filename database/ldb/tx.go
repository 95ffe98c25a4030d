// Copyright (c) 2015-2016 The btcsuite developers
// Copyright (c) 2016-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ldb

import (
	"bytes"
	"fmt"

	"github.com/ledgerd/ledgerd/database"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// transaction represents a database transaction.  It can either be read-only
// or read-write and implements the database.Tx interface.
type transaction struct {
	reader reader

	// ldbTx is only set for writable transactions.
	ldbTx *leveldb.Transaction
}

// Enforce transaction implements the database.Tx interface.
var _ database.Tx = (*transaction)(nil)

// Writable returns whether or not the transaction is writable.
//
// This function is part of the database.Tx interface implementation.
func (tx *transaction) Writable() bool {
	return tx.ldbTx != nil
}

// hasKey returns whether or not the provided key exists.
func (tx *transaction) hasKey(key []byte) bool {
	_, err := tx.reader.Get(key, nil)
	return err == nil
}

// checkBucketName ensures the provided bucket name is usable.
func checkBucketName(name []byte) error {
	if len(name) == 0 {
		return database.MakeError(database.ErrBucketNameRequired,
			"bucket name required", nil)
	}
	if len(name) > maxBucketNameLen {
		str := fmt.Sprintf("bucket name is %d bytes which exceeds the "+
			"max of %d", len(name), maxBucketNameLen)
		return database.MakeError(database.ErrBucketNameTooLarge, str, nil)
	}
	return nil
}

// Bucket retrieves the bucket with the given name.  Returns nil if the bucket
// does not exist.
//
// This function is part of the database.Tx interface implementation.
func (tx *transaction) Bucket(name []byte) database.Bucket {
	if checkBucketName(name) != nil || !tx.hasKey(bucketIndexKey(name)) {
		return nil
	}
	return &bucket{tx: tx, prefix: bucketPrefix(name)}
}

// CreateBucketIfNotExists creates and returns a new bucket with the given name
// if it does not already exist.
//
// This function is part of the database.Tx interface implementation.
func (tx *transaction) CreateBucketIfNotExists(name []byte) (database.Bucket, error) {
	if err := checkBucketName(name); err != nil {
		return nil, err
	}
	if !tx.Writable() {
		return nil, database.MakeError(database.ErrTxNotWritable,
			"create bucket requires a writable database transaction", nil)
	}

	indexKey := bucketIndexKey(name)
	if !tx.hasKey(indexKey) {
		if err := tx.ldbTx.Put(indexKey, nil, nil); err != nil {
			return nil, convertErr("failed to create bucket", err)
		}
	}
	return &bucket{tx: tx, prefix: bucketPrefix(name)}, nil
}

// DeleteBucket removes the bucket with the given name along with every key it
// holds.
//
// This function is part of the database.Tx interface implementation.
func (tx *transaction) DeleteBucket(name []byte) error {
	if err := checkBucketName(name); err != nil {
		return err
	}
	if !tx.Writable() {
		return database.MakeError(database.ErrTxNotWritable,
			"delete bucket requires a writable database transaction", nil)
	}
	indexKey := bucketIndexKey(name)
	if !tx.hasKey(indexKey) {
		str := fmt.Sprintf("bucket %q does not exist", name)
		return database.MakeError(database.ErrBucketNotFound, str, nil)
	}

	// Collect the keys first since the transaction must not be modified
	// while it is being iterated.
	var keys [][]byte
	iter := tx.reader.NewIterator(util.BytesPrefix(bucketPrefix(name)), nil)
	for iter.Next() {
		keys = append(keys, bytes.Clone(iter.Key()))
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return convertErr("failed to iterate bucket", err)
	}
	keys = append(keys, indexKey)
	for _, key := range keys {
		if err := tx.ldbTx.Delete(key, nil); err != nil {
			return convertErr("failed to delete bucket", err)
		}
	}
	return nil
}

// bucket is an internal type used to represent a collection of key/value pairs
// and implements the database.Bucket interface.
type bucket struct {
	tx     *transaction
	prefix []byte
}

// Enforce bucket implements the database.Bucket interface.
var _ database.Bucket = (*bucket)(nil)

// dataKey returns the full key for the provided bucket key.
func (b *bucket) dataKey(key []byte) []byte {
	full := make([]byte, len(b.prefix)+len(key))
	copy(full, b.prefix)
	copy(full[len(b.prefix):], key)
	return full
}

// Writable returns whether or not the bucket is writable.
//
// This function is part of the database.Bucket interface implementation.
func (b *bucket) Writable() bool {
	return b.tx.Writable()
}

// Get returns the value for the given key.  Returns nil if the key does not
// exist in this bucket.
//
// This function is part of the database.Bucket interface implementation.
func (b *bucket) Get(key []byte) []byte {
	if len(key) == 0 {
		return nil
	}
	value, err := b.tx.reader.Get(b.dataKey(key), nil)
	if err != nil {
		return nil
	}
	if value == nil {
		value = []byte{}
	}
	return value
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
	if err := b.tx.ldbTx.Put(b.dataKey(key), value, nil); err != nil {
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
	if err := b.tx.ldbTx.Delete(b.dataKey(key), nil); err != nil {
		return convertErr("failed to delete key", err)
	}
	return nil
}

// ForEach invokes the passed function with every key/value pair in the bucket
// in ascending key order.
//
// This function is part of the database.Bucket interface implementation.
func (b *bucket) ForEach(fn func(k, v []byte) error) error {
	iter := b.tx.reader.NewIterator(util.BytesPrefix(b.prefix), nil)
	defer iter.Release()
	for iter.Next() {
		if err := fn(iter.Key()[len(b.prefix):], iter.Value()); err != nil {
			return err
		}
	}
	if err := iter.Error(); err != nil {
		return convertErr("failed to iterate bucket", err)
	}
	return nil
}
