// Copyright (c) 2015-2016 The btcsuite developers
// Copyright (c) 2016-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package database

// Bucket represents a collection of key/value pairs.
type Bucket interface {
	// Get returns the value for the given key.  Returns nil if the key does
	// not exist in this bucket.  An empty slice is returned for keys that
	// exist but have no value assigned.
	//
	// NOTE: The value returned by this function is only valid during a
	// transaction.  Attempting to access it after a transaction has ended
	// results in undefined behavior.  Additionally, the value must NOT
	// be modified by the caller.
	Get(key []byte) []byte

	// Put saves the specified key/value pair to the bucket.  Keys that do
	// not already exist are added and keys that already exist are
	// overwritten.
	//
	// The interface contract guarantees at least the following errors will
	// be returned (other implementation-specific errors are possible):
	//   - ErrKeyRequired if the key is empty
	//   - ErrTxNotWritable if attempted against a read-only transaction
	Put(key, value []byte) error

	// Delete removes the specified key from the bucket.  Deleting a key
	// that does not exist does not return an error.
	//
	// The interface contract guarantees at least the following errors will
	// be returned (other implementation-specific errors are possible):
	//   - ErrKeyRequired if the key is empty
	//   - ErrTxNotWritable if attempted against a read-only transaction
	Delete(key []byte) error

	// ForEach invokes the passed function with every key/value pair in the
	// bucket in ascending key order.  Returning an error from the function
	// stops the iteration and the error is returned to the caller.
	//
	// NOTE: The slices passed to the function are only valid during the
	// call.  They must be copied if they are needed afterwards.
	ForEach(fn func(k, v []byte) error) error

	// Writable returns whether or not the bucket is writable.
	Writable() bool
}

// Tx represents a database transaction.  It can either be read-only or
// read-write.  The transaction provides access to named buckets against which
// key/value operations are performed.
//
// As would be expected with a transaction, no changes will be saved to the
// database until it has been committed.  The transaction will only provide a
// view of the database at the time it was created.  Transactions should not be
// long running operations.
type Tx interface {
	// Bucket retrieves the bucket with the given name.  Returns nil if the
	// bucket does not exist.
	Bucket(name []byte) Bucket

	// CreateBucketIfNotExists creates and returns a new bucket with the
	// given name if it does not already exist.
	//
	// The interface contract guarantees at least the following errors will
	// be returned (other implementation-specific errors are possible):
	//   - ErrBucketNameRequired if the name is empty
	//   - ErrTxNotWritable if attempted against a read-only transaction
	CreateBucketIfNotExists(name []byte) (Bucket, error)

	// DeleteBucket removes the bucket with the given name along with every
	// key it holds.
	//
	// The interface contract guarantees at least the following errors will
	// be returned (other implementation-specific errors are possible):
	//   - ErrBucketNotFound if the bucket does not exist
	//   - ErrTxNotWritable if attempted against a read-only transaction
	DeleteBucket(name []byte) error

	// Writable returns whether or not the transaction is writable.
	Writable() bool
}

// DB provides a generic interface that is used to store ledger data.  It
// performs every operation within a managed transaction so either all of the
// changes made by a writable transaction are applied or none of them are.
type DB interface {
	// Type returns the database driver type the current database instance
	// was created with.
	Type() string

	// View invokes the passed function in the context of a managed
	// read-only transaction.  Any errors returned from the user-supplied
	// function are returned from this function.
	View(fn func(tx Tx) error) error

	// Update invokes the passed function in the context of a managed
	// read-write transaction.  Any errors returned from the user-supplied
	// function will cause the transaction to be rolled back and are
	// returned from this function.  Otherwise, the transaction is committed
	// when the user-supplied function returns a nil error.
	Update(fn func(tx Tx) error) error

	// Close cleanly shuts down the database and syncs all data.  It will
	// block until all database transactions have been finalized.
	Close() error
}
