// Copyright (c) 2015-2016 The btcsuite developers
// Copyright (c) 2016-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package database

// ErrorKind identifies a kind of error.  It has full support for errors.Is and
// errors.As, so the caller can directly check against an error kind when
// determining the reason for an error.
type ErrorKind string

// These constants are used to identify a specific database Error.
const (
	// ------------------------------------------
	// Errors related to driver registration.
	// ------------------------------------------

	// ErrDbTypeRegistered indicates two different database drivers
	// attempt to register with the name database type.
	ErrDbTypeRegistered = ErrorKind("ErrDbTypeRegistered")

	// ------------------------------------------
	// Errors related to database functions.
	// ------------------------------------------

	// ErrDbUnknownType indicates there is no driver registered for
	// the specified database type.
	ErrDbUnknownType = ErrorKind("ErrDbUnknownType")

	// ErrDbDoesNotExist indicates open is called for a database that
	// does not exist.
	ErrDbDoesNotExist = ErrorKind("ErrDbDoesNotExist")

	// ErrDbExists indicates create is called for a database that
	// already exists.
	ErrDbExists = ErrorKind("ErrDbExists")

	// ErrDbNotOpen indicates a database instance is accessed before
	// it is opened or after it is closed.
	ErrDbNotOpen = ErrorKind("ErrDbNotOpen")

	// ErrInvalid indicates the specified database is not valid, such as
	// being handed the wrong arguments.
	ErrInvalid = ErrorKind("ErrInvalid")

	// ------------------------------------------
	// Errors related to database transactions.
	// ------------------------------------------

	// ErrTxNotWritable indicates an operation that requires write access to
	// the database was attempted against a read-only transaction.
	ErrTxNotWritable = ErrorKind("ErrTxNotWritable")

	// ------------------------------------------
	// Errors related to metadata operations.
	// ------------------------------------------

	// ErrBucketNotFound indicates an attempt to access a bucket that has
	// not been created yet.
	ErrBucketNotFound = ErrorKind("ErrBucketNotFound")

	// ErrBucketNameRequired indicates an attempt to create a bucket with a
	// blank name.
	ErrBucketNameRequired = ErrorKind("ErrBucketNameRequired")

	// ErrBucketNameTooLarge indicates an attempt to create a bucket with a
	// name that is longer than the driver supports.
	ErrBucketNameTooLarge = ErrorKind("ErrBucketNameTooLarge")

	// ErrKeyRequired indicates at attempt to insert a zero-length key.
	ErrKeyRequired = ErrorKind("ErrKeyRequired")

	// ------------------------------------------
	// Support for driver-specific errors.
	// ------------------------------------------

	// ErrDriverSpecific indicates the Err field is a driver-specific error.
	// This provides a mechanism for drivers to plug-in their own custom
	// errors for any situations which aren't already covered by the error
	// codes provided by this package.
	ErrDriverSpecific = ErrorKind("ErrDriverSpecific")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}

// Error identifies an error related to database operation. It has
// full support for errors.Is and errors.As, so the caller can ascertain the
// specific reason for the error by checking the underlying error.
//
// RawErr contains the original error in the case where an error has been
// converted from a driver error.
type Error struct {
	Err         error
	RawErr      error
	Description string
}

// Error satisfies the error interface and prints human-readable errors.
func (e Error) Error() string {
	if e.RawErr != nil {
		return e.Description + ": " + e.RawErr.Error()
	}
	return e.Description
}

// Unwrap returns the underlying wrapped error.
func (e Error) Unwrap() error {
	return e.Err
}

// makeError creates an Error given a set of arguments.
func makeError(kind ErrorKind, desc string) Error {
	return Error{Err: kind, Description: desc}
}

// MakeError creates an Error given a set of arguments.  It is exported so
// drivers can return errors of the kinds defined by this package.
func MakeError(kind ErrorKind, desc string, rawErr error) Error {
	return Error{Err: kind, Description: desc, RawErr: rawErr}
}
