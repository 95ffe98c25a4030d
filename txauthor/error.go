// Copyright (c) 2016-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txauthor

// ErrorKind identifies a kind of error.  It has full support for errors.Is
// and errors.As, so the caller can directly check against an error kind when
// determining the reason for an error.
type ErrorKind string

// These constants are used to identify a specific Error.
const (
	// ErrNoOutputs indicates a transaction was requested without any
	// outputs.
	ErrNoOutputs = ErrorKind("ErrNoOutputs")

	// ErrInvalidAmount indicates a requested output has a negative value or
	// the requested outputs overflow.
	ErrInvalidAmount = ErrorKind("ErrInvalidAmount")

	// ErrInvalidIndex indicates an input index that is out of range for the
	// transaction.
	ErrInvalidIndex = ErrorKind("ErrInvalidIndex")

	// ErrMissingUtxo indicates an input references an output that is not in
	// the unspent output set.
	ErrMissingUtxo = ErrorKind("ErrMissingUtxo")

	// ErrMissingKey indicates the key store does not hold the private key
	// for the public key hash an output is locked to.
	ErrMissingKey = ErrorKind("ErrMissingKey")

	// ErrUnsupportedScript indicates an input references an output whose
	// public key script is not a pay-to-pubkey-hash script.
	ErrUnsupportedScript = ErrorKind("ErrUnsupportedScript")

	// ErrScriptFailed indicates the scripts of an input did not validate.
	ErrScriptFailed = ErrorKind("ErrScriptFailed")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}

// Error identifies an error related to authoring a transaction.  It has full
// support for errors.Is and errors.As, so the caller can ascertain the
// specific reason for the error by checking the underlying error.
//
// RawErr contains the original error when the error was caused by another
// package, such as the script engine.
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
func makeError(kind ErrorKind, desc string, rawErr error) Error {
	return Error{Err: kind, Description: desc, RawErr: rawErr}
}

// SignError is the error for a single input the Signer was unable to sign.
type SignError struct {
	InputIndex int
	Err        error
}

// Error satisfies the error interface and prints human-readable errors.
func (e SignError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying wrapped error.
func (e SignError) Unwrap() error {
	return e.Err
}
