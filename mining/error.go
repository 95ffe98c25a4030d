// Copyright (c) 2015-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mining

// ErrorKind identifies a kind of error.  It has full support for errors.Is
// and errors.As, so the caller can directly check against an error kind
// when determining the reason for an error.
type ErrorKind string

// These constants are used to identify a specific Error.
const (
	// ErrCreateCoinbase indicates the coinbase transaction for a block could
	// not be created.
	ErrCreateCoinbase = ErrorKind("ErrCreateCoinbase")

	// ErrTemplateTx indicates a transaction supplied for a block template
	// does not connect to the chain.
	ErrTemplateTx = ErrorKind("ErrTemplateTx")

	// ErrBlockTooLarge indicates a block template would exceed the maximum
	// block size of the network.
	ErrBlockTooLarge = ErrorKind("ErrBlockTooLarge")

	// ErrBadTimestamp indicates a block template timestamp can't be
	// encoded in a block header.
	ErrBadTimestamp = ErrorKind("ErrBadTimestamp")

	// ErrGenerateUnsupported indicates the network does not allow blocks to
	// be generated with the CPU miner.
	ErrGenerateUnsupported = ErrorKind("ErrGenerateUnsupported")

	// ErrMinerRunning indicates the CPU miner was asked to generate blocks
	// while it is already generating blocks.
	ErrMinerRunning = ErrorKind("ErrMinerRunning")

	// ErrNoPayScripts indicates the CPU miner has no scripts to pay
	// generated blocks to.
	ErrNoPayScripts = ErrorKind("ErrNoPayScripts")

	// ErrNonceExhausted indicates the nonce space of every worker was
	// searched without finding a solution.
	ErrNonceExhausted = ErrorKind("ErrNonceExhausted")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}

// Error identifies a mining error.  It has full support for errors.Is and
// errors.As, so the caller can ascertain the specific reason for the error by
// checking the underlying error.
type Error struct {
	Err         error
	Description string
}

// Error satisfies the error interface and prints human-readable errors.
func (e Error) Error() string {
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
