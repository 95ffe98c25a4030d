// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2015-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// AssertError identifies an error that indicates an internal code consistency
// issue and should be treated as a critical and unrecoverable error.
type AssertError string

// Error returns the assertion error as a human-readable string and satisfies
// the error interface.
func (e AssertError) Error() string {
	return "assertion failed: " + string(e)
}

// ErrorKind identifies a kind of error.  It has full support for errors.Is and
// errors.As, so the caller can directly check against an error kind when
// determining the reason for an error.
type ErrorKind string

// These constants are used to identify a specific ErrorKind.
const (
	// ErrDuplicateBlock indicates a block with the same hash already
	// exists.
	ErrDuplicateBlock = ErrorKind("ErrDuplicateBlock")

	// ErrUnknownBlock indicates a requested block does not exist in the
	// main chain.
	ErrUnknownBlock = ErrorKind("ErrUnknownBlock")

	// ErrUnknownTx indicates a requested transaction is not part of any
	// block in the main chain.
	ErrUnknownTx = ErrorKind("ErrUnknownTx")

	// ErrBadGenesis indicates a genesis header does not have a height of
	// zero, a zero previous block hash and the proof of work limit as its
	// target.
	ErrBadGenesis = ErrorKind("ErrBadGenesis")

	// ErrBadBlockHeight indicates that a block header's embedded block
	// height is not one more than the height of the current tip.
	ErrBadBlockHeight = ErrorKind("ErrBadBlockHeight")

	// ErrBadPrevBlock indicates that a block header does not reference the
	// current tip as its previous block.
	ErrBadPrevBlock = ErrorKind("ErrBadPrevBlock")

	// ErrBlockTooBig indicates the serialized block size exceeds the
	// maximum allowed size.
	ErrBlockTooBig = ErrorKind("ErrBlockTooBig")

	// ErrTimeTooOld indicates the time is either before the timestamp of
	// the current tip or further in the past than the allowed drift from
	// the reference time.
	ErrTimeTooOld = ErrorKind("ErrTimeTooOld")

	// ErrTimeTooNew indicates the time is too far in the future as compared
	// the reference time.
	ErrTimeTooNew = ErrorKind("ErrTimeTooNew")

	// ErrInvalidTime indicates the time is before the unix epoch or beyond
	// the range a header is able to encode.
	ErrInvalidTime = ErrorKind("ErrInvalidTime")

	// ErrUnexpectedDifficulty indicates the specified target does not align
	// with the expected value either because it doesn't match the
	// calculated value based on the retarget rules or it is out of the
	// valid range.
	ErrUnexpectedDifficulty = ErrorKind("ErrUnexpectedDifficulty")

	// ErrHighHash indicates a proof of work digest of the block header is
	// higher than the target.
	ErrHighHash = ErrorKind("ErrHighHash")

	// ErrBadPowAlgo indicates a proof of work slot of the block header does
	// not carry the algorithm the network requires for that slot.
	ErrBadPowAlgo = ErrorKind("ErrBadPowAlgo")

	// ErrBadPowHash indicates a proof of work slot of the block header
	// carries a digest that is not the one its algorithm produces over the
	// header.
	ErrBadPowHash = ErrorKind("ErrBadPowHash")

	// ErrBadMerkleRoot indicates the calculated merkle root does not match
	// the expected value.
	ErrBadMerkleRoot = ErrorKind("ErrBadMerkleRoot")

	// ErrNoTransactions indicates the block does not have a least one
	// transaction.  A valid block must have at least the coinbase
	// transaction.
	ErrNoTransactions = ErrorKind("ErrNoTransactions")

	// ErrNoTxInputs indicates a transaction does not have any inputs.  A
	// valid transaction must have at least one input.
	ErrNoTxInputs = ErrorKind("ErrNoTxInputs")

	// ErrNoTxOutputs indicates a transaction does not have any outputs.  A
	// valid transaction must have at least one output.
	ErrNoTxOutputs = ErrorKind("ErrNoTxOutputs")

	// ErrTxTooBig indicates a transaction exceeds the maximum allowed size
	// when serialized.
	ErrTxTooBig = ErrorKind("ErrTxTooBig")

	// ErrBadTxOutValue indicates an output value for a transaction is
	// invalid in some way such as being out of range.
	ErrBadTxOutValue = ErrorKind("ErrBadTxOutValue")

	// ErrDuplicateTxInputs indicates a transaction references the same
	// input more than once.
	ErrDuplicateTxInputs = ErrorKind("ErrDuplicateTxInputs")

	// ErrBadTxInput indicates a transaction input is invalid in some way
	// such as referencing a previous transaction outpoint which is out of
	// range or not referencing one at all.
	ErrBadTxInput = ErrorKind("ErrBadTxInput")

	// ErrMissingTxOut indicates a transaction output referenced by an input
	// either does not exist or has already been spent.
	ErrMissingTxOut = ErrorKind("ErrMissingTxOut")

	// ErrDuplicateSpend indicates more than one input of the transactions
	// in a block spends the same output.
	ErrDuplicateSpend = ErrorKind("ErrDuplicateSpend")

	// ErrOverwriteTx indicates a block contains a transaction whose outputs
	// would overwrite outputs that are still unspent.
	ErrOverwriteTx = ErrorKind("ErrOverwriteTx")

	// ErrImmatureSpend indicates a transaction is attempting to spend a
	// coinbase that has not yet reached the required maturity.
	ErrImmatureSpend = ErrorKind("ErrImmatureSpend")

	// ErrSpendTooHigh indicates a transaction is attempting to spend more
	// value than the sum of all of its inputs.
	ErrSpendTooHigh = ErrorKind("ErrSpendTooHigh")

	// ErrDuplicateTx indicates a block contains an identical transaction
	// (or at least two transactions which hash to the same value).  A
	// valid block may only contain unique transactions.
	ErrDuplicateTx = ErrorKind("ErrDuplicateTx")

	// ErrFirstTxNotCoinbase indicates the first transaction in a block
	// is not a coinbase transaction.
	ErrFirstTxNotCoinbase = ErrorKind("ErrFirstTxNotCoinbase")

	// ErrMultipleCoinbases indicates a block contains more than one
	// coinbase transaction.
	ErrMultipleCoinbases = ErrorKind("ErrMultipleCoinbases")

	// ErrBadCoinbaseScriptLen indicates the length of the signature script
	// for a coinbase transaction is not within the valid range.
	ErrBadCoinbaseScriptLen = ErrorKind("ErrBadCoinbaseScriptLen")

	// ErrBadCoinbaseHeight indicates the signature script of a coinbase
	// transaction does not commit to the height of its block.
	ErrBadCoinbaseHeight = ErrorKind("ErrBadCoinbaseHeight")

	// ErrBadCoinbaseValue indicates the amount of a coinbase value does
	// not match the expected value of the subsidy plus the sum of all fees.
	ErrBadCoinbaseValue = ErrorKind("ErrBadCoinbaseValue")

	// ErrScriptMalformed indicates a transaction script is malformed in
	// some way.  For example, it might be longer than the maximum allowed
	// length or fail to parse.
	ErrScriptMalformed = ErrorKind("ErrScriptMalformed")

	// ErrScriptValidation indicates the result of executing transaction
	// script failed.  The error covers any failure when executing scripts
	// such signature verification failures and execution past the end of
	// the stack.
	ErrScriptValidation = ErrorKind("ErrScriptValidation")

	// ErrBadReorg indicates a reorganization was requested from a fork
	// point that is not part of the current chain.
	ErrBadReorg = ErrorKind("ErrBadReorg")

	// ErrReorgNotBetter indicates a reorganization was requested to a chain
	// that does not have more work than the current chain.
	ErrReorgNotBetter = ErrorKind("ErrReorgNotBetter")

	// ErrCorruptUtxoSet indicates a serialized unspent output set could not
	// be decoded.
	ErrCorruptUtxoSet = ErrorKind("ErrCorruptUtxoSet")

	// ErrMissingGenesis indicates a chain was requested for an empty
	// database without providing the genesis block to bootstrap it.
	ErrMissingGenesis = ErrorKind("ErrMissingGenesis")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}

// ContextError wraps an error with additional context.  It has full support for
// errors.Is and errors.As, so the caller can ascertain the specific wrapped
// error.
//
// RawErr contains the original error in the case where an error has been
// converted.
type ContextError struct {
	Err         error
	Description string
	RawErr      error
}

// Error satisfies the error interface and prints human-readable errors.
func (e ContextError) Error() string {
	return e.Description
}

// Unwrap returns the underlying wrapped error.
func (e ContextError) Unwrap() error {
	return e.Err
}

// contextError creates a ContextError given a set of arguments.
func contextError(kind ErrorKind, desc string) ContextError {
	return ContextError{Err: kind, Description: desc}
}

// unknownBlockError create a ContextError with the kind of error set to
// ErrUnknownBlock and a description that includes the provided hash.
func unknownBlockError(hash *chainhash.Hash) ContextError {
	str := fmt.Sprintf("block %s is not known", hash)
	return contextError(ErrUnknownBlock, str)
}

// RuleError identifies a rule violation.  It is used to indicate that
// processing of a block or transaction failed due to one of the many validation
// rules.  It has full support for errors.Is and errors.As, so the caller can
// ascertain the specific reason for the rule violation.
type RuleError struct {
	Err         error
	Description string
}

// Error satisfies the error interface and prints human-readable errors.
func (e RuleError) Error() string {
	return e.Description
}

// Unwrap returns the underlying wrapped error.
func (e RuleError) Unwrap() error {
	return e.Err
}

// ruleError creates a RuleError given a set of arguments.
func ruleError(kind ErrorKind, desc string) RuleError {
	return RuleError{Err: kind, Description: desc}
}
