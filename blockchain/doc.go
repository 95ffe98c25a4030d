// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package blockchain implements ledger block handling and chain selection rules.

The ledger block handling and chain selection rules are an integral, and quite
likely the most important, part of the ledger.  At its core, the ledger is a
distributed consensus of which blocks are valid and which ones will comprise
the main block chain (public ledger) that ultimately determines accepted
transactions, so it is extremely important that fully validating nodes agree
on all rules.

At a high level, this package provides support for inserting new blocks into
the block chain according to the aforementioned rules.  It includes
functionality such as rejecting invalid blocks, validating the proof of work of
every header, connecting blocks to the set of unspent transaction outputs,
switching to a better competing chain, and persisting the chain along with a
transaction index and merkle inclusion proofs to a database.

# Block Processing Overview

Before a block is allowed into the block chain, it must go through an intensive
series of validation rules.  The following list serves as a general outline of
those rules to provide some intuition into what is going on under the hood,
but is by no means exhaustive:

  - Reject duplicate blocks
  - Perform a series of sanity checks on the block and its transactions such
    as verifying the merkle root, ensuring the first and only the first
    transaction is a coinbase that commits to the block height, and ensuring
    no transaction is included twice
  - Ensure the header extends the current tip with the expected height,
    previous block, target, a timestamp within the allowed drift, and valid
    proof of work in every slot the network uses
  - Connect the block to a copy of the unspent output set, rejecting missing,
    double spent, and immature outputs
  - Ensure the inputs of every transaction cover its outputs and the coinbase
    does not pay more than the subsidy plus the fees
  - Validate every input script concurrently
  - Store the block and the new chain state in a single database transaction
    and only then replace the in-memory state

# Headers

HeaderChain is an append-only, concurrency safe sequence of headers.  Chains
are compared with BetterChain, which prefers more cumulative work and then
more headers.  A reorganization builds a new HeaderChain from the competing
headers instead of rewinding the current one.

# Errors

Errors returned by this package are either the raw errors provided by
underlying calls or of type blockchain.RuleError.  This allows the caller to
differentiate between unexpected errors, such as database errors, versus
errors due to rule violations through errors.As.  In addition, callers can
programmatically determine the specific rule violation by using errors.Is with
any of the ErrorKind values.
*/
package blockchain
