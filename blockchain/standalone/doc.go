// Copyright (c) 2019-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package standalone provides standalone functions useful for working with the
ledger consensus rules.

The primary goal of offering these functions via a separate package is to keep
the required dependencies to a minimum as compared to the blockchain package.

It is ideal for applications such as lightweight clients that need to ensure
basic security properties hold.  For example, a light client needs to prove
that the block headers all connect together, that they satisfy the proof of
work requirements, and that a given transaction is committed to by a header.

# Function categories

The provided functions fall into the following categories:

  - Proof-of-work
  - Merkle trees
  - Merkle tree inclusion proofs
  - Subsidy calculation
  - Coinbase transaction identification
  - Transaction sanity checking

# Proof-of-work

  - Converting between big-endian header targets and unsigned 256-bit integers
  - Calculating work values based on the target difficulty
  - Checking a proof of work hash satisfies a target difficulty and that the
    target difficulty is within a valid range
  - Calculating the next target difficulty from the realized timespan of a
    retarget period

# Merkle trees

Trees are built over a power of two number of leaves by repeating the final
leaf.  Each internal node is the single SHA-256 of the concatenation of its
children.

  - Calculation of the root from individual leaf hashes
  - Calculation of the root from a slice of transactions
  - MerkleTxs pairs transactions with their tree and per-transaction proofs

# Merkle tree inclusion proofs

  - Generate an inclusion proof for a given tree and leaf index
  - Verify a leaf is a member of the tree at a given index via the proof
  - Serialize proofs for storage

# Errors

Errors returned by this package are of type standalone.RuleError.  This allows
the caller to differentiate between errors further up the call stack through
type assertions.  In addition, callers can programmatically determine the
specific rule violation by making use of errors.Is with the ErrorKind
constants.
*/
package standalone
