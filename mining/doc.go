// Copyright (c) 2016-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package mining provides block building and CPU block solving.

A BlockBuilder binds a block header to an ordered list of transactions through
the merkle tree over their ids.  FromGenesis builds the genesis block of a
network, NewBlockTemplate builds a block that extends the tip of a chain and
FromBlock re-derives the merkle tree of an existing block so it can be
verified.  Builders never modify the headers and transactions they are created
from.

SolveBlock searches the nonce space of a header with one worker goroutine per
processor until every proof of work slot in use yields a digest that does not
exceed the target.  CPUMiner ties the two together by repeatedly building,
solving and submitting blocks to a chain.
*/
package mining
