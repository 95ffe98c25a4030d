// Copyright (c) 2015-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package standalone

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/ledgerd/ledgerd/wire"
)

// MerkleTxs pairs an ordered list of transactions with the merkle tree over
// their ids and an inclusion proof for each transaction keyed by its id.
//
// The transactions are copied on creation, so later changes to the originals
// do not affect it.  It is safe for concurrent access.
type MerkleTxs struct {
	txs    []*wire.MsgTx
	ids    []chainhash.Hash
	root   chainhash.Hash
	proofs map[chainhash.Hash]MerkleProof
}

// NewMerkleTxs builds the merkle tree over the provided transactions along with
// the inclusion proof for each of them.  When the same transaction appears more
// than once, the proof for its first position is kept.
func NewMerkleTxs(txs []*wire.MsgTx) *MerkleTxs {
	m := &MerkleTxs{
		txs:    make([]*wire.MsgTx, 0, len(txs)),
		ids:    make([]chainhash.Hash, 0, len(txs)),
		proofs: make(map[chainhash.Hash]MerkleProof, len(txs)),
	}
	for _, tx := range txs {
		m.txs = append(m.txs, tx.Copy())
		m.ids = append(m.ids, tx.TxHash())
	}

	root, proofs := GenerateProofsAndRoot(m.ids)
	m.root = root
	for i := range proofs {
		if _, ok := m.proofs[m.ids[i]]; ok {
			continue
		}
		m.proofs[m.ids[i]] = proofs[i]
	}
	return m
}

// Root returns the merkle root committing to the transactions.
func (m *MerkleTxs) Root() chainhash.Hash {
	return m.root
}

// Len returns the number of transactions.
func (m *MerkleTxs) Len() int {
	return len(m.txs)
}

// Transactions returns copies of the transactions in order.
func (m *MerkleTxs) Transactions() []*wire.MsgTx {
	txs := make([]*wire.MsgTx, 0, len(m.txs))
	for _, tx := range m.txs {
		txs = append(txs, tx.Copy())
	}
	return txs
}

// TxHashes returns the ids of the transactions in order.
func (m *MerkleTxs) TxHashes() []chainhash.Hash {
	ids := make([]chainhash.Hash, len(m.ids))
	copy(ids, m.ids)
	return ids
}

// Proof returns the inclusion proof for the transaction with the provided id
// and whether or not such a transaction exists.
func (m *MerkleTxs) Proof(txHash *chainhash.Hash) (MerkleProof, bool) {
	proof, ok := m.proofs[*txHash]
	if !ok {
		return MerkleProof{}, false
	}
	siblings := make([]chainhash.Hash, len(proof.Siblings))
	copy(siblings, proof.Siblings)
	proof.Siblings = siblings
	return proof, true
}

// Verify recomputes the id of every transaction and returns whether each of
// them has a proof that verifies against the root and whether the root
// matches the one recomputed from the ids.
func (m *MerkleTxs) Verify() bool {
	ids := make([]chainhash.Hash, 0, len(m.txs))
	for i, tx := range m.txs {
		id := tx.TxHash()
		if id != m.ids[i] {
			return false
		}
		proof, ok := m.proofs[id]
		if !ok || proof.Root != m.root || !proof.Verify(&id) {
			return false
		}
		ids = append(ids, id)
	}
	return CalcMerkleRoot(ids) == m.root
}
