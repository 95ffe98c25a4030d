// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package standalone

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/ledgerd/ledgerd/wire"
)

// noChild marks an absent child index in the node arena.
const noChild = -1

// merkleNode is a single node of a merkle tree.  Leaf nodes carry their hash
// directly while internal nodes refer to their children by index into the
// arena that owns them.
type merkleNode struct {
	left  int
	right int
	leaf  chainhash.Hash
}

// isLeaf returns whether the node is a leaf.
func (n *merkleNode) isLeaf() bool {
	return n.left == noChild
}

// MerkleTree is a binary merkle tree stored as an arena of nodes addressed by
// index.  Leaves are padded to the next power of two by repeating the final
// leaf and the tree is formed by recursively splitting the leaves at their
// midpoint.  Internal node digests are the single SHA-256 of the concatenation
// of the digests of their children and are computed on demand and memoized.
//
// A tree is not safe for concurrent access until Root has been called once,
// at which point every digest is memoized and the tree is read only.
type MerkleTree struct {
	nodes     []merkleNode
	digests   []chainhash.Hash
	computed  []bool
	root      int
	numLeaves int
	depth     uint
}

// nextPowerOfTwo returns the next highest power of two from a given number if
// it is not already a power of two.  This is a helper function used during the
// calculation of a merkle tree.
func nextPowerOfTwo(n int) int {
	// Return the number if it's already a power of 2.
	if n&(n-1) == 0 {
		return n
	}

	// Figure out and return the next power of two.
	exponent := uint(0)
	for v := n; v > 0; v >>= 1 {
		exponent++
	}
	return 1 << exponent
}

// NewMerkleTree builds a merkle tree over the provided leaves.  The leaves are
// not modified.
//
// A tree with no leaves has the zero hash as its root and a tree with a single
// leaf has that leaf as its root.
func NewMerkleTree(leaves []chainhash.Hash) *MerkleTree {
	t := &MerkleTree{root: noChild, numLeaves: len(leaves)}
	if len(leaves) == 0 {
		return t
	}

	// Pad the leaves by repeating the final one until there is a power of two
	// of them.  The resulting tree is perfect, so its depth is the base two
	// logarithm of the padded leaf count.
	padded := nextPowerOfTwo(len(leaves))
	for n := padded; n > 1; n >>= 1 {
		t.depth++
	}
	t.nodes = make([]merkleNode, 0, padded*2-1)
	leafAt := func(i int) chainhash.Hash {
		if i >= len(leaves) {
			return leaves[len(leaves)-1]
		}
		return leaves[i]
	}
	t.root = t.build(0, padded, leafAt)
	t.digests = make([]chainhash.Hash, len(t.nodes))
	t.computed = make([]bool, len(t.nodes))
	return t
}

// build appends the subtree covering the padded leaves in [start, end) to the
// arena and returns the index of its root node.
func (t *MerkleTree) build(start, end int, leafAt func(int) chainhash.Hash) int {
	if end-start == 1 {
		t.nodes = append(t.nodes, merkleNode{
			left:  noChild,
			right: noChild,
			leaf:  leafAt(start),
		})
		return len(t.nodes) - 1
	}

	mid := start + (end-start)/2
	left := t.build(start, mid, leafAt)
	right := t.build(mid, end, leafAt)
	t.nodes = append(t.nodes, merkleNode{left: left, right: right})
	return len(t.nodes) - 1
}

// hashMerkleBranches returns the digest of an internal node given the digests
// of its children.
func hashMerkleBranches(left, right *chainhash.Hash) chainhash.Hash {
	var buf [chainhash.HashSize * 2]byte
	copy(buf[:chainhash.HashSize], left[:])
	copy(buf[chainhash.HashSize:], right[:])
	return chainhash.HashH(buf[:])
}

// digest returns the memoized digest of the node at the provided index,
// computing it first when needed.  A node with only a left child digests that
// child with itself.
func (t *MerkleTree) digest(idx int) chainhash.Hash {
	if t.computed[idx] {
		return t.digests[idx]
	}

	node := &t.nodes[idx]
	var d chainhash.Hash
	switch {
	case node.isLeaf():
		d = node.leaf
	case node.right == noChild:
		left := t.digest(node.left)
		d = hashMerkleBranches(&left, &left)
	default:
		left, right := t.digest(node.left), t.digest(node.right)
		d = hashMerkleBranches(&left, &right)
	}
	t.digests[idx] = d
	t.computed[idx] = true
	return d
}

// Root returns the merkle root of the tree.
func (t *MerkleTree) Root() chainhash.Hash {
	if t.root == noChild {
		return chainhash.Hash{}
	}
	return t.digest(t.root)
}

// NumLeaves returns the number of leaves the tree was created with, not
// including any padding.
func (t *MerkleTree) NumLeaves() int {
	return t.numLeaves
}

// Proof returns the inclusion proof for the leaf at the provided index.  The
// proof contains the sibling digests ordered from the leaf up to, but not
// including, the root.  It returns false when the index is out of range.
func (t *MerkleTree) Proof(leafIndex uint32) (MerkleProof, bool) {
	if uint64(leafIndex) >= uint64(t.numLeaves) {
		return MerkleProof{}, false
	}

	// Descend from the root choosing the child according to the bits of the
	// leaf index from the most significant level down while collecting the
	// digest of the other child at each level.
	siblings := make([]chainhash.Hash, t.depth)
	idx := t.root
	for level := t.depth; level > 0; level-- {
		node := &t.nodes[idx]
		next, sibling := node.left, node.right
		if leafIndex>>(level-1)&1 == 1 {
			next, sibling = node.right, node.left
		}
		if sibling == noChild {
			sibling = next
		}
		siblings[level-1] = t.digest(sibling)
		idx = next
	}

	return MerkleProof{
		Root:     t.Root(),
		Siblings: siblings,
		Position: leafIndex,
	}, true
}

// CalcMerkleRoot treats the provided slice of hashes as leaves of a merkle tree
// and returns the resulting merkle root.
//
// The leaves are padded to the next power of two by repeating the final leaf,
// so, for example, a tree with 6 leaves is computed over the leaves
// [0 1 2 3 4 5 5 5].  Internal digests are the single SHA-256 of the
// concatenation of the children.  The root of a single leaf is the leaf itself
// and the root of no leaves is the zero hash.
func CalcMerkleRoot(leaves []chainhash.Hash) chainhash.Hash {
	return NewMerkleTree(leaves).Root()
}

// CalcTxMerkleRoot calculates and returns the merkle root for the provided
// transactions.  The leaves of the tree are the transaction ids.
//
// See CalcMerkleRoot for more details on how the merkle root is calculated.
func CalcTxMerkleRoot(transactions []*wire.MsgTx) chainhash.Hash {
	if len(transactions) == 0 {
		// All zero.
		return chainhash.Hash{}
	}

	// Create the merkle tree leaves from the transaction ids.
	leaves := make([]chainhash.Hash, 0, len(transactions))
	for _, tx := range transactions {
		leaves = append(leaves, tx.TxHash())
	}
	return CalcMerkleRoot(leaves)
}
