// Copyright (c) 2019-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package standalone

import (
	"bytes"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/ledgerd/ledgerd/wire"
)

// maxProofDepth is the maximum number of sibling hashes an inclusion proof can
// contain since leaf positions are 32-bit values.
const maxProofDepth = 32

// MerkleProof proves the membership of a leaf at a given position in the
// merkle tree committed to by Root.  Siblings are ordered from the leaf up to,
// but not including, the root.
type MerkleProof struct {
	Root     chainhash.Hash
	Siblings []chainhash.Hash
	Position uint32
}

// Verify returns whether the provided leaf is a member of the tree committed
// to by the proof at the position recorded in the proof.
func (p *MerkleProof) Verify(leaf *chainhash.Hash) bool {
	return VerifyInclusionProof(&p.Root, leaf, p.Position, p.Siblings)
}

// SerializeSize returns the number of bytes it would take to serialize the
// proof.
func (p *MerkleProof) SerializeSize() int {
	return chainhash.HashSize + 4 + wire.VarIntSerializeSize(uint64(len(p.Siblings))) +
		len(p.Siblings)*chainhash.HashSize
}

// Serialize encodes the proof to w using the canonical encoding: the root,
// the position as a big-endian uint32, and the sibling count as a varint
// followed by each sibling.
func (p *MerkleProof) Serialize(w io.Writer) error {
	if _, err := w.Write(p.Root[:]); err != nil {
		return err
	}
	if err := wire.WriteUint32BE(w, p.Position); err != nil {
		return err
	}
	if err := wire.WriteVarInt(w, uint64(len(p.Siblings))); err != nil {
		return err
	}
	for i := range p.Siblings {
		if _, err := w.Write(p.Siblings[i][:]); err != nil {
			return err
		}
	}
	return nil
}

// Bytes returns the serialized proof.
func (p *MerkleProof) Bytes() []byte {
	buf := bytes.NewBuffer(make([]byte, 0, p.SerializeSize()))
	// Writes to a bytes.Buffer never fail.
	_ = p.Serialize(buf)
	return buf.Bytes()
}

// MerkleProofFromBytes decodes a proof previously encoded with Bytes.  An
// error with kind ErrMalformedProof is returned when the data is truncated,
// declares more siblings than a proof can have, or has trailing bytes.
func MerkleProofFromBytes(b []byte) (*MerkleProof, error) {
	r := bytes.NewReader(b)
	var p MerkleProof
	if _, err := io.ReadFull(r, p.Root[:]); err != nil {
		str := fmt.Sprintf("unable to read proof root: %v", err)
		return nil, ruleError(ErrMalformedProof, str)
	}
	pos, err := wire.ReadUint32BE(r)
	if err != nil {
		str := fmt.Sprintf("unable to read proof position: %v", err)
		return nil, ruleError(ErrMalformedProof, str)
	}
	p.Position = pos
	count, err := wire.ReadVarInt(r)
	if err != nil {
		str := fmt.Sprintf("unable to read proof sibling count: %v", err)
		return nil, ruleError(ErrMalformedProof, str)
	}
	if count > maxProofDepth {
		str := fmt.Sprintf("proof has %d siblings which is more than the max "+
			"allowed of %d", count, maxProofDepth)
		return nil, ruleError(ErrMalformedProof, str)
	}
	if count > 0 {
		p.Siblings = make([]chainhash.Hash, count)
	}
	for i := range p.Siblings {
		if _, err := io.ReadFull(r, p.Siblings[i][:]); err != nil {
			str := fmt.Sprintf("unable to read proof sibling %d: %v", i, err)
			return nil, ruleError(ErrMalformedProof, str)
		}
	}
	if r.Len() != 0 {
		str := fmt.Sprintf("proof has %d trailing bytes", r.Len())
		return nil, ruleError(ErrMalformedProof, str)
	}
	return &p, nil
}

// GenerateProofsAndRoot builds the merkle tree for the provided leaves and
// returns its root along with an inclusion proof for every leaf in order.
func GenerateProofsAndRoot(leaves []chainhash.Hash) (chainhash.Hash, []MerkleProof) {
	tree := NewMerkleTree(leaves)
	root := tree.Root()
	if len(leaves) == 0 {
		return root, nil
	}
	proofs := make([]MerkleProof, 0, len(leaves))
	for i := range leaves {
		proof, _ := tree.Proof(uint32(i))
		proofs = append(proofs, proof)
	}
	return root, proofs
}

// GenerateInclusionProof treats the provided slice of hashes as leaves of a
// merkle tree and generates and returns a merkle tree inclusion proof for the
// given leaf index.  The proof can be used to efficiently prove the leaf
// associated with given leaf index is a member of the tree.
//
// A merkle tree inclusion proof consists of the ordered sibling hashes from the
// leaf up to, but not including, the root.  The position of the leaf supplies
// the order each sibling is combined in.
//
// The results will be nil when the index is out of range.  A single leaf tree
// also has no siblings, so its proof is nil as well.
func GenerateInclusionProof(leaves []chainhash.Hash, leafIndex uint32) []chainhash.Hash {
	proof, ok := NewMerkleTree(leaves).Proof(leafIndex)
	if !ok || len(proof.Siblings) == 0 {
		return nil
	}
	return proof.Siblings
}

// VerifyInclusionProof returns whether or not the given leaf hash, at the
// given leaf index, is a member of the merkle tree with the given root hash
// using the provided inclusion proof.
//
// Bit i of the leaf index selects the order at level i: a clear bit means the
// running digest is the left child, a set bit means it is the right child.
// The tree is never materialized.
func VerifyInclusionProof(root, leaf *chainhash.Hash, leafIndex uint32, proof []chainhash.Hash) bool {
	if len(proof) > maxProofDepth {
		return false
	}

	// The leaf index must fit within the number of levels in the proof.
	if len(proof) < maxProofDepth && uint64(leafIndex)>>uint(len(proof)) != 0 {
		return false
	}

	cur := *leaf
	for i := range proof {
		if leafIndex>>uint(i)&1 == 0 {
			cur = hashMerkleBranches(&cur, &proof[i])
		} else {
			cur = hashMerkleBranches(&proof[i], &cur)
		}
	}
	return cur == *root
}
