// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/decred/dcrd/crypto/blake256"
	"lukechampine.com/blake3"
)

// PowAlgo identifies the hash function used to compute a proof of work digest
// over the mining prefix of a block header.
type PowAlgo uint16

const (
	// PowAlgoNone marks an unused proof of work slot.
	PowAlgoNone PowAlgo = 0

	// PowAlgoSHA256d is double SHA-256.
	PowAlgoSHA256d PowAlgo = 1

	// PowAlgoBlake256 is BLAKE-256 with 14 rounds.
	PowAlgoBlake256 PowAlgo = 2

	// PowAlgoBlake3 is BLAKE3 with a 32 byte output.
	PowAlgoBlake3 PowAlgo = 3
)

// String returns the PowAlgo as a human-readable name.
func (a PowAlgo) String() string {
	switch a {
	case PowAlgoNone:
		return "none"
	case PowAlgoSHA256d:
		return "sha256d"
	case PowAlgoBlake256:
		return "blake256"
	case PowAlgoBlake3:
		return "blake3"
	}
	return fmt.Sprintf("unknown(%d)", uint16(a))
}

// IsKnown returns whether or not the algorithm is one that can compute a
// digest.  PowAlgoNone is not a known algorithm.
func (a PowAlgo) IsKnown() bool {
	switch a {
	case PowAlgoSHA256d, PowAlgoBlake256, PowAlgoBlake3:
		return true
	}
	return false
}

// NumPowSlots is the number of proof of work slots carried by every header.
const NumPowSlots = 2

// PowSlot is a proof of work algorithm tag paired with the digest the miner
// claims that algorithm produces over the header mining prefix.
type PowSlot struct {
	Algo PowAlgo
	Hash chainhash.Hash
}

// MaxBlockHeaderPayload is the number of bytes a block header is.
// Version 1 byte + PrevBlock and MerkleRoot hashes + Timestamp 8 bytes +
// Height 8 bytes + Target 32 bytes + Nonce 32 bytes + NumPowSlots * (Algo 2
// bytes + Hash).
const MaxBlockHeaderPayload = 1 + (chainhash.HashSize * 2) + 8 + 8 + 32 + 32 +
	NumPowSlots*(2+chainhash.HashSize)

// blockHeaderPrefixLen is the number of bytes in the mining prefix of a
// header, which is everything except the proof of work slots.
const blockHeaderPrefixLen = MaxBlockHeaderPayload -
	NumPowSlots*(2+chainhash.HashSize)

// BlockHeader defines information about a block.
type BlockHeader struct {
	// Version of the block.
	Version uint8

	// Hash of the previous block in the block chain.
	PrevBlock chainhash.Hash

	// Merkle tree reference to hash of all transactions for the block.
	MerkleRoot chainhash.Hash

	// Time the block was created.  This is, unfortunately, encoded as a
	// uint64 on the wire and therefore is limited to whole seconds.
	Timestamp time.Time

	// Height is the block number of the block in the block chain.
	Height uint64

	// Target is the big endian proof of work threshold.
	Target [32]byte

	// Nonce used to generate the block.
	Nonce [32]byte

	// PowSlots hold the algorithm tags and proof of work digests.
	PowSlots [NumPowSlots]PowSlot
}

// BlockHash computes the block identifier hash for the given block header.
// It commits to every field, including the proof of work slots.
func (h *BlockHeader) BlockHash() chainhash.Hash {
	buf := bytes.NewBuffer(make([]byte, 0, MaxBlockHeaderPayload))
	putMiningPrefix(buf, h)
	for i := range h.PowSlots {
		slot := &h.PowSlots[i]
		_ = writeElements(buf, &slot.Algo, &slot.Hash)
	}
	return chainhash.DoubleHashH(buf.Bytes())
}

// MiningPrefix returns the serialized header without its proof of work slots.
// Every proof of work digest is computed over these bytes.
func (h *BlockHeader) MiningPrefix() []byte {
	buf := bytes.NewBuffer(make([]byte, 0, blockHeaderPrefixLen))
	putMiningPrefix(buf, h)
	return buf.Bytes()
}

// CheckTimestamp returns an error with ErrInvalidTimestamp when t cannot be
// encoded as a header timestamp.  Encodable timestamps are not before the unix
// epoch and do not exceed the maximum usable number of seconds of a Go time
// value.
func CheckTimestamp(t time.Time) error {
	secs := t.Unix()
	if secs < 0 || uint64(secs) > math.MaxInt64-unixToInternal {
		str := fmt.Sprintf("timestamp %d is outside the encodable range",
			secs)
		return messageError("CheckTimestamp", ErrInvalidTimestamp, str)
	}
	return nil
}

// PowHash computes the proof of work digest of the header mining prefix with
// the given algorithm.  The second return is false for unknown algorithms.
func (h *BlockHeader) PowHash(algo PowAlgo) (chainhash.Hash, bool) {
	return PowHashPrefix(h.MiningPrefix(), algo)
}

// PowHashPrefix computes the proof of work digest of an already serialized
// mining prefix.  It allows a miner to serialize the prefix once per nonce and
// hash it with every configured algorithm.
func PowHashPrefix(prefix []byte, algo PowAlgo) (chainhash.Hash, bool) {
	switch algo {
	case PowAlgoSHA256d:
		return chainhash.DoubleHashH(prefix), true
	case PowAlgoBlake256:
		return chainhash.Hash(blake256.Sum256(prefix)), true
	case PowAlgoBlake3:
		return chainhash.Hash(blake3.Sum256(prefix)), true
	}
	return chainhash.Hash{}, false
}

// Deserialize decodes a block header from r into the receiver using the
// canonical encoding.
func (h *BlockHeader) Deserialize(r io.Reader) error {
	return readBlockHeader(r, h)
}

// Serialize encodes a block header from r into the receiver using the
// canonical encoding.
func (h *BlockHeader) Serialize(w io.Writer) error {
	return writeBlockHeader(w, h)
}

// Bytes returns a byte slice containing the serialized contents of the block
// header.
func (h *BlockHeader) Bytes() ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, MaxBlockHeaderPayload))
	err := h.Serialize(buf)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FromBytes deserializes a block header byte slice.  The entire buffer must be
// consumed.
func (h *BlockHeader) FromBytes(b []byte) error {
	return decodeFromBytes("BlockHeader.FromBytes", b, func(r *bytes.Reader) error {
		return h.Deserialize(r)
	})
}

// SerializeSize returns the number of bytes it would take to serialize the
// block header.
func (h *BlockHeader) SerializeSize() int {
	return MaxBlockHeaderPayload
}

// readBlockHeader reads a block header from r.
func readBlockHeader(r io.Reader, bh *BlockHeader) error {
	err := readElements(r, &bh.Version, &bh.PrevBlock, &bh.MerkleRoot,
		(*uint64Time)(&bh.Timestamp), &bh.Height, &bh.Target, &bh.Nonce)
	if err != nil {
		return err
	}
	for i := range bh.PowSlots {
		slot := &bh.PowSlots[i]
		err := readElements(r, &slot.Algo, &slot.Hash)
		if err != nil {
			return err
		}
	}
	return nil
}

// putMiningPrefix writes every header field except the proof of work slots to
// buf.  It matches the canonical encoding for encodable timestamps and never
// fails, committing to any other timestamp by its two's complement seconds.
func putMiningPrefix(buf *bytes.Buffer, bh *BlockHeader) {
	secs := bh.Timestamp.Unix()
	_ = writeElements(buf, &bh.Version, &bh.PrevBlock, &bh.MerkleRoot, &secs,
		&bh.Height, &bh.Target, &bh.Nonce)
}

// writeBlockHeaderPrefix writes every header field except the proof of work
// slots to w.
func writeBlockHeaderPrefix(w io.Writer, bh *BlockHeader) error {
	return writeElements(w, &bh.Version, &bh.PrevBlock, &bh.MerkleRoot,
		(*uint64Time)(&bh.Timestamp), &bh.Height, &bh.Target, &bh.Nonce)
}

// writeBlockHeader writes a block header to w.
func writeBlockHeader(w io.Writer, bh *BlockHeader) error {
	err := writeBlockHeaderPrefix(w, bh)
	if err != nil {
		return err
	}
	for i := range bh.PowSlots {
		slot := &bh.PowSlots[i]
		err := writeElements(w, &slot.Algo, &slot.Hash)
		if err != nil {
			return err
		}
	}
	return nil
}
