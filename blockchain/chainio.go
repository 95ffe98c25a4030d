// Copyright (c) 2015-2016 The btcsuite developers
// Copyright (c) 2015-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"encoding/binary"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/decred/dcrd/math/uint256"
	"github.com/ledgerd/ledgerd/blockchain/standalone"
	"github.com/ledgerd/ledgerd/database"
	"github.com/ledgerd/ledgerd/wire"
)

var (
	// byteOrder is the preferred byte order used for serializing numeric
	// fields for storage in the database.  Big endian keeps integer keys
	// sorted by value.
	byteOrder = binary.BigEndian

	// headersBucketName is the name of the db bucket used to house the
	// serialized headers of the main chain keyed by height.
	headersBucketName = []byte("headers")

	// blocksBucketName is the name of the db bucket used to house the
	// serialized blocks of the main chain keyed by block hash.
	blocksBucketName = []byte("blocks")

	// txIndexBucketName is the name of the db bucket used to house the
	// location of every transaction in the main chain keyed by tx hash.
	txIndexBucketName = []byte("txindex")

	// merkleProofsBucketName is the name of the db bucket used to house the
	// merkle inclusion proof of every transaction in the main chain keyed by
	// tx hash.
	merkleProofsBucketName = []byte("merkleproofs")

	// spendJournalBucketName is the name of the db bucket used to house
	// the outputs spent by every block of the main chain keyed by block
	// hash.
	spendJournalBucketName = []byte("spendjournal")

	// chainStateBucketName is the name of the db bucket used to house the
	// best chain state and the unspent output set snapshot.
	chainStateBucketName = []byte("chainstate")

	// bestChainStateKeyName is the name of the db key used to store the
	// best chain state.  It is itself under the chainStateBucketName
	// bucket.
	bestChainStateKeyName = []byte("bestchainstate")

	// utxoSetKeyName is the name of the db key used to store the unspent
	// output set snapshot.  It is itself under the chainStateBucketName
	// bucket.
	utxoSetKeyName = []byte("utxoset")

	// allBucketNames lists every bucket the chain uses.
	allBucketNames = [][]byte{headersBucketName, blocksBucketName,
		txIndexBucketName, merkleProofsBucketName, spendJournalBucketName,
		chainStateBucketName}
)

// errDeserialize signifies that a problem was encountered when deserializing
// data.
type errDeserialize string

// Error implements the error interface.
func (e errDeserialize) Error() string {
	return string(e)
}

// bucket returns the bucket with the provided name.  The chain creates all of
// its buckets before use, so a missing one is an internal error.
func bucket(dbTx database.Tx, name []byte) (database.Bucket, error) {
	b := dbTx.Bucket(name)
	if b == nil {
		str := fmt.Sprintf("missing %q bucket", name)
		return nil, AssertError(str)
	}
	return b, nil
}

// dbCreateBuckets creates every bucket the chain uses if it does not already
// exist.
func dbCreateBuckets(dbTx database.Tx) error {
	for _, name := range allBucketNames {
		if _, err := dbTx.CreateBucketIfNotExists(name); err != nil {
			return err
		}
	}
	return nil
}

// -----------------------------------------------------------------------------
// The best chain state consists of the best block hash and height, the total
// number of transactions up to and including those in the best block, and the
// accumulated work sum up to and including the best block.
//
// The serialized format is:
//
//   <block hash><block height><total txns><work sum>
//
//   Field             Type             Size
//   block hash        chainhash.Hash   chainhash.HashSize
//   block height      uint64           8 bytes
//   total txns        uint64           8 bytes
//   work sum          uint256          32 bytes
// -----------------------------------------------------------------------------

// bestChainStateLen is the length of a serialized best chain state.
const bestChainStateLen = chainhash.HashSize + 8 + 8 + 32

// bestChainState represents the data to be stored the database for the current
// best chain state.
type bestChainState struct {
	hash      chainhash.Hash
	height    uint64
	totalTxns uint64
	workSum   uint256.Uint256
}

// serializeBestChainState returns the serialization of the passed block best
// chain state.  This is data to be stored in the chain state bucket.
func serializeBestChainState(state bestChainState) []byte {
	serializedData := make([]byte, bestChainStateLen)
	copy(serializedData[0:chainhash.HashSize], state.hash[:])
	offset := chainhash.HashSize
	byteOrder.PutUint64(serializedData[offset:], state.height)
	offset += 8
	byteOrder.PutUint64(serializedData[offset:], state.totalTxns)
	offset += 8
	var workSum [32]byte
	state.workSum.PutBytes(&workSum)
	copy(serializedData[offset:], workSum[:])
	return serializedData
}

// deserializeBestChainState deserializes the passed serialized best chain
// state.  This is data stored in the chain state bucket and is updated after
// every block is connected or disconnected from the main chain.
func deserializeBestChainState(serializedData []byte) (bestChainState, error) {
	if len(serializedData) != bestChainStateLen {
		return bestChainState{}, database.MakeError(database.ErrInvalid,
			"corrupt best chain state", errDeserialize(fmt.Sprintf(
				"unexpected length %d", len(serializedData))))
	}

	var state bestChainState
	copy(state.hash[:], serializedData[0:chainhash.HashSize])
	offset := chainhash.HashSize
	state.height = byteOrder.Uint64(serializedData[offset : offset+8])
	offset += 8
	state.totalTxns = byteOrder.Uint64(serializedData[offset : offset+8])
	offset += 8
	state.workSum.SetBytes((*[32]byte)(serializedData[offset:]))
	return state, nil
}

// dbPutBestState stores the provided best chain state.
func dbPutBestState(dbTx database.Tx, state bestChainState) error {
	b, err := bucket(dbTx, chainStateBucketName)
	if err != nil {
		return err
	}
	return b.Put(bestChainStateKeyName, serializeBestChainState(state))
}

// dbFetchBestState loads the best chain state.  It returns false when the
// database does not contain a chain yet.
func dbFetchBestState(dbTx database.Tx) (bestChainState, bool, error) {
	b, err := bucket(dbTx, chainStateBucketName)
	if err != nil {
		return bestChainState{}, false, err
	}
	serialized := b.Get(bestChainStateKeyName)
	if serialized == nil {
		return bestChainState{}, false, nil
	}
	state, err := deserializeBestChainState(serialized)
	return state, err == nil, err
}

// dbPutUtxoSet stores a snapshot of the provided unspent output set.
func dbPutUtxoSet(dbTx database.Tx, utxos *UtxoSet) error {
	b, err := bucket(dbTx, chainStateBucketName)
	if err != nil {
		return err
	}
	return b.Put(utxoSetKeyName, utxos.Bytes())
}

// dbFetchUtxoSet loads the unspent output set snapshot.
func dbFetchUtxoSet(dbTx database.Tx) (*UtxoSet, error) {
	b, err := bucket(dbTx, chainStateBucketName)
	if err != nil {
		return nil, err
	}
	serialized := b.Get(utxoSetKeyName)
	if serialized == nil {
		return nil, corruptUtxoSetError("snapshot",
			errDeserialize("missing unspent output set"))
	}
	return UtxoSetFromBytes(serialized)
}

// heightKey returns the database key for the provided height.
func heightKey(height uint64) []byte {
	var key [8]byte
	byteOrder.PutUint64(key[:], height)
	return key[:]
}

// dbFetchHeaders loads all of the headers of the main chain in height order.
func dbFetchHeaders(dbTx database.Tx) ([]wire.BlockHeader, error) {
	b, err := bucket(dbTx, headersBucketName)
	if err != nil {
		return nil, err
	}

	var headers []wire.BlockHeader
	err = b.ForEach(func(k, v []byte) error {
		if len(k) != 8 || byteOrder.Uint64(k) != uint64(len(headers)) {
			return database.MakeError(database.ErrInvalid,
				fmt.Sprintf("unexpected header key %x", k), nil)
		}
		var header wire.BlockHeader
		if err := header.FromBytes(v); err != nil {
			return err
		}
		headers = append(headers, header)
		return nil
	})
	return headers, err
}

// -----------------------------------------------------------------------------
// The transaction index maps every transaction of the main chain to its
// location.
//
// The serialized format is:
//
//   <block height><tx position>
//
//   Field             Type             Size
//   block height      uint64           8 bytes
//   tx position       uint32           4 bytes
// -----------------------------------------------------------------------------

// txIndexEntryLen is the length of a serialized transaction index entry.
const txIndexEntryLen = 8 + 4

// TxLocation identifies the position of a transaction in the main chain.
type TxLocation struct {
	BlockHeight uint64
	Position    uint32
}

// dbFetchTxLocation loads the location of the provided transaction.  It
// returns false when the main chain does not contain the transaction.
func dbFetchTxLocation(dbTx database.Tx, txHash *chainhash.Hash) (TxLocation, bool, error) {
	b, err := bucket(dbTx, txIndexBucketName)
	if err != nil {
		return TxLocation{}, false, err
	}
	serialized := b.Get(txHash[:])
	if serialized == nil {
		return TxLocation{}, false, nil
	}
	if len(serialized) != txIndexEntryLen {
		return TxLocation{}, false, database.MakeError(database.ErrInvalid,
			fmt.Sprintf("corrupt tx index entry for %v", txHash), nil)
	}
	loc := TxLocation{
		BlockHeight: byteOrder.Uint64(serialized[0:8]),
		Position:    byteOrder.Uint32(serialized[8:12]),
	}
	return loc, true, nil
}

// dbFetchMerkleProof loads the merkle inclusion proof of the provided
// transaction.  It returns nil when the main chain does not contain the
// transaction.
func dbFetchMerkleProof(dbTx database.Tx, txHash *chainhash.Hash) (*standalone.MerkleProof, error) {
	b, err := bucket(dbTx, merkleProofsBucketName)
	if err != nil {
		return nil, err
	}
	serialized := b.Get(txHash[:])
	if serialized == nil {
		return nil, nil
	}
	return standalone.MerkleProofFromBytes(serialized)
}

// dbFetchBlock loads the block with the provided hash.  It returns nil when
// the main chain does not contain the block.
func dbFetchBlock(dbTx database.Tx, hash *chainhash.Hash) (*wire.MsgBlock, error) {
	b, err := bucket(dbTx, blocksBucketName)
	if err != nil {
		return nil, err
	}
	serialized := b.Get(hash[:])
	if serialized == nil {
		return nil, nil
	}
	var block wire.MsgBlock
	if err := block.FromBytes(serialized); err != nil {
		return nil, err
	}
	return &block, nil
}

// dbFetchSpendJournalEntry loads the outputs spent by the block with the
// provided hash.
func dbFetchSpendJournalEntry(dbTx database.Tx, hash *chainhash.Hash) ([]SpentTxOut, error) {
	b, err := bucket(dbTx, spendJournalBucketName)
	if err != nil {
		return nil, err
	}
	serialized := b.Get(hash[:])
	if serialized == nil {
		str := fmt.Sprintf("missing spend journal data for %v", hash)
		return nil, AssertError(str)
	}
	return deserializeSpendJournalEntry(serialized)
}

// dbPutBlock stores the provided block of the main chain along with its
// header, the location and merkle inclusion proof of all of its transactions,
// and the outputs it spent.
func dbPutBlock(dbTx database.Tx, block *wire.MsgBlock, stxos []SpentTxOut) error {
	serializedHeader, err := block.Header.Bytes()
	if err != nil {
		return err
	}
	serializedBlock, err := block.Bytes()
	if err != nil {
		return err
	}

	headers, err := bucket(dbTx, headersBucketName)
	if err != nil {
		return err
	}
	if err := headers.Put(heightKey(block.Header.Height), serializedHeader); err != nil {
		return err
	}

	hash := block.BlockHash()
	blocks, err := bucket(dbTx, blocksBucketName)
	if err != nil {
		return err
	}
	if err := blocks.Put(hash[:], serializedBlock); err != nil {
		return err
	}

	spendJournal, err := bucket(dbTx, spendJournalBucketName)
	if err != nil {
		return err
	}
	err = spendJournal.Put(hash[:], serializeSpendJournalEntry(stxos))
	if err != nil {
		return err
	}

	txIndex, err := bucket(dbTx, txIndexBucketName)
	if err != nil {
		return err
	}
	merkleProofs, err := bucket(dbTx, merkleProofsBucketName)
	if err != nil {
		return err
	}
	txHashes := block.TxHashes()
	_, proofs := standalone.GenerateProofsAndRoot(txHashes)
	for i := range txHashes {
		txHash := txHashes[i][:]
		var loc [txIndexEntryLen]byte
		byteOrder.PutUint64(loc[0:8], block.Header.Height)
		byteOrder.PutUint32(loc[8:12], uint32(i))
		if err := txIndex.Put(txHash, loc[:]); err != nil {
			return err
		}
		if err := merkleProofs.Put(txHash, proofs[i].Bytes()); err != nil {
			return err
		}
	}
	return nil
}

// dbRemoveBlock removes everything dbPutBlock stored for the provided block.
func dbRemoveBlock(dbTx database.Tx, block *wire.MsgBlock) error {
	hash := block.BlockHash()
	for _, name := range [][]byte{blocksBucketName, spendJournalBucketName} {
		b, err := bucket(dbTx, name)
		if err != nil {
			return err
		}
		if err := b.Delete(hash[:]); err != nil {
			return err
		}
	}

	headers, err := bucket(dbTx, headersBucketName)
	if err != nil {
		return err
	}
	if err := headers.Delete(heightKey(block.Header.Height)); err != nil {
		return err
	}

	for _, name := range [][]byte{txIndexBucketName, merkleProofsBucketName} {
		b, err := bucket(dbTx, name)
		if err != nil {
			return err
		}
		for _, tx := range block.Transactions {
			txHash := tx.TxHash()
			if err := b.Delete(txHash[:]); err != nil {
				return err
			}
		}
	}
	return nil
}
