// Copyright (c) 2015-2016 The btcsuite developers
// Copyright (c) 2015-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"bytes"
	"fmt"
	"sort"
	"sync"

	"github.com/ledgerd/ledgerd/blockchain/standalone"
	"github.com/ledgerd/ledgerd/wire"
)

// UtxoEntry houses details about an individual unspent transaction output such
// as whether or not it was contained in a coinbase tx, the height of the block
// that contains the tx, and the amount and public key script it pays to.
type UtxoEntry struct {
	Amount      int64
	PkScript    []byte
	BlockHeight uint64
	IsCoinBase  bool
}

// Clone returns a deep copy of the utxo entry.
func (entry *UtxoEntry) Clone() *UtxoEntry {
	if entry == nil {
		return nil
	}

	newEntry := *entry
	newEntry.PkScript = bytes.Clone(entry.PkScript)
	return &newEntry
}

// UtxoViewer provides read access to unspent transaction outputs.  The
// returned entry is nil when the output does not exist or is already spent.
type UtxoViewer interface {
	LookupEntry(outpoint wire.OutPoint) *UtxoEntry
}

// SpentTxOut contains a spent transaction output and potentially additional
// contextual information such as whether or not it was contained in a coinbase
// transaction and the height of the block that contains the transaction.
// Spent outputs are recorded by ConnectBlock in the order they were spent so
// the block can later be disconnected.
type SpentTxOut struct {
	OutPoint wire.OutPoint
	Entry    UtxoEntry
}

// spentView is a UtxoViewer over the outputs spent by a block.  It gives the
// validation of a block access to the outputs its inputs reference after they
// have been removed from the unspent set.
type spentView map[wire.OutPoint]*UtxoEntry

// newSpentView returns a view of the provided spent outputs.
func newSpentView(stxos []SpentTxOut) spentView {
	view := make(spentView, len(stxos))
	for i := range stxos {
		view[stxos[i].OutPoint] = &stxos[i].Entry
	}
	return view
}

// LookupEntry returns the spent output for the provided outpoint.
//
// This function is part of the UtxoViewer interface implementation.
func (view spentView) LookupEntry(outpoint wire.OutPoint) *UtxoEntry {
	return view[outpoint]
}

// UtxoSetEntry pairs an unspent output with the outpoint that identifies it.
type UtxoSetEntry struct {
	OutPoint wire.OutPoint
	Entry    *UtxoEntry
}

// UtxoSet is the set of all unspent transaction outputs keyed by outpoint.
//
// Blocks are applied with ConnectBlock and removed with DisconnectBlock.  Both
// validate every change before modifying the set, so a failure leaves the set
// exactly as it was.  It is safe for concurrent access.
type UtxoSet struct {
	mtx     sync.RWMutex
	entries map[wire.OutPoint]*UtxoEntry
}

// Enforce UtxoSet implements the UtxoViewer interface.
var _ UtxoViewer = (*UtxoSet)(nil)

// NewUtxoSet returns a new empty unspent transaction output set.
func NewUtxoSet() *UtxoSet {
	return &UtxoSet{entries: make(map[wire.OutPoint]*UtxoEntry)}
}

// LookupEntry returns a copy of the entry for the provided outpoint.  It
// returns nil when the outpoint is not an unspent output.
//
// This function is part of the UtxoViewer interface implementation.
func (s *UtxoSet) LookupEntry(outpoint wire.OutPoint) *UtxoEntry {
	s.mtx.RLock()
	entry := s.entries[outpoint].Clone()
	s.mtx.RUnlock()
	return entry
}

// Len returns the number of unspent outputs in the set.
func (s *UtxoSet) Len() int {
	s.mtx.RLock()
	n := len(s.entries)
	s.mtx.RUnlock()
	return n
}

// compareOutPoints returns whether outpoint a sorts before outpoint b.
// Outpoints are ordered by the bytes of the transaction hash and then by
// output index.
func compareOutPoints(a, b *wire.OutPoint) bool {
	if cmp := bytes.Compare(a.Hash[:], b.Hash[:]); cmp != 0 {
		return cmp < 0
	}
	return a.Index < b.Index
}

// Entries returns copies of all of the unspent outputs sorted by outpoint.
func (s *UtxoSet) Entries() []UtxoSetEntry {
	s.mtx.RLock()
	entries := make([]UtxoSetEntry, 0, len(s.entries))
	for outpoint, entry := range s.entries {
		entries = append(entries, UtxoSetEntry{
			OutPoint: outpoint,
			Entry:    entry.Clone(),
		})
	}
	s.mtx.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		return compareOutPoints(&entries[i].OutPoint, &entries[j].OutPoint)
	})
	return entries
}

// TotalAmount returns the sum of the amounts of all unspent outputs.
func (s *UtxoSet) TotalAmount() int64 {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	var total int64
	for _, entry := range s.entries {
		total += entry.Amount
	}
	return total
}

// Clone returns a deep copy of the set.
func (s *UtxoSet) Clone() *UtxoSet {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	clone := &UtxoSet{
		entries: make(map[wire.OutPoint]*UtxoEntry, len(s.entries)),
	}
	for outpoint, entry := range s.entries {
		clone.entries[outpoint] = entry.Clone()
	}
	return clone
}

// txOutEntries returns the unspent outputs the provided transaction creates
// when it is included in a block at the provided height.  Provably unspendable
// outputs are not included.
func txOutEntries(tx *wire.MsgTx, blockHeight uint64) []UtxoSetEntry {
	txHash := tx.TxHash()
	isCoinBase := standalone.IsCoinBaseTx(tx)
	entries := make([]UtxoSetEntry, 0, len(tx.TxOut))
	for txOutIdx, txOut := range tx.TxOut {
		if isUnspendable(txOut.PkScript) {
			continue
		}
		entries = append(entries, UtxoSetEntry{
			OutPoint: wire.OutPoint{Hash: txHash, Index: uint32(txOutIdx)},
			Entry: &UtxoEntry{
				Amount:      txOut.Value,
				PkScript:    bytes.Clone(txOut.PkScript),
				BlockHeight: blockHeight,
				IsCoinBase:  isCoinBase,
			},
		})
	}
	return entries
}

// AddTxOuts adds all outputs in the passed transaction which are not provably
// unspendable to the set.  Existing entries for the same outpoints are
// overwritten.
func (s *UtxoSet) AddTxOuts(tx *wire.MsgTx, blockHeight uint64) {
	entries := txOutEntries(tx, blockHeight)

	s.mtx.Lock()
	for _, e := range entries {
		s.entries[e.OutPoint] = e.Entry
	}
	s.mtx.Unlock()
}

// ConnectBlock applies the passed block to the set by spending every output
// referenced by its transaction inputs and adding every output it creates.  It
// returns the spent outputs in the order they were spent, which is the order
// DisconnectBlock needs to undo the changes.
//
// Transactions may spend outputs created by earlier transactions in the same
// block.  The block is rejected when an input references an output that does
// not exist (ErrMissingTxOut), that another input of the block already spent
// (ErrDuplicateSpend), or that belongs to a coinbase which has not reached the
// provided maturity (ErrImmatureSpend).  It is also rejected when it creates an
// output that is still unspent (ErrOverwriteTx).
//
// All of the changes are staged and validated before any of them are applied,
// so the set is left untouched when an error is returned.
func (s *UtxoSet) ConnectBlock(block *wire.MsgBlock, coinbaseMaturity uint16) ([]SpentTxOut, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	height := block.Header.Height
	added := make(map[wire.OutPoint]*UtxoEntry)
	spent := make(map[wire.OutPoint]struct{})
	var stxos []SpentTxOut
	for txIdx, tx := range block.Transactions {
		txHash := tx.TxHash()
		if !standalone.IsCoinBaseTx(tx) {
			for txInIdx, txIn := range tx.TxIn {
				outpoint := txIn.PreviousOutPoint
				if _, ok := spent[outpoint]; ok {
					str := fmt.Sprintf("output %v spent by transaction "+
						"%s:%d is already spent by an earlier input of the "+
						"block", outpoint, txHash, txInIdx)
					return nil, ruleError(ErrDuplicateSpend, str)
				}

				entry, ok := added[outpoint]
				if !ok {
					entry, ok = s.entries[outpoint]
				}
				if !ok {
					str := fmt.Sprintf("output %v referenced from "+
						"transaction %s:%d either does not exist or has "+
						"already been spent", outpoint, txHash, txInIdx)
					return nil, ruleError(ErrMissingTxOut, str)
				}
				if entry.IsCoinBase && (height < entry.BlockHeight ||
					height-entry.BlockHeight < uint64(coinbaseMaturity)) {

					str := fmt.Sprintf("tried to spend coinbase "+
						"transaction output %v from height %v at height "+
						"%v before required maturity of %v blocks",
						outpoint, entry.BlockHeight, height,
						coinbaseMaturity)
					return nil, ruleError(ErrImmatureSpend, str)
				}

				spent[outpoint] = struct{}{}
				stxos = append(stxos, SpentTxOut{
					OutPoint: outpoint,
					Entry:    *entry.Clone(),
				})
			}
		}

		for _, e := range txOutEntries(tx, height) {
			_, inSet := s.entries[e.OutPoint]
			_, inBlock := added[e.OutPoint]
			if inBlock || inSet {
				str := fmt.Sprintf("transaction %s at index %d overwrites "+
					"unspent output %v", txHash, txIdx, e.OutPoint)
				return nil, ruleError(ErrOverwriteTx, str)
			}
			added[e.OutPoint] = e.Entry
		}
	}

	// Commit the staged changes.  Outputs created and spent within the block
	// never reach the set.
	for outpoint := range spent {
		delete(s.entries, outpoint)
	}
	for outpoint, entry := range added {
		if _, ok := spent[outpoint]; ok {
			continue
		}
		s.entries[outpoint] = entry
	}
	return stxos, nil
}

// countSpentOutputs returns the number of outputs spent by the passed block.
func countSpentOutputs(block *wire.MsgBlock) int {
	var numSpent int
	for _, tx := range block.Transactions {
		if standalone.IsCoinBaseTx(tx) {
			continue
		}
		numSpent += len(tx.TxIn)
	}
	return numSpent
}

// DisconnectBlock undoes the changes ConnectBlock made for the passed block by
// removing every output the block created and restoring the provided spent
// outputs, which must be the ones ConnectBlock returned for the block.
//
// The set is left untouched when an error is returned.
func (s *UtxoSet) DisconnectBlock(block *wire.MsgBlock, stxos []SpentTxOut) error {
	if numSpent := countSpentOutputs(block); numSpent != len(stxos) {
		str := fmt.Sprintf("block %v spends %d outputs, but %d spent "+
			"outputs were provided", block.BlockHash(), numSpent,
			len(stxos))
		return AssertError(str)
	}

	// Ensure the spent outputs match the inputs of the block before making
	// any changes.
	stxoIdx := 0
	for _, tx := range block.Transactions {
		if standalone.IsCoinBaseTx(tx) {
			continue
		}
		for _, txIn := range tx.TxIn {
			if stxos[stxoIdx].OutPoint != txIn.PreviousOutPoint {
				str := fmt.Sprintf("spent output %d is %v, but the block "+
					"spends %v", stxoIdx, stxos[stxoIdx].OutPoint,
					txIn.PreviousOutPoint)
				return AssertError(str)
			}
			stxoIdx++
		}
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	// Loop backwards through all transactions so everything is unspent in
	// reverse order.  This is necessary since transactions later in a block
	// can spend from previous ones.
	height := block.Header.Height
	stxoIdx = len(stxos) - 1
	for txIdx := len(block.Transactions) - 1; txIdx >= 0; txIdx-- {
		tx := block.Transactions[txIdx]
		for _, e := range txOutEntries(tx, height) {
			delete(s.entries, e.OutPoint)
		}
		if standalone.IsCoinBaseTx(tx) {
			continue
		}
		for txInIdx := len(tx.TxIn) - 1; txInIdx >= 0; txInIdx-- {
			stxo := &stxos[stxoIdx]
			s.entries[stxo.OutPoint] = stxo.Entry.Clone()
			stxoIdx--
		}
	}
	return nil
}
