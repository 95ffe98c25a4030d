// Copyright (c) 2015-2016 The btcsuite developers
// Copyright (c) 2015-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ledgerd/ledgerd/wire"
)

// -----------------------------------------------------------------------------
// The unspent output set and the spend journal are persisted with the same
// canonical big-endian encoding used on the wire.
//
// A serialized unspent output entry is:
//
//   <amount><block height><flags><script len><script>
//
//   Field          Type      Size
//   amount         uint64    8
//   block height   uint64    8
//   flags          byte      1
//   script len     VarInt    variable
//   script         []byte    variable
//
// Bit 0 of the flags is set when the output was created by a coinbase.  The
// remaining bits are reserved and must be zero.
//
// A serialized unspent output set is a VarInt count followed by that many
// outpoints (32 byte hash, uint32 index), each followed by its entry, in
// outpoint order.
//
// A serialized spend journal entry for a block is a VarInt count followed by
// that many outpoint and entry pairs in the order the outputs were spent.
// -----------------------------------------------------------------------------

const (
	// utxoFlagCoinBase indicates the output was created by a coinbase.
	utxoFlagCoinBase = 0x01

	// maxSerializedScriptLen is the largest script a serialized entry may
	// carry.  No output script can be larger than a block.
	maxSerializedScriptLen = wire.MaxBlockPayload

	// minSerializedUtxo is the smallest possible serialized outpoint and
	// entry pair.  It bounds counts read from untrusted data.
	minSerializedUtxo = 32 + 4 + 8 + 8 + 1 + 1
)

// writeUtxoEntry serializes the outpoint and entry to w.
func writeUtxoEntry(w io.Writer, outpoint *wire.OutPoint, entry *UtxoEntry) error {
	if _, err := w.Write(outpoint.Hash[:]); err != nil {
		return err
	}
	if err := wire.WriteUint32BE(w, outpoint.Index); err != nil {
		return err
	}
	if err := wire.WriteUint64BE(w, uint64(entry.Amount)); err != nil {
		return err
	}
	if err := wire.WriteUint64BE(w, entry.BlockHeight); err != nil {
		return err
	}
	var flags uint8
	if entry.IsCoinBase {
		flags |= utxoFlagCoinBase
	}
	if err := wire.WriteUint8(w, flags); err != nil {
		return err
	}
	return wire.WriteVarBytes(w, entry.PkScript)
}

// readUtxoEntry deserializes an outpoint and entry from r.
func readUtxoEntry(r io.Reader) (wire.OutPoint, *UtxoEntry, error) {
	var outpoint wire.OutPoint
	if _, err := io.ReadFull(r, outpoint.Hash[:]); err != nil {
		return outpoint, nil, err
	}
	index, err := wire.ReadUint32BE(r)
	if err != nil {
		return outpoint, nil, err
	}
	outpoint.Index = index

	amount, err := wire.ReadUint64BE(r)
	if err != nil {
		return outpoint, nil, err
	}
	height, err := wire.ReadUint64BE(r)
	if err != nil {
		return outpoint, nil, err
	}
	flags, err := wire.ReadUint8(r)
	if err != nil {
		return outpoint, nil, err
	}
	if flags&^utxoFlagCoinBase != 0 {
		return outpoint, nil, fmt.Errorf("unknown flags %#x", flags)
	}
	pkScript, err := wire.ReadVarBytes(r, maxSerializedScriptLen, "pkScript")
	if err != nil {
		return outpoint, nil, err
	}
	entry := &UtxoEntry{
		Amount:      int64(amount),
		PkScript:    pkScript,
		BlockHeight: height,
		IsCoinBase:  flags&utxoFlagCoinBase != 0,
	}
	return outpoint, entry, nil
}

// readCount reads a VarInt element count and ensures the remaining data could
// possibly hold that many elements.
func readCount(r *bytes.Reader) (uint64, error) {
	count, err := wire.ReadVarInt(r)
	if err != nil {
		return 0, err
	}
	if count > uint64(r.Len()/minSerializedUtxo) {
		return 0, fmt.Errorf("count %d exceeds the remaining %d bytes",
			count, r.Len())
	}
	return count, nil
}

// corruptUtxoSetError returns a ContextError of kind ErrCorruptUtxoSet that
// wraps the provided decoding error.
func corruptUtxoSetError(what string, err error) ContextError {
	return ContextError{
		Err:         ErrCorruptUtxoSet,
		Description: fmt.Sprintf("corrupt %s: %v", what, err),
		RawErr:      err,
	}
}

// Bytes returns the serialized unspent output set.  The encoding is
// deterministic, so equal sets always produce equal bytes.
func (s *UtxoSet) Bytes() []byte {
	entries := s.Entries()
	var buf bytes.Buffer
	_ = wire.WriteVarInt(&buf, uint64(len(entries)))
	for i := range entries {
		_ = writeUtxoEntry(&buf, &entries[i].OutPoint, entries[i].Entry)
	}
	return buf.Bytes()
}

// UtxoSetFromBytes decodes an unspent output set serialized with Bytes.
// ErrCorruptUtxoSet is returned when the data is malformed.
func UtxoSetFromBytes(b []byte) (*UtxoSet, error) {
	r := bytes.NewReader(b)
	count, err := readCount(r)
	if err != nil {
		return nil, corruptUtxoSetError("utxo set", err)
	}

	set := &UtxoSet{entries: make(map[wire.OutPoint]*UtxoEntry, count)}
	for i := uint64(0); i < count; i++ {
		outpoint, entry, err := readUtxoEntry(r)
		if err != nil {
			return nil, corruptUtxoSetError("utxo set", err)
		}
		if _, ok := set.entries[outpoint]; ok {
			err := fmt.Errorf("duplicate entry for %v", outpoint)
			return nil, corruptUtxoSetError("utxo set", err)
		}
		set.entries[outpoint] = entry
	}
	if r.Len() != 0 {
		err := fmt.Errorf("%d trailing bytes", r.Len())
		return nil, corruptUtxoSetError("utxo set", err)
	}
	return set, nil
}

// serializeSpendJournalEntry serializes the passed spent outputs.
func serializeSpendJournalEntry(stxos []SpentTxOut) []byte {
	var buf bytes.Buffer
	_ = wire.WriteVarInt(&buf, uint64(len(stxos)))
	for i := range stxos {
		_ = writeUtxoEntry(&buf, &stxos[i].OutPoint, &stxos[i].Entry)
	}
	return buf.Bytes()
}

// deserializeSpendJournalEntry decodes spent outputs serialized with
// serializeSpendJournalEntry.
func deserializeSpendJournalEntry(b []byte) ([]SpentTxOut, error) {
	r := bytes.NewReader(b)
	count, err := readCount(r)
	if err != nil {
		return nil, corruptUtxoSetError("spend journal entry", err)
	}

	stxos := make([]SpentTxOut, 0, count)
	for i := uint64(0); i < count; i++ {
		outpoint, entry, err := readUtxoEntry(r)
		if err != nil {
			return nil, corruptUtxoSetError("spend journal entry", err)
		}
		stxos = append(stxos, SpentTxOut{OutPoint: outpoint, Entry: *entry})
	}
	if r.Len() != 0 {
		err := fmt.Errorf("%d trailing bytes", r.Len())
		return nil, corruptUtxoSetError("spend journal entry", err)
	}
	return stxos, nil
}
