// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/ledgerd/ledgerd/blockchain/standalone"
	"github.com/ledgerd/ledgerd/chaincfg"
	"github.com/ledgerd/ledgerd/txscript"
	"github.com/ledgerd/ledgerd/wire"
)

var (
	// zeroHash is the zero value for a chainhash.Hash and is defined as a
	// package level variable to avoid the need to create a new instance
	// every time a check is needed.
	zeroHash = &chainhash.Hash{}
)

// standaloneToChainRuleError attempts to convert the passed error from a
// standalone package rule error to a blockchain rule error.  The error is
// returned unmodified when it is not a standalone rule error.
func standaloneToChainRuleError(err error) error {
	var kind ErrorKind
	switch {
	case errors.Is(err, standalone.ErrUnexpectedDifficulty):
		kind = ErrUnexpectedDifficulty
	case errors.Is(err, standalone.ErrHighHash):
		kind = ErrHighHash
	case errors.Is(err, standalone.ErrNoTxInputs):
		kind = ErrNoTxInputs
	case errors.Is(err, standalone.ErrNoTxOutputs):
		kind = ErrNoTxOutputs
	case errors.Is(err, standalone.ErrTxTooBig):
		kind = ErrTxTooBig
	case errors.Is(err, standalone.ErrBadTxOutValue):
		kind = ErrBadTxOutValue
	case errors.Is(err, standalone.ErrDuplicateTxInputs):
		kind = ErrDuplicateTxInputs
	case errors.Is(err, standalone.ErrBadCoinbaseScriptLen):
		kind = ErrBadCoinbaseScriptLen
	case errors.Is(err, standalone.ErrBadTxInput):
		kind = ErrBadTxInput
	default:
		return err
	}
	return ruleError(kind, err.Error())
}

// checkProofOfWork ensures the target of the block header is in the valid
// range and that every proof of work slot carries the algorithm the network
// requires for it along with a digest that matches the header and is not
// higher than the target.
//
// The first slot must always be in use.  Slots the network leaves unused must
// be empty.
func checkProofOfWork(header *wire.BlockHeader, params *chaincfg.Params) error {
	err := standalone.CheckProofOfWorkRange(&header.Target, params.PowLimit)
	if err != nil {
		return standaloneToChainRuleError(err)
	}

	var prefix []byte
	for i := range header.PowSlots {
		slot := &header.PowSlots[i]
		wantAlgo := params.PowAlgos[i]
		if slot.Algo != wantAlgo {
			str := fmt.Sprintf("proof of work slot %d uses algorithm %v "+
				"instead of the required %v", i, slot.Algo, wantAlgo)
			return ruleError(ErrBadPowAlgo, str)
		}
		if wantAlgo == wire.PowAlgoNone {
			if slot.Hash != *zeroHash {
				str := fmt.Sprintf("unused proof of work slot %d carries "+
					"digest %v", i, slot.Hash)
				return ruleError(ErrBadPowHash, str)
			}
			continue
		}

		// Serialize the mining prefix once for all of the slots.
		if prefix == nil {
			prefix = header.MiningPrefix()
		}
		powHash, ok := wire.PowHashPrefix(prefix, slot.Algo)
		if !ok {
			str := fmt.Sprintf("proof of work slot %d uses unknown "+
				"algorithm %v", i, slot.Algo)
			return ruleError(ErrBadPowAlgo, str)
		}
		if powHash != slot.Hash {
			str := fmt.Sprintf("proof of work slot %d claims %v digest %v, "+
				"but the header hashes to %v", i, slot.Algo, slot.Hash,
				powHash)
			return ruleError(ErrBadPowHash, str)
		}
		err := standalone.CheckProofOfWorkHash(&powHash, &header.Target)
		if err != nil {
			return standaloneToChainRuleError(err)
		}
	}
	if header.PowSlots[0].Algo == wire.PowAlgoNone {
		return ruleError(ErrBadPowAlgo, "first proof of work slot is unused")
	}
	return nil
}

// CheckProofOfWork ensures the block header satisfies the proof of work
// requirements of the network defined by the provided parameters.
func CheckProofOfWork(header *wire.BlockHeader, params *chaincfg.Params) error {
	return checkProofOfWork(header, params)
}

// NewCoinbaseTx returns a coinbase transaction for the block at the provided
// height that pays the value to the provided script.  The signature script
// commits to the height and the extra nonce.
func NewCoinbaseTx(height uint64, value int64, payScript []byte, extraNonce uint64) (*wire.MsgTx, error) {
	coinbaseScript, err := txscript.CoinbaseScript(height, extraNonce)
	if err != nil {
		return nil, err
	}

	tx := wire.NewMsgTx()
	prevOut := wire.NewOutPoint(zeroHash, wire.MaxPrevOutIndex)
	tx.AddTxIn(wire.NewTxIn(prevOut, coinbaseScript))
	tx.AddTxOut(wire.NewTxOut(value, payScript))
	return tx, nil
}

// checkCoinbaseHeight ensures the signature script of the provided coinbase
// transaction starts with a push of the block height.
func checkCoinbaseHeight(coinbase *wire.MsgTx, height uint64) error {
	sigScript := coinbase.TxIn[0].SignatureScript
	tokenizer := txscript.MakeScriptTokenizer(sigScript)
	if !tokenizer.Next() || len(tokenizer.Data()) != 8 {
		str := "coinbase signature script does not start with the block " +
			"height"
		return ruleError(ErrBadCoinbaseHeight, str)
	}
	committed := binary.BigEndian.Uint64(tokenizer.Data())
	if committed != height {
		str := fmt.Sprintf("coinbase commits to height %d instead of the "+
			"block height %d", committed, height)
		return ruleError(ErrBadCoinbaseHeight, str)
	}
	return nil
}

// CheckBlockSanity performs some preliminary checks on a block to ensure it is
// sane before continuing with block processing.  These checks are context
// free, so they do not involve the proof of work or the state of the chain.
func CheckBlockSanity(block *wire.MsgBlock, params *chaincfg.Params) error {
	// A block must have at least one transaction.
	numTx := len(block.Transactions)
	if numTx == 0 {
		return ruleError(ErrNoTransactions, "block does not contain any "+
			"transactions")
	}

	// A block must not exceed the maximum allowed block payload when
	// serialized.
	serializedSize := block.SerializeSize()
	if serializedSize > params.MaxBlockSize {
		str := fmt.Sprintf("serialized block is too big - got %d, max %d",
			serializedSize, params.MaxBlockSize)
		return ruleError(ErrBlockTooBig, str)
	}

	// The first transaction in a block must be a coinbase.
	transactions := block.Transactions
	if !standalone.IsCoinBaseTx(transactions[0]) {
		str := "first transaction in block is not a coinbase"
		return ruleError(ErrFirstTxNotCoinbase, str)
	}

	// A block must not have more than one coinbase.
	for i, tx := range transactions[1:] {
		if standalone.IsCoinBaseTx(tx) {
			str := fmt.Sprintf("block contains second coinbase at index %d",
				i+1)
			return ruleError(ErrMultipleCoinbases, str)
		}
	}

	// Do some preliminary checks on each transaction to ensure they are
	// sane before continuing.
	for _, tx := range transactions {
		err := standalone.CheckTransactionSanity(tx, uint64(params.MaxTxSize))
		if err != nil {
			return standaloneToChainRuleError(err)
		}
	}
	if err := checkCoinbaseHeight(transactions[0], block.Header.Height); err != nil {
		return err
	}

	// Check for duplicate transactions.  The transaction hashes are reused
	// to build the merkle tree below.
	txHashes := block.TxHashes()
	existingTxHashes := make(map[chainhash.Hash]struct{}, numTx)
	for _, hash := range txHashes {
		if _, exists := existingTxHashes[hash]; exists {
			str := fmt.Sprintf("block contains duplicate transaction %v", hash)
			return ruleError(ErrDuplicateTx, str)
		}
		existingTxHashes[hash] = struct{}{}
	}

	// Build merkle tree and ensure the calculated merkle root matches the
	// entry in the block header.
	merkleRoot := standalone.CalcMerkleRoot(txHashes)
	if block.Header.MerkleRoot != merkleRoot {
		str := fmt.Sprintf("block merkle root is invalid - block header "+
			"indicates %v, but calculated value is %v",
			block.Header.MerkleRoot, merkleRoot)
		return ruleError(ErrBadMerkleRoot, str)
	}

	return nil
}

// CheckTransactionInputs performs a series of checks on the inputs to a
// transaction to ensure they are valid.  An example of some of the checks
// include verifying all inputs exist, ensuring the coinbase maturity
// requirements are met, and validating that the input amounts cover the
// outputs.  It returns the transaction fee, which is the amount by which the
// inputs exceed the outputs.
//
// NOTE: The transaction MUST have already been sanity checked with the
// standalone.CheckTransactionSanity function prior to calling this function.
func CheckTransactionInputs(tx *wire.MsgTx, txHeight uint64, view UtxoViewer,
	params *chaincfg.Params) (int64, error) {

	// Coinbase transactions have no inputs.
	if standalone.IsCoinBaseTx(tx) {
		return 0, nil
	}

	txHash := tx.TxHash()
	var totalAtomsIn int64
	for txInIndex, txIn := range tx.TxIn {
		// Ensure the referenced input transaction is available.
		entry := view.LookupEntry(txIn.PreviousOutPoint)
		if entry == nil {
			str := fmt.Sprintf("output %v referenced from transaction %s:%d "+
				"either does not exist or has already been spent",
				txIn.PreviousOutPoint, txHash, txInIndex)
			return 0, ruleError(ErrMissingTxOut, str)
		}

		// Ensure the transaction is not spending coins which have not
		// yet reached the required coinbase maturity.
		if entry.IsCoinBase {
			originHeight := entry.BlockHeight
			blocksSincePrev := txHeight - originHeight
			if txHeight < originHeight ||
				blocksSincePrev < uint64(params.CoinbaseMaturity) {

				str := fmt.Sprintf("tried to spend coinbase transaction "+
					"output %v from height %v at height %v before "+
					"required maturity of %v blocks",
					txIn.PreviousOutPoint, originHeight, txHeight,
					params.CoinbaseMaturity)
				return 0, ruleError(ErrImmatureSpend, str)
			}
		}

		// Ensure the transaction amounts are in range.  Each of the
		// output values of the input transactions must not be negative
		// or more than the max allowed per transaction.  All amounts in
		// a transaction are in a unit value known as an atom.  One coin
		// is a quantity of atoms as defined by the AtomsPerCoin constant.
		originTxAtoms := entry.Amount
		if originTxAtoms < 0 {
			str := fmt.Sprintf("transaction output has negative value of %v",
				originTxAtoms)
			return 0, ruleError(ErrBadTxOutValue, str)
		}

		// The total of all outputs must not be more than the max allowed
		// per transaction.  Also, we could potentially overflow the
		// accumulator so check for overflow.
		if totalAtomsIn > math.MaxInt64-originTxAtoms {
			str := fmt.Sprintf("total value of all transaction inputs for "+
				"transaction %v overflows", txHash)
			return 0, ruleError(ErrBadTxOutValue, str)
		}
		totalAtomsIn += originTxAtoms
	}

	// Calculate the total output amount for this transaction.  It is safe
	// to ignore overflow and out of range errors here because those error
	// conditions would have already been caught by the sanity checks.
	var totalAtomsOut int64
	for _, txOut := range tx.TxOut {
		totalAtomsOut += txOut.Value
	}

	// Ensure the transaction does not spend more than its inputs.
	if totalAtomsIn < totalAtomsOut {
		str := fmt.Sprintf("total value of all transaction inputs for "+
			"transaction %v is %v which is less than the amount "+
			"spent of %v", txHash, totalAtomsIn, totalAtomsOut)
		return 0, ruleError(ErrSpendTooHigh, str)
	}

	return totalAtomsIn - totalAtomsOut, nil
}

// checkCoinbaseValue ensures the coinbase of the provided block does not pay
// out more than the block subsidy plus the provided fees.
func checkCoinbaseValue(block *wire.MsgBlock, subsidy, totalFees int64) error {
	var totalAtomsOut int64
	for _, txOut := range block.Transactions[0].TxOut {
		totalAtomsOut += txOut.Value
	}
	maxAtomsOut := subsidy + totalFees
	if totalAtomsOut > maxAtomsOut {
		str := fmt.Sprintf("coinbase transaction for block pays %v which is "+
			"more than expected value of %v", totalAtomsOut, maxAtomsOut)
		return ruleError(ErrBadCoinbaseValue, str)
	}
	return nil
}

// isUnspendable returns whether the provided output script can never be
// spent, which means the output does not need to be tracked.  Any script that
// starts with OP_RETURN fails as soon as it is executed.
func isUnspendable(pkScript []byte) bool {
	return len(pkScript) > 0 && pkScript[0] == txscript.OP_RETURN
}
