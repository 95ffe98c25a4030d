// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2015-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"encoding/binary"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

const (
	// MaxDataCarrierSize is the maximum number of bytes allowed in pushed
	// data to be considered a nulldata transaction.
	MaxDataCarrierSize = 256

	// pubKeyHashLen is the length of a hash160 digest.
	pubKeyHashLen = 20
)

// ScriptClass is an enumeration for the list of standard types of script.
type ScriptClass byte

// Classes of script payment known about in the blockchain.
const (
	NonStandardTy ScriptClass = iota // None of the recognized forms.
	PubKeyHashTy                     // Pay pubkey hash.
	NullDataTy                       // Empty data-only (provably prunable).
)

// scriptClassToName houses the human-readable strings which describe each
// script class.
var scriptClassToName = []string{
	NonStandardTy: "nonstandard",
	PubKeyHashTy:  "pubkeyhash",
	NullDataTy:    "nulldata",
}

// String implements the Stringer interface by returning the name of
// the enum script class. If the enum is invalid then "Invalid" will be
// returned.
func (t ScriptClass) String() string {
	if int(t) >= len(scriptClassToName) {
		return "Invalid"
	}
	return scriptClassToName[t]
}

// Hash160 calculates the hash ripemd160(sha256(b)).
func Hash160(buf []byte) []byte {
	return calcRipemd160(chainhash.HashB(buf))
}

// extractPubKeyHash extracts the public key hash from the passed script if it
// is a standard pay-to-pubkey-hash script.  It will return nil otherwise.
func extractPubKeyHash(script []byte) []byte {
	// A pay-to-pubkey-hash script is of the form:
	//  OP_DUP OP_HASH160 <20-byte hash> OP_EQUALVERIFY OP_CHECKSIG
	if len(script) == 25 &&
		script[0] == OP_DUP &&
		script[1] == OP_HASH160 &&
		script[2] == OP_DATA_20 &&
		script[23] == OP_EQUALVERIFY &&
		script[24] == OP_CHECKSIG {

		return script[3:23]
	}

	return nil
}

// ExtractPubKeyHash returns the 20-byte public key hash committed to by a
// standard pay-to-pubkey-hash script or nil when the script is any other form.
func ExtractPubKeyHash(script []byte) []byte {
	return extractPubKeyHash(script)
}

// IsPayToPubKeyHash returns whether or not the passed script is a standard
// pay-to-pubkey-hash script.
func IsPayToPubKeyHash(script []byte) bool {
	return extractPubKeyHash(script) != nil
}

// isNullDataScript returns whether or not the passed script is a standard
// null data script.
func isNullDataScript(script []byte) bool {
	// A null script is of the form:
	//  OP_RETURN <optional data>
	//
	// Thus, it can either be a single OP_RETURN or an OP_RETURN followed by a
	// data push up to MaxDataCarrierSize bytes.

	// The script can't possibly be a null data script if it doesn't start
	// with OP_RETURN.  Fail fast to avoid more work below.
	if len(script) < 1 || script[0] != OP_RETURN {
		return false
	}

	// Single OP_RETURN.
	if len(script) == 1 {
		return true
	}

	// OP_RETURN followed by data push up to MaxDataCarrierSize bytes.
	tokenizer := MakeScriptTokenizer(script[1:])
	return tokenizer.Next() && tokenizer.Done() &&
		tokenizer.Opcode() <= OP_16 &&
		len(tokenizer.Data()) <= MaxDataCarrierSize
}

// GetScriptClass returns the class of the script passed.
//
// NonStandardTy will be returned when the script does not parse.
func GetScriptClass(script []byte) ScriptClass {
	switch {
	case IsPayToPubKeyHash(script):
		return PubKeyHashTy
	case isNullDataScript(script):
		return NullDataTy
	}
	return NonStandardTy
}

// PayToPubKeyHashScript creates a new script to pay a transaction output to a
// 20-byte pubkey hash.
func PayToPubKeyHashScript(pubKeyHash []byte) ([]byte, error) {
	if len(pubKeyHash) != pubKeyHashLen {
		str := fmt.Sprintf("pubkey hash is %d bytes instead of %d",
			len(pubKeyHash), pubKeyHashLen)
		return nil, scriptError(ErrInvalidPubKeyHashLen, str)
	}

	return NewScriptBuilder().AddOp(OP_DUP).AddOp(OP_HASH160).
		AddData(pubKeyHash).AddOp(OP_EQUALVERIFY).AddOp(OP_CHECKSIG).
		Script()
}

// NullDataScript creates a provably-prunable script containing OP_RETURN
// followed by the passed data.  An Error with kind ErrTooMuchNullData will be
// returned if the length of the passed data exceeds MaxDataCarrierSize.
func NullDataScript(data []byte) ([]byte, error) {
	if len(data) > MaxDataCarrierSize {
		str := fmt.Sprintf("data size %d is larger than max allowed size %d",
			len(data), MaxDataCarrierSize)
		return nil, scriptError(ErrTooMuchNullData, str)
	}

	return NewScriptBuilder().AddOp(OP_RETURN).AddData(data).Script()
}

// CoinbaseScript returns the unlocking script for the coinbase transaction of
// the block at the provided height.  It pushes the height followed by the
// extra nonce, which keeps coinbase transactions, and therefore their ids,
// unique across blocks and lets miners vary the merkle root.
func CoinbaseScript(height uint64, extraNonce uint64) ([]byte, error) {
	var heightBytes, nonceBytes [8]byte
	binary.BigEndian.PutUint64(heightBytes[:], height)
	binary.BigEndian.PutUint64(nonceBytes[:], extraNonce)
	return NewScriptBuilder().AddData(heightBytes[:]).
		AddData(nonceBytes[:]).Script()
}
