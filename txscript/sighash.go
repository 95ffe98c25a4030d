// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2015-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/schnorr"
	"github.com/ledgerd/ledgerd/wire"
)

const (
	// SigLen is the length of a serialized signature.
	SigLen = 64

	// PubKeyLen is the length of a serialized compressed public key.
	PubKeyLen = secp256k1.PubKeyBytesLenCompressed
)

// CalcSignatureHash computes the signature hash for the specified input of the
// target transaction.  The hash commits to the transaction with every
// signature script emptied, the index of the input being signed, the public key
// script of the output it spends and that output's value.  The last three bind
// a signature to a single input and output pairing so it can't be replayed
// against another one.
//
// The serialized commitment is:
//
//	tx (all signature scripts empty) || u32 input index ||
//	varbytes prev pkscript || u64 prev amount
//
// and the resulting hash is its double SHA-256 digest.
func CalcSignatureHash(tx *wire.MsgTx, idx int, prevPkScript []byte, amount int64) ([]byte, error) {
	if idx < 0 || idx >= len(tx.TxIn) {
		str := fmt.Sprintf("transaction input index %d is negative or >= %d",
			idx, len(tx.TxIn))
		return nil, scriptError(ErrInvalidIndex, str)
	}

	// Make a shallow copy of the transaction with the signature scripts
	// removed so the original inputs are not modified.
	txCopy := *tx
	txCopy.TxIn = make([]*wire.TxIn, len(tx.TxIn))
	for i, txIn := range tx.TxIn {
		txInCopy := *txIn
		txInCopy.SignatureScript = nil
		txCopy.TxIn[i] = &txInCopy
	}

	size := txCopy.SerializeSize() + 4 +
		wire.VarIntSerializeSize(uint64(len(prevPkScript))) +
		len(prevPkScript) + 8
	buf := bytes.NewBuffer(make([]byte, 0, size))
	if err := txCopy.Serialize(buf); err != nil {
		return nil, err
	}
	if err := wire.WriteUint32BE(buf, uint32(idx)); err != nil {
		return nil, err
	}
	if err := wire.WriteVarBytes(buf, prevPkScript); err != nil {
		return nil, err
	}
	if err := wire.WriteUint64BE(buf, uint64(amount)); err != nil {
		return nil, err
	}

	return chainhash.DoubleHashB(buf.Bytes()), nil
}

// isStrictPubKeyEncoding returns whether or not the passed public key adheres
// to the strict encoding requirements.  Only compressed keys are accepted.
func isStrictPubKeyEncoding(pubKey []byte) bool {
	return len(pubKey) == PubKeyLen && (pubKey[0] == 0x02 || pubKey[0] == 0x03)
}

// verifySignature returns whether the provided signature is valid for the hash
// and public key.  Results are looked up in and added to the signature cache
// when the engine has one.
func (vm *Engine) verifySignature(hash []byte, sigBytes, pkBytes []byte) bool {
	var sigHash chainhash.Hash
	copy(sigHash[:], hash)
	if vm.sigCache != nil && vm.sigCache.Exists(sigHash, sigBytes, pkBytes) {
		return true
	}

	pubKey, err := secp256k1.ParsePubKey(pkBytes)
	if err != nil {
		return false
	}
	signature, err := schnorr.ParseSignature(sigBytes)
	if err != nil {
		return false
	}
	if !signature.Verify(hash, pubKey) {
		return false
	}

	if vm.sigCache != nil {
		vm.sigCache.Add(sigHash, sigBytes, pkBytes)
	}
	return true
}

// opcodeCheckSig treats the top 2 items on the stack as a public key and a
// signature and replaces them with a bool which indicates if the signature was
// successfully verified.
//
// The signature must be exactly SigLen bytes and the public key a compressed
// secp256k1 point.  An empty signature is permitted and simply produces false,
// which allows scripts that optionally check signatures.
//
// Stack transformation: [... signature pubkey] -> [... bool]
func opcodeCheckSig(vm *Engine) error {
	pkBytes, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	sigBytes, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}

	if len(sigBytes) == 0 {
		vm.dstack.PushBool(false)
		return nil
	}
	if len(sigBytes) != SigLen {
		str := fmt.Sprintf("invalid signature length %d (must be %d)",
			len(sigBytes), SigLen)
		return scriptError(ErrSigInvalidLen, str)
	}
	if !isStrictPubKeyEncoding(pkBytes) {
		str := fmt.Sprintf("unsupported public key type %x", pkBytes)
		return scriptError(ErrPubKeyType, str)
	}

	hash, err := CalcSignatureHash(&vm.tx, vm.txIdx, vm.script, vm.inputAmount)
	if err != nil {
		return err
	}

	vm.dstack.PushBool(vm.verifySignature(hash, sigBytes, pkBytes))
	return nil
}
