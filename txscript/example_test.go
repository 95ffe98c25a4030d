// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2015-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript_test

import (
	"fmt"
	"math/big"

	"github.com/ledgerd/ledgerd/txscript"
)

// This example demonstrates creating a script tokenizer instance and using it
// to count the number of opcodes a script contains.
func ExampleScriptTokenizer() {
	// Create a script to use in the example.  Ordinarily this would come from
	// some other source.
	hash160 := txscript.Hash160([]byte("example"))
	script, err := txscript.NewScriptBuilder().AddOp(txscript.OP_DUP).
		AddOp(txscript.OP_HASH160).AddData(hash160).
		AddOp(txscript.OP_EQUALVERIFY).AddOp(txscript.OP_CHECKSIG).Script()
	if err != nil {
		fmt.Printf("failed to build script: %v\n", err)
		return
	}

	// Create a tokenizer to iterate the script and count the number of opcodes.
	var numOpcodes int
	tokenizer := txscript.MakeScriptTokenizer(script)
	for tokenizer.Next() {
		numOpcodes++
	}
	if tokenizer.Err() != nil {
		fmt.Printf("script failed to parse: %v\n", err)
	} else {
		fmt.Printf("script contains %d opcode(s)\n", numOpcodes)
	}

	// Output:
	// script contains 5 opcode(s)
}

// This example demonstrates encoding integers with the minimal script number
// encoding.
func ExampleScriptNumBytes() {
	for _, v := range []int64{0, 1, -1, 127, 128, -128, -129} {
		fmt.Printf("%d: [%x]\n", v, txscript.ScriptNumBytes(big.NewInt(v)))
	}

	// Output:
	// 0: []
	// 1: [01]
	// -1: [ff]
	// 127: [7f]
	// 128: [0080]
	// -128: [80]
	// -129: [ff7f]
}
