// Copyright (c) 2015-2017 The btcsuite developers
// Copyright (c) 2015-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"fmt"
	"math/big"
)

const (
	// MaxScriptNumLen is the maximum number of bytes data being interpreted
	// as an integer may be for the majority of op codes.  It is large
	// enough to hold any 256-bit value along with its sign.
	MaxScriptNumLen = 33
)

// bigOne is 1 represented as a big.Int.  It is defined here to avoid the
// overhead of creating it multiple times.
var bigOne = big.NewInt(1)

// ScriptNumBytes returns the number serialized as a minimal big-endian two's
// complement byte slice.  Zero is the empty slice, positive values carry a
// leading zero byte when the high bit of their magnitude is set, and negative
// values use the fewest bytes that keep the sign bit set.
//
// Example encodings:
//
//	   127 -> [0x7f]
//	  -127 -> [0x81]
//	   128 -> [0x00 0x80]
//	  -128 -> [0x80]
//	   129 -> [0x00 0x81]
//	  -129 -> [0xff 0x7f]
//	     0 -> []
//	 32767 -> [0x7f 0xff]
//	-32768 -> [0x80 0x00]
func ScriptNumBytes(n *big.Int) []byte {
	switch n.Sign() {
	case 0:
		return nil

	case 1:
		magnitude := n.Bytes()
		if magnitude[0]&0x80 != 0 {
			return append([]byte{0x00}, magnitude...)
		}
		return magnitude
	}

	// The minimal length L satisfies -2^(8L-1) <= n, which is the byte length
	// of |n|-1 plus room for the sign bit.  The encoding is then 2^(8L) + n.
	magMinusOne := new(big.Int).Neg(n)
	magMinusOne.Sub(magMinusOne, bigOne)
	numBytes := magMinusOne.BitLen()/8 + 1
	v := new(big.Int).Lsh(bigOne, uint(numBytes*8))
	v.Add(v, n)
	return v.FillBytes(make([]byte, numBytes))
}

// ParseScriptNum interprets the passed serialized big-endian two's complement
// bytes as a number.  It accepts any encoding, minimal or not.  See
// makeScriptNum for the checked variant used during script execution.
func ParseScriptNum(v []byte) *big.Int {
	n := new(big.Int).SetBytes(v)
	if len(v) > 0 && v[0]&0x80 != 0 {
		n.Sub(n, new(big.Int).Lsh(bigOne, uint(len(v)*8)))
	}
	return n
}

// checkMinimalDataEncoding returns an error when the passed byte array is not
// the exact encoding ScriptNumBytes produces for the value it represents.
// This rejects redundant sign extension bytes as well as a lone zero byte.
func checkMinimalDataEncoding(v []byte) error {
	if !bytes.Equal(ScriptNumBytes(ParseScriptNum(v)), v) {
		str := fmt.Sprintf("numeric value encoded as %x is not minimally "+
			"encoded", v)
		return scriptError(ErrMinimalData, str)
	}
	return nil
}

// makeScriptNum interprets the passed serialized bytes as an encoded integer
// and returns the result as a big integer.
//
// Since the consensus rules dictate that serialized bytes interpreted as ints
// are only allowed to be in the range determined by a maximum number of bytes,
// on a per opcode basis, an error will be returned when the provided bytes
// would result in a number outside of that range.  In particular, the range for
// the vast majority of opcodes dealing with numeric values are limited to
// MaxScriptNumLen bytes.
//
// When requireMinimal is set, the encoding must be the one ScriptNumBytes
// produces for the value.
func makeScriptNum(v []byte, requireMinimal bool, scriptNumLen int) (*big.Int, error) {
	// Interpreting data requires that it is not larger than the passed
	// scriptNumLen value.
	if len(v) > scriptNumLen {
		str := fmt.Sprintf("numeric value encoded as %x is %d bytes which "+
			"exceeds the max allowed of %d", v, len(v), scriptNumLen)
		return nil, scriptError(ErrNumOutOfRange, str)
	}

	if requireMinimal {
		if err := checkMinimalDataEncoding(v); err != nil {
			return nil, err
		}
	}

	return ParseScriptNum(v), nil
}
