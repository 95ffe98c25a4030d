// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2015-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"errors"
	"testing"
)

// TestHash160 ensures the hash160 digest matches known vectors.
func TestHash160(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"", "b472a266d0bd89c13706a4132ccfb16f7c3b9fcb"},
		{"abc", "bb1be98c142444d7a56aa3981c3942a978e4dc33"},
	}
	for _, test := range tests {
		got := Hash160([]byte(test.in))
		if !bytes.Equal(got, hexToBytes(test.want)) {
			t.Errorf("%q: unexpected hash -- got %x, want %s", test.in, got,
				test.want)
		}
	}
}

// TestPayToPubKeyHashScript ensures the pay-to-pubkey-hash script is created
// and recognized correctly.
func TestPayToPubKeyHashScript(t *testing.T) {
	t.Parallel()

	pkh := hexToBytes("433ec2ac1ffa1b7b7d027f564529c57197f9ae88")
	script, err := PayToPubKeyHashScript(pkh)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := hexToBytes("76a914433ec2ac1ffa1b7b7d027f564529c57197f9ae8888ac")
	if !bytes.Equal(script, want) {
		t.Fatalf("unexpected script -- got %x, want %x", script, want)
	}
	if !IsPayToPubKeyHash(script) {
		t.Fatalf("script not recognized as pay-to-pubkey-hash")
	}
	if got := ExtractPubKeyHash(script); !bytes.Equal(got, pkh) {
		t.Fatalf("unexpected extracted hash -- got %x, want %x", got, pkh)
	}
	if class := GetScriptClass(script); class != PubKeyHashTy {
		t.Fatalf("unexpected class %v", class)
	}

	_, err = PayToPubKeyHashScript(pkh[:19])
	if !errors.Is(err, ErrInvalidPubKeyHashLen) {
		t.Fatalf("unexpected error -- got %v, want %v", err,
			ErrInvalidPubKeyHashLen)
	}
}

// TestNullDataScript tests whether NullDataScript returns a valid script.
func TestNullDataScript(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		data     []byte
		expected []byte
		err      error
		class    ScriptClass
	}{{
		name:     "small int",
		data:     hexToBytes("01"),
		expected: mustParseShortForm("RETURN 1"),
		err:      nil,
		class:    NullDataTy,
	}, {
		name:     "max small int",
		data:     hexToBytes("10"),
		expected: mustParseShortForm("RETURN 16"),
		err:      nil,
		class:    NullDataTy,
	}, {
		name:     "data of size before OP_PUSHDATA1 is needed",
		data:     bytes.Repeat([]byte{0x12}, 75),
		expected: append([]byte{OP_RETURN, OP_DATA_75}, bytes.Repeat([]byte{0x12}, 75)...),
		err:      nil,
		class:    NullDataTy,
	}, {
		name:     "max data size",
		data:     bytes.Repeat([]byte{0x12}, MaxDataCarrierSize),
		expected: append([]byte{OP_RETURN, OP_PUSHDATA2, 0x01, 0x00}, bytes.Repeat([]byte{0x12}, MaxDataCarrierSize)...),
		err:      nil,
		class:    NullDataTy,
	}, {
		name:     "too big",
		data:     bytes.Repeat([]byte{0x12}, MaxDataCarrierSize+1),
		expected: nil,
		err:      ErrTooMuchNullData,
		class:    NonStandardTy,
	}}

	for i, test := range tests {
		script, err := NullDataScript(test.data)
		if !errors.Is(err, test.err) {
			t.Errorf("NullDataScript: #%d (%s): unexpected error: got %v, "+
				"want %v", i, test.name, err, test.err)
			continue
		}

		// Check that the expected result was returned.
		if !bytes.Equal(script, test.expected) {
			t.Errorf("NullDataScript: #%d (%s) wrong result\ngot: %x\n"+
				"want: %x", i, test.name, script, test.expected)
			continue
		}

		// Check that the script has the correct type.
		scriptType := GetScriptClass(script)
		if scriptType != test.class {
			t.Errorf("GetScriptClass: #%d (%s) wrong result -- got: %v, "+
				"want: %v", i, test.name, scriptType, test.class)
			continue
		}
	}
}

// TestScriptClassStringer tests the stringized output for the ScriptClass
// type.
func TestScriptClassStringer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   ScriptClass
		want string
	}{
		{NonStandardTy, "nonstandard"},
		{PubKeyHashTy, "pubkeyhash"},
		{NullDataTy, "nulldata"},
		{0xff, "Invalid"},
	}

	for i, test := range tests {
		result := test.in.String()
		if result != test.want {
			t.Errorf("String #%d\n got: %s want: %s", i, result, test.want)
			continue
		}
	}
}

// TestCoinbaseScript ensures coinbase scripts are push only and differ by
// height and extra nonce.
func TestCoinbaseScript(t *testing.T) {
	t.Parallel()

	script, err := CoinbaseScript(1, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := hexToBytes("080000000000000001080000000000000000")
	if !bytes.Equal(script, want) {
		t.Fatalf("unexpected script -- got %x, want %x", script, want)
	}
	if !IsPushOnlyScript(script) {
		t.Fatalf("coinbase script is not push only")
	}

	other, err := CoinbaseScript(1, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bytes.Equal(script, other) {
		t.Fatalf("extra nonce does not change the script")
	}
	if class := GetScriptClass(script); class != NonStandardTy {
		t.Fatalf("unexpected class %v", class)
	}
}
