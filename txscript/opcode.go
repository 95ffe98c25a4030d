// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2015-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/decred/dcrd/crypto/ripemd160"
)

// These constants are the values of the official opcodes used on the btc wiki,
// in bitcoin core and in most if not all other references and software related
// to handling scripts.
const (
	OP_0                   = 0x00 // 0
	OP_FALSE               = 0x00 // 0 - AKA OP_0
	OP_DATA_1              = 0x01 // 1
	OP_DATA_2              = 0x02 // 2
	OP_DATA_3              = 0x03 // 3
	OP_DATA_4              = 0x04 // 4
	OP_DATA_5              = 0x05 // 5
	OP_DATA_6              = 0x06 // 6
	OP_DATA_7              = 0x07 // 7
	OP_DATA_8              = 0x08 // 8
	OP_DATA_9              = 0x09 // 9
	OP_DATA_10             = 0x0a // 10
	OP_DATA_11             = 0x0b // 11
	OP_DATA_12             = 0x0c // 12
	OP_DATA_13             = 0x0d // 13
	OP_DATA_14             = 0x0e // 14
	OP_DATA_15             = 0x0f // 15
	OP_DATA_16             = 0x10 // 16
	OP_DATA_17             = 0x11 // 17
	OP_DATA_18             = 0x12 // 18
	OP_DATA_19             = 0x13 // 19
	OP_DATA_20             = 0x14 // 20
	OP_DATA_21             = 0x15 // 21
	OP_DATA_22             = 0x16 // 22
	OP_DATA_23             = 0x17 // 23
	OP_DATA_24             = 0x18 // 24
	OP_DATA_25             = 0x19 // 25
	OP_DATA_26             = 0x1a // 26
	OP_DATA_27             = 0x1b // 27
	OP_DATA_28             = 0x1c // 28
	OP_DATA_29             = 0x1d // 29
	OP_DATA_30             = 0x1e // 30
	OP_DATA_31             = 0x1f // 31
	OP_DATA_32             = 0x20 // 32
	OP_DATA_33             = 0x21 // 33
	OP_DATA_34             = 0x22 // 34
	OP_DATA_35             = 0x23 // 35
	OP_DATA_36             = 0x24 // 36
	OP_DATA_37             = 0x25 // 37
	OP_DATA_38             = 0x26 // 38
	OP_DATA_39             = 0x27 // 39
	OP_DATA_40             = 0x28 // 40
	OP_DATA_41             = 0x29 // 41
	OP_DATA_42             = 0x2a // 42
	OP_DATA_43             = 0x2b // 43
	OP_DATA_44             = 0x2c // 44
	OP_DATA_45             = 0x2d // 45
	OP_DATA_46             = 0x2e // 46
	OP_DATA_47             = 0x2f // 47
	OP_DATA_48             = 0x30 // 48
	OP_DATA_49             = 0x31 // 49
	OP_DATA_50             = 0x32 // 50
	OP_DATA_51             = 0x33 // 51
	OP_DATA_52             = 0x34 // 52
	OP_DATA_53             = 0x35 // 53
	OP_DATA_54             = 0x36 // 54
	OP_DATA_55             = 0x37 // 55
	OP_DATA_56             = 0x38 // 56
	OP_DATA_57             = 0x39 // 57
	OP_DATA_58             = 0x3a // 58
	OP_DATA_59             = 0x3b // 59
	OP_DATA_60             = 0x3c // 60
	OP_DATA_61             = 0x3d // 61
	OP_DATA_62             = 0x3e // 62
	OP_DATA_63             = 0x3f // 63
	OP_DATA_64             = 0x40 // 64
	OP_DATA_65             = 0x41 // 65
	OP_DATA_66             = 0x42 // 66
	OP_DATA_67             = 0x43 // 67
	OP_DATA_68             = 0x44 // 68
	OP_DATA_69             = 0x45 // 69
	OP_DATA_70             = 0x46 // 70
	OP_DATA_71             = 0x47 // 71
	OP_DATA_72             = 0x48 // 72
	OP_DATA_73             = 0x49 // 73
	OP_DATA_74             = 0x4a // 74
	OP_DATA_75             = 0x4b // 75
	OP_PUSHDATA1           = 0x4c // 76
	OP_PUSHDATA2           = 0x4d // 77
	OP_PUSHDATA4           = 0x4e // 78
	OP_1NEGATE             = 0x4f // 79
	OP_RESERVED            = 0x50 // 80
	OP_1                   = 0x51 // 81 - AKA OP_TRUE
	OP_TRUE                = 0x51 // 81
	OP_2                   = 0x52 // 82
	OP_3                   = 0x53 // 83
	OP_4                   = 0x54 // 84
	OP_5                   = 0x55 // 85
	OP_6                   = 0x56 // 86
	OP_7                   = 0x57 // 87
	OP_8                   = 0x58 // 88
	OP_9                   = 0x59 // 89
	OP_10                  = 0x5a // 90
	OP_11                  = 0x5b // 91
	OP_12                  = 0x5c // 92
	OP_13                  = 0x5d // 93
	OP_14                  = 0x5e // 94
	OP_15                  = 0x5f // 95
	OP_16                  = 0x60 // 96
	OP_NOP                 = 0x61 // 97
	OP_VER                 = 0x62 // 98
	OP_IF                  = 0x63 // 99
	OP_NOTIF               = 0x64 // 100
	OP_VERIF               = 0x65 // 101
	OP_VERNOTIF            = 0x66 // 102
	OP_ELSE                = 0x67 // 103
	OP_ENDIF               = 0x68 // 104
	OP_VERIFY              = 0x69 // 105
	OP_RETURN              = 0x6a // 106
	OP_TOALTSTACK          = 0x6b // 107
	OP_FROMALTSTACK        = 0x6c // 108
	OP_2DROP               = 0x6d // 109
	OP_2DUP                = 0x6e // 110
	OP_3DUP                = 0x6f // 111
	OP_2OVER               = 0x70 // 112
	OP_2ROT                = 0x71 // 113
	OP_2SWAP               = 0x72 // 114
	OP_IFDUP               = 0x73 // 115
	OP_DEPTH               = 0x74 // 116
	OP_DROP                = 0x75 // 117
	OP_DUP                 = 0x76 // 118
	OP_NIP                 = 0x77 // 119
	OP_OVER                = 0x78 // 120
	OP_PICK                = 0x79 // 121
	OP_ROLL                = 0x7a // 122
	OP_ROT                 = 0x7b // 123
	OP_SWAP                = 0x7c // 124
	OP_TUCK                = 0x7d // 125
	OP_CAT                 = 0x7e // 126
	OP_SUBSTR              = 0x7f // 127
	OP_LEFT                = 0x80 // 128
	OP_RIGHT               = 0x81 // 129
	OP_SIZE                = 0x82 // 130
	OP_INVERT              = 0x83 // 131
	OP_AND                 = 0x84 // 132
	OP_OR                  = 0x85 // 133
	OP_XOR                 = 0x86 // 134
	OP_EQUAL               = 0x87 // 135
	OP_EQUALVERIFY         = 0x88 // 136
	OP_RESERVED1           = 0x89 // 137
	OP_RESERVED2           = 0x8a // 138
	OP_1ADD                = 0x8b // 139
	OP_1SUB                = 0x8c // 140
	OP_2MUL                = 0x8d // 141
	OP_2DIV                = 0x8e // 142
	OP_NEGATE              = 0x8f // 143
	OP_ABS                 = 0x90 // 144
	OP_NOT                 = 0x91 // 145
	OP_0NOTEQUAL           = 0x92 // 146
	OP_ADD                 = 0x93 // 147
	OP_SUB                 = 0x94 // 148
	OP_MUL                 = 0x95 // 149
	OP_DIV                 = 0x96 // 150
	OP_MOD                 = 0x97 // 151
	OP_LSHIFT              = 0x98 // 152
	OP_RSHIFT              = 0x99 // 153
	OP_BOOLAND             = 0x9a // 154
	OP_BOOLOR              = 0x9b // 155
	OP_NUMEQUAL            = 0x9c // 156
	OP_NUMEQUALVERIFY      = 0x9d // 157
	OP_NUMNOTEQUAL         = 0x9e // 158
	OP_LESSTHAN            = 0x9f // 159
	OP_GREATERTHAN         = 0xa0 // 160
	OP_LESSTHANOREQUAL     = 0xa1 // 161
	OP_GREATERTHANOREQUAL  = 0xa2 // 162
	OP_MIN                 = 0xa3 // 163
	OP_MAX                 = 0xa4 // 164
	OP_WITHIN              = 0xa5 // 165
	OP_RIPEMD160           = 0xa6 // 166
	OP_SHA1                = 0xa7 // 167
	OP_SHA256              = 0xa8 // 168
	OP_HASH160             = 0xa9 // 169
	OP_HASH256             = 0xaa // 170
	OP_CODESEPARATOR       = 0xab // 171
	OP_CHECKSIG            = 0xac // 172
	OP_CHECKSIGVERIFY      = 0xad // 173
	OP_CHECKMULTISIG       = 0xae // 174
	OP_CHECKMULTISIGVERIFY = 0xaf // 175
	OP_INVALIDOPCODE       = 0xff // 255
)

// opcodeNames houses the human-readable names of every opcode.  Values without
// an assigned name are rendered as OP_UNKNOWN<value>.
var opcodeNames = func() [256]string {
	var names [256]string
	assigned := map[byte]string{
		OP_0:                   "OP_0",
		OP_PUSHDATA1:           "OP_PUSHDATA1",
		OP_PUSHDATA2:           "OP_PUSHDATA2",
		OP_PUSHDATA4:           "OP_PUSHDATA4",
		OP_1NEGATE:             "OP_1NEGATE",
		OP_RESERVED:            "OP_RESERVED",
		OP_NOP:                 "OP_NOP",
		OP_VER:                 "OP_VER",
		OP_IF:                  "OP_IF",
		OP_NOTIF:               "OP_NOTIF",
		OP_VERIF:               "OP_VERIF",
		OP_VERNOTIF:            "OP_VERNOTIF",
		OP_ELSE:                "OP_ELSE",
		OP_ENDIF:               "OP_ENDIF",
		OP_VERIFY:              "OP_VERIFY",
		OP_RETURN:              "OP_RETURN",
		OP_TOALTSTACK:          "OP_TOALTSTACK",
		OP_FROMALTSTACK:        "OP_FROMALTSTACK",
		OP_2DROP:               "OP_2DROP",
		OP_2DUP:                "OP_2DUP",
		OP_3DUP:                "OP_3DUP",
		OP_2OVER:               "OP_2OVER",
		OP_2ROT:                "OP_2ROT",
		OP_2SWAP:               "OP_2SWAP",
		OP_IFDUP:               "OP_IFDUP",
		OP_DEPTH:               "OP_DEPTH",
		OP_DROP:                "OP_DROP",
		OP_DUP:                 "OP_DUP",
		OP_NIP:                 "OP_NIP",
		OP_OVER:                "OP_OVER",
		OP_PICK:                "OP_PICK",
		OP_ROLL:                "OP_ROLL",
		OP_ROT:                 "OP_ROT",
		OP_SWAP:                "OP_SWAP",
		OP_TUCK:                "OP_TUCK",
		OP_CAT:                 "OP_CAT",
		OP_SUBSTR:              "OP_SUBSTR",
		OP_LEFT:                "OP_LEFT",
		OP_RIGHT:               "OP_RIGHT",
		OP_SIZE:                "OP_SIZE",
		OP_INVERT:              "OP_INVERT",
		OP_AND:                 "OP_AND",
		OP_OR:                  "OP_OR",
		OP_XOR:                 "OP_XOR",
		OP_EQUAL:               "OP_EQUAL",
		OP_EQUALVERIFY:         "OP_EQUALVERIFY",
		OP_RESERVED1:           "OP_RESERVED1",
		OP_RESERVED2:           "OP_RESERVED2",
		OP_1ADD:                "OP_1ADD",
		OP_1SUB:                "OP_1SUB",
		OP_2MUL:                "OP_2MUL",
		OP_2DIV:                "OP_2DIV",
		OP_NEGATE:              "OP_NEGATE",
		OP_ABS:                 "OP_ABS",
		OP_NOT:                 "OP_NOT",
		OP_0NOTEQUAL:           "OP_0NOTEQUAL",
		OP_ADD:                 "OP_ADD",
		OP_SUB:                 "OP_SUB",
		OP_MUL:                 "OP_MUL",
		OP_DIV:                 "OP_DIV",
		OP_MOD:                 "OP_MOD",
		OP_LSHIFT:              "OP_LSHIFT",
		OP_RSHIFT:              "OP_RSHIFT",
		OP_BOOLAND:             "OP_BOOLAND",
		OP_BOOLOR:              "OP_BOOLOR",
		OP_NUMEQUAL:            "OP_NUMEQUAL",
		OP_NUMEQUALVERIFY:      "OP_NUMEQUALVERIFY",
		OP_NUMNOTEQUAL:         "OP_NUMNOTEQUAL",
		OP_LESSTHAN:            "OP_LESSTHAN",
		OP_GREATERTHAN:         "OP_GREATERTHAN",
		OP_LESSTHANOREQUAL:     "OP_LESSTHANOREQUAL",
		OP_GREATERTHANOREQUAL:  "OP_GREATERTHANOREQUAL",
		OP_MIN:                 "OP_MIN",
		OP_MAX:                 "OP_MAX",
		OP_WITHIN:              "OP_WITHIN",
		OP_RIPEMD160:           "OP_RIPEMD160",
		OP_SHA1:                "OP_SHA1",
		OP_SHA256:              "OP_SHA256",
		OP_HASH160:             "OP_HASH160",
		OP_HASH256:             "OP_HASH256",
		OP_CODESEPARATOR:       "OP_CODESEPARATOR",
		OP_CHECKSIG:            "OP_CHECKSIG",
		OP_CHECKSIGVERIFY:      "OP_CHECKSIGVERIFY",
		OP_CHECKMULTISIG:       "OP_CHECKMULTISIG",
		OP_CHECKMULTISIGVERIFY: "OP_CHECKMULTISIGVERIFY",
		OP_INVALIDOPCODE:       "OP_INVALIDOPCODE",
	}
	for i := range names {
		op := byte(i)
		switch {
		case op >= OP_DATA_1 && op <= OP_DATA_75:
			names[i] = fmt.Sprintf("OP_DATA_%d", op)
		case op >= OP_1 && op <= OP_16:
			names[i] = fmt.Sprintf("OP_%d", op-(OP_1-1))
		default:
			if name, ok := assigned[op]; ok {
				names[i] = name
			} else {
				names[i] = fmt.Sprintf("OP_UNKNOWN%d", op)
			}
		}
	}
	return names
}()

// OpcodeName returns the human-readable name of the provided opcode.
func OpcodeName(op byte) string {
	return opcodeNames[op]
}

// isOpcodeAlwaysIllegal returns whether or not the opcode is always illegal
// when passed over by the program counter even if in a non-executed branch (it
// isn't a coincidence that they are conditionals).
func isOpcodeAlwaysIllegal(op byte) bool {
	switch op {
	case OP_VERIF:
		return true
	case OP_VERNOTIF:
		return true
	default:
		return false
	}
}

// isOpcodeConditional returns whether or not the opcode is a conditional opcode
// which changes the conditional execution stack when executed.
func isOpcodeConditional(op byte) bool {
	switch op {
	case OP_IF:
		return true
	case OP_NOTIF:
		return true
	case OP_ELSE:
		return true
	case OP_ENDIF:
		return true
	default:
		return false
	}
}

// isSmallInt returns whether or not the opcode is considered a small integer,
// which is an OP_0, or OP_1 through OP_16.
func isSmallInt(op byte) bool {
	return op == OP_0 || (op >= OP_1 && op <= OP_16)
}

// asSmallInt returns the passed opcode, which must be true according to
// isSmallInt(), as an integer.
func asSmallInt(op byte) int {
	if op == OP_0 {
		return 0
	}

	return int(op - (OP_1 - 1))
}

// checkMinimalDataPush returns whether or not the provided opcode is the
// smallest possible way to represent the given data.  For example, the value 15
// could be pushed with OP_DATA_1 15 (among other variations); however, OP_15 is
// a single opcode that represents the same value and is only a single byte
// versus two bytes.
func checkMinimalDataPush(op byte, data []byte) error {
	dataLen := len(data)
	switch {
	case dataLen == 0 && op != OP_0:
		str := fmt.Sprintf("zero length data push is encoded with opcode %s "+
			"instead of OP_0", opcodeNames[op])
		return scriptError(ErrMinimalData, str)
	case dataLen == 1 && data[0] >= 1 && data[0] <= 16:
		if op != OP_1+data[0]-1 {
			// Should have used OP_1 .. OP_16
			str := fmt.Sprintf("data push of the value %d encoded with opcode "+
				"%s instead of OP_%d", data[0], opcodeNames[op], data[0])
			return scriptError(ErrMinimalData, str)
		}
	case dataLen == 1 && data[0] == 0xff:
		if op != OP_1NEGATE {
			str := fmt.Sprintf("data push of the value -1 encoded with opcode "+
				"%s instead of OP_1NEGATE", opcodeNames[op])
			return scriptError(ErrMinimalData, str)
		}
	case dataLen <= 75:
		if int(op) != dataLen {
			// Should have used a direct push
			str := fmt.Sprintf("data push of %d bytes encoded with opcode %s "+
				"instead of OP_DATA_%d", dataLen, opcodeNames[op], dataLen)
			return scriptError(ErrMinimalData, str)
		}
	case dataLen <= 255:
		if op != OP_PUSHDATA1 {
			str := fmt.Sprintf("data push of %d bytes encoded with opcode %s "+
				"instead of OP_PUSHDATA1", dataLen, opcodeNames[op])
			return scriptError(ErrMinimalData, str)
		}
	case dataLen <= 65535:
		if op != OP_PUSHDATA2 {
			str := fmt.Sprintf("data push of %d bytes encoded with opcode %s "+
				"instead of OP_PUSHDATA2", dataLen, opcodeNames[op])
			return scriptError(ErrMinimalData, str)
		}
	}
	return nil
}

// disasmOpcode writes a human-readable disassembly of the provided opcode and
// data into the provided buffer.  The compact flag indicates the disassembly
// should print a more compact representation of data-carrying and small integer
// opcodes.  For example, OP_0 through OP_16 are replaced with the numeric value
// and data pushes are printed as only the hex representation of the data.
func disasmOpcode(buf *strings.Builder, op byte, data []byte, compact bool) {
	// Replace opcode which represent values (e.g. OP_0 through OP_16 and
	// OP_1NEGATE) with the raw value when performing a compact disassembly.
	opcodeName := opcodeNames[op]
	if compact {
		if isSmallInt(op) {
			fmt.Fprintf(buf, "%d", asSmallInt(op))
			return
		}
		if op == OP_1NEGATE {
			buf.WriteString("-1")
			return
		}
	}

	// Nothing more to do for non-data push opcodes.
	if op == OP_0 || op > OP_PUSHDATA4 {
		buf.WriteString(opcodeName)
		return
	}

	// Only print the data when performing a compact disassembly.
	if compact {
		buf.WriteString(hex.EncodeToString(data))
		return
	}

	buf.WriteString(opcodeName)
	buf.WriteString(" 0x")
	buf.WriteString(hex.EncodeToString(data))
}

// *******************************************
// Opcode implementation functions start here.
// *******************************************

// dispatchOpcode executes the provided opcode.  The opcode set is closed: every
// byte value is either handled here or rejected as reserved.
func (vm *Engine) dispatchOpcode(op byte, data []byte) error {
	switch {
	// Data pushes, including OP_0 which pushes an empty byte array.
	case op <= OP_PUSHDATA4:
		vm.dstack.PushByteArray(data)
		return nil

	// Small integers OP_1 through OP_16.
	case op >= OP_1 && op <= OP_16:
		vm.dstack.PushByteArray([]byte{byte(asSmallInt(op))})
		return nil
	}

	switch op {
	case OP_1NEGATE:
		vm.dstack.PushInt(big.NewInt(-1))
		return nil
	case OP_NOP:
		return nil

	// Control flow.
	case OP_IF, OP_NOTIF:
		return opcodeIf(op, vm)
	case OP_ELSE:
		return opcodeElse(op, vm)
	case OP_ENDIF:
		return opcodeEndif(op, vm)
	case OP_VERIFY:
		return abstractVerify(op, vm, ErrVerify)
	case OP_RETURN:
		return scriptError(ErrEarlyReturn, "script returned early")

	// Stack manipulation.
	case OP_TOALTSTACK:
		so, err := vm.dstack.PopByteArray()
		if err != nil {
			return err
		}
		vm.astack.PushByteArray(so)
		return nil
	case OP_FROMALTSTACK:
		so, err := vm.astack.PopByteArray()
		if err != nil {
			return err
		}
		vm.dstack.PushByteArray(so)
		return nil
	case OP_2DROP:
		return vm.dstack.DropN(2)
	case OP_2DUP:
		return vm.dstack.DupN(2)
	case OP_3DUP:
		return vm.dstack.DupN(3)
	case OP_2OVER:
		return vm.dstack.OverN(2)
	case OP_2ROT:
		return vm.dstack.RotN(2)
	case OP_2SWAP:
		return vm.dstack.SwapN(2)
	case OP_IFDUP:
		return opcodeIfDup(vm)
	case OP_DEPTH:
		vm.dstack.PushInt(big.NewInt(int64(vm.dstack.Depth())))
		return nil
	case OP_DROP:
		return vm.dstack.DropN(1)
	case OP_DUP:
		return vm.dstack.DupN(1)
	case OP_NIP:
		return vm.dstack.NipN(1)
	case OP_OVER:
		return vm.dstack.OverN(1)
	case OP_PICK, OP_ROLL:
		return opcodePickRoll(op, vm)
	case OP_ROT:
		return vm.dstack.RotN(1)
	case OP_SWAP:
		return vm.dstack.SwapN(1)
	case OP_TUCK:
		return vm.dstack.Tuck()
	case OP_SIZE:
		so, err := vm.dstack.PeekByteArray(0)
		if err != nil {
			return err
		}
		vm.dstack.PushInt(big.NewInt(int64(len(so))))
		return nil

	// Equality.
	case OP_EQUAL:
		return opcodeEqual(vm)
	case OP_EQUALVERIFY:
		if err := opcodeEqual(vm); err != nil {
			return err
		}
		return abstractVerify(op, vm, ErrEqualVerify)

	// Unary arithmetic.
	case OP_1ADD, OP_1SUB, OP_NEGATE, OP_ABS, OP_NOT, OP_0NOTEQUAL:
		return opcodeUnaryNum(op, vm)

	// Binary arithmetic and comparisons.
	case OP_ADD, OP_SUB, OP_MUL, OP_DIV, OP_MOD, OP_BOOLAND, OP_BOOLOR,
		OP_NUMEQUAL, OP_NUMNOTEQUAL, OP_LESSTHAN, OP_GREATERTHAN,
		OP_LESSTHANOREQUAL, OP_GREATERTHANOREQUAL, OP_MIN, OP_MAX:
		return opcodeBinaryNum(op, vm)
	case OP_NUMEQUALVERIFY:
		if err := opcodeBinaryNum(OP_NUMEQUAL, vm); err != nil {
			return err
		}
		return abstractVerify(op, vm, ErrNumEqualVerify)
	case OP_WITHIN:
		return opcodeWithin(vm)

	// Hashing.
	case OP_RIPEMD160:
		return opcodeHash(vm, calcRipemd160)
	case OP_SHA256:
		return opcodeHash(vm, chainhash.HashB)
	case OP_HASH160:
		return opcodeHash(vm, Hash160)
	case OP_HASH256:
		return opcodeHash(vm, chainhash.DoubleHashB)

	// Signature checks.
	case OP_CHECKSIG:
		return opcodeCheckSig(vm)
	case OP_CHECKSIGVERIFY:
		if err := opcodeCheckSig(vm); err != nil {
			return err
		}
		return abstractVerify(op, vm, ErrCheckSigVerify)
	}

	str := fmt.Sprintf("attempt to execute reserved opcode %s", opcodeNames[op])
	return scriptError(ErrReservedOpcode, str)
}

// opcodeIf treats the top item on the data stack as a boolean and removes it.
// OP_NOTIF inverts the value.
//
// An appropriate entry is added to the conditional stack depending on whether
// the boolean is true and whether this if is on an executing branch in order
// to allow proper execution of further opcodes depending on the conditional
// logic.  When the boolean is true, the first branch will be executed (unless
// this opcode is nested in a non-executed branch).
//
// <expression> if [statements] [else [statements]] endif
//
// Note that, unlike for all non-conditional opcodes, this is executed even when
// it is on a non-executing branch so proper nesting is maintained.
//
// Data stack transformation: [... bool] -> [...]
// Conditional stack transformation: [...] -> [... OpCondValue]
func opcodeIf(op byte, vm *Engine) error {
	if !vm.isBranchExecuting() {
		vm.pushCond(false)
		return nil
	}

	ok, err := vm.dstack.PopBool()
	if err != nil {
		return err
	}
	if op == OP_NOTIF {
		ok = !ok
	}
	vm.pushCond(ok)
	return nil
}

// opcodeElse inverts conditional execution for other half of if/else/endif.
//
// An error is returned if there has not already been a matching OP_IF.
//
// Conditional stack transformation: [... OpCondValue] -> [... !OpCondValue]
func opcodeElse(op byte, vm *Engine) error {
	if len(vm.condStack) == 0 {
		str := fmt.Sprintf("encountered opcode %s with no matching opcode "+
			"to begin conditional execution", opcodeNames[op])
		return scriptError(ErrUnbalancedConditional, str)
	}

	top := len(vm.condStack) - 1
	if vm.condStack[top] {
		vm.numFalseConds++
	} else {
		vm.numFalseConds--
	}
	vm.condStack[top] = !vm.condStack[top]
	return nil
}

// opcodeEndif terminates a conditional block, removing the value from the
// conditional execution stack.
//
// An error is returned if there has not already been a matching OP_IF.
//
// Conditional stack transformation: [... OpCondValue] -> [...]
func opcodeEndif(op byte, vm *Engine) error {
	if len(vm.condStack) == 0 {
		str := fmt.Sprintf("encountered opcode %s with no matching opcode "+
			"to begin conditional execution", opcodeNames[op])
		return scriptError(ErrUnbalancedConditional, str)
	}

	top := len(vm.condStack) - 1
	if !vm.condStack[top] {
		vm.numFalseConds--
	}
	vm.condStack = vm.condStack[:top]
	return nil
}

// abstractVerify examines the top item on the data stack as a boolean value and
// verifies it evaluates to true.  An error is returned either when there is no
// item on the stack or when that item evaluates to false.  In the latter case
// where the verification fails specifically due to the top item evaluating
// to false, the returned error will use the passed error kind.
func abstractVerify(op byte, vm *Engine, c ErrorKind) error {
	verified, err := vm.dstack.PopBool()
	if err != nil {
		return err
	}

	if !verified {
		str := fmt.Sprintf("%s failed", opcodeNames[op])
		return scriptError(c, str)
	}
	return nil
}

// opcodeIfDup duplicates the top item of the stack if it is not zero.
//
// Stack transformation (x1==0): [... x1] -> [... x1]
// Stack transformation (x1!=0): [... x1] -> [... x1 x1]
func opcodeIfDup(vm *Engine) error {
	so, err := vm.dstack.PeekByteArray(0)
	if err != nil {
		return err
	}

	// Push copy of data iff it isn't zero
	if asBool(so) {
		vm.dstack.PushByteArray(so)
	}

	return nil
}

// opcodePickRoll treats the top item on the data stack as an integer and
// copies (OP_PICK) or moves (OP_ROLL) the item on the stack that number of
// items back to the top.
//
// Stack transformation: [xn ... x2 x1 x0 n] -> [xn ... x2 x1 x0 xn]
func opcodePickRoll(op byte, vm *Engine) error {
	val, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	if !val.IsInt64() || val.Int64() < 0 ||
		val.Int64() >= int64(vm.dstack.Depth()) {

		str := fmt.Sprintf("%s index %v is invalid for stack size %d",
			opcodeNames[op], val, vm.dstack.Depth())
		return scriptError(ErrInvalidStackOperation, str)
	}

	if op == OP_PICK {
		return vm.dstack.PickN(int32(val.Int64()))
	}
	return vm.dstack.RollN(int32(val.Int64()))
}

// opcodeEqual removes the top 2 items of the data stack, compares them as raw
// bytes, and pushes the result, encoded as a boolean, back to the stack.
//
// Stack transformation: [... x1 x2] -> [... bool]
func opcodeEqual(vm *Engine) error {
	a, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	b, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}

	vm.dstack.PushBool(bytes.Equal(a, b))
	return nil
}

// opcodeUnaryNum treats the top item on the data stack as an integer, applies
// the unary operation and replaces it with the result.
//
// Stack transformation: [... x1] -> [... op(x1)]
func opcodeUnaryNum(op byte, vm *Engine) error {
	m, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}

	n := new(big.Int)
	switch op {
	case OP_1ADD:
		n.Add(m, bigOne)
	case OP_1SUB:
		n.Sub(m, bigOne)
	case OP_NEGATE:
		n.Neg(m)
	case OP_ABS:
		n.Abs(m)
	case OP_NOT:
		vm.dstack.PushBool(m.Sign() == 0)
		return nil
	case OP_0NOTEQUAL:
		vm.dstack.PushBool(m.Sign() != 0)
		return nil
	}

	vm.dstack.PushInt(n)
	return nil
}

// opcodeBinaryNum treats the top two items on the data stack as integers,
// applies the binary operation with the second-to-top item as the left
// operand, and replaces them with the result.
//
// Stack transformation: [... x1 x2] -> [... op(x1, x2)]
func opcodeBinaryNum(op byte, vm *Engine) error {
	v0, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	v1, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}

	n := new(big.Int)
	switch op {
	case OP_ADD:
		n.Add(v1, v0)
	case OP_SUB:
		n.Sub(v1, v0)
	case OP_MUL:
		n.Mul(v1, v0)
	case OP_DIV, OP_MOD:
		if v0.Sign() == 0 {
			str := fmt.Sprintf("%s by zero", opcodeNames[op])
			return scriptError(ErrDivideByZero, str)
		}

		// Division truncates toward zero and the remainder takes the sign of
		// the dividend.
		if op == OP_DIV {
			n.Quo(v1, v0)
		} else {
			n.Rem(v1, v0)
		}
	case OP_BOOLAND:
		vm.dstack.PushBool(v1.Sign() != 0 && v0.Sign() != 0)
		return nil
	case OP_BOOLOR:
		vm.dstack.PushBool(v1.Sign() != 0 || v0.Sign() != 0)
		return nil
	case OP_NUMEQUAL:
		vm.dstack.PushBool(v1.Cmp(v0) == 0)
		return nil
	case OP_NUMNOTEQUAL:
		vm.dstack.PushBool(v1.Cmp(v0) != 0)
		return nil
	case OP_LESSTHAN:
		vm.dstack.PushBool(v1.Cmp(v0) < 0)
		return nil
	case OP_GREATERTHAN:
		vm.dstack.PushBool(v1.Cmp(v0) > 0)
		return nil
	case OP_LESSTHANOREQUAL:
		vm.dstack.PushBool(v1.Cmp(v0) <= 0)
		return nil
	case OP_GREATERTHANOREQUAL:
		vm.dstack.PushBool(v1.Cmp(v0) >= 0)
		return nil
	case OP_MIN:
		if v1.Cmp(v0) < 0 {
			n.Set(v1)
		} else {
			n.Set(v0)
		}
	case OP_MAX:
		if v1.Cmp(v0) > 0 {
			n.Set(v1)
		} else {
			n.Set(v0)
		}
	}

	vm.dstack.PushInt(n)
	return nil
}

// opcodeWithin treats the top 3 items on the data stack as integers.  When the
// value to test is within the specified range (left inclusive), 1 is pushed,
// otherwise 0 is pushed.
//
// Stack transformation: [... x1 min max] -> [... bool]
func opcodeWithin(vm *Engine) error {
	maxVal, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	minVal, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	x, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}

	vm.dstack.PushBool(x.Cmp(minVal) >= 0 && x.Cmp(maxVal) < 0)
	return nil
}

// calcRipemd160 returns the RIPEMD160 digest of the provided data.
func calcRipemd160(buf []byte) []byte {
	hasher := ripemd160.New()
	hasher.Write(buf)
	return hasher.Sum(nil)
}

// opcodeHash replaces the top item of the data stack with its digest under the
// provided hash function.
//
// Stack transformation: [... x1] -> [... hash(x1)]
func opcodeHash(vm *Engine, hashFunc func([]byte) []byte) error {
	buf, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}

	vm.dstack.PushByteArray(hashFunc(buf))
	return nil
}
