// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2015-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// ScriptChunk is a single parsed instruction of a script.  Data is only
// populated for data push opcodes.
type ScriptChunk struct {
	Opcode byte
	Data   []byte
}

// IsPush returns whether the chunk only pushes data.
func (c ScriptChunk) IsPush() bool {
	// All opcodes up to OP_16 are data push instructions.  This does consider
	// OP_RESERVED to be a data push instruction, but execution of OP_RESERVED
	// fails anyway.
	return c.Opcode <= OP_16
}

// String returns the disassembly of the chunk.
func (c ScriptChunk) String() string {
	var buf strings.Builder
	disasmOpcode(&buf, c.Opcode, c.Data, false)
	return buf.String()
}

// ParseScript splits the script into its chunks.  A push that declares more
// bytes than remain in the script results in ErrMalformedPush.
//
// The chunks share memory with the passed script.
func ParseScript(script []byte) ([]ScriptChunk, error) {
	var chunks []ScriptChunk
	tokenizer := MakeScriptTokenizer(script)
	for tokenizer.Next() {
		chunks = append(chunks, ScriptChunk{
			Opcode: tokenizer.Opcode(),
			Data:   tokenizer.Data(),
		})
	}
	if err := tokenizer.Err(); err != nil {
		return nil, err
	}
	return chunks, nil
}

// UnparseScript serializes the chunks back into a raw script.  It is the
// inverse of ParseScript, so the push class recorded in each chunk is kept even
// when it is not the smallest one for the data.  A chunk whose data does not
// fit its push class results in ErrMalformedPush.
func UnparseScript(chunks []ScriptChunk) ([]byte, error) {
	var script []byte
	for i, chunk := range chunks {
		op := chunk.Opcode
		dataLen := len(chunk.Data)
		switch {
		case op == OP_0 || op > OP_PUSHDATA4:
			if dataLen != 0 {
				str := fmt.Sprintf("chunk %d: opcode %s does not carry data",
					i, opcodeNames[op])
				return nil, scriptError(ErrMalformedPush, str)
			}
			script = append(script, op)

		case op <= OP_DATA_75:
			if dataLen != int(op) {
				str := fmt.Sprintf("chunk %d: opcode %s requires %d bytes of "+
					"data, but chunk has %d", i, opcodeNames[op], op, dataLen)
				return nil, scriptError(ErrMalformedPush, str)
			}
			script = append(script, op)
			script = append(script, chunk.Data...)

		case op == OP_PUSHDATA1:
			if dataLen > 0xff {
				str := fmt.Sprintf("chunk %d: %d bytes exceeds the capacity "+
					"of %s", i, dataLen, opcodeNames[op])
				return nil, scriptError(ErrMalformedPush, str)
			}
			script = append(script, op, byte(dataLen))
			script = append(script, chunk.Data...)

		case op == OP_PUSHDATA2:
			if dataLen > 0xffff {
				str := fmt.Sprintf("chunk %d: %d bytes exceeds the capacity "+
					"of %s", i, dataLen, opcodeNames[op])
				return nil, scriptError(ErrMalformedPush, str)
			}
			script = append(script, op)
			script = binary.BigEndian.AppendUint16(script, uint16(dataLen))
			script = append(script, chunk.Data...)

		default:
			if uint64(dataLen) > 0xffffffff {
				str := fmt.Sprintf("chunk %d: %d bytes exceeds the capacity "+
					"of %s", i, dataLen, opcodeNames[op])
				return nil, scriptError(ErrMalformedPush, str)
			}
			script = append(script, op)
			script = binary.BigEndian.AppendUint32(script, uint32(dataLen))
			script = append(script, chunk.Data...)
		}
	}
	return script, nil
}

// IsPushOnlyScript returns whether or not the passed script only pushes data
// according to the consensus definition of pushing data.  Scripts that fail to
// parse are not push only.
func IsPushOnlyScript(script []byte) bool {
	tokenizer := MakeScriptTokenizer(script)
	for tokenizer.Next() {
		// All opcodes up to OP_16 are data push instructions.
		// NOTE: This does consider OP_RESERVED to be a data push instruction,
		// but execution of OP_RESERVED will fail anyway and matches the
		// behavior required by consensus.
		if tokenizer.Opcode() > OP_16 {
			return false
		}
	}
	return tokenizer.Err() == nil
}

// PushedData returns an array of byte slices containing any pushed data found
// in the passed script.  This includes OP_0, but not OP_1 - OP_16.
func PushedData(script []byte) ([][]byte, error) {
	var data [][]byte
	tokenizer := MakeScriptTokenizer(script)
	for tokenizer.Next() {
		if tokenizer.Data() != nil {
			data = append(data, tokenizer.Data())
		} else if tokenizer.Opcode() == OP_0 {
			data = append(data, nil)
		}
	}
	if err := tokenizer.Err(); err != nil {
		return nil, err
	}
	return data, nil
}

// DisasmString formats a disassembled script for one line printing.  When the
// script fails to parse, the returned string will contain the disassembled
// script up to the point the failure occurred along with the string '[error]'
// appended.  In addition, the reason the script failed to parse is returned
// if the caller wants more information about the failure.
//
// NOTE: This function is only intended for human consumption.
func DisasmString(script []byte) (string, error) {
	var disbuf strings.Builder
	tokenizer := MakeScriptTokenizer(script)
	if tokenizer.Next() {
		disasmOpcode(&disbuf, tokenizer.Opcode(), tokenizer.Data(), true)
	}
	for tokenizer.Next() {
		disbuf.WriteByte(' ')
		disasmOpcode(&disbuf, tokenizer.Opcode(), tokenizer.Data(), true)
	}
	if tokenizer.Err() != nil {
		if tokenizer.ByteIndex() != 0 {
			disbuf.WriteByte(' ')
		}
		disbuf.WriteString("[error]")
	}
	return disbuf.String(), tokenizer.Err()
}
