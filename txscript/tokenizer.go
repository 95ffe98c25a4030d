// Copyright (c) 2019-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"encoding/binary"
	"fmt"
)

// ScriptTokenizer provides a facility for easily and efficiently tokenizing
// transaction scripts without creating allocations.  Each successive opcode is
// parsed with the Next function, which returns false when iteration is
// complete, either due to successfully tokenizing the entire script or
// encountering a parse error.  In the case of failure, the Err function may be
// used to obtain the specific parse error.
//
// Upon successfully parsing an opcode, the opcode and data associated with it
// may be obtained via the Opcode and Data functions, respectively.
//
// The ByteIndex function may be used to obtain the tokenizer's current offset
// into the raw script.
type ScriptTokenizer struct {
	script    []byte
	offset    int32
	opcodeIdx int32
	op        byte
	data      []byte
	err       error
}

// Done returns true when either all opcodes have been exhausted or a parse
// failure was encountered and therefore the state has an associated error.
func (t *ScriptTokenizer) Done() bool {
	return t.err != nil || t.offset >= int32(len(t.script))
}

// pushDataLen returns the number of bytes that make up the length prefix of
// the provided push data opcode.
func pushDataLen(op byte) int32 {
	switch op {
	case OP_PUSHDATA1:
		return 1
	case OP_PUSHDATA2:
		return 2
	case OP_PUSHDATA4:
		return 4
	}
	return 0
}

// Next attempts to parse the next opcode and returns whether or not it was
// successful.  It will not be successful if invoked when already at the end of
// the script, a parse failure is encountered, or an associated error already
// exists due to a previous parse failure.
//
// In the case of a true return, the parsed opcode and data can be obtained with
// the associated functions and the offset into the script will either point to
// the next opcode or the end of the script if the final opcode was parsed.
//
// In the case of a false return, the parsed opcode and data will be the last
// successfully parsed values (if any) and the offset into the script will
// either point to the failing opcode or the end of the script if the function
// was invoked when already at the end of the script.
//
// Invoking this function when already at the end of the script is not
// considered an error and will simply return false.
func (t *ScriptTokenizer) Next() bool {
	if t.Done() {
		return false
	}

	op := t.script[t.offset]
	switch {
	// No additional data.  Note that some of the opcodes, notably OP_1NEGATE,
	// OP_0, and OP_[1-16] represent the data themselves.
	case op == OP_0 || op > OP_PUSHDATA4:
		t.offset++
		t.op = op
		t.data = nil
		t.opcodeIdx++
		return true

	// Data pushes of specific lengths -- OP_DATA_[1-75].
	case op <= OP_DATA_75:
		script := t.script[t.offset:]
		opLen := int32(op) + 1
		if int32(len(script)) < opLen {
			str := fmt.Sprintf("opcode %s requires %d bytes, but script only "+
				"has %d remaining", opcodeNames[op], opLen, len(script))
			t.err = scriptError(ErrMalformedPush, str)
			return false
		}

		// Move the offset forward and set the opcode and data accordingly.
		t.offset += opLen
		t.op = op
		t.data = script[1:opLen]
		t.opcodeIdx++
		return true
	}

	// Data pushes with parsed lengths -- OP_PUSHDATA{1,2,4}.  The length
	// prefix is big endian like every other integer in the system.
	script := t.script[t.offset+1:]
	prefixLen := pushDataLen(op)
	if int32(len(script)) < prefixLen {
		str := fmt.Sprintf("opcode %s requires %d bytes, but script only has "+
			"%d remaining", opcodeNames[op], prefixLen, len(script))
		t.err = scriptError(ErrMalformedPush, str)
		return false
	}

	// Next -length bytes are the big endian length of data.
	var dataLen int64
	switch prefixLen {
	case 1:
		dataLen = int64(script[0])
	case 2:
		dataLen = int64(binary.BigEndian.Uint16(script[:2]))
	case 4:
		dataLen = int64(binary.BigEndian.Uint32(script[:4]))
	}

	// Move to the beginning of the data.
	script = script[prefixLen:]

	// Disallow entries that do not fit script or were sign extended.
	if dataLen > int64(len(script)) || dataLen < 0 {
		str := fmt.Sprintf("opcode %s pushes %d bytes, but script only has %d "+
			"remaining", opcodeNames[op], dataLen, len(script))
		t.err = scriptError(ErrMalformedPush, str)
		return false
	}

	// Move the offset forward and set the opcode and data accordingly.
	t.offset += 1 + prefixLen + int32(dataLen)
	t.op = op
	t.data = script[:dataLen]
	t.opcodeIdx++
	return true
}

// Script returns the full script associated with the tokenizer.
func (t *ScriptTokenizer) Script() []byte {
	return t.script
}

// ByteIndex returns the current offset into the full script that will be
// parsed next and therefore also implies everything before it has already
// been parsed.
func (t *ScriptTokenizer) ByteIndex() int32 {
	return t.offset
}

// OpcodePosition returns the current opcode position.
func (t *ScriptTokenizer) OpcodePosition() int32 {
	return t.opcodeIdx - 1
}

// Opcode returns the current opcode associated with the tokenizer.
func (t *ScriptTokenizer) Opcode() byte {
	return t.op
}

// Data returns the data associated with the most recently successfully parsed
// opcode.
func (t *ScriptTokenizer) Data() []byte {
	return t.data
}

// Err returns any errors currently associated with the tokenizer.  This will
// only be non-nil in the case a parsing error was encountered.
func (t *ScriptTokenizer) Err() error {
	return t.err
}

// MakeScriptTokenizer returns a new instance of a script tokenizer.
//
// See the docs for ScriptTokenizer for more details.
func MakeScriptTokenizer(script []byte) ScriptTokenizer {
	return ScriptTokenizer{script: script}
}
