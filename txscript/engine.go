// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2015-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"fmt"
	"strings"

	"github.com/decred/slog"
	"github.com/ledgerd/ledgerd/wire"
)

const (
	// MaxStackSize is the maximum combined height of stack and alt stack
	// during execution.
	MaxStackSize = 1024

	// MaxScriptSize is the maximum allowed length of a raw script.
	MaxScriptSize = 16384

	// MaxOpsPerScript is the maximum number of non-push operations.
	MaxOpsPerScript = 255

	// MaxScriptElementSize is the maximum number of bytes pushable to the
	// stack.
	MaxScriptElementSize = 2048
)

// Engine is the virtual machine that executes scripts.
type Engine struct {
	// The following fields are set when the engine is created and must not be
	// changed afterwards.  The entries of the signature cache are mutated
	// during execution, however, the cache pointer itself is not changed.
	//
	// tx identifies the transaction that contains the input which in turn
	// contains the signature script that provided the initial stack.
	//
	// txIdx identifies the input index within the transaction.
	//
	// inputAmount is the value of the referenced output and is committed to
	// by every signature hash.
	//
	// script is the public key script being executed.
	//
	// sigCache caches the results of signature verifications.  This is useful
	// since transaction scripts are often executed more than once from various
	// contexts (e.g. new block templates, when transactions are first seen
	// prior to being mined, part of full block verification, etc).
	tx          wire.MsgTx
	txIdx       int
	inputAmount int64
	script      []byte
	sigCache    *SigCache

	// The following fields handle keeping track of the current execution state
	// of the engine.
	//
	// tokenizer provides the token stream of the script being executed and
	// doubles as state tracking for the program counter within the script.
	//
	// done is set once the final opcode has been executed.
	//
	// dstack is the primary data stack the various opcodes push and pop data
	// to and from during execution.
	//
	// astack is the alternate data stack the various opcodes push and pop data
	// to and from during execution.
	//
	// numOps tracks the total number of non-push operations in a script and is
	// primarily used to enforce maximum limits.
	tokenizer ScriptTokenizer
	done      bool
	dstack    stack
	astack    stack
	numOps    int

	// condStack is the conditional execution stack.  Each OP_IF and OP_NOTIF
	// pushes whether its branch executes, OP_ELSE flips the top entry and
	// OP_ENDIF pops it.  Opcodes only execute when every entry is true, so
	// numFalseConds tracks how many entries are false.
	//
	// For example, consider the following script:
	//
	//  TRUE IF FALSE IF <opcodes> ELSE <opcodes> ENDIF ENDIF <opcodes>
	//
	// The first IF pushes true and the second pushes false, which disables
	// execution.  The ELSE flips the top entry to true, enabling execution
	// again until the ENDIFs pop both entries.
	condStack     []bool
	numFalseConds int
}

// isBranchExecuting returns whether or not the current conditional branch is
// actively executing.  For example, when the data stack has an OP_FALSE on it
// and an OP_IF is encountered, the branch is inactive until an OP_ELSE or
// OP_ENDIF is encountered.  It properly handles nested conditionals.
func (vm *Engine) isBranchExecuting() bool {
	return vm.numFalseConds == 0
}

// pushCond pushes a new conditional branch state.
func (vm *Engine) pushCond(executing bool) {
	vm.condStack = append(vm.condStack, executing)
	if !executing {
		vm.numFalseConds++
	}
}

// executeOpcode performs execution on the passed opcode.  It takes into account
// whether or not it is hidden by conditionals, but some rules still must be
// tested in this case.
func (vm *Engine) executeOpcode(op byte, data []byte) error {
	// Always-illegal opcodes are fail on program counter.
	if isOpcodeAlwaysIllegal(op) {
		str := fmt.Sprintf("attempt to execute reserved opcode %s",
			opcodeNames[op])
		return scriptError(ErrReservedOpcode, str)
	}

	// Note that this includes OP_RESERVED which counts as a push operation.
	if op > OP_16 {
		vm.numOps++
		if vm.numOps > MaxOpsPerScript {
			str := fmt.Sprintf("exceeded max operation limit of %d",
				MaxOpsPerScript)
			return scriptError(ErrTooManyOperations, str)
		}
	} else if len(data) > MaxScriptElementSize {
		str := fmt.Sprintf("element size %d exceeds max allowed size %d",
			len(data), MaxScriptElementSize)
		return scriptError(ErrElementTooBig, str)
	}

	// Nothing left to do when this is not a conditional opcode and it is
	// not in an executing branch.
	if !vm.isBranchExecuting() && !isOpcodeConditional(op) {
		return nil
	}

	// Ensure all executed data push opcodes use the minimal encoding.
	if vm.isBranchExecuting() && op <= OP_PUSHDATA4 {
		if err := checkMinimalDataPush(op, data); err != nil {
			return err
		}
	}

	return vm.dispatchOpcode(op, data)
}

// DisasmPC returns the string for the disassembly of the opcode that will be
// next to execute when Step is called.
func (vm *Engine) DisasmPC() (string, error) {
	if vm.done {
		return "", scriptError(ErrInvalidProgramCounter,
			"program counter beyond end of script")
	}

	// Create a copy of the current tokenizer and parse the next opcode in the
	// copy to avoid mutating the current one.
	peekTokenizer := vm.tokenizer
	if !peekTokenizer.Next() {
		if err := peekTokenizer.Err(); err != nil {
			return "", err
		}

		str := fmt.Sprintf("program counter beyond script (bytes %x)",
			vm.script)
		return "", scriptError(ErrInvalidProgramCounter, str)
	}

	var buf strings.Builder
	disasmOpcode(&buf, peekTokenizer.Opcode(), peekTokenizer.Data(), false)
	return fmt.Sprintf("%04x: %s", peekTokenizer.OpcodePosition(),
		buf.String()), nil
}

// DisasmScript returns the disassembly string for the public key script being
// executed with one opcode per line.
func (vm *Engine) DisasmScript() (string, error) {
	var disbuf strings.Builder
	tokenizer := MakeScriptTokenizer(vm.script)
	for tokenizer.Next() {
		disbuf.WriteString(fmt.Sprintf("%04x: ", tokenizer.OpcodePosition()))
		disasmOpcode(&disbuf, tokenizer.Opcode(), tokenizer.Data(), false)
		disbuf.WriteByte('\n')
	}
	return disbuf.String(), tokenizer.Err()
}

// CheckErrorCondition returns nil if the running script has ended and was
// successful, leaving a true boolean on the stack.  An error otherwise,
// including if the script has not finished.
func (vm *Engine) CheckErrorCondition() error {
	if !vm.done {
		return scriptError(ErrScriptUnfinished,
			"error check when script unfinished")
	}

	// There must be at least one data stack item in order to interpret it as
	// a boolean.
	if vm.dstack.Depth() < 1 {
		return scriptError(ErrEmptyStack,
			"stack empty at end of script execution")
	}

	v, err := vm.dstack.PopBool()
	if err != nil {
		return err
	}
	if !v {
		// Log interesting data.
		if log.Level() <= slog.LevelTrace {
			dis, _ := vm.DisasmScript()
			log.Tracef("script failed:\n%s", dis)
		}
		return scriptError(ErrEvalFalse,
			"false stack entry at end of script execution")
	}
	return nil
}

// Step executes the next instruction and moves the program counter to the next
// opcode in the script.  Step will return true in the case that the last
// opcode was successfully executed.
//
// The result of calling Step or any other method is undefined if an error is
// returned.
func (vm *Engine) Step() (done bool, err error) {
	// Verify the engine is pointing to a valid program counter.
	if vm.done {
		return true, scriptError(ErrInvalidProgramCounter,
			"attempt to step beyond end of script")
	}

	// Attempt to parse the next opcode from the script.
	if !vm.tokenizer.Next() {
		// Note that due to the fact that the script is checked for parse
		// failures before this code ever runs, there should never be an error
		// here, but check again to be safe.
		if err := vm.tokenizer.Err(); err != nil {
			return false, err
		}

		str := fmt.Sprintf("attempt to step beyond script (bytes %x)",
			vm.script)
		return true, scriptError(ErrInvalidProgramCounter, str)
	}

	// Execute the opcode while taking into account several things such as
	// illegal opcodes, maximum allowed operations per script, maximum script
	// element sizes, and conditionals.
	err = vm.executeOpcode(vm.tokenizer.Opcode(), vm.tokenizer.Data())
	if err != nil {
		return true, err
	}

	// The number of elements in the combination of the data and alt stacks
	// must not exceed the maximum number of stack elements allowed.
	if err := vm.checkStackSize(); err != nil {
		return false, err
	}

	if vm.tokenizer.Done() {
		// Illegal to leave a conditional open at the end of the script.
		if len(vm.condStack) != 0 {
			return false, scriptError(ErrUnbalancedConditional,
				"end of script reached in conditional execution")
		}
		vm.done = true
		return true, nil
	}

	return false, nil
}

// checkStackSize returns an error when the combined depth of the data and alt
// stacks exceeds MaxStackSize.
func (vm *Engine) checkStackSize() error {
	combinedStackSize := vm.dstack.Depth() + vm.astack.Depth()
	if combinedStackSize > MaxStackSize {
		str := fmt.Sprintf("combined stack size %d > max allowed %d",
			combinedStackSize, MaxStackSize)
		return scriptError(ErrStackOverflow, str)
	}
	return nil
}

// Execute will execute the script in the script engine and return either nil
// for successful validation or an error if one occurred.
func (vm *Engine) Execute() (err error) {
	for !vm.done {
		if log.Level() <= slog.LevelTrace {
			dis, err := vm.DisasmPC()
			if err != nil {
				log.Tracef("stepping - failed to disasm pc: %v", err)
			} else {
				log.Tracef("stepping %v", dis)
			}
		}

		_, err = vm.Step()
		if err != nil {
			return err
		}
		if log.Level() <= slog.LevelTrace {
			// Log the non-empty stacks when tracing.
			var buf strings.Builder
			if vm.dstack.Depth() != 0 {
				buf.WriteString("Stack:\n")
				buf.WriteString(vm.dstack.String())
			}
			if vm.astack.Depth() != 0 {
				buf.WriteString("AltStack:\n")
				buf.WriteString(vm.astack.String())
			}
			log.Trace(buf.String())
		}
	}

	return vm.CheckErrorCondition()
}

// getStack returns the contents of stack as a byte array bottom up.
func getStack(stack *stack) [][]byte {
	array := make([][]byte, stack.Depth())
	for i := range array {
		// PeekByteArray can't fail due to overflow, already checked
		array[len(array)-i-1], _ = stack.PeekByteArray(int32(i))
	}
	return array
}

// setStack sets the stack to the contents of the array where the last item in
// the array is the top item in the stack.
func setStack(stack *stack, data [][]byte) {
	stack.stk = stack.stk[:0]
	for i := range data {
		stack.PushByteArray(data[i])
	}
}

// GetStack returns the contents of the primary stack as an array. where the
// last item in the array is the top of the stack.
func (vm *Engine) GetStack() [][]byte {
	return getStack(&vm.dstack)
}

// SetStack sets the contents of the primary stack to the contents of the
// provided array where the last item in the array will be the top of the stack.
func (vm *Engine) SetStack(data [][]byte) {
	setStack(&vm.dstack, data)
}

// GetAltStack returns the contents of the alternate stack as an array where the
// last item in the array is the top of the stack.
func (vm *Engine) GetAltStack() [][]byte {
	return getStack(&vm.astack)
}

// SetAltStack sets the contents of the alternate stack to the contents of the
// provided array where the last item in the array will be the top of the stack.
func (vm *Engine) SetAltStack(data [][]byte) {
	setStack(&vm.astack, data)
}

// checkScriptParses returns an error if the provided script fails to parse.
func checkScriptParses(script []byte) error {
	tokenizer := MakeScriptTokenizer(script)
	for tokenizer.Next() {
		// Nothing to do.
	}
	return tokenizer.Err()
}

// NewEngine returns a new script engine for the provided public key script,
// transaction, input index, and the value of the output being spent.
//
// The signature script of the referenced input must only push data.  Its
// pushes form the initial data stack the public key script executes against.
func NewEngine(scriptPubKey []byte, tx *wire.MsgTx, txIdx int, inputAmount int64, sigCache *SigCache) (*Engine, error) {
	// The provided transaction input index must refer to a valid input.
	if txIdx < 0 || txIdx >= len(tx.TxIn) {
		str := fmt.Sprintf("transaction input index %d is negative or "+
			">= %d", txIdx, len(tx.TxIn))
		return nil, scriptError(ErrInvalidIndex, str)
	}
	scriptSig := tx.TxIn[txIdx].SignatureScript

	for _, scr := range [][]byte{scriptSig, scriptPubKey} {
		if len(scr) > MaxScriptSize {
			str := fmt.Sprintf("script size %d is larger than max allowed "+
				"size %d", len(scr), MaxScriptSize)
			return nil, scriptError(ErrScriptTooBig, str)
		}

		// Ensure the scripts can be fully parsed up front.  A script that
		// fails to parse would eventually fail later when executing the
		// opcodes as well, but checking first avoids doing a bunch of
		// relatively expensive operations before a malformed opcode.
		if err := checkScriptParses(scr); err != nil {
			return nil, err
		}
	}

	// The signature script must only contain data pushes.
	if !IsPushOnlyScript(scriptSig) {
		return nil, scriptError(ErrNotPushOnly,
			"signature script is not push only")
	}

	vm := Engine{
		tx:          *tx,
		txIdx:       txIdx,
		inputAmount: inputAmount,
		script:      scriptPubKey,
		sigCache:    sigCache,
	}

	// Assemble the initial data stack from the pushes of the signature
	// script.  The same element size and minimal push rules that apply during
	// execution apply to them.
	sigTokenizer := MakeScriptTokenizer(scriptSig)
	for sigTokenizer.Next() {
		err := vm.executeOpcode(sigTokenizer.Opcode(), sigTokenizer.Data())
		if err != nil {
			return nil, err
		}
		if err := vm.checkStackSize(); err != nil {
			return nil, err
		}
	}
	vm.numOps = 0

	// Setup the current tokenizer used to parse through the script one opcode
	// at a time.  There is nothing to execute for an empty script.
	vm.tokenizer = MakeScriptTokenizer(scriptPubKey)
	vm.done = len(scriptPubKey) == 0

	return &vm, nil
}
