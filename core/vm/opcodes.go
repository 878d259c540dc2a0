// Copyright 2024 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package vm

import "fmt"

// OpCode is an EVM opcode. It is the one enumeration of legal mnemonics used by
// the disassembler, the TAC operations and the arithmetic tables.
type OpCode byte

// 0x0 range - arithmetic ops.
const (
	STOP       OpCode = 0x0
	ADD        OpCode = 0x1
	MUL        OpCode = 0x2
	SUB        OpCode = 0x3
	DIV        OpCode = 0x4
	SDIV       OpCode = 0x5
	MOD        OpCode = 0x6
	SMOD       OpCode = 0x7
	ADDMOD     OpCode = 0x8
	MULMOD     OpCode = 0x9
	EXP        OpCode = 0xa
	SIGNEXTEND OpCode = 0xb
)

// 0x10 range - comparison ops.
const (
	LT     OpCode = 0x10
	GT     OpCode = 0x11
	SLT    OpCode = 0x12
	SGT    OpCode = 0x13
	EQ     OpCode = 0x14
	ISZERO OpCode = 0x15
	AND    OpCode = 0x16
	OR     OpCode = 0x17
	XOR    OpCode = 0x18
	NOT    OpCode = 0x19
	BYTE   OpCode = 0x1a
	SHL    OpCode = 0x1b
	SHR    OpCode = 0x1c
	SAR    OpCode = 0x1d
)

// 0x20 range - crypto.
const (
	KECCAK256 OpCode = 0x20
)

// 0x30 range - closure state.
const (
	ADDRESS        OpCode = 0x30
	BALANCE        OpCode = 0x31
	ORIGIN         OpCode = 0x32
	CALLER         OpCode = 0x33
	CALLVALUE      OpCode = 0x34
	CALLDATALOAD   OpCode = 0x35
	CALLDATASIZE   OpCode = 0x36
	CALLDATACOPY   OpCode = 0x37
	CODESIZE       OpCode = 0x38
	CODECOPY       OpCode = 0x39
	GASPRICE       OpCode = 0x3a
	EXTCODESIZE    OpCode = 0x3b
	EXTCODECOPY    OpCode = 0x3c
	RETURNDATASIZE OpCode = 0x3d
	RETURNDATACOPY OpCode = 0x3e
	EXTCODEHASH    OpCode = 0x3f
)

// 0x40 range - block operations.
const (
	BLOCKHASH   OpCode = 0x40
	COINBASE    OpCode = 0x41
	TIMESTAMP   OpCode = 0x42
	NUMBER      OpCode = 0x43
	PREVRANDAO  OpCode = 0x44
	DIFFICULTY  OpCode = 0x44 // Same as PREVRANDAO
	GASLIMIT    OpCode = 0x45
	CHAINID     OpCode = 0x46
	SELFBALANCE OpCode = 0x47
	BASEFEE     OpCode = 0x48
	BLOBHASH    OpCode = 0x49
	BLOBBASEFEE OpCode = 0x4a
)

// 0x50 range - 'storage' and execution.
const (
	POP      OpCode = 0x50
	MLOAD    OpCode = 0x51
	MSTORE   OpCode = 0x52
	MSTORE8  OpCode = 0x53
	SLOAD    OpCode = 0x54
	SSTORE   OpCode = 0x55
	JUMP     OpCode = 0x56
	JUMPI    OpCode = 0x57
	PC       OpCode = 0x58
	MSIZE    OpCode = 0x59
	GAS      OpCode = 0x5a
	JUMPDEST OpCode = 0x5b
	TLOAD    OpCode = 0x5c
	TSTORE   OpCode = 0x5d
	MCOPY    OpCode = 0x5e
	PUSH0    OpCode = 0x5f
)

// 0x60 range - pushes.
const (
	PUSH1 OpCode = 0x60 + iota
	PUSH2
	PUSH3
	PUSH4
	PUSH5
	PUSH6
	PUSH7
	PUSH8
	PUSH9
	PUSH10
	PUSH11
	PUSH12
	PUSH13
	PUSH14
	PUSH15
	PUSH16
	PUSH17
	PUSH18
	PUSH19
	PUSH20
	PUSH21
	PUSH22
	PUSH23
	PUSH24
	PUSH25
	PUSH26
	PUSH27
	PUSH28
	PUSH29
	PUSH30
	PUSH31
	PUSH32
)

// 0x80 range - dups.
const (
	DUP1 OpCode = 0x80 + iota
	DUP2
	DUP3
	DUP4
	DUP5
	DUP6
	DUP7
	DUP8
	DUP9
	DUP10
	DUP11
	DUP12
	DUP13
	DUP14
	DUP15
	DUP16
)

// 0x90 range - swaps.
const (
	SWAP1 OpCode = 0x90 + iota
	SWAP2
	SWAP3
	SWAP4
	SWAP5
	SWAP6
	SWAP7
	SWAP8
	SWAP9
	SWAP10
	SWAP11
	SWAP12
	SWAP13
	SWAP14
	SWAP15
	SWAP16
)

// 0xa0 range - logging ops.
const (
	LOG0 OpCode = 0xa0 + iota
	LOG1
	LOG2
	LOG3
	LOG4
)

// 0xf0 range - closures.
const (
	CREATE       OpCode = 0xf0
	CALL         OpCode = 0xf1
	CALLCODE     OpCode = 0xf2
	RETURN       OpCode = 0xf3
	DELEGATECALL OpCode = 0xf4
	CREATE2      OpCode = 0xf5

	STATICCALL   OpCode = 0xfa
	REVERT       OpCode = 0xfd
	INVALID      OpCode = 0xfe
	SELFDESTRUCT OpCode = 0xff
)

// opInfo describes a defined opcode: its mnemonic and how many stack items it
// consumes and produces.
type opInfo struct {
	name   string
	pops   int
	pushes int
}

var opInfos = [256]*opInfo{
	STOP:       {"STOP", 0, 0},
	ADD:        {"ADD", 2, 1},
	MUL:        {"MUL", 2, 1},
	SUB:        {"SUB", 2, 1},
	DIV:        {"DIV", 2, 1},
	SDIV:       {"SDIV", 2, 1},
	MOD:        {"MOD", 2, 1},
	SMOD:       {"SMOD", 2, 1},
	ADDMOD:     {"ADDMOD", 3, 1},
	MULMOD:     {"MULMOD", 3, 1},
	EXP:        {"EXP", 2, 1},
	SIGNEXTEND: {"SIGNEXTEND", 2, 1},

	LT:     {"LT", 2, 1},
	GT:     {"GT", 2, 1},
	SLT:    {"SLT", 2, 1},
	SGT:    {"SGT", 2, 1},
	EQ:     {"EQ", 2, 1},
	ISZERO: {"ISZERO", 1, 1},
	AND:    {"AND", 2, 1},
	OR:     {"OR", 2, 1},
	XOR:    {"XOR", 2, 1},
	NOT:    {"NOT", 1, 1},
	BYTE:   {"BYTE", 2, 1},
	SHL:    {"SHL", 2, 1},
	SHR:    {"SHR", 2, 1},
	SAR:    {"SAR", 2, 1},

	KECCAK256: {"KECCAK256", 2, 1},

	ADDRESS:        {"ADDRESS", 0, 1},
	BALANCE:        {"BALANCE", 1, 1},
	ORIGIN:         {"ORIGIN", 0, 1},
	CALLER:         {"CALLER", 0, 1},
	CALLVALUE:      {"CALLVALUE", 0, 1},
	CALLDATALOAD:   {"CALLDATALOAD", 1, 1},
	CALLDATASIZE:   {"CALLDATASIZE", 0, 1},
	CALLDATACOPY:   {"CALLDATACOPY", 3, 0},
	CODESIZE:       {"CODESIZE", 0, 1},
	CODECOPY:       {"CODECOPY", 3, 0},
	GASPRICE:       {"GASPRICE", 0, 1},
	EXTCODESIZE:    {"EXTCODESIZE", 1, 1},
	EXTCODECOPY:    {"EXTCODECOPY", 4, 0},
	RETURNDATASIZE: {"RETURNDATASIZE", 0, 1},
	RETURNDATACOPY: {"RETURNDATACOPY", 3, 0},
	EXTCODEHASH:    {"EXTCODEHASH", 1, 1},

	BLOCKHASH:   {"BLOCKHASH", 1, 1},
	COINBASE:    {"COINBASE", 0, 1},
	TIMESTAMP:   {"TIMESTAMP", 0, 1},
	NUMBER:      {"NUMBER", 0, 1},
	PREVRANDAO:  {"PREVRANDAO", 0, 1},
	GASLIMIT:    {"GASLIMIT", 0, 1},
	CHAINID:     {"CHAINID", 0, 1},
	SELFBALANCE: {"SELFBALANCE", 0, 1},
	BASEFEE:     {"BASEFEE", 0, 1},
	BLOBHASH:    {"BLOBHASH", 1, 1},
	BLOBBASEFEE: {"BLOBBASEFEE", 0, 1},

	POP:      {"POP", 1, 0},
	MLOAD:    {"MLOAD", 1, 1},
	MSTORE:   {"MSTORE", 2, 0},
	MSTORE8:  {"MSTORE8", 2, 0},
	SLOAD:    {"SLOAD", 1, 1},
	SSTORE:   {"SSTORE", 2, 0},
	JUMP:     {"JUMP", 1, 0},
	JUMPI:    {"JUMPI", 2, 0},
	PC:       {"PC", 0, 1},
	MSIZE:    {"MSIZE", 0, 1},
	GAS:      {"GAS", 0, 1},
	JUMPDEST: {"JUMPDEST", 0, 0},
	TLOAD:    {"TLOAD", 1, 1},
	TSTORE:   {"TSTORE", 2, 0},
	MCOPY:    {"MCOPY", 3, 0},
	PUSH0:    {"PUSH0", 0, 1},

	CREATE:       {"CREATE", 3, 1},
	CALL:         {"CALL", 7, 1},
	CALLCODE:     {"CALLCODE", 7, 1},
	RETURN:       {"RETURN", 2, 0},
	DELEGATECALL: {"DELEGATECALL", 6, 1},
	CREATE2:      {"CREATE2", 4, 1},
	STATICCALL:   {"STATICCALL", 6, 1},
	REVERT:       {"REVERT", 2, 0},
	INVALID:      {"INVALID", 0, 0},
	SELFDESTRUCT: {"SELFDESTRUCT", 1, 0},
}

var stringToOp = make(map[string]OpCode, 160)

func init() {
	for i := 1; i <= 32; i++ {
		opInfos[int(PUSH1)+i-1] = &opInfo{fmt.Sprintf("PUSH%d", i), 0, 1}
	}
	for i := 1; i <= 16; i++ {
		opInfos[int(DUP1)+i-1] = &opInfo{fmt.Sprintf("DUP%d", i), i, i + 1}
		opInfos[int(SWAP1)+i-1] = &opInfo{fmt.Sprintf("SWAP%d", i), i + 1, i + 1}
	}
	for i := 0; i <= 4; i++ {
		opInfos[int(LOG0)+i] = &opInfo{fmt.Sprintf("LOG%d", i), i + 2, 0}
	}
	for op, info := range opInfos {
		if info != nil {
			stringToOp[info.name] = OpCode(op)
		}
	}
	stringToOp["DIFFICULTY"] = DIFFICULTY
	stringToOp["SHA3"] = KECCAK256
}

// IsDefined reports whether op is an opcode of the instruction set.
func (op OpCode) IsDefined() bool {
	return opInfos[op] != nil
}

// String returns the mnemonic of the opcode.
func (op OpCode) String() string {
	if info := opInfos[op]; info != nil {
		return info.name
	}
	return fmt.Sprintf("opcode %#x not defined", int(op))
}

// StringToOp looks up an opcode by mnemonic.
func StringToOp(str string) (OpCode, bool) {
	op, ok := stringToOp[str]
	return op, ok
}

// IsPush specifies if an opcode is a PUSH opcode, PUSH0 included.
func (op OpCode) IsPush() bool {
	return PUSH0 <= op && op <= PUSH32
}

// PushSize returns the number of immediate bytes following a PUSH opcode.
func (op OpCode) PushSize() int {
	if PUSH1 <= op && op <= PUSH32 {
		return int(op-PUSH1) + 1
	}
	return 0
}

// IsDup reports whether op is DUP1..DUP16.
func (op OpCode) IsDup() bool { return DUP1 <= op && op <= DUP16 }

// IsSwap reports whether op is SWAP1..SWAP16.
func (op OpCode) IsSwap() bool { return SWAP1 <= op && op <= SWAP16 }

// IsLog reports whether op is LOG0..LOG4.
func (op OpCode) IsLog() bool { return LOG0 <= op && op <= LOG4 }

// IsJump reports whether op transfers control to a target taken from the stack.
func (op OpCode) IsJump() bool { return op == JUMP || op == JUMPI }

// IsTerminator reports whether op halts execution of the current frame.
// Undefined opcodes behave like INVALID.
func (op OpCode) IsTerminator() bool {
	switch op {
	case STOP, RETURN, REVERT, INVALID, SELFDESTRUCT:
		return true
	}
	return !op.IsDefined()
}

// EndsBlock reports whether the instruction after op starts a new basic block.
func (op OpCode) EndsBlock() bool {
	return op.IsTerminator() || op.IsJump()
}

// FallsThrough reports whether control can continue with the next instruction
// after op.
func (op OpCode) FallsThrough() bool {
	return !op.IsTerminator() && op != JUMP
}
