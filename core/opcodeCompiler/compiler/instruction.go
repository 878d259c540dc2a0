package compiler

import (
	"fmt"

	"github.com/evmtac/evmtac/core/opcodeCompiler/tac"
	"github.com/evmtac/evmtac/core/vm"
	"github.com/holiman/uint256"
)

// Instruction is a single decoded EVM instruction.
type Instruction struct {
	PC uint64
	Op vm.OpCode
	// Imm holds the immediate of a PUSH, right padded with zeros when the code
	// ends inside it. It is nil for every other opcode and for PUSH0.
	Imm []byte
}

// Next returns the pc of the instruction that follows.
func (in Instruction) Next() uint64 {
	return in.PC + 1 + uint64(in.Op.PushSize())
}

// Value returns the immediate of a PUSH as a constant.
func (in Instruction) Value() tac.Constant {
	return tac.NewConstant(new(uint256.Int).SetBytes(in.Imm))
}

func (in Instruction) String() string {
	if in.Op.IsPush() && in.Op != vm.PUSH0 {
		return fmt.Sprintf("%#x: %s %#x", in.PC, in.Op, in.Imm)
	}
	return fmt.Sprintf("%#x: %s", in.PC, in.Op)
}

// Disassemble decodes code into instructions. Bytes inside PUSH immediates
// are never decoded as opcodes.
func Disassemble(code []byte) []Instruction {
	var (
		out = make([]Instruction, 0, len(code))
		pc  uint64
	)
	for pc < uint64(len(code)) {
		op := vm.OpCode(code[pc])
		in := Instruction{PC: pc, Op: op}
		if size := uint64(op.PushSize()); size > 0 {
			in.Imm = make([]byte, size)
			start := pc + 1
			if start < uint64(len(code)) {
				end := start + size
				if end > uint64(len(code)) {
					end = uint64(len(code))
				}
				copy(in.Imm, code[start:end])
			}
		}
		out = append(out, in)
		pc = in.Next()
	}
	return out
}
