package tac

import "github.com/evmtac/evmtac/core/vm"

// IsArithmetic reports whether op is an arithmetic, bitwise or comparison
// operation, i.e. one that may be constant folded. Memory, storage and control
// operations never are.
func IsArithmetic(op Op) bool {
	return IsArithmeticOpCode(op.Opcode())
}

// IsArithmeticOpCode is IsArithmetic on a bare opcode.
func IsArithmeticOpCode(op vm.OpCode) bool {
	_, ok := evaluators[op]
	return ok
}

// IsArithmeticName is IsArithmetic on a mnemonic. Unknown mnemonics are not
// arithmetic.
func IsArithmeticName(name string) bool {
	op, ok := vm.StringToOp(name)
	return ok && IsArithmeticOpCode(op)
}
