package tac

import (
	"testing"

	"github.com/evmtac/evmtac/core/vm"
	"github.com/stretchr/testify/assert"
)

func TestOperationString(t *testing.T) {
	args := []Operand{NewVariable("v1"), NewVariable("v2")}

	op := NewOperation(vm.ADD, args, 0x10)
	assert.Equal(t, "0x10: ADD v1 v2", op.String())

	assign := NewAssignOperation(NewVariable("v3"), vm.ADD, args, 0x10, true)
	assert.Equal(t, "0x10: v3 = ADD v1 v2", assign.String())

	hidden := NewAssignOperation(NewVariable("v3"), vm.ADD, args, 0x10, false)
	assert.Equal(t, "0x10: v3 = v1 v2", hidden.String())

	assert.Equal(t, "0x0: STOP", NewOperation(vm.STOP, nil, 0).String())
	assert.Equal(t, "0x5: V0 = CALLER", NewAssignOperation(NewVariable("V0"), vm.CALLER, nil, 5, true).String())
}

func TestOperationImmutable(t *testing.T) {
	args := []Operand{NewVariable("a"), NewVariable("b")}
	op := NewOperation(vm.SSTORE, args, 1)
	args[0] = NewVariable("x")
	assert.Equal(t, "a", op.Args()[0].String())

	got := op.Args()
	got[1] = NewVariable("y")
	assert.Equal(t, "b", op.Args()[1].String())
}

func TestConstantAssignment(t *testing.T) {
	a := NewConstantAssignment(NewVariable("V2"), vm.ADD, c(3), 0x4)
	assert.Equal(t, "0x4: V2 = 0x3", a.String())
	assert.Equal(t, vm.ADD, a.Opcode())
	assert.False(t, a.PrintName())

	v, ok := a.Constant()
	assert.True(t, ok)
	assert.Equal(t, "0x3", v.String())

	_, ok = NewAssignOperation(NewVariable("V2"), vm.ISZERO, []Operand{c(0)}, 0, true).Constant()
	assert.False(t, ok)
}

func TestOperationInterface(t *testing.T) {
	ops := []Op{
		NewOperation(vm.JUMP, []Operand{NewVariable("S0")}, 7),
		NewAssignOperation(NewVariable("V1"), vm.MLOAD, []Operand{NewMemoryLocation(c(0x40))}, 8, true),
	}
	assert.Equal(t, "JUMP", ops[0].Name())
	assert.Equal(t, uint64(8), ops[1].Address())
	assert.Equal(t, "0x8: V1 = MLOAD M[0x40]", ops[1].String())
}
