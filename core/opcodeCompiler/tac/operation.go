package tac

import (
	"fmt"
	"strings"

	"github.com/evmtac/evmtac/core/vm"
)

// Op is a TAC operation: either an effect-only *Operation or an
// *AssignOperation that binds its result to a variable.
type Op interface {
	Opcode() vm.OpCode
	Name() string
	Args() []Operand
	Address() uint64
	String() string
}

// Operation is an effect with no bound result, such as a jump, a store or a
// halt. Operations are immutable once constructed.
type Operation struct {
	opcode  vm.OpCode
	args    []Operand
	address uint64
}

// NewOperation creates an operation for the opcode at the given program offset.
func NewOperation(op vm.OpCode, args []Operand, address uint64) *Operation {
	return &Operation{
		opcode:  op,
		args:    cloneArgs(args),
		address: address,
	}
}

func (o *Operation) Opcode() vm.OpCode { return o.opcode }
func (o *Operation) Name() string      { return o.opcode.String() }
func (o *Operation) Address() uint64   { return o.address }

// Args returns a copy of the argument list.
func (o *Operation) Args() []Operand { return cloneArgs(o.args) }

// String renders "<addr>: <name> <args...>".
func (o *Operation) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%#x: %s", o.address, o.Name())
	writeArgs(&b, o.args)
	return b.String()
}

// AssignOperation is an operation whose single result is bound to lhs.
type AssignOperation struct {
	Operation
	lhs       Variable
	printName bool
}

// NewAssignOperation creates an assignment. printName controls whether the
// mnemonic appears in the rendering; constant and copy assignments hide it.
func NewAssignOperation(lhs Variable, op vm.OpCode, args []Operand, address uint64, printName bool) *AssignOperation {
	return &AssignOperation{
		Operation: Operation{
			opcode:  op,
			args:    cloneArgs(args),
			address: address,
		},
		lhs:       lhs,
		printName: printName,
	}
}

func (a *AssignOperation) LHS() Variable   { return a.lhs }
func (a *AssignOperation) PrintName() bool { return a.printName }

// String renders "<addr>: <lhs> = [<name>] <args...>".
func (a *AssignOperation) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%#x: %s =", a.address, a.lhs)
	if a.printName {
		b.WriteByte(' ')
		b.WriteString(a.Name())
	}
	writeArgs(&b, a.args)
	return b.String()
}

func writeArgs(b *strings.Builder, args []Operand) {
	for _, arg := range args {
		b.WriteByte(' ')
		b.WriteString(arg.String())
	}
}

func cloneArgs(args []Operand) []Operand {
	if len(args) == 0 {
		return nil
	}
	out := make([]Operand, len(args))
	copy(out, args)
	return out
}

// NewConstantAssignment binds a known value to lhs. The opcode records which
// instruction produced the value and is not rendered.
func NewConstantAssignment(lhs Variable, op vm.OpCode, value Constant, address uint64) *AssignOperation {
	return NewAssignOperation(lhs, op, []Operand{value}, address, false)
}

// Constant returns the value bound by a constant assignment.
func (a *AssignOperation) Constant() (Constant, bool) {
	if a.printName || len(a.args) != 1 {
		return Constant{}, false
	}
	c, ok := a.args[0].(Constant)
	return c, ok
}
