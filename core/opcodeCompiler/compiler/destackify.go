package compiler

import (
	"fmt"

	"github.com/evmtac/evmtac/core/opcodeCompiler/tac"
	"github.com/evmtac/evmtac/core/vm"
	"github.com/pkg/errors"
)

// StackLimit is the maximum depth of the EVM operand stack.
const StackLimit = 1024

// ErrStackLimit is returned when a block would leave more than StackLimit
// items on the stack.
var ErrStackLimit = errors.New("stack limit exceeded")

// execution is the symbolic run of one block.
type execution struct {
	ops    []tac.Op
	stack  ValueStack
	target tac.Value // jump target of a final JUMP/JUMPI, if any
	folded int
}

// execute runs bb on a symbolic stack. fresh names the result of every value
// producing instruction. With fold set, arithmetic over constants is
// evaluated and the constant is pushed in place of the variable.
func execute(bb *BasicBlock, fold bool, fresh func() tac.Variable) *execution {
	ex := new(execution)
	st := &ex.stack
	for _, in := range bb.instructions {
		op := in.Op
		switch {
		case op == vm.JUMPDEST:
			continue
		case op.IsPush():
			st.push(in.Value())
			continue
		case op.IsDup():
			st.push(st.peek(int(op - vm.DUP1)))
			continue
		case op.IsSwap():
			st.swap(int(op-vm.SWAP1) + 1)
			continue
		case op == vm.POP:
			st.pop()
			continue
		}

		pops, pushes := vm.OpStackCounts(op)
		vals := make([]tac.Value, pops)
		for i := range vals {
			vals[i] = st.pop()
		}
		if op.IsJump() {
			ex.target = vals[0]
		}
		args := locate(op, vals)

		if pushes == 0 {
			ex.ops = append(ex.ops, tac.NewOperation(op, args, in.PC))
			continue
		}
		lhs := fresh()
		if fold {
			if c, ok := evalConstant(op, vals); ok {
				ex.ops = append(ex.ops, tac.NewConstantAssignment(lhs, op, c, in.PC))
				st.push(c)
				ex.folded++
				continue
			}
		}
		ex.ops = append(ex.ops, tac.NewAssignOperation(lhs, op, args, in.PC, true))
		st.push(lhs)
	}
	return ex
}

// locate turns the address operands of memory and storage accesses into
// locations.
func locate(op vm.OpCode, vals []tac.Value) []tac.Operand {
	args := make([]tac.Operand, len(vals))
	for i, v := range vals {
		args[i] = v
	}
	switch op {
	case vm.MLOAD, vm.MSTORE:
		args[0] = tac.NewMemoryLocation(vals[0])
	case vm.MSTORE8:
		args[0] = tac.NewMemoryByteLocation(vals[0])
	case vm.SLOAD, vm.SSTORE:
		args[0] = tac.NewStorageLocation(vals[0])
	}
	return args
}

func evalConstant(op vm.OpCode, vals []tac.Value) (tac.Constant, bool) {
	if !tac.IsArithmeticOpCode(op) {
		return tac.Constant{}, false
	}
	consts := make([]tac.Constant, len(vals))
	for i, v := range vals {
		c, ok := v.(tac.Constant)
		if !ok {
			return tac.Constant{}, false
		}
		consts[i] = c
	}
	c, err := tac.Eval(op, consts...)
	return c, err == nil
}

// Destackifier converts stack blocks into TAC blocks. Result variables are
// numbered V0, V1, ... across every block converted by the same Destackifier,
// so one instance must be used per CFG and not shared between goroutines.
type Destackifier struct {
	fold   bool
	next   int
	folded int
}

// NewDestackifier creates a destackifier. With fold set, arithmetic on
// constant operands is evaluated during conversion.
func NewDestackifier(fold bool) *Destackifier {
	return &Destackifier{fold: fold}
}

func (d *Destackifier) fresh() tac.Variable {
	v := tac.NewVariable(fmt.Sprintf("V%d", d.next))
	d.next++
	return v
}

// Convert translates bb into a detached TAC block.
func (d *Destackifier) Convert(bb *BasicBlock) (*tac.Block, error) {
	if bb == nil {
		return nil, errors.New("nil basic block")
	}
	ex := execute(bb, d.fold, d.fresh)
	if ex.stack.size() > StackLimit {
		return nil, errors.Wrapf(ErrStackLimit, "%v leaves %d items", bb, ex.stack.size())
	}
	d.folded += ex.folded
	return tac.NewBlock(ex.ops, ex.stack.size(), ex.stack.Entries()).WithEntry(bb.FirstPC()), nil
}

// Folded returns the number of instructions evaluated to constants so far.
func (d *Destackifier) Folded() int { return d.folded }
