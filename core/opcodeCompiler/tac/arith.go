package tac

import (
	"github.com/evmtac/evmtac/core/vm"
	"github.com/pkg/errors"
)

var (
	// ErrNotArithmetic is returned by Eval for opcodes outside the arithmetic set.
	ErrNotArithmetic = errors.New("opcode is not arithmetic")

	// ErrArity is returned by Eval when the argument count does not match the opcode.
	ErrArity = errors.New("wrong number of arguments")
)

var (
	zero = ConstantFromUint64(0)
	one  = ConstantFromUint64(1)

	// minSigned is -2^255 in two's complement.
	minSigned = MustConstantFromHex("0x8000000000000000000000000000000000000000000000000000000000000000")
	// minusOne is -1 in two's complement.
	minusOne = MustConstantFromHex("0xffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff")
)

func boolConstant(b bool) Constant {
	if b {
		return one
	}
	return zero
}

// Add returns (l + r) mod 2^256.
func Add(l, r Constant) Constant {
	var c Constant
	c.value.Add(&l.value, &r.value)
	return c
}

// Mul returns (l * r) mod 2^256.
func Mul(l, r Constant) Constant {
	var c Constant
	c.value.Mul(&l.value, &r.value)
	return c
}

// Sub returns (l - r) mod 2^256.
func Sub(l, r Constant) Constant {
	var c Constant
	c.value.Sub(&l.value, &r.value)
	return c
}

// Div returns floor(l / r), or 0 when r is 0.
func Div(l, r Constant) Constant {
	var c Constant
	c.value.Div(&l.value, &r.value)
	return c
}

// SDiv returns the signed quotient truncated toward zero, or 0 when r is 0.
// -2^255 / -1 overflows back to -2^255.
func SDiv(l, r Constant) Constant {
	if l.Equal(minSigned) && r.Equal(minusOne) {
		return minSigned
	}
	var c Constant
	c.value.SDiv(&l.value, &r.value)
	return c
}

// Mod returns l mod r, or 0 when r is 0.
func Mod(l, r Constant) Constant {
	var c Constant
	c.value.Mod(&l.value, &r.value)
	return c
}

// SMod returns the signed remainder, carrying the sign of l, or 0 when r is 0.
func SMod(l, r Constant) Constant {
	var c Constant
	c.value.SMod(&l.value, &r.value)
	return c
}

// AddMod returns (l + r) mod m computed without intermediate overflow, or 0
// when m is 0.
func AddMod(l, r, m Constant) Constant {
	var c Constant
	c.value.AddMod(&l.value, &r.value, &m.value)
	return c
}

// MulMod returns (l * r) mod m computed without intermediate overflow, or 0
// when m is 0.
func MulMod(l, r, m Constant) Constant {
	var c Constant
	c.value.MulMod(&l.value, &r.value, &m.value)
	return c
}

// Exp returns b^e mod 2^256.
func Exp(b, e Constant) Constant {
	var c Constant
	c.value.Exp(&b.value, &e.value)
	return c
}

// SignExtend extends the sign bit of the low k+1 bytes of v through the whole
// word. For k >= 31 v is returned unchanged.
func SignExtend(k, v Constant) Constant {
	var c Constant
	c.value.ExtendSign(&v.value, &k.value)
	return c
}

func Lt(l, r Constant) Constant  { return boolConstant(l.value.Lt(&r.value)) }
func Gt(l, r Constant) Constant  { return boolConstant(l.value.Gt(&r.value)) }
func Slt(l, r Constant) Constant { return boolConstant(l.value.Slt(&r.value)) }
func Sgt(l, r Constant) Constant { return boolConstant(l.value.Sgt(&r.value)) }
func Eq(l, r Constant) Constant  { return boolConstant(l.value.Eq(&r.value)) }

func IsZero(v Constant) Constant { return boolConstant(v.value.IsZero()) }

func And(l, r Constant) Constant {
	var c Constant
	c.value.And(&l.value, &r.value)
	return c
}

func Or(l, r Constant) Constant {
	var c Constant
	c.value.Or(&l.value, &r.value)
	return c
}

func Xor(l, r Constant) Constant {
	var c Constant
	c.value.Xor(&l.value, &r.value)
	return c
}

func Not(v Constant) Constant {
	var c Constant
	c.value.Not(&v.value)
	return c
}

// Byte returns the i-th byte of v counted from the most significant end, or 0
// when i >= 32.
func Byte(i, v Constant) Constant {
	c := Constant{value: v.value}
	c.value.Byte(&i.value)
	return c
}

type evaluator struct {
	arity int
	eval  func(args []Constant) Constant
}

func unary(fn func(Constant) Constant) evaluator {
	return evaluator{1, func(a []Constant) Constant { return fn(a[0]) }}
}

func binaryOp(fn func(Constant, Constant) Constant) evaluator {
	return evaluator{2, func(a []Constant) Constant { return fn(a[0], a[1]) }}
}

func ternary(fn func(Constant, Constant, Constant) Constant) evaluator {
	return evaluator{3, func(a []Constant) Constant { return fn(a[0], a[1], a[2]) }}
}

// evaluators is the arithmetic instruction set. Membership in this table is
// what makes an opcode arithmetic; see IsArithmetic.
var evaluators = map[vm.OpCode]evaluator{
	vm.ADD:        binaryOp(Add),
	vm.MUL:        binaryOp(Mul),
	vm.SUB:        binaryOp(Sub),
	vm.DIV:        binaryOp(Div),
	vm.SDIV:       binaryOp(SDiv),
	vm.MOD:        binaryOp(Mod),
	vm.SMOD:       binaryOp(SMod),
	vm.ADDMOD:     ternary(AddMod),
	vm.MULMOD:     ternary(MulMod),
	vm.EXP:        binaryOp(Exp),
	vm.SIGNEXTEND: binaryOp(SignExtend),
	vm.LT:         binaryOp(Lt),
	vm.GT:         binaryOp(Gt),
	vm.SLT:        binaryOp(Slt),
	vm.SGT:        binaryOp(Sgt),
	vm.EQ:         binaryOp(Eq),
	vm.ISZERO:     unary(IsZero),
	vm.AND:        binaryOp(And),
	vm.OR:         binaryOp(Or),
	vm.XOR:        binaryOp(Xor),
	vm.NOT:        unary(Not),
	vm.BYTE:       binaryOp(Byte),
}

// Eval applies an arithmetic opcode to constant arguments given in stack order
// (top of stack first).
func Eval(op vm.OpCode, args ...Constant) (Constant, error) {
	e, ok := evaluators[op]
	if !ok {
		return Constant{}, errors.Wrap(ErrNotArithmetic, op.String())
	}
	if len(args) != e.arity {
		return Constant{}, errors.Wrapf(ErrArity, "%s takes %d, got %d", op, e.arity, len(args))
	}
	return e.eval(args), nil
}

// Arity returns the number of arguments an arithmetic opcode takes.
func Arity(op vm.OpCode) (int, bool) {
	e, ok := evaluators[op]
	return e.arity, ok
}
