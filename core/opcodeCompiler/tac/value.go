// Package tac implements a three-address-code representation of EVM bytecode:
// symbolic operands, 256-bit arithmetic over constants, operations, basic
// blocks and the control flow graph assembled from a stack-based block graph.
package tac

import (
	"encoding/binary"
	"math/big"

	"github.com/cespare/xxhash/v2"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// WordSize is the width in bytes of every symbolic value.
const WordSize = 32

// ErrTypeMismatch is returned when operands of different kinds are compared.
var ErrTypeMismatch = errors.New("operand type mismatch")

// Kind tags the variant of an Operand.
type Kind uint8

const (
	KindVariable Kind = iota
	KindConstant
	KindLocation
)

func (k Kind) String() string {
	switch k {
	case KindVariable:
		return "variable"
	case KindConstant:
		return "constant"
	case KindLocation:
		return "location"
	}
	return "unknown"
}

// Operand is an argument of a TAC operation. The set of implementations is
// closed: Variable, Constant and Location.
type Operand interface {
	Kind() Kind
	String() string
	Hash() uint64
	Copy() Operand

	operand()
}

// Value is an operand denoting a single 256-bit word, i.e. a Variable or a
// Constant. Locations are addressed by values.
type Value interface {
	Operand
	word()
}

// Equal compares two operands of the same kind. Comparing operands of
// different kinds is an error rather than a silent false.
func Equal(a, b Operand) (bool, error) {
	if a == nil || b == nil {
		return false, errors.Wrap(ErrTypeMismatch, "nil operand")
	}
	if a.Kind() != b.Kind() {
		return false, errors.Wrapf(ErrTypeMismatch, "cannot compare %s with %s", a.Kind(), b.Kind())
	}
	switch x := a.(type) {
	case Variable:
		return x.Equal(b.(Variable)), nil
	case Constant:
		return x.Equal(b.(Constant)), nil
	case Location:
		return x.Equal(b.(Location)), nil
	}
	return false, errors.Wrapf(ErrTypeMismatch, "unsupported operand %T", a)
}

// Variable is a named symbolic register holding the result of an operation.
type Variable struct {
	ident string
}

// NewVariable creates a variable with the given identifier.
func NewVariable(ident string) Variable {
	return Variable{ident: ident}
}

func (v Variable) Identifier() string { return v.ident }
func (v Variable) Size() int          { return WordSize }
func (v Variable) Kind() Kind         { return KindVariable }
func (v Variable) String() string     { return v.ident }
func (v Variable) Copy() Operand      { return Variable{ident: v.ident} }
func (v Variable) Equal(o Variable) bool {
	return v.ident == o.ident
}

// Hash is consistent with Equal: it depends on the identifier only.
func (v Variable) Hash() uint64 { return xxhash.Sum64String(v.ident) }

func (Variable) operand() {}
func (Variable) word()    {}

// Constant is a known 256-bit word. Its value is always reduced modulo 2^256.
type Constant struct {
	value uint256.Int
}

// NewConstant creates a constant holding a copy of x.
func NewConstant(x *uint256.Int) Constant {
	return Constant{value: *x}
}

// ConstantFromUint64 creates a constant from a small integer.
func ConstantFromUint64(x uint64) Constant {
	var c Constant
	c.value.SetUint64(x)
	return c
}

var twoTo256 = new(big.Int).Lsh(big.NewInt(1), 256)

// ConstantFromBig creates a constant from an arbitrary integer, reducing it
// modulo 2^256. Negative inputs wrap to their two's complement encoding.
func ConstantFromBig(x *big.Int) Constant {
	reduced := new(big.Int).Mod(x, twoTo256)
	var c Constant
	c.value.SetFromBig(reduced)
	return c
}

// MustConstantFromHex parses a 0x-prefixed hex string. It panics on malformed
// input and is meant for tests and tables.
func MustConstantFromHex(s string) Constant {
	return Constant{value: *uint256.MustFromHex(s)}
}

// Value returns a copy of the underlying word.
func (c Constant) Value() *uint256.Int { return c.value.Clone() }

// Big returns the unsigned value as a big integer.
func (c Constant) Big() *big.Int { return c.value.ToBig() }

// Signed returns the two's complement interpretation of the constant.
func (c Constant) Signed() *big.Int {
	b := c.value.ToBig()
	if c.value.Sign() < 0 {
		b.Sub(b, twoTo256)
	}
	return b
}

// Uint64 returns the value as uint64 and whether it fit.
func (c Constant) Uint64() (uint64, bool) {
	return c.value.Uint64(), c.value.IsUint64()
}

func (c Constant) IsZero() bool   { return c.value.IsZero() }
func (c Constant) Kind() Kind     { return KindConstant }
func (c Constant) String() string { return c.value.Hex() }
func (c Constant) Copy() Operand  { return Constant{value: c.value} }
func (c Constant) Equal(o Constant) bool {
	return c.value == o.value
}

// Hash depends on the numeric value only.
func (c Constant) Hash() uint64 {
	b := c.value.Bytes32()
	return xxhash.Sum64(b[:])
}

func (Constant) operand() {}
func (Constant) word()    {}

func hashWithTag(tag byte, h uint64) uint64 {
	var buf [9]byte
	buf[0] = tag
	binary.BigEndian.PutUint64(buf[1:], h)
	return xxhash.Sum64(buf[:])
}
