package tac

import (
	"math/big"
	"testing"

	"github.com/evmtac/evmtac/core/vm"
	fuzz "github.com/google/gofuzz"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func c(x uint64) Constant { return ConstantFromUint64(x) }

func TestArithmeticCases(t *testing.T) {
	maxWord := minusOne
	tests := []struct {
		name string
		op   vm.OpCode
		args []Constant
		want Constant
	}{
		{"add wraps", vm.ADD, []Constant{maxWord, c(1)}, c(0)},
		{"mul wraps", vm.MUL, []Constant{maxWord, c(2)}, Sub(maxWord, c(1))},
		{"sub wraps", vm.SUB, []Constant{c(0), c(1)}, maxWord},
		{"div", vm.DIV, []Constant{c(7), c(2)}, c(3)},
		{"div by zero", vm.DIV, []Constant{c(7), c(0)}, c(0)},
		{"sdiv truncates", vm.SDIV, []Constant{ConstantFromBig(big.NewInt(-7)), c(2)}, ConstantFromBig(big.NewInt(-3))},
		{"sdiv by zero", vm.SDIV, []Constant{c(7), c(0)}, c(0)},
		{"sdiv min by minus one", vm.SDIV, []Constant{minSigned, minusOne}, minSigned},
		{"mod", vm.MOD, []Constant{c(7), c(3)}, c(1)},
		{"mod by zero", vm.MOD, []Constant{c(7), c(0)}, c(0)},
		{"smod sign of dividend", vm.SMOD, []Constant{ConstantFromBig(big.NewInt(-7)), c(3)}, ConstantFromBig(big.NewInt(-1))},
		{"smod negative modulus", vm.SMOD, []Constant{c(7), ConstantFromBig(big.NewInt(-3))}, c(1)},
		{"smod by zero", vm.SMOD, []Constant{c(7), c(0)}, c(0)},
		{"addmod no overflow", vm.ADDMOD, []Constant{maxWord, c(2), c(10)}, ConstantFromBig(new(big.Int).Mod(new(big.Int).Add(maxWord.Big(), big.NewInt(2)), big.NewInt(10)))},
		{"addmod zero modulus", vm.ADDMOD, []Constant{c(1), c(2), c(0)}, c(0)},
		{"mulmod no overflow", vm.MULMOD, []Constant{maxWord, maxWord, c(12)}, ConstantFromBig(new(big.Int).Mod(new(big.Int).Mul(maxWord.Big(), maxWord.Big()), big.NewInt(12)))},
		{"mulmod zero modulus", vm.MULMOD, []Constant{c(3), c(4), c(0)}, c(0)},
		{"exp", vm.EXP, []Constant{c(2), c(10)}, c(1024)},
		{"exp wraps", vm.EXP, []Constant{c(2), c(256)}, c(0)},
		{"exp zero exponent", vm.EXP, []Constant{c(0), c(0)}, c(1)},
		{"signextend negative byte", vm.SIGNEXTEND, []Constant{c(0), c(0xff)}, maxWord},
		{"signextend positive byte", vm.SIGNEXTEND, []Constant{c(0), c(0x17f)}, c(0x7f)},
		{"signextend two bytes", vm.SIGNEXTEND, []Constant{c(1), c(0x8000)}, MustConstantFromHex("0xffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff8000")},
		{"signextend wide index", vm.SIGNEXTEND, []Constant{c(31), c(0xff)}, c(0xff)},
		{"signextend huge index", vm.SIGNEXTEND, []Constant{maxWord, c(0x80)}, c(0x80)},
		{"lt", vm.LT, []Constant{c(1), c(2)}, c(1)},
		{"lt equal", vm.LT, []Constant{c(2), c(2)}, c(0)},
		{"gt", vm.GT, []Constant{c(3), c(2)}, c(1)},
		{"gt smaller", vm.GT, []Constant{c(1), c(2)}, c(0)},
		{"slt", vm.SLT, []Constant{maxWord, c(0)}, c(1)},
		{"sgt", vm.SGT, []Constant{c(0), maxWord}, c(1)},
		{"eq", vm.EQ, []Constant{c(5), c(5)}, c(1)},
		{"eq differs", vm.EQ, []Constant{c(5), c(6)}, c(0)},
		{"iszero", vm.ISZERO, []Constant{c(0)}, c(1)},
		{"iszero nonzero", vm.ISZERO, []Constant{c(9)}, c(0)},
		{"and", vm.AND, []Constant{c(0xf0), c(0x3c)}, c(0x30)},
		{"or", vm.OR, []Constant{c(0xf0), c(0x0f)}, c(0xff)},
		{"xor", vm.XOR, []Constant{c(0xff), c(0x0f)}, c(0xf0)},
		{"not zero", vm.NOT, []Constant{c(0)}, maxWord},
		{"not max", vm.NOT, []Constant{maxWord}, c(0)},
		{"byte lowest", vm.BYTE, []Constant{c(31), c(0xab)}, c(0xab)},
		{"byte highest", vm.BYTE, []Constant{c(0), MustConstantFromHex("0x1200000000000000000000000000000000000000000000000000000000000000")}, c(0x12)},
		{"byte zero of small word", vm.BYTE, []Constant{c(0), c(0xff)}, c(0)},
		{"byte out of range", vm.BYTE, []Constant{c(32), maxWord}, c(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Eval(tt.op, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want.String(), got.String())
		})
	}
}

func TestEvalErrors(t *testing.T) {
	_, err := Eval(vm.SSTORE, c(1), c(2))
	assert.True(t, errors.Is(err, ErrNotArithmetic))

	_, err = Eval(vm.ADD, c(1))
	assert.True(t, errors.Is(err, ErrArity))

	n, ok := Arity(vm.MULMOD)
	assert.True(t, ok)
	assert.Equal(t, 3, n)

	_, ok = Arity(vm.JUMP)
	assert.False(t, ok)
}

func TestArithmeticDoesNotMutateInputs(t *testing.T) {
	l, r := c(10), c(3)
	for op := range evaluators {
		n, _ := Arity(op)
		args := []Constant{l, r, r}[:n]
		_, err := Eval(op, args...)
		require.NoError(t, err, op.String())
		assert.Equal(t, "0xa", l.String())
		assert.Equal(t, "0x3", r.String())
	}
}

// randomConstant produces words biased toward the interesting edges: zero,
// small values, the signed boundary and all ones.
func randomConstant(f *fuzz.Fuzzer) Constant {
	var (
		pick  uint8
		limbs [4]uint64
	)
	f.Fuzz(&pick)
	f.Fuzz(&limbs)
	switch pick % 8 {
	case 0:
		return zero
	case 1:
		return minusOne
	case 2:
		return minSigned
	case 3:
		return c(limbs[0] % 300)
	}
	b := new(big.Int)
	for _, l := range limbs {
		b.Lsh(b, 64)
		b.Or(b, new(big.Int).SetUint64(l))
	}
	return ConstantFromBig(b)
}

func toSigned(x *big.Int) *big.Int {
	if x.Bit(255) == 1 {
		return new(big.Int).Sub(x, twoTo256)
	}
	return x
}

// reference implements the EVM semantics directly on math/big.
func reference(op vm.OpCode, args []*big.Int) *big.Int {
	bool2big := func(b bool) *big.Int {
		if b {
			return big.NewInt(1)
		}
		return big.NewInt(0)
	}
	a := args[0]
	var b *big.Int
	if len(args) > 1 {
		b = args[1]
	}
	switch op {
	case vm.ADD:
		return new(big.Int).Add(a, b)
	case vm.MUL:
		return new(big.Int).Mul(a, b)
	case vm.SUB:
		return new(big.Int).Sub(a, b)
	case vm.DIV:
		if b.Sign() == 0 {
			return big.NewInt(0)
		}
		return new(big.Int).Div(a, b)
	case vm.SDIV:
		if b.Sign() == 0 {
			return big.NewInt(0)
		}
		return new(big.Int).Quo(toSigned(a), toSigned(b))
	case vm.MOD:
		if b.Sign() == 0 {
			return big.NewInt(0)
		}
		return new(big.Int).Mod(a, b)
	case vm.SMOD:
		if b.Sign() == 0 {
			return big.NewInt(0)
		}
		return new(big.Int).Rem(toSigned(a), toSigned(b))
	case vm.ADDMOD:
		if args[2].Sign() == 0 {
			return big.NewInt(0)
		}
		return new(big.Int).Mod(new(big.Int).Add(a, b), args[2])
	case vm.MULMOD:
		if args[2].Sign() == 0 {
			return big.NewInt(0)
		}
		return new(big.Int).Mod(new(big.Int).Mul(a, b), args[2])
	case vm.EXP:
		return new(big.Int).Exp(a, b, twoTo256)
	case vm.SIGNEXTEND:
		if a.Cmp(big.NewInt(31)) >= 0 {
			return b
		}
		bit := uint(a.Uint64()*8 + 7)
		mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), bit+1), big.NewInt(1))
		low := new(big.Int).And(b, mask)
		if low.Bit(int(bit)) == 1 {
			return new(big.Int).Sub(low, new(big.Int).Lsh(big.NewInt(1), bit+1))
		}
		return low
	case vm.LT:
		return bool2big(a.Cmp(b) < 0)
	case vm.GT:
		return bool2big(a.Cmp(b) > 0)
	case vm.SLT:
		return bool2big(toSigned(a).Cmp(toSigned(b)) < 0)
	case vm.SGT:
		return bool2big(toSigned(a).Cmp(toSigned(b)) > 0)
	case vm.EQ:
		return bool2big(a.Cmp(b) == 0)
	case vm.ISZERO:
		return bool2big(a.Sign() == 0)
	case vm.AND:
		return new(big.Int).And(a, b)
	case vm.OR:
		return new(big.Int).Or(a, b)
	case vm.XOR:
		return new(big.Int).Xor(a, b)
	case vm.NOT:
		return new(big.Int).Sub(new(big.Int).Sub(twoTo256, big.NewInt(1)), a)
	case vm.BYTE:
		if a.Cmp(big.NewInt(32)) >= 0 {
			return big.NewInt(0)
		}
		shift := uint(8 * (31 - a.Uint64()))
		return new(big.Int).And(new(big.Int).Rsh(b, shift), big.NewInt(0xff))
	}
	panic("unhandled opcode " + op.String())
}

func TestArithmeticMatchesReference(t *testing.T) {
	f := fuzz.NewWithSeed(1).NilChance(0)
	for op := range evaluators {
		n, _ := Arity(op)
		for i := 0; i < 300; i++ {
			args := make([]Constant, n)
			bigs := make([]*big.Int, n)
			for j := range args {
				args[j] = randomConstant(f)
				bigs[j] = args[j].Big()
			}
			got, err := Eval(op, args...)
			require.NoError(t, err)
			want := ConstantFromBig(reference(op, bigs))
			if !got.Equal(want) {
				t.Fatalf("%s%v: have %s, want %s", op, args, got, want)
			}
		}
	}
}

func TestComparisonsAreBoolean(t *testing.T) {
	f := fuzz.NewWithSeed(2).NilChance(0)
	for _, op := range []vm.OpCode{vm.LT, vm.GT, vm.SLT, vm.SGT, vm.EQ} {
		for i := 0; i < 100; i++ {
			got, err := Eval(op, randomConstant(f), randomConstant(f))
			require.NoError(t, err)
			v, ok := got.Uint64()
			assert.True(t, ok && v <= 1)
		}
	}
}
