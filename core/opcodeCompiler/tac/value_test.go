package tac

import (
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVariable(t *testing.T) {
	v := NewVariable("V1")
	assert.Equal(t, "V1", v.String())
	assert.Equal(t, "V1", v.Identifier())
	assert.Equal(t, WordSize, v.Size())
	assert.Equal(t, KindVariable, v.Kind())

	cp := v.Copy()
	eq, err := Equal(v, cp)
	require.NoError(t, err)
	assert.True(t, eq)
	assert.Equal(t, v.Hash(), cp.Hash())

	assert.False(t, v.Equal(NewVariable("V2")))
}

func TestConstantRendering(t *testing.T) {
	assert.Equal(t, "0x0", ConstantFromUint64(0).String())
	assert.Equal(t, "0x2a", ConstantFromUint64(42).String())
	assert.Equal(t, "0xffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff", minusOne.String())
	assert.Equal(t, KindConstant, one.Kind())
}

func TestConstantFromBigReduces(t *testing.T) {
	c := ConstantFromBig(big.NewInt(-1))
	assert.True(t, c.Equal(minusOne))

	over := new(big.Int).Add(twoTo256, big.NewInt(7))
	assert.True(t, ConstantFromBig(over).Equal(ConstantFromUint64(7)))
}

func TestConstantSigned(t *testing.T) {
	assert.Equal(t, int64(-1), minusOne.Signed().Int64())
	assert.Equal(t, int64(5), ConstantFromUint64(5).Signed().Int64())

	want := new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 255))
	assert.Equal(t, 0, minSigned.Signed().Cmp(want))
}

func TestConstantUint64(t *testing.T) {
	v, ok := ConstantFromUint64(9).Uint64()
	assert.True(t, ok)
	assert.Equal(t, uint64(9), v)

	_, ok = minusOne.Uint64()
	assert.False(t, ok)
}

func TestConstantValueIsCopy(t *testing.T) {
	c := ConstantFromUint64(3)
	v := c.Value()
	v.SetUint64(100)
	assert.True(t, c.Equal(ConstantFromUint64(3)))

	src := uint256.NewInt(4)
	c = NewConstant(src)
	src.SetUint64(5)
	assert.True(t, c.Equal(ConstantFromUint64(4)))
}

func TestConstantHashByValue(t *testing.T) {
	a := ConstantFromUint64(77)
	b := ConstantFromBig(big.NewInt(77))
	assert.Equal(t, a.Hash(), b.Hash())
	assert.NotEqual(t, a.Hash(), ConstantFromUint64(78).Hash())
}

func TestEqualKindMismatch(t *testing.T) {
	_, err := Equal(NewVariable("0x1"), ConstantFromUint64(1))
	assert.True(t, errors.Is(err, ErrTypeMismatch))

	_, err = Equal(ConstantFromUint64(1), NewMemoryLocation(ConstantFromUint64(1)))
	assert.True(t, errors.Is(err, ErrTypeMismatch))

	_, err = Equal(nil, one)
	assert.True(t, errors.Is(err, ErrTypeMismatch))

	eq, err := Equal(ConstantFromUint64(1), one)
	require.NoError(t, err)
	assert.True(t, eq)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "variable", KindVariable.String())
	assert.Equal(t, "constant", KindConstant.String())
	assert.Equal(t, "location", KindLocation.String())
}
