package tac

import (
	"testing"

	"github.com/evmtac/evmtac/core/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFoldBlock(t *testing.T) {
	v0, v1, v2 := NewVariable("V0"), NewVariable("V1"), NewVariable("V2")
	b := NewBlock([]Op{
		NewAssignOperation(v0, vm.ADD, []Operand{c(1), c(2)}, 0, true),
		NewAssignOperation(v1, vm.MUL, []Operand{v0, c(4)}, 1, true),
		NewAssignOperation(v2, vm.ADD, []Operand{v1, NewVariable("S0")}, 2, true),
		NewOperation(vm.MSTORE, []Operand{NewMemoryLocation(v0), v2}, 3),
		NewOperation(vm.SSTORE, []Operand{NewStorageLocation(c(0)), v1}, 4),
	}, 0, 1)

	folded, n := FoldBlock(b)
	assert.Equal(t, 2, n)

	want := []string{
		"0x0: V0 = 0x3",
		"0x1: V1 = 0xc",
		"0x2: V2 = ADD 0xc S0",
		"0x3: MSTORE M[0x3] V2",
		"0x4: SSTORE S[0x0] 0xc",
	}
	ops := folded.Ops()
	require.Len(t, ops, len(want))
	for i, op := range ops {
		assert.Equal(t, want[i], op.String())
	}
	assert.Equal(t, 1, folded.StackPops())

	// The source block is unchanged.
	assert.Equal(t, "0x0: V0 = ADD 0x1 0x2", b.Ops()[0].String())
}

func TestFoldBlockSkipsNonArithmetic(t *testing.T) {
	v0 := NewVariable("V0")
	b := NewBlock([]Op{
		NewAssignOperation(v0, vm.SHL, []Operand{c(1), c(1)}, 0, true),
		NewAssignOperation(NewVariable("V1"), vm.MLOAD, []Operand{NewMemoryLocation(c(0))}, 1, true),
	}, 2, 0)
	folded, n := FoldBlock(b)
	assert.Zero(t, n)
	assert.Equal(t, b.String(), folded.String())
}

func TestCFGFoldKeepsTopology(t *testing.T) {
	g := newTestGraph("A", "B").edge("A", "B")
	g.unresolved = []string{"B"}
	convert := func(name string) (*Block, error) {
		return NewBlock([]Op{
			NewAssignOperation(NewVariable("V"+name), vm.ISZERO, []Operand{c(0)}, 0, true),
		}, 1, 0), nil
	}
	cfg, err := BuildCFG[string](g, convert)
	require.NoError(t, err)

	out, n := cfg.Fold()
	assert.Equal(t, 2, n)
	require.Equal(t, cfg.Len(), out.Len())
	for i, b := range out.Blocks() {
		orig := cfg.Block(BlockID(i))
		assert.Equal(t, orig.ID(), b.ID())
		assert.Equal(t, orig.Successors(), b.Successors())
		assert.Equal(t, orig.Predecessors(), b.Predecessors())
		assert.Equal(t, orig.HasUnresolvedJump(), b.HasUnresolvedJump())
	}
	assert.Equal(t, "0x0: VA = 0x1", out.Block(0).String())

	// Folding is idempotent.
	_, n = out.Fold()
	assert.Zero(t, n)
}
