package tac

import (
	"fmt"
	"strings"
)

// BlockID is the handle of a Block inside its CFG.
type BlockID int

// NoBlock is the ID of a block that does not belong to a CFG yet.
const NoBlock BlockID = -1

// Block is a basic block of TAC operations. The operation list is fixed at
// construction; the edges and the unresolved-jump flag are set once, when the
// block is assembled into a CFG.
type Block struct {
	id  BlockID
	ops []Op

	entry    uint64
	hasEntry bool

	stackAdditions int
	stackPops      int

	predecessors      []BlockID
	successors        []BlockID
	hasUnresolvedJump bool
}

// NewBlock creates a detached block. stackAdditions and stackPops describe the
// net stack interface of the block and must not be negative.
func NewBlock(ops []Op, stackAdditions, stackPops int) *Block {
	if stackAdditions < 0 || stackPops < 0 {
		panic(fmt.Sprintf("tac: negative stack interface (additions=%d pops=%d)", stackAdditions, stackPops))
	}
	b := &Block{
		id:             NoBlock,
		stackAdditions: stackAdditions,
		stackPops:      stackPops,
	}
	if len(ops) > 0 {
		b.ops = make([]Op, len(ops))
		copy(b.ops, ops)
	}
	return b
}

func (b *Block) ID() BlockID             { return b.id }
func (b *Block) Len() int                { return len(b.ops) }
func (b *Block) StackAdditions() int     { return b.stackAdditions }
func (b *Block) StackPops() int          { return b.stackPops }
func (b *Block) HasUnresolvedJump() bool { return b.hasUnresolvedJump }

// Ops returns a copy of the operation list.
func (b *Block) Ops() []Op {
	out := make([]Op, len(b.ops))
	copy(out, b.ops)
	return out
}

// Predecessors returns the IDs of the blocks with an edge into b, in source order.
func (b *Block) Predecessors() []BlockID { return append([]BlockID(nil), b.predecessors...) }

// Successors returns the IDs of the blocks b has an edge to, in source order.
func (b *Block) Successors() []BlockID { return append([]BlockID(nil), b.successors...) }

// WithEntry records the program offset the block was translated from and
// returns b. It overrides the address of the first operation in Entry.
func (b *Block) WithEntry(pc uint64) *Block {
	b.entry, b.hasEntry = pc, true
	return b
}

// Entry returns the program offset of the block. Without a recorded offset it
// falls back to the address of the first operation, if any.
func (b *Block) Entry() (uint64, bool) {
	if b.hasEntry {
		return b.entry, true
	}
	if len(b.ops) == 0 {
		return 0, false
	}
	return b.ops[0].Address(), true
}

// String renders the operations one per line.
func (b *Block) String() string {
	lines := make([]string, len(b.ops))
	for i, op := range b.ops {
		lines[i] = op.String()
	}
	return strings.Join(lines, "\n")
}

// withOps returns a copy of b carrying the same metadata and edges but a new
// operation list.
func (b *Block) withOps(ops []Op) *Block {
	return &Block{
		id:                b.id,
		ops:               ops,
		entry:             b.entry,
		hasEntry:          b.hasEntry,
		stackAdditions:    b.stackAdditions,
		stackPops:         b.stackPops,
		predecessors:      b.Predecessors(),
		successors:        b.Successors(),
		hasUnresolvedJump: b.hasUnresolvedJump,
	}
}
