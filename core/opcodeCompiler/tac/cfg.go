package tac

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrDuplicateBlock is returned when the source graph lists a block twice.
	ErrDuplicateBlock = errors.New("duplicate source block")

	// ErrUnknownBlock is returned when an edge or an unresolved-jump marker
	// names a block that is not part of the source graph.
	ErrUnknownBlock = errors.New("unknown source block")

	// ErrNilBlock is returned when the conversion yields no block.
	ErrNilBlock = errors.New("conversion returned nil block")

	// ErrBlockReused is returned when the conversion yields a block that already
	// belongs to a CFG or was returned for another source block.
	ErrBlockReused = errors.New("converted block reused")
)

// SourceGraph is the stack-based block graph a CFG is built from. B is the
// identity of a source block and is used as a map key.
type SourceGraph[B comparable] interface {
	// Blocks returns every block of the graph in a deterministic order.
	Blocks() []B
	// Parents returns the ordered predecessors of b.
	Parents(b B) []B
	// Children returns the ordered successors of b.
	Children(b B) []B
	// UnresolvedJumps returns the blocks ending in a jump whose target is not
	// statically known. A block may appear more than once.
	UnresolvedJumps() []B
}

// CFG is a control flow graph of TAC blocks. It owns its blocks; edges are
// stored as BlockIDs indexing into the CFG.
type CFG struct {
	blocks []*Block
}

// BuildCFG converts every block of g with convert and links the results so
// that the node set, the edges and the unresolved-jump flags mirror g. Every
// block is converted before any edge is created, and nothing is returned on
// failure.
func BuildCFG[B comparable](g SourceGraph[B], convert func(B) (*Block, error)) (*CFG, error) {
	src := g.Blocks()

	var (
		table     = make(map[B]BlockID, len(src))
		converted = make([]*Block, 0, len(src))
		seen      = make(map[*Block]struct{}, len(src))
	)
	for _, b := range src {
		if _, ok := table[b]; ok {
			return nil, errors.Wrapf(ErrDuplicateBlock, "block %v", b)
		}
		blk, err := convert(b)
		if err != nil {
			return nil, errors.Wrapf(err, "convert block %v", b)
		}
		if blk == nil {
			return nil, errors.Wrapf(ErrNilBlock, "block %v", b)
		}
		if _, ok := seen[blk]; ok || blk.id != NoBlock {
			return nil, errors.Wrapf(ErrBlockReused, "block %v", b)
		}
		seen[blk] = struct{}{}
		table[b] = BlockID(len(converted))
		converted = append(converted, blk)
	}

	unresolved := make([]bool, len(converted))
	for _, b := range g.UnresolvedJumps() {
		id, ok := table[b]
		if !ok {
			return nil, errors.Wrapf(ErrUnknownBlock, "unresolved jump in block %v", b)
		}
		unresolved[id] = true
	}

	lookup := func(owner, ref B, what string) (BlockID, error) {
		id, ok := table[ref]
		if !ok {
			return NoBlock, errors.Wrapf(ErrUnknownBlock, "%s %v of block %v", what, ref, owner)
		}
		return id, nil
	}
	preds := make([][]BlockID, len(converted))
	succs := make([][]BlockID, len(converted))
	for i, b := range src {
		for _, p := range g.Parents(b) {
			id, err := lookup(b, p, "parent")
			if err != nil {
				return nil, err
			}
			preds[i] = append(preds[i], id)
		}
		for _, c := range g.Children(b) {
			id, err := lookup(b, c, "child")
			if err != nil {
				return nil, err
			}
			succs[i] = append(succs[i], id)
		}
	}

	for i, blk := range converted {
		blk.id = BlockID(i)
		blk.hasUnresolvedJump = unresolved[i]
		blk.predecessors = preds[i]
		blk.successors = succs[i]
	}
	return &CFG{blocks: converted}, nil
}

// Len returns the number of blocks.
func (c *CFG) Len() int { return len(c.blocks) }

// Blocks returns the blocks in ID order.
func (c *CFG) Blocks() []*Block {
	return append([]*Block(nil), c.blocks...)
}

// Block returns the block with the given ID, or nil if there is none.
func (c *CFG) Block(id BlockID) *Block {
	if id < 0 || int(id) >= len(c.blocks) {
		return nil
	}
	return c.blocks[id]
}

// Predecessors resolves the predecessor IDs of b.
func (c *CFG) Predecessors(b *Block) []*Block { return c.resolve(b.predecessors) }

// Successors resolves the successor IDs of b.
func (c *CFG) Successors(b *Block) []*Block { return c.resolve(b.successors) }

func (c *CFG) resolve(ids []BlockID) []*Block {
	out := make([]*Block, len(ids))
	for i, id := range ids {
		out[i] = c.blocks[id]
	}
	return out
}

// EdgeCount returns the number of edges in the graph.
func (c *CFG) EdgeCount() int {
	n := 0
	for _, b := range c.blocks {
		n += len(b.successors)
	}
	return n
}

// UnresolvedJumps returns the blocks flagged as ending in an unresolved jump.
func (c *CFG) UnresolvedJumps() []*Block {
	var out []*Block
	for _, b := range c.blocks {
		if b.hasUnresolvedJump {
			out = append(out, b)
		}
	}
	return out
}

// String dumps every block with its edges.
func (c *CFG) String() string {
	var sb strings.Builder
	for i, b := range c.blocks {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "block %d", b.id)
		if entry, ok := b.Entry(); ok {
			fmt.Fprintf(&sb, " @%#x", entry)
		}
		fmt.Fprintf(&sb, " pops=%d additions=%d preds=%v succs=%v", b.stackPops, b.stackAdditions, b.predecessors, b.successors)
		if b.hasUnresolvedJump {
			sb.WriteString(" unresolved")
		}
		sb.WriteString("\n")
		if len(b.ops) > 0 {
			sb.WriteString(b.String())
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
