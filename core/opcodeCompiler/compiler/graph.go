package compiler

import (
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/evmtac/evmtac/core/opcodeCompiler/tac"
	"github.com/evmtac/evmtac/core/vm"
)

// Graph is the stack-based control flow graph of a piece of bytecode. It
// implements tac.SourceGraph.
type Graph struct {
	code       []byte
	blocks     []*BasicBlock
	pcToBlock  map[uint64]*BasicBlock
	jumpDests  mapset.Set[uint64]
	unresolved []*BasicBlock
}

var _ tac.SourceGraph[*BasicBlock] = (*Graph)(nil)

// BuildGraph splits code into basic blocks and links them. Block leaders are
// pc 0, every JUMPDEST and the instruction after a terminator or a jump.
// Jump targets are resolved by a block-local symbolic run; a jump whose target
// cannot be determined that way marks its block as having an unresolved jump.
func BuildGraph(code []byte) (*Graph, error) {
	g := &Graph{
		code:      code,
		pcToBlock: make(map[uint64]*BasicBlock),
		jumpDests: mapset.NewThreadUnsafeSet[uint64](),
	}
	instructions := Disassemble(code)
	if len(instructions) == 0 {
		return g, nil
	}
	g.preScanBlocks(instructions)
	for i, bb := range g.blocks {
		g.linkBlock(i, bb)
	}
	debugInfo("Built stack graph", "blocks", len(g.blocks), "jumpdests", g.jumpDests.Cardinality(), "unresolved", len(g.unresolved))
	return g, nil
}

// preScanBlocks collects the JUMPDESTs and cuts the instruction stream at
// every block start.
func (g *Graph) preScanBlocks(instructions []Instruction) {
	start := 0
	for i, in := range instructions {
		if in.Op == vm.JUMPDEST {
			g.jumpDests.Add(in.PC)
			if i > start {
				g.addBlock(instructions[start:i])
				start = i
			}
		}
		if in.Op.EndsBlock() {
			g.addBlock(instructions[start : i+1])
			start = i + 1
		}
	}
	if start < len(instructions) {
		g.addBlock(instructions[start:])
	}
}

func (g *Graph) addBlock(instructions []Instruction) {
	bb := newBasicBlock(uint(len(g.blocks)), instructions)
	g.blocks = append(g.blocks, bb)
	g.pcToBlock[bb.firstPC] = bb
}

func (g *Graph) linkBlock(i int, bb *BasicBlock) {
	last := bb.Last()
	if last.Op.IsJump() {
		g.linkJump(bb)
	}
	if last.Op.FallsThrough() && i+1 < len(g.blocks) {
		link(bb, g.blocks[i+1])
	}
}

func (g *Graph) linkJump(bb *BasicBlock) {
	ex := execute(bb, true, func() tac.Variable { return tac.NewVariable("_") })
	target, ok := ex.target.(tac.Constant)
	if !ok {
		debugWarn("Unresolved jump", "block", bb.blockNum, "pc", bb.lastPC, "target", ex.target)
		g.unresolved = append(g.unresolved, bb)
		return
	}
	pc, ok := target.Uint64()
	if !ok || !g.jumpDests.Contains(pc) {
		// A constant jump to a non-JUMPDEST always faults.
		debugWarn("Invalid jump destination", "block", bb.blockNum, "pc", bb.lastPC, "target", target)
		return
	}
	link(bb, g.pcToBlock[pc])
}

func link(from, to *BasicBlock) {
	from.SetChildren([]*BasicBlock{to})
	to.SetParents([]*BasicBlock{from})
}

// Blocks returns the blocks in program order.
func (g *Graph) Blocks() []*BasicBlock {
	return g.blocks
}

func (g *Graph) Parents(b *BasicBlock) []*BasicBlock  { return b.Parents() }
func (g *Graph) Children(b *BasicBlock) []*BasicBlock { return b.Children() }

// UnresolvedJumps returns the blocks ending in a jump with an unknown target.
func (g *Graph) UnresolvedJumps() []*BasicBlock {
	return g.unresolved
}

// BlockByPC returns the block starting at pc, if any.
func (g *Graph) BlockByPC(pc uint64) *BasicBlock {
	return g.pcToBlock[pc]
}

// JumpDests returns the valid jump destinations in ascending order.
func (g *Graph) JumpDests() []uint64 {
	dests := g.jumpDests.ToSlice()
	sort.Slice(dests, func(i, j int) bool { return dests[i] < dests[j] })
	return dests
}

// Code returns the analysed bytecode.
func (g *Graph) Code() []byte {
	return g.code
}
