package compiler

import (
	"fmt"
	"strings"
)

// bitmap is a bit map which maps basicblock in to a bit
type bitmap []byte

func (bits *bitmap) ensure(pos uint64) {
	need := int(pos/8) + 1
	if need <= len(*bits) {
		return
	}
	*bits = append(*bits, make([]byte, need-len(*bits))...)
}

func (bits *bitmap) set1(pos uint64) {
	bits.ensure(pos)
	(*bits)[pos/8] |= 1 << (pos % 8)
}

// checks if the position is in a code segment.
func (bits *bitmap) isBitSet(pos uint64) bool {
	idx := int(pos / 8)
	if idx >= len(*bits) {
		return false
	}
	return (((*bits)[idx] >> (pos % 8)) & 1) == 1
}

// BasicBlock is a straight-line run of stack instructions. Control enters at
// the first instruction and leaves after the last one.
type BasicBlock struct {
	blockNum       uint
	firstPC        uint64
	lastPC         uint64
	instructions   []Instruction
	parentsBitmap  *bitmap
	childrenBitmap *bitmap
	parents        []*BasicBlock
	children       []*BasicBlock
}

func newBasicBlock(num uint, instructions []Instruction) *BasicBlock {
	return &BasicBlock{
		blockNum:       num,
		firstPC:        instructions[0].PC,
		lastPC:         instructions[len(instructions)-1].PC,
		instructions:   instructions,
		parentsBitmap:  &bitmap{},
		childrenBitmap: &bitmap{},
	}
}

func (b *BasicBlock) Num() uint { return b.blockNum }

func (b *BasicBlock) Size() uint {
	return uint(len(b.instructions))
}

// Instructions returns the instructions within this basic block
func (b *BasicBlock) Instructions() []Instruction {
	return b.instructions
}

func (b *BasicBlock) FirstPC() uint64 {
	return b.firstPC
}

func (b *BasicBlock) LastPC() uint64 {
	return b.lastPC
}

// Last returns the final instruction of the block.
func (b *BasicBlock) Last() Instruction {
	return b.instructions[len(b.instructions)-1]
}

func (b *BasicBlock) Parents() []*BasicBlock {
	return b.parents
}

// SetParents appends parents that are not linked yet, keeping their order.
func (b *BasicBlock) SetParents(parents []*BasicBlock) {
	for _, parent := range parents {
		if !b.parentsBitmap.isBitSet(uint64(parent.blockNum)) {
			b.parentsBitmap.set1(uint64(parent.blockNum))
			b.parents = append(b.parents, parent)
		}
	}
}

func (b *BasicBlock) Children() []*BasicBlock {
	return b.children
}

// SetChildren appends children that are not linked yet, keeping their order.
func (b *BasicBlock) SetChildren(children []*BasicBlock) {
	for _, child := range children {
		if !b.childrenBitmap.isBitSet(uint64(child.blockNum)) {
			b.childrenBitmap.set1(uint64(child.blockNum))
			b.children = append(b.children, child)
		}
	}
}

func (b *BasicBlock) String() string {
	return fmt.Sprintf("block %d @%#x", b.blockNum, b.firstPC)
}

// Dump renders the block's instructions one per line.
func (b *BasicBlock) Dump() string {
	lines := make([]string, len(b.instructions))
	for i, in := range b.instructions {
		lines[i] = in.String()
	}
	return strings.Join(lines, "\n")
}
