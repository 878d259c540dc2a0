package compiler

import (
	"fmt"

	"github.com/evmtac/evmtac/core/opcodeCompiler/tac"
)

// ValueStack is the symbolic operand stack of a single block. The stack the
// block is entered with is unknown; its slots are materialised on demand as
// entry variables S0 (the entry top), S1, ... as the block reaches into them.
type ValueStack struct {
	data    []tac.Value
	entries int
}

// push places v on top of the stack.
func (s *ValueStack) push(v tac.Value) {
	s.data = append(s.data, v)
}

func (s *ValueStack) pop() tac.Value {
	s.require(1)
	val := s.data[len(s.data)-1]
	s.data = s.data[:len(s.data)-1]
	return val
}

func (s *ValueStack) size() int {
	return len(s.data)
}

// peek returns the nth item from the top of the stack (0-indexed)
func (s *ValueStack) peek(n int) tac.Value {
	s.require(n + 1)
	return s.data[len(s.data)-1-n]
}

// swap exchanges the top of the stack with the nth item below it.
func (s *ValueStack) swap(n int) {
	s.require(n + 1)
	top := len(s.data) - 1
	s.data[top], s.data[top-n] = s.data[top-n], s.data[top]
}

// require makes sure at least n items are visible, exposing entry slots from
// below as needed.
func (s *ValueStack) require(n int) {
	missing := n - len(s.data)
	if missing <= 0 {
		return
	}
	exposed := make([]tac.Value, missing, missing+len(s.data))
	for i := missing - 1; i >= 0; i-- {
		exposed[i] = tac.NewVariable(fmt.Sprintf("S%d", s.entries))
		s.entries++
	}
	s.data = append(exposed, s.data...)
}

// Entries returns how many entry slots the block has reached into.
func (s *ValueStack) Entries() int { return s.entries }
