package tac

// FoldBlock propagates constants through b and evaluates every arithmetic
// assignment whose arguments are all known. It returns the rewritten block and
// the number of assignments that were folded. b itself is left untouched.
func FoldBlock(b *Block) (*Block, int) {
	var (
		known  = make(map[string]Constant)
		ops    = make([]Op, len(b.ops))
		folded int
	)
	for i, op := range b.ops {
		args, changed := substitute(op.Args(), known)

		assign, ok := op.(*AssignOperation)
		if !ok {
			if changed {
				op = NewOperation(op.Opcode(), args, op.Address())
			}
			ops[i] = op
			continue
		}
		if c, ok := assign.Constant(); ok {
			known[assign.lhs.ident] = c
			ops[i] = op
			continue
		}
		if c, ok := evalArgs(assign, args); ok {
			known[assign.lhs.ident] = c
			ops[i] = NewConstantAssignment(assign.lhs, assign.opcode, c, assign.address)
			folded++
			continue
		}
		// A redefinition shadows whatever was known before.
		delete(known, assign.lhs.ident)
		if changed {
			op = NewAssignOperation(assign.lhs, assign.opcode, args, assign.address, assign.printName)
		}
		ops[i] = op
	}
	return b.withOps(ops), folded
}

// Fold applies FoldBlock to every block. The returned CFG has the same IDs,
// edges and unresolved-jump flags as c.
func (c *CFG) Fold() (*CFG, int) {
	out := &CFG{blocks: make([]*Block, len(c.blocks))}
	total := 0
	for i, b := range c.blocks {
		nb, n := FoldBlock(b)
		out.blocks[i] = nb
		total += n
	}
	return out, total
}

func evalArgs(a *AssignOperation, args []Operand) (Constant, bool) {
	if !IsArithmeticOpCode(a.opcode) {
		return Constant{}, false
	}
	consts := make([]Constant, len(args))
	for i, arg := range args {
		c, ok := arg.(Constant)
		if !ok {
			return Constant{}, false
		}
		consts[i] = c
	}
	res, err := Eval(a.opcode, consts...)
	if err != nil {
		return Constant{}, false
	}
	return res, true
}

// substitute replaces variables with their known values, including variables
// used as location addresses.
func substitute(args []Operand, known map[string]Constant) ([]Operand, bool) {
	changed := false
	for i, arg := range args {
		switch a := arg.(type) {
		case Variable:
			if c, ok := known[a.ident]; ok {
				args[i] = c
				changed = true
			}
		case Location:
			if v, ok := a.address.(Variable); ok {
				if c, ok := known[v.ident]; ok {
					args[i] = Location{space: a.space, address: c}
					changed = true
				}
			}
		}
	}
	return args, changed
}
