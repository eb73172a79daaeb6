package recur

import (
	"github.com/vecpal/vecpal/ir"
	"github.com/vecpal/vecpal/loop"
)

// OpChain returns the straight-line sequence of reduction operations
// from phi down to the loop exit instruction, or nil if the chain is
// not a clean single-use sequence. Min/max kinds walk compare+select
// pairs and collect the selects.
func (d *Descriptor) OpChain(phi *ir.Instr, l *loop.Loop) []*ir.Instr {
	expectedUses := 1
	if d.kind.IsMinMax() {
		// The compare and the select each consume the running value.
		expectedUses = 2
	}
	redOp := d.kind.Opcode()

	correct := func(cur *ir.Instr) bool {
		if d.kind.IsMinMax() {
			return cur.Op() == ir.OpSelect && minMaxPattern(cur, instDesc{}).matched
		}
		return cur.Op() == redOp
	}
	// For min/max the next link is the select of the pair, whichever
	// user slot it sits in.
	next := func(cur *ir.Instr) *ir.Instr {
		users := cur.Users()
		if len(users) == 0 {
			return nil
		}
		if d.kind.IsMinMax() && users[0].Op() != ir.OpSelect && len(users) > 1 {
			return users[1]
		}
		return users[0]
	}

	// The exit is checked up front but appended last: it feeds the
	// merge node and the escape, never another chain link.
	if d.exit == nil || !correct(d.exit) || d.exit.NumUses() != 2 {
		return nil
	}
	if phi.NumUses() != expectedUses {
		return nil
	}

	var chain []*ir.Instr
	cur := next(phi)
	for cur != nil && cur != d.exit {
		if cur.NumUses() != expectedUses || !correct(cur) {
			return nil
		}
		chain = append(chain, cur)
		cur = next(cur)
	}
	if cur == nil {
		return nil
	}
	return append(chain, cur)
}
