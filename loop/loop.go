package loop

import (
	"fmt"

	"github.com/vecpal/vecpal/ir"
)

// Loop is an immutable view of one natural loop.
type Loop struct {
	// Header is the single entry block; it dominates every block of
	// the loop.
	Header *ir.Block
	// Latch is the block supplying the backedge, or nil if the loop
	// has more than one backedge.
	Latch *ir.Block
	// Blocks is the loop body membership set, header included.
	Blocks map[*ir.Block]bool
	// Exits lists the loop blocks with a successor outside the loop,
	// ordered by block index.
	Exits []*ir.Block

	// Parent and Children describe the nesting hierarchy.
	Parent   *Loop
	Children []*Loop
}

func (l *Loop) String() string {
	return fmt.Sprintf("loop@%d", l.Header.Index())
}

// Contains reports whether b belongs to the loop body.
func (l *Loop) Contains(b *ir.Block) bool { return l.Blocks[b] }

// ContainsInstr reports whether the instruction is inside the loop.
func (l *Loop) ContainsInstr(i *ir.Instr) bool { return l.Blocks[i.Block()] }

// ContainsValue reports whether v is an instruction inside the loop.
// Constants and external values are never inside a loop.
func (l *Loop) ContainsValue(v ir.Value) bool {
	i, ok := v.(*ir.Instr)
	return ok && l.ContainsInstr(i)
}

// IsLoopInvariant reports whether v does not change within the loop:
// constants, external values, and instructions defined outside.
func (l *Loop) IsLoopInvariant(v ir.Value) bool {
	return !l.ContainsValue(v)
}

// Preheader returns the sole block outside the loop branching to the
// header, or nil if the header has several outside predecessors.
func (l *Loop) Preheader() *ir.Block {
	var ph *ir.Block
	for _, p := range l.Header.Preds {
		if l.Blocks[p] {
			continue
		}
		if ph != nil {
			return nil
		}
		ph = p
	}
	return ph
}

// HeaderPhis returns the merge nodes of the loop header.
func (l *Loop) HeaderPhis() []*ir.Instr {
	var phis []*ir.Instr
	for _, i := range l.Header.Instrs {
		if !i.IsPhi() {
			break // phis lead the block
		}
		phis = append(phis, i)
	}
	return phis
}

// Info summarises the loops of one function.
type Info struct {
	Fn *ir.Func
	// Loops holds the top-level loops of the hierarchy.
	Loops []*Loop
	// ByHeader maps header blocks to their loop.
	ByHeader map[*ir.Block]*Loop

	all []*Loop
}

// All returns every loop of the function, outermost first by header
// block index.
func (n *Info) All() []*Loop { return n.all }
