package ir

import (
	"bytes"
	"fmt"
)

// Instr is a value with an opcode and an ordered list of operand
// edges to other values.
type Instr struct {
	name string
	op   Op
	typ  Type
	args []Value

	pred Pred          // comparison predicate for OpICmp/OpFCmp
	fmf  FastMathFlags // relaxed-math flags for floating-point ops

	blk *Block
	pos int // position within blk, assigned on append

	// users lists every instruction operand slot referring to this
	// value; an instruction using the value twice appears twice.
	users []*Instr

	incoming []*Block // phi only, parallel to args
}

func (i *Instr) Name() string {
	return i.name
}

func (i *Instr) Type() Type { return i.typ }

func (i *Instr) String() string {
	var buf bytes.Buffer
	if _, ok := i.typ.(*VoidType); !ok {
		fmt.Fprintf(&buf, "%s = ", i.name)
	}
	buf.WriteString(i.op.String())
	if i.op == OpICmp || i.op == OpFCmp {
		buf.WriteString(" " + i.pred.String())
	}
	if i.fmf != 0 {
		buf.WriteString(" [" + i.fmf.String() + "]")
	}
	for n, a := range i.args {
		if n > 0 {
			buf.WriteString(",")
		}
		buf.WriteString(" ")
		buf.WriteString(a.Name())
		if i.op == OpPhi && n < len(i.incoming) {
			fmt.Fprintf(&buf, "(#%d)", i.incoming[n].Index())
		}
	}
	return buf.String()
}

// Op returns the instruction opcode.
func (i *Instr) Op() Op { return i.op }

// Pred returns the comparison predicate (OpICmp/OpFCmp only).
func (i *Instr) Pred() Pred { return i.pred }

// FMF returns the relaxed-math flags of the instruction.
func (i *Instr) FMF() FastMathFlags { return i.fmf }

// Block returns the block the instruction belongs to.
func (i *Instr) Block() *Block { return i.blk }

// NumOperands returns the operand count.
func (i *Instr) NumOperands() int { return len(i.args) }

// Operand returns the n-th operand.
func (i *Instr) Operand(n int) Value { return i.args[n] }

// Operands returns the operand list. The slice is shared; callers
// must not modify it.
func (i *Instr) Operands() []Value { return i.args }

// HasOperand reports whether v appears among the operands.
func (i *Instr) HasOperand(v Value) bool {
	for _, a := range i.args {
		if a == v {
			return true
		}
	}
	return false
}

// Users returns every instruction use of this value, one entry per
// operand slot. The slice is shared; callers must not modify it.
func (i *Instr) Users() []*Instr { return i.users }

// NumUses returns the number of operand slots referring to this value.
func (i *Instr) NumUses() int { return len(i.users) }

// HasOneUse reports whether the value is used exactly once.
func (i *Instr) HasOneUse() bool { return len(i.users) == 1 }

// ComesBefore reports whether i appears before j in the same block.
func (i *Instr) ComesBefore(j *Instr) bool {
	return i.blk == j.blk && i.pos < j.pos
}

// IsPhi reports whether the instruction is a merge node.
func (i *Instr) IsPhi() bool { return i.op == OpPhi }

// Commutative reports whether the operands can be swapped.
func (i *Instr) Commutative() bool { return i.op.IsCommutative() }

// IsTerminator reports whether the instruction ends its block.
func (i *Instr) IsTerminator() bool { return i.op.IsTerminator() }

// IsCast reports whether the instruction is a truncation/extension.
func (i *Instr) IsCast() bool { return i.op.IsCast() }

// SrcType returns the operand type of a cast instruction.
func (i *Instr) SrcType() Type { return i.args[0].Type() }

// MayReadMemory reports whether executing the instruction may observe
// memory state.
func (i *Instr) MayReadMemory() bool {
	return i.op == OpLoad || i.op == OpOpaque
}

// MayHaveSideEffects reports whether the instruction may write memory
// or otherwise affect observable state.
func (i *Instr) MayHaveSideEffects() bool {
	return i.op == OpStore || i.op == OpOpaque
}

// NumIncoming returns the number of incoming phi edges.
func (i *Instr) NumIncoming() int { return len(i.incoming) }

// Incoming returns the n-th incoming value and its predecessor block.
func (i *Instr) Incoming(n int) (Value, *Block) {
	return i.args[n], i.incoming[n]
}

// EdgeForBlock returns the incoming value supplied along the edge
// from pred, or nil if pred is not an incoming block.
func (i *Instr) EdgeForBlock(pred *Block) Value {
	for n, b := range i.incoming {
		if b == pred {
			return i.args[n]
		}
	}
	return nil
}

// HasIncomingBlock reports whether pred supplies an incoming edge.
func (i *Instr) HasIncomingBlock(pred *Block) bool {
	for _, b := range i.incoming {
		if b == pred {
			return true
		}
	}
	return false
}
