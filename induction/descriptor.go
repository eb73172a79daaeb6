package induction

import (
	"github.com/vecpal/vecpal/ir"
	"github.com/vecpal/vecpal/scev"
)

// Kind identifies how an induction variable advances.
type Kind int

const (
	None Kind = iota
	Int       // integer counter
	Ptr       // pointer strided by a constant element count
	Fp        // floating-point accumulator
)

func (k Kind) String() string {
	switch k {
	case None:
		return "none"
	case Int:
		return "int"
	case Ptr:
		return "ptr"
	case Fp:
		return "fp"
	}
	return "kind?"
}

// Descriptor describes a classified induction variable. Construction
// validates the classifier's own guarantees; a violation is a caller
// bug, not an input condition, and panics.
type Descriptor struct {
	start ir.Value
	kind  Kind
	step  scev.Expr
	binOp *ir.Instr
	casts []*ir.Instr
}

func newDescriptor(start ir.Value, kind Kind, step scev.Expr, binOp *ir.Instr, casts []*ir.Instr) *Descriptor {
	if kind == None {
		panic("induction: descriptor without a kind")
	}
	if start == nil || step == nil {
		panic("induction: descriptor needs a start and a step")
	}
	switch kind {
	case Int:
		if !ir.IsInteger(start.Type()) {
			panic("induction: int induction with non-integer start")
		}
	case Ptr:
		if !ir.IsPointer(start.Type()) {
			panic("induction: ptr induction with non-pointer start")
		}
		if _, ok := step.(*scev.Const); !ok {
			panic("induction: ptr induction needs a constant step")
		}
	case Fp:
		if !ir.IsFloat(start.Type()) {
			panic("induction: fp induction with non-float start")
		}
		if binOp == nil || (binOp.Op() != ir.OpFAdd && binOp.Op() != ir.OpFSub) {
			panic("induction: fp induction needs an fadd or fsub update")
		}
	}
	if c, ok := step.(*scev.Const); ok && c.Value == 0 {
		panic("induction: zero step")
	}
	return &Descriptor{start: start, kind: kind, step: step, binOp: binOp, casts: casts}
}

// Start returns the value entering the induction from outside the
// loop.
func (d *Descriptor) Start() ir.Value { return d.start }

// Kind returns the induction kind.
func (d *Descriptor) Kind() Kind { return d.kind }

// Step returns the symbolic per-iteration step. For Ptr inductions it
// is the element stride, not the byte stride.
func (d *Descriptor) Step() scev.Expr { return d.step }

// ConstIntStep returns the step as a constant, if it is one.
func (d *Descriptor) ConstIntStep() (int64, bool) {
	if c, ok := d.step.(*scev.Const); ok {
		return c.Value, true
	}
	return 0, false
}

// BinOp returns the latch update instruction when the backedge value
// advances the merge node directly, nil otherwise. It is always set
// for Fp inductions.
func (d *Descriptor) BinOp() *ir.Instr { return d.binOp }

// CastInsts returns the cast chain made redundant by resolving the
// induction through speculation, in backedge-to-header order.
func (d *Descriptor) CastInsts() []*ir.Instr { return d.casts }
