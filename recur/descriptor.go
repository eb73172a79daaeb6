package recur

import (
	"github.com/vecpal/vecpal/ir"
)

// Descriptor describes a recognised reduction variable. It is built
// once per successful match and immutable afterwards.
type Descriptor struct {
	start       ir.Value
	exit        *ir.Instr
	kind        Kind
	fmf         ir.FastMathFlags
	exactFPMath *ir.Instr
	recType     ir.Type
	signed      bool
	ordered     bool
	casts       map[*ir.Instr]bool
}

// Start returns the value entering the reduction from the preheader.
func (d *Descriptor) Start() ir.Value { return d.start }

// LoopExitInstr returns the single instruction whose result escapes
// the loop.
func (d *Descriptor) LoopExitInstr() *ir.Instr { return d.exit }

// Kind returns the reduction kind.
func (d *Descriptor) Kind() Kind { return d.kind }

// FMF returns the relaxed-math flags intersected across the chain.
func (d *Descriptor) FMF() ir.FastMathFlags { return d.fmf }

// ExactFPMathInst returns the first floating-point instruction of the
// chain that disallows reassociation, or nil.
func (d *Descriptor) ExactFPMathInst() *ir.Instr { return d.exactFPMath }

// RecurrenceType returns the minimal type the reduction can be
// evaluated in; it may be narrower than the merge node's type.
func (d *Descriptor) RecurrenceType() ir.Type { return d.recType }

// Signed reports whether a narrowed reduction must be sign-extended
// back to its original width.
func (d *Descriptor) Signed() bool { return d.signed }

// Ordered reports whether the reduction must preserve strict
// sequential accumulation order.
func (d *Descriptor) Ordered() bool { return d.ordered }

// CastsToIgnore returns the in-loop cast instructions made redundant
// by evaluating the reduction at its minimal type.
func (d *Descriptor) CastsToIgnore() []*ir.Instr {
	var casts []*ir.Instr
	for c := range d.casts {
		casts = append(casts, c)
	}
	return casts
}

// IsRedundantCast reports whether i belongs to the redundant cast set.
func (d *Descriptor) IsRedundantCast(i *ir.Instr) bool { return d.casts[i] }

// instDesc is the transient state carried while classifying one
// instruction of a candidate reduction chain.
type instDesc struct {
	matched     bool
	pattern     *ir.Instr // the instruction the match advanced to
	kind        Kind
	exactFPMath *ir.Instr
}
