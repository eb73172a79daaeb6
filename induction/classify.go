package induction

import (
	"github.com/vecpal/vecpal/ir"
	"github.com/vecpal/vecpal/loop"
	"github.com/vecpal/vecpal/scev"
)

// Engine is the affine-recurrence oracle the integer and pointer
// paths resolve candidates through. *scev.Engine satisfies it.
type Engine interface {
	ExprOf(v ir.Value) scev.Expr
	AsAddRec(v ir.Value) (*scev.AddRec, bool)
	EqualUnderGuards(a, b scev.Expr) bool
	IsLoopInvariant(x scev.Expr, l *loop.Loop) bool
}

// Classify decides whether phi is an induction variable of l. When
// allowSpeculate is set, an opaque update chain may be resolved by
// speculating an affine recurrence; the engine then carries a runtime
// guard the caller must honor.
func Classify(phi *ir.Instr, l *loop.Loop, eng Engine, allowSpeculate bool) (*Descriptor, bool) {
	switch {
	case ir.IsFloat(phi.Type()):
		return classifyFP(phi, l)
	case ir.IsInteger(phi.Type()), ir.IsPointer(phi.Type()):
		return classifySym(phi, l, eng, allowSpeculate)
	}
	return nil, false
}

// classifyFP matches the structural float induction: the backedge
// value is an fadd/fsub of the merge node with an invariant addend.
// An fsub only advances the recurrence with the merge node on the
// left.
func classifyFP(phi *ir.Instr, l *loop.Loop) (*Descriptor, bool) {
	if phi.NumIncoming() != 2 {
		return nil, false
	}
	ph := l.Preheader()
	if ph == nil || l.Latch == nil {
		return nil, false
	}
	start := phi.EdgeForBlock(ph)
	be := phi.EdgeForBlock(l.Latch)
	if start == nil || be == nil {
		return nil, false
	}
	upd, ok := be.(*ir.Instr)
	if !ok {
		return nil, false
	}

	var addend ir.Value
	switch upd.Op() {
	case ir.OpFAdd:
		if upd.Operand(0) == phi {
			addend = upd.Operand(1)
		} else if upd.Operand(1) == phi {
			addend = upd.Operand(0)
		}
	case ir.OpFSub:
		if upd.Operand(0) == phi {
			addend = upd.Operand(1)
		}
	}
	if addend == nil || !l.IsLoopInvariant(addend) {
		return nil, false
	}
	return newDescriptor(start, Fp, &scev.Unknown{V: addend}, upd, nil), true
}

// classifySym resolves integer and pointer candidates through the
// affine-recurrence engine.
func classifySym(phi *ir.Instr, l *loop.Loop, eng Engine, allowSpeculate bool) (*Descriptor, bool) {
	var casts []*ir.Instr
	rec, ok := eng.ExprOf(phi).(*scev.AddRec)
	if !ok {
		if !allowSpeculate {
			return nil, false
		}
		spec, sok := eng.AsAddRec(phi)
		if !sok {
			return nil, false
		}
		// The casts hiding the recurrence are only reported when they
		// form a cleanly removable sequence; a failed trace loses the
		// cast list, not the induction.
		if cs, ok := traceCasts(eng, phi, spec); ok {
			casts = cs
		}
		rec = spec
	}

	// A recurrence of an enclosing loop is invariant here; that shape
	// is not an induction of l.
	if rec.L != l {
		return nil, false
	}

	step := rec.Step
	if _, isConst := step.(*scev.Const); !isConst && !eng.IsLoopInvariant(step, l) {
		return nil, false
	}

	ph := l.Preheader()
	if ph == nil {
		return nil, false
	}
	start := phi.EdgeForBlock(ph)
	if start == nil {
		return nil, false
	}

	// Record the update instruction when the backedge value advances
	// the merge node directly.
	var binOp *ir.Instr
	if l.Latch != nil {
		if upd, ok := phi.EdgeForBlock(l.Latch).(*ir.Instr); ok {
			switch upd.Op() {
			case ir.OpAdd, ir.OpSub, ir.OpPtrAdd:
				binOp = upd
			}
		}
	}

	if ir.IsPointer(phi.Type()) {
		c, ok := step.(*scev.Const)
		if !ok {
			return nil, false
		}
		pt, ok := phi.Type().(*ir.PtrType)
		if !ok || pt.Elem == nil {
			return nil, false
		}
		size := pt.Elem.Size()
		if size <= 0 || c.Value%size != 0 {
			return nil, false
		}
		return newDescriptor(start, Ptr, &scev.Const{Value: c.Value / size}, binOp, casts), true
	}
	return newDescriptor(start, Int, step, binOp, casts), true
}

// traceCasts walks the update chain from the backedge value back to
// phi, recording the instructions whose symbolic form reproduces rec
// under the engine's guards. Past the first such instruction every
// link must have exactly one use, or removing the chain would leave
// dangling consumers.
func traceCasts(eng Engine, phi *ir.Instr, rec *scev.AddRec) ([]*ir.Instr, bool) {
	l := rec.L
	if l.Latch == nil {
		return nil, false
	}
	val := phi.EdgeForBlock(l.Latch)

	var casts []*ir.Instr
	inSequence := false
	for {
		inst, ok := val.(*ir.Instr)
		if !ok {
			return nil, false
		}
		if inst.IsPhi() {
			if inst == phi && inSequence {
				return casts, true
			}
			return nil, false
		}
		if !l.ContainsInstr(inst) {
			return nil, false
		}

		if !inSequence && eng.EqualUnderGuards(eng.ExprOf(inst), rec) {
			inSequence = true
		}
		if inSequence {
			if len(casts) > 0 && !inst.HasOneUse() {
				return nil, false
			}
			casts = append(casts, inst)
		}

		var next ir.Value
		for k := 0; k < inst.NumOperands(); k++ {
			op := inst.Operand(k)
			if l.IsLoopInvariant(op) {
				continue
			}
			if next != nil {
				return nil, false // more than one varying operand
			}
			next = op
		}
		if next == nil {
			return nil, false
		}
		val = next
	}
}
