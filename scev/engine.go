package scev

import (
	"io"
	"io/ioutil"
	"log"

	"github.com/vecpal/vecpal/ir"
	"github.com/vecpal/vecpal/loop"
)

// Guard is a runtime predicate registered by speculation: the update
// chain of Phi computes Rec provided the narrow arithmetic does not
// wrap. Callers that consume a speculated recurrence must emit a
// check for every registered guard.
type Guard struct {
	Phi *ir.Instr
	Rec *AddRec
}

// Engine computes symbolic expressions for one function. Queries are
// cached; the engine itself is the only holder of mutable state, so
// independent engines can run concurrently over the same graph.
type Engine struct {
	info *loop.Info

	cache    map[ir.Value]Expr
	visiting map[ir.Value]bool
	specs    map[*ir.Instr]*AddRec
	guards   []Guard

	logger *log.Logger
}

// NewEngine returns an engine over the loops in info.
func NewEngine(info *loop.Info) *Engine {
	return &Engine{
		info:     info,
		cache:    make(map[ir.Value]Expr),
		visiting: make(map[ir.Value]bool),
		specs:    make(map[*ir.Instr]*AddRec),
		logger:   log.New(ioutil.Discard, "scev: ", 0),
	}
}

// SetLog directs engine logging to w.
func (e *Engine) SetLog(w io.Writer) {
	e.logger.SetOutput(w)
}

// Guards returns the runtime guards registered by speculation so far.
func (e *Engine) Guards() []Guard { return e.guards }

// ExprOf returns the symbolic expression of v.
func (e *Engine) ExprOf(v ir.Value) Expr {
	if x, ok := e.cache[v]; ok {
		return x
	}
	if e.visiting[v] {
		return &Unknown{V: v} // cycle; not cached
	}
	e.visiting[v] = true
	x := e.compute(v)
	delete(e.visiting, v)
	e.cache[v] = x
	return x
}

func (e *Engine) compute(v ir.Value) Expr {
	switch v := v.(type) {
	case *ir.Const:
		if ir.IsInteger(v.Type()) {
			return &Const{Value: v.IntVal}
		}
		return &Unknown{V: v}
	case *ir.Instr:
		if v.IsPhi() {
			if l := e.info.ByHeader[v.Block()]; l != nil {
				if rec, ok := e.phiAddRec(v, l); ok {
					return rec
				}
			}
			return &Unknown{V: v}
		}
		switch v.Op() {
		case ir.OpAdd, ir.OpSub, ir.OpMul:
			return e.fold(v.Op(), e.ExprOf(v.Operand(0)), e.ExprOf(v.Operand(1)), v)
		}
		return &Unknown{V: v}
	default:
		return &Unknown{V: v}
	}
}

// phiAddRec recognises the direct affine update of a loop-header
// merge node: the backedge value is an add/sub (or pointer advance)
// of the node with a loop-invariant step.
func (e *Engine) phiAddRec(phi *ir.Instr, l *loop.Loop) (*AddRec, bool) {
	ph := l.Preheader()
	if ph == nil || l.Latch == nil || phi.NumIncoming() != 2 {
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

	var step ir.Value
	negate := false
	switch upd.Op() {
	case ir.OpAdd, ir.OpPtrAdd:
		if upd.Operand(0) == phi {
			step = upd.Operand(1)
		} else if upd.Op() == ir.OpAdd && upd.Operand(1) == phi {
			step = upd.Operand(0)
		}
	case ir.OpSub:
		// Only phi - step evolves affinely.
		if upd.Operand(0) == phi {
			step = upd.Operand(1)
			negate = true
		}
	}
	if step == nil || !l.IsLoopInvariant(step) {
		return nil, false
	}
	stepExpr := e.ExprOf(step)
	if !e.IsLoopInvariant(stepExpr, l) {
		return nil, false
	}
	if negate {
		stepExpr = Negate(stepExpr)
	}
	return &AddRec{Start: e.ExprOf(start), Step: stepExpr, L: l}, true
}

// fold combines two expressions; invariant-only shapes stay symbolic
// as a Binary, anything touching an unresolved recurrence collapses
// to Unknown to stay conservative.
func (e *Engine) fold(op ir.Op, x, y Expr, v ir.Value) Expr {
	if xc, ok := x.(*Const); ok {
		if yc, ok := y.(*Const); ok {
			switch op {
			case ir.OpAdd:
				return &Const{Value: xc.Value + yc.Value}
			case ir.OpSub:
				return &Const{Value: xc.Value - yc.Value}
			case ir.OpMul:
				return &Const{Value: xc.Value * yc.Value}
			}
		}
	}
	// {s,+,c} +/- inv folds into the recurrence start.
	if xr, ok := x.(*AddRec); ok && e.IsLoopInvariant(y, xr.L) {
		switch op {
		case ir.OpAdd:
			return &AddRec{Start: e.foldInv(op, xr.Start, y), Step: xr.Step, L: xr.L}
		case ir.OpSub:
			return &AddRec{Start: e.foldInv(op, xr.Start, y), Step: xr.Step, L: xr.L}
		}
	}
	if yr, ok := y.(*AddRec); ok && op == ir.OpAdd && e.IsLoopInvariant(x, yr.L) {
		return &AddRec{Start: e.foldInv(op, yr.Start, x), Step: yr.Step, L: yr.L}
	}
	if _, ok := x.(*AddRec); ok {
		return &Unknown{V: v}
	}
	if _, ok := y.(*AddRec); ok {
		return &Unknown{V: v}
	}
	return &Binary{Op: op, X: x, Y: y}
}

func (e *Engine) foldInv(op ir.Op, x, y Expr) Expr {
	if xc, ok := x.(*Const); ok {
		if yc, ok := y.(*Const); ok {
			if op == ir.OpAdd {
				return &Const{Value: xc.Value + yc.Value}
			}
			return &Const{Value: xc.Value - yc.Value}
		}
	}
	return &Binary{Op: op, X: x, Y: y}
}

// IsLoopInvariant reports whether x does not vary within l.
func (e *Engine) IsLoopInvariant(x Expr, l *loop.Loop) bool {
	switch x := x.(type) {
	case *Const:
		return true
	case *Unknown:
		return l.IsLoopInvariant(x.V)
	case *AddRec:
		if x.L == l {
			return false
		}
		return e.IsLoopInvariant(x.Start, l) && e.IsLoopInvariant(x.Step, l)
	case *Binary:
		return e.IsLoopInvariant(x.X, l) && e.IsLoopInvariant(x.Y, l)
	}
	return false
}

// AsAddRec speculates an affine recurrence for a merge node whose
// update chain hides the recurrence behind casts. On success a Guard
// is registered and subsequent EqualUnderGuards queries treat the
// chain values accordingly.
func (e *Engine) AsAddRec(v ir.Value) (*AddRec, bool) {
	if rec, ok := e.ExprOf(v).(*AddRec); ok {
		return rec, true
	}
	phi, ok := v.(*ir.Instr)
	if !ok || !phi.IsPhi() {
		return nil, false
	}
	if rec, ok := e.specs[phi]; ok {
		return rec, true
	}
	l := e.info.ByHeader[phi.Block()]
	if l == nil {
		return nil, false
	}
	rec, ok := e.speculate(phi, l)
	if !ok {
		return nil, false
	}
	e.specs[phi] = rec
	e.guards = append(e.guards, Guard{Phi: phi, Rec: rec})
	e.logger.Printf("speculated %s for %s under guard", rec, phi.Name())
	return rec, true
}

// speculate walks the update chain from the backedge value down to
// phi through two-operand instructions with one invariant operand and
// through casts, looking for the single additive update.
func (e *Engine) speculate(phi *ir.Instr, l *loop.Loop) (*AddRec, bool) {
	ph := l.Preheader()
	if ph == nil || l.Latch == nil || phi.NumIncoming() != 2 {
		return nil, false
	}
	start := phi.EdgeForBlock(ph)
	cur := phi.EdgeForBlock(l.Latch)
	if start == nil || cur == nil {
		return nil, false
	}

	var step Expr
	for cur != phi {
		inst, ok := cur.(*ir.Instr)
		if !ok || !l.ContainsInstr(inst) || (inst.IsPhi() && inst != phi) {
			return nil, false
		}
		switch {
		case inst.Op() == ir.OpAdd || inst.Op() == ir.OpSub:
			varying, inv, swapped := e.splitInvariant(inst, l)
			if varying == nil {
				return nil, false
			}
			if step != nil {
				return nil, false // more than one additive update
			}
			if inst.Op() == ir.OpSub && swapped {
				return nil, false // inv - x is not an affine step
			}
			step = e.ExprOf(inv)
			if inst.Op() == ir.OpSub {
				step = Negate(step)
			}
			cur = varying
		case inst.Op() == ir.OpAnd || inst.Op() == ir.OpShl || inst.Op() == ir.OpAShr || inst.Op() == ir.OpLShr:
			varying, _, _ := e.splitInvariant(inst, l)
			if varying == nil {
				return nil, false
			}
			cur = varying
		case inst.IsCast():
			cur = inst.Operand(0)
		default:
			return nil, false
		}
	}
	if step == nil {
		return nil, false
	}
	return &AddRec{Start: e.ExprOf(start), Step: step, L: l}, true
}

// splitInvariant separates the operands of a two-operand instruction
// into the varying one and the invariant one. swapped is true when
// the invariant operand comes first.
func (e *Engine) splitInvariant(inst *ir.Instr, l *loop.Loop) (varying, inv ir.Value, swapped bool) {
	x, y := inst.Operand(0), inst.Operand(1)
	switch {
	case l.IsLoopInvariant(y) && !l.IsLoopInvariant(x):
		return x, y, false
	case l.IsLoopInvariant(x) && !l.IsLoopInvariant(y):
		return y, x, true
	}
	return nil, nil, false
}

// EqualUnderGuards reports whether a and b denote the same expression
// assuming every registered guard holds.
func (e *Engine) EqualUnderGuards(a, b Expr) bool {
	if Equal(a, b) {
		return true
	}
	if u, ok := a.(*Unknown); ok {
		if rec, ok := b.(*AddRec); ok {
			return e.guardedEqual(u.V, rec)
		}
	}
	if u, ok := b.(*Unknown); ok {
		if rec, ok := a.(*AddRec); ok {
			return e.guardedEqual(u.V, rec)
		}
	}
	return false
}

// guardedEqual recognises the cast shapes that reproduce a speculated
// recurrence: the guarded phi itself, a low-bit and-mask of it, plain
// trunc/ext casts, and the shl/ashr sign-extension idiom.
func (e *Engine) guardedEqual(v ir.Value, rec *AddRec) bool {
	inst, ok := v.(*ir.Instr)
	if !ok {
		return false
	}
	if spec, ok := e.specs[inst]; ok && Equal(spec, rec) {
		return true
	}
	switch inst.Op() {
	case ir.OpAnd:
		x, y := inst.Operand(0), inst.Operand(1)
		if c, ok := y.(*ir.Const); ok && c.MaskBits() > 0 {
			return e.guardedEqual(x, rec)
		}
		if c, ok := x.(*ir.Const); ok && c.MaskBits() > 0 {
			return e.guardedEqual(y, rec)
		}
	case ir.OpTrunc, ir.OpSExt, ir.OpZExt:
		return e.guardedEqual(inst.Operand(0), rec)
	case ir.OpAShr, ir.OpLShr:
		sh, ok := inst.Operand(1).(*ir.Const)
		if !ok {
			return false
		}
		shl, ok := inst.Operand(0).(*ir.Instr)
		if !ok || shl.Op() != ir.OpShl {
			return false
		}
		sh2, ok := shl.Operand(1).(*ir.Const)
		if !ok || sh.IntVal != sh2.IntVal {
			return false
		}
		return e.guardedEqual(shl.Operand(0), rec)
	}
	return false
}
