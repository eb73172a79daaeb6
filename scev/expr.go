// Package scev is the symbolic affine-recurrence engine consumed by
// the induction classifier.
//
// Expressions form a small closed vocabulary: integer constants,
// opaque unknowns wrapping a graph value, affine recurrences
// {start, +, step} attached to a loop, and folded binary expressions
// over invariants. The engine computes the expression of a value,
// can speculate an affine recurrence for a merge node whose update
// chain hides the recurrence behind narrowing/widening casts (which
// registers a runtime guard), and answers equality-under-guards and
// loop-invariance queries.
package scev

import (
	"fmt"

	"github.com/vecpal/vecpal/ir"
	"github.com/vecpal/vecpal/loop"
)

// Expr is a symbolic expression.
type Expr interface {
	String() string
	expr()
}

// Const is an integer constant expression.
type Const struct {
	Value int64
}

func (c *Const) expr()          {}
func (c *Const) String() string { return fmt.Sprintf("%d", c.Value) }

// Unknown wraps a graph value the engine cannot express further.
type Unknown struct {
	V ir.Value
}

func (u *Unknown) expr()          {}
func (u *Unknown) String() string { return u.V.Name() }

// AddRec is the affine recurrence {start, +, step} over the iteration
// count of loop L.
type AddRec struct {
	Start Expr
	Step  Expr
	L     *loop.Loop
}

func (r *AddRec) expr() {}
func (r *AddRec) String() string {
	return fmt.Sprintf("{%s, +, %s}<%s>", r.Start, r.Step, r.L)
}

// StepConst returns the constant step value, or false if the step is
// symbolic.
func (r *AddRec) StepConst() (int64, bool) {
	c, ok := r.Step.(*Const)
	if !ok {
		return 0, false
	}
	return c.Value, true
}

// Binary is an unevaluated binary expression.
type Binary struct {
	Op ir.Op
	X  Expr
	Y  Expr
}

func (b *Binary) expr() {}
func (b *Binary) String() string {
	return fmt.Sprintf("(%s %s %s)", b.X, b.Op, b.Y)
}

// Negate returns the additive inverse of x, folding constants.
func Negate(x Expr) Expr {
	if c, ok := x.(*Const); ok {
		return &Const{Value: -c.Value}
	}
	return &Binary{Op: ir.OpMul, X: x, Y: &Const{Value: -1}}
}

// Equal compares two expressions structurally.
func Equal(a, b Expr) bool {
	switch a := a.(type) {
	case *Const:
		b, ok := b.(*Const)
		return ok && a.Value == b.Value
	case *Unknown:
		b, ok := b.(*Unknown)
		return ok && a.V == b.V
	case *AddRec:
		b, ok := b.(*AddRec)
		return ok && a.L == b.L && Equal(a.Start, b.Start) && Equal(a.Step, b.Step)
	case *Binary:
		b, ok := b.(*Binary)
		return ok && a.Op == b.Op && Equal(a.X, b.X) && Equal(a.Y, b.Y)
	}
	return false
}
