package ir

import (
	"fmt"
	"math"
	"math/bits"
	"strconv"
)

// Value is a node in the dataflow graph.
type Value interface {
	Name() string
	Type() Type
	String() string
}

// Const is a compile-time constant value.
type Const struct {
	typ Type

	// IntVal holds the value of integer constants; the mask/stride
	// helpers below interpret it. FloatVal holds float constants.
	IntVal   int64
	FloatVal float64
}

// ConstInt returns a new integer constant of type t.
func ConstInt(t Type, v int64) *Const {
	return &Const{typ: t, IntVal: v}
}

// ConstFloat returns a new floating-point constant of type t.
func ConstFloat(t Type, v float64) *Const {
	return &Const{typ: t, FloatVal: v}
}

// ConstBool returns an i1 constant.
func ConstBool(v bool) *Const {
	if v {
		return ConstInt(I1, 1)
	}
	return ConstInt(I1, 0)
}

func (c *Const) Name() string { return c.String() }
func (c *Const) Type() Type   { return c.typ }

func (c *Const) String() string {
	if IsFloat(c.typ) {
		return strconv.FormatFloat(c.FloatVal, 'g', -1, 64) + ":" + c.typ.String()
	}
	return fmt.Sprintf("%d:%s", c.IntVal, c.typ.String())
}

// IsZero reports whether the constant is (positive or negative) zero.
func (c *Const) IsZero() bool {
	if IsFloat(c.typ) {
		return c.FloatVal == 0
	}
	return c.IntVal == 0
}

// MaskBits interprets an integer constant as a low-bit mask of the
// form 2^n-1 and returns n, or 0 if the value has another shape.
func (c *Const) MaskBits() int {
	if !IsInteger(c.typ) || c.IntVal <= 0 {
		return 0
	}
	m := uint64(c.IntVal)
	if m&(m+1) != 0 {
		return 0
	}
	return bits.Len64(m)
}

// Inf returns a floating-point infinity constant of type t.
func Inf(t Type, negative bool) *Const {
	sign := 1
	if negative {
		sign = -1
	}
	return ConstFloat(t, math.Inf(sign))
}

// Param is a value defined outside the graph under analysis: a
// function parameter, a global, or any other opaque external value.
type Param struct {
	name string
	typ  Type
}

// NewParam returns a new external value.
func NewParam(name string, t Type) *Param {
	return &Param{name: name, typ: t}
}

func (p *Param) Name() string   { return p.name }
func (p *Param) Type() Type     { return p.typ }
func (p *Param) String() string { return p.name }
