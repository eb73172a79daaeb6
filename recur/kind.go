package recur

import (
	"math"

	"github.com/vecpal/vecpal/ir"
)

// Kind identifies the combining operation of a reduction.
type Kind int

const (
	None Kind = iota
	Add
	Mul
	Or
	And
	Xor
	SMax
	SMin
	UMax
	UMin
	FAdd
	FMul
	FMax
	FMin
)

var kindNames = [...]string{
	None: "none",
	Add:  "add",
	Mul:  "mul",
	Or:   "or",
	And:  "and",
	Xor:  "xor",
	SMax: "smax",
	SMin: "smin",
	UMax: "umax",
	UMin: "umin",
	FAdd: "fadd",
	FMul: "fmul",
	FMax: "fmax",
	FMin: "fmin",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind?"
}

// IsInteger reports whether k combines integer values.
func (k Kind) IsInteger() bool {
	switch k {
	case Add, Mul, Or, And, Xor, SMax, SMin, UMax, UMin:
		return true
	}
	return false
}

// IsFloatingPoint reports whether k combines floating-point values.
func (k Kind) IsFloatingPoint() bool {
	return k != None && !k.IsInteger()
}

// IsArithmetic reports whether k is eligible for reassociation and
// type narrowing.
func (k Kind) IsArithmetic() bool {
	switch k {
	case Add, Mul, FAdd, FMul:
		return true
	}
	return false
}

// IsMinMax reports whether k is a min/max idiom kind.
func (k Kind) IsMinMax() bool {
	return k.IsIntMinMax() || k.IsFPMinMax()
}

// IsIntMinMax reports whether k is an integer min/max kind.
func (k Kind) IsIntMinMax() bool {
	switch k {
	case SMax, SMin, UMax, UMin:
		return true
	}
	return false
}

// IsFPMinMax reports whether k is a floating-point min/max kind.
func (k Kind) IsFPMinMax() bool {
	return k == FMax || k == FMin
}

// Opcode returns the opcode a reduction operation of kind k carries;
// min/max kinds report their comparison opcode.
func (k Kind) Opcode() ir.Op {
	switch k {
	case Add:
		return ir.OpAdd
	case Mul:
		return ir.OpMul
	case Or:
		return ir.OpOr
	case And:
		return ir.OpAnd
	case Xor:
		return ir.OpXor
	case FAdd:
		return ir.OpFAdd
	case FMul:
		return ir.OpFMul
	case SMax, SMin, UMax, UMin:
		return ir.OpICmp
	case FMax, FMin:
		return ir.OpFCmp
	}
	panic("recur: no opcode for kind " + k.String())
}

// Identity returns the neutral element of kind k at type t: the value
// a vector lane can be seeded with without changing the result.
func Identity(k Kind, t ir.Type, fmf ir.FastMathFlags) *ir.Const {
	switch k {
	case Add, Or, Xor:
		return ir.ConstInt(t, 0)
	case Mul:
		return ir.ConstInt(t, 1)
	case And:
		return ir.ConstInt(t, -1)
	case FMul:
		return ir.ConstFloat(t, 1)
	case FAdd:
		// -0.0 is the true identity; +0.0 is only safe when signed
		// zeros may be ignored.
		if fmf.NoSignedZeros() {
			return ir.ConstFloat(t, 0)
		}
		return ir.ConstFloat(t, math.Copysign(0, -1))
	case UMin:
		return ir.ConstInt(t, -1)
	case UMax:
		return ir.ConstInt(t, 0)
	case SMin:
		return ir.ConstInt(t, signedMax(ir.Bits(t)))
	case SMax:
		return ir.ConstInt(t, signedMin(ir.Bits(t)))
	case FMin:
		return ir.Inf(t, false)
	case FMax:
		return ir.Inf(t, true)
	}
	panic("recur: no identity for kind " + k.String())
}

func signedMax(bits int) int64 {
	if bits <= 0 || bits > 64 {
		bits = 64
	}
	return int64(1)<<(uint(bits)-1) - 1
}

func signedMin(bits int) int64 {
	return -signedMax(bits) - 1
}
