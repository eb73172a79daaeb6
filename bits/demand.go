package bits

import (
	mbits "math/bits"

	"github.com/vecpal/vecpal/ir"
)

// Analysis answers bit-level queries over one function graph. It
// keeps no state between queries; re-running a query on an unchanged
// graph returns the same answer.
type Analysis struct {
	fn *ir.Func
}

// NewAnalysis returns an analysis over fn.
func NewAnalysis(fn *ir.Func) *Analysis {
	return &Analysis{fn: fn}
}

// DemandedBits returns the mask of result bits of i observed by its
// transitive users. Cyclic dataflow through merge nodes contributes
// nothing on re-entry, so a value whose only escape is through a
// narrowing user reports the narrow mask.
func (a *Analysis) DemandedBits(i *ir.Instr) uint64 {
	return a.demanded(i, make(map[*ir.Instr]bool))
}

func (a *Analysis) demanded(i *ir.Instr, busy map[*ir.Instr]bool) uint64 {
	w := ir.Bits(i.Type())
	if !ir.IsInteger(i.Type()) || w <= 0 {
		return lowMask(64)
	}
	if busy[i] {
		return 0
	}
	users := i.Users()
	if len(users) == 0 {
		return lowMask(w)
	}
	busy[i] = true
	var d uint64
	for _, u := range users {
		d |= a.through(u, i, busy)
		if d == lowMask(w) {
			break
		}
	}
	delete(busy, i)
	return d & lowMask(w)
}

// through returns the bits of def demanded by the single user u.
func (a *Analysis) through(u *ir.Instr, def ir.Value, busy map[*ir.Instr]bool) uint64 {
	full := lowMask(ir.Bits(def.Type()))
	switch u.Op() {
	case ir.OpStore, ir.OpOpaque, ir.OpRet, ir.OpCondBr, ir.OpICmp, ir.OpFCmp:
		return full
	}
	dOut := a.demanded(u, busy)
	switch u.Op() {
	case ir.OpPhi, ir.OpOr, ir.OpXor, ir.OpTrunc, ir.OpZExt:
		return dOut & full
	case ir.OpAnd:
		if c := constOther(u, def); c != nil {
			return dOut & uint64(c.IntVal) & full
		}
		return dOut & full
	case ir.OpSelect:
		if u.Operand(0) == def {
			return 1
		}
		return dOut & full
	case ir.OpAdd, ir.OpSub, ir.OpMul:
		// Carries only propagate upward; bits above the highest
		// demanded output bit are dead.
		return lowMask(mbits.Len64(dOut)) & full
	case ir.OpSExt:
		if dOut&^full != 0 {
			// A demanded high bit replicates the source sign bit.
			return full
		}
		return dOut & full
	case ir.OpShl:
		if c, ok := u.Operand(1).(*ir.Const); ok && u.Operand(0) == def && c.IntVal >= 0 && c.IntVal < 64 {
			return (dOut >> uint(c.IntVal)) & full
		}
		return full
	case ir.OpLShr:
		if c, ok := u.Operand(1).(*ir.Const); ok && u.Operand(0) == def && c.IntVal >= 0 && c.IntVal < 64 {
			return (dOut << uint(c.IntVal)) & full
		}
		return full
	}
	return full
}

// constOther returns the constant operand of a two-operand
// instruction whose other operand is def, or nil.
func constOther(u *ir.Instr, def ir.Value) *ir.Const {
	if u.NumOperands() != 2 {
		return nil
	}
	if u.Operand(0) == def {
		if c, ok := u.Operand(1).(*ir.Const); ok {
			return c
		}
	}
	if u.Operand(1) == def {
		if c, ok := u.Operand(0).(*ir.Const); ok {
			return c
		}
	}
	return nil
}

// lowMask returns a mask of the n lowest bits.
func lowMask(n int) uint64 {
	if n >= 64 {
		return ^uint64(0)
	}
	if n <= 0 {
		return 0
	}
	return 1<<uint(n) - 1
}
