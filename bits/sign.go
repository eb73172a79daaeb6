package bits

import (
	mbits "math/bits"

	"github.com/vecpal/vecpal/ir"
)

// NumSignBits returns the number of high bits of v known to equal its
// sign bit, counting the sign bit itself. The result is at least 1.
func (a *Analysis) NumSignBits(v ir.Value) int {
	return a.signBits(v, make(map[*ir.Instr]bool))
}

func (a *Analysis) signBits(v ir.Value, busy map[*ir.Instr]bool) int {
	w := ir.Bits(v.Type())
	if !ir.IsInteger(v.Type()) || w <= 0 {
		return 1
	}
	switch v := v.(type) {
	case *ir.Const:
		return constSignBits(v.IntVal, w)
	case *ir.Instr:
		if busy[v] {
			return w // optimistic on cycles; callers take the min
		}
		busy[v] = true
		n := a.instrSignBits(v, w, busy)
		delete(busy, v)
		if n < 1 {
			n = 1
		}
		if n > w {
			n = w
		}
		return n
	}
	return 1
}

func (a *Analysis) instrSignBits(i *ir.Instr, w int, busy map[*ir.Instr]bool) int {
	switch i.Op() {
	case ir.OpSExt:
		src := ir.Bits(i.SrcType())
		return a.signBits(i.Operand(0), busy) + (w - src)
	case ir.OpZExt:
		src := ir.Bits(i.SrcType())
		// High bits are zero, so they all match a zero sign bit.
		return w - src
	case ir.OpTrunc:
		src := ir.Bits(i.Operand(0).Type())
		return max(1, a.signBits(i.Operand(0), busy)-(src-w))
	case ir.OpAShr:
		if c, ok := i.Operand(1).(*ir.Const); ok && c.IntVal > 0 {
			return min(w, a.signBits(i.Operand(0), busy)+int(c.IntVal))
		}
		return a.signBits(i.Operand(0), busy)
	case ir.OpShl:
		if c, ok := i.Operand(1).(*ir.Const); ok && c.IntVal >= 0 {
			return max(1, a.signBits(i.Operand(0), busy)-int(c.IntVal))
		}
		return 1
	case ir.OpAnd, ir.OpOr, ir.OpXor:
		return min(a.signBits(i.Operand(0), busy), a.signBits(i.Operand(1), busy))
	case ir.OpAdd, ir.OpSub:
		// One bit may be lost to carry.
		return max(1, min(a.signBits(i.Operand(0), busy), a.signBits(i.Operand(1), busy))-1)
	case ir.OpSelect:
		return min(a.signBits(i.Operand(1), busy), a.signBits(i.Operand(2), busy))
	case ir.OpPhi:
		n := w
		for k := 0; k < i.NumOperands(); k++ {
			n = min(n, a.signBits(i.Operand(k), busy))
		}
		return n
	}
	return 1
}

// KnownNonNegative reports whether v is provably >= 0 when
// interpreted as a signed value of its type.
func (a *Analysis) KnownNonNegative(v ir.Value) bool {
	return a.nonNegative(v, make(map[*ir.Instr]bool))
}

func (a *Analysis) nonNegative(v ir.Value, busy map[*ir.Instr]bool) bool {
	w := ir.Bits(v.Type())
	if !ir.IsInteger(v.Type()) || w <= 0 {
		return false
	}
	sign := uint64(1) << uint(w-1)
	switch v := v.(type) {
	case *ir.Const:
		return uint64(v.IntVal)&sign == 0
	case *ir.Instr:
		if busy[v] {
			return true // optimistic on cycles; conjunction over edges
		}
		busy[v] = true
		defer delete(busy, v)
		switch v.Op() {
		case ir.OpZExt:
			return ir.Bits(v.SrcType()) < w
		case ir.OpLShr:
			if c, ok := v.Operand(1).(*ir.Const); ok {
				return c.IntVal > 0
			}
		case ir.OpAnd:
			if c, ok := v.Operand(0).(*ir.Const); ok && uint64(c.IntVal)&sign == 0 {
				return true
			}
			if c, ok := v.Operand(1).(*ir.Const); ok && uint64(c.IntVal)&sign == 0 {
				return true
			}
			return a.nonNegative(v.Operand(0), busy) || a.nonNegative(v.Operand(1), busy)
		case ir.OpSelect:
			return a.nonNegative(v.Operand(1), busy) && a.nonNegative(v.Operand(2), busy)
		case ir.OpPhi:
			for k := 0; k < v.NumOperands(); k++ {
				if !a.nonNegative(v.Operand(k), busy) {
					return false
				}
			}
			return true
		}
	}
	return false
}

func constSignBits(c int64, w int) int {
	x := c
	if w < 64 {
		// Interpret c within w bits.
		x = c << uint(64-w) >> uint(64-w)
	}
	if x < 0 {
		x = ^x
	}
	n := 64 - mbits.Len64(uint64(x)) - (64 - w)
	if n < 1 {
		return 1
	}
	return n
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
