package recur

import (
	"github.com/vecpal/vecpal/ir"
)

// classifyInstr decides whether cur can be part of a reduction of the
// running kind, returning the advanced match state. A merge node
// propagates the previous state unchanged; a floating-point operation
// without the reassociation relaxation records itself as the
// exact-math instruction.
func classifyInstr(cur *ir.Instr, kind Kind, prev instDesc, dflt ir.FastMathFlags) instDesc {
	switch cur.Op() {
	case ir.OpPhi:
		return instDesc{matched: true, pattern: cur, kind: prev.kind, exactFPMath: prev.exactFPMath}
	case ir.OpAdd, ir.OpSub:
		return instDesc{matched: kind == Add, pattern: cur}
	case ir.OpMul:
		return instDesc{matched: kind == Mul, pattern: cur}
	case ir.OpAnd:
		return instDesc{matched: kind == And, pattern: cur}
	case ir.OpOr:
		return instDesc{matched: kind == Or, pattern: cur}
	case ir.OpXor:
		return instDesc{matched: kind == Xor, pattern: cur}
	case ir.OpFMul, ir.OpFDiv:
		return instDesc{matched: kind == FMul, pattern: cur, exactFPMath: exactUnlessReassoc(cur)}
	case ir.OpFAdd, ir.OpFSub:
		return instDesc{matched: kind == FAdd, pattern: cur, exactFPMath: exactUnlessReassoc(cur)}
	case ir.OpSelect:
		if kind == FAdd || kind == FMul {
			return conditionalPattern(kind, cur)
		}
		fallthrough
	case ir.OpICmp, ir.OpFCmp:
		if kind.IsIntMinMax() ||
			(dflt.NoNaNs() && dflt.NoSignedZeros() && kind.IsFPMinMax()) {
			return minMaxPattern(cur, prev)
		}
		return instDesc{pattern: cur}
	}
	return instDesc{pattern: cur}
}

func exactUnlessReassoc(i *ir.Instr) *ir.Instr {
	if i.FMF().AllowReassoc() {
		return nil
	}
	return i
}

// minMaxPattern recognises the select(cmp(a,b), a, b) idiom and its
// mirror. Matching a compare advances to its paired select so the two
// are handled as a single pattern instruction.
func minMaxPattern(i *ir.Instr, prev instDesc) instDesc {
	if i.Op() == ir.OpICmp || i.Op() == ir.OpFCmp {
		if i.HasOneUse() {
			if sel := i.Users()[0]; sel.Op() == ir.OpSelect {
				return instDesc{matched: true, pattern: sel, kind: prev.kind}
			}
		}
		return instDesc{pattern: i}
	}
	if i.Op() != ir.OpSelect {
		return instDesc{pattern: i}
	}
	cmp, ok := i.Operand(0).(*ir.Instr)
	if !ok || (cmp.Op() != ir.OpICmp && cmp.Op() != ir.OpFCmp) || !cmp.HasOneUse() {
		return instDesc{pattern: i}
	}

	x, y := cmp.Operand(0), cmp.Operand(1)
	t, f := i.Operand(1), i.Operand(2)
	pred := cmp.Pred()
	switch {
	case t == x && f == y:
		// select(cmp(x,y), x, y): predicate applies directly.
	case t == y && f == x:
		pred = pred.Swapped()
	default:
		return instDesc{pattern: i}
	}

	if k := minMaxKind(pred); k != None {
		return instDesc{matched: true, pattern: i, kind: k}
	}
	return instDesc{pattern: i}
}

// minMaxKind maps an effective "select the first operand when"
// predicate to the reduction kind it implements. Ordered and
// unordered float predicates both map to the float kinds.
func minMaxKind(p ir.Pred) Kind {
	switch p {
	case ir.PredSGT, ir.PredSGE:
		return SMax
	case ir.PredSLT, ir.PredSLE:
		return SMin
	case ir.PredUGT, ir.PredUGE:
		return UMax
	case ir.PredULT, ir.PredULE:
		return UMin
	case ir.PredOGT, ir.PredOGE, ir.PredFUGT, ir.PredFUGE:
		return FMax
	case ir.PredOLT, ir.PredOLE, ir.PredFULT, ir.PredFULE:
		return FMin
	}
	return None
}

// conditionalPattern recognises a conditionally-executed float
// reduction step:
//
//	cmp  = fcmp pred a, b
//	add  = fadd x, sum      ; fully relaxed
//	sum2 = select cmp, add, sum
//
// The select counts as the pattern instruction; exactly one of its
// value operands must be the merge node and the other a fast binary
// op of the kind's opcode.
func conditionalPattern(kind Kind, i *ir.Instr) instDesc {
	if i.Op() != ir.OpSelect {
		return instDesc{pattern: i}
	}
	cmp, ok := i.Operand(0).(*ir.Instr)
	if !ok || (cmp.Op() != ir.OpICmp && cmp.Op() != ir.OpFCmp) || !cmp.HasOneUse() {
		return instDesc{pattern: i}
	}

	t, f := i.Operand(1), i.Operand(2)
	tPhi := isPhiValue(t)
	fPhi := isPhiValue(f)
	if tPhi == fPhi {
		return instDesc{pattern: i}
	}
	armVal := t
	if tPhi {
		armVal = f
	}
	arm, ok := armVal.(*ir.Instr)
	if !ok || !arm.Op().IsBinary() || !isFastFMF(arm.FMF()) {
		return instDesc{pattern: i}
	}

	switch arm.Op() {
	case ir.OpFAdd, ir.OpFSub:
		return instDesc{matched: kind == FAdd, pattern: i}
	case ir.OpFMul:
		return instDesc{matched: kind == FMul, pattern: i}
	}
	return instDesc{pattern: i}
}

func isPhiValue(v ir.Value) bool {
	i, ok := v.(*ir.Instr)
	return ok && i.IsPhi()
}

func isFastFMF(f ir.FastMathFlags) bool {
	return f.AllowReassoc() && f.NoNaNs() && f.NoInfs() && f.NoSignedZeros()
}

func isFPOp(i *ir.Instr) bool {
	switch i.Op() {
	case ir.OpFAdd, ir.OpFSub, ir.OpFMul, ir.OpFDiv, ir.OpFCmp:
		return true
	case ir.OpSelect, ir.OpPhi:
		return ir.IsFloat(i.Type())
	}
	return false
}
