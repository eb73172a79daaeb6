package recur

import (
	"math/bits"

	"github.com/vecpal/vecpal/ir"
	"github.com/vecpal/vecpal/loop"
)

// Dominance answers instruction-level dominance queries.
type Dominance interface {
	DominatesInstr(a, b *ir.Instr) bool
}

// DemandedBits reports which result bits of an instruction are
// observed by its transitive users, as a mask. A conservative
// implementation returns the full-width mask.
type DemandedBits interface {
	DemandedBits(i *ir.Instr) uint64
}

// ValueTracking provides the sign facts used to narrow a reduction
// when demanded bits cannot.
type ValueTracking interface {
	// NumSignBits returns the number of known-equal high bits of v,
	// counting the sign bit itself; at least 1.
	NumSignBits(v ir.Value) int
	// KnownNonNegative reports whether v is provably >= 0.
	KnownNonNegative(v ir.Value) bool
}

// Oracles bundles the optional analyses a match can draw on. Any
// field may be nil; the matcher degrades to conservative answers.
type Oracles struct {
	Dom Dominance
	DB  DemandedBits
	VT  ValueTracking
}

// Match checks whether phi is a reduction variable of the given kind
// in l. dflt carries the function-level relaxed-math defaults applied
// to operations without their own flags.
func Match(phi *ir.Instr, kind Kind, l *loop.Loop, dflt ir.FastMathFlags, o Oracles) (*Descriptor, bool) {
	if phi.NumIncoming() != 2 {
		return nil, false
	}
	// Reduction variables live in the loop header.
	if phi.Block() != l.Header {
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

	recType := phi.Type()
	visited := make(map[*ir.Instr]bool)
	casts := make(map[*ir.Instr]bool)
	startInst := phi

	switch {
	case ir.IsFloat(recType):
		if !kind.IsFloatingPoint() {
			return nil, false
		}
	case ir.IsInteger(recType):
		if !kind.IsInteger() {
			return nil, false
		}
		// Narrowing through a mask is only sound for kinds that can be
		// re-evaluated at the narrow width.
		if kind.IsArithmetic() {
			startInst = lookThroughAnd(phi, &recType, visited, casts)
		}
	default:
		// Pointer reductions are not supported.
		return nil, false
	}

	var (
		exit         *ir.Instr
		exactFPMath  *ir.Instr
		foundStart   bool
		foundRedux   bool
		numCmpSelect int
		prev         instDesc
	)
	fmf := ir.FastAll()

	work := []*ir.Instr{startInst}
	visited[startInst] = true

	for len(work) > 0 {
		cur := work[len(work)-1]
		work = work[:len(work)-1]

		// Every value on the cycle must feed something.
		if cur.NumUses() == 0 {
			return nil, false
		}

		isAPhi := cur.IsPhi()
		// A second header merge node means cur carries last
		// iteration's value, not this one's.
		if cur != phi && isAPhi && cur.Block() == phi.Block() {
			return nil, false
		}

		// Non-commutative operations only reduce through their first
		// operand.
		if !cur.Commutative() && !isAPhi &&
			cur.Op() != ir.OpSelect && cur.Op() != ir.OpICmp && cur.Op() != ir.OpFCmp {
			op0, ok := cur.Operand(0).(*ir.Instr)
			if !ok || !visited[op0] {
				return nil, false
			}
		}

		if cur != startInst {
			prev = classifyInstr(cur, kind, prev, dflt)
			if !prev.matched {
				return nil, false
			}
			if exactFPMath == nil && prev.exactFPMath != nil {
				exactFPMath = prev.exactFPMath
			}
			if prev.pattern != nil && isFPOp(prev.pattern) && !isAPhi {
				curFMF := prev.pattern.FMF()
				if prev.pattern.Op() == ir.OpSelect {
					// Flags on the compare of a min/max idiom count too.
					if cond, ok := prev.pattern.Operand(0).(*ir.Instr); ok && cond.Op() == ir.OpFCmp {
						curFMF = curFMF.Union(cond.FMF())
					}
				}
				fmf = fmf.Intersect(curFMF)
			}
			if prev.kind != None {
				kind = prev.kind
			}
		}

		isASelect := cur.Op() == ir.OpSelect

		// A conditional reduction select may be reached from both its
		// compare and its arm, but no more than that.
		if isASelect && (kind == FAdd || kind == FMul) && usesIn(cur, visited) > 2 {
			return nil, false
		}
		// Everything else consumes the running value exactly once.
		if !isAPhi && !isASelect && !kind.IsMinMax() && usesIn(cur, visited) > 1 {
			return nil, false
		}
		// Intermediate merge nodes must merge only reduction values.
		if isAPhi && cur != phi && !allOperandsIn(cur, visited) {
			return nil, false
		}

		if kind.IsIntMinMax() && (cur.Op() == ir.OpICmp || isASelect) {
			numCmpSelect++
		}
		if kind.IsFPMinMax() && (cur.Op() == ir.OpFCmp || isASelect) {
			numCmpSelect++
		}

		if !isAPhi && cur != startInst {
			foundRedux = true
		}

		var phis, nonPhis []*ir.Instr
		for _, u := range cur.Users() {
			if !l.Contains(u.Block()) {
				// cur escapes the loop.
				if exit == cur {
					continue
				}
				// Only one value may escape, and never the merge node
				// itself: that would expose last iteration's value.
				if exit != nil || cur == phi {
					return nil, false
				}
				// The escaping value must be the one fed back to the
				// merge node, or earlier updates would be lost.
				if !phi.HasOperand(cur) {
					return nil, false
				}
				exit = cur
				continue
			}

			if !visited[u] {
				visited[u] = true
				if u.IsPhi() {
					phis = append(phis, u)
				} else {
					nonPhis = append(nonPhis, u)
				}
			} else if !u.IsPhi() {
				// Revisits are only legal through the cmp/select of a
				// min/max or conditional idiom.
				if u.Op() != ir.OpICmp && u.Op() != ir.OpFCmp && u.Op() != ir.OpSelect {
					return nil, false
				}
				if !conditionalPattern(kind, u).matched && !minMaxPattern(u, instDesc{}).matched {
					return nil, false
				}
			}

			if u == phi {
				foundStart = true
			}
		}
		// Merge nodes go deeper on the stack so their inputs are all
		// seen before they are processed.
		work = append(work, phis...)
		work = append(work, nonPhis...)
	}

	// A min/max reduction is exactly one compare plus one select.
	if kind.IsMinMax() && numCmpSelect != 2 {
		return nil, false
	}
	if !foundStart || !foundRedux || exit == nil {
		return nil, false
	}

	ordered := kind == FAdd && exit.Op() == ir.OpFAdd &&
		exactFPMath != nil && exactFPMath == exit && exit.HasOperand(phi)

	signed := false
	if startInst != phi {
		// We looked through a mask; the narrowing is only sound if an
		// independent recomputation agrees with the masked width.
		computed, isSigned := computeRecurrenceType(exit, o)
		if !ir.SameType(computed, recType) {
			return nil, false
		}
		signed = isSigned
		collectCastsToIgnore(l, exit, recType, casts)
	}

	return &Descriptor{
		start:       start,
		exit:        exit,
		kind:        kind,
		fmf:         fmf,
		exactFPMath: exactFPMath,
		recType:     recType,
		signed:      signed,
		ordered:     ordered,
		casts:       casts,
	}, true
}

// lookThroughAnd steps over a mask of the merge node with a constant
// 2^n-1, narrowing the candidate type to n bits. The mask instruction
// becomes the effective chain start and is recorded as redundant.
func lookThroughAnd(phi *ir.Instr, recType *ir.Type, visited, casts map[*ir.Instr]bool) *ir.Instr {
	if !phi.HasOneUse() {
		return phi
	}
	j := phi.Users()[0]
	if j.Op() != ir.OpAnd {
		return phi
	}
	var mask *ir.Const
	if c, ok := j.Operand(1).(*ir.Const); ok {
		mask = c
	} else if c, ok := j.Operand(0).(*ir.Const); ok {
		mask = c
	}
	if mask == nil {
		return phi
	}
	n := mask.MaskBits()
	if n <= 0 {
		return phi
	}
	*recType = ir.IntN(n)
	visited[phi] = true
	casts[j] = true
	return j
}

// usesIn counts how many operands of i are in set. Duplicate operands
// count separately.
func usesIn(i *ir.Instr, set map[*ir.Instr]bool) int {
	n := 0
	for _, op := range i.Operands() {
		if d, ok := op.(*ir.Instr); ok && set[d] {
			n++
		}
	}
	return n
}

// allOperandsIn reports whether every operand of i is an instruction
// in set.
func allOperandsIn(i *ir.Instr, set map[*ir.Instr]bool) bool {
	for _, op := range i.Operands() {
		d, ok := op.(*ir.Instr)
		if !ok || !set[d] {
			return false
		}
	}
	return true
}

// computeRecurrenceType recomputes the minimal width the reduction
// result needs: the live bits of the exit value if demanded bits can
// bound them, otherwise the width minus the known sign bits, plus one
// if the sign is not known. The result is rounded up to a power of
// two.
func computeRecurrenceType(exit *ir.Instr, o Oracles) (ir.Type, bool) {
	width := ir.Bits(exit.Type())
	maxBits := width
	signed := false
	if o.DB != nil {
		maxBits = bits.Len64(o.DB.DemandedBits(exit))
	}
	if maxBits == width && o.VT != nil {
		maxBits = width - o.VT.NumSignBits(exit)
		if !o.VT.KnownNonNegative(exit) {
			signed = true
			maxBits++
		}
	}
	if maxBits < 1 {
		maxBits = 1
	}
	if bits.OnesCount(uint(maxBits)) != 1 {
		maxBits = 1 << uint(bits.Len(uint(maxBits)))
	}
	return ir.IntN(maxBits), signed
}

// collectCastsToIgnore walks backward from exit and records every
// in-loop cast whose source type is the narrow recurrence type; these
// disappear when the reduction is evaluated at that type.
func collectCastsToIgnore(l *loop.Loop, exit *ir.Instr, recType ir.Type, casts map[*ir.Instr]bool) {
	work := []*ir.Instr{exit}
	seen := make(map[*ir.Instr]bool)
	for len(work) > 0 {
		val := work[len(work)-1]
		work = work[:len(work)-1]
		seen[val] = true
		if val.IsCast() && ir.SameType(val.SrcType(), recType) {
			casts[val] = true
			continue
		}
		for _, op := range val.Operands() {
			if i, ok := op.(*ir.Instr); ok && l.ContainsInstr(i) && !seen[i] {
				work = append(work, i)
			}
		}
	}
}
