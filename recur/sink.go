package recur

import (
	"sort"

	"github.com/vecpal/vecpal/ir"
	"github.com/vecpal/vecpal/loop"
)

// SinkList accumulates the reordering computed for first-order
// recurrences: each entry must be placed immediately after its
// recorded predecessor for the one-iteration lag to stay legal. A
// single list is shared across all recurrences of a loop so repeated
// sinks of the same instruction chain correctly.
type SinkList struct {
	after map[*ir.Instr]*ir.Instr
	order []*ir.Instr
}

// NewSinkList returns an empty sink list.
func NewSinkList() *SinkList {
	return &SinkList{after: make(map[*ir.Instr]*ir.Instr)}
}

// Contains reports whether i is scheduled for sinking.
func (s *SinkList) Contains(i *ir.Instr) bool {
	_, ok := s.after[i]
	return ok
}

// After returns the instruction i must be placed after, or nil.
func (s *SinkList) After(i *ir.Instr) *ir.Instr { return s.after[i] }

// PlaceAfter schedules i to be moved directly after prev. An
// instruction has exactly one placement; re-placing it would corrupt
// the ordering committed for an earlier recurrence.
func (s *SinkList) PlaceAfter(i, prev *ir.Instr) {
	if _, ok := s.after[i]; ok {
		panic("recur: " + i.Name() + " is already placed")
	}
	s.order = append(s.order, i)
	s.after[i] = prev
}

// Ordered returns the scheduled instructions in commit order.
func (s *SinkList) Ordered() []*ir.Instr { return s.order }

// Len returns the number of scheduled instructions.
func (s *SinkList) Len() int { return len(s.order) }

// FirstOrderRecurrence reports whether phi is a loop-carried value
// consumed one iteration later, and on success commits the
// instruction reordering that lets the value be advanced: every
// in-header consumer not already below the latch-supplied value is
// scheduled to sink after it, in program order. A failed attempt
// leaves sink untouched.
func FirstOrderRecurrence(phi *ir.Instr, l *loop.Loop, sink *SinkList, dt Dominance) bool {
	if phi.Block() != l.Header || phi.NumIncoming() != 2 {
		return false
	}
	ph := l.Preheader()
	latch := l.Latch
	if ph == nil || latch == nil {
		return false
	}
	if !phi.HasIncomingBlock(ph) || !phi.HasIncomingBlock(latch) {
		return false
	}

	previous, ok := phi.EdgeForBlock(latch).(*ir.Instr)
	if !ok || !l.ContainsInstr(previous) || previous.IsPhi() {
		return false
	}
	// An earlier commit may move previous; dominance would no longer
	// tell us where it ends up.
	if sink.Contains(previous) {
		return false
	}

	// Tentatively sink every user that previous does not already
	// dominate. Nothing is committed until the whole set is legal.
	toSink := make(map[*ir.Instr]bool)
	tryToSink := func(cand *ir.Instr) bool {
		if toSink[cand] {
			return true
		}
		if cand == previous {
			return false // cyclic dependence
		}
		// An earlier recurrence committed a placement for cand; moving
		// it again would break that one-iteration lag.
		if sink.Contains(cand) {
			return false
		}
		if dt.DominatesInstr(previous, cand) {
			return true // already placed correctly
		}
		if cand.Block() != phi.Block() ||
			cand.MayHaveSideEffects() || cand.MayReadMemory() || cand.IsTerminator() {
			return false
		}
		if cand.IsPhi() {
			// Another header merge node; it has no ordering
			// constraint against previous.
			return true
		}
		toSink[cand] = true
		return true
	}

	queue := []*ir.Instr{phi}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, u := range cur.Users() {
			wasSunk := toSink[u]
			if !tryToSink(u) {
				return false
			}
			if toSink[u] && !wasSunk {
				queue = append(queue, u)
			}
		}
	}

	ordered := make([]*ir.Instr, 0, len(toSink))
	for i := range toSink {
		ordered = append(ordered, i)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].ComesBefore(ordered[j])
	})
	for _, i := range ordered {
		sink.PlaceAfter(i, previous)
		previous = i
	}
	return true
}
