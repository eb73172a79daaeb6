// Package dom computes dominator trees over ir function graphs.
//
// The tree answers the dominance queries the loop analyses need:
// block-level dominance for loop detection, and instruction-level
// dominance for the first-order-recurrence sinker.
package dom

import (
	"github.com/vecpal/vecpal/ir"
)

// Tree is the dominator tree of one function. It is immutable after
// construction and safe for concurrent queries.
type Tree struct {
	fn    *ir.Func
	idom  map[*ir.Block]*ir.Block
	ponum map[*ir.Block]int // postorder numbering used by intersect
}

// New computes the dominator tree of fn using the iterative
// reverse-postorder algorithm.
func New(fn *ir.Func) *Tree {
	t := &Tree{
		fn:    fn,
		idom:  make(map[*ir.Block]*ir.Block),
		ponum: make(map[*ir.Block]int),
	}
	entry := fn.Entry()
	if entry == nil {
		return t
	}

	post := t.postorder(entry)
	for n, b := range post {
		t.ponum[b] = n
	}
	// Reverse postorder, skipping the entry.
	rpo := make([]*ir.Block, 0, len(post))
	for n := len(post) - 1; n >= 0; n-- {
		rpo = append(rpo, post[n])
	}

	t.idom[entry] = entry
	for changed := true; changed; {
		changed = false
		for _, b := range rpo {
			if b == entry {
				continue
			}
			var newIdom *ir.Block
			for _, p := range b.Preds {
				if _, ok := t.idom[p]; !ok {
					continue // not yet processed or unreachable
				}
				if newIdom == nil {
					newIdom = p
				} else {
					newIdom = t.intersect(p, newIdom)
				}
			}
			if newIdom == nil {
				continue
			}
			if t.idom[b] != newIdom {
				t.idom[b] = newIdom
				changed = true
			}
		}
	}
	return t
}

// postorder returns the blocks reachable from entry in postorder,
// using an explicit stack to bound recursion depth.
func (t *Tree) postorder(entry *ir.Block) []*ir.Block {
	type frame struct {
		b    *ir.Block
		next int
	}
	var order []*ir.Block
	seen := map[*ir.Block]bool{entry: true}
	stack := []*frame{{b: entry}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		if f.next < len(f.b.Succs) {
			s := f.b.Succs[f.next]
			f.next++
			if !seen[s] {
				seen[s] = true
				stack = append(stack, &frame{b: s})
			}
			continue
		}
		order = append(order, f.b)
		stack = stack[:len(stack)-1]
	}
	return order
}

func (t *Tree) intersect(a, b *ir.Block) *ir.Block {
	for a != b {
		for t.ponum[a] < t.ponum[b] {
			a = t.idom[a]
		}
		for t.ponum[b] < t.ponum[a] {
			b = t.idom[b]
		}
	}
	return a
}

// Idom returns the immediate dominator of b, or nil for the entry
// block and unreachable blocks.
func (t *Tree) Idom(b *ir.Block) *ir.Block {
	d := t.idom[b]
	if d == b {
		return nil
	}
	return d
}

// Dominates reports whether a dominates b (reflexively).
func (t *Tree) Dominates(a, b *ir.Block) bool {
	if a == b {
		return true
	}
	cur, ok := t.idom[b]
	if !ok {
		return false // unreachable block
	}
	for {
		if cur == a {
			return true
		}
		next := t.idom[cur]
		if next == cur {
			return false // reached the entry
		}
		cur = next
	}
}

// DominatesInstr reports whether instruction a dominates instruction
// b: within one block by program order, otherwise by block dominance.
func (t *Tree) DominatesInstr(a, b *ir.Instr) bool {
	if a == b {
		return true
	}
	if a.Block() == b.Block() {
		return a.ComesBefore(b)
	}
	return t.Dominates(a.Block(), b.Block())
}
