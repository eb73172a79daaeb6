package dom_test

import (
	"testing"

	"github.com/vecpal/vecpal/dom"
	"github.com/vecpal/vecpal/ir"
)

// diamond builds entry -> {left, right} -> merge.
func diamond() (*ir.Func, []*ir.Block) {
	fn := ir.NewFunc("diamond")
	entry := fn.NewBlock("entry")
	left := fn.NewBlock("left")
	right := fn.NewBlock("right")
	merge := fn.NewBlock("merge")
	c := fn.NewParam("c", ir.I1)

	entry.CondBr(c, left, right)
	left.Br(merge)
	right.Br(merge)
	merge.Ret()
	return fn, []*ir.Block{entry, left, right, merge}
}

func TestDiamond(t *testing.T) {
	fn, bs := diamond()
	entry, left, right, merge := bs[0], bs[1], bs[2], bs[3]
	dt := dom.New(fn)

	if got := dt.Idom(merge); got != entry {
		t.Errorf("Idom(merge) = %v, want entry", got)
	}
	if got := dt.Idom(entry); got != nil {
		t.Errorf("Idom(entry) = %v, want nil", got)
	}
	if !dt.Dominates(entry, merge) {
		t.Errorf("entry should dominate merge")
	}
	if dt.Dominates(left, merge) || dt.Dominates(right, merge) {
		t.Errorf("neither branch arm dominates merge")
	}
	if !dt.Dominates(left, left) {
		t.Errorf("dominance should be reflexive")
	}
}

func TestLoopBackedge(t *testing.T) {
	fn := ir.NewFunc("loop")
	entry := fn.NewBlock("entry")
	header := fn.NewBlock("header")
	body := fn.NewBlock("body")
	exit := fn.NewBlock("exit")
	c := fn.NewParam("c", ir.I1)

	entry.Br(header)
	header.CondBr(c, body, exit)
	body.Br(header)
	exit.Ret()

	dt := dom.New(fn)
	if !dt.Dominates(header, body) {
		t.Errorf("header should dominate its latch")
	}
	if dt.Dominates(body, header) {
		t.Errorf("latch must not dominate header")
	}
	if got := dt.Idom(exit); got != header {
		t.Errorf("Idom(exit) = %v, want header", got)
	}
}

func TestDominatesInstr(t *testing.T) {
	fn := ir.NewFunc("instr")
	entry := fn.NewBlock("entry")
	next := fn.NewBlock("next")
	x := fn.NewParam("x", ir.I64)

	a := entry.Binary(ir.OpAdd, x, ir.ConstInt(ir.I64, 1))
	b := entry.Binary(ir.OpMul, a, a)
	entry.Br(next)
	c := next.Binary(ir.OpSub, b, x)
	next.Ret(c)

	dt := dom.New(fn)
	if !dt.DominatesInstr(a, b) {
		t.Errorf("a should dominate b in the same block")
	}
	if dt.DominatesInstr(b, a) {
		t.Errorf("b must not dominate a")
	}
	if !dt.DominatesInstr(a, c) {
		t.Errorf("a should dominate c across blocks")
	}
	if !dt.DominatesInstr(a, a) {
		t.Errorf("instruction dominance should be reflexive")
	}
}

func TestUnreachableBlock(t *testing.T) {
	fn := ir.NewFunc("unreachable")
	entry := fn.NewBlock("entry")
	dead := fn.NewBlock("dead")
	entry.Ret()
	dead.Ret()

	dt := dom.New(fn)
	if dt.Dominates(entry, dead) {
		t.Errorf("entry must not dominate an unreachable block")
	}
}
