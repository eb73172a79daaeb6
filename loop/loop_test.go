package loop_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vecpal/vecpal/dom"
	"github.com/vecpal/vecpal/ir"
	"github.com/vecpal/vecpal/loop"
)

// nested builds entry -> outer -> inner -> inner/outer latch -> exit,
// with the inner loop fully contained in the outer body.
func nested() (fn *ir.Func, outerHdr, innerHdr *ir.Block) {
	fn = ir.NewFunc("nested")
	entry := fn.NewBlock("entry")
	outerHdr = fn.NewBlock("outer.header")
	innerHdr = fn.NewBlock("inner.header")
	innerLatch := fn.NewBlock("inner.latch")
	outerLatch := fn.NewBlock("outer.latch")
	exit := fn.NewBlock("exit")
	c := fn.NewParam("c", ir.I1)

	entry.Br(outerHdr)
	outerHdr.Br(innerHdr)
	innerHdr.Br(innerLatch)
	innerLatch.CondBr(c, innerHdr, outerLatch)
	outerLatch.CondBr(c, outerHdr, exit)
	exit.Ret()
	return fn, outerHdr, innerHdr
}

func TestNestedLoops(t *testing.T) {
	fn, outerHdr, innerHdr := nested()
	dt := dom.New(fn)
	info := loop.Detect(fn, dt)

	if len(info.All()) != 2 {
		t.Fatalf("found %d loops, want 2", len(info.All()))
	}
	outer := info.ByHeader[outerHdr]
	inner := info.ByHeader[innerHdr]
	if outer == nil || inner == nil {
		t.Fatalf("loops not indexed by header")
	}
	if inner.Parent != outer {
		t.Errorf("inner.Parent = %v, want outer", inner.Parent)
	}
	if len(outer.Children) != 1 || outer.Children[0] != inner {
		t.Errorf("outer.Children = %v, want [inner]", outer.Children)
	}
	if len(info.Loops) != 1 || info.Loops[0] != outer {
		t.Errorf("top-level loops = %v, want [outer]", info.Loops)
	}
	if !outer.Contains(innerHdr) {
		t.Errorf("outer body should contain the inner header")
	}
	if inner.Contains(outerHdr) {
		t.Errorf("inner body must not contain the outer header")
	}
}

func TestLatchPreheaderExits(t *testing.T) {
	fn := ir.NewFunc("simple")
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
	info := loop.Detect(fn, dt)
	l := info.ByHeader[header]
	if l == nil {
		t.Fatalf("loop not found")
	}
	if l.Latch != body {
		t.Errorf("Latch = %v, want body", l.Latch)
	}
	if l.Preheader() != entry {
		t.Errorf("Preheader() = %v, want entry", l.Preheader())
	}
	var exitNames []string
	for _, b := range l.Exits {
		exitNames = append(exitNames, b.Name())
	}
	if diff := cmp.Diff([]string{"header"}, exitNames); diff != "" {
		t.Errorf("Exits mismatch (-want +got):\n%s", diff)
	}
}

func TestInvariance(t *testing.T) {
	fn := ir.NewFunc("inv")
	entry := fn.NewBlock("entry")
	header := fn.NewBlock("header")
	exit := fn.NewBlock("exit")
	x := fn.NewParam("x", ir.I64)
	c := fn.NewParam("c", ir.I1)

	pre := entry.Binary(ir.OpAdd, x, ir.ConstInt(ir.I64, 10))
	entry.Br(header)
	phi := header.Phi(ir.I64, "i")
	next := header.Binary(ir.OpAdd, phi, pre)
	header.CondBr(c, header, exit)
	header.AddIncoming(phi, ir.ConstInt(ir.I64, 0), entry)
	header.AddIncoming(phi, next, header)
	exit.Ret(next)

	dt := dom.New(fn)
	l := loop.Detect(fn, dt).ByHeader[header]
	if l == nil {
		t.Fatalf("loop not found")
	}
	if !l.IsLoopInvariant(pre) || !l.IsLoopInvariant(x) || !l.IsLoopInvariant(ir.ConstInt(ir.I64, 1)) {
		t.Errorf("values defined outside the loop should be invariant")
	}
	if l.IsLoopInvariant(next) || l.IsLoopInvariant(phi) {
		t.Errorf("loop-body instructions must not be invariant")
	}
	phis := l.HeaderPhis()
	if len(phis) != 1 || phis[0] != phi {
		t.Errorf("HeaderPhis() = %v, want [phi]", phis)
	}
}

func TestMultipleBackedges(t *testing.T) {
	fn := ir.NewFunc("multilatch")
	entry := fn.NewBlock("entry")
	header := fn.NewBlock("header")
	a := fn.NewBlock("a")
	b := fn.NewBlock("b")
	exit := fn.NewBlock("exit")
	c := fn.NewParam("c", ir.I1)

	entry.Br(header)
	header.CondBr(c, a, b)
	a.Br(header)
	b.CondBr(c, header, exit)
	exit.Ret()

	dt := dom.New(fn)
	l := loop.Detect(fn, dt).ByHeader[header]
	if l == nil {
		t.Fatalf("loop not found")
	}
	if l.Latch != nil {
		t.Errorf("Latch = %v, want nil for two backedges", l.Latch)
	}
	if !l.Contains(a) || !l.Contains(b) {
		t.Errorf("both latch blocks belong to the body")
	}
}
