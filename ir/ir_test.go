package ir_test

import (
	"testing"

	"github.com/vecpal/vecpal/ir"
)

func TestUseTracking(t *testing.T) {
	fn := ir.NewFunc("f")
	b := fn.NewBlock("entry")
	x := fn.NewParam("x", ir.I64)
	a := b.Binary(ir.OpAdd, x, ir.ConstInt(ir.I64, 1))
	m := b.Binary(ir.OpMul, a, a)
	b.Ret(m)

	if got := a.NumUses(); got != 2 {
		t.Errorf("a.NumUses() = %d, want 2 (one per operand slot)", got)
	}
	if !m.HasOneUse() {
		t.Errorf("m.HasOneUse() = false, want true")
	}
	if !a.ComesBefore(m) || m.ComesBefore(a) {
		t.Errorf("want a before m in program order")
	}
}

func TestPhiEdges(t *testing.T) {
	fn := ir.NewFunc("f")
	entry := fn.NewBlock("entry")
	header := fn.NewBlock("header")
	exit := fn.NewBlock("exit")
	c := fn.NewParam("c", ir.I1)

	entry.Br(header)
	phi := header.Phi(ir.I64, "i")
	next := header.Binary(ir.OpAdd, phi, ir.ConstInt(ir.I64, 1))
	header.CondBr(c, header, exit)
	header.AddIncoming(phi, ir.ConstInt(ir.I64, 0), entry)
	header.AddIncoming(phi, next, header)
	exit.Ret(phi)

	if phi.NumIncoming() != 2 {
		t.Fatalf("NumIncoming = %d, want 2", phi.NumIncoming())
	}
	if got := phi.EdgeForBlock(header); got != ir.Value(next) {
		t.Errorf("EdgeForBlock(header) = %v, want %v", got, next)
	}
	if got := phi.EdgeForBlock(exit); got != nil {
		t.Errorf("EdgeForBlock(exit) = %v, want nil", got)
	}
	if !phi.HasIncomingBlock(entry) {
		t.Errorf("HasIncomingBlock(entry) = false, want true")
	}
	// phi is used by next and by the return.
	if got := phi.NumUses(); got != 2 {
		t.Errorf("phi.NumUses() = %d, want 2", got)
	}
}

func TestConstMaskBits(t *testing.T) {
	tests := []struct {
		val  int64
		want int
	}{
		{0, 0},
		{1, 1},
		{3, 2},
		{6, 0},
		{255, 8},
		{256, 0},
		{65535, 16},
		{-1, 0},
	}
	for _, tt := range tests {
		c := ir.ConstInt(ir.I64, tt.val)
		if got := c.MaskBits(); got != tt.want {
			t.Errorf("MaskBits(%d) = %d, want %d", tt.val, got, tt.want)
		}
	}
}

func TestPredSwapped(t *testing.T) {
	tests := []struct {
		p, want ir.Pred
	}{
		{ir.PredSGT, ir.PredSLT},
		{ir.PredSLE, ir.PredSGE},
		{ir.PredULT, ir.PredUGT},
		{ir.PredOGE, ir.PredOLE},
		{ir.PredFULT, ir.PredFUGT},
		{ir.PredEQ, ir.PredEQ},
	}
	for _, tt := range tests {
		if got := tt.p.Swapped(); got != tt.want {
			t.Errorf("%s.Swapped() = %s, want %s", tt.p, got, tt.want)
		}
	}
}

func TestFastMathFlags(t *testing.T) {
	all := ir.FastAll()
	none := ir.FastMathFlags(0)
	if got := all.Intersect(none); got != none {
		t.Errorf("FastAll ∩ none = %s, want none", got)
	}
	f := ir.FMReassoc | ir.FMNoNaNs
	if got := all.Intersect(f); got != f {
		t.Errorf("FastAll ∩ %s = %s, want %s", f, got, f)
	}
	if !f.AllowReassoc() || f.NoSignedZeros() {
		t.Errorf("flag accessors disagree with %s", f)
	}
}

func TestTypeHelpers(t *testing.T) {
	if ir.IntN(8) != ir.I8 {
		t.Errorf("IntN(8) did not reuse the singleton")
	}
	if !ir.SameType(ir.IntN(24), ir.IntN(24)) {
		t.Errorf("SameType(i24, i24) = false")
	}
	if ir.SameType(ir.I32, ir.F32) {
		t.Errorf("SameType(i32, f32) = true")
	}
	if got := ir.Ptr(ir.I32).Elem.Size(); got != 4 {
		t.Errorf("Ptr(i32).Elem.Size() = %d, want 4", got)
	}
}
