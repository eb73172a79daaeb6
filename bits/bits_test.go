package bits_test

import (
	"testing"

	"github.com/vecpal/vecpal/bits"
	"github.com/vecpal/vecpal/ir"
)

func TestDemandedThroughTrunc(t *testing.T) {
	fn := ir.NewFunc("f")
	entry := fn.NewBlock("entry")
	x := fn.NewParam("x", ir.I32)
	a := entry.Binary(ir.OpAdd, x, ir.ConstInt(ir.I32, 1))
	tr := entry.Cast(ir.OpTrunc, a, ir.I8)
	entry.Ret(tr)

	ba := bits.NewAnalysis(fn)
	if got := ba.DemandedBits(a); got != 0xFF {
		t.Errorf("DemandedBits(a) = %#x, want 0xFF", got)
	}
	if got := ba.DemandedBits(tr); got != 0xFF {
		t.Errorf("DemandedBits(tr) = %#x, want 0xFF", got)
	}
}

// The canonical narrowed accumulation: the update cycles through the
// merge node under an 8-bit mask and escapes through a trunc. The
// cyclic path contributes nothing, so only the narrow escape counts.
func TestDemandedCyclicNarrowing(t *testing.T) {
	fn := ir.NewFunc("f")
	entry := fn.NewBlock("entry")
	header := fn.NewBlock("header")
	exit := fn.NewBlock("exit")
	x := fn.NewParam("x", ir.I32)
	c := fn.NewParam("c", ir.I1)

	entry.Br(header)
	phi := header.Phi(ir.I32, "sum")
	next := header.Binary(ir.OpAdd, phi, x)
	masked := header.Binary(ir.OpAnd, next, ir.ConstInt(ir.I32, 255))
	header.CondBr(c, header, exit)
	header.AddIncoming(phi, ir.ConstInt(ir.I32, 0), entry)
	header.AddIncoming(phi, masked, header)
	tr := exit.Cast(ir.OpTrunc, masked, ir.I8)
	exit.Ret(tr)

	ba := bits.NewAnalysis(fn)
	if got := ba.DemandedBits(next); got != 0xFF {
		t.Errorf("DemandedBits(next) = %#x, want 0xFF", got)
	}
	if got := ba.DemandedBits(masked); got != 0xFF {
		t.Errorf("DemandedBits(masked) = %#x, want 0xFF", got)
	}
	// Re-running on an unchanged graph returns the same answer.
	if got := ba.DemandedBits(next); got != 0xFF {
		t.Errorf("second query = %#x, want 0xFF", got)
	}
}

func TestDemandedFullEscape(t *testing.T) {
	fn := ir.NewFunc("f")
	entry := fn.NewBlock("entry")
	x := fn.NewParam("x", ir.I32)
	a := entry.Binary(ir.OpAdd, x, ir.ConstInt(ir.I32, 1))
	entry.Ret(a)

	ba := bits.NewAnalysis(fn)
	if got := ba.DemandedBits(a); got != 0xFFFFFFFF {
		t.Errorf("DemandedBits(a) = %#x, want all 32 bits", got)
	}
}

func TestNumSignBits(t *testing.T) {
	fn := ir.NewFunc("f")
	entry := fn.NewBlock("entry")
	x8 := fn.NewParam("x8", ir.I8)
	x32 := fn.NewParam("x32", ir.I32)

	se := entry.Cast(ir.OpSExt, x8, ir.I32)
	ze := entry.Cast(ir.OpZExt, x8, ir.I32)
	shl := entry.Binary(ir.OpShl, x32, ir.ConstInt(ir.I32, 24))
	ashr := entry.Binary(ir.OpAShr, shl, ir.ConstInt(ir.I32, 24))
	entry.Ret(ashr)

	ba := bits.NewAnalysis(fn)
	if got := ba.NumSignBits(se); got != 25 {
		t.Errorf("NumSignBits(sext i8) = %d, want 25", got)
	}
	if got := ba.NumSignBits(ze); got != 24 {
		t.Errorf("NumSignBits(zext i8) = %d, want 24", got)
	}
	// shl 24 / ashr 24 regenerates 24 copies of bit 7.
	if got := ba.NumSignBits(ashr); got != 25 {
		t.Errorf("NumSignBits(shl/ashr idiom) = %d, want 25", got)
	}
	if got := ba.NumSignBits(x32); got != 1 {
		t.Errorf("NumSignBits(param) = %d, want 1", got)
	}
	if got := ba.NumSignBits(ir.ConstInt(ir.I32, -1)); got != 32 {
		t.Errorf("NumSignBits(-1) = %d, want 32", got)
	}
	if got := ba.NumSignBits(ir.ConstInt(ir.I32, 255)); got != 24 {
		t.Errorf("NumSignBits(255) = %d, want 24", got)
	}
}

func TestKnownNonNegative(t *testing.T) {
	fn := ir.NewFunc("f")
	entry := fn.NewBlock("entry")
	x8 := fn.NewParam("x8", ir.I8)
	x32 := fn.NewParam("x32", ir.I32)

	ze := entry.Cast(ir.OpZExt, x8, ir.I32)
	sh := entry.Binary(ir.OpLShr, x32, ir.ConstInt(ir.I32, 1))
	mask := entry.Binary(ir.OpAnd, x32, ir.ConstInt(ir.I32, 0x7F))
	entry.Ret(mask)

	ba := bits.NewAnalysis(fn)
	tests := []struct {
		name string
		v    ir.Value
		want bool
	}{
		{"zext", ze, true},
		{"lshr", sh, true},
		{"and-mask", mask, true},
		{"param", x32, false},
		{"const 7", ir.ConstInt(ir.I32, 7), true},
		{"const -1", ir.ConstInt(ir.I32, -1), false},
	}
	for _, tt := range tests {
		if got := ba.KnownNonNegative(tt.v); got != tt.want {
			t.Errorf("KnownNonNegative(%s) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
