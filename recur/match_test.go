package recur_test

import (
	"testing"

	"github.com/vecpal/vecpal/bits"
	"github.com/vecpal/vecpal/dom"
	"github.com/vecpal/vecpal/ir"
	"github.com/vecpal/vecpal/loop"
	"github.com/vecpal/vecpal/recur"
)

// buildLoop assembles the canonical single-block reduction loop:
//
//	entry:  br header
//	header: phi = [init, entry], [back, header]
//	        back = body(header, phi)
//	        condbr c, header, exit
//	exit:   after(exit, back)   (default: ret back)
//
// and returns the merge node, its loop and the analysis oracles.
func buildLoop(t *testing.T, ty ir.Type, init ir.Value,
	body func(h *ir.Block, phi *ir.Instr) ir.Value,
	after func(e *ir.Block, back ir.Value)) (*ir.Instr, *loop.Loop, recur.Oracles) {
	t.Helper()
	fn := ir.NewFunc("f")
	entry := fn.NewBlock("entry")
	header := fn.NewBlock("header")
	exit := fn.NewBlock("exit")
	c := fn.NewParam("c", ir.I1)

	entry.Br(header)
	phi := header.Phi(ty, "acc")
	back := body(header, phi)
	header.CondBr(c, header, exit)
	header.AddIncoming(phi, init, entry)
	header.AddIncoming(phi, back, header)
	if after != nil {
		after(exit, back)
	} else {
		exit.Ret(back)
	}

	dt := dom.New(fn)
	info := loop.Detect(fn, dt)
	l := info.ByHeader[header]
	if l == nil {
		t.Fatal("loop not found")
	}
	ba := bits.NewAnalysis(fn)
	return phi, l, recur.Oracles{Dom: dt, DB: ba, VT: ba}
}

func TestProbeIntegerKinds(t *testing.T) {
	tests := []struct {
		name string
		op   ir.Op
		want recur.Kind
	}{
		{"add", ir.OpAdd, recur.Add},
		{"mul", ir.OpMul, recur.Mul},
		{"or", ir.OpOr, recur.Or},
		{"and", ir.OpAnd, recur.And},
		{"xor", ir.OpXor, recur.Xor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var upd *ir.Instr
			phi, l, o := buildLoop(t, ir.I32, ir.ConstInt(ir.I32, 0),
				func(h *ir.Block, phi *ir.Instr) ir.Value {
					x := h.Fn().NewParam("x", ir.I32)
					upd = h.Binary(tt.op, phi, x)
					return upd
				}, nil)
			d, ok := recur.Probe(phi, l, o)
			if !ok {
				t.Fatalf("Probe failed for %s", tt.name)
			}
			if d.Kind() != tt.want {
				t.Errorf("Kind() = %s, want %s", d.Kind(), tt.want)
			}
			if d.LoopExitInstr() != upd {
				t.Errorf("LoopExitInstr() = %v, want the update", d.LoopExitInstr())
			}
			if c, isConst := d.Start().(*ir.Const); !isConst || c.IntVal != 0 {
				t.Errorf("Start() = %v, want the 0 seed", d.Start())
			}
		})
	}
}

func TestProbeMinMax(t *testing.T) {
	var sel *ir.Instr
	phi, l, o := buildLoop(t, ir.I32, ir.ConstInt(ir.I32, 100),
		func(h *ir.Block, phi *ir.Instr) ir.Value {
			x := h.Fn().NewParam("x", ir.I32)
			cmp := h.ICmp(ir.PredSLT, phi, x)
			sel = h.Select(cmp, phi, x)
			return sel
		}, nil)
	d, ok := recur.Probe(phi, l, o)
	if !ok {
		t.Fatal("Probe failed for smin idiom")
	}
	if d.Kind() != recur.SMin {
		t.Errorf("Kind() = %s, want smin", d.Kind())
	}
	if d.LoopExitInstr() != sel {
		t.Errorf("LoopExitInstr() = %v, want the select", d.LoopExitInstr())
	}
}

func TestProbeMinMaxSwapped(t *testing.T) {
	// select(cmp(x, phi), phi, x): the predicate applies mirrored.
	phi, l, o := buildLoop(t, ir.I32, ir.ConstInt(ir.I32, 0),
		func(h *ir.Block, phi *ir.Instr) ir.Value {
			x := h.Fn().NewParam("x", ir.I32)
			cmp := h.ICmp(ir.PredUGT, x, phi)
			return h.Select(cmp, phi, x)
		}, nil)
	d, ok := recur.Probe(phi, l, o)
	if !ok {
		t.Fatal("Probe failed for mirrored umin idiom")
	}
	if d.Kind() != recur.UMin {
		t.Errorf("Kind() = %s, want umin", d.Kind())
	}
}

func TestProbeFPMinMaxNeedsRelaxation(t *testing.T) {
	build := func(h *ir.Block, phi *ir.Instr) ir.Value {
		x := h.Fn().NewParam("x", ir.F64)
		cmp := h.FCmp(ir.PredOGT, phi, x, 0)
		return h.FSelect(cmp, phi, x, 0)
	}

	phi, l, o := buildLoop(t, ir.F64, ir.ConstFloat(ir.F64, 0), build, nil)
	if _, ok := recur.Probe(phi, l, o); ok {
		t.Fatal("fmax must not match without no-NaNs/no-signed-zeros defaults")
	}

	phi, l, o = buildLoop(t, ir.F64, ir.ConstFloat(ir.F64, 0), build, nil)
	fn := phi.Block().Fn()
	fn.NoNaNsFPMath = true
	fn.NoSignedZerosFPMath = true
	d, ok := recur.Probe(phi, l, o)
	if !ok {
		t.Fatal("Probe failed for fmax under relaxed defaults")
	}
	if d.Kind() != recur.FMax {
		t.Errorf("Kind() = %s, want fmax", d.Kind())
	}
}

func TestOrderedFAdd(t *testing.T) {
	var upd *ir.Instr
	phi, l, o := buildLoop(t, ir.F64, ir.ConstFloat(ir.F64, 0),
		func(h *ir.Block, phi *ir.Instr) ir.Value {
			x := h.Fn().NewParam("x", ir.F64)
			upd = h.FBinary(ir.OpFAdd, phi, x, 0)
			return upd
		}, nil)
	d, ok := recur.Probe(phi, l, o)
	if !ok {
		t.Fatal("Probe failed for strict fadd")
	}
	if d.Kind() != recur.FAdd {
		t.Errorf("Kind() = %s, want fadd", d.Kind())
	}
	if !d.Ordered() {
		t.Errorf("strict fadd should be ordered")
	}
	if d.ExactFPMathInst() != upd {
		t.Errorf("ExactFPMathInst() = %v, want the update", d.ExactFPMathInst())
	}
	if d.FMF() != 0 {
		t.Errorf("FMF() = %s, want none", d.FMF())
	}
}

func TestReassociableFAdd(t *testing.T) {
	phi, l, o := buildLoop(t, ir.F64, ir.ConstFloat(ir.F64, 0),
		func(h *ir.Block, phi *ir.Instr) ir.Value {
			x := h.Fn().NewParam("x", ir.F64)
			return h.FBinary(ir.OpFAdd, phi, x, ir.FastAll())
		}, nil)
	d, ok := recur.Probe(phi, l, o)
	if !ok {
		t.Fatal("Probe failed for relaxed fadd")
	}
	if d.Ordered() {
		t.Errorf("relaxed fadd must not be ordered")
	}
	if d.ExactFPMathInst() != nil {
		t.Errorf("ExactFPMathInst() = %v, want nil", d.ExactFPMathInst())
	}
	if !d.FMF().AllowReassoc() {
		t.Errorf("FMF() = %s, want the relaxed flags preserved", d.FMF())
	}
}

func TestConditionalFAdd(t *testing.T) {
	var sel *ir.Instr
	phi, l, o := buildLoop(t, ir.F64, ir.ConstFloat(ir.F64, 0),
		func(h *ir.Block, phi *ir.Instr) ir.Value {
			fn := h.Fn()
			a := fn.NewParam("a", ir.F64)
			b := fn.NewParam("b", ir.F64)
			x := fn.NewParam("x", ir.F64)
			cmp := h.FCmp(ir.PredOGT, a, b, 0)
			add := h.FBinary(ir.OpFAdd, phi, x, ir.FastAll())
			sel = h.FSelect(cmp, add, phi, ir.FastAll())
			return sel
		}, nil)
	d, ok := recur.Probe(phi, l, o)
	if !ok {
		t.Fatal("Probe failed for conditional fadd")
	}
	if d.Kind() != recur.FAdd {
		t.Errorf("Kind() = %s, want fadd", d.Kind())
	}
	if d.LoopExitInstr() != sel {
		t.Errorf("LoopExitInstr() = %v, want the select", d.LoopExitInstr())
	}
	if d.Ordered() {
		t.Errorf("conditional fadd must not be ordered")
	}
}

func TestNarrowedReduction(t *testing.T) {
	var masked *ir.Instr
	phi, l, o := buildLoop(t, ir.I32, ir.ConstInt(ir.I32, 0),
		func(h *ir.Block, phi *ir.Instr) ir.Value {
			x := h.Fn().NewParam("x", ir.I32)
			masked = h.Binary(ir.OpAnd, phi, ir.ConstInt(ir.I32, 255))
			return h.Binary(ir.OpAdd, masked, x)
		},
		func(e *ir.Block, back ir.Value) {
			tr := e.Cast(ir.OpTrunc, back, ir.I8)
			e.Ret(tr)
		})
	d, ok := recur.Probe(phi, l, o)
	if !ok {
		t.Fatal("Probe failed for masked 8-bit accumulation")
	}
	if d.Kind() != recur.Add {
		t.Errorf("Kind() = %s, want add", d.Kind())
	}
	if !ir.SameType(d.RecurrenceType(), ir.I8) {
		t.Errorf("RecurrenceType() = %v, want i8", d.RecurrenceType())
	}
	if d.Signed() {
		t.Errorf("a masked accumulation is unsigned")
	}
	if !d.IsRedundantCast(masked) {
		t.Errorf("the mask should be in the redundant cast set")
	}
	if got := d.CastsToIgnore(); len(got) != 1 {
		t.Errorf("CastsToIgnore() = %v, want exactly the mask", got)
	}
}

func TestNarrowedReductionArithmeticOnly(t *testing.T) {
	// Only kinds that can be re-evaluated at the narrow width may look
	// through a mask; a masked xor accumulation must not match.
	phi, l, o := buildLoop(t, ir.I32, ir.ConstInt(ir.I32, 0),
		func(h *ir.Block, phi *ir.Instr) ir.Value {
			x := h.Fn().NewParam("x", ir.I32)
			masked := h.Binary(ir.OpAnd, phi, ir.ConstInt(ir.I32, 255))
			return h.Binary(ir.OpXor, masked, x)
		},
		func(e *ir.Block, back ir.Value) {
			tr := e.Cast(ir.OpTrunc, back, ir.I8)
			e.Ret(tr)
		})
	if _, ok := recur.Probe(phi, l, o); ok {
		t.Fatal("masked xor accumulation must not match")
	}
}

func TestNarrowedReductionWidthMismatch(t *testing.T) {
	// The mask claims 8 bits but the escape observes 16: narrowing to
	// the mask width would drop live bits, so no kind may match.
	phi, l, o := buildLoop(t, ir.I32, ir.ConstInt(ir.I32, 0),
		func(h *ir.Block, phi *ir.Instr) ir.Value {
			x := h.Fn().NewParam("x", ir.I32)
			masked := h.Binary(ir.OpAnd, phi, ir.ConstInt(ir.I32, 255))
			return h.Binary(ir.OpAdd, masked, x)
		},
		func(e *ir.Block, back ir.Value) {
			tr := e.Cast(ir.OpTrunc, back, ir.I16)
			e.Ret(tr)
		})
	if _, ok := recur.Probe(phi, l, o); ok {
		t.Fatal("mismatched narrowing must not match")
	}
}

func TestEscapingMergeNodeRejected(t *testing.T) {
	// The merge node itself leaving the loop exposes the previous
	// iteration's value.
	var mergeNode *ir.Instr
	phi, l, o := buildLoop(t, ir.I32, ir.ConstInt(ir.I32, 0),
		func(h *ir.Block, phi *ir.Instr) ir.Value {
			mergeNode = phi
			x := h.Fn().NewParam("x", ir.I32)
			return h.Binary(ir.OpAdd, phi, x)
		},
		func(e *ir.Block, back ir.Value) {
			e.Ret(mergeNode)
		})
	if _, ok := recur.Probe(phi, l, o); ok {
		t.Fatal("an escaping merge node must not match")
	}
}

func TestNonCommutativeNeedsLeftChain(t *testing.T) {
	// x - phi is not a running subtraction.
	phi, l, o := buildLoop(t, ir.I32, ir.ConstInt(ir.I32, 0),
		func(h *ir.Block, phi *ir.Instr) ir.Value {
			x := h.Fn().NewParam("x", ir.I32)
			return h.Binary(ir.OpSub, x, phi)
		}, nil)
	if _, ok := recur.Probe(phi, l, o); ok {
		t.Fatal("sub with the running value on the right must not match")
	}
}

func TestSubReducesAsAdd(t *testing.T) {
	phi, l, o := buildLoop(t, ir.I32, ir.ConstInt(ir.I32, 0),
		func(h *ir.Block, phi *ir.Instr) ir.Value {
			x := h.Fn().NewParam("x", ir.I32)
			return h.Binary(ir.OpSub, phi, x)
		}, nil)
	d, ok := recur.Probe(phi, l, o)
	if !ok {
		t.Fatal("Probe failed for running subtraction")
	}
	if d.Kind() != recur.Add {
		t.Errorf("Kind() = %s, want add", d.Kind())
	}
}

func TestProbeIsStable(t *testing.T) {
	phi, l, o := buildLoop(t, ir.I32, ir.ConstInt(ir.I32, 0),
		func(h *ir.Block, phi *ir.Instr) ir.Value {
			x := h.Fn().NewParam("x", ir.I32)
			return h.Binary(ir.OpMul, phi, x)
		}, nil)
	d1, ok1 := recur.Probe(phi, l, o)
	d2, ok2 := recur.Probe(phi, l, o)
	if !ok1 || !ok2 {
		t.Fatal("Probe failed")
	}
	if d1.Kind() != d2.Kind() || d1.LoopExitInstr() != d2.LoopExitInstr() {
		t.Errorf("repeated probes disagree: %s vs %s", d1.Kind(), d2.Kind())
	}
}

func TestIdentity(t *testing.T) {
	tests := []struct {
		kind recur.Kind
		want int64
	}{
		{recur.Add, 0},
		{recur.Mul, 1},
		{recur.And, -1},
		{recur.UMax, 0},
		{recur.SMax, -1 << 31},
		{recur.SMin, 1<<31 - 1},
	}
	for _, tt := range tests {
		if got := recur.Identity(tt.kind, ir.I32, 0); got.IntVal != tt.want {
			t.Errorf("Identity(%s) = %d, want %d", tt.kind, got.IntVal, tt.want)
		}
	}
}
