package vecprobe

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/vecpal/vecpal/induction"
	"github.com/vecpal/vecpal/ir"
	"github.com/vecpal/vecpal/recur"
)

// sumLoop builds the classic dot-product shape: an integer counter
// driving the trip count and a running sum over loaded values.
func sumLoop() *ir.Func {
	fn := ir.NewFunc("(main).sum")
	entry := fn.NewBlock("entry")
	header := fn.NewBlock("header")
	exit := fn.NewBlock("exit")
	base := fn.NewParam("base", ir.Ptr(ir.I32))
	n := fn.NewParam("n", ir.I64)

	entry.Br(header)
	i := header.Phi(ir.I64, "i")
	sum := header.Phi(ir.I32, "sum")
	gep := header.PtrAdd(base, i)
	v := header.Load(gep)
	sumNext := header.Binary(ir.OpAdd, sum, v)
	iNext := header.Binary(ir.OpAdd, i, ir.ConstInt(ir.I64, 1))
	c := header.ICmp(ir.PredSLT, iNext, n)
	header.CondBr(c, header, exit)
	header.AddIncoming(i, ir.ConstInt(ir.I64, 0), entry)
	header.AddIncoming(i, iNext, header)
	header.AddIncoming(sum, ir.ConstInt(ir.I32, 0), entry)
	header.AddIncoming(sum, sumNext, header)
	exit.Ret(sumNext)
	return fn
}

func TestAnalyseSumLoop(t *testing.T) {
	rep := NewFunction(sumLoop()).Analyse()
	if rep.Name != "(main).sum" {
		t.Errorf("Name = %q, want (main).sum", rep.Name)
	}
	if len(rep.Loops) != 1 {
		t.Fatalf("found %d loops, want 1", len(rep.Loops))
	}
	lr := rep.Loops[0]
	if lr.Depth != 0 {
		t.Errorf("Depth = %d, want 0", lr.Depth)
	}
	if len(lr.Findings) != 2 {
		t.Fatalf("found %d header merge nodes, want 2", len(lr.Findings))
	}

	byName := make(map[string]Finding)
	for _, fd := range lr.Findings {
		byName[fd.Phi.Name()] = fd
	}
	ind := byName["i"]
	if ind.Induction == nil {
		t.Fatalf("counter not classified as an induction: %+v", ind)
	}
	if ind.Induction.Kind() != induction.Int {
		t.Errorf("counter kind = %s, want int", ind.Induction.Kind())
	}
	red := byName["sum"]
	if red.Reduction == nil {
		t.Fatalf("accumulator not classified as a reduction: %+v", red)
	}
	if red.Reduction.Kind() != recur.Add {
		t.Errorf("accumulator kind = %s, want add", red.Reduction.Kind())
	}
	if lr.Sink.Len() != 0 {
		t.Errorf("nothing should need sinking, got %d entries", lr.Sink.Len())
	}
}

func TestAnalyseNilLoggerSafe(t *testing.T) {
	// Debug output is optional; analysing without a logger must not
	// panic.
	f := NewFunction(sumLoop())
	if f.Logger != nil {
		t.Fatal("fresh analyser should carry no logger")
	}
	f.Analyse()
}

func TestReportWriteTo(t *testing.T) {
	color.NoColor = true
	rep := NewFunction(sumLoop()).Analyse()
	full := Report{Funcs: []FuncReport{rep, {Name: "(main).empty"}}}

	var buf bytes.Buffer
	if _, err := full.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"(main).sum",
		"reduction sum: kind=add",
		"induction i: kind=int step=1",
		"no loops",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report output missing %q:\n%s", want, out)
		}
	}
}
