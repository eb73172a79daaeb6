package build_test

import (
	"strings"
	"testing"

	"github.com/pkg/errors"

	"github.com/vecpal/vecpal/bits"
	"github.com/vecpal/vecpal/dom"
	"github.com/vecpal/vecpal/ir/build"
	"github.com/vecpal/vecpal/loop"
	"github.com/vecpal/vecpal/recur"
)

const sumProg = `package main

func sum(xs []int) int {
	s := 0
	i := 0
	for {
		s += xs[i]
		i++
		if i >= len(xs) {
			break
		}
	}
	return s
}

func main() {
	println(sum([]int{1, 2, 3}))
}
`

func TestFromReader(t *testing.T) {
	info, err := build.FromReader(strings.NewReader(sumProg)).Default().Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	fns := info.SrcFuncs()
	if len(fns) == 0 {
		t.Fatal("SrcFuncs() returned no functions")
	}

	f, err := info.FindFunc("main.sum")
	if err != nil {
		t.Fatalf("FindFunc failed: %v", err)
	}
	if len(f.Blocks) == 0 {
		t.Fatal("lowered function has no blocks")
	}

	if _, err := info.FindFunc("main.missing"); errors.Cause(err) != build.ErrFuncNotFound {
		t.Errorf("FindFunc(missing) error = %v, want ErrFuncNotFound", err)
	}
}

// The lowered graph of a source-level accumulation loop must expose
// the loop-carried sum to the reduction matcher.
func TestLoweredReduction(t *testing.T) {
	info, err := build.FromReader(strings.NewReader(sumProg)).Default().Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	f, err := info.FindFunc("main.sum")
	if err != nil {
		t.Fatalf("FindFunc failed: %v", err)
	}

	dt := dom.New(f)
	loops := loop.Detect(f, dt)
	if len(loops.All()) != 1 {
		t.Fatalf("found %d loops in sum, want 1", len(loops.All()))
	}
	l := loops.All()[0]
	phis := l.HeaderPhis()
	if len(phis) < 2 {
		t.Fatalf("found %d header merge nodes, want at least 2", len(phis))
	}

	ba := bits.NewAnalysis(f)
	o := recur.Oracles{Dom: dt, DB: ba, VT: ba}
	found := false
	for _, phi := range phis {
		if d, ok := recur.Probe(phi, l, o); ok {
			if d.Kind() != recur.Add {
				t.Errorf("reduction kind = %s, want add", d.Kind())
			}
			found = true
		}
	}
	if !found {
		t.Error("no reduction recognised in the lowered sum loop")
	}
}

func TestWriteFunc(t *testing.T) {
	info, err := build.FromReader(strings.NewReader(sumProg)).Default().Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	var sb strings.Builder
	if _, err := info.WriteFunc(&sb, "main.sum"); err != nil {
		t.Fatalf("WriteFunc failed: %v", err)
	}
	if !strings.Contains(sb.String(), "sum") {
		t.Errorf("output does not mention the function:\n%s", sb.String())
	}
}
