package vecprobe

import (
	"github.com/vecpal/vecpal/bits"
	"github.com/vecpal/vecpal/dom"
	"github.com/vecpal/vecpal/induction"
	"github.com/vecpal/vecpal/ir"
	"github.com/vecpal/vecpal/loop"
	"github.com/vecpal/vecpal/recur"
	"github.com/vecpal/vecpal/scev"
)

// Function analyses the loops of a single lowered function.
type Function struct {
	Fn *ir.Func

	*Logger
}

// NewFunction returns an analyser for fn.
func NewFunction(fn *ir.Func) *Function {
	return &Function{Fn: fn}
}

// SetLogger sets logging capability to the analyser.
func (f *Function) SetLogger(l *Logger) {
	logger := *l
	logger.module = "vecprobe.Function"
	f.Logger = &logger
}

// Analyse classifies every header merge node of every natural loop in
// the function: reductions first, then inductions, then first-order
// recurrences.
func (f *Function) Analyse() FuncReport {
	dt := dom.New(f.Fn)
	info := loop.Detect(f.Fn, dt)
	eng := scev.NewEngine(info)
	ba := bits.NewAnalysis(f.Fn)
	oracles := recur.Oracles{Dom: dt, DB: ba, VT: ba}

	rep := FuncReport{Name: f.Fn.Name()}
	for _, l := range info.All() {
		lr := LoopReport{Header: l.Header.Name(), Depth: depth(l)}
		sink := recur.NewSinkList()
		for _, phi := range l.HeaderPhis() {
			fd := Finding{Phi: phi}
			if d, ok := recur.Probe(phi, l, oracles); ok {
				fd.Reduction = d
				f.debugf("%s: %s is a %s reduction", f.Fn.Name(), phi.Name(), d.Kind())
			} else if d, ok := induction.Classify(phi, l, eng, true); ok {
				fd.Induction = d
				f.debugf("%s: %s is a %s induction", f.Fn.Name(), phi.Name(), d.Kind())
			} else if recur.FirstOrderRecurrence(phi, l, sink, dt) {
				fd.FirstOrder = true
				f.debugf("%s: %s is a first-order recurrence", f.Fn.Name(), phi.Name())
			}
			lr.Findings = append(lr.Findings, fd)
		}
		lr.Sink = sink
		lr.Guards = eng.Guards()
		rep.Loops = append(rep.Loops, lr)
	}
	return rep
}

func (f *Function) debugf(format string, args ...interface{}) {
	if f.Logger != nil {
		f.Debugf(format, args...)
	}
}

func depth(l *loop.Loop) int {
	d := 0
	for p := l.Parent; p != nil; p = p.Parent {
		d++
	}
	return d
}
