package vecprobe

import (
	"bytes"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/vecpal/vecpal/induction"
	"github.com/vecpal/vecpal/ir"
	"github.com/vecpal/vecpal/recur"
	"github.com/vecpal/vecpal/scev"
)

// Finding is the classification of one loop-header merge node.
// At most one of the category fields is set.
type Finding struct {
	Phi        *ir.Instr
	Reduction  *recur.Descriptor
	Induction  *induction.Descriptor
	FirstOrder bool
}

// LoopReport collects the findings of one natural loop.
type LoopReport struct {
	Header   string
	Depth    int
	Findings []Finding
	Sink     *recur.SinkList
	Guards   []scev.Guard
}

// FuncReport collects the loop reports of one function.
type FuncReport struct {
	Name  string
	Loops []LoopReport
}

// Report is the whole-program analysis result.
type Report struct {
	Funcs []FuncReport
}

var (
	fnStyle   = color.New(color.FgCyan, color.Bold)
	loopStyle = color.New(color.FgYellow)
	redStyle  = color.New(color.FgGreen)
	indStyle  = color.New(color.FgBlue)
	forStyle  = color.New(color.FgMagenta)
	dimStyle  = color.New(color.Faint)
)

// WriteTo writes a human readable rendering of the report to w.
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	for _, f := range r.Funcs {
		fmt.Fprintf(&buf, "%s\n", fnStyle.Sprint(f.Name))
		if len(f.Loops) == 0 {
			fmt.Fprintf(&buf, "  %s\n", dimStyle.Sprint("no loops"))
			continue
		}
		for _, l := range f.Loops {
			fmt.Fprintf(&buf, "  %s (depth %d)\n", loopStyle.Sprintf("loop %s", l.Header), l.Depth)
			for _, fd := range l.Findings {
				buf.WriteString(renderFinding(fd))
			}
			if l.Sink != nil && l.Sink.Len() > 0 {
				fmt.Fprintf(&buf, "    %s:", forStyle.Sprint("sink order"))
				for _, i := range l.Sink.Ordered() {
					fmt.Fprintf(&buf, " %s(after %s)", i.Name(), l.Sink.After(i).Name())
				}
				buf.WriteString("\n")
			}
			for _, g := range l.Guards {
				fmt.Fprintf(&buf, "    %s: %s wraps unless %s\n",
					dimStyle.Sprint("guard"), g.Phi.Name(), g.Rec)
			}
		}
	}
	n, err := w.Write(buf.Bytes())
	return int64(n), err
}

func renderFinding(fd Finding) string {
	switch {
	case fd.Reduction != nil:
		d := fd.Reduction
		s := fmt.Sprintf("    %s %s: kind=%s exit=%s type=%s",
			redStyle.Sprint("reduction"), fd.Phi.Name(), d.Kind(), d.LoopExitInstr().Name(), d.RecurrenceType())
		if d.Ordered() {
			s += " ordered"
		}
		if d.Signed() {
			s += " signed"
		}
		if n := len(d.CastsToIgnore()); n > 0 {
			s += fmt.Sprintf(" redundant-casts=%d", n)
		}
		return s + "\n"
	case fd.Induction != nil:
		d := fd.Induction
		s := fmt.Sprintf("    %s %s: kind=%s step=%s",
			indStyle.Sprint("induction"), fd.Phi.Name(), d.Kind(), d.Step())
		if n := len(d.CastInsts()); n > 0 {
			s += fmt.Sprintf(" casts=%d", n)
		}
		return s + "\n"
	case fd.FirstOrder:
		return fmt.Sprintf("    %s %s\n", forStyle.Sprint("first-order recurrence"), fd.Phi.Name())
	}
	return fmt.Sprintf("    %s %s\n", dimStyle.Sprint("unclassified"), fd.Phi.Name())
}
