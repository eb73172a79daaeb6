package ir

import (
	"bytes"
	"fmt"
)

// Func is a single-function dataflow graph.
type Func struct {
	name   string
	Blocks []*Block
	Params []*Param

	// Function-level floating-point assumptions, the default flags a
	// reduction chain starts from (see recur.Probe).
	NoNaNsFPMath        bool
	NoSignedZerosFPMath bool

	nval int
}

// NewFunc returns a new empty function graph.
func NewFunc(name string) *Func {
	return &Func{name: name}
}

// Name returns the function name.
func (f *Func) Name() string { return f.name }

// NewBlock appends a new empty block.
func (f *Func) NewBlock(name string) *Block {
	b := &Block{name: name, index: len(f.Blocks), fn: f}
	f.Blocks = append(f.Blocks, b)
	return b
}

// NewParam registers a new external value on the function.
func (f *Func) NewParam(name string, t Type) *Param {
	p := NewParam(name, t)
	f.Params = append(f.Params, p)
	return p
}

// Entry returns the entry block.
func (f *Func) Entry() *Block {
	if len(f.Blocks) == 0 {
		return nil
	}
	return f.Blocks[0]
}

func (f *Func) nextValue() int {
	n := f.nval
	f.nval++
	return n
}

func (f *Func) String() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "func %s:\n", f.name)
	for _, b := range f.Blocks {
		fmt.Fprintf(&buf, "%s:", b.String())
		if len(b.Preds) > 0 {
			buf.WriteString(" ; preds:")
			for _, p := range b.Preds {
				fmt.Fprintf(&buf, " #%d", p.Index())
			}
		}
		buf.WriteString("\n")
		for _, i := range b.Instrs {
			fmt.Fprintf(&buf, "\t%s\n", i.String())
		}
	}
	return buf.String()
}
