// Package vecprobe analyses the loops of Go programs for
// vectorisation-relevant recurrences: reductions, inductions, and
// first-order recurrences.
package vecprobe

import (
	"io"
	"io/ioutil"
	"log"

	"github.com/vecpal/vecpal/ir/build"
	"github.com/vecpal/vecpal/vecprobe/internal/vecprobe"
)

// Prober is the main loop-analysis entry point.
type Prober struct {
	Info      *build.Info      // Lowered program.
	Report    *vecprobe.Report // Analysis results.
	EntryFunc string

	outWriter io.Writer // Output stream.
	errWriter io.Writer // Error stream.
	*vecprobe.Logger
}

// New returns a new Prober, and uses w for logging messages.
func New(info *build.Info, w io.Writer) *Prober {
	prober := Prober{
		Info:      info,
		Report:    &vecprobe.Report{},
		outWriter: ioutil.Discard,
		errWriter: ioutil.Discard,
		Logger:    newLogger(),
	}
	if w != nil {
		prober.errWriter = w
	}
	return &prober
}

func (p *Prober) SetEntryFunc(path string) {
	p.EntryFunc = path
}

// Analyse classifies the loops of the program (or of the entry
// function only, when one is set) and writes the rendered report to
// the output stream.
func (p *Prober) Analyse() {
	// Sync error ignored. See https://github.com/uber-go/zap/issues/328
	defer p.Logger.Sync()

	if p.EntryFunc != "" {
		fn, err := p.Info.FindFunc(p.EntryFunc)
		if err != nil {
			log.Fatalf("Cannot find entry function %s", p.EntryFunc)
		}
		analyser := vecprobe.NewFunction(fn)
		analyser.SetLogger(p.Logger)
		p.Report.Funcs = append(p.Report.Funcs, analyser.Analyse())
	} else {
		for _, fn := range p.Info.SrcFuncs() {
			analyser := vecprobe.NewFunction(fn)
			analyser.SetLogger(p.Logger)
			p.Report.Funcs = append(p.Report.Funcs, analyser.Analyse())
		}
	}
	if _, err := p.Report.WriteTo(p.outWriter); err != nil {
		log.Fatal("Cannot write report:", err)
	}
}

// AddLogFiles extends current Logger and writes additional log to files.
func (p *Prober) AddLogFiles(file ...string) {
	p.Logger = newFileLogger(file...)
}

func (p *Prober) SetOutput(w io.Writer) {
	if w != nil {
		p.outWriter = w
	}
}
