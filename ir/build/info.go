package build

import (
	"go/token"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/tools/go/loader"
	gossa "golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"

	"github.com/vecpal/vecpal/ir"
)

// ErrFuncNotFound is returned when a named function is not part of
// the built program.
var ErrFuncNotFound = errors.New("function not found")

type funcGraph struct {
	ssa *gossa.Function
	ir  *ir.Func
}

// Info holds the results of a build for analysis.
// To populate this structure, FromFiles or FromReader should be used.
type Info struct {
	IgnoredPkgs []string // Record of ignored packages during the build process.

	FSet  *token.FileSet  // FileSet for parsed source files.
	Prog  *gossa.Program  // SSA IR for whole program.
	LProg *loader.Program // Loaded program from go/loader.

	BldLog io.Writer // Build log.

	funcs map[string]*funcGraph // Lowered graphs, by function path.
}

// SrcFuncs returns the source-level functions of the program lowered
// to analysis graphs, in a stable order.
func (info *Info) SrcFuncs() []*ir.Func {
	var fns []*gossa.Function
	for f := range ssautil.AllFunctions(info.Prog) {
		if f.Synthetic != "" || len(f.Blocks) == 0 {
			continue
		}
		fns = append(fns, f)
	}
	sort.Slice(fns, func(i, j int) bool { return fns[i].String() < fns[j].String() })
	out := make([]*ir.Func, 0, len(fns))
	for _, f := range fns {
		out = append(out, info.graphOf(f))
	}
	return out
}

// FindFunc parses path (e.g. "main.work" or "(import/path).Func") and
// returns the lowered graph of the function body.
func (info *Info) FindFunc(path string) (*ir.Func, error) {
	pkgPath, fnName := parseFuncPath(path)
	for f := range ssautil.AllFunctions(info.Prog) {
		if f.Pkg == nil || len(f.Blocks) == 0 {
			continue
		}
		if (f.Pkg.Pkg.Path() == pkgPath || f.Pkg.Pkg.Name() == pkgPath) && f.Name() == fnName {
			return info.graphOf(f), nil
		}
	}
	return nil, errors.Wrap(ErrFuncNotFound, path)
}

func (info *Info) graphOf(f *gossa.Function) *ir.Func {
	key := f.String()
	if g, ok := info.funcs[key]; ok {
		return g.ir
	}
	g := &funcGraph{ssa: f, ir: Translate(f)}
	info.funcs[key] = g
	return g.ir
}

// WriteTo writes every lowered source function to w in human readable
// instruction format.
func (info *Info) WriteTo(w io.Writer) (int64, error) {
	var n int64
	for _, f := range info.SrcFuncs() {
		written, err := io.WriteString(w, f.String())
		if err != nil {
			return n, err
		}
		n += int64(written)
	}
	return n, nil
}

// WriteFunc writes the lowered graph of the named function to w.
func (info *Info) WriteFunc(w io.Writer, path string) (int64, error) {
	f, err := info.FindFunc(path)
	if err != nil {
		return 0, err
	}
	written, err := io.WriteString(w, f.String())
	return int64(written), err
}

// parseFuncPath splits path to package and function segments.
// Does not handle complex functions with receivers.
func parseFuncPath(path string) (pkgPath, fnName string) {
	if len(path) < 1 {
		return "", ""
	}
	switch path[0] {
	case '(':
		regex := regexp.MustCompile(`\((?P<pkg>[^)]+)\).(?P<fn>.+)`)
		submatches := regex.FindStringSubmatch(path)
		if len(submatches) >= 3 {
			return submatches[1], submatches[2]
		}
	case '"':
		regex := regexp.MustCompile(`"(?P<pkg>[^)]+)".(?P<fn>.+)`)
		submatches := regex.FindStringSubmatch(path)
		if len(submatches) >= 3 {
			return submatches[1], submatches[2]
		}
	default:
		parts := strings.Split(path, ".")
		if len(parts) >= 2 {
			return parts[0], parts[1]
		}
	}
	return "", path
}
