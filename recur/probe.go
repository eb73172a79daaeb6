package recur

import (
	"io"
	"io/ioutil"
	"log"

	"github.com/vecpal/vecpal/ir"
	"github.com/vecpal/vecpal/loop"
)

var logger = log.New(ioutil.Discard, "recur: ", 0)

// SetLog sets logging output for the package.
func SetLog(w io.Writer) {
	logger.SetOutput(w)
}

// probeOrder is the fixed order kinds are tried in; the first match
// wins, so Add shadows the kinds it subsumes.
var probeOrder = []Kind{
	Add, Mul, Or, And, Xor,
	SMax, SMin, UMax, UMin,
	FMul, FAdd, FMax, FMin,
}

// Probe tries every supported reduction kind against phi and returns
// the descriptor of the first match. Exhaustion means phi is not a
// recognised reduction.
func Probe(phi *ir.Instr, l *loop.Loop, o Oracles) (*Descriptor, bool) {
	var dflt ir.FastMathFlags
	if fn := phi.Block().Fn(); fn != nil {
		if fn.NoNaNsFPMath {
			dflt |= ir.FMNoNaNs
		}
		if fn.NoSignedZerosFPMath {
			dflt |= ir.FMNoSignedZeros
		}
	}
	for _, k := range probeOrder {
		if d, ok := Match(phi, k, l, dflt, o); ok {
			logger.Printf("found a %s reduction: %s", k, phi.Name())
			return d, true
		}
	}
	return nil, false
}
