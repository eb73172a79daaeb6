package ir

import "strings"

// FastMathFlags is the set of relaxed floating-point assumptions
// attached to a floating-point instruction.
type FastMathFlags uint8

const (
	// FMReassoc allows reassociation of the operation.
	FMReassoc FastMathFlags = 1 << iota
	// FMNoNaNs assumes no NaN operands or results.
	FMNoNaNs
	// FMNoInfs assumes no infinite operands or results.
	FMNoInfs
	// FMNoSignedZeros allows ignoring the sign of zero.
	FMNoSignedZeros
	// FMContract allows fusing operations (e.g. into an fma).
	FMContract
)

// FastAll returns the flag set with every relaxation enabled. Chains
// of reduction operations intersect their flags starting from this.
func FastAll() FastMathFlags {
	return FMReassoc | FMNoNaNs | FMNoInfs | FMNoSignedZeros | FMContract
}

// Intersect keeps only the relaxations permitted by both flag sets.
func (f FastMathFlags) Intersect(g FastMathFlags) FastMathFlags { return f & g }

// Union merges the relaxations of both flag sets.
func (f FastMathFlags) Union(g FastMathFlags) FastMathFlags { return f | g }

func (f FastMathFlags) AllowReassoc() bool  { return f&FMReassoc != 0 }
func (f FastMathFlags) NoNaNs() bool        { return f&FMNoNaNs != 0 }
func (f FastMathFlags) NoInfs() bool        { return f&FMNoInfs != 0 }
func (f FastMathFlags) NoSignedZeros() bool { return f&FMNoSignedZeros != 0 }
func (f FastMathFlags) Contract() bool      { return f&FMContract != 0 }

func (f FastMathFlags) String() string {
	if f == 0 {
		return "none"
	}
	var parts []string
	if f.AllowReassoc() {
		parts = append(parts, "reassoc")
	}
	if f.NoNaNs() {
		parts = append(parts, "nnan")
	}
	if f.NoInfs() {
		parts = append(parts, "ninf")
	}
	if f.NoSignedZeros() {
		parts = append(parts, "nsz")
	}
	if f.Contract() {
		parts = append(parts, "contract")
	}
	return strings.Join(parts, " ")
}
