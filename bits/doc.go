// Package bits derives bit-level facts about values in a function
// graph: which result bits of an instruction its users actually
// observe, how many high bits are known to equal the sign bit, and
// whether a value is provably non-negative.
//
// The answers are conservative. An unknown shape degrades to "all
// bits demanded" or "one sign bit", never the other way around, so a
// consumer that narrows types based on these facts stays sound.
package bits
