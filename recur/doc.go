// Package recur recognises reduction (recurrence) variables and
// first-order recurrences among the merge nodes of a loop header.
//
// The entry points are Probe, which tries every supported reduction
// kind against a merge node and returns a Descriptor for the first
// match, Match, which checks a single candidate kind, and
// FirstOrderRecurrence, which recognises loop-carried values used one
// iteration later and computes the instruction reordering that makes
// them legal to advance.
//
// All analyses are read-only over the graph; "not a match" is an
// ordinary result, not an error.
package recur
