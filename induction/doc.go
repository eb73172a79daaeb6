// Package induction classifies loop-header merge nodes that advance
// by a fixed amount per iteration: integer counters, strided
// pointers, and floating-point accumulators with an invariant step.
//
// Classify is the entry point. Integer and pointer candidates are
// resolved through a symbolic affine-recurrence engine, optionally
// speculating through cast chains under runtime guards; floating
// point is matched structurally.
package induction
