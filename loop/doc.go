// Package loop provides natural-loop detection and the loop view the
// recurrence and induction analyses operate on.
//
// A natural loop is found from a backedge B -> H where H dominates B.
// The loop body is built by walking predecessors from the latch back
// to the header. The resulting Loop view is immutable: one header,
// at most one latch (nil when the loop has several backedges, in
// which case the analyses that require a single latch refuse it), a
// preheader when the header has exactly one edge entering from
// outside, and the set of exit blocks.
package loop
