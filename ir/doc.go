// Package ir defines the dataflow graph the loop analyses run over.
//
// The graph is a conventional SSA form: values are either constants,
// function parameters (and other values opaque to the analysis), or
// instructions. Instructions live in basic blocks connected by control
// edges; a phi instruction merges one incoming value per predecessor
// edge of its block.
//
// The graph is built once (by hand through the block constructors, or
// from Go source via ir/build) and treated as immutable by every
// analysis. Instruction user lists are maintained by the constructors
// so that analyses can walk def-use chains without rebuilding them.
package ir
