// Package symexec is the microcode interpreter: it drives an
// Executor's worklist of symbolic States over forest automata,
// executing alloc/free/load/store/ptr_plus/binop/cmp/br/call/ret/
// assert/plot instructions, delegating folding, normalization and
// abstraction to the fixpoint engine at each fixpoint marker and
// catching safety violations as they occur.
package symexec
