// Package ir models the minimal instruction and location surface the
// analyzer consumes from the microcode compiler: it is not a compiler
// or a lowering pass, only the shape symexec reads opcodes and
// operands off of. The IR front-end, the microcode compiler, and the
// execution manager that drives multiple programs are external
// collaborators; this package is the seam symexec is written against.
package ir
