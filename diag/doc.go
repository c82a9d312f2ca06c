// Package diag carries the analyzer's error taxonomy: program errors
// (safety violations attributable to the analyzed program), refinement
// signals (internal, non-fatal restarts), and the diagnostic-boundary
// error kinds those program errors are built from. Precondition
// violations are not a type here: they are bugs in the analyzer and
// propagate as ordinary Go panics, caught nowhere inside this module.
package diag
