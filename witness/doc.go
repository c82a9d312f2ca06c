// Package witness renders a real counter-example trace as an SV-Comp
// GraphML witness document: the format a competition-grade verifier
// consumes to validate and visualize the reported error path.
package witness
