// Package dataval defines the leaf-level data values carried by forest
// automata transitions: the tagged union
//
//	Data = Int(n) | Bool(b) | NULL | Undef | NativePtr(u)
//	     | Ref{root, displ} | Struct[(Offset, Data)] | CustomRange
//
// Every other package in this module (label, forestaut, symexec, ...)
// treats Data as an immutable value type: two Data values are equal iff
// Equal reports true, and Hash is consistent with Equal so that Data can be
// used as (part of) a hash-consing key in package label.
package dataval
