package dataval

import (
	"fmt"
	"sort"
)

// RootIdx identifies a component (root) of a forest automaton.
type RootIdx int

// Offset is a byte displacement inside a memory node, or a displacement
// carried by a Ref. NewRef and NewStruct do not check the sign of an
// offset; negative values are reserved for "unknown displacement".
type Offset int64

// UnknownOffset marks a Ref or selector whose displacement was not
// statically resolved (e.g. after a non-constant pointer_plus).
const UnknownOffset Offset = -1

// Kind discriminates the variant held by a Data value.
type Kind uint8

const (
	// KindUndef is the zero value of Kind so that a zero Data is Undef,
	// matching the "undefined until stored" semantics of a fresh selector.
	KindUndef Kind = iota
	KindInt
	KindBool
	KindNull
	KindNativePtr
	KindRef
	KindStruct
	KindCustomRange
)

func (k Kind) String() string {
	switch k {
	case KindUndef:
		return "Undef"
	case KindInt:
		return "Int"
	case KindBool:
		return "Bool"
	case KindNull:
		return "NULL"
	case KindNativePtr:
		return "NativePtr"
	case KindRef:
		return "Ref"
	case KindStruct:
		return "Struct"
	case KindCustomRange:
		return "CustomRange"
	default:
		return "Kind(?)"
	}
}

// Ref is a typed reference to another component of the enclosing forest
// automaton: "the subtree rooted here is the final state of root Root
// reached with displacement Displ".
type Ref struct {
	Root  RootIdx
	Displ Offset
}

// CustomRange is an abstracted integer interval, used to summarize a data
// field whose exact value has been widened away (e.g. the monotone
// three-state counter of the sll-circular scenario).
type CustomRange struct {
	Lo, Hi int64
}

// Contains reports whether n falls within the closed interval [Lo, Hi].
func (r CustomRange) Contains(n int64) bool { return r.Lo <= n && n <= r.Hi }

// StructField is one (offset, value) entry of a Data built with NewStruct.
type StructField struct {
	Offset Offset
	Value  Data
}

// Data is the immutable tagged union at the leaves of the heap
// representation. The zero Data is Undef.
// Data is a value type: copying it copies the (small) fixed fields and
// aliases the Struct slice, which callers must never mutate in place.
type Data struct {
	kind   Kind
	i      int64
	b      bool
	ptr    uintptr
	ref    Ref
	rng    CustomRange
	fields []StructField
}

// NewUndef returns the Undef data value.
func NewUndef() Data { return Data{kind: KindUndef} }

// NewNull returns the NULL data value.
func NewNull() Data { return Data{kind: KindNull} }

// NewInt returns an Int(n) data value.
func NewInt(n int64) Data { return Data{kind: KindInt, i: n} }

// NewBool returns a Bool(b) data value.
func NewBool(b bool) Data { return Data{kind: KindBool, b: b} }

// NewNativePtr returns a NativePtr(u) data value, used for addresses that
// are tracked opaquely (e.g. function pointers) without FA reference
// semantics.
func NewNativePtr(u uintptr) Data { return Data{kind: KindNativePtr, ptr: u} }

// NewRef returns a Ref{root, displ} data value.
func NewRef(root RootIdx, displ Offset) Data {
	return Data{kind: KindRef, ref: Ref{Root: root, Displ: displ}}
}

// NewCustomRange returns a CustomRange data value. Panics if hi < lo: an
// empty or inverted range is a programmer error, never a property of an
// analyzed program.
func NewCustomRange(lo, hi int64) Data {
	if hi < lo {
		panic(fmt.Sprintf("dataval: NewCustomRange(%d, %d): hi < lo", lo, hi))
	}
	return Data{kind: KindCustomRange, rng: CustomRange{Lo: lo, Hi: hi}}
}

// NewStruct returns a Struct data value from the given fields. The fields
// are copied and sorted by Offset so that Equal/Hash are independent of
// caller-supplied order.
func NewStruct(fields []StructField) Data {
	cp := make([]StructField, len(fields))
	copy(cp, fields)
	sort.Slice(cp, func(i, j int) bool { return cp[i].Offset < cp[j].Offset })
	return Data{kind: KindStruct, fields: cp}
}

// Kind reports which variant d holds.
func (d Data) Kind() Kind { return d.kind }

// Int returns the wrapped integer. Panics via ErrWrongKind-carrying message
// if d is not an Int; callers that cannot guarantee the kind should check
// Kind() first, matching the accessor contract of NodeLabel in the original
// implementation (untagged union, caller-verified).
func (d Data) Int() int64 {
	if d.kind != KindInt {
		panic(fmt.Errorf("%w: %s", ErrWrongKind, d.kind))
	}
	return d.i
}

// Bool returns the wrapped boolean.
func (d Data) Bool() bool {
	if d.kind != KindBool {
		panic(fmt.Errorf("%w: %s", ErrWrongKind, d.kind))
	}
	return d.b
}

// NativePtr returns the wrapped native address.
func (d Data) NativePtr() uintptr {
	if d.kind != KindNativePtr {
		panic(fmt.Errorf("%w: %s", ErrWrongKind, d.kind))
	}
	return d.ptr
}

// RefValue returns the wrapped reference.
func (d Data) RefValue() Ref {
	if d.kind != KindRef {
		panic(fmt.Errorf("%w: %s", ErrWrongKind, d.kind))
	}
	return d.ref
}

// Range returns the wrapped interval.
func (d Data) Range() CustomRange {
	if d.kind != KindCustomRange {
		panic(fmt.Errorf("%w: %s", ErrWrongKind, d.kind))
	}
	return d.rng
}

// Fields returns the wrapped struct fields (read-only; do not mutate).
func (d Data) Fields() []StructField {
	if d.kind != KindStruct {
		panic(fmt.Errorf("%w: %s", ErrWrongKind, d.kind))
	}
	return d.fields
}

// IsRef reports whether d is a Ref, the only variant relevant to
// connection-graph computation and reference validity checks.
func (d Data) IsRef() bool { return d.kind == KindRef }

// Equal reports whether a and b denote the same data value.
func Equal(a, b Data) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindUndef, KindNull:
		return true
	case KindInt:
		return a.i == b.i
	case KindBool:
		return a.b == b.b
	case KindNativePtr:
		return a.ptr == b.ptr
	case KindRef:
		return a.ref == b.ref
	case KindCustomRange:
		return a.rng == b.rng
	case KindStruct:
		if len(a.fields) != len(b.fields) {
			return false
		}
		for i := range a.fields {
			if a.fields[i].Offset != b.fields[i].Offset || !Equal(a.fields[i].Value, b.fields[i].Value) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Hash returns a hash consistent with Equal, for use as part of a
// hash-consing key in package label.
func Hash(d Data) uint64 {
	const prime = 1099511628211
	h := uint64(d.kind) * prime
	switch d.kind {
	case KindInt:
		h ^= uint64(d.i)
	case KindBool:
		if d.b {
			h ^= 1
		}
	case KindNativePtr:
		h ^= uint64(d.ptr)
	case KindRef:
		h ^= uint64(d.ref.Root)*prime ^ uint64(d.ref.Displ)
	case KindCustomRange:
		h ^= uint64(d.rng.Lo)*prime ^ uint64(d.rng.Hi)
	case KindStruct:
		for _, f := range d.fields {
			h ^= (uint64(f.Offset)*prime ^ Hash(f.Value)) * prime
		}
	}
	return h
}

func (d Data) String() string {
	switch d.kind {
	case KindUndef:
		return "Undef"
	case KindNull:
		return "NULL"
	case KindInt:
		return fmt.Sprintf("Int(%d)", d.i)
	case KindBool:
		return fmt.Sprintf("Bool(%t)", d.b)
	case KindNativePtr:
		return fmt.Sprintf("NativePtr(0x%x)", d.ptr)
	case KindRef:
		return fmt.Sprintf("Ref{root:%d, displ:%d}", d.ref.Root, d.ref.Displ)
	case KindCustomRange:
		return fmt.Sprintf("Range[%d,%d]", d.rng.Lo, d.rng.Hi)
	case KindStruct:
		return fmt.Sprintf("Struct(%d fields)", len(d.fields))
	default:
		return "Data(?)"
	}
}
