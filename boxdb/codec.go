package boxdb

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/forestfa/fa/dataval"
	"github.com/forestfa/fa/label"
)

// Flat, line-oriented encoding of the label/data values the box-file
// format needs to carry. Struct data values are not represented:
// writeDataFlat writes only the kind name for a Struct, without its
// fields, and readDataFlat rejects a Struct entry with ErrMalformedEntry.

func kindName(k dataval.Kind) string { return k.String() }

func kindFromName(s string) (dataval.Kind, error) {
	names := map[string]dataval.Kind{
		"undef": dataval.KindUndef, "int": dataval.KindInt, "bool": dataval.KindBool,
		"null": dataval.KindNull, "nativeptr": dataval.KindNativePtr, "ref": dataval.KindRef,
		"struct": dataval.KindStruct, "customrange": dataval.KindCustomRange,
	}
	k, ok := names[strings.ToLower(s)]
	if !ok {
		return 0, fmt.Errorf("%w: unknown data kind %q", ErrMalformedEntry, s)
	}
	return k, nil
}

func writeDataFlat(w *bufio.Writer, tag string, d dataval.Data) {
	fmt.Fprintf(w, "%s %s", tag, kindName(d.Kind()))
	switch d.Kind() {
	case dataval.KindInt:
		fmt.Fprintf(w, " %d", d.Int())
	case dataval.KindBool:
		fmt.Fprintf(w, " %t", d.Bool())
	case dataval.KindNativePtr:
		fmt.Fprintf(w, " %d", d.NativePtr())
	case dataval.KindRef:
		r := d.RefValue()
		fmt.Fprintf(w, " %d %d", r.Root, r.Displ)
	case dataval.KindCustomRange:
		rng := d.Range()
		fmt.Fprintf(w, " %d %d", rng.Lo, rng.Hi)
	}
	fmt.Fprint(w, "\n")
}

func readDataFlat(fields []string) (dataval.Data, error) {
	if len(fields) < 1 {
		return dataval.Data{}, ErrMalformedEntry
	}
	k, err := kindFromName(fields[0])
	if err != nil {
		return dataval.Data{}, err
	}
	switch k {
	case dataval.KindUndef:
		return dataval.NewUndef(), nil
	case dataval.KindNull:
		return dataval.NewNull(), nil
	case dataval.KindInt:
		n, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return dataval.Data{}, fmt.Errorf("%w: %v", ErrMalformedEntry, err)
		}
		return dataval.NewInt(n), nil
	case dataval.KindBool:
		b, err := strconv.ParseBool(fields[1])
		if err != nil {
			return dataval.Data{}, fmt.Errorf("%w: %v", ErrMalformedEntry, err)
		}
		return dataval.NewBool(b), nil
	case dataval.KindNativePtr:
		u, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return dataval.Data{}, fmt.Errorf("%w: %v", ErrMalformedEntry, err)
		}
		return dataval.NewNativePtr(uintptr(u)), nil
	case dataval.KindRef:
		root, err1 := strconv.Atoi(fields[1])
		displ, err2 := strconv.ParseInt(fields[2], 10, 64)
		if err1 != nil || err2 != nil {
			return dataval.Data{}, ErrMalformedEntry
		}
		return dataval.NewRef(dataval.RootIdx(root), dataval.Offset(displ)), nil
	case dataval.KindCustomRange:
		lo, err1 := strconv.ParseInt(fields[1], 10, 64)
		hi, err2 := strconv.ParseInt(fields[2], 10, 64)
		if err1 != nil || err2 != nil {
			return dataval.Data{}, ErrMalformedEntry
		}
		return dataval.NewCustomRange(lo, hi), nil
	default:
		return dataval.Data{}, fmt.Errorf("%w: unsupported data kind %q for flat encoding", ErrMalformedEntry, fields[0])
	}
}

func boxEntryKindName(k label.AbstractBoxKind) string {
	switch k {
	case label.AbstractSelector:
		return "selector"
	case label.AbstractType:
		return "type"
	case label.AbstractBox:
		return "box"
	case label.AbstractData:
		return "data"
	default:
		return "unknown"
	}
}

func boxEntryKindFromName(s string) (label.AbstractBoxKind, error) {
	switch s {
	case "selector":
		return label.AbstractSelector, nil
	case "type":
		return label.AbstractType, nil
	case "box":
		return label.AbstractBox, nil
	case "data":
		return label.AbstractData, nil
	default:
		return 0, fmt.Errorf("%w: unknown box-entry kind %q", ErrMalformedEntry, s)
	}
}

func writeLabel(w *bufio.Writer, arena *label.Arena, id label.LabelID) {
	lbl := arena.Get(id)
	switch lbl.Kind() {
	case label.KindNode:
		nl := lbl.Node()
		fmt.Fprintf(w, "LABELKIND node %d\n", len(nl.Boxes))
		for _, be := range nl.Boxes {
			fmt.Fprintf(w, "BOXENTRY %s %d %d %d %d %d\n",
				boxEntryKindName(be.Kind), be.Sel.Offset, be.Sel.Size, be.Sel.Displ, be.Typ, be.Box)
		}
	case label.KindData:
		fmt.Fprint(w, "LABELKIND data\n")
		writeDataFlat(w, "DATAVAL", lbl.Data().Value)
	case label.KindVector:
		vals := lbl.Vector().Values
		fmt.Fprintf(w, "LABELKIND vector %d\n", len(vals))
		for _, v := range vals {
			writeDataFlat(w, "VALUE", v)
		}
	}
}

// lineReader is a tiny line-oriented cursor over a box file: one
// whitespace-separated token list per call to next().
type lineReader struct {
	sc *bufio.Scanner
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{sc: bufio.NewScanner(r)}
}

func (lr *lineReader) next() ([]string, bool) {
	for lr.sc.Scan() {
		line := strings.TrimSpace(lr.sc.Text())
		if line == "" {
			continue
		}
		return strings.Fields(line), true
	}
	return nil, false
}

func readLabel(lr *lineReader, arena *label.Arena) (label.LabelID, error) {
	fields, ok := lr.next()
	if !ok || len(fields) < 2 || fields[0] != "LABELKIND" {
		return 0, fmt.Errorf("%w: expected LABELKIND", ErrMalformedEntry)
	}
	switch fields[1] {
	case "node":
		n, err := strconv.Atoi(fields[2])
		if err != nil {
			return 0, ErrMalformedEntry
		}
		boxes := make([]label.AbstractBoxEntry, 0, n)
		for i := 0; i < n; i++ {
			bf, ok := lr.next()
			if !ok || len(bf) < 7 || bf[0] != "BOXENTRY" {
				return 0, fmt.Errorf("%w: expected BOXENTRY", ErrMalformedEntry)
			}
			kind, err := boxEntryKindFromName(bf[1])
			if err != nil {
				return 0, err
			}
			off, _ := strconv.ParseInt(bf[2], 10, 64)
			size, _ := strconv.Atoi(bf[3])
			displ, _ := strconv.ParseInt(bf[4], 10, 64)
			typ, _ := strconv.Atoi(bf[5])
			boxID, _ := strconv.Atoi(bf[6])
			boxes = append(boxes, label.AbstractBoxEntry{
				Kind: kind,
				Sel:  label.SelData{Offset: dataval.Offset(off), Size: size, Displ: dataval.Offset(displ)},
				Typ:  label.TypeBoxId(typ),
				Box:  label.BoxId(boxID),
			})
		}
		return arena.InternNode(boxes)
	case "data":
		df, ok := lr.next()
		if !ok || df[0] != "DATAVAL" {
			return 0, fmt.Errorf("%w: expected DATAVAL", ErrMalformedEntry)
		}
		d, err := readDataFlat(df[1:])
		if err != nil {
			return 0, err
		}
		return arena.InternData(d), nil
	case "vector":
		n, err := strconv.Atoi(fields[2])
		if err != nil {
			return 0, ErrMalformedEntry
		}
		vals := make([]dataval.Data, 0, n)
		for i := 0; i < n; i++ {
			vf, ok := lr.next()
			if !ok || vf[0] != "VALUE" {
				return 0, fmt.Errorf("%w: expected VALUE", ErrMalformedEntry)
			}
			d, err := readDataFlat(vf[1:])
			if err != nil {
				return 0, err
			}
			vals = append(vals, d)
		}
		return arena.InternVector(vals), nil
	default:
		return 0, fmt.Errorf("%w: unknown label kind %q", ErrMalformedEntry, fields[1])
	}
}
