package boxdb

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/forestfa/fa/dataval"
	"github.com/forestfa/fa/forestaut"
	"github.com/forestfa/fa/label"
	"github.com/forestfa/fa/treeaut"
)

// Save writes every box registered in db, under the names resolved
// through bm, to w as a box-database file.
func Save(w io.Writer, bm *label.BoxManager, db *forestaut.BoxDB) error {
	bw := bufio.NewWriter(w)
	for _, box := range db.All() {
		sig := bm.Signature(box.SignatureID)
		fmt.Fprintf(bw, "BOX %s %d %d %d %d\n", sig.Name, sig.Order, len(box.Body.Roots), box.InputRoot, box.OutputRoot)
		for ri, ta := range box.Body.Roots {
			fmt.Fprintf(bw, "ROOT %d\n", ri)
			if ta == nil {
				fmt.Fprint(bw, "HOLE\n")
				continue
			}
			writeRoot(bw, ta, box.Body.Backend.Arena)
		}
		fmt.Fprint(bw, "ENDBOX\n")
	}
	return bw.Flush()
}

func writeRoot(bw *bufio.Writer, ta *treeaut.TA, arena *label.Arena) {
	states := ta.States()
	fmt.Fprintf(bw, "NSTATES %d\n", len(states))
	for _, s := range states {
		kind := "I"
		if s.Kind == treeaut.DataLeaf {
			kind = "D"
		}
		fmt.Fprintf(bw, "STATE %s %d\n", kind, s.ID)
	}
	finals := ta.FinalStates()
	fmt.Fprintf(bw, "NFINALS %d\n", len(finals))
	for _, s := range finals {
		fmt.Fprintf(bw, "FINAL %d\n", s.ID)
	}
	trans := ta.Transitions()
	fmt.Fprintf(bw, "NTRANS %d\n", len(trans))
	for _, tr := range trans {
		children := ta.Children(tr)
		fmt.Fprintf(bw, "TRANS %d\n", len(children))
		for _, c := range children {
			kind := "I"
			if c.Kind == treeaut.DataLeaf {
				kind = "D"
			}
			fmt.Fprintf(bw, "CHILD %s %d\n", kind, c.ID)
		}
		writeLabel(bw, arena, tr.Label)
		rhsKind := "I"
		if tr.RHS.Kind == treeaut.DataLeaf {
			rhsKind = "D"
		}
		fmt.Fprintf(bw, "RHS %s %d\n", rhsKind, tr.RHS.ID)
	}
	fmt.Fprint(bw, "ENDROOT\n")
}

func parseState(fields []string) (treeaut.State, error) {
	if len(fields) != 2 {
		return treeaut.State{}, ErrMalformedEntry
	}
	id, err := strconv.Atoi(fields[1])
	if err != nil {
		return treeaut.State{}, ErrMalformedEntry
	}
	kind := treeaut.Internal
	if fields[0] == "D" {
		kind = treeaut.DataLeaf
	}
	return treeaut.State{Kind: kind, ID: uint32(id)}, nil
}

// Load reads a box-database file from r, registering each box's name
// with bm (idempotent: RegisterBox overwrites on a duplicate name)
// and its body with db. TA content is rebuilt against the
// given backend so state ids interned here are comparable to the rest
// of the running analysis.
func Load(r io.Reader, backend *forestaut.Backend, bm *label.BoxManager, db *forestaut.BoxDB) error {
	lr := newLineReader(r)
	for {
		fields, ok := lr.next()
		if !ok {
			return nil
		}
		if fields[0] != "BOX" || len(fields) != 6 {
			return fmt.Errorf("%w: expected BOX header", ErrMalformedEntry)
		}
		name := fields[1]
		order, err0 := strconv.Atoi(fields[2])
		numRoots, err1 := strconv.Atoi(fields[3])
		inputRoot, err2 := strconv.Atoi(fields[4])
		outputRoot, err3 := strconv.Atoi(fields[5])
		if err0 != nil || err1 != nil || err2 != nil || err3 != nil {
			return fmt.Errorf("%w: bad BOX header fields", ErrMalformedEntry)
		}

		body := forestaut.New(backend)
		for ri := 0; ri < numRoots; ri++ {
			rfields, ok := lr.next()
			if !ok || rfields[0] != "ROOT" {
				return fmt.Errorf("%w: expected ROOT", ErrMalformedEntry)
			}
			next, ok := lr.next()
			if !ok {
				return fmt.Errorf("%w: truncated root", ErrMalformedEntry)
			}
			if next[0] == "HOLE" {
				body.AppendRoot(nil)
				continue
			}
			ta, err := readRoot(lr, next, backend)
			if err != nil {
				return err
			}
			body.AppendRoot(ta)
		}
		if end, ok := lr.next(); !ok || end[0] != "ENDBOX" {
			return fmt.Errorf("%w: expected ENDBOX", ErrMalformedEntry)
		}

		boxID, err := bm.RegisterBox(name, order, nil)
		if err != nil {
			return err
		}
		db.Put(&forestaut.Box{
			SignatureID: boxID,
			Body:        body,
			InputRoot:   dataval.RootIdx(inputRoot),
			OutputRoot:  dataval.RootIdx(outputRoot),
		})
	}
}

func readRoot(lr *lineReader, nstatesLine []string, backend *forestaut.Backend) (*treeaut.TA, error) {
	if nstatesLine[0] != "NSTATES" {
		return nil, fmt.Errorf("%w: expected NSTATES", ErrMalformedEntry)
	}
	n, err := strconv.Atoi(nstatesLine[1])
	if err != nil {
		return nil, ErrMalformedEntry
	}
	ta := treeaut.New(backend.Pool, backend.Arena)
	for i := 0; i < n; i++ {
		f, ok := lr.next()
		if !ok || f[0] != "STATE" {
			return nil, fmt.Errorf("%w: expected STATE", ErrMalformedEntry)
		}
		if _, err := parseState(f[1:]); err != nil {
			return nil, err
		}
	}

	nf, ok := lr.next()
	if !ok || nf[0] != "NFINALS" {
		return nil, fmt.Errorf("%w: expected NFINALS", ErrMalformedEntry)
	}
	nFinals, err := strconv.Atoi(nf[1])
	if err != nil {
		return nil, ErrMalformedEntry
	}
	finals := make([]treeaut.State, 0, nFinals)
	for i := 0; i < nFinals; i++ {
		f, ok := lr.next()
		if !ok || f[0] != "FINAL" {
			return nil, fmt.Errorf("%w: expected FINAL", ErrMalformedEntry)
		}
		id, err := strconv.Atoi(f[1])
		if err != nil {
			return nil, ErrMalformedEntry
		}
		finals = append(finals, treeaut.State{Kind: treeaut.Internal, ID: uint32(id)})
	}

	nt, ok := lr.next()
	if !ok || nt[0] != "NTRANS" {
		return nil, fmt.Errorf("%w: expected NTRANS", ErrMalformedEntry)
	}
	nTrans, err := strconv.Atoi(nt[1])
	if err != nil {
		return nil, ErrMalformedEntry
	}
	for i := 0; i < nTrans; i++ {
		tf, ok := lr.next()
		if !ok || tf[0] != "TRANS" {
			return nil, fmt.Errorf("%w: expected TRANS", ErrMalformedEntry)
		}
		arity, err := strconv.Atoi(tf[1])
		if err != nil {
			return nil, ErrMalformedEntry
		}
		children := make([]treeaut.State, arity)
		for c := 0; c < arity; c++ {
			cf, ok := lr.next()
			if !ok || cf[0] != "CHILD" {
				return nil, fmt.Errorf("%w: expected CHILD", ErrMalformedEntry)
			}
			st, err := parseState(cf[1:])
			if err != nil {
				return nil, err
			}
			children[c] = st
		}
		lblID, err := readLabel(lr, backend.Arena)
		if err != nil {
			return nil, err
		}
		rf, ok := lr.next()
		if !ok || rf[0] != "RHS" {
			return nil, fmt.Errorf("%w: expected RHS", ErrMalformedEntry)
		}
		rhs, err := parseState(rf[1:])
		if err != nil {
			return nil, err
		}
		ta.AddTransition(children, lblID, rhs)
	}
	for _, fs := range finals {
		ta.AddFinal(fs)
	}

	if end, ok := lr.next(); !ok || end[0] != "ENDROOT" {
		return nil, fmt.Errorf("%w: expected ENDROOT", ErrMalformedEntry)
	}
	return ta, nil
}
