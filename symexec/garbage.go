package symexec

import (
	"github.com/forestfa/fa/dataval"
	"github.com/forestfa/fa/diag"
	"github.com/forestfa/fa/forestaut"
)

// garbageCheck reports whether every present root of f is reachable
// from Vars by following references. On failure it returns a
// *diag.ProgramError carrying diag.ErrGarbageDetected.
func garbageCheck(f *forestaut.FA, loc diag.Location) error {
	cg := f.ConnectionGraph()
	live := make(map[dataval.RootIdx]bool)

	var mark func(dataval.RootIdx)
	mark = func(r dataval.RootIdx) {
		if live[r] {
			return
		}
		live[r] = true
		for _, t := range cg[r].Targets() {
			mark(t)
		}
	}

	for _, v := range f.Vars {
		if v.IsRef() {
			mark(v.RefValue().Root)
		}
	}

	for i, ta := range f.Roots {
		r := dataval.RootIdx(i)
		if ta == nil {
			continue
		}
		if !live[r] {
			return diag.NewProgramError(loc, diag.ErrGarbageDetected, nil, "")
		}
	}
	return nil
}
