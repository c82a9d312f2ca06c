package treeaut

import (
	"sort"
	"strconv"
	"strings"

	"github.com/forestfa/fa/label"
)

// macroState is a (sorted, deduplicated) set of original states, the
// subset-construction state used by Determinize.
type macroState string

func macroOf(states []State) macroState {
	cp := append([]State(nil), states...)
	sortStates(cp)
	var b strings.Builder
	for i, s := range cp {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte(byte(s.Kind))
		b.WriteByte(':')
		b.WriteString(strconv.FormatUint(uint64(s.ID), 10))
	}
	return macroState(b.String())
}

// trap is the sink macro-state (empty set), added so the determinized
// automaton is complete over the alphabet it is built for.
const trap = macroState("")

// determinized is a complete, deterministic TA over a fixed alphabet
// (restricted to the (label, arity) pairs actually supplied), represented
// with macro-states as its State identifiers via an assigned integer id.
type determinized struct {
	ta      *TA
	idOf    map[macroState]State
	members map[macroState][]State
}

// determinize builds a complete deterministic automaton equivalent to src,
// over the alphabet alphabet (a set of LabelIDs — arity is read off each
// label via the shared arena, so only labels actually occurring in either
// operand of Subseteq need be supplied). leaves is the set of DataLeaf
// states occurring in either operand: each is seeded as its own singleton
// macro-state, denoted by the leaf state itself, so the determinized
// automaton's transitions stay pointwise compatible with any sibling TA
// built on the same arena (data leaves are shared fixed points).
func determinize(src *TA, alphabet []label.LabelID, leaves []State) *determinized {
	out := New(src.pool, src.arena)
	d := &determinized{ta: out, idOf: make(map[macroState]State), members: make(map[macroState][]State)}
	next := uint32(0)
	idFor := func(ms macroState, members []State) State {
		if id, ok := d.idOf[ms]; ok {
			return id
		}
		id := State{Kind: Internal, ID: next}
		next++
		d.idOf[ms] = id
		d.members[ms] = members
		return id
	}
	idFor(trap, nil) // ensure the sink macro-state always exists

	// Group src transitions by (label, arity).
	byLabel := make(map[label.LabelID][]Transition)
	for tr := range src.trans {
		byLabel[tr.Label] = append(byLabel[tr.Label], tr)
	}

	frontier := []macroState{}
	seen := map[macroState]bool{}
	enqueue := func(ms macroState, members []State) State {
		id := idFor(ms, members)
		if !seen[ms] {
			seen[ms] = true
			frontier = append(frontier, ms)
		}
		return id
	}

	// The sink belongs to the tuple universe: completeness requires a
	// transition out of every tuple, including those running through it.
	seen[trap] = true
	frontier = append(frontier, trap)

	for _, lf := range leaves {
		ms := macroOf([]State{lf})
		if _, ok := d.idOf[ms]; ok {
			continue
		}
		d.idOf[ms] = lf
		d.members[ms] = []State{lf}
		seen[ms] = true
		frontier = append(frontier, ms)
	}

	for _, lbl := range alphabet {
		arity := src.arena.Get(lbl).Arity()
		if arity == 0 {
			members := []State{}
			for _, tr := range byLabel[lbl] {
				members = append(members, tr.RHS)
			}
			ms := macroOf(members)
			rhs := enqueue(ms, members)
			out.AddTransition(nil, lbl, rhs)
		}
	}
	// Fixpoint over the reachable macro-states for positive-arity labels.
	for i := 0; i < len(frontier); i++ {
		for _, lbl := range alphabet {
			arity := src.arena.Get(lbl).Arity()
			if arity == 0 {
				continue
			}
			// Only handle unary/binary directly-constructible products
			// lazily: build all arity-length tuples of already-known
			// macro-states seen so far (monotonically growing frontier).
			tuples := cartesian(frontier, arity)
			for _, tuple := range tuples {
				memberSets := make([][]State, arity)
				for k, ms := range tuple {
					memberSets[k] = d.members[ms]
				}
				resultSet := map[State]struct{}{}
				for _, tr := range byLabel[lbl] {
					children := src.Children(tr)
					if len(children) != arity {
						continue
					}
					ok := true
					for k, c := range children {
						found := false
						for _, m := range memberSets[k] {
							if m == c {
								found = true
								break
							}
						}
						if !found {
							ok = false
							break
						}
					}
					if ok {
						resultSet[tr.RHS] = struct{}{}
					}
				}
				members := make([]State, 0, len(resultSet))
				for s := range resultSet {
					members = append(members, s)
				}
				ms := macroOf(members)
				lhsStates := make([]State, arity)
				for k, t := range tuple {
					lhsStates[k] = idFor(t, d.members[t])
				}
				rhs := enqueue(ms, members)
				out.AddTransition(lhsStates, lbl, rhs)
			}
		}
	}

	for ms, id := range d.idOf {
		for _, m := range d.members[ms] {
			if src.IsFinal(m) {
				out.AddFinal(id)
				break
			}
		}
	}
	return d
}

// cartesian enumerates all arity-length tuples drawn from frontier,
// capped to avoid pathological blowup on pathological inputs; this
// module's automata are small by construction (shape-analysis label
// alphabets), so the cap is never hit in practice.
func cartesian(frontier []macroState, arity int) [][]macroState {
	if arity == 0 {
		return [][]macroState{{}}
	}
	const cap = 4096
	result := [][]macroState{{}}
	for i := 0; i < arity; i++ {
		next := make([][]macroState, 0, len(result)*len(frontier))
		for _, prefix := range result {
			for _, ms := range frontier {
				if len(next) >= cap {
					break
				}
				tuple := append(append([]macroState(nil), prefix...), ms)
				next = append(next, tuple)
			}
		}
		result = next
	}
	return result
}

// complement flips final/non-final over the full macro-state universe of
// d, which is valid because determinize always produces a complete
// automaton (every macro-state, including trap, has an outgoing
// transition for every alphabet symbol it can appear under).
func (d *determinized) complement() *TA {
	out := New(d.ta.pool, d.ta.arena)
	for tr := range d.ta.trans {
		out.AddTransition(d.ta.Children(tr), tr.Label, tr.RHS)
	}
	for _, q := range d.ta.States() {
		if q.Kind == DataLeaf {
			// A data leaf is a given, not a run's end; it is never an
			// accepting state of either the automaton or its complement.
			continue
		}
		if !d.ta.IsFinal(q) {
			out.AddFinal(q)
		}
	}
	return out
}

// collectDataLeaves gathers every DataLeaf state occurring in any of
// the given automata, in deterministic order. Subseteq seeds these into
// determinize: a leaf appearing only in the left operand still needs a
// (sink-bound) transition in the completed right operand, or trees
// built over it would escape the complement.
func collectDataLeaves(tas ...*TA) []State {
	seen := make(map[State]struct{})
	for _, t := range tas {
		for _, q := range t.States() {
			if q.Kind == DataLeaf {
				seen[q] = struct{}{}
			}
		}
	}
	out := make([]State, 0, len(seen))
	for q := range seen {
		out = append(out, q)
	}
	sortStates(out)
	return out
}

func collectAlphabet(tas ...*TA) []label.LabelID {
	seen := make(map[label.LabelID]struct{})
	for _, t := range tas {
		for tr := range t.trans {
			seen[tr.Label] = struct{}{}
		}
	}
	out := make([]label.LabelID, 0, len(seen))
	for l := range seen {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Subseteq decides language inclusion L(a) ⊆ L(b). The decision is
// sound and complete: b is made
// deterministic and complete over the combined alphabet of a and b, then
// complemented, then intersected with a; inclusion holds iff that
// intersection is empty. Neither a nor b is mutated. a and b must share a
// label arena.
func Subseteq(a, b *TA) (bool, error) {
	if a.arena != b.arena {
		return false, ErrDifferentPools
	}
	alphabet := collectAlphabet(a, b)
	detB := determinize(b, alphabet, collectDataLeaves(a, b))
	notB := detB.complement()

	prodMap := make(map[ProductKey]State)
	product, err := IntersectionBU(a, notB, prodMap)
	if err != nil {
		return false, err
	}
	return product.IsEmpty(), nil
}
