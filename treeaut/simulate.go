package treeaut

import (
	"fmt"
	"sort"

	"github.com/forestfa/fa/label"
)

// MatchFunc reports whether two transition labels may be considered the
// "same symbol" for the purposes of height abstraction / minimization
// (e.g. node-tag equality while ignoring which boxes decorate a node).
type MatchFunc func(a, b label.LabelID) bool

// CmpFunc is the final, possibly asymmetric, compatibility check applied
// once the iterative refinement has converged (e.g. equal cutpoint
// signatures).
type CmpFunc func(a, b State) bool

// Relation is an equivalence computed by HeightAbstraction or the
// simulation core of Minimized: states in the same class are related.
// The representative of a class is its lowest-indexed state ("lower
// state index wins as class representative").
type Relation struct {
	class map[State]int
	order []State // states grouped by appearance, used to pick representatives
}

// Related reports whether a and b are in the same class.
func (r Relation) Related(a, b State) bool {
	ca, aok := r.class[a]
	cb, bok := r.class[b]
	return aok && bok && ca == cb
}

// Representative returns the canonical state of q's class (q itself if
// q is not tracked by r).
func (r Relation) Representative(q State) State {
	c, ok := r.class[q]
	if !ok {
		return q
	}
	best := q
	for _, s := range r.order {
		if r.class[s] == c && stateLess(s, best) {
			best = s
		}
	}
	return best
}

// labelClasses groups labels into match-equivalence classes once, ahead
// of the per-round refinement, since match is assumed to not depend on
// the states it connects.
func labelClasses(t *TA, match MatchFunc) map[label.LabelID]int {
	seen := make([]label.LabelID, 0)
	classOf := make(map[label.LabelID]int)
	for tr := range t.trans {
		if _, ok := classOf[tr.Label]; ok {
			continue
		}
		assigned := false
		for i, rep := range seen {
			if match(rep, tr.Label) {
				classOf[tr.Label] = i
				assigned = true
				break
			}
		}
		if !assigned {
			classOf[tr.Label] = len(seen)
			seen = append(seen, tr.Label)
		}
	}
	return classOf
}

// refine computes, by iterative partition refinement, an approximation of
// downward simulation on t: two states are related after round r iff
// every producing transition (one with that state as RHS) of one has a
// label-matching, pointwise-related (at round r-1) counterpart in the
// other, starting from the universal relation. rounds < 0
// means "iterate to a fixpoint" (used by Minimized); rounds >= 0 bounds
// the iteration count (used by HeightAbstraction).
//
// Data leaves are seeded into their own singleton class so they are never
// merged with an internal state or with a different data leaf.
func refine(t *TA, match MatchFunc, rounds int) Relation {
	lblClass := labelClasses(t, match)

	states := t.States()
	classOf := make(map[State]int, len(states))
	// Seed: data leaves are each alone; every internal state starts in
	// one shared class (the "universal equivalence").
	nextID := 1
	for _, q := range states {
		if q.Kind == DataLeaf {
			classOf[q] = nextID
			nextID++
		} else {
			classOf[q] = 0
		}
	}

	producedBy := make(map[State][]Transition)
	for tr := range t.trans {
		producedBy[tr.RHS] = append(producedBy[tr.RHS], tr)
	}

	signature := func(q State, cls map[State]int) string {
		trs := producedBy[q]
		parts := make([]string, 0, len(trs))
		for _, tr := range trs {
			children := t.Children(tr)
			childClasses := make([]int, len(children))
			for i, c := range children {
				childClasses[i] = cls[c]
			}
			parts = append(parts, fmt.Sprintf("%d:%v", lblClass[tr.Label], childClasses))
		}
		sort.Strings(parts)
		return fmt.Sprintf("%v", parts)
	}

	round := 0
	for rounds < 0 || round < rounds {
		sigToClass := make(map[string]int)
		newClassOf := make(map[State]int, len(states))
		for _, q := range states {
			if q.Kind == DataLeaf {
				newClassOf[q] = classOf[q]
				continue
			}
			sig := signature(q, classOf)
			id, ok := sigToClass[sig]
			if !ok {
				id = len(sigToClass) + nextID
				sigToClass[sig] = id
			}
			newClassOf[q] = id
		}
		changed := false
		for _, q := range states {
			if newClassOf[q] != classOf[q] {
				changed = true
				break
			}
		}
		classOf = newClassOf
		round++
		if rounds < 0 && !changed {
			break
		}
	}

	return Relation{class: classOf, order: states}
}

// HeightAbstraction runs h rounds of downward refinement, then
// intersects the result with cmp (applied pairwise, both directions)
// and symmetrizes it.
func (t *TA) HeightAbstraction(h int, match MatchFunc, cmp CmpFunc) Relation {
	rel := refine(t, match, h)
	return filterAndSymmetrize(t, rel, cmp)
}

// Minimized returns a language-equivalent TA whose states are quotiented
// by downward simulation (approximated here by refinement to a fixpoint,
// see DESIGN.md) intersected with cons; ties among equivalent states
// break toward the lower state index.
func (t *TA) Minimized(match MatchFunc, cons CmpFunc) *TA {
	rel := refine(t, match, -1)
	rel = filterAndSymmetrize(t, rel, cons)
	return t.Collapsed(rel)
}

func filterAndSymmetrize(t *TA, rel Relation, cmp CmpFunc) Relation {
	if cmp == nil {
		return rel
	}
	// Build new classes: within each original class, split further by
	// pairwise cmp so that the final relation is still an equivalence
	// (transitive closure of the symmetrized cmp-filtered pairs).
	byClass := make(map[int][]State)
	for _, q := range rel.order {
		byClass[rel.class[q]] = append(byClass[rel.class[q]], q)
	}
	newClass := make(map[State]int, len(rel.order))
	next := 0
	for _, group := range byClass {
		assigned := make([]int, len(group))
		for i := range assigned {
			assigned[i] = -1
		}
		for i := range group {
			if assigned[i] != -1 {
				continue
			}
			assigned[i] = next
			for j := i + 1; j < len(group); j++ {
				if assigned[j] != -1 {
					continue
				}
				if (cmp(group[i], group[j]) || cmp(group[j], group[i])) && group[i].Kind == group[j].Kind {
					assigned[j] = next
				}
			}
			next++
		}
		for i, q := range group {
			newClass[q] = assigned[i]
		}
	}
	return Relation{class: newClass, order: rel.order}
}

// Collapsed returns the quotient of t under rel: transitions are rewritten
// by mapping every state to its class representative, and the final
// states of the quotient are the images of t's final states.
func (t *TA) Collapsed(rel Relation) *TA {
	out := New(t.pool, t.arena)
	rep := func(q State) State { return rel.Representative(q) }
	for tr := range t.trans {
		children := t.Children(tr)
		collapsed := make([]State, len(children))
		for i, c := range children {
			collapsed[i] = rep(c)
		}
		out.AddTransition(collapsed, tr.Label, rep(tr.RHS))
	}
	for _, q := range t.FinalStates() {
		out.AddFinal(rep(q))
	}
	return out
}
