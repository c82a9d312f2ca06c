package treeaut_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forestfa/fa/dataval"
	"github.com/forestfa/fa/label"
	"github.com/forestfa/fa/treeaut"
)

// sym interns a node-label symbol identified by tag with the given arity;
// the same (tag, arity) pair always yields the same LabelID, and
// different tags never collide, so tests can treat tag as the symbol
// name.
func sym(arena *label.Arena, tag byte, arity int) label.LabelID {
	boxes := make([]label.AbstractBoxEntry, arity)
	for i := range boxes {
		boxes[i] = label.AbstractBoxEntry{
			Kind: label.AbstractSelector,
			Sel:  label.SelData{Offset: dataval.Offset(int(tag)*1000 + i)},
		}
	}
	id, err := arena.InternNode(boxes)
	if err != nil {
		panic(err)
	}
	return id
}

func dataLeaf(arena *label.Arena, n int64) treeaut.State {
	id := arena.InternData(dataval.NewInt(n))
	return treeaut.State{Kind: treeaut.DataLeaf, ID: uint32(id)}
}

func internal(id uint32) treeaut.State { return treeaut.State{Kind: treeaut.Internal, ID: id} }

func TestAddTransitionIdempotentAndTracksStates(t *testing.T) {
	arena := label.NewArena()
	pool := treeaut.NewLHSPool()
	ta := treeaut.New(pool, arena)

	a := sym(arena, 'a', 0)
	q0 := internal(0)
	ta.AddTransition(nil, a, q0)
	ta.AddTransition(nil, a, q0) // duplicate, no-op

	assert.Len(t, ta.Transitions(), 1)
	assert.Contains(t, ta.States(), q0)
}

func TestAddTransitionPanicsOnArityMismatch(t *testing.T) {
	arena := label.NewArena()
	pool := treeaut.NewLHSPool()
	ta := treeaut.New(pool, arena)
	f := sym(arena, 'f', 1)
	assert.Panics(t, func() {
		ta.AddTransition(nil, f, internal(0))
	})
}

// buildListAutomaton builds a TA for the language { f(a, f(a, ... f(a, nil)))}
// of singly-linked lists of length >= 0, terminated by the nullary symbol
// "nil"; f has arity 2, the first child is an opaque data leaf ("a"),
// the second is the tail.
func buildListAutomaton(arena *label.Arena, pool *treeaut.LHSPool) (*treeaut.TA, treeaut.State, treeaut.State, label.LabelID) {
	ta := treeaut.New(pool, arena)
	nilSym := sym(arena, 'n', 0)
	fSym := sym(arena, 'f', 2)
	qNil := internal(0)
	qList := internal(1)
	dataA := dataLeaf(arena, 1)

	ta.AddTransition(nil, nilSym, qNil)
	ta.AddFinal(qNil)
	ta.AddTransition([]treeaut.State{dataA, qNil}, fSym, qList)
	ta.AddTransition([]treeaut.State{dataA, qList}, fSym, qList)
	ta.AddFinal(qList)
	return ta, qNil, qList, fSym
}

func TestUselessAndUnreachableFreeKeepsLanguage(t *testing.T) {
	arena := label.NewArena()
	pool := treeaut.NewLHSPool()
	ta, _, _, _ := buildListAutomaton(arena, pool)

	// Add a useless transition through a state nothing ever reaches, and
	// an unreachable final state.
	f := sym(arena, 'f', 2)
	garbage := internal(99)
	dataA := dataLeaf(arena, 1)
	ta.AddTransition([]treeaut.State{dataA, garbage}, f, garbage)
	unreachableFinal := internal(100)
	ta.AddFinal(unreachableFinal)

	cleaned := ta.UselessAndUnreachableFree()
	assert.NotContains(t, cleaned.States(), garbage)
	assert.NotContains(t, cleaned.States(), unreachableFinal)
	assert.False(t, cleaned.IsEmpty())
	// The recursive case (qList, reached only through the data-leaf-led
	// transition) must survive: data leaves are axiomatically reachable,
	// not derived, so they must never block their parent's reachability.
	assert.Contains(t, cleaned.States(), internal(1))
}

func TestIsEmpty(t *testing.T) {
	arena := label.NewArena()
	pool := treeaut.NewLHSPool()
	ta := treeaut.New(pool, arena)
	assert.True(t, ta.IsEmpty())

	a := sym(arena, 'a', 0)
	ta.AddTransition(nil, a, internal(0))
	assert.True(t, ta.IsEmpty(), "state reachable but not final")

	ta.AddFinal(internal(0))
	assert.False(t, ta.IsEmpty())
}

func TestIntersectionBU(t *testing.T) {
	arena := label.NewArena()
	pool := treeaut.NewLHSPool()
	a, _, _, _ := buildListAutomaton(arena, pool)

	// b accepts only the empty list.
	b := treeaut.New(pool, arena)
	nilSym := sym(arena, 'n', 0)
	qNilB := internal(50)
	b.AddTransition(nil, nilSym, qNilB)
	b.AddFinal(qNilB)

	prodMap := make(map[treeaut.ProductKey]treeaut.State)
	prod, err := treeaut.IntersectionBU(a, b, prodMap)
	require.NoError(t, err)
	assert.False(t, prod.IsEmpty())

	// Intersecting with an automaton that accepts nothing yields empty.
	empty := treeaut.New(pool, arena)
	prodMap2 := make(map[treeaut.ProductKey]treeaut.State)
	prod2, err := treeaut.IntersectionBU(a, empty, prodMap2)
	require.NoError(t, err)
	assert.True(t, prod2.IsEmpty())
}

func TestUnionDisjoint(t *testing.T) {
	arena := label.NewArena()
	pool := treeaut.NewLHSPool()
	a, _, _, _ := buildListAutomaton(arena, pool)

	b := treeaut.New(pool, arena)
	aSym := sym(arena, 'z', 0)
	qOnly := internal(200)
	b.AddTransition(nil, aSym, qOnly)
	b.AddFinal(qOnly)

	u, err := treeaut.UnionDisjoint(a, b)
	require.NoError(t, err)
	assert.False(t, u.IsEmpty())
	assert.True(t, len(u.Transitions()) >= len(a.Transitions())+len(b.Transitions()))
}

func TestSubseteqSoundOnIdenticalAutomata(t *testing.T) {
	arena := label.NewArena()
	pool := treeaut.NewLHSPool()
	a, _, _, _ := buildListAutomaton(arena, pool)
	b, _, _, _ := buildListAutomaton(arena, pool)

	ok, err := treeaut.Subseteq(a, b)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = treeaut.Subseteq(b, a)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSubseteqDetectsStrictSuperset(t *testing.T) {
	arena := label.NewArena()
	pool := treeaut.NewLHSPool()
	a, _, _, _ := buildListAutomaton(arena, pool)

	// b accepts only the empty list: strictly smaller language.
	b := treeaut.New(pool, arena)
	nilSym := sym(arena, 'n', 0)
	qNilB := internal(77)
	b.AddTransition(nil, nilSym, qNilB)
	b.AddFinal(qNilB)

	ok, err := treeaut.Subseteq(b, a)
	require.NoError(t, err)
	assert.True(t, ok, "L(b) subset L(a)")

	ok, err = treeaut.Subseteq(a, b)
	require.NoError(t, err)
	assert.False(t, ok, "L(a) is not a subset of L(b)")
}

func TestRenameFixesDataLeaves(t *testing.T) {
	arena := label.NewArena()
	pool := treeaut.NewLHSPool()
	ta, _, _, fSym := buildListAutomaton(arena, pool)
	dataA := dataLeaf(arena, 1)

	sigma := map[treeaut.State]treeaut.State{
		internal(0): internal(500),
		dataA:       internal(999), // must be ignored: data leaves are fixed points
	}
	renamed, err := treeaut.Rename(ta, sigma, true)
	require.NoError(t, err)

	found := false
	for _, tr := range renamed.Transitions() {
		for _, c := range renamed.Children(tr) {
			if c == dataA {
				found = true
			}
			assert.NotEqual(t, internal(999), c)
		}
	}
	assert.True(t, found, "data leaf should still be present, unrenamed")
	_ = fSym
}

func TestHeightAbstractionCollapsesEquivalentStates(t *testing.T) {
	arena := label.NewArena()
	pool := treeaut.NewLHSPool()
	ta := treeaut.New(pool, arena)
	a := sym(arena, 'a', 0)
	f := sym(arena, 'f', 1)

	q1, q2 := internal(1), internal(2)
	p1, p2 := internal(11), internal(12)
	ta.AddTransition(nil, a, q1)
	ta.AddTransition(nil, a, q2)
	ta.AddTransition([]treeaut.State{q1}, f, p1)
	ta.AddTransition([]treeaut.State{q2}, f, p2)
	ta.AddFinal(p1)
	ta.AddFinal(p2)

	match := func(x, y label.LabelID) bool { return x == y }
	cmp := func(x, y treeaut.State) bool { return true }
	rel := ta.HeightAbstraction(2, match, cmp)
	assert.True(t, rel.Related(q1, q2))
	assert.True(t, rel.Related(p1, p2))

	collapsed := ta.Collapsed(rel)
	assert.False(t, collapsed.IsEmpty())
	assert.LessOrEqual(t, len(collapsed.States()), len(ta.States()))
}

func TestMinimizedPreservesLanguageAndShrinks(t *testing.T) {
	arena := label.NewArena()
	pool := treeaut.NewLHSPool()
	ta := treeaut.New(pool, arena)
	a := sym(arena, 'a', 0)
	f := sym(arena, 'f', 1)
	q1, q2 := internal(1), internal(2)
	p1, p2 := internal(11), internal(12)
	ta.AddTransition(nil, a, q1)
	ta.AddTransition(nil, a, q2)
	ta.AddTransition([]treeaut.State{q1}, f, p1)
	ta.AddTransition([]treeaut.State{q2}, f, p2)
	ta.AddFinal(p1)
	ta.AddFinal(p2)

	match := func(x, y label.LabelID) bool { return x == y }
	cons := func(x, y treeaut.State) bool { return true }
	min := ta.Minimized(match, cons)

	assert.LessOrEqual(t, len(min.States()), len(ta.States()))
	ok, err := treeaut.Subseteq(ta, min)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = treeaut.Subseteq(min, ta)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestTarjanFindsCycle(t *testing.T) {
	arena := label.NewArena()
	pool := treeaut.NewLHSPool()
	ta := treeaut.New(pool, arena)
	f := sym(arena, 'f', 1)
	q0, q1, q2 := internal(0), internal(1), internal(2)
	// q0 -> q1 -> q2 -> q0 (cycle), plus an isolated q3.
	ta.AddTransition([]treeaut.State{q0}, f, q1)
	ta.AddTransition([]treeaut.State{q1}, f, q2)
	ta.AddTransition([]treeaut.State{q2}, f, q0)
	q3 := internal(3)
	a := sym(arena, 'a', 0)
	ta.AddTransition(nil, a, q3)

	sccs := treeaut.Tarjan(ta)
	var big []treeaut.State
	for _, scc := range sccs {
		if len(scc) > 1 {
			big = scc
		}
	}
	require.NotNil(t, big)
	assert.ElementsMatch(t, []treeaut.State{q0, q1, q2}, big)
}
