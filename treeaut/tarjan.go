package treeaut

// Tarjan computes the strongly connected components of the state graph
// induced by t's transitions (an edge from each LHS child to its RHS),
// using Tarjan's algorithm with an explicit growable stack rather than
// recursion; SCCs are reported as sets of state ids. Folding's
// forbidden-set computation (package fold) calls TarjanSCC directly
// over the cross-component reference graph to avoid trivialising a
// cyclic shape by folding through a root that is itself part of an
// unresolved cycle; this wrapper is the single-TA, state-level case of
// the same algorithm.
func Tarjan(t *TA) [][]State {
	adj := make(map[State][]State)
	for tr := range t.trans {
		for _, c := range t.Children(tr) {
			adj[c] = append(adj[c], tr.RHS)
		}
	}
	return TarjanSCC(t.States(), func(s State) []State { return adj[s] })
}

// TarjanSCC computes the strongly connected components of the directed
// graph (nodes, adjOf) using Tarjan's algorithm with an explicit
// growable stack rather than recursion. It is generic so the same
// implementation serves both a TA's internal state graph (Tarjan above)
// and fold's cross-component root-reference graph.
func TarjanSCC[T comparable](nodes []T, adjOf func(T) []T) [][]T {
	type frame struct {
		node     T
		children []T
		idx      int
	}

	index := make(map[T]int)
	lowlink := make(map[T]int)
	onStack := make(map[T]bool)
	var stack []T
	var sccs [][]T
	next := 0

	var work []frame
	for _, root := range nodes {
		if _, ok := index[root]; ok {
			continue
		}
		work = append(work, frame{node: root, children: adjOf(root)})
		index[root] = next
		lowlink[root] = next
		next++
		stack = append(stack, root)
		onStack[root] = true

		for len(work) > 0 {
			top := &work[len(work)-1]
			if top.idx < len(top.children) {
				w := top.children[top.idx]
				top.idx++
				if _, seen := index[w]; !seen {
					index[w] = next
					lowlink[w] = next
					next++
					stack = append(stack, w)
					onStack[w] = true
					work = append(work, frame{node: w, children: adjOf(w)})
				} else if onStack[w] {
					if index[w] < lowlink[top.node] {
						lowlink[top.node] = index[w]
					}
				}
				continue
			}
			// Done with top: pop, propagate lowlink to parent.
			v := top.node
			work = work[:len(work)-1]
			if len(work) > 0 {
				parent := &work[len(work)-1]
				if lowlink[v] < lowlink[parent.node] {
					lowlink[parent.node] = lowlink[v]
				}
			}
			if lowlink[v] == index[v] {
				var scc []T
				for {
					n := len(stack) - 1
					w := stack[n]
					stack = stack[:n]
					onStack[w] = false
					scc = append(scc, w)
					if w == v {
						break
					}
				}
				sccs = append(sccs, scc)
			}
		}
	}
	return sccs
}
