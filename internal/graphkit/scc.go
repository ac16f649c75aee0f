package graphkit

// StronglyConnectedComponents returns the SCCs of g using an iterative
// Tarjan traversal (explicit stack, no recursion). Each SCC has its members
// sorted ascending; the list of SCCs is sorted by smallest member id.
func StronglyConnectedComponents(g *Graph) [][]NodeID {
	n := g.Len()
	index := make(map[NodeID]int, n)
	lowlink := make(map[NodeID]int, n)
	onStack := make(map[NodeID]bool, n)
	var stack []NodeID
	var sccs [][]NodeID
	counter := 0

	type frame struct {
		node NodeID
		succ []NodeID
		next int
	}

	for _, root := range g.Nodes() {
		if _, seen := index[root]; seen {
			continue
		}

		work := []frame{{node: root, succ: g.Successors(root)}}
		index[root] = counter
		lowlink[root] = counter
		counter++
		stack = append(stack, root)
		onStack[root] = true

		for len(work) > 0 {
			top := &work[len(work)-1]
			advanced := false
			for top.next < len(top.succ) {
				next := top.succ[top.next]
				top.next++
				if _, seen := index[next]; !seen {
					index[next] = counter
					lowlink[next] = counter
					counter++
					stack = append(stack, next)
					onStack[next] = true
					work = append(work, frame{node: next, succ: g.Successors(next)})
					advanced = true
					break
				}
				if onStack[next] && index[next] < lowlink[top.node] {
					lowlink[top.node] = index[next]
				}
			}
			if advanced {
				continue
			}

			// node finished: pop its SCC if it is a root
			finished := top.node
			work = work[:len(work)-1]
			if len(work) > 0 {
				parent := &work[len(work)-1]
				if lowlink[finished] < lowlink[parent.node] {
					lowlink[parent.node] = lowlink[finished]
				}
			}
			if lowlink[finished] == index[finished] {
				var scc []NodeID
				for {
					member := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					onStack[member] = false
					scc = append(scc, member)
					if member == finished {
						break
					}
				}
				sortNodeIDs(scc)
				sccs = append(sccs, scc)
			}
		}
	}

	sortSCCs(sccs)
	return sccs
}

func sortSCCs(sccs [][]NodeID) {
	for i := 1; i < len(sccs); i++ {
		for j := i; j > 0 && sccs[j][0] < sccs[j-1][0]; j-- {
			sccs[j], sccs[j-1] = sccs[j-1], sccs[j]
		}
	}
}
