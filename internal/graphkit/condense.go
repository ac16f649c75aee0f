package graphkit

// Condensed is the condensation DAG of a graph: one node per SCC, an edge
// wherever any original edge crosses an SCC boundary (duplicates merged).
// Condensation node ids are the SCC indices 0..k-1 in the deterministic SCC
// order (sorted by smallest member id).
type Condensed struct {
	Graph   *Graph
	Members [][]NodeID        // SCC index -> original node ids, sorted
	SCCOf   map[NodeID]NodeID // original node id -> SCC index
}

// Condensation builds the condensation DAG of g.
func Condensation(g *Graph) *Condensed {
	sccs := StronglyConnectedComponents(g)
	sccOf := make(map[NodeID]NodeID, g.Len())
	for i, scc := range sccs {
		for _, id := range scc {
			sccOf[id] = NodeID(i)
		}
	}

	dag := New()
	for i, scc := range sccs {
		dag.AddNode(NodeID(i), totalWeight(g, scc))
	}
	seen := make(map[[2]NodeID]bool)
	nextEdge := EdgeID(0)
	for _, e := range g.Edges() {
		from, to := sccOf[e.From], sccOf[e.To]
		if from == to {
			continue
		}
		key := [2]NodeID{from, to}
		if seen[key] {
			continue
		}
		seen[key] = true
		dag.AddEdge(nextEdge, from, to)
		nextEdge++
	}

	return &Condensed{Graph: dag, Members: sccs, SCCOf: sccOf}
}

// AncestorCounts returns, for each node of a DAG, the number of distinct
// nodes that can reach it (transitive predecessors, exclusive of the node
// itself). Used to derive a topological rank.
func AncestorCounts(g *Graph) map[NodeID]int {
	counts := make(map[NodeID]int, g.Len())
	for _, id := range g.Nodes() {
		visited := make(map[NodeID]bool)
		stack := []NodeID{id}
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, pred := range g.Predecessors(cur) {
				if visited[pred] {
					continue
				}
				visited[pred] = true
				stack = append(stack, pred)
			}
		}
		delete(visited, id)
		counts[id] = len(visited)
	}
	return counts
}
