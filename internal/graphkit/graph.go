// Package graphkit provides pure directed-graph primitives: weakly-connected
// components, strongly-connected components, condensation, ancestor counts,
// and transitive reduction. Every operation returns fresh values and never
// mutates its input; every ordering has an explicit tiebreaker so results are
// deterministic regardless of map iteration order.
package graphkit

import "sort"

// NodeID identifies a node. Callers map their own ids onto it.
type NodeID int

// EdgeID identifies an edge, preserved across Subgraph.
type EdgeID int

// Edge is a directed edge between two nodes.
type Edge struct {
	ID   EdgeID
	From NodeID
	To   NodeID
}

// Graph is a directed graph with weighted nodes. Weights feed the component
// ordering (descending total weight).
type Graph struct {
	nodes   []NodeID
	nodeSet map[NodeID]bool
	weight  map[NodeID]int
	out     map[NodeID][]NodeID
	in      map[NodeID][]NodeID
	edges   []Edge
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodeSet: make(map[NodeID]bool),
		weight:  make(map[NodeID]int),
		out:     make(map[NodeID][]NodeID),
		in:      make(map[NodeID][]NodeID),
	}
}

// AddNode inserts a node with the given weight. Re-adding updates the weight.
func (g *Graph) AddNode(id NodeID, weight int) {
	if !g.nodeSet[id] {
		g.nodeSet[id] = true
		g.nodes = append(g.nodes, id)
	}
	g.weight[id] = weight
}

// AddEdge inserts a directed edge. Unknown endpoints and self-loops are
// ignored; the kernel only ever sees graphs the model already validated.
func (g *Graph) AddEdge(id EdgeID, from, to NodeID) {
	if from == to || !g.nodeSet[from] || !g.nodeSet[to] {
		return
	}
	g.out[from] = append(g.out[from], to)
	g.in[to] = append(g.in[to], from)
	g.edges = append(g.edges, Edge{ID: id, From: from, To: to})
}

// Nodes returns all node ids sorted ascending.
func (g *Graph) Nodes() []NodeID {
	out := make([]NodeID, len(g.nodes))
	copy(out, g.nodes)
	sortNodeIDs(out)
	return out
}

// Edges returns all edges sorted by (from, to, id).
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		if out[i].To != out[j].To {
			return out[i].To < out[j].To
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// HasEdge reports whether any edge from→to exists.
func (g *Graph) HasEdge(from, to NodeID) bool {
	for _, t := range g.out[from] {
		if t == to {
			return true
		}
	}
	return false
}

// Successors returns the out-neighbors of id, sorted, duplicates removed.
func (g *Graph) Successors(id NodeID) []NodeID {
	return dedupeSorted(g.out[id])
}

// Predecessors returns the in-neighbors of id, sorted, duplicates removed.
func (g *Graph) Predecessors(id NodeID) []NodeID {
	return dedupeSorted(g.in[id])
}

// Weight returns the weight of id.
func (g *Graph) Weight(id NodeID) int {
	return g.weight[id]
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Subgraph returns the subgraph induced by keep, preserving edge ids.
func (g *Graph) Subgraph(keep []NodeID) *Graph {
	keepSet := make(map[NodeID]bool, len(keep))
	for _, id := range keep {
		keepSet[id] = true
	}
	sub := New()
	for _, id := range g.Nodes() {
		if keepSet[id] {
			sub.AddNode(id, g.weight[id])
		}
	}
	for _, e := range g.Edges() {
		if keepSet[e.From] && keepSet[e.To] {
			sub.AddEdge(e.ID, e.From, e.To)
		}
	}
	return sub
}

func sortNodeIDs(ids []NodeID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}

func dedupeSorted(ids []NodeID) []NodeID {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[NodeID]bool, len(ids))
	out := make([]NodeID, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sortNodeIDs(out)
	return out
}
