package model

import (
	"fmt"
	"sort"
)

// EdgeID identifies one edge inside a scope graph.
type EdgeID int

// Edge is a directed dependency between two sibling artifacts.
type Edge struct {
	ID   EdgeID
	From ID
	To   ID
}

type edgeKey struct {
	from ID
	to   ID
}

// Graph is the dependency graph of one scope. Its node set is exactly the
// children of the enclosing artifact; at most one edge exists per ordered
// pair and self-loops are forbidden.
type Graph struct {
	nodes    []ID
	nodeSet  map[ID]bool
	edgeIDs  map[edgeKey]EdgeID
	out      map[ID][]ID
	in       map[ID][]ID
	nextEdge EdgeID
}

func newGraph() Graph {
	return Graph{
		nodeSet: make(map[ID]bool),
		edgeIDs: make(map[edgeKey]EdgeID),
		out:     make(map[ID][]ID),
		in:      make(map[ID][]ID),
	}
}

func (g *Graph) addNode(id ID) {
	if g.nodeSet[id] {
		return
	}
	g.nodeSet[id] = true
	g.nodes = append(g.nodes, id)
}

// Nodes returns the node ids in insertion order.
func (g *Graph) Nodes() []ID {
	out := make([]ID, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// HasEdge reports whether the edge from→to exists.
func (g *Graph) HasEdge(from, to ID) bool {
	_, ok := g.edgeIDs[edgeKey{from, to}]
	return ok
}

// InsertEdge adds the edge from→to and returns its id. A self-edge or an
// unknown endpoint fails with ErrInvalidGraphMutation. Re-inserting an
// existing edge returns the original id without error.
func (g *Graph) InsertEdge(from, to ID) (EdgeID, error) {
	if from == to {
		return 0, fmt.Errorf("%w: self-edge on %d", ErrInvalidGraphMutation, from)
	}
	if !g.nodeSet[from] || !g.nodeSet[to] {
		return 0, fmt.Errorf("%w: edge %d->%d endpoint not in graph", ErrInvalidGraphMutation, from, to)
	}
	key := edgeKey{from, to}
	if id, ok := g.edgeIDs[key]; ok {
		return id, nil
	}
	id := g.nextEdge
	g.nextEdge++
	g.edgeIDs[key] = id
	g.out[from] = append(g.out[from], to)
	g.in[to] = append(g.in[to], from)
	return id, nil
}

// RemoveEdge deletes the edge from→to if present.
func (g *Graph) RemoveEdge(from, to ID) {
	key := edgeKey{from, to}
	if _, ok := g.edgeIDs[key]; !ok {
		return
	}
	delete(g.edgeIDs, key)
	g.out[from] = removeID(g.out[from], to)
	g.in[to] = removeID(g.in[to], from)
}

// Successors returns the targets of edges leaving id, sorted.
func (g *Graph) Successors(id ID) []ID {
	return sortedCopy(g.out[id])
}

// Predecessors returns the sources of edges entering id, sorted.
func (g *Graph) Predecessors(id ID) []ID {
	return sortedCopy(g.in[id])
}

// Edges returns every edge sorted by (from, to).
func (g *Graph) Edges() []Edge {
	edges := make([]Edge, 0, len(g.edgeIDs))
	for key, id := range g.edgeIDs {
		edges = append(edges, Edge{ID: id, From: key.from, To: key.to})
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	return edges
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	return len(g.edgeIDs)
}

func sortedCopy(ids []ID) []ID {
	out := make([]ID, len(ids))
	copy(out, ids)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func removeID(ids []ID, id ID) []ID {
	out := ids[:0]
	for _, cur := range ids {
		if cur != id {
			out = append(out, cur)
		}
	}
	return out
}
