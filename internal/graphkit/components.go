package graphkit

import "sort"

// Components returns the weakly-connected components. Each component is
// discovered by an undirected BFS starting from the smallest unvisited id
// and returned with its members sorted ascending. Components are ordered by
// descending total node weight, ties broken by smallest member id.
func Components(g *Graph) [][]NodeID {
	visited := make(map[NodeID]bool, g.Len())
	var components [][]NodeID

	for _, start := range g.Nodes() {
		if visited[start] {
			continue
		}
		visited[start] = true
		component := []NodeID{start}
		queue := []NodeID{start}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			neighbors := append(g.Successors(cur), g.Predecessors(cur)...)
			sortNodeIDs(neighbors)
			for _, next := range neighbors {
				if visited[next] {
					continue
				}
				visited[next] = true
				component = append(component, next)
				queue = append(queue, next)
			}
		}
		sortNodeIDs(component)
		components = append(components, component)
	}

	sort.SliceStable(components, func(i, j int) bool {
		wi, wj := totalWeight(g, components[i]), totalWeight(g, components[j])
		if wi != wj {
			return wi > wj
		}
		return components[i][0] < components[j][0]
	})
	return components
}

func totalWeight(g *Graph, ids []NodeID) int {
	sum := 0
	for _, id := range ids {
		sum += g.weight[id]
	}
	return sum
}
