package graph

// Components returns the weakly connected components of the graph: maximal
// sets of labels reachable from one another when edge direction is ignored.
// Components are listed in the insertion order of their first node, and the
// labels of each component in BFS discovery order.
func (g *Graph) Components() [][]string {
	if g.IsEmpty() {
		return nil
	}

	// Undirected adjacency over node indices.
	adj := make([][]int, len(g.nodes))
	for _, k := range g.edgeOrder {
		si, ti := g.index[k.from], g.index[k.to]
		adj[si] = append(adj[si], ti)
		adj[ti] = append(adj[ti], si)
	}

	visited := make([]bool, len(g.nodes))
	var components [][]string

	for i := range g.nodes {
		if visited[i] {
			continue
		}
		var comp []string
		queue := []int{i}
		visited[i] = true
		for len(queue) > 0 {
			node := queue[0]
			queue = queue[1:]
			comp = append(comp, g.nodes[node].Label)
			for _, to := range adj[node] {
				if !visited[to] {
					visited[to] = true
					queue = append(queue, to)
				}
			}
		}
		components = append(components, comp)
	}
	return components
}

// NumComponents returns the number of weakly connected components.
func (g *Graph) NumComponents() int {
	return len(g.Components())
}
