package graph

// ShortestPath returns the edges of an unweighted shortest directed path
// from -> to, found by breadth-first search. Successors are expanded in
// insertion order, so among equally short paths the first discovered wins.
// It returns nil when either endpoint is missing, when from == to, or when
// to is unreachable.
func (g *Graph) ShortestPath(from, to string) []Relation {
	if !g.HasEntity(from) || !g.HasEntity(to) || from == to {
		return nil
	}

	parent := map[string]string{from: ""}
	queue := []string{from}

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		for _, next := range g.out[node] {
			if _, seen := parent[next]; seen {
				continue
			}
			parent[next] = node
			if next == to {
				return g.pathTo(parent, from, to)
			}
			queue = append(queue, next)
		}
	}
	return nil
}

// pathTo walks the BFS parent links back from to and returns the edges in
// forward order.
func (g *Graph) pathTo(parent map[string]string, from, to string) []Relation {
	var nodes []string
	for n := to; n != from; n = parent[n] {
		nodes = append(nodes, n)
	}
	nodes = append(nodes, from)

	path := make([]Relation, 0, len(nodes)-1)
	for i := len(nodes) - 1; i > 0; i-- {
		r, _ := g.Edge(nodes[i], nodes[i-1])
		path = append(path, r)
	}
	return path
}
