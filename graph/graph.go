// Package graph turns text chunks into a directed entity-relation graph and
// provides the read-only traversal and introspection used to answer
// questions against it.
//
// A Graph is a simple directed graph: nodes are unique by label and kept in
// insertion order, and there is at most one edge per ordered (from, to)
// pair. Adding the same pair again overwrites its label. A Graph has no
// internal locking; once a Builder returns it, it must not be modified, which
// makes it safe for any number of concurrent readers. Every read method
// accepts a nil *Graph and treats it as empty.
package graph

type edgeKey struct {
	from, to string
}

// Graph is a directed entity-relation graph.
type Graph struct {
	nodes []Entity
	index map[string]int

	edges     map[edgeKey]string // relation label per ordered pair
	edgeOrder []edgeKey
	out       map[string][]string // successors in insertion order
	in        map[string][]string // predecessors in insertion order
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		index: make(map[string]int),
		edges: make(map[edgeKey]string),
		out:   make(map[string][]string),
		in:    make(map[string][]string),
	}
}

// --- construction ---

// AddEntity adds e if no node with the same label exists. It reports whether
// the node was added. An empty Type defaults to TypeEntity.
func (g *Graph) AddEntity(e Entity) bool {
	if _, ok := g.index[e.Label]; ok {
		return false
	}
	if e.Type == "" {
		e.Type = TypeEntity
	}
	g.index[e.Label] = len(g.nodes)
	g.nodes = append(g.nodes, e)
	return true
}

// AddRelation adds the directed edge r.From -> r.To. Missing endpoints are
// added as plain entities so the graph never holds a dangling edge. If the
// pair already has an edge its label is replaced.
func (g *Graph) AddRelation(r Relation) {
	g.AddEntity(Entity{Label: r.From})
	g.AddEntity(Entity{Label: r.To})

	k := edgeKey{r.From, r.To}
	if _, exists := g.edges[k]; !exists {
		g.edgeOrder = append(g.edgeOrder, k)
		g.out[r.From] = append(g.out[r.From], r.To)
		g.in[r.To] = append(g.in[r.To], r.From)
	}
	g.edges[k] = r.Label
}

// --- nodes ---

// NumNodes returns the number of entities.
func (g *Graph) NumNodes() int {
	if g == nil {
		return 0
	}
	return len(g.nodes)
}

// IsEmpty reports whether the graph has no nodes. A nil graph is empty.
func (g *Graph) IsEmpty() bool {
	return g.NumNodes() == 0
}

// HasEntity reports whether a node with exactly this label exists.
func (g *Graph) HasEntity(label string) bool {
	if g == nil {
		return false
	}
	_, ok := g.index[label]
	return ok
}

// Entity returns the node with the given label.
func (g *Graph) Entity(label string) (Entity, bool) {
	if g == nil {
		return Entity{}, false
	}
	i, ok := g.index[label]
	if !ok {
		return Entity{}, false
	}
	return g.nodes[i], true
}

// Entities returns a copy of all nodes in insertion order.
func (g *Graph) Entities() []Entity {
	if g == nil {
		return nil
	}
	out := make([]Entity, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Labels returns all node labels in insertion order.
func (g *Graph) Labels() []string {
	if g == nil {
		return nil
	}
	out := make([]string, len(g.nodes))
	for i, n := range g.nodes {
		out[i] = n.Label
	}
	return out
}

// --- edges ---

// NumEdges returns the number of distinct ordered pairs joined by an edge.
func (g *Graph) NumEdges() int {
	if g == nil {
		return 0
	}
	return len(g.edgeOrder)
}

// Edge returns the edge from -> to, if any.
func (g *Graph) Edge(from, to string) (Relation, bool) {
	if g == nil {
		return Relation{}, false
	}
	label, ok := g.edges[edgeKey{from, to}]
	if !ok {
		return Relation{}, false
	}
	return Relation{From: from, To: to, Label: label}, true
}

// Relations returns every edge in the order its pair was first added.
func (g *Graph) Relations() []Relation {
	if g == nil {
		return nil
	}
	out := make([]Relation, len(g.edgeOrder))
	for i, k := range g.edgeOrder {
		out[i] = Relation{From: k.from, To: k.to, Label: g.edges[k]}
	}
	return out
}

// Out returns the edges where label is the subject.
func (g *Graph) Out(label string) []Relation {
	if g == nil {
		return nil
	}
	succ := g.out[label]
	out := make([]Relation, len(succ))
	for i, to := range succ {
		out[i] = Relation{From: label, To: to, Label: g.edges[edgeKey{label, to}]}
	}
	return out
}

// In returns the edges where label is the object.
func (g *Graph) In(label string) []Relation {
	if g == nil {
		return nil
	}
	pred := g.in[label]
	out := make([]Relation, len(pred))
	for i, from := range pred {
		out[i] = Relation{From: from, To: label, Label: g.edges[edgeKey{from, label}]}
	}
	return out
}

// Neighbors returns the labels adjacent to label in either direction:
// successors first, then predecessors not already listed.
func (g *Graph) Neighbors(label string) []string {
	if g == nil {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, l := range g.out[label] {
		if !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	for _, l := range g.in[label] {
		if !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	return out
}

// Degree returns the total number of edges touching label (in + out).
func (g *Graph) Degree(label string) int {
	if g == nil {
		return 0
	}
	return len(g.out[label]) + len(g.in[label])
}
