package graph

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Snapshot is an ordered, serialisable copy of a graph. Rebuilding from a
// snapshot reproduces node order, node types and edges exactly.
type Snapshot struct {
	Nodes []Entity   `json:"nodes" msgpack:"nodes"`
	Edges []Relation `json:"edges" msgpack:"edges"`
}

// Snapshot returns the graph's nodes and edges in insertion order.
func (g *Graph) Snapshot() Snapshot {
	return Snapshot{Nodes: g.Entities(), Edges: g.Relations()}
}

// FromSnapshot rebuilds a graph from a snapshot.
func FromSnapshot(s Snapshot) *Graph {
	g := New()
	for _, n := range s.Nodes {
		g.AddEntity(n)
	}
	for _, r := range s.Edges {
		g.AddRelation(r)
	}
	return g
}

// Encode serialises g with msgpack.
func Encode(g *Graph) ([]byte, error) {
	b, err := msgpack.Marshal(g.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("graph.Encode: %w", err)
	}
	return b, nil
}

// Decode rebuilds a graph serialised by Encode.
func Decode(data []byte) (*Graph, error) {
	var s Snapshot
	if err := msgpack.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("graph.Decode: %w", err)
	}
	return FromSnapshot(s), nil
}
