package graph

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// summaryTopN is the number of entities listed in a summary.
const summaryTopN = 5

// Stats describes the size and shape of a graph.
type Stats struct {
	Nodes               int     `json:"nodes" yaml:"nodes" msgpack:"nodes"`
	Edges               int     `json:"edges" yaml:"edges" msgpack:"edges"`
	ConnectedComponents int     `json:"connected_components" yaml:"connected_components" msgpack:"connected_components"`
	Density             float64 `json:"density" yaml:"density" msgpack:"density"`
}

// ComputeStats counts nodes, edges and weakly connected components. Density
// is E / (N*(N-1)) for a directed graph, rounded to four decimals, and zero
// when there are fewer than two nodes.
func ComputeStats(g *Graph) Stats {
	if g.IsEmpty() {
		return Stats{}
	}
	n, e := g.NumNodes(), g.NumEdges()
	var density float64
	if n > 1 {
		density = float64(e) / float64(n*(n-1))
		density = math.Round(density*10000) / 10000
	}
	return Stats{
		Nodes:               n,
		Edges:               e,
		ConnectedComponents: g.NumComponents(),
		Density:             density,
	}
}

// Summary renders a short text report: counts plus the entities with the
// most connections.
func Summary(g *Graph) string {
	if g.IsEmpty() {
		return "The knowledge graph is empty."
	}

	st := ComputeStats(g)
	parts := []string{
		"Knowledge Graph Summary:",
		fmt.Sprintf("- %d entities", st.Nodes),
		fmt.Sprintf("- %d relationships", st.Edges),
		fmt.Sprintf("- %d connected components", st.ConnectedComponents),
		"\nTop entities by connections:",
	}
	for _, e := range TopEntities(g, summaryTopN) {
		parts = append(parts, fmt.Sprintf("- %s (%d connections)", e.Label, e.Degree))
	}
	return strings.Join(parts, "\n")
}

// RankedEntity is a label with its total degree.
type RankedEntity struct {
	Label  string `json:"label"`
	Degree int    `json:"degree"`
}

// TopEntities returns up to n labels ordered by total degree, highest first.
// Ties keep node insertion order.
func TopEntities(g *Graph, n int) []RankedEntity {
	ranked := make([]RankedEntity, 0, g.NumNodes())
	for _, label := range g.Labels() {
		ranked = append(ranked, RankedEntity{Label: label, Degree: g.Degree(label)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Degree > ranked[j].Degree
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
