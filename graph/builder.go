package graph

import (
	"log/slog"
	"strings"
	"time"

	"github.com/bbiangul/kgqa/chunker"
)

// corpusSeparator joins input texts before segmentation.
const corpusSeparator = "\n\n"

// Builder constructs the knowledge graph from a batch of texts.
type Builder struct {
	chunker *chunker.Chunker
}

// NewBuilder creates a new graph builder. A nil chunker uses the default
// segmentation settings.
func NewBuilder(c *chunker.Chunker) *Builder {
	if c == nil {
		c = chunker.New(chunker.Config{})
	}
	return &Builder{chunker: c}
}

// Build joins texts with a blank line, segments the corpus once and
// assembles the graph chunk by chunk. An empty batch yields an empty graph.
func (b *Builder) Build(texts []string) *Graph {
	g, _ := b.BuildWithReport(texts)
	return g
}

// BuildWithReport is Build plus counters describing the run.
func (b *Builder) BuildWithReport(texts []string) (*Graph, BuildReport) {
	if len(texts) == 0 {
		return New(), BuildReport{}
	}
	chunks := b.chunker.Split(strings.Join(texts, corpusSeparator))
	return BuildFromChunks(chunks)
}

// BuildFromChunks assembles a graph from already segmented chunks, in order.
// Later chunks may add nodes and edges but never remove earlier ones.
func BuildFromChunks(chunks []string) (*Graph, BuildReport) {
	start := time.Now()
	g := New()
	report := BuildReport{Chunks: len(chunks)}

	for i, chunk := range chunks {
		entities := ExtractEntities(chunk)
		for _, e := range entities {
			g.AddEntity(Entity{Label: e, Type: TypeEntity})
		}

		triples, rejected := extractRelations(chunk, entities)
		report.Triples += len(triples)
		report.Rejected += rejected

		for _, t := range triples {
			subject, okS := BestEntityMatch(t.Subject, entities)
			object, okO := BestEntityMatch(t.Object, entities)
			if !okS || !okO {
				report.Dropped++
				slog.Debug("graph: dropping unmatched triple",
					"chunk", i, "subject", t.Subject,
					"predicate", t.Predicate, "object", t.Object)
				continue
			}
			g.AddRelation(Relation{From: subject, To: object, Label: t.Predicate})
			report.Edges++
		}
	}

	report.Entities = g.NumNodes()
	slog.Debug("graph: build complete",
		"chunks", report.Chunks, "entities", report.Entities,
		"edges", g.NumEdges(), "triples", report.Triples,
		"rejected", report.Rejected, "dropped", report.Dropped,
		"elapsed", time.Since(start).Round(time.Microsecond))
	return g, report
}
