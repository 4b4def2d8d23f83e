// Package reasoning answers natural-language questions against a built
// knowledge graph by direct edge lookup, shortest-path traversal or
// neighbourhood summary. Every outcome, including failure to resolve an
// entity, is reported as answer text rather than an error.
package reasoning

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bbiangul/kgqa/graph"
	"github.com/bbiangul/kgqa/retrieval"
)

// Canned answers.
const (
	MsgEmptyGraph      = "The knowledge graph is empty. Please ingest some text first."
	MsgNeedMoreInfo    = "I need more specific information to answer your question."
	MsgNothingRelevant = "I couldn't find relevant information for the entities mentioned in your question."
	msgNoRelationships = "\nNo specific relationships found in the knowledge graph."
)

// Config holds answer engine configuration.
type Config struct {
	SimilarityThreshold float64 // Minimum ratio for fuzzy entity resolution.
	MaxNeighbors        int     // Neighbours listed per entity in general answers.
}

// Answer is the outcome of one question.
type Answer struct {
	Text     string           `json:"text"`
	Intent   retrieval.Intent `json:"intent,omitempty"`
	Mentions []string         `json:"mentions,omitempty"`
	Resolved []string         `json:"resolved,omitempty"`
	Steps    []Step           `json:"steps,omitempty"`
}

// Step records one stage of answering a question.
type Step struct {
	Action string `json:"action"`
	Input  string `json:"input,omitempty"`
	Output string `json:"output,omitempty"`
}

// Engine answers questions. It holds no per-graph state and may be shared
// between goroutines.
type Engine struct {
	cfg Config
}

// New creates a new answer engine.
func New(cfg Config) *Engine {
	if cfg.SimilarityThreshold <= 0 {
		cfg.SimilarityThreshold = retrieval.DefaultThreshold
	}
	if cfg.MaxNeighbors <= 0 {
		cfg.MaxNeighbors = 5
	}
	return &Engine{cfg: cfg}
}

// AnswerText is Answer without the trace.
func (e *Engine) AnswerText(g *graph.Graph, question string) string {
	return e.Answer(g, question).Text
}

// Answer classifies question, resolves its mentions against g and renders
// the answer. An empty graph short-circuits before classification.
func (e *Engine) Answer(g *graph.Graph, question string) Answer {
	if g.IsEmpty() {
		return Answer{Text: MsgEmptyGraph}
	}
	start := time.Now()

	a := retrieval.Classify(question)
	q := &query{
		g:        g,
		resolver: retrieval.NewResolver(g, e.cfg.SimilarityThreshold),
		answer:   Answer{Intent: a.Intent, Mentions: a.Mentions},
	}
	q.step("classify", question, string(a.Intent))

	switch {
	case (a.Intent == retrieval.IntentWhatIs || a.Intent == retrieval.IntentWhoIs) && len(a.Mentions) > 0:
		q.answer.Text = q.describe(a.Mentions[0])
	case a.Intent == retrieval.IntentRelationship && len(a.Mentions) >= 2:
		q.answer.Text = q.relate(a.Mentions[0], a.Mentions[1])
	default:
		q.answer.Text = q.summarize(a.Mentions, e.cfg.MaxNeighbors)
	}

	slog.Debug("reasoning: answered",
		"intent", a.Intent, "mentions", len(a.Mentions),
		"resolved", len(q.answer.Resolved),
		"elapsed", time.Since(start).Round(time.Microsecond))
	return q.answer
}

// query carries the state of a single Answer call.
type query struct {
	g        *graph.Graph
	resolver *retrieval.Resolver
	answer   Answer
}

func (q *query) step(action, input, output string) {
	q.answer.Steps = append(q.answer.Steps, Step{Action: action, Input: input, Output: output})
}

func (q *query) resolve(mention string) (string, bool) {
	label, ok := q.resolver.Best(mention)
	q.step("resolve", mention, label)
	if ok {
		q.answer.Resolved = append(q.answer.Resolved, label)
	}
	return label, ok
}

func noInformation(mention string) string {
	return fmt.Sprintf("I don't have information about '%s' in the knowledge graph.", mention)
}

// describe renders the outgoing and incoming edges of one entity.
func (q *query) describe(mention string) string {
	entity, ok := q.resolve(mention)
	if !ok {
		return noInformation(mention)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Based on the knowledge graph, here's what I know about %s:", entity)

	out, in := q.g.Out(entity), q.g.In(entity)
	if len(out) > 0 {
		b.WriteString("\nRelationships:")
		for _, r := range out {
			fmt.Fprintf(&b, "\n- %s %s %s", entity, r.Label, r.To)
		}
	}
	if len(in) > 0 {
		b.WriteString("\nIs related to:")
		for _, r := range in {
			fmt.Fprintf(&b, "\n- %s %s %s", r.From, r.Label, entity)
		}
	}
	if len(out) == 0 && len(in) == 0 {
		b.WriteString(msgNoRelationships)
	}
	return b.String()
}

// relate explains how two entities are connected: a direct edge in either
// direction, else the shortest directed path from the first to the second.
func (q *query) relate(m1, m2 string) string {
	e1, ok1 := q.resolve(m1)
	e2, ok2 := q.resolve(m2)
	if !ok1 {
		return noInformation(m1)
	}
	if !ok2 {
		return noInformation(m2)
	}

	if r, ok := q.g.Edge(e1, e2); ok {
		return fmt.Sprintf("%s %s %s.", r.From, r.Label, r.To)
	}
	if r, ok := q.g.Edge(e2, e1); ok {
		return fmt.Sprintf("%s %s %s.", r.From, r.Label, r.To)
	}

	path := q.g.ShortestPath(e1, e2)
	q.step("path", e1+" -> "+e2, fmt.Sprintf("%d hops", len(path)))
	if len(path) > 0 {
		segments := make([]string, len(path))
		for i, r := range path {
			segments[i] = fmt.Sprintf("%s (%s) %s", r.From, r.Label, r.To)
		}
		return "There is an indirect relationship: " + strings.Join(segments, " -> ")
	}
	return fmt.Sprintf("No relationship found between %s and %s in the knowledge graph.", e1, e2)
}

// summarize lists up to limit neighbours of every mention that resolves.
func (q *query) summarize(mentions []string, limit int) string {
	if len(mentions) == 0 {
		return MsgNeedMoreInfo
	}

	var lines []string
	for _, m := range mentions {
		entity, ok := q.resolve(m)
		if !ok {
			continue
		}
		neighbors := q.g.Neighbors(entity)
		if len(neighbors) > limit {
			neighbors = neighbors[:limit]
		}
		lines = append(lines, fmt.Sprintf("**%s**: Connected to %s", entity, strings.Join(neighbors, ", ")))
	}
	if len(lines) == 0 {
		return MsgNothingRelevant
	}
	return "Here's what I found:\n" + strings.Join(lines, "\n")
}
