// Package kgqa builds knowledge graphs from plain text with lexical
// heuristics and answers natural-language questions against them.
//
// The stateless entry points BuildGraph, AnswerQuestion, GraphStats and
// GraphSummary work on a graph.Graph directly. Engine adds a registry of
// published graphs addressed by opaque ids, file ingestion and metrics.
package kgqa

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/bbiangul/kgqa/chunker"
	"github.com/bbiangul/kgqa/graph"
	"github.com/bbiangul/kgqa/parser"
	"github.com/bbiangul/kgqa/reasoning"
	"github.com/bbiangul/kgqa/store"
)

// Version is reported by Health.
const Version = "0.1.0"

// ServiceName is reported by Health.
const ServiceName = "Semantic Knowledge Graph QA Agent"

var defaultReasoner = reasoning.New(reasoning.Config{})

// BuildGraph builds a graph from texts with the default chunking settings.
// An empty slice yields an empty graph.
func BuildGraph(texts []string) *graph.Graph {
	return graph.NewBuilder(nil).Build(texts)
}

// AnswerQuestion answers question against g. It never fails: unknown
// entities, missing paths and an empty graph are all reported in the text.
func AnswerQuestion(g *graph.Graph, question string) string {
	return defaultReasoner.AnswerText(g, question)
}

// GraphStats returns the node, edge and component counts and the density
// of g.
func GraphStats(g *graph.Graph) graph.Stats {
	return graph.ComputeStats(g)
}

// GraphSummary renders a short text report of g.
func GraphSummary(g *graph.Graph) string {
	return graph.Summary(g)
}

// Engine is the main entry point for managing and querying graphs.
type Engine interface {
	// Ingest builds a graph from texts and publishes it under a new id.
	Ingest(ctx context.Context, texts []string, opts ...IngestOption) (*store.Record, error)

	// IngestFiles extracts the text of every file and ingests it as one
	// batch, one text per file.
	IngestFiles(ctx context.Context, paths []string, opts ...IngestOption) (*store.Record, error)

	// Query answers a question against the graph stored under id.
	Query(ctx context.Context, id, question string) (*QueryResult, error)

	// Summary renders the text report of the graph stored under id.
	Summary(ctx context.Context, id string) (*SummaryResult, error)

	// List returns the metadata of every stored graph, oldest first.
	List(ctx context.Context) ([]store.Record, error)

	// Delete removes the graph stored under id.
	Delete(ctx context.Context, id string) error

	// Health reports service status and registry totals.
	Health(ctx context.Context) (*Health, error)

	// Metrics returns the registry holding the engine's collectors.
	Metrics() *prometheus.Registry

	// Close cleanly shuts down the engine.
	Close() error
}

// QueryResult is the answer to one question.
type QueryResult struct {
	GraphID  string      `json:"graph_id"`
	Question string      `json:"question"`
	Answer   string      `json:"answer"`
	Intent   string      `json:"intent,omitempty"`
	Mentions []string    `json:"mentions,omitempty"`
	Resolved []string    `json:"resolved,omitempty"`
	Stats    graph.Stats `json:"stats"`
}

// SummaryResult is the text report of one graph.
type SummaryResult struct {
	GraphID string      `json:"graph_id"`
	Summary string      `json:"summary"`
	Stats   graph.Stats `json:"stats"`
}

// Health reports service status and registry totals.
type Health struct {
	Status       string `json:"status"`
	Service      string `json:"service"`
	Version      string `json:"version"`
	ActiveGraphs int    `json:"active_graphs"`
	TotalNodes   int    `json:"total_nodes"`
	TotalEdges   int    `json:"total_edges"`
}

// IngestOption configures ingestion behavior.
type IngestOption func(*ingestOptions)

type ingestOptions struct {
	description string
}

// WithDescription attaches a free-text description to the ingested graph.
func WithDescription(description string) IngestOption {
	return func(o *ingestOptions) { o.description = description }
}

type engine struct {
	cfg      Config
	store    store.Store
	builder  *graph.Builder
	reasoner *reasoning.Engine
	parsers  *parser.Registry
	metrics  *metrics
}

// New validates cfg, opens the configured graph registry and returns a
// ready engine.
func New(cfg Config) (Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s, err := store.Open(cfg.StoreBackend, cfg.StorePath)
	if err != nil {
		return nil, fmt.Errorf("kgqa.New: opening store: %w", err)
	}
	e, err := newEngine(cfg, s)
	if err != nil {
		s.Close()
		return nil, err
	}
	return e, nil
}

func newEngine(cfg Config, s store.Store) (*engine, error) {
	e := &engine{
		cfg:   cfg,
		store: s,
		builder: graph.NewBuilder(chunker.New(chunker.Config{
			ChunkSize:    cfg.ChunkSize,
			ChunkOverlap: cfg.ChunkOverlap,
		})),
		reasoner: reasoning.New(reasoning.Config{SimilarityThreshold: cfg.SimilarityThreshold}),
		parsers:  parser.NewRegistry(),
		metrics:  newMetrics(),
	}

	// Persistent backends may already hold graphs.
	recs, err := s.List(context.Background())
	if err != nil {
		return nil, fmt.Errorf("kgqa.New: listing graphs: %w", err)
	}
	e.metrics.activeGraphs.Set(float64(len(recs)))

	slog.Info("kgqa engine ready",
		"store", cfg.StoreBackend, "graphs", len(recs),
		"chunk_size", cfg.ChunkSize, "chunk_overlap", cfg.ChunkOverlap)
	return e, nil
}

func (e *engine) Ingest(ctx context.Context, texts []string, opts ...IngestOption) (*store.Record, error) {
	options := &ingestOptions{}
	for _, o := range opts {
		o(options)
	}

	if len(texts) == 0 {
		return nil, ErrNoTexts
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	g, report := e.builder.BuildWithReport(texts)
	elapsed := time.Since(start)

	rec := &store.Record{
		ID:          uuid.NewString(),
		Description: options.description,
		CreatedAt:   time.Now().UTC(),
		TextCount:   len(texts),
		Stats:       graph.ComputeStats(g),
		Graph:       g,
	}
	if err := e.store.Put(ctx, rec); err != nil {
		return nil, e.storeErr("kgqa.Ingest", rec.ID, err)
	}

	e.metrics.graphsBuilt.Inc()
	e.metrics.relationsRejected.Add(float64(report.Rejected))
	e.metrics.relationsDropped.Add(float64(report.Dropped))
	e.metrics.buildDuration.Observe(elapsed.Seconds())
	e.metrics.activeGraphs.Inc()

	slog.Info("graph built",
		"graph_id", rec.ID, "texts", len(texts), "chunks", report.Chunks,
		"nodes", rec.Stats.Nodes, "edges", rec.Stats.Edges,
		"rejected", report.Rejected, "dropped", report.Dropped,
		"elapsed", elapsed.Round(time.Millisecond))
	return rec, nil
}

func (e *engine) IngestFiles(ctx context.Context, paths []string, opts ...IngestOption) (*store.Record, error) {
	if len(paths) == 0 {
		return nil, ErrNoTexts
	}

	texts := make([]string, 0, len(paths))
	names := make([]string, 0, len(paths))
	for _, path := range paths {
		res, err := e.parsers.ParseFile(ctx, path)
		if errors.Is(err, parser.ErrUnsupportedFormat) {
			return nil, fmt.Errorf("kgqa.IngestFiles: %s: %w", path, ErrUnsupportedFormat)
		}
		if err != nil {
			return nil, fmt.Errorf("kgqa.IngestFiles: parsing %s: %w", path, err)
		}
		texts = append(texts, res.Text())
		names = append(names, filepath.Base(path))
		slog.Debug("file parsed", "path", path, "sections", len(res.Sections))
	}

	// The file names describe the graph unless the caller says otherwise.
	all := append([]IngestOption{WithDescription(strings.Join(names, ", "))}, opts...)
	return e.Ingest(ctx, texts, all...)
}

func (e *engine) Query(ctx context.Context, id, question string) (*QueryResult, error) {
	rec, err := e.store.Get(ctx, id)
	if err != nil {
		return nil, e.storeErr("kgqa.Query", id, err)
	}

	ans := e.reasoner.Answer(rec.Graph, question)

	intent := string(ans.Intent)
	if intent == "" {
		intent = "none"
	}
	e.metrics.questions.WithLabelValues(intent).Inc()

	slog.Debug("question answered",
		"graph_id", id, "intent", intent,
		"mentions", len(ans.Mentions), "resolved", len(ans.Resolved))

	return &QueryResult{
		GraphID:  id,
		Question: question,
		Answer:   ans.Text,
		Intent:   string(ans.Intent),
		Mentions: ans.Mentions,
		Resolved: ans.Resolved,
		Stats:    rec.Stats,
	}, nil
}

func (e *engine) Summary(ctx context.Context, id string) (*SummaryResult, error) {
	rec, err := e.store.Get(ctx, id)
	if err != nil {
		return nil, e.storeErr("kgqa.Summary", id, err)
	}
	return &SummaryResult{
		GraphID: id,
		Summary: graph.Summary(rec.Graph),
		Stats:   rec.Stats,
	}, nil
}

func (e *engine) List(ctx context.Context) ([]store.Record, error) {
	recs, err := e.store.List(ctx)
	if err != nil {
		return nil, e.storeErr("kgqa.List", "", err)
	}
	return recs, nil
}

func (e *engine) Delete(ctx context.Context, id string) error {
	if err := e.store.Delete(ctx, id); err != nil {
		return e.storeErr("kgqa.Delete", id, err)
	}
	e.metrics.activeGraphs.Dec()
	slog.Info("graph deleted", "graph_id", id)
	return nil
}

func (e *engine) Health(ctx context.Context) (*Health, error) {
	recs, err := e.List(ctx)
	if err != nil {
		return nil, err
	}
	h := &Health{
		Status:       "healthy",
		Service:      ServiceName,
		Version:      Version,
		ActiveGraphs: len(recs),
	}
	for _, r := range recs {
		h.TotalNodes += r.Stats.Nodes
		h.TotalEdges += r.Stats.Edges
	}
	return h, nil
}

func (e *engine) Metrics() *prometheus.Registry {
	return e.metrics.registry
}

func (e *engine) Close() error {
	return e.store.Close()
}

// storeErr maps store sentinels onto the package's own.
func (e *engine) storeErr(op, id string, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("%s: %w: %s", op, ErrGraphNotFound, id)
	case errors.Is(err, store.ErrClosed):
		return fmt.Errorf("%s: %w", op, ErrStoreClosed)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
