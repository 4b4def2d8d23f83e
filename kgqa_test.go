package kgqa

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	dto "github.com/prometheus/client_model/go"

	"github.com/bbiangul/kgqa/graph"
	"github.com/bbiangul/kgqa/store"
)

func newTestEngine(t *testing.T) *engine {
	t.Helper()
	e, err := newEngine(DefaultConfig(), store.NewMemory())
	if err != nil {
		t.Fatalf("newEngine: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}

// metricValue returns the value of the first sample of the named family.
func metricValue(t *testing.T, e *engine, name string, labels ...string) float64 {
	t.Helper()
	families, err := e.Metrics().Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if !hasLabels(m, labels) {
				continue
			}
			switch {
			case m.GetCounter() != nil:
				return m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				return m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				return float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	return 0
}

func hasLabels(m *dto.Metric, kv []string) bool {
	for i := 0; i+1 < len(kv); i += 2 {
		found := false
		for _, lp := range m.GetLabel() {
			if lp.GetName() == kv[i] && lp.GetValue() == kv[i+1] {
				found = true
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func TestBuildGraphScenario(t *testing.T) {
	g := BuildGraph([]string{"John works at Microsoft. He lives in Seattle."})
	for _, label := range []string{"John", "Microsoft", "Seattle"} {
		if !g.HasEntity(label) {
			t.Errorf("missing node %q", label)
		}
	}
	if _, ok := g.Edge("John", "Microsoft"); !ok {
		t.Error("expected John -> Microsoft edge")
	}
}

func TestBuildGraphEmpty(t *testing.T) {
	g := BuildGraph(nil)
	if got := GraphStats(g); got != (graph.Stats{}) {
		t.Errorf("stats: got %+v, want zero", got)
	}
	if got := GraphSummary(g); got != "The knowledge graph is empty." {
		t.Errorf("summary: got %q", got)
	}
}

func TestAnswerQuestionRelationship(t *testing.T) {
	g := graph.New()
	g.AddEntity(graph.Entity{Label: "Larry Page", Type: "Person"})
	g.AddEntity(graph.Entity{Label: "Google", Type: "Company"})
	g.AddRelation(graph.Relation{From: "Larry Page", To: "Google", Label: "co-founded"})

	got := AnswerQuestion(g, "What is the relationship between Larry Page and Google?")
	if !strings.Contains(got, "co-founded") {
		t.Errorf("got %q, want it to mention co-founded", got)
	}

	got = AnswerQuestion(g, "What is Unknown Entity?")
	if !strings.Contains(got, "don't have information") {
		t.Errorf("got %q", got)
	}
}

func TestEngineIngestAndQuery(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	rec, err := e.Ingest(ctx, []string{"John works at Microsoft. He lives in Seattle."},
		WithDescription("people"))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if rec.ID == "" {
		t.Fatal("expected a graph id")
	}
	if rec.Description != "people" || rec.TextCount != 1 {
		t.Errorf("record: got %+v", rec)
	}
	if rec.Stats.Nodes != 3 || rec.Stats.Edges != 1 {
		t.Errorf("stats: got %+v", rec.Stats)
	}

	res, err := e.Query(ctx, rec.ID, "What is John?")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	want := "Based on the knowledge graph, here's what I know about John:" +
		"\nRelationships:" +
		"\n- John works_at Microsoft"
	if res.Answer != want {
		t.Errorf("answer:\ngot:  %q\nwant: %q", res.Answer, want)
	}
	if res.GraphID != rec.ID || res.Question != "What is John?" || res.Intent != "what_is" {
		t.Errorf("result: got %+v", res)
	}

	sum, err := e.Summary(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if !strings.HasPrefix(sum.Summary, "Knowledge Graph Summary:") {
		t.Errorf("summary: got %q", sum.Summary)
	}
	if sum.Stats != rec.Stats {
		t.Errorf("summary stats: got %+v, want %+v", sum.Stats, rec.Stats)
	}
}

func TestEngineConcurrentQuery(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	rec, err := e.Ingest(ctx, []string{
		"Larry Page founded Google. Google is a company.",
		"John works at Microsoft. He lives in Seattle.",
	})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	questions := []string{
		"Who founded Google?",
		"What is John?",
		"How are John and Seattle related?",
	}
	baseline := make(map[string]string, len(questions))
	for _, q := range questions {
		res, err := e.Query(ctx, rec.ID, q)
		if err != nil {
			t.Fatalf("Query(%q): %v", q, err)
		}
		baseline[q] = res.Answer
	}

	const workers = 16
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, q := range questions {
				res, err := e.Query(ctx, rec.ID, q)
				if err != nil {
					t.Errorf("Query(%q): %v", q, err)
					return
				}
				if res.Answer != baseline[q] {
					t.Errorf("Query(%q): got %q, want %q", q, res.Answer, baseline[q])
				}
			}
		}()
	}
	wg.Wait()

	if got := metricValue(t, e, "kgqa_questions_total"); got == 0 {
		t.Error("expected questions to be counted")
	}
}

func TestEngineIngestNoTexts(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Ingest(context.Background(), nil)
	if !errors.Is(err, ErrNoTexts) {
		t.Errorf("got %v, want ErrNoTexts", err)
	}
	_, err = e.IngestFiles(context.Background(), nil)
	if !errors.Is(err, ErrNoTexts) {
		t.Errorf("files: got %v, want ErrNoTexts", err)
	}
}

func TestEngineIngestCanceled(t *testing.T) {
	e := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := e.Ingest(ctx, []string{"Alice works at Acme."}); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestEngineGraphNotFound(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.Query(ctx, "missing", "What is X?"); !errors.Is(err, ErrGraphNotFound) {
		t.Errorf("Query: got %v", err)
	}
	if _, err := e.Summary(ctx, "missing"); !errors.Is(err, ErrGraphNotFound) {
		t.Errorf("Summary: got %v", err)
	}
	if err := e.Delete(ctx, "missing"); !errors.Is(err, ErrGraphNotFound) {
		t.Errorf("Delete: got %v", err)
	}
}

func TestEngineDeleteAndList(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	a, err := e.Ingest(ctx, []string{"Larry Page founded Google."})
	if err != nil {
		t.Fatal(err)
	}
	b, err := e.Ingest(ctx, []string{"Alice works at Acme.", "Bob lives in Paris."})
	if err != nil {
		t.Fatal(err)
	}
	if a.ID == b.ID {
		t.Fatal("ids must be unique")
	}

	recs, err := e.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("list: got %d records, want 2", len(recs))
	}

	h, err := e.Health(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if h.Status != "healthy" || h.Version != Version || h.ActiveGraphs != 2 {
		t.Errorf("health: got %+v", h)
	}
	if h.TotalNodes != a.Stats.Nodes+b.Stats.Nodes || h.TotalEdges != a.Stats.Edges+b.Stats.Edges {
		t.Errorf("health totals: got %+v", h)
	}

	if err := e.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := e.Query(ctx, a.ID, "What is Google?"); !errors.Is(err, ErrGraphNotFound) {
		t.Errorf("query after delete: got %v", err)
	}
	if got := metricValue(t, e, "kgqa_active_graphs"); got != 1 {
		t.Errorf("active graphs gauge: got %v, want 1", got)
	}
}

func TestEngineMetrics(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	rec, err := e.Ingest(ctx, []string{"John works at Microsoft. He lives in Seattle."})
	if err != nil {
		t.Fatal(err)
	}
	for _, q := range []string{"What is John?", "Who is John?", "hello"} {
		if _, err := e.Query(ctx, rec.ID, q); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name   string
		labels []string
		want   float64
	}{
		{"kgqa_graphs_built_total", nil, 1},
		{"kgqa_relations_rejected_total", nil, 1},
		{"kgqa_build_duration_seconds", nil, 1},
		{"kgqa_active_graphs", nil, 1},
		{"kgqa_questions_total", []string{"intent", "what_is"}, 1},
		{"kgqa_questions_total", []string{"intent", "who_is"}, 1},
		{"kgqa_questions_total", []string{"intent", "general"}, 1},
	}
	for _, tt := range tests {
		if got := metricValue(t, e, tt.name, tt.labels...); got != tt.want {
			t.Errorf("%s%v: got %v, want %v", tt.name, tt.labels, got, tt.want)
		}
	}
}

func TestEngineIngestFiles(t *testing.T) {
	e := newTestEngine(t)
	dir := t.TempDir()

	a := filepath.Join(dir, "people.txt")
	b := filepath.Join(dir, "companies.md")
	if err := os.WriteFile(a, []byte("Alice works at Acme."), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(b, []byte("Larry Page founded Google."), 0o644); err != nil {
		t.Fatal(err)
	}

	rec, err := e.IngestFiles(context.Background(), []string{a, b})
	if err != nil {
		t.Fatalf("IngestFiles: %v", err)
	}
	if rec.TextCount != 2 {
		t.Errorf("text count: got %d, want 2", rec.TextCount)
	}
	if rec.Description != "people.txt, companies.md" {
		t.Errorf("description: got %q", rec.Description)
	}
	for _, label := range []string{"Alice", "Acme", "Larry Page", "Google"} {
		if !rec.Graph.HasEntity(label) {
			t.Errorf("missing node %q", label)
		}
	}
}

func TestEngineIngestFilesUnsupported(t *testing.T) {
	e := newTestEngine(t)
	path := filepath.Join(t.TempDir(), "slides.pptx")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := e.IngestFiles(context.Background(), []string{path})
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("got %v, want ErrUnsupportedFormat", err)
	}
}

func TestEngineClosed(t *testing.T) {
	e, err := newEngine(DefaultConfig(), store.NewMemory())
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Ingest(context.Background(), []string{"Alice works at Acme."}); !errors.Is(err, ErrStoreClosed) {
		t.Errorf("got %v, want ErrStoreClosed", err)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StoreBackend = "redis"
	if _, err := New(cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("got %v, want ErrInvalidConfig", err)
	}
}

func TestNewBadgerCountsExistingGraphs(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StoreBackend = store.BackendBadger
	cfg.StorePath = t.TempDir()

	first, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	rec, err := first.Ingest(context.Background(), []string{"Larry Page founded Google."})
	if err != nil {
		t.Fatal(err)
	}
	if err := first.Close(); err != nil {
		t.Fatal(err)
	}

	second, err := New(cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()

	res, err := second.Query(context.Background(), rec.ID, "What is Google?")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if !strings.Contains(res.Answer, "Larry Page founded Google") {
		t.Errorf("answer: got %q", res.Answer)
	}
	if got := metricValue(t, second.(*engine), "kgqa_active_graphs"); got != 1 {
		t.Errorf("active graphs gauge: got %v, want 1", got)
	}
}
