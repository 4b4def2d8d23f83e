package eval

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/bbiangul/kgqa"
)

// passAccuracy is the accuracy a test needs to pass.
const passAccuracy = 0.5

// Evaluator runs datasets against a kgqa engine.
type Evaluator struct {
	engine kgqa.Engine
}

// NewEvaluator creates a new evaluator.
func NewEvaluator(engine kgqa.Engine) *Evaluator {
	return &Evaluator{engine: engine}
}

// Report holds the results of an evaluation run.
type Report struct {
	Dataset         string                      `json:"dataset"`
	GraphID         string                      `json:"graph_id"`
	Nodes           int                         `json:"nodes"`
	Edges           int                         `json:"edges"`
	TotalTests      int                         `json:"total_tests"`
	Passed          int                         `json:"passed"`
	Failed          int                         `json:"failed"`
	Metrics         AggregateMetrics            `json:"metrics"`
	CategoryMetrics map[string]AggregateMetrics `json:"category_metrics,omitempty"`
	Results         []TestResult                `json:"results"`
	RunTime         time.Duration               `json:"run_time"`
}

// AggregateMetrics holds averaged metrics across tests.
type AggregateMetrics struct {
	AvgAccuracy   float64 `json:"avg_accuracy"`
	AvgResolution float64 `json:"avg_resolution"`
	IntentMatch   float64 `json:"intent_match"`
}

// TestResult holds the result of a single test case.
type TestResult struct {
	Question       string   `json:"question"`
	ExpectedFacts  []string `json:"expected_facts"`
	Category       string   `json:"category,omitempty"`
	ExpectedIntent string   `json:"expected_intent,omitempty"`
	Intent         string   `json:"intent"`
	Answer         string   `json:"answer"`
	Mentions       []string `json:"mentions,omitempty"`
	Resolved       []string `json:"resolved,omitempty"`
	Accuracy       float64  `json:"accuracy"`
	Resolution     float64  `json:"resolution"`
	IntentOK       bool     `json:"intent_ok"`
	Passed         bool     `json:"passed"`
	Error          string   `json:"error,omitempty"`
	ElapsedMs      int64    `json:"elapsed_ms"`
}

// Run ingests the dataset's texts as one graph, asks every question and
// scores the answers. The graph is deleted afterwards.
func (e *Evaluator) Run(ctx context.Context, dataset Dataset) (*Report, error) {
	start := time.Now()

	rec, err := e.engine.Ingest(ctx, dataset.Texts, kgqa.WithDescription("eval: "+dataset.Name))
	if err != nil {
		return nil, fmt.Errorf("eval.Run: ingesting %s: %w", dataset.Name, err)
	}
	defer func() {
		if err := e.engine.Delete(context.Background(), rec.ID); err != nil {
			slog.Warn("eval: deleting graph", "graph_id", rec.ID, "error", err)
		}
	}()

	report := &Report{
		Dataset:         dataset.Name,
		GraphID:         rec.ID,
		Nodes:           rec.Stats.Nodes,
		Edges:           rec.Stats.Edges,
		TotalTests:      len(dataset.Tests),
		CategoryMetrics: make(map[string]AggregateMetrics),
	}

	catCounts := make(map[string]int)
	catSums := make(map[string]AggregateMetrics)
	scored := 0

	for i, test := range dataset.Tests {
		result := e.runTest(ctx, rec.ID, test)
		report.Results = append(report.Results, result)

		slog.Info("eval: test complete",
			"progress", fmt.Sprintf("%d/%d", i+1, len(dataset.Tests)),
			"status", status(result),
			"intent", result.Intent,
			"accuracy", fmt.Sprintf("%.2f", result.Accuracy),
			"question", truncate(test.Question, 80))

		if result.Passed {
			report.Passed++
		} else {
			report.Failed++
		}

		// Errors contribute no scores.
		if result.Error != "" {
			continue
		}
		scored++
		addMetrics(&report.Metrics, result)
		if test.Category != "" {
			catCounts[test.Category]++
			sum := catSums[test.Category]
			addMetrics(&sum, result)
			catSums[test.Category] = sum
		}
	}

	report.Metrics = averageMetrics(report.Metrics, scored)
	for cat, count := range catCounts {
		report.CategoryMetrics[cat] = averageMetrics(catSums[cat], count)
	}

	report.RunTime = time.Since(start)
	return report, nil
}

func (e *Evaluator) runTest(ctx context.Context, graphID string, test TestCase) TestResult {
	testStart := time.Now()
	result := TestResult{
		Question:       test.Question,
		ExpectedFacts:  test.ExpectedFacts,
		Category:       test.Category,
		ExpectedIntent: test.Intent,
	}

	res, err := e.engine.Query(ctx, graphID, test.Question)
	if err != nil {
		result.Error = err.Error()
		result.ElapsedMs = time.Since(testStart).Milliseconds()
		return result
	}

	result.Answer = res.Answer
	result.Intent = res.Intent
	result.Mentions = res.Mentions
	result.Resolved = res.Resolved
	result.Accuracy = computeAccuracy(res.Answer, test.ExpectedFacts)
	result.Resolution = computeResolution(len(res.Mentions), len(res.Resolved))
	result.IntentOK = test.Intent == "" || test.Intent == res.Intent

	result.Passed = result.Accuracy >= passAccuracy && result.IntentOK
	result.ElapsedMs = time.Since(testStart).Milliseconds()
	return result
}

func addMetrics(sum *AggregateMetrics, r TestResult) {
	sum.AvgAccuracy += r.Accuracy
	sum.AvgResolution += r.Resolution
	if r.IntentOK {
		sum.IntentMatch++
	}
}

func averageMetrics(sum AggregateMetrics, n int) AggregateMetrics {
	if n == 0 {
		return AggregateMetrics{}
	}
	f := float64(n)
	return AggregateMetrics{
		AvgAccuracy:   sum.AvgAccuracy / f,
		AvgResolution: sum.AvgResolution / f,
		IntentMatch:   sum.IntentMatch / f,
	}
}

func status(r TestResult) string {
	switch {
	case r.Error != "":
		return "ERROR"
	case r.Passed:
		return "PASS"
	default:
		return "FAIL"
	}
}

// FormatReport produces a human-readable report string.
func FormatReport(r *Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== Evaluation Report: %s ===\n", r.Dataset)
	fmt.Fprintf(&b, "Graph: %d entities, %d relationships\n", r.Nodes, r.Edges)
	fmt.Fprintf(&b, "Total: %d | Passed: %d (%.1f%%) | Failed: %d\n",
		r.TotalTests, r.Passed, passRate(r.Passed, r.TotalTests), r.Failed)
	fmt.Fprintf(&b, "Run time: %s\n\n", r.RunTime.Round(time.Millisecond))

	fmt.Fprintf(&b, "Aggregate Metrics:\n")
	fmt.Fprintf(&b, "  Accuracy:      %.2f\n", r.Metrics.AvgAccuracy)
	fmt.Fprintf(&b, "  Resolution:    %.2f\n", r.Metrics.AvgResolution)
	fmt.Fprintf(&b, "  Intent Match:  %.2f\n\n", r.Metrics.IntentMatch)

	if len(r.CategoryMetrics) > 0 {
		cats := make([]string, 0, len(r.CategoryMetrics))
		for cat := range r.CategoryMetrics {
			cats = append(cats, cat)
		}
		sort.Strings(cats)

		fmt.Fprintf(&b, "Per-Category Metrics:\n")
		for _, cat := range cats {
			m := r.CategoryMetrics[cat]
			fmt.Fprintf(&b, "  [%s] Acc=%.2f Res=%.2f Intent=%.2f\n",
				cat, m.AvgAccuracy, m.AvgResolution, m.IntentMatch)
		}
		fmt.Fprintln(&b)
	}

	for i, res := range r.Results {
		fmt.Fprintf(&b, "[%s] %d. %s\n", status(res), i+1, res.Question)
		if res.Error != "" {
			fmt.Fprintf(&b, "  Error: %s\n", res.Error)
			continue
		}
		fmt.Fprintf(&b, "  Intent=%s Acc=%.2f Res=%.2f  (%dms)\n",
			res.Intent, res.Accuracy, res.Resolution, res.ElapsedMs)
	}
	return b.String()
}

func passRate(passed, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(passed) / float64(total) * 100
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
