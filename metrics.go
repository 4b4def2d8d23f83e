package kgqa

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const metricsNamespace = "kgqa"

// metrics holds the engine's collectors, registered on a private registry so
// several engines can live in one process.
type metrics struct {
	registry *prometheus.Registry

	graphsBuilt       prometheus.Counter
	relationsRejected prometheus.Counter
	relationsDropped  prometheus.Counter
	buildDuration     prometheus.Histogram
	questions         *prometheus.CounterVec
	activeGraphs      prometheus.Gauge
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),

		graphsBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "graphs_built_total",
			Help:      "Knowledge graphs built and published",
		}),
		relationsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "relations_rejected_total",
			Help:      "Relation matches whose subject or object overlapped no entity",
		}),
		relationsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "relations_dropped_total",
			Help:      "Relation triples that could not be mapped onto entity labels",
		}),
		buildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "build_duration_seconds",
			Help:      "Time spent building one graph",
			Buckets:   prometheus.DefBuckets,
		}),
		questions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "questions_total",
			Help:      "Questions answered, by classified intent",
		}, []string{"intent"}),
		activeGraphs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "active_graphs",
			Help:      "Graphs currently held by the registry",
		}),
	}

	m.registry.MustRegister(
		m.graphsBuilt,
		m.relationsRejected,
		m.relationsDropped,
		m.buildDuration,
		m.questions,
		m.activeGraphs,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}
