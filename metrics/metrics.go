// Package metrics defines Prometheus metrics for sampling runs. The batch
// job has no scrape endpoint, so the metrics are exported in the
// node-exporter textfile format once the runs finish.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/xerrors"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics holds the collectors of a process on a private registry.
type Metrics struct {
	reg *prometheus.Registry

	RunsTotal        *prometheus.CounterVec
	RunDuration      *prometheus.HistogramVec
	SubgraphVertices *prometheus.HistogramVec
	SubgraphEdges    *prometheus.HistogramVec
	TimeSeriesRows   *prometheus.HistogramVec
}

func New() *Metrics {
	sizeBuckets := prometheus.ExponentialBuckets(1, 2, 16)
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wikicast_runs_total",
				Help: "Total sampling runs by mode and outcome",
			},
			[]string{"mode", "outcome"},
		),
		RunDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wikicast_run_duration_seconds",
				Help:    "Sampling run duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"mode"},
		),
		SubgraphVertices: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wikicast_subgraph_vertices",
				Help:    "Vertices in the final subgraph of a run",
				Buckets: sizeBuckets,
			},
			[]string{"mode"},
		),
		SubgraphEdges: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wikicast_subgraph_edges",
				Help:    "Edges in the final subgraph of a run",
				Buckets: sizeBuckets,
			},
			[]string{"mode"},
		),
		TimeSeriesRows: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wikicast_timeseries_rows",
				Help:    "Vertices with at least one dated view in a run",
				Buckets: sizeBuckets,
			},
			[]string{"mode"},
		),
	}
	m.reg.MustRegister(m.RunsTotal, m.RunDuration, m.SubgraphVertices, m.SubgraphEdges, m.TimeSeriesRows)
	return m
}

// ObserveRun records a successful run.
func (m *Metrics) ObserveRun(mode string, vertices, edges, tsRows int, took time.Duration) {
	m.RunsTotal.WithLabelValues(mode, OutcomeSuccess).Inc()
	m.RunDuration.WithLabelValues(mode).Observe(took.Seconds())
	m.SubgraphVertices.WithLabelValues(mode).Observe(float64(vertices))
	m.SubgraphEdges.WithLabelValues(mode).Observe(float64(edges))
	m.TimeSeriesRows.WithLabelValues(mode).Observe(float64(tsRows))
}

// RunFailed records a failed run.
func (m *Metrics) RunFailed(mode string) {
	m.RunsTotal.WithLabelValues(mode, OutcomeFailure).Inc()
}

// Registry exposes the private registry, e.g. to serve it over HTTP.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// WriteTextfile atomically writes all metrics to path.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.reg); err != nil {
		return xerrors.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
