// internal/observability/metrics.go
package observability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recovery kinds used as the "kind" label of the recoveries counter.
const (
	RecoveryStrayEndTag        = "stray_end_tag"
	RecoveryUnclosedElement    = "unclosed_element"
	RecoveryDroppedSelector    = "dropped_selector"
	RecoveryDroppedDeclaration = "dropped_declaration"
	RecoverySkippedAtRule      = "skipped_at_rule"
)

// Metrics holds the render counters on a private registry so repeated
// construction in tests never collides with the default registerer.
// A nil *Metrics discards every observation.
type Metrics struct {
	registry   *prometheus.Registry
	documents  prometheus.Counter
	recoveries *prometheus.CounterVec
	duration   prometheus.Histogram
}

// NewMetrics creates and registers the render metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		documents: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stylecore_documents_rendered_total",
			Help: "Total number of documents rendered.",
		}),
		recoveries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stylecore_parse_recoveries_total",
				Help: "Recoveries made while parsing malformed input, by kind.",
			},
			[]string{"kind"},
		),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "stylecore_render_duration_seconds",
			Help:    "Time spent parsing and resolving one document.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
	}
	m.registry.MustRegister(m.documents, m.recoveries, m.duration)
	return m
}

// Registry exposes the underlying registry for gathering.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveRender records one rendered document and how long it took.
func (m *Metrics) ObserveRender(elapsed time.Duration) {
	if m == nil {
		return
	}
	m.documents.Inc()
	m.duration.Observe(elapsed.Seconds())
}

// AddRecoveries adds n recoveries of the given kind. Zero counts still
// create the series so every kind shows up in the output.
func (m *Metrics) AddRecoveries(kind string, n int) {
	if m == nil || n < 0 {
		return
	}
	m.recoveries.WithLabelValues(kind).Add(float64(n))
}

// WriteTextfile writes the current values in the text exposition format,
// for pickup by a node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
