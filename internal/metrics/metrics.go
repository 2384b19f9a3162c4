// Package metrics exposes Prometheus metrics for the storage core and the
// HTTP transport.
package metrics

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/starford/mdnote/internal/apperr"
	"github.com/starford/mdnote/internal/index"
)

// Histogram buckets: 100µs doubling up to ~3s.
const (
	bucketStart  = 0.0001
	bucketFactor = 2
	bucketCount  = 15
)

// StoreMetrics records index operation counts, durations, and lock waits.
// It implements index.Observer and prometheus.Collector.
type StoreMetrics struct {
	opsTotal    *prometheus.CounterVec
	opDuration  *prometheus.HistogramVec
	lockWait    *prometheus.HistogramVec
	errorsTotal *prometheus.CounterVec

	collectors []prometheus.Collector
}

var _ index.Observer = (*StoreMetrics)(nil)

// NewStoreMetrics creates and registers the store metrics.
func NewStoreMetrics(registry prometheus.Registerer) (*StoreMetrics, error) {
	m := &StoreMetrics{
		opsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mdnote_store_operations_total",
				Help: "Total number of storage operations",
			},
			[]string{"operation", "status"}, // status: success, error
		),
		opDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mdnote_store_operation_duration_seconds",
				Help:    "Time taken by storage operations, lock wait included",
				Buckets: prometheus.ExponentialBuckets(bucketStart, bucketFactor, bucketCount),
			},
			[]string{"operation"},
		),
		lockWait: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mdnote_store_lock_wait_seconds",
				Help:    "Time spent waiting for exclusive access to the database",
				Buckets: prometheus.ExponentialBuckets(bucketStart, bucketFactor, bucketCount),
			},
			[]string{"operation"},
		),
		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mdnote_store_errors_total",
				Help: "Total number of failed storage operations by error kind",
			},
			[]string{"operation", "kind"},
		),
	}
	m.collectors = []prometheus.Collector{m.opsTotal, m.opDuration, m.lockWait, m.errorsTotal}
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// Describe implements prometheus.Collector.
func (m *StoreMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, c := range m.collectors {
		c.Describe(ch)
	}
}

// Collect implements prometheus.Collector.
func (m *StoreMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, c := range m.collectors {
		c.Collect(ch)
	}
}

// ObserveLockWait implements index.Observer.
func (m *StoreMetrics) ObserveLockWait(op string, wait time.Duration) {
	m.lockWait.WithLabelValues(opLabel(op)).Observe(wait.Seconds())
}

// ObserveOp implements index.Observer.
func (m *StoreMetrics) ObserveOp(op string, took time.Duration, err error) {
	label := opLabel(op)
	status := "success"
	if err != nil {
		status = "error"
		m.errorsTotal.WithLabelValues(label, string(apperr.KindOf(err))).Inc()
	}
	m.opsTotal.WithLabelValues(label, status).Inc()
	m.opDuration.WithLabelValues(label).Observe(took.Seconds())
}

// opLabel turns "index: get note" into "get_note".
func opLabel(op string) string {
	op = strings.TrimPrefix(op, "index: ")
	return strings.ReplaceAll(op, " ", "_")
}

// NewRegistry returns a registry preloaded with the Go runtime and process
// collectors.
func NewRegistry() *prometheus.Registry {
	r := prometheus.NewRegistry()
	r.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// RegisterClientGauge exposes the number of connected SSE clients.
func RegisterClientGauge(registry prometheus.Registerer, count func() int) error {
	return registry.Register(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "mdnote_sse_clients",
			Help: "Number of connected event stream clients",
		},
		func() float64 { return float64(count()) },
	))
}

// Handler serves the registry in the Prometheus text format.
func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
}
