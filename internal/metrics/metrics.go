// Package metrics holds the Prometheus collectors for sample reads.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeRead    = "read"
	OutcomeSkipped = "skipped"
	OutcomeError   = "error"
)

// Metrics records per-sample read outcomes. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	samples      *prometheus.CounterVec
	bytesRead    *prometheus.CounterVec
	readDuration *prometheus.HistogramVec
	wraps        prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		samples: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "npy",
				Subsystem: "reader",
				Name:      "samples_total",
				Help:      "Samples processed, by outcome and read mode.",
			},
			[]string{"outcome", "mode"},
		),
		bytesRead: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "npy",
				Subsystem: "reader",
				Name:      "payload_bytes_total",
				Help:      "Payload bytes delivered to callers, by read mode.",
			},
			[]string{"mode"},
		),
		readDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "npy",
				Subsystem: "reader",
				Name:      "read_duration_seconds",
				Help:      "Time to read one sample.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"mode"},
		),
		wraps: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "npy",
				Subsystem: "loader",
				Name:      "epochs_total",
				Help:      "Times a loader wrapped around its shard.",
			},
		),
	}
	for _, c := range []prometheus.Collector{m.samples, m.bytesRead, m.readDuration, m.wraps} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// RecordRead records a successfully read sample.
func (m *Metrics) RecordRead(mode string, nbytes int64, d time.Duration) {
	if m == nil {
		return
	}
	m.samples.WithLabelValues(OutcomeRead, mode).Inc()
	m.bytesRead.WithLabelValues(mode).Add(float64(nbytes))
	m.readDuration.WithLabelValues(mode).Observe(d.Seconds())
}

// RecordSkip records a sample skipped because it was cached.
func (m *Metrics) RecordSkip(mode string) {
	if m == nil {
		return
	}
	m.samples.WithLabelValues(OutcomeSkipped, mode).Inc()
}

// RecordError records a failed sample read.
func (m *Metrics) RecordError(mode string) {
	if m == nil {
		return
	}
	m.samples.WithLabelValues(OutcomeError, mode).Inc()
}

// RecordWrap records a loader epoch boundary.
func (m *Metrics) RecordWrap() {
	if m == nil {
		return
	}
	m.wraps.Inc()
}
