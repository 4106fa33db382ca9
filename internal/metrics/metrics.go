// Package metrics counts batch outcomes of an analysis run and writes them in
// the Prometheus text format, for node_exporter's textfile collector or for
// comparing runs.
package metrics

import (
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const defaultNamespace = "flares"

// Recorder holds the metrics of one run.
type Recorder struct {
	namespace string
	registry  *prometheus.Registry

	fits        *prometheus.CounterVec
	fitDuration prometheus.Histogram
	dropped     *prometheus.CounterVec
	efold       prometheus.Histogram
	values      *prometheus.GaugeVec
	lastRun     prometheus.Gauge
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithNamespace sets the metric name prefix.
func WithNamespace(ns string) Option {
	return func(r *Recorder) {
		if ns != "" {
			r.namespace = ns
		}
	}
}

// WithRegistry registers into reg instead of a fresh registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(r *Recorder) {
		if reg != nil {
			r.registry = reg
		}
	}
}

// New creates a Recorder labelled with the command and run id.
func New(command, runID string, opts ...Option) *Recorder {
	r := &Recorder{namespace: defaultNamespace}
	for _, opt := range opts {
		opt(r)
	}
	if r.registry == nil {
		r.registry = prometheus.NewRegistry()
	}

	labels := prometheus.Labels{"command": command, "run_id": runID}
	f := promauto.With(r.registry)

	r.fits = f.NewCounterVec(prometheus.CounterOpts{
		Namespace:   r.namespace,
		Name:        "fits_total",
		Help:        "Fits attempted, by outcome.",
		ConstLabels: labels,
	}, []string{"status"})
	r.fitDuration = f.NewHistogram(prometheus.HistogramOpts{
		Namespace:   r.namespace,
		Name:        "fit_duration_seconds",
		Help:        "Wall time of single fits.",
		Buckets:     prometheus.ExponentialBuckets(1e-4, 4, 8),
		ConstLabels: labels,
	})
	r.dropped = f.NewCounterVec(prometheus.CounterOpts{
		Namespace:   r.namespace,
		Name:        "dropped_rows_total",
		Help:        "Rows dropped from joins, by reason.",
		ConstLabels: labels,
	}, []string{"reason"})
	r.efold = f.NewHistogram(prometheus.HistogramOpts{
		Namespace:   r.namespace,
		Name:        "efold_minutes",
		Help:        "Fitted e-folding times.",
		Buckets:     prometheus.ExponentialBuckets(0.5, 2, 10),
		ConstLabels: labels,
	})
	r.values = f.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   r.namespace,
		Name:        "value",
		Help:        "Headline values of the run.",
		ConstLabels: labels,
	}, []string{"name"})
	r.lastRun = f.NewGauge(prometheus.GaugeOpts{
		Namespace:   r.namespace,
		Name:        "last_run_timestamp_seconds",
		Help:        "Unix time the run finished.",
		ConstLabels: labels,
	})
	return r
}

// Fit records one fit outcome and its duration.
func (r *Recorder) Fit(status string, d time.Duration) {
	r.fits.WithLabelValues(status).Inc()
	r.fitDuration.Observe(d.Seconds())
}

// EFold records a fitted e-folding time in minutes.
func (r *Recorder) EFold(minutes float64) {
	r.efold.Observe(minutes)
}

// Dropped counts n rows dropped for reason.
func (r *Recorder) Dropped(reason string, n int) {
	r.dropped.WithLabelValues(reason).Add(float64(n))
}

// Value sets a named headline value.
func (r *Recorder) Value(name string, v float64) {
	r.values.WithLabelValues(name).Set(v)
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile stamps the finish time and writes all metrics to path.
func (r *Recorder) WriteTextfile(path string) error {
	r.lastRun.SetToCurrentTime()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
