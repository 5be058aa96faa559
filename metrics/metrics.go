// Package metrics exposes pipeline counters to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/poiesic/lexcorpus/core"
	"github.com/poiesic/lexcorpus/runner"
)

const (
	namespace = "lexcorpus"
	subsystem = "runner"

	// Labels
	taskLabel   = "task"
	statusLabel = "status"
)

// RunnerMetrics counts runner activity per task. It implements runner.Observer.
type RunnerMetrics struct {
	skipped   *prometheus.CounterVec
	retried   *prometheus.CounterVec
	committed *prometheus.CounterVec
	pending   *prometheus.GaugeVec
	duration  *prometheus.HistogramVec
}

var _ runner.Observer = (*RunnerMetrics)(nil)

// NewRunnerMetrics creates the runner metrics and registers them with reg.
func NewRunnerMetrics(reg prometheus.Registerer) *RunnerMetrics {
	m := &RunnerMetrics{
		skipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "items_skipped_total",
				Help:      "number of items skipped because the log already holds them",
			},
			[]string{taskLabel},
		),
		retried: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "call_retries_total",
				Help:      "number of failed external calls that were retried",
			},
			[]string{taskLabel},
		),
		committed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "records_committed_total",
				Help:      "number of records appended to the log by status",
			},
			[]string{taskLabel, statusLabel},
		),
		pending: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "items_remaining",
				Help:      "items the last run left unprocessed",
			},
			[]string{taskLabel},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "run_duration_seconds",
				Help:      "wall time of finished runs",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
			},
			[]string{taskLabel},
		),
	}
	reg.MustRegister(m.skipped, m.retried, m.committed, m.pending, m.duration)
	return m
}

func (m *RunnerMetrics) ItemSkipped(task string) {
	m.skipped.With(prometheus.Labels{taskLabel: task}).Inc()
}

func (m *RunnerMetrics) ItemRetried(task string, _ error) {
	m.retried.With(prometheus.Labels{taskLabel: task}).Inc()
}

func (m *RunnerMetrics) ItemCommitted(task string, status core.RecordStatus) {
	m.committed.With(prometheus.Labels{taskLabel: task, statusLabel: string(status)}).Inc()
}

func (m *RunnerMetrics) RunFinished(task string, summary *runner.Summary) {
	labels := prometheus.Labels{taskLabel: task}
	m.pending.With(labels).Set(float64(summary.Pending() - summary.Processed))
	m.duration.With(labels).Observe(summary.Elapsed.Seconds())
}
