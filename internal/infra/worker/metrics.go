package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// WorkerMetrics exposes Prometheus metrics for the scheduled job and its
// configuration loading.
type WorkerMetrics struct {
	// JobRunsTotal counts cron job runs by status (started/success/failure).
	JobRunsTotal *prometheus.CounterVec

	// JobDurationSeconds measures the duration of a full pipeline run.
	JobDurationSeconds prometheus.Histogram

	// JobEventsProcessedTotal counts events that survived review per run.
	JobEventsProcessedTotal prometheus.Counter

	// JobLastSuccessTimestamp is the Unix time of the last successful run.
	JobLastSuccessTimestamp prometheus.Gauge

	// ConfigFallbacksTotal counts configuration fallbacks by field.
	ConfigFallbacksTotal *prometheus.CounterVec

	// ConfigFallbackActive is 1 while any configuration fallback is active.
	ConfigFallbackActive prometheus.Gauge

	// ConfigLoadTimestamp is the Unix time of the last configuration load.
	ConfigLoadTimestamp prometheus.Gauge
}

// NewWorkerMetrics creates and auto-registers the worker metrics.
func NewWorkerMetrics() *WorkerMetrics {
	return &WorkerMetrics{
		JobRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_job_runs_total",
			Help: "Total number of scheduled job runs by status",
		}, []string{"status"}),

		JobDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_job_duration_seconds",
			Help:    "Duration of scheduled job runs in seconds",
			Buckets: []float64{1, 5, 30, 60, 300, 900, 1800},
		}),

		JobEventsProcessedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "worker_job_events_processed_total",
			Help: "Total number of verified events processed across job runs",
		}),

		JobLastSuccessTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "worker_job_last_success_timestamp",
			Help: "Unix timestamp of the last successful job run",
		}),

		ConfigFallbacksTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_config_fallbacks_total",
			Help: "Total number of configuration fallbacks by field",
		}, []string{"field"}),

		ConfigFallbackActive: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "worker_config_fallback_active",
			Help: "1 if any configuration fallback is active",
		}),

		ConfigLoadTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "worker_config_load_timestamp",
			Help: "Unix timestamp of the last configuration load",
		}),
	}
}

// RecordJobRun increments the run counter for the given status.
func (m *WorkerMetrics) RecordJobRun(status string) {
	m.JobRunsTotal.WithLabelValues(status).Inc()
}

// RecordJobDuration observes a run duration in seconds.
func (m *WorkerMetrics) RecordJobDuration(seconds float64) {
	m.JobDurationSeconds.Observe(seconds)
}

// RecordEventsProcessed adds the verified event count of a run.
func (m *WorkerMetrics) RecordEventsProcessed(count int) {
	m.JobEventsProcessedTotal.Add(float64(count))
}

// RecordLastSuccess stamps the last successful run at now.
func (m *WorkerMetrics) RecordLastSuccess() {
	m.JobLastSuccessTimestamp.SetToCurrentTime()
}

// RecordConfigFallback counts a configuration fallback for a field.
func (m *WorkerMetrics) RecordConfigFallback(field string) {
	m.ConfigFallbacksTotal.WithLabelValues(field).Inc()
}

// SetConfigFallbackActive flags whether any fallback is in effect.
func (m *WorkerMetrics) SetConfigFallbackActive(active bool) {
	if active {
		m.ConfigFallbackActive.Set(1)
	} else {
		m.ConfigFallbackActive.Set(0)
	}
}

// RecordConfigLoad stamps the configuration load time at now.
func (m *WorkerMetrics) RecordConfigLoad() {
	m.ConfigLoadTimestamp.SetToCurrentTime()
}
