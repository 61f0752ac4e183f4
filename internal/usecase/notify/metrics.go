package notify

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for digest delivery monitoring
var (
	digestDispatchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digest_dispatched_total",
			Help: "Total number of digest deliveries dispatched",
		},
		[]string{"channel"},
	)

	digestSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digest_sent_total",
			Help: "Total number of digest delivery attempts by outcome",
		},
		[]string{"channel", "status"}, // status: success|failure
	)

	digestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "digest_delivery_duration_seconds",
			Help:    "Digest delivery duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30},
		},
		[]string{"channel"},
	)

	digestDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digest_dropped_total",
			Help: "Total number of dropped digest deliveries",
		},
		[]string{"channel", "reason"}, // reason: pool_full|circuit_open
	)

	circuitBreakerOpenTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digest_circuit_breaker_open_total",
			Help: "Total number of delivery circuit breaker open events",
		},
		[]string{"channel"},
	)

	activeDeliveries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "digest_active_deliveries",
			Help: "Number of in-flight digest delivery goroutines",
		},
	)

	channelsEnabled = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "digest_channels_enabled",
			Help: "Number of enabled delivery channels",
		},
	)
)

// RecordDispatch records a delivery dispatch attempt.
func RecordDispatch(channel string) {
	digestDispatchedTotal.WithLabelValues(channel).Inc()
}

// RecordSuccess records a successful delivery with its duration.
func RecordSuccess(channel string, duration time.Duration) {
	digestSentTotal.WithLabelValues(channel, "success").Inc()
	digestDuration.WithLabelValues(channel).Observe(duration.Seconds())
}

// RecordFailure records a failed delivery with its duration.
func RecordFailure(channel string, duration time.Duration) {
	digestSentTotal.WithLabelValues(channel, "failure").Inc()
	digestDuration.WithLabelValues(channel).Observe(duration.Seconds())
}

// RecordDropped records a delivery dropped before sending.
func RecordDropped(channel, reason string) {
	digestDroppedTotal.WithLabelValues(channel, reason).Inc()
}

// RecordCircuitBreakerOpen records a channel circuit breaker opening.
func RecordCircuitBreakerOpen(channel string) {
	circuitBreakerOpenTotal.WithLabelValues(channel).Inc()
}

// IncrementActiveDeliveries increments the in-flight deliveries gauge.
func IncrementActiveDeliveries() {
	activeDeliveries.Inc()
}

// DecrementActiveDeliveries decrements the in-flight deliveries gauge.
func DecrementActiveDeliveries() {
	activeDeliveries.Dec()
}

// SetChannelsEnabled sets the enabled channel count gauge.
func SetChannelsEnabled(count float64) {
	channelsEnabled.Set(count)
}
