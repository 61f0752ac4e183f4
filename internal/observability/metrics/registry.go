// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Search metrics track event discovery across sources
var (
	// EventsFoundTotal counts events returned by each search source
	EventsFoundTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_found_total",
			Help: "Total number of events returned by search sources",
		},
		[]string{"source"},
	)

	// SearchDuration measures the duration of a single source search
	SearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "search_duration_seconds",
			Help:    "Duration of event-source searches in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	// SearchErrors counts failed source searches by error type
	SearchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_errors_total",
			Help: "Total number of failed event-source searches",
		},
		[]string{"source", "error_type"},
	)

	// EventsDeduplicatedTotal counts events dropped by the title+day merge
	EventsDeduplicatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "events_deduplicated_total",
			Help: "Total number of duplicate events dropped during merge",
		},
	)
)

// Review metrics track the reviewer swarm
var (
	// ReviewVerdictsTotal counts reviewer verdicts by reviewer and outcome
	ReviewVerdictsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "review_verdicts_total",
			Help: "Total number of reviewer verdicts",
		},
		[]string{"reviewer", "outcome"},
	)

	// EventsVerifiedTotal counts events by majority-vote outcome
	EventsVerifiedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_verified_total",
			Help: "Total number of events by majority-vote outcome",
		},
		[]string{"outcome"},
	)

	// ReviewDuration measures per-event review swarm duration
	ReviewDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "review_duration_seconds",
			Help:    "Duration of per-event review in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// LLM metrics track completion calls across providers
var (
	// LLMCompletionsTotal counts LLM completion calls by provider and status
	LLMCompletionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_completions_total",
			Help: "Total number of LLM completion calls",
		},
		[]string{"provider", "status"},
	)

	// LLMCompletionDuration measures LLM call duration by provider
	LLMCompletionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_completion_duration_seconds",
			Help:    "Duration of LLM completion calls in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 60, 120},
		},
		[]string{"provider"},
	)
)

// Research metrics track the deep-research chain
var (
	// ResearchQueriesTotal counts executed research queries by agent
	ResearchQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "research_queries_total",
			Help: "Total number of research lookups executed",
		},
		[]string{"agent", "status"},
	)

	// ResearchFactsTotal counts facts discovered by lookup agents
	ResearchFactsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "research_facts_total",
			Help: "Total number of facts discovered by research lookups",
		},
		[]string{"agent"},
	)
)

// Pipeline metrics track end-to-end run outcomes
var (
	// PipelinePhaseDuration measures per-phase duration
	PipelinePhaseDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pipeline_phase_duration_seconds",
			Help:    "Duration of pipeline phases in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"phase"},
	)

	// EventsStoredTotal counts events persisted to the repository
	EventsStoredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "events_stored_total",
			Help: "Total number of events persisted",
		},
	)

	// EventsInStore tracks the current count of events in the database
	EventsInStore = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "events_in_store",
			Help: "Current number of events in the database",
		},
	)
)
