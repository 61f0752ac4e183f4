package metrics

import "time"

// RecordSearch records a completed source search with its duration and
// the number of events it returned.
func RecordSearch(source string, duration time.Duration, found int) {
	SearchDuration.WithLabelValues(source).Observe(duration.Seconds())
	if found > 0 {
		EventsFoundTotal.WithLabelValues(source).Add(float64(found))
	}
}

// RecordSearchError records a failed source search.
// errorType should be a stable label such as "no_api_key", "http_error",
// or "parse_failed".
func RecordSearchError(source, errorType string) {
	SearchErrors.WithLabelValues(source, errorType).Inc()
}

// RecordDeduplicated records events dropped during the title+day merge.
func RecordDeduplicated(count int) {
	if count > 0 {
		EventsDeduplicatedTotal.Add(float64(count))
	}
}

// RecordReviewVerdict records a single reviewer verdict.
func RecordReviewVerdict(reviewer string, verified bool) {
	outcome := "verified"
	if !verified {
		outcome = "rejected"
	}
	ReviewVerdictsTotal.WithLabelValues(reviewer, outcome).Inc()
}

// RecordEventVerified records the majority-vote outcome for an event.
func RecordEventVerified(verified bool) {
	outcome := "verified"
	if !verified {
		outcome = "rejected"
	}
	EventsVerifiedTotal.WithLabelValues(outcome).Inc()
}

// RecordReviewDuration records the review swarm duration for one event.
func RecordReviewDuration(duration time.Duration) {
	ReviewDuration.Observe(duration.Seconds())
}

// RecordLLMCompletion records an LLM completion call outcome.
func RecordLLMCompletion(provider string, duration time.Duration, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	LLMCompletionsTotal.WithLabelValues(provider, status).Inc()
	LLMCompletionDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordResearchLookup records a research lookup and its discovered facts.
func RecordResearchLookup(agent string, facts int, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	ResearchQueriesTotal.WithLabelValues(agent, status).Inc()
	if facts > 0 {
		ResearchFactsTotal.WithLabelValues(agent).Add(float64(facts))
	}
}

// RecordPhase records the duration of a completed pipeline phase.
func RecordPhase(phase string, duration time.Duration) {
	PipelinePhaseDuration.WithLabelValues(phase).Observe(duration.Seconds())
}

// RecordEventsStored records events persisted in one batch.
func RecordEventsStored(count int) {
	if count > 0 {
		EventsStoredTotal.Add(float64(count))
	}
}

// UpdateEventsInStore updates the gauge tracking total stored events.
func UpdateEventsInStore(count int64) {
	EventsInStore.Set(float64(count))
}
