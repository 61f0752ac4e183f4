package entity

// Verdict is the outcome of a single reviewer check on an event.
type Verdict struct {
	// Verified is the reviewer's vote on whether the event is real,
	// relevant, and worth including.
	Verified bool

	// Confidence is the reviewer's self-assessed confidence in [0, 1].
	Confidence float64

	// Notes are human-readable findings from the check.
	Notes []string

	// EnrichedDescription is an optional improved description produced
	// by content-aware reviewers.
	EnrichedDescription string

	// URLWorking is set when the reviewer confirmed the event URL responds.
	URLWorking bool

	// VenueVerified is set when the reviewer confirmed venue/date details.
	VenueVerified bool

	// Metadata holds reviewer-specific values, such as the relevance score.
	Metadata map[string]any
}

// EnrichedEvent is an event together with the aggregated result of the
// review swarm. Verified reflects the majority vote across reviewers and
// Confidence the mean confidence of the successful checks.
type EnrichedEvent struct {
	Event               *Event
	Verified            bool
	Notes               []string
	Confidence          float64
	EnrichedDescription string
	URLWorking          bool
	VenueVerified       bool
	Metadata            map[string]any
}

// RelevanceScore returns the keyword relevance score recorded by the
// relevance reviewer, or 0 when no score was recorded.
func (e *EnrichedEvent) RelevanceScore() int {
	if e.Metadata == nil {
		return 0
	}
	switch v := e.Metadata["relevance_score"].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}
