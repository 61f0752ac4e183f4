package pipeline

import (
	"fmt"
	"sync"
	"time"

	"event-radar/internal/domain/entity"
	"event-radar/internal/usecase/promo"
)

// Phase is the current stage of a pipeline run.
type Phase string

const (
	PhaseInitializing Phase = "initializing"
	PhaseSearching    Phase = "searching"
	PhaseReviewing    Phase = "reviewing"
	PhaseResearching  Phase = "researching"
	PhaseSynthesizing Phase = "synthesizing"
	PhaseComplete     Phase = "complete"
	PhaseFailed       Phase = "failed"
)

// Observation is one scratchpad entry recording what a pipeline step saw,
// did, and concluded.
type Observation struct {
	Agent      string
	Thought    string
	Action     string
	Result     string
	Confidence float64
	Timestamp  time.Time
}

// Question is a data gap noticed during the run, kept for the promo
// generator's planning insights.
type Question struct {
	Question string
	Context  string
	Answered bool
}

// SearchResult records the outcome of a single source search.
type SearchResult struct {
	Source     string
	Found      int
	Success    bool
	Error      string
	Duration   time.Duration
	Confidence float64
}

// State carries everything a pipeline run produces: phase progression, the
// observation scratchpad, per-phase results, and the final promo.
type State struct {
	RunID       string
	Phase       Phase
	StartedAt   time.Time
	CompletedAt time.Time
	Iterations  int

	SearchResults  []SearchResult
	EventsFound    []entity.Event
	EventsReviewed []*entity.EnrichedEvent
	Research       []*entity.EventResearch
	Promo          *promo.Result

	mu           sync.Mutex
	observations []Observation
	questions    []Question
}

// NewState creates a fresh run state.
func NewState(runID string) *State {
	return &State{
		RunID:     runID,
		Phase:     PhaseInitializing,
		StartedAt: time.Now(),
	}
}

// Observe appends a scratchpad entry.
func (s *State) Observe(agent, thought, action, result string, confidence float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observations = append(s.observations, Observation{
		Agent:      agent,
		Thought:    thought,
		Action:     action,
		Result:     result,
		Confidence: confidence,
		Timestamp:  time.Now(),
	})
}

// Observations returns a copy of the scratchpad.
func (s *State) Observations() []Observation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Observation, len(s.observations))
	copy(out, s.observations)
	return out
}

// LatestObservations returns the most recent n scratchpad entries.
func (s *State) LatestObservations(n int) []Observation {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n >= len(s.observations) {
		out := make([]Observation, len(s.observations))
		copy(out, s.observations)
		return out
	}
	out := make([]Observation, n)
	copy(out, s.observations[len(s.observations)-n:])
	return out
}

// AddQuestion records a data gap question.
func (s *State) AddQuestion(question, context string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.questions = append(s.questions, Question{Question: question, Context: context})
}

// Questions returns a copy of the recorded questions.
func (s *State) Questions() []Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Question, len(s.questions))
	copy(out, s.questions)
	return out
}

// PlanningInsights derives hints for the promo generator from the run so
// far: unanswered questions, low-confidence observations, and thin source
// coverage.
func (s *State) PlanningInsights() []string {
	var insights []string

	unanswered := 0
	for _, q := range s.Questions() {
		if !q.Answered {
			unanswered++
		}
	}
	if unanswered > 0 {
		insights = append(insights, fmt.Sprintf(
			"Note: %d questions remain unanswered, so focus on well-verified events.", unanswered))
	}

	lowConfidence := 0
	for _, o := range s.LatestObservations(5) {
		if o.Confidence > 0 && o.Confidence < 0.7 {
			lowConfidence++
		}
	}
	if lowConfidence > 0 {
		insights = append(insights,
			"Some events had lower confidence scores, so emphasize the verified ones.")
	}

	completed := 0
	for _, r := range s.SearchResults {
		if r.Success {
			completed++
		}
	}
	if completed < 3 {
		insights = append(insights, fmt.Sprintf(
			"Only %d source(s) completed, so data may be limited.", completed))
	}

	return insights
}

// SuccessfulSources returns the number of sources that completed.
func (s *State) SuccessfulSources() int {
	n := 0
	for _, r := range s.SearchResults {
		if r.Success {
			n++
		}
	}
	return n
}
