// Package pipeline sequences a full discovery run: search fan-out, review
// swarm, optional deep research, and promo synthesis. Each phase records its
// outcome in the run state; a failed phase marks the run failed instead of
// panicking the worker.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"event-radar/internal/domain/entity"
	"event-radar/internal/infra/search"
	"event-radar/internal/observability/metrics"
	"event-radar/internal/observability/tracing"
	"event-radar/internal/usecase/promo"
	"event-radar/internal/usecase/research"
	"event-radar/internal/usecase/review"
)

// defaultMaxIterations bounds phase transitions per run. The phase graph is
// linear so this only trips if the sequencer is broken.
const defaultMaxIterations = 10

// Config controls optional pipeline behavior.
type Config struct {
	// ResearchEnabled turns on the per-event deep research chain.
	ResearchEnabled bool

	// MaxIterations bounds phase transitions; zero uses the default.
	MaxIterations int
}

// Service orchestrates one pipeline run end to end.
type Service struct {
	sources  []search.Source
	swarm    *review.Swarm
	research *research.Service
	promo    *promo.Generator
	config   Config
}

// NewService creates the pipeline sequencer. researchSvc may be nil when
// research is disabled.
func NewService(sources []search.Source, swarm *review.Swarm, researchSvc *research.Service, promoGen *promo.Generator, config Config) *Service {
	if config.MaxIterations < 1 {
		config.MaxIterations = defaultMaxIterations
	}
	return &Service{
		sources:  sources,
		swarm:    swarm,
		research: researchSvc,
		promo:    promoGen,
		config:   config,
	}
}

// Run executes the full pipeline and returns the final state. The returned
// error is non-nil only when the run could not produce a promo; partial
// search or review failures degrade instead of aborting.
func (s *Service) Run(ctx context.Context) (*State, error) {
	state := NewState(uuid.New().String())

	ctx, span := tracing.GetTracer().Start(ctx, "pipeline.run",
		trace.WithAttributes(attribute.String("run_id", state.RunID)))
	defer span.End()

	slog.InfoContext(ctx, "pipeline run started",
		slog.String("run_id", state.RunID),
		slog.Int("sources", len(s.sources)),
		slog.Bool("research_enabled", s.config.ResearchEnabled))

	// Search
	if err := s.transition(state, PhaseSearching); err != nil {
		return state, err
	}
	s.runPhase(ctx, state, "search", func(ctx context.Context) {
		s.runSearch(ctx, state)
		generateQuestions(state)
	})

	if len(state.EventsFound) == 0 {
		slog.WarnContext(ctx, "no events found, completing early",
			slog.String("run_id", state.RunID))
		state.Observe("pipeline", "No events discovered by any source.", "short_circuit", "run complete without promo", 1.0)
		s.complete(state)
		return state, nil
	}

	// Review
	if err := s.transition(state, PhaseReviewing); err != nil {
		return state, err
	}
	s.runPhase(ctx, state, "review", func(ctx context.Context) {
		enriched := s.swarm.Review(ctx, state.EventsFound)
		state.EventsReviewed = keepVerified(enriched)
		state.Observe("review",
			fmt.Sprintf("Reviewed %d events.", len(enriched)),
			"majority_vote",
			fmt.Sprintf("%d events verified", len(state.EventsReviewed)),
			meanConfidence(state.EventsReviewed))
	})

	if len(state.EventsReviewed) == 0 {
		slog.WarnContext(ctx, "no events survived review, completing early",
			slog.String("run_id", state.RunID))
		state.Observe("pipeline", "Every event failed the review vote.", "short_circuit", "run complete without promo", 1.0)
		s.complete(state)
		return state, nil
	}

	// Research (optional)
	if s.config.ResearchEnabled && s.research != nil {
		if err := s.transition(state, PhaseResearching); err != nil {
			return state, err
		}
		s.runPhase(ctx, state, "research", func(ctx context.Context) {
			state.Research = s.research.Research(ctx, state.EventsReviewed)
			state.Observe("research",
				fmt.Sprintf("Researched %d events.", len(state.Research)),
				"deep_research_chain",
				fmt.Sprintf("%d facts discovered", totalFacts(state.Research)),
				researchConfidence(state.Research))
		})
	}

	// Synthesis
	if err := s.transition(state, PhaseSynthesizing); err != nil {
		return state, err
	}
	var promoErr error
	s.runPhase(ctx, state, "synthesize", func(ctx context.Context) {
		result, err := s.promo.Generate(ctx, state.EventsReviewed, state.Research, state.PlanningInsights())
		if err != nil {
			promoErr = err
			return
		}
		state.Promo = result
		state.Observe("promo",
			fmt.Sprintf("Generated promo covering %d events.", len(result.EventsIncluded)),
			"llm_completion",
			"promo ready",
			result.Confidence)
	})
	if promoErr != nil {
		state.Phase = PhaseFailed
		state.CompletedAt = time.Now()
		return state, fmt.Errorf("synthesis phase: %w", promoErr)
	}

	s.complete(state)
	slog.InfoContext(ctx, "pipeline run complete",
		slog.String("run_id", state.RunID),
		slog.Int("events_found", len(state.EventsFound)),
		slog.Int("events_verified", len(state.EventsReviewed)),
		slog.Duration("duration", state.CompletedAt.Sub(state.StartedAt)))

	return state, nil
}

// transition advances the run to the next phase, enforcing the iteration
// guard.
func (s *Service) transition(state *State, next Phase) error {
	state.Iterations++
	if state.Iterations > s.config.MaxIterations {
		state.Phase = PhaseFailed
		state.CompletedAt = time.Now()
		return fmt.Errorf("pipeline exceeded %d phase transitions", s.config.MaxIterations)
	}
	state.Phase = next
	return nil
}

// runPhase wraps a phase body with a tracing span and duration metric.
func (s *Service) runPhase(ctx context.Context, state *State, name string, fn func(context.Context)) {
	ctx, span := tracing.GetTracer().Start(ctx, "pipeline."+name,
		trace.WithAttributes(attribute.String("run_id", state.RunID)))
	defer span.End()

	start := time.Now()
	fn(ctx)
	metrics.RecordPhase(name, time.Since(start))
}

func (s *Service) complete(state *State) {
	state.Phase = PhaseComplete
	state.CompletedAt = time.Now()
}

// keepVerified drops events that lost the review vote.
func keepVerified(enriched []*entity.EnrichedEvent) []*entity.EnrichedEvent {
	var kept []*entity.EnrichedEvent
	for _, e := range enriched {
		if e != nil && e.Verified {
			kept = append(kept, e)
		}
	}
	return kept
}

func meanConfidence(events []*entity.EnrichedEvent) float64 {
	if len(events) == 0 {
		return 0
	}
	total := 0.0
	for _, e := range events {
		total += e.Confidence
	}
	return total / float64(len(events))
}

func totalFacts(research []*entity.EventResearch) int {
	n := 0
	for _, r := range research {
		if r != nil {
			n += r.FactCount()
		}
	}
	return n
}

func researchConfidence(research []*entity.EventResearch) float64 {
	if len(research) == 0 {
		return 0
	}
	total := 0.0
	for _, r := range research {
		if r != nil {
			total += r.Confidence
		}
	}
	return total / float64(len(research))
}
