package research

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"event-radar/internal/domain/entity"
)

// DefaultMaxConcurrent bounds how many events are researched at once. Kept
// low because each event burns several model and search API calls.
const DefaultMaxConcurrent = 2

// LookupAgent answers a single research query against an external knowledge
// source. Lookups never fail hard; an agent that finds nothing returns an
// empty result with zero confidence.
type LookupAgent interface {
	AgentID() string
	Lookup(ctx context.Context, query entity.ResearchQuery) entity.ResearchResult
}

// Service runs the per-event research chain: entity extraction, query
// generation, lookups, and narrative synthesis.
type Service struct {
	extractor     *Extractor
	queryGen      *QueryGenerator
	agents        []LookupAgent
	synthesizer   *Synthesizer
	maxConcurrent int
}

// NewService creates the research chain service. Lookup agents are consulted
// in order; later agents act as fallbacks when earlier ones find nothing.
func NewService(extractor *Extractor, queryGen *QueryGenerator, agents []LookupAgent, synthesizer *Synthesizer, maxConcurrent int) *Service {
	if maxConcurrent < 1 {
		maxConcurrent = DefaultMaxConcurrent
	}
	return &Service{
		extractor:     extractor,
		queryGen:      queryGen,
		agents:        agents,
		synthesizer:   synthesizer,
		maxConcurrent: maxConcurrent,
	}
}

// Research runs the chain for every event with bounded concurrency. The
// returned slice matches the input order; a failed chain degrades to a
// minimal record instead of dropping the event.
func (s *Service) Research(ctx context.Context, events []*entity.EnrichedEvent) []*entity.EventResearch {
	research := make([]*entity.EventResearch, len(events))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)

	for i := range events {
		i := i
		g.Go(func() error {
			research[i] = s.researchOne(ctx, events[i].Event)
			return nil
		})
	}
	_ = g.Wait()

	return research
}

// researchOne runs the full chain for a single event.
func (s *Service) researchOne(ctx context.Context, event *entity.Event) *entity.EventResearch {
	start := time.Now()

	entities, err := s.extractor.Extract(ctx, event)
	if err != nil {
		slog.WarnContext(ctx, "entity extraction failed, skipping research",
			slog.String("event", event.Title),
			slog.String("error", err.Error()))
		return s.synthesizer.Synthesize(ctx, event, nil, nil)
	}

	queries := s.queryGen.Generate(ctx, event, entities)

	var results []entity.ResearchResult
	for _, query := range queries {
		results = append(results, s.lookup(ctx, query))
	}

	research := s.synthesizer.Synthesize(ctx, event, entities, results)

	slog.InfoContext(ctx, "event researched",
		slog.String("event", event.Title),
		slog.Int("entities", len(entities)),
		slog.Int("queries", len(queries)),
		slog.Int("facts", research.FactCount()),
		slog.Float64("confidence", research.Confidence),
		slog.Duration("duration", time.Since(start)))

	return research
}

// lookup runs the query through the agent chain, returning the first result
// that carries facts. When every agent comes up empty the last result is
// kept so the query stays visible in the research record.
func (s *Service) lookup(ctx context.Context, query entity.ResearchQuery) entity.ResearchResult {
	var last entity.ResearchResult
	for _, agent := range s.agents {
		result := agent.Lookup(ctx, query)
		if len(result.Facts) > 0 {
			return result
		}
		last = result
	}
	if last.AgentID == "" {
		last = entity.ResearchResult{Query: query}
	}
	return last
}
