package review

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"event-radar/internal/domain/entity"
	"event-radar/internal/observability/metrics"
)

// DefaultMaxConcurrent bounds how many events are reviewed at once.
const DefaultMaxConcurrent = 5

// Swarm runs every reviewer against every event with bounded concurrency
// and aggregates the verdicts into enriched events.
type Swarm struct {
	reviewers     []Reviewer
	maxConcurrent int
}

// NewSwarm creates a review swarm. maxConcurrent values below one fall back
// to the default.
func NewSwarm(reviewers []Reviewer, maxConcurrent int) *Swarm {
	if maxConcurrent < 1 {
		maxConcurrent = DefaultMaxConcurrent
	}
	return &Swarm{
		reviewers:     reviewers,
		maxConcurrent: maxConcurrent,
	}
}

// Review fans the events out across the reviewer set. Each event is checked
// by all reviewers; results keep the input order.
func (s *Swarm) Review(ctx context.Context, events []entity.Event) []*entity.EnrichedEvent {
	enriched := make([]*entity.EnrichedEvent, len(events))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)

	for i := range events {
		i := i
		g.Go(func() error {
			enriched[i] = s.reviewOne(ctx, &events[i])
			return nil
		})
	}

	// Reviewer goroutines never return errors; abstentions are folded into
	// the aggregation instead.
	_ = g.Wait()

	return enriched
}

// reviewOne runs all reviewers on a single event and aggregates their
// verdicts by majority vote. Reviewer errors are abstentions: they are
// excluded from both the vote and the confidence mean.
func (s *Swarm) reviewOne(ctx context.Context, event *entity.Event) *entity.EnrichedEvent {
	start := time.Now()

	type outcome struct {
		reviewerID string
		verdict    entity.Verdict
		err        error
	}

	outcomes := make([]outcome, len(s.reviewers))

	g, ctx := errgroup.WithContext(ctx)
	for i, reviewer := range s.reviewers {
		i, reviewer := i, reviewer
		g.Go(func() error {
			verdict, err := reviewer.Review(ctx, event)
			outcomes[i] = outcome{reviewerID: reviewer.ID(), verdict: verdict, err: err}
			return nil
		})
	}
	_ = g.Wait()

	result := &entity.EnrichedEvent{
		Event:    event,
		Metadata: make(map[string]any),
	}

	var totalConfidence float64
	successful := 0
	verifiedVotes := 0

	for _, o := range outcomes {
		if o.err != nil {
			slog.WarnContext(ctx, "reviewer abstained",
				slog.String("reviewer", o.reviewerID),
				slog.String("event", event.Title),
				slog.String("error", o.err.Error()))
			continue
		}

		successful++
		totalConfidence += o.verdict.Confidence
		if o.verdict.Verified {
			verifiedVotes++
		}
		metrics.RecordReviewVerdict(o.reviewerID, o.verdict.Verified)

		result.Notes = append(result.Notes, o.verdict.Notes...)
		for k, v := range o.verdict.Metadata {
			result.Metadata[k] = v
		}
		if o.verdict.URLWorking {
			result.URLWorking = true
		}
		if o.verdict.VenueVerified {
			result.VenueVerified = true
		}
		if o.verdict.EnrichedDescription != "" {
			result.EnrichedDescription = o.verdict.EnrichedDescription
		}
	}

	if successful > 0 {
		result.Confidence = totalConfidence / float64(successful)
		result.Verified = verifiedVotes > successful/2
	} else {
		// Every reviewer abstained; nothing to vote on.
		result.Confidence = 0.5
	}

	metrics.RecordEventVerified(result.Verified)
	metrics.RecordReviewDuration(time.Since(start))

	slog.InfoContext(ctx, "event reviewed",
		slog.String("event", event.Title),
		slog.Bool("verified", result.Verified),
		slog.Int("votes", verifiedVotes),
		slog.Int("reviewers", successful),
		slog.Float64("confidence", result.Confidence))

	return result
}
