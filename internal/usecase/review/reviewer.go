// Package review validates and enriches discovered events before they reach
// synthesis. Independent reviewers each cast a verdict on an event; the
// swarm fans events out across reviewers with bounded concurrency and
// aggregates the verdicts by majority vote.
package review

import (
	"context"

	"event-radar/internal/domain/entity"
)

// Reviewer performs one independent check on an event.
type Reviewer interface {
	// ID returns a stable identifier used in logs and metrics.
	ID() string

	// Review checks the event and returns a verdict. A returned error means
	// the check could not run at all; the swarm counts it as an abstention
	// rather than a rejection.
	Review(ctx context.Context, event *entity.Event) (entity.Verdict, error)
}
