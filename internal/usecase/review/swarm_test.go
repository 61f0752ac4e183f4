package review

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"event-radar/internal/domain/entity"
)

type stubReviewer struct {
	id      string
	verdict entity.Verdict
	err     error
}

func (s *stubReviewer) ID() string { return s.id }

func (s *stubReviewer) Review(_ context.Context, _ *entity.Event) (entity.Verdict, error) {
	return s.verdict, s.err
}

func TestSwarmMajorityVote(t *testing.T) {
	swarm := NewSwarm([]Reviewer{
		&stubReviewer{id: "a", verdict: entity.Verdict{Verified: true, Confidence: 0.9}},
		&stubReviewer{id: "b", verdict: entity.Verdict{Verified: true, Confidence: 0.8}},
		&stubReviewer{id: "c", verdict: entity.Verdict{Verified: false, Confidence: 0.4}},
	}, 0)

	results := swarm.Review(context.Background(), []entity.Event{{Title: "Bike Ride"}})
	require.Len(t, results, 1)

	assert.True(t, results[0].Verified)
	assert.InDelta(t, 0.7, results[0].Confidence, 1e-9)
}

func TestSwarmMinorityNotVerified(t *testing.T) {
	swarm := NewSwarm([]Reviewer{
		&stubReviewer{id: "a", verdict: entity.Verdict{Verified: true, Confidence: 0.9}},
		&stubReviewer{id: "b", verdict: entity.Verdict{Verified: false, Confidence: 0.5}},
		&stubReviewer{id: "c", verdict: entity.Verdict{Verified: false, Confidence: 0.5}},
	}, 0)

	results := swarm.Review(context.Background(), []entity.Event{{Title: "x"}})
	require.Len(t, results, 1)
	assert.False(t, results[0].Verified)
}

func TestSwarmTieNotVerified(t *testing.T) {
	swarm := NewSwarm([]Reviewer{
		&stubReviewer{id: "a", verdict: entity.Verdict{Verified: true, Confidence: 1.0}},
		&stubReviewer{id: "b", verdict: entity.Verdict{Verified: false, Confidence: 1.0}},
	}, 0)

	results := swarm.Review(context.Background(), []entity.Event{{Title: "x"}})
	require.Len(t, results, 1)
	assert.False(t, results[0].Verified)
}

func TestSwarmAbstentionExcludedFromVote(t *testing.T) {
	// One verified vote out of one successful reviewer carries the majority
	// even though a second reviewer errored out.
	swarm := NewSwarm([]Reviewer{
		&stubReviewer{id: "a", verdict: entity.Verdict{Verified: true, Confidence: 0.8}},
		&stubReviewer{id: "b", err: errors.New("timeout")},
	}, 0)

	results := swarm.Review(context.Background(), []entity.Event{{Title: "x"}})
	require.Len(t, results, 1)

	assert.True(t, results[0].Verified)
	assert.InDelta(t, 0.8, results[0].Confidence, 1e-9)
}

func TestSwarmAllAbstain(t *testing.T) {
	swarm := NewSwarm([]Reviewer{
		&stubReviewer{id: "a", err: errors.New("down")},
		&stubReviewer{id: "b", err: errors.New("down")},
	}, 0)

	results := swarm.Review(context.Background(), []entity.Event{{Title: "x"}})
	require.Len(t, results, 1)

	assert.False(t, results[0].Verified)
	assert.Equal(t, 0.5, results[0].Confidence)
}

func TestSwarmAggregatesVerdictDetails(t *testing.T) {
	swarm := NewSwarm([]Reviewer{
		&stubReviewer{id: "a", verdict: entity.Verdict{
			Verified:   true,
			Confidence: 1.0,
			Notes:      []string{"URL responds"},
			URLWorking: true,
			Metadata:   map[string]any{"relevance_score": 10},
		}},
		&stubReviewer{id: "b", verdict: entity.Verdict{
			Verified:            true,
			Confidence:          1.0,
			Notes:               []string{"Content enriched"},
			VenueVerified:       true,
			EnrichedDescription: "A better description.",
		}},
	}, 0)

	results := swarm.Review(context.Background(), []entity.Event{{Title: "x"}})
	require.Len(t, results, 1)

	result := results[0]
	assert.ElementsMatch(t, []string{"URL responds", "Content enriched"}, result.Notes)
	assert.True(t, result.URLWorking)
	assert.True(t, result.VenueVerified)
	assert.Equal(t, "A better description.", result.EnrichedDescription)
	assert.Equal(t, 10, result.Metadata["relevance_score"])
}

func TestSwarmPreservesEventOrder(t *testing.T) {
	swarm := NewSwarm([]Reviewer{
		&stubReviewer{id: "a", verdict: entity.Verdict{Verified: true, Confidence: 1.0}},
	}, 2)

	events := []entity.Event{
		{Title: "first"}, {Title: "second"}, {Title: "third"}, {Title: "fourth"},
	}
	results := swarm.Review(context.Background(), events)
	require.Len(t, results, len(events))

	for i, result := range results {
		assert.Equal(t, events[i].Title, result.Event.Title)
	}
}
