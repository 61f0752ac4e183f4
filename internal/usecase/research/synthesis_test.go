package research

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"event-radar/internal/domain/entity"
)

func TestSynthesizerWithFacts(t *testing.T) {
	model := &fakeLLM{response: "An unforgettable night of bass virtuosity awaits."}
	synth := NewSynthesizer(model)

	results := []entity.ResearchResult{
		{
			AgentID:    "web_search",
			Query:      entity.ResearchQuery{Query: "Thundercat hits"},
			Facts:      []string{"Thundercat won a Grammy for Drunk.", "He collaborated with Kendrick Lamar."},
			Confidence: 0.85,
		},
		{
			AgentID:    "wikipedia",
			Query:      entity.ResearchQuery{Query: "White Oak Music Hall"},
			Facts:      []string{"He collaborated with Kendrick Lamar.", "The venue opened in 2016."},
			Confidence: 0.95,
		},
	}

	research := synth.Synthesize(context.Background(), &entity.Event{Title: "Thundercat Live"}, testEntities(), results)

	assert.Equal(t, "Thundercat Live", research.EventTitle)
	assert.Equal(t, model.response, research.Narrative)
	assert.Len(t, research.Queries, 2)
	assert.InDelta(t, 0.95, research.Confidence, 1e-9)
	assert.False(t, research.ResearchedAt.IsZero())

	// Duplicate fact deduped in the prompt.
	assert.Equal(t, 1, strings.Count(model.lastPrompt, "He collaborated with Kendrick Lamar."))

	// The Grammy and collaboration facts surface as insights.
	require.NotEmpty(t, research.KeyInsights)
	assert.Contains(t, research.KeyInsights[0], "Grammy")
}

func TestSynthesizerNoFactsBaseline(t *testing.T) {
	model := &fakeLLM{}
	synth := NewSynthesizer(model)

	research := synth.Synthesize(context.Background(), &entity.Event{
		Title:    "Bayou Cleanup",
		Location: "Buffalo Bayou Park",
	}, nil, nil)

	assert.Zero(t, model.calls)
	assert.Equal(t, 0.5, research.Confidence)
	assert.Contains(t, research.Narrative, "Bayou Cleanup")
	assert.Contains(t, research.Narrative, "Buffalo Bayou Park")
	assert.Equal(t, []string{"Check event details for more information"}, research.KeyInsights)
}

func TestSynthesizerModelFailureDegrades(t *testing.T) {
	synth := NewSynthesizer(&fakeLLM{err: errors.New("overloaded")})

	results := []entity.ResearchResult{
		{Facts: []string{"The venue opened in 2016."}, Confidence: 0.9},
	}
	research := synth.Synthesize(context.Background(), &entity.Event{Title: "x"}, nil, results)

	assert.Equal(t, 0.6, research.Confidence)
	assert.Contains(t, research.Narrative, "The venue opened in 2016.")
}

func TestSynthesizerConfidenceCapped(t *testing.T) {
	synth := NewSynthesizer(&fakeLLM{response: "narrative"})

	results := []entity.ResearchResult{
		{Facts: []string{"a fact"}, Confidence: 0.95},
	}
	research := synth.Synthesize(context.Background(), &entity.Event{Title: "x"}, nil, results)
	assert.Equal(t, 0.95, research.Confidence)
}

func TestExtractKeyInsightsPadsFromEntityContext(t *testing.T) {
	facts := []string{"Doors open at 7pm.", "Parking is available nearby."}
	entities := []entity.ResearchEntity{
		{Name: "Thundercat", Context: "Headlining bassist"},
	}

	insights := extractKeyInsights(facts, entities)
	require.Len(t, insights, 1)
	assert.Equal(t, "Thundercat: Headlining bassist", insights[0])
}
