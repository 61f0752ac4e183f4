package research

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"event-radar/internal/domain/entity"
)

func testEntities() []entity.ResearchEntity {
	return []entity.ResearchEntity{
		{Name: "Thundercat", Type: entity.EntityTypeArtist, Confidence: 0.9},
		{Name: "White Oak Music Hall", Type: entity.EntityTypeVenue, Confidence: 0.9},
	}
}

func TestQueryGeneratorParsesAndSorts(t *testing.T) {
	model := &fakeLLM{response: "Here is my plan:\n```json\n" + `{
  "queries": [
    {"query": "What is White Oak Music Hall known for?", "priority": 7, "entity_name": "White Oak Music Hall", "query_type": "venue_history"},
    {"query": "What are Thundercat's biggest hit songs?", "priority": 10, "entity_name": "Thundercat", "query_type": "biographical"},
    {"query": "", "priority": 5},
    {"query": "Out of range priority", "priority": 42, "entity_name": "Thundercat"}
  ],
  "reasoning": "focus on the headliner"
}` + "\n```"}

	gen := NewQueryGenerator(model)
	queries := gen.Generate(context.Background(), &entity.Event{Title: "Thundercat Live"}, testEntities())
	require.Len(t, queries, 3)

	assert.Equal(t, 10, queries[0].Priority)
	assert.Equal(t, "What are Thundercat's biggest hit songs?", queries[0].Query)
	assert.Equal(t, "biographical", queries[0].QueryType)

	// Clamped to the valid range and defaulted to contextual.
	assert.Equal(t, 10, queries[1].Priority)
	assert.Equal(t, "contextual", queries[1].QueryType)

	assert.Equal(t, 7, queries[2].Priority)
}

func TestQueryGeneratorFallbackOnModelFailure(t *testing.T) {
	gen := NewQueryGenerator(&fakeLLM{err: errors.New("rate limited")})
	queries := gen.Generate(context.Background(), &entity.Event{Title: "x"}, testEntities())
	require.Len(t, queries, 2)

	assert.Equal(t, "Thundercat information", queries[0].Query)
	assert.Equal(t, 10, queries[0].Priority)
	assert.Equal(t, 9, queries[1].Priority)
}

func TestQueryGeneratorFallbackOnGarbage(t *testing.T) {
	gen := NewQueryGenerator(&fakeLLM{response: "I cannot help with that."})
	queries := gen.Generate(context.Background(), &entity.Event{Title: "x"}, testEntities())
	require.Len(t, queries, 2)
	assert.Equal(t, "biographical", queries[0].QueryType)
}

func TestQueryGeneratorNoEntities(t *testing.T) {
	model := &fakeLLM{}
	gen := NewQueryGenerator(model)
	queries := gen.Generate(context.Background(), &entity.Event{Title: "x"}, nil)

	assert.Nil(t, queries)
	assert.Zero(t, model.calls)
}

func TestQueryGeneratorMusicHint(t *testing.T) {
	model := &fakeLLM{response: `{"queries":[{"query":"q","priority":5}]}`}
	gen := NewQueryGenerator(model)

	gen.Generate(context.Background(), &entity.Event{Title: "Symphony Gala", Categories: []string{"music"}}, testEntities())
	assert.Contains(t, model.lastPrompt, "MUSIC EVENT")

	gen.Generate(context.Background(), &entity.Event{Title: "Farmers Market"}, testEntities())
	assert.NotContains(t, model.lastPrompt, "MUSIC EVENT")

	gen.Generate(context.Background(), &entity.Event{Title: "Tribute Concert Night"}, testEntities())
	assert.Contains(t, model.lastPrompt, "MUSIC EVENT")
}
