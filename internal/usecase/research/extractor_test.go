package research

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"event-radar/internal/domain/entity"
)

type fakeLLM struct {
	response   string
	err        error
	lastSystem string
	lastPrompt string
	calls      int
}

func (f *fakeLLM) Complete(_ context.Context, system, prompt string) (string, error) {
	f.calls++
	f.lastSystem = system
	f.lastPrompt = prompt
	return f.response, f.err
}

func (f *fakeLLM) Provider() string { return "fake" }

func TestExtractorParsesEntities(t *testing.T) {
	model := &fakeLLM{response: `Here are the entities I found:

ENTITY: Thundercat | TYPE: artist | CONTEXT: Bassist performing at the tribute
ENTITY: White Oak Music Hall | TYPE: venue | CONTEXT: Houston indie venue
ENTITY: Jazz Fusion | TYPE: subgenre | CONTEXT: Style of the show
This line is not an entity.
ENTITY: | TYPE: artist | CONTEXT: missing name`}

	extractor := NewExtractor(model)
	entities, err := extractor.Extract(context.Background(), &entity.Event{
		Title:       "Thundercat Live",
		Description: "An evening of bass",
		Categories:  []string{"music"},
	})
	require.NoError(t, err)
	require.Len(t, entities, 3)

	assert.Equal(t, "Thundercat", entities[0].Name)
	assert.Equal(t, entity.EntityTypeArtist, entities[0].Type)
	assert.Equal(t, "Bassist performing at the tribute", entities[0].Context)
	assert.Equal(t, 0.9, entities[0].Confidence)

	assert.Equal(t, entity.EntityTypeVenue, entities[1].Type)

	// Unknown type coerced to topic.
	assert.Equal(t, entity.EntityTypeTopic, entities[2].Type)

	assert.Contains(t, model.lastPrompt, "Thundercat Live")
	assert.Contains(t, model.lastPrompt, "music")
}

func TestExtractorModelFailure(t *testing.T) {
	extractor := NewExtractor(&fakeLLM{err: errors.New("overloaded")})
	_, err := extractor.Extract(context.Background(), &entity.Event{Title: "x"})
	require.Error(t, err)
}

func TestExtractorEmptyFieldsUseDefaults(t *testing.T) {
	model := &fakeLLM{response: "ENTITY: Houston | TYPE: topic | CONTEXT: city"}
	extractor := NewExtractor(model)
	_, err := extractor.Extract(context.Background(), &entity.Event{Title: "x"})
	require.NoError(t, err)

	assert.Contains(t, model.lastPrompt, "No description provided")
	assert.Contains(t, model.lastPrompt, "Location not specified")
}
