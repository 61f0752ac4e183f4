package entity

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEventValidate(t *testing.T) {
	tests := []struct {
		name    string
		event   Event
		wantErr bool
	}{
		{
			name:    "valid event",
			event:   Event{Title: "Critical Mass Ride"},
			wantErr: false,
		},
		{
			name:    "empty title",
			event:   Event{Title: ""},
			wantErr: true,
		},
		{
			name:    "whitespace title",
			event:   Event{Title: "   "},
			wantErr: true,
		},
		{
			name:    "title too long",
			event:   Event{Title: strings.Repeat("x", 301)},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.event.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				var vErr *ValidationError
				assert.ErrorAs(t, err, &vErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEventDedupeKey(t *testing.T) {
	day1 := time.Date(2026, 8, 24, 19, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 8, 25, 19, 0, 0, 0, time.UTC)

	t.Run("case insensitive title", func(t *testing.T) {
		a := Event{Title: "Jazz Night", StartTime: &day1}
		b := Event{Title: "JAZZ NIGHT", StartTime: &day1}
		assert.Equal(t, a.DedupeKey(), b.DedupeKey())
	})

	t.Run("same title different day", func(t *testing.T) {
		a := Event{Title: "Jazz Night", StartTime: &day1}
		b := Event{Title: "Jazz Night", StartTime: &day2}
		assert.NotEqual(t, a.DedupeKey(), b.DedupeKey())
	})

	t.Run("different time same day collapses", func(t *testing.T) {
		later := day1.Add(2 * time.Hour)
		a := Event{Title: "Jazz Night", StartTime: &day1}
		b := Event{Title: "Jazz Night", StartTime: &later}
		assert.Equal(t, a.DedupeKey(), b.DedupeKey())
	})

	t.Run("no start time keys on title", func(t *testing.T) {
		a := Event{Title: "Jazz Night"}
		assert.Equal(t, "jazz night", a.DedupeKey())
	})
}

func TestEnrichedEventRelevanceScore(t *testing.T) {
	t.Run("nil metadata", func(t *testing.T) {
		e := EnrichedEvent{}
		assert.Equal(t, 0, e.RelevanceScore())
	})

	t.Run("int score", func(t *testing.T) {
		e := EnrichedEvent{Metadata: map[string]any{"relevance_score": 17}}
		assert.Equal(t, 17, e.RelevanceScore())
	})

	t.Run("float score from json round trip", func(t *testing.T) {
		e := EnrichedEvent{Metadata: map[string]any{"relevance_score": float64(9)}}
		assert.Equal(t, 9, e.RelevanceScore())
	})
}

func TestIsValidEntityType(t *testing.T) {
	assert.True(t, IsValidEntityType(EntityTypeArtist))
	assert.True(t, IsValidEntityType(EntityTypeVenue))
	assert.False(t, IsValidEntityType("celebrity"))
	assert.False(t, IsValidEntityType(""))
}
