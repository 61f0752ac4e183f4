package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"event-radar/internal/domain/entity"
	"event-radar/internal/infra/search"
	"event-radar/internal/observability/metrics"
)

func TestDedupeCollapsesTitleAndDay(t *testing.T) {
	day := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	sameDayLater := day.Add(2 * time.Hour)
	nextDay := day.AddDate(0, 0, 1)

	events := []entity.Event{
		{Title: "Critical Mass Bike Ride", StartTime: &day, Source: "ticketmaster"},
		{Title: "CRITICAL MASS bike ride", StartTime: &sameDayLater, Source: "google-events", URL: "https://example.com/cm"},
		{Title: "Critical Mass Bike Ride", StartTime: &nextDay, Source: "meetup"},
	}

	merged, dropped := dedupe(events)
	require.Len(t, merged, 2)
	assert.Equal(t, 1, dropped)

	// First occurrence wins, duplicate backfills the missing URL.
	assert.Equal(t, "ticketmaster", merged[0].Source)
	assert.Equal(t, "https://example.com/cm", merged[0].URL)

	// Same title on a different day is a distinct event.
	assert.Equal(t, "meetup", merged[1].Source)
}

func TestDedupeBackfillsMissingFields(t *testing.T) {
	day := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)

	events := []entity.Event{
		{Title: "Bayou Ride", StartTime: &day, Categories: []string{"cycling"}},
		{
			Title:       "bayou ride",
			StartTime:   &day,
			Description: "Sunrise group ride",
			Location:    "Buffalo Bayou Park",
			Categories:  []string{"cycling", "outdoor"},
		},
	}

	merged, dropped := dedupe(events)
	require.Len(t, merged, 1)
	assert.Equal(t, 1, dropped)

	want := entity.Event{
		Title:       "Bayou Ride",
		StartTime:   &day,
		Description: "Sunrise group ride",
		Location:    "Buffalo Bayou Park",
		Categories:  []string{"cycling", "outdoor"},
	}
	if diff := cmp.Diff(want, merged[0]); diff != "" {
		t.Errorf("merged event mismatch (-want +got):\n%s", diff)
	}
}

func TestDedupeMissingStartKeysOnTitle(t *testing.T) {
	day := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)

	events := []entity.Event{
		{Title: "Art Walk"},
		{Title: "Art Walk", StartTime: &day},
	}

	merged, dropped := dedupe(events)
	// Different keys: title-only vs title+day.
	assert.Len(t, merged, 2)
	assert.Zero(t, dropped)
}

func TestGenerateQuestions(t *testing.T) {
	day := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	state := NewState("run-1")
	state.EventsFound = []entity.Event{
		{Title: "Complete Event", StartTime: &day, URL: "https://example.com", Location: "Somewhere"},
		{Title: "No Date", URL: "https://example.com", Location: "Somewhere"},
		{Title: "Bare Event"},
	}

	generateQuestions(state)

	questions := state.Questions()
	require.Len(t, questions, 3)
	assert.Contains(t, questions[0].Question, "2 events are missing a start time")
	assert.Contains(t, questions[1].Question, "1 events have no URL")
	assert.Contains(t, questions[1].Context, "Bare Event")
	assert.Contains(t, questions[2].Question, "1 events have no venue")
}

func TestGenerateQuestionsNoGaps(t *testing.T) {
	day := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	state := NewState("run-1")
	state.EventsFound = []entity.Event{
		{Title: "Complete Event", StartTime: &day, URL: "https://example.com", Location: "Somewhere"},
	}

	generateQuestions(state)
	assert.Empty(t, state.Questions())
}

func TestRunSearchRecordsEachSourceOnce(t *testing.T) {
	const feedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Calendar</title>
<item><title>Bayou Art Walk</title><link>https://example.com/art-walk</link>
<pubDate>Mon, 24 Aug 2026 10:00:00 GMT</pubDate></item>
</channel></rss>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(feedXML))
	}))
	defer server.Close()

	feed := search.Feed{Name: "single-count", URL: server.URL, Confidence: 0.6}
	cfg := search.Config{City: "Houston", StateCode: "TX", Location: time.UTC, WindowDays: 3, MaxResults: 20}
	source := search.NewRSSCalendar(feed, cfg, server.Client())

	counter := metrics.EventsFoundTotal.WithLabelValues(source.Name())
	before := testutil.ToFloat64(counter)

	svc := NewService([]search.Source{source}, nil, nil, nil, Config{})
	state := NewState("run-1")
	svc.runSearch(context.Background(), state)

	require.Len(t, state.EventsFound, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(counter)-before,
		"one search returning one event must count exactly once")
}
