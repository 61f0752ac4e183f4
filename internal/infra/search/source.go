// Package search provides event discovery adapters for the external event
// APIs (Ticketmaster Discovery, SerpAPI Google Events, Meetup GraphQL) and
// RSS calendar feeds. Each adapter includes circuit breaker and retry logic
// for improved reliability and reports its results through a shared Source
// interface so the pipeline can fan out over all of them uniformly.
package search

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"event-radar/internal/domain/entity"
	"event-radar/internal/pkg/config"
)

// ErrNoAPIKey is returned by adapters whose API key is not configured.
// The pipeline records these as failed sources without counting them as
// transport errors.
var ErrNoAPIKey = errors.New("no api key configured")

// Source is a single event discovery backend.
type Source interface {
	// Name returns a stable identifier used in logs, metrics, and
	// per-source result records.
	Name() string

	// Search discovers upcoming events. Implementations scope results to
	// the configured city and window.
	Search(ctx context.Context) ([]entity.Event, error)

	// Confidence is the static trust weight of this backend, in [0, 1].
	// Aggregators that pull from many upstreams rank higher than single
	// venue APIs.
	Confidence() float64
}

// Config holds shared settings for all search adapters.
type Config struct {
	// City is the target city name ("Houston").
	City string

	// StateCode is the two-letter state code ("TX").
	StateCode string

	// Location is the local timezone for event start times.
	Location *time.Location

	// WindowDays is how many days ahead API-scoped searches reach.
	WindowDays int

	// MaxResults caps how many events each adapter keeps per search.
	MaxResults int
}

// LoadSearchConfig loads search settings from environment variables with
// fail-open fallback to defaults.
//
// Environment variables:
//   - EVENT_CITY: Target city (default: Houston)
//   - EVENT_STATE: State code (default: TX)
//   - EVENT_TIMEZONE: IANA timezone (default: America/Chicago)
//   - SEARCH_WINDOW_DAYS: Days ahead for API searches (default: 3, range: 1-14)
func LoadSearchConfig() Config {
	city := config.LoadEnvString("EVENT_CITY", "Houston")
	state := config.LoadEnvString("EVENT_STATE", "TX")

	tzResult := config.LoadEnvWithFallback("EVENT_TIMEZONE", "America/Chicago", config.ValidateTimezone)
	for _, w := range tzResult.Warnings {
		slog.Warn("search config fallback", slog.String("warning", w))
	}
	loc, err := time.LoadLocation(tzResult.Value.(string))
	if err != nil {
		loc = time.UTC
	}

	windowResult := config.LoadEnvInt("SEARCH_WINDOW_DAYS", 3, config.IntRangeValidator(1, 14))
	for _, w := range windowResult.Warnings {
		slog.Warn("search config fallback", slog.String("warning", w))
	}

	return Config{
		City:       city,
		StateCode:  state,
		Location:   loc,
		WindowDays: windowResult.Value.(int),
		MaxResults: 20,
	}
}

// newHTTPClient returns the HTTP client shared by the API adapters.
func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 15 * time.Second}
}

// DefaultSources builds the full adapter set from environment configuration.
// Adapters with missing API keys are still included so the pipeline can
// record them as failed sources.
func DefaultSources() []Source {
	cfg := LoadSearchConfig()
	client := newHTTPClient()

	sources := []Source{
		NewTicketmaster(os.Getenv("TICKETMASTER_API_KEY"), cfg, client),
		NewSerpAPI(os.Getenv("SERPAPI_KEY"), cfg, client),
		NewMeetup(os.Getenv("MEETUP_API_KEY"), cfg, client),
	}

	feeds, err := LoadFeedCatalog(config.LoadEnvString("SOURCES_FILE", "sources.yaml"))
	if err != nil {
		slog.Warn("feed catalog unavailable, skipping rss sources",
			slog.String("error", err.Error()))
		return sources
	}
	for _, feed := range feeds {
		sources = append(sources, NewRSSCalendar(feed, cfg, client))
	}

	return sources
}
