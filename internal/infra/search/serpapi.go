package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"event-radar/internal/domain/entity"
	"event-radar/internal/resilience/circuitbreaker"
	"event-radar/internal/resilience/retry"
	"event-radar/internal/utils/text"
)

const serpAPIBaseURL = "https://serpapi.com/search"

// SerpAPI discovers events through SerpAPI's Google Events engine. Google
// aggregates from many upstreams, so this source gets the highest
// confidence weight of the set.
type SerpAPI struct {
	apiKey         string
	baseURL        string
	config         Config
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

// NewSerpAPI creates a Google Events search adapter.
func NewSerpAPI(apiKey string, cfg Config, client *http.Client) *SerpAPI {
	return &SerpAPI{
		apiKey:         apiKey,
		baseURL:        serpAPIBaseURL,
		config:         cfg,
		client:         client,
		circuitBreaker: circuitbreaker.New(circuitbreaker.EventSourceConfig("serpapi-events")),
		retryConfig:    retry.EventAPIConfig(),
	}
}

// Name returns the source identifier.
func (s *SerpAPI) Name() string {
	return "google-events"
}

// Confidence returns the static trust weight for this source.
func (s *SerpAPI) Confidence() float64 {
	return 0.95
}

// Search fetches events from the Google Events engine.
// It uses circuit breaker and retry logic for improved reliability.
func (s *SerpAPI) Search(ctx context.Context) ([]entity.Event, error) {
	if s.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	var events []entity.Event

	retryErr := retry.WithBackoff(ctx, s.retryConfig, func() error {
		cbResult, err := s.circuitBreaker.Execute(func() (interface{}, error) {
			return s.doSearch(ctx)
		})

		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("serpapi circuit breaker open, request rejected",
					slog.String("source", s.Name()),
					slog.String("state", s.circuitBreaker.State().String()))
				return fmt.Errorf("serpapi unavailable: circuit breaker open")
			}
			return err
		}

		events = cbResult.([]entity.Event)
		return nil
	})

	if retryErr != nil {
		return nil, retryErr
	}

	return events, nil
}

// serpEventsResponse mirrors the google_events result envelope we consume.
type serpEventsResponse struct {
	Error         string `json:"error"`
	EventsResults []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Link        string `json:"link"`
		Date        struct {
			StartDate string `json:"start_date"`
			When      string `json:"when"`
		} `json:"date"`
		Address []string `json:"address"`
		Venue   struct {
			Name string `json:"name"`
		} `json:"venue"`
	} `json:"events_results"`
}

// doSearch performs the actual API call without retry or circuit breaker.
func (s *SerpAPI) doSearch(ctx context.Context) ([]entity.Event, error) {
	params := url.Values{}
	params.Set("engine", "google_events")
	params.Set("q", fmt.Sprintf("%s %s events this week", s.config.City, s.config.StateCode))
	params.Set("hl", "en")
	params.Set("gl", "us")
	params.Set("api_key", s.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build serpapi request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("serpapi request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read serpapi response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		message := "serpapi google_events"
		var errBody serpEventsResponse
		if json.Unmarshal(body, &errBody) == nil && errBody.Error != "" {
			message = errBody.Error
		}
		return nil, &retry.HTTPError{StatusCode: resp.StatusCode, Message: message}
	}

	var parsed serpEventsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse serpapi response: %w", err)
	}

	items := parsed.EventsResults
	// Google Events returns richer result sets than the venue APIs.
	limit := s.config.MaxResults + 10
	if len(items) > limit {
		items = items[:limit]
	}

	now := time.Now().In(s.config.Location)
	events := make([]entity.Event, 0, len(items))
	for _, item := range items {
		startTime := parseFuzzyDate(item.Date.StartDate, item.Date.When, s.config.Location, now)

		var location string
		if len(item.Address) > 0 {
			location = strings.Join(item.Address, ", ")
		} else if item.Venue.Name != "" {
			location = item.Venue.Name
		}

		events = append(events, entity.Event{
			Title:       text.Truncate(item.Title, 200, ""),
			Description: text.Truncate(item.Description, 500, ""),
			URL:         item.Link,
			Location:    location,
			StartTime:   startTime,
			Categories:  Categorize(item.Title, item.Description),
			Source:      s.Name(),
		})
	}

	slog.InfoContext(ctx, "source search completed",
		slog.String("source", s.Name()),
		slog.Int("events", len(events)))

	return events, nil
}

// fuzzyDateLayouts are tried in order against the start_date field. Google
// Events usually emits month-day strings without a year.
var fuzzyDateLayouts = []string{
	"2006-01-02",
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2",
	"January 2",
}

// clockPattern extracts a clock time such as "7 PM" or "7:30 pm" out of the
// free-form "when" field.
var clockPattern = regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{2}))?\s*(am|pm)\b`)

// parseFuzzyDate parses Google Events date strings ("Aug 24" plus
// "Sun, Aug 24, 7 – 10 PM") into a local start time. Year-less dates get the
// current year; dates that would land far in the past roll to next year.
// Returns nil when nothing parseable is found.
func parseFuzzyDate(startDate, when string, loc *time.Location, now time.Time) *time.Time {
	if startDate == "" {
		return nil
	}

	var day time.Time
	var parsed bool
	for _, layout := range fuzzyDateLayouts {
		if t, err := time.ParseInLocation(layout, startDate, loc); err == nil {
			day = t
			parsed = true
			break
		}
	}
	if !parsed {
		return nil
	}

	if day.Year() == 0 {
		day = time.Date(now.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
		if day.Before(now.AddDate(0, -6, 0)) {
			day = day.AddDate(1, 0, 0)
		}
	}

	if m := clockPattern.FindStringSubmatch(when); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute := 0
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		if strings.EqualFold(m[3], "pm") && hour < 12 {
			hour += 12
		}
		if strings.EqualFold(m[3], "am") && hour == 12 {
			hour = 0
		}
		day = time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, loc)
	}

	return &day
}
