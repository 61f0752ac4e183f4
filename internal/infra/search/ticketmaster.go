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
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"event-radar/internal/domain/entity"
	"event-radar/internal/resilience/circuitbreaker"
	"event-radar/internal/resilience/retry"
	"event-radar/internal/utils/text"
)

const ticketmasterBaseURL = "https://app.ticketmaster.com/discovery/v2/events.json"

// Ticketmaster discovers events through the Ticketmaster Discovery API,
// scoped to the configured city with a short forward window.
type Ticketmaster struct {
	apiKey         string
	baseURL        string
	config         Config
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

// NewTicketmaster creates a Ticketmaster search adapter.
func NewTicketmaster(apiKey string, cfg Config, client *http.Client) *Ticketmaster {
	return &Ticketmaster{
		apiKey:         apiKey,
		baseURL:        ticketmasterBaseURL,
		config:         cfg,
		client:         client,
		circuitBreaker: circuitbreaker.New(circuitbreaker.EventSourceConfig("ticketmaster")),
		retryConfig:    retry.EventAPIConfig(),
	}
}

// Name returns the source identifier.
func (t *Ticketmaster) Name() string {
	return "ticketmaster"
}

// Confidence returns the static trust weight for this source.
func (t *Ticketmaster) Confidence() float64 {
	return 0.9
}

// Search fetches upcoming events within the configured window.
// It uses circuit breaker and retry logic for improved reliability.
func (t *Ticketmaster) Search(ctx context.Context) ([]entity.Event, error) {
	if t.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	var events []entity.Event

	retryErr := retry.WithBackoff(ctx, t.retryConfig, func() error {
		cbResult, err := t.circuitBreaker.Execute(func() (interface{}, error) {
			return t.doSearch(ctx)
		})

		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("ticketmaster circuit breaker open, request rejected",
					slog.String("source", t.Name()),
					slog.String("state", t.circuitBreaker.State().String()))
				return fmt.Errorf("ticketmaster unavailable: circuit breaker open")
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

// ticketmasterResponse mirrors the Discovery API envelope we consume.
type ticketmasterResponse struct {
	Embedded struct {
		Events []struct {
			Name string `json:"name"`
			Info string `json:"info"`
			URL  string `json:"url"`
			Dates struct {
				Start struct {
					DateTime string `json:"dateTime"`
				} `json:"start"`
			} `json:"dates"`
			Classifications []struct {
				Genre struct {
					Name string `json:"name"`
				} `json:"genre"`
			} `json:"classifications"`
			Embedded struct {
				Venues []struct {
					Name string `json:"name"`
					City struct {
						Name string `json:"name"`
					} `json:"city"`
				} `json:"venues"`
			} `json:"_embedded"`
		} `json:"events"`
	} `json:"_embedded"`
}

// doSearch performs the actual API call without retry or circuit breaker.
func (t *Ticketmaster) doSearch(ctx context.Context) ([]entity.Event, error) {
	now := time.Now().UTC()
	params := url.Values{}
	params.Set("apikey", t.apiKey)
	params.Set("city", t.config.City)
	params.Set("stateCode", t.config.StateCode)
	params.Set("startDateTime", now.Format("2006-01-02T15:04:05Z"))
	params.Set("endDateTime", now.AddDate(0, 0, t.config.WindowDays).Format("2006-01-02T15:04:05Z"))
	params.Set("size", "50")
	params.Set("sort", "date,asc")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build ticketmaster request: %w", err)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ticketmaster request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &retry.HTTPError{
			StatusCode: resp.StatusCode,
			Message:    "ticketmaster discovery api",
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read ticketmaster response: %w", err)
	}

	var parsed ticketmasterResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse ticketmaster response: %w", err)
	}

	items := parsed.Embedded.Events
	if len(items) > t.config.MaxResults {
		items = items[:t.config.MaxResults]
	}

	events := make([]entity.Event, 0, len(items))
	for _, item := range items {
		categories := Categorize(item.Name, item.Info)

		// The Discovery API carries its own genre classification. Fold it
		// into the keyword categories.
		if len(item.Classifications) > 0 {
			genre := strings.ToLower(item.Classifications[0].Genre.Name)
			if strings.Contains(genre, "music") || strings.Contains(genre, "concert") {
				categories = appendCategory(categories, "music")
			} else if strings.Contains(genre, "sports") {
				categories = appendCategory(categories, "outdoor")
			}
		}

		var startTime *time.Time
		if raw := item.Dates.Start.DateTime; raw != "" {
			if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
				local := parsed.In(t.config.Location)
				startTime = &local
			}
		}

		var location string
		if venues := item.Embedded.Venues; len(venues) > 0 {
			venue := venues[0]
			if venue.Name != "" {
				location = venue.Name
				if venue.City.Name != "" {
					location = venue.Name + ", " + venue.City.Name
				}
			}
		}

		events = append(events, entity.Event{
			Title:       text.Truncate(item.Name, 200, ""),
			Description: text.Truncate(item.Info, 500, ""),
			URL:         item.URL,
			Location:    location,
			StartTime:   startTime,
			Categories:  categories,
			Source:      t.Name(),
		})
	}

	slog.InfoContext(ctx, "source search completed",
		slog.String("source", t.Name()),
		slog.Int("events", len(events)))

	return events, nil
}
