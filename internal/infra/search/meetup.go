package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/sony/gobreaker"

	"event-radar/internal/domain/entity"
	"event-radar/internal/resilience/circuitbreaker"
	"event-radar/internal/resilience/retry"
	"event-radar/internal/utils/text"
)

const meetupBaseURL = "https://api.meetup.com/gql"

// meetupQuery is the keyword search document sent to the Meetup GraphQL API.
// The city name is injected as a variable.
const meetupQuery = `
query ($query: String!, $first: Int!) {
  keywordSearch(input: {query: $query, first: $first}) {
    edges {
      node {
        ... on Event {
          title
          description
          eventUrl
        }
      }
    }
  }
}
`

// Meetup discovers community events through the Meetup GraphQL API.
type Meetup struct {
	apiKey         string
	baseURL        string
	config         Config
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

// NewMeetup creates a Meetup search adapter.
func NewMeetup(apiKey string, cfg Config, client *http.Client) *Meetup {
	return &Meetup{
		apiKey:         apiKey,
		baseURL:        meetupBaseURL,
		config:         cfg,
		client:         client,
		circuitBreaker: circuitbreaker.New(circuitbreaker.EventSourceConfig("meetup")),
		retryConfig:    retry.EventAPIConfig(),
	}
}

// Name returns the source identifier.
func (m *Meetup) Name() string {
	return "meetup"
}

// Confidence returns the static trust weight for this source.
func (m *Meetup) Confidence() float64 {
	return 0.8
}

// Search fetches community events via keyword search.
// It uses circuit breaker and retry logic for improved reliability.
func (m *Meetup) Search(ctx context.Context) ([]entity.Event, error) {
	if m.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	var events []entity.Event

	retryErr := retry.WithBackoff(ctx, m.retryConfig, func() error {
		cbResult, err := m.circuitBreaker.Execute(func() (interface{}, error) {
			return m.doSearch(ctx)
		})

		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("meetup circuit breaker open, request rejected",
					slog.String("source", m.Name()),
					slog.String("state", m.circuitBreaker.State().String()))
				return fmt.Errorf("meetup unavailable: circuit breaker open")
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

// meetupResponse mirrors the GraphQL response shape we consume.
type meetupResponse struct {
	Data struct {
		KeywordSearch struct {
			Edges []struct {
				Node struct {
					Title       string `json:"title"`
					Description string `json:"description"`
					EventURL    string `json:"eventUrl"`
				} `json:"node"`
			} `json:"edges"`
		} `json:"keywordSearch"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// doSearch performs the actual API call without retry or circuit breaker.
func (m *Meetup) doSearch(ctx context.Context) ([]entity.Event, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"query": meetupQuery,
		"variables": map[string]interface{}{
			"query": m.config.City,
			"first": m.config.MaxResults,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal meetup query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build meetup request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("meetup request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &retry.HTTPError{
			StatusCode: resp.StatusCode,
			Message:    "meetup graphql api",
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read meetup response: %w", err)
	}

	var parsed meetupResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse meetup response: %w", err)
	}
	if len(parsed.Errors) > 0 {
		return nil, fmt.Errorf("meetup graphql error: %s", parsed.Errors[0].Message)
	}

	edges := parsed.Data.KeywordSearch.Edges
	events := make([]entity.Event, 0, len(edges))
	for _, edge := range edges {
		node := edge.Node
		if node.Title == "" {
			// Non-event nodes in the keyword search come back empty.
			continue
		}
		events = append(events, entity.Event{
			Title:       text.Truncate(node.Title, 200, ""),
			Description: text.Truncate(node.Description, 500, ""),
			URL:         node.EventURL,
			Categories:  Categorize(node.Title, node.Description),
			Source:      m.Name(),
		})
	}

	slog.InfoContext(ctx, "source search completed",
		slog.String("source", m.Name()),
		slog.Int("events", len(events)))

	return events, nil
}
