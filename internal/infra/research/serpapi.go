// Package research provides lookup agents that gather background facts for
// discovered events. The web search agent uses SerpAPI's Google engine and
// the Wikipedia agent uses the Wikimedia REST summary endpoint. Both degrade
// to empty results rather than failing the research chain.
package research

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"event-radar/internal/domain/entity"
	"event-radar/internal/observability/metrics"
	"event-radar/internal/resilience/circuitbreaker"
	"event-radar/internal/resilience/retry"
)

const serpAPIBaseURL = "https://serpapi.com/search"

// WebSearch is a lookup agent backed by SerpAPI's Google engine. Good for
// general information, recent news, and any topic.
type WebSearch struct {
	apiKey         string
	baseURL        string
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

// NewWebSearch creates a web search lookup agent.
func NewWebSearch(apiKey string, client *http.Client) *WebSearch {
	return &WebSearch{
		apiKey:         apiKey,
		baseURL:        serpAPIBaseURL,
		client:         client,
		circuitBreaker: circuitbreaker.New(circuitbreaker.LookupConfig("web-search")),
		retryConfig:    retry.LookupConfig(),
	}
}

// AgentID returns the lookup agent identifier.
func (w *WebSearch) AgentID() string {
	return "web_search"
}

// Lookup runs the query against Google and returns the top organic result
// snippets as facts. A missing API key or a failed call yields an empty
// result with zero confidence rather than an error so that one agent cannot
// sink the research chain.
func (w *WebSearch) Lookup(ctx context.Context, query entity.ResearchQuery) entity.ResearchResult {
	start := time.Now()
	result := entity.ResearchResult{
		AgentID: w.AgentID(),
		Query:   query,
	}

	if w.apiKey == "" {
		result.Duration = time.Since(start)
		return result
	}

	retryErr := retry.WithBackoff(ctx, w.retryConfig, func() error {
		cbResult, err := w.circuitBreaker.Execute(func() (interface{}, error) {
			return w.doLookup(ctx, query.Query)
		})

		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("web search circuit breaker open, request rejected",
					slog.String("agent", w.AgentID()),
					slog.String("state", w.circuitBreaker.State().String()))
				return fmt.Errorf("web search unavailable: circuit breaker open")
			}
			return err
		}

		found := cbResult.(searchHits)
		result.Sources = found.sources
		result.Facts = found.facts
		result.Snippets = found.snippets
		return nil
	})

	result.Duration = time.Since(start)

	if retryErr != nil {
		slog.WarnContext(ctx, "web search lookup failed",
			slog.String("agent", w.AgentID()),
			slog.String("query", query.Query),
			slog.String("error", retryErr.Error()))
		metrics.RecordResearchLookup(w.AgentID(), 0, false)
		return result
	}

	if len(result.Facts) > 0 {
		result.Confidence = 0.85
	} else {
		result.Confidence = 0.5
	}

	metrics.RecordResearchLookup(w.AgentID(), len(result.Facts), true)
	return result
}

// searchHits carries parsed organic results through the circuit breaker.
type searchHits struct {
	sources  []string
	facts    []string
	snippets []string
}

// serpSearchResponse mirrors the Google engine envelope we consume.
type serpSearchResponse struct {
	Error          string `json:"error"`
	OrganicResults []struct {
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"organic_results"`
}

// doLookup performs the actual API call without retry or circuit breaker.
func (w *WebSearch) doLookup(ctx context.Context, query string) (searchHits, error) {
	const topResults = 5

	params := url.Values{}
	params.Set("engine", "google")
	params.Set("q", query)
	params.Set("num", strconv.Itoa(topResults))
	params.Set("api_key", w.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return searchHits{}, fmt.Errorf("build web search request: %w", err)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return searchHits{}, fmt.Errorf("web search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return searchHits{}, &retry.HTTPError{
			StatusCode: resp.StatusCode,
			Message:    "serpapi google search",
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return searchHits{}, fmt.Errorf("read web search response: %w", err)
	}

	var parsed serpSearchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return searchHits{}, fmt.Errorf("parse web search response: %w", err)
	}
	if parsed.Error != "" {
		return searchHits{}, fmt.Errorf("serpapi error: %s", parsed.Error)
	}

	var hits searchHits
	results := parsed.OrganicResults
	if len(results) > topResults {
		results = results[:topResults]
	}
	for _, r := range results {
		if r.Link != "" {
			hits.sources = append(hits.sources, r.Link)
		}
		if r.Snippet != "" {
			hits.facts = append(hits.facts, r.Snippet)
			hits.snippets = append(hits.snippets, r.Snippet)
		}
	}

	return hits, nil
}
