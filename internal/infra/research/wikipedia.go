package research

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"event-radar/internal/domain/entity"
	"event-radar/internal/observability/metrics"
	"event-radar/internal/utils/text"
)

const wikipediaBaseURL = "https://en.wikipedia.org/api/rest_v1/page/summary"

// stopWords are skipped when deriving a Wikipedia search term from a raw
// query string.
var stopWords = map[string]bool{
	"about": true, "the": true, "a": true, "an": true,
	"what": true, "who": true, "where": true, "when": true,
	"why": true, "how": true, "is": true, "are": true,
	"biography": true, "information": true,
}

// Wikipedia is a lookup agent backed by the Wikimedia REST summary endpoint.
// Free and reliable, best for biographical and contextual information.
type Wikipedia struct {
	baseURL string
	client  *http.Client
}

// NewWikipedia creates a Wikipedia lookup agent.
func NewWikipedia(client *http.Client) *Wikipedia {
	return &Wikipedia{
		baseURL: wikipediaBaseURL,
		client:  client,
	}
}

// AgentID returns the lookup agent identifier.
func (w *Wikipedia) AgentID() string {
	return "wikipedia"
}

// Lookup fetches the page summary for the query's subject. Several search
// terms are tried in order: the entity name (or key query words), the
// underscored form, and the first word alone. Failed attempts fall through
// to the next term; exhausting all terms yields an empty result.
func (w *Wikipedia) Lookup(ctx context.Context, query entity.ResearchQuery) entity.ResearchResult {
	start := time.Now()
	result := entity.ResearchResult{
		AgentID: w.AgentID(),
		Query:   query,
	}

	searchTerm := deriveSearchTerm(query)

	attempts := []string{searchTerm}
	if underscored := strings.ReplaceAll(searchTerm, " ", "_"); underscored != searchTerm {
		attempts = append(attempts, underscored)
	}
	if first := strings.SplitN(searchTerm, " ", 2)[0]; first != searchTerm {
		attempts = append(attempts, first)
	}

	for _, attempt := range attempts {
		summary, err := w.fetchSummary(ctx, attempt)
		if err != nil {
			continue
		}

		facts := extractFacts(summary.Extract)
		if len(facts) == 0 {
			continue
		}

		if page := summary.ContentURLs.Desktop.Page; page != "" {
			result.Sources = []string{page}
		}
		result.Facts = facts
		if summary.Extract != "" {
			result.Snippets = []string{text.Truncate(summary.Extract, 500, "")}
		}
		result.Confidence = 0.95
		result.Duration = time.Since(start)

		metrics.RecordResearchLookup(w.AgentID(), len(facts), true)
		return result
	}

	slog.WarnContext(ctx, "wikipedia lookup exhausted all search terms",
		slog.String("agent", w.AgentID()),
		slog.String("search_term", searchTerm),
		slog.Int("attempts", len(attempts)))
	metrics.RecordResearchLookup(w.AgentID(), 0, false)

	result.Duration = time.Since(start)
	return result
}

// wikipediaSummary mirrors the REST summary response we consume.
type wikipediaSummary struct {
	Title       string `json:"title"`
	Extract     string `json:"extract"`
	ContentURLs struct {
		Desktop struct {
			Page string `json:"page"`
		} `json:"desktop"`
	} `json:"content_urls"`
}

// fetchSummary retrieves the page summary for one search term.
func (w *Wikipedia) fetchSummary(ctx context.Context, term string) (*wikipediaSummary, error) {
	cleaned := strings.ReplaceAll(term, " ", "_")
	endpoint := w.baseURL + "/" + url.PathEscape(cleaned)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build wikipedia request: %w", err)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wikipedia request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wikipedia returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read wikipedia response: %w", err)
	}

	var summary wikipediaSummary
	if err := json.Unmarshal(body, &summary); err != nil {
		return nil, fmt.Errorf("parse wikipedia response: %w", err)
	}

	return &summary, nil
}

// deriveSearchTerm picks the lookup subject: the entity name when present,
// otherwise the first few non-stop-words of the query.
func deriveSearchTerm(query entity.ResearchQuery) string {
	if query.EntityName != "" {
		return query.EntityName
	}

	words := strings.Fields(query.Query)
	var keyWords []string
	for _, w := range words {
		if !stopWords[strings.ToLower(w)] {
			keyWords = append(keyWords, w)
		}
	}
	if len(keyWords) == 0 {
		keyWords = words
	}
	if len(keyWords) > 3 {
		keyWords = keyWords[:3]
	}
	return strings.Join(keyWords, " ")
}

// extractFacts splits a summary extract into up to five sentence facts.
// Fragments shorter than 20 characters are dropped.
func extractFacts(extract string) []string {
	if extract == "" {
		return nil
	}

	var facts []string
	for _, sentence := range strings.Split(extract, ".") {
		sentence = strings.TrimSpace(sentence)
		if len(sentence) > 20 {
			facts = append(facts, sentence+".")
		}
		if len(facts) == 5 {
			break
		}
	}
	return facts
}
