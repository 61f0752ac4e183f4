package research

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"event-radar/internal/domain/entity"
	"event-radar/internal/infra/llm"
)

const querySystemPrompt = `You are an expert research query generator for event information.

Your task is to analyze an event and its extracted entities, then generate SPECIFIC, TARGETED research queries that will gather the most valuable information for enriching an event promo.

GOOD QUERIES (specific, actionable):
- "What are ASTN's biggest hit songs and their chart performance?"
- "What is the Bayou Music Center known for in Houston's music scene?"
- "What collaborations has Wynton Marsalis done with other jazz legends?"

BAD QUERIES (too vague):
- "Mac Miller information"
- "Tell me about Thundercat"

QUERY TYPES (choose the most appropriate):
- biographical: Artist/performer background, career, achievements, style
- contextual: General background/context information
- current: Recent/latest developments, announcements, news, tour updates
- relational: Relationships, collaborations between entities
- cultural_impact: Why this matters, significance, cultural influence
- venue_history: Venue significance, notable past events, reputation
- genre_overview: Music/performance genre, scene, style information
- historical: Historical background, origins, legacy, past significance
- awards: Awards, accolades, honors, achievements

PRIORITIES (1-10):
- 10: Critical to understanding the event (main artist/act)
- 7-9: Important context (venue, supporting acts, genre)
- 4-6: Nice-to-have enrichment
- 1-3: Optional background

Generate ONLY 2-3 high-quality queries to conserve API quota.

OUTPUT FORMAT (JSON):
{
  "queries": [
    {"query": "...", "priority": 10, "entity_name": "...", "query_type": "biographical"},
    {"query": "...", "priority": 9, "entity_name": "...", "query_type": "current"}
  ],
  "reasoning": "Brief explanation of strategy"
}`

const musicHint = `THIS IS A MUSIC EVENT.
Make at least 1-2 queries specifically about the artist's music: hit songs, albums, current tours, or awards.`

// musicKeywordHints flag an event as music-related from its title when the
// categorizer did not already tag it.
var musicKeywordHints = []string{
	"concert", "tour", "show", "live music", "orchestra", "band", "singer", "rapper", "dj",
}

// QueryGenerator turns an event and its extracted entities into a small set
// of prioritized research queries. On any model or parse failure it degrades
// to one simple biographical query per entity.
type QueryGenerator struct {
	llm llm.Client
}

// NewQueryGenerator creates a query generator.
func NewQueryGenerator(llmClient llm.Client) *QueryGenerator {
	return &QueryGenerator{llm: llmClient}
}

type queryResponse struct {
	Queries []struct {
		Query      string `json:"query"`
		Priority   int    `json:"priority"`
		EntityName string `json:"entity_name"`
		QueryType  string `json:"query_type"`
	} `json:"queries"`
	Reasoning string `json:"reasoning"`
}

// Generate produces research queries for the event, highest priority first.
// Without entities there is nothing to research and nil is returned.
func (q *QueryGenerator) Generate(ctx context.Context, event *entity.Event, entities []entity.ResearchEntity) []entity.ResearchQuery {
	if len(entities) == 0 {
		return nil
	}

	response, err := q.llm.Complete(ctx, querySystemPrompt, q.buildPrompt(event, entities))
	if err != nil {
		slog.WarnContext(ctx, "query generation failed, using fallback queries",
			slog.String("event", event.Title),
			slog.String("error", err.Error()))
		return fallbackQueries(entities)
	}

	queries, err := parseQueries(response)
	if err != nil {
		slog.WarnContext(ctx, "query response unparseable, using fallback queries",
			slog.String("event", event.Title),
			slog.String("error", err.Error()))
		return fallbackQueries(entities)
	}
	if len(queries) == 0 {
		return fallbackQueries(entities)
	}

	sort.SliceStable(queries, func(i, j int) bool {
		return queries[i].Priority > queries[j].Priority
	})
	return queries
}

func (q *QueryGenerator) buildPrompt(event *entity.Event, entities []entity.ResearchEntity) string {
	var entityLines []string
	for _, e := range entities {
		entityLines = append(entityLines, fmt.Sprintf("- %s (%s, confidence: %.2f)", e.Name, e.Type, e.Confidence))
	}

	hint := ""
	if isMusicEvent(event) {
		hint = musicHint + "\n"
	}

	date := "Date not specified"
	if event.StartTime != nil {
		date = event.StartTime.Format("Monday, January 2 at 3:04 PM")
	}

	return fmt.Sprintf(`Generate research queries for this event:

EVENT: %s
DESCRIPTION: %s
LOCATION: %s
DATE: %s
CATEGORIES: %s
%s
EXTRACTED ENTITIES:
%s

Generate ONLY 2-3 targeted queries. Focus on the most important entities and
queries that will reveal the most compelling stories, achievements, or
cultural significance.`,
		event.Title,
		orDefault(event.Description, "N/A"),
		orDefault(event.Location, "N/A"),
		date,
		orDefault(strings.Join(event.Categories, ", "), "N/A"),
		hint,
		strings.Join(entityLines, "\n"))
}

// parseQueries extracts the JSON object from the response, tolerating
// surrounding markdown fences or prose.
func parseQueries(response string) ([]entity.ResearchQuery, error) {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in response")
	}

	var parsed queryResponse
	if err := json.Unmarshal([]byte(response[start:end+1]), &parsed); err != nil {
		return nil, fmt.Errorf("decode queries: %w", err)
	}

	var queries []entity.ResearchQuery
	for _, raw := range parsed.Queries {
		if raw.Query == "" {
			continue
		}
		priority := raw.Priority
		if priority < 1 {
			priority = 1
		} else if priority > 10 {
			priority = 10
		}
		queryType := raw.QueryType
		if queryType == "" {
			queryType = "contextual"
		}
		queries = append(queries, entity.ResearchQuery{
			Query:      raw.Query,
			Priority:   priority,
			EntityName: raw.EntityName,
			QueryType:  queryType,
		})
	}
	return queries, nil
}

// fallbackQueries builds one plain query per entity, capped at three.
func fallbackQueries(entities []entity.ResearchEntity) []entity.ResearchQuery {
	var queries []entity.ResearchQuery
	for i, e := range entities {
		if i >= 3 {
			break
		}
		queries = append(queries, entity.ResearchQuery{
			Query:      fmt.Sprintf("%s information", e.Name),
			Priority:   10 - i,
			EntityName: e.Name,
			QueryType:  "biographical",
		})
	}
	return queries
}

func isMusicEvent(event *entity.Event) bool {
	for _, c := range event.Categories {
		if c == "music" {
			return true
		}
	}
	title := strings.ToLower(event.Title)
	for _, kw := range musicKeywordHints {
		if strings.Contains(title, kw) {
			return true
		}
	}
	return false
}
