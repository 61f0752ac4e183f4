package promo

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"event-radar/internal/domain/entity"
	"event-radar/internal/infra/llm"
	"event-radar/internal/usecase/review"
)

const promoSystemPrompt = "You are a legendary hype announcer for local events. " +
	"You create explosive, high-energy content that builds excitement. " +
	"You follow the prompt instructions exactly and use only the URLs provided."

// Result is the generated promo plus metadata about the generation run.
type Result struct {
	PromoText      string
	EventsIncluded []string
	Confidence     float64
	Metadata       map[string]any
}

// Generator produces the weekly promo text from the reviewed events and
// their research records in a single model completion.
type Generator struct {
	llm llm.Client
	now func() time.Time
}

// NewGenerator creates a promo generator.
func NewGenerator(llmClient llm.Client) *Generator {
	return &Generator{llm: llmClient, now: time.Now}
}

// Generate ranks the events by relevance score, renders the prompt with
// research context and planning insights, and runs one completion. All
// supplied events are covered in the promo.
func (g *Generator) Generate(ctx context.Context, events []*entity.EnrichedEvent, research []*entity.EventResearch, insights []string) (*Result, error) {
	if len(events) == 0 {
		return nil, fmt.Errorf("no events to promote")
	}

	ranked := g.rank(events, research)

	prompt, err := renderPrompt(ranked, g.now())
	if err != nil {
		return nil, fmt.Errorf("render promo prompt: %w", err)
	}
	if len(insights) > 0 {
		prompt += "\n\nPLANNING INSIGHTS:\n" + strings.Join(insights, "\n") + "\n"
	}

	promoText, err := g.llm.Complete(ctx, promoSystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("promo completion: %w", err)
	}

	included := make([]string, len(ranked))
	for i, item := range ranked {
		included[i] = item.Event.Title
	}

	slog.InfoContext(ctx, "promo generated",
		slog.Int("events", len(included)),
		slog.Int("with_research", countWithResearch(ranked)),
		slog.String("provider", g.llm.Provider()))

	return &Result{
		PromoText:      promoText,
		EventsIncluded: included,
		Confidence:     0.95,
		Metadata: map[string]any{
			"provider":         g.llm.Provider(),
			"events_processed": len(events),
			"research_records": len(research),
		},
	}, nil
}

// rank sorts events by relevance score descending and attaches the matching
// research record by title. Events without a recorded score are rescored.
func (g *Generator) rank(events []*entity.EnrichedEvent, research []*entity.EventResearch) []templateEvent {
	byTitle := make(map[string]*entity.EventResearch, len(research))
	for _, r := range research {
		if r != nil {
			byTitle[r.EventTitle] = r
		}
	}

	ranked := make([]templateEvent, 0, len(events))
	for _, enriched := range events {
		score := enriched.RelevanceScore()
		if score == 0 {
			score = review.Score(enriched.Event)
		}

		description := enriched.Event.Description
		if enriched.EnrichedDescription != "" {
			description = enriched.EnrichedDescription
		}

		item := templateEvent{
			Event:       enriched.Event,
			Score:       score,
			Description: description,
		}
		if r := byTitle[enriched.Event.Title]; r != nil {
			item.ResearchNarrative = r.Narrative
			if len(r.KeyInsights) > 5 {
				item.ResearchInsights = r.KeyInsights[:5]
			} else {
				item.ResearchInsights = r.KeyInsights
			}
		}
		ranked = append(ranked, item)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

func countWithResearch(ranked []templateEvent) int {
	n := 0
	for _, item := range ranked {
		if item.ResearchNarrative != "" {
			n++
		}
	}
	return n
}
