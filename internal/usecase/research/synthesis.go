package research

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"event-radar/internal/domain/entity"
	"event-radar/internal/infra/llm"
	"event-radar/internal/utils/text"
)

const synthesisSystemPrompt = `You are a master storyteller who synthesizes facts into compelling narratives.

Your task: Take research facts about an event and create a rich, engaging narrative.

Guidelines:
1. Weave facts together into a coherent story
2. Focus on what makes this event special or significant
3. Highlight connections, collaborations, or interesting context
4. Use vivid, engaging language
5. Keep it concise (200-300 words)
6. Be accurate, only use the facts provided

Your narrative should answer:
- Why is this event worth attending?
- What makes the people/places involved interesting?
- What's the cultural or historical significance?`

// maxSynthesisFacts caps how many unique facts feed the synthesis prompt.
const maxSynthesisFacts = 15

// insightKeywords mark facts worth surfacing as key insights.
var insightKeywords = []string{
	"grammy", "award", "legendary", "iconic", "historic", "first",
	"founded", "pioneered", "revolution", "collaborated", "million",
	"famous", "renowned", "celebrated",
}

// Synthesizer combines lookup results into a narrative plus key insights.
type Synthesizer struct {
	llm llm.Client
	now func() time.Time
}

// NewSynthesizer creates a knowledge synthesizer.
func NewSynthesizer(llmClient llm.Client) *Synthesizer {
	return &Synthesizer{llm: llmClient, now: time.Now}
}

// Synthesize builds the EventResearch record for an event. Without any
// discovered facts a baseline narrative is built from the event itself at
// half confidence. A model failure degrades to a fact-joined narrative
// rather than an error.
func (s *Synthesizer) Synthesize(ctx context.Context, event *entity.Event, entities []entity.ResearchEntity, results []entity.ResearchResult) *entity.EventResearch {
	research := &entity.EventResearch{
		EventTitle:   event.Title,
		Entities:     entities,
		Results:      results,
		ResearchedAt: s.now(),
	}
	for _, r := range results {
		research.Queries = append(research.Queries, r.Query)
	}

	facts := uniqueFacts(results)
	if len(facts) == 0 {
		research.Narrative = fmt.Sprintf("%s at %s. %s",
			event.Title,
			orDefault(event.Location, "Houston"),
			orDefault(event.Description, "A must-attend event!"))
		research.KeyInsights = []string{"Check event details for more information"}
		research.Confidence = 0.5
		return research
	}

	narrative, err := s.llm.Complete(ctx, synthesisSystemPrompt, s.buildPrompt(event, entities, facts))
	if err != nil {
		slog.WarnContext(ctx, "synthesis failed, using fact-joined narrative",
			slog.String("event", event.Title),
			slog.String("error", err.Error()))
		research.Narrative = text.Truncate(event.Title+". "+strings.Join(facts[:min(3, len(facts))], " "), 500, "")
		research.KeyInsights = extractKeyInsights(facts, entities)
		research.Confidence = 0.6
		return research
	}

	research.Narrative = narrative
	research.KeyInsights = extractKeyInsights(facts, entities)
	research.Confidence = synthesisConfidence(results)
	return research
}

func (s *Synthesizer) buildPrompt(event *entity.Event, entities []entity.ResearchEntity, facts []string) string {
	var entityLines []string
	for i, e := range entities {
		if i >= 5 {
			break
		}
		entityLines = append(entityLines, fmt.Sprintf("- %s (%s): %s", e.Name, e.Type, e.Context))
	}

	var factLines []string
	for i, fact := range facts {
		factLines = append(factLines, fmt.Sprintf("%d. %s", i+1, text.Truncate(fact, 200, "")))
	}

	return fmt.Sprintf(`Event: %s
Location: %s
Description: %s

Key Entities:
%s

Research Facts Discovered:
%s

Create a compelling 200-300 word narrative about this event that:
1. Explains what makes it special
2. Highlights interesting context about the people/places
3. Connects the dots between entities
4. Makes someone want to attend`,
		event.Title,
		orDefault(event.Location, "Houston, TX"),
		orDefault(event.Description, "No description provided"),
		strings.Join(entityLines, "\n"),
		strings.Join(factLines, "\n"))
}

// uniqueFacts dedupes facts across results preserving first-seen order.
func uniqueFacts(results []entity.ResearchResult) []string {
	seen := make(map[string]bool)
	var facts []string
	for _, r := range results {
		for _, fact := range r.Facts {
			if seen[fact] {
				continue
			}
			seen[fact] = true
			facts = append(facts, fact)
			if len(facts) >= maxSynthesisFacts {
				return facts
			}
		}
	}
	return facts
}

// extractKeyInsights picks up to five facts with standout keywords, padding
// from entity contexts when fewer than three match.
func extractKeyInsights(facts []string, entities []entity.ResearchEntity) []string {
	var insights []string
	for _, fact := range facts {
		lower := strings.ToLower(fact)
		for _, kw := range insightKeywords {
			if strings.Contains(lower, kw) {
				insights = append(insights, text.Truncate(fact, 150, ""))
				break
			}
		}
		if len(insights) >= 5 {
			return insights
		}
	}

	if len(insights) < 3 {
		for _, e := range entities {
			if e.Context == "" {
				continue
			}
			insights = append(insights, fmt.Sprintf("%s: %s", e.Name, e.Context))
			if len(insights) >= 3 {
				break
			}
		}
	}
	return insights
}

// synthesisConfidence is the mean lookup confidence with a small boost for
// the synthesis step, capped at 0.95.
func synthesisConfidence(results []entity.ResearchResult) float64 {
	if len(results) == 0 {
		return 0.5
	}
	total := 0.0
	for _, r := range results {
		total += r.Confidence
	}
	conf := total/float64(len(results)) + 0.1
	if conf > 0.95 {
		conf = 0.95
	}
	return conf
}
