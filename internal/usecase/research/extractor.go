package research

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"event-radar/internal/domain/entity"
	"event-radar/internal/infra/llm"
)

const extractorSystemPrompt = `You are an expert at extracting entities from event descriptions.

Your task: Identify and extract ALL relevant entities from the event.

Entity Types:
- artist: Musicians, performers, speakers, entertainers
- venue: Specific locations, halls, parks, buildings
- organizer: Companies, groups, organizations hosting the event
- topic: Main themes, subjects, causes
- genre: Music genres, art styles, activity types

For each entity, extract:
- Name (be specific and use proper names)
- Type (one of the types above)
- Brief context about why it's relevant

Extract 2-6 entities per event. Be thorough but precise.

Return your response as a simple list with this format:
ENTITY: [name] | TYPE: [type] | CONTEXT: [brief context]

Example:
ENTITY: Mac Miller | TYPE: artist | CONTEXT: Deceased rapper being honored in tribute
ENTITY: Thundercat | TYPE: artist | CONTEXT: Bassist and collaborator performing at tribute
ENTITY: White Oak Music Hall | TYPE: venue | CONTEXT: Houston indie venue hosting the event`

// Extractor pulls named entities (artists, venues, organizers, topics,
// genres) out of an event using the model. The line protocol keeps parsing
// trivial and tolerant of chatty model output.
type Extractor struct {
	llm llm.Client
}

// NewExtractor creates an entity extractor.
func NewExtractor(llmClient llm.Client) *Extractor {
	return &Extractor{llm: llmClient}
}

// Extract returns the entities found in the event. A model failure is
// returned as an error; unparseable lines are skipped.
func (e *Extractor) Extract(ctx context.Context, event *entity.Event) ([]entity.ResearchEntity, error) {
	prompt := fmt.Sprintf(`Event Title: %s

Description: %s

Location: %s

Categories: %s

Extract ALL relevant entities from this event.`,
		event.Title,
		orDefault(event.Description, "No description provided"),
		orDefault(event.Location, "Location not specified"),
		orDefault(strings.Join(event.Categories, ", "), "None"))

	response, err := e.llm.Complete(ctx, extractorSystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("entity extraction: %w", err)
	}

	entities := parseEntities(response)
	slog.DebugContext(ctx, "entities extracted",
		slog.String("event", event.Title),
		slog.Int("count", len(entities)))

	return entities, nil
}

// parseEntities parses "ENTITY: name | TYPE: type | CONTEXT: context" lines.
// Unknown types fall back to topic; lines missing the name or type segment
// are dropped.
func parseEntities(response string) []entity.ResearchEntity {
	var entities []entity.ResearchEntity

	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "ENTITY:") {
			continue
		}

		parts := strings.Split(line, "|")
		if len(parts) < 2 {
			continue
		}

		name := strings.TrimSpace(strings.TrimPrefix(parts[0], "ENTITY:"))
		entityType := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(parts[1]), "TYPE:")))
		if name == "" {
			continue
		}
		if !entity.IsValidEntityType(entityType) {
			entityType = entity.EntityTypeTopic
		}

		var context string
		if len(parts) > 2 {
			context = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(parts[2]), "CONTEXT:"))
		}

		entities = append(entities, entity.ResearchEntity{
			Name:       name,
			Type:       entityType,
			Confidence: 0.9,
			Context:    context,
		})
	}

	return entities
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
