package entity

import "time"

// Valid research entity types. Unknown types from the extraction model are
// coerced to EntityTypeTopic.
const (
	EntityTypeArtist    = "artist"
	EntityTypeVenue     = "venue"
	EntityTypeOrganizer = "organizer"
	EntityTypeTopic     = "topic"
	EntityTypeGenre     = "genre"
)

// ResearchEntity is a named entity extracted from an event, such as a
// performing artist or the hosting venue.
type ResearchEntity struct {
	Name       string
	Type       string
	Confidence float64
	Context    string
}

// IsValidEntityType reports whether t is one of the known entity types.
func IsValidEntityType(t string) bool {
	switch t {
	case EntityTypeArtist, EntityTypeVenue, EntityTypeOrganizer, EntityTypeTopic, EntityTypeGenre:
		return true
	}
	return false
}

// ResearchQuery is a targeted lookup generated for an extracted entity.
type ResearchQuery struct {
	Query      string
	Priority   int // 1 (background) to 10 (critical)
	EntityName string
	QueryType  string // biographical, contextual, current, venue_history, ...
}

// ResearchResult holds what a single lookup agent found for one query.
type ResearchResult struct {
	AgentID    string
	Query      ResearchQuery
	Sources    []string
	Facts      []string
	Snippets   []string
	Confidence float64
	Duration   time.Duration
}

// EventResearch is the complete research output for a single event:
// extracted entities, the queries that were run, raw results, and the
// synthesized narrative.
type EventResearch struct {
	EventTitle   string
	Entities     []ResearchEntity
	Queries      []ResearchQuery
	Results      []ResearchResult
	Narrative    string
	KeyInsights  []string
	Confidence   float64
	ResearchedAt time.Time
}

// FactCount returns the total number of facts across all results.
func (r *EventResearch) FactCount() int {
	n := 0
	for _, res := range r.Results {
		n += len(res.Facts)
	}
	return n
}
