// Package entity defines the core domain entities and validation logic for the application.
// It contains the fundamental business objects such as Event and EnrichedEvent, along with
// their validation rules and domain-specific errors.
package entity

import (
	"strings"
	"time"
)

// Event represents a local event discovered from an external source.
// Events are flat value objects: constructed from an API response, enriched by
// review and research steps, and finally persisted and included in the promo.
type Event struct {
	ID          int64
	Title       string
	Description string
	URL         string
	Location    string
	StartTime   *time.Time
	EndTime     *time.Time
	Categories  []string
	Source      string
	CreatedAt   time.Time
}

// Validate validates the Event entity fields.
// Title is the only mandatory field; everything else is best-effort data
// from third-party APIs.
func (e *Event) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return &ValidationError{Field: "title", Message: "must not be empty"}
	}
	if len(e.Title) > 300 {
		return &ValidationError{Field: "title", Message: "must be 300 characters or less"}
	}
	return nil
}

// DedupeKey returns the merge key used to collapse duplicate events coming
// from different sources: the lowercased title plus the event day.
// Events without a start time key on the title alone.
func (e *Event) DedupeKey() string {
	key := strings.ToLower(strings.TrimSpace(e.Title))
	if e.StartTime != nil {
		key += "|" + e.StartTime.Format("2006-01-02")
	}
	return key
}

// HasCategory reports whether the event carries the given category label.
func (e *Event) HasCategory(category string) bool {
	for _, c := range e.Categories {
		if c == category {
			return true
		}
	}
	return false
}
