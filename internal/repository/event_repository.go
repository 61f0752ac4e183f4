package repository

import (
	"context"
	"time"

	"event-radar/internal/domain/entity"
)

// EventRepository persists discovered events across pipeline runs.
type EventRepository interface {
	// SaveBatch inserts a batch of events in a single transaction.
	// Events that already exist for the same title and day are skipped.
	SaveBatch(ctx context.Context, events []*entity.Event) error
	// ListRecent retrieves the most recently stored events, newest first.
	ListRecent(ctx context.Context, limit int) ([]*entity.Event, error)
	// ExistsByTitleAndDay reports whether an event with the same title
	// (case-insensitive) already exists on the given day.
	ExistsByTitleAndDay(ctx context.Context, title string, day time.Time) (bool, error)
	// CountEvents returns the total number of stored events.
	// This is used for the events-in-store gauge.
	CountEvents(ctx context.Context) (int64, error)
}
