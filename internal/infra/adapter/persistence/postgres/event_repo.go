// Package postgres provides the PostgreSQL implementation of the event
// repository over database/sql with the pgx stdlib driver.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"event-radar/internal/domain/entity"
	"event-radar/internal/repository"
)

type EventRepo struct {
	db *sql.DB
}

func NewEventRepo(db *sql.DB) repository.EventRepository {
	return &EventRepo{db: db}
}

// SaveBatch inserts events in one transaction. Events whose title and day
// already exist are skipped so repeated pipeline runs stay idempotent.
func (repo *EventRepo) SaveBatch(ctx context.Context, events []*entity.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("SaveBatch: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const insert = `
INSERT INTO events (title, description, url, location, start_time, end_time, categories, source)
SELECT $1, $2, $3, $4, $5, $6, $7, $8
WHERE NOT EXISTS (
    SELECT 1 FROM events
    WHERE LOWER(title) = LOWER($1)
      AND (start_time::date = $5::date OR (start_time IS NULL AND $5::timestamptz IS NULL))
)`

	for _, event := range events {
		if err := event.Validate(); err != nil {
			return fmt.Errorf("SaveBatch: %w", err)
		}
		_, err := tx.ExecContext(ctx, insert,
			event.Title,
			event.Description,
			event.URL,
			event.Location,
			event.StartTime,
			event.EndTime,
			joinCategories(event.Categories),
			event.Source,
		)
		if err != nil {
			return fmt.Errorf("SaveBatch: insert %q: %w", event.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("SaveBatch: commit: %w", err)
	}
	return nil
}

// ListRecent retrieves the most recently stored events, newest first.
func (repo *EventRepo) ListRecent(ctx context.Context, limit int) ([]*entity.Event, error) {
	const query = `
SELECT id, title, description, url, location, start_time, end_time, categories, source, created_at
FROM events
ORDER BY created_at DESC
LIMIT $1`

	rows, err := repo.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("ListRecent: %w", err)
	}
	defer func() { _ = rows.Close() }()

	events := make([]*entity.Event, 0, limit)
	for rows.Next() {
		var event entity.Event
		var description, url, location, categories sql.NullString
		var startTime, endTime sql.NullTime
		if err := rows.Scan(&event.ID, &event.Title, &description, &url, &location,
			&startTime, &endTime, &categories, &event.Source, &event.CreatedAt); err != nil {
			return nil, fmt.Errorf("ListRecent: Scan: %w", err)
		}
		event.Description = description.String
		event.URL = url.String
		event.Location = location.String
		event.Categories = splitCategories(categories.String)
		if startTime.Valid {
			t := startTime.Time
			event.StartTime = &t
		}
		if endTime.Valid {
			t := endTime.Time
			event.EndTime = &t
		}
		events = append(events, &event)
	}
	return events, rows.Err()
}

// ExistsByTitleAndDay reports whether an event with the same title exists on
// the given day.
func (repo *EventRepo) ExistsByTitleAndDay(ctx context.Context, title string, day time.Time) (bool, error) {
	const query = `
SELECT EXISTS (
    SELECT 1 FROM events
    WHERE LOWER(title) = LOWER($1) AND start_time::date = $2::date
)`
	var exists bool
	if err := repo.db.QueryRowContext(ctx, query, title, day).Scan(&exists); err != nil {
		return false, fmt.Errorf("ExistsByTitleAndDay: %w", err)
	}
	return exists, nil
}

// CountEvents returns the total number of stored events.
func (repo *EventRepo) CountEvents(ctx context.Context) (int64, error) {
	const query = `SELECT COUNT(*) FROM events`
	var count int64
	if err := repo.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("CountEvents: %w", err)
	}
	return count, nil
}

// joinCategories flattens the category list into the comma-joined column
// format.
func joinCategories(categories []string) string {
	return strings.Join(categories, ",")
}

// splitCategories parses the comma-joined column back into a list.
func splitCategories(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}
