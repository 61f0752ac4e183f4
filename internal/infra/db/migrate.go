package db

import (
	"database/sql"
)

// MigrateUp creates the events table and its indexes if they do not exist.
func MigrateUp(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS events (
    id          SERIAL PRIMARY KEY,
    title       TEXT NOT NULL,
    description TEXT,
    url         TEXT,
    location    TEXT,
    start_time  TIMESTAMPTZ,
    end_time    TIMESTAMPTZ,
    categories  TEXT,
    source      TEXT NOT NULL,
    created_at  TIMESTAMPTZ DEFAULT now()
)`); err != nil {
		return err
	}

	indexes := []string{
		// ListRecent ordering
		`CREATE INDEX IF NOT EXISTS idx_events_created_at ON events(created_at DESC)`,
		// Title+day existence check during dedupe
		`CREATE INDEX IF NOT EXISTS idx_events_title_day ON events(LOWER(title), (start_time::date))`,
		// Upcoming-window queries
		`CREATE INDEX IF NOT EXISTS idx_events_start_time ON events(start_time)`,
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return err
		}
	}

	return nil
}
