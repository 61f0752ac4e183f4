package db

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateUp(t *testing.T) {
	t.Run("creates table and indexes", func(t *testing.T) {
		database, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = database.Close() }()

		mock.ExpectExec("CREATE TABLE IF NOT EXISTS events").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_events_created_at").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_events_title_day").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_events_start_time").
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.NoError(t, MigrateUp(database))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("table creation failure surfaces", func(t *testing.T) {
		database, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = database.Close() }()

		mock.ExpectExec("CREATE TABLE IF NOT EXISTS events").
			WillReturnError(assert.AnError)

		assert.Error(t, MigrateUp(database))
	})
}
