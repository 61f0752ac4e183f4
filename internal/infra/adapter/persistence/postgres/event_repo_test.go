package postgres_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"

	"event-radar/internal/domain/entity"
	pg "event-radar/internal/infra/adapter/persistence/postgres"
)

func eventRow(e *entity.Event) *sqlmock.Rows {
	var categories string
	for i, c := range e.Categories {
		if i > 0 {
			categories += ","
		}
		categories += c
	}
	return sqlmock.NewRows([]string{
		"id", "title", "description", "url", "location",
		"start_time", "end_time", "categories", "source", "created_at",
	}).AddRow(
		e.ID, e.Title, e.Description, e.URL, e.Location,
		e.StartTime, e.EndTime, categories, e.Source, e.CreatedAt,
	)
}

func TestEventRepo_SaveBatch(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	start := time.Date(2026, 8, 26, 19, 0, 0, 0, time.UTC)
	events := []*entity.Event{
		{Title: "Jazz Night", Description: "d", URL: "u", Location: "l",
			StartTime: &start, Categories: []string{"music"}, Source: "ticketmaster"},
		{Title: "Bike Ride", Source: "meetup"},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO events")).
		WithArgs("Jazz Night", "d", "u", "l", start, nil, "music", "ticketmaster").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO events")).
		WithArgs("Bike Ride", "", "", "", nil, nil, "", "meetup").
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	repo := pg.NewEventRepo(db)
	if err := repo.SaveBatch(context.Background(), events); err != nil {
		t.Fatalf("SaveBatch err=%v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestEventRepo_SaveBatch_InvalidEvent(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectRollback()

	repo := pg.NewEventRepo(db)
	err := repo.SaveBatch(context.Background(), []*entity.Event{{Title: "   "}})
	if err == nil {
		t.Fatal("expected validation error")
	}
}

func TestEventRepo_SaveBatch_Empty(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	repo := pg.NewEventRepo(db)
	if err := repo.SaveBatch(context.Background(), nil); err != nil {
		t.Fatalf("SaveBatch err=%v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestEventRepo_ListRecent(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Date(2026, 8, 24, 6, 0, 0, 0, time.UTC)
	start := now.AddDate(0, 0, 2)
	want := &entity.Event{
		ID: 7, Title: "Jazz Night", Description: "live set", URL: "https://example.com",
		Location: "Jones Hall, Houston", StartTime: &start,
		Categories: []string{"music", "arts"}, Source: "ticketmaster", CreatedAt: now,
	}

	mock.ExpectQuery("FROM events").
		WithArgs(10).
		WillReturnRows(eventRow(want))

	repo := pg.NewEventRepo(db)
	got, err := repo.ListRecent(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListRecent err=%v", err)
	}
	if len(got) != 1 {
		t.Fatalf("ListRecent len=%d", len(got))
	}
	if diff := cmp.Diff(want, got[0]); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestEventRepo_ExistsByTitleAndDay(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	day := time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("Jazz Night", day).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	repo := pg.NewEventRepo(db)
	exists, err := repo.ExistsByTitleAndDay(context.Background(), "Jazz Night", day)
	if err != nil || !exists {
		t.Fatalf("ExistsByTitleAndDay exists=%v err=%v", exists, err)
	}
}

func TestEventRepo_CountEvents(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM events")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(42)))

	repo := pg.NewEventRepo(db)
	count, err := repo.CountEvents(context.Background())
	if err != nil || count != 42 {
		t.Fatalf("CountEvents count=%d err=%v", count, err)
	}
}
