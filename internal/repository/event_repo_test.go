package repository_test

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"relative_photometer/internal/models"
	"relative_photometer/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
)

var isNonEmptyString = sqlmockArgumentFunc(func(v driver.Value) bool {
	s, ok := v.(string)
	return ok && s != ""
})

func TestEventSQLite_Append_FillsDefaultsAndUppercasesType(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	defer func() { _ = db.Close() }()

	repo := repository.NewEventSQLite(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO sensor_events")).
		WithArgs(
			isNonEmptyString, // generated uuid
			isNonEmptyString, // formatted timestamp
			"FRAME",
			"frame ingested",
			isNonEmptyString, // marshaled metadata
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = repo.Append(context.Background(), models.SensorEvent{
		Type:        " frame ",
		Description: "frame ingested",
		Metadata:    map[string]any{"frame": "3051"},
	})
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEventSQLite_List_FiltersByRangeAndType(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	defer func() { _ = db.Close() }()

	repo := repository.NewEventSQLite(db)

	from := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 8, 2, 0, 0, 0, 0, time.UTC)
	occurred := time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "occurred_at", "type", "message", "meta"}).
		AddRow("evt-1", occurred, "CLEAR", "clearing frame ingested; prior samples flushed", `{"frame":"cc40"}`)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id, occurred_at, type, message, meta FROM sensor_events WHERE occurred_at >= ? AND occurred_at <= ? AND type = ? ORDER BY occurred_at ASC",
	)).
		WithArgs(from, to, "CLEAR").
		WillReturnRows(rows)

	events, err := repo.List(context.Background(), from, to, "clear")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	ev := events[0]
	if ev.EventID != "evt-1" || ev.Type != "CLEAR" {
		t.Fatalf("unexpected event: %+v", ev)
	}
	meta, ok := ev.Metadata.(map[string]any)
	if !ok || meta["frame"] != "cc40" {
		t.Fatalf("metadata not unmarshaled: %+v", ev.Metadata)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEventSQLite_List_NoFilters(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	defer func() { _ = db.Close() }()

	repo := repository.NewEventSQLite(db)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id, occurred_at, type, message, meta FROM sensor_events ORDER BY occurred_at ASC",
	)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "occurred_at", "type", "message", "meta"}))

	events, err := repo.List(context.Background(), time.Time{}, time.Time{}, "")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected no events, got %d", len(events))
	}
}
