package audit

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchiveRecordEvent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	archive := NewArchive(db)

	ev := Event{
		ID:        "ev-1",
		Timestamp: time.Now().UTC(),
		Actor:     "scheduling",
		Action:    "write",
		Resource:  "booking:write",
		Details:   map[string]any{"vehicle_id": "VHC-1"},
	}

	mock.ExpectExec("INSERT INTO audit_events").
		WithArgs(ev.ID, ev.Timestamp, ev.Actor, ev.Action, ev.Resource, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, archive.RecordEvent(context.Background(), ev))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArchiveRecordEventEmptyDetails(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	archive := NewArchive(db)
	ev := Event{ID: "ev-2", Timestamp: time.Now().UTC(), Actor: "data", Action: "read", Resource: "telemetry:read"}

	mock.ExpectExec("INSERT INTO audit_events").
		WithArgs(ev.ID, ev.Timestamp, ev.Actor, ev.Action, ev.Resource, []byte("{}")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, archive.RecordEvent(context.Background(), ev))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArchiveRecordAlert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	archive := NewArchive(db)
	alert := Alert{
		ID:        "al-1",
		Timestamp: time.Now().UTC(),
		Severity:  SeverityHigh,
		Actor:     "voice",
		Reason:    "Unauthorized resource: rca:write",
		Event:     Event{ID: "ev-1"},
	}

	mock.ExpectExec("INSERT INTO audit_alerts").
		WithArgs(alert.ID, alert.Timestamp, "high", alert.Actor, alert.Reason, "ev-1").
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, archive.RecordAlert(context.Background(), alert))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArchiveRecentAlerts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	archive := NewArchive(db)
	since := time.Now().Add(-time.Hour).UTC()
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{"id", "occurred_at", "severity", "actor", "reason", "event_id"}).
		AddRow("al-2", now, "medium", "scheduling", "Spike in actions", "ev-9")

	mock.ExpectQuery("SELECT id, occurred_at, severity, actor, reason, event_id").
		WithArgs(since, 10).
		WillReturnRows(rows)

	alerts, err := archive.RecentAlerts(context.Background(), since, 10)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, SeverityMedium, alerts[0].Severity)
	assert.Equal(t, "ev-9", alerts[0].Event.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
