package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Archive persists audit events and alerts to Postgres. It is the durable
// sink behind the capped in-process stream and implements Sink.
type Archive struct {
	db *sql.DB
}

// NewArchive creates an archive backed by the given database handle.
func NewArchive(db *sql.DB) *Archive {
	return &Archive{db: db}
}

var _ Sink = (*Archive)(nil)

// RecordEvent inserts one audit event row.
func (a *Archive) RecordEvent(ctx context.Context, ev Event) error {
	details, err := marshalDetails(ev.Details)
	if err != nil {
		return fmt.Errorf("audit: encode event details: %w", err)
	}

	query := `
		INSERT INTO audit_events (id, occurred_at, actor, action, resource, details)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := a.db.ExecContext(ctx, query,
		ev.ID, ev.Timestamp, ev.Actor, ev.Action, ev.Resource, details,
	); err != nil {
		return fmt.Errorf("audit: archive event: %w", err)
	}
	return nil
}

// RecordAlert inserts one audit alert row, referencing the triggering event.
func (a *Archive) RecordAlert(ctx context.Context, alert Alert) error {
	query := `
		INSERT INTO audit_alerts (id, occurred_at, severity, actor, reason, event_id)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := a.db.ExecContext(ctx, query,
		alert.ID, alert.Timestamp, string(alert.Severity), alert.Actor, alert.Reason, alert.Event.ID,
	); err != nil {
		return fmt.Errorf("audit: archive alert: %w", err)
	}
	return nil
}

// RecentAlerts returns archived alerts newer than since, most recent first.
func (a *Archive) RecentAlerts(ctx context.Context, since time.Time, limit int) ([]Alert, error) {
	query := `
		SELECT id, occurred_at, severity, actor, reason, event_id
		FROM audit_alerts
		WHERE occurred_at >= $1
		ORDER BY occurred_at DESC
		LIMIT $2
	`
	rows, err := a.db.QueryContext(ctx, query, since, limit)
	if err != nil {
		return nil, fmt.Errorf("audit: query archived alerts: %w", err)
	}
	defer rows.Close()

	var alerts []Alert
	for rows.Next() {
		var al Alert
		var severity, eventID string
		if err := rows.Scan(&al.ID, &al.Timestamp, &severity, &al.Actor, &al.Reason, &eventID); err != nil {
			return nil, fmt.Errorf("audit: scan archived alert: %w", err)
		}
		al.Severity = Severity(severity)
		al.Event = Event{ID: eventID}
		alerts = append(alerts, al)
	}
	return alerts, rows.Err()
}

func marshalDetails(details map[string]any) ([]byte, error) {
	if len(details) == 0 {
		return []byte("{}"), nil
	}
	return json.Marshal(details)
}
