// Package audit implements the audit-event repository using PostgreSQL.
// The table is append-only: events are written once, queried for the admin
// surface, and purged only by the retention tooling. Writes always go to the
// root pool, never a caller's transaction, so a rolled-back business
// operation cannot retract an already-written event and a failed audit write
// cannot poison an open transaction.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/fernwood-lab/studyflow-backend/internal/adapter/postgres"
	"github.com/fernwood-lab/studyflow-backend/internal/domain"
)

// Repo provides audit-event persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new audit repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// ---------------------------------------------------------------------------
// SQL constants
// ---------------------------------------------------------------------------

const eventColumns = `id, user_id, event_type, payload, created_at`

const createSQL = `
INSERT INTO audit_events (id, user_id, event_type, payload, created_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + eventColumns

const countByUserSQL = `
SELECT count(*) FROM audit_events WHERE user_id = $1`

const purgeUserEventsSQL = `
DELETE FROM audit_events WHERE user_id = $1`

const purgeBeforeSQL = `
DELETE FROM audit_events WHERE created_at < $1`

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create appends one audit event and returns the persisted row.
// It deliberately ignores any transaction in ctx and writes on the pool.
func (r *Repo) Create(ctx context.Context, event domain.AuditEvent) (domain.AuditEvent, error) {
	payloadJSON, err := marshalPayload(event.Payload)
	if err != nil {
		return domain.AuditEvent{}, fmt.Errorf("audit_event %s: marshal payload: %w", event.ID, err)
	}

	createdAt := event.CreatedAt.UTC().Truncate(time.Microsecond)

	row := r.pool.QueryRow(ctx, createSQL,
		event.ID,
		event.UserID,
		string(event.EventType),
		payloadJSON,
		createdAt,
	)

	created, err := scanEvent(row)
	if err != nil {
		return domain.AuditEvent{}, postgres.MapError(err, "audit_event", event.ID)
	}

	return created, nil
}

// PurgeUserEvents deletes every event for one user. Returns the number of
// deleted rows. Used when an identity is erased.
func (r *Repo) PurgeUserEvents(ctx context.Context, userID uuid.UUID) (int64, error) {
	ct, err := r.pool.Exec(ctx, purgeUserEventsSQL, userID)
	if err != nil {
		return 0, postgres.MapError(err, "audit_event", userID)
	}
	return ct.RowsAffected(), nil
}

// PurgeBefore deletes every event older than the cutoff. Returns the number
// of deleted rows. Used by the retention tooling.
func (r *Repo) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	ct, err := r.pool.Exec(ctx, purgeBeforeSQL, cutoff.UTC())
	if err != nil {
		return 0, postgres.MapError(err, "audit_event", cutoff)
	}
	return ct.RowsAffected(), nil
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// List returns audit events matching the filter, newest first. Limit defaults
// to 50 and is clamped to 200.
func (r *Repo) List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEvent, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	builder := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Select("id", "user_id", "event_type", "payload", "created_at").
		From("audit_events").
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset))

	if filter.UserID != nil {
		builder = builder.Where(squirrel.Eq{"user_id": *filter.UserID})
	}
	if filter.EventType != nil {
		builder = builder.Where(squirrel.Eq{"event_type": string(*filter.EventType)})
	}
	if filter.Since != nil {
		builder = builder.Where(squirrel.GtOrEq{"created_at": filter.Since.UTC()})
	}
	if filter.Until != nil {
		builder = builder.Where(squirrel.Lt{"created_at": filter.Until.UTC()})
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build audit_events query: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit_events: %w", err)
	}
	defer rows.Close()

	events := []domain.AuditEvent{}
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("list audit_events: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list audit_events: %w", err)
	}

	return events, nil
}

// CountByUser returns the total number of events recorded for a user.
func (r *Repo) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, countByUserSQL, userID).Scan(&total); err != nil {
		return 0, fmt.Errorf("count audit_events by user: %w", err)
	}
	return total, nil
}

// ---------------------------------------------------------------------------
// Row scanning helpers
// ---------------------------------------------------------------------------

func scanEvent(row pgx.Row) (domain.AuditEvent, error) {
	var (
		event       domain.AuditEvent
		eventType   string
		payloadJSON []byte
	)

	if err := row.Scan(&event.ID, &event.UserID, &eventType, &payloadJSON, &event.CreatedAt); err != nil {
		return domain.AuditEvent{}, err
	}

	event.EventType = domain.AuditEventType(eventType)

	payload, err := unmarshalPayload(payloadJSON)
	if err != nil {
		return domain.AuditEvent{}, fmt.Errorf("audit_event %s: unmarshal payload: %w", event.ID, err)
	}
	event.Payload = payload

	return event, nil
}

// ---------------------------------------------------------------------------
// JSONB serialization helpers
// ---------------------------------------------------------------------------

func marshalPayload(m map[string]any) ([]byte, error) {
	if m == nil {
		m = map[string]any{}
	}
	return json.Marshal(m)
}

func unmarshalPayload(data []byte) (map[string]any, error) {
	if len(data) == 0 {
		return map[string]any{}, nil
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}
