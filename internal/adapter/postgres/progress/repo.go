// Package progress implements the ProgressRecord repository using PostgreSQL.
// All queries use raw SQL since responses and metadata are JSONB columns
// requiring custom marshal/unmarshal logic. Writes that must not touch a
// COMPLETED row carry the guard in the UPDATE itself; zero rows affected is
// surfaced as domain.ErrNotFound and the caller disambiguates by re-reading.
package progress

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/fernwood-lab/studyflow-backend/internal/adapter/postgres"
	"github.com/fernwood-lab/studyflow-backend/internal/domain"
)

// Repo provides progress-record persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new progress repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ---------------------------------------------------------------------------
// SQL constants
// ---------------------------------------------------------------------------

// Every read joins modules so records carry their module name and come back
// in study-plan order without a second query.
const progressColumns = `pr.id, pr.user_id, pr.module_id, m.name, pr.status, pr.responses, pr.metadata,
       pr.started_at, pr.last_saved_at, pr.completed_at, pr.created_at, pr.updated_at`

const createSQL = `
WITH inserted AS (
    INSERT INTO progress_records
        (id, user_id, module_id, status, responses, metadata, started_at, last_saved_at, created_at, updated_at)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
    RETURNING *
)
SELECT pr.id, pr.user_id, pr.module_id, m.name, pr.status, pr.responses, pr.metadata,
       pr.started_at, pr.last_saved_at, pr.completed_at, pr.created_at, pr.updated_at
FROM inserted pr
JOIN modules m ON m.id = pr.module_id`

const getByUserAndModuleSQL = `
SELECT ` + progressColumns + `
FROM progress_records pr
JOIN modules m ON m.id = pr.module_id
WHERE pr.user_id = $1 AND pr.module_id = $2`

// OF pr: lock only the progress row, never the shared module row.
const getByUserAndModuleForUpdateSQL = getByUserAndModuleSQL + `
FOR UPDATE OF pr`

const listByUserSQL = `
SELECT ` + progressColumns + `
FROM progress_records pr
JOIN modules m ON m.id = pr.module_id
WHERE pr.user_id = $1
ORDER BY m.sequence_order ASC, m.name ASC`

const updateResponsesSQL = `
WITH updated AS (
    UPDATE progress_records
    SET responses = $3, last_saved_at = $4, updated_at = now()
    WHERE user_id = $1 AND module_id = $2 AND status <> 'COMPLETED'
    RETURNING *
)
SELECT pr.id, pr.user_id, pr.module_id, m.name, pr.status, pr.responses, pr.metadata,
       pr.started_at, pr.last_saved_at, pr.completed_at, pr.created_at, pr.updated_at
FROM updated pr
JOIN modules m ON m.id = pr.module_id`

const completeSQL = `
WITH completed AS (
    UPDATE progress_records
    SET status = 'COMPLETED', responses = $3, metadata = $4, completed_at = $5, updated_at = now()
    WHERE user_id = $1 AND module_id = $2 AND status <> 'COMPLETED'
    RETURNING *
)
SELECT pr.id, pr.user_id, pr.module_id, m.name, pr.status, pr.responses, pr.metadata,
       pr.started_at, pr.last_saved_at, pr.completed_at, pr.created_at, pr.updated_at
FROM completed pr
JOIN modules m ON m.id = pr.module_id`

const completedNamesSQL = `
SELECT m.name
FROM progress_records pr
JOIN modules m ON m.id = pr.module_id
WHERE pr.user_id = $1 AND pr.status = 'COMPLETED'`

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a new progress record and returns the persisted row.
// The unique (user_id, module_id) constraint makes a duplicate create fail
// with domain.ErrAlreadyExists; callers implementing idempotent start re-read
// the existing record on that error.
func (r *Repo) Create(ctx context.Context, record *domain.ProgressRecord) (*domain.ProgressRecord, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	responsesJSON, err := marshalPayload(record.Responses)
	if err != nil {
		return nil, fmt.Errorf("progress_record %s: marshal responses: %w", record.ID, err)
	}
	metadataJSON, err := marshalPayload(record.Metadata)
	if err != nil {
		return nil, fmt.Errorf("progress_record %s: marshal metadata: %w", record.ID, err)
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	startedAt := record.StartedAt.UTC().Truncate(time.Microsecond)
	lastSavedAt := record.LastSavedAt.UTC().Truncate(time.Microsecond)

	row := querier.QueryRow(ctx, createSQL,
		record.ID,
		record.UserID,
		record.ModuleID,
		string(record.Status),
		responsesJSON,
		metadataJSON,
		startedAt,
		lastSavedAt,
		now,
	)

	created, err := scanProgress(row)
	if err != nil {
		return nil, postgres.MapError(err, "progress_record", pairRef(record.UserID, record.ModuleID))
	}

	return created, nil
}

// UpdateResponses replaces the responses payload and stamps last_saved_at on a
// record that is not COMPLETED. Callers merge before writing; the guard in the
// UPDATE keeps a concurrently completed record frozen. Returns
// domain.ErrNotFound when the record is absent or already COMPLETED.
func (r *Repo) UpdateResponses(ctx context.Context, userID, moduleID uuid.UUID, responses map[string]any, lastSavedAt time.Time) (*domain.ProgressRecord, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	responsesJSON, err := marshalPayload(responses)
	if err != nil {
		return nil, fmt.Errorf("progress_record %s: marshal responses: %w", pairRef(userID, moduleID), err)
	}

	row := querier.QueryRow(ctx, updateResponsesSQL,
		userID,
		moduleID,
		responsesJSON,
		lastSavedAt.UTC().Truncate(time.Microsecond),
	)

	updated, err := scanProgress(row)
	if err != nil {
		return nil, postgres.MapError(err, "progress_record", pairRef(userID, moduleID))
	}

	return updated, nil
}

// Complete performs the terminal transition as a single conditional update
// keyed on status <> 'COMPLETED'. Of N concurrent calls for the same
// (user_id, module_id) exactly one matches the guard and commits; the rest
// get domain.ErrNotFound here and the caller disambiguates (record completed
// vs record absent) by re-reading.
func (r *Repo) Complete(ctx context.Context, userID, moduleID uuid.UUID, responses, metadata map[string]any, completedAt time.Time) (*domain.ProgressRecord, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	responsesJSON, err := marshalPayload(responses)
	if err != nil {
		return nil, fmt.Errorf("progress_record %s: marshal responses: %w", pairRef(userID, moduleID), err)
	}
	metadataJSON, err := marshalPayload(metadata)
	if err != nil {
		return nil, fmt.Errorf("progress_record %s: marshal metadata: %w", pairRef(userID, moduleID), err)
	}

	row := querier.QueryRow(ctx, completeSQL,
		userID,
		moduleID,
		responsesJSON,
		metadataJSON,
		completedAt.UTC().Truncate(time.Microsecond),
	)

	completed, err := scanProgress(row)
	if err != nil {
		return nil, postgres.MapError(err, "progress_record", pairRef(userID, moduleID))
	}

	return completed, nil
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByUserAndModule returns the progress record for one (user, module) pair.
// Returns domain.ErrNotFound if no record exists.
func (r *Repo) GetByUserAndModule(ctx context.Context, userID, moduleID uuid.UUID) (*domain.ProgressRecord, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	row := querier.QueryRow(ctx, getByUserAndModuleSQL, userID, moduleID)

	record, err := scanProgress(row)
	if err != nil {
		return nil, postgres.MapError(err, "progress_record", pairRef(userID, moduleID))
	}

	return record, nil
}

// GetByUserAndModuleForUpdate is GetByUserAndModule with a row lock. Call it
// inside a transaction so concurrent writers to the same pair serialize on
// the lock instead of clobbering each other's merge.
func (r *Repo) GetByUserAndModuleForUpdate(ctx context.Context, userID, moduleID uuid.UUID) (*domain.ProgressRecord, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	row := querier.QueryRow(ctx, getByUserAndModuleForUpdateSQL, userID, moduleID)

	record, err := scanProgress(row)
	if err != nil {
		return nil, postgres.MapError(err, "progress_record", pairRef(userID, moduleID))
	}

	return record, nil
}

// ListByUser returns every progress record for a user in study-plan order.
func (r *Repo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.ProgressRecord, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, listByUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("list progress_records by user: %w", err)
	}
	defer rows.Close()

	records := []*domain.ProgressRecord{}
	for rows.Next() {
		record, err := scanProgress(rows)
		if err != nil {
			return nil, fmt.Errorf("list progress_records by user: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list progress_records by user: %w", err)
	}

	return records, nil
}

// CompletedModuleNames returns the set of module names the user has COMPLETED.
func (r *Repo) CompletedModuleNames(ctx context.Context, userID uuid.UUID) (map[string]bool, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, completedNamesSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("completed module names: %w", err)
	}
	defer rows.Close()

	completed := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("completed module names: %w", err)
		}
		completed[name] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("completed module names: %w", err)
	}

	return completed, nil
}

// ---------------------------------------------------------------------------
// Row scanning helpers
// ---------------------------------------------------------------------------

func scanProgress(row pgx.Row) (*domain.ProgressRecord, error) {
	var (
		id            uuid.UUID
		userID        uuid.UUID
		moduleID      uuid.UUID
		moduleName    string
		status        string
		responsesJSON []byte
		metadataJSON  []byte
		startedAt     time.Time
		lastSavedAt   time.Time
		completedAt   *time.Time
		createdAt     time.Time
		updatedAt     time.Time
	)

	if err := row.Scan(&id, &userID, &moduleID, &moduleName, &status, &responsesJSON, &metadataJSON,
		&startedAt, &lastSavedAt, &completedAt, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	responses, err := unmarshalPayload(responsesJSON)
	if err != nil {
		return nil, fmt.Errorf("progress_record %s: unmarshal responses: %w", id, err)
	}
	metadata, err := unmarshalPayload(metadataJSON)
	if err != nil {
		return nil, fmt.Errorf("progress_record %s: unmarshal metadata: %w", id, err)
	}

	return &domain.ProgressRecord{
		ID:          id,
		UserID:      userID,
		ModuleID:    moduleID,
		ModuleName:  moduleName,
		Status:      domain.ProgressStatus(status),
		Responses:   responses,
		Metadata:    metadata,
		StartedAt:   startedAt,
		LastSavedAt: lastSavedAt,
		CompletedAt: completedAt,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}

// ---------------------------------------------------------------------------
// JSONB serialization helpers
// ---------------------------------------------------------------------------

// marshalPayload converts an opaque key/value payload to JSON bytes for JSONB
// storage. nil maps are stored as empty objects, never NULL.
func marshalPayload(m map[string]any) ([]byte, error) {
	if m == nil {
		m = map[string]any{}
	}
	return json.Marshal(m)
}

// unmarshalPayload converts JSONB bytes back to a map. Empty input yields an
// empty map.
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

func pairRef(userID, moduleID uuid.UUID) string {
	return fmt.Sprintf("%s:%s", userID, moduleID)
}
