// Package consent implements the consent repository using PostgreSQL.
// It persists consent versions (the documents participants agree to) and
// consent records (version-pinned acceptances). Activation is split into
// RetireActive + ActivateVersion so the service can run both inside one
// transaction; a partial unique index keeps at most one ACTIVE version.
package consent

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/fernwood-lab/studyflow-backend/internal/adapter/postgres"
	"github.com/fernwood-lab/studyflow-backend/internal/domain"
)

// Repo provides consent persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new consent repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ---------------------------------------------------------------------------
// SQL constants
// ---------------------------------------------------------------------------

const versionColumns = `id, version, status, content, created_at, activated_at, retired_at`

const createVersionSQL = `
INSERT INTO consent_versions (id, version, status, content, created_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + versionColumns

const getVersionSQL = `
SELECT ` + versionColumns + `
FROM consent_versions
WHERE version = $1`

const getActiveVersionSQL = `
SELECT ` + versionColumns + `
FROM consent_versions
WHERE status = 'ACTIVE'`

const activateVersionSQL = `
UPDATE consent_versions
SET status = 'ACTIVE', activated_at = $2, retired_at = NULL
WHERE version = $1 AND status <> 'ACTIVE'
RETURNING ` + versionColumns

const retireActiveSQL = `
UPDATE consent_versions
SET status = 'RETIRED', retired_at = $1
WHERE status = 'ACTIVE'`

const listVersionsSQL = `
SELECT ` + versionColumns + `
FROM consent_versions
ORDER BY created_at DESC, version DESC`

const recordColumns = `id, user_id, version, content, accepted_at`

const createRecordSQL = `
INSERT INTO consent_records (id, user_id, version, content, accepted_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + recordColumns

const getRecordSQL = `
SELECT ` + recordColumns + `
FROM consent_records
WHERE user_id = $1 AND version = $2`

const listRecordsByUserSQL = `
SELECT ` + recordColumns + `
FROM consent_records
WHERE user_id = $1
ORDER BY accepted_at DESC`

// ---------------------------------------------------------------------------
// Version operations
// ---------------------------------------------------------------------------

// CreateVersion inserts a new consent version. A duplicate version label fails
// with domain.ErrAlreadyExists.
func (r *Repo) CreateVersion(ctx context.Context, version domain.ConsentVersion) (domain.ConsentVersion, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	createdAt := version.CreatedAt.UTC().Truncate(time.Microsecond)

	row := querier.QueryRow(ctx, createVersionSQL,
		version.ID,
		version.Version,
		string(version.Status),
		version.Content,
		createdAt,
	)

	created, err := scanVersion(row)
	if err != nil {
		return domain.ConsentVersion{}, postgres.MapError(err, "consent_version", version.Version)
	}

	return created, nil
}

// GetVersion returns one consent version by its label.
// Returns domain.ErrNotFound if it does not exist.
func (r *Repo) GetVersion(ctx context.Context, version string) (domain.ConsentVersion, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	row := querier.QueryRow(ctx, getVersionSQL, version)

	stored, err := scanVersion(row)
	if err != nil {
		return domain.ConsentVersion{}, postgres.MapError(err, "consent_version", version)
	}

	return stored, nil
}

// GetActiveVersion returns the single ACTIVE consent version.
// Returns domain.ErrNotFound when no version is active; callers treat that as
// a configuration error, not a user error.
func (r *Repo) GetActiveVersion(ctx context.Context) (domain.ConsentVersion, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	row := querier.QueryRow(ctx, getActiveVersionSQL)

	stored, err := scanVersion(row)
	if err != nil {
		return domain.ConsentVersion{}, postgres.MapError(err, "consent_version", "ACTIVE")
	}

	return stored, nil
}

// ActivateVersion promotes a DRAFT or RETIRED version to ACTIVE, stamping
// activated_at and clearing any earlier retirement. Returns domain.ErrNotFound
// when the version is absent or already ACTIVE; run RetireActive first in the
// same transaction to roll the active version over.
func (r *Repo) ActivateVersion(ctx context.Context, version string, at time.Time) (domain.ConsentVersion, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	row := querier.QueryRow(ctx, activateVersionSQL, version, at.UTC().Truncate(time.Microsecond))

	activated, err := scanVersion(row)
	if err != nil {
		return domain.ConsentVersion{}, postgres.MapError(err, "consent_version", version)
	}

	return activated, nil
}

// RetireActive retires the currently ACTIVE version if one exists, stamping
// retired_at. Retiring when nothing is active is not an error; the returned
// count reports whether a version was retired.
func (r *Repo) RetireActive(ctx context.Context, at time.Time) (int64, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	ct, err := querier.Exec(ctx, retireActiveSQL, at.UTC().Truncate(time.Microsecond))
	if err != nil {
		return 0, postgres.MapError(err, "consent_version", "ACTIVE")
	}

	return ct.RowsAffected(), nil
}

// ListVersions returns every consent version, newest first.
func (r *Repo) ListVersions(ctx context.Context) ([]domain.ConsentVersion, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, listVersionsSQL)
	if err != nil {
		return nil, fmt.Errorf("list consent_versions: %w", err)
	}
	defer rows.Close()

	var versions []domain.ConsentVersion
	for rows.Next() {
		version, err := scanVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("list consent_versions: %w", err)
		}
		versions = append(versions, version)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list consent_versions: %w", err)
	}

	return versions, nil
}

// ---------------------------------------------------------------------------
// Record operations
// ---------------------------------------------------------------------------

// CreateRecord inserts a consent record. The unique (user_id, version)
// constraint makes a repeat acceptance fail with domain.ErrAlreadyExists.
func (r *Repo) CreateRecord(ctx context.Context, record domain.ConsentRecord) (domain.ConsentRecord, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	acceptedAt := record.AcceptedAt.UTC().Truncate(time.Microsecond)

	row := querier.QueryRow(ctx, createRecordSQL,
		record.ID,
		record.UserID,
		record.Version,
		record.Content,
		acceptedAt,
	)

	created, err := scanRecord(row)
	if err != nil {
		return domain.ConsentRecord{}, postgres.MapError(err, "consent_record", fmt.Sprintf("%s:%s", record.UserID, record.Version))
	}

	return created, nil
}

// GetRecord returns the consent record for one (user, version) pair.
// Returns domain.ErrNotFound if the user never accepted that version.
func (r *Repo) GetRecord(ctx context.Context, userID uuid.UUID, version string) (domain.ConsentRecord, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	row := querier.QueryRow(ctx, getRecordSQL, userID, version)

	record, err := scanRecord(row)
	if err != nil {
		return domain.ConsentRecord{}, postgres.MapError(err, "consent_record", fmt.Sprintf("%s:%s", userID, version))
	}

	return record, nil
}

// ListRecordsByUser returns every consent record for a user, newest first.
func (r *Repo) ListRecordsByUser(ctx context.Context, userID uuid.UUID) ([]domain.ConsentRecord, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, listRecordsByUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("list consent_records by user: %w", err)
	}
	defer rows.Close()

	records := []domain.ConsentRecord{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("list consent_records by user: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list consent_records by user: %w", err)
	}

	return records, nil
}

// ---------------------------------------------------------------------------
// Row scanning helpers
// ---------------------------------------------------------------------------

func scanVersion(row pgx.Row) (domain.ConsentVersion, error) {
	var (
		v      domain.ConsentVersion
		status string
	)
	if err := row.Scan(&v.ID, &v.Version, &status, &v.Content, &v.CreatedAt, &v.ActivatedAt, &v.RetiredAt); err != nil {
		return domain.ConsentVersion{}, err
	}
	v.Status = domain.ConsentVersionStatus(status)
	return v, nil
}

func scanRecord(row pgx.Row) (domain.ConsentRecord, error) {
	var rec domain.ConsentRecord
	if err := row.Scan(&rec.ID, &rec.UserID, &rec.Version, &rec.Content, &rec.AcceptedAt); err != nil {
		return domain.ConsentRecord{}, err
	}
	return rec, nil
}
