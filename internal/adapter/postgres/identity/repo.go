// Package identity implements the identity repository using PostgreSQL.
// Aliases are unique-indexed so lookup-by-alias is a point read, and the
// attributes column carries a GIN index so attribute matches use JSONB
// containment instead of scanning every row.
package identity

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

// Repo provides identity persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new identity repository.
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

const identityColumns = `id, alias, password_hash, role, attributes, created_at, last_seen_at`

const createSQL = `
INSERT INTO identities (id, alias, password_hash, role, attributes, created_at, last_seen_at)
VALUES ($1, $2, $3, $4, $5, $6, $6)
RETURNING ` + identityColumns

const getByIDSQL = `
SELECT ` + identityColumns + `
FROM identities
WHERE id = $1`

const getByAliasSQL = `
SELECT ` + identityColumns + `
FROM identities
WHERE alias = $1`

const updateAttributesSQL = `
UPDATE identities
SET attributes = attributes || $2
WHERE id = $1
RETURNING ` + identityColumns

const updateLastSeenSQL = `
UPDATE identities
SET last_seen_at = $2
WHERE id = $1`

const deleteIdleSinceSQL = `
DELETE FROM identities
WHERE last_seen_at < $1 AND role <> 'ADMIN'
RETURNING id`

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a new identity and returns the persisted row. An alias
// collision fails with domain.ErrAlreadyExists; callers regenerate and retry.
func (r *Repo) Create(ctx context.Context, identity domain.Identity) (domain.Identity, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	attrsJSON, err := marshalAttributes(identity.Attributes)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("identity %s: marshal attributes: %w", identity.ID, err)
	}

	createdAt := identity.CreatedAt.UTC().Truncate(time.Microsecond)

	row := querier.QueryRow(ctx, createSQL,
		identity.ID,
		identity.Alias,
		identity.PasswordHash,
		string(identity.Role),
		attrsJSON,
		createdAt,
	)

	created, err := scanIdentity(row)
	if err != nil {
		return domain.Identity{}, postgres.MapError(err, "identity", identity.Alias)
	}

	return created, nil
}

// UpdateAttributes merges the given keys into the identity's attributes and
// returns the updated row. Existing keys not named in attrs are kept.
func (r *Repo) UpdateAttributes(ctx context.Context, id uuid.UUID, attrs map[string]any) (domain.Identity, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	attrsJSON, err := marshalAttributes(attrs)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("identity %s: marshal attributes: %w", id, err)
	}

	row := querier.QueryRow(ctx, updateAttributesSQL, id, attrsJSON)

	updated, err := scanIdentity(row)
	if err != nil {
		return domain.Identity{}, postgres.MapError(err, "identity", id)
	}

	return updated, nil
}

// UpdateLastSeen stamps the identity's last activity time.
func (r *Repo) UpdateLastSeen(ctx context.Context, id uuid.UUID, at time.Time) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	ct, err := querier.Exec(ctx, updateLastSeenSQL, id, at.UTC().Truncate(time.Microsecond))
	if err != nil {
		return postgres.MapError(err, "identity", id)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("identity %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// DeleteIdleSince removes every non-admin identity whose last activity is
// older than the cutoff and returns the deleted IDs. Progress and consent
// rows cascade; audit rows carry no foreign key, so callers purge them with
// the returned IDs.
func (r *Repo) DeleteIdleSince(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, deleteIdleSinceSQL, cutoff.UTC())
	if err != nil {
		return nil, postgres.MapError(err, "identity", cutoff)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan purged identity: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, "identity", cutoff)
	}

	return ids, nil
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns an identity by primary key.
// Returns domain.ErrNotFound if it does not exist.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (domain.Identity, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	row := querier.QueryRow(ctx, getByIDSQL, id)

	identity, err := scanIdentity(row)
	if err != nil {
		return domain.Identity{}, postgres.MapError(err, "identity", id)
	}

	return identity, nil
}

// GetByAlias returns an identity by its unique alias.
// Returns domain.ErrNotFound if it does not exist.
func (r *Repo) GetByAlias(ctx context.Context, alias string) (domain.Identity, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	row := querier.QueryRow(ctx, getByAliasSQL, alias)

	identity, err := scanIdentity(row)
	if err != nil {
		return domain.Identity{}, postgres.MapError(err, "identity", alias)
	}

	return identity, nil
}

// List returns identities matching the filter ordered by creation time
// (newest first), plus the total match count for pagination. Attribute
// filters use JSONB containment so the GIN index applies. Limit defaults to
// 50 and is clamped to 200.
func (r *Repo) List(ctx context.Context, filter domain.IdentityFilter) ([]domain.Identity, int, error) {
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

	where := make([]squirrel.Sqlizer, 0, 2)
	if filter.Role != nil {
		where = append(where, squirrel.Eq{"role": string(*filter.Role)})
	}
	if filter.AttrKey != "" {
		match, err := json.Marshal(map[string]any{filter.AttrKey: filter.AttrValue})
		if err != nil {
			return nil, 0, fmt.Errorf("marshal attribute filter: %w", err)
		}
		where = append(where, squirrel.Expr("attributes @> ?::jsonb", string(match)))
	}

	builder := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	countQuery := builder.Select("count(*)").From("identities")
	for _, cond := range where {
		countQuery = countQuery.Where(cond)
	}
	countSQL, countArgs, err := countQuery.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build identities count query: %w", err)
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var total int
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count identities: %w", err)
	}

	listQuery := builder.
		Select("id", "alias", "password_hash", "role", "attributes", "created_at", "last_seen_at").
		From("identities").
		OrderBy("created_at DESC", "alias ASC").
		Limit(uint64(limit)).
		Offset(uint64(offset))
	for _, cond := range where {
		listQuery = listQuery.Where(cond)
	}
	listSQL, listArgs, err := listQuery.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build identities list query: %w", err)
	}

	rows, err := querier.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list identities: %w", err)
	}
	defer rows.Close()

	identities := []domain.Identity{}
	for rows.Next() {
		identity, err := scanIdentity(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("list identities: %w", err)
		}
		identities = append(identities, identity)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list identities: %w", err)
	}

	return identities, total, nil
}

// ---------------------------------------------------------------------------
// Row scanning helpers
// ---------------------------------------------------------------------------

func scanIdentity(row pgx.Row) (domain.Identity, error) {
	var (
		identity  domain.Identity
		role      string
		attrsJSON []byte
	)

	if err := row.Scan(&identity.ID, &identity.Alias, &identity.PasswordHash, &role,
		&attrsJSON, &identity.CreatedAt, &identity.LastSeenAt); err != nil {
		return domain.Identity{}, err
	}

	identity.Role = domain.IdentityRole(role)

	attrs, err := unmarshalAttributes(attrsJSON)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("identity %s: unmarshal attributes: %w", identity.ID, err)
	}
	identity.Attributes = attrs

	return identity, nil
}

// ---------------------------------------------------------------------------
// JSONB serialization helpers
// ---------------------------------------------------------------------------

func marshalAttributes(attrs map[string]any) ([]byte, error) {
	if attrs == nil {
		attrs = map[string]any{}
	}
	return json.Marshal(attrs)
}

func unmarshalAttributes(data []byte) (map[string]any, error) {
	if len(data) == 0 {
		return map[string]any{}, nil
	}

	var attrs map[string]any
	if err := json.Unmarshal(data, &attrs); err != nil {
		return nil, err
	}
	return attrs, nil
}
