// Package module implements the study-plan repository using PostgreSQL.
// Modules and paths are written by the seeder and read once at startup to
// build the in-memory module graph; queries use raw SQL since unlock_rule
// is JSONB requiring custom marshal/unmarshal logic.
package module

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/fernwood-lab/studyflow-backend/internal/adapter/postgres"
	"github.com/fernwood-lab/studyflow-backend/internal/domain"
)

// Repo provides study-plan persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new study-plan repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ---------------------------------------------------------------------------
// SQL constants
// ---------------------------------------------------------------------------

const moduleColumns = `id, name, title, sequence_order, requires_consent, created_at`

const upsertModuleSQL = `
INSERT INTO modules (id, name, title, sequence_order, requires_consent, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (name) DO UPDATE
SET title = EXCLUDED.title,
    sequence_order = EXCLUDED.sequence_order,
    requires_consent = EXCLUDED.requires_consent
RETURNING ` + moduleColumns

const listModulesSQL = `
SELECT ` + moduleColumns + `
FROM modules
ORDER BY sequence_order ASC, name ASC`

const pathColumns = `id, name, title, module_name, unlock_rule, created_at`

const upsertPathSQL = `
INSERT INTO paths (id, name, title, module_name, unlock_rule, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (name) DO UPDATE
SET title = EXCLUDED.title,
    module_name = EXCLUDED.module_name,
    unlock_rule = EXCLUDED.unlock_rule
RETURNING ` + pathColumns

const listPathsSQL = `
SELECT ` + pathColumns + `
FROM paths
ORDER BY name ASC`

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Upsert inserts a module or, when a module with the same name exists, updates
// its title, sequence order, and consent requirement. Returns the stored row.
func (r *Repo) Upsert(ctx context.Context, module domain.Module) (domain.Module, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	row := querier.QueryRow(ctx, upsertModuleSQL,
		module.ID,
		module.Name,
		module.Title,
		module.SequenceOrder,
		module.RequiresConsent,
		module.CreatedAt,
	)

	stored, err := scanModule(row)
	if err != nil {
		return domain.Module{}, postgres.MapError(err, "module", module.Name)
	}

	return stored, nil
}

// UpsertPath inserts a path or, when a path with the same name exists, updates
// its title, backing module, and unlock rule. Returns the stored row.
func (r *Repo) UpsertPath(ctx context.Context, path domain.Path) (domain.Path, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	ruleJSON, err := marshalUnlockRule(path.UnlockRule)
	if err != nil {
		return domain.Path{}, fmt.Errorf("path %s: marshal unlock rule: %w", path.Name, err)
	}

	row := querier.QueryRow(ctx, upsertPathSQL,
		path.ID,
		path.Name,
		path.Title,
		path.ModuleName,
		ruleJSON,
		path.CreatedAt,
	)

	stored, err := scanPath(row)
	if err != nil {
		return domain.Path{}, postgres.MapError(err, "path", path.Name)
	}

	return stored, nil
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// ListOrdered returns every module ordered by sequence_order ascending.
func (r *Repo) ListOrdered(ctx context.Context) ([]domain.Module, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, listModulesSQL)
	if err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	defer rows.Close()

	var modules []domain.Module
	for rows.Next() {
		module, err := scanModule(rows)
		if err != nil {
			return nil, fmt.Errorf("list modules: %w", err)
		}
		modules = append(modules, module)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}

	return modules, nil
}

// ListPaths returns every path ordered by name.
func (r *Repo) ListPaths(ctx context.Context) ([]domain.Path, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, listPathsSQL)
	if err != nil {
		return nil, fmt.Errorf("list paths: %w", err)
	}
	defer rows.Close()

	var paths []domain.Path
	for rows.Next() {
		path, err := scanPath(rows)
		if err != nil {
			return nil, fmt.Errorf("list paths: %w", err)
		}
		paths = append(paths, path)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list paths: %w", err)
	}

	return paths, nil
}

// ---------------------------------------------------------------------------
// Row scanning helpers
// ---------------------------------------------------------------------------

func scanModule(row pgx.Row) (domain.Module, error) {
	var m domain.Module
	if err := row.Scan(&m.ID, &m.Name, &m.Title, &m.SequenceOrder, &m.RequiresConsent, &m.CreatedAt); err != nil {
		return domain.Module{}, err
	}
	return m, nil
}

func scanPath(row pgx.Row) (domain.Path, error) {
	var (
		p        domain.Path
		ruleJSON []byte
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Title, &p.ModuleName, &ruleJSON, &p.CreatedAt); err != nil {
		return domain.Path{}, err
	}

	rule, err := unmarshalUnlockRule(ruleJSON)
	if err != nil {
		return domain.Path{}, fmt.Errorf("path %s: %w", p.Name, err)
	}
	p.UnlockRule = rule

	return p, nil
}

// ---------------------------------------------------------------------------
// JSONB serialization helpers for UnlockRule
// ---------------------------------------------------------------------------

// unlockRuleJSON is an intermediate struct for JSON marshaling of
// domain.UnlockRule. Domain types have no json tags, so the repo layer
// handles serialization.
type unlockRuleJSON struct {
	RequireAll []string `json:"require_all,omitempty"`
	RequireAny []string `json:"require_any,omitempty"`
}

func marshalUnlockRule(rule domain.UnlockRule) ([]byte, error) {
	return json.Marshal(unlockRuleJSON{
		RequireAll: rule.RequireAll,
		RequireAny: rule.RequireAny,
	})
}

func unmarshalUnlockRule(data []byte) (domain.UnlockRule, error) {
	if len(data) == 0 {
		return domain.UnlockRule{}, nil
	}

	var j unlockRuleJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return domain.UnlockRule{}, fmt.Errorf("unmarshal unlock rule: %w", err)
	}

	return domain.UnlockRule{
		RequireAll: j.RequireAll,
		RequireAny: j.RequireAny,
	}, nil
}
