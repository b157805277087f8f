package testhelper

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fernwood-lab/studyflow-backend/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedIdentity creates a PARTICIPANT identity with a unique alias and empty
// attributes. Returns a filled domain.Identity.
func SeedIdentity(t *testing.T, pool *pgxpool.Pool) domain.Identity {
	t.Helper()
	return SeedIdentityWithRole(t, pool, domain.RoleParticipant)
}

// SeedIdentityWithRole creates an identity with the given role.
func SeedIdentityWithRole(t *testing.T, pool *pgxpool.Pool, role domain.IdentityRole) domain.Identity {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	now := time.Now().UTC().Truncate(time.Microsecond)
	identity := domain.Identity{
		ID:           uuid.New(),
		Alias:        "test-identity-" + suffix,
		PasswordHash: "$2a$10$testhashnotverifiable" + suffix,
		Role:         role,
		Attributes:   map[string]any{},
		CreatedAt:    now,
		LastSeenAt:   &now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO identities (id, alias, password_hash, role, attributes, created_at, last_seen_at)
		 VALUES ($1, $2, $3, $4, '{}'::jsonb, $5, $6)`,
		identity.ID, identity.Alias, identity.PasswordHash, string(identity.Role), identity.CreatedAt, identity.LastSeenAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedIdentity insert identity: %v", err)
	}

	return identity
}

// SeedModule creates a module with the given name, sequence order, and consent
// requirement. Returns a filled domain.Module.
func SeedModule(t *testing.T, pool *pgxpool.Pool, name string, sequenceOrder int, requiresConsent bool) domain.Module {
	t.Helper()
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	module := domain.Module{
		ID:              uuid.New(),
		Name:            name,
		Title:           "Module " + name,
		SequenceOrder:   sequenceOrder,
		RequiresConsent: requiresConsent,
		CreatedAt:       now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO modules (id, name, title, sequence_order, requires_consent, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		module.ID, module.Name, module.Title, module.SequenceOrder, module.RequiresConsent, module.CreatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedModule insert module: %v", err)
	}

	return module
}

// SeedPath creates a path backed by the named module with the given unlock rule.
// The module must already exist. Returns a filled domain.Path.
func SeedPath(t *testing.T, pool *pgxpool.Pool, name, moduleName string, rule domain.UnlockRule) domain.Path {
	t.Helper()
	ctx := context.Background()

	ruleJSON, err := json.Marshal(struct {
		RequireAll []string `json:"require_all,omitempty"`
		RequireAny []string `json:"require_any,omitempty"`
	}{rule.RequireAll, rule.RequireAny})
	if err != nil {
		t.Fatalf("testhelper: SeedPath marshal unlock rule: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	path := domain.Path{
		ID:         uuid.New(),
		Name:       name,
		Title:      "Path " + name,
		ModuleName: moduleName,
		UnlockRule: rule,
		CreatedAt:  now,
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO paths (id, name, title, module_name, unlock_rule, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		path.ID, path.Name, path.Title, path.ModuleName, ruleJSON, path.CreatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedPath insert path: %v", err)
	}

	return path
}

// SeedConsentVersion creates a consent version with the given version label and
// status. ACTIVE versions are deleted via t.Cleanup so the partial unique index
// (at most one ACTIVE row) cannot collide across tests.
func SeedConsentVersion(t *testing.T, pool *pgxpool.Pool, version string, status domain.ConsentVersionStatus) domain.ConsentVersion {
	t.Helper()
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	cv := domain.ConsentVersion{
		ID:        uuid.New(),
		Version:   version,
		Status:    status,
		Content:   "Consent text for " + version,
		CreatedAt: now,
	}
	if status == domain.ConsentVersionStatusActive {
		activatedAt := now
		cv.ActivatedAt = &activatedAt
	}
	if status == domain.ConsentVersionStatusRetired {
		activatedAt := now.Add(-time.Hour)
		retiredAt := now
		cv.ActivatedAt = &activatedAt
		cv.RetiredAt = &retiredAt
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO consent_versions (id, version, status, content, created_at, activated_at, retired_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		cv.ID, cv.Version, string(cv.Status), cv.Content, cv.CreatedAt, cv.ActivatedAt, cv.RetiredAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedConsentVersion insert version: %v", err)
	}

	if status == domain.ConsentVersionStatusActive {
		t.Cleanup(func() {
			_, _ = pool.Exec(context.Background(), `DELETE FROM consent_versions WHERE id = $1`, cv.ID)
		})
	}

	return cv
}

// SeedConsentRecord creates a consent record pinning the identity to the given
// version. The version must already exist. Returns a filled domain.ConsentRecord.
func SeedConsentRecord(t *testing.T, pool *pgxpool.Pool, userID uuid.UUID, version string) domain.ConsentRecord {
	t.Helper()
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	record := domain.ConsentRecord{
		ID:         uuid.New(),
		UserID:     userID,
		Version:    version,
		Content:    "Consent text for " + version,
		AcceptedAt: now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO consent_records (id, user_id, version, content, accepted_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		record.ID, record.UserID, record.Version, record.Content, record.AcceptedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedConsentRecord insert record: %v", err)
	}

	return record
}

// SeedProgress creates a progress record for the identity and module in the
// given status. COMPLETED records get a completed_at timestamp. Returns a
// filled domain.ProgressRecord (ModuleName left empty; reads join it in).
func SeedProgress(t *testing.T, pool *pgxpool.Pool, userID, moduleID uuid.UUID, status domain.ProgressStatus) domain.ProgressRecord {
	t.Helper()
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	record := domain.ProgressRecord{
		ID:          uuid.New(),
		UserID:      userID,
		ModuleID:    moduleID,
		Status:      status,
		Responses:   map[string]any{"seed": "value"},
		Metadata:    map[string]any{},
		StartedAt:   now,
		LastSavedAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if status == domain.ProgressStatusCompleted {
		completedAt := now
		record.CompletedAt = &completedAt
	}

	responsesJSON, err := json.Marshal(record.Responses)
	if err != nil {
		t.Fatalf("testhelper: SeedProgress marshal responses: %v", err)
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO progress_records (id, user_id, module_id, status, responses, metadata, started_at, last_saved_at, completed_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, '{}'::jsonb, $6, $7, $8, $9, $10)`,
		record.ID, record.UserID, record.ModuleID, string(record.Status), responsesJSON,
		record.StartedAt, record.LastSavedAt, record.CompletedAt, record.CreatedAt, record.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedProgress insert record: %v", err)
	}

	return record
}
