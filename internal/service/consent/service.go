// Package consent implements the consent gate: versioned agreements, the
// per-user acceptance records pinned to them, and the validity check that
// guards consent-protected modules. Validity is version-pinned: acceptance
// of a retired version never satisfies the gate for the current one.
package consent

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/fernwood-lab/studyflow-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type versionRepo interface {
	CreateVersion(ctx context.Context, version domain.ConsentVersion) (domain.ConsentVersion, error)
	GetVersion(ctx context.Context, version string) (domain.ConsentVersion, error)
	GetActiveVersion(ctx context.Context) (domain.ConsentVersion, error)
	ActivateVersion(ctx context.Context, version string, at time.Time) (domain.ConsentVersion, error)
	RetireActive(ctx context.Context, at time.Time) (int64, error)
	ListVersions(ctx context.Context) ([]domain.ConsentVersion, error)
}

type recordRepo interface {
	CreateRecord(ctx context.Context, record domain.ConsentRecord) (domain.ConsentRecord, error)
	GetRecord(ctx context.Context, userID uuid.UUID, version string) (domain.ConsentRecord, error)
	ListRecordsByUser(ctx context.Context, userID uuid.UUID) ([]domain.ConsentRecord, error)
}

type auditRecorder interface {
	Record(ctx context.Context, userID uuid.UUID, eventType domain.AuditEventType, payload map[string]any)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements the consent gate business logic.
type Service struct {
	versions versionRepo
	records  recordRepo
	audit    auditRecorder
	tx       txManager
	clock    clockwork.Clock
	log      *slog.Logger
}

// NewService creates a new consent service.
func NewService(
	log *slog.Logger,
	versions versionRepo,
	records recordRepo,
	audit auditRecorder,
	tx txManager,
	clock clockwork.Clock,
) *Service {
	return &Service{
		versions: versions,
		records:  records,
		audit:    audit,
		tx:       tx,
		clock:    clock,
		log:      log.With("service", "consent"),
	}
}
