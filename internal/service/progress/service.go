// Package progress implements the per-user, per-module state machine:
//
//	NOT_STARTED --start--> IN_PROGRESS --complete--> COMPLETED
//	IN_PROGRESS --save--> IN_PROGRESS
//
// NOT_STARTED is virtual (no row); the first start or save materializes the
// record. Completion is at-most-once: the terminal write is a conditional
// update in the store, so of any number of concurrent attempts exactly one
// wins and every other caller surfaces ErrAlreadyCompleted.
package progress

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/fernwood-lab/studyflow-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type progressRepo interface {
	Create(ctx context.Context, record *domain.ProgressRecord) (*domain.ProgressRecord, error)
	UpdateResponses(ctx context.Context, userID, moduleID uuid.UUID, responses map[string]any, lastSavedAt time.Time) (*domain.ProgressRecord, error)
	Complete(ctx context.Context, userID, moduleID uuid.UUID, responses, metadata map[string]any, completedAt time.Time) (*domain.ProgressRecord, error)
	GetByUserAndModule(ctx context.Context, userID, moduleID uuid.UUID) (*domain.ProgressRecord, error)
	GetByUserAndModuleForUpdate(ctx context.Context, userID, moduleID uuid.UUID) (*domain.ProgressRecord, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.ProgressRecord, error)
}

// accessGuard is the slice of the access service the state machine needs:
// the freeze guard that runs ahead of writes to path-backed modules, and
// the next-module recompute after a completion. Wired at startup.
type accessGuard interface {
	EnsurePathWritable(ctx context.Context, userID uuid.UUID, pathName string) error
	NextAccessibleModule(ctx context.Context, userID uuid.UUID) (*domain.Module, error)
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

// Service implements the progress state machine business logic.
type Service struct {
	records progressRepo
	graph   *domain.ModuleGraph
	access  accessGuard
	audit   auditRecorder
	tx      txManager
	clock   clockwork.Clock
	log     *slog.Logger
}

// NewService creates a new progress service.
func NewService(
	log *slog.Logger,
	records progressRepo,
	graph *domain.ModuleGraph,
	access accessGuard,
	audit auditRecorder,
	tx txManager,
	clock clockwork.Clock,
) *Service {
	return &Service{
		records: records,
		graph:   graph,
		access:  access,
		audit:   audit,
		tx:      tx,
		clock:   clock,
		log:     log.With("service", "progress"),
	}
}

// resolveModule maps a module name to its definition in the study plan.
func (s *Service) resolveModule(name string) (domain.Module, error) {
	module, ok := s.graph.ModuleByName(name)
	if !ok {
		return domain.Module{}, fmt.Errorf("module %q: %w", name, domain.ErrNotFound)
	}
	return module, nil
}

// ensurePathsWritable runs the freeze guard for every path the module backs,
// ahead of any transition work, so review access to a completed path stays
// readable while writes fail with ErrPathReadOnly. A write that slips past
// it on a stale read is caught again at the record and store guards.
func (s *Service) ensurePathsWritable(ctx context.Context, userID uuid.UUID, moduleName string) error {
	for _, path := range s.graph.PathsForModule(moduleName) {
		if err := s.access.EnsurePathWritable(ctx, userID, path.Name); err != nil {
			return err
		}
	}
	return nil
}

// completedWriteErr translates a write against a COMPLETED record into the
// caller-facing error: a module backing a path freezes as ErrPathReadOnly,
// a plain module surfaces the given state error (ErrAlreadyCompleted or
// ErrReadOnly depending on the operation).
func (s *Service) completedWriteErr(moduleName string, plain error) error {
	if len(s.graph.PathsForModule(moduleName)) > 0 {
		return fmt.Errorf("module %q backs a path: %w", moduleName, domain.ErrPathReadOnly)
	}
	return fmt.Errorf("module %q: %w", moduleName, plain)
}

// newRecord builds the row the first start (explicit or implicit) inserts.
func (s *Service) newRecord(userID uuid.UUID, moduleID uuid.UUID, responses map[string]any, now time.Time) *domain.ProgressRecord {
	return &domain.ProgressRecord{
		ID:          uuid.New(),
		UserID:      userID,
		ModuleID:    moduleID,
		Status:      domain.ProgressStatusInProgress,
		Responses:   domain.MergeResponses(nil, responses),
		Metadata:    map[string]any{},
		StartedAt:   now,
		LastSavedAt: now,
	}
}
