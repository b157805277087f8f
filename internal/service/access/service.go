// Package access answers "can this user reach this module or path right
// now?" and "where is this user in the plan?". Decisions compose three
// sources: the static module graph, the consent gate, and the user's set of
// completed modules. A denial is data (a Decision with a reason), not an
// error; errors are reserved for unknown names and infrastructure failures.
// Every module and path decision lands in the audit trail.
package access

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/fernwood-lab/studyflow-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

// completionSource exposes the read side of progress: which modules the user
// has COMPLETED, keyed by module name.
type completionSource interface {
	CompletedModuleNames(ctx context.Context, userID uuid.UUID) (map[string]bool, error)
}

type consentChecker interface {
	HasValidConsent(ctx context.Context, userID uuid.UUID) (bool, error)
}

type auditRecorder interface {
	Record(ctx context.Context, userID uuid.UUID, eventType domain.AuditEventType, payload map[string]any)
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements module and path access decisions.
type Service struct {
	completions completionSource
	consent     consentChecker
	audit       auditRecorder
	graph       *domain.ModuleGraph
	log         *slog.Logger
}

// NewService creates a new access service.
func NewService(
	log *slog.Logger,
	completions completionSource,
	consent consentChecker,
	audit auditRecorder,
	graph *domain.ModuleGraph,
) *Service {
	return &Service{
		completions: completions,
		consent:     consent,
		audit:       audit,
		graph:       graph,
		log:         log.With("service", "access"),
	}
}
