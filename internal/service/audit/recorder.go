// Package audit provides the append-only audit trail service. Every state
// transition and access decision in the system is documented here; the trail
// itself never drives business logic.
package audit

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

type eventRepo interface {
	Create(ctx context.Context, event domain.AuditEvent) (domain.AuditEvent, error)
	List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEvent, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)
}

// ---------------------------------------------------------------------------
// Recorder
// ---------------------------------------------------------------------------

// Recorder appends events to the audit trail. Record is fire-and-forget: a
// failed append is logged and swallowed so the business operation it
// documents is never blocked or rolled back by its own paper trail.
type Recorder struct {
	events eventRepo
	clock  clockwork.Clock
	log    *slog.Logger
}

// NewRecorder creates a new audit Recorder.
func NewRecorder(log *slog.Logger, events eventRepo, clock clockwork.Clock) *Recorder {
	return &Recorder{
		events: events,
		clock:  clock,
		log:    log.With("service", "audit"),
	}
}

// Record appends one event for the user. It never returns an error: append
// failures are logged at Error level and otherwise ignored. The write runs
// detached from the request's cancellation so a client disconnect right
// after a committed transition cannot lose the event.
func (r *Recorder) Record(ctx context.Context, userID uuid.UUID, eventType domain.AuditEventType, payload map[string]any) {
	if !eventType.IsValid() {
		r.log.ErrorContext(ctx, "dropping audit event with unknown type",
			slog.String("event_type", string(eventType)),
			slog.String("user_id", userID.String()),
		)
		return
	}

	ctx = context.WithoutCancel(ctx)

	event := domain.AuditEvent{
		ID:        uuid.New(),
		UserID:    userID,
		EventType: eventType,
		Payload:   payload,
		CreatedAt: r.clock.Now().UTC().Truncate(time.Microsecond),
	}

	if _, err := r.events.Create(ctx, event); err != nil {
		r.log.ErrorContext(ctx, "audit append failed",
			slog.String("event_type", string(eventType)),
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()),
		)
	}
}

// List returns audit events matching the filter, newest first.
func (r *Recorder) List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEvent, error) {
	return r.events.List(ctx, filter)
}

// CountByUser returns the total number of events recorded for a user.
func (r *Recorder) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	return r.events.CountByUser(ctx, userID)
}
