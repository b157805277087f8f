package progress

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fernwood-lab/studyflow-backend/internal/domain"
)

// Start moves (userID, module) from NOT_STARTED to IN_PROGRESS. Replays are
// idempotent: an existing IN_PROGRESS record comes back unchanged and emits
// nothing. A COMPLETED record rejects the restart with ErrAlreadyCompleted
// (ErrPathReadOnly when the module backs a path). Concurrent first starts
// race on the unique index; the loser adopts the winner's row. Emits one
// MODULE_STARTED audit event on actual creation.
func (s *Service) Start(ctx context.Context, input StartInput) (*domain.ProgressRecord, error) {
	// Step 1: Validate input
	if err := input.Validate(); err != nil {
		return nil, err
	}

	// Step 2: Resolve the module in the study plan
	module, err := s.resolveModule(input.ModuleName)
	if err != nil {
		return nil, err
	}

	// Step 3: Freeze guard for path-backed modules, before transition logic
	if err := s.ensurePathsWritable(ctx, input.UserID, module.Name); err != nil {
		return nil, err
	}

	// Step 4: Replay or reject based on the existing record
	existing, err := s.records.GetByUserAndModule(ctx, input.UserID, module.ID)
	switch {
	case err == nil:
		if existing.IsCompleted() {
			return nil, s.completedWriteErr(module.Name, domain.ErrAlreadyCompleted)
		}
		return existing, nil
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("progress.Start get record: %w", err)
	}

	// Step 5: First start; the unique index arbitrates creation races
	now := s.clock.Now().UTC().Truncate(time.Microsecond)
	created, err := s.records.Create(ctx, s.newRecord(input.UserID, module.ID, nil, now))
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			winner, getErr := s.records.GetByUserAndModule(ctx, input.UserID, module.ID)
			if getErr != nil {
				return nil, fmt.Errorf("progress.Start refetch after race: %w", getErr)
			}
			if winner.IsCompleted() {
				return nil, s.completedWriteErr(module.Name, domain.ErrAlreadyCompleted)
			}
			return winner, nil
		}
		return nil, fmt.Errorf("progress.Start create record: %w", err)
	}

	s.audit.Record(ctx, input.UserID, domain.EventModuleStarted, map[string]any{
		"module": module.Name,
	})

	s.log.InfoContext(ctx, "module started",
		slog.String("user_id", input.UserID.String()),
		slog.String("module", module.Name))

	return created, nil
}
