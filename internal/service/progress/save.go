package progress

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fernwood-lab/studyflow-backend/internal/domain"
)

// Save merges the submitted responses key-by-key into the stored payload and
// stamps LastSavedAt; the record stays IN_PROGRESS. A missing record starts
// implicitly, carrying the payload. A COMPLETED record is frozen: the save
// fails with ErrReadOnly (ErrPathReadOnly when the module backs a path), and
// the store-level guard makes a save racing a complete lose the same way.
// Emits MODULE_STARTED on an implicit start and PROGRESS_SAVED on every
// successful save.
func (s *Service) Save(ctx context.Context, input SaveInput) (*domain.ProgressRecord, error) {
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

	now := s.clock.Now().UTC().Truncate(time.Microsecond)

	// Step 4: Implicit start. Runs outside the merge transaction: a unique
	// violation must not poison the tx, and the loser just falls through to
	// the update path against the winner's row.
	_, err = s.records.GetByUserAndModule(ctx, input.UserID, module.ID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		created, createErr := s.records.Create(ctx, s.newRecord(input.UserID, module.ID, input.Responses, now))
		if createErr == nil {
			s.audit.Record(ctx, input.UserID, domain.EventModuleStarted, map[string]any{
				"module": module.Name,
			})
			s.audit.Record(ctx, input.UserID, domain.EventProgressSaved, map[string]any{
				"module": module.Name,
			})
			s.log.InfoContext(ctx, "progress saved on implicit start",
				slog.String("user_id", input.UserID.String()),
				slog.String("module", module.Name))
			return created, nil
		}
		if !errors.Is(createErr, domain.ErrAlreadyExists) {
			return nil, fmt.Errorf("progress.Save create record: %w", createErr)
		}
	case err != nil:
		return nil, fmt.Errorf("progress.Save get record: %w", err)
	}

	// Step 5: Merge under a row lock so concurrent saves serialize instead
	// of dropping each other's keys.
	var saved *domain.ProgressRecord
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		locked, err := s.records.GetByUserAndModuleForUpdate(ctx, input.UserID, module.ID)
		if err != nil {
			return fmt.Errorf("lock record: %w", err)
		}
		if locked.IsCompleted() {
			return s.completedWriteErr(module.Name, domain.ErrReadOnly)
		}

		merged := domain.MergeResponses(locked.Responses, input.Responses)
		updated, err := s.records.UpdateResponses(ctx, input.UserID, module.ID, merged, now)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// Guard refused the write: completed between read and update.
				return s.completedWriteErr(module.Name, domain.ErrReadOnly)
			}
			return fmt.Errorf("update responses: %w", err)
		}
		saved = updated
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("progress.Save: %w", err)
	}

	s.audit.Record(ctx, input.UserID, domain.EventProgressSaved, map[string]any{
		"module": module.Name,
	})

	s.log.InfoContext(ctx, "progress saved",
		slog.String("user_id", input.UserID.String()),
		slog.String("module", module.Name))

	return saved, nil
}
