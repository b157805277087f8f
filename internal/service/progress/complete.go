package progress

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fernwood-lab/studyflow-backend/internal/domain"
)

// Complete performs the at-most-once terminal transition. The final
// Responses and Metadata merge over whatever partial saves stored, then a
// single conditional update flips the record to COMPLETED. Of N concurrent
// attempts exactly one wins; every loser fails with ErrAlreadyCompleted and
// causes no side effects. A replay against an already-COMPLETED record fails
// with ErrAlreadyCompleted (ErrPathReadOnly when the module backs a path).
// A missing record auto-starts first. The result carries the frozen record
// plus the recomputed next module. Emits MODULE_COMPLETED exactly once, on
// the winning attempt, after commit.
func (s *Service) Complete(ctx context.Context, input CompleteInput) (*CompleteResult, error) {
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

	// Step 4: Auto-start a missing record. Outside the transaction so a
	// unique violation cannot poison it; the start is real (and audited)
	// even if the completion below loses a race.
	existing, err := s.records.GetByUserAndModule(ctx, input.UserID, module.ID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		created, createErr := s.records.Create(ctx, s.newRecord(input.UserID, module.ID, nil, now))
		switch {
		case createErr == nil:
			s.audit.Record(ctx, input.UserID, domain.EventModuleStarted, map[string]any{
				"module": module.Name,
			})
			existing = created
		case errors.Is(createErr, domain.ErrAlreadyExists):
			existing, err = s.records.GetByUserAndModule(ctx, input.UserID, module.ID)
			if err != nil {
				return nil, fmt.Errorf("progress.Complete refetch after race: %w", err)
			}
		default:
			return nil, fmt.Errorf("progress.Complete create record: %w", createErr)
		}
	case err != nil:
		return nil, fmt.Errorf("progress.Complete get record: %w", err)
	}

	// Step 5: Reject the replay before doing any work
	if existing.IsCompleted() {
		return nil, s.completedWriteErr(module.Name, domain.ErrAlreadyCompleted)
	}

	// Step 6: Terminal transition. The row lock serializes the merge; the
	// conditional update is the authority for at-most-once.
	var completed *domain.ProgressRecord
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		locked, err := s.records.GetByUserAndModuleForUpdate(ctx, input.UserID, module.ID)
		if err != nil {
			return fmt.Errorf("lock record: %w", err)
		}
		if locked.IsCompleted() {
			return fmt.Errorf("module %q: %w", module.Name, domain.ErrAlreadyCompleted)
		}

		responses := domain.MergeResponses(locked.Responses, input.Responses)
		metadata := domain.MergeResponses(locked.Metadata, input.Metadata)

		done, err := s.records.Complete(ctx, input.UserID, module.ID, responses, metadata, now)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// The guard matched zero rows: another attempt won.
				return fmt.Errorf("module %q: %w", module.Name, domain.ErrAlreadyCompleted)
			}
			return fmt.Errorf("complete record: %w", err)
		}
		completed = done
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("progress.Complete: %w", err)
	}

	s.audit.Record(ctx, input.UserID, domain.EventModuleCompleted, map[string]any{
		"module": module.Name,
	})

	s.log.InfoContext(ctx, "module completed",
		slog.String("user_id", input.UserID.String()),
		slog.String("module", module.Name))

	// Step 7: Advance the pointer. The completion is already committed, so a
	// recompute failure only degrades the result, never the transition.
	result := &CompleteResult{Record: completed}
	next, err := s.access.NextAccessibleModule(ctx, input.UserID)
	if err != nil {
		s.log.ErrorContext(ctx, "next module recompute failed after completion",
			slog.String("user_id", input.UserID.String()),
			slog.String("module", module.Name),
			slog.String("error", err.Error()))
		return result, nil
	}
	result.NextModule = next

	return result, nil
}
