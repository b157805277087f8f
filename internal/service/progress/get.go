package progress

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/fernwood-lab/studyflow-backend/internal/domain"
)

// Get returns the progress record for one module, or ErrNotFound when the
// module is unknown or the participant has not touched it yet.
func (s *Service) Get(ctx context.Context, userID uuid.UUID, moduleName string) (*domain.ProgressRecord, error) {
	module, err := s.resolveModule(moduleName)
	if err != nil {
		return nil, err
	}

	record, err := s.records.GetByUserAndModule(ctx, userID, module.ID)
	if err != nil {
		return nil, fmt.Errorf("progress.Get: %w", err)
	}

	return record, nil
}

// ListForUser returns every progress record the participant has, ordered by
// the study plan sequence. Modules without a record do not appear.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.ProgressRecord, error) {
	records, err := s.records.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("progress.ListForUser: %w", err)
	}

	return records, nil
}
