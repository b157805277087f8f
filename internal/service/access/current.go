package access

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/fernwood-lab/studyflow-backend/internal/domain"
)

// CurrentModule returns the user's position in the plan: the lowest-order
// module without a COMPLETED record, nil when every module is done. The
// pointer is deliberately not consent-filtered. A consent-gated plan opens
// with the consent step itself, so the first incomplete module is where the
// user must go next even while the gate would still deny entry.
func (s *Service) CurrentModule(ctx context.Context, userID uuid.UUID) (*domain.Module, error) {
	completed, err := s.completions.CompletedModuleNames(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("access.CurrentModule completed set: %w", err)
	}

	for _, module := range s.graph.Modules() {
		if !completed[module.Name] {
			current := module
			return &current, nil
		}
	}

	return nil, nil
}

// NextAccessibleModule is the recompute that runs after every completion. It
// advances the "where am I" pointer and populates the NextModule field of
// completion results.
func (s *Service) NextAccessibleModule(ctx context.Context, userID uuid.UUID) (*domain.Module, error) {
	return s.CurrentModule(ctx, userID)
}
