package identity

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/fernwood-lab/studyflow-backend/internal/domain"
)

// SetAttributes shallow-merges the given keys into the identity's attribute
// bag. Existing keys not named in attrs are kept; named keys are replaced.
func (s *Service) SetAttributes(ctx context.Context, id uuid.UUID, attrs map[string]any) (domain.Identity, error) {
	if len(attrs) == 0 {
		return domain.Identity{}, domain.NewValidationError("attributes", "required")
	}

	updated, err := s.identities.UpdateAttributes(ctx, id, attrs)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("identity.SetAttributes: %w", err)
	}

	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	s.log.InfoContext(ctx, "attributes updated",
		slog.String("user_id", id.String()),
		slog.Any("keys", keys))

	return updated, nil
}
