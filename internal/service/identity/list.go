package identity

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/fernwood-lab/studyflow-backend/internal/domain"
)

// Get returns one identity by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (domain.Identity, error) {
	identity, err := s.identities.GetByID(ctx, id)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("identity.Get: %w", err)
	}
	return identity, nil
}

// List returns a page of identities plus the total count.
func (s *Service) List(ctx context.Context, input ListInput) ([]domain.Identity, int, error) {
	input = input.withDefaults()

	identities, total, err := s.identities.List(ctx, domain.IdentityFilter{
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("identity.List: %w", err)
	}

	return identities, total, nil
}

// FindByAttribute returns identities whose attribute bag contains the given
// key/value pair. The lookup runs on the store's containment index, never by
// scanning and filtering pages in process.
func (s *Service) FindByAttribute(ctx context.Context, key string, value any, limit, offset int) ([]domain.Identity, int, error) {
	if key == "" {
		return nil, 0, domain.NewValidationError("key", "required")
	}

	page := ListInput{Limit: limit, Offset: offset}.withDefaults()

	identities, total, err := s.identities.List(ctx, domain.IdentityFilter{
		AttrKey:   key,
		AttrValue: value,
		Limit:     page.Limit,
		Offset:    page.Offset,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("identity.FindByAttribute: %w", err)
	}

	return identities, total, nil
}
