package consent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fernwood-lab/studyflow-backend/internal/domain"
)

// CreateVersion registers a new consent version as a DRAFT. The draft is
// invisible to the gate until activated. Duplicate labels fail with
// domain.ErrAlreadyExists.
func (s *Service) CreateVersion(ctx context.Context, input CreateVersionInput) (domain.ConsentVersion, error) {
	if err := input.Validate(); err != nil {
		return domain.ConsentVersion{}, err
	}

	version := domain.ConsentVersion{
		ID:        uuid.New(),
		Version:   input.Version,
		Status:    domain.ConsentVersionStatusDraft,
		Content:   input.Content,
		CreatedAt: s.clock.Now().UTC().Truncate(time.Microsecond),
	}

	created, err := s.versions.CreateVersion(ctx, version)
	if err != nil {
		return domain.ConsentVersion{}, fmt.Errorf("consent.CreateVersion: %w", err)
	}

	s.log.InfoContext(ctx, "consent version created",
		slog.String("version", created.Version))

	return created, nil
}

// ActivateVersion makes the named version the single ACTIVE one, retiring
// the current ACTIVE version (if any) in the same transaction. The target
// may be a DRAFT or a previously RETIRED version. A missing target fails
// with domain.ErrNotFound and the rollback leaves the current rollout
// untouched.
func (s *Service) ActivateVersion(ctx context.Context, version string) (domain.ConsentVersion, error) {
	if version == "" {
		return domain.ConsentVersion{}, domain.NewValidationError("version", "required")
	}

	now := s.clock.Now().UTC().Truncate(time.Microsecond)

	var activated domain.ConsentVersion
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.versions.RetireActive(ctx, now); err != nil {
			return fmt.Errorf("retire active: %w", err)
		}

		var err error
		activated, err = s.versions.ActivateVersion(ctx, version, now)
		if err != nil {
			return fmt.Errorf("activate %q: %w", version, err)
		}
		return nil
	})
	if err != nil {
		return domain.ConsentVersion{}, fmt.Errorf("consent.ActivateVersion: %w", err)
	}

	s.log.InfoContext(ctx, "consent version activated",
		slog.String("version", activated.Version))

	return activated, nil
}

// RetireVersion retires the named version. Only the current ACTIVE version
// can be retired; anything else fails with domain.ErrVersionNotActive.
// Afterwards no version is ACTIVE, so consent-gated modules stay locked
// until a new version is activated.
func (s *Service) RetireVersion(ctx context.Context, version string) (domain.ConsentVersion, error) {
	if version == "" {
		return domain.ConsentVersion{}, domain.NewValidationError("version", "required")
	}

	now := s.clock.Now().UTC().Truncate(time.Microsecond)

	var retired domain.ConsentVersion
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		stored, err := s.versions.GetVersion(ctx, version)
		if err != nil {
			return fmt.Errorf("get version: %w", err)
		}
		if !stored.IsActive() {
			return fmt.Errorf("version %q is %s: %w", stored.Version, stored.Status, domain.ErrVersionNotActive)
		}

		if _, err := s.versions.RetireActive(ctx, now); err != nil {
			return fmt.Errorf("retire active: %w", err)
		}

		retired, err = s.versions.GetVersion(ctx, version)
		if err != nil {
			return fmt.Errorf("reload version: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.ConsentVersion{}, fmt.Errorf("consent.RetireVersion: %w", err)
	}

	s.log.InfoContext(ctx, "consent version retired",
		slog.String("version", retired.Version))

	return retired, nil
}

// ListVersions returns all consent versions, newest first.
func (s *Service) ListVersions(ctx context.Context) ([]domain.ConsentVersion, error) {
	versions, err := s.versions.ListVersions(ctx)
	if err != nil {
		return nil, fmt.Errorf("consent.ListVersions: %w", err)
	}
	return versions, nil
}
