package consent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fernwood-lab/studyflow-backend/internal/domain"
)

// HasValidConsent reports whether the user has accepted the currently ACTIVE
// consent version. Acceptance of a now-retired version does not count, so a
// version rollover forces re-consent. Fails with
// domain.ErrNoActiveConsentVersion when no version is ACTIVE at all.
func (s *Service) HasValidConsent(ctx context.Context, userID uuid.UUID) (bool, error) {
	active, err := s.versions.GetActiveVersion(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, domain.ErrNoActiveConsentVersion
		}
		return false, fmt.Errorf("consent.HasValidConsent get active version: %w", err)
	}

	if _, err := s.records.GetRecord(ctx, userID, active.Version); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("consent.HasValidConsent get record: %w", err)
	}

	return true, nil
}

// RecordConsent stores the user's acceptance of a consent version, with the
// submitted content snapshotted verbatim. The named version must be ACTIVE
// (ErrVersionNotActive otherwise, including when it does not exist), and each
// user accepts a given version at most once (ErrAlreadyConsented on repeat;
// the unique index is the authority, so a concurrent duplicate loses cleanly).
// Emits one CONSENT_RECORDED audit event on success.
func (s *Service) RecordConsent(ctx context.Context, input RecordConsentInput) (domain.ConsentRecord, error) {
	// Step 1: Validate input
	if err := input.Validate(); err != nil {
		return domain.ConsentRecord{}, err
	}

	// Step 2: The named version must be the ACTIVE one
	version, err := s.versions.GetVersion(ctx, input.Version)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ConsentRecord{}, fmt.Errorf("version %q: %w", input.Version, domain.ErrVersionNotActive)
		}
		return domain.ConsentRecord{}, fmt.Errorf("consent.RecordConsent get version: %w", err)
	}
	if !version.IsActive() {
		return domain.ConsentRecord{}, fmt.Errorf("version %q is %s: %w", version.Version, version.Status, domain.ErrVersionNotActive)
	}

	// Step 3: Store the acceptance
	record := domain.ConsentRecord{
		ID:         uuid.New(),
		UserID:     input.UserID,
		Version:    input.Version,
		Content:    input.Content,
		AcceptedAt: s.clock.Now().UTC().Truncate(time.Microsecond),
	}

	created, err := s.records.CreateRecord(ctx, record)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return domain.ConsentRecord{}, fmt.Errorf("version %q: %w", input.Version, domain.ErrAlreadyConsented)
		}
		return domain.ConsentRecord{}, fmt.Errorf("consent.RecordConsent create record: %w", err)
	}

	s.audit.Record(ctx, input.UserID, domain.EventConsentRecorded, map[string]any{
		"version": created.Version,
	})

	s.log.InfoContext(ctx, "consent recorded",
		slog.String("user_id", input.UserID.String()),
		slog.String("version", created.Version))

	return created, nil
}

// Status returns the ACTIVE version together with whether (and when) the
// user accepted that exact version. Fails with
// domain.ErrNoActiveConsentVersion when no version is ACTIVE.
func (s *Service) Status(ctx context.Context, userID uuid.UUID) (ConsentStatus, error) {
	active, err := s.versions.GetActiveVersion(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ConsentStatus{}, domain.ErrNoActiveConsentVersion
		}
		return ConsentStatus{}, fmt.Errorf("consent.Status get active version: %w", err)
	}

	status := ConsentStatus{ActiveVersion: active}

	record, err := s.records.GetRecord(ctx, userID, active.Version)
	switch {
	case err == nil:
		status.Consented = true
		status.AcceptedAt = &record.AcceptedAt
	case errors.Is(err, domain.ErrNotFound):
		// not consented yet
	default:
		return ConsentStatus{}, fmt.Errorf("consent.Status get record: %w", err)
	}

	return status, nil
}

// History returns every consent record for the user, newest first.
func (s *Service) History(ctx context.Context, userID uuid.UUID) ([]domain.ConsentRecord, error) {
	records, err := s.records.ListRecordsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("consent.History list records: %w", err)
	}
	return records, nil
}
