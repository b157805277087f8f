package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/fernwood-lab/studyflow-backend/internal/auth"
	"github.com/fernwood-lab/studyflow-backend/internal/domain"
)

// Enroll creates a new anonymous participant: a generated alias, a generated
// passphrase stored only as a bcrypt hash, role PARTICIPANT, and an empty
// attribute bag. Alias collisions regenerate and retry against the unique
// index. Emits one IDENTITY_ENROLLED audit event.
func (s *Service) Enroll(ctx context.Context) (*Enrollment, error) {
	// Step 1: Generate credentials. The passphrase is hashed once; only the
	// alias regenerates on a collision.
	passphrase, err := auth.GeneratePassphrase(passphraseLength)
	if err != nil {
		return nil, fmt.Errorf("identity.Enroll: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(passphrase), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("identity.Enroll hash passphrase: %w", err)
	}

	now := s.clock.Now().UTC().Truncate(time.Microsecond)

	// Step 2: Persist, retrying fresh aliases on unique-index collisions
	var created domain.Identity
	for attempt := 1; ; attempt++ {
		alias, err := auth.GenerateAlias()
		if err != nil {
			return nil, fmt.Errorf("identity.Enroll: %w", err)
		}

		created, err = s.identities.Create(ctx, domain.Identity{
			ID:           uuid.New(),
			Alias:        alias,
			PasswordHash: string(hash),
			Role:         domain.RoleParticipant,
			Attributes:   map[string]any{},
			CreatedAt:    now,
		})
		if err == nil {
			break
		}
		if !errors.Is(err, domain.ErrAlreadyExists) {
			return nil, fmt.Errorf("identity.Enroll create: %w", err)
		}
		if attempt >= maxAliasAttempts {
			return nil, fmt.Errorf("identity.Enroll: %d alias collisions in a row: %w", attempt, err)
		}
	}

	// Step 3: Record the enrollment
	s.audit.Record(ctx, created.ID, domain.EventIdentityEnrolled, map[string]any{
		"alias": created.Alias,
	})

	s.log.InfoContext(ctx, "participant enrolled",
		slog.String("user_id", created.ID.String()),
		slog.String("alias", created.Alias))

	return &Enrollment{Identity: created, Passphrase: passphrase}, nil
}
