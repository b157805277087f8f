package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/fernwood-lab/studyflow-backend/internal/domain"
)

// Authenticate verifies an alias + passphrase pair and issues an access
// token. An unknown alias and a wrong passphrase both fail with
// ErrUnauthorized, so a caller cannot probe which aliases exist.
func (s *Service) Authenticate(ctx context.Context, input AuthenticateInput) (*Session, error) {
	input.Alias = strings.TrimSpace(input.Alias)

	// Step 1: Validate input
	if err := input.Validate(); err != nil {
		return nil, err
	}

	// Step 2: Load the identity by alias
	identity, err := s.identities.GetByAlias(ctx, input.Alias)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("identity.Authenticate get by alias: %w", err)
	}

	// Step 3: Verify the passphrase
	if err := bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(input.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}

	// Step 4: Stamp activity
	now := s.clock.Now().UTC().Truncate(time.Microsecond)
	if err := s.identities.UpdateLastSeen(ctx, identity.ID, now); err != nil {
		return nil, fmt.Errorf("identity.Authenticate update last seen: %w", err)
	}
	identity.LastSeenAt = &now

	// Step 5: Issue the access token
	token, err := s.tokens.GenerateAccessToken(identity.ID, string(identity.Role))
	if err != nil {
		return nil, fmt.Errorf("identity.Authenticate issue token: %w", err)
	}

	s.log.InfoContext(ctx, "participant authenticated",
		slog.String("user_id", identity.ID.String()))

	return &Session{Token: token, Identity: identity}, nil
}
