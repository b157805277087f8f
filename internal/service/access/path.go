package access

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/fernwood-lab/studyflow-backend/internal/domain"
)

// CheckPathAccess decides whether the user may enter the named path. A path
// inherits the consent gate of its backing module, then its unlock rule is
// evaluated against the user's completed-module set instead of sequence
// order. Once the backing module is COMPLETED the path stays reachable in
// review mode: the decision reports Accessible with ReviewOnly set,
// regardless of what the unlock rule says today. Exactly one
// PATH_ACCESS_GRANTED or PATH_ACCESS_DENIED audit event is emitted per call.
func (s *Service) CheckPathAccess(ctx context.Context, userID uuid.UUID, pathName string) (Decision, error) {
	// Step 1: Resolve the path and its backing module
	path, ok := s.graph.PathByName(pathName)
	if !ok {
		return Decision{}, fmt.Errorf("path %q: %w", pathName, domain.ErrNotFound)
	}
	// The graph rejects dangling module references at startup.
	backing, _ := s.graph.ModuleByName(path.ModuleName)

	// Step 2: Inherited consent gate
	if backing.RequiresConsent {
		consented, err := s.consent.HasValidConsent(ctx, userID)
		if err != nil {
			return Decision{}, fmt.Errorf("access.CheckPathAccess consent check: %w", err)
		}
		if !consented {
			return s.denyPath(ctx, userID, path.Name, domain.ReasonConsentRequired), nil
		}
	}

	completed, err := s.completions.CompletedModuleNames(ctx, userID)
	if err != nil {
		return Decision{}, fmt.Errorf("access.CheckPathAccess completed set: %w", err)
	}

	// Step 3: A completed backing module means review mode
	if completed[path.ModuleName] {
		return s.grantPath(ctx, userID, path.Name, true), nil
	}

	// Step 4: Branching rule over the completed set
	if !path.UnlockRule.Satisfied(completed) {
		return s.denyPath(ctx, userID, path.Name, domain.ReasonBranchingUnsatisfied), nil
	}

	return s.grantPath(ctx, userID, path.Name, false), nil
}

// EnsurePathWritable is the guard progress mutations run before their normal
// transition logic when the target module backs a path. It fails with
// ErrPathReadOnly once the backing module is COMPLETED for this user, and is
// silent otherwise. Unlike the checks above it emits no audit event; the
// mutation it protects records its own outcome.
func (s *Service) EnsurePathWritable(ctx context.Context, userID uuid.UUID, pathName string) error {
	path, ok := s.graph.PathByName(pathName)
	if !ok {
		return fmt.Errorf("path %q: %w", pathName, domain.ErrNotFound)
	}

	completed, err := s.completions.CompletedModuleNames(ctx, userID)
	if err != nil {
		return fmt.Errorf("access.EnsurePathWritable completed set: %w", err)
	}

	if completed[path.ModuleName] {
		return fmt.Errorf("path %q: %w", pathName, domain.ErrPathReadOnly)
	}

	return nil
}

func (s *Service) grantPath(ctx context.Context, userID uuid.UUID, pathName string, reviewOnly bool) Decision {
	payload := map[string]any{"path": pathName}
	if reviewOnly {
		payload["review_only"] = true
	}
	s.audit.Record(ctx, userID, domain.EventPathAccessGranted, payload)

	s.log.InfoContext(ctx, "path access granted",
		slog.String("user_id", userID.String()),
		slog.String("path", pathName),
		slog.Bool("review_only", reviewOnly))

	return Decision{Accessible: true, ReviewOnly: reviewOnly}
}

func (s *Service) denyPath(ctx context.Context, userID uuid.UUID, pathName string, reason domain.DenialReason) Decision {
	s.audit.Record(ctx, userID, domain.EventPathAccessDenied, map[string]any{
		"path":   pathName,
		"reason": string(reason),
	})

	s.log.InfoContext(ctx, "path access denied",
		slog.String("user_id", userID.String()),
		slog.String("path", pathName),
		slog.String("reason", string(reason)))

	return Decision{Reason: reason}
}
