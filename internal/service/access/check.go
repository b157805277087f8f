package access

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/fernwood-lab/studyflow-backend/internal/domain"
)

// CheckAccess decides whether the user may enter the named module. The
// consent gate runs first; then the strict prerequisite chain: the module at
// order k is accessible iff every module with a smaller order is COMPLETED.
// The first module has no chain and is always accessible subject to consent.
// Exactly one ACCESS_GRANTED or ACCESS_DENIED audit event is emitted per
// call. The check mutates nothing.
func (s *Service) CheckAccess(ctx context.Context, userID uuid.UUID, moduleName string) (Decision, error) {
	// Step 1: Resolve the module in the study plan
	module, ok := s.graph.ModuleByName(moduleName)
	if !ok {
		return Decision{}, fmt.Errorf("module %q: %w", moduleName, domain.ErrNotFound)
	}

	// Step 2: Consent gate
	if module.RequiresConsent {
		consented, err := s.consent.HasValidConsent(ctx, userID)
		if err != nil {
			return Decision{}, fmt.Errorf("access.CheckAccess consent check: %w", err)
		}
		if !consented {
			return s.denyModule(ctx, userID, module.Name, domain.ReasonConsentRequired, nil), nil
		}
	}

	// Step 3: Sequence gate over the prerequisite chain
	priors := s.graph.ModulesBefore(module.SequenceOrder)
	if len(priors) > 0 {
		completed, err := s.completions.CompletedModuleNames(ctx, userID)
		if err != nil {
			return Decision{}, fmt.Errorf("access.CheckAccess completed set: %w", err)
		}
		for _, prior := range priors {
			if !completed[prior.Name] {
				next := prior
				return s.denyModule(ctx, userID, module.Name, domain.ReasonPriorIncomplete, &next), nil
			}
		}
	}

	return s.grantModule(ctx, userID, module.Name), nil
}

func (s *Service) grantModule(ctx context.Context, userID uuid.UUID, moduleName string) Decision {
	s.audit.Record(ctx, userID, domain.EventAccessGranted, map[string]any{
		"module": moduleName,
	})

	s.log.InfoContext(ctx, "module access granted",
		slog.String("user_id", userID.String()),
		slog.String("module", moduleName))

	return Decision{Accessible: true}
}

func (s *Service) denyModule(ctx context.Context, userID uuid.UUID, moduleName string, reason domain.DenialReason, next *domain.Module) Decision {
	s.audit.Record(ctx, userID, domain.EventAccessDenied, map[string]any{
		"module": moduleName,
		"reason": string(reason),
	})

	s.log.InfoContext(ctx, "module access denied",
		slog.String("user_id", userID.String()),
		slog.String("module", moduleName),
		slog.String("reason", string(reason)))

	return Decision{Reason: reason, NextModule: next}
}
