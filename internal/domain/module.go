package domain

import (
	"time"

	"github.com/google/uuid"
)

// Module is an immutable definition of one unit of the study workflow.
// Modules are created once at bootstrap by the seeder and never mutated
// at runtime; SequenceOrder defines the default linear prerequisite chain.
type Module struct {
	ID              uuid.UUID
	Name            string
	Title           string
	SequenceOrder   int
	RequiresConsent bool
	CreatedAt       time.Time
}

// Path is a named, conditionally-unlocked branch of content backed by a
// module. Its UnlockRule gates access by the participant's completed-module
// set instead of pure sequence order. Immutable once defined.
type Path struct {
	ID         uuid.UUID
	Name       string
	Title      string
	ModuleName string
	UnlockRule UnlockRule
	CreatedAt  time.Time
}

// UnlockRule is a predicate over the set of completed module names.
// RequireAll must all be completed; RequireAny needs at least one completed
// (skipped when empty). A zero rule is always satisfied.
type UnlockRule struct {
	RequireAll []string
	RequireAny []string
}

// IsZero reports whether the rule imposes no requirement.
func (r UnlockRule) IsZero() bool {
	return len(r.RequireAll) == 0 && len(r.RequireAny) == 0
}

// Satisfied evaluates the rule against the completed module-name set.
func (r UnlockRule) Satisfied(completed map[string]bool) bool {
	for _, name := range r.RequireAll {
		if !completed[name] {
			return false
		}
	}
	if len(r.RequireAny) == 0 {
		return true
	}
	for _, name := range r.RequireAny {
		if completed[name] {
			return true
		}
	}
	return false
}

// References returns every module name the rule mentions, for validation.
func (r UnlockRule) References() []string {
	refs := make([]string, 0, len(r.RequireAll)+len(r.RequireAny))
	refs = append(refs, r.RequireAll...)
	refs = append(refs, r.RequireAny...)
	return refs
}
