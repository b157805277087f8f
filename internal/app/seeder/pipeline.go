package seeder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/fernwood-lab/studyflow-backend/internal/domain"
)

// moduleStore is the slice of the study-plan repository the pipeline writes.
type moduleStore interface {
	Upsert(ctx context.Context, module domain.Module) (domain.Module, error)
	UpsertPath(ctx context.Context, path domain.Path) (domain.Path, error)
}

// consentStore is the slice of the consent repository the pipeline writes.
type consentStore interface {
	CreateVersion(ctx context.Context, version domain.ConsentVersion) (domain.ConsentVersion, error)
	GetActiveVersion(ctx context.Context) (domain.ConsentVersion, error)
	ActivateVersion(ctx context.Context, version string, at time.Time) (domain.ConsentVersion, error)
	RetireActive(ctx context.Context, at time.Time) (int64, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Result summarizes one pipeline run.
type Result struct {
	Modules          int
	Paths            int
	ConsentCreated   bool
	ConsentActivated bool
}

// Pipeline applies a study plan to the database. Runs are idempotent:
// modules and paths upsert by name, an existing consent version is left
// untouched, and activation is skipped when the version is already active.
type Pipeline struct {
	log     *slog.Logger
	modules moduleStore
	consent consentStore
	tx      txManager
	clock   clockwork.Clock
}

// NewPipeline creates a seeding pipeline.
func NewPipeline(
	log *slog.Logger,
	modules moduleStore,
	consent consentStore,
	tx txManager,
	clock clockwork.Clock,
) *Pipeline {
	return &Pipeline{
		log:     log,
		modules: modules,
		consent: consent,
		tx:      tx,
		clock:   clock,
	}
}

// Apply validates the plan and writes it to the database.
//
// The plan is rejected before any write when it would not produce a loadable
// module graph (duplicate names or orders, paths referencing unknown
// modules). Modules and paths are written in one transaction; the consent
// roll-over runs in its own transaction afterwards.
func (p *Pipeline) Apply(ctx context.Context, plan *Plan) (Result, error) {
	var res Result

	modules, paths := buildDefinitions(plan, p.clock.Now())
	if _, err := domain.NewModuleGraph(modules, paths); err != nil {
		return res, fmt.Errorf("validate plan: %w", err)
	}

	err := p.tx.RunInTx(ctx, func(ctx context.Context) error {
		for _, m := range modules {
			if _, err := p.modules.Upsert(ctx, m); err != nil {
				return fmt.Errorf("upsert module %s: %w", m.Name, err)
			}
			res.Modules++
		}
		for _, pa := range paths {
			if _, err := p.modules.UpsertPath(ctx, pa); err != nil {
				return fmt.Errorf("upsert path %s: %w", pa.Name, err)
			}
			res.Paths++
		}
		return nil
	})
	if err != nil {
		return res, err
	}

	p.log.Info("study plan applied",
		"modules", res.Modules,
		"paths", res.Paths,
	)

	if plan.ConsentVersion == nil {
		return res, nil
	}

	res.ConsentCreated, res.ConsentActivated, err = p.applyConsent(ctx, *plan.ConsentVersion)
	if err != nil {
		return res, err
	}

	return res, nil
}

// applyConsent ensures the plan's consent version exists and, when asked,
// makes it the ACTIVE one.
func (p *Pipeline) applyConsent(ctx context.Context, def ConsentDef) (created, activated bool, err error) {
	if def.Version == "" {
		return false, false, fmt.Errorf("consent version: empty version label")
	}

	now := p.clock.Now()

	_, err = p.consent.CreateVersion(ctx, domain.ConsentVersion{
		ID:        uuid.New(),
		Version:   def.Version,
		Status:    domain.ConsentVersionStatusDraft,
		Content:   def.Content,
		CreatedAt: now,
	})
	switch {
	case err == nil:
		created = true
		p.log.Info("consent version created", "version", def.Version)
	case errors.Is(err, domain.ErrAlreadyExists):
		// Re-running against an existing version keeps its stored content.
		p.log.Info("consent version already exists", "version", def.Version)
	default:
		return false, false, fmt.Errorf("create consent version %s: %w", def.Version, err)
	}

	if !def.Activate {
		return created, false, nil
	}

	active, err := p.consent.GetActiveVersion(ctx)
	switch {
	case err == nil && active.Version == def.Version:
		return created, false, nil
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		return created, false, fmt.Errorf("get active consent version: %w", err)
	}

	err = p.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := p.consent.RetireActive(ctx, now); err != nil {
			return fmt.Errorf("retire active consent version: %w", err)
		}
		if _, err := p.consent.ActivateVersion(ctx, def.Version, now); err != nil {
			return fmt.Errorf("activate consent version %s: %w", def.Version, err)
		}
		return nil
	})
	if err != nil {
		return created, false, err
	}

	p.log.Info("consent version activated", "version", def.Version)
	return created, true, nil
}

// buildDefinitions converts plan entries into domain values. Fresh IDs are
// assigned here; on upsert the database keeps the stored ID for rows that
// already exist.
func buildDefinitions(plan *Plan, now time.Time) ([]domain.Module, []domain.Path) {
	modules := make([]domain.Module, 0, len(plan.Modules))
	for _, def := range plan.Modules {
		modules = append(modules, domain.Module{
			ID:              uuid.New(),
			Name:            def.Name,
			Title:           def.Title,
			SequenceOrder:   def.SequenceOrder,
			RequiresConsent: def.RequiresConsent,
			CreatedAt:       now,
		})
	}

	paths := make([]domain.Path, 0, len(plan.Paths))
	for _, def := range plan.Paths {
		paths = append(paths, domain.Path{
			ID:         uuid.New(),
			Name:       def.Name,
			Title:      def.Title,
			ModuleName: def.Module,
			UnlockRule: domain.UnlockRule{
				RequireAll: def.RequireAll,
				RequireAny: def.RequireAny,
			},
			CreatedAt: now,
		})
	}

	return modules, paths
}
