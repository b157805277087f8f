// Command seed bootstraps the study plan: the module sequence, branching
// paths, and the initial consent version, read from a YAML plan file. It is
// idempotent and safe to re-run after editing the plan.
//
// Flags:
//
//	--plan  path to the study-plan YAML file (required)
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/fernwood-lab/studyflow-backend/internal/adapter/postgres"
	consentrepo "github.com/fernwood-lab/studyflow-backend/internal/adapter/postgres/consent"
	modulerepo "github.com/fernwood-lab/studyflow-backend/internal/adapter/postgres/module"
	"github.com/fernwood-lab/studyflow-backend/internal/app"
	"github.com/fernwood-lab/studyflow-backend/internal/app/seeder"
	"github.com/fernwood-lab/studyflow-backend/internal/config"
)

func main() {
	planFlag := flag.String("plan", "", "path to the study-plan YAML file")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	plan, err := seeder.LoadPlan(*planFlag)
	if err != nil {
		logger.Error("load study plan", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	txm := postgres.NewTxManager(pool)

	pipeline := seeder.NewPipeline(
		logger,
		modulerepo.New(pool),
		consentrepo.New(pool),
		txm,
		clockwork.NewRealClock(),
	)

	res, err := pipeline.Apply(ctx, plan)
	if err != nil {
		logger.Error("seeding failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("seeding completed",
		slog.Int("modules", res.Modules),
		slog.Int("paths", res.Paths),
		slog.Bool("consent_created", res.ConsentCreated),
		slog.Bool("consent_activated", res.ConsentActivated),
	)
}
