// Command cleanup enforces data retention. It purges participant identities
// idle past the configured cutoff together with their audit trail (progress
// and consent rows cascade in the database), then drops audit events older
// than the audit retention window. It is intended to be invoked by an
// external cron job, not as an in-process goroutine.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/fernwood-lab/studyflow-backend/internal/adapter/postgres"
	auditrepo "github.com/fernwood-lab/studyflow-backend/internal/adapter/postgres/audit"
	identityrepo "github.com/fernwood-lab/studyflow-backend/internal/adapter/postgres/identity"
	"github.com/fernwood-lab/studyflow-backend/internal/app"
	"github.com/fernwood-lab/studyflow-backend/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	txm := postgres.NewTxManager(pool)
	identityRepo := identityrepo.New(pool)
	auditRepo := auditrepo.New(pool)

	now := time.Now()

	if days := cfg.Retention.IdleIdentityDays; days > 0 {
		cutoff := now.AddDate(0, 0, -days)

		var purged int
		// Audit rows carry no foreign key, so they are purged by ID in the
		// same transaction as the identities themselves.
		err := txm.RunInTx(ctx, func(ctx context.Context) error {
			ids, err := identityRepo.DeleteIdleSince(ctx, cutoff)
			if err != nil {
				return fmt.Errorf("delete idle identities: %w", err)
			}
			for _, id := range ids {
				if _, err := auditRepo.PurgeUserEvents(ctx, id); err != nil {
					return fmt.Errorf("purge audit events for %s: %w", id, err)
				}
			}
			purged = len(ids)
			return nil
		})
		if err != nil {
			logger.Error("identity purge failed",
				slog.String("error", err.Error()),
				slog.Time("cutoff", cutoff),
			)
			os.Exit(1)
		}

		logger.Info("idle identities purged",
			slog.Int("identities", purged),
			slog.Time("cutoff", cutoff),
		)
	}

	if days := cfg.Retention.AuditDays; days > 0 {
		cutoff := now.AddDate(0, 0, -days)

		dropped, err := auditRepo.PurgeBefore(ctx, cutoff)
		if err != nil {
			logger.Error("audit purge failed",
				slog.String("error", err.Error()),
				slog.Time("cutoff", cutoff),
			)
			os.Exit(1)
		}

		logger.Info("stale audit events purged",
			slog.Int64("events", dropped),
			slog.Time("cutoff", cutoff),
		)
	}
}
