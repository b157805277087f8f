package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/fernwood-lab/studyflow-backend/internal/adapter/postgres"
	auditrepo "github.com/fernwood-lab/studyflow-backend/internal/adapter/postgres/audit"
	consentrepo "github.com/fernwood-lab/studyflow-backend/internal/adapter/postgres/consent"
	identityrepo "github.com/fernwood-lab/studyflow-backend/internal/adapter/postgres/identity"
	modulerepo "github.com/fernwood-lab/studyflow-backend/internal/adapter/postgres/module"
	progressrepo "github.com/fernwood-lab/studyflow-backend/internal/adapter/postgres/progress"
	"github.com/fernwood-lab/studyflow-backend/internal/auth"
	"github.com/fernwood-lab/studyflow-backend/internal/config"
	"github.com/fernwood-lab/studyflow-backend/internal/domain"
	accesssvc "github.com/fernwood-lab/studyflow-backend/internal/service/access"
	auditsvc "github.com/fernwood-lab/studyflow-backend/internal/service/audit"
	consentsvc "github.com/fernwood-lab/studyflow-backend/internal/service/consent"
	identitysvc "github.com/fernwood-lab/studyflow-backend/internal/service/identity"
	progresssvc "github.com/fernwood-lab/studyflow-backend/internal/service/progress"
	"github.com/fernwood-lab/studyflow-backend/internal/transport/middleware"
	"github.com/fernwood-lab/studyflow-backend/internal/transport/rest"
)

// Run assembles the full application and serves HTTP until ctx is canceled
// or the server fails. On cancellation it drains in-flight requests within
// the configured shutdown timeout.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := NewLogger(cfg.Log)
	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	// 1. Database pool.
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	// 2. Infrastructure.
	txm := postgres.NewTxManager(pool)
	clock := clockwork.NewRealClock()

	// 3. Repositories.
	auditRepo := auditrepo.New(pool)
	consentRepo := consentrepo.New(pool)
	identityRepo := identityrepo.New(pool)
	moduleRepo := modulerepo.New(pool)
	progressRepo := progressrepo.New(pool)

	// 4. Study plan. Definitions are loaded once; a broken plan (duplicate
	// names or orders, dangling path rules) aborts startup.
	modules, err := moduleRepo.ListOrdered(ctx)
	if err != nil {
		return fmt.Errorf("load modules: %w", err)
	}
	paths, err := moduleRepo.ListPaths(ctx)
	if err != nil {
		return fmt.Errorf("load paths: %w", err)
	}
	graph, err := domain.NewModuleGraph(modules, paths)
	if err != nil {
		return fmt.Errorf("build module graph: %w", err)
	}
	logger.Info("study plan loaded",
		slog.Int("modules", len(modules)),
		slog.Int("paths", len(paths)),
	)

	// 5. Token manager.
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL)

	// 6. Services. The audit recorder is shared; the access service doubles
	// as the progress service's next-module finder.
	recorder := auditsvc.NewRecorder(logger, auditRepo, clock)
	consentService := consentsvc.NewService(logger, consentRepo, consentRepo, recorder, txm, clock)
	accessService := accesssvc.NewService(logger, progressRepo, consentService, recorder, graph)
	progressService := progresssvc.NewService(logger, progressRepo, graph, accessService, recorder, txm, clock)
	identityService := identitysvc.NewService(logger, identityRepo, recorder, tokens, cfg.Auth, clock)

	// 7. HTTP handlers and routes.
	router := rest.NewRouter(rest.Handlers{
		Health:   rest.NewHealthHandler(pool, BuildVersion()),
		Identity: rest.NewIdentityHandler(identityService, logger),
		Consent:  rest.NewConsentHandler(consentService, logger),
		Study:    rest.NewStudyHandler(progressService, accessService, graph, cfg.Study, logger),
		Admin:    rest.NewAdminHandler(consentService, identityService, auditRepo, logger),
	})

	// 8. Middleware chain, outermost first.
	mws := []middleware.Middleware{
		middleware.Recovery(logger),
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.CORS(cfg.CORS),
	}
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.CleanupInterval)
		defer limiter.Stop()
		mws = append(mws, limiter.Limit(cfg.RateLimit.PerMinute))
	}
	mws = append(mws, middleware.Auth(tokens))

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      middleware.Chain(mws...)(router),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 9. Serve until ctx is canceled, then drain.
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down", slog.Duration("timeout", cfg.Server.ShutdownTimeout))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
