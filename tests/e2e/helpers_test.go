//go:build e2e

package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/fernwood-lab/studyflow-backend/internal/adapter/postgres"
	auditrepo "github.com/fernwood-lab/studyflow-backend/internal/adapter/postgres/audit"
	consentrepo "github.com/fernwood-lab/studyflow-backend/internal/adapter/postgres/consent"
	identityrepo "github.com/fernwood-lab/studyflow-backend/internal/adapter/postgres/identity"
	modulerepo "github.com/fernwood-lab/studyflow-backend/internal/adapter/postgres/module"
	progressrepo "github.com/fernwood-lab/studyflow-backend/internal/adapter/postgres/progress"
	"github.com/fernwood-lab/studyflow-backend/internal/adapter/postgres/testhelper"
	"github.com/fernwood-lab/studyflow-backend/internal/app/seeder"
	authpkg "github.com/fernwood-lab/studyflow-backend/internal/auth"
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

// ---------------------------------------------------------------------------
// testServer wraps the full-stack HTTP server for E2E tests.
// ---------------------------------------------------------------------------

type testServer struct {
	URL    string
	Client *http.Client
	Pool   *pgxpool.Pool
	tokens *authpkg.TokenManager
}

// testLogWriter adapts testing.T to io.Writer for slog.
type testLogWriter struct{ t *testing.T }

func (w testLogWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}

// testStudyPlan is the plan every E2E test runs against: a three-module
// sequence where the latter two require consent, plus one gated path.
// Seeding is idempotent, so each test can apply it against the shared
// database without interfering with the others.
func testStudyPlan() *seeder.Plan {
	return &seeder.Plan{
		Modules: []seeder.ModuleDef{
			{Name: "intake", Title: "Intake", SequenceOrder: 1},
			{Name: "baseline-survey", Title: "Baseline Survey", SequenceOrder: 2, RequiresConsent: true},
			{Name: "weekly-checkin", Title: "Weekly Check-in", SequenceOrder: 3, RequiresConsent: true},
		},
		Paths: []seeder.PathDef{
			{
				Name:       "mindfulness-track",
				Title:      "Mindfulness Track",
				Module:     "weekly-checkin",
				RequireAll: []string{"baseline-survey"},
			},
		},
		ConsentVersion: &seeder.ConsentDef{
			Version:  "v1",
			Content:  "You agree to participate in the study and to the processing of your responses.",
			Activate: true,
		},
	}
}

// ---------------------------------------------------------------------------
// setupTestServer bootstraps the full application stack backed by
// a real PostgreSQL container (shared via testhelper).
// ---------------------------------------------------------------------------

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	ctx := context.Background()

	// 1. Get pool from testcontainers-backed helper.
	pool := testhelper.SetupTestDB(t)

	// 2. Infrastructure.
	logger := slog.New(slog.NewTextHandler(testLogWriter{t}, nil))
	txm := postgres.NewTxManager(pool)
	clock := clockwork.NewRealClock()

	// 3. Repositories.
	auditRepo := auditrepo.New(pool)
	consentRepo := consentrepo.New(pool)
	identityRepo := identityrepo.New(pool)
	moduleRepo := modulerepo.New(pool)
	progressRepo := progressrepo.New(pool)

	// 4. Seed the study plan. Tests that roll the consent version over
	// restore v1 via the admin API afterwards.
	pipeline := seeder.NewPipeline(logger, moduleRepo, consentRepo, txm, clock)
	_, err := pipeline.Apply(ctx, testStudyPlan())
	require.NoError(t, err, "seed study plan")

	// 5. Load the module graph the way the server does at startup.
	modules, err := moduleRepo.ListOrdered(ctx)
	require.NoError(t, err)
	paths, err := moduleRepo.ListPaths(ctx)
	require.NoError(t, err)
	graph, err := domain.NewModuleGraph(modules, paths)
	require.NoError(t, err)

	// 6. Token manager with a test secret.
	authCfg := config.AuthConfig{
		JWTSecret:      "test-secret-at-least-32-chars-long!!",
		JWTIssuer:      "test-issuer",
		AccessTokenTTL: 15 * time.Minute,
		BcryptCost:     bcrypt.MinCost,
	}
	tokens := authpkg.NewTokenManager(authCfg.JWTSecret, authCfg.JWTIssuer, authCfg.AccessTokenTTL)

	// 7. Services.
	recorder := auditsvc.NewRecorder(logger, auditRepo, clock)
	consentService := consentsvc.NewService(logger, consentRepo, consentRepo, recorder, txm, clock)
	accessService := accesssvc.NewService(logger, progressRepo, consentService, recorder, graph)
	progressService := progresssvc.NewService(logger, progressRepo, graph, accessService, recorder, txm, clock)
	identityService := identitysvc.NewService(logger, identityRepo, recorder, tokens, authCfg, clock)

	// 8. Router + middleware chain.
	router := rest.NewRouter(rest.Handlers{
		Health:   rest.NewHealthHandler(pool, "test-version"),
		Identity: rest.NewIdentityHandler(identityService, logger),
		Consent:  rest.NewConsentHandler(consentService, logger),
		Study:    rest.NewStudyHandler(progressService, accessService, graph, config.StudyConfig{MaxResponseBytes: 1 << 16}, logger),
		Admin:    rest.NewAdminHandler(consentService, identityService, auditRepo, logger),
	})

	handler := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID,
		middleware.CORS(config.CORSConfig{
			AllowedOrigins:   "*",
			AllowedMethods:   "GET,POST,PATCH,OPTIONS",
			AllowedHeaders:   "Authorization,Content-Type",
			AllowCredentials: true,
			MaxAge:           86400,
		}),
		middleware.Auth(tokens),
	)(router)

	// 9. httptest server.
	srv := httptest.NewServer(handler)
	t.Cleanup(func() { srv.Close() })

	return &testServer{
		URL:    srv.URL,
		Client: srv.Client(),
		Pool:   pool,
		tokens: tokens,
	}
}

// ---------------------------------------------------------------------------
// Request helpers.
// ---------------------------------------------------------------------------

// do sends a JSON request and returns the status code plus the raw body.
func (ts *testServer) do(t *testing.T, method, path string, body any, token string) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err, "marshal request body")
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err, "create request")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.Client.Do(req)
	require.NoError(t, err, "do request")
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "read response body")

	return resp.StatusCode, raw
}

// doJSON is do for endpoints that return a JSON object.
func (ts *testServer) doJSON(t *testing.T, method, path string, body any, token string) (int, map[string]any) {
	t.Helper()

	status, raw := ts.do(t, method, path, body, token)
	if len(raw) == 0 {
		return status, nil
	}

	var result map[string]any
	require.NoError(t, json.Unmarshal(raw, &result), "decode response: %s", raw)
	return status, result
}

// doJSONList is do for endpoints that return a bare JSON array.
func (ts *testServer) doJSONList(t *testing.T, method, path string, body any, token string) (int, []any) {
	t.Helper()

	status, raw := ts.do(t, method, path, body, token)

	var result []any
	require.NoError(t, json.Unmarshal(raw, &result), "decode response: %s", raw)
	return status, result
}

// ---------------------------------------------------------------------------
// Participant and admin provisioning.
// ---------------------------------------------------------------------------

// enrollParticipant provisions a participant through the public API, logs it
// in, sets any given attributes, and returns the access token plus the
// identity's ID.
func enrollParticipant(t *testing.T, ts *testServer, attributes map[string]any) (string, uuid.UUID) {
	t.Helper()

	status, body := ts.doJSON(t, http.MethodPost, "/api/v1/identities", nil, "")
	require.Equal(t, http.StatusCreated, status, "enroll: %v", body)

	alias, _ := body["alias"].(string)
	passphrase, _ := body["passphrase"].(string)
	require.NotEmpty(t, alias, "expected an alias in the enrollment response")
	require.NotEmpty(t, passphrase, "expected a passphrase in the enrollment response")

	status, body = ts.doJSON(t, http.MethodPost, "/api/v1/auth/login",
		map[string]any{"alias": alias, "passphrase": passphrase}, "")
	require.Equal(t, http.StatusOK, status, "login: %v", body)

	token, _ := body["accessToken"].(string)
	require.NotEmpty(t, token, "expected an access token")

	ident, ok := body["identity"].(map[string]any)
	require.True(t, ok, "expected identity in login response")
	idStr, ok := ident["id"].(string)
	require.True(t, ok, "expected identity id string")
	id, err := uuid.Parse(idStr)
	require.NoError(t, err)

	if len(attributes) > 0 {
		status, body = ts.doJSON(t, http.MethodPatch, "/api/v1/me/attributes",
			map[string]any{"attributes": attributes}, token)
		require.Equal(t, http.StatusOK, status, "set attributes: %v", body)
	}

	return token, id
}

// createTestAdmin inserts an ADMIN identity directly into the database
// (there is no public enrollment path for admins) and returns a token.
func createTestAdmin(t *testing.T, ts *testServer) string {
	t.Helper()

	adminID := uuid.New()
	hash, err := bcrypt.GenerateFromPassword([]byte("admin-test-passphrase"), bcrypt.MinCost)
	require.NoError(t, err)

	_, err = ts.Pool.Exec(context.Background(),
		`INSERT INTO identities (id, alias, password_hash, role)
		 VALUES ($1, $2, $3, 'ADMIN')`,
		adminID,
		fmt.Sprintf("admin-%s", adminID.String()[:8]),
		string(hash),
	)
	require.NoError(t, err, "insert admin identity")

	token, err := ts.tokens.GenerateAccessToken(adminID, string(domain.RoleAdmin))
	require.NoError(t, err, "generate admin token")

	return token
}

// ---------------------------------------------------------------------------
// Workflow shortcuts.
// ---------------------------------------------------------------------------

// acceptConsent records the participant's acceptance of the active version.
func acceptConsent(t *testing.T, ts *testServer, token string) {
	t.Helper()

	status, body := ts.doJSON(t, http.MethodGet, "/api/v1/consent/status", nil, token)
	require.Equal(t, http.StatusOK, status, "consent status: %v", body)

	active, ok := body["activeVersion"].(map[string]any)
	require.True(t, ok, "expected activeVersion in status response")
	version, _ := active["version"].(string)
	content, _ := active["content"].(string)
	require.NotEmpty(t, version)

	status, body = ts.doJSON(t, http.MethodPost, "/api/v1/consent",
		map[string]any{"version": version, "content": content}, token)
	require.Equal(t, http.StatusCreated, status, "record consent: %v", body)
}

// completeModule drives one module from start to completion.
func completeModule(t *testing.T, ts *testServer, token, name string, responses map[string]any) {
	t.Helper()

	status, body := ts.doJSON(t, http.MethodPost, "/api/v1/study/modules/"+name+"/start", nil, token)
	require.Equal(t, http.StatusOK, status, "start %s: %v", name, body)

	status, body = ts.doJSON(t, http.MethodPost, "/api/v1/study/modules/"+name+"/complete",
		map[string]any{"responses": responses}, token)
	require.Equal(t, http.StatusOK, status, "complete %s: %v", name, body)
}

// activateConsentVersion flips the ACTIVE consent version through the admin
// API. The service retires whatever is active in the same transaction, so
// this also restores v1 after a test rolled the version over.
func activateConsentVersion(t *testing.T, ts *testServer, adminToken, version string) {
	t.Helper()

	status, body := ts.doJSON(t, http.MethodPost,
		"/api/v1/admin/consent/versions/"+version+"/activate", nil, adminToken)
	require.Equal(t, http.StatusOK, status, "activate %s: %v", version, body)
}
