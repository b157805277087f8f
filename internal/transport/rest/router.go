package rest

import "net/http"

// Handlers groups the REST handlers the router mounts.
type Handlers struct {
	Health   *HealthHandler
	Identity *IdentityHandler
	Consent  *ConsentHandler
	Study    *StudyHandler
	Admin    *AdminHandler
}

// NewRouter builds the full route table. Authentication runs in middleware;
// role checks run inside the admin handlers.
func NewRouter(h Handlers) *http.ServeMux {
	mux := http.NewServeMux()

	// Probes.
	mux.HandleFunc("GET /live", h.Health.Live)
	mux.HandleFunc("GET /ready", h.Health.Ready)
	mux.HandleFunc("GET /health", h.Health.Health)

	// Identity.
	mux.HandleFunc("POST /api/v1/identities", h.Identity.Enroll)
	mux.HandleFunc("POST /api/v1/auth/login", h.Identity.Login)
	mux.HandleFunc("GET /api/v1/me", h.Identity.Me)
	mux.HandleFunc("PATCH /api/v1/me/attributes", h.Identity.SetAttributes)

	// Consent.
	mux.HandleFunc("GET /api/v1/consent/status", h.Consent.Status)
	mux.HandleFunc("POST /api/v1/consent", h.Consent.Record)

	// Study plan.
	mux.HandleFunc("GET /api/v1/study/modules", h.Study.ListModules)
	mux.HandleFunc("GET /api/v1/study/current", h.Study.Current)
	mux.HandleFunc("GET /api/v1/study/modules/{name}/access", h.Study.CheckAccess)
	mux.HandleFunc("POST /api/v1/study/modules/{name}/start", h.Study.Start)
	mux.HandleFunc("PATCH /api/v1/study/modules/{name}/progress", h.Study.SaveProgress)
	mux.HandleFunc("GET /api/v1/study/modules/{name}/progress", h.Study.GetProgress)
	mux.HandleFunc("POST /api/v1/study/modules/{name}/complete", h.Study.Complete)
	mux.HandleFunc("GET /api/v1/study/paths/{name}/access", h.Study.CheckPathAccess)
	mux.HandleFunc("GET /api/v1/study/paths/{name}", h.Study.ReviewPath)

	// Admin.
	mux.HandleFunc("POST /api/v1/admin/consent/versions", h.Admin.CreateConsentVersion)
	mux.HandleFunc("GET /api/v1/admin/consent/versions", h.Admin.ListConsentVersions)
	mux.HandleFunc("POST /api/v1/admin/consent/versions/{version}/activate", h.Admin.ActivateConsentVersion)
	mux.HandleFunc("POST /api/v1/admin/consent/versions/{version}/retire", h.Admin.RetireConsentVersion)
	mux.HandleFunc("GET /api/v1/admin/identities", h.Admin.ListIdentities)
	mux.HandleFunc("GET /api/v1/admin/audit", h.Admin.ListAuditEvents)

	return mux
}
