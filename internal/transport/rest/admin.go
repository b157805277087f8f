package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/fernwood-lab/studyflow-backend/internal/domain"
	"github.com/fernwood-lab/studyflow-backend/internal/service/consent"
	"github.com/fernwood-lab/studyflow-backend/internal/service/identity"
	"github.com/fernwood-lab/studyflow-backend/pkg/ctxutil"
)

// consentAdminService defines the consent-version lifecycle operations
// needed by AdminHandler.
type consentAdminService interface {
	CreateVersion(ctx context.Context, input consent.CreateVersionInput) (domain.ConsentVersion, error)
	ActivateVersion(ctx context.Context, version string) (domain.ConsentVersion, error)
	RetireVersion(ctx context.Context, version string) (domain.ConsentVersion, error)
	ListVersions(ctx context.Context) ([]domain.ConsentVersion, error)
}

// identityDirectory defines the identity listings needed by AdminHandler.
type identityDirectory interface {
	List(ctx context.Context, input identity.ListInput) ([]domain.Identity, int, error)
	FindByAttribute(ctx context.Context, key string, value any, limit, offset int) ([]domain.Identity, int, error)
}

// auditLister defines the audit-trail read surface needed by AdminHandler.
type auditLister interface {
	List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEvent, error)
}

// AdminHandler serves admin REST endpoints. Every operation requires the
// ADMIN role claim from the request context.
type AdminHandler struct {
	consent    consentAdminService
	identities identityDirectory
	audit      auditLister
	log        *slog.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(consentSvc consentAdminService, identities identityDirectory, audit auditLister, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		consent:    consentSvc,
		identities: identities,
		audit:      audit,
		log:        logger.With("handler", "admin"),
	}
}

type createVersionRequest struct {
	Version string `json:"version"`
	Content string `json:"content"`
}

type identityListResponse struct {
	Identities []identityResponse `json:"identities"`
	Total      int                `json:"total"`
}

type auditEventResponse struct {
	ID        string         `json:"id"`
	UserID    string         `json:"userId"`
	EventType string         `json:"eventType"`
	Payload   map[string]any `json:"payload,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// CreateConsentVersion handles POST /api/v1/admin/consent/versions.
func (h *AdminHandler) CreateConsentVersion(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	var req createVersionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	version, err := h.consent.CreateVersion(r.Context(), consent.CreateVersionInput{
		Version: req.Version,
		Content: req.Content,
	})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, toConsentVersionResponse(version))
}

// ActivateConsentVersion handles
// POST /api/v1/admin/consent/versions/{version}/activate. Activation
// retires the previously ACTIVE version in the same transaction.
func (h *AdminHandler) ActivateConsentVersion(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	version, err := h.consent.ActivateVersion(r.Context(), r.PathValue("version"))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toConsentVersionResponse(version))
}

// RetireConsentVersion handles
// POST /api/v1/admin/consent/versions/{version}/retire.
func (h *AdminHandler) RetireConsentVersion(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	version, err := h.consent.RetireVersion(r.Context(), r.PathValue("version"))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toConsentVersionResponse(version))
}

// ListConsentVersions handles GET /api/v1/admin/consent/versions.
func (h *AdminHandler) ListConsentVersions(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	versions, err := h.consent.ListVersions(r.Context())
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	out := make([]consentVersionResponse, 0, len(versions))
	for _, v := range versions {
		out = append(out, toConsentVersionResponse(v))
	}

	writeJSON(w, http.StatusOK, out)
}

// ListIdentities handles GET /api/v1/admin/identities. With attr_key (and
// optionally attr_value) it filters by attribute containment; attr_value is
// parsed as JSON when valid, so attr_value=42 matches the number 42 while
// attr_value=pilot matches the string "pilot".
// GET /admin/identities?attr_key=cohort&attr_value=pilot&limit=50&offset=0
func (h *AdminHandler) ListIdentities(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	q := r.URL.Query()
	limit, offset := parsePage(q.Get("limit"), q.Get("offset"))

	var (
		identities []domain.Identity
		total      int
		err        error
	)
	if key := q.Get("attr_key"); key != "" {
		var value any = q.Get("attr_value")
		if raw := q.Get("attr_value"); json.Valid([]byte(raw)) {
			json.Unmarshal([]byte(raw), &value) //nolint:errcheck
		}
		identities, total, err = h.identities.FindByAttribute(r.Context(), key, value, limit, offset)
	} else {
		identities, total, err = h.identities.List(r.Context(), identity.ListInput{Limit: limit, Offset: offset})
	}
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	out := make([]identityResponse, 0, len(identities))
	for _, ident := range identities {
		out = append(out, toIdentityResponse(ident))
	}

	writeJSON(w, http.StatusOK, identityListResponse{Identities: out, Total: total})
}

// ListAuditEvents handles GET /api/v1/admin/audit, newest first.
// GET /admin/audit?user_id=&event_type=&since=&until=&limit=50&offset=0
func (h *AdminHandler) ListAuditEvents(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	q := r.URL.Query()
	filter := domain.AuditFilter{}
	filter.Limit, filter.Offset = parsePage(q.Get("limit"), q.Get("offset"))

	if v := q.Get("user_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid user_id")
			return
		}
		filter.UserID = &id
	}
	if v := q.Get("event_type"); v != "" {
		et := domain.AuditEventType(v)
		if !et.IsValid() {
			writeError(w, http.StatusBadRequest, "invalid event_type")
			return
		}
		filter.EventType = &et
	}
	if v := q.Get("since"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid since timestamp")
			return
		}
		filter.Since = &ts
	}
	if v := q.Get("until"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid until timestamp")
			return
		}
		filter.Until = &ts
	}

	events, err := h.audit.List(r.Context(), filter)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	out := make([]auditEventResponse, 0, len(events))
	for _, ev := range events {
		out = append(out, auditEventResponse{
			ID:        ev.ID.String(),
			UserID:    ev.UserID.String(),
			EventType: ev.EventType.String(),
			Payload:   ev.Payload,
			CreatedAt: ev.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *AdminHandler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if !ctxutil.IsAdminCtx(r.Context()) {
		writeError(w, http.StatusForbidden, "admin access required")
		return false
	}
	return true
}

// parsePage reads limit/offset query values; malformed values fall back to
// zero, letting the service and repo defaults apply.
func parsePage(limitRaw, offsetRaw string) (limit, offset int) {
	if limitRaw != "" {
		json.Unmarshal([]byte(limitRaw), &limit) //nolint:errcheck
	}
	if offsetRaw != "" {
		json.Unmarshal([]byte(offsetRaw), &offset) //nolint:errcheck
	}
	return limit, offset
}
