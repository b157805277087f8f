package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/fernwood-lab/studyflow-backend/internal/domain"
	"github.com/fernwood-lab/studyflow-backend/internal/service/identity"
)

// identityService defines the minimal interface needed by IdentityHandler.
type identityService interface {
	Enroll(ctx context.Context) (*identity.Enrollment, error)
	Authenticate(ctx context.Context, input identity.AuthenticateInput) (*identity.Session, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Identity, error)
	SetAttributes(ctx context.Context, id uuid.UUID, attrs map[string]any) (domain.Identity, error)
}

// IdentityHandler serves enrollment, login, and profile REST endpoints.
type IdentityHandler struct {
	svc identityService
	log *slog.Logger
}

// NewIdentityHandler creates an IdentityHandler.
func NewIdentityHandler(svc identityService, logger *slog.Logger) *IdentityHandler {
	return &IdentityHandler{svc: svc, log: logger.With("handler", "identity")}
}

type loginRequest struct {
	Alias      string `json:"alias"`
	Passphrase string `json:"passphrase"`
}

type attributesRequest struct {
	Attributes map[string]any `json:"attributes"`
}

type enrollResponse struct {
	ID         string    `json:"id"`
	Alias      string    `json:"alias"`
	Passphrase string    `json:"passphrase"`
	Role       string    `json:"role"`
	CreatedAt  time.Time `json:"createdAt"`
}

type sessionResponse struct {
	AccessToken string           `json:"accessToken"`
	Identity    identityResponse `json:"identity"`
}

type identityResponse struct {
	ID         string         `json:"id"`
	Alias      string         `json:"alias"`
	Role       string         `json:"role"`
	Attributes map[string]any `json:"attributes"`
	CreatedAt  time.Time      `json:"createdAt"`
	LastSeenAt *time.Time     `json:"lastSeenAt,omitempty"`
}

// Enroll handles POST /api/v1/identities. Anonymous: enrollment is how a
// participant comes to exist. The passphrase in the response is shown
// exactly once and cannot be recovered later.
func (h *IdentityHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.Enroll(r.Context())
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, enrollResponse{
		ID:         result.Identity.ID.String(),
		Alias:      result.Identity.Alias,
		Passphrase: result.Passphrase,
		Role:       result.Identity.Role.String(),
		CreatedAt:  result.Identity.CreatedAt,
	})
}

// Login handles POST /api/v1/auth/login.
func (h *IdentityHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	session, err := h.svc.Authenticate(r.Context(), identity.AuthenticateInput{
		Alias:    req.Alias,
		Password: req.Passphrase,
	})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		AccessToken: session.Token,
		Identity:    toIdentityResponse(session.Identity),
	})
}

// Me handles GET /api/v1/me.
func (h *IdentityHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	ident, err := h.svc.Get(r.Context(), userID)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toIdentityResponse(ident))
}

// SetAttributes handles PATCH /api/v1/me/attributes. Keys merge over the
// stored bag; existing keys not named in the request survive.
func (h *IdentityHandler) SetAttributes(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req attributesRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ident, err := h.svc.SetAttributes(r.Context(), userID, req.Attributes)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toIdentityResponse(ident))
}

func toIdentityResponse(ident domain.Identity) identityResponse {
	return identityResponse{
		ID:         ident.ID.String(),
		Alias:      ident.Alias,
		Role:       ident.Role.String(),
		Attributes: ident.Attributes,
		CreatedAt:  ident.CreatedAt,
		LastSeenAt: ident.LastSeenAt,
	}
}
