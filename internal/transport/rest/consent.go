package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/fernwood-lab/studyflow-backend/internal/domain"
	"github.com/fernwood-lab/studyflow-backend/internal/service/consent"
)

// consentService defines the minimal interface needed by ConsentHandler.
type consentService interface {
	Status(ctx context.Context, userID uuid.UUID) (consent.ConsentStatus, error)
	RecordConsent(ctx context.Context, input consent.RecordConsentInput) (domain.ConsentRecord, error)
}

// ConsentHandler serves participant-facing consent REST endpoints.
type ConsentHandler struct {
	svc consentService
	log *slog.Logger
}

// NewConsentHandler creates a ConsentHandler.
func NewConsentHandler(svc consentService, logger *slog.Logger) *ConsentHandler {
	return &ConsentHandler{svc: svc, log: logger.With("handler", "consent")}
}

type recordConsentRequest struct {
	Version string `json:"version"`
	Content string `json:"content"`
}

type consentStatusResponse struct {
	ActiveVersion consentVersionResponse `json:"activeVersion"`
	Consented     bool                   `json:"consented"`
	AcceptedAt    *time.Time             `json:"acceptedAt,omitempty"`
}

type consentRecordResponse struct {
	ID         string    `json:"id"`
	Version    string    `json:"version"`
	AcceptedAt time.Time `json:"acceptedAt"`
}

type consentVersionResponse struct {
	Version     string     `json:"version"`
	Status      string     `json:"status"`
	Content     string     `json:"content"`
	CreatedAt   time.Time  `json:"createdAt"`
	ActivatedAt *time.Time `json:"activatedAt,omitempty"`
	RetiredAt   *time.Time `json:"retiredAt,omitempty"`
}

// Status handles GET /api/v1/consent/status: the ACTIVE version text plus
// whether the caller has accepted that exact version.
func (h *ConsentHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	status, err := h.svc.Status(r.Context(), userID)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, consentStatusResponse{
		ActiveVersion: toConsentVersionResponse(status.ActiveVersion),
		Consented:     status.Consented,
		AcceptedAt:    status.AcceptedAt,
	})
}

// Record handles POST /api/v1/consent. The submitted content is snapshotted
// verbatim into the immutable record.
func (h *ConsentHandler) Record(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req recordConsentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	record, err := h.svc.RecordConsent(r.Context(), consent.RecordConsentInput{
		UserID:  userID,
		Version: req.Version,
		Content: req.Content,
	})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, consentRecordResponse{
		ID:         record.ID.String(),
		Version:    record.Version,
		AcceptedAt: record.AcceptedAt,
	})
}

func toConsentVersionResponse(v domain.ConsentVersion) consentVersionResponse {
	return consentVersionResponse{
		Version:     v.Version,
		Status:      v.Status.String(),
		Content:     v.Content,
		CreatedAt:   v.CreatedAt,
		ActivatedAt: v.ActivatedAt,
		RetiredAt:   v.RetiredAt,
	}
}
