package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/fernwood-lab/studyflow-backend/internal/domain"
	"github.com/fernwood-lab/studyflow-backend/internal/service/access"
	"github.com/fernwood-lab/studyflow-backend/pkg/ctxutil"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// fieldErrorResponse mirrors domain.FieldError on the wire.
type fieldErrorResponse struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func writeValidationError(w http.ResponseWriter, verr *domain.ValidationError) {
	fields := make([]fieldErrorResponse, 0, len(verr.Errors))
	for _, fe := range verr.Errors {
		fields = append(fields, fieldErrorResponse{Field: fe.Field, Message: fe.Message})
	}
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"error":  "validation_failed",
		"fields": fields,
	})
}

// handleError maps domain errors onto HTTP statuses with stable error codes.
// Anything unmatched is logged and surfaced as an opaque 500: internal error
// text never crosses the boundary.
func handleError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeValidationError(w, verr)
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, "validation_failed")
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found")
	case errors.Is(err, domain.ErrAlreadyCompleted):
		writeError(w, http.StatusConflict, "already_completed")
	case errors.Is(err, domain.ErrPathReadOnly):
		writeError(w, http.StatusForbidden, "path_read_only")
	case errors.Is(err, domain.ErrReadOnly):
		writeError(w, http.StatusForbidden, "read_only")
	case errors.Is(err, domain.ErrAlreadyConsented):
		writeError(w, http.StatusConflict, "already_consented")
	case errors.Is(err, domain.ErrVersionNotActive):
		writeError(w, http.StatusUnprocessableEntity, "version_not_active")
	case errors.Is(err, domain.ErrAlreadyExists), errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, "conflict")
	case errors.Is(err, domain.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "unavailable")
	default:
		log.ErrorContext(r.Context(), "internal error", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeJSON decodes the request body into dst. Returns false after writing
// the client-facing error, including 413 when MaxBytesReader cut the body.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// callerID pulls the authenticated identity from the request context,
// writing a 401 for anonymous requests.
func callerID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, ok := ctxutil.UserIDFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return uuid.Nil, false
	}
	return id, true
}

// denialMessages gives each machine-readable denial reason one human
// sentence. The reason strings themselves are wire-stable.
var denialMessages = map[domain.DenialReason]string{
	domain.ReasonConsentRequired:      "the active consent version must be accepted before this content is available",
	domain.ReasonPriorIncomplete:      "earlier modules must be completed first",
	domain.ReasonBranchingUnsatisfied: "the unlock requirements for this path are not met",
	domain.ReasonPathReadOnly:         "this path is completed and read-only",
}

// writeDenied writes the 403 envelope for a negative access decision.
func writeDenied(w http.ResponseWriter, d access.Decision) {
	body := map[string]any{
		"error":   "access_denied",
		"reason":  d.Reason.String(),
		"message": denialMessages[d.Reason],
	}
	if d.NextModule != nil {
		body["next_module"] = toModuleResponse(*d.NextModule)
	}
	writeJSON(w, http.StatusForbidden, body)
}
