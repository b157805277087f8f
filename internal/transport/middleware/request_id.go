package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/fernwood-lab/studyflow-backend/pkg/ctxutil"
)

const requestIDHeader = "X-Request-Id"

// RequestID tags every request with a correlation ID: an inbound
// X-Request-Id from a trusted proxy is kept, otherwise a fresh UUID is
// minted. The ID lands in the context for the access log and error
// reports, and is echoed in the response so participants can quote it
// to study support.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(ctxutil.WithRequestID(r.Context(), id)))
	})
}
