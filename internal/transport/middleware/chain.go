package middleware

import "net/http"

// Middleware wraps an http.Handler with cross-cutting behavior.
type Middleware func(http.Handler) http.Handler

// Chain folds a middleware list into one. The list reads outermost first:
// Chain(recovery, auth)(h) serves recovery(auth(h)), so recovery sees the
// request before auth and sees the response after it.
func Chain(outer ...Middleware) Middleware {
	return func(h http.Handler) http.Handler {
		wrapped := h
		for i := len(outer) - 1; i >= 0; i-- {
			wrapped = outer[i](wrapped)
		}
		return wrapped
	}
}
