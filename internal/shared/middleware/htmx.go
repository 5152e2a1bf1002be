package middleware

import (
	"context"
	"net/http"

	"github.com/emiliopalmerini/runboard/internal/view"
)

type contextKey string

const htmxKey contextKey = "htmx"

// HTMX request and response headers.
const (
	HeaderCurrentURL = "HX-Current-URL"
	HeaderTrigger    = "HX-Trigger"
	HeaderRefresh    = "HX-Refresh"
)

func HTMX(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		isHTMX := r.Header.Get("HX-Request") == "true"
		ctx := context.WithValue(r.Context(), htmxKey, isHTMX)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func IsHTMX(r *http.Request) bool {
	if v, ok := r.Context().Value(htmxKey).(bool); ok {
		return v
	}
	return false
}

// Gate answers 204 No Content to HTMX re-render requests issued while the
// browser shows a location active does not accept. HTMX does not swap on 204.
// Requests without a current location are full page loads and always pass.
func Gate(active view.ActiveFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			current := r.Header.Get(HeaderCurrentURL)
			if IsHTMX(r) && current != "" && !active(current) {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Trigger asks HTMX to fire event on the page once the response is swapped.
func Trigger(w http.ResponseWriter, event string) {
	w.Header().Set(HeaderTrigger, event)
}
