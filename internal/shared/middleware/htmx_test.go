package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"github.com/emiliopalmerini/runboard/internal/view"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestIsHTMX(t *testing.T) {
	var got bool
	h := HTMX(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = IsHTMX(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("HX-Request", "true")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.True(t, got)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, got)
}

func TestGate(t *testing.T) {
	h := HTMX(Gate(view.RouteGate("/experiments"))(okHandler()))

	tests := []struct {
		name       string
		htmx       bool
		currentURL string
		wantStatus int
	}{
		{"full page load", false, "", http.StatusOK},
		{"htmx on active view", true, "http://localhost:8080/experiments?offset=20", http.StatusOK},
		{"htmx on another view", true, "http://localhost:8080/bookmarks/experiments", http.StatusNoContent},
		{"htmx without current url", true, "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/views/x/experiments", nil)
			if tt.htmx {
				req.Header.Set("HX-Request", "true")
			}
			if tt.currentURL != "" {
				req.Header.Set(HeaderCurrentURL, tt.currentURL)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestLogger(t *testing.T) {
	h := Logger(zaptest.NewLogger(t).Sugar())(okHandler())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
