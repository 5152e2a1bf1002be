package web

import (
	"errors"
	"net/http"

	"github.com/emiliopalmerini/runboard/internal/domain"
	"github.com/emiliopalmerini/runboard/internal/query"
	sharedmw "github.com/emiliopalmerini/runboard/internal/shared/middleware"
	"github.com/emiliopalmerini/runboard/internal/view"
)

var errUnknownColumn = errors.New("unknown column")

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrExperimentNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrExperimentExists), errors.Is(err, domain.ErrAlreadyDone):
		return http.StatusConflict
	case errors.Is(err, view.ErrUnknownView):
		return http.StatusGone
	case isBadRequest(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func isBadRequest(err error) bool {
	return errors.Is(err, query.ErrInvalidQuery) ||
		errors.Is(err, query.ErrInvalidSort) ||
		errors.Is(err, domain.ErrInvalidStatus) ||
		errors.Is(err, domain.ErrInvalidExperiment) ||
		errors.Is(err, errUnknownColumn) ||
		errors.Is(err, errBadBody)
}

// writeError maps err to a status code. An expired view asks HTMX for a full
// reload, which mounts a fresh one.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusGone {
		w.Header().Set(sharedmw.HeaderRefresh, "true")
	}
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.log.Errorw("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		msg = http.StatusText(status)
	}
	http.Error(w, msg, status)
}
