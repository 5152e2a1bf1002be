package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/emiliopalmerini/runboard/internal/domain"
	"github.com/emiliopalmerini/runboard/internal/experiments"
	sharedmw "github.com/emiliopalmerini/runboard/internal/shared/middleware"
)

var errBadBody = errors.New("invalid request body")

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

type experimentResponse struct {
	ID           string             `json:"id"`
	UniqueName   string             `json:"unique_name"`
	Name         string             `json:"name"`
	User         string             `json:"user"`
	Project      string             `json:"project"`
	Sequence     int64              `json:"sequence"`
	Description  *string            `json:"description,omitempty"`
	Status       domain.Status      `json:"status"`
	LastMetric   map[string]float64 `json:"last_metric,omitempty"`
	Declarations map[string]any     `json:"declarations,omitempty"`
	IsBookmarked bool               `json:"is_bookmarked"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
	StartedAt    *time.Time         `json:"started_at,omitempty"`
	FinishedAt   *time.Time         `json:"finished_at,omitempty"`
}

type listResponse struct {
	Count   int64                `json:"count"`
	Offset  int64                `json:"offset"`
	Limit   int64                `json:"limit"`
	Results []experimentResponse `json:"results"`
}

func toResponse(e *domain.Experiment) experimentResponse {
	return experimentResponse{
		ID:           e.ID,
		UniqueName:   e.UniqueName,
		Name:         e.Name,
		User:         e.User,
		Project:      e.Project,
		Sequence:     e.Sequence,
		Description:  e.Description,
		Status:       e.Status,
		LastMetric:   e.LastMetric,
		Declarations: e.Declarations,
		IsBookmarked: e.IsBookmarked,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
		StartedAt:    e.StartedAt,
		FinishedAt:   e.FinishedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func isJSON(r *http.Request) bool {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return mt == "application/json"
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errBadBody, err)
	}
	return nil
}

// optional returns a pointer to the trimmed form value, or nil when the field
// was not submitted.
func optional(r *http.Request, key string) *string {
	if _, ok := r.Form[key]; !ok {
		return nil
	}
	v := strings.TrimSpace(r.Form.Get(key))
	return &v
}

// handleAPIListExperiments is the JSON form of the table fetch.
func (s *Server) handleAPIListExperiments(w http.ResponseWriter, r *http.Request) {
	p := s.fetchParams(r)
	if limit, err := strconv.ParseInt(r.FormValue("limit"), 10, 64); err == nil {
		p.Limit = limit
	}

	page, err := s.svc.Fetch(r.Context(), p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := listResponse{
		Count:   page.Count,
		Offset:  page.Offset,
		Limit:   page.Limit,
		Results: make([]experimentResponse, 0, len(page.Experiments)),
	}
	for _, e := range page.Experiments {
		resp.Results = append(resp.Results, toResponse(e))
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleAPICreateExperiment accepts JSON or a form post.
func (s *Server) handleAPICreateExperiment(w http.ResponseWriter, r *http.Request) {
	var p experiments.CreateParams
	if isJSON(r) {
		if err := decodeJSON(w, r, &p); err != nil {
			s.writeError(w, r, err)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			s.writeError(w, r, fmt.Errorf("%w: %v", errBadBody, err))
			return
		}
		p = experiments.CreateParams{
			User:        strings.TrimSpace(r.FormValue("user")),
			Project:     strings.TrimSpace(r.FormValue("project")),
			Name:        strings.TrimSpace(r.FormValue("name")),
			Description: optional(r, "description"),
			Status:      domain.Status(strings.TrimSpace(r.FormValue("status"))),
		}
	}

	exp, err := s.svc.Create(r.Context(), p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sharedmw.Trigger(w, eventChanged)
	writeJSON(w, http.StatusCreated, toResponse(exp))
}

func (s *Server) handleAPIGetExperiment(w http.ResponseWriter, r *http.Request) {
	exp, err := s.svc.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(exp))
}

func (s *Server) handleAPIUpdateExperiment(w http.ResponseWriter, r *http.Request) {
	var p experiments.UpdateParams
	if isJSON(r) {
		if err := decodeJSON(w, r, &p); err != nil {
			s.writeError(w, r, err)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			s.writeError(w, r, fmt.Errorf("%w: %v", errBadBody, err))
			return
		}
		p.Name = optional(r, "name")
		p.Description = optional(r, "description")
		if st := optional(r, "status"); st != nil {
			status := domain.Status(*st)
			p.Status = &status
		}
	}

	exp, err := s.svc.Update(r.Context(), chi.URLParam(r, "name"), p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sharedmw.Trigger(w, eventChanged)
	writeJSON(w, http.StatusOK, toResponse(exp))
}

func (s *Server) handleAPIDeleteExperiment(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		s.writeError(w, r, err)
		return
	}
	sharedmw.Trigger(w, eventChanged)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAPIStopExperiment(w http.ResponseWriter, r *http.Request) {
	exp, err := s.svc.Stop(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sharedmw.Trigger(w, eventChanged)
	writeJSON(w, http.StatusOK, toResponse(exp))
}

func (s *Server) handleAPIBookmark(bookmarked bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.svc.Bookmark(r.Context(), chi.URLParam(r, "name"), bookmarked); err != nil {
			s.writeError(w, r, err)
			return
		}
		sharedmw.Trigger(w, eventChanged)
		w.WriteHeader(http.StatusNoContent)
	}
}
