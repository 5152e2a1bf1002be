package web

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/emiliopalmerini/runboard/internal/experiments"
	"github.com/emiliopalmerini/runboard/internal/query"
	"github.com/emiliopalmerini/runboard/internal/view"
	"github.com/emiliopalmerini/runboard/internal/web/templates"
)

// handleExperimentsPage mounts a fresh view and renders the full page.
func (s *Server) handleExperimentsPage(bookmarks bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := s.views.Mount()
		p := s.fetchParams(r)
		p.Bookmarks = bookmarks

		v, err := s.loadView(r.Context(), id, p)
		s.render(w, r, v, err, true)
	}
}

func (s *Server) handleViewPartial(w http.ResponseWriter, r *http.Request) {
	v, err := s.loadView(r.Context(), chi.URLParam(r, "view"), s.fetchParams(r))
	s.render(w, r, v, err, false)
}

// handleAddColumn adds a column to the view. Only tokens currently offered
// as candidates are accepted. The candidate check runs before the lock, so the
// update re-checks the selection and a concurrent duplicate is a no-op.
func (s *Server) handleAddColumn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "view")

	v, err := s.loadView(ctx, id, s.fetchParams(r))
	if err != nil {
		s.render(w, r, v, err, false)
		return
	}

	token := strings.TrimSpace(r.FormValue("column"))
	if !slices.Contains(v.Candidates, token) {
		s.writeError(w, r, fmt.Errorf("%w: %q", errUnknownColumn, token))
		return
	}

	added := false
	sel, err := s.views.Update(id, func(sel view.Selection) view.Selection {
		if sel.IsSelected(token) {
			return sel
		}
		added = true
		return sel.AddColumn(token)
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if added {
		kind, _, _ := view.ParseToken(token)
		s.svc.ColumnChanged(ctx, kind, "add")
	}

	v.Selection = sel
	s.layout(&v)
	s.render(w, r, v, nil, false)
}

func (s *Server) handleRemoveColumn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "view")

	kind, err := url.PathUnescape(chi.URLParam(r, "kind"))
	if err != nil || (kind != view.KindMetric && kind != view.KindParam) {
		s.writeError(w, r, fmt.Errorf("%w: kind %q", errUnknownColumn, chi.URLParam(r, "kind")))
		return
	}
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", errUnknownColumn, err))
		return
	}

	if _, err := s.views.Update(id, func(sel view.Selection) view.Selection {
		return sel.RemoveColumn(kind, name)
	}); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.svc.ColumnChanged(ctx, kind, "remove")

	v, err := s.loadView(ctx, id, s.fetchParams(r))
	s.render(w, r, v, err, false)
}

func (s *Server) handleUnmount(w http.ResponseWriter, r *http.Request) {
	s.views.Unmount(chi.URLParam(r, "view"))
	w.WriteHeader(http.StatusNoContent)
}

// fetchParams reads the page, filter and scope of a view request.
func (s *Server) fetchParams(r *http.Request) experiments.FetchParams {
	offset, _ := strconv.ParseInt(r.FormValue("offset"), 10, 64)
	bookmarks, _ := strconv.ParseBool(r.FormValue("bookmarks"))
	return experiments.FetchParams{
		Offset:    offset,
		Limit:     s.opts.PageSize,
		Query:     strings.TrimSpace(r.FormValue("query")),
		Sort:      strings.TrimSpace(r.FormValue("sort")),
		Bookmarks: bookmarks,
		User:      strings.TrimSpace(r.FormValue("user")),
	}
}

// loadView fetches one page for the mounted view id. The returned view is
// usable for rendering even when err is a bad request.
func (s *Server) loadView(ctx context.Context, id string, p experiments.FetchParams) (templates.ExperimentsView, error) {
	title := "Experiments"
	if p.Bookmarks {
		title = "Bookmarked experiments"
	}
	v := templates.ExperimentsView{
		ViewID:        id,
		Title:         title,
		BasePath:      "/views/" + url.PathEscape(id),
		SortOptions:   query.SortOptions,
		UseFilters:    s.opts.UseFilters,
		Bookmarks:     p.Bookmarks,
		User:          p.User,
		IsCurrentUser: p.User == "" || p.User == s.opts.CurrentUser,
		CurrentUser:   s.opts.CurrentUser,
		Now:           time.Now().UTC(),
	}

	sel, err := s.views.Get(id)
	if err != nil {
		return v, err
	}
	v.Selection = sel

	page, err := s.svc.Fetch(ctx, p)
	if err != nil {
		v.Page = &experiments.Page{Query: p.Query, Sort: p.Sort}
		return v, err
	}
	v.Page = page
	s.layout(&v)
	return v, nil
}

// layout derives the table and the column candidates from the page and the
// current selection.
func (s *Server) layout(v *templates.ExperimentsView) {
	v.Candidates = view.Candidates(v.Page.Experiments, v.Selection.Selected)
	v.Table = view.BuildTable(v.Page.Experiments, v.Selection, bindActions)
}

func bindActions(uniqueName string) view.RowActions {
	base := "/api/experiments/" + url.PathEscape(uniqueName)
	return view.RowActions{
		Delete:   base,
		Stop:     base + "/stop",
		Bookmark: base + "/bookmark",
	}
}

// render writes the view, or the page around it when full is set. Bad
// filters are rendered inline with a 400 status.
func (s *Server) render(w http.ResponseWriter, r *http.Request, v templates.ExperimentsView, err error, full bool) {
	status := http.StatusOK
	if err != nil {
		if !isBadRequest(err) {
			s.writeError(w, r, err)
			return
		}
		v.Error = err.Error()
		status = http.StatusBadRequest
	}

	var c templ.Component = templates.PaginatedTable(v)
	if full {
		active := routeExperiments
		if v.Bookmarks {
			active = routeBookmarks
		}
		c = templates.ExperimentsPage(v, active)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		s.log.Warnw("render failed", "path", r.URL.Path, "error", err)
	}
}
