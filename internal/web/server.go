package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/emiliopalmerini/runboard/internal/experiments"
	sharedmw "github.com/emiliopalmerini/runboard/internal/shared/middleware"
	"github.com/emiliopalmerini/runboard/internal/view"
)

//go:embed static/*
var staticFiles embed.FS

const (
	routeExperiments = "/experiments"
	routeBookmarks   = "/bookmarks/experiments"

	// eventChanged is fired on the page after every experiment action so the
	// mounted view re-renders.
	eventChanged = "experiments-changed"
)

// Options configures the dashboard.
type Options struct {
	Port        int
	PageSize    int64
	UseFilters  bool
	CurrentUser string
}

type Server struct {
	router chi.Router
	opts   Options
	svc    *experiments.Service
	views  *view.Store
	log    *zap.SugaredLogger
	active view.ActiveFunc
}

func NewServer(svc *experiments.Service, views *view.Store, log *zap.SugaredLogger, opts Options) *Server {
	if opts.PageSize <= 0 {
		opts.PageSize = experiments.DefaultPageSize
	}
	s := &Server{
		router: chi.NewRouter(),
		opts:   opts,
		svc:    svc,
		views:  views,
		log:    log.Named("web"),
		active: view.AnyRoute(view.RouteGate(routeExperiments), view.RouteGate(routeBookmarks)),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(sharedmw.Logger(s.log))
	r.Use(middleware.Recoverer)
	r.Use(sharedmw.HTMX)

	// Static files
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(fmt.Sprintf("failed to create static filesystem: %v", err))
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Pages
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, routeExperiments, http.StatusFound)
	})
	r.Get(routeExperiments, s.handleExperimentsPage(false))
	r.Get(routeBookmarks, s.handleExperimentsPage(true))

	// Mounted views (for HTMX)
	r.Route("/views/{view}", func(r chi.Router) {
		r.With(sharedmw.Gate(s.active)).Get("/experiments", s.handleViewPartial)
		r.Post("/columns", s.handleAddColumn)
		r.Delete("/columns/{kind}/{name}", s.handleRemoveColumn)
		r.Delete("/", s.handleUnmount)
	})

	// API endpoints
	r.Route("/api/experiments", func(r chi.Router) {
		r.Get("/", s.handleAPIListExperiments)
		r.Post("/", s.handleAPICreateExperiment)
		r.Get("/{name}", s.handleAPIGetExperiment)
		r.Patch("/{name}", s.handleAPIUpdateExperiment)
		r.Delete("/{name}", s.handleAPIDeleteExperiment)
		r.Post("/{name}/stop", s.handleAPIStopExperiment)
		r.Post("/{name}/bookmark", s.handleAPIBookmark(true))
		r.Delete("/{name}/bookmark", s.handleAPIBookmark(false))
	})
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.opts.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.log.Infow("starting server", "url", fmt.Sprintf("http://localhost:%d", s.opts.Port))

	// Handle graceful shutdown
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			s.log.Warnw("server shutdown error", "error", err)
		}
	}()

	err := server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil // Graceful shutdown
	}
	return err
}
