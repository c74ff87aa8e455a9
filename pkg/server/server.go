package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/deskgrid/pkg/cache"
	"github.com/matzehuels/deskgrid/pkg/desktop"
	"github.com/matzehuels/deskgrid/pkg/observability"
)

// Options configures a Server.
type Options struct {
	// Labels backs /v1/labels. Nil disables label storage.
	Labels cache.Cache
	// Keyer maps item keys to label cache keys. Defaults to cache.NewDefaultKeyer().
	Keyer cache.Keyer
	// LabelTTL is the expiry of labels written through the API.
	LabelTTL time.Duration
	Logger   *log.Logger
}

// Server exposes an Engine over HTTP.
//
// Every engine call runs under one mutex, so requests are applied one at a
// time in arrival order, the same way a launcher's single event thread
// would apply them.
type Server struct {
	mu     sync.Mutex
	engine *desktop.Engine

	labels   cache.Cache
	keyer    cache.Keyer
	labelTTL time.Duration
	logger   *log.Logger
	router   chi.Router
}

// New builds the router around engine.
func New(engine *desktop.Engine, opts Options) *Server {
	if opts.Labels == nil {
		opts.Labels = cache.NewNullCache()
	}
	if opts.Keyer == nil {
		opts.Keyer = cache.NewDefaultKeyer()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	s := &Server{
		engine:   engine,
		labels:   opts.Labels,
		keyer:    opts.Keyer,
		labelTTL: opts.LabelTTL,
		logger:   opts.Logger,
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/health", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/layout", s.handleLayout)

		r.Post("/items", s.handlePlace)
		r.Delete("/items/{key}", s.handleRemove)
		r.Put("/items/{key}/position", s.handleMove)

		r.Put("/grid", s.handleResize)

		r.Post("/pages", s.handleAddPage)
		r.Put("/pages/current", s.handleSetCurrentPage)
		r.Delete("/pages/{page}", s.handleDeletePage)

		r.Post("/folders", s.handleCreateFolder)
		r.Get("/folders/{id}", s.handleFolder)
		r.Put("/folders/{id}", s.handleRenameFolder)
		r.Delete("/folders/{id}", s.handleDeleteFolder)
		r.Post("/folders/{id}/members", s.handleAddMember)
		r.Delete("/folders/{id}/members/{key}", s.handleRemoveMember)

		r.Put("/badges/{bundle}", s.handleBadge)
		r.Delete("/bundles/{bundle}", s.handleUninstall)

		r.Get("/labels/{key}", s.handleGetLabel)
		r.Put("/labels/{key}", s.handleSetLabel)
	})
	return r
}

// observe logs each request and reports it to the HTTP hooks, keyed by the
// matched route pattern.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		dur := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, route, status, dur)
		s.logger.Debug("request", "method", r.Method, "route", route, "status", status, "duration", dur,
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// and flushes pending layout writes.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if err != http.ErrServerClosed {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.engine.Flush(shutdownCtx); err != nil {
		s.logger.Warn("pending layout writes failed", "err", err)
	}
	s.logger.Info("server stopped")
	return nil
}
