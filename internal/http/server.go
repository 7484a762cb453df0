package httpserver

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/crypto/bcrypt"

	"github.com/Clark-Hu/movie-reviews/internal/catalog"
	"github.com/Clark-Hu/movie-reviews/internal/config"
)

// HealthChecker reports whether the backing store is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Server wires HTTP routing, middleware, and handlers.
type Server struct {
	cfg          config.Config
	health       HealthChecker
	catalog      *catalog.Service
	logger       *log.Logger
	passwordCost int
	router       chi.Router
	httpSrv      *http.Server
}

// New constructs the HTTP server with base middleware and routes. health may be
// nil for the in-memory backend.
func New(cfg config.Config, health HealthChecker, svc *catalog.Service, logger *log.Logger) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	if cfg.SentryDSN != "" {
		r.Use(sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle)
	}
	r.Use(middleware.Recoverer)

	if logger == nil {
		logger = log.Default()
	}

	s := &Server{
		cfg:          cfg,
		health:       health,
		catalog:      svc,
		logger:       logger,
		passwordCost: bcrypt.DefaultCost,
		router:       r,
	}
	s.registerRoutes()
	return s
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) registerRoutes() {
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)

		r.Route("/movies", func(r chi.Router) {
			r.Get("/", s.handleListMovies)
			r.Post("/", s.handleCreateMovie)
			r.Post("/import", s.handleImportMovie)
			r.Get("/featured", s.handleFeaturedMovies)
			r.Get("/trending", s.handleTrendingMovies)
			r.Route("/{movieID}", func(r chi.Router) {
				r.Get("/", s.handleGetMovie)
				r.Patch("/", s.handleUpdateMovie)
				r.Delete("/", s.handleDeleteMovie)
				r.Get("/reviews", s.handleMovieReviews)
				r.Post("/reviews", s.handleCreateReview)
			})
		})

		r.Route("/reviews/{reviewID}", func(r chi.Router) {
			r.Put("/", s.handleUpdateReview)
			r.Delete("/", s.handleDeleteReview)
			r.Post("/like", s.handleLikeReview)
		})

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/", s.handleGetUser)
			r.Patch("/", s.handleUpdateProfile)
			r.Get("/reviews", s.handleUserReviews)
			r.Get("/watchlist", s.handleWatchlist)
			r.Post("/watchlist", s.handleAddToWatchlist)
			r.Get("/watchlist/{movieID}", s.handleWatchlistMembership)
			r.Delete("/watchlist/{movieID}", s.handleRemoveFromWatchlist)
		})
	})
}

// Start boots the HTTP server and blocks until ctx is cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:         ":" + s.cfg.Port,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.cfg.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeoutSecs) * time.Second,
		IdleTimeout:  time.Duration(s.cfg.IdleTimeoutSecs) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpSrv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if s.health != nil {
		if err := s.health.HealthCheck(ctx); err != nil {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
