// Package server exposes the task service over HTTP.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/net/netutil"

	"github.com/wudi/pdftask/engine"
	"github.com/wudi/pdftask/model/input"
	"github.com/wudi/pdftask/model/parameter"
	"github.com/wudi/pdftask/observability"
	"github.com/wudi/pdftask/service"
)

type Config struct {
	Addr           string
	MaxConnections int
	// RateLimit is the number of requests per minute and client IP; 0 disables it.
	RateLimit      int
	AllowedOrigins []string
	// TokenHash is the bcrypt hash of the accepted bearer token; empty disables auth.
	TokenHash string
	MaxUpload int64
	Logger    observability.Logger
}

// Executor runs parameters, see service.Service.
type Executor interface {
	Execute(ctx context.Context, params parameter.Parameters) (service.Result, error)
}

// Inspector reports on a document, see engine.Engine.
type Inspector interface {
	Inspect(ctx context.Context, src input.Source) (engine.Info, error)
}

type Server struct {
	cfg       Config
	exec      Executor
	inspector Inspector
	tasks     []string
	docs      []byte
	log       observability.Logger
	router    chi.Router
}

func New(cfg Config, exec Executor, inspector Inspector, tasks []string) (*Server, error) {
	if cfg.Logger == nil {
		cfg.Logger = observability.NopLogger{}
	}
	if cfg.MaxUpload <= 0 {
		cfg.MaxUpload = 64 << 20
	}
	docs, err := renderDocs()
	if err != nil {
		return nil, err
	}
	s := &Server{cfg: cfg, exec: exec, inspector: inspector, tasks: tasks, docs: docs, log: cfg.Logger}
	s.router = s.routes()
	return s, nil
}

func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer)
	origins := s.cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})
	r.Get("/", s.handleDocs)

	r.Route("/api", func(api chi.Router) {
		if s.cfg.RateLimit > 0 {
			api.Use(httprate.LimitByIP(s.cfg.RateLimit, time.Minute))
		}
		if s.cfg.TokenHash != "" {
			api.Use(s.authMiddleware)
		}
		api.Get("/tasks", s.handleTasks)
		api.Post("/tasks/{task}", s.handleRun)
		api.Post("/inspect", s.handleInspect)
	})
	return r
}

// authMiddleware accepts requests whose bearer token matches the configured bcrypt hash.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get("Authorization")
		if h == "" || !strings.HasPrefix(h, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "unauthorized", "")
			return
		}
		token := strings.TrimPrefix(h, "Bearer ")
		if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.TokenHash), []byte(token)); err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized", "")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ListenAndServe serves until ctx ends, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts at most MaxConnections concurrent connections on ln.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if s.cfg.MaxConnections > 0 {
		ln = netutil.LimitListener(ln, s.cfg.MaxConnections)
	}
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	s.log.Info("server listening", observability.String("addr", ln.Addr().String()))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
