package web

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tidwall/match"

	"github.com/dshills/keychord/internal/input/key"
	"github.com/dshills/keychord/internal/logging"
)

// Config configures a Server.
type Config struct {
	// Addr is the listen address.
	Addr string

	// Modifiers classifies keys for new sessions.
	Modifiers key.ModifierSet

	// Initial seeds every new session.
	Initial string

	// Metrics enables the /metrics endpoint.
	Metrics bool

	// AllowedOrigins lists extra origins accepted for websocket upgrades.
	// Entries are matched against the full origin, scheme and host, as in
	// "http://localhost:*", and may use * and ? wildcards. Same-origin
	// requests are always accepted.
	AllowedOrigins []string

	// ReadBufferSize and WriteBufferSize size the websocket buffers.
	ReadBufferSize  int
	WriteBufferSize int

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration

	// Logger receives server logs. Defaults to the process logger.
	Logger *logging.Logger

	// Registry receives the metrics. A fresh registry is created when nil.
	Registry *prometheus.Registry
}

// DefaultConfig returns a configuration listening on localhost.
func DefaultConfig() Config {
	return Config{
		Addr:            "127.0.0.1:8080",
		Modifiers:       key.DefaultModifiers(),
		Metrics:         true,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		ShutdownTimeout: 5 * time.Second,
	}
}

// maxFrameSize caps client messages; real frames are a few dozen bytes.
const maxFrameSize = 4096

// Server is the browser host.
type Server struct {
	cfg      Config
	logger   *logging.Logger
	metrics  *Metrics
	registry *prometheus.Registry
	upgrader websocket.Upgrader
	router   chi.Router

	mu      sync.RWMutex
	mods    key.ModifierSet
	modsGen uint64

	sessions sync.WaitGroup
}

// New creates a server.
func New(cfg Config) *Server {
	if cfg.Modifiers.IsEmpty() {
		cfg.Modifiers = key.DefaultModifiers()
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}

	s := &Server{
		cfg:      cfg,
		logger:   logging.OrDefault(cfg.Logger).WithComponent("web"),
		registry: cfg.Registry,
		metrics:  NewMetrics(cfg.Registry),
		mods:     cfg.Modifiers,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
		CheckOrigin:     s.checkOrigin,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handlePage)
	r.Get("/ws", s.handleWebSocket)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	if s.cfg.Metrics {
		r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// SetModifiers replaces the modifier set. Open sessions switch to it on
// their next frame, keeping their committed value.
func (s *Server) SetModifiers(mods key.ModifierSet) {
	s.mu.Lock()
	s.mods = mods
	s.modsGen++
	s.mu.Unlock()
	s.logger.Info("modifiers changed to [%s]", mods)
}

// modifiers returns the current modifier set and its generation.
func (s *Server) modifiers() (key.ModifierSet, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mods, s.modsGen
}

// ListenAndServe serves on cfg.Addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is canceled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info("listening on http://%s", ln.Addr())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.sessions.Wait()
	s.logger.Info("server stopped")
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// checkOrigin accepts same-origin requests, requests without an Origin
// header and origins ("scheme://host[:port]") matching an AllowedOrigins
// pattern.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	if u.Host == r.Host {
		return true
	}
	full := u.Scheme + "://" + u.Host
	for _, pattern := range s.cfg.AllowedOrigins {
		if match.Match(full, pattern) {
			return true
		}
	}
	s.logger.Warn("rejected websocket origin %q", origin)
	return false
}
