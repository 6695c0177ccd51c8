package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/outlet/pkg/loader"
	"github.com/vango-dev/outlet/pkg/navigation"
)

// MatchPath is the route that reports matches without running loaders.
const MatchPath = "/_outlet/match"

// Server serves document loads, submissions and websocket transitions for
// one route tree.
type Server struct {
	runner *loader.Runner
	config *ServerConfig

	// Navigation middleware, outermost first.
	middleware []navigation.Middleware

	upgrader websocket.Upgrader

	httpServer *http.Server
	handler    http.Handler
	once       sync.Once

	// conns tracks open websocket connections for shutdown.
	connsMu sync.Mutex
	conns   map[*wsConn]struct{}

	logger *slog.Logger
}

// New creates a new Server over runner. A nil config uses the defaults.
func New(runner *loader.Runner, config *ServerConfig) *Server {
	config = config.withDefaults()
	return &Server{
		runner: runner,
		config: config,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		conns:  make(map[*wsConn]struct{}),
		logger: slog.Default().With("component", "server"),
	}
}

// Use adds navigation middleware. It must be called before Handler.
func (s *Server) Use(mw ...navigation.Middleware) {
	s.middleware = append(s.middleware, mw...)
}

// Handler returns the HTTP handler, building the router on first use.
//
//	GET  /healthz
//	GET  /metrics          (ServerConfig.MetricsPath)
//	GET  /_outlet/match    ?path=/users/7
//	GET  /ws               websocket transitions
//	GET  /*                document load
//	POST|PUT|PATCH|DELETE /*  submission
func (s *Server) Handler() http.Handler {
	s.once.Do(func() {
		r := chi.NewRouter()
		r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ok"))
		})
		if !s.config.DisableMetrics {
			r.Handle(s.config.MetricsPath, promhttp.Handler())
		}
		r.Get(MatchPath, s.handleMatch)
		r.Get("/ws", s.HandleWebSocket)
		r.Get("/*", s.handleDocument)
		r.Head("/*", s.handleDocument)
		for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
			r.Method(method, "/*", http.HandlerFunc(s.handleSubmission))
		}
		s.handler = r
	})
	return s.handler
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Handler().ServeHTTP(w, r)
}

// Serve accepts connections on l until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	s.httpServer = &http.Server{
		Addr:              l.Addr().String(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
		WriteTimeout:      s.config.WriteTimeout,
		IdleTimeout:       s.config.IdleTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", l.Addr().String())
		errCh <- s.httpServer.Serve(l)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down...")
		return s.Shutdown(context.Background())
	}
}

// ListenAndServe listens on the configured address and serves until ctx is
// cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	l, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, l)
}

// Run serves until SIGINT or SIGTERM.
func (s *Server) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.ListenAndServe(ctx)
}

// Shutdown closes websocket connections and gracefully shuts down the HTTP
// server within ShutdownTimeout.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.connsMu.Lock()
	for c := range s.conns {
		c.close()
	}
	s.connsMu.Unlock()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}

	s.logger.Info("server shutdown complete")
	return nil
}

// Config returns the server configuration.
func (s *Server) Config() *ServerConfig {
	return s.config
}

// Logger returns the server logger.
func (s *Server) Logger() *slog.Logger {
	return s.logger
}

// SetLogger sets the server logger.
func (s *Server) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// navigator creates a navigator for one client. A non-empty key with a
// configured store enables persistence.
func (s *Server) navigator(key string) *navigation.Navigator {
	opts := []navigation.Option{
		navigation.WithLogger(s.logger.With("client", key)),
		navigation.WithMiddleware(s.middleware...),
	}
	if s.config.Store != nil && key != "" {
		opts = append(opts, navigation.WithStore(s.config.Store, key))
	}
	return navigation.New(s.runner, opts...)
}
