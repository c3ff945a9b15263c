package devserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kbukum/axin/component"
	"github.com/kbukum/axin/logger"
	"github.com/kbukum/axin/observability"
	"github.com/kbukum/axin/router"
)

// HealthChecker returns the health of the components behind the server.
type HealthChecker func(ctx context.Context) []component.Health

// Server is the dev backend: a gin engine served over h2c.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     Config
	log        *logger.Logger

	responder Responder
	pages     *router.Router
	metrics   *observability.Metrics
	checker   HealthChecker

	mu   sync.Mutex
	addr string
}

// Option configures a Server.
type Option func(*Server)

// WithResponder sets the reply source.
func WithResponder(r Responder) Option {
	return func(s *Server) { s.responder = r }
}

// WithRouter sets the page table used for the SPA fallback.
func WithRouter(r *router.Router) Option {
	return func(s *Server) { s.pages = r }
}

// WithMetrics records request and stream metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithHealthChecker adds component health to /api/health.
func WithHealthChecker(fn HealthChecker) Option {
	return func(s *Server) { s.checker = fn }
}

// New creates a server with middleware and routes registered. It does not
// listen until Start.
func New(cfg Config, log *logger.Logger, opts ...Option) (*Server, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.GetGlobalLogger()
	}

	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		engine: gin.New(),
		config: cfg,
		log:    log.WithComponent("devserver"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.responder == nil {
		s.responder = EchoResponder{}
	}
	if s.pages == nil {
		pages, err := router.New()
		if err != nil {
			return nil, err
		}
		s.pages = pages
	}

	s.applyMiddleware()
	s.registerRoutes()

	// h2c lets HTTP/2 clients stream without TLS.
	h2s := &http2.Server{
		MaxConcurrentStreams: 250,
		IdleTimeout:          time.Duration(cfg.IdleTimeout) * time.Second,
	}
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      h2c.NewHandler(s.engine, h2s),
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.IdleTimeout) * time.Second,
	}
	return s, nil
}

func (s *Server) applyMiddleware() {
	s.engine.Use(
		Recovery(s.log),
		RequestID(),
		CORS(s.config.CORS),
		Tracing(),
		Metrics(s.metrics),
		RequestLogger(s.log),
	)
}

// Handler returns the server's root handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Engine returns the gin engine for extra routes.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Start binds the port and serves in the background. It returns once the
// listener is bound.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("devserver: bind %s: %w", s.httpServer.Addr, err)
	}
	s.mu.Lock()
	s.addr = listener.Addr().String()
	s.mu.Unlock()

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("Server error", logger.Fields(logger.FieldError, err.Error()))
		}
	}()

	s.log.Info("Dev server started", logger.Fields("addr", s.Addr()))
	return nil
}

// Stop shuts the server down, waiting up to five seconds for open requests.
func (s *Server) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.log.Error("Server shutdown error", logger.Fields(logger.FieldError, err.Error()))
		return fmt.Errorf("devserver: shutdown: %w", err)
	}
	s.log.Info("Dev server stopped")
	return nil
}

// Addr returns the bound address after Start, or the configured one before.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.addr != "" {
		return s.addr
	}
	return s.httpServer.Addr
}

// BaseURL returns the http URL of the /api prefix.
func (s *Server) BaseURL() string {
	return "http://" + s.Addr() + apiPrefix
}
