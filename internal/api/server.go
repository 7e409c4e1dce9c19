// Package api provides the HTTP server for the prefq rendezvous.
//
// One gin engine serves both audiences: producers (POST /videos, GET
// /feedback), raters (GET /, GET /videos/{filename}, POST /feedback and the
// page script) and operators (/api/v1/health, /api/v1/stats, /metrics).
package api

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/concave-dev/prefq/internal/config"
	"github.com/concave-dev/prefq/internal/logging"
	"github.com/concave-dev/prefq/internal/netutil"
	"github.com/gin-gonic/gin"
)

//go:embed web/templates/*.html web/static/*.js
var webFS embed.FS

// Represents the prefq API server
type Server struct {
	config     *Config
	router     *gin.Engine
	httpServer *http.Server
	limiter    *clientLimiter
	startTime  time.Time

	mu       sync.Mutex
	listener net.Listener
	released bool // listener handed to http.Server or closed
}

// NewServer creates a new prefq API server instance. The listener is bound
// when Serve is called.
func NewServer(config *Config) (*Server, error) {
	if config == nil {
		return nil, fmt.Errorf("API config cannot be nil")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid API config: %w", err)
	}

	// Set Gin to release mode for production
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		config:    config,
		startTime: time.Now(),
	}
	if config.RateLimit > 0 {
		s.limiter = newClientLimiter(config.RateLimit, config.RateBurst)
	}

	router, err := s.buildRouter()
	if err != nil {
		return nil, err
	}
	s.router = router
	s.httpServer = &http.Server{
		Handler: router,
		// Uploads and media streams may legitimately run long, so only the
		// header read and idle phases are bounded.
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

// NewServerWithListener creates a server that will serve on an already bound
// listener. The daemon binds first so port conflicts surface before any other
// startup work.
func NewServerWithListener(config *Config, listener net.Listener) (*Server, error) {
	if listener == nil {
		return nil, fmt.Errorf("listener cannot be nil")
	}
	s, err := NewServer(config)
	if err != nil {
		return nil, err
	}
	s.listener = listener
	return s, nil
}

// buildRouter assembles middleware, templates and routes.
func (s *Server) buildRouter() (*gin.Engine, error) {
	router := gin.New()
	router.MaxMultipartMemory = config.DefaultMaxUploadMemory

	// Configure Gin logging only if not already configured by CLI tools
	if !logging.IsConfiguredByCLI() {
		gin.DefaultWriter = logging.NewLevelWriter("DEBUG", "gin")
		gin.DefaultErrorWriter = logging.NewLevelWriter("ERROR", "gin")
	}

	tmpl, err := template.ParseFS(webFS, "web/templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse rater templates: %w", err)
	}
	router.SetHTMLTemplate(tmpl)

	// Add middleware
	router.Use(s.requestIDMiddleware())
	router.Use(s.loggingMiddleware())
	router.Use(s.corsMiddleware())
	router.Use(gin.Recovery())
	if s.limiter != nil {
		router.Use(s.rateLimitMiddleware())
	}

	// Setup routes
	s.setupRoutes(router)
	return router, nil
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve runs the HTTP server until Shutdown is called. It returns nil after a
// graceful shutdown, including one that happened before Serve was reached.
func (s *Server) Serve() error {
	s.mu.Lock()
	if s.listener == nil {
		listener, err := netutil.NewPortBinder().BindTCP(s.config.BindAddr, s.config.BindPort)
		if err != nil {
			s.mu.Unlock()
			return err
		}
		s.listener = listener
	}
	listener := s.listener
	s.released = true
	s.mu.Unlock()

	logging.Success("HTTP server listening on %s", listener.Addr().String())
	if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server failed: %w", err)
	}
	return nil
}

// Addr returns the bound address, or the configured one before binding.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return net.JoinHostPort(s.config.BindAddr, strconv.Itoa(s.config.BindPort))
}

// Shutdown gracefully shuts down the HTTP server. A pre-bound listener that
// was never served is closed as well.
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down HTTP server...")

	err := s.httpServer.Shutdown(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.released && s.listener != nil {
		if closeErr := s.listener.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		s.released = true
	}
	return err
}
