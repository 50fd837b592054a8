// package server contains middleware & handlers for the taskx dashboard API
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/taskx/internal/shared"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
// Common middleware includes logging, rate limiting and panic recovery.
type Middleware func(http.Handler) http.Handler

// Handler defines the interface for HTTP request handlers in the dashboard service.
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the method and path patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
// Implementations register handlers, apply middleware, and configure the HTTP server.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// ShutdownTimeout bounds graceful shutdown once the serve context is cancelled.
const ShutdownTimeout = 5 * time.Second

// ServerOpts configures a [Server].
type ServerOpts struct {
	Service Service
	Config  shared.ServerConfig
	Logger  *log.Logger
}

// Server is the dashboard HTTP server.
type Server struct {
	router *BasicRouter
	config shared.ServerConfig
	logger *log.Logger
}

// New builds a [Server] with logging, recovery and rate limiting middleware around the [API].
func New(opts ServerOpts) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	router := NewBasicRouter()
	router.Use(Logging(logger), Recover(logger))
	if opts.Config.RateLimit > 0 {
		router.Use(RateLimit(opts.Config.RateLimit, opts.Config.Burst))
	}
	router.Handler(NewAPI(opts.Service, logger))

	return &Server{router: router, config: opts.Config, logger: logger}
}

// Handler returns the routed handler, for use with httptest.
func (s *Server) Handler() http.Handler { return s.router }

// URL is the base URL of the dashboard.
func (s *Server) URL() string {
	return "http://" + s.config.Address()
}

// Serve accepts connections on l until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("dashboard listening", "addr", l.Addr().String())
		if err := httpServer.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
		close(serverErrors)
	}()

	select {
	case err, ok := <-serverErrors:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	s.logger.Info("dashboard stopped")
	return nil
}

// ListenAndServe listens on the configured address and calls [Server.Serve].
func (s *Server) ListenAndServe(ctx context.Context) error {
	l, err := net.Listen("tcp", s.config.Address())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Address(), err)
	}
	return s.Serve(ctx, l)
}
