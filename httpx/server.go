package httpx

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/red2n/opentele/core/log"
)

// DefaultReadHeaderTimeout bounds how long a client may take to send headers.
const DefaultReadHeaderTimeout = 10 * time.Second

// ServerOptions configures a Server.
type ServerOptions struct {
	Name              string // Listener name in logs (e.g. "http", "ops")
	Addr              string // Listen address (e.g. ":8080")
	Handler           http.Handler
	Routes            chi.Routes // Optional; logged once listening
	Logger            log.Logger
	ReadHeaderTimeout time.Duration
}

// Server is an HTTP listener that can be started and closed once.
type Server struct {
	name   string
	routes chi.Routes
	logger log.Logger
	server *http.Server

	mu       sync.Mutex
	listener net.Listener
	served   chan struct{}

	closeOnce sync.Once
	closeErr  error
}

// NewServer creates a server in a stopped state.
func NewServer(opts ServerOptions) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Nop()
	}
	if opts.Name == "" {
		opts.Name = "http"
	}
	if opts.ReadHeaderTimeout <= 0 {
		opts.ReadHeaderTimeout = DefaultReadHeaderTimeout
	}

	return &Server{
		name:   opts.Name,
		routes: opts.Routes,
		logger: opts.Logger.With(log.Str("listener", opts.Name)),
		server: &http.Server{
			Addr:              opts.Addr,
			Handler:           opts.Handler,
			ReadHeaderTimeout: opts.ReadHeaderTimeout,
		},
	}
}

// Name returns the listener name.
func (s *Server) Name() string {
	return s.name
}

// Start binds the address and serves in the background. Bind failures are
// returned synchronously.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return fmt.Errorf("%s listener already started", s.name)
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.server.Addr)
	if err != nil {
		s.logger.Error(err, "listen failed", log.Str("addr", s.server.Addr))
		return fmt.Errorf("%s listener: %w", s.name, err)
	}

	s.listener = ln
	s.served = make(chan struct{})
	go s.serve(ln, s.served)

	s.logger.Info("server listening", log.Str("addr", ln.Addr().String()))
	if s.routes != nil {
		LogRoutes(s.logger, s.routes)
	}
	return nil
}

func (s *Server) serve(ln net.Listener, done chan struct{}) {
	defer close(done)
	if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error(err, "server failed")
	}
}

// Addr returns the bound address, or the configured one before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.server.Addr
}

// Close gracefully shuts the server down. Connections still active when ctx
// ends are closed forcibly. Later calls return the first result.
func (s *Server) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		served := s.served
		s.mu.Unlock()

		if err := s.server.Shutdown(ctx); err != nil {
			s.closeErr = fmt.Errorf("%s listener shutdown: %w", s.name, err)
			s.logger.Error(err, "server shutdown failed")
			// Drop connections still active at the deadline.
			_ = s.server.Close()
			return
		}
		if served != nil {
			<-served
		}
		s.logger.Info("server closed")
	})
	return s.closeErr
}

// LogRoutes logs every registered method and pattern.
func LogRoutes(logger log.Logger, routes chi.Routes) {
	logger.Info("available routes")
	_ = chi.Walk(routes, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		if strings.HasSuffix(route, "/*") {
			return nil
		}
		logger.Info("registered route", log.Str("method", method), log.Str("path", route))
		return nil
	})
}
