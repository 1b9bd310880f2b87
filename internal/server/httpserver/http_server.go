// Package httpserver wires the trackmcp HTTP endpoints into a single server
// with graceful startup and shutdown.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"git.home.luguber.info/inful/trackmcp/internal/config"
	"git.home.luguber.info/inful/trackmcp/internal/launch"
	"git.home.luguber.info/inful/trackmcp/internal/logfields"
	"git.home.luguber.info/inful/trackmcp/internal/metrics"
	"git.home.luguber.info/inful/trackmcp/internal/server/handlers"
	smw "git.home.luguber.info/inful/trackmcp/internal/server/middleware"
	"git.home.luguber.info/inful/trackmcp/internal/tools"
	"git.home.luguber.info/inful/trackmcp/internal/watch"
)

// Options carries optional collaborators for the server.
type Options struct {
	Recorder metrics.Recorder
	// MetricsHandler serves GET /metrics when set.
	MetricsHandler http.Handler
	// MCPEnabled exposes the MCP endpoints (SSE, schema, tool calls).
	// Without it the server only serves info, health and metrics.
	MCPEnabled bool
}

// Server manages the trackmcp HTTP endpoints.
type Server struct {
	cfg     config.ServerConfig
	runtime *Runtime
	opts    Options

	apiHandlers *handlers.APIHandlers
	sseHandlers *handlers.SSEHandlers
	mchain      func(http.Handler) http.Handler

	httpSrv  *http.Server
	listener net.Listener
}

// New constructs the HTTP server wiring.
func New(cfg config.ServerConfig, svc *tools.Service, runtime *Runtime, hub *watch.Hub, opts Options) *Server {
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	return &Server{
		cfg:         cfg,
		runtime:     runtime,
		opts:        opts,
		apiHandlers: handlers.NewAPIHandlers(svc, runtime, opts.Recorder),
		sseHandlers: handlers.NewSSEHandlers(hub, runtime, opts.Recorder),
		mchain:      smw.Chain(slog.Default(), opts.Recorder),
	}
}

// Start binds the listener, starts the runtime refresh job and begins
// serving. Binding happens before anything else so port conflicts surface
// immediately instead of after partial initialization.
func (s *Server) Start(ctx context.Context) error {
	host := s.cfg.Host
	if s.cfg.Share {
		host = "0.0.0.0"
	}
	addr := fmt.Sprintf("%s:%d", host, s.cfg.Port)

	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", addr, err)
	}
	s.listener = ln
	if tcp, ok := ln.Addr().(*net.TCPAddr); ok {
		s.runtime.SetPort(tcp.Port)
	}

	if err := s.runtime.Start(ctx); err != nil {
		_ = ln.Close()
		return err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/{$}", s.apiHandlers.HandleInfo)
	mux.HandleFunc("/healthz", s.apiHandlers.HandleHealth)
	if s.opts.MCPEnabled {
		mux.HandleFunc(launch.SchemaPath, s.apiHandlers.HandleSchema)
		mux.HandleFunc(launch.SSEPath, s.sseHandlers.HandleSSE)
		mux.HandleFunc("/gradio_api/call/{tool}", s.apiHandlers.HandleToolCall)
	}
	if s.opts.MetricsHandler != nil {
		mux.Handle("/metrics", s.opts.MetricsHandler)
	}

	s.httpSrv = &http.Server{
		Handler:           s.mchain(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("tool server listening",
		logfields.URL(s.runtime.BaseURL()),
		"share", s.cfg.Share,
		"mcp", s.opts.MCPEnabled)

	go func() {
		if err := s.httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server stopped unexpectedly", logfields.Error(err))
		}
	}()
	return nil
}

// Stop gracefully shuts the server and its runtime down.
func (s *Server) Stop(ctx context.Context) error {
	var errs []error
	if s.httpSrv != nil {
		if err := s.httpSrv.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
		}
	}
	if err := s.runtime.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("stop runtime: %w", err))
	}
	return errors.Join(errs...)
}

// Addr returns the bound listener address, useful when port 0 was requested.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}
