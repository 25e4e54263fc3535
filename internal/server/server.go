// Package server exposes search, case detail, health and metrics over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"caselaw/config"
	"caselaw/internal/logger"
	"caselaw/internal/metrics"
	"caselaw/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	addr    string
	timeout time.Duration
	engine  *usecase.QueryEngine
	asm     *usecase.Assembler
	metrics *metrics.Metrics
	exports *rate.Limiter
	logger  *slog.Logger
}

// New creates a server. m may be nil, in which case /metrics answers 404.
func New(cfg *config.Config, engine *usecase.QueryEngine, asm *usecase.Assembler, m *metrics.Metrics) *Server {
	limit := rate.Inf
	if cfg.Serve.ExportRate > 0 {
		limit = rate.Limit(cfg.Serve.ExportRate)
	}
	burst := cfg.Serve.ExportBurst
	if burst <= 0 {
		burst = 1
	}
	return &Server{
		addr:    cfg.Serve.Addr,
		timeout: cfg.Query.Timeout,
		engine:  engine,
		asm:     asm,
		metrics: m,
		exports: rate.NewLimiter(limit, burst),
		logger:  logger.WithComponent("server"),
	}
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /search", s.handleSearch)
	mux.HandleFunc("GET /case/{id}", s.handleCase)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.Handler())

	var chain http.Handler = mux
	chain = Metrics(s.metrics)(chain)
	chain = Timeout(s.timeout)(chain)
	return chain
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}
