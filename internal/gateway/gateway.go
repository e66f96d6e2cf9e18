// ABOUTME: Gateway orchestrator that wires the store, auth, and MCP transport
// ABOUTME: Owns the HTTP server, health endpoints, and shutdown lifecycle

package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/2389/promptmesh-gateway/internal/auth"
	"github.com/2389/promptmesh-gateway/internal/config"
	"github.com/2389/promptmesh-gateway/internal/mcp"
	"github.com/2389/promptmesh-gateway/internal/metrics"
	"github.com/2389/promptmesh-gateway/internal/prompts"
	"github.com/2389/promptmesh-gateway/internal/store"
)

// readyTimeout bounds the store ping behind /health/ready.
const readyTimeout = 2 * time.Second

// Gateway orchestrates the promptmesh-gateway server components.
type Gateway struct {
	config     *config.Config
	store      store.Store
	verifier   *auth.Verifier
	mcpServer  *mcp.Server
	httpServer *http.Server
	registry   *prometheus.Registry
	logger     *slog.Logger

	shutdownOnce sync.Once
	shutdownErr  error
}

// New opens the configured store and builds every component on top of it.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Gateway, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	s, pool, err := OpenStore(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	gw, err := NewWithStore(cfg, s, pool, logger)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	return gw, nil
}

// NewWithStore builds the gateway over an already opened store. pool may be
// nil; when set and metrics are enabled its statistics are exported.
func NewWithStore(cfg *config.Config, s store.Store, pool *pgxpool.Pool, logger *slog.Logger) (*Gateway, error) {
	if logger == nil {
		logger = slog.Default()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)
	if pool != nil {
		metrics.RegisterPgxPoolMetrics(reg, pool)
	}

	verifier, err := auth.NewVerifier(auth.VerifierConfig{
		Keys:         s,
		Logger:       logger,
		TouchTimeout: cfg.Server.TouchTimeout,
		Recorder:     m,
	})
	if err != nil {
		return nil, fmt.Errorf("creating verifier: %w", err)
	}

	methods := mcp.NewPromptRegistry(prompts.NewResolver(s), mcp.ServerInfo{
		Name:    cfg.MCP.ServerName,
		Version: cfg.MCP.ServerVersion,
	})
	mcpServer, err := mcp.NewServer(mcp.Config{
		Dispatcher: mcp.NewDispatcher(methods, logger, m),
		Verifier:   verifier,
		Logger:     logger,
		BasePath:   cfg.Server.BasePath,
		Streams:    m,
	})
	if err != nil {
		return nil, fmt.Errorf("creating MCP server: %w", err)
	}

	gw := &Gateway{
		config:    cfg,
		store:     s,
		verifier:  verifier,
		mcpServer: mcpServer,
		registry:  reg,
		logger:    logger.With("component", "gateway"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", gw.handleHealth)
	mux.HandleFunc("GET /health/ready", gw.handleReady)

	routes := []string{"/health", "/health/ready", mcpServer.BasePath(), mcpServer.BasePath() + "/stream"}
	if cfg.Metrics.Enabled {
		mux.Handle("GET "+cfg.Metrics.Path, metrics.Handler(reg))
		routes = append(routes, cfg.Metrics.Path)
		gw.logger.Info("metrics enabled", "path", cfg.Metrics.Path)
	}

	// Everything else, including OPTIONS preflights, belongs to the MCP server.
	mux.Handle("/", mcpServer)

	gw.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           withCORS(cfg.CORS.AllowedOrigins, m.Middleware(routes...)(mux)),
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}

	return gw, nil
}

// Handler returns the root HTTP handler.
func (g *Gateway) Handler() http.Handler {
	return g.httpServer.Handler
}

// Registry returns the Prometheus registry holding the gateway's collectors.
func (g *Gateway) Registry() *prometheus.Registry {
	return g.registry
}

// Run listens on the configured address and serves until ctx is canceled.
// Returns nil on graceful shutdown, or an error if the server fails.
func (g *Gateway) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", g.config.Server.HTTPAddr)
	if err != nil {
		_ = g.Shutdown(context.Background())
		return fmt.Errorf("listening on HTTP address: %w", err)
	}
	return g.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is canceled or the server fails,
// then shuts everything down.
func (g *Gateway) Serve(ctx context.Context, ln net.Listener) error {
	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		g.logger.Info("HTTP server listening",
			"addr", ln.Addr().String(),
			"mcp_path", g.mcpServer.BasePath(),
		)
		if err := g.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egCtx.Done()
		g.logger.Info("context canceled, initiating shutdown")
		return g.gracefulShutdown()
	})

	return eg.Wait()
}

// gracefulShutdown performs shutdown with a fresh context and timeout, since
// the serving context is already canceled.
func (g *Gateway) gracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), g.config.Server.ShutdownTimeout)
	defer cancel()
	return g.Shutdown(ctx)
}

// appendCloseError appends an error with label if err is non-nil.
func appendCloseError(errs []error, label string, err error) []error {
	if err != nil {
		return append(errs, fmt.Errorf("%s: %w", label, err))
	}
	return errs
}

// Shutdown ends open streams, drains the HTTP server and pending last-used
// updates, then closes the store. Later calls return the first result.
func (g *Gateway) Shutdown(ctx context.Context) error {
	g.shutdownOnce.Do(func() {
		g.logger.Info("shutting down gateway")

		// Streams never finish on their own, so end them before draining.
		g.mcpServer.Close()

		var errs []error
		errs = appendCloseError(errs, "HTTP shutdown", g.httpServer.Shutdown(ctx))

		g.verifier.Close()

		errs = appendCloseError(errs, "store close", g.store.Close())

		g.shutdownErr = errors.Join(errs...)
	})
	return g.shutdownErr
}

// handleHealth returns 200 OK if the server is alive.
func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleReady returns 200 OK if the store answers a ping.
func (g *Gateway) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := g.store.Ping(ctx); err != nil {
		g.logger.Warn("readiness check failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("store unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
