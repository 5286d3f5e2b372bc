package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/compose-network/bodycodec/codec-gateway-app/config"
	"github.com/compose-network/bodycodec/metrics"
	apisrv "github.com/compose-network/bodycodec/server/api"
	apimw "github.com/compose-network/bodycodec/server/api/middleware"
	bodyhttp "github.com/compose-network/bodycodec/x/body/http"
)

// App represents the codec gateway application
type App struct {
	cfg *config.Config
	log zerolog.Logger

	codecs *codecSet

	// API server (HTTP)
	apiServer *apisrv.Server

	startedAt time.Time
	cancel    context.CancelFunc
}

// NewApp creates a new application instance
func NewApp(_ context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	app := &App{
		cfg:       cfg,
		log:       log.With().Str("component", "app").Logger(),
		startedAt: time.Now(),
	}

	if err := app.initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize app: %w", err)
	}

	return app, nil
}

// initialize sets up the application components
func (a *App) initialize() error {
	set, err := buildCodecs(a.cfg.Codec, buildTracer(a.cfg, a.log))
	if err != nil {
		return err
	}
	a.codecs = set

	a.log.Info().
		Str("default_codec", set.defaultName).
		Int("codecs", len(set.byName)).
		Int("deserializers", len(set.reader.RegisteredDeserializers())).
		Msg("Codecs initialized")

	return a.initializeAPIServer()
}

// initializeAPIServer sets up the HTTP API server with all endpoints
func (a *App) initializeAPIServer() error {
	s := apisrv.NewServer(a.cfg.API, a.log)
	s.Use(apimw.Recover(a.log))
	s.Use(apimw.RequestID())
	s.Use(apimw.Logger(a.log))
	if a.cfg.API.EnableCORS {
		s.EnableCORS()
	}

	// Health/stats
	s.Router.HandleFunc("/health", a.handleHealth).Methods(http.MethodGet)
	s.Router.HandleFunc("/stats", a.handleStats).Methods(http.MethodGet)

	// Metrics
	if a.cfg.Metrics.Enabled {
		s.Router.Handle(a.cfg.Metrics.Path, promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{})).
			Methods(http.MethodGet)
	}

	// Body codec API
	h := bodyhttp.NewHandler(a.codecs.reader, a.codecs.writer, a.log)
	for name, c := range a.codecs.byName {
		if err := h.AddCodec(name, c); err != nil {
			return err
		}
	}
	h.SetDefaultCodec(a.codecs.defaultName)
	h.SetMaxBodyBytes(a.cfg.API.MaxBodyBytes)
	h.RegisterMux(s.Router)

	a.apiServer = s
	return nil
}

// Run starts the application and blocks until shutdown.
func (a *App) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.apiServer.Start(runCtx)
	}()

	return a.runWithGracefulShutdown(runCtx, errCh)
}

// runWithGracefulShutdown handles shutdown signals.
func (a *App) runWithGracefulShutdown(ctx context.Context, errCh <-chan error) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	a.log.Info().Msg("Codec gateway started successfully")

	var runErr error
	select {
	case <-ctx.Done():
		a.log.Info().Msg("Context canceled, initiating shutdown")
	case sig := <-sigCh:
		a.log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case err := <-errCh:
		if err != nil {
			a.log.Error().Err(err).Msg("API server error")
			runErr = fmt.Errorf("api server: %w", err)
		}
	}

	if a.cancel != nil {
		a.cancel()
	}

	a.log.Info().Dur("uptime", time.Since(a.startedAt)).Msg("Graceful shutdown complete")
	return runErr
}

// handleHealth responds to health check requests.
func (a *App) handleHealth(w http.ResponseWriter, _ *http.Request) {
	apisrv.WriteJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *App) handleStats(w http.ResponseWriter, _ *http.Request) {
	apisrv.WriteJSON(w, http.StatusOK, a.GetStats())
}

// GetStats returns application statistics.
func (a *App) GetStats() map[string]any {
	return map[string]any{
		"default_codec":  a.codecs.defaultName,
		"codecs":         len(a.codecs.byName),
		"deserializers":  len(a.codecs.reader.RegisteredDeserializers()),
		"uptime_seconds": time.Since(a.startedAt).Seconds(),
		"app_version":    Version,
		"app_build_time": BuildTime,
		"app_git_commit": GitCommit,
	}
}
