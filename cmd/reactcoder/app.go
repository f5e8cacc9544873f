package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lexcodex/reactcoder/agents"
	"github.com/lexcodex/reactcoder/framework"
	"github.com/lexcodex/reactcoder/internal/config"
	"github.com/lexcodex/reactcoder/internal/logging"
	"github.com/lexcodex/reactcoder/llm"
	"github.com/lexcodex/reactcoder/persistence"
	"github.com/lexcodex/reactcoder/sandbox"
	"github.com/lexcodex/reactcoder/service"
)

// application holds the wired components for one CLI invocation.
type application struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *agents.Registry
	editor   *service.Editor
	closers  []func() error
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if flagLogLevel != "" {
		cfg.Logging.Level = flagLogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func buildApp() (*application, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger, closeLog, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	app := &application{cfg: cfg, logger: logger, closers: []func() error{closeLog}}

	if err := app.wire(); err != nil {
		_ = app.Close()
		return nil, err
	}
	return app, nil
}

func (a *application) wire() error {
	cfg := a.cfg
	logDir := config.ExpandPath(cfg.Storage.LogDir)

	telemetry := framework.MultiplexTelemetry{Sinks: []framework.Telemetry{framework.LoggerTelemetry{Logger: a.logger}}}
	if cfg.Storage.TelemetryFile != "" {
		sink, err := framework.NewJSONFileTelemetry(config.ExpandPath(cfg.Storage.TelemetryFile))
		if err != nil {
			return err
		}
		a.closers = append(a.closers, sink.Close)
		telemetry.Sinks = append(telemetry.Sinks, sink)
	}

	backend, err := llm.New(llm.Settings{
		Provider: cfg.LLM.Provider,
		BaseURL:  cfg.LLM.BaseURL,
		APIKey:   cfg.LLM.APIKey,
		Model:    cfg.LLM.Model,
		Timeout:  cfg.LLM.Timeout,
	})
	if err != nil {
		return err
	}
	model := llm.NewInstrumentedModel(backend, telemetry, cfg.LLM.Model, cfg.LLM.Debug)

	exchanges, err := a.exchangeStore(logDir)
	if err != nil {
		return err
	}
	invoker := llm.NewInvoker(model, framework.LLMOptions{
		Model:       cfg.LLM.Model,
		Temperature: framework.Temperature(cfg.LLM.Temperature),
		MaxTokens:   cfg.LLM.MaxTokens,
	}, llm.WithExchangeStore(exchanges), llm.WithInvokerLogger(a.logger))
	routerInvoker := invoker.WithModel(cfg.LLM.RouterModelName()).WithTemperature(0)

	transcripts, err := persistence.NewWorkflowLog(logDir)
	if err != nil {
		return err
	}
	a.registry = agents.DefaultRegistry(agents.Dependencies{
		Model:         invoker,
		Transcripts:   transcripts,
		Logger:        a.logger,
		Telemetry:     telemetry,
		MaxIterations: cfg.Workflows.MaxIterations,
		GrepTimeout:   cfg.Workflows.GrepTimeout,
	})
	if err := checkDefaultWorkflow(a.registry, cfg.Workflows.Default); err != nil {
		return err
	}
	router := agents.NewRouter(a.registry, routerInvoker, a.logger)
	router.Telemetry = telemetry
	if cfg.Workflows.Default != "" {
		router.Default = cfg.Workflows.Default
	}

	sandboxes, err := sandbox.NewManager(config.ExpandPath(cfg.Sandbox.Root), a.logger)
	if err != nil {
		return err
	}
	a.editor = service.NewEditor(sandboxes, a.registry, router,
		service.WithLogger(a.logger),
		service.WithTelemetry(telemetry),
		service.WithProjectsRoot(config.ExpandPath(cfg.Sandbox.ProjectsRoot)),
	)
	return nil
}

func (a *application) exchangeStore(logDir string) (persistence.ExchangeStore, error) {
	var stores persistence.MultiExchangeStore
	kind := a.cfg.Storage.ExchangeStore
	if kind == "" || kind == "file" || kind == "both" {
		files, err := persistence.NewFileExchangeStore(logDir)
		if err != nil {
			return nil, err
		}
		stores = append(stores, files)
	}
	if kind == "sqlite" || kind == "both" {
		path := config.ExpandPath(a.cfg.Storage.SQLitePath)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
		db, err := persistence.NewSQLiteExchangeStore(path)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		stores = append(stores, db)
	}
	return stores, nil
}

// checkDefaultWorkflow rejects a configured fallback workflow that the
// registry cannot build. An empty name keeps the router's built-in default.
func checkDefaultWorkflow(registry *agents.Registry, name string) error {
	if name == "" || registry.Has(name) {
		return nil
	}
	return fmt.Errorf("workflows.default %q is not registered (available: %s)", name, strings.Join(registry.Names(), ", "))
}

// Close releases files and databases opened by the application.
func (a *application) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// serveMetrics exposes the Prometheus registry until the returned function
// is called.
func serveMetrics(addr string, logger *slog.Logger) func() {
	if addr == "" {
		return func() {}
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "addr", addr, "error", err)
		}
	}()
	logger.Info("serving metrics", "addr", addr)
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
