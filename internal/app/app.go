package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"lobstat/internal/artifacts"
	"lobstat/internal/config"
	"lobstat/internal/feed"
	"lobstat/internal/infrastructure"
	"lobstat/internal/operations"
	"lobstat/internal/validation"
)

const AppName = "lobstat"

// Options are the command-line overrides shared by every command. Zero
// values keep the configured setting.
type Options struct {
	ConfigPath string
	Workers    int
	Source     string
	DataDir    string
	OutputDir  string
}

// Application represents the main application container
type Application struct {
	Config    *config.Config
	Logger    *slog.Logger
	Telemetry *infrastructure.Telemetry
	Store     artifacts.Store
	Source    *feed.Source
	Files     *validation.FileValidator
	RunID     string
}

// NewApplication loads the configuration and wires logging, telemetry, the
// artifact store and the data source.
func NewApplication(ctx context.Context, opts Options) (*Application, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := opts.apply(cfg); err != nil {
		return nil, err
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	runID := infrastructure.NewRunID()
	ctx = infrastructure.WithRunID(ctx, runID)
	logger.InfoContext(ctx, "application starting",
		slog.String("name", AppName),
		slog.String("version", infrastructure.ServiceVersion),
		slog.String("data_dir", cfg.Paths.DataDir),
		slog.String("output_dir", cfg.Paths.OutputDir),
		slog.String("storage", cfg.Storage.Backend),
		slog.Int("workers", cfg.Run.Workers))

	files := validation.NewFileValidator(logger)
	if err := files.ValidateInputDirectory(cfg.Paths.DataDir); err != nil {
		return nil, fmt.Errorf("failed to validate data directory: %w", err)
	}
	if err := cfg.Paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	if err := files.ValidateOutputDirectory(cfg.Paths.OutputDir); err != nil {
		return nil, fmt.Errorf("failed to validate output directory: %w", err)
	}

	tel, err := infrastructure.InitializeTelemetry(cfg.Telemetry, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	store, err := artifacts.Open(ctx, cfg.Storage, cfg.Paths.ArtifactsDir(), logger)
	if err != nil {
		_ = tel.Shutdown(ctx)
		return nil, fmt.Errorf("failed to open artifact store: %w", err)
	}

	return &Application{
		Config:    cfg,
		Logger:    logger,
		Telemetry: tel,
		Store:     store,
		Source:    feed.NewSource(cfg.Paths.DataDir, logger),
		Files:     files,
		RunID:     runID,
	}, nil
}

func (o Options) apply(cfg *config.Config) error {
	if o.Workers > 0 {
		cfg.Run.Workers = o.Workers
	}
	if o.Source != "" {
		cfg.Run.Source = o.Source
	}
	if o.DataDir != "" {
		cfg.Paths.DataDir = o.DataDir
	}
	if o.OutputDir != "" {
		cfg.Paths.OutputDir = o.OutputDir
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Env returns the environment shared by the units of a run.
func (a *Application) Env() *operations.Env {
	return &operations.Env{
		Source:  a.Source,
		Store:   a.Store,
		Run:     a.Config.Run,
		Logger:  a.Logger,
		Metrics: a.Telemetry.Metrics,
		RunID:   a.RunID,
	}
}

// Run executes units with the configured number of workers and writes the
// metrics file afterwards.
func (a *Application) Run(ctx context.Context, label string, units []operations.Unit) *operations.Report {
	runner := operations.NewRunner(a.Env(), a.Config.Run.Workers, a.Telemetry.Tracer)
	report := runner.Run(ctx, label, units)
	if err := a.Telemetry.WriteMetrics(); err != nil {
		a.Logger.WarnContext(ctx, "failed to write metrics", slog.String("error", err.Error()))
	}
	return report
}

// Close releases the store, flushes telemetry and closes the log file.
func (a *Application) Close(ctx context.Context) error {
	var errs []error
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close artifact store: %w", err))
		}
	}
	if a.Telemetry != nil {
		if err := a.Telemetry.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := infrastructure.CloseLogFile(); err != nil {
		errs = append(errs, fmt.Errorf("close log file: %w", err))
	}
	return errors.Join(errs...)
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM, so that
// a run stops scheduling units and reports the rest as cancelled.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
