package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/marmos91/rowguard/internal/logger"
	"github.com/marmos91/rowguard/internal/telemetry"
	"github.com/marmos91/rowguard/pkg/api"
	"github.com/marmos91/rowguard/pkg/config"
	"github.com/marmos91/rowguard/pkg/engine"
	"github.com/marmos91/rowguard/pkg/store"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"start"},
	Short:   "Start the rowguard API server",
	Long: `Start the rowguard API server in the foreground.

Use --config to specify a custom configuration file, or it will use the
default location at $XDG_CONFIG_HOME/rowguard/config.yaml.

On first start an administrator account is created and its password is
printed once. Set ROWGUARD_ADMIN_INITIAL_PASSWORD to choose it instead.

Examples:
  # Start with the default config
  rowguard serve

  # Start with custom config file
  rowguard serve --config /etc/rowguard/config.yaml

  # Start with environment variable overrides
  ROWGUARD_LOGGING_LEVEL=DEBUG rowguard serve

Editing logging.level in the configuration file takes effect without a
restart; other settings are read once at startup.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}
	if err := InitLogger(cfg); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "rowguard",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := telemetryShutdown(context.Background()); err != nil {
			logger.Error("telemetry shutdown error", logger.Err(err))
		}
	}()

	profilingShutdown, err := telemetry.InitProfiling(telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    "rowguard",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize profiling: %w", err)
	}
	defer func() {
		if err := profilingShutdown(); err != nil {
			logger.Error("profiling shutdown error", logger.Err(err))
		}
	}()

	logger.Info("Log level", "level", cfg.Logging.Level, "format", cfg.Logging.Format)
	if telemetry.IsEnabled() {
		logger.Info("Telemetry enabled", "endpoint", cfg.Telemetry.Endpoint, "sample_rate", cfg.Telemetry.SampleRate)
	}
	if telemetry.IsProfilingEnabled() {
		logger.Info("Profiling enabled", "endpoint", cfg.Telemetry.Profiling.Endpoint)
	}

	configPath := GetConfigFile()
	if configPath == "" {
		configPath = config.GetDefaultConfigPath()
	}
	if err := config.Watch(configPath, func(updated *config.Config) {
		if updated.Logging.Level != cfg.Logging.Level {
			logger.SetLevel(updated.Logging.Level)
			logger.Info("Log level changed", "level", updated.Logging.Level)
			cfg.Logging.Level = updated.Logging.Level
		}
	}); err != nil {
		logger.Warn("Configuration file will not be watched", logger.Err(err))
	}

	metricsResult := config.InitializeMetrics(cfg)

	s, err := store.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer func() { _ = s.Close() }()

	adminPassword, err := s.EnsureAdminUser(ctx, cfg.Admin.Username)
	if err != nil {
		return fmt.Errorf("failed to ensure admin user: %w", err)
	}
	if adminPassword != "" {
		logger.Info("Admin user created", logger.Username(cfg.Admin.Username))
		fmt.Printf("\n*** IMPORTANT: Admin user %q created with password: %s ***\n", cfg.Admin.Username, adminPassword)
		fmt.Println("Please save this password. It will not be shown again.")
		fmt.Println()
	}

	eng := engine.New(s, engine.Config{
		Audit:      cfg.Engine.Audit,
		BcryptCost: cfg.Engine.BcryptCost,
		Metrics:    metricsResult.Authz,
	})

	apiServer, err := api.NewServer(cfg.API, eng, cfg.Engine.PoolSize)
	if err != nil {
		return fmt.Errorf("failed to create API server: %w", err)
	}

	serverDone := make(chan error, 2)
	go func() {
		serverDone <- apiServer.Start(ctx)
	}()

	if metricsResult.Server != nil {
		logger.Info("Metrics enabled", "port", cfg.Metrics.Port)
		go func() {
			if err := metricsResult.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverDone <- fmt.Errorf("metrics server: %w", err)
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	logger.Info("Server is running. Press Ctrl+C to stop.", "port", apiServer.Port())

	var runErr error
	select {
	case <-sigChan:
		logger.Info("Shutdown signal received, initiating graceful shutdown")
		cancel()
		runErr = <-serverDone
	case runErr = <-serverDone:
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if metricsResult.Server != nil {
		_ = metricsResult.Server.Shutdown(shutdownCtx)
	}
	if err := apiServer.Stop(shutdownCtx); err != nil {
		logger.Error("API server stop error", logger.Err(err))
	}

	if runErr != nil {
		logger.Error("Server error", logger.Err(runErr))
		return runErr
	}
	logger.Info("Server stopped gracefully")
	return nil
}
