// Package cli provides common initialization shared by cmd/kakeibo and
// cmd/kakeibo-admin.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"kakeibo/internal/backend"
	"kakeibo/internal/config"
	"kakeibo/internal/log"
	"kakeibo/internal/services"
)

// SetupLogger initializes the text logger at level and makes it the
// default slog logger.
func SetupLogger(w io.Writer, level slog.Level, component string) *log.Logger {
	logger := log.NewText(w, level, component)
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadConfig reads and validates configuration from the environment.
func LoadConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg, err := LoadConfig()
	if err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err, "error_type", log.ErrorTypeConfiguration)
		os.Exit(1)
	}
	return cfg
}

// OpenLedger builds the configured slot backend and loads the ledger from
// it. Close the returned backend when done.
func OpenLedger(ctx context.Context, cfg *config.Config, logger *log.Logger) (*services.LedgerService, *backend.BackendResult, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, nil, err
	}

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	res, err := backend.NewFactory(logger.WithComponent(log.ComponentBackend).Logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, nil, fmt.Errorf("create %s backend: %w", bcfg.Type, err)
	}

	ledger, err := services.OpenLedger(ctx, res.Persister, services.Options{
		Location:   loc,
		Logger:     logger,
		StrictSlot: cfg.StrictSlot,
	})
	if err != nil {
		_ = res.Close()
		return nil, nil, err
	}
	return ledger, res, nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context, logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		if parent.Err() == nil {
			logger.Info("Shutdown signal received", log.FieldOperation, log.OpShutdown)
		}
	}()
	return ctx, stop
}
