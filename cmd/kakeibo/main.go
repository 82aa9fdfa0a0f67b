package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"kakeibo/internal/cli"
	"kakeibo/internal/config"
	apphttp "kakeibo/internal/http"
	"kakeibo/internal/log"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cli.LoadEnvFile()
	boot := cli.SetupLogger(os.Stdout, slog.LevelInfo, log.ComponentApp)

	cfg := cli.LoadAndValidateConfig(boot)
	level, _ := cfg.Level()
	logger := cli.SetupLogger(os.Stdout, level, log.ComponentApp)

	ctx, stop := cli.SignalContext(context.Background(), logger)
	err := run(ctx, cfg, logger)
	stop()
	if err != nil {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

// run serves the ledger until ctx is cancelled or the listener fails. The
// backend is closed before it returns.
func run(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	ledger, res, err := cli.OpenLedger(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open ledger on %s backend: %w", cfg.DataBackend, err)
	}
	defer func() {
		if err := res.Close(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err)
		}
	}()

	srv := apphttp.NewServer(":"+cfg.Port, ledger, apphttp.Options{
		Logger:             logger,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting kakeibo server",
			"port", cfg.Port,
			log.FieldBackend, cfg.DataBackend,
			log.FieldSlotKey, cfg.SlotKey,
			"location", res.Location)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
