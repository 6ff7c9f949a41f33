package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"reelsync/internal/config"
	"reelsync/internal/logging"
	"reelsync/internal/pipeline"
	"reelsync/internal/reconcile"
	"reelsync/internal/store"
	"reelsync/internal/tmdb"
	"reelsync/internal/trailer"
)

// runPipeline wires the full stack and drives one catalog run to completion.
func runPipeline(cmd *cobra.Command, configPath string) error {
	cfg, path, exists, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Writer: os.Stderr,
	})
	if err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	if !exists {
		logger.Warn("config file not found, using defaults", logging.String("path", path))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gateway, err := store.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer gateway.Close()
	if err := gateway.EnsureSchema(ctx); err != nil {
		return err
	}

	api, err := tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.Language, cfg.TMDB.Region)
	if err != nil {
		return fmt.Errorf("configure tmdb client: %w", err)
	}

	reconciler := reconcile.New(gateway, logger)

	var trailers pipeline.Trailers
	if cfg.Trailers.Enabled {
		encoder := &trailer.FFmpeg{
			Binary:         cfg.Trailers.FFmpegBinary,
			Preset:         cfg.Trailers.Preset,
			CRF:            cfg.Trailers.CRF,
			ScaleThreshold: cfg.Trailers.ScaleThreshold,
			Timeout:        time.Duration(cfg.Trailers.TranscodeTimeout) * time.Second,
		}
		trailers = trailer.New(trailer.NewYouTubeResolver(), encoder, reconciler,
			cfg.TrailersDir(), cfg.TempDir(), cfg.Trailers.Workers, logger)
	}

	driver, err := pipeline.New(cfg, api, reconciler, trailers, logger)
	if err != nil {
		return err
	}

	summary, err := driver.Run(ctx)
	if err != nil {
		return err
	}
	summary.Render(cmd.OutOrStdout())
	return nil
}
