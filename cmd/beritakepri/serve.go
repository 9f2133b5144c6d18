package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/IshaanNene/BeritaKepri/internal/api"
)

var apiPort int

// serveCmd creates the "serve" subcommand.
func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Serve exposes scraping over HTTP. The root path serves a browser
form for picking a portal and date range.

  GET  /
  GET  /api/health
  GET  /api/portals
  POST /api/scrape                 {"portal":"vnews","start":"2025-08-01","end":"2025-08-31"}
  GET  /api/jobs
  GET  /api/jobs/{id}
  GET  /api/jobs/{id}/export?format=xlsx|csv|json|jsonl
  POST /api/taxonomy/reload
  GET  /api/stats
  GET  /metrics`,
		RunE: runServe,
	}

	cmd.Flags().IntVar(&apiPort, "port", 0, "listen port (0 = config default)")
	cmd.Flags().StringVar(&fetcherType, "fetcher", "", "fetcher type: http, browser")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := setupLogger(&cfg.Logging)
	if err != nil {
		return err
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if a.cache != nil && cfg.Taxonomy.Watch {
		if err := a.cache.Watch(ctx); err != nil {
			logger.Warn("taxonomy watch disabled", "error", err)
		}
	}
	if cfg.Metrics.Enabled {
		if err := a.metrics.StartServer(cfg.Metrics.Port, cfg.Metrics.Path); err != nil {
			logger.Warn("failed to start metrics server", "error", err)
		}
	}

	server := api.NewServer(cfg, a.runner, a.metrics, logger)
	fmt.Printf("🌐 BeritaKepri API listening on :%d\n", cfg.API.Port)
	return server.ListenAndServe(ctx)
}
