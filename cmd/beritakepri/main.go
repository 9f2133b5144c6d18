package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/IshaanNene/BeritaKepri/internal/config"
	"github.com/IshaanNene/BeritaKepri/internal/engine"
	"github.com/IshaanNene/BeritaKepri/internal/fetcher"
	"github.com/IshaanNene/BeritaKepri/internal/observability"
	"github.com/IshaanNene/BeritaKepri/internal/portal"
	"github.com/IshaanNene/BeritaKepri/internal/taxonomy"
)

var (
	cfgFile     string
	verbose     bool
	fetcherType string
	articleWait string
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: .env not loaded: %v\n", err)
	}

	rootCmd := &cobra.Command{
		Use:   "beritakepri",
		Short: "BeritaKepri - Kepulauan Riau news scraper and economic classifier",
		Long: `BeritaKepri collects news articles from regional portals of the
Kepulauan Riau province within a date range and tags each article with the
economic sectors it mentions.

Features:
  • Nine built-in portals, more through configuration
  • Date filtering on ISO and Indonesian-language dates
  • Multi-label and single-label sector classification from KBLI tables
  • XLSX, CSV, JSON, JSONL export and a terminal table
  • HTTP API and Prometheus metrics`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(scrapeCmd())
	rootCmd.AddCommand(portalsCmd())
	rootCmd.AddCommand(taxonomyCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config, applies the shared flags and validates.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := applyCLIOverrides(cfg); err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// setupLogger creates a structured logger from the logging config.
func setupLogger(cfg *config.LoggingConfig) (*slog.Logger, error) {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	out := os.Stderr
	switch cfg.Output {
	case "", "stderr":
	case "stdout":
		out = os.Stdout
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		out = f
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(out, opts)), nil
	}
	return slog.New(slog.NewTextHandler(out, opts)), nil
}

// applyCLIOverrides applies command-line flag values shared by the
// scraping commands to the config.
func applyCLIOverrides(cfg *config.Config) error {
	if fetcherType != "" {
		cfg.Fetcher.Type = strings.ToLower(fetcherType)
	}
	if articleWait != "" {
		d, err := time.ParseDuration(articleWait)
		if err != nil {
			return fmt.Errorf("invalid --delay: %w", err)
		}
		cfg.Extractor.ArticleDelay = d
	}
	if outputType != "" {
		cfg.Storage.Type = strings.ToLower(outputType)
	}
	if outputPath != "" {
		cfg.Storage.OutputPath = outputPath
	}
	if classifyMode != "" {
		cfg.Classifier.Mode = strings.ToLower(classifyMode)
	}
	if apiPort > 0 {
		cfg.API.Port = apiPort
	}
	return nil
}

// app holds the wired components shared by scrape and serve.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *observability.Metrics
	fetcher fetcher.Fetcher
	cache   *taxonomy.Cache
	runner  *engine.Runner
}

func newApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	registry, err := portal.NewRegistry(cfg.Portals)
	if err != nil {
		return nil, fmt.Errorf("load portals: %w", err)
	}

	metrics := observability.NewMetrics(logger)
	f, err := fetcher.New(&cfg.Fetcher, metrics, logger)
	if err != nil {
		return nil, fmt.Errorf("create fetcher: %w", err)
	}

	var cache *taxonomy.Cache
	if len(cfg.Taxonomy.Sources) > 0 {
		cache = taxonomy.NewCache(cfg.Taxonomy.Sources, logger)
	}

	return &app{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
		fetcher: f,
		cache:   cache,
		runner:  engine.NewRunner(cfg, registry, f, cache, metrics, logger),
	}, nil
}

func (a *app) Close() {
	if err := a.fetcher.Close(); err != nil {
		a.logger.Error("fetcher close error", "error", err)
	}
}
