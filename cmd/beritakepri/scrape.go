package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/IshaanNene/BeritaKepri/internal/engine"
	"github.com/IshaanNene/BeritaKepri/internal/storage"
	"github.com/IshaanNene/BeritaKepri/internal/types"
)

var (
	dateFrom     string
	dateTo       string
	maxPages     int
	classifyMode string
	side         string
	outputType   string
	outputPath   string
)

// scrapeCmd creates the "scrape" subcommand.
func scrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape [portal]",
		Short: "Scrape one portal for a date range",
		Long: `Scrape walks the listing pages of a portal, keeps the articles published
within --from and --to (inclusive) and writes them to --output.

Run "beritakepri portals" to list the portal IDs.`,
		Example: `  beritakepri scrape presmedia --from 2025-08-01 --to 2025-08-31
  beritakepri scrape batampos --max-pages 10 --classify multi -f csv
  beritakepri scrape ulasan --classify single --side expenditure -f table`,
		Args: cobra.ExactArgs(1),
		RunE: runScrape,
	}

	cmd.Flags().StringVar(&dateFrom, "from", "2025-08-01", "start date (YYYY-MM-DD, inclusive)")
	cmd.Flags().StringVar(&dateTo, "to", "2025-08-31", "end date (YYYY-MM-DD, inclusive)")
	cmd.Flags().IntVarP(&maxPages, "max-pages", "p", 0, "listing pages to visit (0 = config default)")
	cmd.Flags().StringVar(&classifyMode, "classify", "", "classification: none, multi, single")
	cmd.Flags().StringVar(&side, "side", "", "taxonomy side: production, expenditure")
	cmd.Flags().StringVarP(&outputType, "format", "f", "", "output format: xlsx, csv, json, jsonl, table")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output directory")
	cmd.Flags().StringVar(&fetcherType, "fetcher", "", "fetcher type: http, browser")
	cmd.Flags().StringVar(&articleWait, "delay", "", "pause after each article, e.g. 500ms")

	return cmd
}

// runScrape executes the scrape command.
func runScrape(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := setupLogger(&cfg.Logging)
	if err != nil {
		return err
	}

	job, err := scrapeJob(args[0])
	if err != nil {
		return err
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.runner.Validate(job); err != nil {
		return err
	}

	if cfg.Metrics.Enabled {
		if err := a.metrics.StartServer(cfg.Metrics.Port, cfg.Metrics.Path); err != nil {
			logger.Warn("failed to start metrics server", "error", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, runErr := a.runner.Run(ctx, job)
	if res == nil {
		return runErr
	}

	if res.ClassificationErr != nil {
		fmt.Fprintf(os.Stderr, "⚠️  Classification disabled: %v\n", res.ClassificationErr)
	}

	if res.Empty() {
		fmt.Printf("\n⚠️  No articles found for %s between %s and %s.\n",
			res.PortalName, res.Start.Format(types.DateLayout), res.End.Format(types.DateLayout))
		return runErr
	}

	if err := writeResult(res, cfg.Storage.Type, cfg.Storage.OutputPath, logger); err != nil {
		return err
	}

	fmt.Printf("   Pages:     %d fetched, %d failed\n", res.Stats.PagesFetched, res.Stats.PagesFailed)
	fmt.Printf("   Skipped:   %d out of range, %d detail failures\n", res.Stats.OutOfRange, res.Stats.DetailFailures)
	fmt.Printf("   Duration:  %s\n", res.Duration.Round(time.Millisecond))

	if runErr != nil {
		return fmt.Errorf("scrape interrupted: %w", runErr)
	}
	return nil
}

func scrapeJob(portalID string) (engine.Job, error) {
	job := engine.Job{
		Portal:   strings.ToLower(portalID),
		MaxPages: maxPages,
		Side:     side,
	}
	var err error
	if job.Start, err = time.Parse(types.DateLayout, dateFrom); err != nil {
		return job, fmt.Errorf("%w: --from must be YYYY-MM-DD", types.ErrInvalidRange)
	}
	if job.End, err = time.Parse(types.DateLayout, dateTo); err != nil {
		return job, fmt.Errorf("%w: --to must be YYYY-MM-DD", types.ErrInvalidRange)
	}
	return job, nil
}

// writeResult prints a table or writes the export file.
func writeResult(res *engine.Result, format, dir string, logger *slog.Logger) error {
	if format == storage.FormatTable {
		fmt.Printf("\n✅ Found %d articles on %s\n\n", len(res.Articles), res.PortalName)
		return storage.Encode(os.Stdout, format, res.Articles)
	}

	path := filepath.Join(dir, storage.FileName(res.Portal, res.Start, res.End, format))
	store, err := storage.NewFileStorage(format, path, logger)
	if err != nil {
		return fmt.Errorf("create storage: %w", err)
	}
	if err := store.Store(res.Articles); err != nil {
		return err
	}
	if err := store.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	fmt.Printf("\n✅ Found %d articles on %s\n", len(res.Articles), res.PortalName)
	fmt.Printf("   Output:    %s\n", store.Path())
	return nil
}
