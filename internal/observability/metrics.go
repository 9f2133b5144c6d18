package observability

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
)

// Metrics tracks process-wide scraping counters.
type Metrics struct {
	FetchAttempts   atomic.Int64
	FetchRetries    atomic.Int64
	FetchFailures   atomic.Int64
	BytesDownloaded atomic.Int64

	ListingPages       atomic.Int64
	ListingPagesFailed atomic.Int64
	DetailPagesFailed  atomic.Int64

	ArticlesSeen       atomic.Int64
	ArticlesKept       atomic.Int64
	ArticlesOutOfRange atomic.Int64
	ArticlesSkipped    atomic.Int64
	DateParseFailures  atomic.Int64

	ArticlesClassified    atomic.Int64
	ArticlesUncategorized atomic.Int64

	RunsStarted   atomic.Int64
	RunsCompleted atomic.Int64
	RunsFailed    atomic.Int64
	ActiveRuns    atomic.Int32

	logger *slog.Logger
}

// NewMetrics creates a new Metrics instance.
func NewMetrics(logger *slog.Logger) *Metrics {
	return &Metrics{
		logger: logger.With("component", "metrics"),
	}
}

type metricLine struct {
	name  string
	help  string
	kind  string
	value int64
}

func (m *Metrics) lines() []metricLine {
	return []metricLine{
		{"beritakepri_fetch_attempts_total", "Total fetch attempts", "counter", m.FetchAttempts.Load()},
		{"beritakepri_fetch_retries_total", "Total fetch retries", "counter", m.FetchRetries.Load()},
		{"beritakepri_fetch_failures_total", "Fetches that failed after every attempt", "counter", m.FetchFailures.Load()},
		{"beritakepri_bytes_downloaded_total", "Total bytes downloaded", "counter", m.BytesDownloaded.Load()},
		{"beritakepri_listing_pages_total", "Listing pages fetched", "counter", m.ListingPages.Load()},
		{"beritakepri_listing_pages_failed_total", "Listing pages skipped after fetch failure", "counter", m.ListingPagesFailed.Load()},
		{"beritakepri_detail_pages_failed_total", "Detail pages skipped after fetch failure", "counter", m.DetailPagesFailed.Load()},
		{"beritakepri_articles_seen_total", "Listing entries examined", "counter", m.ArticlesSeen.Load()},
		{"beritakepri_articles_kept_total", "Articles returned to the operator", "counter", m.ArticlesKept.Load()},
		{"beritakepri_articles_out_of_range_total", "Articles dropped by the date filter", "counter", m.ArticlesOutOfRange.Load()},
		{"beritakepri_articles_skipped_total", "Listing entries skipped by exclusion or missing link", "counter", m.ArticlesSkipped.Load()},
		{"beritakepri_date_parse_failures_total", "Dates that could not be parsed", "counter", m.DateParseFailures.Load()},
		{"beritakepri_articles_classified_total", "Articles given at least one category", "counter", m.ArticlesClassified.Load()},
		{"beritakepri_articles_uncategorized_total", "Articles given the uncategorized label", "counter", m.ArticlesUncategorized.Load()},
		{"beritakepri_runs_started_total", "Scrape runs started", "counter", m.RunsStarted.Load()},
		{"beritakepri_runs_completed_total", "Scrape runs completed", "counter", m.RunsCompleted.Load()},
		{"beritakepri_runs_failed_total", "Scrape runs rejected or cancelled", "counter", m.RunsFailed.Load()},
		{"beritakepri_active_runs", "Scrape runs in progress", "gauge", int64(m.ActiveRuns.Load())},
	}
}

// ServeHTTP serves metrics in Prometheus text exposition format.
func (m *Metrics) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	for _, metric := range m.lines() {
		fmt.Fprintf(w, "# HELP %s %s\n", metric.name, metric.help)
		fmt.Fprintf(w, "# TYPE %s %s\n", metric.name, metric.kind)
		fmt.Fprintf(w, "%s %d\n", metric.name, metric.value)
	}
}

// StartServer starts the metrics HTTP server in the background.
func (m *Metrics) StartServer(port int, path string) error {
	mux := http.NewServeMux()
	mux.Handle(path, m)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	})

	addr := fmt.Sprintf(":%d", port)
	m.logger.Info("metrics server starting", "addr", addr, "path", path)

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			m.logger.Error("metrics server error", "error", err)
		}
	}()

	return nil
}

// Snapshot returns all metrics as a map.
func (m *Metrics) Snapshot() map[string]int64 {
	return map[string]int64{
		"fetch_attempts":         m.FetchAttempts.Load(),
		"fetch_retries":          m.FetchRetries.Load(),
		"fetch_failures":         m.FetchFailures.Load(),
		"bytes_downloaded":       m.BytesDownloaded.Load(),
		"listing_pages":          m.ListingPages.Load(),
		"listing_pages_failed":   m.ListingPagesFailed.Load(),
		"detail_pages_failed":    m.DetailPagesFailed.Load(),
		"articles_seen":          m.ArticlesSeen.Load(),
		"articles_kept":          m.ArticlesKept.Load(),
		"articles_out_of_range":  m.ArticlesOutOfRange.Load(),
		"articles_skipped":       m.ArticlesSkipped.Load(),
		"date_parse_failures":    m.DateParseFailures.Load(),
		"articles_classified":    m.ArticlesClassified.Load(),
		"articles_uncategorized": m.ArticlesUncategorized.Load(),
		"runs_started":           m.RunsStarted.Load(),
		"runs_completed":         m.RunsCompleted.Load(),
		"runs_failed":            m.RunsFailed.Load(),
		"active_runs":            int64(m.ActiveRuns.Load()),
	}
}
