package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/IshaanNene/BeritaKepri/internal/config"
	"github.com/IshaanNene/BeritaKepri/internal/fetcher"
	"github.com/IshaanNene/BeritaKepri/internal/observability"
	"github.com/IshaanNene/BeritaKepri/internal/pipeline"
	"github.com/IshaanNene/BeritaKepri/internal/portal"
	"github.com/IshaanNene/BeritaKepri/internal/taxonomy"
	"github.com/IshaanNene/BeritaKepri/internal/types"
)

// Runner orchestrates scrape runs: it validates a Job, loads the taxonomy,
// drives the portal extractor and passes the articles through the
// pipeline. Runs are sequential; a Runner may be shared by callers that
// serialise their calls.
type Runner struct {
	cfg        *config.Config
	registry   *portal.Registry
	fetcher    fetcher.Fetcher
	taxonomies *taxonomy.Cache
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewRunner creates a Runner. taxonomies and metrics may be nil; without a
// cache every classified run reports ErrTaxonomyUnavailable.
func NewRunner(cfg *config.Config, registry *portal.Registry, f fetcher.Fetcher, taxonomies *taxonomy.Cache, metrics *observability.Metrics, logger *slog.Logger) *Runner {
	return &Runner{
		cfg:        cfg,
		registry:   registry,
		fetcher:    f,
		taxonomies: taxonomies,
		metrics:    metrics,
		logger:     logger.With("component", "engine"),
	}
}

// Registry returns the portal registry.
func (r *Runner) Registry() *portal.Registry {
	return r.registry
}

// Taxonomies returns the taxonomy cache, possibly nil.
func (r *Runner) Taxonomies() *taxonomy.Cache {
	return r.taxonomies
}

// Run executes one job. An invalid job returns an error before anything
// is fetched. Cancellation returns the partial result together with the
// context error.
func (r *Runner) Run(ctx context.Context, job Job) (*Result, error) {
	r.count(func(m *observability.Metrics) {
		m.RunsStarted.Add(1)
		m.ActiveRuns.Add(1)
	})
	defer r.count(func(m *observability.Metrics) { m.ActiveRuns.Add(-1) })

	job, err := r.normalize(job)
	if err != nil {
		r.count(func(m *observability.Metrics) { m.RunsFailed.Add(1) })
		return nil, err
	}
	p, _ := r.registry.Get(job.Portal)

	res := &Result{
		RunID:      uuid.NewString(),
		Portal:     p.ID,
		PortalName: p.Name,
		Start:      job.Start,
		End:        job.End,
		MaxPages:   job.MaxPages,
		Mode:       job.Mode,
		StartedAt:  time.Now(),
	}
	logger := r.logger.With("run_id", res.RunID, "portal", p.ID)
	logger.Info("run starting",
		"start", job.Start.Format(types.DateLayout),
		"end", job.End.Format(types.DateLayout),
		"max_pages", job.MaxPages,
		"mode", job.Mode,
	)

	// The taxonomy is loaded before scraping so a broken source is
	// reported up front; extraction goes ahead without classification.
	var tax *taxonomy.Taxonomy
	if job.Mode != ModeNone {
		tax, err = r.loadTaxonomy(job)
		if err != nil {
			res.ClassificationErr = err
			logger.Error("taxonomy unavailable, classification disabled", "stage", "taxonomy", "error", err)
		}
	}

	ex, err := portal.NewExtractor(p, r.fetcher, portal.Options{
		ArticleDelay:        r.cfg.Extractor.ArticleDelay,
		ReadabilityFallback: r.cfg.Extractor.ReadabilityFallback,
		MetadataDates:       r.cfg.Extractor.MetadataDates,
	}, r.metrics, logger)
	if err != nil {
		r.count(func(m *observability.Metrics) { m.RunsFailed.Add(1) })
		return nil, err
	}

	articles, extractErr := ex.Extract(ctx, portal.Query{
		Start:    job.Start,
		End:      job.End,
		MaxPages: job.MaxPages,
	})
	res.Stats = ex.Stats()
	res.Articles = r.buildPipeline(job, tax, logger).ProcessAll(articles)
	res.Stats.ArticlesKept = len(res.Articles)
	r.count(func(m *observability.Metrics) { m.ArticlesKept.Add(int64(len(res.Articles))) })
	res.Duration = time.Since(res.StartedAt)

	if extractErr != nil {
		r.count(func(m *observability.Metrics) { m.RunsFailed.Add(1) })
		logger.Warn("run cancelled", "articles", len(res.Articles), "error", extractErr)
		return res, extractErr
	}

	r.count(func(m *observability.Metrics) { m.RunsCompleted.Add(1) })
	if res.Empty() {
		logger.Warn("no articles found for the selected portal and date range", "duration", res.Duration)
	} else {
		logger.Info("run complete", "articles", len(res.Articles), "duration", res.Duration)
	}
	return res, nil
}

func (r *Runner) loadTaxonomy(job Job) (*taxonomy.Taxonomy, error) {
	if r.taxonomies == nil {
		return nil, &types.TaxonomyError{Source: "cache", Err: types.ErrTaxonomyUnavailable}
	}
	side, minLen := r.taxonomyKey(job)
	return r.taxonomies.Get(side, minLen)
}

// buildPipeline builds the per-run middleware chain.
func (r *Runner) buildPipeline(job Job, tax *taxonomy.Taxonomy, logger *slog.Logger) *pipeline.Pipeline {
	p := pipeline.New(logger)
	p.Use(&pipeline.TrimMiddleware{})
	p.Use(&pipeline.RequiredURLMiddleware{})
	p.Use(pipeline.NewDedupMiddleware())
	if !job.Start.IsZero() {
		p.Use(&pipeline.DateRangeMiddleware{Start: job.Start, End: job.End})
	}
	if tax == nil {
		return p
	}
	switch job.Mode {
	case ModeMulti:
		p.Use(&pipeline.ClassifyMiddleware{Classifier: r.multiLabel(), Taxonomy: tax, Metrics: r.metrics})
	case ModeSingle:
		p.Use(&pipeline.SingleClassifyMiddleware{Classifier: r.singleLabel(), Taxonomy: tax, Metrics: r.metrics})
	}
	return p
}

func (r *Runner) count(fn func(m *observability.Metrics)) {
	if r.metrics != nil {
		fn(r.metrics)
	}
}
