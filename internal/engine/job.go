package engine

import (
	"fmt"
	"time"

	"github.com/IshaanNene/BeritaKepri/internal/classifier"
	"github.com/IshaanNene/BeritaKepri/internal/portal"
	"github.com/IshaanNene/BeritaKepri/internal/taxonomy"
	"github.com/IshaanNene/BeritaKepri/internal/types"
)

// Classification modes.
const (
	ModeNone   = "none"
	ModeMulti  = "multi"
	ModeSingle = "single"
)

// Job is one operator request: a portal, a date range and a page budget.
type Job struct {
	Portal   string    `json:"portal"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	MaxPages int       `json:"max_pages"`
	// Mode is none, multi or single. Empty uses the configured mode.
	Mode string `json:"mode,omitempty"`
	// Side picks the production or expenditure sources for single-label
	// classification. Multi-label runs merge every source and ignore it.
	Side string `json:"side,omitempty"`
}

// Result is the outcome of a run. A run that finds nothing is not an
// error: Empty reports it.
type Result struct {
	RunID      string           `json:"run_id"`
	Portal     string           `json:"portal"`
	PortalName string           `json:"portal_name"`
	Start      time.Time        `json:"start"`
	End        time.Time        `json:"end"`
	MaxPages   int              `json:"max_pages"`
	Mode       string           `json:"mode"`
	Articles   []*types.Article `json:"articles"`
	Stats      portal.Stats     `json:"stats"`
	StartedAt  time.Time        `json:"started_at"`
	Duration   time.Duration    `json:"duration"`

	// ClassificationErr is set when the taxonomy could not be loaded.
	// Extraction still ran; the articles carry no categories.
	ClassificationErr error `json:"-"`
}

// Empty reports whether the run finished without any article.
func (r *Result) Empty() bool {
	return len(r.Articles) == 0
}

// Classified reports whether the articles carry categories.
func (r *Result) Classified() bool {
	return r.Mode != ModeNone && r.ClassificationErr == nil
}

// normalize fills defaults and checks the job against the registry and
// the page budget limits.
func (r *Runner) normalize(job Job) (Job, error) {
	if _, err := r.registry.Get(job.Portal); err != nil {
		return job, err
	}

	if job.Start.IsZero() != job.End.IsZero() {
		return job, fmt.Errorf("%w: both start and end are required", types.ErrInvalidRange)
	}
	if job.Start.After(job.End) {
		return job, fmt.Errorf("%w: start %s is after end %s", types.ErrInvalidRange,
			job.Start.Format(types.DateLayout), job.End.Format(types.DateLayout))
	}

	if job.MaxPages == 0 {
		job.MaxPages = r.cfg.Extractor.DefaultMaxPages
	}
	if job.MaxPages < 1 || job.MaxPages > r.cfg.Extractor.MaxPagesLimit {
		return job, fmt.Errorf("%w: %d is outside 1..%d", types.ErrInvalidPageBudget,
			job.MaxPages, r.cfg.Extractor.MaxPagesLimit)
	}

	if job.Mode == "" {
		job.Mode = r.cfg.Classifier.Mode
	}
	switch job.Mode {
	case ModeNone, ModeMulti:
		job.Side = ""
	case ModeSingle:
		if job.Side == "" {
			job.Side = r.cfg.Classifier.SingleSide
		}
		if job.Side != taxonomy.SideProduction && job.Side != taxonomy.SideExpenditure {
			return job, fmt.Errorf("%w: %q (want %s or %s)", types.ErrInvalidSide,
				job.Side, taxonomy.SideProduction, taxonomy.SideExpenditure)
		}
	default:
		return job, fmt.Errorf("unknown classification mode %q", job.Mode)
	}
	return job, nil
}

// Validate checks a job without running it.
func (r *Runner) Validate(job Job) error {
	_, err := r.normalize(job)
	return err
}

// taxonomyKey returns the cache key of a normalized job: one side for
// single-label runs, every source for multi-label runs.
func (r *Runner) taxonomyKey(job Job) (string, int) {
	if job.Mode == ModeSingle {
		return job.Side, r.cfg.Taxonomy.SingleMinTokenLength
	}
	return "", r.cfg.Taxonomy.MinTokenLength
}

func (r *Runner) multiLabel() *classifier.MultiLabel {
	return classifier.NewMultiLabel(r.cfg.Classifier.TopN, r.cfg.Classifier.Sentinel, r.cfg.Classifier.TieBreak)
}

func (r *Runner) singleLabel() *classifier.SingleLabel {
	return classifier.NewSingleLabel(r.cfg.Classifier.Sentinel, r.cfg.Classifier.SingleMatching)
}
