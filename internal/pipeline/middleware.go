package pipeline

import (
	"strings"
	"time"

	"github.com/IshaanNene/BeritaKepri/internal/classifier"
	"github.com/IshaanNene/BeritaKepri/internal/dates"
	"github.com/IshaanNene/BeritaKepri/internal/observability"
	"github.com/IshaanNene/BeritaKepri/internal/taxonomy"
	"github.com/IshaanNene/BeritaKepri/internal/types"
)

// TrimMiddleware trims whitespace from the text fields and restores the
// placeholder title when trimming leaves it empty.
type TrimMiddleware struct{}

func (m *TrimMiddleware) Name() string { return "trim" }

func (m *TrimMiddleware) Process(a *types.Article) (*types.Article, error) {
	a.Title = strings.TrimSpace(a.Title)
	a.Body = strings.TrimSpace(a.Body)
	a.URL = strings.TrimSpace(a.URL)
	if a.Title == "" {
		a.Title = types.UntitledPlaceholder
	}
	return a, nil
}

// RequiredURLMiddleware drops articles without a link.
type RequiredURLMiddleware struct{}

func (m *RequiredURLMiddleware) Name() string { return "required_url" }

func (m *RequiredURLMiddleware) Process(a *types.Article) (*types.Article, error) {
	if a.URL == "" {
		return nil, nil
	}
	return a, nil
}

// DateRangeMiddleware drops articles whose date is unknown or outside
// [Start, End].
type DateRangeMiddleware struct {
	Start time.Time
	End   time.Time
}

func (m *DateRangeMiddleware) Name() string { return "date_range" }

func (m *DateRangeMiddleware) Process(a *types.Article) (*types.Article, error) {
	if a.PublishedDate == nil || !dates.InRange(*a.PublishedDate, m.Start, m.End) {
		return nil, nil
	}
	return a, nil
}

// ClassifyMiddleware sets Categories with the multi-label classifier.
type ClassifyMiddleware struct {
	Classifier *classifier.MultiLabel
	Taxonomy   *taxonomy.Taxonomy
	Metrics    *observability.Metrics
}

func (m *ClassifyMiddleware) Name() string { return "classify" }

func (m *ClassifyMiddleware) Process(a *types.Article) (*types.Article, error) {
	a.Categories = m.Classifier.Classify(a.Body, m.Taxonomy)
	countLabels(m.Metrics, a.Categories, m.Classifier.Sentinel)
	return a, nil
}

// SingleClassifyMiddleware sets Categories to the single best label.
type SingleClassifyMiddleware struct {
	Classifier *classifier.SingleLabel
	Taxonomy   *taxonomy.Taxonomy
	Metrics    *observability.Metrics
}

func (m *SingleClassifyMiddleware) Name() string { return "classify_single" }

func (m *SingleClassifyMiddleware) Process(a *types.Article) (*types.Article, error) {
	a.Categories = []string{m.Classifier.Classify(a.Body, m.Taxonomy)}
	countLabels(m.Metrics, a.Categories, m.Classifier.Sentinel)
	return a, nil
}

func countLabels(metrics *observability.Metrics, labels []string, sentinel string) {
	if metrics == nil {
		return
	}
	if len(labels) == 1 && labels[0] == sentinel {
		metrics.ArticlesUncategorized.Add(1)
		return
	}
	metrics.ArticlesClassified.Add(1)
}
