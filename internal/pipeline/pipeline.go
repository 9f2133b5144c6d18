package pipeline

import (
	"log/slog"

	"github.com/IshaanNene/BeritaKepri/internal/types"
)

// Middleware processes an article and returns the (possibly modified)
// article. Return nil to drop it.
type Middleware interface {
	// Name returns the middleware's identifier.
	Name() string

	// Process transforms an article. Return nil to drop it.
	Process(article *types.Article) (*types.Article, error)
}

// Pipeline chains middleware processors together.
type Pipeline struct {
	middlewares []Middleware
	logger      *slog.Logger
}

// New creates a new Pipeline.
func New(logger *slog.Logger) *Pipeline {
	return &Pipeline{
		logger: logger.With("component", "pipeline"),
	}
}

// Use adds a middleware to the pipeline chain.
func (p *Pipeline) Use(mw Middleware) {
	p.middlewares = append(p.middlewares, mw)
	p.logger.Debug("middleware added", "name", mw.Name(), "position", len(p.middlewares))
}

// Process runs the article through all middleware in order.
func (p *Pipeline) Process(article *types.Article) (*types.Article, error) {
	current := article

	for _, mw := range p.middlewares {
		result, err := mw.Process(current)
		if err != nil {
			return nil, &types.PipelineError{
				Stage:   mw.Name(),
				Article: current,
				Err:     err,
			}
		}
		if result == nil {
			p.logger.Debug("article dropped", "stage", mw.Name(), "url", article.URL)
			return nil, nil
		}
		current = result
	}

	return current, nil
}

// ProcessAll runs every article through the chain and keeps the survivors
// in order. A middleware error drops that article and is logged.
func (p *Pipeline) ProcessAll(articles []*types.Article) []*types.Article {
	out := make([]*types.Article, 0, len(articles))
	for _, a := range articles {
		result, err := p.Process(a)
		if err != nil {
			p.logger.Warn("article rejected", "url", a.URL, "stage", "pipeline", "error", err)
			continue
		}
		if result != nil {
			out = append(out, result)
		}
	}
	return out
}

// Len returns the number of middleware in the chain.
func (p *Pipeline) Len() int {
	return len(p.middlewares)
}
