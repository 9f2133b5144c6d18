package fetcher

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/IshaanNene/BeritaKepri/internal/config"
	"github.com/IshaanNene/BeritaKepri/internal/observability"
	"github.com/IshaanNene/BeritaKepri/internal/types"
)

// Fetcher is the interface for all page fetcher implementations.
type Fetcher interface {
	// Fetch retrieves the content at the given request's URL.
	Fetch(ctx context.Context, req *types.Request) (*types.Response, error)

	// Close releases any resources held by the fetcher.
	Close() error

	// Type returns the fetcher type identifier.
	Type() string
}

// New builds the fetcher named by cfg.Type wrapped in a RetryFetcher.
func New(cfg *config.FetcherConfig, metrics *observability.Metrics, logger *slog.Logger) (Fetcher, error) {
	var base Fetcher
	switch cfg.Type {
	case "", "http":
		base = NewHTTPFetcher(cfg, logger)
	case "browser":
		bf, err := NewBrowserFetcher(cfg, logger)
		if err != nil {
			return nil, err
		}
		base = bf
	default:
		return nil, fmt.Errorf("unknown fetcher type %q", cfg.Type)
	}
	return NewRetryFetcher(base, cfg.MaxRetries, cfg.RetryDelay, metrics, logger), nil
}
