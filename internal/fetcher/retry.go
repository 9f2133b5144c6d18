package fetcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/IshaanNene/BeritaKepri/internal/observability"
	"github.com/IshaanNene/BeritaKepri/internal/types"
)

// RetryFetcher retries a failed fetch a fixed number of times with a fixed
// pause between attempts.
type RetryFetcher struct {
	next       Fetcher
	maxRetries int
	delay      time.Duration
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewRetryFetcher wraps next. metrics may be nil.
func NewRetryFetcher(next Fetcher, maxRetries int, delay time.Duration, metrics *observability.Metrics, logger *slog.Logger) *RetryFetcher {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &RetryFetcher{
		next:       next,
		maxRetries: maxRetries,
		delay:      delay,
		metrics:    metrics,
		logger:     logger.With("component", "retry_fetcher"),
	}
}

// Fetch makes up to 1+maxRetries attempts. The final error wraps
// types.ErrMaxRetries unless the context ended or the failure was not
// retryable.
func (f *RetryFetcher) Fetch(ctx context.Context, req *types.Request) (*types.Response, error) {
	attempts := f.maxRetries + 1
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			if f.metrics != nil {
				f.metrics.FetchRetries.Add(1)
			}
			if err := Sleep(ctx, f.delay); err != nil {
				return nil, err
			}
		}

		f.logger.Info("fetching",
			"url", req.URLString(),
			"tag", req.Tag,
			"attempt", attempt,
			"of", attempts,
		)
		if f.metrics != nil {
			f.metrics.FetchAttempts.Add(1)
		}

		resp, err := f.next.Fetch(ctx, req)
		if err == nil {
			if f.metrics != nil {
				f.metrics.BytesDownloaded.Add(int64(len(resp.Body)))
			}
			return resp, nil
		}
		lastErr = err

		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		var fe *types.FetchError
		if errors.As(err, &fe) && !fe.IsRetryable() {
			f.logger.Warn("fetch failed, not retrying", "url", req.URLString(), "error", err)
			if f.metrics != nil {
				f.metrics.FetchFailures.Add(1)
			}
			return nil, err
		}
		f.logger.Warn("fetch attempt failed",
			"url", req.URLString(),
			"attempt", attempt,
			"error", err,
		)
	}

	if f.metrics != nil {
		f.metrics.FetchFailures.Add(1)
	}
	return nil, &types.FetchError{
		URL:      req.URLString(),
		Attempts: attempts,
		Err:      fmt.Errorf("%w after %d attempts: %w", types.ErrMaxRetries, attempts, lastErr),
	}
}

// Close closes the wrapped fetcher.
func (f *RetryFetcher) Close() error {
	return f.next.Close()
}

// Type returns the wrapped fetcher's type.
func (f *RetryFetcher) Type() string {
	return f.next.Type()
}

// Sleep pauses for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
