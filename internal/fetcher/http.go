package fetcher

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/andybalholm/brotli"

	"github.com/IshaanNene/BeritaKepri/internal/config"
	"github.com/IshaanNene/BeritaKepri/internal/types"
)

// HTTPFetcher performs a single GET per call using net/http.
type HTTPFetcher struct {
	client    *http.Client
	cfg       *config.FetcherConfig
	userAgent string
	logger    *slog.Logger
}

// NewHTTPFetcher creates a new HTTP fetcher.
func NewHTTPFetcher(cfg *config.FetcherConfig, logger *slog.Logger) *HTTPFetcher {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		DisableCompression:  true, // decoded in decompressReader, brotli included
	}

	redirectPolicy := func(req *http.Request, via []*http.Request) error {
		if !cfg.FollowRedirects {
			return http.ErrUseLastResponse
		}
		if len(via) >= cfg.MaxRedirects {
			return fmt.Errorf("max redirects (%d) reached", cfg.MaxRedirects)
		}
		return nil
	}

	ua := cfg.UserAgent
	if ua == "" {
		ua = config.DefaultUserAgent
	}

	return &HTTPFetcher{
		client: &http.Client{
			Transport:     transport,
			Timeout:       cfg.Timeout,
			CheckRedirect: redirectPolicy,
		},
		cfg:       cfg,
		userAgent: ua,
		logger:    logger.With("component", "http_fetcher"),
	}
}

// Fetch executes one HTTP request. Any non-2xx status is an error.
func (f *HTTPFetcher) Fetch(ctx context.Context, req *types.Request) (*types.Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, req.URLString(), nil)
	if err != nil {
		return nil, &types.FetchError{URL: req.URLString(), Err: err, Retryable: false}
	}

	httpReq.Header.Set("User-Agent", f.userAgent)
	httpReq.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	httpReq.Header.Set("Accept-Language", "id-ID,id;q=0.9,en;q=0.8")
	httpReq.Header.Set("Accept-Encoding", "gzip, deflate, br")
	for key, values := range req.Headers {
		for _, v := range values {
			httpReq.Header.Set(key, v)
		}
	}

	start := time.Now()
	httpResp, err := f.client.Do(httpReq)
	duration := time.Since(start)
	if err != nil {
		return nil, &types.FetchError{
			URL:       req.URLString(),
			Err:       err,
			Retryable: isRetryableError(err),
		}
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(httpResp.Body, 4096))
		return nil, &types.FetchError{
			URL:        req.URLString(),
			StatusCode: httpResp.StatusCode,
			Err:        fmt.Errorf("HTTP %d", httpResp.StatusCode),
			Retryable:  true,
		}
	}

	var reader io.Reader = httpResp.Body
	if f.cfg.MaxBodySize > 0 {
		reader = io.LimitReader(reader, f.cfg.MaxBodySize)
	}

	reader, err = decompressReader(httpResp, reader)
	if err != nil {
		return nil, &types.FetchError{URL: req.URLString(), Err: err, Retryable: true}
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, &types.FetchError{URL: req.URLString(), Err: err, Retryable: true}
	}

	resp := types.NewResponse(req, httpResp, body, duration)

	f.logger.Debug("fetch complete",
		"url", req.URLString(),
		"status", resp.StatusCode,
		"size", len(body),
		"duration", duration,
	)

	return resp, nil
}

// Close releases idle connections.
func (f *HTTPFetcher) Close() error {
	f.client.CloseIdleConnections()
	return nil
}

// Type returns the fetcher type identifier.
func (f *HTTPFetcher) Type() string {
	return "http"
}

// decompressReader wraps a reader with the decoder named by Content-Encoding.
func decompressReader(resp *http.Response, reader io.Reader) (io.Reader, error) {
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		return gzip.NewReader(reader)
	case "deflate":
		return flate.NewReader(reader), nil
	case "br":
		return brotli.NewReader(reader), nil
	default:
		return reader, nil
	}
}

// isRetryableError checks if a transport error is worth another attempt.
// Every network failure is, TLS handshakes included; only a cancelled
// context is not.
func isRetryableError(err error) bool {
	return err != nil && !errors.Is(err, context.Canceled)
}
