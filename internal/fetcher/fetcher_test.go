package fetcher

import (
	"compress/gzip"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/IshaanNene/BeritaKepri/internal/config"
	"github.com/IshaanNene/BeritaKepri/internal/observability"
	"github.com/IshaanNene/BeritaKepri/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func testFetcherConfig() *config.FetcherConfig {
	cfg := config.DefaultConfig().Fetcher
	cfg.Timeout = 2 * time.Second
	cfg.RetryDelay = 0
	return &cfg
}

func mustRequest(t *testing.T, rawURL string) *types.Request {
	t.Helper()
	req, err := types.NewRequest(rawURL)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	return req
}

func TestHTTPFetcherSendsUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><body><h1>Halo</h1></body></html>"))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(testFetcherConfig(), testLogger)
	defer f.Close()

	resp, err := f.Fetch(context.Background(), mustRequest(t, srv.URL))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if gotUA != config.DefaultUserAgent {
		t.Errorf("expected default user agent, got %q", gotUA)
	}
	doc, err := resp.Document()
	if err != nil {
		t.Fatalf("document: %v", err)
	}
	if got := doc.Find("h1").Text(); got != "Halo" {
		t.Errorf("expected heading Halo, got %q", got)
	}
}

func TestHTTPFetcherGzip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		gz.Write([]byte("<p>terkompresi</p>"))
		gz.Close()
	}))
	defer srv.Close()

	f := NewHTTPFetcher(testFetcherConfig(), testLogger)
	resp, err := f.Fetch(context.Background(), mustRequest(t, srv.URL))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !strings.Contains(string(resp.Body), "terkompresi") {
		t.Errorf("body not decompressed: %q", resp.Body)
	}
}

func TestHTTPFetcherNon2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(testFetcherConfig(), testLogger)
	_, err := f.Fetch(context.Background(), mustRequest(t, srv.URL))

	var fe *types.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if fe.StatusCode != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", fe.StatusCode)
	}
}

func TestRetryFetcherMakesThreeAttempts(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	cfg := testFetcherConfig()
	metrics := observability.NewMetrics(testLogger)
	f := NewRetryFetcher(NewHTTPFetcher(cfg, testLogger), 2, 0, metrics, testLogger)

	_, err := f.Fetch(context.Background(), mustRequest(t, srv.URL))
	if !errors.Is(err, types.ErrMaxRetries) {
		t.Fatalf("expected ErrMaxRetries, got %v", err)
	}
	if hits.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", hits.Load())
	}
	if metrics.FetchAttempts.Load() != 3 || metrics.FetchRetries.Load() != 2 || metrics.FetchFailures.Load() != 1 {
		t.Errorf("unexpected metrics: %v", metrics.Snapshot())
	}
}

func TestRetryFetcherRecovers(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	f := NewRetryFetcher(NewHTTPFetcher(testFetcherConfig(), testLogger), 2, time.Millisecond, nil, testLogger)
	resp, err := f.Fetch(context.Background(), mustRequest(t, srv.URL))
	if err != nil {
		t.Fatalf("expected recovery, got %v", err)
	}
	if string(resp.Body) != "ok" {
		t.Errorf("unexpected body %q", resp.Body)
	}
	if hits.Load() != 2 {
		t.Errorf("expected 2 attempts, got %d", hits.Load())
	}
}

func TestRetryFetcherStopsOnCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewRetryFetcher(NewHTTPFetcher(testFetcherConfig(), testLogger), 2, time.Hour, nil, testLogger)
	_, err := f.Fetch(ctx, mustRequest(t, srv.URL))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestHTTPFetcherTLSFailureIsRetried(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	_, err := NewHTTPFetcher(testFetcherConfig(), testLogger).Fetch(context.Background(), mustRequest(t, srv.URL))
	var fe *types.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError for untrusted certificate, got %v", err)
	}
	if !fe.IsRetryable() {
		t.Errorf("certificate failure should be retryable: %v", err)
	}

	f := NewRetryFetcher(NewHTTPFetcher(testFetcherConfig(), testLogger), 2, 0, nil, testLogger)
	if _, err := f.Fetch(context.Background(), mustRequest(t, srv.URL)); !errors.Is(err, types.ErrMaxRetries) {
		t.Errorf("expected ErrMaxRetries after TLS failures, got %v", err)
	}
	if hits.Load() != 0 {
		t.Errorf("handler must not be reached, got %d hits", hits.Load())
	}
}
