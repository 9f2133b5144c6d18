package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/IshaanNene/BeritaKepri/internal/config"
	"github.com/IshaanNene/BeritaKepri/internal/types"
)

// BrowserFetcher renders pages in headless Chromium via Rod. Portals that
// build their listing with JavaScript need it; the rest use HTTPFetcher.
type BrowserFetcher struct {
	browser *rod.Browser
	cfg     *config.FetcherConfig
	logger  *slog.Logger
	mu      sync.Mutex
	page    *rod.Page
}

// NewBrowserFetcher launches a browser and connects to it.
func NewBrowserFetcher(cfg *config.FetcherConfig, logger *slog.Logger) (*BrowserFetcher, error) {
	bf := &BrowserFetcher{
		cfg:    cfg,
		logger: logger.With("component", "browser_fetcher"),
	}

	launchURL, err := launcher.New().
		Headless(cfg.Headless).
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("no-sandbox").
		Set("disable-blink-features", "AutomationControlled").
		Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(launchURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	bf.browser = browser

	bf.logger.Info("browser fetcher ready", "stealth", cfg.Stealth, "headless", cfg.Headless)
	return bf, nil
}

// Fetch navigates to the URL and returns the rendered HTML. Runs are
// sequential, so a single tab is reused.
func (bf *BrowserFetcher) Fetch(ctx context.Context, req *types.Request) (*types.Response, error) {
	bf.mu.Lock()
	defer bf.mu.Unlock()

	start := time.Now()

	page, err := bf.getPage()
	if err != nil {
		return nil, &types.FetchError{URL: req.URLString(), Err: err, Retryable: true}
	}
	page = page.Context(ctx).Timeout(bf.cfg.Timeout)
	defer page.CancelTimeout()

	status := 0
	waitDocument := page.EachEvent(func(e *proto.NetworkResponseReceived) bool {
		code, ok := documentStatus(e)
		if ok {
			status = code
		}
		return ok
	})

	if err := page.Navigate(req.URLString()); err != nil {
		return nil, &types.FetchError{URL: req.URLString(), Err: err, Retryable: ctx.Err() == nil}
	}
	waitDocument()
	if status == 0 {
		if err := ctx.Err(); err != nil {
			return nil, &types.FetchError{URL: req.URLString(), Err: err}
		}
		// No document response (served from cache or a data: URL).
		status = 200
	}

	if err := page.WaitLoad(); err != nil {
		bf.logger.Warn("page load timeout, continuing", "url", req.URLString(), "error", err)
	}
	if err := page.WaitStable(300 * time.Millisecond); err != nil {
		bf.logger.Debug("page not stable, continuing", "url", req.URLString(), "error", err)
	}

	html, err := page.HTML()
	if err != nil {
		return nil, &types.FetchError{URL: req.URLString(), Err: err, Retryable: true}
	}

	finalURL := req.URLString()
	if info, err := page.Info(); err == nil && info != nil {
		finalURL = info.URL
	}

	duration := time.Since(start)
	resp := types.NewBrowserResponse(req, status, []byte(html), finalURL, duration)
	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	bf.logger.Debug("browser fetch complete",
		"url", req.URLString(),
		"final_url", finalURL,
		"size", len(html),
		"duration", duration,
	)

	return resp, nil
}

// documentStatus returns the HTTP status of a main-document response event.
func documentStatus(e *proto.NetworkResponseReceived) (int, bool) {
	if e == nil || e.Type != proto.NetworkResourceTypeDocument || e.Response == nil {
		return 0, false
	}
	return e.Response.Status, true
}

// checkStatus turns a non-2xx page into a retryable FetchError, the same
// way HTTPFetcher treats it.
func checkStatus(resp *types.Response) error {
	if resp.IsSuccess() {
		return nil
	}
	return &types.FetchError{
		URL:        resp.Request.URLString(),
		StatusCode: resp.StatusCode,
		Err:        fmt.Errorf("HTTP %d", resp.StatusCode),
		Retryable:  true,
	}
}

// getPage returns the shared tab, creating it on first use.
func (bf *BrowserFetcher) getPage() (*rod.Page, error) {
	if bf.page != nil {
		return bf.page, nil
	}

	var (
		page *rod.Page
		err  error
	)
	if bf.cfg.Stealth {
		page, err = stealth.Page(bf.browser)
	} else {
		page, err = bf.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	}
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}

	ua := bf.cfg.UserAgent
	if ua == "" {
		ua = config.DefaultUserAgent
	}
	if err := (proto.NetworkEnable{}).Call(page); err != nil {
		bf.logger.Warn("failed to enable network events", "error", err)
	}
	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent:      ua,
		AcceptLanguage: "id-ID,id;q=0.9,en;q=0.8",
	}); err != nil {
		bf.logger.Warn("failed to set user agent", "error", err)
	}

	bf.page = page
	return page, nil
}

// Close shuts down the browser.
func (bf *BrowserFetcher) Close() error {
	bf.mu.Lock()
	defer bf.mu.Unlock()
	if bf.page != nil {
		_ = bf.page.Close()
		bf.page = nil
	}
	if bf.browser != nil {
		return bf.browser.Close()
	}
	return nil
}

// Type returns the fetcher type identifier.
func (bf *BrowserFetcher) Type() string {
	return "browser"
}
