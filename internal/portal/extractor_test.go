package portal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/IshaanNene/BeritaKepri/internal/config"
	"github.com/IshaanNene/BeritaKepri/internal/dates"
	"github.com/IshaanNene/BeritaKepri/internal/fetcher"
	"github.com/IshaanNene/BeritaKepri/internal/observability"
	"github.com/IshaanNene/BeritaKepri/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

// fakeSite serves fixed pages by path and counts hits.
type fakeSite struct {
	mu     sync.Mutex
	pages  map[string]string
	failed map[string]bool
	hits   map[string]int
}

func newFakeSite() *fakeSite {
	return &fakeSite{
		pages:  make(map[string]string),
		failed: make(map[string]bool),
		hits:   make(map[string]int),
	}
}

func (s *fakeSite) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.hits[r.URL.Path]++
	body, ok := s.pages[r.URL.Path]
	failed := s.failed[r.URL.Path]
	s.mu.Unlock()

	if failed {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, body)
}

func (s *fakeSite) hitCount(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

func newTestExtractor(t *testing.T, p config.PortalConfig, metrics *observability.Metrics) *Extractor {
	t.Helper()
	cfg := config.DefaultConfig().Fetcher
	cfg.Timeout = 2 * time.Second
	f := fetcher.NewRetryFetcher(fetcher.NewHTTPFetcher(&cfg, testLogger), 2, 0, metrics, testLogger)
	ex, err := NewExtractor(p, f, Options{}, metrics, testLogger)
	if err != nil {
		t.Fatalf("new extractor: %v", err)
	}
	return ex
}

func august() Query {
	return Query{
		Start:    time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC),
		End:      time.Date(2025, time.August, 31, 0, 0, 0, 0, time.UTC),
		MaxPages: 5,
	}
}

const emptyListing = `<html><body><p>Tidak ada berita.</p></body></html>`

func listingDatePortal(base string) config.PortalConfig {
	return config.PortalConfig{
		ID:                  "listing-date",
		ListingURL:          base + "/kanal/page/{page}/",
		ContainerSelector:   "article",
		TitleSelector:       "h4.entry-title a",
		DateAtListing:       true,
		DateSelector:        "span.mg-blog-date",
		DateFormat:          "localized",
		DetailTitleSelector: "h1.entry-title",
		ContentSelector:     "div.entry-content",
	}
}

func TestExtractListingDateFiltersBeforeDetailFetch(t *testing.T) {
	site := newFakeSite()
	srv := httptest.NewServer(site)
	defer srv.Close()

	site.pages["/kanal/page/1/"] = `<html><body>
<article><h4 class="entry-title"><a href="/berita/a">A</a></h4><span class="mg-blog-date">12 Agustus 2025 7:11 PM</span></article>
<article><h4 class="entry-title"><a href="/berita/b">B</a></h4><span class="mg-blog-date">15 September 2025 8:00 AM</span></article>
<article><h4 class="entry-title"><a href="/berita/c">C</a></h4><span class="mg-blog-date">kemarin sore</span></article>
<article><h4 class="entry-title">Tanpa tautan</h4><span class="mg-blog-date">13 Agustus 2025</span></article>
<article><h4 class="entry-title"><a href="/berita/e">E</a></h4></article>
</body></html>`
	site.pages["/kanal/page/2/"] = emptyListing
	site.pages["/berita/a"] = `<html><body><h1 class="entry-title">Harga Cabai Naik</h1>
<div class="entry-content"><p>Harga cabai di pasar naik.</p><p>Pedagang mengeluh.</p></div></body></html>`
	site.pages["/berita/b"] = `<html><body><h1 class="entry-title">B</h1></body></html>`
	site.pages["/berita/c"] = `<html><body><h1 class="entry-title">C</h1></body></html>`

	metrics := observability.NewMetrics(testLogger)
	ex := newTestExtractor(t, listingDatePortal(srv.URL), metrics)

	q := august()
	articles, err := ex.Extract(context.Background(), q)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(articles) != 1 {
		t.Fatalf("expected 1 article, got %d", len(articles))
	}

	a := articles[0]
	if a.Title != "Harga Cabai Naik" {
		t.Errorf("unexpected title %q", a.Title)
	}
	if a.Body != "Harga cabai di pasar naik. Pedagang mengeluh." {
		t.Errorf("unexpected body %q", a.Body)
	}
	if a.URL != srv.URL+"/berita/a" {
		t.Errorf("unexpected url %q", a.URL)
	}
	if a.Portal != "listing-date" {
		t.Errorf("unexpected portal %q", a.Portal)
	}
	for _, art := range articles {
		if art.PublishedDate == nil || !dates.InRange(*art.PublishedDate, q.Start, q.End) {
			t.Errorf("article %s outside range", art.URL)
		}
	}

	if site.hitCount("/berita/b") != 0 || site.hitCount("/berita/c") != 0 || site.hitCount("/berita/e") != 0 {
		t.Error("filtered articles must not be fetched")
	}

	stats := ex.Stats()
	if stats.OutOfRange != 1 || stats.DatesUnparseable != 1 || stats.DatesMissing != 1 || stats.MissingLinks != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
	if metrics.DateParseFailures.Load() != 1 {
		t.Errorf("expected 1 date parse failure metric, got %d", metrics.DateParseFailures.Load())
	}
}

func TestExtractDetailDateAndTitleFallbacks(t *testing.T) {
	site := newFakeSite()
	srv := httptest.NewServer(site)
	defer srv.Close()

	p := config.PortalConfig{
		ID:                "detail-date",
		ListingURL:        srv.URL + "/kanal/page/{page}",
		ContainerSelector: "article",
		TitleSelector:     "h2.entry-title a",
		TitleAttr:         "title",
		TitleTrimPrefixes: []string{"Tautan ke: "},
		DateSelector:      "time.entry-date",
		DateAttr:          "datetime",
		DateFormat:        "iso",
		ContentSelector:   "div.content",
	}

	site.pages["/kanal/page/1"] = `<html><body>
<article><h2 class="entry-title"><a href="/x" title="Tautan ke: Festival Pulau Penyengat">x</a></h2></article>
<article><h2 class="entry-title"><a href="/y" title="Lama">y</a></h2></article>
<article><h2 class="entry-title"><a href="/z"></a></h2></article>
</body></html>`
	site.pages["/kanal/page/2"] = emptyListing
	site.pages["/x"] = `<html><body><time class="entry-date" datetime="2025-08-05T10:00:00+07:00">5 Agustus</time>
<div class="content">Festival   budaya digelar <script>track()</script>meriah.</div></body></html>`
	site.pages["/y"] = `<html><body><time class="entry-date" datetime="2025-07-01T10:00:00+07:00"></time></body></html>`
	site.pages["/z"] = `<html><body><time class="entry-date" datetime="2025-08-20"></time></body></html>`

	ex := newTestExtractor(t, p, nil)
	articles, err := ex.Extract(context.Background(), august())
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(articles))
	}

	if articles[0].Title != "Festival Pulau Penyengat" {
		t.Errorf("listing title fallback failed: %q", articles[0].Title)
	}
	if articles[0].Body != "Festival budaya digelar meriah." {
		t.Errorf("unexpected whole-container body %q", articles[0].Body)
	}
	if articles[0].DateString() != "2025-08-05" {
		t.Errorf("unexpected date %q", articles[0].DateString())
	}

	if articles[1].Title != types.UntitledPlaceholder {
		t.Errorf("expected placeholder title, got %q", articles[1].Title)
	}
	if articles[1].Body != "" {
		t.Errorf("missing content container should give empty body, got %q", articles[1].Body)
	}
	if ex.Stats().OutOfRange != 1 {
		t.Errorf("expected 1 out-of-range article, got %d", ex.Stats().OutOfRange)
	}
}

func TestExtractMetadataDateFallback(t *testing.T) {
	site := newFakeSite()
	srv := httptest.NewServer(site)
	defer srv.Close()

	p := config.PortalConfig{
		ID:                "meta-date",
		ListingURL:        srv.URL + "/kanal/page/{page}",
		ContainerSelector: "article",
		TitleSelector:     "a",
		DateSelector:      "span.tanggal",
		DateFormat:        "localized",
		ContentSelector:   "div.content",
	}
	site.pages["/kanal/page/1"] = `<html><body><article><a href="/m">M</a></article></body></html>`
	site.pages["/kanal/page/2"] = emptyListing
	site.pages["/m"] = `<html><head><meta property="article:published_time" content="2025-08-18T07:00:00+07:00"></head>
<body><div class="content"><p>Isi.</p></div></body></html>`

	cfg := config.DefaultConfig().Fetcher
	f := fetcher.NewRetryFetcher(fetcher.NewHTTPFetcher(&cfg, testLogger), 0, 0, nil, testLogger)

	without, err := NewExtractor(p, f, Options{}, nil, testLogger)
	if err != nil {
		t.Fatalf("new extractor: %v", err)
	}
	articles, err := without.Extract(context.Background(), august())
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(articles) != 0 || without.Stats().DatesMissing != 1 {
		t.Fatalf("missing date should drop the article, got %d", len(articles))
	}

	with, err := NewExtractor(p, f, Options{MetadataDates: true}, nil, testLogger)
	if err != nil {
		t.Fatalf("new extractor: %v", err)
	}
	articles, err = with.Extract(context.Background(), august())
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(articles) != 1 || articles[0].DateString() != "2025-08-18" {
		t.Fatalf("expected the metadata date to be used, got %d articles", len(articles))
	}
}

func TestExtractStopsAtEmptyListing(t *testing.T) {
	site := newFakeSite()
	srv := httptest.NewServer(site)
	defer srv.Close()

	site.pages["/kanal/page/1/"] = emptyListing
	site.pages["/kanal/page/2/"] = `<html><body><article><h4 class="entry-title"><a href="/d">D</a></h4></article></body></html>`

	ex := newTestExtractor(t, listingDatePortal(srv.URL), nil)
	articles, err := ex.Extract(context.Background(), august())
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(articles) != 0 {
		t.Errorf("expected no articles, got %d", len(articles))
	}
	if site.hitCount("/kanal/page/2/") != 0 || site.hitCount("/d") != 0 {
		t.Error("paging must stop at the first empty listing")
	}
}

func TestExtractSkipsFailingListingPage(t *testing.T) {
	site := newFakeSite()
	srv := httptest.NewServer(site)
	defer srv.Close()

	site.failed["/kanal/page/1/"] = true
	site.pages["/kanal/page/2/"] = `<html><body><article><h4 class="entry-title"><a href="/ok">OK</a></h4><span class="mg-blog-date">2 Agustus 2025</span></article></body></html>`
	site.pages["/kanal/page/3/"] = emptyListing
	site.pages["/ok"] = `<html><body><h1 class="entry-title">Berhasil</h1><div class="entry-content"><p>Isi.</p></div></body></html>`

	ex := newTestExtractor(t, listingDatePortal(srv.URL), nil)
	articles, err := ex.Extract(context.Background(), august())
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if got := site.hitCount("/kanal/page/1/"); got != 3 {
		t.Errorf("expected 3 attempts on failing page, got %d", got)
	}
	if len(articles) != 1 || articles[0].Title != "Berhasil" {
		t.Fatalf("expected the page 2 article, got %+v", articles)
	}
	if ex.Stats().PagesFailed != 1 || ex.Stats().PagesFetched != 1 {
		t.Errorf("unexpected page stats %+v", ex.Stats())
	}
}

func TestExtractSkipsFailingDetail(t *testing.T) {
	site := newFakeSite()
	srv := httptest.NewServer(site)
	defer srv.Close()

	site.pages["/kanal/page/1/"] = `<html><body>
<article><h4 class="entry-title"><a href="/hilang">Hilang</a></h4><span class="mg-blog-date">2 Agustus 2025</span></article>
<article><h4 class="entry-title"><a href="/ada">Ada</a></h4><span class="mg-blog-date">3 Agustus 2025</span></article>
</body></html>`
	site.pages["/kanal/page/2/"] = emptyListing
	site.pages["/ada"] = `<html><body><div class="entry-content"><p>Isi.</p></div></body></html>`

	ex := newTestExtractor(t, listingDatePortal(srv.URL), nil)
	articles, err := ex.Extract(context.Background(), august())
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(articles) != 1 || articles[0].Title != "Ada" {
		t.Fatalf("expected only the reachable article, got %+v", articles)
	}
	if ex.Stats().DetailFailures != 1 {
		t.Errorf("expected 1 detail failure, got %d", ex.Stats().DetailFailures)
	}
}

func TestExtractWithoutRangeKeepsUnknownDates(t *testing.T) {
	site := newFakeSite()
	srv := httptest.NewServer(site)
	defer srv.Close()

	site.pages["/kanal/page/1/"] = `<html><body><article><h4 class="entry-title"><a href="/n">N</a></h4></article></body></html>`
	site.pages["/n"] = `<html><body><div class="entry-content"><p>Isi.</p></div></body></html>`

	ex := newTestExtractor(t, listingDatePortal(srv.URL), nil)
	articles, err := ex.Extract(context.Background(), Query{MaxPages: 1})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(articles) != 1 || articles[0].PublishedDate != nil {
		t.Fatalf("expected one undated article, got %+v", articles)
	}
}

func TestExtractExclusions(t *testing.T) {
	site := newFakeSite()
	srv := httptest.NewServer(site)
	defer srv.Close()

	p := listingDatePortal(srv.URL)
	p.ContainerSelector = "div.td-module-meta-info"
	p.TitleSelector = "p.entry-title a"
	p.Exclusions = []config.ExclusionRule{{Ancestor: "div#tdi_113"}, {XPath: "ancestor::aside"}}

	site.pages["/kanal/page/1/"] = `<html><body>
<div id="tdi_113"><div class="td-module-meta-info"><p class="entry-title"><a href="/pop">Populer</a></p><span class="mg-blog-date">2 Agustus 2025</span></div></div>
<aside><div class="td-module-meta-info"><p class="entry-title"><a href="/side">Samping</a></p><span class="mg-blog-date">2 Agustus 2025</span></div></aside>
<div class="td-module-meta-info"><p class="entry-title"><a href="/utama">Utama</a></p><span class="mg-blog-date">2 Agustus 2025</span></div>
</body></html>`
	site.pages["/kanal/page/2/"] = emptyListing
	site.pages["/utama"] = `<html><body><h1 class="entry-title">Utama</h1></body></html>`

	ex := newTestExtractor(t, p, nil)
	articles, err := ex.Extract(context.Background(), august())
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(articles) != 1 || articles[0].Title != "Utama" {
		t.Fatalf("expected only the main article, got %+v", articles)
	}
	if site.hitCount("/pop") != 0 || site.hitCount("/side") != 0 {
		t.Error("excluded containers must not be fetched")
	}
	if ex.Stats().ContainersExcluded != 2 {
		t.Errorf("expected 2 excluded containers, got %d", ex.Stats().ContainersExcluded)
	}
}

func TestExtractCancelled(t *testing.T) {
	site := newFakeSite()
	srv := httptest.NewServer(site)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ex := newTestExtractor(t, listingDatePortal(srv.URL), nil)
	articles, err := ex.Extract(ctx, august())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(articles) != 0 {
		t.Errorf("expected no articles, got %d", len(articles))
	}
}

func TestPageURL(t *testing.T) {
	if got := PageURL("https://presmedia.id/kanal/tanjungpinang/page/{page}", 3); got != "https://presmedia.id/kanal/tanjungpinang/page/3" {
		t.Errorf("unexpected page URL %q", got)
	}
}
