package portal

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/IshaanNene/BeritaKepri/internal/config"
	"github.com/IshaanNene/BeritaKepri/internal/dates"
	"github.com/IshaanNene/BeritaKepri/internal/fetcher"
	"github.com/IshaanNene/BeritaKepri/internal/observability"
	"github.com/IshaanNene/BeritaKepri/internal/parser"
	"github.com/IshaanNene/BeritaKepri/internal/types"
)

// Query bounds one extraction run. A zero Start or End disables the date
// filter, in which case articles with unknown dates are kept.
type Query struct {
	Start    time.Time
	End      time.Time
	MaxPages int
}

// HasRange reports whether the date filter is active.
func (q Query) HasRange() bool {
	return !q.Start.IsZero() && !q.End.IsZero()
}

// Options tune an Extractor.
type Options struct {
	// ArticleDelay is the pause after each kept article.
	ArticleDelay time.Duration
	// ReadabilityFallback extracts the body with readability when the
	// content selector matches nothing.
	ReadabilityFallback bool
	// MetadataDates reads the date from JSON-LD or meta tags when the
	// detail page's date selector finds nothing.
	MetadataDates bool
}

// Stats counts what happened during one Extract call.
type Stats struct {
	PagesFetched       int `json:"pages_fetched"`
	PagesFailed        int `json:"pages_failed"`
	ContainersSeen     int `json:"containers_seen"`
	ContainersExcluded int `json:"containers_excluded"`
	MissingLinks       int `json:"missing_links"`
	DatesMissing       int `json:"dates_missing"`
	DatesUnparseable   int `json:"dates_unparseable"`
	OutOfRange         int `json:"out_of_range"`
	DetailFailures     int `json:"detail_failures"`
	ArticlesExtracted  int `json:"articles_extracted"`
	// ArticlesKept is what remains after the pipeline; the engine sets it.
	ArticlesKept int `json:"articles_kept"`
}

// Extractor runs the listing/detail algorithm for one portal.
type Extractor struct {
	portal   config.PortalConfig
	fetcher  fetcher.Fetcher
	excluder *parser.Excluder
	opts     Options
	metrics  *observability.Metrics
	logger   *slog.Logger
	stats    Stats
}

// NewExtractor creates an Extractor. metrics may be nil.
func NewExtractor(p config.PortalConfig, f fetcher.Fetcher, opts Options, metrics *observability.Metrics, logger *slog.Logger) (*Extractor, error) {
	excluder, err := parser.NewExcluder(p.Exclusions)
	if err != nil {
		return nil, err
	}
	return &Extractor{
		portal:   p,
		fetcher:  f,
		excluder: excluder,
		opts:     opts,
		metrics:  metrics,
		logger:   logger.With("component", "extractor", "portal", p.ID),
	}, nil
}

// Stats returns the counters of the last Extract call.
func (e *Extractor) Stats() Stats {
	return e.stats
}

// PageURL substitutes the page number into a listing template.
func PageURL(template string, page int) string {
	return strings.ReplaceAll(template, "{page}", strconv.Itoa(page))
}

// Extract walks listing pages 1..q.MaxPages and returns the articles that
// pass the date filter, in listing order. Fetch and markup problems skip
// the page or entry; the only error is context cancellation, returned
// together with the articles gathered so far.
func (e *Extractor) Extract(ctx context.Context, q Query) ([]*types.Article, error) {
	e.stats = Stats{}
	var articles []*types.Article

	for page := 1; page <= q.MaxPages; page++ {
		if err := ctx.Err(); err != nil {
			return articles, err
		}

		listingURL := PageURL(e.portal.ListingURL, page)
		e.logger.Info("scraping listing page", "page", page, "url", listingURL)

		doc, _, err := e.fetchDocument(ctx, listingURL, types.TagListing, page)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return articles, ctxErr
			}
			e.stats.PagesFailed++
			e.count(func(m *observability.Metrics) { m.ListingPagesFailed.Add(1) })
			e.logger.Warn("skipping listing page", "page", page, "url", listingURL, "stage", "listing", "error", err)
			continue
		}

		containers := doc.Find(e.portal.ContainerSelector)
		if containers.Length() == 0 {
			e.logger.Info("no articles on listing page, stopping", "page", page, "url", listingURL)
			break
		}
		e.stats.PagesFetched++
		e.count(func(m *observability.Metrics) { m.ListingPages.Add(1) })

		for i := 0; i < containers.Length(); i++ {
			article, err := e.extractEntry(ctx, containers.Eq(i), listingURL, q)
			if err != nil {
				return articles, err
			}
			if article == nil {
				continue
			}

			articles = append(articles, article)
			e.stats.ArticlesExtracted++
			e.logger.Info("article extracted", "title", article.Title, "date", article.DateString(), "url", article.URL)

			if err := fetcher.Sleep(ctx, e.opts.ArticleDelay); err != nil {
				return articles, err
			}
		}
	}

	return articles, nil
}

// extractEntry turns one listing container into an Article. A nil article
// with a nil error means the entry was skipped.
func (e *Extractor) extractEntry(ctx context.Context, container *goquery.Selection, listingURL string, q Query) (*types.Article, error) {
	e.stats.ContainersSeen++
	e.count(func(m *observability.Metrics) { m.ArticlesSeen.Add(1) })

	if rule := e.excluder.Excluded(container); rule != "" {
		e.stats.ContainersExcluded++
		e.count(func(m *observability.Metrics) { m.ArticlesSkipped.Add(1) })
		e.logger.Debug("container excluded", "rule", rule)
		return nil, nil
	}

	href, ok := parser.FirstValue(container, e.portal.TitleSelector, "href")
	if !ok || href == "" {
		e.stats.MissingLinks++
		e.count(func(m *observability.Metrics) { m.ArticlesSkipped.Add(1) })
		e.logger.Debug("container has no article link", "selector", e.portal.TitleSelector)
		return nil, nil
	}
	link, err := parser.ResolveURL(listingURL, href)
	if err != nil {
		e.stats.MissingLinks++
		e.count(func(m *observability.Metrics) { m.ArticlesSkipped.Add(1) })
		e.logger.Warn("bad article link", "href", href, "error", err)
		return nil, nil
	}

	var published *time.Time
	if e.portal.DateAtListing {
		published, err = e.readDate(container, link)
		if !e.keepDate(published, err, link, q) {
			return nil, nil
		}
	}

	doc, resp, err := e.fetchDocument(ctx, link, types.TagDetail, 0)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		e.stats.DetailFailures++
		e.count(func(m *observability.Metrics) { m.DetailPagesFailed.Add(1) })
		e.logger.Warn("skipping article", "url", link, "stage", "detail", "error", err)
		return nil, nil
	}

	if !e.portal.DateAtListing {
		published, err = e.readDate(doc.Selection, link)
		if errors.Is(err, types.ErrDateMissing) && e.opts.MetadataDates {
			published, err = e.metadataDate(doc, link)
		}
		if !e.keepDate(published, err, link, q) {
			return nil, nil
		}
	}

	article := types.NewArticle(e.portal.ID, link)
	article.PublishedDate = published
	article.Title = e.title(doc, container)
	article.Body = e.body(doc, resp, link)
	return article, nil
}

// fetchDocument fetches a page and parses it.
func (e *Extractor) fetchDocument(ctx context.Context, rawURL, tag string, page int) (*goquery.Document, *types.Response, error) {
	req, err := types.NewRequest(rawURL)
	if err != nil {
		return nil, nil, err
	}
	req.Tag = tag
	req.Portal = e.portal.ID
	req.Page = page

	resp, err := e.fetcher.Fetch(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	doc, err := resp.Document()
	if err != nil {
		return nil, nil, &types.ParseError{URL: rawURL, Err: err}
	}
	return doc, resp, nil
}

// readDate reads and parses the portal's date field under sel.
func (e *Extractor) readDate(sel *goquery.Selection, link string) (*time.Time, error) {
	raw, ok := parser.FirstValue(sel, e.portal.DateSelector, e.portal.DateAttr)
	if !ok || raw == "" {
		return nil, &types.ParseError{URL: link, Selector: e.portal.DateSelector, Err: types.ErrDateMissing}
	}
	d, err := dates.Parse(raw, dates.Format(e.portal.DateFormat))
	if err != nil {
		return nil, &types.ParseError{URL: link, Selector: e.portal.DateSelector, Err: err}
	}
	return &d, nil
}

// metadataDate reads the timestamp the page declares in its metadata.
func (e *Extractor) metadataDate(doc *goquery.Document, link string) (*time.Time, error) {
	raw := parser.PublishedTime(doc.Selection)
	if raw == "" {
		return nil, &types.ParseError{URL: link, Selector: "metadata", Err: types.ErrDateMissing}
	}
	d, err := dates.ParseISO(raw)
	if err != nil {
		return nil, &types.ParseError{URL: link, Selector: "metadata", Err: err}
	}
	e.logger.Debug("date read from page metadata", "url", link, "date", d.Format(types.DateLayout))
	return &d, nil
}

// keepDate applies the date filter. Without a range every entry is kept
// and an unknown date stays nil.
func (e *Extractor) keepDate(published *time.Time, err error, link string, q Query) bool {
	if err != nil {
		switch {
		case errors.Is(err, types.ErrDateParse):
			e.stats.DatesUnparseable++
			e.count(func(m *observability.Metrics) { m.DateParseFailures.Add(1) })
			e.logger.Warn("unparseable date", "url", link, "stage", "date", "error", err)
		default:
			e.stats.DatesMissing++
			e.logger.Debug("date not found", "url", link, "stage", "date")
		}
	}
	if !q.HasRange() {
		return true
	}
	if published == nil {
		return false
	}
	if !dates.InRange(*published, q.Start, q.End) {
		e.stats.OutOfRange++
		e.count(func(m *observability.Metrics) { m.ArticlesOutOfRange.Add(1) })
		e.logger.Debug("article outside date range", "url", link, "date", published.Format(types.DateLayout))
		return false
	}
	return true
}

// title prefers the detail heading, then the listing title, then the
// placeholder.
func (e *Extractor) title(doc *goquery.Document, container *goquery.Selection) string {
	if t := parser.FirstText(doc.Selection, e.portal.DetailTitleSelector); t != "" {
		return t
	}
	t, ok := parser.FirstValue(container, e.portal.TitleSelector, e.portal.TitleAttr)
	if !ok && e.portal.TitleAttr != "" {
		t, ok = parser.FirstValue(container, e.portal.TitleSelector, "")
	}
	if ok {
		t = parser.TrimPrefixes(t, e.portal.TitleTrimPrefixes)
	}
	if t == "" {
		return types.UntitledPlaceholder
	}
	return t
}

func (e *Extractor) body(doc *goquery.Document, resp *types.Response, link string) string {
	body, found := parser.ExtractBody(doc.Selection, parser.BodyOptions{
		Container: e.portal.ContentSelector,
		Remove:    e.portal.ContentRemove,
		Paragraph: e.portal.ParagraphSelector,
	})
	if found || !e.opts.ReadabilityFallback {
		return body
	}
	text, err := parser.ReadableText(resp.Body, link)
	if err != nil {
		e.logger.Debug("readability fallback failed", "url", link, "error", err)
		return ""
	}
	return text
}

func (e *Extractor) count(fn func(m *observability.Metrics)) {
	if e.metrics != nil {
		fn(e.metrics)
	}
}
