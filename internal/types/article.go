package types

import (
	"encoding/json"
	"strings"
	"time"
)

// UntitledPlaceholder is used when neither the detail page nor the listing
// carries a usable title.
const UntitledPlaceholder = "Tanpa Judul"

// DateLayout is how publication dates are rendered in exports.
const DateLayout = "2006-01-02"

// Export column headers, in presentation order.
const (
	ColumnCategory = "Kategori"
	ColumnDate     = "Tanggal"
	ColumnTitle    = "Judul"
	ColumnBody     = "Isi"
	ColumnLink     = "Link"
)

// Article is one news item pulled from a portal.
type Article struct {
	Title string

	// URL is the detail page link and the de-facto identity of the record.
	URL string

	// PublishedDate is a calendar date at midnight UTC, nil when unknown.
	PublishedDate *time.Time

	// Body is the cleaned paragraph text joined by single spaces.
	Body string

	// Categories is nil until classification runs.
	Categories []string

	// Portal is the ID of the portal that produced the record.
	Portal string
}

// NewArticle creates an Article for a detail URL.
func NewArticle(portal, link string) *Article {
	return &Article{URL: link, Portal: portal}
}

// Classified reports whether classification has annotated the article.
func (a *Article) Classified() bool {
	return a.Categories != nil
}

// DateString renders the publication date, or "" when unknown.
func (a *Article) DateString() string {
	if a.PublishedDate == nil {
		return ""
	}
	return a.PublishedDate.Format(DateLayout)
}

// CategoryString joins the category labels for tabular output.
func (a *Article) CategoryString() string {
	return strings.Join(a.Categories, ", ")
}

// Headers returns the export column headers. The category column is
// present only when classification ran.
func Headers(classified bool) []string {
	if classified {
		return []string{ColumnCategory, ColumnDate, ColumnTitle, ColumnBody, ColumnLink}
	}
	return []string{ColumnDate, ColumnTitle, ColumnBody, ColumnLink}
}

// Row returns the article's cells in the order of Headers(classified).
func (a *Article) Row(classified bool) []string {
	row := make([]string, 0, 5)
	if classified {
		row = append(row, a.CategoryString())
	}
	return append(row, a.DateString(), a.Title, a.Body, a.URL)
}

// MarshalJSON renders the date as YYYY-MM-DD and omits categories when
// classification did not run.
func (a *Article) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Portal     string   `json:"portal"`
		Date       string   `json:"date,omitempty"`
		Title      string   `json:"title"`
		Body       string   `json:"body"`
		URL        string   `json:"url"`
		Categories []string `json:"categories,omitempty"`
	}{
		Portal:     a.Portal,
		Date:       a.DateString(),
		Title:      a.Title,
		Body:       a.Body,
		URL:        a.URL,
		Categories: a.Categories,
	})
}
