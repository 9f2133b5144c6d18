package dashboard

import (
	"log/slog"
	"net/http"
)

// Dashboard serves the browser form for running a scrape: pick a portal,
// a date range and a page budget, see the articles and download them. It
// talks to the JSON API on the same origin.
type Dashboard struct {
	title  string
	logger *slog.Logger
}

// New creates a dashboard page.
func New(title string, logger *slog.Logger) *Dashboard {
	if title == "" {
		title = "Scraper Berita Kepulauan Riau"
	}
	return &Dashboard{
		title:  title,
		logger: logger.With("component", "dashboard"),
	}
}

func (d *Dashboard) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page.Execute(w, d); err != nil {
		d.logger.Error("render dashboard", "error", err)
	}
}

// Title is the page heading.
func (d *Dashboard) Title() string { return d.title }
