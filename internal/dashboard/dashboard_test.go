package dashboard

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func TestDashboardRendersForm(t *testing.T) {
	d := New("", testLogger)
	rec := httptest.NewRecorder()
	d.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("unexpected content type %q", ct)
	}
	body := rec.Body.String()
	for _, want := range []string{"<title>Scraper Berita Kepulauan Riau</title>", `id="portal"`, "/api/scrape", `max="50"`} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestDashboardEscapesTitle(t *testing.T) {
	d := New("<b>Kepri</b>", testLogger)
	rec := httptest.NewRecorder()
	d.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if strings.Contains(rec.Body.String(), "<b>Kepri</b>") {
		t.Error("title must be HTML-escaped")
	}
}
