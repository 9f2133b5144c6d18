package storage

import (
	"fmt"
	"time"

	"github.com/IshaanNene/BeritaKepri/internal/types"
)

// Storage is the interface for all export backends.
type Storage interface {
	// Store buffers a batch of articles.
	Store(articles []*types.Article) error

	// Close writes pending output and releases resources.
	Close() error

	// Name returns the storage backend identifier.
	Name() string
}

// Export formats.
const (
	FormatXLSX  = "xlsx"
	FormatCSV   = "csv"
	FormatJSON  = "json"
	FormatJSONL = "jsonl"
	FormatTable = "table"
)

// Extension returns the file extension for a format.
func Extension(format string) string {
	if format == FormatTable {
		return "txt"
	}
	return format
}

// ContentType returns the MIME type served for a format.
func ContentType(format string) string {
	switch format {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatJSON:
		return "application/json"
	case FormatJSONL:
		return "application/x-ndjson"
	default:
		return "text/plain; charset=utf-8"
	}
}

// FileName builds "<portal>_berita_<start>_to_<end>.<ext>".
func FileName(portal string, start, end time.Time, format string) string {
	return fmt.Sprintf("%s_berita_%s_to_%s.%s",
		portal, start.Format(types.DateLayout), end.Format(types.DateLayout), Extension(format))
}

// Classified reports whether any article carries categories, which adds
// the category column to tabular output.
func Classified(articles []*types.Article) bool {
	for _, a := range articles {
		if a.Classified() {
			return true
		}
	}
	return false
}
