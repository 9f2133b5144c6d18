package storage

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/IshaanNene/BeritaKepri/internal/types"
)

// FileStorage buffers articles and writes them to one file on Close.
type FileStorage struct {
	path     string
	format   string
	articles []*types.Article
	mu       sync.Mutex
	logger   *slog.Logger
}

// NewFileStorage creates a file-backed export in the given format.
func NewFileStorage(format, outputPath string, logger *slog.Logger) (*FileStorage, error) {
	switch format {
	case FormatXLSX, FormatCSV, FormatJSON, FormatJSONL, FormatTable:
	default:
		return nil, &types.StorageError{Backend: format, Err: types.ErrUnsupportedFormat}
	}

	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	return &FileStorage{
		path:   outputPath,
		format: format,
		logger: logger.With("component", format+"_storage"),
	}, nil
}

func (s *FileStorage) Name() string { return s.format }

// Path returns the output file path.
func (s *FileStorage) Path() string { return s.path }

func (s *FileStorage) Store(articles []*types.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.articles = append(s.articles, articles...)
	s.logger.Debug("articles buffered", "count", len(articles), "total", len(s.articles))
	return nil
}

func (s *FileStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Create(s.path)
	if err != nil {
		return &types.StorageError{Backend: s.format, Err: fmt.Errorf("create output file: %w", err)}
	}

	if err := Encode(f, s.format, s.articles); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return &types.StorageError{Backend: s.format, Err: err}
	}

	s.logger.Info("export written", "path", s.path, "articles", len(s.articles))
	return nil
}
