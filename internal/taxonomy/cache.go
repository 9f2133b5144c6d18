package taxonomy

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/IshaanNene/BeritaKepri/internal/config"
)

// Cache keeps loaded taxonomies for the life of the process. An entry is
// rebuilt when a source file's size or modification time changes, or
// after Invalidate.
type Cache struct {
	sources []config.TaxonomySource
	logger  *slog.Logger

	mu      sync.Mutex
	entries map[string]*Taxonomy
	prints  map[string]fingerprint
	loads   int
}

type fingerprint struct {
	size    int64
	modTime time.Time
}

// NewCache creates a cache over the given sources.
func NewCache(sources []config.TaxonomySource, logger *slog.Logger) *Cache {
	return &Cache{
		sources: sources,
		logger:  logger.With("component", "taxonomy_cache"),
		entries: make(map[string]*Taxonomy),
	}
}

// Get returns the taxonomy for side ("" for all sources) built with the
// given token length threshold, loading it if needed.
func (c *Cache) Get(side string, minLen int) (*Taxonomy, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prints := c.fingerprints()
	if !samePrints(prints, c.prints) {
		if c.prints != nil {
			c.logger.Info("taxonomy sources changed, reloading")
		}
		c.entries = make(map[string]*Taxonomy)
		c.prints = prints
	}

	key := fmt.Sprintf("%s/%d", side, minLen)
	if tax, ok := c.entries[key]; ok {
		return tax, nil
	}

	tax, err := LoadSide(c.sources, side, minLen)
	if err != nil {
		return nil, err
	}
	c.loads++
	c.entries[key] = tax
	c.logger.Info("taxonomy loaded", "side", side, "categories", tax.Len())
	return tax, nil
}

// Invalidate drops every cached taxonomy.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*Taxonomy)
	c.prints = nil
}

// Loads returns how many times a taxonomy was read from disk.
func (c *Cache) Loads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loads
}

// Sources returns the configured sources.
func (c *Cache) Sources() []config.TaxonomySource {
	return append([]config.TaxonomySource(nil), c.sources...)
}

// Watch invalidates the cache whenever a source file is written, renamed
// or removed, until ctx is done. Directories are watched so editors that
// replace files atomically are seen.
func (c *Cache) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	files := make(map[string]bool)
	dirs := make(map[string]bool)
	for _, src := range c.sources {
		abs, err := filepath.Abs(src.Path)
		if err != nil {
			continue
		}
		files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !files[filepath.Clean(ev.Name)] {
					continue
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) || ev.Has(fsnotify.Remove) {
					c.logger.Info("taxonomy source changed", "path", ev.Name, "op", ev.Op.String())
					c.Invalidate()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				c.logger.Warn("taxonomy watcher error", "error", err)
			}
		}
	}()
	return nil
}

func (c *Cache) fingerprints() map[string]fingerprint {
	prints := make(map[string]fingerprint, len(c.sources))
	for _, src := range c.sources {
		info, err := os.Stat(src.Path)
		if err != nil {
			prints[src.Path] = fingerprint{size: -1}
			continue
		}
		prints[src.Path] = fingerprint{size: info.Size(), modTime: info.ModTime()}
	}
	return prints
}

func samePrints(a, b map[string]fingerprint) bool {
	if a == nil || b == nil || len(a) != len(b) {
		return false
	}
	for k, v := range a {
		w, ok := b[k]
		if !ok || v.size != w.size || !v.modTime.Equal(w.modTime) {
			return false
		}
	}
	return true
}
