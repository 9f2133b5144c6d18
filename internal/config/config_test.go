package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := Validate(DefaultConfig()); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadExampleFile(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "beritakepri.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("example config invalid: %v", err)
	}
	if cfg.Extractor.ArticleDelay != 500*time.Millisecond {
		t.Errorf("article_delay = %s", cfg.Extractor.ArticleDelay)
	}
	if len(cfg.Taxonomy.Sources) != 2 || cfg.Taxonomy.Sources[1].Side != "expenditure" {
		t.Errorf("unexpected taxonomy sources %+v", cfg.Taxonomy.Sources)
	}
	if len(cfg.Portals) != 1 || cfg.Portals[0].ID != "batampos" {
		t.Errorf("unexpected portal overrides %+v", cfg.Portals)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	if err := os.WriteFile(path, []byte("fetcher:\n  max_retries: 4\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BERITAKEPRI_FETCHER_TYPE", "browser")
	t.Setenv("BERITAKEPRI_CLASSIFIER_MODE", "multi")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Fetcher.Type != "browser" || cfg.Classifier.Mode != "multi" {
		t.Errorf("env not applied: fetcher=%q mode=%q", cfg.Fetcher.Type, cfg.Classifier.Mode)
	}
	if cfg.Fetcher.MaxRetries != 4 {
		t.Errorf("file value not applied: %d", cfg.Fetcher.MaxRetries)
	}
	if cfg.Fetcher.Timeout != 15*time.Second {
		t.Errorf("default lost: %s", cfg.Fetcher.Timeout)
	}
}

func TestLoadBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	if err := os.WriteFile(path, []byte("fetcher: [\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"fetcher type", func(c *Config) { c.Fetcher.Type = "ftp" }, "fetcher.type"},
		{"default pages", func(c *Config) { c.Extractor.DefaultMaxPages = 51 }, "default_max_pages"},
		{"classifier mode", func(c *Config) { c.Classifier.Mode = "fuzzy" }, "classifier.mode"},
		{"storage", func(c *Config) { c.Storage.Type = "parquet" }, "storage.type"},
		{"taxonomy side", func(c *Config) {
			c.Taxonomy.Sources = []TaxonomySource{{Path: "a.csv", Side: "demand", Layout: "flat"}}
		}, "side"},
		{"hierarchical marker", func(c *Config) {
			c.Taxonomy.Sources = []TaxonomySource{{Path: "a.csv", Side: "production", Layout: "hierarchical",
				CategoryColumn: "a", DescriptionColumn: "b"}}
		}, "marker_column"},
		{"listing url", func(c *Config) {
			c.Portals = []PortalConfig{{ID: "x", ListingURL: "https://example.com/page/1"}}
		}, "{page}"},
		{"metrics path", func(c *Config) { c.Metrics.Path = "metrics" }, "metrics.path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := Validate(cfg)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestMarshal(t *testing.T) {
	out, err := Marshal(DefaultConfig())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(out), "sentinel: Tidak Terkategori") {
		t.Errorf("unexpected YAML:\n%s", out)
	}
}
