package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	if cfg.Fetcher.Type != "http" && cfg.Fetcher.Type != "browser" {
		return fmt.Errorf("fetcher.type must be 'http' or 'browser', got %q", cfg.Fetcher.Type)
	}
	if cfg.Fetcher.Timeout <= 0 {
		return fmt.Errorf("fetcher.timeout must be > 0")
	}
	if cfg.Fetcher.MaxRetries < 0 {
		return fmt.Errorf("fetcher.max_retries must be >= 0, got %d", cfg.Fetcher.MaxRetries)
	}
	if cfg.Fetcher.MaxRetries > 10 {
		return fmt.Errorf("fetcher.max_retries must be <= 10, got %d", cfg.Fetcher.MaxRetries)
	}
	if cfg.Fetcher.RetryDelay < 0 {
		return fmt.Errorf("fetcher.retry_delay must be >= 0")
	}
	if cfg.Fetcher.MaxBodySize <= 0 {
		return fmt.Errorf("fetcher.max_body_size must be > 0")
	}
	if cfg.Fetcher.MaxRedirects < 0 {
		return fmt.Errorf("fetcher.max_redirects must be >= 0")
	}

	if cfg.Extractor.MaxPagesLimit < 1 {
		return fmt.Errorf("extractor.max_pages_limit must be >= 1, got %d", cfg.Extractor.MaxPagesLimit)
	}
	if cfg.Extractor.DefaultMaxPages < 1 || cfg.Extractor.DefaultMaxPages > cfg.Extractor.MaxPagesLimit {
		return fmt.Errorf("extractor.default_max_pages must be 1-%d, got %d",
			cfg.Extractor.MaxPagesLimit, cfg.Extractor.DefaultMaxPages)
	}
	if cfg.Extractor.ArticleDelay < 0 {
		return fmt.Errorf("extractor.article_delay must be >= 0")
	}

	for i := range cfg.Portals {
		if cfg.Portals[i].ID == "" {
			return fmt.Errorf("portals[%d].id must not be empty", i)
		}
		if cfg.Portals[i].ListingURL != "" {
			if err := ValidateListingURL(cfg.Portals[i].ListingURL); err != nil {
				return fmt.Errorf("portals[%d] (%s): %w", i, cfg.Portals[i].ID, err)
			}
		}
		if f := cfg.Portals[i].DateFormat; f != "" && f != "iso" && f != "localized" {
			return fmt.Errorf("portals[%d].date_format must be 'iso' or 'localized', got %q", i, f)
		}
	}

	if cfg.Taxonomy.MinTokenLength < 0 || cfg.Taxonomy.SingleMinTokenLength < 0 {
		return fmt.Errorf("taxonomy token lengths must be >= 0")
	}
	for i, src := range cfg.Taxonomy.Sources {
		if src.Path == "" {
			return fmt.Errorf("taxonomy.sources[%d].path must not be empty", i)
		}
		if src.Side != "production" && src.Side != "expenditure" {
			return fmt.Errorf("taxonomy.sources[%d].side must be 'production' or 'expenditure', got %q", i, src.Side)
		}
		if src.Layout != "flat" && src.Layout != "hierarchical" {
			return fmt.Errorf("taxonomy.sources[%d].layout must be 'flat' or 'hierarchical', got %q", i, src.Layout)
		}
		if src.Layout == "hierarchical" && src.MarkerColumn == "" {
			return fmt.Errorf("taxonomy.sources[%d].marker_column is required for hierarchical layout", i)
		}
		if src.CategoryColumn == "" || src.DescriptionColumn == "" {
			return fmt.Errorf("taxonomy.sources[%d] needs category_column and description_column", i)
		}
	}

	validModes := map[string]bool{"none": true, "multi": true, "single": true}
	if !validModes[cfg.Classifier.Mode] {
		return fmt.Errorf("classifier.mode must be none/multi/single, got %q", cfg.Classifier.Mode)
	}
	if cfg.Classifier.TopN < 1 {
		return fmt.Errorf("classifier.top_n must be >= 1, got %d", cfg.Classifier.TopN)
	}
	if strings.TrimSpace(cfg.Classifier.Sentinel) == "" {
		return fmt.Errorf("classifier.sentinel must not be empty")
	}
	if cfg.Classifier.SingleSide != "production" && cfg.Classifier.SingleSide != "expenditure" {
		return fmt.Errorf("classifier.single_side must be 'production' or 'expenditure', got %q", cfg.Classifier.SingleSide)
	}
	if cfg.Classifier.SingleMatching != "word" && cfg.Classifier.SingleMatching != "substring" {
		return fmt.Errorf("classifier.single_matching must be 'word' or 'substring', got %q", cfg.Classifier.SingleMatching)
	}
	if cfg.Classifier.TieBreak != "order" && cfg.Classifier.TieBreak != "alpha" {
		return fmt.Errorf("classifier.tie_break must be 'order' or 'alpha', got %q", cfg.Classifier.TieBreak)
	}

	validStorageTypes := map[string]bool{
		"xlsx": true, "csv": true, "json": true, "jsonl": true, "table": true,
	}
	if !validStorageTypes[cfg.Storage.Type] {
		return fmt.Errorf("storage.type %q is not supported (valid: xlsx, csv, json, jsonl, table)", cfg.Storage.Type)
	}

	if cfg.API.Port < 1 || cfg.API.Port > 65535 {
		return fmt.Errorf("api.port must be 1-65535, got %d", cfg.API.Port)
	}
	if cfg.API.MaxResults < 1 {
		return fmt.Errorf("api.max_results must be >= 1, got %d", cfg.API.MaxResults)
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug/info/warn/error, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", cfg.Logging.Format)
	}

	if !strings.HasPrefix(cfg.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with '/', got %q", cfg.Metrics.Path)
	}
	if cfg.Metrics.Enabled {
		if cfg.Metrics.Port < 1 || cfg.Metrics.Port > 65535 {
			return fmt.Errorf("metrics.port must be 1-65535, got %d", cfg.Metrics.Port)
		}
	}

	return nil
}

// ValidateListingURL checks that a listing template is an absolute http(s)
// URL carrying the {page} placeholder.
func ValidateListingURL(template string) error {
	if !strings.Contains(template, "{page}") {
		return fmt.Errorf("listing URL %q has no {page} placeholder", template)
	}
	u, err := url.Parse(strings.ReplaceAll(template, "{page}", "1"))
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}
