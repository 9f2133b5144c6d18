package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// DefaultUserAgent is the browser-like agent sent with every portal request.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Config is the root configuration for BeritaKepri.
type Config struct {
	Fetcher    FetcherConfig    `mapstructure:"fetcher"    yaml:"fetcher"`
	Extractor  ExtractorConfig  `mapstructure:"extractor"  yaml:"extractor"`
	Portals    []PortalConfig   `mapstructure:"portals"    yaml:"portals,omitempty"`
	Taxonomy   TaxonomyConfig   `mapstructure:"taxonomy"   yaml:"taxonomy"`
	Classifier ClassifierConfig `mapstructure:"classifier" yaml:"classifier"`
	Storage    StorageConfig    `mapstructure:"storage"    yaml:"storage"`
	API        APIConfig        `mapstructure:"api"        yaml:"api"`
	Logging    LoggingConfig    `mapstructure:"logging"    yaml:"logging"`
	Metrics    MetricsConfig    `mapstructure:"metrics"    yaml:"metrics"`
}

// FetcherConfig controls page retrieval.
type FetcherConfig struct {
	Type            string        `mapstructure:"type"             yaml:"type"`
	UserAgent       string        `mapstructure:"user_agent"       yaml:"user_agent"`
	Timeout         time.Duration `mapstructure:"timeout"          yaml:"timeout"`
	MaxRetries      int           `mapstructure:"max_retries"      yaml:"max_retries"`
	RetryDelay      time.Duration `mapstructure:"retry_delay"      yaml:"retry_delay"`
	MaxBodySize     int64         `mapstructure:"max_body_size"    yaml:"max_body_size"`
	FollowRedirects bool          `mapstructure:"follow_redirects" yaml:"follow_redirects"`
	MaxRedirects    int           `mapstructure:"max_redirects"    yaml:"max_redirects"`
	Stealth         bool          `mapstructure:"stealth"          yaml:"stealth"`
	Headless        bool          `mapstructure:"headless"         yaml:"headless"`
}

// ExtractorConfig controls listing pagination and detail pacing.
type ExtractorConfig struct {
	DefaultMaxPages     int           `mapstructure:"default_max_pages"    yaml:"default_max_pages"`
	MaxPagesLimit       int           `mapstructure:"max_pages_limit"      yaml:"max_pages_limit"`
	ArticleDelay        time.Duration `mapstructure:"article_delay"        yaml:"article_delay"`
	ReadabilityFallback bool          `mapstructure:"readability_fallback" yaml:"readability_fallback"`
	MetadataDates       bool          `mapstructure:"metadata_dates"       yaml:"metadata_dates"`
}

// PortalConfig describes where a portal keeps its listing and article data.
// The same extraction algorithm runs against every record.
type PortalConfig struct {
	ID                  string          `mapstructure:"id"                    yaml:"id"`
	Name                string          `mapstructure:"name"                  yaml:"name"`
	ListingURL          string          `mapstructure:"listing_url"           yaml:"listing_url"`
	ContainerSelector   string          `mapstructure:"container_selector"    yaml:"container_selector"`
	Exclusions          []ExclusionRule `mapstructure:"exclusions"            yaml:"exclusions,omitempty"`
	TitleSelector       string          `mapstructure:"title_selector"        yaml:"title_selector"`
	TitleAttr           string          `mapstructure:"title_attr"            yaml:"title_attr,omitempty"`
	TitleTrimPrefixes   []string        `mapstructure:"title_trim_prefixes"   yaml:"title_trim_prefixes,omitempty"`
	DateAtListing       bool            `mapstructure:"date_at_listing"       yaml:"date_at_listing"`
	DateSelector        string          `mapstructure:"date_selector"         yaml:"date_selector"`
	DateAttr            string          `mapstructure:"date_attr"             yaml:"date_attr,omitempty"`
	DateFormat          string          `mapstructure:"date_format"           yaml:"date_format"` // iso, localized
	DetailTitleSelector string          `mapstructure:"detail_title_selector" yaml:"detail_title_selector,omitempty"`
	ContentSelector     string          `mapstructure:"content_selector"      yaml:"content_selector"`
	ContentRemove       []string        `mapstructure:"content_remove"        yaml:"content_remove,omitempty"`
	ParagraphSelector   string          `mapstructure:"paragraph_selector"    yaml:"paragraph_selector,omitempty"`
}

// ExclusionRule drops listing containers that sit inside an unwanted region.
// Exactly one of Ancestor (CSS) or XPath is expected.
type ExclusionRule struct {
	Ancestor string `mapstructure:"ancestor" yaml:"ancestor,omitempty"`
	XPath    string `mapstructure:"xpath"    yaml:"xpath,omitempty"`
}

// TaxonomyConfig lists the tabular sources the category keywords come from.
type TaxonomyConfig struct {
	Sources              []TaxonomySource `mapstructure:"sources"                 yaml:"sources"`
	MinTokenLength       int              `mapstructure:"min_token_length"        yaml:"min_token_length"`
	SingleMinTokenLength int              `mapstructure:"single_min_token_length" yaml:"single_min_token_length"`
	Watch                bool             `mapstructure:"watch"                   yaml:"watch"`
}

// TaxonomySource is one CSV or XLSX table of categories.
type TaxonomySource struct {
	Path              string `mapstructure:"path"               yaml:"path"`
	Side              string `mapstructure:"side"               yaml:"side"`   // production, expenditure
	Layout            string `mapstructure:"layout"             yaml:"layout"` // flat, hierarchical
	Sheet             string `mapstructure:"sheet"              yaml:"sheet,omitempty"`
	CategoryColumn    string `mapstructure:"category_column"    yaml:"category_column"`
	DescriptionColumn string `mapstructure:"description_column" yaml:"description_column"`
	MarkerColumn      string `mapstructure:"marker_column"      yaml:"marker_column,omitempty"`
}

// ClassifierConfig controls economic-activity tagging.
type ClassifierConfig struct {
	Mode           string `mapstructure:"mode"            yaml:"mode"` // none, multi, single
	TopN           int    `mapstructure:"top_n"           yaml:"top_n"`
	Sentinel       string `mapstructure:"sentinel"        yaml:"sentinel"`
	SingleSide     string `mapstructure:"single_side"     yaml:"single_side"`
	SingleMatching string `mapstructure:"single_matching" yaml:"single_matching"` // word, substring
	TieBreak       string `mapstructure:"tie_break"       yaml:"tie_break"`       // order, alpha
}

// StorageConfig controls export output.
type StorageConfig struct {
	Type       string `mapstructure:"type"        yaml:"type"`
	OutputPath string `mapstructure:"output_path" yaml:"output_path"`
}

// APIConfig controls the HTTP API server.
type APIConfig struct {
	Port int `mapstructure:"port" yaml:"port"`
	// MaxResults is how many finished runs are kept for download.
	MaxResults int `mapstructure:"max_results" yaml:"max_results"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	Output string `mapstructure:"output" yaml:"output"`
}

// MetricsConfig controls Prometheus metrics.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Port    int    `mapstructure:"port"    yaml:"port"`
	Path    string `mapstructure:"path"    yaml:"path"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Fetcher: FetcherConfig{
			Type:            "http",
			UserAgent:       DefaultUserAgent,
			Timeout:         15 * time.Second,
			MaxRetries:      2,
			RetryDelay:      2 * time.Second,
			MaxBodySize:     10 * 1024 * 1024, // 10MB
			FollowRedirects: true,
			MaxRedirects:    10,
			Stealth:         true,
			Headless:        true,
		},
		Extractor: ExtractorConfig{
			DefaultMaxPages: 5,
			MaxPagesLimit:   50,
			ArticleDelay:    500 * time.Millisecond,
		},
		Taxonomy: TaxonomyConfig{
			MinTokenLength:       2,
			SingleMinTokenLength: 3,
		},
		Classifier: ClassifierConfig{
			Mode:           "none",
			TopN:           3,
			Sentinel:       "Tidak Terkategori",
			SingleSide:     "production",
			SingleMatching: "word",
			TieBreak:       "order",
		},
		Storage: StorageConfig{
			Type:       "xlsx",
			OutputPath: "./output",
		},
		API: APIConfig{
			Port:       8080,
			MaxResults: 20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
			Path:    "/metrics",
		},
	}
}
