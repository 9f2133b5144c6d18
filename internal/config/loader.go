package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Load reads configuration from file, environment, and defaults.
// Priority (highest to lowest): env vars > config file > defaults.
// CLI flags are applied on top by the caller.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	setDefaults(v, cfg)

	v.SetEnvPrefix("BERITAKEPRI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("beritakepri")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".beritakepri"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// Marshal renders the effective configuration as YAML.
func Marshal(cfg *Config) ([]byte, error) {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return out, nil
}

// setDefaults registers default values in viper so env vars bind to them.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("fetcher.type", cfg.Fetcher.Type)
	v.SetDefault("fetcher.user_agent", cfg.Fetcher.UserAgent)
	v.SetDefault("fetcher.timeout", cfg.Fetcher.Timeout)
	v.SetDefault("fetcher.max_retries", cfg.Fetcher.MaxRetries)
	v.SetDefault("fetcher.retry_delay", cfg.Fetcher.RetryDelay)
	v.SetDefault("fetcher.max_body_size", cfg.Fetcher.MaxBodySize)
	v.SetDefault("fetcher.follow_redirects", cfg.Fetcher.FollowRedirects)
	v.SetDefault("fetcher.max_redirects", cfg.Fetcher.MaxRedirects)
	v.SetDefault("fetcher.stealth", cfg.Fetcher.Stealth)
	v.SetDefault("fetcher.headless", cfg.Fetcher.Headless)

	v.SetDefault("extractor.default_max_pages", cfg.Extractor.DefaultMaxPages)
	v.SetDefault("extractor.max_pages_limit", cfg.Extractor.MaxPagesLimit)
	v.SetDefault("extractor.article_delay", cfg.Extractor.ArticleDelay)
	v.SetDefault("extractor.readability_fallback", cfg.Extractor.ReadabilityFallback)
	v.SetDefault("extractor.metadata_dates", cfg.Extractor.MetadataDates)

	v.SetDefault("taxonomy.min_token_length", cfg.Taxonomy.MinTokenLength)
	v.SetDefault("taxonomy.single_min_token_length", cfg.Taxonomy.SingleMinTokenLength)
	v.SetDefault("taxonomy.watch", cfg.Taxonomy.Watch)

	v.SetDefault("classifier.mode", cfg.Classifier.Mode)
	v.SetDefault("classifier.top_n", cfg.Classifier.TopN)
	v.SetDefault("classifier.sentinel", cfg.Classifier.Sentinel)
	v.SetDefault("classifier.single_side", cfg.Classifier.SingleSide)
	v.SetDefault("classifier.single_matching", cfg.Classifier.SingleMatching)
	v.SetDefault("classifier.tie_break", cfg.Classifier.TieBreak)

	v.SetDefault("storage.type", cfg.Storage.Type)
	v.SetDefault("storage.output_path", cfg.Storage.OutputPath)

	v.SetDefault("api.port", cfg.API.Port)
	v.SetDefault("api.max_results", cfg.API.MaxResults)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("logging.output", cfg.Logging.Output)

	v.SetDefault("metrics.enabled", cfg.Metrics.Enabled)
	v.SetDefault("metrics.port", cfg.Metrics.Port)
	v.SetDefault("metrics.path", cfg.Metrics.Path)
}
