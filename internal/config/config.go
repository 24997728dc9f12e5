// Package config loads and validates corpus builder configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Corpus  CorpusConfig  `mapstructure:"corpus"`
	Pacing  PacingConfig  `mapstructure:"pacing"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// APIConfig describes the remote query endpoint.
type APIConfig struct {
	Endpoint       string `mapstructure:"endpoint"`
	UserAgent      string `mapstructure:"user_agent"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	BatchSize      int    `mapstructure:"batch_size"`
}

// Timeout returns the per-request budget as a duration.
func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// CorpusConfig governs what the build collects and where it lands.
type CorpusConfig struct {
	RootCategory string `mapstructure:"root_category"`
	OutputDir    string `mapstructure:"output_dir"`
	NeedDocs     int    `mapstructure:"need_docs"`
	MinWords     int    `mapstructure:"min_words"`
}

// PacingConfig sets the API etiquette intervals.
type PacingConfig struct {
	CategoryDelayMs int `mapstructure:"category_delay_ms"`
	DocumentDelayMs int `mapstructure:"document_delay_ms"`
}

// CategoryInterval returns the per-category pacing interval.
func (c PacingConfig) CategoryInterval() time.Duration {
	return time.Duration(c.CategoryDelayMs) * time.Millisecond
}

// DocumentInterval returns the per-document pacing interval.
func (c PacingConfig) DocumentInterval() time.Duration {
	return time.Duration(c.DocumentDelayMs) * time.Millisecond
}

// LoggingConfig controls logger construction. Level accepts the zap level
// names (debug, info, warn, error); empty means info.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// MetricsConfig controls the optional Prometheus listener. An empty address
// disables it.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("WIKICORPUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.endpoint", "https://en.wikipedia.org/w/api.php")
	v.SetDefault("api.user_agent", "wikicorpus/0.1 (https://github.com/Katya0208/wikicorpus)")
	v.SetDefault("api.timeout_seconds", 60)
	v.SetDefault("api.batch_size", 500)
	v.SetDefault("corpus.root_category", "Category:Applied mathematics")
	v.SetDefault("corpus.output_dir", "out_wiki_corpus")
	v.SetDefault("corpus.need_docs", 15000)
	v.SetDefault("corpus.min_words", 1100)
	v.SetDefault("pacing.category_delay_ms", 50)
	v.SetDefault("pacing.document_delay_ms", 100)
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.level", "info")
	v.SetDefault("metrics.addr", "")
}

// Validate rejects configurations the run could not honor.
func (c Config) Validate() error {
	if strings.TrimSpace(c.API.Endpoint) == "" {
		return fmt.Errorf("api.endpoint must be set")
	}
	if c.API.TimeoutSeconds <= 0 {
		return fmt.Errorf("api.timeout_seconds must be positive, got %d", c.API.TimeoutSeconds)
	}
	if c.API.BatchSize <= 0 || c.API.BatchSize > 500 {
		return fmt.Errorf("api.batch_size must be in 1..500, got %d", c.API.BatchSize)
	}
	if strings.TrimSpace(c.Corpus.RootCategory) == "" {
		return fmt.Errorf("corpus.root_category must be set")
	}
	if strings.TrimSpace(c.Corpus.OutputDir) == "" {
		return fmt.Errorf("corpus.output_dir must be set")
	}
	if c.Corpus.NeedDocs < 0 {
		return fmt.Errorf("corpus.need_docs must not be negative, got %d", c.Corpus.NeedDocs)
	}
	if c.Corpus.MinWords < 0 {
		return fmt.Errorf("corpus.min_words must not be negative, got %d", c.Corpus.MinWords)
	}
	if c.Pacing.CategoryDelayMs < 0 || c.Pacing.DocumentDelayMs < 0 {
		return fmt.Errorf("pacing delays must not be negative")
	}
	return nil
}
