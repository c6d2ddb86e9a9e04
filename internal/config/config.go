package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Search SearchConfig `yaml:"search" mapstructure:"search"`
	Fetch  FetchConfig  `yaml:"fetch" mapstructure:"fetch"`
	Crawl  CrawlConfig  `yaml:"crawl" mapstructure:"crawl"`
	Report ReportConfig `yaml:"report" mapstructure:"report"`
	Batch  BatchConfig  `yaml:"batch" mapstructure:"batch"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
	DryRun bool         `yaml:"dry_run" mapstructure:"dry_run"`
}

// StoreConfig configures the row store backend.
type StoreConfig struct {
	Driver       string `yaml:"driver" mapstructure:"driver"` // "sqlite", "postgres", or "xlsx"
	DSN          string `yaml:"dsn" mapstructure:"dsn"`
	XLSXPath     string `yaml:"xlsx_path" mapstructure:"xlsx_path"`
	SheetName    string `yaml:"sheet_name" mapstructure:"sheet_name"`
	LogSheetName string `yaml:"log_sheet_name" mapstructure:"log_sheet_name"`
}

// SearchConfig configures the web search provider.
type SearchConfig struct {
	Provider   string `yaml:"provider" mapstructure:"provider"` // "tavily", "bing", or "google"
	TavilyKey  string `yaml:"tavily_key" mapstructure:"tavily_key"`
	BingKey    string `yaml:"bing_key" mapstructure:"bing_key"`
	GoogleKey  string `yaml:"google_key" mapstructure:"google_key"`
	GoogleCX   string `yaml:"google_cx" mapstructure:"google_cx"`
	MaxResults int    `yaml:"max_results" mapstructure:"max_results"`
}

// FetchConfig configures the page fetcher.
type FetchConfig struct {
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries" mapstructure:"max_retries"`
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
}

// Timeout returns the fetch timeout as a duration.
func (c FetchConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// CrawlConfig bounds the site crawl.
type CrawlConfig struct {
	MaxPages  int    `yaml:"max_pages" mapstructure:"max_pages"`
	MaxDepth  int    `yaml:"max_depth" mapstructure:"max_depth"`
	VocabPath string `yaml:"vocab_path" mapstructure:"vocab_path"`
}

// ReportConfig configures the LLM business report.
type ReportConfig struct {
	AnthropicKey string `yaml:"anthropic_key" mapstructure:"anthropic_key"`
	Model        string `yaml:"model" mapstructure:"model"`
	MaxTokens    int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	MaxConcurrentRows int `yaml:"max_concurrent_rows" mapstructure:"max_concurrent_rows"`
}

// ServerConfig configures the JSON API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEADGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.dsn", "leadgen.db")
	v.SetDefault("store.sheet_name", "prospects")
	v.SetDefault("store.log_sheet_name", "_logs")
	v.SetDefault("search.provider", "tavily")
	v.SetDefault("search.max_results", 5)
	v.SetDefault("fetch.timeout_secs", 15)
	v.SetDefault("fetch.max_retries", 2)
	v.SetDefault("fetch.user_agent",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) "+
			"AppleWebKit/537.36 (KHTML, like Gecko) "+
			"Chrome/126.0.0.0 Safari/537.36")
	v.SetDefault("crawl.max_pages", 6)
	v.SetDefault("crawl.max_depth", 2)
	v.SetDefault("report.model", "claude-haiku-4-5-20251001")
	v.SetDefault("report.max_tokens", 1024)
	v.SetDefault("batch.max_concurrent_rows", 4)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
