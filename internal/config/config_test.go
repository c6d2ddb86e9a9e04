package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "leadgen.db", cfg.Store.DSN)
	assert.Equal(t, "prospects", cfg.Store.SheetName)
	assert.Equal(t, "tavily", cfg.Search.Provider)
	assert.Equal(t, 5, cfg.Search.MaxResults)
	assert.Equal(t, 15, cfg.Fetch.TimeoutSecs)
	assert.Equal(t, 6, cfg.Crawl.MaxPages)
	assert.Equal(t, 2, cfg.Crawl.MaxDepth)
	assert.Equal(t, int64(1024), cfg.Report.MaxTokens)
	assert.Equal(t, 4, cfg.Batch.MaxConcurrentRows)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.DryRun)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("LEADGEN_STORE_DRIVER", "postgres")
	t.Setenv("LEADGEN_SEARCH_PROVIDER", "bing")
	t.Setenv("LEADGEN_CRAWL_MAX_PAGES", "10")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "bing", cfg.Search.Provider)
	assert.Equal(t, 10, cfg.Crawl.MaxPages)
}

func TestFetchTimeout(t *testing.T) {
	cfg := FetchConfig{TimeoutSecs: 20}
	assert.Equal(t, 20*time.Second, cfg.Timeout())
}

func TestInitLogger(t *testing.T) {
	assert.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
	assert.Error(t, InitLogger(LogConfig{Level: "shout", Format: "json"}))
}
