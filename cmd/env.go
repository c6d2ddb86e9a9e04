package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/sales-lead/leadgen-cli/internal/discovery"
	"github.com/sales-lead/leadgen-cli/internal/fetcher"
	"github.com/sales-lead/leadgen-cli/internal/pipeline"
	"github.com/sales-lead/leadgen-cli/internal/report"
	"github.com/sales-lead/leadgen-cli/internal/resilience"
	"github.com/sales-lead/leadgen-cli/internal/search"
	"github.com/sales-lead/leadgen-cli/internal/store"
	"github.com/sales-lead/leadgen-cli/pkg/anthropic"
)

// appEnv bundles the wired pipeline and its store for commands.
type appEnv struct {
	Store     store.RowStore
	Processor *pipeline.Processor
}

func (e *appEnv) Close() {
	if err := e.Store.Close(); err != nil {
		zap.L().Warn("close store", zap.Error(err))
	}
}

// initStore opens just the row store, for commands that never run the
// pipeline.
func initStore(ctx context.Context) (store.RowStore, error) {
	return store.New(ctx, cfg.Store)
}

// initEnv builds the store, discovery engine, search client, and optional
// reporter from the loaded config.
func initEnv(ctx context.Context, dryRun bool) (*appEnv, error) {
	st, err := store.New(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}

	searchClient, err := search.New(cfg.Search)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	vocab := discovery.DefaultVocabulary()
	if cfg.Crawl.VocabPath != "" {
		vocab, err = discovery.LoadVocabulary(cfg.Crawl.VocabPath)
		if err != nil {
			_ = st.Close()
			return nil, err
		}
	}

	f := fetcher.NewHTTP(fetcher.Options{
		UserAgent:  cfg.Fetch.UserAgent,
		Timeout:    cfg.Fetch.Timeout(),
		MaxRetries: cfg.Fetch.MaxRetries,
	})

	var reporter pipeline.Reporter
	if cfg.Report.AnthropicKey != "" {
		client := anthropic.NewClient(cfg.Report.AnthropicKey)
		reporter = report.NewGenerator(client, cfg.Report.Model, cfg.Report.MaxTokens)
	} else {
		zap.L().Warn("anthropic api key not set; reports disabled, affected rows will need review")
	}

	processor := pipeline.NewProcessor(pipeline.Options{
		Store:         st,
		Search:        searchClient,
		Selector:      discovery.NewSelector(f, vocab),
		Crawler:       discovery.NewCrawler(f, vocab, cfg.Crawl.MaxPages, cfg.Crawl.MaxDepth),
		Extractor:     discovery.NewExtractor(vocab),
		Reporter:      reporter,
		DryRun:        dryRun || cfg.DryRun,
		MaxConcurrent: cfg.Batch.MaxConcurrentRows,
		Retry:         resilience.DefaultRetryConfig(),
	})

	return &appEnv{Store: st, Processor: processor}, nil
}
