// Package search wraps the pluggable web search providers behind one
// query interface.
package search

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sales-lead/leadgen-cli/internal/config"
	"github.com/sales-lead/leadgen-cli/internal/model"
	"github.com/sales-lead/leadgen-cli/pkg/bingsearch"
	"github.com/sales-lead/leadgen-cli/pkg/googlecse"
	"github.com/sales-lead/leadgen-cli/pkg/tavily"
)

// Provider executes one raw search query against a single backend.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string, maxResults int) ([]model.SearchResult, error)
}

// Client issues the engine's fixed query shapes against the configured
// provider.
type Client struct {
	provider   Provider
	maxResults int
}

// New builds a search client from configuration. The provider name selects
// the backend; a missing credential for the selected backend is an error.
func New(cfg config.SearchConfig) (*Client, error) {
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 5
	}

	var provider Provider
	switch cfg.Provider {
	case "tavily":
		if cfg.TavilyKey == "" {
			return nil, eris.New("search: tavily api key not configured")
		}
		provider = &tavilyProvider{client: tavily.NewClient(cfg.TavilyKey)}
	case "bing":
		if cfg.BingKey == "" {
			return nil, eris.New("search: bing api key not configured")
		}
		provider = &bingProvider{client: bingsearch.NewClient(cfg.BingKey)}
	case "google":
		if cfg.GoogleKey == "" || cfg.GoogleCX == "" {
			return nil, eris.New("search: google api key and cx not configured")
		}
		provider = &googleProvider{client: googlecse.NewClient(cfg.GoogleKey, cfg.GoogleCX)}
	default:
		return nil, eris.Errorf("search: unknown provider %q", cfg.Provider)
	}

	return &Client{provider: provider, maxResults: maxResults}, nil
}

// NewWithProvider wires a pre-built provider, primarily for tests.
func NewWithProvider(p Provider, maxResults int) *Client {
	if maxResults <= 0 {
		maxResults = 5
	}
	return &Client{provider: p, maxResults: maxResults}
}

// ProviderName reports the active backend.
func (c *Client) ProviderName() string {
	return c.provider.Name()
}

// CompanySite searches for the company's official corporate site.
func (c *Client) CompanySite(ctx context.Context, companyName string) ([]model.SearchResult, error) {
	return c.run(ctx, fmt.Sprintf("%s 公式 会社概要", companyName))
}

// CompanyNews searches for recent news about the company.
func (c *Client) CompanyNews(ctx context.Context, companyName string) ([]model.SearchResult, error) {
	return c.run(ctx, fmt.Sprintf("%s ニュース", companyName))
}

func (c *Client) run(ctx context.Context, query string) ([]model.SearchResult, error) {
	results, err := c.provider.Search(ctx, query, c.maxResults)
	if err != nil {
		return nil, eris.Wrapf(err, "search: %s query failed", c.provider.Name())
	}
	if len(results) > c.maxResults {
		results = results[:c.maxResults]
	}
	zap.L().Debug("search: query done",
		zap.String("provider", c.provider.Name()),
		zap.String("query", query),
		zap.Int("results", len(results)),
	)
	return results, nil
}

type tavilyProvider struct {
	client tavily.Client
}

func (p *tavilyProvider) Name() string { return "tavily" }

func (p *tavilyProvider) Search(ctx context.Context, query string, maxResults int) ([]model.SearchResult, error) {
	resp, err := p.client.Search(ctx, query, tavily.WithMaxResults(maxResults))
	if err != nil {
		return nil, err
	}
	results := make([]model.SearchResult, 0, len(resp.Results))
	for i, r := range resp.Results {
		results = append(results, model.SearchResult{
			Title:   r.Title,
			URL:     r.URL,
			Snippet: r.Content,
			Rank:    i + 1,
		})
	}
	return results, nil
}

type bingProvider struct {
	client bingsearch.Client
}

func (p *bingProvider) Name() string { return "bing" }

func (p *bingProvider) Search(ctx context.Context, query string, maxResults int) ([]model.SearchResult, error) {
	resp, err := p.client.Search(ctx, query, bingsearch.WithCount(maxResults))
	if err != nil {
		return nil, err
	}
	results := make([]model.SearchResult, 0, len(resp.WebPages.Value))
	for i, r := range resp.WebPages.Value {
		results = append(results, model.SearchResult{
			Title:   r.Name,
			URL:     r.URL,
			Snippet: r.Snippet,
			Rank:    i + 1,
		})
	}
	return results, nil
}

type googleProvider struct {
	client googlecse.Client
}

func (p *googleProvider) Name() string { return "google" }

func (p *googleProvider) Search(ctx context.Context, query string, maxResults int) ([]model.SearchResult, error) {
	resp, err := p.client.Search(ctx, query, googlecse.WithNum(maxResults))
	if err != nil {
		return nil, err
	}
	results := make([]model.SearchResult, 0, len(resp.Items))
	for i, r := range resp.Items {
		results = append(results, model.SearchResult{
			Title:   r.Title,
			URL:     r.Link,
			Snippet: r.Snippet,
			Rank:    i + 1,
		})
	}
	return results, nil
}
