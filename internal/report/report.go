// Package report generates the per-company business report from crawled
// site text and news search results.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sales-lead/leadgen-cli/internal/model"
	"github.com/sales-lead/leadgen-cli/pkg/anthropic"
)

const (
	maxBullets     = 5
	maxNews        = 3
	maxCompetitors = 5

	// Per-page excerpt cap keeps the prompt within a predictable budget
	// even for text-heavy corporate sites.
	maxExcerptRunes = 1500
	maxExcerptPages = 3
)

const systemPrompt = `あなたは企業調査アナリストです。与えられた企業サイトの本文抜粋とニュース検索結果から、営業リード向けの事業レポートをJSONで作成してください。

出力は次のスキーマのJSONオブジェクトのみとし、他のテキストを含めないでください:
{
  "business_summary": "事業内容の要約(日本語、200〜300文字)",
  "business_bullets": ["事業の特徴(最大5件)"],
  "recent_news": [{"date": "YYYY-MM-DD", "headline": "見出し(30文字以内)", "url": "情報源URL"}],
  "competitors_hint": ["競合候補の企業名(最大5件)"]
}

recent_newsは最大3件、検索結果に裏付けられたものだけを含めてください。確信のない項目は空配列にしてください。`

// Generator produces one report per company via the Anthropic API.
type Generator struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewGenerator creates a Generator for the given model.
func NewGenerator(client anthropic.Client, modelID string, maxTokens int64) *Generator {
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &Generator{client: client, model: modelID, maxTokens: maxTokens}
}

// Generate builds the report prompt from site text and news results and
// parses the model's JSON reply. List fields are clamped to their caps;
// news items missing any of date, headline, or URL are dropped.
func (g *Generator) Generate(ctx context.Context, companyName, officialURL string, pages []model.PageContent, news []model.SearchResult) (*model.ReportResult, error) {
	resp, err := g.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     g.model,
		MaxTokens: g.maxTokens,
		System:    systemPrompt,
		Messages: []anthropic.Message{
			{Role: "user", Content: buildUserPrompt(companyName, officialURL, pages, news)},
		},
	})
	if err != nil {
		return nil, eris.Wrapf(err, "report: generate for %s", companyName)
	}
	resp.Usage.LogCost(g.model, "report")

	var result model.ReportResult
	raw := stripFences(resp.Text())
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, eris.Wrapf(err, "report: parse reply for %s", companyName)
	}

	clamp(&result)
	zap.L().Debug("report: generated",
		zap.String("company", companyName),
		zap.Int("bullets", len(result.BusinessBullets)),
		zap.Int("news", len(result.RecentNews)),
	)
	return &result, nil
}

func buildUserPrompt(companyName, officialURL string, pages []model.PageContent, news []model.SearchResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "企業名: %s\n公式サイト: %s\n\n", companyName, officialURL)

	b.WriteString("## サイト本文抜粋\n")
	for i, page := range pages {
		if i >= maxExcerptPages {
			break
		}
		fmt.Fprintf(&b, "### %s\n%s\n\n", page.URL, truncateRunes(page.Text, maxExcerptRunes))
	}

	b.WriteString("## ニュース検索結果\n")
	if len(news) == 0 {
		b.WriteString("(なし)\n")
	}
	for _, item := range news {
		fmt.Fprintf(&b, "- %s | %s | %s\n", item.Title, item.URL, item.Snippet)
	}
	return b.String()
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// stripFences removes a surrounding markdown code fence, with or without a
// language tag, which models add despite instructions.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func clamp(r *model.ReportResult) {
	if len(r.BusinessBullets) > maxBullets {
		r.BusinessBullets = r.BusinessBullets[:maxBullets]
	}
	news := r.RecentNews[:0]
	for _, item := range r.RecentNews {
		if item.Date == "" || item.Headline == "" || item.URL == "" {
			continue
		}
		if len(news) == maxNews {
			break
		}
		news = append(news, item)
	}
	r.RecentNews = news
	if len(r.CompetitorsHint) > maxCompetitors {
		r.CompetitorsHint = r.CompetitorsHint[:maxCompetitors]
	}
}
