// Package pipeline orchestrates the enrichment of prospect rows: search,
// official site selection, crawl, extraction, report, and store writes.
package pipeline

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sales-lead/leadgen-cli/internal/discovery"
	"github.com/sales-lead/leadgen-cli/internal/model"
	"github.com/sales-lead/leadgen-cli/internal/resilience"
	"github.com/sales-lead/leadgen-cli/internal/store"
)

// Searcher issues the fixed company queries.
type Searcher interface {
	CompanySite(ctx context.Context, companyName string) ([]model.SearchResult, error)
	CompanyNews(ctx context.Context, companyName string) ([]model.SearchResult, error)
}

// SiteSelector picks the official site from search candidates.
type SiteSelector interface {
	Select(ctx context.Context, companyName string, candidates []model.SearchResult) *model.SiteCandidate
}

// SiteCrawler collects pages from the official site.
type SiteCrawler interface {
	Crawl(ctx context.Context, startURL string) []model.PageContent
}

// ContactExtractor derives contact facts from crawled pages.
type ContactExtractor interface {
	Extract(pages []model.PageContent, officialURL string) *model.ExtractionResult
}

// Reporter generates the LLM business report.
type Reporter interface {
	Generate(ctx context.Context, companyName, officialURL string, pages []model.PageContent, news []model.SearchResult) (*model.ReportResult, error)
}

// Outcome is the result of processing one row.
type Outcome struct {
	Row     model.CompanyRow  `json:"row"`
	Updates map[string]string `json:"updates"`
	Logs    []model.LogEntry  `json:"logs"`
}

// Options wires a Processor.
type Options struct {
	Store     store.RowStore
	Search    Searcher
	Selector  SiteSelector
	Crawler   SiteCrawler
	Extractor ContactExtractor
	// Reporter may be nil when no API key is configured; affected rows
	// are downgraded to needs_review instead of failing.
	Reporter      Reporter
	DryRun        bool
	MaxConcurrent int
	Retry         resilience.RetryConfig
}

// Processor runs the enrichment pipeline over prospect rows.
type Processor struct {
	opts Options
}

// NewProcessor creates a Processor.
func NewProcessor(opts Options) *Processor {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 1
	}
	return &Processor{opts: opts}
}

// ProcessAll enriches every eligible row: non-empty company name, not
// locked, and (unless force) status empty, pending, needs_review, or
// error. limit caps the number of rows processed, not fetched. Rows are
// processed with bounded parallelism; per-row failures become row
// outcomes, and only store-level failures surface as errors.
func (p *Processor) ProcessAll(ctx context.Context, force bool, limit int) ([]Outcome, error) {
	rows, err := resilience.DoVal(ctx, p.opts.Retry, func(ctx context.Context) ([]model.CompanyRow, error) {
		return p.opts.Store.FetchRows(ctx)
	})
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: fetch rows")
	}

	var eligible []model.CompanyRow
	for _, row := range rows {
		if row.CompanyName == "" {
			continue
		}
		if row.LockManualOverride {
			zap.L().Info("pipeline: row locked, skipping",
				zap.Int("row", row.RowIndex),
				zap.String("company", row.CompanyName),
			)
			continue
		}
		if !force && !processableStatus(row.Status) {
			continue
		}
		eligible = append(eligible, row)
		if limit > 0 && len(eligible) >= limit {
			break
		}
	}

	outcomes := make([]Outcome, len(eligible))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.MaxConcurrent)
	for i, row := range eligible {
		g.Go(func() error {
			outcome, err := p.ProcessRow(gctx, row)
			if err != nil {
				return err
			}
			outcomes[i] = *outcome
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

func processableStatus(status model.RowStatus) bool {
	switch status {
	case "", model.StatusPending, model.StatusReview, model.StatusError:
		return true
	default:
		return false
	}
}

// ProcessRow enriches a single row and persists the result. Enrichment
// failures are captured in the row itself (status error plus detail); the
// returned error covers store writes only.
func (p *Processor) ProcessRow(ctx context.Context, row model.CompanyRow) (*Outcome, error) {
	zap.L().Info("pipeline: processing row",
		zap.Int("row", row.RowIndex),
		zap.String("company", row.CompanyName),
	)
	logs := []model.LogEntry{{Stage: "start", Message: "processing " + row.CompanyName}}

	updates, err := p.enrich(ctx, row, &logs)
	if err != nil {
		zap.L().Warn("pipeline: row failed",
			zap.Int("row", row.RowIndex),
			zap.String("company", row.CompanyName),
			zap.Error(err),
		)
		updates = row.UpdatePayload(map[string]string{
			"status":       string(model.StatusError),
			"error_detail": err.Error(),
		})
		logs = append(logs, model.LogEntry{Stage: "error", Status: "error", Message: err.Error()})
	} else {
		logs = append(logs, model.LogEntry{Stage: "complete", Message: updates["status"]})
	}

	outcome := &Outcome{Row: row, Updates: updates, Logs: logs}
	if p.opts.DryRun {
		zap.L().Info("pipeline: dry run, skipping writes", zap.Int("row", row.RowIndex))
		return outcome, nil
	}

	if err := p.persist(ctx, row.RowIndex, updates, logs); err != nil {
		return outcome, err
	}
	return outcome, nil
}

func (p *Processor) persist(ctx context.Context, rowIndex int, updates map[string]string, logs []model.LogEntry) error {
	retry := p.opts.Retry
	retry.OnRetry = resilience.RetryLogger("store", "update_row")
	err := resilience.Do(ctx, retry, func(ctx context.Context) error {
		return p.opts.Store.UpdateRow(ctx, rowIndex, updates)
	})
	if err != nil {
		return eris.Wrapf(err, "pipeline: update row %d", rowIndex)
	}

	retry.OnRetry = resilience.RetryLogger("store", "append_log")
	for _, entry := range logs {
		err := resilience.Do(ctx, retry, func(ctx context.Context) error {
			return p.opts.Store.AppendLog(ctx, entry)
		})
		if err != nil {
			return eris.Wrapf(err, "pipeline: append log for row %d", rowIndex)
		}
	}
	return nil
}

// enrich runs the row through the discovery stages and prepares the field
// updates. Any returned error terminates the row with status error.
func (p *Processor) enrich(ctx context.Context, row model.CompanyRow, logs *[]model.LogEntry) (map[string]string, error) {
	results, err := p.opts.Search.CompanySite(ctx, row.CompanyName)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: official site search failed")
	}
	*logs = append(*logs, model.LogEntry{Stage: "search", Message: fmt.Sprintf("%d results", len(results))})

	candidate := p.opts.Selector.Select(ctx, row.CompanyName, results)
	if candidate == nil || candidate.Page == nil {
		return nil, eris.New("pipeline: official site not identified")
	}
	officialURL := candidate.Page.URL
	resolvedDomain := discovery.RegistrableDomain(officialURL)
	*logs = append(*logs, model.LogEntry{Stage: "official_site", Message: officialURL, TargetURL: officialURL})

	pages := p.opts.Crawler.Crawl(ctx, officialURL)
	extraction := p.opts.Extractor.Extract(pages, officialURL)
	*logs = append(*logs, model.LogEntry{Stage: "extract", Message: "contact info extracted", TargetURL: officialURL})

	var report *model.ReportResult
	if p.opts.Reporter != nil {
		news := p.newsCandidates(ctx, row.CompanyName, resolvedDomain)
		report, err = p.opts.Reporter.Generate(ctx, row.CompanyName, officialURL, pages, news)
		if err != nil {
			return nil, err
		}
		*logs = append(*logs, model.LogEntry{Stage: "report", Message: "report generated"})
	}

	return p.prepareUpdates(row, officialURL, resolvedDomain, extraction, report), nil
}

// newsCandidates fetches news results and keeps only those hosted on the
// company's own domain. A failed news search never fails the row.
func (p *Processor) newsCandidates(ctx context.Context, companyName, domain string) []model.SearchResult {
	results, err := p.opts.Search.CompanyNews(ctx, companyName)
	if err != nil {
		zap.L().Warn("pipeline: news search failed",
			zap.String("company", companyName),
			zap.Error(err),
		)
		return nil
	}

	var filtered []model.SearchResult
	for _, result := range results {
		u, err := url.Parse(result.URL)
		if err != nil {
			continue
		}
		if strings.HasSuffix(u.Hostname(), domain) {
			filtered = append(filtered, result)
		}
	}
	return filtered
}

func (p *Processor) prepareUpdates(row model.CompanyRow, officialURL, resolvedDomain string, extraction *model.ExtractionResult, report *model.ReportResult) map[string]string {
	evidence := append([]string{officialURL}, extraction.EvidenceSources...)

	updates := map[string]string{
		"resolved_domain":  resolvedDomain,
		"website_url":      officialURL,
		"contact_form_url": extraction.ContactFormURL,
		"email_main":       extraction.EmailMain,
		"email_role_based": strings.Join(extraction.EmailRoleBased, ";"),
		"email_guessed":    strings.Join(extraction.EmailGuessed, ";"),
		"phone_main":       extraction.PhoneMain,
		"fax_main":         extraction.FaxMain,
		"sns_linkedin":     extraction.SNS[model.SNSLinkedIn],
		"sns_x":            extraction.SNS[model.SNSX],
		"sns_instagram":    extraction.SNS[model.SNSInstagram],
		"sns_facebook":     extraction.SNS[model.SNSFacebook],
		"evidence_sources": joinSortedUnique(evidence, "|"),
		"status":           string(model.StatusOK),
		"error_detail":     "",
	}

	var reviewReasons []string
	if report != nil {
		updates["business_summary"] = report.BusinessSummary
		updates["business_bullets"] = strings.Join(report.BusinessBullets, ";")
		newsLines := make([]string, 0, len(report.RecentNews))
		for _, item := range report.RecentNews {
			newsLines = append(newsLines, fmt.Sprintf("%s|%s|%s", item.Date, item.Headline, item.URL))
		}
		updates["recent_news"] = strings.Join(newsLines, "\n")
		updates["competitors_hint"] = strings.Join(report.CompetitorsHint, ";")
	} else {
		reviewReasons = append(reviewReasons, "report not generated: anthropic api key not set")
	}

	if extraction.EmailMain == "" {
		reviewReasons = append(reviewReasons, "email address not found")
	}
	if extraction.PhoneMain == "" {
		reviewReasons = append(reviewReasons, "phone number not found")
	}
	if len(reviewReasons) > 0 {
		updates["status"] = string(model.StatusReview)
		updates["error_detail"] = strings.Join(reviewReasons, "; ")
	}

	return row.UpdatePayload(updates)
}

func joinSortedUnique(items []string, sep string) string {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		if it != "" {
			set[it] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for it := range set {
		out = append(out, it)
	}
	sort.Strings(out)
	return strings.Join(out, sep)
}
