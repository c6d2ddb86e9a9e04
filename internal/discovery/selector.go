package discovery

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/width"

	"github.com/sales-lead/leadgen-cli/internal/fetcher"
	"github.com/sales-lead/leadgen-cli/internal/model"
)

// Candidate score weights.
const (
	scoreHostMatch    = 3.0
	scoreTextMatch    = 2.0
	scoreOfficialTerm = 1.0
	scoreContactTerm  = 0.5
	scoreGovPenalty   = -2.0
)

// govSuffix penalizes governmental directory pages, which often rank well
// for company names but are never the official site.
const govSuffix = ".go.jp"

var nonAlnumRe = regexp.MustCompile(`[^a-z0-9]`)

// legalEntityTokens are stripped from company names before matching.
var legalEntityTokens = []string{
	"株式会社",
	"有限会社",
	"inc.",
	"co., ltd.",
}

// Selector scores search candidates against a company name and picks the
// best-matching fetched page.
type Selector struct {
	fetcher fetcher.Fetcher
	vocab   *Vocabulary
}

// NewSelector creates a Selector. A nil vocab uses the defaults.
func NewSelector(f fetcher.Fetcher, vocab *Vocabulary) *Selector {
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	return &Selector{fetcher: f, vocab: vocab}
}

// Select fetches and scores each candidate, returning the highest-scoring
// one. Ties keep the first-encountered candidate. Candidates whose fetch
// fails are skipped entirely, never scored. Returns nil when no candidate
// could be fetched.
func (s *Selector) Select(ctx context.Context, companyName string, candidates []model.SearchResult) *model.SiteCandidate {
	normalized := NormalizeCompanyName(companyName)

	var best *model.SiteCandidate
	for _, result := range candidates {
		if result.URL == "" {
			continue
		}
		page, err := s.fetcher.Fetch(ctx, result.URL)
		if err != nil {
			zap.L().Debug("selector: candidate fetch failed",
				zap.String("url", result.URL),
				zap.Error(err),
			)
			continue
		}
		score := s.score(normalized, page)
		if best == nil || score > best.Score {
			best = &model.SiteCandidate{Result: result, Page: page, Score: score}
		}
		zap.L().Debug("selector: candidate scored",
			zap.String("url", result.URL),
			zap.Float64("score", score),
		)
	}
	return best
}

func (s *Selector) score(normalizedName string, page *model.PageContent) float64 {
	score := 0.0
	hostname := ""
	if u, err := url.Parse(page.URL); err == nil {
		hostname = u.Hostname()
	}

	if normalizedName != "" && strings.Contains(NormalizeCompanyName(hostname), normalizedName) {
		score += scoreHostMatch
	}
	if normalizedName != "" && strings.Contains(strings.ToLower(page.Text), normalizedName) {
		score += scoreTextMatch
	}
	for _, term := range s.vocab.Official {
		if strings.Contains(page.Text, term) {
			score += scoreOfficialTerm
		}
	}
	if containsAny(page.Text, s.vocab.Contact) {
		score += scoreContactTerm
	}
	if strings.HasSuffix(hostname, govSuffix) {
		score += scoreGovPenalty
	}
	return score
}

// NormalizeCompanyName lower-cases the name, folds full-width characters to
// their narrow forms, strips legal-entity tokens, and removes everything
// that is not an ASCII letter or digit.
func NormalizeCompanyName(name string) string {
	normalized := strings.ToLower(width.Fold.String(name))
	for _, token := range legalEntityTokens {
		normalized = strings.ReplaceAll(normalized, token, "")
	}
	return nonAlnumRe.ReplaceAllString(normalized, "")
}

func containsAny(s string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}
