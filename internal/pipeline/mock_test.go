package pipeline

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sales-lead/leadgen-cli/internal/model"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) FetchRows(ctx context.Context) ([]model.CompanyRow, error) {
	args := m.Called(ctx)
	var rows []model.CompanyRow
	if v := args.Get(0); v != nil {
		rows = v.([]model.CompanyRow)
	}
	return rows, args.Error(1)
}

func (m *mockStore) UpdateRow(ctx context.Context, rowIndex int, updates map[string]string) error {
	return m.Called(ctx, rowIndex, updates).Error(0)
}

func (m *mockStore) AddRow(ctx context.Context, companyName string) (int, error) {
	args := m.Called(ctx, companyName)
	return args.Int(0), args.Error(1)
}

func (m *mockStore) AppendLog(ctx context.Context, entry model.LogEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *mockStore) Close() error {
	return m.Called().Error(0)
}

type mockSearcher struct {
	mock.Mock
}

func (m *mockSearcher) CompanySite(ctx context.Context, companyName string) ([]model.SearchResult, error) {
	args := m.Called(ctx, companyName)
	var results []model.SearchResult
	if v := args.Get(0); v != nil {
		results = v.([]model.SearchResult)
	}
	return results, args.Error(1)
}

func (m *mockSearcher) CompanyNews(ctx context.Context, companyName string) ([]model.SearchResult, error) {
	args := m.Called(ctx, companyName)
	var results []model.SearchResult
	if v := args.Get(0); v != nil {
		results = v.([]model.SearchResult)
	}
	return results, args.Error(1)
}

type mockSelector struct {
	mock.Mock
}

func (m *mockSelector) Select(ctx context.Context, companyName string, candidates []model.SearchResult) *model.SiteCandidate {
	args := m.Called(ctx, companyName, candidates)
	if v := args.Get(0); v != nil {
		return v.(*model.SiteCandidate)
	}
	return nil
}

type mockCrawler struct {
	mock.Mock
}

func (m *mockCrawler) Crawl(ctx context.Context, startURL string) []model.PageContent {
	args := m.Called(ctx, startURL)
	var pages []model.PageContent
	if v := args.Get(0); v != nil {
		pages = v.([]model.PageContent)
	}
	return pages
}

type mockExtractor struct {
	mock.Mock
}

func (m *mockExtractor) Extract(pages []model.PageContent, officialURL string) *model.ExtractionResult {
	args := m.Called(pages, officialURL)
	return args.Get(0).(*model.ExtractionResult)
}

type mockReporter struct {
	mock.Mock
}

func (m *mockReporter) Generate(ctx context.Context, companyName, officialURL string, pages []model.PageContent, news []model.SearchResult) (*model.ReportResult, error) {
	args := m.Called(ctx, companyName, officialURL, pages, news)
	if v := args.Get(0); v != nil {
		return v.(*model.ReportResult), args.Error(1)
	}
	return nil, args.Error(1)
}
