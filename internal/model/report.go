package model

// NewsItem is one dated headline in a business report.
type NewsItem struct {
	Date     string `json:"date"`
	Headline string `json:"headline"`
	URL      string `json:"url"`
}

// ReportResult is the parsed LLM business report for one company.
type ReportResult struct {
	BusinessSummary string     `json:"business_summary"`
	BusinessBullets []string   `json:"business_bullets"`
	RecentNews      []NewsItem `json:"recent_news"`
	CompetitorsHint []string   `json:"competitors_hint"`
}
