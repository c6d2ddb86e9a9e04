package model

// SNS platform keys. The SNS map in ExtractionResult only ever carries
// these keys.
const (
	SNSLinkedIn  = "sns_linkedin"
	SNSX         = "sns_x"
	SNSInstagram = "sns_instagram"
	SNSFacebook  = "sns_facebook"
)

// SNSPlatforms lists the platform keys in deterministic match order.
var SNSPlatforms = []string{SNSLinkedIn, SNSX, SNSInstagram, SNSFacebook}

// SiteCandidate pairs a search hit with its fetched page and score.
// A nil Page means the fetch failed; such candidates are never selected.
type SiteCandidate struct {
	Result SearchResult `json:"result"`
	Page   *PageContent `json:"page,omitempty"`
	Score  float64      `json:"score"`
}

// ExtractionResult accumulates contact facts over a crawl.
// Role-based and guessed email sets, and the evidence set, are
// de-duplicated and sorted before the result is returned.
type ExtractionResult struct {
	ContactFormURL  string            `json:"contact_form_url,omitempty"`
	EmailMain       string            `json:"email_main,omitempty"`
	EmailRoleBased  []string          `json:"email_role_based,omitempty"`
	EmailGuessed    []string          `json:"email_guessed,omitempty"`
	PhoneMain       string            `json:"phone_main,omitempty"`
	FaxMain         string            `json:"fax_main,omitempty"`
	SNS             map[string]string `json:"sns,omitempty"`
	EvidenceSources []string          `json:"evidence_sources,omitempty"`
}
