package model

import (
	"strings"
	"time"
)

// RowStatus represents the processing state of a prospect row.
type RowStatus string

const (
	StatusPending RowStatus = "pending"
	StatusOK      RowStatus = "ok"
	StatusReview  RowStatus = "needs_review"
	StatusError   RowStatus = "error"
)

// FieldOrder lists the prospect row fields in sheet column order (A..V).
// Stores rely on this ordering for both reads and writes.
var FieldOrder = []string{
	"company_name",
	"resolved_domain",
	"website_url",
	"contact_form_url",
	"email_main",
	"email_role_based",
	"email_guessed",
	"phone_main",
	"fax_main",
	"sns_linkedin",
	"sns_x",
	"sns_instagram",
	"sns_facebook",
	"evidence_sources",
	"business_summary",
	"business_bullets",
	"recent_news",
	"competitors_hint",
	"last_checked_at",
	"lock_manual_override",
	"status",
	"error_detail",
}

// SheetColumns maps each field name to its spreadsheet column letter.
var SheetColumns = func() map[string]string {
	m := make(map[string]string, len(FieldOrder))
	for i, f := range FieldOrder {
		m[f] = string(rune('A' + i))
	}
	return m
}()

// CompanyRow is one prospect row from the row store. RowIndex is the
// zero-based position in the store, header row included (data starts at 1).
type CompanyRow struct {
	RowIndex           int    `json:"row_index"`
	CompanyName        string `json:"company_name"`
	ResolvedDomain     string `json:"resolved_domain,omitempty"`
	WebsiteURL         string `json:"website_url,omitempty"`
	ContactFormURL     string `json:"contact_form_url,omitempty"`
	EmailMain          string `json:"email_main,omitempty"`
	EmailRoleBased     string `json:"email_role_based,omitempty"`
	EmailGuessed       string `json:"email_guessed,omitempty"`
	PhoneMain          string `json:"phone_main,omitempty"`
	FaxMain            string `json:"fax_main,omitempty"`
	SNSLinkedIn        string `json:"sns_linkedin,omitempty"`
	SNSX               string `json:"sns_x,omitempty"`
	SNSInstagram       string `json:"sns_instagram,omitempty"`
	SNSFacebook        string `json:"sns_facebook,omitempty"`
	EvidenceSources    string `json:"evidence_sources,omitempty"`
	BusinessSummary    string `json:"business_summary,omitempty"`
	BusinessBullets    string `json:"business_bullets,omitempty"`
	RecentNews         string `json:"recent_news,omitempty"`
	CompetitorsHint    string `json:"competitors_hint,omitempty"`
	LastCheckedAt      string `json:"last_checked_at,omitempty"`
	LockManualOverride bool   `json:"lock_manual_override"`
	Status             RowStatus `json:"status,omitempty"`
	ErrorDetail        string `json:"error_detail,omitempty"`
}

// RowFromValues builds a CompanyRow from raw cell values in FieldOrder.
// Short rows are padded; every value is whitespace-trimmed.
func RowFromValues(rowIndex int, values []string) CompanyRow {
	get := func(i int) string {
		if i >= len(values) {
			return ""
		}
		return strings.TrimSpace(values[i])
	}

	lock := strings.ToLower(get(19))
	return CompanyRow{
		RowIndex:           rowIndex,
		CompanyName:        get(0),
		ResolvedDomain:     get(1),
		WebsiteURL:         get(2),
		ContactFormURL:     get(3),
		EmailMain:          get(4),
		EmailRoleBased:     get(5),
		EmailGuessed:       get(6),
		PhoneMain:          get(7),
		FaxMain:            get(8),
		SNSLinkedIn:        get(9),
		SNSX:               get(10),
		SNSInstagram:       get(11),
		SNSFacebook:        get(12),
		EvidenceSources:    get(13),
		BusinessSummary:    get(14),
		BusinessBullets:    get(15),
		RecentNews:         get(16),
		CompetitorsHint:    get(17),
		LastCheckedAt:      get(18),
		LockManualOverride: lock == "true" || lock == "1" || lock == "yes",
		Status:             RowStatus(get(20)),
		ErrorDetail:        get(21),
	}
}

// Values returns the row's cell values in FieldOrder.
func (r CompanyRow) Values() []string {
	lock := ""
	if r.LockManualOverride {
		lock = "true"
	}
	return []string{
		r.CompanyName,
		r.ResolvedDomain,
		r.WebsiteURL,
		r.ContactFormURL,
		r.EmailMain,
		r.EmailRoleBased,
		r.EmailGuessed,
		r.PhoneMain,
		r.FaxMain,
		r.SNSLinkedIn,
		r.SNSX,
		r.SNSInstagram,
		r.SNSFacebook,
		r.EvidenceSources,
		r.BusinessSummary,
		r.BusinessBullets,
		r.RecentNews,
		r.CompetitorsHint,
		r.LastCheckedAt,
		lock,
		string(r.Status),
		r.ErrorDetail,
	}
}

// UpdatePayload filters updates down to known fields, drops the manual
// override flag (never written by the pipeline), and stamps
// last_checked_at when the caller did not supply one.
func (r CompanyRow) UpdatePayload(updates map[string]string) map[string]string {
	payload := make(map[string]string, len(updates)+1)
	for field, value := range updates {
		if _, ok := SheetColumns[field]; !ok || field == "lock_manual_override" {
			continue
		}
		payload[field] = value
	}
	if _, ok := payload["last_checked_at"]; !ok {
		payload["last_checked_at"] = time.Now().UTC().Format(time.RFC3339)
	}
	return payload
}

// LogEntry is one line of the processing audit log.
type LogEntry struct {
	Stage     string `json:"stage"`
	Status    string `json:"status"`
	Message   string `json:"message"`
	TargetURL string `json:"target_url,omitempty"`
}

// ToRow renders the entry as an audit log row: timestamp, stage, status,
// message, target URL.
func (e LogEntry) ToRow() []string {
	status := e.Status
	if status == "" {
		status = "info"
	}
	return []string{
		time.Now().UTC().Format(time.RFC3339),
		e.Stage,
		status,
		e.Message,
		e.TargetURL,
	}
}
