package discovery

import (
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/text/width"

	"github.com/sales-lead/leadgen-cli/internal/model"
)

var (
	emailRe     = regexp.MustCompile(`(?i)[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}`)
	emailFullRe = regexp.MustCompile(`(?i)^[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}$`)

	// Japanese numbers as written on corporate pages: optional +81 country
	// prefix, then area/exchange/subscriber groups split by dashes of
	// several unicode flavors or spaces.
	phoneRe = regexp.MustCompile(`(?:\+?81[-\s]?)?0[0-9]{1,4}[-‐–―\s]?[0-9]{1,4}[-‐–―\s]?[0-9]{3,4}`)
)

// telMarkers label a text fragment as carrying a phone number. Matching is
// case-sensitive after width folding; "fax" is matched case-insensitively
// and takes precedence within a fragment.
var telMarkers = []string{"TEL", "電話番号", "電話", "Phone"}

// Extractor derives contact facts from crawled pages. It is pure: no
// network access, no stored state between calls.
type Extractor struct {
	vocab *Vocabulary
}

// NewExtractor creates an Extractor. A nil vocab uses the defaults.
func NewExtractor(vocab *Vocabulary) *Extractor {
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	return &Extractor{vocab: vocab}
}

// extractState accumulates facts across the page sequence. Single-valued
// facts are assign-once: the first page to produce one wins.
type extractState struct {
	res        *model.ExtractionResult
	evidence   map[string]struct{}
	roleEmails []string
}

func (st *extractState) markEvidence(source string) {
	st.evidence[source] = struct{}{}
}

// Extract walks the pages in crawl order and accumulates contact facts.
// officialURL anchors email guessing when no role-based address was
// observed anywhere.
func (e *Extractor) Extract(pages []model.PageContent, officialURL string) *model.ExtractionResult {
	st := &extractState{
		res:      &model.ExtractionResult{SNS: make(map[string]string)},
		evidence: make(map[string]struct{}),
	}

	for i := range pages {
		e.extractPage(st, &pages[i])
	}

	if len(st.roleEmails) == 0 {
		e.guessEmails(st, officialURL)
	}

	st.res.EmailRoleBased = sortedUnique(st.roleEmails)
	st.res.EmailGuessed = sortedUnique(st.res.EmailGuessed)
	st.res.EvidenceSources = sortedSet(st.evidence)
	if len(st.res.SNS) == 0 {
		st.res.SNS = nil
	}
	return st.res
}

func (e *Extractor) extractPage(st *extractState, page *model.PageContent) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return
	}
	base, err := url.Parse(page.URL)
	if err != nil {
		base = nil
	}

	var mailtoEmails []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || href == "" {
			return
		}
		lowerHref := strings.ToLower(href)

		if addr, found := strings.CutPrefix(lowerHref, "mailto:"); found {
			addr, _, _ = strings.Cut(addr, "?")
			mailtoEmails = append(mailtoEmails, strings.TrimSpace(addr))
			return
		}

		e.matchContactForm(st, sel, href, lowerHref, base)
		e.matchSNS(st, href, lowerHref, base)
	})

	e.collectEmails(st, page, mailtoEmails)
	e.extractNumbers(st, doc, page)
}

// matchContactForm assigns the first anchor whose href or text looks like a
// contact channel. The anchor's own label decides; the target page is never
// fetched to confirm. The resolved target URL is the evidence entry.
func (e *Extractor) matchContactForm(st *extractState, sel *goquery.Selection, href, lowerHref string, base *url.URL) {
	if st.res.ContactFormURL != "" {
		return
	}
	haystack := lowerHref + " " + strings.ToLower(sel.Text())
	if !containsAny(haystack, e.vocab.Contact) {
		return
	}
	st.res.ContactFormURL = resolveHref(base, href)
	st.markEvidence(st.res.ContactFormURL)
}

func (e *Extractor) matchSNS(st *extractState, href, lowerHref string, base *url.URL) {
	for _, platform := range model.SNSPlatforms {
		if st.res.SNS[platform] != "" {
			continue
		}
		if !containsAny(lowerHref, snsPatterns[platform]) {
			continue
		}
		st.res.SNS[platform] = resolveHref(base, href)
		st.markEvidence(st.res.SNS[platform])
	}
}

// collectEmails gathers the page's addresses in scan order (mailto anchors
// first, then visible text) and applies the per-page main-email rule: the
// page's first role address claims email_main, or its first address of any
// kind when the page exposed no role address.
func (e *Extractor) collectEmails(st *extractState, page *model.PageContent, mailtoEmails []string) {
	seen := make(map[string]struct{})
	var pageEmails []string
	record := func(addr string) {
		addr = strings.ToLower(strings.TrimSpace(addr))
		if !emailFullRe.MatchString(addr) {
			return
		}
		if _, ok := seen[addr]; ok {
			return
		}
		seen[addr] = struct{}{}
		pageEmails = append(pageEmails, addr)
	}

	for _, addr := range mailtoEmails {
		record(addr)
	}
	for _, addr := range emailRe.FindAllString(page.Text, -1) {
		record(addr)
	}
	if len(pageEmails) == 0 {
		return
	}

	var pageRole []string
	for _, addr := range pageEmails {
		if e.isRoleLocal(addr) {
			pageRole = append(pageRole, addr)
		}
	}

	if st.res.EmailMain == "" {
		if len(pageRole) > 0 {
			st.res.EmailMain = pageRole[0]
		} else {
			st.res.EmailMain = pageEmails[0]
		}
	}
	st.roleEmails = append(st.roleEmails, pageRole...)
	st.markEvidence(page.URL)
}

// isRoleLocal reports whether the address's local part names a role rather
// than a person. Hyphens and underscores are ignored, so contact-us and
// press_jp both qualify.
func (e *Extractor) isRoleLocal(addr string) bool {
	local, _, _ := strings.Cut(addr, "@")
	normalized := strings.NewReplacer("-", "", "_", "").Replace(strings.ToLower(local))
	for _, token := range e.vocab.RoleTokens {
		if strings.Contains(normalized, token) {
			return true
		}
	}
	return false
}

// extractNumbers scans the page's text fragments for labeled phone and fax
// numbers. A fragment carrying a fax marker is treated as fax only, even if
// a tel marker is also present. When no labeled phone was found anywhere
// yet, the page's whole text is swept for the first normalizable number;
// fax has no such fallback.
func (e *Extractor) extractNumbers(st *extractState, doc *goquery.Document, page *model.PageContent) {
	for _, frag := range textFragments(doc) {
		if st.res.PhoneMain != "" && st.res.FaxMain != "" {
			return
		}
		folded := width.Fold.String(frag)

		if strings.Contains(strings.ToLower(folded), "fax") {
			if st.res.FaxMain == "" {
				if num := NormalizePhone(phoneRe.FindString(folded)); num != "" {
					st.res.FaxMain = num
					st.markEvidence(page.URL)
				}
			}
			continue
		}

		if st.res.PhoneMain != "" {
			continue
		}
		for _, marker := range telMarkers {
			if !strings.Contains(folded, marker) {
				continue
			}
			if num := NormalizePhone(phoneRe.FindString(folded)); num != "" {
				st.res.PhoneMain = num
				st.markEvidence(page.URL)
			}
			break
		}
	}

	if st.res.PhoneMain == "" {
		folded := width.Fold.String(page.Text)
		for _, match := range phoneRe.FindAllString(folded, -1) {
			if num := NormalizePhone(match); num != "" {
				st.res.PhoneMain = num
				st.markEvidence(page.URL)
				return
			}
		}
	}
}

// guessEmails synthesizes role addresses against the official site's
// registrable domain. Guesses are labeled, never merged into the observed
// role set; the synthesized addresses themselves join the evidence set.
func (e *Extractor) guessEmails(st *extractState, officialURL string) {
	domain := RegistrableDomain(officialURL)
	if domain == "" {
		return
	}
	for _, prefix := range e.vocab.GuessPrefixes {
		guess := prefix + "@" + domain
		st.res.EmailGuessed = append(st.res.EmailGuessed, guess)
		st.markEvidence(guess)
	}
	if st.res.EmailMain == "" && len(st.res.EmailGuessed) > 0 {
		st.res.EmailMain = st.res.EmailGuessed[0]
	}
}

func resolveHref(base *url.URL, href string) string {
	if base == nil {
		return href
	}
	resolved, err := base.Parse(href)
	if err != nil {
		return href
	}
	return resolved.String()
}

// textFragments collects the document's non-empty text nodes in document
// order, skipping script and style subtrees. Fragment boundaries matter:
// tel and fax labels only bind to numbers in the same node.
func textFragments(doc *goquery.Document) []string {
	var frags []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "template":
				return
			}
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				frags = append(frags, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range doc.Nodes {
		walk(n)
	}
	return frags
}

func sortedUnique(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[it] = struct{}{}
	}
	return sortedSet(set)
}

func sortedSet(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for it := range set {
		out = append(out, it)
	}
	sort.Strings(out)
	return out
}
