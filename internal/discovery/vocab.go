// Package discovery implements the official site discovery and contact
// extraction engine: candidate scoring, a bounded prioritized crawl, and
// pure contact-fact extraction over fetched pages.
package discovery

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Vocabulary holds the fixed keyword tables the engine scores and
// prioritizes with. All matching is substring containment.
type Vocabulary struct {
	// Official marks text typical of a company's own corporate pages.
	Official []string `yaml:"official"`
	// Contact marks links and text pointing at contact channels.
	Contact []string `yaml:"contact"`
	// RoleTokens classify an email local part as role-based.
	RoleTokens []string `yaml:"role_tokens"`
	// GuessPrefixes are the local parts synthesized when no role-based
	// email was observed anywhere in the crawl.
	GuessPrefixes []string `yaml:"guess_prefixes"`
}

// DefaultVocabulary returns the built-in keyword tables, tuned for
// Japanese corporate sites.
func DefaultVocabulary() *Vocabulary {
	return &Vocabulary{
		Official: []string{
			"会社概要",
			"企業情報",
			"企業案内",
			"About",
			"Corporate",
			"沿革",
		},
		Contact: []string{
			"contact",
			"inquiry",
			"form",
			"お問い合わせ",
			"問合せ",
			"連絡",
			"資料請求",
		},
		RoleTokens: []string{
			"info",
			"sales",
			"support",
			"contact",
			"inquiry",
			"customer",
			"hello",
			"pr",
			"press",
			"ir",
		},
		GuessPrefixes: []string{
			"info",
			"contact",
			"sales",
			"support",
			"inquiry",
		},
	}
}

// LoadVocabulary reads keyword tables from a YAML file. Sections left empty
// in the file fall back to the defaults.
func LoadVocabulary(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "discovery: read vocabulary %s", path)
	}

	var v Vocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, eris.Wrap(err, "discovery: parse vocabulary")
	}

	def := DefaultVocabulary()
	if len(v.Official) == 0 {
		v.Official = def.Official
	}
	if len(v.Contact) == 0 {
		v.Contact = def.Contact
	}
	if len(v.RoleTokens) == 0 {
		v.RoleTokens = def.RoleTokens
	}
	if len(v.GuessPrefixes) == 0 {
		v.GuessPrefixes = def.GuessPrefixes
	}
	return &v, nil
}

// snsPatterns maps each SNS platform key to the URL substrings that
// identify it. This table is fixed; the closed key set is part of the
// output contract.
var snsPatterns = map[string][]string{
	"sns_linkedin":  {"linkedin.com/company", "linkedin.com/in"},
	"sns_x":         {"twitter.com", "x.com"},
	"sns_instagram": {"instagram.com"},
	"sns_facebook":  {"facebook.com", "fb.me"},
}
