package discovery

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
	"golang.org/x/text/width"
)

// NormalizePhone folds full-width digits, strips separators and decoration,
// and returns the number in E.164. Numbers that do not parse as a valid
// Japanese (or explicitly international) number yield the empty string.
// Already-normalized E.164 input round-trips unchanged.
func NormalizePhone(raw string) string {
	folded := width.Fold.String(raw)

	var b strings.Builder
	for _, r := range folded {
		if r >= '0' && r <= '9' || r == '+' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return ""
	}

	region := "JP"
	if strings.HasPrefix(cleaned, "+") {
		region = ""
	}
	num, err := phonenumbers.Parse(cleaned, region)
	if err != nil {
		return ""
	}
	if !phonenumbers.IsValidNumber(num) {
		return ""
	}
	return phonenumbers.Format(num, phonenumbers.E164)
}
