package textutils

import (
	"regexp"
	"strings"
)

var (
	currencySymbols = regexp.MustCompile(`[₹$€£¥,]`)
	currencyCodes   = regexp.MustCompile(`(?i)\b(?:rs|inr|usd|eur|gbp)\b\.?`)
	numericTokens   = regexp.MustCompile(`\b\d+(?:\.\d+)?\b`)
)

// Normalize cleans raw notification text for classification: the text is
// lowercased, then currency symbols and codes, thousands separators and
// standalone numbers (amounts, references) are dropped and whitespace is
// collapsed. Lowercasing comes first so case folding cannot produce a
// currency code after the codes were stripped. It is total and idempotent,
// and it is the only cleaning step used both when training and when
// predicting.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}
	text := strings.ToLower(raw)
	text = currencySymbols.ReplaceAllString(text, "")
	text = currencyCodes.ReplaceAllString(text, " ")
	text = numericTokens.ReplaceAllString(text, " ")
	return strings.Join(strings.Fields(text), " ")
}

// NormalizeAll applies Normalize to every element.
func NormalizeAll(texts []string) []string {
	out := make([]string, len(texts))
	for i, t := range texts {
		out[i] = Normalize(t)
	}
	return out
}
