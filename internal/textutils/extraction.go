// Package textutils provides text cleaning and extraction helpers for
// transaction notifications (SMS, e-mail, statement lines).
package textutils

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	descriptionNoise = regexp.MustCompile(`(?i)(?:Rs|INR|\$|€)\s*\d+(?:\.\d+)?|\bupi\b|ref\s*\d+`)
	decimalAmount    = regexp.MustCompile(`(\d[\d,]*\.\d{2})`)
	creditMarkers    = []string{"credit", "salary"}
)

// ExtractDescription strips amounts, UPI markers and reference numbers from a
// raw notification to leave a readable description.
func ExtractDescription(raw string) string {
	return strings.TrimSpace(descriptionNoise.ReplaceAllString(raw, ""))
}

// ExtractAmount returns the first amount written with two decimals
// ("1,250.00"), or zero when the text carries none.
func ExtractAmount(raw string) decimal.Decimal {
	m := decimalAmount.FindStringSubmatch(raw)
	if len(m) < 2 {
		return decimal.Zero
	}
	amount, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return decimal.Zero
	}
	return amount
}

// IsCredit reports whether the notification describes incoming money.
func IsCredit(raw string) bool {
	lower := strings.ToLower(raw)
	for _, marker := range creditMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// FirstLine returns the first line of text, trimmed.
func FirstLine(raw string) string {
	line, _, _ := strings.Cut(raw, "\n")
	return strings.TrimSpace(line)
}
