// Package currencyutils parses and formats the monetary amounts found in
// seed files, CLI flags and budget limits.
package currencyutils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is the ISO code amounts are displayed with.
const DefaultCurrency = "INR"

var currencyMarks = regexp.MustCompile(`(?i)(INR|Rs\.?|₹|\$|€|£|\s)`)

// ParseAmount parses a string representation of an amount into a decimal value
// It handles forms like "₹1,234.56", "Rs. 1234", "1.234,56" and "1'234.56".
func ParseAmount(amountStr string) (decimal.Decimal, error) {
	standardized := StandardizeAmount(amountStr)
	if standardized == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}

	amount, err := decimal.NewFromString(standardized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse amount '%s': %w", amountStr, err)
	}
	return amount, nil
}

// StandardizeAmount strips currency marks and thousand separators so the
// result can be parsed by decimal.NewFromString.
func StandardizeAmount(amountStr string) string {
	amountStr = currencyMarks.ReplaceAllString(amountStr, "")
	amountStr = strings.ReplaceAll(amountStr, "'", "")

	hasComma := strings.Contains(amountStr, ",")
	hasDot := strings.Contains(amountStr, ".")
	switch {
	case hasComma && hasDot:
		if strings.LastIndex(amountStr, ".") < strings.LastIndex(amountStr, ",") {
			// 1.234,56
			amountStr = strings.ReplaceAll(amountStr, ".", "")
			amountStr = strings.ReplaceAll(amountStr, ",", ".")
		} else {
			// 1,23,456.78 (lakh grouping) or 1,234.56
			amountStr = strings.ReplaceAll(amountStr, ",", "")
		}
	case hasComma:
		parts := strings.Split(amountStr, ",")
		if len(parts) == 2 && len(parts[1]) <= 2 {
			amountStr = strings.ReplaceAll(amountStr, ",", ".")
		} else {
			amountStr = strings.ReplaceAll(amountStr, ",", "")
		}
	}
	return amountStr
}

// FormatAmount renders amount with two decimals and the currency symbol.
func FormatAmount(amount decimal.Decimal, currency string) string {
	formatted := amount.StringFixed(2)
	switch strings.ToUpper(currency) {
	case "":
		return formatted
	case "INR":
		return "₹" + formatted
	case "USD":
		return "$" + formatted
	case "EUR":
		return "€" + formatted
	case "GBP":
		return "£" + formatted
	default:
		return currency + " " + formatted
	}
}
