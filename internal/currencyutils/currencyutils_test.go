package currencyutils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name      string
		amountStr string
		expected  string
		hasError  bool
	}{
		{"Simple decimal", "123.45", "123.45", false},
		{"Negative decimal", "-123.45", "-123.45", false},
		{"Integer", "100", "100", false},
		{"Comma decimal separator", "123,45", "123.45", false},
		{"Comma thousand separator", "50,000", "50000", false},
		{"Lakh grouping", "1,23,456.78", "123456.78", false},
		{"Thousand separator and decimals", "1,234.56", "1234.56", false},
		{"Apostrophe separator", "1'234.56", "1234.56", false},
		{"European format", "1.234,56", "1234.56", false},
		{"Rupee sign", "₹450", "450", false},
		{"Rs prefix", "Rs. 1,200.50", "1200.5", false},
		{"INR code", "INR 600.00", "600", false},
		{"Dollar sign", "$123.45", "123.45", false},
		{"With spaces", "  123.45  ", "123.45", false},
		{"Empty string", "", "", true},
		{"Malformed decimal", "123.45.67", "", true},
		{"Non-numeric", "abc", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseAmount(tc.amountStr)
			if tc.hasError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tc.expected).Equal(got), "got %s", got)
		})
	}
}

func TestFormatAmount(t *testing.T) {
	amount := decimal.RequireFromString("1234.5")
	assert.Equal(t, "₹1234.50", FormatAmount(amount, DefaultCurrency))
	assert.Equal(t, "$1234.50", FormatAmount(amount, "usd"))
	assert.Equal(t, "CHF 1234.50", FormatAmount(amount, "CHF"))
	assert.Equal(t, "1234.50", FormatAmount(amount, ""))
}
