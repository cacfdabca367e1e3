package textutils_test

import (
	"testing"

	"fintrack/internal/textutils"

	"github.com/stretchr/testify/assert"
)

func TestExtractDescription(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "rupee amount and upi", input: "Rs 450 paid to Swiggy via UPI", expected: "paid to Swiggy via"},
		{name: "inr amount with decimals", input: "INR 120.50 debited for Uber", expected: "debited for Uber"},
		{name: "reference number", input: "Netflix subscription ref 99812", expected: "Netflix subscription"},
		{name: "plain text", input: "Grocery run", expected: "Grocery run"},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, textutils.ExtractDescription(tt.input))
		})
	}
}

func TestExtractAmount(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "simple", input: "Paid 450.00 at Swiggy", expected: "450"},
		{name: "thousands separator", input: "Salary of 1,25,000.00 credited", expected: "125000"},
		{name: "first match wins", input: "Paid 10.00 then 20.00", expected: "10"},
		{name: "no decimals", input: "Paid 450 at Swiggy", expected: "0"},
		{name: "empty", input: "", expected: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, textutils.ExtractAmount(tt.input).String())
		})
	}
}

func TestIsCredit(t *testing.T) {
	assert.True(t, textutils.IsCredit("Amount CREDITED to your account"))
	assert.True(t, textutils.IsCredit("Salary for March"))
	assert.False(t, textutils.IsCredit("Paid to Zomato"))
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "Paid 450.00", textutils.FirstLine("  Paid 450.00 \nRef 1234"))
	assert.Equal(t, "single", textutils.FirstLine("single"))
	assert.Equal(t, "", textutils.FirstLine(""))
}
