package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Direction is the flow of money for a transaction.
type Direction string

const (
	DirectionDebit  Direction = "DEBIT"
	DirectionCredit Direction = "CREDIT"
)

// ParseDirection accepts the storage values as well as the front end's
// expense/income vocabulary.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debit", "expense":
		return DirectionDebit, nil
	case "credit", "income":
		return DirectionCredit, nil
	default:
		return "", fmt.Errorf("unknown transaction type %q", s)
	}
}

// LabelSource records who assigned a transaction's category. Only manual
// labels are used as training data.
type LabelSource string

const (
	LabelManual    LabelSource = "manual"
	LabelPredicted LabelSource = "predicted"
)

// Transaction is a single stored money movement. Category is nil until the
// row is labeled manually or by prediction.
type Transaction struct {
	ID          int64           `json:"id"`
	Date        string          `json:"date"`
	RawText     string          `json:"raw_text"`
	Amount      decimal.Decimal `json:"amount"`
	Type        Direction       `json:"type"`
	Category    *string         `json:"category"`
	LabelSource LabelSource     `json:"label_source,omitempty"`
	Description string          `json:"description"`
}

// HasCategory reports whether the transaction carries a non-blank label.
func (t Transaction) HasCategory() bool {
	return t.Category != nil && strings.TrimSpace(*t.Category) != ""
}

// CategoryName returns the label or "" when unset.
func (t Transaction) CategoryName() string {
	if t.Category == nil {
		return ""
	}
	return *t.Category
}

// WithCategory returns a copy labeled manually with category.
func (t Transaction) WithCategory(category string) Transaction {
	t.Category = &category
	t.LabelSource = LabelManual
	return t
}

// WithPrediction returns a copy labeled with a model prediction.
func (t Transaction) WithPrediction(category string) Transaction {
	t.Category = &category
	t.LabelSource = LabelPredicted
	return t
}

// Validate checks the fields required before a transaction is persisted.
func (t Transaction) Validate() error {
	if _, err := time.Parse(DateLayout, t.Date); err != nil {
		return fmt.Errorf("invalid date %q: expected YYYY-MM-DD", t.Date)
	}
	if t.Type != DirectionDebit && t.Type != DirectionCredit {
		return fmt.Errorf("invalid transaction type %q", t.Type)
	}
	if t.Amount.IsNegative() {
		return fmt.Errorf("amount must not be negative, got %s", t.Amount)
	}
	return nil
}

// StringPtr is a small helper for optional categories.
func StringPtr(s string) *string {
	return &s
}
