package models

import "github.com/shopspring/decimal"

// Budget is a monthly spending limit for one category.
type Budget struct {
	Category     string          `json:"category" yaml:"category"`
	MonthlyLimit decimal.Decimal `json:"monthly_limit" yaml:"monthly_limit"`
}

// BudgetStatus pairs a limit with the amount spent in the current month.
type BudgetStatus struct {
	Limit decimal.Decimal `json:"limit"`
	Spent decimal.Decimal `json:"spent"`
}

// Remaining is Limit minus Spent; negative when over budget.
func (b BudgetStatus) Remaining() decimal.Decimal {
	return b.Limit.Sub(b.Spent)
}

// OverBudget reports whether spending exceeded the limit.
func (b BudgetStatus) OverBudget() bool {
	return b.Spent.GreaterThan(b.Limit)
}

// Summary holds the dashboard header metrics for a time window.
type Summary struct {
	TotalIncome     decimal.Decimal `json:"total_income"`
	TotalExpense    decimal.Decimal `json:"total_expense"`
	NetSavings      decimal.Decimal `json:"net_savings"`
	Recommendations []string        `json:"recommendations"`
}
