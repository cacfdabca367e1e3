// Package analytics computes the dashboard figures: window totals with
// spending recommendations, the category breakdown and budget status.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"fintrack/internal/dateutils"
	"fintrack/internal/logging"
	"fintrack/internal/models"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// ErrInvalidBudget marks a rejected budget (HTTP 400).
var ErrInvalidBudget = errors.New("invalid budget")

// Repository is the read side of the store plus budget writes.
type Repository interface {
	LabeledSince(ctx context.Context, since string) ([]models.Transaction, error)
	SpendingByCategory(ctx context.Context, since string) (map[string]decimal.Decimal, error)
	Budgets(ctx context.Context) ([]models.Budget, error)
	SetBudget(ctx context.Context, b models.Budget) error
}

// Options tunes recommendations.
type Options struct {
	WindowDays       int
	FoodKeyword      string
	FoodAlertPercent float64
}

// Service answers dashboard queries.
type Service struct {
	repo   Repository
	opts   Options
	logger logging.Logger
	now    func() time.Time
}

// NewService creates an analytics service.
func NewService(repo Repository, opts Options, logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.GetLogger()
	}
	if opts.WindowDays <= 0 {
		opts.WindowDays = 30
	}
	if opts.FoodKeyword == "" {
		opts.FoodKeyword = "food"
	}
	if opts.FoodAlertPercent <= 0 {
		opts.FoodAlertPercent = 25
	}
	return &Service{
		repo:   repo,
		opts:   opts,
		logger: logger.WithField(logging.FieldComponent, "analytics"),
		now:    time.Now,
	}
}

// SetClock overrides the time source, for tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// WindowDays returns the default window.
func (s *Service) WindowDays() int {
	return s.opts.WindowDays
}

func (s *Service) since(days int) string {
	if days <= 0 {
		days = s.opts.WindowDays
	}
	return dateutils.DaysAgo(s.now(), days)
}

// Summary totals categorized income and expense over the last days and adds
// recommendations.
func (s *Service) Summary(ctx context.Context, days int) (models.Summary, error) {
	if days <= 0 {
		days = s.opts.WindowDays
	}
	txs, err := s.repo.LabeledSince(ctx, s.since(days))
	if err != nil {
		return models.Summary{}, err
	}
	if len(txs) == 0 {
		return models.Summary{
			TotalIncome:     decimal.Zero,
			TotalExpense:    decimal.Zero,
			NetSavings:      decimal.Zero,
			Recommendations: []string{fmt.Sprintf("No transactions recorded in the last %d days.", days)},
		}, nil
	}

	income, expense, food := decimal.Zero, decimal.Zero, decimal.Zero
	keyword := strings.ToLower(s.opts.FoodKeyword)
	for _, tx := range txs {
		switch tx.Type {
		case models.DirectionCredit:
			income = income.Add(tx.Amount)
		case models.DirectionDebit:
			expense = expense.Add(tx.Amount)
			if strings.Contains(strings.ToLower(tx.CategoryName()), keyword) {
				food = food.Add(tx.Amount)
			}
		}
	}
	net := income.Sub(expense)

	var recs []string
	if expense.IsPositive() {
		percent := food.Div(expense).Mul(decimal.NewFromInt(100))
		if percent.GreaterThan(decimal.NewFromFloat(s.opts.FoodAlertPercent)) {
			recs = append(recs, fmt.Sprintf(
				"High Food Spending: %s%% of total expenses. Consider a budget review.", percent.StringFixed(1)))
		}
	}
	if net.IsPositive() {
		recs = append(recs, fmt.Sprintf("Excellent! Your net savings are positive for the last %d days.", days))
	}
	if len(recs) == 0 {
		recs = append(recs, fmt.Sprintf("Financial status is stable for the last %d days.", days))
	}

	return models.Summary{
		TotalIncome:     income.Round(2),
		TotalExpense:    expense.Round(2),
		NetSavings:      net.Round(2),
		Recommendations: recs,
	}, nil
}

// Breakdown returns DEBIT spending per category over the last days.
func (s *Service) Breakdown(ctx context.Context, days int) (map[string]decimal.Decimal, error) {
	return s.repo.SpendingByCategory(ctx, s.since(days))
}

// BudgetStatus returns every budget with this month's spending.
func (s *Service) BudgetStatus(ctx context.Context) (map[string]models.BudgetStatus, error) {
	budgets, err := s.repo.Budgets(ctx)
	if err != nil {
		return nil, err
	}
	monthStart := dateutils.ToISODate(dateutils.StartOfMonth(s.now()))
	spent, err := s.repo.SpendingByCategory(ctx, monthStart)
	if err != nil {
		return nil, err
	}

	status := make(map[string]models.BudgetStatus, len(budgets))
	for _, b := range budgets {
		status[b.Category] = models.BudgetStatus{Limit: b.MonthlyLimit, Spent: spent[b.Category]}
	}
	return status, nil
}

// SetBudget validates and stores a monthly limit.
func (s *Service) SetBudget(ctx context.Context, category string, limit decimal.Decimal) (models.Budget, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return models.Budget{}, fmt.Errorf("%w: category is required", ErrInvalidBudget)
	}
	if limit.IsNegative() {
		return models.Budget{}, fmt.Errorf("%w: monthly limit must not be negative", ErrInvalidBudget)
	}
	b := models.Budget{Category: category, MonthlyLimit: limit}
	if err := s.repo.SetBudget(ctx, b); err != nil {
		return models.Budget{}, err
	}
	s.logger.Info("Budget set",
		logging.F(logging.FieldCategory, category),
		logging.F("monthly_limit", limit.String()))
	return b, nil
}

type budgetFile struct {
	Budgets map[string]float64 `yaml:"budgets"`
}

// ImportBudgets upserts the limits listed in a YAML file of the form
//
//	budgets:
//	  Food: 5000
//	  Transport: 2000
func (s *Service) ImportBudgets(ctx context.Context, path string) ([]models.Budget, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading budget file: %w", err)
	}
	var file budgetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("error parsing budget file: %w", err)
	}

	categories := make([]string, 0, len(file.Budgets))
	for c := range file.Budgets {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	out := make([]models.Budget, 0, len(categories))
	for _, c := range categories {
		b, err := s.SetBudget(ctx, c, decimal.NewFromFloat(file.Budgets[c]))
		if err != nil {
			return out, err
		}
		out = append(out, b)
	}
	return out, nil
}
