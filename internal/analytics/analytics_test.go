package analytics

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fintrack/internal/logging"
	"fintrack/internal/models"
	"fintrack/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)

func newService(t *testing.T, txs ...models.Transaction) (*Service, *store.Store) {
	t.Helper()
	s, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "tracker.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	if len(txs) > 0 {
		require.NoError(t, s.InsertTransactions(context.Background(), txs))
	}

	svc := NewService(s, Options{}, logging.NewMockLogger())
	svc.SetClock(func() time.Time { return today })
	return svc, s
}

func tx(date, amount string, kind models.Direction, category string) models.Transaction {
	t := models.Transaction{Date: date, RawText: category, Amount: decimal.RequireFromString(amount), Type: kind}
	if category != "" {
		t = t.WithCategory(category)
	}
	return t
}

func TestSummary_Empty(t *testing.T) {
	svc, _ := newService(t)

	sum, err := svc.Summary(context.Background(), 0)
	require.NoError(t, err)
	assert.True(t, sum.TotalIncome.IsZero())
	assert.Equal(t, []string{"No transactions recorded in the last 30 days."}, sum.Recommendations)
}

func TestSummary_Recommendations(t *testing.T) {
	svc, _ := newService(t,
		tx("2024-03-01", "5000", models.DirectionCredit, "Income"),
		tx("2024-03-02", "600", models.DirectionDebit, "Food"),
		tx("2024-03-05", "400", models.DirectionDebit, "Transport"),
		tx("2024-03-06", "100", models.DirectionDebit, "Fast Food"),
		tx("2024-03-07", "50", models.DirectionDebit, ""),
		tx("2024-01-01", "9999", models.DirectionDebit, "Food"),
	)

	sum, err := svc.Summary(context.Background(), 30)
	require.NoError(t, err)
	assert.Equal(t, "5000", sum.TotalIncome.String())
	assert.Equal(t, "1100", sum.TotalExpense.String())
	assert.Equal(t, "3900", sum.NetSavings.String())
	assert.Equal(t, []string{
		"High Food Spending: 63.6% of total expenses. Consider a budget review.",
		"Excellent! Your net savings are positive for the last 30 days.",
	}, sum.Recommendations)
}

func TestSummary_Stable(t *testing.T) {
	svc, _ := newService(t,
		tx("2024-03-02", "100", models.DirectionDebit, "Transport"),
	)

	sum, err := svc.Summary(context.Background(), 30)
	require.NoError(t, err)
	assert.Equal(t, "-100", sum.NetSavings.String())
	assert.Equal(t, []string{"Financial status is stable for the last 30 days."}, sum.Recommendations)

	sum, err = svc.Summary(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, sum.NetSavings.IsZero())
	assert.Equal(t, []string{"No transactions recorded in the last 7 days."}, sum.Recommendations)
}

func TestBreakdown(t *testing.T) {
	svc, _ := newService(t,
		tx("2024-03-02", "600", models.DirectionDebit, "Food"),
		tx("2024-03-03", "150.5", models.DirectionDebit, "Food"),
		tx("2024-03-05", "5000", models.DirectionCredit, "Income"),
	)

	b, err := svc.Breakdown(context.Background(), 30)
	require.NoError(t, err)
	assert.Len(t, b, 1)
	assert.Equal(t, "750.5", b["Food"].String())
}

func TestBudgets(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t,
		tx("2024-02-28", "800", models.DirectionDebit, "Food"),
		tx("2024-03-02", "600", models.DirectionDebit, "Food"),
	)

	_, err := svc.SetBudget(ctx, "Food", decimal.NewFromInt(500))
	require.NoError(t, err)
	_, err = svc.SetBudget(ctx, "Bills", decimal.NewFromInt(2000))
	require.NoError(t, err)

	_, err = svc.SetBudget(ctx, " ", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, ErrInvalidBudget)
	_, err = svc.SetBudget(ctx, "Food", decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, ErrInvalidBudget)

	status, err := svc.BudgetStatus(ctx)
	require.NoError(t, err)
	require.Len(t, status, 2)
	assert.Equal(t, "600", status["Food"].Spent.String(), "only the current month counts")
	assert.True(t, status["Food"].OverBudget())
	assert.True(t, status["Bills"].Spent.IsZero())
}

func TestImportBudgets(t *testing.T) {
	ctx := context.Background()
	svc, s := newService(t)
	path := filepath.Join(t.TempDir(), "budgets.yaml")
	require.NoError(t, os.WriteFile(path, []byte("budgets:\n  Transport: 2000\n  Food: 5000.5\n"), 0o600))

	imported, err := svc.ImportBudgets(ctx, path)
	require.NoError(t, err)
	require.Len(t, imported, 2)
	assert.Equal(t, "Food", imported[0].Category)

	stored, err := s.Budgets(ctx)
	require.NoError(t, err)
	assert.Equal(t, "5000.5", stored[0].MonthlyLimit.String())

	_, err = svc.ImportBudgets(ctx, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
