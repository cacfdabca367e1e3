package ingest

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

type fixedPredictor struct {
	label string
	calls []string
}

func (p *fixedPredictor) Predict(_ context.Context, raw string) string {
	p.calls = append(p.calls, raw)
	return p.label
}

func newService(t *testing.T, label string) (*Service, *store.Store, *fixedPredictor) {
	t.Helper()
	s, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "tracker.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	p := &fixedPredictor{label: label}
	svc := NewService(s, p, ',', logging.NewMockLogger())
	svc.SetClock(func() time.Time { return time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC) })
	return svc, s, p
}

func writeSeed(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "raw_transactions.csv")
	content := "Date,Raw_Text,Amount,Type,Manual_Category\n" +
		"2024-03-01,Rs 450 paid to Swiggy via UPI,450,DEBIT,Food\n" +
		"2024-03-02,Uber ride ref 99812,120.50,DEBIT,\n" +
		"2024-03-03,Salary credited,\"50,000\",CREDIT,Income\n" +
		"2024-03-04,Broken row,abc,DEBIT,Food\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	svc, s, _ := newService(t, "Transport")
	path := writeSeed(t)

	n, err := svc.Seed(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 3, n, "row with an unreadable amount is skipped")

	all, err := s.ListTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Salary credited", all[0].RawText)
	assert.Equal(t, "50000", all[0].Amount.String())
	assert.Equal(t, "paid to Swiggy via", all[2].Description)
	assert.Nil(t, all[1].Category)

	again, err := svc.Seed(ctx, path)
	require.NoError(t, err)
	assert.Zero(t, again, "seeding only runs on an empty store")
}

func TestSeed_MissingFile(t *testing.T) {
	svc, _, _ := newService(t, "Food")
	_, err := svc.Seed(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestApplyPredictions(t *testing.T) {
	ctx := context.Background()
	svc, s, p := newService(t, "Transport")
	_, err := svc.Seed(ctx, writeSeed(t))
	require.NoError(t, err)

	n, err := svc.ApplyPredictions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"Uber ride ref 99812"}, p.calls)

	unlabeled, err := s.Unlabeled(ctx)
	require.NoError(t, err)
	assert.Empty(t, unlabeled)

	n, err = svc.ApplyPredictions(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestApplyPredictions_RetriesUncategorized(t *testing.T) {
	ctx := context.Background()
	svc, s, p := newService(t, models.CategoryUncategorized)
	_, err := svc.Seed(ctx, writeSeed(t))
	require.NoError(t, err)

	n, err := svc.ApplyPredictions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = svc.ApplyPredictions(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "an unchanged fallback is not rewritten")

	p.label = "Transport"
	n, err = svc.ApplyPredictions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "rows left Uncategorized are predicted again once a model answers")

	rows, err := s.LabeledRows(ctx)
	require.NoError(t, err)
	for _, r := range rows {
		assert.NotEqual(t, "Uber ride ref 99812", r.RawText, "predicted rows are not training data")
	}
}

func TestParseRawText(t *testing.T) {
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

	tx := ParseRawText("INR 1,250.00 debited at BigBasket\nAvl bal 10,000.00", now)
	assert.Equal(t, "2024-03-15", tx.Date)
	assert.Equal(t, "1250", tx.Amount.String())
	assert.Equal(t, models.DirectionDebit, tx.Type)
	assert.Equal(t, "INR 1,250.00 debited at BigBasket", tx.Description)

	salary := ParseRawText("Salary CREDITED 75000", now)
	assert.Equal(t, models.DirectionCredit, salary.Type)
	assert.True(t, salary.Amount.IsZero())
}

func TestPredictAndSave(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t, "Food")

	saved, err := svc.PredictAndSave(ctx, "Swiggy dinner 600.00")
	require.NoError(t, err)
	assert.NotZero(t, saved.ID)
	assert.Equal(t, "Food", saved.CategoryName())
	assert.Equal(t, "600", saved.Amount.String())

	_, err = svc.PredictAndSave(ctx, "   ")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSaveManual(t *testing.T) {
	ctx := context.Background()
	svc, _, p := newService(t, "Shopping")

	saved, err := svc.SaveManual(ctx, ManualInput{
		Date: "2024-03-10", Amount: decimal.NewFromInt(300), Type: "expense",
		Category: "Food", Description: "Lunch",
	})
	require.NoError(t, err)
	assert.Equal(t, models.DirectionDebit, saved.Type)
	assert.Equal(t, "Lunch", saved.RawText)
	assert.Equal(t, "Food", saved.CategoryName())
	assert.Empty(t, p.calls)

	predicted, err := svc.SaveManual(ctx, ManualInput{
		Date: "2024-03-11", Amount: decimal.NewFromInt(999), Type: "income",
		Description: "Refund", RawText: "Amazon refund credited",
	})
	require.NoError(t, err)
	assert.Equal(t, models.DirectionCredit, predicted.Type)
	assert.Equal(t, "Shopping", predicted.CategoryName())
	assert.Equal(t, []string{"Amazon refund credited"}, p.calls)

	dayFirst, err := svc.SaveManual(ctx, ManualInput{
		Date: "12/03/2024", Amount: decimal.NewFromInt(40), Type: "expense",
		Category: "Food", Description: "Chai",
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-12", dayFirst.Date)

	_, err = svc.SaveManual(ctx, ManualInput{Date: "yesterday", Type: "expense"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
