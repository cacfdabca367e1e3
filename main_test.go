package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fintrack/cmd/root"
	"fintrack/internal/corpus"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupWorkspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	var seed strings.Builder
	seed.WriteString("Date,Raw_Text,Amount,Type,Manual_Category\n")
	for i := 0; i < 12; i++ {
		fmt.Fprintf(&seed, "2024-03-%02d,Swiggy dinner order %d,450,DEBIT,Food\n", i+1, i)
		fmt.Fprintf(&seed, "2024-03-%02d,Uber cab ride %d,120,DEBIT,Transport\n", i+1, i)
	}
	seed.WriteString("2024-03-20,Ola cab ride to office,90,DEBIT,\n")
	seedPath := filepath.Join(dir, "raw_transactions.csv")
	require.NoError(t, os.WriteFile(seedPath, []byte(seed.String()), 0o600))

	budgets := filepath.Join(dir, "budgets.yaml")
	require.NoError(t, os.WriteFile(budgets, []byte("budgets:\n  Transport: 2000\n"), 0o600))

	t.Setenv("FINTRACK_DATA_DB_PATH", filepath.Join(dir, "tracker.db"))
	t.Setenv("FINTRACK_DATA_SEED_PATH", seedPath)
	t.Setenv("FINTRACK_MODEL_PATH", filepath.Join(dir, "models", "bundle.yaml"))
	t.Setenv("FINTRACK_LOG_LEVEL", "error")

	original, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(original) })
	return dir
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	root.Cmd.SetOut(&out)
	root.Cmd.SetErr(&out)
	root.Cmd.SetArgs(args)
	require.NoError(t, root.Cmd.Execute(), "fintrack %s: %s", strings.Join(args, " "), out.String())
	return out.String()
}

func TestCLI_EndToEnd(t *testing.T) {
	dir := setupWorkspace(t)

	assert.Equal(t, "Seeded 25 transactions, categorized 1\n", run(t, "ingest"))
	assert.FileExists(t, filepath.Join(dir, "models", "bundle.yaml"))

	assert.Equal(t, "Food\n", run(t, "predict", "Paid Rs 250.00 for Swiggy dinner"))
	assert.Contains(t, run(t, "add", "INR 600.00 debited for Uber cab"), "-> Transport")
	assert.Contains(t, run(t, "add", "--amount", "80", "--date", "2024-03-21", "--description", "Swiggy snack"), "-> Food")

	assert.Contains(t, run(t, "budget", "set", "Food", "5000"), "Budget for Food set to 5000.00")
	assert.Contains(t, run(t, "budget", "import", filepath.Join(dir, "budgets.yaml")), "Imported 1 budgets")
	list := run(t, "budget", "list")
	assert.Contains(t, list, "CATEGORY")
	assert.Contains(t, list, "Food")
	assert.Contains(t, list, "Transport")

	assert.Contains(t, run(t, "summary", "--days", "36500"), "High Food Spending")

	status := run(t, "model")
	assert.Contains(t, status, "State:      READY")
	assert.Contains(t, status, "[Food Transport]")

	// Only the 24 manually labeled seed rows train; the three predicted rows do not.
	assert.Contains(t, run(t, "train", "--from-db"), "trained on 24 samples")

	exported := filepath.Join(dir, "export.csv")
	run(t, "export", "--output", exported)
	rows, err := corpus.ReadSeedFile(exported, ',')
	require.NoError(t, err)
	assert.Len(t, rows, 27)
	assert.Equal(t, "Swiggy dinner order 0", rows[0].RawText)
}

func TestCLI_Errors(t *testing.T) {
	setupWorkspace(t)

	root.Cmd.SetArgs([]string{"budget", "set", "Food", "lots"})
	root.Cmd.SetOut(&bytes.Buffer{})
	err := root.Cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid monthly limit")

	t.Setenv("FINTRACK_SERVER_PORT", "0")
	root.Cmd.SetArgs([]string{"model"})
	err = root.Cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port")
}
