package container

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fintrack/internal/artifact"
	"fintrack/internal/config"
	"fintrack/internal/lifecycle"
	"fintrack/internal/logging"
	"fintrack/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Log:  config.LogConfig{Level: "info", Format: "text"},
		Data: config.DataConfig{DBPath: filepath.Join(dir, "tracker.db"), SeedPath: filepath.Join(dir, "seed.csv"), Delimiter: ","},
		Model: config.ModelConfig{
			Path: filepath.Join(dir, "models", "bundle.yaml"), MinSamples: 20, MaxFeatures: 1000,
			Alpha: 1, StopWords: "english", Corpus: config.CorpusSeed,
		},
		Server:    config.ServerConfig{Host: "127.0.0.1", Port: 5000, CORSOrigins: []string{"*"}},
		Analytics: config.AnalyticsConfig{WindowDays: 30, FoodAlertPercent: 25},
	}
}

func writeSeed(t *testing.T, path string) {
	t.Helper()
	var b strings.Builder
	b.WriteString("Date,Raw_Text,Amount,Type,Manual_Category\n")
	for i := 0; i < 12; i++ {
		fmt.Fprintf(&b, "2024-03-%02d,Swiggy dinner order %d,450,DEBIT,Food\n", i+1, i)
		fmt.Fprintf(&b, "2024-03-%02d,Uber cab ride %d,120,DEBIT,Transport\n", i+1, i)
	}
	b.WriteString("2024-03-20,Ola cab ride to office,90,DEBIT,\n")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o600))
}

func TestNewContainer_NilConfig(t *testing.T) {
	_, err := NewContainer(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration cannot be nil")
}

func TestNewContainer_Wiring(t *testing.T) {
	cfg := testConfig(t)
	c, err := NewContainer(context.Background(), cfg, WithLogger(logging.NewMockLogger()))
	require.NoError(t, err)
	defer c.Close()

	assert.NotNil(t, c.GetLogger())
	assert.Same(t, cfg, c.GetConfig())
	assert.NotNil(t, c.GetStore())
	assert.NotNil(t, c.GetCategorizer())
	assert.NotNil(t, c.GetIngest())
	assert.NotNil(t, c.GetAnalytics())
	assert.Equal(t, cfg.Data.SeedPath, c.GetCorpus().Name())
	assert.Equal(t, lifecycle.StateAbsent, c.GetModels().State())

	cfg.Model.Corpus = config.CorpusDatabase
	db, err := NewContainer(context.Background(), cfg, WithLogger(logging.NewMockLogger()))
	require.NoError(t, err)
	defer db.Close()
	assert.Equal(t, "database", db.GetCorpus().Name())
}

func TestBootstrap(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	writeSeed(t, cfg.Data.SeedPath)

	c, err := NewContainer(ctx, cfg, WithLogger(logging.NewMockLogger()))
	require.NoError(t, err)
	defer c.Close()

	report, err := c.Bootstrap(ctx)
	require.NoError(t, err)
	assert.Equal(t, 25, report.Seeded)
	assert.True(t, report.Trained)
	assert.Equal(t, 1, report.Predicted)
	assert.Equal(t, lifecycle.StateReady, c.GetModels().State())
	assert.FileExists(t, cfg.Model.Path)

	txs, err := c.GetStore().ListTransactions(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Transport", txs[0].CategoryName())

	again, err := c.Bootstrap(ctx)
	require.NoError(t, err)
	assert.Zero(t, again.Seeded)
	assert.Zero(t, again.Predicted)
}

func TestBootstrap_NoSeedFile(t *testing.T) {
	ctx := context.Background()
	logger := logging.NewMockLogger()
	mem := artifact.NewMemoryStore()

	c, err := NewContainer(ctx, testConfig(t), WithLogger(logger), WithArtifactStore(mem))
	require.NoError(t, err)
	defer c.Close()

	report, err := c.Bootstrap(ctx)
	require.NoError(t, err, "startup continues without seed data")
	assert.False(t, report.Trained)
	assert.True(t, logger.HasEntry("WARN", "Seed file not found, starting without seed data"))
	assert.Equal(t, lifecycle.StateTrainingFailed, c.GetModels().State())
	assert.Zero(t, mem.Saves())

	assert.Equal(t, models.CategoryUncategorized, c.GetCategorizer().Predict(ctx, "Swiggy dinner"))
}

func TestRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, err := NewContainer(context.Background(), testConfig(t), WithLogger(logging.NewMockLogger()))
	require.NoError(t, err)
	defer c.Close()

	w := httptest.NewRecorder()
	c.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
