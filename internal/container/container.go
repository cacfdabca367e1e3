// Package container provides dependency injection for fintrack.
// It centralizes the creation and wiring of all application dependencies,
// making them explicit and testable.
package container

import (
	"context"
	"errors"
	"fmt"
	"os"

	"fintrack/internal/analytics"
	"fintrack/internal/api"
	"fintrack/internal/artifact"
	"fintrack/internal/categorizer"
	"fintrack/internal/classifier"
	"fintrack/internal/config"
	"fintrack/internal/corpus"
	"fintrack/internal/ingest"
	"fintrack/internal/lifecycle"
	"fintrack/internal/logging"
	"fintrack/internal/store"

	"github.com/gin-gonic/gin"
)

// Container holds all application dependencies and provides methods to access them.
//
// Container is immutable after creation - all fields are private and can only
// be accessed through getter methods.
type Container struct {
	logger      logging.Logger
	config      *config.Config
	store       *store.Store
	corpus      corpus.Source
	models      *lifecycle.Manager
	categorizer *categorizer.Categorizer
	ingest      *ingest.Service
	analytics   *analytics.Service
}

// Option customizes container construction.
type Option func(*options)

type options struct {
	logger    logging.Logger
	artifacts artifact.Store
}

// WithLogger replaces the logger built from the log section.
func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithArtifactStore replaces the file-backed bundle store.
func WithArtifactStore(s artifact.Store) Option {
	return func(o *options) { o.artifacts = s }
}

// NewContainer opens the database and wires every service.
// The caller must Close the container.
func NewContainer(ctx context.Context, cfg *config.Config, opts ...Option) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	// Create logger first as it's needed by other components
	logger := o.logger
	if logger == nil {
		logger = cfg.NewLogger()
	}

	db, err := store.Open(ctx, cfg.Data.DBPath)
	if err != nil {
		return nil, err
	}

	artifacts := o.artifacts
	if artifacts == nil {
		artifacts = artifact.NewFileStore(cfg.Model.Path)
	}

	var source corpus.Source
	switch cfg.Model.Corpus {
	case config.CorpusDatabase:
		source = &corpus.StoreSource{Store: db}
	default:
		source = corpus.NewCSVSource(cfg.Data.SeedPath, cfg.DelimiterRune())
	}

	stopWords, ok := classifier.StopWordsByName(cfg.Model.StopWords)
	if !ok {
		_ = db.Close()
		return nil, fmt.Errorf("unknown stop word list: %s", cfg.Model.StopWords)
	}

	manager := lifecycle.NewManager(artifacts, source, lifecycle.Options{
		MinSamples:    cfg.Model.MinSamples,
		MaxFeatures:   cfg.Model.MaxFeatures,
		Alpha:         cfg.Model.Alpha,
		StopWords:     stopWords,
		RetryInterval: cfg.Model.RetryInterval,
	}, logger)
	cat := categorizer.NewCategorizer(manager, logger)

	logger.Debug("Container initialized",
		logging.F(logging.FieldPath, cfg.Data.DBPath),
		logging.F("corpus", source.Name()))

	return &Container{
		logger:      logger,
		config:      cfg,
		store:       db,
		corpus:      source,
		models:      manager,
		categorizer: cat,
		ingest:      ingest.NewService(db, cat, cfg.DelimiterRune(), logger),
		analytics: analytics.NewService(db, analytics.Options{
			WindowDays:       cfg.Analytics.WindowDays,
			FoodAlertPercent: cfg.Analytics.FoodAlertPercent,
		}, logger),
	}, nil
}

// BootstrapReport summarizes a startup run.
type BootstrapReport struct {
	Seeded    int
	Trained   bool
	Predicted int
}

// Bootstrap runs the startup sequence: seed an empty database, train the
// model and label every uncategorized transaction. A missing seed file or a
// failed training run is logged and does not stop startup; predictions then
// fall back to Uncategorized.
func (c *Container) Bootstrap(ctx context.Context) (BootstrapReport, error) {
	var report BootstrapReport

	seeded, err := c.ingest.Seed(ctx, c.config.Data.SeedPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		c.logger.Warn("Seed file not found, starting without seed data",
			logging.F(logging.FieldFile, c.config.Data.SeedPath))
	case err != nil:
		return report, err
	}
	report.Seeded = seeded

	report.Trained = c.categorizer.Train(ctx, nil)

	predicted, err := c.ingest.ApplyPredictions(ctx)
	if err != nil {
		return report, err
	}
	report.Predicted = predicted

	c.logger.Info("Startup complete",
		logging.F("seeded", report.Seeded),
		logging.F("trained", report.Trained),
		logging.F("predicted", report.Predicted),
		logging.F(logging.FieldState, string(c.models.State())))
	return report, nil
}

// Router builds the HTTP handler over the container's services.
func (c *Container) Router() *gin.Engine {
	h := api.NewHandler(c.categorizer, c.ingest, c.analytics, c.store, c.logger)
	return api.NewRouter(h, api.RouterOptions{
		CORSOrigins: c.config.Server.CORSOrigins,
		Logger:      c.logger,
	})
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetStore returns the transaction store.
func (c *Container) GetStore() *store.Store {
	return c.store
}

// GetModels returns the model lifecycle manager.
func (c *Container) GetModels() *lifecycle.Manager {
	return c.models
}

// GetCorpus returns the default training corpus.
func (c *Container) GetCorpus() corpus.Source {
	return c.corpus
}

// GetCategorizer returns the container's categorizer instance.
func (c *Container) GetCategorizer() *categorizer.Categorizer {
	return c.categorizer
}

// GetIngest returns the ingestion service.
func (c *Container) GetIngest() *ingest.Service {
	return c.ingest
}

// GetAnalytics returns the analytics service.
func (c *Container) GetAnalytics() *analytics.Service {
	return c.analytics
}

// Close releases the database.
func (c *Container) Close() error {
	if err := c.store.Close(); err != nil {
		return fmt.Errorf("failed to close store: %w", err)
	}
	c.logger.Debug("Container closed")
	return nil
}
