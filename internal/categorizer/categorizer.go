// Package categorizer assigns spending categories to raw transaction text.
// It is the single entry point used by ingestion and the API: Predict never
// fails, every failure below it collapses into the Uncategorized label.
package categorizer

import (
	"context"
	"fmt"

	"fintrack/internal/corpus"
	"fintrack/internal/lifecycle"
	"fintrack/internal/logging"
	"fintrack/internal/modelerror"
	"fintrack/internal/models"
	"fintrack/internal/textutils"
)

// Result is the auditable outcome of one categorization.
type Result struct {
	Category string
	Kind     modelerror.Kind
	Err      error
}

// OK reports whether the category came from the model.
func (r Result) OK() bool {
	return r.Err == nil
}

// Categorizer wraps a model provider with the sentinel fallback policy.
type Categorizer struct {
	models ModelProvider
	logger logging.Logger
}

// NewCategorizer creates a Categorizer backed by provider.
func NewCategorizer(provider ModelProvider, logger logging.Logger) *Categorizer {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Categorizer{
		models: provider,
		logger: logger.WithField(logging.FieldComponent, "categorizer"),
	}
}

// Categorize predicts a category for rawText and reports why it fell back
// to Uncategorized when it did.
func (c *Categorizer) Categorize(ctx context.Context, rawText string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			err := &modelerror.PredictionError{Stage: "predict", Err: fmt.Errorf("panic: %v", r)}
			res = fallback(err)
		}
	}()

	if c == nil || c.models == nil {
		return fallback(&modelerror.PredictionError{Stage: "load", Err: modelerror.ErrArtifactNotFound})
	}

	bundle, err := c.models.LoadOrTrain(ctx)
	if err != nil {
		return fallback(err)
	}

	label, err := bundle.Predict(textutils.Normalize(rawText))
	if err != nil {
		return fallback(&modelerror.PredictionError{Stage: "predict", Err: err})
	}
	return Result{Category: label}
}

func fallback(err error) Result {
	return Result{Category: models.CategoryUncategorized, Kind: modelerror.KindOf(err), Err: err}
}

// Predict returns the category for rawText, or Uncategorized.
func (c *Categorizer) Predict(ctx context.Context, rawText string) string {
	res := c.Categorize(ctx, rawText)
	if res.Err != nil {
		log := c.logger
		if log == nil {
			log = logging.GetLogger()
		}
		switch res.Kind {
		case modelerror.KindPredictionFault:
			log.WithError(res.Err).Warn("Prediction failed, using fallback category")
		default:
			log.WithError(res.Err).Debug("No model available, using fallback category",
				logging.F(logging.FieldReason, string(res.Kind)))
		}
	}
	return res.Category
}

// Train retrains the model from src (the configured corpus when nil) and
// reports success. Failures are logged, never returned.
func (c *Categorizer) Train(ctx context.Context, src corpus.Source) bool {
	if _, err := c.models.Train(ctx, src); err != nil {
		c.logger.WithError(err).Warn("Training did not produce a model",
			logging.F(logging.FieldReason, string(modelerror.KindOf(err))))
		return false
	}
	return true
}

// ModelInfo exposes the lifecycle status.
func (c *Categorizer) ModelInfo() lifecycle.Info {
	return c.models.Info()
}
