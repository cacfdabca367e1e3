// Package classifier implements the text categorization model: a TF-IDF
// vectorizer and a multinomial Naive Bayes classifier, packaged together as a
// single versioned Bundle so that one can never be used with the other half
// of a different training run.
package classifier

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// FormatVersion identifies the persisted bundle layout.
const FormatVersion = 1

// Bundle is one training run's fitted vectorizer and classifier.
type Bundle struct {
	FormatVersion int         `yaml:"format_version"`
	ID            string      `yaml:"id"`
	TrainedAt     time.Time   `yaml:"trained_at"`
	Samples       int         `yaml:"samples"`
	Vectorizer    *Vectorizer `yaml:"vectorizer"`
	Model         *NaiveBayes `yaml:"model"`
}

// TrainOptions configures Fit.
type TrainOptions struct {
	MaxFeatures int
	Alpha       float64
	StopWords   StopWords
	Now         func() time.Time
}

// Fit trains a new bundle on normalized texts and their labels.
func Fit(texts, labels []string, opts TrainOptions) (*Bundle, error) {
	if len(texts) != len(labels) {
		return nil, fmt.Errorf("got %d texts but %d labels", len(texts), len(labels))
	}
	alpha := opts.Alpha
	if alpha == 0 {
		alpha = DefaultAlpha
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	vec, err := FitVectorizer(texts, VectorizerOptions{
		MaxFeatures: opts.MaxFeatures,
		StopWords:   opts.StopWords,
	})
	if err != nil {
		return nil, fmt.Errorf("fit vectorizer: %w", err)
	}
	model, err := FitNaiveBayes(vec.TransformAll(texts), labels, alpha)
	if err != nil {
		return nil, fmt.Errorf("fit classifier: %w", err)
	}

	return &Bundle{
		FormatVersion: FormatVersion,
		ID:            uuid.NewString(),
		TrainedAt:     now().UTC(),
		Samples:       len(texts),
		Vectorizer:    vec,
		Model:         model,
	}, nil
}

// Validate rejects bundles of another format or whose halves disagree.
func (b *Bundle) Validate() error {
	if b == nil {
		return errors.New("bundle missing")
	}
	if b.FormatVersion != FormatVersion {
		return fmt.Errorf("unsupported bundle format %d (want %d)", b.FormatVersion, FormatVersion)
	}
	if _, err := uuid.Parse(b.ID); err != nil {
		return fmt.Errorf("invalid bundle id %q: %w", b.ID, err)
	}
	if err := b.Vectorizer.Validate(); err != nil {
		return fmt.Errorf("vectorizer: %w", err)
	}
	if err := b.Model.Validate(); err != nil {
		return fmt.Errorf("classifier: %w", err)
	}
	if b.Vectorizer.Features() != b.Model.Features() {
		return fmt.Errorf("vectorizer has %d features but classifier expects %d",
			b.Vectorizer.Features(), b.Model.Features())
	}
	return nil
}

// Predict scores already-normalized text.
func (b *Bundle) Predict(normalized string) (string, error) {
	if b == nil || b.Vectorizer == nil || b.Model == nil {
		return "", ErrNotFitted
	}
	return b.Model.Predict(b.Vectorizer.Transform(normalized))
}

// Classes returns the label space of this training run.
func (b *Bundle) Classes() []string {
	if b == nil || b.Model == nil {
		return nil
	}
	return append([]string(nil), b.Model.Classes...)
}
