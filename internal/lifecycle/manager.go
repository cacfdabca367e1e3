// Package lifecycle owns the resident categorization model: it trains
// bundles from a corpus, persists them, loads them back and retrains on
// demand. At most one training run executes at a time.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"fintrack/internal/artifact"
	"fintrack/internal/classifier"
	"fintrack/internal/corpus"
	"fintrack/internal/logging"
	"fintrack/internal/modelerror"
	"fintrack/internal/textutils"

	"golang.org/x/sync/singleflight"
)

// State of the resident model.
type State string

const (
	StateAbsent         State = "ABSENT"
	StateTraining       State = "TRAINING"
	StateReady          State = "READY"
	StateTrainingFailed State = "TRAINING_FAILED"
)

const (
	DefaultMinSamples    = 20
	DefaultMinCategories = 2
)

// Options configures training and the load-or-train policy.
type Options struct {
	MinSamples    int
	MinCategories int
	MaxFeatures   int
	Alpha         float64
	StopWords     classifier.StopWords

	// RetryInterval suppresses the training fallback of LoadOrTrain after a
	// failed run. Zero retries on every call.
	RetryInterval time.Duration
}

// Info describes the resident model for status endpoints.
type Info struct {
	State     State     `json:"state"`
	Version   string    `json:"version,omitempty"`
	TrainedAt time.Time `json:"trained_at,omitempty"`
	Samples   int       `json:"samples,omitempty"`
	Classes   []string  `json:"classes,omitempty"`
	Features  int       `json:"features,omitempty"`
	LastError string    `json:"last_error,omitempty"`
}

// Manager holds the application's single resident bundle.
type Manager struct {
	store  artifact.Store
	source corpus.Source
	opts   Options
	logger logging.Logger
	now    func() time.Time

	mu        sync.RWMutex
	state     State
	current   *classifier.Bundle
	lastErr   error
	failedAt  time.Time
	trainMu   sync.Mutex
	loadGroup singleflight.Group
}

// NewManager returns a manager in the ABSENT state. source is the default
// corpus used by LoadOrTrain.
func NewManager(store artifact.Store, source corpus.Source, opts Options, logger logging.Logger) *Manager {
	if logger == nil {
		logger = logging.GetLogger()
	}
	if opts.MinSamples <= 0 {
		opts.MinSamples = DefaultMinSamples
	}
	if opts.MinCategories <= 0 {
		opts.MinCategories = DefaultMinCategories
	}
	if opts.MaxFeatures <= 0 {
		opts.MaxFeatures = classifier.DefaultMaxFeatures
	}
	if opts.Alpha <= 0 {
		opts.Alpha = classifier.DefaultAlpha
	}
	return &Manager{
		store:  store,
		source: source,
		opts:   opts,
		logger: logger.WithField(logging.FieldComponent, "lifecycle"),
		now:    time.Now,
		state:  StateAbsent,
	}
}

// SetClock overrides the time source, for tests.
func (m *Manager) SetClock(now func() time.Time) {
	m.now = now
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Current returns the resident bundle or nil.
func (m *Manager) Current() *classifier.Bundle {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Info reports the state and resident bundle metadata.
func (m *Manager) Info() Info {
	m.mu.RLock()
	defer m.mu.RUnlock()
	info := Info{State: m.state}
	if m.lastErr != nil {
		info.LastError = m.lastErr.Error()
	}
	if b := m.current; b != nil {
		info.Version = b.ID
		info.TrainedAt = b.TrainedAt
		info.Samples = b.Samples
		info.Classes = b.Classes()
		info.Features = b.Vectorizer.Features()
	}
	return info
}

// Train fits a new bundle from src (the default source when nil), persists
// it and makes it resident. On failure a previously resident bundle is kept.
func (m *Manager) Train(ctx context.Context, src corpus.Source) (*classifier.Bundle, error) {
	if src == nil {
		src = m.source
	}
	m.trainMu.Lock()
	defer m.trainMu.Unlock()
	return m.trainLocked(ctx, src)
}

// Retrain is the administrative trigger; it behaves like Train.
func (m *Manager) Retrain(ctx context.Context, src corpus.Source) (*classifier.Bundle, error) {
	m.logger.Info("Retrain requested")
	return m.Train(ctx, src)
}

// LoadOrTrain returns the resident bundle, otherwise loads the persisted one,
// otherwise trains from the default source. Concurrent callers share a
// single attempt. A recent training failure suppresses the training
// fallback for RetryInterval but never the load.
func (m *Manager) LoadOrTrain(ctx context.Context) (*classifier.Bundle, error) {
	if b := m.Current(); b != nil {
		return b, nil
	}

	v, err, _ := m.loadGroup.Do("load", func() (interface{}, error) {
		return m.loadOrTrain(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*classifier.Bundle), nil
}

func (m *Manager) loadOrTrain(ctx context.Context) (*classifier.Bundle, error) {
	m.trainMu.Lock()
	defer m.trainMu.Unlock()

	if b := m.Current(); b != nil {
		return b, nil
	}

	b, err := m.store.Load(ctx)
	if err == nil {
		m.setReady(b)
		m.logger.Info("Loaded model bundle",
			logging.F(logging.FieldModelVersion, b.ID),
			logging.F(logging.FieldSamples, b.Samples))
		return b, nil
	}

	if lastErr := m.recentFailure(); lastErr != nil {
		return nil, lastErr
	}
	if errors.Is(err, modelerror.ErrArtifactNotFound) {
		m.logger.Info("No persisted model bundle, training a new one")
	} else {
		m.logger.WithError(err).Warn("Persisted model bundle unusable, retraining")
	}
	return m.trainLocked(ctx, m.source)
}

// recentFailure returns the last training error while it is younger than
// RetryInterval.
func (m *Manager) recentFailure() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.lastErr == nil || m.opts.RetryInterval <= 0 {
		return nil
	}
	if m.now().Sub(m.failedAt) >= m.opts.RetryInterval {
		return nil
	}
	return m.lastErr
}

func (m *Manager) trainLocked(ctx context.Context, src corpus.Source) (*classifier.Bundle, error) {
	if src == nil {
		return nil, m.fail(&modelerror.SourceError{Source: "none", Err: errors.New("no corpus source configured")})
	}

	m.mu.Lock()
	m.state = StateTraining
	m.mu.Unlock()

	start := m.now()
	log := m.logger.WithField(logging.FieldFile, src.Name())

	rows, err := src.Rows(ctx)
	if err != nil {
		var srcErr *modelerror.SourceError
		if !errors.As(err, &srcErr) {
			err = &modelerror.SourceError{Source: src.Name(), Err: err}
		}
		return nil, m.fail(err)
	}

	examples := corpus.Labeled(rows)
	categories := corpus.Categories(examples)
	if len(examples) < m.opts.MinSamples {
		return nil, m.fail(&modelerror.InsufficientDataError{
			Labeled: len(examples), Categories: categories, Minimum: m.opts.MinSamples,
		})
	}
	if categories < m.opts.MinCategories {
		return nil, m.fail(&modelerror.InsufficientDataError{
			Labeled: len(examples), Categories: categories, Minimum: m.opts.MinSamples,
			Reason: fmt.Sprintf("need at least %d categories", m.opts.MinCategories),
		})
	}

	texts := make([]string, len(examples))
	labels := make([]string, len(examples))
	for i, e := range examples {
		texts[i] = textutils.Normalize(e.Text)
		labels[i] = e.Category
	}

	bundle, err := classifier.Fit(texts, labels, classifier.TrainOptions{
		MaxFeatures: m.opts.MaxFeatures,
		Alpha:       m.opts.Alpha,
		StopWords:   m.opts.StopWords,
		Now:         m.now,
	})
	if err != nil {
		return nil, m.fail(&modelerror.InsufficientDataError{
			Labeled: len(examples), Categories: categories, Minimum: m.opts.MinSamples,
			Reason: err.Error(),
		})
	}

	if err := m.store.Save(ctx, bundle); err != nil {
		log.WithError(err).Warn("Failed to persist model bundle, keeping it in memory only")
	}
	m.setReady(bundle)

	log.Info("Model trained",
		logging.F(logging.FieldModelVersion, bundle.ID),
		logging.F(logging.FieldSamples, bundle.Samples),
		logging.F(logging.FieldClasses, categories),
		logging.F(logging.FieldFeatures, bundle.Vectorizer.Features()),
		logging.F(logging.FieldDuration, m.now().Sub(start).Milliseconds()))
	return bundle, nil
}

func (m *Manager) setReady(b *classifier.Bundle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = b
	m.state = StateReady
	m.lastErr = nil
	m.failedAt = time.Time{}
}

// fail records err. A resident bundle survives a failed run.
func (m *Manager) fail(err error) error {
	m.mu.Lock()
	if m.current != nil {
		m.state = StateReady
	} else {
		m.state = StateTrainingFailed
	}
	m.lastErr = err
	m.failedAt = m.now()
	state := m.state
	m.mu.Unlock()

	m.logger.WithError(err).Warn("Model training failed",
		logging.F(logging.FieldReason, string(modelerror.KindOf(err))),
		logging.F(logging.FieldState, string(state)))
	return err
}
