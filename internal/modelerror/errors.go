// Package modelerror defines the failure taxonomy of the categorization
// pipeline. Every kind is recoverable: callers branch on Kind rather than on
// message text.
package modelerror

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure.
type Kind string

const (
	KindNone              Kind = ""
	KindSourceUnavailable Kind = "SourceUnavailable"
	KindInsufficientData  Kind = "InsufficientData"
	KindArtifactCorrupt   Kind = "ArtifactCorrupt"
	KindPredictionFault   Kind = "PredictionFault"
)

// Sentinels for errors.Is.
var (
	ErrSourceUnavailable = errors.New("corpus source unavailable")
	ErrInsufficientData  = errors.New("insufficient labeled training data")
	ErrArtifactCorrupt   = errors.New("model artifact corrupt")
	ErrArtifactNotFound  = errors.New("model artifact not found")
	ErrPredictionFault   = errors.New("prediction fault")
)

// SourceError is returned when the corpus cannot be read.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("corpus source %s unavailable: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

func (e *SourceError) Is(target error) bool { return target == ErrSourceUnavailable }

// InsufficientDataError is returned when the labeled corpus is below the
// training minimum.
type InsufficientDataError struct {
	Labeled    int
	Categories int
	Minimum    int
	Reason     string
}

func (e *InsufficientDataError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("insufficient training data: %s (labeled=%d, categories=%d)",
			e.Reason, e.Labeled, e.Categories)
	}
	return fmt.Sprintf("insufficient training data: %d labeled rows, need at least %d",
		e.Labeled, e.Minimum)
}

func (e *InsufficientDataError) Is(target error) bool { return target == ErrInsufficientData }

// ArtifactError is returned when a persisted bundle cannot be read back,
// written, or fails validation.
type ArtifactError struct {
	Path string
	Op   string
	Err  error
}

func (e *ArtifactError) Error() string {
	return fmt.Sprintf("model artifact %s failed (%s): %v", e.Op, e.Path, e.Err)
}

func (e *ArtifactError) Unwrap() error { return e.Err }

func (e *ArtifactError) Is(target error) bool { return target == ErrArtifactCorrupt }

// PredictionError wraps a failure while transforming or scoring one input.
type PredictionError struct {
	Stage string
	Err   error
}

func (e *PredictionError) Error() string {
	return fmt.Sprintf("prediction failed at %s: %v", e.Stage, e.Err)
}

func (e *PredictionError) Unwrap() error { return e.Err }

func (e *PredictionError) Is(target error) bool { return target == ErrPredictionFault }

// KindOf maps err to its Kind. Unknown non-nil errors are treated as
// prediction faults so that nothing escapes classification.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrSourceUnavailable):
		return KindSourceUnavailable
	case errors.Is(err, ErrInsufficientData):
		return KindInsufficientData
	case errors.Is(err, ErrArtifactCorrupt), errors.Is(err, ErrArtifactNotFound):
		return KindArtifactCorrupt
	default:
		return KindPredictionFault
	}
}
