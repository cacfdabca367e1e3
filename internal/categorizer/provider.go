package categorizer

import (
	"context"

	"fintrack/internal/classifier"
	"fintrack/internal/corpus"
	"fintrack/internal/lifecycle"
)

// ModelProvider supplies the resident model bundle. It is implemented by
// *lifecycle.Manager and replaced by fakes in tests.
type ModelProvider interface {
	LoadOrTrain(ctx context.Context) (*classifier.Bundle, error)
	Train(ctx context.Context, src corpus.Source) (*classifier.Bundle, error)
	Info() lifecycle.Info
}
