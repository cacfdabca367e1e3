// Package corpus provides the labeled rows the categorization model is
// trained on, whether they come from the seed CSV file, the transaction
// database or memory.
package corpus

import (
	"context"
	"strings"

	"fintrack/internal/modelerror"
	"fintrack/internal/models"
)

// Row is one candidate training example. Category is nil for unlabeled rows.
type Row struct {
	RawText  string
	Category *string
}

// Example is a row eligible for training.
type Example struct {
	Text     string
	Category string
}

// Source yields corpus rows.
type Source interface {
	// Rows returns every row of the source. Failures to read the source are
	// reported as *modelerror.SourceError.
	Rows(ctx context.Context) ([]Row, error)

	// Name identifies the source in logs and errors.
	Name() string
}

// Labeled keeps the rows that have both text and a category, in order. The
// Uncategorized sentinel is never a training label.
func Labeled(rows []Row) []Example {
	examples := make([]Example, 0, len(rows))
	for _, r := range rows {
		if r.Category == nil || strings.TrimSpace(r.RawText) == "" {
			continue
		}
		category := strings.TrimSpace(*r.Category)
		if category == "" || category == models.CategoryUncategorized {
			continue
		}
		examples = append(examples, Example{Text: r.RawText, Category: category})
	}
	return examples
}

// Categories returns the number of distinct labels.
func Categories(examples []Example) int {
	seen := make(map[string]struct{})
	for _, e := range examples {
		seen[e.Category] = struct{}{}
	}
	return len(seen)
}

// SliceSource serves rows held in memory.
type SliceSource struct {
	Label string
	Data  []Row
}

// NewSliceSource builds a SliceSource from (text, category) pairs; an empty
// category becomes an unlabeled row.
func NewSliceSource(label string, pairs ...[2]string) *SliceSource {
	rows := make([]Row, 0, len(pairs))
	for _, p := range pairs {
		row := Row{RawText: p[0]}
		if p[1] != "" {
			category := p[1]
			row.Category = &category
		}
		rows = append(rows, row)
	}
	return &SliceSource{Label: label, Data: rows}
}

func (s *SliceSource) Rows(ctx context.Context) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, &modelerror.SourceError{Source: s.Name(), Err: err}
	}
	return append([]Row(nil), s.Data...), nil
}

func (s *SliceSource) Name() string {
	if s.Label == "" {
		return "memory"
	}
	return s.Label
}

// LabeledRowLister is implemented by stores that can list categorized rows.
type LabeledRowLister interface {
	LabeledRows(ctx context.Context) ([]Row, error)
}

// StoreSource reads the corpus from the transaction database.
type StoreSource struct {
	Store LabeledRowLister
}

func (s *StoreSource) Rows(ctx context.Context) ([]Row, error) {
	if s.Store == nil {
		return nil, &modelerror.SourceError{Source: s.Name(), Err: errNoStore}
	}
	rows, err := s.Store.LabeledRows(ctx)
	if err != nil {
		return nil, &modelerror.SourceError{Source: s.Name(), Err: err}
	}
	return rows, nil
}

func (s *StoreSource) Name() string { return "database" }
