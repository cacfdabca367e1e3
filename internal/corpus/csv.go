package corpus

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"fintrack/internal/modelerror"
	"fintrack/internal/models"

	"github.com/gocarina/gocsv"
)

var errNoStore = errors.New("no store configured")

// SeedRow is one line of the seed transactions file.
type SeedRow struct {
	Date           string `csv:"Date"`
	RawText        string `csv:"Raw_Text"`
	Amount         string `csv:"Amount"`
	Type           string `csv:"Type"`
	ManualCategory string `csv:"Manual_Category"`
}

// Category returns the manual label or nil when blank.
func (r SeedRow) Category() *string {
	c := strings.TrimSpace(r.ManualCategory)
	if c == "" {
		return nil
	}
	return &c
}

// ReadSeedFile parses the seed CSV. Columns are matched by header name, so
// files carrying only Raw_Text and Manual_Category are accepted.
func ReadSeedFile(path string, delimiter rune) ([]SeedRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	if delimiter != 0 {
		reader.Comma = delimiter
	}
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows []SeedRow
	if err := gocsv.UnmarshalCSV(reader, &rows); err != nil {
		return nil, fmt.Errorf("error parsing CSV file %s: %w", path, err)
	}
	return rows, nil
}

// SeedRowOf renders a stored transaction in the seed file layout, so an
// export can be fed back in as a seed or training corpus.
func SeedRowOf(tx models.Transaction) SeedRow {
	row := SeedRow{
		Date:    tx.Date,
		RawText: tx.RawText,
		Amount:  tx.Amount.String(),
		Type:    string(tx.Type),
	}
	if tx.Category != nil {
		row.ManualCategory = *tx.Category
	}
	return row
}

// WriteSeedFile writes rows, with a header line, in the seed file layout.
func WriteSeedFile(w io.Writer, rows []SeedRow, delimiter rune) error {
	writer := csv.NewWriter(w)
	if delimiter != 0 {
		writer.Comma = delimiter
	}
	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(writer)); err != nil {
		return fmt.Errorf("error writing CSV: %w", err)
	}
	return nil
}

// CSVSource reads training rows from the seed file.
type CSVSource struct {
	Path      string
	Delimiter rune
}

// NewCSVSource returns a source for path using delimiter (',' when zero).
func NewCSVSource(path string, delimiter rune) *CSVSource {
	if delimiter == 0 {
		delimiter = ','
	}
	return &CSVSource{Path: path, Delimiter: delimiter}
}

func (s *CSVSource) Rows(ctx context.Context) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, &modelerror.SourceError{Source: s.Name(), Err: err}
	}
	seed, err := ReadSeedFile(s.Path, s.Delimiter)
	if err != nil {
		return nil, &modelerror.SourceError{Source: s.Name(), Err: err}
	}
	rows := make([]Row, 0, len(seed))
	for _, r := range seed {
		rows = append(rows, Row{RawText: r.RawText, Category: r.Category()})
	}
	return rows, nil
}

func (s *CSVSource) Name() string { return s.Path }
