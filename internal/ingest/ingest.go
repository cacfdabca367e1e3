// Package ingest turns seed files, raw notifications and manual entries into
// stored transactions, filling in any missing category by prediction.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fintrack/internal/corpus"
	"fintrack/internal/currencyutils"
	"fintrack/internal/dateutils"
	"fintrack/internal/logging"
	"fintrack/internal/models"
	"fintrack/internal/textutils"

	"github.com/shopspring/decimal"
)

// ErrInvalidInput marks caller mistakes (HTTP 400).
var ErrInvalidInput = errors.New("invalid input")

// Predictor fills in a category for raw text. It never fails.
type Predictor interface {
	Predict(ctx context.Context, rawText string) string
}

// Repository is the part of the store ingestion writes to.
type Repository interface {
	Count(ctx context.Context) (int, error)
	InsertTransactions(ctx context.Context, txs []models.Transaction) error
	SaveTransaction(ctx context.Context, tx models.Transaction) (models.Transaction, error)
	Unlabeled(ctx context.Context) ([]models.Transaction, error)
	UpdateCategories(ctx context.Context, categories map[int64]string) error
}

// ManualInput is a transaction entered by the user.
type ManualInput struct {
	Date        string          `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	RawText     string          `json:"raw_text"`
}

// Service coordinates ingestion.
type Service struct {
	repo      Repository
	predictor Predictor
	logger    logging.Logger
	delimiter rune
	now       func() time.Time
}

// NewService creates an ingestion service.
func NewService(repo Repository, predictor Predictor, delimiter rune, logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Service{
		repo:      repo,
		predictor: predictor,
		logger:    logger.WithField(logging.FieldComponent, "ingest"),
		delimiter: delimiter,
		now:       time.Now,
	}
}

// SetClock overrides the time source, for tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Seed loads the seed CSV into an empty store and returns the number of rows
// inserted. A non-empty store is left untouched. Rows with an unreadable
// amount or type are skipped.
func (s *Service) Seed(ctx context.Context, path string) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Debug("Store already populated, skipping seed", logging.F(logging.FieldCount, n))
		return 0, nil
	}

	rows, err := corpus.ReadSeedFile(path, s.delimiter)
	if err != nil {
		return 0, fmt.Errorf("failed to read seed file: %w", err)
	}

	txs := make([]models.Transaction, 0, len(rows))
	for i, r := range rows {
		tx, err := seedTransaction(r)
		if err != nil {
			s.logger.WithError(err).Warn("Skipping seed row", logging.F("row", i+2))
			continue
		}
		txs = append(txs, tx)
	}
	if err := s.repo.InsertTransactions(ctx, txs); err != nil {
		return 0, err
	}
	s.logger.Info("Seed data loaded",
		logging.F(logging.FieldFile, path),
		logging.F(logging.FieldCount, len(txs)))
	return len(txs), nil
}

func seedTransaction(r corpus.SeedRow) (models.Transaction, error) {
	amount, err := currencyutils.ParseAmount(r.Amount)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("invalid amount %q: %w", r.Amount, err)
	}
	kind, err := models.ParseDirection(r.Type)
	if err != nil {
		return models.Transaction{}, err
	}
	date, err := dateutils.NormalizeDate(r.Date)
	if err != nil {
		return models.Transaction{}, err
	}
	return models.Transaction{
		Date:        date,
		RawText:     r.RawText,
		Amount:      amount.Abs(),
		Type:        kind,
		Category:    r.Category(),
		Description: textutils.ExtractDescription(r.RawText),
	}, nil
}

// ApplyPredictions labels every stored transaction lacking a category,
// retrying rows an earlier run left Uncategorized, and returns how many were
// updated.
func (s *Service) ApplyPredictions(ctx context.Context) (int, error) {
	unlabeled, err := s.repo.Unlabeled(ctx)
	if err != nil {
		return 0, err
	}
	if len(unlabeled) == 0 {
		return 0, nil
	}

	updates := make(map[int64]string, len(unlabeled))
	for _, tx := range unlabeled {
		category := s.predictor.Predict(ctx, tx.RawText)
		if tx.HasCategory() && category == tx.CategoryName() {
			continue
		}
		updates[tx.ID] = category
	}
	if len(updates) == 0 {
		return 0, nil
	}
	if err := s.repo.UpdateCategories(ctx, updates); err != nil {
		return 0, err
	}
	s.logger.Info("Applied predictions", logging.F(logging.FieldCount, len(updates)))
	return len(updates), nil
}

// ParseRawText extracts a transaction from a notification: the first
// two-decimal amount, CREDIT when the text mentions credit or salary, the
// first line as description and today's date.
func ParseRawText(raw string, now time.Time) models.Transaction {
	kind := models.DirectionDebit
	if textutils.IsCredit(raw) {
		kind = models.DirectionCredit
	}
	return models.Transaction{
		Date:        now.Format(models.DateLayout),
		RawText:     raw,
		Amount:      textutils.ExtractAmount(raw),
		Type:        kind,
		Description: textutils.FirstLine(raw),
	}
}

// PredictAndSave categorizes and stores a raw notification.
func (s *Service) PredictAndSave(ctx context.Context, raw string) (models.Transaction, error) {
	if strings.TrimSpace(raw) == "" {
		return models.Transaction{}, fmt.Errorf("%w: raw text input is required", ErrInvalidInput)
	}
	tx := ParseRawText(raw, s.now()).WithPrediction(s.predictor.Predict(ctx, raw))
	saved, err := s.repo.SaveTransaction(ctx, tx)
	if err != nil {
		return models.Transaction{}, err
	}
	s.logger.Info("Saved predicted transaction",
		logging.F(logging.FieldCategory, saved.CategoryName()),
		logging.F("id", saved.ID))
	return saved, nil
}

// SaveManual stores a user-entered transaction. A blank category is
// predicted from the raw text, which defaults to the description.
func (s *Service) SaveManual(ctx context.Context, in ManualInput) (models.Transaction, error) {
	kind := models.DirectionCredit
	if strings.EqualFold(strings.TrimSpace(in.Type), "expense") || strings.EqualFold(strings.TrimSpace(in.Type), "debit") {
		kind = models.DirectionDebit
	}
	raw := in.RawText
	if strings.TrimSpace(raw) == "" {
		raw = in.Description
	}

	date, err := dateutils.NormalizeDate(in.Date)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	tx := models.Transaction{
		Date:        date,
		RawText:     raw,
		Amount:      in.Amount,
		Type:        kind,
		Description: in.Description,
	}
	if err := tx.Validate(); err != nil {
		return models.Transaction{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if category := strings.TrimSpace(in.Category); category != "" {
		tx = tx.WithCategory(category)
	} else {
		tx = tx.WithPrediction(s.predictor.Predict(ctx, raw))
	}

	saved, err := s.repo.SaveTransaction(ctx, tx)
	if err != nil {
		return models.Transaction{}, err
	}
	return saved, nil
}
