package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"fintrack/internal/analytics"
	"fintrack/internal/categorizer"
	"fintrack/internal/corpus"
	"fintrack/internal/ingest"
	"fintrack/internal/lifecycle"
	"fintrack/internal/logging"
	"fintrack/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// Categorizer is the prediction and training surface.
type Categorizer interface {
	Categorize(ctx context.Context, rawText string) categorizer.Result
	Train(ctx context.Context, src corpus.Source) bool
	ModelInfo() lifecycle.Info
}

// Ingester saves new transactions.
type Ingester interface {
	PredictAndSave(ctx context.Context, raw string) (models.Transaction, error)
	SaveManual(ctx context.Context, in ingest.ManualInput) (models.Transaction, error)
}

// Dashboard answers analytics queries.
type Dashboard interface {
	WindowDays() int
	Summary(ctx context.Context, days int) (models.Summary, error)
	Breakdown(ctx context.Context, days int) (map[string]decimal.Decimal, error)
	BudgetStatus(ctx context.Context) (map[string]models.BudgetStatus, error)
	SetBudget(ctx context.Context, category string, limit decimal.Decimal) (models.Budget, error)
}

// TransactionLister lists stored transactions.
type TransactionLister interface {
	ListTransactions(ctx context.Context) ([]models.Transaction, error)
}

// Handler holds the services behind the routes.
type Handler struct {
	categorizer  Categorizer
	ingest       Ingester
	dashboard    Dashboard
	transactions TransactionLister
	logger       logging.Logger
}

// NewHandler creates a Handler.
func NewHandler(c Categorizer, in Ingester, d Dashboard, tl TransactionLister, logger logging.Logger) *Handler {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Handler{
		categorizer:  c,
		ingest:       in,
		dashboard:    d,
		transactions: tl,
		logger:       logger.WithField(logging.FieldComponent, "api"),
	}
}

type rawTextRequest struct {
	RawText string `json:"raw_text"`
}

type budgetRequest struct {
	Category     string          `json:"category"`
	MonthlyLimit decimal.Decimal `json:"monthly_limit"`
}

type trainRequest struct {
	Examples []struct {
		RawText  string `json:"raw_text"`
		Category string `json:"category"`
	} `json:"examples"`
}

type predictResponse struct {
	Category string `json:"category"`
	Fallback bool   `json:"fallback"`
	Reason   string `json:"reason,omitempty"`
}

type trainResponse struct {
	Success bool            `json:"success"`
	State   lifecycle.State `json:"state"`
	Version string          `json:"version,omitempty"`
	Samples int             `json:"samples"`
	Error   string          `json:"error,omitempty"`
}

func (h *Handler) days(c *gin.Context) (int, bool) {
	raw := c.Query("days")
	if raw == "" {
		return h.dashboard.WindowDays(), true
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 1 {
		BadRequest(c, fmt.Sprintf("days must be a positive integer, got %q", raw))
		return 0, false
	}
	return days, true
}

func (h *Handler) internal(c *gin.Context, op string, err error) {
	h.logger.WithError(err).Error("Request failed", logging.F(logging.FieldOperation, op))
	Internal(c, fmt.Sprintf("%s failed: %v", op, err))
}

// Summary handles GET /api/data/summary?days=N.
func (h *Handler) Summary(c *gin.Context) {
	days, ok := h.days(c)
	if !ok {
		return
	}
	sum, err := h.dashboard.Summary(c.Request.Context(), days)
	if err != nil {
		h.internal(c, "summary", err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

// Breakdown handles GET /api/data/breakdown?days=N.
func (h *Handler) Breakdown(c *gin.Context) {
	days, ok := h.days(c)
	if !ok {
		return
	}
	b, err := h.dashboard.Breakdown(c.Request.Context(), days)
	if err != nil {
		h.internal(c, "breakdown", err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// Transactions handles GET /api/data/transactions.
func (h *Handler) Transactions(c *gin.Context) {
	txs, err := h.transactions.ListTransactions(c.Request.Context())
	if err != nil {
		h.internal(c, "list transactions", err)
		return
	}
	if txs == nil {
		txs = []models.Transaction{}
	}
	c.JSON(http.StatusOK, txs)
}

// PredictAndSave handles POST /api/predict_and_save.
func (h *Handler) PredictAndSave(c *gin.Context) {
	var req rawTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	tx, err := h.ingest.PredictAndSave(c.Request.Context(), req.RawText)
	if errors.Is(err, ingest.ErrInvalidInput) {
		BadRequest(c, err.Error())
		return
	}
	if err != nil {
		h.internal(c, "save transaction", err)
		return
	}
	c.JSON(http.StatusCreated, tx)
}

// Predict handles POST /api/predict without saving.
func (h *Handler) Predict(c *gin.Context) {
	var req rawTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.RawText) == "" {
		BadRequest(c, "raw text input is required")
		return
	}
	res := h.categorizer.Categorize(c.Request.Context(), req.RawText)
	c.JSON(http.StatusOK, predictResponse{
		Category: res.Category,
		Fallback: !res.OK(),
		Reason:   string(res.Kind),
	})
}

// AddTransaction handles POST /api/transactions.
func (h *Handler) AddTransaction(c *gin.Context) {
	var in ingest.ManualInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	tx, err := h.ingest.SaveManual(c.Request.Context(), in)
	if errors.Is(err, ingest.ErrInvalidInput) {
		BadRequest(c, err.Error())
		return
	}
	if err != nil {
		h.internal(c, "save transaction", err)
		return
	}
	c.JSON(http.StatusCreated, tx)
}

// Budgets handles GET /api/budgets.
func (h *Handler) Budgets(c *gin.Context) {
	status, err := h.dashboard.BudgetStatus(c.Request.Context())
	if err != nil {
		h.internal(c, "budget status", err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// SetBudget handles POST /api/budgets.
func (h *Handler) SetBudget(c *gin.Context) {
	var req budgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	b, err := h.dashboard.SetBudget(c.Request.Context(), req.Category, req.MonthlyLimit)
	if errors.Is(err, analytics.ErrInvalidBudget) {
		BadRequest(c, err.Error())
		return
	}
	if err != nil {
		h.internal(c, "set budget", err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// ModelStatus handles GET /api/model.
func (h *Handler) ModelStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.categorizer.ModelInfo())
}

// Train handles POST /api/model/train. An empty body retrains from the
// configured corpus; a list of examples trains from those instead.
func (h *Handler) Train(c *gin.Context) {
	var req trainRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			BadRequest(c, "invalid request body: "+err.Error())
			return
		}
	}

	var src corpus.Source
	if len(req.Examples) > 0 {
		pairs := make([][2]string, 0, len(req.Examples))
		for _, ex := range req.Examples {
			pairs = append(pairs, [2]string{ex.RawText, ex.Category})
		}
		src = corpus.NewSliceSource("request", pairs...)
	}

	ok := h.categorizer.Train(c.Request.Context(), src)
	info := h.categorizer.ModelInfo()
	resp := trainResponse{
		Success: ok,
		State:   info.State,
		Version: info.Version,
		Samples: info.Samples,
	}
	if !ok {
		resp.Error = info.LastError
	}
	c.JSON(http.StatusOK, resp)
}
