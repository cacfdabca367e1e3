// Package api exposes the tracker over HTTP with gin.
package api

import (
	"net/http"
	"strings"
	"time"

	"fintrack/internal/logging"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func init() {
	// Amounts are JSON numbers on the wire.
	decimal.MarshalJSONWithoutQuotes = true
}

// RouterOptions configures middleware.
type RouterOptions struct {
	CORSOrigins []string
	Logger      logging.Logger
}

// NewRouter builds the engine with every route registered.
func NewRouter(h *Handler, opts RouterOptions) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = logging.GetLogger()
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger), corsMiddleware(opts.CORSOrigins))

	api := router.Group("/api")
	{
		data := api.Group("/data")
		{
			data.GET("/summary", h.Summary)
			data.GET("/breakdown", h.Breakdown)
			data.GET("/transactions", h.Transactions)
		}

		api.POST("/predict_and_save", h.PredictAndSave)
		api.POST("/predict", h.Predict)
		api.POST("/transactions", h.AddTransaction)

		api.GET("/budgets", h.Budgets)
		api.POST("/budgets", h.SetBudget)

		model := api.Group("/model")
		{
			model.GET("", h.ModelStatus)
			model.POST("/train", h.Train)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.NoRoute(func(c *gin.Context) {
		NotFound(c, "route not found: "+c.Request.URL.Path)
	})

	return router
}

func requestLogger(logger logging.Logger) gin.HandlerFunc {
	log := logger.WithField(logging.FieldComponent, "api")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("Request handled",
			logging.F(logging.FieldMethod, c.Request.Method),
			logging.F(logging.FieldPath, c.Request.URL.Path),
			logging.F(logging.FieldStatus, c.Writer.Status()),
			logging.F(logging.FieldDuration, time.Since(start).Milliseconds()))
	}
}

// corsMiddleware allows the configured origins; an empty list or "*" allows
// any.
func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o == "*" {
			cfg.AllowAllOrigins = true
			break
		}
		if o != "" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, o)
		}
	}
	if cfg.AllowAllOrigins || len(cfg.AllowOrigins) == 0 {
		cfg.AllowAllOrigins = true
		cfg.AllowOrigins = nil
	}
	return cors.New(cfg)
}
