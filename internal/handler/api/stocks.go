package api

import (
	"time"

	models "StockScout/internal/domain/models"
	drepo "StockScout/internal/domain/repository"
	"StockScout/internal/usecase"
	xhttp "StockScout/pkg/http"
	xlogger "StockScout/pkg/logger"

	"github.com/labstack/echo/v4"
)

// StocksHandler exposes ingestion and analysis over HTTP.
type StocksHandler struct {
	logger    *xlogger.Logger
	ingestor  *usecase.Ingestor
	rec       *usecase.Recommender
	store     drepo.StockStore
	watchlist []string
}

func NewStocksHandler(
	logger *xlogger.Logger,
	ingestor *usecase.Ingestor,
	rec *usecase.Recommender,
	store drepo.StockStore,
	watchlist []string,
) *StocksHandler {
	return &StocksHandler{
		logger:    logger,
		ingestor:  ingestor,
		rec:       rec,
		store:     store,
		watchlist: watchlist,
	}
}

func (h *StocksHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/stocks")
	g.POST("/ingest", h.Ingest)
	g.GET("/recommendations", h.Recommendations)
	g.GET("/portfolio", h.Portfolio)
	g.GET("/health", h.Health)
}

// Ingest runs one ingestion pass and returns the report. Ingestion is
// best-effort, so a pass with partial failures still answers 200 with the
// failures listed in the report.
func (h *StocksHandler) Ingest(c echo.Context) error {
	req := &models.IngestRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	symbols := req.Symbols
	if len(symbols) == 0 {
		symbols = h.watchlist
	}

	report := h.ingestor.Run(c.Request().Context(), symbols)
	if len(report.Errors) > 0 {
		h.logger.Warn("ingestion pass had errors",
			xlogger.String("run_id", report.RunID),
			xlogger.Int("errors", len(report.Errors)),
		)
	}
	return xhttp.SuccessResponse(c, report)
}

func (h *StocksHandler) Recommendations(c echo.Context) error {
	start := time.Now()
	results, err := h.rec.Recommendations(c.Request().Context())
	if err != nil {
		h.logger.Error("recommendations usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	h.logger.Debug("recommendations served",
		xlogger.Int("results", len(results)),
		xlogger.Duration("took_ms", time.Since(start)),
	)
	return xhttp.SuccessResponse(c, results)
}

func (h *StocksHandler) Portfolio(c echo.Context) error {
	budget := xhttp.ParseFloatDefault(c.QueryParam("budget"), 0)
	if budget <= 0 {
		return xhttp.BadRequestResponse(c, []xhttp.ValidationError{{
			Code:    "ERR_GT",
			Field:   "budget",
			Message: "budget must be greater than 0",
		}})
	}

	suggestion, err := h.rec.Portfolio(c.Request().Context(), budget)
	if err != nil {
		h.logger.Error("portfolio usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	if suggestion == nil {
		return xhttp.SuccessResponse(c, map[string]interface{}{
			"budget":  budget,
			"message": "No strong buy signals right now",
		})
	}
	return xhttp.SuccessResponse(c, suggestion)
}

func (h *StocksHandler) Health(c echo.Context) error {
	if err := h.store.Health(c.Request().Context()); err != nil {
		h.logger.Error("storage health check failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("storage unavailable").WithError(err))
	}
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}
