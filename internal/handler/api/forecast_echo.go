package api

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/uranium24/Fresh-Price/internal/domain/models"
	"github.com/uranium24/Fresh-Price/internal/service/metrics"
	"github.com/uranium24/Fresh-Price/internal/usecase"
	xhttp "github.com/uranium24/Fresh-Price/pkg/http"
	xlogger "github.com/uranium24/Fresh-Price/pkg/logger"
	"github.com/uranium24/Fresh-Price/pkg/util"
)

type ForecastService interface {
	GetForecast(ctx context.Context, p usecase.ForecastParams) (*models.ForecastResult, error)
}

type InsightsService interface {
	GetInsights(ctx context.Context, p usecase.InsightsParams) (*models.MarketInsights, error)
}

type CommodityLister interface {
	List(ctx context.Context) ([]string, error)
}

// PriceEchoHandler serves the forecast, market-insights and commodity routes.
type PriceEchoHandler struct {
	logger      *xlogger.Logger
	forecast    ForecastService
	insights    InsightsService
	commodities CommodityLister
}

func NewPriceEchoHandler(l *xlogger.Logger, f ForecastService, i InsightsService, c CommodityLister) *PriceEchoHandler {
	metrics.Register()
	return &PriceEchoHandler{logger: l, forecast: f, insights: i, commodities: c}
}

func (h *PriceEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/commodities", h.Commodities)
	g.GET("/forecast/:commodity", h.Forecast)
	g.GET("/market-insights/:commodity", h.MarketInsights)
}

// Forecast godoc
// GET /api/forecast/:commodity?horizon=60
func (h *PriceEchoHandler) Forecast(c echo.Context) error {
	start := time.Now()

	req := &models.ForecastRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.forecast.GetForecast(c.Request().Context(), usecase.ForecastParams{
		Commodity: req.Commodity,
		Horizon:   req.Horizon,
	})
	metrics.Observe("forecast", start, err)
	if err != nil {
		h.logFailure("forecast usecase error", c, req.Commodity, err)
		return xhttp.AppErrorResponse(c, toAppError(err))
	}

	metrics.ForecastRMSE.WithLabelValues(util.NormalizeKey(res.Commodity)).Set(res.RMSE)
	return xhttp.SuccessResponse(c, res)
}

// MarketInsights godoc
// GET /api/market-insights/:commodity?k=3
func (h *PriceEchoHandler) MarketInsights(c echo.Context) error {
	start := time.Now()

	req := &models.InsightsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.insights.GetInsights(c.Request().Context(), usecase.InsightsParams{
		Commodity: req.Commodity,
		K:         req.K,
	})
	metrics.Observe("market_insights", start, err)
	if err != nil {
		h.logFailure("insights usecase error", c, req.Commodity, err)
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return xhttp.SuccessResponse(c, res)
}

// Commodities godoc
// GET /api/commodities
func (h *PriceEchoHandler) Commodities(c echo.Context) error {
	start := time.Now()
	names, err := h.commodities.List(c.Request().Context())
	metrics.Observe("commodities", start, err)
	if err != nil {
		h.logger.Error("commodities usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return xhttp.SuccessResponse(c, names)
}

// logFailure logs client errors at warn and everything else at error.
func (h *PriceEchoHandler) logFailure(msg string, c echo.Context, commodity string, err error) {
	fields := []xlogger.Field{
		xlogger.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
		xlogger.String("commodity", commodity),
		xlogger.String("kind", metrics.ErrorKind(err)),
		xlogger.Error(err),
	}
	if metrics.ErrorKind(err) == "internal" {
		h.logger.Error(msg, fields...)
		return
	}
	h.logger.Warn(msg, fields...)
}
