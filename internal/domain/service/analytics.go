package service

import (
	"github.com/uranium24/Fresh-Price/internal/domain/models"
)

// Forecaster extrapolates a monthly price series into future months.
type Forecaster interface {
	Forecast(series []models.ObservedPoint, steps int) ([]models.ForecastPoint, error)
}

// Backtester scores the forecaster on a held-out tail of the series.
type Backtester interface {
	Backtest(series []models.ObservedPoint) (float64, error)
}

// MarketAnalyzer reduces market records into the per-commodity views.
type MarketAnalyzer interface {
	TopMarkets(records []models.MarketRecord, commodity string, k int) ([]models.TopMarketEntry, error)
	PriceRange(records []models.MarketRecord, commodity string) (models.PriceRange, error)
	Seasonality(records []models.MarketRecord, commodity string) (models.SeasonalitySummary, error)
	SupplyTrend(records []models.MarketRecord, commodity string) (models.SupplyTrend, error)
}
