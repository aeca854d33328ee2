package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/uranium24/Fresh-Price/internal/domain/models"
	domrepo "github.com/uranium24/Fresh-Price/internal/domain/repository"
	domsvc "github.com/uranium24/Fresh-Price/internal/domain/service"
)

// DefaultHorizon is the number of months forecast when the caller gives none.
const DefaultHorizon = 60

// ForecastModel is the forecaster together with its backtest.
type ForecastModel interface {
	domsvc.Forecaster
	domsvc.Backtester
}

// ForecastUseCase builds the forecast response for one commodity.
type ForecastUseCase struct {
	loader  domrepo.SeriesLoader
	model   ForecastModel
	horizon int
}

func NewForecastUseCase(loader domrepo.SeriesLoader, model ForecastModel, horizon int) *ForecastUseCase {
	if horizon <= 0 {
		horizon = DefaultHorizon
	}
	return &ForecastUseCase{loader: loader, model: model, horizon: horizon}
}

type ForecastParams struct {
	Commodity string
	Horizon   int
}

// GetForecast loads the series, projects Horizon months and scores the model
// on the series' own tail. A series too short to backtest is a validation error.
func (uc *ForecastUseCase) GetForecast(ctx context.Context, p ForecastParams) (*models.ForecastResult, error) {
	if strings.TrimSpace(p.Commodity) == "" {
		return nil, models.NewValidationError("commodity", "must not be blank")
	}
	if p.Horizon <= 0 {
		p.Horizon = uc.horizon
	}

	series, err := uc.loader.CommoditySeries(ctx, p.Commodity)
	if err != nil {
		return nil, fmt.Errorf("load series: %w", err)
	}
	if len(series) == 0 {
		return nil, models.NewNotFoundError("series", p.Commodity)
	}

	points, err := uc.model.Forecast(series, p.Horizon)
	if err != nil {
		return nil, fmt.Errorf("forecast: %w", err)
	}
	rmse, err := uc.model.Backtest(series)
	if err != nil {
		return nil, fmt.Errorf("backtest: %w", err)
	}

	return &models.ForecastResult{
		Commodity:  p.Commodity,
		Historical: series,
		Forecast:   points,
		RMSE:       rmse,
	}, nil
}
