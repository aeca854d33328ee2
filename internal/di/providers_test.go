package di

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uranium24/Fresh-Price/internal/usecase"
	"github.com/uranium24/Fresh-Price/pkg/config"
	applogger "github.com/uranium24/Fresh-Price/pkg/logger"
)

func csvConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Parse([]byte(`
environment: test
log: {level: error}
source:
  type: csv
  monthly_path: ../../data/monthly.csv
  records_path: ../../data/records.csv
forecast: {seed: 7}
`))
	require.NoError(t, err)
	return cfg
}

func TestNeedsClickHouse(t *testing.T) {
	cfg := csvConfig(t)
	assert.False(t, needsClickHouse(cfg))

	cfg.Kafka.Enabled = true
	assert.True(t, needsClickHouse(cfg))

	cfg.Kafka.Enabled = false
	cfg.Source.Type = "influx"
	assert.False(t, needsClickHouse(cfg))
	cfg.ClickHouse.Host = "localhost"
	assert.True(t, needsClickHouse(cfg))
}

func TestInitializeServicesFromFiles(t *testing.T) {
	svc, cleanup, err := InitializeServices(csvConfig(t))
	require.NoError(t, err)
	defer cleanup()
	ctx := context.Background()

	names, err := svc.Commodities.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, names, "Wheat")

	res, err := svc.Forecast.GetForecast(ctx, usecase.ForecastParams{Commodity: "Wheat", Horizon: 6})
	require.NoError(t, err)
	assert.Len(t, res.Forecast, 6)
	assert.GreaterOrEqual(t, res.RMSE, 0.0)

	again, err := svc.Forecast.GetForecast(ctx, usecase.ForecastParams{Commodity: "Wheat", Horizon: 6})
	require.NoError(t, err)
	assert.Equal(t, res.Forecast, again.Forecast, "seeded forecaster is deterministic")

	ins, err := svc.Insights.GetInsights(ctx, usecase.InsightsParams{Commodity: "wheat"})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(ins.TopMarkets), 3)
	assert.LessOrEqual(t, ins.PriceRange.Min, ins.PriceRange.Avg)
	assert.LessOrEqual(t, ins.PriceRange.Avg, ins.PriceRange.Max)
}

func TestProvideRateLimiter(t *testing.T) {
	cfg := csvConfig(t)
	assert.Nil(t, ProvideRateLimiter(cfg))
	cfg.RateLimit.Enabled = true
	cfg.RateLimit.RPS = 5
	assert.NotNil(t, ProvideRateLimiter(cfg))
}

func TestOpenSeedTargetsRejectsUnknown(t *testing.T) {
	_, _, err := OpenSeedTargets(context.Background(), csvConfig(t), applogger.Nop(), []string{"parquet"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown seed target")

	_, _, err = OpenSeedTargets(context.Background(), csvConfig(t), applogger.Nop(), []string{"kafka"})
	assert.Error(t, err)
}

func TestOpenSeedSource(t *testing.T) {
	ds, err := OpenSeedSource(csvConfig(t), applogger.Nop())
	require.NoError(t, err)
	assert.NotEmpty(t, ds.AllSeries())
}
