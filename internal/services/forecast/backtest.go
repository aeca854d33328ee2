package forecast

import (
	"math"

	"github.com/uranium24/Fresh-Price/internal/domain/models"
)

const minValidationSize = 2

// Backtest forecasts the last 20% of series from the first 80% and returns the RMSE.
func (f *Forecaster) Backtest(series []models.ObservedPoint) (float64, error) {
	n := len(series)
	split := n * 8 / 10
	if n-split < minValidationSize || split == 0 {
		return 0, models.NewValidationError("series",
			"need at least %d validation points after an 80/20 split, have %d of %d", minValidationSize, n-split, n)
	}
	train, validation := series[:split], series[split:]

	predicted, err := f.Forecast(train, len(validation))
	if err != nil {
		return 0, err
	}
	pred := make([]float64, len(predicted))
	for i, p := range predicted {
		pred[i] = p.Forecast
	}
	return RMSE(models.Values(validation), pred)
}

// RMSE is sqrt(mean((actual-predicted)^2)). Both slices must be non-empty and equal length.
func RMSE(actual, predicted []float64) (float64, error) {
	if len(actual) != len(predicted) {
		return 0, models.NewValidationError("predicted", "length %d does not match actual length %d", len(predicted), len(actual))
	}
	if len(actual) == 0 {
		return 0, models.NewValidationError("actual", "must not be empty")
	}
	sum := 0.0
	for i := range actual {
		d := actual[i] - predicted[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(actual))), nil
}
