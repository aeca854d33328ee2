package market

import (
	"time"

	"github.com/uranium24/Fresh-Price/internal/domain/models"
	"github.com/uranium24/Fresh-Price/internal/services/features"
)

const maxVolatilityScore = 10

// Seasonality averages modal price per calendar month and reports the
// highest and lowest months along with a 0..10 volatility score
// (coefficient of variation of the monthly averages, capped at 10).
// On equal averages the month seen first wins.
func Seasonality(records []models.MarketRecord, commodity string) (models.SeasonalitySummary, error) {
	matched, err := Filter(records, commodity)
	if err != nil {
		return models.SeasonalitySummary{}, err
	}

	var order []time.Month
	sums := make(map[time.Month]float64)
	counts := make(map[time.Month]int)
	for _, r := range matched {
		if r.Month < time.January || r.Month > time.December {
			continue
		}
		if _, ok := counts[r.Month]; !ok {
			order = append(order, r.Month)
		}
		sums[r.Month] += r.ModalPrice
		counts[r.Month]++
	}
	if len(order) == 0 {
		return models.SeasonalitySummary{}, models.NewValidationError("month", "no matching record carries a valid month")
	}

	avgs := make([]float64, len(order))
	best, worst := 0, 0
	for i, m := range order {
		avgs[i] = sums[m] / float64(counts[m])
		if avgs[i] > avgs[best] {
			best = i
		}
		if avgs[i] < avgs[worst] {
			worst = i
		}
	}

	return models.SeasonalitySummary{
		BestMonth:       order[best].String(),
		WorstMonth:      order[worst].String(),
		VolatilityScore: features.Clamp(features.CoefficientOfVariation(avgs), 0, maxVolatilityScore),
	}, nil
}
