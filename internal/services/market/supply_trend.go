package market

import (
	"sort"

	"github.com/uranium24/Fresh-Price/internal/domain/models"
)

// trendThreshold is the year-over-year change, in percent, that counts as a trend.
const trendThreshold = 10.0

// SupplyTrend compares total arrivals of the two most recent years.
func SupplyTrend(records []models.MarketRecord, commodity string) (models.SupplyTrend, error) {
	matched, err := Filter(records, commodity)
	if err != nil {
		return "", err
	}

	totals := make(map[int]float64)
	for _, r := range matched {
		totals[r.Year] += r.Arrivals
	}
	if len(totals) < 2 {
		return models.SupplyStable, nil
	}
	years := make([]int, 0, len(totals))
	for y := range totals {
		years = append(years, y)
	}
	sort.Ints(years)

	prev, last := totals[years[len(years)-2]], totals[years[len(years)-1]]
	if prev == 0 {
		if last > 0 {
			return models.SupplyIncreasing, nil
		}
		return models.SupplyStable, nil
	}

	change := (last - prev) * 100 / prev
	switch {
	case change > trendThreshold:
		return models.SupplyIncreasing, nil
	case change < -trendThreshold:
		return models.SupplyDecreasing, nil
	default:
		return models.SupplyStable, nil
	}
}
