package market

import (
	"github.com/uranium24/Fresh-Price/internal/domain/models"
	"github.com/uranium24/Fresh-Price/internal/services/features"
)

// PriceRange returns min, max and mean modal price over matching records.
func PriceRange(records []models.MarketRecord, commodity string) (models.PriceRange, error) {
	matched, err := Filter(records, commodity)
	if err != nil {
		return models.PriceRange{}, err
	}
	prices := make([]float64, len(matched))
	for i, r := range matched {
		prices[i] = r.ModalPrice
	}
	lo, hi, _ := features.MinMax(prices)
	return models.PriceRange{Min: lo, Max: hi, Avg: features.Mean(prices)}, nil
}
