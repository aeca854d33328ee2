package market

import "github.com/uranium24/Fresh-Price/internal/domain/models"

// Aggregator exposes the four views behind the service.MarketAnalyzer interface.
type Aggregator struct{}

func NewAggregator() *Aggregator { return &Aggregator{} }

func (Aggregator) TopMarkets(records []models.MarketRecord, commodity string, k int) ([]models.TopMarketEntry, error) {
	return TopMarkets(records, commodity, k)
}

func (Aggregator) PriceRange(records []models.MarketRecord, commodity string) (models.PriceRange, error) {
	return PriceRange(records, commodity)
}

func (Aggregator) Seasonality(records []models.MarketRecord, commodity string) (models.SeasonalitySummary, error) {
	return Seasonality(records, commodity)
}

func (Aggregator) SupplyTrend(records []models.MarketRecord, commodity string) (models.SupplyTrend, error) {
	return SupplyTrend(records, commodity)
}
