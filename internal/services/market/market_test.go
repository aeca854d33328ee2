package market

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uranium24/Fresh-Price/internal/domain/models"
	"github.com/uranium24/Fresh-Price/internal/domain/service"
)

var _ service.MarketAnalyzer = Aggregator{}

func rec(market, commodity string, year int, month time.Month, arrivals, modal float64) models.MarketRecord {
	return models.MarketRecord{
		MarketID:   market,
		Commodity:  commodity,
		Year:       year,
		Month:      month,
		Arrivals:   arrivals,
		MinPrice:   modal * 0.9,
		MaxPrice:   modal * 1.1,
		ModalPrice: modal,
		State:      "State of " + market,
	}
}

func dataset() []models.MarketRecord {
	return []models.MarketRecord{
		rec("Pune", "Wheat", 2015, time.April, 100, 1500),
		rec("Nagpur", "WHEAT(Husked)", 2015, time.May, 300, 1700),
		rec("Pune", "wheat", 2016, time.April, 200, 1600),
		rec("Latur", "Wheat", 2016, time.June, 300, 1400),
		rec("Nashik", "Onion", 2016, time.June, 900, 800),
		rec("Latur", "Wheat", 2016, time.May, 0, 1800),
	}
}

func TestMatches(t *testing.T) {
	assert.True(t, Matches("Wheat", "wheat"))
	assert.True(t, Matches("WHEAT(Husked)", " Wheat "))
	assert.True(t, Matches("Paddy-Unhusked", "unhusk"))
	assert.False(t, Matches("Onion", "wheat"))
	assert.False(t, Matches("Onion", "  "))
}

func TestFilter(t *testing.T) {
	got, err := Filter(dataset(), "wheat")
	require.NoError(t, err)
	assert.Len(t, got, 5)

	_, err = Filter(dataset(), "saffron")
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = Filter(dataset(), " ")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestTopMarkets(t *testing.T) {
	got, err := TopMarkets(dataset(), "wheat", 3)
	require.NoError(t, err)
	require.Len(t, got, 3)

	// Nagpur 300, then Pune and Latur tie at 150; Pune was seen first.
	assert.Equal(t, "Nagpur", got[0].MarketID)
	assert.Equal(t, "Pune", got[1].MarketID)
	assert.Equal(t, "Latur", got[2].MarketID)

	assert.Equal(t, 150.0, got[1].AvgArrivals)
	assert.Equal(t, 1550.0, got[1].AvgPrice)
	assert.Equal(t, "State of Pune", got[1].State)
	assert.Equal(t, 1600.0, got[2].AvgPrice)
}

func TestTopMarketsRespectsK(t *testing.T) {
	for k := 1; k <= 6; k++ {
		got, err := TopMarkets(dataset(), "wheat", k)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(got), k)
		for _, e := range got {
			assert.Contains(t, []string{"Pune", "Nagpur", "Latur"}, e.MarketID)
		}
	}

	_, err := TopMarkets(dataset(), "wheat", 0)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestPriceRange(t *testing.T) {
	got, err := PriceRange(dataset(), "wheat")
	require.NoError(t, err)
	assert.Equal(t, 1400.0, got.Min)
	assert.Equal(t, 1800.0, got.Max)
	assert.Equal(t, 1600.0, got.Avg)
	assert.True(t, got.Min <= got.Avg && got.Avg <= got.Max)

	single, err := PriceRange(dataset(), "onion")
	require.NoError(t, err)
	assert.Equal(t, models.PriceRange{Min: 800, Max: 800, Avg: 800}, single)
}

func TestSeasonality(t *testing.T) {
	got, err := Seasonality(dataset(), "wheat")
	require.NoError(t, err)

	// April 1550, May 1750, June 1400
	assert.Equal(t, "May", got.BestMonth)
	assert.Equal(t, "June", got.WorstMonth)

	avgs := []float64{1550, 1750, 1400}
	mean := (1550.0 + 1750 + 1400) / 3
	var ss float64
	for _, a := range avgs {
		ss += (a - mean) * (a - mean)
	}
	cv := 100 * math.Sqrt(ss/3) / mean
	assert.InDelta(t, math.Min(10, cv), got.VolatilityScore, 1e-9)
}

func TestSeasonalityTiesKeepFirstSeenMonth(t *testing.T) {
	records := []models.MarketRecord{
		rec("A", "Maize", 2015, time.March, 1, 100),
		rec("A", "Maize", 2015, time.January, 1, 100),
	}
	got, err := Seasonality(records, "maize")
	require.NoError(t, err)
	assert.Equal(t, "March", got.BestMonth)
	assert.Equal(t, "March", got.WorstMonth)
	assert.Zero(t, got.VolatilityScore)
}

func TestSeasonalityScoreIsCapped(t *testing.T) {
	records := []models.MarketRecord{
		rec("A", "Garlic", 2015, time.January, 1, 10),
		rec("A", "Garlic", 2015, time.February, 1, 1000),
		rec("A", "Garlic", 2015, time.March, 1, 0),
	}
	got, err := Seasonality(records, "garlic")
	require.NoError(t, err)
	assert.Equal(t, 10.0, got.VolatilityScore)
	assert.GreaterOrEqual(t, got.VolatilityScore, 0.0)
}

func TestSupplyTrend(t *testing.T) {
	cases := []struct {
		name    string
		records []models.MarketRecord
		want    models.SupplyTrend
	}{
		{"twenty percent up", []models.MarketRecord{
			rec("A", "Wheat", 2015, time.April, 100, 1),
			rec("A", "Wheat", 2016, time.April, 120, 1),
		}, models.SupplyIncreasing},
		{"twenty percent down", []models.MarketRecord{
			rec("A", "Wheat", 2016, time.April, 80, 1),
			rec("A", "Wheat", 2015, time.April, 100, 1),
		}, models.SupplyDecreasing},
		{"exactly ten percent", []models.MarketRecord{
			rec("A", "Wheat", 2015, time.April, 100, 1),
			rec("B", "Wheat", 2016, time.April, 110, 1),
		}, models.SupplyStable},
		{"single year", []models.MarketRecord{
			rec("A", "Wheat", 2015, time.April, 100, 1),
			rec("B", "Wheat", 2015, time.May, 900, 1),
		}, models.SupplyStable},
		{"only last two years count", []models.MarketRecord{
			rec("A", "Wheat", 2014, time.April, 10, 1),
			rec("A", "Wheat", 2015, time.April, 100, 1),
			rec("A", "Wheat", 2016, time.April, 50, 1),
			rec("B", "Wheat", 2016, time.May, 55, 1),
		}, models.SupplyStable},
		{"from zero", []models.MarketRecord{
			rec("A", "Wheat", 2015, time.April, 0, 1),
			rec("A", "Wheat", 2016, time.April, 5, 1),
		}, models.SupplyIncreasing},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := SupplyTrend(tc.records, "wheat")
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestViewsReportNotFound(t *testing.T) {
	agg := NewAggregator()
	_, err := agg.TopMarkets(dataset(), "saffron", 3)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = agg.PriceRange(dataset(), "saffron")
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = agg.Seasonality(dataset(), "saffron")
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = agg.SupplyTrend(dataset(), "saffron")
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = agg.SupplyTrend(nil, "wheat")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
