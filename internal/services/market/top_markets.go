package market

import (
	"sort"

	"github.com/uranium24/Fresh-Price/internal/domain/models"
)

type marketAcc struct {
	state    string
	price    float64
	arrivals float64
	n        int
}

// TopMarkets groups matching records by market, averages modal price and
// arrivals per market and returns the k markets with the highest average
// arrivals. Ties keep first-seen market order. State comes from the first
// record seen for a market.
func TopMarkets(records []models.MarketRecord, commodity string, k int) ([]models.TopMarketEntry, error) {
	if k <= 0 {
		return nil, models.NewValidationError("k", "must be positive, got %d", k)
	}
	matched, err := Filter(records, commodity)
	if err != nil {
		return nil, err
	}

	order := make([]string, 0)
	groups := make(map[string]*marketAcc)
	for _, r := range matched {
		acc, ok := groups[r.MarketID]
		if !ok {
			acc = &marketAcc{state: r.State}
			groups[r.MarketID] = acc
			order = append(order, r.MarketID)
		}
		acc.price += r.ModalPrice
		acc.arrivals += r.Arrivals
		acc.n++
	}

	out := make([]models.TopMarketEntry, 0, len(order))
	for _, id := range order {
		acc := groups[id]
		n := float64(acc.n)
		out = append(out, models.TopMarketEntry{
			MarketID:    id,
			State:       acc.state,
			AvgPrice:    acc.price / n,
			AvgArrivals: acc.arrivals / n,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].AvgArrivals > out[j].AvgArrivals })

	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}
