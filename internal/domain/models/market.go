package models

import "time"

// MarketRecord is a single row of the transactional APMC dataset.
type MarketRecord struct {
	MarketID   string     `json:"apmc"`
	Commodity  string     `json:"commodity"`
	Year       int        `json:"year"`
	Month      time.Month `json:"month"`
	Arrivals   float64    `json:"arrivals_in_qtl"`
	MinPrice   float64    `json:"min_price"`
	MaxPrice   float64    `json:"max_price"`
	ModalPrice float64    `json:"modal_price"`
	District   string     `json:"district_name"`
	State      string     `json:"state_name"`
}

type TopMarketEntry struct {
	MarketID    string  `json:"apmc"`
	State       string  `json:"state"`
	AvgPrice    float64 `json:"price"`
	AvgArrivals float64 `json:"arrivals"`
}

type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
}

type SeasonalitySummary struct {
	BestMonth       string  `json:"bestMonth"`
	WorstMonth      string  `json:"worstMonth"`
	VolatilityScore float64 `json:"volatilityScore"`
}

type SupplyTrend string

const (
	SupplyIncreasing SupplyTrend = "increasing"
	SupplyDecreasing SupplyTrend = "decreasing"
	SupplyStable     SupplyTrend = "stable"
)

// MarketInsights is the payload of the market-insights endpoint.
type MarketInsights struct {
	Commodity   string             `json:"commodity"`
	TopMarkets  []TopMarketEntry   `json:"topMarkets"`
	PriceRange  PriceRange         `json:"priceRange"`
	Seasonality SeasonalitySummary `json:"seasonality"`
	SupplyTrend SupplyTrend        `json:"supplyTrend"`
}
