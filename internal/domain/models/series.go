package models

import "time"

// ObservedPoint is one month of historical price for a commodity.
type ObservedPoint struct {
	Timestamp time.Time `json:"date"`
	Value     float64   `json:"value"`
}

// ForecastPoint is one projected future month.
type ForecastPoint struct {
	Timestamp time.Time `json:"date"`
	Forecast  float64   `json:"forecast"`
}

// ForecastResult is the payload of the forecast endpoint.
type ForecastResult struct {
	Commodity  string          `json:"commodity"`
	Historical []ObservedPoint `json:"historical"`
	Forecast   []ForecastPoint `json:"forecast"`
	RMSE       float64         `json:"rmse"`
}

// Values extracts the raw values of a series in order.
func Values(series []ObservedPoint) []float64 {
	out := make([]float64, len(series))
	for i, p := range series {
		out[i] = p.Value
	}
	return out
}
