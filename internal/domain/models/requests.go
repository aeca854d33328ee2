package models

// Requests for the HTTP endpoints. Defined in domain so the CLI can reuse them.

type ForecastRequest struct {
	Commodity string `param:"commodity" json:"commodity" validate:"required"`
	Horizon   int    `query:"horizon" json:"horizon" default:"60" validate:"gte=1,lte=240"`
}

type InsightsRequest struct {
	Commodity string `param:"commodity" json:"commodity" validate:"required"`
	K         int    `query:"k" json:"k" default:"3" validate:"gte=1,lte=50"`
}
