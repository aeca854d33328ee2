package repository

import (
	"context"

	"github.com/uranium24/Fresh-Price/internal/domain/models"
)

// SeriesLoader supplies the monthly price history for a commodity.
// Points come back ascending by month with no duplicate months.
type SeriesLoader interface {
	CommoditySeries(ctx context.Context, commodity string) ([]models.ObservedPoint, error)
	Commodities(ctx context.Context) ([]string, error)
}

// RecordSource supplies transactional market records. Implementations may
// prefilter by commodity but can return a superset; the analytics views
// apply the authoritative match themselves.
type RecordSource interface {
	Records(ctx context.Context, commodity string) ([]models.MarketRecord, error)
}

// RecordStore persists ingested market records.
type RecordStore interface {
	StoreBatch(ctx context.Context, records []models.MarketRecord) error
}

// SeriesStore persists monthly series, used when seeding a backend.
type SeriesStore interface {
	StoreSeries(ctx context.Context, commodity string, points []models.ObservedPoint) error
}

// RecordPublisher hands records to the ingestion pipeline.
type RecordPublisher interface {
	PublishRecords(ctx context.Context, records []models.MarketRecord) error
	Close() error
}

type Metrics interface {
	RecordMessageSent(backend, commodity string)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
