package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/uranium24/Fresh-Price/internal/domain/models"
	domrepo "github.com/uranium24/Fresh-Price/internal/domain/repository"
	applogger "github.com/uranium24/Fresh-Price/pkg/logger"
)

// SeedSource is a local dataset that can be copied into a backend.
type SeedSource interface {
	AllSeries() map[string][]models.ObservedPoint
	Records(ctx context.Context, commodity string) ([]models.MarketRecord, error)
}

// SeedTargets names where data goes. Nil targets are skipped.
type SeedTargets struct {
	Series    domrepo.SeriesStore
	Records   domrepo.RecordStore
	Publisher domrepo.RecordPublisher
}

type SeedReport struct {
	Commodities int
	Points      int
	Records     int
}

const seedRecordChunk = 5000

// SeedUseCase copies file datasets into ClickHouse, InfluxDB or Kafka.
type SeedUseCase struct {
	source SeedSource
	l      *applogger.Logger
}

func NewSeedUseCase(source SeedSource, l *applogger.Logger) *SeedUseCase {
	if l == nil {
		l = applogger.Nop()
	}
	return &SeedUseCase{source: source, l: l}
}

func (uc *SeedUseCase) Seed(ctx context.Context, t SeedTargets) (*SeedReport, error) {
	rep := &SeedReport{}

	if t.Series != nil {
		all := uc.source.AllSeries()
		names := make([]string, 0, len(all))
		for name := range all {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if err := t.Series.StoreSeries(ctx, name, all[name]); err != nil {
				return rep, fmt.Errorf("seed series %s: %w", name, err)
			}
			rep.Commodities++
			rep.Points += len(all[name])
		}
		uc.l.Info("seeded monthly series", applogger.Int("commodities", rep.Commodities), applogger.Int("points", rep.Points))
	}

	if t.Records == nil && t.Publisher == nil {
		return rep, nil
	}
	records, err := uc.source.Records(ctx, "")
	if err != nil {
		return rep, fmt.Errorf("seed records: %w", err)
	}
	for start := 0; start < len(records); start += seedRecordChunk {
		end := start + seedRecordChunk
		if end > len(records) {
			end = len(records)
		}
		chunk := records[start:end]
		if t.Records != nil {
			if err := t.Records.StoreBatch(ctx, chunk); err != nil {
				return rep, fmt.Errorf("store records: %w", err)
			}
		}
		if t.Publisher != nil {
			if err := t.Publisher.PublishRecords(ctx, chunk); err != nil {
				return rep, fmt.Errorf("publish records: %w", err)
			}
		}
		rep.Records += len(chunk)
	}
	uc.l.Info("seeded market records", applogger.Int("records", rep.Records))
	return rep, nil
}
