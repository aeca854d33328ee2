package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uranium24/Fresh-Price/internal/domain/models"
)

type fakeSeedSource struct {
	fakeRecords
}

func (fakeSeedSource) AllSeries() map[string][]models.ObservedPoint {
	return map[string][]models.ObservedPoint{"Wheat": linear(12, 1, 1), "Onion": linear(3, 1, 1)}
}

type fakePublisher struct{ published int }

func (p *fakePublisher) PublishRecords(_ context.Context, r []models.MarketRecord) error {
	p.published += len(r)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func TestSeed(t *testing.T) {
	src := &fakeSeedSource{fakeRecords{records: wheatRecords()}}
	store := &fakeStore{}
	pub := &fakePublisher{}

	rep, err := NewSeedUseCase(src, nil).Seed(context.Background(), SeedTargets{Series: store, Records: store, Publisher: pub})
	require.NoError(t, err)
	assert.Equal(t, &SeedReport{Commodities: 2, Points: 15, Records: 3}, rep)
	assert.Equal(t, 12, store.series["Wheat"])
	assert.Len(t, store.stored, 3)
	assert.Equal(t, 3, pub.published)
}

func TestSeedSeriesOnly(t *testing.T) {
	src := &fakeSeedSource{}
	rep, err := NewSeedUseCase(src, nil).Seed(context.Background(), SeedTargets{Series: &fakeStore{}})
	require.NoError(t, err)
	assert.Zero(t, rep.Records)
	assert.Zero(t, src.calls)
}
