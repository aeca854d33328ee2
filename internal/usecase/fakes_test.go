package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/uranium24/Fresh-Price/internal/domain/models"
)

type fakeLoader struct {
	series map[string][]models.ObservedPoint
	names  []string
	err    error
}

func (f *fakeLoader) CommoditySeries(_ context.Context, commodity string) ([]models.ObservedPoint, error) {
	if f.err != nil {
		return nil, f.err
	}
	s, ok := f.series[commodity]
	if !ok {
		return nil, models.NewNotFoundError("series", commodity)
	}
	return s, nil
}

func (f *fakeLoader) Commodities(context.Context) ([]string, error) {
	return f.names, f.err
}

type fakeRecords struct {
	records []models.MarketRecord
	calls   int
	err     error
}

func (f *fakeRecords) Records(context.Context, string) ([]models.MarketRecord, error) {
	f.calls++
	return f.records, f.err
}

type fakeStore struct {
	mu     sync.Mutex
	stored []models.MarketRecord
	series map[string]int
	err    error
}

func (f *fakeStore) StoreBatch(_ context.Context, records []models.MarketRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.stored = append(f.stored, records...)
	return nil
}

func (f *fakeStore) StoreSeries(_ context.Context, commodity string, points []models.ObservedPoint) error {
	if f.series == nil {
		f.series = map[string]int{}
	}
	f.series[commodity] += len(points)
	return nil
}

type fakeMetrics struct {
	mu     sync.Mutex
	sent   int
	errors map[string]int
}

func (m *fakeMetrics) RecordMessageSent(string, string) {
	m.mu.Lock()
	m.sent++
	m.mu.Unlock()
}

func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	if m.errors == nil {
		m.errors = map[string]int{}
	}
	m.errors[kind]++
	m.mu.Unlock()
}

func (m *fakeMetrics) RecordLatency(string, float64) {}

func linear(n int, start, step float64) []models.ObservedPoint {
	out := make([]models.ObservedPoint, n)
	for i := range out {
		out[i] = models.ObservedPoint{
			Timestamp: time.Date(2014, time.January+time.Month(i), 1, 0, 0, 0, 0, time.UTC),
			Value:     start + step*float64(i),
		}
	}
	return out
}
