package forecast

import (
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uranium24/Fresh-Price/internal/domain/models"
)

type fixedRand float64

func (f fixedRand) Float64() float64 { return float64(f) }

func monthly(start time.Time, values ...float64) []models.ObservedPoint {
	out := make([]models.ObservedPoint, len(values))
	for i, v := range values {
		out[i] = models.ObservedPoint{
			Timestamp: time.Date(start.Year(), start.Month()+time.Month(i), 1, 0, 0, 0, 0, time.UTC),
			Value:     v,
		}
	}
	return out
}

var jan2014 = time.Date(2014, time.January, 1, 0, 0, 0, 0, time.UTC)

func TestForecastLengthAndContiguousMonths(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	f := New()
	for steps := 1; steps <= 36; steps += 5 {
		vals := make([]float64, 1+r.IntN(30))
		for i := range vals {
			vals[i] = 50 + r.Float64()*100
		}
		series := monthly(time.Date(2019, time.October, 1, 0, 0, 0, 0, time.UTC), vals...)

		got, err := f.Forecast(series, steps)
		require.NoError(t, err)
		require.Len(t, got, steps)

		prev := series[len(series)-1].Timestamp
		for _, p := range got {
			want := time.Date(prev.Year(), prev.Month()+1, 1, 0, 0, 0, 0, time.UTC)
			assert.True(t, want.Equal(p.Timestamp), "got %v want %v", p.Timestamp, want)
			prev = p.Timestamp
		}
	}
}

func TestForecastLinearSeriesFirstPoint(t *testing.T) {
	series := monthly(jan2014, 100, 110, 120, 130)
	// 0.5 * 0.1 * popstd(100,110,120,130)
	bound := 0.5 * 0.1 * math.Sqrt(125)

	for i := 0; i < 50; i++ {
		got, err := New().Forecast(series, 3)
		require.NoError(t, err)
		assert.InDelta(t, 140, got[0].Forecast, bound+1e-9)
		assert.Equal(t, time.Date(2014, time.May, 1, 0, 0, 0, 0, time.UTC), got[0].Timestamp)
	}
}

func TestForecastWithoutNoise(t *testing.T) {
	f := New(WithRand(fixedRand(0.5)))
	got, err := f.Forecast(monthly(jan2014, 100, 110, 120, 130), 4)
	require.NoError(t, err)

	want := []float64{
		140,
		150 + math.Sin(2*math.Pi/12)*20,
		160 + math.Sin(4*math.Pi/12)*20,
		170 + 20,
	}
	for i, w := range want {
		assert.InDelta(t, w, got[i].Forecast, 1e-9, "step %d", i)
	}
}

func TestForecastNoiseBounds(t *testing.T) {
	series := monthly(jan2014, 10, 10, 20, 20)
	amp := 0.1 * 5.0 // popstd is 5

	lo, err := New(WithRand(fixedRand(0))).Forecast(series, 1)
	require.NoError(t, err)
	hi, err := New(WithRand(fixedRand(0.999999))).Forecast(series, 1)
	require.NoError(t, err)

	trend := 20 + 10.0/3
	assert.InDelta(t, trend-amp/2, lo[0].Forecast, 1e-9)
	assert.InDelta(t, trend+amp/2, hi[0].Forecast, 1e-5)
}

func TestForecastSinglePointIsFlat(t *testing.T) {
	got, err := New().Forecast(monthly(jan2014, 42), 6)
	require.NoError(t, err)
	for _, p := range got {
		assert.Equal(t, 42.0, p.Forecast)
	}
}

func TestForecastSeedIsReproducible(t *testing.T) {
	series := monthly(jan2014, 5, 9, 4, 11, 7, 13, 8)
	a, err := New(WithSeed(7)).Forecast(series, 24)
	require.NoError(t, err)
	b, err := New(WithSeed(7)).Forecast(series, 24)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := New(WithSeed(8)).Forecast(series, 24)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestForecastValidation(t *testing.T) {
	_, err := New().Forecast(nil, 3)
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = New().Forecast(monthly(jan2014, 1, 2), 0)
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = New().Forecast(monthly(jan2014, 1, 2), -4)
	assert.ErrorIs(t, err, models.ErrValidation)
}
