// Package forecast implements the trend + seasonal + noise price projector
// and its hold-out backtest.
package forecast

import (
	"math"
	"math/rand/v2"
	"sync"

	"github.com/uranium24/Fresh-Price/internal/domain/models"
	"github.com/uranium24/Fresh-Price/internal/services/features"
	"github.com/uranium24/Fresh-Price/pkg/util"
)

const (
	seasonPeriod   = 12
	noiseScale     = 0.1
	seasonAmpRatio = 2.0
)

// Rand is the uniform [0,1) source used for the noise term.
type Rand interface {
	Float64() float64
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

type lockedRand struct {
	mu sync.Mutex
	r  Rand
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

// Forecaster is safe for concurrent use.
type Forecaster struct {
	newRand func() Rand
}

type Option func(*Forecaster)

// WithSeed makes every call draw from a fresh PCG source seeded with seed,
// so identical inputs give identical output.
func WithSeed(seed uint64) Option {
	return func(f *Forecaster) {
		f.newRand = func() Rand { return rand.New(rand.NewPCG(seed, seed)) }
	}
}

// WithRand shares r across calls.
func WithRand(r Rand) Option {
	return func(f *Forecaster) {
		lr := &lockedRand{r: r}
		f.newRand = func() Rand { return lr }
	}
}

// New returns a stochastic forecaster unless an option pins the source.
func New(opts ...Option) *Forecaster {
	f := &Forecaster{newRand: func() Rand { return globalRand{} }}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Forecast projects steps months past the end of series.
//
//	trend    = last + avgChange*(i+1)
//	seasonal = sin(2*pi*i/12) * 2*avgChange
//	noise    = (u-0.5) * 0.1*stddev(values)
func (f *Forecaster) Forecast(series []models.ObservedPoint, steps int) ([]models.ForecastPoint, error) {
	if len(series) == 0 {
		return nil, models.NewValidationError("series", "must not be empty")
	}
	if steps <= 0 {
		return nil, models.NewValidationError("steps", "must be positive, got %d", steps)
	}

	values := models.Values(series)
	last := values[len(values)-1]
	avgChange := features.Mean(features.Diffs(values))
	noiseAmp := features.PopulationStdDev(values) * noiseScale
	lastMonth := series[len(series)-1].Timestamp

	rnd := f.newRand()
	out := make([]models.ForecastPoint, steps)
	for i := 0; i < steps; i++ {
		trend := last + avgChange*float64(i+1)
		seasonal := math.Sin(2*math.Pi*float64(i)/seasonPeriod) * (avgChange * seasonAmpRatio)
		noise := (rnd.Float64() - 0.5) * noiseAmp
		out[i] = models.ForecastPoint{
			Timestamp: util.AddMonths(lastMonth, i+1),
			Forecast:  trend + seasonal + noise,
		}
	}
	return out, nil
}
