package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeanAndStdDev(t *testing.T) {
	xs := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	assert.Equal(t, 5.0, Mean(xs))
	assert.InDelta(t, 2.0, PopulationStdDev(xs), 1e-12)

	assert.Zero(t, Mean(nil))
	assert.Zero(t, PopulationStdDev(nil))
}

func TestDiffs(t *testing.T) {
	assert.Equal(t, []float64{10, 10, -5}, Diffs([]float64{100, 110, 120, 115}))
	assert.Nil(t, Diffs([]float64{1}))
}

func TestMinMax(t *testing.T) {
	lo, hi, ok := MinMax([]float64{3, -1, 8, 2})
	assert.True(t, ok)
	assert.Equal(t, -1.0, lo)
	assert.Equal(t, 8.0, hi)

	_, _, ok = MinMax(nil)
	assert.False(t, ok)
}

func TestCoefficientOfVariation(t *testing.T) {
	assert.Zero(t, CoefficientOfVariation([]float64{0, 0}))
	assert.Zero(t, CoefficientOfVariation([]float64{5, 5, 5}))
	assert.InDelta(t, 40.0, CoefficientOfVariation([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 1e-9)
	assert.Equal(t, 10.0, Clamp(40, 0, 10))
	assert.Equal(t, 0.0, Clamp(-3, 0, 10))
}
