package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/phin/internal/phi"
)

func phiLadder(base float64, n int) []float64 {
	out := make([]float64, n)
	f := base
	for i := range out {
		out[i] = f
		f *= phi.Phi
	}
	return out
}

func TestSpacingPerfectLadder(t *testing.T) {
	si := NewSpacingIndex()
	s := si.Update(phiLadder(6.0, 4))
	assert.InDelta(t, 1.0, s, 1e-9)
}

func TestSpacingFarFromGolden(t *testing.T) {
	si := NewSpacingIndex()
	// Ratio 2.5: mean deviation ~0.88, well past the 0.5 zero point.
	s := si.Update([]float64{10, 25, 62.5})
	assert.Zero(t, s)
}

func TestSpacingPartialDeviation(t *testing.T) {
	si := NewSpacingIndex()
	// Ratio 1.868: deviation 0.25 → score 0.5.
	r := phi.Phi + 0.25
	s := si.Update([]float64{10, 10 * r, 10 * r * r})
	assert.InDelta(t, 0.5, s, 1e-9)
}

func TestSpacingTooFewLayers(t *testing.T) {
	si := NewSpacingIndex()
	assert.Zero(t, si.Update([]float64{10}))
	assert.Zero(t, si.Update(nil))
}

func TestSpacingBaselinePrimesOnFirstUpdate(t *testing.T) {
	si := NewSpacingIndex()
	s := si.Update(phiLadder(6.0, 4))
	require.Equal(t, s, si.Baseline())
	assert.Zero(t, si.Trend())
}

func TestSpacingBaselineMovesSlowly(t *testing.T) {
	si := NewSpacingIndex()
	si.Update(phiLadder(6.0, 4)) // primes baseline at ~1

	// A sudden collapse barely moves the baseline; the trend goes negative.
	si.Update([]float64{10, 25, 62.5})
	assert.Greater(t, si.Baseline(), 0.99)
	assert.Negative(t, si.Trend())
}

func TestSpacingReset(t *testing.T) {
	si := NewSpacingIndex()
	si.Update(phiLadder(6.0, 4))
	si.Reset()
	assert.Zero(t, si.Score())
	assert.Zero(t, si.Baseline())
}
