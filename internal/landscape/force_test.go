package landscape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/phin/internal/phi"
)

func TestForceVanishesAtHalfIntegerAttractors(t *testing.T) {
	cfg := DefaultConfig()

	// Half-integers outside any catastrophe band: the periodic term is zero
	// and the rational repulsions cancel pairwise by symmetry.
	for _, n := range []float64{0.5, 2.5, 3.5} {
		f := cfg.Force(n)
		require.InDelta(t, 0, f.Periodic, 1e-9, "n=%v", n)
		require.InDelta(t, 0, f.Resonance, 1e-9, "n=%v", n)
		require.InDelta(t, 0, f.Catastrophe, 1e-12, "n=%v", n)
		require.InDelta(t, 0, f.Total, 1e-9, "n=%v", n)
	}
}

func TestPeriodicForceRepelsIntegers(t *testing.T) {
	cfg := DefaultConfig()

	// Just below an integer the periodic term pushes down, just above it
	// pushes up: the force changes sign across the boundary, always away.
	below := cfg.Force(1.95).Periodic
	above := cfg.Force(2.05).Periodic
	assert.Negative(t, below)
	assert.Positive(t, above)
}

func TestPeriodicForceAttractsHalfIntegers(t *testing.T) {
	cfg := DefaultConfig()

	// On both sides of 2.5 the periodic term points toward it.
	assert.Positive(t, cfg.Force(2.40).Periodic)
	assert.Negative(t, cfg.Force(2.60).Periodic)
}

func TestResonanceRepelsRationalPositions(t *testing.T) {
	cfg := DefaultConfig()

	// Near 2/1 the resonance kick points away from the fraction.
	assert.Negative(t, cfg.Force(1.99).Resonance)
	assert.Positive(t, cfg.Force(2.01).Resonance)

	// Near 5/3 as well — every low-order fraction repels.
	fr := 5.0 / 3.0
	assert.Negative(t, cfg.Force(fr-0.01).Resonance)
	assert.Positive(t, cfg.Force(fr+0.01).Resonance)
}

func TestCatastropheBandForceIsNeverZeroInside(t *testing.T) {
	cfg := DefaultConfig()

	band := DefaultBands()[0] // the 2:1 position
	for d := -band.HalfWidth + 0.001; d <= band.HalfWidth-0.001; d += 0.005 {
		n := band.Center + d
		f := cfg.Force(n)
		require.NotZero(t, f.Catastrophe, "n=%v", n)
		if d > 0 {
			require.Positive(t, f.Catastrophe, "n=%v", n)
		}
		if d < 0 {
			require.Negative(t, f.Catastrophe, "n=%v", n)
		}
	}

	// The exact center still escapes (upward by convention).
	assert.Positive(t, cfg.Force(band.Center).Catastrophe)
}

func TestHalfIntegerInsideBandStillRepelled(t *testing.T) {
	cfg := DefaultConfig()

	// n = 1.5 sits inside the 2:1 catastrophe band: the band overrides the
	// attractor and the escape force points up and away.
	require.True(t, cfg.InBand(1.5))
	f := cfg.Force(1.5)
	assert.Positive(t, f.Catastrophe)
	assert.Positive(t, f.Total)
}

func TestInBand(t *testing.T) {
	cfg := DefaultConfig()
	assert.True(t, cfg.InBand(phi.LogPhi2))
	assert.True(t, cfg.InBand(phi.LogPhi3+0.09))
	assert.False(t, cfg.InBand(phi.LogPhi3+0.11))
	assert.False(t, cfg.InBand(0.5))
}

func TestBandsDisabledByEmptyConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Bands = nil
	assert.False(t, cfg.InBand(phi.LogPhi2))
	assert.Zero(t, cfg.Force(phi.LogPhi2).Catastrophe)
}
