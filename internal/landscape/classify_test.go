package landscape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/phin/internal/phi"
)

func TestClassifyIsTotal(t *testing.T) {
	cfg := DefaultConfig()

	// Every exponent in the working range gets exactly one class and a
	// stability score inside [0, 1].
	for n := -2.0; n <= 5.0; n += 0.01 {
		p := cfg.Classify(n)
		require.NotEqual(t, "unknown", p.Class.String(), "n=%v", n)
		require.GreaterOrEqual(t, p.Stability, 0.0, "n=%v", n)
		require.LessOrEqual(t, p.Stability, 1.0, "n=%v", n)
	}
}

func TestClassifyHalfInteger(t *testing.T) {
	cfg := DefaultConfig()

	p := cfg.Classify(2.5)
	assert.Equal(t, HalfInteger, p.Class)
	assert.InDelta(t, 1.0, p.Stability, 1e-12)

	// Stability falls off linearly toward the band edge but never below 0.75
	// while still classified half-integer.
	p = cfg.Classify(2.45)
	assert.Equal(t, HalfInteger, p.Class)
	assert.InDelta(t, 0.9, p.Stability, 1e-9)

	p = cfg.Classify(2.625)
	assert.Equal(t, HalfInteger, p.Class)
	assert.InDelta(t, 0.75, p.Stability, 1e-9)
}

func TestClassifyIntegerBoundary(t *testing.T) {
	cfg := DefaultConfig()

	p := cfg.Classify(3.0)
	assert.Equal(t, IntegerBoundary, p.Class)
	assert.InDelta(t, 0, p.Stability, 1e-12)

	p = cfg.Classify(3.1)
	assert.Equal(t, IntegerBoundary, p.Class)
	assert.InDelta(t, 0.16, p.Stability, 1e-9)

	// Approached from below.
	p = cfg.Classify(3.9)
	assert.Equal(t, IntegerBoundary, p.Class)
	assert.InDelta(t, 0.16, p.Stability, 1e-9)
}

func TestClassifyQuarterInteger(t *testing.T) {
	cfg := DefaultConfig()

	p := cfg.Classify(0.25)
	assert.Equal(t, QuarterInteger, p.Class)
	assert.InDelta(t, 0.6, p.Stability, 1e-12)

	p = cfg.Classify(0.75)
	assert.Equal(t, QuarterInteger, p.Class)
	assert.InDelta(t, 0.6, p.Stability, 1e-12)

	p = cfg.Classify(0.30)
	assert.Equal(t, QuarterInteger, p.Class)
	assert.InDelta(t, 0.52, p.Stability, 1e-9)
}

func TestClassifyBandOverridesFractionalPosition(t *testing.T) {
	cfg := DefaultConfig()

	// 1.5 would be the strongest attractor by fractional position, but it
	// sits inside the 2:1 catastrophe band and the band wins.
	p := cfg.Classify(1.5)
	assert.Equal(t, NearCatastrophe, p.Class)
	assert.LessOrEqual(t, p.Stability, 0.25)

	// The same fractional position outside any band keeps full stability.
	p = cfg.Classify(2.5)
	assert.Equal(t, HalfInteger, p.Class)
}

func TestNearCatastropheStabilityIsLowest(t *testing.T) {
	cfg := DefaultConfig()

	p := cfg.Classify(phi.LogPhi2)
	assert.Equal(t, NearCatastrophe, p.Class)
	assert.InDelta(t, 0.05, p.Stability, 1e-9)

	// Rises toward the band edge but stays capped at 0.2.
	edge := cfg.Classify(phi.LogPhi2 + 0.099)
	assert.Equal(t, NearCatastrophe, edge.Class)
	assert.Greater(t, edge.Stability, p.Stability)
	assert.LessOrEqual(t, edge.Stability, 0.2)
}

func TestClassStrings(t *testing.T) {
	assert.Equal(t, "integer-boundary", IntegerBoundary.String())
	assert.Equal(t, "half-integer", HalfInteger.String())
	assert.Equal(t, "quarter-integer", QuarterInteger.String())
	assert.Equal(t, "near-catastrophe", NearCatastrophe.String())
}
