package drift

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/phin/internal/entropy"
)

func TestWalkerDeterministic(t *testing.T) {
	cfg := SeekerConfig(1.5)
	a := NewWalker(cfg, entropy.NewSource(7).Derive(3))
	b := NewWalker(cfg, entropy.NewSource(7).Derive(3))

	for i := 0; i < 10000; i++ {
		require.Equal(t, a.Tick(0), b.Tick(0), "tick %d", i)
	}
}

func TestWalkerStepCadence(t *testing.T) {
	w := NewWalker(SeekerConfig(1.5), entropy.NewSource(1))

	// The slow walk holds still between steps; only jitter moves.
	for i := 0; i < SeekerStepTicks-1; i++ {
		w.Tick(0)
		require.Equal(t, 1.5, w.WalkPosition(), "tick %d", i)
	}
	w.Tick(0)
	assert.NotEqual(t, 1.5, w.WalkPosition())
}

func TestSeekerWalksFasterThanReference(t *testing.T) {
	// The 4× cadence asymmetry is the alignment mechanism.
	assert.Equal(t, 4, ReferenceStepTicks/SeekerStepTicks)
	assert.Equal(t, SeekerStepTicks, SeekerConfig(0).StepTicks)
	assert.Equal(t, ReferenceStepTicks, ReferenceConfig(0).StepTicks)
}

func TestReflectingBoundaries(t *testing.T) {
	cfg := Config{
		Center:    2.0,
		HalfSpan:  0.1,
		StepSize:  0.5, // deliberately larger than the span
		StepTicks: 1,
	}
	w := NewWalker(cfg, entropy.NewSource(9))

	for i := 0; i < 2000; i++ {
		w.Tick(0)
		p := w.WalkPosition()
		require.GreaterOrEqual(t, p, 1.9, "tick %d", i)
		require.LessOrEqual(t, p, 2.1, "tick %d", i)
	}
}

func TestJitterBounded(t *testing.T) {
	cfg := ReferenceConfig(0.5)
	w := NewWalker(cfg, entropy.NewSource(4))

	for i := 0; i < 5000; i++ {
		v := w.Tick(0)
		require.InDelta(t, w.WalkPosition(), v, cfg.Jitter, "tick %d", i)
	}
}

func TestBiasPushesWalk(t *testing.T) {
	cfg := SeekerConfig(1.5)
	cfg.StepSize = 0 // isolate the bias term
	cfg.Jitter = 0
	w := NewWalker(cfg, entropy.NewSource(2))

	for i := 0; i < 5*SeekerStepTicks; i++ {
		w.Tick(1.0)
	}
	// Five walk steps of BiasGain each.
	assert.InDelta(t, 1.5+5*cfg.BiasGain, w.WalkPosition(), 1e-12)
}

func TestScalesApplied(t *testing.T) {
	cfg := Config{Center: 0, HalfSpan: 10, StepSize: 0.01, StepTicks: 1, Jitter: 0.1}
	w := NewWalker(cfg, entropy.NewSource(5))
	w.SetScales(0, 0)

	for i := 0; i < 100; i++ {
		require.Equal(t, 0.0, w.Tick(0))
	}
}

func TestResetRecenters(t *testing.T) {
	w := NewWalker(SeekerConfig(3.5), entropy.NewSource(11))
	for i := 0; i < 4*SeekerStepTicks; i++ {
		w.Tick(0)
	}
	w.Reset()
	assert.Equal(t, 3.5, w.Value())
	assert.Equal(t, 3.5, w.WalkPosition())
}

func TestPairAlignment(t *testing.T) {
	p := NewPair(SeekerConfig(1.5), ReferenceConfig(1.5), entropy.NewSource(21))

	// Both at their centers: perfect agreement.
	assert.InDelta(t, 1.0, p.Alignment(), 1e-12)

	// Stays inside [0, 1] across a long run.
	for i := 0; i < 30000; i++ {
		p.Tick(0)
		a := p.Alignment()
		require.GreaterOrEqual(t, a, 0.0, "tick %d", i)
		require.LessOrEqual(t, a, 1.0, "tick %d", i)
	}
}

func TestPairBiasReachesSeekerOnly(t *testing.T) {
	seekerCfg := SeekerConfig(1.5)
	seekerCfg.StepSize = 0
	seekerCfg.Jitter = 0
	refCfg := ReferenceConfig(1.5)
	refCfg.StepSize = 0
	refCfg.Jitter = 0

	p := NewPair(seekerCfg, refCfg, entropy.NewSource(33))
	for i := 0; i < ReferenceStepTicks; i++ {
		p.Tick(1.0)
	}
	assert.Greater(t, p.Seeker.WalkPosition(), 1.5)
	assert.Equal(t, 1.5, p.Reference.WalkPosition())
}
