package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBicoherenceLockedPhases(t *testing.T) {
	b := NewBicoherence()

	// φ1 + φ2 − φ12 = 0 every tick: a perfectly locked triple.
	for i := 0; i < 1000; i++ {
		b.Update(phasor(0.3, 1), phasor(0.5, 1), phasor(0.8, 1))
	}
	assert.Greater(t, b.Score(), 0.95)
	assert.LessOrEqual(t, b.Score(), 1.0)
}

func TestBicoherenceUnlockedPhases(t *testing.T) {
	b := NewBicoherence()

	// The phase sum pinned at π/2 keeps |cos| at zero.
	for i := 0; i < 1000; i++ {
		b.Update(phasor(0.3, 1), phasor(0.5, 1), phasor(0.8-math.Pi/2, 1))
	}
	assert.InDelta(t, 0, b.Score(), 1e-9)
}

func TestBicoherenceEMAHorizon(t *testing.T) {
	b := NewBicoherence()

	// One locked tick moves the zeroed score by exactly alpha.
	b.Update(phasor(0.1, 1), phasor(0.2, 1), phasor(0.3, 1))
	require.InDelta(t, BicoherenceAlpha, b.Score(), 1e-12)
}

func TestBicoherenceReset(t *testing.T) {
	b := NewBicoherence()
	for i := 0; i < 100; i++ {
		b.Update(phasor(0.1, 1), phasor(0.2, 1), phasor(0.3, 1))
	}
	require.Greater(t, b.Score(), 0.0)
	b.Reset()
	assert.Zero(t, b.Score())
}
