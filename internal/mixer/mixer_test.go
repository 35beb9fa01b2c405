package mixer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/phin/internal/coupling"
)

var modulatoryOnly = coupling.Gains{Modulatory: 1.0, Harmonic: 0.0}
var harmonicBlend = coupling.Gains{Modulatory: 0.35, Harmonic: 1.0}

func TestModulatoryPathIgnoresField(t *testing.T) {
	m := New()
	cortical := []float64{0.5, 0.4, 0.3, 0.2, 0.1}

	a := m.Mix(0.8, cortical, 0, 0, modulatoryOnly)
	b := m.Mix(0.8, cortical, 123.0, 0, modulatoryOnly)
	assert.Equal(t, a, b, "field must be inaudible with zero harmonic blend")
}

func TestFieldGatedByIgnitionGain(t *testing.T) {
	m := New()
	cortical := []float64{0.5, 0.4, 0.3, 0.2, 0.1}

	closed := m.Mix(0.2, cortical, 1.0, 0, harmonicBlend)
	open := m.Mix(0.2, cortical, 1.0, 1, harmonicBlend)
	assert.NotEqual(t, closed, open)
	assert.Greater(t, open, closed)
}

func TestLayerWeighting(t *testing.T) {
	m := New()

	// Same x in layer 0 moves the output more than in layer 4.
	low := m.Mix(0, []float64{1, 0, 0, 0, 0}, 0, 0, modulatoryOnly)
	high := m.Mix(0, []float64{0, 0, 0, 0, 1}, 0, 0, modulatoryOnly)
	assert.Greater(t, low, high)
}

func TestKnownMix(t *testing.T) {
	m := New()
	cortical := []float64{1, 1, 1, 1, 1}

	got := m.Mix(1.0, cortical, 0, 0, modulatoryOnly)
	want := math.Tanh(0.5 + 0.30 + 0.25 + 0.20 + 0.15 + 0.10)
	require.InDelta(t, want, got, 1e-12)
}

func TestOutputBounded(t *testing.T) {
	m := New()
	big := []float64{100, 100, 100, 100, 100}
	out := m.Mix(100, big, 100, 1, harmonicBlend)
	assert.LessOrEqual(t, math.Abs(out), 1.0)
}

func TestLastAndReset(t *testing.T) {
	m := New()
	out := m.Mix(0.3, []float64{0.1}, 0, 0, modulatoryOnly)
	require.Equal(t, out, m.Last())
	m.Reset()
	assert.Zero(t, m.Last())
}
