// Package mixer synthesizes the single output sample per tick from the
// final oscillator x-values, the ignition Gain envelope and the
// coupling-mode blend gains — the software stand-in for the original's DAC
// path.
// See design doc Section 6.4.
package mixer

import (
	"math"

	"github.com/talgya/phin/internal/coupling"
)

// Layer weights applied to the cortical x-values before mixing. Lower
// layers dominate the output spectrum, as in the measured device output.
var layerWeights = [5]float64{0.30, 0.25, 0.20, 0.15, 0.10}

// Mixer combines the per-tick signals into one bounded output sample.
type Mixer struct {
	last float64
}

// New returns a mixer.
func New() *Mixer {
	return &Mixer{}
}

// Mix produces the tick's output sample.
//
//   - thetaX: thalamic pacer sample, always present at modulatory weight.
//   - corticalX: per-layer x-values for one column group, weighted by layer.
//   - fieldX: the field-tracking channel sum, audible only when ignition
//     gain and the harmonic blend admit it.
func (m *Mixer) Mix(thetaX float64, corticalX []float64, fieldX float64, ignitionGain float64, blend coupling.Gains) float64 {
	var cortical float64
	for i, x := range corticalX {
		w := 0.1
		if i < len(layerWeights) {
			w = layerWeights[i]
		}
		cortical += w * x
	}

	out := blend.Modulatory*(0.5*thetaX+cortical) +
		blend.Harmonic*ignitionGain*fieldX

	// Soft clip; the output contract is a bounded sample, never a fault.
	out = math.Tanh(out)
	m.last = out
	return out
}

// Last returns the most recent output sample.
func (m *Mixer) Last() float64 {
	return m.last
}

// Reset zeroes the output history.
func (m *Mixer) Reset() {
	m.last = 0
}
