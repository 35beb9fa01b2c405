// Package metrics computes the population-level coherence measures: the
// order parameter, the boundary mixer, the bicoherence monitor and the
// harmonic spacing index. All consume read-only snapshots of previously
// committed oscillator state.
// See design doc Section 5.
package metrics

import (
	"math"

	"github.com/talgya/phin/internal/osc"
)

// OrderPairs is how many representative oscillator pairs feed the order
// parameter.
const OrderPairs = 6

// OrderParameter reports the population phase-alignment R ∈ [0, 1] from up
// to six representative snapshots. Each snapshot's amplitude is approximated
// as max + 0.4·min of the absolute components (avoiding a root), the state
// is normalized to a unit phasor, and R is the magnitude of the phasor mean.
func OrderParameter(states []osc.Snapshot) float64 {
	if len(states) == 0 {
		return 0
	}
	if len(states) > OrderPairs {
		states = states[:OrderPairs]
	}

	var sumX, sumY float64
	counted := 0
	for _, s := range states {
		amp := s.RadialAmp()
		if amp < 1e-9 {
			// Near-dead oscillator: phase is meaningless noise, skip it.
			continue
		}
		sumX += s.X / amp
		sumY += s.Y / amp
		counted++
	}
	if counted == 0 {
		return 0
	}

	r := math.Hypot(sumX, sumY) / float64(counted)
	if r > 1 {
		r = 1
	}
	return r
}
