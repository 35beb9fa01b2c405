package metrics

import (
	"math"

	"github.com/talgya/phin/internal/osc"
)

// BoundarySignal is the virtual intermodulation channel synthesized between
// a (low, high) oscillator pair: the nonlinear mixing expected at their
// geometric-mean frequency, modeled without maintaining a real oscillator
// there.
type BoundarySignal struct {
	Amp   float64 // geometric mean of the pair amplitudes
	Phase float64 // circular mean of the pair phases
	X     float64 // Amp·cos(Phase), the mixed sample
	Power float64 // Amp²
}

// MixBoundary synthesizes the boundary channel for one pair.
func MixBoundary(low, high osc.Snapshot) BoundarySignal {
	aLow := low.RadialAmp()
	aHigh := high.RadialAmp()

	amp := math.Sqrt(aLow * aHigh)

	// Average the unit phasors rather than the raw angles so the wraparound
	// at ±π cannot split a nearly-aligned pair.
	var ux, uy float64
	if aLow > 1e-9 {
		ux += low.X / aLow
		uy += low.Y / aLow
	}
	if aHigh > 1e-9 {
		ux += high.X / aHigh
		uy += high.Y / aHigh
	}
	phase := math.Atan2(uy, ux)

	return BoundarySignal{
		Amp:   amp,
		Phase: phase,
		X:     amp * math.Cos(phase),
		Power: amp * amp,
	}
}
