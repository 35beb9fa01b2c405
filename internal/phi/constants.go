// Package phi provides the golden-ratio constants and the φⁿ frequency ladder.
// Every maintained frequency is expressed as reference × Φⁿ for a continuous
// exponent n — no arbitrary center frequencies, everything traces back to Φ.
// See design doc Section 2.1.
package phi

import "math"

// Phi is the golden ratio.
const Phi = 1.6180339887498948

// LnPhi is the natural log of Phi, used to convert frequency ratios to exponents.
var LnPhi = math.Log(Phi)

// ReferenceHz is the ladder anchor, placed so the thalamic pacer lands at
// 5.89 Hz and cortical gamma at 40.36 Hz. Deliberately near, but not equal
// to, the 7.83 Hz field fundamental: the ladder and the external field are
// separate frequency systems.
const ReferenceHz = 7.492

// Ladder exponents for the maintained oscillator groups. The thalamic pacer
// sits below the reference; the cortical layers climb the ladder in
// half-integer steps (the stable attractor positions), with L4 at the
// integer boundary by design of the original tuning.
const (
	ExpTheta = -0.5 // thalamic pacer, ~5.9 Hz
	ExpL6    = 0.5  // alpha, ~9.5 Hz
	ExpL5a   = 1.5  // low beta, ~15.4 Hz
	ExpL5b   = 2.5  // high beta, ~24.9 Hz
	ExpL4    = 3.0  // low gamma, ~31.7 Hz
	ExpL23   = 3.5  // gamma, ~40.4 Hz
)

// LayerExponents lists the five cortical layer exponents in ladder order.
var LayerExponents = [5]float64{ExpL6, ExpL5a, ExpL5b, ExpL4, ExpL23}

// Log-φ positions of the low-order integer ratios. Exponents near these
// values put two related oscillators at a 2:1, 3:1 or 4:1 frequency ratio —
// the catastrophe neighborhoods.
var (
	LogPhi2 = math.Log(2) / LnPhi // 1.4404
	LogPhi3 = math.Log(3) / LnPhi // 2.2830
	LogPhi4 = math.Log(4) / LnPhi // 2.8808
)

// Frequency returns the ladder frequency for exponent n: reference × Φⁿ.
func Frequency(n float64) float64 {
	return ReferenceHz * math.Pow(Phi, n)
}

// Exponent returns the ladder exponent for a frequency: log_Φ(f / reference).
func Exponent(freq float64) float64 {
	return math.Log(freq/ReferenceHz) / LnPhi
}

// RatioExponent returns the exponent separation of two frequencies:
// log_Φ(high / low).
func RatioExponent(low, high float64) float64 {
	return math.Log(high/low) / LnPhi
}
