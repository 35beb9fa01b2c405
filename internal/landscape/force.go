// Package landscape computes the self-organization forces over frequency
// exponents and classifies exponent positions by stability. The landscape is
// what makes seeker frequencies settle at golden-ratio-spaced half-integer
// exponents instead of locking onto low-order rational ratios.
// See design doc Section 4.1.
package landscape

import (
	"math"

	"github.com/talgya/phin/internal/phi"
)

// Band marks a catastrophe zone: a neighborhood of exponent space where two
// related oscillators approach a low-order integer frequency ratio.
// Boundaries are empirically tuned configuration, not derived.
type Band struct {
	Center    float64
	HalfWidth float64
	Strength  float64
}

// Contains reports whether n lies inside the band.
func (b Band) Contains(n float64) bool {
	return math.Abs(n-b.Center) <= b.HalfWidth
}

// Config holds the landscape shape parameters.
type Config struct {
	PeriodicAmp  float64 // amplitude of the φ-periodic restoring term
	ResonanceAmp float64 // strength of the rational-resonance repulsion
	Epsilon      float64 // Lorentzian regularization near each p/q
	Bands        []Band  // active catastrophe zones
}

// DefaultConfig returns the tuned landscape used by the engine.
func DefaultConfig() Config {
	return Config{
		PeriodicAmp:  1.0,
		ResonanceAmp: 0.002,
		Epsilon:      0.05,
		Bands:        DefaultBands(),
	}
}

// DefaultBands returns the catastrophe zones around the 2:1, 3:1 and 4:1
// ratio positions in log-φ space, half-width 0.10.
func DefaultBands() []Band {
	return []Band{
		{Center: phi.LogPhi2, HalfWidth: 0.10, Strength: 2.0},
		{Center: phi.LogPhi3, HalfWidth: 0.10, Strength: 2.0},
		{Center: phi.LogPhi4, HalfWidth: 0.10, Strength: 2.0},
	}
}

// Forces is the per-term force decomposition at an exponent. Stateless given
// n; recomputed every tick.
type Forces struct {
	Periodic    float64
	Resonance   float64
	Catastrophe float64
	Total       float64
}

// fraction is one low-order rational p/q with q ≤ 5, reduced.
type fraction struct {
	value float64
}

// resonanceFractions lists the reduced fractions p/q, q ≤ 5, covering the
// working exponent range [-2, 5]. Built once.
var resonanceFractions = buildFractions(-2, 5)

func buildFractions(lo, hi int) []fraction {
	seen := make(map[int64]bool)
	var out []fraction
	for q := 1; q <= 5; q++ {
		for p := lo * q; p <= hi*q; p++ {
			if gcd(abs(p), q) != 1 {
				continue
			}
			// Key on p/q scaled to avoid float map keys.
			key := int64(p)*60/int64(q) + 1<<20
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, fraction{value: float64(p) / float64(q)})
		}
	}
	return out
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func abs(a int) int {
	if a < 0 {
		return -a
	}
	return a
}

// Force evaluates the three landscape terms at exponent n.
//
// The periodic term restores n toward half-integer attractors and repels it
// from integer boundaries. The resonance term is a sum of Lorentzian
// repulsions, one per low-order fraction, discouraging simple rational
// positions. The catastrophe term activates only inside a configured band
// and pushes n away from the band center.
func (c Config) Force(n float64) Forces {
	var f Forces

	// Restoring term: zero at every half-integer and integer; the slope makes
	// half-integers stable and integers unstable.
	f.Periodic = c.PeriodicAmp * math.Sin(2*math.Pi*n)

	// Rational-resonance repulsion. Each fraction contributes an odd-symmetric
	// kick away from itself; ε regularizes the singularity at n = p/q.
	// Fractions beyond one unit away contribute negligibly and are skipped.
	e2 := c.Epsilon * c.Epsilon
	for _, fr := range resonanceFractions {
		d := n - fr.value
		if d > 1 || d < -1 {
			continue
		}
		den := d*d + e2
		f.Resonance += c.ResonanceAmp * d / (den * den)
	}

	// Catastrophe repulsion: piecewise, active only inside a band. At the
	// exact center the escape direction is upward so the force is never zero
	// inside a band.
	for _, b := range c.Bands {
		if !b.Contains(n) {
			continue
		}
		dir := 1.0
		if n < b.Center {
			dir = -1.0
		}
		depth := 1 - math.Abs(n-b.Center)/b.HalfWidth
		f.Catastrophe += dir * b.Strength * (0.25 + 0.75*depth)
	}

	f.Total = f.Periodic + f.Resonance + f.Catastrophe
	return f
}

// InBand reports whether n lies in any active catastrophe band.
func (c Config) InBand(n float64) bool {
	for _, b := range c.Bands {
		if b.Contains(n) {
			return true
		}
	}
	return false
}
