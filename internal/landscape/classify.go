package landscape

import "math"

// Class is the stability classification of an exponent position.
type Class uint8

const (
	// IntegerBoundary: fractional part within 0.125 of an integer. Unstable —
	// the periodic force repels from here.
	IntegerBoundary Class = iota
	// HalfInteger: within 0.125 of a half-integer attractor. The stable
	// resting position.
	HalfInteger
	// QuarterInteger: within 0.125 of 0.25 or 0.75. Medium stability; the
	// designated fallback when the half-integer attractor falls inside a
	// catastrophe band.
	QuarterInteger
	// NearCatastrophe: inside an active catastrophe band. Lowest stability
	// regardless of fractional position.
	NearCatastrophe
)

// String implements fmt.Stringer.
func (c Class) String() string {
	switch c {
	case IntegerBoundary:
		return "integer-boundary"
	case HalfInteger:
		return "half-integer"
	case QuarterInteger:
		return "quarter-integer"
	case NearCatastrophe:
		return "near-catastrophe"
	default:
		return "unknown"
	}
}

// Position is a classified exponent with its stability score in [0, 1].
// Stability feeds the ignition controller's sensitivity modulation.
type Position struct {
	Class     Class
	Stability float64
}

// Classify maps an exponent to exactly one class. Total and deterministic:
// the fractional bands [0, 0.125], (0.125, 0.375), [0.375, 0.625],
// (0.625, 0.875), [0.875, 1) tile the unit interval, and any catastrophe
// band overrides the fractional classification.
func (c Config) Classify(n float64) Position {
	for _, b := range c.Bands {
		if b.Contains(n) {
			// Stability rises slightly toward the band edge but stays the
			// lowest of any class.
			edge := math.Abs(n-b.Center) / b.HalfWidth
			return Position{Class: NearCatastrophe, Stability: 0.05 + 0.15*edge}
		}
	}

	frac := n - math.Floor(n)

	switch {
	case frac <= 0.125 || frac >= 0.875:
		d := math.Min(frac, 1-frac) // distance to the integer
		return Position{Class: IntegerBoundary, Stability: 0.2 * (d / 0.125)}
	case frac >= 0.375 && frac <= 0.625:
		d := math.Abs(frac - 0.5)
		return Position{Class: HalfInteger, Stability: 1 - 2*d}
	default:
		qc := 0.25
		if frac > 0.5 {
			qc = 0.75
		}
		d := math.Abs(frac - qc)
		return Position{Class: QuarterInteger, Stability: 0.6 - 1.6*d}
	}
}
