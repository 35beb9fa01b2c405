// Package regime maps the operating-regime selector to numeric engine
// parameters, with optional linear interpolation across a regime switch.
// The tables are empirically tuned configuration carried over from the
// original hardware; nothing here is derived.
// See design doc Section 6.1.
package regime

import (
	"log/slog"
	"math"

	"github.com/talgya/phin/internal/ignite"
)

// Regime is the operating-regime selector.
type Regime uint8

const (
	Normal Regime = iota
	Anesthesia
	Psychedelic
	Flow
	Meditation

	numRegimes
)

// String implements fmt.Stringer.
func (r Regime) String() string {
	switch r {
	case Normal:
		return "normal"
	case Anesthesia:
		return "anesthesia"
	case Psychedelic:
		return "psychedelic"
	case Flow:
		return "flow"
	case Meditation:
		return "meditation"
	default:
		return "unknown"
	}
}

// Parse maps a selector name to a Regime. Unknown names report ok=false;
// callers fall back to Normal per the always-running contract.
func Parse(name string) (Regime, bool) {
	switch name {
	case "normal":
		return Normal, true
	case "anesthesia":
		return Anesthesia, true
	case "psychedelic":
		return Psychedelic, true
	case "flow":
		return Flow, true
	case "meditation":
		return Meditation, true
	default:
		return Normal, false
	}
}

// Params are the regime-dependent numeric inputs the engine consumes each
// tick. All fields interpolate linearly during a regime transition.
type Params struct {
	// Growth rates μ per oscillator group.
	GrowthTheta    float64
	GrowthCortical float64
	GrowthField    float64

	// Drift scaling applied on top of the per-walker configs.
	WalkScale   float64
	JitterScale float64

	// Ignition phase durations in ticks.
	Timing ignite.Timing

	// CoherenceThreshold overrides the ignition base threshold; 0.75 in
	// Normal, raised or lowered per regime.
	CoherenceThreshold float64
}

// table holds the tuned per-regime parameters.
var table = [numRegimes]Params{
	Normal: {
		GrowthTheta:    3.0,
		GrowthCortical: 2.0,
		GrowthField:    1.0,
		WalkScale:      1.0,
		JitterScale:    1.0,
		Timing: ignite.Timing{
			CoherenceTicks:   200,
			IgnitionTicks:    100,
			PlateauTicks:     300,
			PropagationTicks: 400,
			DecayTicks:       300,
			RefractoryTicks:  1000,
		},
		CoherenceThreshold: 0.75,
	},
	Anesthesia: {
		GrowthTheta:    1.0,
		GrowthCortical: 0.4,
		GrowthField:    0.5,
		WalkScale:      0.5,
		JitterScale:    2.0,
		Timing: ignite.Timing{
			CoherenceTicks:   400,
			IgnitionTicks:    300,
			PlateauTicks:     100,
			PropagationTicks: 200,
			DecayTicks:       200,
			RefractoryTicks:  3000,
		},
		CoherenceThreshold: 0.92,
	},
	Psychedelic: {
		GrowthTheta:    3.0,
		GrowthCortical: 3.5,
		GrowthField:    1.5,
		WalkScale:      2.5,
		JitterScale:    3.0,
		Timing: ignite.Timing{
			CoherenceTicks:   100,
			IgnitionTicks:    50,
			PlateauTicks:     500,
			PropagationTicks: 600,
			DecayTicks:       400,
			RefractoryTicks:  500,
		},
		CoherenceThreshold: 0.60,
	},
	Flow: {
		GrowthTheta:    3.5,
		GrowthCortical: 2.8,
		GrowthField:    1.2,
		WalkScale:      0.8,
		JitterScale:    0.7,
		Timing: ignite.Timing{
			CoherenceTicks:   150,
			IgnitionTicks:    80,
			PlateauTicks:     450,
			PropagationTicks: 450,
			DecayTicks:       250,
			RefractoryTicks:  800,
		},
		CoherenceThreshold: 0.70,
	},
	Meditation: {
		GrowthTheta:    4.0,
		GrowthCortical: 1.8,
		GrowthField:    1.4,
		WalkScale:      0.6,
		JitterScale:    0.5,
		Timing: ignite.Timing{
			CoherenceTicks:   250,
			IgnitionTicks:    120,
			PlateauTicks:     600,
			PropagationTicks: 500,
			DecayTicks:       350,
			RefractoryTicks:  1200,
		},
		CoherenceThreshold: 0.65,
	},
}

// Lookup returns the settled parameters for a regime. Malformed selectors
// outside the enumerated set fall back to Normal rather than erroring —
// the engine never stops over a bad selector.
func Lookup(r Regime) Params {
	if r >= numRegimes {
		slog.Warn("unknown regime selector, falling back to normal", "selector", uint8(r))
		return table[Normal]
	}
	return table[r]
}

// Selector tracks the active regime and interpolates parameters across a
// transition window. Single-writer from the tick pipeline.
type Selector struct {
	current Regime
	params  Params

	from Params
	to   Params
	left int
	span int
}

// NewSelector starts settled in the given regime.
func NewSelector(r Regime) *Selector {
	if r >= numRegimes {
		r = Normal
	}
	return &Selector{current: r, params: Lookup(r)}
}

// Select switches regimes. transitionTicks > 0 interpolates the parameters
// linearly over that many ticks instead of switching instantaneously.
func (s *Selector) Select(r Regime, transitionTicks int) {
	if r >= numRegimes {
		slog.Warn("unknown regime selector, falling back to normal", "selector", uint8(r))
		r = Normal
	}
	if r == s.current && s.left == 0 {
		return
	}

	s.from = s.params
	s.to = Lookup(r)
	s.current = r
	if transitionTicks <= 0 {
		s.params = s.to
		s.left = 0
		s.span = 0
	} else {
		s.left = transitionTicks
		s.span = transitionTicks
	}
	slog.Info("regime selected", "regime", r.String(), "transition_ticks", transitionTicks)
}

// Step advances one tick of any active transition and returns the current
// parameters.
func (s *Selector) Step() Params {
	if s.left > 0 {
		s.left--
		t := 1 - float64(s.left)/float64(s.span)
		s.params = lerpParams(s.from, s.to, t)
		if s.left == 0 {
			s.params = s.to
		}
	}
	return s.params
}

// Current returns the selected regime (the transition target while
// interpolating).
func (s *Selector) Current() Regime {
	return s.current
}

// Params returns the parameters as of the last Step.
func (s *Selector) Params() Params {
	return s.params
}

// Reset snaps to the settled parameters of the given regime.
func (s *Selector) Reset(r Regime) {
	if r >= numRegimes {
		r = Normal
	}
	s.current = r
	s.params = Lookup(r)
	s.left = 0
	s.span = 0
}

func lerpParams(a, b Params, t float64) Params {
	return Params{
		GrowthTheta:    lerp(a.GrowthTheta, b.GrowthTheta, t),
		GrowthCortical: lerp(a.GrowthCortical, b.GrowthCortical, t),
		GrowthField:    lerp(a.GrowthField, b.GrowthField, t),
		WalkScale:      lerp(a.WalkScale, b.WalkScale, t),
		JitterScale:    lerp(a.JitterScale, b.JitterScale, t),
		Timing: ignite.Timing{
			CoherenceTicks:   lerpInt(a.Timing.CoherenceTicks, b.Timing.CoherenceTicks, t),
			IgnitionTicks:    lerpInt(a.Timing.IgnitionTicks, b.Timing.IgnitionTicks, t),
			PlateauTicks:     lerpInt(a.Timing.PlateauTicks, b.Timing.PlateauTicks, t),
			PropagationTicks: lerpInt(a.Timing.PropagationTicks, b.Timing.PropagationTicks, t),
			DecayTicks:       lerpInt(a.Timing.DecayTicks, b.Timing.DecayTicks, t),
			RefractoryTicks:  lerpInt(a.Timing.RefractoryTicks, b.Timing.RefractoryTicks, t),
		},
		CoherenceThreshold: lerp(a.CoherenceThreshold, b.CoherenceThreshold, t),
	}
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func lerpInt(a, b int, t float64) int {
	return a + int(math.Round(t*float64(b-a)))
}
