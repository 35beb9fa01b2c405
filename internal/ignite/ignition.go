// Package ignite gates the transient amplification of the external field:
// a seven-phase state machine driving the Gain and PLV envelopes. The causal
// signature is fixed — phase-locking rises before amplitude, amplification
// peaks, propagates, decays, then a refractory hold forbids re-triggering.
// See design doc Section 5.4.
package ignite

import "log/slog"

// Phase is the ignition cycle position.
type Phase uint8

const (
	// Baseline: quiescent; the only phase a trigger is honored from.
	Baseline Phase = iota
	// Coherence: PLV ramps ahead of Gain.
	Coherence
	// Ignition: Gain ramps rapidly to peak.
	Ignition
	// Plateau: both envelopes hold at peak.
	Plateau
	// Propagation: exponential decay toward an intermediate level.
	Propagation
	// Decay: relaxation back to baseline.
	Decay
	// Refractory: Gain pinned at 0; triggers unconditionally refused.
	Refractory
)

// String implements fmt.Stringer.
func (p Phase) String() string {
	switch p {
	case Baseline:
		return "baseline"
	case Coherence:
		return "coherence"
	case Ignition:
		return "ignition"
	case Plateau:
		return "plateau"
	case Propagation:
		return "propagation"
	case Decay:
		return "decay"
	case Refractory:
		return "refractory"
	default:
		return "unknown"
	}
}

// Timing holds the tick-counted phase durations. Regime-dependent; treated
// as opaque configuration (empirically tuned in the original, not derived).
type Timing struct {
	CoherenceTicks   int
	IgnitionTicks    int
	PlateauTicks     int
	PropagationTicks int
	DecayTicks       int
	RefractoryTicks  int
}

// Envelope levels.
const (
	// GainPeak is the Gain target during Plateau.
	GainPeak = 1.0
	// PLVPeak is the PLV target during Plateau.
	PLVPeak = 1.0
	// coherencePLVTarget is where PLV ramps to before Gain starts moving.
	coherencePLVTarget = 0.6
	// coherenceGainTarget is the small pre-ignition Gain foothold.
	coherenceGainTarget = 0.15
	// intermediateLevel is the Propagation decay target.
	intermediateLevel = 0.5
	// propagationRate and decayRate are the per-tick exponential pull.
	propagationRate = 0.01
	decayRate       = 0.02
)

// BaseThreshold is the unmodulated coherence trigger threshold.
const BaseThreshold = 0.75

// AgreementModulation is how far alignment-detector agreement can lower the
// trigger threshold (up to 50%).
const AgreementModulation = 0.5

// StabilityModulation is how far the position-stability score can further
// sensitize the trigger.
const StabilityModulation = 0.25

// Inputs are the per-tick signals the controller consumes.
type Inputs struct {
	// Coherence is the externally supplied coherence/alignment scalar.
	Coherence float64
	// Base overrides the unmodulated trigger threshold when positive;
	// regimes raise or lower it from the 0.75 default.
	Base float64
	// Agreement is how well the external frequency-alignment detectors
	// currently agree, in [0, 1]. Lowers the trigger threshold up to 50%.
	Agreement float64
	// Stability is the position classifier's stability score in [0, 1].
	Stability float64
	// LowActivity is the "low competing activity" gate; triggering requires
	// it asserted.
	LowActivity bool
}

// Controller is the ignition state machine. Single-writer from the tick
// pipeline; all timers are tick-counted, never wall-clock-bound.
type Controller struct {
	phase   Phase
	elapsed int // ticks in the current phase
	gain    float64
	plv     float64
}

// NewController starts in Baseline with zeroed envelopes.
func NewController() *Controller {
	return &Controller{}
}

// Threshold returns the effective trigger threshold for the given inputs.
// Agreement lowers it by up to 50%; stability sensitizes it further but
// never raises it above the unmodulated base.
func Threshold(in Inputs) float64 {
	base := in.Base
	if base <= 0 {
		base = BaseThreshold
	}
	t := base * (1 - AgreementModulation*clamp01(in.Agreement))
	t *= 1 - StabilityModulation*clamp01(in.Stability)
	return t
}

// Update advances one tick under the given regime timing. Redundant or
// early triggers outside Baseline are silently ignored; that is the
// contract, not an error.
func (c *Controller) Update(in Inputs, t Timing) {
	c.elapsed++

	switch c.phase {
	case Baseline:
		c.gain = 0
		c.plv = 0
		if in.LowActivity && in.Coherence > Threshold(in) {
			c.enter(Coherence)
		}

	case Coherence:
		// PLV leads: it ramps over the first half of the phase; Gain only
		// starts moving in the second half. Coherence precedes amplitude.
		half := t.CoherenceTicks / 2
		if half < 1 {
			half = 1
		}
		c.plv = coherencePLVTarget * ramp(c.elapsed, half)
		if c.elapsed > half {
			c.gain = coherenceGainTarget * ramp(c.elapsed-half, t.CoherenceTicks-half)
		}
		if c.elapsed >= t.CoherenceTicks {
			c.enter(Ignition)
		}

	case Ignition:
		r := ramp(c.elapsed, t.IgnitionTicks)
		c.gain = coherenceGainTarget + (GainPeak-coherenceGainTarget)*r
		c.plv = coherencePLVTarget + (PLVPeak-coherencePLVTarget)*r
		if c.elapsed >= t.IgnitionTicks {
			c.enter(Plateau)
		}

	case Plateau:
		c.gain = GainPeak
		c.plv = PLVPeak
		if c.elapsed >= t.PlateauTicks {
			c.enter(Propagation)
		}

	case Propagation:
		c.gain += propagationRate * (intermediateLevel - c.gain)
		c.plv += propagationRate * (intermediateLevel - c.plv)
		if c.elapsed >= t.PropagationTicks {
			c.enter(Decay)
		}

	case Decay:
		c.gain += decayRate * (0 - c.gain)
		c.plv += decayRate * (0 - c.plv)
		if c.elapsed >= t.DecayTicks {
			c.enter(Refractory)
			c.gain = 0
		}

	case Refractory:
		c.gain = 0
		c.plv += decayRate * (0 - c.plv)
		if c.elapsed >= t.RefractoryTicks {
			c.enter(Baseline)
			c.gain = 0
			c.plv = 0
		}
	}
}

func (c *Controller) enter(p Phase) {
	slog.Debug("ignition phase change", "from", c.phase.String(), "to", p.String(), "ticks_in_phase", c.elapsed)
	c.phase = p
	c.elapsed = 0
}

// ramp is a linear 0→1 ramp over n ticks, clamped.
func ramp(elapsed, n int) float64 {
	if n < 1 {
		return 1
	}
	r := float64(elapsed) / float64(n)
	if r > 1 {
		r = 1
	}
	return r
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Phase reports the current phase.
func (c *Controller) Phase() Phase {
	return c.phase
}

// Gain reports the gain envelope in [0, 1]. Exactly 0 in Baseline and
// Refractory.
func (c *Controller) Gain() float64 {
	return c.gain
}

// PLV reports the phase-locking envelope in [0, 1].
func (c *Controller) PLV() float64 {
	return c.plv
}

// Active reports whether amplification is live: Ignition, Plateau or
// Propagation.
func (c *Controller) Active() bool {
	return c.phase == Ignition || c.phase == Plateau || c.phase == Propagation
}

// Reset forces immediate Baseline with both envelopes zeroed.
func (c *Controller) Reset() {
	c.phase = Baseline
	c.elapsed = 0
	c.gain = 0
	c.plv = 0
}
