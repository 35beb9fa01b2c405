// Package osc implements the Hopf normal-form oscillator, the single
// nonlinear unit of the engine. Explicit-Euler integration at the fixed tick
// rate, with a corrective rescale that keeps the cubic damping term from
// diverging under Euler overshoot.
// See design doc Section 3.1.
package osc

import "math"

// Dt is the integration timestep: one tick at the 1 kHz base rate. The
// accelerated validation rate reuses the same Dt — only wall-clock pacing
// differs, never the state sequence.
const Dt = 0.001

// OvershootRatio is how far the squared radius may exceed the target before
// the corrective rescale engages (~6%).
const OvershootRatio = 1.06

// MinCorrection is the floor of the corrective scale factor. The correction
// blends between this and identity depending on overshoot severity.
const MinCorrection = 0.5

// AmpMeanFactor relates the time-averaged amplitude estimate (|x|+|y|) to the
// limit-cycle radius: mean(|cos|+|sin|) over a cycle = 4/π.
var AmpMeanFactor = 4 / math.Pi

// Params supplies the per-tick frequency inputs. Both may vary tick to tick
// with regime and drift.
type Params struct {
	Growth      float64 // growth rate μ; also the squared-radius target
	AngularStep float64 // ω·dt, radians advanced per tick
}

// AngularStep converts a frequency in Hz to the per-tick phase increment.
func AngularStep(freqHz float64) float64 {
	return 2 * math.Pi * freqHz * Dt
}

// Oscillator holds one unit's state pair and derived quantities. Owned
// exclusively by its update step; mutated once per tick.
type Oscillator struct {
	X, Y float64
	Amp  float64 // amplitude estimate: |x| + |y|
	R2   float64 // squared radius after the last step
}

// New returns an oscillator in the fast-start state (half-unit x, zero y),
// so the limit cycle is reached in a bounded number of ticks rather than
// crawling up from numerical zero.
func New() *Oscillator {
	o := &Oscillator{}
	o.Reset()
	return o
}

// Reset restores the fast-start state.
func (o *Oscillator) Reset() {
	o.X = 0.5
	o.Y = 0
	o.R2 = 0.25
	o.Amp = 0.5
}

// Step advances the oscillator one tick:
//
//	dx = μx − ωy − r²x + forcing
//	dy = μy + ωx − r²y
//
// then applies the stabilization correction if the squared radius overshot
// the target. Forcing is injected on the x component only, matching the
// original's field-coupling path.
func (o *Oscillator) Step(p Params, forcing float64) {
	r2 := o.X*o.X + o.Y*o.Y

	dx := Dt*(p.Growth*o.X-r2*o.X+forcing) - p.AngularStep*o.Y
	dy := Dt*(p.Growth*o.Y-r2*o.Y) + p.AngularStep*o.X

	o.X += dx
	o.Y += dy

	o.R2 = o.X*o.X + o.Y*o.Y
	o.stabilize(p.Growth)

	o.Amp = math.Abs(o.X) + math.Abs(o.Y)
}

// stabilize rescales both components when the squared radius exceeds the
// overshoot threshold. Euler integration of the cubic damping term can
// otherwise alternate-sign diverge at large radius. Below threshold the
// correction is the identity.
func (o *Oscillator) stabilize(growth float64) {
	target := growth
	if target <= 0 {
		target = 1
	}
	threshold := target * OvershootRatio
	if o.R2 <= threshold {
		return
	}

	// Scale back to the threshold radius, floored so a single tick never
	// collapses the state.
	s := math.Sqrt(threshold / o.R2)
	if s < MinCorrection {
		s = MinCorrection
	}
	o.X *= s
	o.Y *= s
	o.R2 = o.X*o.X + o.Y*o.Y
}

// Phase returns the instantaneous phase angle in (−π, π].
func (o *Oscillator) Phase() float64 {
	return math.Atan2(o.Y, o.X)
}

// Snapshot is a committed copy of the oscillator outputs, read by metrics
// and collaborators after the tick's update pass.
type Snapshot struct {
	X, Y float64
	Amp  float64
	R2   float64
}

// Snapshot copies the current state.
func (o *Oscillator) Snapshot() Snapshot {
	return Snapshot{X: o.X, Y: o.Y, Amp: o.Amp, R2: o.R2}
}

// Phase returns the snapshot's phase angle.
func (s Snapshot) Phase() float64 {
	return math.Atan2(s.Y, s.X)
}

// RadialAmp approximates the radius from a snapshot without a square root:
// max(|x|,|y|) + 0.4·min(|x|,|y|), accurate to a few percent over a cycle.
func (s Snapshot) RadialAmp() float64 {
	ax, ay := math.Abs(s.X), math.Abs(s.Y)
	if ax < ay {
		ax, ay = ay, ax
	}
	return ax + 0.4*ay
}
