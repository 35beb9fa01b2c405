// Package coupling selects the coupling regime between the field-tracking
// channels and the cortical population. Hysteresis keeps the controller from
// chattering around the entry threshold, and every mode change passes
// through a fixed-duration crossfade so downstream gains never switch
// discretely.
// See design doc Section 5.3.
package coupling

import "log/slog"

// Mode is the coupling regime.
type Mode uint8

const (
	// Modulatory: weak phase-biasing coupling only.
	Modulatory Mode = iota
	// Transition: fixed-duration crossfade between the other two.
	Transition
	// Harmonic: strong resonant coupling, entered on high coherence.
	Harmonic
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case Modulatory:
		return "modulatory"
	case Transition:
		return "transition"
	case Harmonic:
		return "harmonic"
	default:
		return "unknown"
	}
}

// Gains are the blend endpoints consumed by the output mixer: how much of
// the modulatory and harmonic paths is audible.
type Gains struct {
	Modulatory float64
	Harmonic   float64
}

// Endpoint gains per settled mode.
var (
	modulatoryGains = Gains{Modulatory: 1.0, Harmonic: 0.0}
	harmonicGains   = Gains{Modulatory: 0.35, Harmonic: 1.0}
)

// Config holds the controller thresholds. EnterR must be strictly greater
// than ExitR; the gap is the hysteresis band.
type Config struct {
	EnterR          float64 // order parameter to enter Harmonic
	ExitR           float64 // order parameter to leave Harmonic (strictly lower)
	BoundaryPower   float64 // boundary-channel power floor for entry
	TransitionTicks int     // crossfade duration
}

// DefaultConfig returns the tuned thresholds.
func DefaultConfig() Config {
	return Config{
		EnterR:          0.70,
		ExitR:           0.50,
		BoundaryPower:   0.30,
		TransitionTicks: 500,
	}
}

// Controller is the three-state mode machine. Single-writer: only the tick
// pipeline calls Update.
type Controller struct {
	cfg Config

	mode   Mode // reported mode
	target Mode // settled mode the crossfade is heading toward
	from   Gains
	to     Gains
	left   int // crossfade ticks remaining
	gains  Gains
}

// NewController starts in Modulatory.
func NewController(cfg Config) *Controller {
	return &Controller{
		cfg:    cfg,
		mode:   Modulatory,
		target: Modulatory,
		gains:  modulatoryGains,
	}
}

// Update advances one tick. r is the order parameter, boundaryPower the
// boundary-channel power, forceHarmonic the external override flag.
func (c *Controller) Update(r, boundaryPower float64, forceHarmonic bool) {
	want := c.target
	switch c.target {
	case Harmonic:
		// Leave only once R falls below the strictly lower exit threshold
		// and the flag is unset.
		if !forceHarmonic && r < c.cfg.ExitR {
			want = Modulatory
		}
	default:
		if forceHarmonic || (r > c.cfg.EnterR && boundaryPower > c.cfg.BoundaryPower) {
			want = Harmonic
		}
	}

	if want != c.target {
		c.from = c.gains
		c.to = endpointGains(want)
		c.left = c.cfg.TransitionTicks
		c.target = want
		c.mode = Transition
		slog.Info("coupling mode change",
			"to", want.String(),
			"order_parameter", r,
			"boundary_power", boundaryPower,
			"forced", forceHarmonic,
		)
	}

	if c.left > 0 {
		c.left--
		// Linear interpolation from the gains at the moment of the switch to
		// the new endpoint.
		t := 1 - float64(c.left)/float64(c.cfg.TransitionTicks)
		c.gains = Gains{
			Modulatory: c.from.Modulatory + t*(c.to.Modulatory-c.from.Modulatory),
			Harmonic:   c.from.Harmonic + t*(c.to.Harmonic-c.from.Harmonic),
		}
		if c.left == 0 {
			c.mode = c.target
			c.gains = c.to
		}
	}
}

func endpointGains(m Mode) Gains {
	if m == Harmonic {
		return harmonicGains
	}
	return modulatoryGains
}

// Mode reports the current mode (Transition while crossfading).
func (c *Controller) Mode() Mode {
	return c.mode
}

// Gains reports the current blend gains.
func (c *Controller) Gains() Gains {
	return c.gains
}

// Reset returns to settled Modulatory.
func (c *Controller) Reset() {
	c.mode = Modulatory
	c.target = Modulatory
	c.gains = modulatoryGains
	c.left = 0
}
