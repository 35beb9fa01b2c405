package ignite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// shortTiming keeps the cycle tests fast; the ratios mirror the production
// tables.
var shortTiming = Timing{
	CoherenceTicks:   20,
	IgnitionTicks:    10,
	PlateauTicks:     10,
	PropagationTicks: 10,
	DecayTicks:       10,
	RefractoryTicks:  30,
}

func TestThresholdModulation(t *testing.T) {
	assert.InDelta(t, 0.75, Threshold(Inputs{}), 1e-12)

	// Full agreement halves the threshold.
	assert.InDelta(t, 0.375, Threshold(Inputs{Agreement: 1}), 1e-12)

	// Full stability takes another quarter off.
	assert.InDelta(t, 0.75*0.5*0.75, Threshold(Inputs{Agreement: 1, Stability: 1}), 1e-12)

	// A positive Base overrides the default.
	assert.InDelta(t, 0.92, Threshold(Inputs{Base: 0.92}), 1e-12)

	// Out-of-range modulators clamp instead of inverting the threshold.
	assert.InDelta(t, 0.375, Threshold(Inputs{Agreement: 7}), 1e-12)
	assert.InDelta(t, 0.75, Threshold(Inputs{Agreement: -3}), 1e-12)
}

func TestNoTriggerWithoutLowActivityGate(t *testing.T) {
	c := NewController()
	for i := 0; i < 100; i++ {
		c.Update(Inputs{Coherence: 0.99, LowActivity: false}, shortTiming)
		require.Equal(t, Baseline, c.Phase())
		require.Zero(t, c.Gain())
	}
}

func TestNoTriggerBelowThreshold(t *testing.T) {
	c := NewController()
	for i := 0; i < 100; i++ {
		c.Update(Inputs{Coherence: 0.74, LowActivity: true}, shortTiming)
		require.Equal(t, Baseline, c.Phase())
	}
}

func TestTriggerEntersCoherenceWithZeroGain(t *testing.T) {
	c := NewController()
	c.Update(Inputs{Coherence: 0.80, LowActivity: true}, shortTiming)
	assert.Equal(t, Coherence, c.Phase())
	assert.Zero(t, c.Gain(), "amplitude must not move on the trigger tick")
}

func TestPLVLeadsGain(t *testing.T) {
	c := NewController()
	trigger := Inputs{Coherence: 0.9, LowActivity: true}
	c.Update(trigger, shortTiming)
	require.Equal(t, Coherence, c.Phase())

	// First half of Coherence: PLV climbs, Gain stays at zero.
	for i := 0; i < shortTiming.CoherenceTicks/2; i++ {
		c.Update(trigger, shortTiming)
		require.Zero(t, c.Gain(), "tick %d", i)
	}
	require.Greater(t, c.PLV(), 0.0)

	// Second half: Gain finally moves, PLV already established.
	for i := 0; i < shortTiming.CoherenceTicks/2; i++ {
		c.Update(trigger, shortTiming)
	}
	require.Greater(t, c.Gain(), 0.0)
	require.Greater(t, c.PLV(), c.Gain())
}

func TestFullCyclePhaseOrder(t *testing.T) {
	c := NewController()
	in := Inputs{Coherence: 0.9, LowActivity: true}

	seen := []Phase{c.Phase()}
	for i := 0; i < 200; i++ {
		c.Update(in, shortTiming)
		if p := c.Phase(); p != seen[len(seen)-1] {
			seen = append(seen, p)
		}
	}

	want := []Phase{Baseline, Coherence, Ignition, Plateau, Propagation, Decay, Refractory, Baseline, Coherence}
	require.GreaterOrEqual(t, len(seen), len(want))
	assert.Equal(t, want, seen[:len(want)])
}

func TestPlateauHoldsPeak(t *testing.T) {
	c := NewController()
	in := Inputs{Coherence: 0.9, LowActivity: true}

	// Run to Plateau.
	for c.Phase() != Plateau {
		c.Update(in, shortTiming)
	}
	for i := 0; i < shortTiming.PlateauTicks-1; i++ {
		c.Update(in, shortTiming)
		if c.Phase() != Plateau {
			break
		}
		require.Equal(t, GainPeak, c.Gain())
		require.Equal(t, PLVPeak, c.PLV())
	}
}

func TestGainZeroInRefractory(t *testing.T) {
	c := NewController()
	in := Inputs{Coherence: 0.9, LowActivity: true}

	for c.Phase() != Refractory {
		c.Update(in, shortTiming)
	}
	for i := 0; c.Phase() == Refractory; i++ {
		require.Zero(t, c.Gain(), "refractory tick %d", i)
		c.Update(in, shortTiming)
	}
}

func TestRefractoryRefusesRetrigger(t *testing.T) {
	c := NewController()
	in := Inputs{Coherence: 0.99, Agreement: 1, Stability: 1, LowActivity: true}

	for c.Phase() != Refractory {
		c.Update(in, shortTiming)
	}

	// Maximal trigger pressure for the whole refractory hold: refused.
	for i := 0; i < shortTiming.RefractoryTicks-1; i++ {
		c.Update(in, shortTiming)
		require.Equal(t, Refractory, c.Phase(), "tick %d", i)
	}

	// Once back in Baseline the next trigger is honored again.
	c.Update(in, shortTiming) // leaves Refractory
	c.Update(in, shortTiming)
	assert.Equal(t, Coherence, c.Phase())
}

func TestActiveWindow(t *testing.T) {
	c := NewController()
	in := Inputs{Coherence: 0.9, LowActivity: true}

	require.False(t, c.Active())
	for c.Phase() != Ignition {
		c.Update(in, shortTiming)
	}
	require.True(t, c.Active())

	for c.Phase() != Refractory {
		c.Update(in, shortTiming)
	}
	assert.False(t, c.Active())
}

func TestReset(t *testing.T) {
	c := NewController()
	in := Inputs{Coherence: 0.9, LowActivity: true}
	for c.Phase() != Plateau {
		c.Update(in, shortTiming)
	}

	c.Reset()
	assert.Equal(t, Baseline, c.Phase())
	assert.Zero(t, c.Gain())
	assert.Zero(t, c.PLV())
}

func TestPhaseStrings(t *testing.T) {
	for _, p := range []Phase{Baseline, Coherence, Ignition, Plateau, Propagation, Decay, Refractory} {
		assert.NotEqual(t, "unknown", p.String())
	}
}
