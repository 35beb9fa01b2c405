// Package engine provides the discrete-time tick loop and the fixed-order
// update pipeline that wires every subsystem together.
// See design doc Section 3.4.
package engine

import (
	"log/slog"
	"time"
)

// Supported tick rates. Both produce numerically identical state sequences;
// only wall-clock pacing differs.
const (
	// RealTimeHz is the production rate: one tick per millisecond.
	RealTimeHz = 1000
	// Accelerated runs ticks back to back with no pacing, for fast
	// validation runs.
	Accelerated = 0
)

// Engine drives the simulation forward.
type Engine struct {
	Tick    uint64 // current tick counter (monotonic, never resets)
	RateHz  int    // RealTimeHz, or Accelerated for unpaced stepping
	Running bool

	// OnTick runs the whole pipeline, once per tick.
	OnTick func(tick uint64)
}

// NewEngine creates an engine at the real-time rate.
func NewEngine() *Engine {
	return &Engine{RateHz: RealTimeHz}
}

// Run starts the tick loop. Blocks until Stop is called.
func (e *Engine) Run() {
	e.Running = true
	slog.Info("engine started", "tick", e.Tick, "rate_hz", e.RateHz)

	var interval time.Duration
	if e.RateHz > 0 {
		interval = time.Second / time.Duration(e.RateHz)
	}

	for e.Running {
		start := time.Now()

		e.step()

		if interval > 0 {
			elapsed := time.Since(start)
			if elapsed < interval {
				time.Sleep(interval - elapsed)
			}
		}
	}

	slog.Info("engine stopped", "tick", e.Tick)
}

// RunTicks advances exactly n ticks without pacing, regardless of rate.
// Used by validation runs and tests.
func (e *Engine) RunTicks(n uint64) {
	for i := uint64(0); i < n; i++ {
		e.step()
	}
}

// Stop halts the loop after the current tick completes. A tick always
// finishes before the next tick's inputs are sampled; there is no partial
// update to interrupt.
func (e *Engine) Stop() {
	e.Running = false
}

func (e *Engine) step() {
	e.Tick++
	if e.OnTick != nil {
		e.OnTick(e.Tick)
	}
}
