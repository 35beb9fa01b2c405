// Command phisim runs the φⁿ coupled-oscillator engine.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/talgya/phin/internal/api"
	"github.com/talgya/phin/internal/engine"
	"github.com/talgya/phin/internal/phi"
	"github.com/talgya/phin/internal/regime"
	"github.com/talgya/phin/internal/trace"
)

func main() {
	var (
		seed       = flag.Uint64("seed", 42, "deterministic run seed")
		regimeName = flag.String("regime", "normal", "starting regime (normal|anesthesia|psychedelic|flow|meditation)")
		fast       = flag.Bool("fast", false, "accelerated rate: no pacing, identical state sequence")
		ticks      = flag.Uint64("ticks", 0, "stop after N ticks (0 = run until signal)")
		tracePath  = flag.String("trace", "", "record a tick trace to this SQLite file")
		decimate   = flag.Uint64("decimate", 1, "record every Nth tick to the trace")
		apiPort    = flag.Int("api", 0, "serve the observation API on this port (0 = disabled)")
	)
	flag.Parse()

	// Text logs on a terminal, JSON otherwise.
	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if isatty.IsTerminal(os.Stdout.Fd()) {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))

	start, ok := regime.Parse(*regimeName)
	if !ok {
		slog.Warn("unknown regime, falling back to normal", "regime", *regimeName)
		start = regime.Normal
	}

	slog.Info("phin — φⁿ coupled-oscillator engine",
		"phi", phi.Phi,
		"reference_hz", phi.ReferenceHz,
		"seed", *seed,
		"regime", start.String(),
	)

	sim := engine.NewSimulation(*seed, start)

	eng := engine.NewEngine()
	if *fast {
		eng.RateHz = engine.Accelerated
	}
	eng.OnTick = sim.Step

	// ── Trace recorder ───────────────────────────────────────────────
	if *tracePath != "" {
		rec, err := trace.Open(*tracePath)
		if err != nil {
			slog.Error("failed to open trace", "error", err)
			os.Exit(1)
		}
		defer rec.Close()

		runID, err := rec.BeginRun(*seed, start.String(), eng.RateHz, *decimate)
		if err != nil {
			slog.Error("failed to begin trace run", "error", err)
			os.Exit(1)
		}
		sim.OnSnapshot = rec.Append
		slog.Info("tracing enabled", "path", *tracePath, "run_id", runID)
	}

	// ── HTTP API ─────────────────────────────────────────────────────
	if *apiPort > 0 {
		adminKey := os.Getenv("PHISIM_ADMIN_KEY")
		if adminKey == "" {
			slog.Warn("PHISIM_ADMIN_KEY not set — control POST endpoints will be disabled")
		}
		srv := &api.Server{Sim: sim, Eng: eng, Port: *apiPort, AdminKey: adminKey}
		srv.Start()
		fmt.Printf("API: http://localhost:%d/api/v1/status\n", *apiPort)
	}

	// ── Run ──────────────────────────────────────────────────────────
	if *ticks > 0 {
		slog.Info("bounded run", "ticks", humanize.Comma(int64(*ticks)))
		eng.RunTicks(*ticks)
	} else {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			sig := <-sigCh
			slog.Info("received signal, shutting down", "signal", sig)
			eng.Stop()
		}()

		fmt.Println("Engine running... (Ctrl+C to stop)")
		eng.Run()
	}

	snap := sim.Snapshot()
	slog.Info("final state",
		"tick", humanize.Comma(int64(snap.Tick)),
		"regime", snap.Regime.String(),
		"order_parameter", fmt.Sprintf("%.3f", snap.R),
		"ignition_phase", snap.IgnitionPhase.String(),
		"spacing_index", fmt.Sprintf("%.3f", snap.Spacing),
	)
}
