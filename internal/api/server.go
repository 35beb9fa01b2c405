// Package api provides the HTTP observation API for the running engine.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (control plane).
// See design doc Section 8.4.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/talgya/phin/internal/engine"
	"github.com/talgya/phin/internal/regime"
)

// Server serves the engine state over HTTP.
type Server struct {
	Sim      *engine.Simulation
	Eng      *engine.Engine
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	mux := http.NewServeMux()

	// Public endpoints (GET, read-only).
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/oscillators", s.handleOscillators)
	mux.HandleFunc("/api/v1/metrics", s.handleMetrics)
	mux.HandleFunc("/api/v1/ignition", s.handleIgnition)
	mux.HandleFunc("/api/v1/landscape", s.handleLandscape)

	// Control endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/regime", s.adminOnly(s.handleRegime))
	mux.HandleFunc("/api/v1/reset", s.adminOnly(s.handleReset))
	mux.HandleFunc("/api/v1/harmonic", s.adminOnly(s.handleHarmonic))

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.TrimPrefix(auth, "Bearer ") == s.AdminKey && auth != ""
}

func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if s.AdminKey == "" {
			http.Error(w, "control endpoints disabled (no PHISIM_ADMIN_KEY set)", http.StatusForbidden)
			return
		}
		if !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.Sim.Snapshot()
	writeJSON(w, map[string]any{
		"tick":            snap.Tick,
		"rate_hz":         s.Eng.RateHz,
		"running":         s.Eng.Running,
		"regime":          snap.Regime.String(),
		"coupling_mode":   snap.Mode.String(),
		"ignition_phase":  snap.IgnitionPhase.String(),
		"ignition_active": snap.IgnitionActive,
		"order_parameter": snap.R,
		"spacing_index":   snap.Spacing,
		"output":          snap.Output,
	})
}

func (s *Server) handleOscillators(w http.ResponseWriter, r *http.Request) {
	snap := s.Sim.Snapshot()

	type oscEntry struct {
		Name  string  `json:"name"`
		X     float64 `json:"x"`
		Y     float64 `json:"y"`
		Amp   float64 `json:"amp"`
		Exp   *float64 `json:"exponent,omitempty"`
		Class string  `json:"class,omitempty"`
		Stab  *float64 `json:"stability,omitempty"`
	}

	layerNames := [engine.Layers]string{"l6", "l5a", "l5b", "l4", "l23"}

	out := make([]oscEntry, 0, 1+engine.Columns*engine.Layers+len(snap.FieldOsc))
	thetaExp := snap.ThetaExp
	out = append(out, oscEntry{
		Name: "theta",
		X:    snap.Theta.X, Y: snap.Theta.Y, Amp: snap.Theta.Amp,
		Exp: &thetaExp,
	})
	for c := 0; c < engine.Columns; c++ {
		for l := 0; l < engine.Layers; l++ {
			st := snap.Cortical[c][l]
			exp := snap.LayerExp[l]
			stab := snap.LayerPos[l].Stability
			out = append(out, oscEntry{
				Name:  engine.ColumnName(c) + "_" + layerNames[l],
				X:     st.X, Y: st.Y, Amp: st.Amp,
				Exp:   &exp,
				Class: snap.LayerPos[l].Class.String(),
				Stab:  &stab,
			})
		}
	}
	for i, st := range snap.FieldOsc {
		out = append(out, oscEntry{
			Name: fmt.Sprintf("field_f%d", i+1),
			X:    st.X, Y: st.Y, Amp: st.Amp,
		})
	}

	writeJSON(w, map[string]any{"tick": snap.Tick, "oscillators": out})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	snap := s.Sim.Snapshot()
	writeJSON(w, map[string]any{
		"tick":             snap.Tick,
		"order_parameter":  snap.R,
		"boundary_amp":     snap.Boundary.Amp,
		"boundary_phase":   snap.Boundary.Phase,
		"boundary_power":   snap.Boundary.Power,
		"bicoherence":      snap.Bicoherence,
		"spacing_index":    snap.Spacing,
		"spacing_baseline": snap.SpacingBase,
		"susceptibility":   snap.Chi,
		"coupling_mode":    snap.Mode.String(),
		"blend_modulatory": snap.Blend.Modulatory,
		"blend_harmonic":   snap.Blend.Harmonic,
	})
}

func (s *Server) handleIgnition(w http.ResponseWriter, r *http.Request) {
	snap := s.Sim.Snapshot()
	writeJSON(w, map[string]any{
		"tick":         snap.Tick,
		"phase":        snap.IgnitionPhase.String(),
		"gain":         snap.Gain,
		"plv":          snap.PLV,
		"active":       snap.IgnitionActive,
		"low_activity": snap.LowActivity,
		"coherence":    snap.Coherence,
		"agreement":    snap.Agreement,
	})
}

func (s *Server) handleLandscape(w http.ResponseWriter, r *http.Request) {
	snap := s.Sim.Snapshot()

	type layerEntry struct {
		Exponent  float64 `json:"exponent"`
		Force     float64 `json:"force"`
		Class     string  `json:"class"`
		Stability float64 `json:"stability"`
	}
	layers := make([]layerEntry, engine.Layers)
	for l := 0; l < engine.Layers; l++ {
		layers[l] = layerEntry{
			Exponent:  snap.LayerExp[l],
			Force:     snap.LayerForce[l],
			Class:     snap.LayerPos[l].Class.String(),
			Stability: snap.LayerPos[l].Stability,
		}
	}
	writeJSON(w, map[string]any{"tick": snap.Tick, "layers": layers})
}

func (s *Server) handleRegime(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Regime          string `json:"regime"`
		TransitionTicks int    `json:"transition_ticks"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request body", http.StatusBadRequest)
		return
	}

	sel, ok := regime.Parse(req.Regime)
	if !ok {
		// Malformed selectors fall back to Normal; the engine never stops
		// over a bad selector, but the caller is told.
		s.Sim.SelectRegime(regime.Normal, req.TransitionTicks)
		writeJSON(w, map[string]any{"accepted": false, "fallback": "normal"})
		return
	}

	s.Sim.SelectRegime(sel, req.TransitionTicks)
	writeJSON(w, map[string]any{"accepted": true, "regime": sel.String()})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.Sim.Reset()
	writeJSON(w, map[string]any{"reset": "scheduled"})
}

func (s *Server) handleHarmonic(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Force bool `json:"force"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request body", http.StatusBadRequest)
		return
	}
	s.Sim.SetHarmonicFlag(req.Force)
	writeJSON(w, map[string]any{"harmonic_forced": req.Force})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
