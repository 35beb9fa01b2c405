// Package trace provides the SQLite tick-trace recorder. The engine itself
// persists nothing — the trace is write-only telemetry for offline spectral
// and state-transition analysis, the role the original's CSV exports played.
// See design doc Section 8.3.
package trace

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/phin/internal/engine"
)

// Q414Scale converts between float64 and the original hardware's Q4.14
// fixed-point export format, kept so the existing analysis tooling reads
// both traces identically.
const Q414Scale = 16384

// ToQ414 converts a float in [-8, 8) to Q4.14, saturating at the edges.
func ToQ414(v float64) int32 {
	q := int64(v * Q414Scale)
	if q > 1<<17-1 {
		q = 1<<17 - 1
	}
	if q < -(1 << 17) {
		q = -(1 << 17)
	}
	return int32(q)
}

// FromQ414 converts a Q4.14 value back to float64.
func FromQ414(q int32) float64 {
	return float64(q) / Q414Scale
}

// Recorder appends decimated engine snapshots to a SQLite trace database.
type Recorder struct {
	conn     *sqlx.DB
	runID    string
	decimate uint64
	buffered int
	tx       *sqlx.Tx
}

// Open opens or creates a trace database at the given path.
func Open(path string) (*Recorder, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open trace db: %w", err)
	}

	r := &Recorder{conn: conn, decimate: 1}
	if err := r.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate trace db: %w", err)
	}
	return r, nil
}

func (r *Recorder) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at TEXT NOT NULL,
		seed INTEGER NOT NULL,
		regime TEXT NOT NULL,
		rate_hz INTEGER NOT NULL,
		decimate INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS samples (
		run_id TEXT NOT NULL,
		tick INTEGER NOT NULL,
		regime INTEGER NOT NULL,
		theta_x REAL NOT NULL,
		theta_y REAL NOT NULL,
		theta_amp REAL NOT NULL,
		theta_exp REAL NOT NULL,
		r REAL NOT NULL,
		bicoherence REAL NOT NULL,
		spacing REAL NOT NULL,
		chi REAL NOT NULL,
		mode INTEGER NOT NULL,
		ignition_phase INTEGER NOT NULL,
		gain REAL NOT NULL,
		plv REAL NOT NULL,
		low_activity INTEGER NOT NULL,
		coherence REAL NOT NULL,
		output REAL NOT NULL,
		output_q414 INTEGER NOT NULL,
		PRIMARY KEY (run_id, tick)
	);

	CREATE INDEX IF NOT EXISTS idx_samples_run ON samples(run_id, tick);
	`
	_, err := r.conn.Exec(schema)
	return err
}

// BeginRun registers a new run and returns its ID. decimate = 1 records
// every tick; n records every n-th.
func (r *Recorder) BeginRun(seed uint64, regimeName string, rateHz int, decimate uint64) (string, error) {
	if decimate < 1 {
		decimate = 1
	}
	id := uuid.NewString()

	_, err := r.conn.Exec(
		`INSERT INTO runs (id, started_at, seed, regime, rate_hz, decimate) VALUES (?, ?, ?, ?, ?, ?)`,
		id, time.Now().UTC().Format(time.RFC3339), int64(seed), regimeName, rateHz, int64(decimate),
	)
	if err != nil {
		return "", fmt.Errorf("begin run: %w", err)
	}

	r.runID = id
	r.decimate = decimate
	slog.Info("trace run started", "run_id", id, "decimate", decimate)
	return id, nil
}

// batchSize bounds how many samples ride in one transaction.
const batchSize = 1000

// Append records one snapshot, honoring the decimation factor. Inserts are
// batched in transactions; errors are logged and swallowed so a full disk
// degrades telemetry, never the engine.
func (r *Recorder) Append(s engine.Snapshot) {
	if r.runID == "" || s.Tick%r.decimate != 0 {
		return
	}

	if r.tx == nil {
		tx, err := r.conn.Beginx()
		if err != nil {
			slog.Error("trace begin batch failed", "error", err)
			return
		}
		r.tx = tx
		r.buffered = 0
	}

	lowAct := 0
	if s.LowActivity {
		lowAct = 1
	}
	_, err := r.tx.Exec(
		`INSERT INTO samples (run_id, tick, regime, theta_x, theta_y, theta_amp, theta_exp,
			r, bicoherence, spacing, chi, mode, ignition_phase, gain, plv,
			low_activity, coherence, output, output_q414)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.runID, int64(s.Tick), int(s.Regime),
		s.Theta.X, s.Theta.Y, s.Theta.Amp, s.ThetaExp,
		s.R, s.Bicoherence, s.Spacing, s.Chi,
		int(s.Mode), int(s.IgnitionPhase), s.Gain, s.PLV,
		lowAct, s.Coherence, s.Output, ToQ414(s.Output),
	)
	if err != nil {
		slog.Error("trace append failed", "error", err, "tick", s.Tick)
		r.tx.Rollback()
		r.tx = nil
		return
	}

	r.buffered++
	if r.buffered >= batchSize {
		r.flush()
	}
}

func (r *Recorder) flush() {
	if r.tx == nil {
		return
	}
	if err := r.tx.Commit(); err != nil {
		slog.Error("trace commit failed", "error", err)
	}
	r.tx = nil
	r.buffered = 0
}

// Close flushes any open batch and closes the database.
func (r *Recorder) Close() error {
	r.flush()
	return r.conn.Close()
}

// OutputSample is one recorded mixer sample, as read back by analysis
// tooling.
type OutputSample struct {
	Tick   int64   `db:"tick"`
	Output float64 `db:"output"`
}

// LatestRun returns the most recently started run ID.
func LatestRun(conn *sqlx.DB) (string, error) {
	var id string
	err := conn.Get(&id, `SELECT id FROM runs ORDER BY started_at DESC LIMIT 1`)
	if err != nil {
		return "", fmt.Errorf("latest run: %w", err)
	}
	return id, nil
}

// LoadOutput reads the mixer output series for a run in tick order.
func LoadOutput(conn *sqlx.DB, runID string) ([]OutputSample, error) {
	var out []OutputSample
	err := conn.Select(&out, `SELECT tick, output FROM samples WHERE run_id = ? ORDER BY tick`, runID)
	if err != nil {
		return nil, fmt.Errorf("load output: %w", err)
	}
	return out, nil
}

// OpenReader opens a trace database for analysis reads.
func OpenReader(path string) (*sqlx.DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open trace db: %w", err)
	}
	return conn, nil
}
