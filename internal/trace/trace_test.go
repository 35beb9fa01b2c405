package trace

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/phin/internal/engine"
)

func TestQ414RoundTrip(t *testing.T) {
	assert.Equal(t, int32(8192), ToQ414(0.5))
	assert.Equal(t, int32(-8192), ToQ414(-0.5))

	for _, v := range []float64{0, 0.001, -0.73, 1.5, -7.9} {
		require.InDelta(t, v, FromQ414(ToQ414(v)), 1.0/Q414Scale, "v=%v", v)
	}
}

func TestQ414Saturates(t *testing.T) {
	assert.Equal(t, int32(1<<17-1), ToQ414(100))
	assert.Equal(t, int32(-(1<<17)), ToQ414(-100))
}

func TestRecorderRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.db")

	rec, err := Open(path)
	require.NoError(t, err)

	id, err := rec.BeginRun(42, "normal", engine.RealTimeHz, 2)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	for tick := uint64(1); tick <= 10; tick++ {
		rec.Append(engine.Snapshot{Tick: tick, Output: float64(tick) / 10})
	}
	require.NoError(t, rec.Close())

	conn, err := OpenReader(path)
	require.NoError(t, err)
	defer conn.Close()

	latest, err := LatestRun(conn)
	require.NoError(t, err)
	assert.Equal(t, id, latest)

	// Decimation factor 2: only even ticks recorded.
	samples, err := LoadOutput(conn, id)
	require.NoError(t, err)
	require.Len(t, samples, 5)
	for i, s := range samples {
		require.Equal(t, int64(2*(i+1)), s.Tick)
		require.InDelta(t, float64(2*(i+1))/10, s.Output, 1e-12)
	}
}

func TestRecorderIgnoresAppendsBeforeBeginRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.db")

	rec, err := Open(path)
	require.NoError(t, err)
	rec.Append(engine.Snapshot{Tick: 1, Output: 0.5})
	require.NoError(t, rec.Close())

	conn, err := OpenReader(path)
	require.NoError(t, err)
	defer conn.Close()

	_, err = LatestRun(conn)
	assert.Error(t, err, "no runs were started")
}
