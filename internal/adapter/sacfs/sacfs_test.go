package sacfs_test

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/orient-correct/internal/adapter/sacfs"
	"github.com/couchcryptid/orient-correct/internal/domain"
	"github.com/couchcryptid/orient-correct/internal/sac"
)

var start = time.Date(2010, time.June, 15, 8, 0, 0, 0, time.UTC)

func writeSAC(t *testing.T, dir, name, channel string, data ...float32) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f := sac.New(sac.Meta{Network: "XX", Station: "ABC", Channel: channel, StartTime: start, Delta: 0.01}, data)
	require.NoError(t, sac.WriteFile(path, f))
	return path
}

func TestReader_Extract(t *testing.T) {
	dir := t.TempDir()
	n := writeSAC(t, dir, "XX.ABC.BHN.sac", "BHN", 1, 2)
	e := writeSAC(t, dir, "XX.ABC.BHE.sac", "BHE", 3, 4)

	pair, err := sacfs.NewReader(slog.Default()).Extract(context.Background(), n, e)
	require.NoError(t, err)
	assert.Equal(t, domain.StationID("XX.ABC"), pair.North.StationID())
	assert.Equal(t, "20100615", pair.North.Date())
	assert.Equal(t, []float64{1, 2}, pair.North.Samples)
	assert.Equal(t, []float64{3, 4}, pair.East.Samples)
	assert.Equal(t, "BHE", pair.East.Channel)
	assert.Equal(t, n, pair.NorthPath)
	assert.Equal(t, e, pair.EastPath)
}

func TestReader_Extract_Missing(t *testing.T) {
	dir := t.TempDir()
	n := writeSAC(t, dir, "n.sac", "BHN", 1)
	r := sacfs.NewReader(slog.Default())

	_, err := r.Extract(context.Background(), n, filepath.Join(dir, "absent.sac"))
	require.ErrorIs(t, err, domain.ErrInputNotFound)
	assert.Contains(t, err.Error(), "absent.sac")

	_, err = r.Extract(context.Background(), dir, n)
	assert.ErrorIs(t, err, domain.ErrInputNotFound, "a directory is not an input file")
}

func TestReader_Extract_Malformed(t *testing.T) {
	dir := t.TempDir()
	n := writeSAC(t, dir, "n.sac", "BHN", 1)
	junk := filepath.Join(dir, "junk.sac")
	require.NoError(t, os.WriteFile(junk, []byte("garbage"), 0o644))

	_, err := sacfs.NewReader(slog.Default()).Extract(context.Background(), n, junk)
	require.ErrorIs(t, err, sac.ErrMalformed)
	assert.Contains(t, err.Error(), "east component")
}

func TestWriter_Load(t *testing.T) {
	in := t.TempDir()
	n := writeSAC(t, in, "XX.ABC.BHN.sac", "BHN", 1, 2)
	e := writeSAC(t, in, "XX.ABC.BHE.sac", "BHE", 3, 4)
	pair, err := sacfs.NewReader(slog.Default()).Extract(context.Background(), n, e)
	require.NoError(t, err)

	corrected := domain.CorrectedPair{
		North:     pair.North,
		East:      pair.East,
		NorthPath: n,
		EastPath:  e,
	}
	corrected.North.Samples = []float64{-1, -2}
	corrected.East.Samples = []float64{5, 6}

	outDir := filepath.Join(t.TempDir(), "nested", "correct_traces")
	w := sacfs.NewWriter(outDir, "correct.", slog.Default())
	out, err := w.Load(context.Background(), corrected)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outDir, "correct.XX.ABC.BHN.sac"), out.North)
	assert.Equal(t, filepath.Join(outDir, "correct.XX.ABC.BHE.sac"), out.East)

	north, err := sac.ReadFile(out.North)
	require.NoError(t, err)
	assert.Equal(t, []float32{-1, -2}, north.Data)
	assert.Equal(t, "BHN", north.Channel())

	east, err := sac.ReadFile(out.East)
	require.NoError(t, err)
	assert.Equal(t, []float32{5, 6}, east.Data)

	// Idempotent: an existing directory and existing outputs are fine.
	_, err = w.Load(context.Background(), corrected)
	require.NoError(t, err)
}

func TestWriter_Load_SameBasename(t *testing.T) {
	a := writeSAC(t, t.TempDir(), "trace.sac", "BHN", 1)
	b := writeSAC(t, t.TempDir(), "trace.sac", "BHE", 1)
	pair, err := sacfs.NewReader(slog.Default()).Extract(context.Background(), a, b)
	require.NoError(t, err)

	outDir := filepath.Join(t.TempDir(), "out")
	_, err = sacfs.NewWriter(outDir, "correct.", slog.Default()).Load(context.Background(), domain.CorrectedPair{
		North: pair.North, East: pair.East, NorthPath: a, EastPath: b,
	})
	require.Error(t, err)
	assert.NoDirExists(t, outDir)
}
