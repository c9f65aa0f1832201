package observability

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/orient-correct/internal/config"
)

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&config.Config{LogLevel: "info", LogFormat: "json"}, &buf)

	logger.Debug("hidden")
	logger.Info("table loaded", "rows", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "table loaded", entry["msg"])
	assert.InDelta(t, 3, entry["rows"], 0)
}

func TestNewLogger_TextDefaultsToWarn(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&config.Config{LogFormat: "text"}, &buf)

	logger.Info("quiet")
	assert.Empty(t, buf.String())

	logger.Warn("loud", "station", "XX.ABC")
	assert.Contains(t, buf.String(), "station=XX.ABC")
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	a := NewMetrics()
	b := NewMetrics()

	a.CorrectionsApplied.Inc()
	assert.InDelta(t, 1, testutil.ToFloat64(a.CorrectionsApplied), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(b.CorrectionsApplied), 0)
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := NewMetrics()
	m.RotationAngle.Set(10)
	m.SamplesRotated.Add(4)
	m.StageErrors.WithLabelValues("lookup").Inc()

	path := filepath.Join(t.TempDir(), "orient.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "orient_correct_rotation_angle_degrees 10")
	assert.Contains(t, string(data), "orient_correct_samples_rotated_total 4")
	assert.Contains(t, string(data), `orient_correct_stage_errors_total{stage="lookup"} 1`)
}
