package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatAngle(t *testing.T) {
	tests := map[float64]string{
		10:      "10.0",
		-3.25:   "-3.25",
		0:       "0.0",
		12.3456: "12.3456",
		-180:    "-180.0",
		0.0001:  "0.0001",
		0.00001: "1e-05",
		-1.5e-7: "-1.5e-07",
		1e16:    "1e+16",
		1.25e17: "1.25e+17",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatAngle(in))
	}
}

func TestCorrectionReport_Summary(t *testing.T) {
	r := CorrectionReport{Station: "XX.ABC", Average: 10, Special: SpecialNone}
	assert.Equal(t, "XX.ABC Average:10.0 Special:nan", r.Summary())

	r.Special = SpecialSwapNegate
	r.Average = -4.5
	assert.Equal(t, "XX.ABC Average:-4.5 Special:`-E_-N", r.Summary())
}

func TestNewReport(t *testing.T) {
	fixed := time.Date(2024, time.March, 2, 8, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(fixed))
	t.Cleanup(func() { SetClock(nil) })

	pair := CorrectedPair{
		North:     traceOf("BHN", 1, 2, 3),
		East:      traceOf("BHE", 4, 5, 6),
		NorthPath: "in/XX.ABC.BHN.sac",
		EastPath:  "in/XX.ABC.BHE.sac",
		Record:    CorrectionRecord{Station: "XX.ABC", Average: 2.5, Special: SpecialNegateEast},
		Date:      "20100615",
	}
	out := Outputs{North: "out/correct.XX.ABC.BHN.sac", East: "out/correct.XX.ABC.BHE.sac"}

	r := NewReport(pair, out)
	assert.Equal(t, StationID("XX.ABC"), r.Station)
	assert.Equal(t, "20100615", r.Date)
	assert.Equal(t, 3, r.Samples)
	assert.Equal(t, fixed, r.ProcessedAt)
	assert.Equal(t, out, r.Outputs)

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"special":"E_-E"`)
	assert.Contains(t, string(data), `"processed_at":"2024-03-02T08:00:00Z"`)
}

func TestCorrectionRecord_Window(t *testing.T) {
	r := CorrectionRecord{StartDate: "20100101", EndDate: "20101231"}
	assert.True(t, r.Covers("20100101"))
	assert.True(t, r.Covers("20100615"))
	assert.True(t, r.Covers("20101231"))
	assert.False(t, r.Covers("20091231"))
	assert.False(t, r.Covers("20110101"))

	assert.True(t, r.Overlaps(CorrectionRecord{StartDate: "20101231", EndDate: "20111231"}))
	assert.False(t, r.Overlaps(CorrectionRecord{StartDate: "20110101", EndDate: "20111231"}))
}

func TestTrace_DateAndRate(t *testing.T) {
	tr := Trace{
		Network:   "XX",
		Station:   "ABC",
		StartTime: time.Date(2010, time.June, 15, 23, 59, 59, 0, time.UTC),
		Delta:     0.025,
	}
	assert.Equal(t, "20100615", tr.Date())
	assert.Equal(t, StationID("XX.ABC"), tr.StationID())
	assert.InDelta(t, 40.0, tr.SampleRate(), 1e-9)
	assert.Zero(t, Trace{}.SampleRate())
}
