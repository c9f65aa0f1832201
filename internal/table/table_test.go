package table

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/orient-correct/internal/domain"
)

const sampleTable = `Station,StartDate,EndDate,Average,Special,Std
XX.ABC,20100101,20101231,10.0,nan,1.2
XX.ABC,20110101,20111231,-3.5,E_N,0.8
XX.ABC,20070101,20091231,2,,0.4
YY.DEF,20100101,20231231,45.25,` + "`-E_-N" + `,2.0
YY.GHI,20150601,20150630,1.5,NaN,0.1
`

func parseSample(t *testing.T) *Table {
	t.Helper()
	tbl, err := Parse(strings.NewReader(sampleTable))
	require.NoError(t, err)
	return tbl
}

func TestParse_Sample(t *testing.T) {
	tbl := parseSample(t)
	assert.Equal(t, 5, tbl.Len())
	assert.Equal(t, 3, tbl.Stations())
}

func TestLookup_ContainingWindow(t *testing.T) {
	tbl := parseSample(t)

	rec, err := tbl.Lookup("XX.ABC", "20100615")
	require.NoError(t, err)
	assert.Equal(t, domain.CorrectionRecord{
		Station:   "XX.ABC",
		StartDate: "20100101",
		EndDate:   "20101231",
		Average:   10,
		Special:   domain.SpecialNone,
	}, rec)

	rec, err = tbl.Lookup("XX.ABC", "20110301")
	require.NoError(t, err)
	assert.InDelta(t, -3.5, rec.Average, 1e-12)
	assert.Equal(t, domain.SpecialSwap, rec.Special)

	rec, err = tbl.Lookup("XX.ABC", "20080229")
	require.NoError(t, err)
	assert.Equal(t, domain.SpecialNone, rec.Special, "blank Special means no fix")

	rec, err = tbl.Lookup("YY.DEF", "20200101")
	require.NoError(t, err)
	assert.Equal(t, domain.SpecialSwapNegate, rec.Special)
}

func TestParse_DecimalForms(t *testing.T) {
	tests := map[string]float64{
		"1e-3":   0.001,
		"5.":     5,
		".5":     0.5,
		"-3.5":   -3.5,
		"+2":     2,
		"1.5E+1": 15,
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			csv := "Station,StartDate,EndDate,Average,Special\nXX.ABC,20100101,20101231," + in + ",nan\n"
			tbl, err := Parse(strings.NewReader(csv))
			require.NoError(t, err)
			rec, err := tbl.Lookup("XX.ABC", "20100615")
			require.NoError(t, err)
			assert.InDelta(t, want, rec.Average, 1e-12)
		})
	}
}

func TestNewValidator_RegistersRules(t *testing.T) {
	v := newValidator()
	assert.Error(t, v.Struct(row{Station: "XX.ABC", StartDate: "20100101", EndDate: "20101231", Average: "1", Special: "bogus"}))
	assert.Error(t, v.Struct(row{Station: "XX.ABC", StartDate: "20100101", EndDate: "20101231", Average: "NaN", Special: "nan"}))
	assert.NoError(t, v.Struct(row{Station: "XX.ABC", StartDate: "20100101", EndDate: "20101231", Average: "1e-3", Special: "nan"}))
}

func TestLookup_InclusiveBounds(t *testing.T) {
	tbl := parseSample(t)

	for _, date := range []string{"20150601", "20150630"} {
		_, err := tbl.Lookup("YY.GHI", date)
		assert.NoError(t, err, date)
	}
	for _, date := range []string{"20150531", "20150701"} {
		_, err := tbl.Lookup("YY.GHI", date)
		assert.ErrorIs(t, err, ErrNoCorrection, date)
	}
}

func TestLookup_NotFound(t *testing.T) {
	tbl := parseSample(t)

	tests := map[string]struct {
		station domain.StationID
		date    string
	}{
		"before all windows": {"XX.ABC", "20061231"},
		"after all windows":  {"XX.ABC", "20120101"},
		"unknown station":    {"ZZ.ABC", "20100615"},
		"station case":       {"xx.abc", "20100615"},
		"station only":       {"ABC", "20100615"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := tbl.Lookup(tt.station, tt.date)
			require.ErrorIs(t, err, ErrNoCorrection)
			assert.Contains(t, err.Error(), string(tt.station))
		})
	}
}

func TestParse_MissingColumns(t *testing.T) {
	_, err := Parse(strings.NewReader("Station,StartDate,Average\nXX.ABC,20100101,1\n"))
	require.ErrorIs(t, err, ErrTableSchema)
	assert.Contains(t, err.Error(), "EndDate, Special")
}

func TestParse_ColumnOrderAndBOM(t *testing.T) {
	in := "\ufeffSpecial,Average,EndDate,StartDate,Station\nE_-E,7.5,20101231,20100101,XX.ABC\n"
	tbl, err := Parse(strings.NewReader(in))
	require.NoError(t, err)

	rec, err := tbl.Lookup("XX.ABC", "20100101")
	require.NoError(t, err)
	assert.Equal(t, domain.SpecialNegateEast, rec.Special)
	assert.InDelta(t, 7.5, rec.Average, 1e-12)
}

func TestParse_InvalidRows(t *testing.T) {
	const header = "Station,StartDate,EndDate,Average,Special\n"
	tests := map[string]struct {
		row  string
		want string
	}{
		"unknown special":  {"XX.ABC,20100101,20101231,1.0,N_N", "Special"},
		"short date":       {"XX.ABC,2010011,20101231,1.0,nan", "StartDate"},
		"non numeric date": {"XX.ABC,20100101,2010123x,1.0,nan", "EndDate"},
		"missing average":  {"XX.ABC,20100101,20101231,,nan", "Average"},
		"text average":     {"XX.ABC,20100101,20101231,ten,nan", "Average"},
		"nan average":      {"XX.ABC,20100101,20101231,NaN,nan", "Average"},
		"inf average":      {"XX.ABC,20100101,20101231,-Inf,nan", "Average"},
		"two points":       {"XX.ABC,20100101,20101231,1.2.3,nan", "Average"},
		"station no net":   {"ABC,20100101,20101231,1.0,nan", "Station"},
		"reversed window":  {"XX.ABC,20101231,20100101,1.0,nan", "after EndDate"},
		"missing station":  {",20100101,20101231,1.0,nan", "Station"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(header + tt.row + "\n"))
			require.ErrorIs(t, err, ErrTableSchema)
			assert.Contains(t, err.Error(), tt.want)
			assert.Contains(t, err.Error(), "line 2")
		})
	}
}

func TestParse_OverlappingRanges(t *testing.T) {
	in := "Station,StartDate,EndDate,Average,Special\n" +
		"XX.ABC,20100101,20101231,1.0,nan\n" +
		"XX.ABC,20101231,20111231,2.0,nan\n"
	_, err := Parse(strings.NewReader(in))
	require.ErrorIs(t, err, ErrOverlappingRanges)
	assert.Contains(t, err.Error(), "XX.ABC")
}

func TestParse_AdjacentRangesAllowed(t *testing.T) {
	in := "Station,StartDate,EndDate,Average,Special\n" +
		"XX.ABC,20110101,20111231,2.0,nan\n" +
		"XX.ABC,20100101,20101231,1.0,nan\n" +
		",,,,\n"
	tbl, err := Parse(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Len())
}

func TestParse_Empty(t *testing.T) {
	_, err := Parse(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrTableSchema)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "orient.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleTable), 0o644))

	tbl, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, tbl.Len())

	_, err = Load(filepath.Join(dir, "missing.csv"))
	assert.ErrorIs(t, err, ErrTableNotFound)
}

func TestFileSource(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dir := t.TempDir()
	path := filepath.Join(dir, "orient.csv")

	missing := NewFileSource(path, logger)
	_, err := missing.Lookup("XX.ABC", "20100615")
	require.ErrorIs(t, err, ErrTableNotFound)

	require.NoError(t, os.WriteFile(path, []byte(sampleTable), 0o644))
	src := NewFileSource(path, logger)
	rec, err := src.Lookup("XX.ABC", "20100615")
	require.NoError(t, err)
	assert.InDelta(t, 10.0, rec.Average, 1e-12)

	// The table is read once; later edits are not picked up.
	require.NoError(t, os.Remove(path))
	_, err = src.Lookup("YY.DEF", "20100615")
	assert.NoError(t, err)
}
