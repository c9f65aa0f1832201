package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// CorrectionReport summarizes one completed correction.
type CorrectionReport struct {
	Station     StationID `json:"station"`
	Date        string    `json:"date"`
	Average     float64   `json:"average"`
	Special     Special   `json:"special"`
	NorthInput  string    `json:"north_input"`
	EastInput   string    `json:"east_input"`
	Outputs     Outputs   `json:"outputs"`
	Samples     int       `json:"samples"`
	ProcessedAt time.Time `json:"processed_at"`
}

// NewReport builds the report for a corrected pair written to out.
func NewReport(pair CorrectedPair, out Outputs) CorrectionReport {
	return CorrectionReport{
		Station:     pair.Record.Station,
		Date:        pair.Date,
		Average:     pair.Record.Average,
		Special:     pair.Record.Special,
		NorthInput:  pair.NorthPath,
		EastInput:   pair.EastPath,
		Outputs:     out,
		Samples:     pair.North.Len(),
		ProcessedAt: clock.Now().UTC(),
	}
}

// Summary renders the console line "NET.STA Average:<angle> Special:<code>".
func (r CorrectionReport) Summary() string {
	return fmt.Sprintf("%s Average:%s Special:%s", r.Station, FormatAngle(r.Average), r.Special)
}

// FormatAngle prints degrees the way the reference tables' tooling does:
// shortest round-trip digits, always with a decimal point ("10.0", "-3.25"),
// switching to exponent form below 1e-4 or from 1e16 ("1e-05").
func FormatAngle(deg float64) string {
	if a := math.Abs(deg); a != 0 && (a < 1e-4 || a >= 1e16) {
		return strconv.FormatFloat(deg, 'e', -1, 64)
	}
	s := strconv.FormatFloat(deg, 'f', -1, 64)
	if !strings.ContainsAny(s, ".NI") {
		s += ".0"
	}
	return s
}
