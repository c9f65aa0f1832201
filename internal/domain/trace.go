package domain

import (
	"math"
	"time"
)

// StationID identifies a station as "NETWORK.STATION".
type StationID string

// NewStationID joins a network and station code.
func NewStationID(network, station string) StationID {
	return StationID(network + "." + station)
}

func (s StationID) String() string { return string(s) }

// Trace is one component of a seismic recording.
type Trace struct {
	Network   string    `json:"network"`
	Station   string    `json:"station"`
	Channel   string    `json:"channel"`
	StartTime time.Time `json:"start_time"`
	Delta     float64   `json:"delta"` // sample interval in seconds
	Samples   []float64 `json:"-"`

	// Header and Footer hold the container bytes the trace was decoded from.
	// They are shared between copies and must be treated as read-only.
	Header []byte `json:"-"`
	Footer []byte `json:"-"`
}

// StationID returns the lookup key for the trace's station.
func (t Trace) StationID() StationID {
	return NewStationID(t.Network, t.Station)
}

// SampleRate returns samples per second, or 0 when Delta is unset.
func (t Trace) SampleRate() float64 {
	if t.Delta <= 0 {
		return 0
	}
	return 1 / t.Delta
}

// Date returns the UTC day of the first sample as YYYYMMDD.
func (t Trace) Date() string {
	return t.StartTime.UTC().Format("20060102")
}

// Len returns the number of samples.
func (t Trace) Len() int { return len(t.Samples) }

// Clone returns a copy whose sample slice is independent of t.
func (t Trace) Clone() Trace {
	out := t
	out.Samples = append([]float64(nil), t.Samples...)
	return out
}

// withSamples returns a copy of t carrying a fresh copy of samples, negated
// when negate is set. Neither t nor samples is modified.
func (t Trace) withSamples(samples []float64, negate bool) Trace {
	out := t
	out.Samples = make([]float64, len(samples))
	for i, v := range samples {
		if negate {
			v = -v
		}
		out.Samples[i] = v
	}
	return out
}

// compatible reports whether two traces share a sample count and interval.
func compatible(a, b Trace) bool {
	if len(a.Samples) != len(b.Samples) {
		return false
	}
	if a.Delta == b.Delta {
		return true
	}
	// SAC stores delta as float32; allow for rounding between files.
	return math.Abs(a.Delta-b.Delta) <= 1e-6*math.Max(math.Abs(a.Delta), math.Abs(b.Delta))
}

// ComponentPair is the north and east recording of one observation.
type ComponentPair struct {
	North     Trace
	East      Trace
	NorthPath string
	EastPath  string
}

// CorrectedPair is a ComponentPair after remapping and rotation.
type CorrectedPair struct {
	North     Trace
	East      Trace
	NorthPath string // source path of the north input
	EastPath  string // source path of the east input
	Record    CorrectionRecord
	Date      string
}

// Outputs names the files a corrected pair was written to.
type Outputs struct {
	North string `json:"north"`
	East  string `json:"east"`
}
