package domain

import (
	"fmt"
	"math"
)

// Rotate turns the horizontal motion vector of every sample by angle degrees
// and returns new north and east traces with the inputs' metadata.
func Rotate(north, east Trace, angle float64) (Trace, Trace, error) {
	if !compatible(north, east) {
		return Trace{}, Trace{}, fmt.Errorf("%w: north has %d samples at %gs, east has %d samples at %gs",
			ErrIncompatibleTraces, north.Len(), north.Delta, east.Len(), east.Delta)
	}

	sin, cos := math.Sincos(angle * math.Pi / 180)

	n := north
	e := east
	n.Samples = make([]float64, north.Len())
	e.Samples = make([]float64, east.Len())
	for i := range north.Samples {
		x, y := north.Samples[i], east.Samples[i]
		n.Samples[i] = x*cos - y*sin
		e.Samples[i] = x*sin + y*cos
	}
	return n, e, nil
}
