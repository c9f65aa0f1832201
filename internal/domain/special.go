package domain

import (
	"fmt"
	"strings"
)

// Special is the channel fix applied to a station's raw components before
// rotation.
type Special int

const (
	SpecialNone        Special = iota // "nan"
	SpecialSwap                       // "E_N"
	SpecialSwapNegate                 // "`-E_-N"
	SpecialNegateNorth                // "N_-N"
	SpecialNegateEast                 // "E_-E"
)

var specialCodes = map[Special]string{
	SpecialNone:        "nan",
	SpecialSwap:        "E_N",
	SpecialSwapNegate:  "`-E_-N",
	SpecialNegateNorth: "N_-N",
	SpecialNegateEast:  "E_-E",
}

// ParseSpecial maps a table code to a Special. Codes are case-sensitive
// except "nan"; blank cells mean SpecialNone.
func ParseSpecial(code string) (Special, error) {
	code = strings.TrimSpace(code)
	if code == "" || strings.EqualFold(code, "nan") {
		return SpecialNone, nil
	}
	for s, c := range specialCodes {
		if c == code {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownInstruction, code)
}

func (s Special) String() string {
	if c, ok := specialCodes[s]; ok {
		return c
	}
	return fmt.Sprintf("Special(%d)", int(s))
}

// MarshalText encodes the table code.
func (s Special) MarshalText() ([]byte, error) {
	c, ok := specialCodes[s]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownInstruction, int(s))
	}
	return []byte(c), nil
}

// UnmarshalText decodes a table code.
func (s *Special) UnmarshalText(b []byte) error {
	v, err := ParseSpecial(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Swaps reports whether the instruction exchanges the north and east traces.
func (s Special) Swaps() bool {
	return s == SpecialSwap || s == SpecialSwapNegate
}

// Remap applies the instruction to the raw components and returns the pair to
// rotate. A swap moves whole traces, header metadata included, so the north
// slot of E_N carries the east recording. The inputs are never modified.
func Remap(north, east Trace, s Special) (Trace, Trace, error) {
	switch s {
	case SpecialNone:
		return north.Clone(), east.Clone(), nil
	case SpecialSwap:
		return east.Clone(), north.Clone(), nil
	case SpecialSwapNegate:
		return east.withSamples(east.Samples, true), north.withSamples(north.Samples, true), nil
	case SpecialNegateNorth:
		return north.withSamples(north.Samples, true), east.Clone(), nil
	case SpecialNegateEast:
		return north.Clone(), east.withSamples(east.Samples, true), nil
	default:
		return Trace{}, Trace{}, fmt.Errorf("%w: %s", ErrUnknownInstruction, s)
	}
}
