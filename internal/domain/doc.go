// Package domain models horizontal-component orientation corrections for
// broadband seismometer stations.
//
// # Data Source
//
// Waveforms arrive as a pair of SAC files recorded by one station over the
// same time window: the north-south component (channel BHN) and the east-west
// component (channel BHE). The station identity used for lookups is the SAC
// network code joined to the station code with a dot, e.g. "XX.ABC".
//
// # Correction Table Conventions
//
// Orientation estimates come from a reference CSV with one row per station and
// validity window:
//
//	Station,StartDate,EndDate,Average,Special
//	XX.ABC,20100101,20101231,10.0,nan
//
// Dates are zero-padded YYYYMMDD strings and both ends of the window are
// inclusive, so plain string comparison orders them correctly. The date of an
// observation is the UTC calendar day of the north trace's first sample.
//
// Average is the azimuth deviation of the installed sensor from true north in
// decimal degrees.
//
// # Special Instructions
//
// Some stations were miswired. Special names the fix applied to the raw
// components before rotation:
//
//	nan     no fix (matched case-insensitively; an empty cell means the same)
//	E_N     north and east are swapped
//	`-E_-N  swapped and both polarities inverted (the leading backtick is part
//	        of the code as it appears in the table)
//	N_-N    north polarity inverted
//	E_-E    east polarity inverted
//
// Any other code is rejected. See [ParseSpecial] and [Remap].
//
// # Rotation
//
// With θ the average deviation in radians, each sample pair is rotated in the
// horizontal plane:
//
//	north' = north·cos θ − east·sin θ
//	east'  = north·sin θ + east·cos θ
//
// The rotation preserves the horizontal amplitude of every sample. See [Rotate].
package domain
