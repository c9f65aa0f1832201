package domain

import "errors"

var (
	// ErrInputNotFound reports a waveform path that does not name a regular file.
	ErrInputNotFound = errors.New("input file not found")

	// ErrUnknownInstruction reports a Special code outside the known set.
	ErrUnknownInstruction = errors.New("unknown special instruction")

	// ErrIncompatibleTraces reports a north/east pair that cannot be rotated
	// together because the sample counts or sample intervals differ.
	ErrIncompatibleTraces = errors.New("incompatible north/east traces")
)
