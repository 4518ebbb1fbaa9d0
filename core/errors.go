package core

import "errors"

// Failure modes of the numerical components. Callers match with errors.Is,
// wrapped messages carry the series or country detail.
var (
	// ErrInvalidInput marks a malformed series or parameter: missing
	// values passed to the filter, a non-positive smoothing weight, a
	// capital share outside (0, 1).
	ErrInvalidInput = errors.New("invalid input")

	// ErrInsufficientData marks a series too short to decompose.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrNoUsableData means growth accounting received no country with
	// usable output growth. The caller falls back to the reference panel.
	ErrNoUsableData = errors.New("no usable data")
)
