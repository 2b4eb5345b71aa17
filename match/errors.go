package match

import "errors"

var (
	// ErrInvalidThreshold is returned when a fuzzy or semantic threshold is
	// outside the range its mode accepts.
	ErrInvalidThreshold = errors.New("invalid threshold")

	// ErrUnknownMode is returned for a mode name that is not exact, fuzzy or semantic.
	ErrUnknownMode = errors.New("unknown match mode")

	// ErrUnsupportedMode is returned when a string matcher is compiled for semantic mode.
	ErrUnsupportedMode = errors.New("mode does not compare strings")
)
