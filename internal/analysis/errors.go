package analysis

import "errors"

var (
	// ErrInsufficientData indicates a series too short to scan: the series
	// must be longer than the lookback window implied by the thresholds.
	ErrInsufficientData = errors.New("insufficient data for lookback window")

	// ErrNonUniformSampling indicates a series whose readings are not spaced
	// at a constant interval. The lookback size is computed from the inferred
	// sampling rate, so a non-uniform series would be scanned incorrectly.
	ErrNonUniformSampling = errors.New("non-uniform sampling interval")

	// ErrAnchorNotFound indicates a window extraction anchored on a reading
	// that is not a member of the series being windowed.
	ErrAnchorNotFound = errors.New("anchor reading not found in series")
)
