package shapedetect

import "github.com/pkg/errors"

// Sentinel errors Detect can return, checked with errors.Is (spec.md §7).
var (
	// ErrEmptyInput is returned when the input point sequence has no points.
	ErrEmptyInput = errors.New("shapedetect: input point sequence is empty")

	// ErrNoKinds is returned when the registry passed to Detect has no
	// registered shape kinds to draw candidates from.
	ErrNoKinds = errors.New("shapedetect: registry has no shape kinds")

	// ErrProgressStall is returned when maxOuterStalls selection rounds in
	// a row end without committing a shape, so the driver cannot make
	// further progress. Hitting the candidate-generation ceiling
	// (failedInARowCeiling) does not return it; Detect then stops normally.
	ErrProgressStall = errors.New("shapedetect: detection stalled without meeting the termination criterion")
)
