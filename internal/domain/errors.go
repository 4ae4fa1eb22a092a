package domain

import "errors"

var (
	// ErrInvalidArgument marks malformed caller input (missing or non-finite coordinates, bad thresholds).
	ErrInvalidArgument = errors.New("invalid argument")

	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a compare-and-set status update finds a different status than expected.
	ErrConflict = errors.New("conflict")

	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrTooFar is returned when a delivery is confirmed away from its destination.
	ErrTooFar = errors.New("too far from destination")
)
