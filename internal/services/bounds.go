package services

import (
	"fmt"
	"math"

	"donation-route-service/internal/domain"
)

// WithinBounds reports whether c lies inside box grown by bufferDeg on every side.
// Points on the edge are inside.
func WithinBounds(c domain.Coordinates, box domain.BoundingBox, bufferDeg float64) (bool, error) {
	if math.IsNaN(bufferDeg) || math.IsInf(bufferDeg, 0) || bufferDeg < 0 {
		return false, fmt.Errorf("within bounds: %w: buffer %v", domain.ErrInvalidArgument, bufferDeg)
	}
	if err := c.Validate(); err != nil {
		return false, fmt.Errorf("within bounds: %w", err)
	}
	if err := box.Validate(); err != nil {
		return false, fmt.Errorf("within bounds: %w", err)
	}

	b := box.Expand(bufferDeg)
	return c.Lon >= b.MinLon && c.Lon <= b.MaxLon && c.Lat >= b.MinLat && c.Lat <= b.MaxLat, nil
}
