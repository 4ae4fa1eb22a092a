package services

import (
	"fmt"
	"slices"

	"donation-route-service/internal/domain"
)

// Sequence orders stops with a greedy nearest-neighbor walk starting at current.
//
// Each step picks the closest unvisited stop by great-circle distance. Ties go
// to the stop that appears first in the input, so the result is deterministic.
// It does not attempt global route optimization; cost is O(n²).
func Sequence(current domain.Coordinates, stops []domain.Stop) ([]domain.Stop, error) {
	if err := current.Validate(); err != nil {
		return nil, fmt.Errorf("sequence: current position: %w", err)
	}
	if err := validateStops(stops); err != nil {
		return nil, fmt.Errorf("sequence: %w", err)
	}

	remaining := slices.Clone(stops)
	route := make([]domain.Stop, 0, len(stops))
	position := current

	for len(remaining) > 0 {
		best := 0
		bestKm := haversineKm(position, *remaining[0].Coordinate)
		for i := 1; i < len(remaining); i++ {
			if d := haversineKm(position, *remaining[i].Coordinate); d < bestKm {
				best, bestKm = i, d
			}
		}

		next := remaining[best]
		route = append(route, next)
		position = *next.Coordinate
		remaining = slices.Delete(remaining, best, best+1)
	}

	return route, nil
}

func validateStops(stops []domain.Stop) error {
	for i, s := range stops {
		if s.Coordinate == nil {
			return fmt.Errorf("%w: stop %d (%q) has no coordinate", domain.ErrInvalidArgument, i, s.ID)
		}
		if err := s.Coordinate.Validate(); err != nil {
			return fmt.Errorf("stop %d (%q): %w", i, s.ID, err)
		}
	}
	return nil
}
