package services

import (
	"fmt"
	"math"

	"donation-route-service/internal/domain"
)

// FindNearby returns, in input order, the stops strictly closer than thresholdKm to position.
func FindNearby(position domain.Coordinates, stops []domain.Stop, thresholdKm float64) ([]domain.Stop, error) {
	if math.IsNaN(thresholdKm) || math.IsInf(thresholdKm, 0) || thresholdKm < 0 {
		return nil, fmt.Errorf("find nearby: %w: threshold %v", domain.ErrInvalidArgument, thresholdKm)
	}
	if err := position.Validate(); err != nil {
		return nil, fmt.Errorf("find nearby: position: %w", err)
	}
	if err := validateStops(stops); err != nil {
		return nil, fmt.Errorf("find nearby: %w", err)
	}

	nearby := []domain.Stop{}
	for _, s := range stops {
		if haversineKm(position, *s.Coordinate) < thresholdKm {
			nearby = append(nearby, s)
		}
	}
	return nearby, nil
}
