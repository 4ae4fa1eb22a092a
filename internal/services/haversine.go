package services

import (
	"fmt"
	"math"

	"donation-route-service/internal/domain"
)

const EarthRadiusKm = 6371.0

// Distance returns the great-circle distance in kilometers between a and b.
// Coordinates naming the same place on the sphere are zero apart: longitudes
// -180 and 180 coincide, and every longitude at a pole is the same point.
func Distance(a, b domain.Coordinates) (float64, error) {
	if err := a.Validate(); err != nil {
		return 0, fmt.Errorf("distance: from: %w", err)
	}
	if err := b.Validate(); err != nil {
		return 0, fmt.Errorf("distance: to: %w", err)
	}
	return haversineKm(a, b), nil
}

// haversineKm assumes validated input.
func haversineKm(a, b domain.Coordinates) float64 {
	if samePoint(a, b) {
		return 0
	}

	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon

	return 2 * EarthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

func samePoint(a, b domain.Coordinates) bool {
	if a.Lat != b.Lat {
		return false
	}
	if math.Abs(a.Lat) == 90 {
		return true
	}
	return a.Lon == b.Lon || math.Abs(a.Lon-b.Lon) == 360
}
