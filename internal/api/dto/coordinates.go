package dto

import (
	"fmt"

	"donation-route-service/internal/domain"

	"github.com/mmcloughlin/geohash"
)

// Geohash precision of about 5 m, enough to cluster stops on a map.
const geohashChars = 9

// CoordinatesRequest uses pointers so a missing field is distinguishable from 0.
type CoordinatesRequest struct {
	Lon *float64 `json:"lon"`
	Lat *float64 `json:"lat"`
}

func (c *CoordinatesRequest) ToDomain() (domain.Coordinates, error) {
	if c == nil || c.Lon == nil || c.Lat == nil {
		return domain.Coordinates{}, fmt.Errorf("%w: lon and lat are required", domain.ErrInvalidArgument)
	}
	out := domain.Coordinates{Lon: *c.Lon, Lat: *c.Lat}
	if err := out.Validate(); err != nil {
		return domain.Coordinates{}, err
	}
	return out, nil
}

type PointResponse struct {
	Lon     float64 `json:"lon"`
	Lat     float64 `json:"lat"`
	Geohash string  `json:"geohash"`
}

func NewPoint(c *domain.Coordinates) *PointResponse {
	if c == nil {
		return nil
	}
	return &PointResponse{
		Lon:     c.Lon,
		Lat:     c.Lat,
		Geohash: geohash.EncodeWithPrecision(c.Lat, c.Lon, geohashChars),
	}
}

// BBox is [minLon, minLat, maxLon, maxLat], as in GeoJSON.
func NewBBox(b *domain.BoundingBox) []float64 {
	if b == nil {
		return nil
	}
	return []float64{b.MinLon, b.MinLat, b.MaxLon, b.MaxLat}
}
