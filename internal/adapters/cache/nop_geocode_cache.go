package cache

import (
	"context"

	"donation-route-service/internal/domain"
)

// NopGeocodeCache never hits and drops writes.
type NopGeocodeCache struct{}

func (NopGeocodeCache) GetMany(context.Context, []string) (map[string]domain.Coordinates, error) {
	return map[string]domain.Coordinates{}, nil
}

func (NopGeocodeCache) PutMany(context.Context, map[string]domain.Coordinates) error { return nil }
