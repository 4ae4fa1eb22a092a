package ports

import (
	"context"
	"donation-route-service/internal/domain"
)

// Road route summary for an ordered list of waypoints.
type RouteSummary struct {
	DistanceMeters  int
	DurationSeconds int
	BBox            domain.BoundingBox
}

// Contract for computing a driving route through waypoints, in order.
type DirectionsProvider interface {
	Directions(ctx context.Context, waypoints []domain.Coordinates) (RouteSummary, error)
}

// Persistent cache of route summaries, keyed by profile and ordered waypoints.
type DirectionsCache interface {
	Get(ctx context.Context, routeKey string) (RouteSummary, bool, error)
	Put(ctx context.Context, routeKey string, summary RouteSummary) error
}
