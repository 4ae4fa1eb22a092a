package domain

// Represents a single stop in a driver route.
// LegKm is the great-circle distance from the previous point of the route.
type RouteStop struct {
	Stop       Stop
	DonationID int64
	Name       string
	LegKm      float64
}

// Represents the planned route for one driver.
// A RoutePlan is the output of the planning service: an ordered list of stops
// followed by an optional final destination. It is recomputed on demand and
// never persisted.
//
// DistanceMeters and DurationSeconds come from the directions provider and
// stay zero when none is configured.
type RoutePlan struct {
	Origin          Coordinates
	Stops           []RouteStop
	Destination     *Coordinates
	TotalKm         float64
	DistanceMeters  int
	DurationSeconds int
	BBox            *BoundingBox
	Unresolved      []int64
	Recommendations []*Donation
}
