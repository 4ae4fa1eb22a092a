package domain

// StopKind distinguishes pickup points from delivery points.
type StopKind string

const (
	StopPickup   StopKind = "pickup"
	StopDelivery StopKind = "delivery"
)

func (k StopKind) IsValid() bool {
	return k == StopPickup || k == StopDelivery
}

// Represents a point of interest in a driver's route.
// ID is opaque and stable across recomputation. Kind and Coordinate never change
// once built; Completed follows external status updates only.
// A nil Coordinate means the address could not be geocoded.
type Stop struct {
	ID         string
	Coordinate *Coordinates
	Kind       StopKind
	Completed  bool
}
