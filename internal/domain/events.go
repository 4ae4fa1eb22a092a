package domain

import "time"

// PromptAction names the status command a proximity prompt offers to the driver.
type PromptAction string

const (
	ActionMarkPickedUp  PromptAction = "mark-picked-up"
	ActionMarkDelivered PromptAction = "mark-delivered"
)

// ProximityPrompt is emitted when a driver is close to an open stop.
// It is pure data: acting on it is up to the client.
type ProximityPrompt struct {
	DriverID   string
	DonationID int64
	StopID     string
	Kind       StopKind
	DistanceKm float64
	Action     PromptAction
	At         time.Time
}

// StatusChanged records a completed donation status transition.
type StatusChanged struct {
	DonationID int64
	From       DonationStatus
	To         DonationStatus
	DriverID   string
	At         time.Time
}
