package domain

import (
	"fmt"
	"time"
)

// Represents a food donation moving from a donor to a food bank.
// Pickup and destination coordinates are resolved from the addresses by
// geocoding and stay nil when an address cannot be resolved.
// Attributes is the only open-ended part of the record.
type Donation struct {
	ID                 int64
	Name               string
	WeightKg           float64
	Status             DonationStatus
	DonorID            string
	FoodBankID         string
	PickupAddress      string
	DestinationAddress string
	ExpiresAt          *time.Time
	FoodType           string
	Priority           string
	RestaurantTitle    string
	PickupCoords       *Coordinates
	DestinationCoords  *Coordinates
	Attributes         map[string]string
}

func PickupStopID(donationID int64) string   { return fmt.Sprintf("%d:pickup", donationID) }
func DeliveryStopID(donationID int64) string { return fmt.Sprintf("%d:delivery", donationID) }

// PickupStop returns the pickup stop, completed once the donation left the donor.
func (d *Donation) PickupStop() Stop {
	return Stop{
		ID:         PickupStopID(d.ID),
		Coordinate: d.PickupCoords,
		Kind:       StopPickup,
		Completed:  d.Status == StatusPickedUp || d.Status == StatusDelivered,
	}
}

// DeliveryStop returns the delivery stop, completed once the donation is delivered.
func (d *Donation) DeliveryStop() Stop {
	return Stop{
		ID:         DeliveryStopID(d.ID),
		Coordinate: d.DestinationCoords,
		Kind:       StopDelivery,
		Completed:  d.Status == StatusDelivered,
	}
}

// OpenStop returns the stop the driver still has to visit for this donation.
// ok is false for donations that are not active.
func (d *Donation) OpenStop() (stop Stop, ok bool) {
	switch d.Status {
	case StatusInTransit:
		return d.PickupStop(), true
	case StatusPickedUp:
		return d.DeliveryStop(), true
	default:
		return Stop{}, false
	}
}

func (d *Donation) IsActive() bool {
	return d.Status == StatusInTransit || d.Status == StatusPickedUp
}

// Stops returns the pickup and delivery stops of the donation, in that order.
func (d *Donation) Stops() []Stop {
	return []Stop{d.PickupStop(), d.DeliveryStop()}
}
