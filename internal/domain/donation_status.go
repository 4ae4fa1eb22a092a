package domain

import "fmt"

// DonationStatus is the lifecycle position of a donation.
type DonationStatus string

const (
	StatusPending   DonationStatus = "pending"
	StatusInTransit DonationStatus = "in-transit"
	StatusPickedUp  DonationStatus = "picked-up"
	StatusDelivered DonationStatus = "delivered"
)

var validTransitions = map[DonationStatus][]DonationStatus{
	StatusPending:   {StatusInTransit},
	StatusInTransit: {StatusPickedUp},
	StatusPickedUp:  {StatusDelivered},
	StatusDelivered: {},
}

// ActiveStatuses are the statuses shown on the driver dashboard.
var ActiveStatuses = []DonationStatus{StatusInTransit, StatusPickedUp}

func (s DonationStatus) IsValid() bool {
	_, ok := validTransitions[s]
	return ok
}

// CanTransitionTo reports whether target directly follows s.
func (s DonationStatus) CanTransitionTo(target DonationStatus) bool {
	for _, t := range validTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

func (s DonationStatus) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

func (s DonationStatus) String() string { return string(s) }

func ParseDonationStatus(s string) (DonationStatus, error) {
	status := DonationStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("%w: unknown donation status %q", ErrInvalidArgument, s)
	}
	return status, nil
}
