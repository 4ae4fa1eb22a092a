package dto

import (
	"time"

	"donation-route-service/internal/domain"
)

type DonationResponse struct {
	ID                 int64             `json:"id"`
	Name               string            `json:"name"`
	WeightKg           float64           `json:"weight_kg"`
	Status             string            `json:"status"`
	DonorID            string            `json:"donor_id"`
	FoodBankID         string            `json:"food_bank_id,omitempty"`
	PickupAddress      string            `json:"pickup_address"`
	DestinationAddress string            `json:"destination_address,omitempty"`
	ExpiresAt          *time.Time        `json:"expires_at"`
	FoodType           string            `json:"food_type,omitempty"`
	Priority           string            `json:"priority,omitempty"`
	RestaurantTitle    string            `json:"restaurant_title,omitempty"`
	Pickup             *PointResponse    `json:"pickup"`
	Destination        *PointResponse    `json:"destination"`
	Attributes         map[string]string `json:"attributes,omitempty"`
}

type ListDonationsResponse struct {
	Donations []DonationResponse `json:"donations"`
}

func NewDonation(d *domain.Donation) DonationResponse {
	return DonationResponse{
		ID:                 d.ID,
		Name:               d.Name,
		WeightKg:           d.WeightKg,
		Status:             d.Status.String(),
		DonorID:            d.DonorID,
		FoodBankID:         d.FoodBankID,
		PickupAddress:      d.PickupAddress,
		DestinationAddress: d.DestinationAddress,
		ExpiresAt:          d.ExpiresAt,
		FoodType:           d.FoodType,
		Priority:           d.Priority,
		RestaurantTitle:    d.RestaurantTitle,
		Pickup:             NewPoint(d.PickupCoords),
		Destination:        NewPoint(d.DestinationCoords),
		Attributes:         d.Attributes,
	}
}

func NewDonationList(ds []*domain.Donation) []DonationResponse {
	out := make([]DonationResponse, 0, len(ds))
	for _, d := range ds {
		out = append(out, NewDonation(d))
	}
	return out
}

type PickupRequest struct {
	DriverID string `json:"driver_id"`
}

type DeliverRequest struct {
	DriverID string              `json:"driver_id"`
	Position *CoordinatesRequest `json:"position"`
}
