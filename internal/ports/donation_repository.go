package ports

import (
	"context"
	"donation-route-service/internal/domain"
)

// Zero-valued fields do not filter.
type DonationFilter struct {
	Statuses   []domain.DonationStatus
	FoodBankID string
	IDs        []int64
}

// Port: a boundary for reading and updating donations in the data service.
type DonationRepository interface {
	List(ctx context.Context, filter DonationFilter) ([]*domain.Donation, error)
	// Get returns domain.ErrNotFound when no donation has the given id.
	Get(ctx context.Context, id int64) (*domain.Donation, error)
	// UpdateStatus moves a donation from one status to another atomically.
	// It returns domain.ErrNotFound or domain.ErrConflict when the current
	// status is not from.
	UpdateStatus(ctx context.Context, id int64, from, to domain.DonationStatus) error
}
