package services

import (
	"context"
	"errors"
	"slices"
	"sync"

	"donation-route-service/internal/domain"
	"donation-route-service/internal/ports"
)

type fakeRepo struct {
	mu        sync.Mutex
	donations []*domain.Donation
	updateErr error
}

func (r *fakeRepo) clone(d *domain.Donation) *domain.Donation {
	cp := *d
	return &cp
}

func (r *fakeRepo) List(_ context.Context, f ports.DonationFilter) ([]*domain.Donation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*domain.Donation
	for _, d := range r.donations {
		if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, d.Status) {
			continue
		}
		if f.FoodBankID != "" && d.FoodBankID != f.FoodBankID {
			continue
		}
		out = append(out, r.clone(d))
	}
	return out, nil
}

func (r *fakeRepo) Get(_ context.Context, id int64) (*domain.Donation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, d := range r.donations {
		if d.ID == id {
			return r.clone(d), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeRepo) UpdateStatus(_ context.Context, id int64, from, to domain.DonationStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.updateErr != nil {
		return r.updateErr
	}
	for _, d := range r.donations {
		if d.ID != id {
			continue
		}
		if d.Status != from {
			return domain.ErrConflict
		}
		d.Status = to
		return nil
	}
	return domain.ErrNotFound
}

func (r *fakeRepo) status(id int64) domain.DonationStatus {
	d, _ := r.Get(context.Background(), id)
	return d.Status
}

type fakeGeocoder struct {
	mu     sync.Mutex
	known  map[string]domain.Coordinates
	calls  int
	failOn map[string]bool
}

func (g *fakeGeocoder) Geocode(_ context.Context, address string) (domain.Coordinates, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.calls++
	if g.failOn[address] {
		return domain.Coordinates{}, errors.New("upstream unavailable")
	}
	c, ok := g.known[address]
	if !ok {
		return domain.Coordinates{}, domain.ErrNotFound
	}
	return c, nil
}

type fakeBatchGeocoder struct {
	fakeGeocoder
	batches [][]string
}

func (g *fakeBatchGeocoder) GeocodeMany(_ context.Context, addresses []string) (map[string]domain.Coordinates, error) {
	g.batches = append(g.batches, addresses)
	out := make(map[string]domain.Coordinates)
	for _, a := range addresses {
		if c, ok := g.known[a]; ok {
			out[a] = c
		}
	}
	return out, nil
}

type fakeDirections struct {
	summary   ports.RouteSummary
	err       error
	waypoints []domain.Coordinates
}

func (f *fakeDirections) Directions(_ context.Context, waypoints []domain.Coordinates) (ports.RouteSummary, error) {
	f.waypoints = waypoints
	return f.summary, f.err
}

type recordingPublisher struct {
	mu       sync.Mutex
	prompts  []domain.ProximityPrompt
	statuses []domain.StatusChanged
	err      error
}

func (p *recordingPublisher) PublishProximity(_ context.Context, prompt domain.ProximityPrompt) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prompts = append(p.prompts, prompt)
	return p.err
}

func (p *recordingPublisher) PublishStatusChanged(_ context.Context, evt domain.StatusChanged) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.statuses = append(p.statuses, evt)
	return p.err
}
