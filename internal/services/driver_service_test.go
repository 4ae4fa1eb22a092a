package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"donation-route-service/internal/domain"
	"donation-route-service/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// Addresses along a north-south line at lon 0, 0.1 degree of latitude apart.
var testAddresses = map[string]domain.Coordinates{
	"donor a":     {Lon: 0, Lat: 0.1},
	"donor b":     {Lon: 0, Lat: 0.3},
	"donor c":     {Lon: 0, Lat: 0.2},
	"donor far":   {Lon: 5, Lat: 5},
	"donor side":  {Lon: 0.005, Lat: 0.15},
	"bank north":  {Lon: 0, Lat: 0.5},
	"bank south":  {Lon: 0, Lat: 0.4},
	"end address": {Lon: 0, Lat: 0.6},
}

func testDonations() []*domain.Donation {
	return []*domain.Donation{
		{ID: 1, Name: "Bread", Status: domain.StatusInTransit, PickupAddress: "donor a", DestinationAddress: "bank north"},
		{ID: 2, Name: "Soup", Status: domain.StatusInTransit, PickupAddress: "donor b", DestinationAddress: "bank north"},
		{ID: 3, Name: "Rice", Status: domain.StatusPickedUp, PickupAddress: "donor c", DestinationAddress: "bank south"},
		{ID: 4, Name: "Fruit", Status: domain.StatusInTransit, PickupAddress: "donor side", DestinationAddress: "bank north"},
		{ID: 5, Name: "Cans", Status: domain.StatusInTransit, PickupAddress: "donor far", DestinationAddress: "bank north"},
		{ID: 6, Name: "Milk", Status: domain.StatusPending, PickupAddress: "donor a", DestinationAddress: "bank north"},
		{ID: 7, Name: "Lost", Status: domain.StatusInTransit, PickupAddress: "nowhere", DestinationAddress: "bank north"},
	}
}

type serviceFixture struct {
	svc        *DriverService
	repo       *fakeRepo
	geocoder   *fakeGeocoder
	publisher  *recordingPublisher
	directions *fakeDirections
}

func newFixture(t *testing.T, withDirections bool) *serviceFixture {
	t.Helper()

	f := &serviceFixture{
		repo:      &fakeRepo{donations: testDonations()},
		geocoder:  &fakeGeocoder{known: testAddresses},
		publisher: &recordingPublisher{},
	}
	deps := DriverDeps{
		Repo:      f.repo,
		Geocoder:  f.geocoder,
		Proximity: f.publisher,
		Status:    f.publisher,
		Logger:    zaptest.NewLogger(t),
	}
	if withDirections {
		f.directions = &fakeDirections{summary: ports.RouteSummary{
			DistanceMeters:  70000,
			DurationSeconds: 3600,
			BBox:            domain.BoundingBox{MinLon: -0.01, MinLat: 0, MaxLon: 0.01, MaxLat: 0.6},
		}}
		deps.Directions = f.directions
	}

	svc, err := NewDriverService(deps, DefaultDriverConfig())
	require.NoError(t, err)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	f.svc = svc
	return f
}

func routeIDs(plan *domain.RoutePlan) []string {
	ids := make([]string, len(plan.Stops))
	for i, s := range plan.Stops {
		ids[i] = s.Stop.ID
	}
	return ids
}

func TestNewDriverServiceRequiresCollaborators(t *testing.T) {
	_, err := NewDriverService(DriverDeps{Geocoder: &fakeGeocoder{}}, DefaultDriverConfig())
	require.Error(t, err)
	_, err = NewDriverService(DriverDeps{Repo: &fakeRepo{}}, DefaultDriverConfig())
	require.Error(t, err)
}

func TestActiveDonationsResolvesCoordinates(t *testing.T) {
	f := newFixture(t, false)

	got, err := f.svc.ActiveDonations(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 6)

	for _, d := range got {
		assert.True(t, d.IsActive(), "donation %d", d.ID)
		if d.ID == 7 {
			assert.Nil(t, d.PickupCoords)
			assert.NotNil(t, d.DestinationCoords)
			continue
		}
		require.NotNil(t, d.PickupCoords, "donation %d", d.ID)
		assert.Equal(t, testAddresses[d.PickupAddress], *d.PickupCoords)
	}
}

func TestPlanRouteAutoOrdersPickupsThenDeliveries(t *testing.T) {
	f := newFixture(t, false)

	plan, err := f.svc.PlanRoute(context.Background(), PlanRouteRequest{
		Origin:      domain.Coordinates{Lon: 0, Lat: 0},
		DonationIDs: []int64{3, 2, 1, 7},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"1:pickup", "2:pickup", "3:delivery"}, routeIDs(plan))
	assert.Equal(t, []int64{7}, plan.Unresolved)
	require.NotNil(t, plan.Destination)
	assert.Equal(t, testAddresses["bank south"], *plan.Destination)

	var sum float64
	for _, s := range plan.Stops {
		sum += s.LegKm
	}
	assert.InDelta(t, sum, plan.TotalKm, 1e-9)
	// 0 -> 0.1 -> 0.3 -> 0.4 degrees of latitude.
	assert.InDelta(t, 0.4*EarthRadiusKm*3.141592653589793/180, plan.TotalKm, 1e-6)

	require.NotNil(t, plan.BBox)
	assert.Equal(t, domain.BoundingBox{MinLon: 0, MinLat: 0, MaxLon: 0, MaxLat: 0.4}, *plan.BBox)
	assert.Zero(t, plan.DistanceMeters)

	// Donation 4 lies 0.005 degrees off the corridor, 5 is far away, 6 is pending.
	require.Len(t, plan.Recommendations, 1)
	assert.Equal(t, int64(4), plan.Recommendations[0].ID)
}

func TestPlanRouteManualKeepsCallerOrder(t *testing.T) {
	f := newFixture(t, false)

	plan, err := f.svc.PlanRoute(context.Background(), PlanRouteRequest{
		Origin:      domain.Coordinates{Lon: 0, Lat: 0},
		DonationIDs: []int64{3, 2, 1},
		Manual:      true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"2:pickup", "1:pickup", "3:delivery"}, routeIDs(plan))
}

func TestPlanRouteDestinationAndDirections(t *testing.T) {
	f := newFixture(t, true)

	plan, err := f.svc.PlanRoute(context.Background(), PlanRouteRequest{
		Origin:      domain.Coordinates{Lon: 0, Lat: 0},
		DonationIDs: []int64{1},
		Destination: "end address",
	})
	require.NoError(t, err)

	require.NotNil(t, plan.Destination)
	assert.Equal(t, testAddresses["end address"], *plan.Destination)
	assert.Len(t, f.directions.waypoints, 3)
	assert.Equal(t, 70000, plan.DistanceMeters)
	assert.Equal(t, 3600, plan.DurationSeconds)
	assert.Equal(t, f.directions.summary.BBox, *plan.BBox)

	ids := make([]int64, 0, len(plan.Recommendations))
	for _, d := range plan.Recommendations {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []int64{2, 4}, ids)
}

func TestPlanRouteFallsBackWhenDirectionsFail(t *testing.T) {
	f := newFixture(t, true)
	f.directions.err = errors.New("quota exceeded")

	plan, err := f.svc.PlanRoute(context.Background(), PlanRouteRequest{
		Origin:      domain.Coordinates{Lon: 0, Lat: 0},
		DonationIDs: []int64{1},
		Destination: "unknown address",
	})
	require.NoError(t, err)
	assert.Zero(t, plan.DistanceMeters)
	assert.Equal(t, testAddresses["donor a"], *plan.Destination)
	assert.Equal(t, domain.BoundingBox{MinLon: 0, MinLat: 0, MaxLon: 0, MaxLat: 0.1}, *plan.BBox)
}

func TestPlanRouteRejectsInvalidRequests(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	cases := []PlanRouteRequest{
		{Origin: domain.Coordinates{}, DonationIDs: nil},
		{Origin: domain.Coordinates{Lat: 100}, DonationIDs: []int64{1}},
		{Origin: domain.Coordinates{}, DonationIDs: []int64{6}},
		{Origin: domain.Coordinates{}, DonationIDs: []int64{7}},
	}
	for i, req := range cases {
		_, err := f.svc.PlanRoute(ctx, req)
		assert.ErrorIs(t, err, domain.ErrInvalidArgument, "case %d", i)
	}
}

func TestCheckProximityPromptsOpenStops(t *testing.T) {
	f := newFixture(t, false)

	// 0.1 km north of donor a.
	prompts, err := f.svc.CheckProximity(context.Background(), "driver-1", domain.Coordinates{Lon: 0, Lat: 0.1009})
	require.NoError(t, err)

	require.Len(t, prompts, 1)
	p := prompts[0]
	assert.Equal(t, "1:pickup", p.StopID)
	assert.Equal(t, int64(1), p.DonationID)
	assert.Equal(t, domain.ActionMarkPickedUp, p.Action)
	assert.Equal(t, "driver-1", p.DriverID)
	assert.Less(t, p.DistanceKm, 0.2)
	assert.Equal(t, prompts, f.publisher.prompts)

	prompts, err = f.svc.CheckProximity(context.Background(), "driver-1", domain.Coordinates{Lon: 0, Lat: 0.4})
	require.NoError(t, err)
	require.Len(t, prompts, 1)
	assert.Equal(t, "3:delivery", prompts[0].StopID)
	assert.Equal(t, domain.ActionMarkDelivered, prompts[0].Action)
}

func TestCheckProximityPublishFailureIsNotFatal(t *testing.T) {
	f := newFixture(t, false)
	f.publisher.err = errors.New("broker down")

	prompts, err := f.svc.CheckProximity(context.Background(), "driver-1", domain.Coordinates{Lon: 0, Lat: 0.1})
	require.NoError(t, err)
	assert.Len(t, prompts, 1)
}

func TestCheckProximityValidatesInput(t *testing.T) {
	f := newFixture(t, false)

	_, err := f.svc.CheckProximity(context.Background(), " ", domain.Coordinates{})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	_, err = f.svc.CheckProximity(context.Background(), "driver-1", domain.Coordinates{Lon: 200})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestMarkPickedUp(t *testing.T) {
	f := newFixture(t, false)

	d, err := f.svc.MarkPickedUp(context.Background(), 1, "driver-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPickedUp, d.Status)
	assert.Equal(t, domain.StatusPickedUp, f.repo.status(1))

	require.Len(t, f.publisher.statuses, 1)
	assert.Equal(t, domain.StatusChanged{
		DonationID: 1,
		From:       domain.StatusInTransit,
		To:         domain.StatusPickedUp,
		DriverID:   "driver-1",
		At:         time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}, f.publisher.statuses[0])

	_, err = f.svc.MarkPickedUp(context.Background(), 1, "driver-1")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = f.svc.MarkPickedUp(context.Background(), 99, "driver-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMarkPickedUpConflict(t *testing.T) {
	f := newFixture(t, false)
	f.repo.updateErr = domain.ErrConflict

	_, err := f.svc.MarkPickedUp(context.Background(), 2, "driver-1")
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Empty(t, f.publisher.statuses)
}

func TestMarkDelivered(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	_, err := f.svc.MarkDelivered(ctx, 3, "driver-1", domain.Coordinates{Lon: 0, Lat: 0.2})
	assert.ErrorIs(t, err, domain.ErrTooFar)
	assert.Equal(t, domain.StatusPickedUp, f.repo.status(3))

	_, err = f.svc.MarkDelivered(ctx, 1, "driver-1", domain.Coordinates{Lon: 0, Lat: 0.5})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	d, err := f.svc.MarkDelivered(ctx, 3, "driver-1", domain.Coordinates{Lon: 0, Lat: 0.403})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelivered, d.Status)
	assert.Equal(t, domain.StatusDelivered, f.repo.status(3))
	require.Len(t, f.publisher.statuses, 1)
	assert.Equal(t, domain.StatusDelivered, f.publisher.statuses[0].To)
}

func TestMarkDeliveredUnknownDestinationSkipsRadius(t *testing.T) {
	f := newFixture(t, false)
	f.repo.donations = append(f.repo.donations, &domain.Donation{
		ID: 8, Status: domain.StatusPickedUp, PickupAddress: "donor a", DestinationAddress: "nowhere",
	})

	d, err := f.svc.MarkDelivered(context.Background(), 8, "driver-1", domain.Coordinates{Lon: 40, Lat: 40})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelivered, d.Status)
}

func TestStopWrappers(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	stops := []domain.Stop{
		{ID: "b", Coordinate: pt(2, 0)},
		{ID: "a", Coordinate: pt(1, 0)},
	}

	seq, err := f.svc.SequenceStops(ctx, domain.Coordinates{}, stops)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, stopIDs(seq))

	near, err := f.svc.NearbyStops(ctx, domain.Coordinates{Lon: 1.001}, stops, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, stopIDs(near))

	zero := 0.0
	near, err = f.svc.NearbyStops(ctx, domain.Coordinates{Lon: 1.001}, stops, &zero)
	require.NoError(t, err)
	assert.NotNil(t, near)
	assert.Empty(t, near, "explicit zero threshold should match nothing")

	wide := 200.0
	near, err = f.svc.NearbyStops(ctx, domain.Coordinates{Lon: 1.001}, stops, &wide)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, stopIDs(near))
}
