package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"donation-route-service/internal/domain"
	"donation-route-service/internal/platform/obs"
	"donation-route-service/internal/ports"

	"go.uber.org/zap"
)

type DriverConfig struct {
	ProximityKm        float64
	DeliveryRadiusKm   float64
	CorridorBufferDeg  float64
	MaxRecommendations int
}

func DefaultDriverConfig() DriverConfig {
	return DriverConfig{
		ProximityKm:        0.2,
		DeliveryRadiusKm:   0.5,
		CorridorBufferDeg:  0.01,
		MaxRecommendations: 3,
	}
}

// DriverDeps are the collaborators of a DriverService.
// Directions is optional; publishers default to no-ops.
type DriverDeps struct {
	Repo       ports.DonationRepository
	Geocoder   ports.Geocoder
	Directions ports.DirectionsProvider
	Proximity  ports.ProximityPublisher
	Status     ports.StatusPublisher
	Logger     *zap.Logger
}

// DriverService implements the driver workflow: active donations, route
// planning, proximity prompts and status confirmation.
type DriverService struct {
	repo       ports.DonationRepository
	geocoder   ports.Geocoder
	directions ports.DirectionsProvider
	proximity  ports.ProximityPublisher
	status     ports.StatusPublisher
	logger     *zap.Logger
	cfg        DriverConfig
	now        func() time.Time
}

func NewDriverService(deps DriverDeps, cfg DriverConfig) (*DriverService, error) {
	if deps.Repo == nil {
		return nil, errors.New("new driver service: repository must be non-nil")
	}
	if deps.Geocoder == nil {
		return nil, errors.New("new driver service: geocoder must be non-nil")
	}

	s := &DriverService{
		repo:       deps.Repo,
		geocoder:   deps.Geocoder,
		directions: deps.Directions,
		proximity:  deps.Proximity,
		status:     deps.Status,
		logger:     deps.Logger,
		cfg:        cfg,
		now:        time.Now,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.proximity == nil {
		s.proximity = nopPublisher{}
	}
	if s.status == nil {
		s.status = nopPublisher{}
	}
	return s, nil
}

// ActiveDonations lists in-transit and picked-up donations with their
// coordinates resolved where possible.
func (s *DriverService) ActiveDonations(ctx context.Context) (_ []*domain.Donation, err error) {
	defer obs.Time(ctx, s.logger, "driver.activeDonations")(&err)

	donations, err := s.repo.List(ctx, ports.DonationFilter{Statuses: domain.ActiveStatuses})
	if err != nil {
		return nil, fmt.Errorf("active donations: list: %w", err)
	}
	if err := ResolveCoordinates(ctx, s.geocoder, s.logger, donations); err != nil {
		return nil, fmt.Errorf("active donations: resolve coordinates: %w", err)
	}
	return donations, nil
}

// PlanRouteRequest selects the donations to route. In manual mode the stops
// keep the order of DonationIDs; otherwise they are sequenced by distance.
// Destination is an optional final address.
type PlanRouteRequest struct {
	Origin      domain.Coordinates
	DonationIDs []int64
	Manual      bool
	Destination string
}

// PlanRoute builds a route through the selected active donations: pickups
// first, then deliveries, then the final destination.
func (s *DriverService) PlanRoute(ctx context.Context, req PlanRouteRequest) (_ *domain.RoutePlan, err error) {
	defer obs.Time(ctx, s.logger, "driver.planRoute")(&err)

	if err := req.Origin.Validate(); err != nil {
		return nil, fmt.Errorf("plan route: origin: %w", err)
	}
	if len(req.DonationIDs) == 0 {
		return nil, fmt.Errorf("plan route: %w: no donations selected", domain.ErrInvalidArgument)
	}

	active, err := s.ActiveDonations(ctx)
	if err != nil {
		return nil, fmt.Errorf("plan route: %w", err)
	}

	byID := make(map[int64]*domain.Donation, len(active))
	for _, d := range active {
		byID[d.ID] = d
	}

	plan := &domain.RoutePlan{Origin: req.Origin, Unresolved: []int64{}}
	owner := make(map[string]*domain.Donation)
	selected := make(map[int64]bool, len(req.DonationIDs))
	var pickups, deliveries []domain.Stop

	for _, id := range req.DonationIDs {
		if selected[id] {
			continue
		}
		d, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("plan route: %w: donation %d is not active", domain.ErrInvalidArgument, id)
		}
		selected[id] = true

		stop, _ := d.OpenStop()
		if stop.Coordinate == nil {
			plan.Unresolved = append(plan.Unresolved, id)
			continue
		}
		owner[stop.ID] = d
		if stop.Kind == domain.StopPickup {
			pickups = append(pickups, stop)
		} else {
			deliveries = append(deliveries, stop)
		}
	}

	if len(pickups)+len(deliveries) == 0 {
		return nil, fmt.Errorf("plan route: %w: no selected donation has a known location", domain.ErrInvalidArgument)
	}

	if !req.Manual {
		if pickups, err = Sequence(req.Origin, pickups); err != nil {
			return nil, fmt.Errorf("plan route: pickups: %w", err)
		}
		from := req.Origin
		if len(pickups) > 0 {
			from = *pickups[len(pickups)-1].Coordinate
		}
		if deliveries, err = Sequence(from, deliveries); err != nil {
			return nil, fmt.Errorf("plan route: deliveries: %w", err)
		}
	}

	waypoints := []domain.Coordinates{req.Origin}
	position := req.Origin
	for _, stop := range slices.Concat(pickups, deliveries) {
		leg := haversineKm(position, *stop.Coordinate)
		d := owner[stop.ID]
		plan.Stops = append(plan.Stops, domain.RouteStop{Stop: stop, DonationID: d.ID, Name: d.Name, LegKm: leg})
		plan.TotalKm += leg
		position = *stop.Coordinate
		waypoints = append(waypoints, position)
	}

	last := position
	plan.Destination = &last
	if dest := s.resolveDestination(ctx, req.Destination); dest != nil {
		plan.TotalKm += haversineKm(position, *dest)
		plan.Destination = dest
		waypoints = append(waypoints, *dest)
	}

	box, _ := domain.Envelope(waypoints)
	if s.directions != nil {
		summary, err := s.directions.Directions(ctx, waypoints)
		if err != nil {
			s.logger.Warn("directions unavailable, using straight-line route",
				zap.String("req_id", obs.RequestID(ctx)), zap.Error(err))
		} else {
			plan.DistanceMeters = summary.DistanceMeters
			plan.DurationSeconds = summary.DurationSeconds
			box = summary.BBox
		}
	}
	plan.BBox = &box

	var candidates []*domain.Donation
	for _, d := range active {
		if !selected[d.ID] && d.Status == domain.StatusInTransit {
			candidates = append(candidates, d)
		}
	}
	plan.Recommendations, err = Recommend(candidates, box, s.cfg.CorridorBufferDeg, s.cfg.MaxRecommendations)
	if err != nil {
		return nil, fmt.Errorf("plan route: %w", err)
	}

	return plan, nil
}

func (s *DriverService) resolveDestination(ctx context.Context, address string) *domain.Coordinates {
	if strings.TrimSpace(address) == "" {
		return nil
	}
	c, err := s.geocoder.Geocode(ctx, address)
	if err == nil {
		err = c.Validate()
	}
	if err != nil {
		s.logger.Warn("destination not resolved, ending at last stop",
			zap.String("address", address), zap.Error(err))
		return nil
	}
	return &c
}

// CheckProximity returns a prompt for every open stop strictly closer than
// the proximity threshold to position. Prompts are also published.
func (s *DriverService) CheckProximity(
	ctx context.Context,
	driverID string,
	position domain.Coordinates,
) (_ []domain.ProximityPrompt, err error) {
	defer obs.Time(ctx, s.logger, "driver.checkProximity")(&err)

	if strings.TrimSpace(driverID) == "" {
		return nil, fmt.Errorf("check proximity: %w: driver id is empty", domain.ErrInvalidArgument)
	}
	if err := position.Validate(); err != nil {
		return nil, fmt.Errorf("check proximity: position: %w", err)
	}

	active, err := s.ActiveDonations(ctx)
	if err != nil {
		return nil, fmt.Errorf("check proximity: %w", err)
	}

	owner := make(map[string]*domain.Donation)
	var open []domain.Stop
	for _, d := range active {
		stop, ok := d.OpenStop()
		if !ok || stop.Coordinate == nil || stop.Coordinate.Validate() != nil {
			continue
		}
		owner[stop.ID] = d
		open = append(open, stop)
	}

	nearby, err := FindNearby(position, open, s.cfg.ProximityKm)
	if err != nil {
		return nil, fmt.Errorf("check proximity: %w", err)
	}

	at := s.now().UTC()
	prompts := make([]domain.ProximityPrompt, 0, len(nearby))
	for _, stop := range nearby {
		action := domain.ActionMarkPickedUp
		if stop.Kind == domain.StopDelivery {
			action = domain.ActionMarkDelivered
		}
		p := domain.ProximityPrompt{
			DriverID:   driverID,
			DonationID: owner[stop.ID].ID,
			StopID:     stop.ID,
			Kind:       stop.Kind,
			DistanceKm: haversineKm(position, *stop.Coordinate),
			Action:     action,
			At:         at,
		}
		if perr := s.proximity.PublishProximity(ctx, p); perr != nil {
			s.logger.Warn("publish proximity prompt failed",
				zap.String("stop_id", p.StopID), zap.String("driver_id", driverID), zap.Error(perr))
		}
		prompts = append(prompts, p)
	}
	return prompts, nil
}

// MarkPickedUp confirms that the driver collected the donation.
func (s *DriverService) MarkPickedUp(ctx context.Context, id int64, driverID string) (_ *domain.Donation, err error) {
	defer obs.Time(ctx, s.logger, "driver.markPickedUp")(&err)

	d, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("mark picked up: %w", err)
	}
	if err := s.transition(ctx, d, domain.StatusPickedUp, driverID); err != nil {
		return nil, fmt.Errorf("mark picked up: %w", err)
	}
	return d, nil
}

// MarkDelivered confirms delivery. When the destination is known the driver
// must be within the delivery radius of it.
func (s *DriverService) MarkDelivered(
	ctx context.Context,
	id int64,
	driverID string,
	position domain.Coordinates,
) (_ *domain.Donation, err error) {
	defer obs.Time(ctx, s.logger, "driver.markDelivered")(&err)

	if err := position.Validate(); err != nil {
		return nil, fmt.Errorf("mark delivered: position: %w", err)
	}

	d, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("mark delivered: %w", err)
	}
	if !d.Status.CanTransitionTo(domain.StatusDelivered) {
		return nil, fmt.Errorf("mark delivered: %w: donation %d is %s", domain.ErrInvalidTransition, id, d.Status)
	}

	if err := ResolveCoordinates(ctx, s.geocoder, s.logger, []*domain.Donation{d}); err != nil {
		return nil, fmt.Errorf("mark delivered: %w", err)
	}
	if d.DestinationCoords != nil && d.DestinationCoords.Validate() == nil {
		km := haversineKm(position, *d.DestinationCoords)
		if km > s.cfg.DeliveryRadiusKm {
			return nil, fmt.Errorf("mark delivered: %w: %.2f km from destination, limit %.2f km",
				domain.ErrTooFar, km, s.cfg.DeliveryRadiusKm)
		}
	}

	if err := s.transition(ctx, d, domain.StatusDelivered, driverID); err != nil {
		return nil, fmt.Errorf("mark delivered: %w", err)
	}
	return d, nil
}

func (s *DriverService) transition(ctx context.Context, d *domain.Donation, to domain.DonationStatus, driverID string) error {
	from := d.Status
	if !from.CanTransitionTo(to) {
		return fmt.Errorf("%w: donation %d is %s", domain.ErrInvalidTransition, d.ID, from)
	}
	if err := s.repo.UpdateStatus(ctx, d.ID, from, to); err != nil {
		return err
	}
	d.Status = to

	evt := domain.StatusChanged{DonationID: d.ID, From: from, To: to, DriverID: driverID, At: s.now().UTC()}
	if err := s.status.PublishStatusChanged(ctx, evt); err != nil {
		s.logger.Warn("publish status change failed",
			zap.Int64("donation_id", d.ID), zap.String("to", to.String()), zap.Error(err))
	}
	return nil
}

// SequenceStops exposes Sequence with operation logging.
func (s *DriverService) SequenceStops(ctx context.Context, current domain.Coordinates, stops []domain.Stop) (_ []domain.Stop, err error) {
	defer obs.Time(ctx, s.logger, "stops.sequence")(&err)
	return Sequence(current, stops)
}

// NearbyStops exposes FindNearby with operation logging. A nil threshold
// uses the configured proximity threshold; any given value is passed through.
func (s *DriverService) NearbyStops(
	ctx context.Context,
	position domain.Coordinates,
	stops []domain.Stop,
	thresholdKm *float64,
) (_ []domain.Stop, err error) {
	defer obs.Time(ctx, s.logger, "stops.nearby")(&err)
	threshold := s.cfg.ProximityKm
	if thresholdKm != nil {
		threshold = *thresholdKm
	}
	return FindNearby(position, stops, threshold)
}

type nopPublisher struct{}

func (nopPublisher) PublishProximity(context.Context, domain.ProximityPrompt) error { return nil }
func (nopPublisher) PublishStatusChanged(context.Context, domain.StatusChanged) error {
	return nil
}
