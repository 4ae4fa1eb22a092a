package dto

import (
	"fmt"
	"strings"

	"donation-route-service/internal/domain"
)

type StopRequest struct {
	ID        string   `json:"id"`
	Kind      string   `json:"kind"`
	Lon       *float64 `json:"lon"`
	Lat       *float64 `json:"lat"`
	Completed bool     `json:"completed"`
}

// ToDomain keeps missing coordinates as nil; the sequencer rejects them.
func (s StopRequest) ToDomain() (domain.Stop, error) {
	if strings.TrimSpace(s.ID) == "" {
		return domain.Stop{}, fmt.Errorf("%w: stop id is required", domain.ErrInvalidArgument)
	}
	kind := domain.StopKind(s.Kind)
	if !kind.IsValid() {
		return domain.Stop{}, fmt.Errorf("%w: stop %q: kind must be pickup or delivery", domain.ErrInvalidArgument, s.ID)
	}

	stop := domain.Stop{ID: s.ID, Kind: kind, Completed: s.Completed}
	if s.Lon != nil && s.Lat != nil {
		stop.Coordinate = &domain.Coordinates{Lon: *s.Lon, Lat: *s.Lat}
	}
	return stop, nil
}

func StopsToDomain(in []StopRequest) ([]domain.Stop, error) {
	out := make([]domain.Stop, 0, len(in))
	for _, s := range in {
		stop, err := s.ToDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, stop)
	}
	return out, nil
}

type StopResponse struct {
	ID        string         `json:"id"`
	Kind      string         `json:"kind"`
	Completed bool           `json:"completed"`
	Location  *PointResponse `json:"location"`
}

func NewStop(s domain.Stop) StopResponse {
	return StopResponse{ID: s.ID, Kind: string(s.Kind), Completed: s.Completed, Location: NewPoint(s.Coordinate)}
}

func NewStopList(stops []domain.Stop) []StopResponse {
	out := make([]StopResponse, 0, len(stops))
	for _, s := range stops {
		out = append(out, NewStop(s))
	}
	return out
}

type SequenceRequest struct {
	Current *CoordinatesRequest `json:"current"`
	Stops   []StopRequest       `json:"stops"`
}

type NearbyRequest struct {
	Position *CoordinatesRequest `json:"position"`
	Stops    []StopRequest       `json:"stops"`
	// ThresholdKm defaults to the service proximity threshold when omitted.
	ThresholdKm *float64 `json:"threshold_km"`
}

type StopsResponse struct {
	Stops []StopResponse `json:"stops"`
}
