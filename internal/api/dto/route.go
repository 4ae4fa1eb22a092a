package dto

import "donation-route-service/internal/domain"

type PlanRouteRequest struct {
	Origin      *CoordinatesRequest `json:"origin"`
	DonationIDs []int64             `json:"donation_ids"`
	Manual      bool                `json:"manual"`
	Destination string              `json:"destination"`
}

type RouteStopResponse struct {
	StopResponse
	DonationID int64   `json:"donation_id"`
	Name       string  `json:"name"`
	LegKm      float64 `json:"leg_km"`
}

type RoutePlanResponse struct {
	Origin          *PointResponse      `json:"origin"`
	Stops           []RouteStopResponse `json:"stops"`
	Destination     *PointResponse      `json:"destination"`
	TotalKm         float64             `json:"total_km"`
	DistanceMeters  int                 `json:"distance_meters"`
	DurationSeconds int                 `json:"duration_seconds"`
	BBox            []float64           `json:"bbox"`
	Unresolved      []int64             `json:"unresolved"`
	Recommendations []DonationResponse  `json:"recommendations"`
}

func NewRoutePlan(p *domain.RoutePlan) RoutePlanResponse {
	origin := p.Origin
	res := RoutePlanResponse{
		Origin:          NewPoint(&origin),
		Stops:           make([]RouteStopResponse, 0, len(p.Stops)),
		Destination:     NewPoint(p.Destination),
		TotalKm:         p.TotalKm,
		DistanceMeters:  p.DistanceMeters,
		DurationSeconds: p.DurationSeconds,
		BBox:            NewBBox(p.BBox),
		Unresolved:      p.Unresolved,
		Recommendations: NewDonationList(p.Recommendations),
	}
	if res.Unresolved == nil {
		res.Unresolved = []int64{}
	}
	for _, s := range p.Stops {
		res.Stops = append(res.Stops, RouteStopResponse{
			StopResponse: NewStop(s.Stop),
			DonationID:   s.DonationID,
			Name:         s.Name,
			LegKm:        s.LegKm,
		})
	}
	return res
}

type ProximityPromptResponse struct {
	DonationID int64   `json:"donation_id"`
	StopID     string  `json:"stop_id"`
	Kind       string  `json:"kind"`
	DistanceKm float64 `json:"distance_km"`
	Action     string  `json:"action"`
}

type ProximityResponse struct {
	DriverID string                    `json:"driver_id"`
	Prompts  []ProximityPromptResponse `json:"prompts"`
}

func NewProximity(driverID string, prompts []domain.ProximityPrompt) ProximityResponse {
	res := ProximityResponse{DriverID: driverID, Prompts: make([]ProximityPromptResponse, 0, len(prompts))}
	for _, p := range prompts {
		res.Prompts = append(res.Prompts, ProximityPromptResponse{
			DonationID: p.DonationID,
			StopID:     p.StopID,
			Kind:       string(p.Kind),
			DistanceKm: p.DistanceKm,
			Action:     string(p.Action),
		})
	}
	return res
}
