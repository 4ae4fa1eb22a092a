package handlers

import (
	"fmt"
	"net/http"

	"donation-route-service/internal/api/dto"

	"go.uber.org/zap"
)

// StopHandler exposes the route sequencer for arbitrary stop lists.
type StopHandler struct {
	Service DriverService
	Logger  *zap.Logger
}

func (h *StopHandler) Sequence(w http.ResponseWriter, r *http.Request) {
	var req dto.SequenceRequest
	if !decodeJSON(w, r, h.Logger, &req) {
		return
	}
	current, err := req.Current.ToDomain()
	if err != nil {
		writeServiceError(w, r, h.Logger, fmt.Errorf("current: %w", err))
		return
	}
	stops, err := dto.StopsToDomain(req.Stops)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}

	route, err := h.Service.SequenceStops(r.Context(), current, stops)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, r, h.Logger, http.StatusOK, dto.StopsResponse{Stops: dto.NewStopList(route)})
}

func (h *StopHandler) Nearby(w http.ResponseWriter, r *http.Request) {
	var req dto.NearbyRequest
	if !decodeJSON(w, r, h.Logger, &req) {
		return
	}
	position, err := req.Position.ToDomain()
	if err != nil {
		writeServiceError(w, r, h.Logger, fmt.Errorf("position: %w", err))
		return
	}
	stops, err := dto.StopsToDomain(req.Stops)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}

	nearby, err := h.Service.NearbyStops(r.Context(), position, stops, req.ThresholdKm)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, r, h.Logger, http.StatusOK, dto.StopsResponse{Stops: dto.NewStopList(nearby)})
}
