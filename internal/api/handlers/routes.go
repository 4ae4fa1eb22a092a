package handlers

import (
	"fmt"
	"net/http"

	"donation-route-service/internal/api/dto"
	"donation-route-service/internal/services"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type RouteHandler struct {
	Service DriverService
	Logger  *zap.Logger
}

// Plan computes the driver route for the selected donations.
func (h *RouteHandler) Plan(w http.ResponseWriter, r *http.Request) {
	var req dto.PlanRouteRequest
	if !decodeJSON(w, r, h.Logger, &req) {
		return
	}
	origin, err := req.Origin.ToDomain()
	if err != nil {
		writeServiceError(w, r, h.Logger, fmt.Errorf("origin: %w", err))
		return
	}

	plan, err := h.Service.PlanRoute(r.Context(), services.PlanRouteRequest{
		Origin:      origin,
		DonationIDs: req.DonationIDs,
		Manual:      req.Manual,
		Destination: req.Destination,
	})
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, r, h.Logger, http.StatusOK, dto.NewRoutePlan(plan))
}

// Position checks a driver's reported position against open stops.
func (h *RouteHandler) Position(w http.ResponseWriter, r *http.Request) {
	driverID := mux.Vars(r)["driverID"]

	var req dto.CoordinatesRequest
	if !decodeJSON(w, r, h.Logger, &req) {
		return
	}
	position, err := req.ToDomain()
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}

	prompts, err := h.Service.CheckProximity(r.Context(), driverID, position)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, r, h.Logger, http.StatusOK, dto.NewProximity(driverID, prompts))
}
