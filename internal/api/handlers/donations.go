package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"donation-route-service/internal/api/dto"
	"donation-route-service/internal/domain"
	"donation-route-service/internal/ports"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// DonationHandler exposes donation listing and the driver status commands.
type DonationHandler struct {
	Repo    ports.DonationRepository
	Service DriverService
	Logger  *zap.Logger
}

// List supports ?status=a,b and ?food_bank_id=.
func (h *DonationHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter ports.DonationFilter
	q := r.URL.Query()

	if raw := strings.TrimSpace(q.Get("status")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			s, err := domain.ParseDonationStatus(strings.TrimSpace(part))
			if err != nil {
				writeServiceError(w, r, h.Logger, err)
				return
			}
			filter.Statuses = append(filter.Statuses, s)
		}
	}
	filter.FoodBankID = strings.TrimSpace(q.Get("food_bank_id"))

	donations, err := h.Repo.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, r, h.Logger, http.StatusOK, dto.ListDonationsResponse{Donations: dto.NewDonationList(donations)})
}

// Active lists the donations on the driver dashboard, with coordinates.
func (h *DonationHandler) Active(w http.ResponseWriter, r *http.Request) {
	donations, err := h.Service.ActiveDonations(r.Context())
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, r, h.Logger, http.StatusOK, dto.ListDonationsResponse{Donations: dto.NewDonationList(donations)})
}

func (h *DonationHandler) Pickup(w http.ResponseWriter, r *http.Request) {
	id, ok := h.donationID(w, r)
	if !ok {
		return
	}
	var req dto.PickupRequest
	if !decodeJSON(w, r, h.Logger, &req) {
		return
	}

	d, err := h.Service.MarkPickedUp(r.Context(), id, strings.TrimSpace(req.DriverID))
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, r, h.Logger, http.StatusOK, dto.NewDonation(d))
}

func (h *DonationHandler) Deliver(w http.ResponseWriter, r *http.Request) {
	id, ok := h.donationID(w, r)
	if !ok {
		return
	}
	var req dto.DeliverRequest
	if !decodeJSON(w, r, h.Logger, &req) {
		return
	}
	position, err := req.Position.ToDomain()
	if err != nil {
		writeServiceError(w, r, h.Logger, fmt.Errorf("position: %w", err))
		return
	}

	d, err := h.Service.MarkDelivered(r.Context(), id, strings.TrimSpace(req.DriverID), position)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, r, h.Logger, http.StatusOK, dto.NewDonation(d))
}

func (h *DonationHandler) donationID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		writeError(w, r, h.Logger, http.StatusBadRequest, "donation id must be a positive integer")
		return 0, false
	}
	return id, true
}
