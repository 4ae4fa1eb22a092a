package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"donation-route-service/internal/domain"
	"donation-route-service/internal/platform/obs"
	"donation-route-service/internal/services"

	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// DriverService is the application surface the handlers depend on.
type DriverService interface {
	ActiveDonations(ctx context.Context) ([]*domain.Donation, error)
	PlanRoute(ctx context.Context, req services.PlanRouteRequest) (*domain.RoutePlan, error)
	CheckProximity(ctx context.Context, driverID string, position domain.Coordinates) ([]domain.ProximityPrompt, error)
	MarkPickedUp(ctx context.Context, id int64, driverID string) (*domain.Donation, error)
	MarkDelivered(ctx context.Context, id int64, driverID string, position domain.Coordinates) (*domain.Donation, error)
	SequenceStops(ctx context.Context, current domain.Coordinates, stops []domain.Stop) ([]domain.Stop, error)
	NearbyStops(ctx context.Context, position domain.Coordinates, stops []domain.Stop, thresholdKm *float64) ([]domain.Stop, error)
}

func writeJSON(w http.ResponseWriter, r *http.Request, logger *zap.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("encode response failed",
			zap.String("req_id", obs.RequestID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, status int, msg string) {
	writeJSON(w, r, logger, status, map[string]string{"error": msg})
}

// writeServiceError maps domain errors to HTTP statuses. Unexpected errors
// are logged and answered with a generic message.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		writeError(w, r, logger, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, r, logger, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrTooFar):
		writeError(w, r, logger, http.StatusConflict, err.Error())
	default:
		logger.Error("request failed",
			zap.String("req_id", obs.RequestID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		writeError(w, r, logger, http.StatusInternalServerError, "internal server error")
	}
}

// decodeJSON reads exactly one JSON object with no unknown fields.
// It writes the 400 response itself and reports whether decoding succeeded.
func decodeJSON(w http.ResponseWriter, r *http.Request, logger *zap.Logger, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		writeError(w, r, logger, http.StatusBadRequest, "invalid json body")
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, logger, http.StatusBadRequest, "body must contain only one JSON object")
		return false
	}
	return true
}
