package api

import (
	"net/http"

	"donation-route-service/internal/api/handlers"
	"donation-route-service/internal/ports"

	ghandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type RouterDeps struct {
	Repo    ports.DonationRepository
	Service handlers.DriverService
	DB      handlers.Pinger
	Logger  *zap.Logger
	// AllowedOrigins for CORS; defaults to any origin.
	AllowedOrigins []string
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(deps RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	health := &handlers.HealthHandler{DB: deps.DB, Logger: logger}
	donations := &handlers.DonationHandler{Repo: deps.Repo, Service: deps.Service, Logger: logger}
	routes := &handlers.RouteHandler{Service: deps.Service, Logger: logger}
	stops := &handlers.StopHandler{Service: deps.Service, Logger: logger}

	r := mux.NewRouter()
	r.Use(requestIDMiddleware, loggingMiddleware(logger))

	r.HandleFunc("/health", health.Health).Methods(http.MethodGet)

	r.HandleFunc("/donations", donations.List).Methods(http.MethodGet)
	r.HandleFunc("/donations/active", donations.Active).Methods(http.MethodGet)
	r.HandleFunc("/donations/{id}/pickup", donations.Pickup).Methods(http.MethodPost)
	r.HandleFunc("/donations/{id}/deliver", donations.Deliver).Methods(http.MethodPost)

	r.HandleFunc("/routes", routes.Plan).Methods(http.MethodPost)
	r.HandleFunc("/drivers/{driverID}/position", routes.Position).Methods(http.MethodPost)

	r.HandleFunc("/stops/sequence", stops.Sequence).Methods(http.MethodPost)
	r.HandleFunc("/stops/nearby", stops.Nearby).Methods(http.MethodPost)

	origins := deps.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	cors := ghandlers.CORS(
		ghandlers.AllowedOrigins(origins),
		ghandlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		ghandlers.AllowedHeaders([]string{"Content-Type", requestIDHeader}),
	)
	recovery := ghandlers.RecoveryHandler(
		ghandlers.RecoveryLogger(recoveryLogger{logger: logger}),
		ghandlers.PrintRecoveryStack(true),
	)

	return recovery(cors(r))
}
