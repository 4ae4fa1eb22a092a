package events

import (
	"context"

	"donation-route-service/internal/domain"
	"donation-route-service/internal/platform/obs"

	"go.uber.org/zap"
)

// LogPublisher writes events to the log. It stands in for a broker that is
// not configured.
type LogPublisher struct {
	logger *zap.Logger
}

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) PublishProximity(ctx context.Context, prompt domain.ProximityPrompt) error {
	p.logger.Info("proximity prompt",
		zap.String("req_id", obs.RequestID(ctx)),
		zap.String("driver_id", prompt.DriverID),
		zap.Int64("donation_id", prompt.DonationID),
		zap.String("stop_id", prompt.StopID),
		zap.Float64("distance_km", prompt.DistanceKm),
		zap.String("action", string(prompt.Action)),
	)
	return nil
}

func (p *LogPublisher) PublishStatusChanged(ctx context.Context, evt domain.StatusChanged) error {
	p.logger.Info("donation status changed",
		zap.String("req_id", obs.RequestID(ctx)),
		zap.Int64("donation_id", evt.DonationID),
		zap.String("from", evt.From.String()),
		zap.String("to", evt.To.String()),
		zap.String("driver_id", evt.DriverID),
	)
	return nil
}
