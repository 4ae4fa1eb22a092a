package ports

import (
	"context"
	"donation-route-service/internal/domain"
)

type ProximityPublisher interface {
	PublishProximity(ctx context.Context, prompt domain.ProximityPrompt) error
}

type StatusPublisher interface {
	PublishStatusChanged(ctx context.Context, evt domain.StatusChanged) error
}
