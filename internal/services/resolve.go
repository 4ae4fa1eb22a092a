package services

import (
	"context"
	"strings"
	"sync"

	"donation-route-service/internal/domain"
	"donation-route-service/internal/ports"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const geocodeConcurrency = 5

// ResolveCoordinates fills in the missing pickup and destination coordinates
// of donations, in place.
//
// Batch geocoders are called once; otherwise addresses are geocoded
// concurrently. An address that cannot be resolved is logged and its
// coordinate stays nil. Only context cancellation is returned as an error.
func ResolveCoordinates(
	ctx context.Context,
	geocoder ports.Geocoder,
	logger *zap.Logger,
	donations []*domain.Donation,
) error {
	addresses := pendingAddresses(donations)
	if len(addresses) == 0 {
		return nil
	}

	var resolved map[string]domain.Coordinates
	if bg, ok := geocoder.(ports.BatchGeocoder); ok {
		res, err := bg.GeocodeMany(ctx, addresses)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Warn("batch geocode failed", zap.Int("addresses", len(addresses)), zap.Error(err))
		}
		resolved = res
	} else {
		resolved = geocodeEach(ctx, geocoder, logger, addresses)
		if err := ctx.Err(); err != nil {
			return err
		}
	}

	for _, d := range donations {
		if d.PickupCoords == nil {
			d.PickupCoords = lookup(resolved, d.PickupAddress)
		}
		if d.DestinationCoords == nil {
			d.DestinationCoords = lookup(resolved, d.DestinationAddress)
		}
	}

	for _, addr := range addresses {
		if _, ok := resolved[addr]; !ok {
			logger.Info("address not resolved", zap.String("address", addr))
		}
	}
	return nil
}

func geocodeEach(
	ctx context.Context,
	geocoder ports.Geocoder,
	logger *zap.Logger,
	addresses []string,
) map[string]domain.Coordinates {
	var mu sync.Mutex
	resolved := make(map[string]domain.Coordinates, len(addresses))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(geocodeConcurrency)

	for _, addr := range addresses {
		g.Go(func() error {
			c, err := geocoder.Geocode(gctx, addr)
			if err != nil {
				logger.Warn("geocode failed", zap.String("address", addr), zap.Error(err))
				return nil
			}
			mu.Lock()
			resolved[addr] = c
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return resolved
}

func pendingAddresses(donations []*domain.Donation) []string {
	seen := make(map[string]struct{})
	var out []string

	add := func(addr string) {
		if strings.TrimSpace(addr) == "" {
			return
		}
		if _, ok := seen[addr]; ok {
			return
		}
		seen[addr] = struct{}{}
		out = append(out, addr)
	}

	for _, d := range donations {
		if d.PickupCoords == nil {
			add(d.PickupAddress)
		}
		if d.DestinationCoords == nil {
			add(d.DestinationAddress)
		}
	}
	return out
}

func lookup(resolved map[string]domain.Coordinates, addr string) *domain.Coordinates {
	c, ok := resolved[addr]
	if !ok {
		return nil
	}
	return &c
}
