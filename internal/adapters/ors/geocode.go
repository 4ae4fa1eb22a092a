package ors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"donation-route-service/internal/domain"
	"donation-route-service/internal/platform/obs"

	"go.uber.org/zap"
)

type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// Geocode resolves a single address, consulting the cache first.
// It returns domain.ErrNotFound when the address has no match.
func (c *Client) Geocode(ctx context.Context, address string) (domain.Coordinates, error) {
	norm := normalize(address)
	if norm == "" {
		return domain.Coordinates{}, fmt.Errorf("geocode: %w: empty address", domain.ErrInvalidArgument)
	}

	res, err := c.GeocodeMany(ctx, []string{address})
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("geocode %q: %w", norm, err)
	}
	coords, ok := res[address]
	if !ok {
		return domain.Coordinates{}, fmt.Errorf("geocode %q: %w", norm, domain.ErrNotFound)
	}
	return coords, nil
}

// GeocodeMany resolves addresses through the cache, then /geocode/search for
// the misses. New results are written back to the cache. Addresses that
// cannot be resolved are logged and left out; only cancellation fails the call.
func (c *Client) GeocodeMany(
	ctx context.Context,
	addresses []string,
) (_ map[string]domain.Coordinates, err error) {
	defer obs.Time(ctx, c.logger, "ors.geocodeMany")(&err)

	byNorm := make(map[string][]string)
	var norms []string
	for _, a := range addresses {
		n := normalize(a)
		if n == "" {
			continue
		}
		if _, ok := byNorm[n]; !ok {
			norms = append(norms, n)
		}
		byNorm[n] = append(byNorm[n], a)
	}

	found := make(map[string]domain.Coordinates, len(norms))
	if c.cache != nil && len(norms) > 0 {
		cached, err := c.cache.GetMany(ctx, norms)
		if err != nil {
			c.logger.Warn("geocode cache read failed", zap.Error(err))
		}
		for k, v := range cached {
			found[k] = v
		}
	}

	fresh := make(map[string]domain.Coordinates)
	for _, n := range norms {
		if _, ok := found[n]; ok {
			continue
		}
		coords, err := c.search(ctx, n)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.logger.Info("address not geocoded", zap.String("address", n), zap.Error(err))
			continue
		}
		found[n] = coords
		fresh[n] = coords
	}

	if c.cache != nil && len(fresh) > 0 {
		if err := c.cache.PutMany(ctx, fresh); err != nil {
			c.logger.Warn("geocode cache write failed", zap.Int("entries", len(fresh)), zap.Error(err))
		}
	}

	out := make(map[string]domain.Coordinates, len(addresses))
	for n, coords := range found {
		for _, original := range byNorm[n] {
			out[original] = coords
		}
	}
	return out, nil
}

func (c *Client) search(ctx context.Context, norm string) (domain.Coordinates, error) {
	endpoint := c.baseURL + "/geocode/search"

	resp, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("text", norm)
		if c.country != "" {
			q.Set("boundary.country", c.country)
		}
		q.Set("size", "1")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Coordinates{}, fmt.Errorf("decode geocode response: %w", err)
	}
	if len(decoded.Features) == 0 {
		return domain.Coordinates{}, domain.ErrNotFound
	}

	raw := decoded.Features[0].Geometry.Coordinates
	if len(raw) < 2 {
		return domain.Coordinates{}, fmt.Errorf("invalid coordinate format %v", raw)
	}
	coords := domain.Coordinates{Lon: raw[0], Lat: raw[1]}
	if err := coords.Validate(); err != nil {
		return domain.Coordinates{}, err
	}
	return coords, nil
}
