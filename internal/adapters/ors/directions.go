package ors

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"donation-route-service/internal/domain"
	"donation-route-service/internal/platform/obs"
	"donation-route-service/internal/ports"

	"go.uber.org/zap"
)

type directionsRequest struct {
	Coordinates [][]float64 `json:"coordinates"`
}

type directionsResponse struct {
	BBox     []float64 `json:"bbox"`
	Features []struct {
		Properties struct {
			Summary struct {
				Distance float64 `json:"distance"`
				Duration float64 `json:"duration"`
			} `json:"summary"`
		} `json:"properties"`
	} `json:"features"`
}

// Directions requests a driving route through waypoints in the given order.
func (c *Client) Directions(
	ctx context.Context,
	waypoints []domain.Coordinates,
) (_ ports.RouteSummary, err error) {
	defer obs.Time(ctx, c.logger, "ors.directions")(&err)

	if len(waypoints) < 2 {
		return ports.RouteSummary{}, fmt.Errorf("directions: %w: need at least 2 waypoints, got %d",
			domain.ErrInvalidArgument, len(waypoints))
	}

	key := routeKey(c.profile, waypoints)
	if c.routes != nil {
		cached, ok, err := c.routes.Get(ctx, key)
		if err != nil {
			c.logger.Warn("directions cache read failed", zap.Error(err))
		} else if ok {
			return cached, nil
		}
	}

	out, err := c.fetchDirections(ctx, waypoints)
	if err != nil {
		return ports.RouteSummary{}, err
	}

	if c.routes != nil {
		if err := c.routes.Put(ctx, key, out); err != nil {
			c.logger.Warn("directions cache write failed", zap.Error(err))
		}
	}
	return out, nil
}

// routeKey identifies a route by profile and waypoints in visiting order.
func routeKey(profile string, waypoints []domain.Coordinates) string {
	var b strings.Builder
	b.WriteString(profile)
	b.WriteByte('|')
	for i, w := range waypoints {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(strconv.FormatFloat(w.Lon, 'f', -1, 64))
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(w.Lat, 'f', -1, 64))
	}
	return b.String()
}

func (c *Client) fetchDirections(ctx context.Context, waypoints []domain.Coordinates) (ports.RouteSummary, error) {
	payload := directionsRequest{Coordinates: make([][]float64, 0, len(waypoints))}
	for _, w := range waypoints {
		payload.Coordinates = append(payload.Coordinates, w.CoordsToList())
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return ports.RouteSummary{}, fmt.Errorf("directions: marshal request: %w", err)
	}

	endpoint := c.baseURL + "/v2/directions/" + url.PathEscape(c.profile) + "/geojson"
	resp, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		return c.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	})
	if err != nil {
		return ports.RouteSummary{}, fmt.Errorf("directions: execute request: %w", err)
	}
	defer resp.Body.Close()

	var decoded directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return ports.RouteSummary{}, fmt.Errorf("directions: decode response: %w", err)
	}
	if len(decoded.Features) == 0 {
		return ports.RouteSummary{}, fmt.Errorf("directions: empty route")
	}

	summary := decoded.Features[0].Properties.Summary
	out := ports.RouteSummary{
		DistanceMeters:  int(math.Round(summary.Distance)),
		DurationSeconds: int(math.Round(summary.Duration)),
	}

	switch len(decoded.BBox) {
	case 4:
		out.BBox = domain.BoundingBox{MinLon: decoded.BBox[0], MinLat: decoded.BBox[1], MaxLon: decoded.BBox[2], MaxLat: decoded.BBox[3]}
	case 6: // with elevation: minLon, minLat, minEle, maxLon, maxLat, maxEle
		out.BBox = domain.BoundingBox{MinLon: decoded.BBox[0], MinLat: decoded.BBox[1], MaxLon: decoded.BBox[3], MaxLat: decoded.BBox[4]}
	default:
		out.BBox, _ = domain.Envelope(waypoints)
	}
	return out, nil
}
