package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"donation-route-service/internal/platform/obs"
	"donation-route-service/internal/ports"

	"go.uber.org/zap"
)

var _ ports.DirectionsCache = (*PostgresDirectionsCache)(nil)

// PostgresDirectionsCache stores road route summaries in the directions_cache table.
type PostgresDirectionsCache struct {
	DB     *sql.DB
	logger *zap.Logger
}

func NewPostgresDirectionsCache(db *sql.DB, logger *zap.Logger) *PostgresDirectionsCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostgresDirectionsCache{DB: db, logger: logger}
}

// Fetch the cached summary for one route. ok is false on a miss.
func (s *PostgresDirectionsCache) Get(
	ctx context.Context,
	routeKey string,
) (_ ports.RouteSummary, ok bool, err error) {
	defer obs.Time(ctx, s.logger, "directions.cache.postgres.Get")(&err)

	if s.DB == nil {
		return ports.RouteSummary{}, false, errors.New("directions cache: db is nil")
	}
	if strings.TrimSpace(routeKey) == "" {
		return ports.RouteSummary{}, false, errors.New("get directions cache: route key must not be empty")
	}

	var out ports.RouteSummary
	err = s.DB.QueryRowContext(ctx, `
	SELECT distance_meters, duration_seconds, min_lon, min_lat, max_lon, max_lat
	FROM directions_cache
	WHERE route_key = $1;
	`, routeKey).Scan(
		&out.DistanceMeters, &out.DurationSeconds,
		&out.BBox.MinLon, &out.BBox.MinLat, &out.BBox.MaxLon, &out.BBox.MaxLat,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.RouteSummary{}, false, nil
	}
	if err != nil {
		return ports.RouteSummary{}, false, fmt.Errorf("get directions cache: query directions_cache table: %w", err)
	}
	return out, true, nil
}

// Store the summary for one route, replacing any previous entry.
func (s *PostgresDirectionsCache) Put(ctx context.Context, routeKey string, r ports.RouteSummary) (err error) {
	defer obs.Time(ctx, s.logger, "directions.cache.postgres.Put")(&err)

	if s.DB == nil {
		return errors.New("directions cache: db is nil")
	}
	if strings.TrimSpace(routeKey) == "" {
		return errors.New("insert directions cache: route key must not be empty")
	}

	_, err = s.DB.ExecContext(ctx, `
	INSERT INTO directions_cache
		(route_key, distance_meters, duration_seconds, min_lon, min_lat, max_lon, max_lat)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (route_key) DO UPDATE
	SET distance_meters = EXCLUDED.distance_meters,
		duration_seconds = EXCLUDED.duration_seconds,
		min_lon = EXCLUDED.min_lon,
		min_lat = EXCLUDED.min_lat,
		max_lon = EXCLUDED.max_lon,
		max_lat = EXCLUDED.max_lat,
		updated_at = now();
	`, routeKey, r.DistanceMeters, r.DurationSeconds, r.BBox.MinLon, r.BBox.MinLat, r.BBox.MaxLon, r.BBox.MaxLat)
	if err != nil {
		return fmt.Errorf("insert directions cache key=%q: %w", routeKey, err)
	}
	return nil
}
