package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"donation-route-service/internal/domain"
	"donation-route-service/internal/platform/obs"

	"go.uber.org/zap"
)

// PostgresGeocodeCache maps addresses to coordinates in the geocode_cache table.
type PostgresGeocodeCache struct {
	DB     *sql.DB
	logger *zap.Logger
}

func NewPostgresGeocodeCache(db *sql.DB, logger *zap.Logger) *PostgresGeocodeCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostgresGeocodeCache{DB: db, logger: logger}
}

// Fetch cached coordinates for the given addresses.
func (s *PostgresGeocodeCache) GetMany(
	ctx context.Context,
	addresses []string,
) (_ map[string]domain.Coordinates, err error) {
	defer obs.Time(ctx, s.logger, "geocode.cache.postgres.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("geocode cache: db is nil")
	}

	uniq := uniqueKeys(addresses)
	if len(uniq) == 0 {
		return map[string]domain.Coordinates{}, nil
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT address, lon, lat
	FROM geocode_cache
	WHERE address = ANY($1::text[]);
	`, uniq)
	if err != nil {
		return nil, fmt.Errorf("get geocode cache: query geocode_cache table: %w", err)
	}
	defer rows.Close()

	out := make(map[string]domain.Coordinates, len(uniq))
	for rows.Next() {
		var addr string
		var c domain.Coordinates
		if err := rows.Scan(&addr, &c.Lon, &c.Lat); err != nil {
			return nil, fmt.Errorf("get geocode cache: scan rows: %w", err)
		}
		out[addr] = c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get geocode cache: row iteration: %w", err)
	}

	return out, nil
}

// Store address -> coordinate mappings with a single upsert.
func (s *PostgresGeocodeCache) PutMany(ctx context.Context, results map[string]domain.Coordinates) (err error) {
	defer obs.Time(ctx, s.logger, "geocode.cache.postgres.PutMany")(&err)

	if s.DB == nil {
		return errors.New("geocode cache: db is nil")
	}
	if len(results) == 0 {
		return nil
	}

	keys := sortedKeys(results)
	lons := make([]float64, 0, len(keys))
	lats := make([]float64, 0, len(keys))
	for _, k := range keys {
		if strings.TrimSpace(k) == "" {
			return errors.New("insert geocode cache: empty address key")
		}
		lons = append(lons, results[k].Lon)
		lats = append(lats, results[k].Lat)
	}

	_, err = s.DB.ExecContext(ctx, `
	INSERT INTO geocode_cache (address, lon, lat)
	SELECT * FROM unnest($1::text[], $2::float8[], $3::float8[])
	ON CONFLICT (address) DO UPDATE
	SET lon = EXCLUDED.lon,
		lat = EXCLUDED.lat;
	`, keys, lons, lats)
	if err != nil {
		return fmt.Errorf("insert geocode cache: %d rows: %w", len(keys), err)
	}
	return nil
}
