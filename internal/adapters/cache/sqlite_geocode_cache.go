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
	_ "modernc.org/sqlite"
)

// SQLite backed cache mapping address strings to geographic coordinates.
// Used when the service runs without a shared database for geocodes.
type SqliteGeocodeCache struct {
	DB     *sql.DB
	logger *zap.Logger
}

func NewSqliteGeocodeCache(db *sql.DB, logger *zap.Logger) *SqliteGeocodeCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SqliteGeocodeCache{DB: db, logger: logger}
}

// OpenSqlite opens (creating if needed) the database file at path.
func OpenSqlite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	return db, nil
}

// EnsureSchema creates the cache table when it does not exist.
func (s *SqliteGeocodeCache) EnsureSchema(ctx context.Context) error {
	_, err := s.DB.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS geocode_cache (
		address TEXT PRIMARY KEY,
		lon     REAL NOT NULL,
		lat     REAL NOT NULL
	);
	`)
	if err != nil {
		return fmt.Errorf("sqlite geocode cache: create table: %w", err)
	}
	return nil
}

// Fetch cached coordinates for the given addresses.
func (s *SqliteGeocodeCache) GetMany(
	ctx context.Context,
	addresses []string,
) (_ map[string]domain.Coordinates, err error) {
	defer obs.Time(ctx, s.logger, "geocode.cache.sqlite.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("geocode cache: db is nil")
	}

	uniq := uniqueKeys(addresses)
	if len(uniq) == 0 {
		return map[string]domain.Coordinates{}, nil
	}

	args := make([]any, len(uniq))
	for i, a := range uniq {
		args[i] = a
	}

	// Only the placeholder structure is interpolated; values stay parameterized.
	q := fmt.Sprintf(`
	SELECT address, lon, lat
	FROM geocode_cache
	WHERE address IN (%s);
	`, strings.TrimSuffix(strings.Repeat("?,", len(uniq)), ","))

	rows, err := s.DB.QueryContext(ctx, q, args...)
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

// Store address -> coordinate mappings in the cache.
func (s *SqliteGeocodeCache) PutMany(ctx context.Context, results map[string]domain.Coordinates) (err error) {
	defer obs.Time(ctx, s.logger, "geocode.cache.sqlite.PutMany")(&err)

	if s.DB == nil {
		return errors.New("geocode cache: db is nil")
	}
	if len(results) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert geocode cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT OR REPLACE INTO geocode_cache (address, lon, lat)
	VALUES (?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("insert geocode cache: db prepare: %w", err)
	}
	defer stmt.Close()

	for _, addr := range sortedKeys(results) {
		if strings.TrimSpace(addr) == "" {
			return errors.New("insert geocode cache: empty address key")
		}
		c := results[addr]
		if _, err := stmt.ExecContext(ctx, addr, c.Lon, c.Lat); err != nil {
			return fmt.Errorf("insert geocode cache address=%q: %w", addr, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert geocode cache commit: %w", err)
	}

	return nil
}
