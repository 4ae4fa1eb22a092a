package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PoolOptions bounds the connection pool held by the donation store.
type PoolOptions struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	PingTimeout     time.Duration
}

func DefaultPoolOptions() PoolOptions {
	return PoolOptions{
		MaxOpenConns:    10,
		MaxIdleConns:    10,
		ConnMaxLifetime: 30 * time.Minute,
		PingTimeout:     5 * time.Second,
	}
}

// Open connects to the donation database through the pgx stdlib driver and
// verifies the connection before returning.
func Open(ctx context.Context, databaseURL string, opts PoolOptions) (*sql.DB, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("db.Open: empty database URL")
	}

	pg, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("db.Open: open postgres database: %w", err)
	}

	pg.SetMaxOpenConns(opts.MaxOpenConns)
	pg.SetMaxIdleConns(opts.MaxIdleConns)
	pg.SetConnMaxLifetime(opts.ConnMaxLifetime)

	if opts.PingTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.PingTimeout)
		defer cancel()
	}

	if err := pg.PingContext(ctx); err != nil {
		_ = pg.Close()
		return nil, fmt.Errorf("db.Open: verify postgres connection: %w", err)
	}

	return pg, nil
}
