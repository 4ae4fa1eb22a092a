package cache

import (
	"context"
	"testing"

	"donation-route-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestSqliteGeocodeCacheRoundTrip(t *testing.T) {
	db, err := OpenSqlite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	c := NewSqliteGeocodeCache(db, zaptest.NewLogger(t))
	require.NoError(t, c.EnsureSchema(ctx))
	require.NoError(t, c.EnsureSchema(ctx))

	require.NoError(t, c.PutMany(ctx, map[string]domain.Coordinates{
		"1 Main St": {Lon: -122.1, Lat: 37.4},
		"2 Oak Ave": {Lon: -122.2, Lat: 37.5},
	}))
	require.NoError(t, c.PutMany(ctx, map[string]domain.Coordinates{
		"2 Oak Ave": {Lon: -121, Lat: 36},
	}))

	got, err := c.GetMany(ctx, []string{"2 Oak Ave", "1 Main St", "missing"})
	require.NoError(t, err)
	assert.Equal(t, map[string]domain.Coordinates{
		"1 Main St": {Lon: -122.1, Lat: 37.4},
		"2 Oak Ave": {Lon: -121, Lat: 36},
	}, got)

	assert.Error(t, c.PutMany(ctx, map[string]domain.Coordinates{" ": {}}))
}
