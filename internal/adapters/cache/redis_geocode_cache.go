package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"donation-route-service/internal/domain"
	"donation-route-service/internal/platform/obs"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisKeyPrefix = "geocode:"

// RedisGeocodeCache stores coordinates as "lon,lat" strings under
// geocode:<address>. A zero TTL keeps entries forever.
type RedisGeocodeCache struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisGeocodeCache(client redis.UniversalClient, ttl time.Duration, logger *zap.Logger) *RedisGeocodeCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisGeocodeCache{client: client, ttl: ttl, logger: logger}
}

func (s *RedisGeocodeCache) GetMany(
	ctx context.Context,
	addresses []string,
) (_ map[string]domain.Coordinates, err error) {
	defer obs.Time(ctx, s.logger, "geocode.cache.redis.GetMany")(&err)

	if s.client == nil {
		return nil, errors.New("geocode cache: redis client is nil")
	}

	uniq := uniqueKeys(addresses)
	if len(uniq) == 0 {
		return map[string]domain.Coordinates{}, nil
	}

	keys := make([]string, len(uniq))
	for i, a := range uniq {
		keys[i] = redisKeyPrefix + a
	}

	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("get geocode cache: mget: %w", err)
	}

	out := make(map[string]domain.Coordinates, len(uniq))
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		c, err := parseLonLat(raw)
		if err != nil {
			s.logger.Warn("dropping malformed geocode cache entry",
				zap.String("key", keys[i]), zap.Error(err))
			continue
		}
		out[uniq[i]] = c
	}
	return out, nil
}

func (s *RedisGeocodeCache) PutMany(ctx context.Context, results map[string]domain.Coordinates) (err error) {
	defer obs.Time(ctx, s.logger, "geocode.cache.redis.PutMany")(&err)

	if s.client == nil {
		return errors.New("geocode cache: redis client is nil")
	}
	if len(results) == 0 {
		return nil
	}

	pipe := s.client.Pipeline()
	for _, addr := range sortedKeys(results) {
		if strings.TrimSpace(addr) == "" {
			return errors.New("insert geocode cache: empty address key")
		}
		pipe.Set(ctx, redisKeyPrefix+addr, formatLonLat(results[addr]), s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("insert geocode cache: pipeline: %w", err)
	}
	return nil
}

func formatLonLat(c domain.Coordinates) string {
	return strconv.FormatFloat(c.Lon, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lat, 'f', -1, 64)
}

func parseLonLat(s string) (domain.Coordinates, error) {
	lonStr, latStr, ok := strings.Cut(s, ",")
	if !ok {
		return domain.Coordinates{}, fmt.Errorf("parse %q: missing separator", s)
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("parse lon %q: %w", lonStr, err)
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("parse lat %q: %w", latStr, err)
	}
	return domain.Coordinates{Lon: lon, Lat: lat}, nil
}
