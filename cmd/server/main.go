package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"donation-route-service/internal/adapters/cache"
	"donation-route-service/internal/adapters/events"
	"donation-route-service/internal/adapters/ors"
	"donation-route-service/internal/adapters/repositories"
	"donation-route-service/internal/api"
	"donation-route-service/internal/config"
	"donation-route-service/internal/platform/db"
	"donation-route-service/internal/platform/obs"
	"donation-route-service/internal/ports"
	"donation-route-service/internal/services"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// main is the application composition root.
// It wires concrete adapters (Postgres, ORS, brokers) behind ports and starts the HTTP server.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := obs.NewLogger(cfg.AppEnv, "donation-route-service")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	os.Exit(exitCode(logger, run(cfg, logger)))
}

// exitCode logs the error that stopped the server and flushes the logger
// before the process exits.
func exitCode(logger *zap.Logger, err error) int {
	code := 0
	if err != nil {
		logger.Error("server stopped", zap.Error(err))
		code = 1
	}
	_ = logger.Sync()
	return code
}

func run(cfg *config.Config, logger *zap.Logger) error {
	if err := cfg.RequireServer(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pg, err := db.Open(ctx, cfg.DatabaseURL, db.DefaultPoolOptions())
	if err != nil {
		return err
	}
	defer pg.Close()

	if err := db.Migrate(pg, logger); err != nil {
		return err
	}

	geocodeCache, closeCache, err := newGeocodeCache(ctx, cfg, pg, logger)
	if err != nil {
		return err
	}
	defer closeCache()

	client, err := ors.NewClient(ors.Options{
		APIKey:  cfg.ORSAPIKey,
		BaseURL: cfg.ORSBaseURL,
		Profile: cfg.ORSProfile,
		Country: cfg.GeocodeCountry,
		Cache:   geocodeCache,

		DirectionsCache: cache.NewPostgresDirectionsCache(pg, logger.Named("directions-cache")),
		Logger:          logger.Named("ors"),
	})
	if err != nil {
		return err
	}

	logPublisher := events.NewLogPublisher(logger.Named("events"))
	var proximity ports.ProximityPublisher = logPublisher
	var status ports.StatusPublisher = logPublisher

	if cfg.RabbitMQURL != "" {
		conn, err := events.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			return err
		}
		defer conn.Close()

		pub, err := events.NewRabbitMQProximityPublisher(conn)
		if err != nil {
			return err
		}
		defer pub.Close()
		proximity = pub
		logger.Info("proximity prompts go to rabbitmq")
	}

	if len(cfg.KafkaBrokers) > 0 {
		pub := events.NewKafkaStatusPublisher(cfg.KafkaBrokers, cfg.KafkaStatusTopic)
		defer pub.Close()
		status = pub
		logger.Info("status changes go to kafka", zap.Strings("brokers", cfg.KafkaBrokers),
			zap.String("topic", cfg.KafkaStatusTopic))
	}

	repo := repositories.NewPostgresDonationRepository(pg, logger.Named("repo"))
	svc, err := services.NewDriverService(services.DriverDeps{
		Repo:       repo,
		Geocoder:   client,
		Directions: client,
		Proximity:  proximity,
		Status:     status,
		Logger:     logger.Named("driver"),
	}, services.DriverConfig{
		ProximityKm:        cfg.Driver.ProximityKm,
		DeliveryRadiusKm:   cfg.Driver.DeliveryRadiusKm,
		CorridorBufferDeg:  cfg.Driver.CorridorBufferDeg,
		MaxRecommendations: cfg.Driver.MaxRecommendations,
	})
	if err != nil {
		return err
	}

	if cfg.MQTTBroker != "" {
		mc, err := events.NewMQTT(cfg.MQTTBroker, cfg.MQTTClientID)
		if err != nil {
			return err
		}
		defer mc.Disconnect(250)

		sub := events.NewMQTTPositionSubscriber(mc, svc, logger.Named("mqtt"))
		if err := sub.Start(); err != nil {
			return fmt.Errorf("mqtt subscribe: %w", err)
		}
		defer func() { _ = sub.Stop() }()
		logger.Info("listening for driver positions", zap.String("broker", cfg.MQTTBroker))
	}

	router := api.NewRouter(api.RouterDeps{
		Repo:           repo,
		Service:        svc,
		DB:             pg,
		Logger:         logger.Named("http"),
		AllowedOrigins: cfg.CORSOrigins,
	})

	// Timeouts are tuned for cold-cache route planning (external API latency).
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// newGeocodeCache selects the geocode cache backend named by GEOCODE_CACHE.
func newGeocodeCache(
	ctx context.Context,
	cfg *config.Config,
	pg *sql.DB,
	logger *zap.Logger,
) (ports.GeocodeCache, func(), error) {
	l := logger.Named("geocode-cache")
	noop := func() {}

	switch cfg.GeocodeCache {
	case "postgres":
		return cache.NewPostgresGeocodeCache(pg, l), noop, nil
	case "sqlite":
		sdb, err := cache.OpenSqlite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		c := cache.NewSqliteGeocodeCache(sdb, l)
		if err := c.EnsureSchema(ctx); err != nil {
			_ = sdb.Close()
			return nil, nil, err
		}
		return c, func() { _ = sdb.Close() }, nil
	case "redis":
		rc := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err := rc.Ping(ctx).Err(); err != nil {
			_ = rc.Close()
			return nil, nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
		}
		return cache.NewRedisGeocodeCache(rc, cfg.GeocodeTTL, l), func() { _ = rc.Close() }, nil
	default:
		return cache.NopGeocodeCache{}, noop, nil
	}
}
