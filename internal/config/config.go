package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every setting of the service. Values come from the process
// environment, optionally seeded from a local .env file.
type Config struct {
	Port        string
	AppEnv      string
	DatabaseURL string
	SeedPath    string

	GeocodeCache   string
	SQLitePath     string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	GeocodeTTL     time.Duration
	GeocodeCountry string

	ORSAPIKey  string
	ORSBaseURL string
	ORSProfile string

	RabbitMQURL      string
	KafkaBrokers     []string
	KafkaStatusTopic string
	MQTTBroker       string
	MQTTClientID     string

	CORSOrigins []string

	Driver DriverConfig
}

// DriverConfig tunes the driver-facing geometry.
type DriverConfig struct {
	ProximityKm        float64
	DeliveryRadiusKm   float64
	CorridorBufferDeg  float64
	MaxRecommendations int
}

var defaults = map[string]any{
	"PORT":                "8080",
	"APP_ENV":             "production",
	"SEED_PATH":           "data/seeds/donations.json",
	"GEOCODE_CACHE":       "postgres",
	"SQLITE_PATH":         "data/geocode.db",
	"REDIS_ADDR":          "localhost:6379",
	"REDIS_DB":            0,
	"GEOCODE_TTL":         "720h",
	"ORS_BASE_URL":        "https://api.openrouteservice.org",
	"ORS_PROFILE":         "driving-car",
	"KAFKA_STATUS_TOPIC":  "donation.status",
	"MQTT_CLIENT_ID":      "donation-route-service",
	"PROXIMITY_KM":        0.2,
	"DELIVERY_RADIUS_KM":  0.5,
	"CORRIDOR_BUFFER_DEG": 0.01,
	"MAX_RECOMMENDATIONS": 3,
}

var validCaches = map[string]bool{"postgres": true, "sqlite": true, "redis": true, "none": true}

// Load reads the environment. A missing .env file is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()

	cfg := &Config{
		Port:        v.GetString("PORT"),
		AppEnv:      v.GetString("APP_ENV"),
		DatabaseURL: strings.TrimSpace(v.GetString("DATABASE_URL")),
		SeedPath:    v.GetString("SEED_PATH"),

		GeocodeCache:   strings.ToLower(strings.TrimSpace(v.GetString("GEOCODE_CACHE"))),
		SQLitePath:     v.GetString("SQLITE_PATH"),
		RedisAddr:      v.GetString("REDIS_ADDR"),
		RedisPassword:  v.GetString("REDIS_PASSWORD"),
		RedisDB:        v.GetInt("REDIS_DB"),
		GeocodeTTL:     v.GetDuration("GEOCODE_TTL"),
		GeocodeCountry: v.GetString("GEOCODE_COUNTRY"),

		ORSAPIKey:  strings.TrimSpace(v.GetString("ORS_API_KEY")),
		ORSBaseURL: strings.TrimRight(v.GetString("ORS_BASE_URL"), "/"),
		ORSProfile: v.GetString("ORS_PROFILE"),

		RabbitMQURL:      strings.TrimSpace(v.GetString("RABBITMQ_URL")),
		KafkaBrokers:     splitList(v.GetString("KAFKA_BROKERS")),
		KafkaStatusTopic: v.GetString("KAFKA_STATUS_TOPIC"),
		MQTTBroker:       strings.TrimSpace(v.GetString("MQTT_BROKER")),
		MQTTClientID:     v.GetString("MQTT_CLIENT_ID"),

		CORSOrigins: splitList(v.GetString("CORS_ORIGINS")),

		Driver: DriverConfig{
			ProximityKm:        v.GetFloat64("PROXIMITY_KM"),
			DeliveryRadiusKm:   v.GetFloat64("DELIVERY_RADIUS_KM"),
			CorridorBufferDeg:  v.GetFloat64("CORRIDOR_BUFFER_DEG"),
			MaxRecommendations: v.GetInt("MAX_RECOMMENDATIONS"),
		},
	}

	if !validCaches[cfg.GeocodeCache] {
		return nil, fmt.Errorf("load config: GEOCODE_CACHE must be one of postgres, sqlite, redis, none; got %q", cfg.GeocodeCache)
	}
	if cfg.Driver.ProximityKm <= 0 || cfg.Driver.DeliveryRadiusKm <= 0 {
		return nil, errors.New("load config: PROXIMITY_KM and DELIVERY_RADIUS_KM must be positive")
	}
	if cfg.Driver.CorridorBufferDeg < 0 || cfg.Driver.MaxRecommendations < 0 {
		return nil, errors.New("load config: CORRIDOR_BUFFER_DEG and MAX_RECOMMENDATIONS must not be negative")
	}

	return cfg, nil
}

// RequireServer checks the settings the HTTP server cannot start without.
func (c *Config) RequireServer() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.ORSAPIKey == "" {
		return errors.New("ORS_API_KEY is required")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
