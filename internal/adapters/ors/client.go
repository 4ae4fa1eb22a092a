package ors

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"donation-route-service/internal/ports"

	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://api.openrouteservice.org"
	defaultProfile = "driving-car"
	maxRetries     = 3
)

type Options struct {
	APIKey  string
	BaseURL string
	Profile string
	// Country restricts geocoding results, e.g. "US". Empty means worldwide.
	Country string
	Cache   ports.GeocodeCache
	// DirectionsCache is optional; nil disables route summary caching.
	DirectionsCache ports.DirectionsCache
	Logger          *zap.Logger
	// HTTPClient defaults to a client with a 10s timeout.
	HTTPClient *http.Client
	// RetryInterval is the first backoff delay; defaults to 200ms.
	RetryInterval time.Duration
}

// Client talks to OpenRouteService. It implements ports.BatchGeocoder and
// ports.DirectionsProvider and is safe for concurrent use.
//
// It coordinates:
//   - Address normalization
//   - Persistent geocode and directions caching
//   - External API calls with retry/backoff
type Client struct {
	session       *http.Client
	apiKey        string
	baseURL       string
	profile       string
	country       string
	cache         ports.GeocodeCache
	routes        ports.DirectionsCache
	logger        *zap.Logger
	retryInterval time.Duration
}

func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("ORS api key is empty")
	}

	c := &Client{
		session:       opts.HTTPClient,
		apiKey:        opts.APIKey,
		baseURL:       strings.TrimRight(opts.BaseURL, "/"),
		profile:       opts.Profile,
		country:       opts.Country,
		cache:         opts.Cache,
		routes:        opts.DirectionsCache,
		logger:        opts.Logger,
		retryInterval: opts.RetryInterval,
	}
	if c.session == nil {
		c.session = &http.Client{Timeout: 10 * time.Second}
	}
	if c.baseURL == "" {
		c.baseURL = defaultBaseURL
	}
	if c.profile == "" {
		c.profile = defaultProfile
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.retryInterval <= 0 {
		c.retryInterval = 200 * time.Millisecond
	}
	return c, nil
}

// normalize ensures consistent cache keys by collapsing whitespace.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
