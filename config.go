package shopauth

import (
	"errors"
	"strings"
	"time"

	"github.com/storefront-go/shopauth/jwt"
	"github.com/storefront-go/shopauth/transport"
)

// Config is the full engine configuration. Construct one, hand it to
// [Builder.WithConfig], and treat it as immutable afterwards; Build clones it.
type Config struct {
	API     APIConfig
	Token   TokenConfig
	Storage StorageConfig
	Events  EventsConfig
	Metrics MetricsConfig
}

// APIConfig locates the storefront API and its auth endpoints.
type APIConfig struct {
	// BaseURL is required, e.g. "https://shop.example.com/api".
	BaseURL string

	// Timeout bounds every request. Default 10s.
	Timeout time.Duration

	LoginPath    string // default "/auth/signin"
	RegisterPath string // default "/auth/signup"
	RefreshPath  string // default "/auth/refresh-token"
	LogoutPath   string // default "/auth/signout"
}

// TokenConfig tunes local expiry detection.
type TokenConfig struct {
	// ExpiryMargin is how long before the expiry claim a token is already
	// treated as expired, so it is refreshed proactively instead of being
	// rejected mid-flight. Default 300s.
	ExpiryMargin time.Duration
}

// StorageConfig tunes the storage capability.
type StorageConfig struct {
	// RedisPrefix namespaces keys when the engine is built with a Redis
	// client. Ignored for other storage backends. Default "sfa".
	RedisPrefix string
}

// EventsConfig controls the session event dispatcher.
type EventsConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls the in-process counters.
type MetricsConfig struct {
	Enabled bool
}

func defaultConfig() Config {
	return Config{
		API: APIConfig{
			Timeout:      transport.DefaultTimeout,
			LoginPath:    "/auth/signin",
			RegisterPath: "/auth/signup",
			RefreshPath:  "/auth/refresh-token",
			LogoutPath:   "/auth/signout",
		},
		Token: TokenConfig{
			ExpiryMargin: jwt.DefaultMargin,
		},
		Events: EventsConfig{
			BufferSize: 64,
			DropIfFull: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	// All fields are value types today; the clone exists so Build can apply
	// defaults without mutating the caller's struct.
	return cfg
}

// Validate checks the configuration for use by [Builder.Build].
func (c *Config) Validate() error {
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return errors.New("API.BaseURL required")
	}
	if c.API.Timeout < 0 {
		return errors.New("API.Timeout must not be negative")
	}
	if c.Token.ExpiryMargin < 0 {
		return errors.New("Token.ExpiryMargin must not be negative")
	}
	for _, path := range []string{c.API.LoginPath, c.API.RegisterPath, c.API.RefreshPath, c.API.LogoutPath} {
		if path != "" && !strings.HasPrefix(path, "/") {
			return errors.New("API paths must start with /")
		}
	}
	return nil
}

// applyDefaults fills zero values with the defaults documented on the fields.
func (c *Config) applyDefaults() {
	defaults := defaultConfig()
	if c.API.Timeout == 0 {
		c.API.Timeout = defaults.API.Timeout
	}
	if c.API.LoginPath == "" {
		c.API.LoginPath = defaults.API.LoginPath
	}
	if c.API.RegisterPath == "" {
		c.API.RegisterPath = defaults.API.RegisterPath
	}
	if c.API.RefreshPath == "" {
		c.API.RefreshPath = defaults.API.RefreshPath
	}
	if c.API.LogoutPath == "" {
		c.API.LogoutPath = defaults.API.LogoutPath
	}
	if c.Token.ExpiryMargin == 0 {
		c.Token.ExpiryMargin = defaults.Token.ExpiryMargin
	}
	if c.Events.BufferSize == 0 {
		c.Events.BufferSize = defaults.Events.BufferSize
	}
}
