package shopauth

import (
	"errors"
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/storefront-go/shopauth/internal/events"
	"github.com/storefront-go/shopauth/internal/metrics"
	"github.com/storefront-go/shopauth/jwt"
	"github.com/storefront-go/shopauth/refresh"
	"github.com/storefront-go/shopauth/session"
	"github.com/storefront-go/shopauth/storage"
	"github.com/storefront-go/shopauth/transport"
)

// Builder assembles an [Engine]. Configure during initialization, call
// [Builder.Build] once, and treat the result as immutable.
type Builder struct {
	config Config

	storageKV  storage.KV
	redis      redis.UniversalClient
	httpClient *http.Client

	logger    zerolog.Logger
	loggerSet bool

	eventSink         events.Sink
	onUnauthenticated func()

	built bool
}

// New creates a builder with the default configuration.
func New() *Builder {
	return &Builder{config: defaultConfig()}
}

// WithConfig replaces the configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithBaseURL sets the API base URL without replacing the whole config.
func (b *Builder) WithBaseURL(baseURL string) *Builder {
	b.config.API.BaseURL = baseURL
	return b
}

// WithStorage injects the durable key-value capability the session persists
// through.
func (b *Builder) WithStorage(kv storage.KV) *Builder {
	b.storageKV = kv
	return b
}

// WithRedis uses a Redis client as the storage capability. Ignored when
// WithStorage is also set.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithHTTPClient replaces the HTTP client used for every request, including
// refresh calls.
func (b *Builder) WithHTTPClient(hc *http.Client) *Builder {
	b.httpClient = hc
	return b
}

// WithLogger sets the structured logger. Default is a no-op logger.
func (b *Builder) WithLogger(logger zerolog.Logger) *Builder {
	b.logger = logger
	b.loggerSet = true
	return b
}

// WithEventSink receives session lifecycle events. Setting a sink enables
// the event dispatcher regardless of Config.Events.Enabled.
func (b *Builder) WithEventSink(sink EventSink) *Builder {
	b.eventSink = sink
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// OnUnauthenticated registers the callback invoked when the session becomes
// irrecoverable (refresh rejected, session cleared). This is where a UI
// performs its redirect to the login entry point.
func (b *Builder) OnUnauthenticated(fn func()) *Builder {
	b.onUnauthenticated = fn
	return b
}

// Build wires the engine. It validates the configuration, resolves the
// storage capability, and constructs the store, inspector, coordinator, and
// request pipeline. A builder can only be used once.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	b.built = true

	cfg := cloneConfig(b.config)
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	kv := b.storageKV
	if kv == nil && b.redis != nil {
		kv = storage.NewRedis(b.redis, cfg.Storage.RedisPrefix)
	}
	if kv == nil {
		return nil, errors.New("storage capability required (WithStorage or WithRedis)")
	}

	logger := zerolog.Nop()
	if b.loggerSet {
		logger = b.logger
	}

	hc := b.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.API.Timeout}
	}

	e := &Engine{
		config:            cfg,
		store:             session.NewStore(kv),
		inspector:         jwt.NewInspector(cfg.Token.ExpiryMargin),
		logger:            logger,
		onUnauthenticated: b.onUnauthenticated,
		metrics: metrics.New(metrics.Config{
			Enabled: cfg.Metrics.Enabled,
		}),
		events: events.NewDispatcher(events.Config{
			Enabled:    cfg.Events.Enabled || b.eventSink != nil,
			BufferSize: cfg.Events.BufferSize,
			DropIfFull: cfg.Events.DropIfFull,
		}, b.eventSink),
		state: AuthState{Status: StatusUninitialized},
	}

	e.coordinator = refresh.New(
		e.store,
		e.inspector,
		transport.NewRefreshFunc(hc, cfg.API.BaseURL, cfg.API.RefreshPath, logger),
		refresh.WithJoinHook(func() { e.metrics.Inc(metrics.MetricRefreshJoined) }),
		refresh.WithSuccessHook(e.onRefreshSuccess),
		refresh.WithFailureHook(e.onRefreshFailure),
	)

	e.client = transport.New(
		cfg.API.BaseURL,
		transport.WithHTTPClient(hc),
		transport.WithTokenSource(e.coordinator),
		transport.WithLogger(logger),
		transport.WithRetryHook(func() { e.metrics.Inc(metrics.MetricRequestRetried) }),
	)

	return e, nil
}
