package shopauth

import (
	"io"

	"github.com/storefront-go/shopauth/internal/events"
	"github.com/storefront-go/shopauth/internal/flows"
	"github.com/storefront-go/shopauth/internal/metrics"
	"github.com/storefront-go/shopauth/session"
)

// Credentials is the login request body.
type Credentials = flows.Credentials

// Registration is the register request body.
type Registration = flows.Registration

// User is the cached authenticated identity.
type User = session.User

// Role is one of the closed set of role tags.
type Role = session.Role

const (
	RoleCustomer = session.RoleCustomer
	RoleSeller   = session.RoleSeller
	RoleSupport  = session.RoleSupport
	RoleAdmin    = session.RoleAdmin
)

// SessionEvent is a session lifecycle notification delivered to the
// configured [EventSink].
type SessionEvent = events.Event

// Event types carried by [SessionEvent].
const (
	EventLogin          = events.TypeLogin
	EventRegister       = events.TypeRegister
	EventRefresh        = events.TypeRefresh
	EventLogout         = events.TypeLogout
	EventSessionCleared = events.TypeSessionCleared
	EventSessionExpired = events.TypeSessionExpired
)

// EventSink receives [SessionEvent] values from the engine's dispatcher.
type EventSink = events.Sink

// NoOpSink is an [EventSink] that silently discards all events.
type NoOpSink = events.NoOpSink

// ChannelSink is a buffered channel-based [EventSink].
type ChannelSink = events.ChannelSink

// JSONWriterSink is an [EventSink] that writes JSON-encoded events to an
// [io.Writer].
type JSONWriterSink = events.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return events.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return events.NewJSONWriterSink(w)
}

// MetricID identifies a specific counter in the in-process metrics system.
type MetricID = metrics.MetricID

const (
	MetricLoginSuccess         = metrics.MetricLoginSuccess
	MetricLoginFailure         = metrics.MetricLoginFailure
	MetricRegisterSuccess      = metrics.MetricRegisterSuccess
	MetricRegisterFailure      = metrics.MetricRegisterFailure
	MetricRefreshSuccess       = metrics.MetricRefreshSuccess
	MetricRefreshFailure       = metrics.MetricRefreshFailure
	MetricRefreshJoined        = metrics.MetricRefreshJoined
	MetricRequestRetried       = metrics.MetricRequestRetried
	MetricUnauthorizedRedirect = metrics.MetricUnauthorizedRedirect
	MetricLogout               = metrics.MetricLogout
	MetricSessionRestored      = metrics.MetricSessionRestored
	MetricSessionCleared       = metrics.MetricSessionCleared
)

// MetricsSnapshot is a point-in-time deep copy of all counters.
type MetricsSnapshot = metrics.Snapshot
