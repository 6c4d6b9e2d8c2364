package shopauth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/storefront-go/shopauth/internal/events"
	"github.com/storefront-go/shopauth/internal/flows"
	"github.com/storefront-go/shopauth/internal/metrics"
	"github.com/storefront-go/shopauth/jwt"
	"github.com/storefront-go/shopauth/refresh"
	"github.com/storefront-go/shopauth/session"
	"github.com/storefront-go/shopauth/transport"
)

// Engine is the session facade: the only surface application code talks to.
// Build one with [Builder]; all methods are safe for concurrent use.
type Engine struct {
	config            Config
	store             *session.Store
	inspector         jwt.Inspector
	coordinator       *refresh.Coordinator
	client            *transport.Client
	logger            zerolog.Logger
	metrics           *metrics.Metrics
	events            *events.Dispatcher
	onUnauthenticated func()

	stateMu sync.Mutex
	state   AuthState
}

// Close flushes and stops the event dispatcher.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.events.Close()
}

// Client exposes the authenticated request pipeline for all other API calls
// the application makes (products, cart, orders). Responses and errors carry
// the same envelope semantics as the engine's own calls.
func (e *Engine) Client() *transport.Client {
	if e == nil {
		return nil
	}
	return e.client
}

// Login authenticates with the credentials and replaces the stored session.
// A rejected login leaves stored state untouched; the server's message is
// available through errors.As with *transport.APIError.
func (e *Engine) Login(ctx context.Context, creds Credentials) (*User, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	e.transition(StateEventStart())

	result := flows.RunLogin(ctx, e.config.API.LoginPath, creds, e.authDeps())
	return e.finishAuth(ctx, result, events.TypeLogin,
		metrics.MetricLoginSuccess, metrics.MetricLoginFailure)
}

// Register creates an account and establishes a session with the same
// contract as [Engine.Login].
func (e *Engine) Register(ctx context.Context, reg Registration) (*User, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	e.transition(StateEventStart())

	result := flows.RunRegister(ctx, e.config.API.RegisterPath, reg, e.authDeps())
	return e.finishAuth(ctx, result, events.TypeRegister,
		metrics.MetricRegisterSuccess, metrics.MetricRegisterFailure)
}

// Logout invalidates the session server-side on a best-effort basis and
// always clears stored state. It fails only when local storage cannot be
// cleared.
func (e *Engine) Logout(ctx context.Context) error {
	if e == nil {
		return ErrEngineNotReady
	}
	user := e.CurrentUser()

	err := flows.RunLogout(ctx, e.config.API.LogoutPath, flows.LogoutDeps{
		Post:  e.client.Post,
		Clear: e.store.ClearAll,
		Warn: func(err error) {
			e.logger.Warn().Err(err).Msg("server-side logout failed, clearing locally")
		},
	})

	e.metrics.Inc(metrics.MetricLogout)
	e.emit(ctx, events.TypeLogout, user, err)
	e.transition(StateEventSignedOut())
	return err
}

// InitializeSession restores the session at application start. It returns
// nil without error when no session is stored or when the stored session is
// irrecoverable (in which case all session keys are cleared).
func (e *Engine) InitializeSession(ctx context.Context) (*User, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	e.transition(StateEventStart())

	result := flows.RunInitialize(ctx, flows.InitializeDeps{
		User:        e.store.User,
		AccessToken: e.store.AccessToken,
		IsExpired:   e.inspector.IsExpired,
		ValidToken:  e.coordinator.Token,
		Clear:       e.store.ClearAll,
	})

	if result.User != nil {
		e.metrics.Inc(metrics.MetricSessionRestored)
		e.transition(StateEventRestored(result.User))
		return result.User, nil
	}

	if result.Cleared {
		e.metrics.Inc(metrics.MetricSessionCleared)
		e.emit(ctx, events.TypeSessionCleared, nil, result.Err)
	}
	e.transition(StateEventSignInFailed(result.Err))
	return nil, result.Err
}

// CurrentUser returns the cached user without any network I/O, or nil when
// the session is unauthenticated.
func (e *Engine) CurrentUser() *User {
	if e == nil {
		return nil
	}
	user, err := e.store.User(context.Background())
	if err != nil {
		return nil
	}
	return user
}

// HasRole reports whether the cached user carries the role. Pure read.
func (e *Engine) HasRole(role Role) bool {
	return e.CurrentUser().HasRole(role)
}

// HasAnyRole reports whether the cached user carries any of the roles.
// Pure read.
func (e *Engine) HasAnyRole(roles ...Role) bool {
	return e.CurrentUser().HasAnyRole(roles...)
}

// UpdateUser merges the non-zero fields of partial into the cached user and
// persists the result. Tokens are untouched.
func (e *Engine) UpdateUser(ctx context.Context, partial User) error {
	if e == nil {
		return ErrEngineNotReady
	}
	return e.store.Merge(ctx, partial)
}

// State returns the current authentication state.
func (e *Engine) State() AuthState {
	if e == nil {
		return AuthState{Status: StatusUninitialized}
	}
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	return e.state
}

// MetricsSnapshot returns a point-in-time copy of all counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}

// EventsDropped reports how many session events were discarded because the
// dispatcher buffer was full.
func (e *Engine) EventsDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.events.Dropped()
}

func (e *Engine) authDeps() flows.AuthDeps {
	return flows.AuthDeps{
		Post:      e.client.Post,
		SetTokens: e.store.SetTokens,
		SetUser:   e.store.SetUser,
		Clear:     e.store.ClearAll,
	}
}

func (e *Engine) finishAuth(ctx context.Context, result flows.AuthResult, eventType string, successID, failureID metrics.MetricID) (*User, error) {
	if result.Failure == flows.AuthFailureNone {
		e.metrics.Inc(successID)
		e.emit(ctx, eventType, result.User, nil)
		e.transition(StateEventSignedIn(result.User))
		return result.User, nil
	}

	e.metrics.Inc(failureID)
	e.emit(ctx, eventType, nil, result.Err)

	var err error
	switch result.Failure {
	case flows.AuthFailureRequest:
		err = fmt.Errorf("%w: %w", ErrInvalidCredentials, result.Err)
	case flows.AuthFailureMalformed:
		err = fmt.Errorf("%w: %w", ErrAuthResponseMalformed, result.Err)
	default:
		err = fmt.Errorf("%w: %w", ErrSessionPersist, result.Err)
	}
	e.transition(StateEventSignInFailed(err))
	return nil, err
}

func (e *Engine) onRefreshSuccess() {
	e.metrics.Inc(metrics.MetricRefreshSuccess)
	e.emit(context.Background(), events.TypeRefresh, nil, nil)
}

// onRefreshFailure runs after the coordinator has cleared the session: the
// stored credentials are gone and the application must send the user back to
// the login entry point.
func (e *Engine) onRefreshFailure(err error) {
	e.metrics.Inc(metrics.MetricRefreshFailure)
	e.metrics.Inc(metrics.MetricUnauthorizedRedirect)
	e.logger.Warn().Err(err).Msg("refresh failed, session cleared")
	e.emit(context.Background(), events.TypeSessionExpired, nil, err)
	e.transition(StateEventCleared(err))

	if e.onUnauthenticated != nil {
		e.onUnauthenticated()
	}
}

func (e *Engine) emit(ctx context.Context, eventType string, user *User, err error) {
	event := events.Event{
		Timestamp: time.Now(),
		EventType: eventType,
		Success:   err == nil,
	}
	if user != nil {
		event.UserID = user.ID
	}
	if err != nil {
		event.Error = err.Error()
	}
	e.events.Emit(ctx, event)
}

func (e *Engine) transition(event StateEvent) {
	e.stateMu.Lock()
	e.state = Transition(e.state, event)
	e.stateMu.Unlock()
}
