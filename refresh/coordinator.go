package refresh

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/storefront-go/shopauth/jwt"
	"github.com/storefront-go/shopauth/session"
)

var (
	// ErrRefreshFailed is returned when a refresh attempt settles without a
	// new token pair. The winner receives it wrapped around the cause;
	// waiters receive it bare.
	ErrRefreshFailed = errors.New("token refresh failed")

	// ErrNoRefreshToken is returned when no refresh token is stored. This is
	// not a session failure: nothing is cleared, because there was no
	// authenticated session to lose.
	ErrNoRefreshToken = errors.New("no refresh token available")
)

// Func performs the network refresh call and returns the new token pair.
type Func func(ctx context.Context, refreshToken string) (access, refresh string, err error)

// Coordinator serializes refresh attempts. Construct with [New]; the zero
// value is not usable.
type Coordinator struct {
	store     *session.Store
	inspector jwt.Inspector
	fn        Func

	onJoin    func()
	onSuccess func()
	onFailure func(error)

	mu         sync.Mutex
	refreshing bool
	waiters    []chan settled
}

type settled struct {
	token string
	err   error
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithJoinHook runs fn every time a caller joins an in-flight refresh.
func WithJoinHook(fn func()) Option {
	return func(c *Coordinator) { c.onJoin = fn }
}

// WithSuccessHook runs fn after a refresh stores a new token pair.
func WithSuccessHook(fn func()) Option {
	return func(c *Coordinator) { c.onSuccess = fn }
}

// WithFailureHook runs fn after a failed refresh has cleared the session.
// It does not run for [ErrNoRefreshToken].
func WithFailureHook(fn func(error)) Option {
	return func(c *Coordinator) { c.onFailure = fn }
}

// New creates a coordinator over the given store, inspector, and refresh call.
func New(store *session.Store, inspector jwt.Inspector, fn Func, opts ...Option) *Coordinator {
	c := &Coordinator{store: store, inspector: inspector, fn: fn}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token returns a bearer token that is expected to outlive the safety margin.
// A stored token that is present and not expiring is returned without any
// coordination; otherwise the caller starts or joins a refresh.
func (c *Coordinator) Token(ctx context.Context) (string, error) {
	access, ok, err := c.store.AccessToken(ctx)
	if err == nil && ok && !c.inspector.IsExpired(access) {
		return access, nil
	}
	return c.startOrJoin(ctx)
}

// Force starts or joins a refresh regardless of the stored token's expiry.
// The pipeline uses it after the server rejects a token the inspector still
// considered valid.
func (c *Coordinator) Force(ctx context.Context) (string, error) {
	return c.startOrJoin(ctx)
}

func (c *Coordinator) startOrJoin(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.refreshing {
		waiter := make(chan settled, 1)
		c.waiters = append(c.waiters, waiter)
		c.mu.Unlock()

		if c.onJoin != nil {
			c.onJoin()
		}
		select {
		case result := <-waiter:
			return result.token, result.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	c.refreshing = true
	c.mu.Unlock()

	return c.run(ctx)
}

// run performs the refresh as the winner. The in-progress flag is cleared
// unconditionally on settlement, success or failure, however many waiters
// are queued.
func (c *Coordinator) run(ctx context.Context) (string, error) {
	refreshToken, ok, err := c.store.RefreshToken(ctx)
	if err == nil && !ok {
		err = ErrNoRefreshToken
	}
	if err != nil {
		c.settle("", ErrRefreshFailed)
		return "", err
	}

	access, newRefresh, err := c.fn(ctx, refreshToken)
	if err == nil {
		err = c.store.SetTokens(ctx, access, newRefresh)
	}
	if err != nil {
		_ = c.store.ClearAll(ctx)
		c.settle("", ErrRefreshFailed)
		if c.onFailure != nil {
			c.onFailure(err)
		}
		return "", fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}

	c.settle(access, nil)
	if c.onSuccess != nil {
		c.onSuccess()
	}
	return access, nil
}

func (c *Coordinator) settle(token string, err error) {
	c.mu.Lock()
	waiters := c.waiters
	c.waiters = nil
	c.refreshing = false
	c.mu.Unlock()

	// FIFO relative to enqueue order; each waiter channel is buffered so a
	// caller that gave up on its context cannot block settlement.
	for _, waiter := range waiters {
		waiter <- settled{token: token, err: err}
	}
}
