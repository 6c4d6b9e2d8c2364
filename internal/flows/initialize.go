package flows

import (
	"context"

	"github.com/storefront-go/shopauth/session"
)

// InitializeDeps captures session restore dependencies.
type InitializeDeps struct {
	User        func(ctx context.Context) (*session.User, error)
	AccessToken func(ctx context.Context) (string, bool, error)
	IsExpired   func(token string) bool
	ValidToken  func(ctx context.Context) (string, error)
	Clear       func(ctx context.Context) error
}

// InitializeResult reports the restored session, if any.
type InitializeResult struct {
	User    *session.User
	Cleared bool
	Err     error
}

// RunInitialize restores the session at application start. A missing user or
// access token means an unauthenticated start with stored state untouched.
// An expired access token is refreshed through the coordinator; when that
// fails the session is irrecoverable, everything is cleared, and the start is
// unauthenticated rather than an error.
func RunInitialize(ctx context.Context, deps InitializeDeps) InitializeResult {
	user, err := deps.User(ctx)
	if err != nil {
		// Corrupt cached user: clear rather than limp along with it.
		clearErr := deps.Clear(ctx)
		return InitializeResult{Cleared: true, Err: clearErr}
	}

	access, ok, err := deps.AccessToken(ctx)
	if err != nil {
		return InitializeResult{Err: err}
	}
	if user == nil || !ok || access == "" {
		return InitializeResult{}
	}

	if deps.IsExpired(access) {
		if _, err := deps.ValidToken(ctx); err != nil {
			// The coordinator clears on real refresh failures; clearing here
			// as well covers the missing-refresh-token case and is idempotent.
			_ = deps.Clear(ctx)
			return InitializeResult{Cleared: true}
		}
	}

	return InitializeResult{User: user}
}
