package flows

import "context"

// LogoutDeps captures logout flow dependencies.
type LogoutDeps struct {
	Post  func(ctx context.Context, path string, body, out any) error
	Clear func(ctx context.Context) error
	Warn  func(err error)
}

// RunLogout invalidates the session server-side on a best-effort basis and
// always clears local state. Logout succeeds client-side even when the
// network call does not; only a failure to clear is reported.
func RunLogout(ctx context.Context, path string, deps LogoutDeps) error {
	if err := deps.Post(ctx, path, nil, nil); err != nil && deps.Warn != nil {
		deps.Warn(err)
	}
	return deps.Clear(ctx)
}
