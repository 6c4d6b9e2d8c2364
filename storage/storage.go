package storage

import "context"

// Well-known keys used by the session layer. Each key is independently
// settable and clearable; the session store decides which ones form a unit.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUserData     = "user_data"
	KeyCartData     = "cart_data"
	KeyTheme        = "theme"
	KeyLanguage     = "language"
)

// KV is the durable key-value capability injected into the session store.
//
// Implementations must represent a missing key as ok=false with a nil error.
// All methods must be safe for concurrent use.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
