package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultMargin is the recommended safety margin. A token inside the margin
// is refreshed proactively instead of being rejected by the server mid-flight.
const DefaultMargin = 300 * time.Second

// Inspector answers expiry questions about bearer tokens. The zero value is
// not usable; construct with [NewInspector].
type Inspector struct {
	margin time.Duration
	now    func() time.Time
}

// NewInspector creates an inspector with the given margin. A non-positive
// margin falls back to [DefaultMargin].
func NewInspector(margin time.Duration) Inspector {
	if margin <= 0 {
		margin = DefaultMargin
	}
	return Inspector{margin: margin, now: time.Now}
}

// WithNow returns a copy of the inspector using the given clock. Test hook.
func (i Inspector) WithNow(now func() time.Time) Inspector {
	i.now = now
	return i
}

// IsExpired reports whether the token is expired or expires within the
// margin. Any decode failure reports true.
func (i Inspector) IsExpired(token string) bool {
	return IsExpiredAt(token, i.margin, i.now())
}

// IsExpired reports whether the token is expired or expires within margin of
// the current time, failing closed on any decode error.
func IsExpired(token string, margin time.Duration) bool {
	return IsExpiredAt(token, margin, time.Now())
}

// IsExpiredAt is [IsExpired] against an explicit clock.
func IsExpiredAt(token string, margin time.Duration, now time.Time) bool {
	if token == "" {
		return true
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return true
	}

	expiry, err := claims.GetExpirationTime()
	if err != nil || expiry == nil {
		return true
	}
	return expiry.Time.Before(now.Add(margin))
}
