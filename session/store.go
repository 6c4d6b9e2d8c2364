package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/storefront-go/shopauth/storage"
)

// ErrUserCorrupt is returned when the cached user blob cannot be decoded.
// A corrupt blob is reported, not silently dropped; callers decide whether
// to clear the session.
var ErrUserCorrupt = errors.New("cached user corrupt")

// Store persists the token pair and cached user through a [storage.KV].
// Absent values are never errors: an empty session reads back as ("", false)
// and (nil, nil).
type Store struct {
	kv storage.KV
}

// NewStore creates a session store over the given storage capability.
func NewStore(kv storage.KV) *Store {
	return &Store{kv: kv}
}

// AccessToken returns the stored access token, if any.
func (s *Store) AccessToken(ctx context.Context) (string, bool, error) {
	return s.kv.Get(ctx, storage.KeyAccessToken)
}

// RefreshToken returns the stored refresh token, if any.
func (s *Store) RefreshToken(ctx context.Context) (string, bool, error) {
	return s.kv.Get(ctx, storage.KeyRefreshToken)
}

// User returns the cached user, or nil when none is stored.
func (s *Store) User(ctx context.Context) (*User, error) {
	raw, ok, err := s.kv.Get(ctx, storage.KeyUserData)
	if err != nil || !ok {
		return nil, err
	}

	var user User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUserCorrupt, err)
	}
	return &user, nil
}

// SetTokens replaces the token pair. The two values are one unit: if the
// second write fails the first is rolled back so a stale refresh token is
// never paired with a fresh access token.
func (s *Store) SetTokens(ctx context.Context, access, refresh string) error {
	previous, hadPrevious, err := s.kv.Get(ctx, storage.KeyAccessToken)
	if err != nil {
		return err
	}

	if err := s.kv.Set(ctx, storage.KeyAccessToken, access); err != nil {
		return err
	}
	if err := s.kv.Set(ctx, storage.KeyRefreshToken, refresh); err != nil {
		if hadPrevious {
			_ = s.kv.Set(ctx, storage.KeyAccessToken, previous)
		} else {
			_ = s.kv.Delete(ctx, storage.KeyAccessToken)
		}
		return err
	}
	return nil
}

// SetUser replaces the cached user. Tokens are untouched.
func (s *Store) SetUser(ctx context.Context, user *User) error {
	if user == nil {
		return s.kv.Delete(ctx, storage.KeyUserData)
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, storage.KeyUserData, string(raw))
}

// Merge applies the non-zero fields of partial to the cached user and
// persists the result. Tokens are untouched. Merging into an empty session
// is a no-op.
func (s *Store) Merge(ctx context.Context, partial User) error {
	user, err := s.User(ctx)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}

	if partial.ID != 0 {
		user.ID = partial.ID
	}
	if partial.Name != "" {
		user.Name = partial.Name
	}
	if partial.Email != "" {
		user.Email = partial.Email
	}
	if partial.Role != "" {
		user.Role = partial.Role
	}
	return s.SetUser(ctx, user)
}

// ClearAll removes the token pair, the cached user, and dependent cached
// state (the cart cache) as one operation. Every key is attempted even when
// an earlier delete fails; the first failure is reported.
func (s *Store) ClearAll(ctx context.Context) error {
	var first error
	for _, key := range []string{
		storage.KeyAccessToken,
		storage.KeyRefreshToken,
		storage.KeyUserData,
		storage.KeyCartData,
	} {
		if err := s.kv.Delete(ctx, key); err != nil && first == nil {
			first = err
		}
	}
	return first
}
