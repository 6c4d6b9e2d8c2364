package shopauth

import (
	"errors"

	"github.com/storefront-go/shopauth/refresh"
)

var (
	// ErrEngineNotReady is returned when an Engine method is called on a nil
	// or unbuilt engine.
	ErrEngineNotReady = errors.New("engine not initialized")

	// ErrInvalidCredentials is returned when the server rejects a login or
	// register request. The server's own message travels alongside as an
	// *transport.APIError via errors.As.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAuthResponseMalformed is returned when a login or register response
	// is missing the token pair.
	ErrAuthResponseMalformed = errors.New("malformed auth response")

	// ErrSessionPersist is returned when the established session could not
	// be written to storage.
	ErrSessionPersist = errors.New("session persist failed")

	// ErrRefreshFailed is the refresh coordinator's failure sentinel,
	// re-exported for callers that only import the root package.
	ErrRefreshFailed = refresh.ErrRefreshFailed

	// ErrNoRefreshToken is returned when a refresh is needed but no refresh
	// token is stored.
	ErrNoRefreshToken = refresh.ErrNoRefreshToken
)
