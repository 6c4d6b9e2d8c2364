package flows

import (
	"context"
	"errors"

	"github.com/storefront-go/shopauth/session"
)

// Credentials is the login request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the register request body. Phone and Address are optional.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
}

// AuthFailureKind classifies login/register failures for root-level mapping.
type AuthFailureKind int

const (
	AuthFailureNone AuthFailureKind = iota
	AuthFailureRequest
	AuthFailureMalformed
	AuthFailurePersist
)

// AuthResult carries either the established session or failure metadata.
type AuthResult struct {
	Failure AuthFailureKind
	Err     error
	User    *session.User
}

// AuthDeps captures login/register flow dependencies.
type AuthDeps struct {
	Post      func(ctx context.Context, path string, body, out any) error
	SetTokens func(ctx context.Context, access, refresh string) error
	SetUser   func(ctx context.Context, user *session.User) error
	Clear     func(ctx context.Context) error
}

// authPayload is the wire shape of the login/register success payload. The
// API has shipped both accessToken/userId and the older token/id spellings;
// both are accepted.
type authPayload struct {
	AccessToken  string   `json:"accessToken"`
	Token        string   `json:"token"`
	RefreshToken string   `json:"refreshToken"`
	TokenType    string   `json:"tokenType"`
	UserID       int64    `json:"userId"`
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	Roles        []string `json:"roles"`
}

func (p *authPayload) accessToken() string {
	if p.AccessToken != "" {
		return p.AccessToken
	}
	return p.Token
}

func (p *authPayload) userID() int64 {
	if p.UserID != 0 {
		return p.UserID
	}
	return p.ID
}

func (p *authPayload) user() *session.User {
	user := &session.User{
		ID:    p.userID(),
		Name:  p.Name,
		Email: p.Email,
	}
	if len(p.Roles) > 0 {
		user.Role = session.Role(p.Roles[0])
	}
	return user
}

// RunLogin posts credentials and, on success, replaces the stored session.
// A rejected login mutates nothing.
func RunLogin(ctx context.Context, path string, creds Credentials, deps AuthDeps) AuthResult {
	return runAuth(ctx, path, creds, deps)
}

// RunRegister posts registration details with the same contract as RunLogin.
func RunRegister(ctx context.Context, path string, reg Registration, deps AuthDeps) AuthResult {
	return runAuth(ctx, path, reg, deps)
}

func runAuth(ctx context.Context, path string, body any, deps AuthDeps) AuthResult {
	var payload authPayload
	if err := deps.Post(ctx, path, body, &payload); err != nil {
		return AuthResult{Failure: AuthFailureRequest, Err: err}
	}

	access := payload.accessToken()
	if access == "" || payload.RefreshToken == "" {
		return AuthResult{
			Failure: AuthFailureMalformed,
			Err:     errors.New("auth response missing token pair"),
		}
	}

	user := payload.user()
	if err := deps.SetTokens(ctx, access, payload.RefreshToken); err != nil {
		return AuthResult{Failure: AuthFailurePersist, Err: err}
	}
	if err := deps.SetUser(ctx, user); err != nil {
		// Half-written session state is worse than none.
		_ = deps.Clear(ctx)
		return AuthResult{Failure: AuthFailurePersist, Err: err}
	}

	return AuthResult{Failure: AuthFailureNone, User: user}
}
