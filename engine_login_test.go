package shopauth_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/storefront-go/shopauth"
	"github.com/storefront-go/shopauth/storage"
	"github.com/storefront-go/shopauth/transport"
)

func TestLoginEstablishesSession(t *testing.T) {
	var gotCreds map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/signin" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&gotCreds)
		// Older payload spellings still in the wild: token and id.
		writeEnvelope(w, map[string]any{
			"token":        "T1",
			"refreshToken": "R1",
			"tokenType":    "Bearer",
			"id":           1,
			"name":         "Alice",
			"email":        "alice@example.com",
			"roles":        []string{"CUSTOMER"},
		})
	}))
	defer server.Close()

	kv := storage.NewMemory()
	sink := shopauth.NewChannelSink(8)
	engine, err := shopauth.New().
		WithBaseURL(server.URL).
		WithStorage(kv).
		WithEventSink(sink).
		WithMetricsEnabled(true).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer engine.Close()

	ctx := context.Background()
	user, err := engine.Login(ctx, shopauth.Credentials{Email: "alice@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if gotCreds["email"] != "alice@example.com" || gotCreds["password"] != "pw" {
		t.Fatalf("credentials not posted: %+v", gotCreds)
	}
	if user == nil || user.ID != 1 || user.Name != "Alice" || user.Role != shopauth.RoleCustomer {
		t.Fatalf("unexpected user %+v", user)
	}

	if access, ok, _ := kv.Get(ctx, storage.KeyAccessToken); !ok || access != "T1" {
		t.Fatalf("access token not stored: %q ok=%v", access, ok)
	}
	if refresh, ok, _ := kv.Get(ctx, storage.KeyRefreshToken); !ok || refresh != "R1" {
		t.Fatalf("refresh token not stored: %q ok=%v", refresh, ok)
	}

	if state := engine.State(); state.Status != shopauth.StatusAuthenticated {
		t.Fatalf("state = %v, want authenticated", state.Status)
	}
	if !engine.HasRole(shopauth.RoleCustomer) {
		t.Fatal("HasRole(CUSTOMER) should hold after login")
	}
	if engine.HasAnyRole(shopauth.RoleAdmin, shopauth.RoleSupport) {
		t.Fatal("HasAnyRole should not report roles the user lacks")
	}

	event := waitEvent(t, sink)
	if event.EventType != shopauth.EventLogin || !event.Success || event.UserID != 1 {
		t.Fatalf("unexpected event %+v", event)
	}

	snapshot := engine.MetricsSnapshot()
	if snapshot.Counters[shopauth.MetricLoginSuccess] != 1 {
		t.Fatalf("login success counter = %d, want 1", snapshot.Counters[shopauth.MetricLoginSuccess])
	}
}

func TestRejectedLoginMutatesNothing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/refresh-token" {
			t.Error("rejected login must not trigger a refresh storm")
		}
		writeFailure(w, http.StatusUnauthorized, "Invalid email or password")
	}))
	defer server.Close()

	kv := storage.NewMemory()
	engine, err := shopauth.New().
		WithBaseURL(server.URL).
		WithStorage(kv).
		WithMetricsEnabled(true).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer engine.Close()

	ctx := context.Background()
	user, err := engine.Login(ctx, shopauth.Credentials{Email: "alice@example.com", Password: "wrong"})
	if user != nil {
		t.Fatalf("rejected login returned a user: %+v", user)
	}
	if !errors.Is(err, shopauth.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	var apiErr *transport.APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "Invalid email or password" {
		t.Fatalf("server message lost: %v", err)
	}

	if _, ok, _ := kv.Get(ctx, storage.KeyAccessToken); ok {
		t.Fatal("rejected login stored an access token")
	}
	if _, ok, _ := kv.Get(ctx, storage.KeyRefreshToken); ok {
		t.Fatal("rejected login stored a refresh token")
	}
	if state := engine.State(); state.Status != shopauth.StatusUnauthenticated {
		t.Fatalf("state = %v, want unauthenticated", state.Status)
	}
	if n := engine.MetricsSnapshot().Counters[shopauth.MetricLoginFailure]; n != 1 {
		t.Fatalf("login failure counter = %d, want 1", n)
	}
}

func TestLoginMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelope(w, map[string]any{"token": "T1"}) // refresh token missing
	}))
	defer server.Close()

	kv := storage.NewMemory()
	engine, err := shopauth.New().WithBaseURL(server.URL).WithStorage(kv).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer engine.Close()

	if _, err := engine.Login(context.Background(), shopauth.Credentials{}); !errors.Is(err, shopauth.ErrAuthResponseMalformed) {
		t.Fatalf("expected ErrAuthResponseMalformed, got %v", err)
	}
	if _, ok, _ := kv.Get(context.Background(), storage.KeyAccessToken); ok {
		t.Fatal("malformed response stored a token")
	}
}

func TestRegisterEstablishesSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/signup" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		writeEnvelope(w, map[string]any{
			"accessToken":  "T1",
			"refreshToken": "R1",
			"userId":       7,
			"name":         "Bob",
			"email":        "bob@example.com",
			"roles":        []string{"SELLER"},
		})
	}))
	defer server.Close()

	kv := storage.NewMemory()
	engine, err := shopauth.New().WithBaseURL(server.URL).WithStorage(kv).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer engine.Close()

	user, err := engine.Register(context.Background(), shopauth.Registration{
		Name: "Bob", Email: "bob@example.com", Password: "pw",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.ID != 7 || user.Role != shopauth.RoleSeller {
		t.Fatalf("unexpected user %+v", user)
	}
	if current := engine.CurrentUser(); current == nil || current.ID != 7 {
		t.Fatalf("CurrentUser after register: %+v", current)
	}
}

func TestUpdateUserMergesFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelope(w, map[string]any{
			"accessToken":  "T1",
			"refreshToken": "R1",
			"userId":       1,
			"name":         "Alice",
			"email":        "alice@example.com",
			"roles":        []string{"CUSTOMER"},
		})
	}))
	defer server.Close()

	engine, err := shopauth.New().WithBaseURL(server.URL).WithStorage(storage.NewMemory()).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer engine.Close()

	ctx := context.Background()
	if _, err := engine.Login(ctx, shopauth.Credentials{}); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := engine.UpdateUser(ctx, shopauth.User{Name: "Alice Cooper"}); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}

	user := engine.CurrentUser()
	if user == nil || user.Name != "Alice Cooper" || user.Email != "alice@example.com" {
		t.Fatalf("merge result %+v", user)
	}
}
