package shopauth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/storefront-go/shopauth"
	"github.com/storefront-go/shopauth/storage"
)

func TestLogoutClearsSession(t *testing.T) {
	var signouts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/signout" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		signouts++
		writeEnvelope(w, nil)
	}))
	defer server.Close()

	kv := storage.NewMemory()
	seedSession(t, kv, mintToken(t, time.Now().Add(time.Hour)))

	sink := shopauth.NewChannelSink(8)
	engine, err := shopauth.New().WithBaseURL(server.URL).WithStorage(kv).WithEventSink(sink).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer engine.Close()

	ctx := context.Background()
	if err := engine.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	if signouts != 1 {
		t.Fatalf("signout calls = %d, want 1", signouts)
	}
	if _, ok, _ := kv.Get(ctx, storage.KeyAccessToken); ok {
		t.Fatal("access token survived logout")
	}
	if engine.CurrentUser() != nil {
		t.Fatal("user survived logout")
	}
	if state := engine.State(); state.Status != shopauth.StatusUnauthenticated {
		t.Fatalf("state = %v, want unauthenticated", state.Status)
	}

	event := waitEvent(t, sink)
	if event.EventType != shopauth.EventLogout || !event.Success || event.UserID != 1 {
		t.Fatalf("unexpected event %+v", event)
	}
}

func TestLogoutClearsLocallyWhenServerFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeFailure(w, http.StatusInternalServerError, "boom")
	}))
	defer server.Close()

	kv := storage.NewMemory()
	seedSession(t, kv, mintToken(t, time.Now().Add(time.Hour)))

	engine, err := shopauth.New().WithBaseURL(server.URL).WithStorage(kv).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer engine.Close()

	ctx := context.Background()
	if err := engine.Logout(ctx); err != nil {
		t.Fatalf("server failure must not fail a logout, got %v", err)
	}

	for _, key := range []string{storage.KeyAccessToken, storage.KeyRefreshToken, storage.KeyUserData} {
		if _, ok, _ := kv.Get(ctx, key); ok {
			t.Fatalf("key %q survived logout", key)
		}
	}
}
