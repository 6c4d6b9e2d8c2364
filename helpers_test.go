package shopauth_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/storefront-go/shopauth"
)

func mintToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()

	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.MapClaims{
		"exp": expiresAt.Unix(),
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func writeEnvelope(w http.ResponseWriter, data any) {
	_ = json.NewEncoder(w).Encode(map[string]any{
		"message":   "ok",
		"data":      data,
		"success":   true,
		"timestamp": 1_700_000_000_000,
	})
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"message":   message,
		"success":   false,
		"timestamp": 1_700_000_000_000,
	})
}

func waitEvent(t *testing.T, sink *shopauth.ChannelSink) shopauth.SessionEvent {
	t.Helper()

	select {
	case event := <-sink.Events():
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a session event")
		return shopauth.SessionEvent{}
	}
}
