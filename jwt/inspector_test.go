package jwt

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

func mintToken(t *testing.T, claims gojwt.MapClaims) string {
	t.Helper()

	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestIsExpiredFailClosed(t *testing.T) {
	cases := map[string]string{
		"empty":        "",
		"not a token":  "garbage",
		"two segments": "abc.def",
		"bad payload":  "eyJhbGciOiJIUzI1NiJ9.!!!not-base64!!!.sig",
	}

	for name, token := range cases {
		if !IsExpired(token, 0) {
			t.Fatalf("%s: expected expired for unparseable token", name)
		}
	}

	noExp := mintToken(t, gojwt.MapClaims{"sub": "42"})
	if !IsExpired(noExp, 0) {
		t.Fatalf("expected expired for token without exp claim")
	}
}

func TestIsExpiredMargin(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	margin := 300 * time.Second

	cases := []struct {
		name    string
		exp     time.Time
		expired bool
	}{
		{"long since expired", now.Add(-time.Hour), true},
		{"just expired", now.Add(-10 * time.Second), true},
		{"inside margin", now.Add(margin - time.Second), true},
		{"exactly at margin boundary", now.Add(margin), false},
		{"outside margin", now.Add(margin + time.Minute), false},
		{"far future", now.Add(24 * time.Hour), false},
	}

	for _, tc := range cases {
		token := mintToken(t, gojwt.MapClaims{"exp": tc.exp.Unix()})
		if got := IsExpiredAt(token, margin, now); got != tc.expired {
			t.Fatalf("%s: IsExpiredAt = %v, want %v", tc.name, got, tc.expired)
		}
	}
}

func TestInspectorDefaults(t *testing.T) {
	inspector := NewInspector(0)
	if inspector.margin != DefaultMargin {
		t.Fatalf("expected default margin %v, got %v", DefaultMargin, inspector.margin)
	}

	now := time.Unix(1_700_000_000, 0)
	inspector = NewInspector(time.Minute).WithNow(func() time.Time { return now })

	fresh := mintToken(t, gojwt.MapClaims{"exp": now.Add(time.Hour).Unix()})
	if inspector.IsExpired(fresh) {
		t.Fatalf("fresh token reported expired")
	}
	stale := mintToken(t, gojwt.MapClaims{"exp": now.Add(30 * time.Second).Unix()})
	if !inspector.IsExpired(stale) {
		t.Fatalf("token inside margin reported valid")
	}
}
