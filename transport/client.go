package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultTimeout bounds every request; in-flight calls run to completion or
// this timeout, never longer.
const DefaultTimeout = 10 * time.Second

// TokenSource supplies bearer tokens to the pipeline. Token is the pre-send
// path; Force is the post-401 path and must bypass local expiry checks.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	Force(ctx context.Context) (string, error)
}

// Client wraps an HTTP client with bearer attachment, envelope decoding, and
// the refresh-then-retry-once protocol.
type Client struct {
	base    string
	http    *http.Client
	tokens  TokenSource
	logger  zerolog.Logger
	onRetry func()
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTokenSource wires the refresh coordinator into the pipeline. Without a
// source the client sends every request unauthenticated.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithLogger sets the request logger. Default is a no-op logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithRetryHook runs fn each time a request is retried after a forced
// refresh.
func WithRetryHook(fn func()) Option {
	return func(c *Client) { c.onRetry = fn }
}

// New creates a pipeline client for the given API base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		base:   strings.TrimRight(baseURL, "/"),
		http:   &http.Client{Timeout: DefaultTimeout},
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get issues an authenticated GET and decodes the envelope data into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post issues an authenticated POST and decodes the envelope data into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Put issues an authenticated PUT and decodes the envelope data into out.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

// Patch issues an authenticated PATCH and decodes the envelope data into out.
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPatch, path, body, out)
}

// Delete issues an authenticated DELETE and decodes the envelope data into out.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, out)
}

// Do sends one authenticated request. A valid token is attached when the
// token source can produce one; when it cannot, the request is sent without
// credentials and the server's rejection drives the retry path. On a 401 the
// request is marked retried, a refresh is forced, and the original request is
// resent exactly once with the new token. A 401 after the retry propagates.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
	}

	token := ""
	if c.tokens != nil {
		// An unobtainable token is not fatal here: the request goes out bare
		// and the 401 handling below owns the recovery.
		if t, err := c.tokens.Token(ctx); err == nil {
			token = t
		}
	}

	requestID := uuid.NewString()
	status, respBody, err := c.roundTrip(ctx, method, path, payload, token, requestID)
	if err != nil {
		return networkError(err)
	}

	if status == http.StatusUnauthorized && c.tokens != nil {
		firstFailure := decodeError(status, respBody)

		newToken, refreshErr := c.tokens.Force(ctx)
		if refreshErr != nil {
			// Session state is already cleared by the coordinator; surface
			// the original authorization failure to the caller.
			return firstFailure
		}

		if c.onRetry != nil {
			c.onRetry()
		}
		c.logger.Info().Str("request_id", requestID).Str("method", method).
			Str("path", path).Msg("retrying request after refresh")

		status, respBody, err = c.roundTrip(ctx, method, path, payload, newToken, requestID)
		if err != nil {
			return networkError(err)
		}
	}

	if status < 200 || status >= 300 {
		return decodeError(status, respBody)
	}
	return decodeInto(respBody, out)
}

func (c *Client) roundTrip(ctx context.Context, method, path string, payload []byte, token, requestID string) (int, []byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug().Str("request_id", requestID).Str("method", method).
			Str("path", path).Err(err).Msg("request failed")
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}

	c.logger.Debug().Str("request_id", requestID).Str("method", method).
		Str("path", path).Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).Msg("request completed")
	return resp.StatusCode, respBody, nil
}

func decodeInto(body []byte, out any) error {
	if out == nil {
		return nil
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("decode response envelope: %w", err)
	}
	if len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}

// NewRefreshFunc builds the network half of the refresh protocol: a plain
// unauthenticated POST of the refresh token, outside the retry pipeline so a
// refresh can never recurse into another refresh.
func NewRefreshFunc(hc *http.Client, baseURL, path string, logger zerolog.Logger) func(ctx context.Context, refreshToken string) (string, string, error) {
	if hc == nil {
		hc = &http.Client{Timeout: DefaultTimeout}
	}
	base := strings.TrimRight(baseURL, "/")

	return func(ctx context.Context, refreshToken string) (string, string, error) {
		payload, err := json.Marshal(map[string]string{"refreshToken": refreshToken})
		if err != nil {
			return "", "", err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+path, bytes.NewReader(payload))
		if err != nil {
			return "", "", err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := hc.Do(req)
		if err != nil {
			logger.Warn().Err(err).Msg("token refresh request failed")
			return "", "", networkError(err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", "", err
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			logger.Warn().Int("status", resp.StatusCode).Msg("token refresh rejected")
			return "", "", decodeError(resp.StatusCode, body)
		}

		var pair struct {
			AccessToken  string `json:"accessToken"`
			RefreshToken string `json:"refreshToken"`
			TokenType    string `json:"tokenType"`
		}
		if err := decodeInto(body, &pair); err != nil {
			return "", "", err
		}
		if pair.AccessToken == "" || pair.RefreshToken == "" {
			return "", "", fmt.Errorf("refresh response missing token pair")
		}
		return pair.AccessToken, pair.RefreshToken, nil
	}
}
