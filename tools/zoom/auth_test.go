package zoom

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokenServer(t *testing.T, calls *atomic.Int64, accessToken string, expiresIn int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		require.Equal(t, "client-id", user)
		require.Equal(t, "client-secret", pass)
		require.NoError(t, r.ParseForm())
		require.Equal(t, "account_credentials", r.PostForm.Get("grant_type"))
		require.Equal(t, "account-id", r.PostForm.Get("account_id"))
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": accessToken,
			"token_type":   "bearer",
			"expires_in":   expiresIn,
		})
	}))
}

func TestAuthorizerCachesUntilExpiry(t *testing.T) {
	var calls atomic.Int64
	srv := newTokenServer(t, &calls, "T", 3600)
	defer srv.Close()

	t0 := time.Date(2025, 2, 25, 11, 30, 0, 0, time.UTC)
	now := t0
	auth := NewAuthorizer("account-id", "client-id", "client-secret",
		WithTokenURL(srv.URL),
		WithClock(func() time.Time { return now }),
	)
	ctx := context.Background()

	token, err := auth.AccessToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "T", token)
	assert.EqualValues(t, 1, calls.Load())

	// Repeated calls inside the lifetime hit the cache, not the network.
	for range 5 {
		token, err = auth.AccessToken(ctx)
		require.NoError(t, err)
		assert.Equal(t, "T", token)
	}
	assert.EqualValues(t, 1, calls.Load())

	// Just before the 60s safety margin the cached token is still valid.
	now = t0.Add(3600*time.Second - expiryMargin - time.Second)
	_, err = auth.AccessToken(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, calls.Load())

	// At issued+lifetime-margin the token counts as expired and a second
	// exchange happens.
	now = t0.Add(3600*time.Second - expiryMargin)
	token, err = auth.AccessToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "T", token)
	assert.EqualValues(t, 2, calls.Load())
}

func TestAuthorizerLifetimeShorterThanMargin(t *testing.T) {
	// expires_in below the safety margin means the token is already stale
	// on the very next call.
	var calls atomic.Int64
	srv := newTokenServer(t, &calls, "abc", 10)
	defer srv.Close()

	auth := NewAuthorizer("account-id", "client-id", "client-secret", WithTokenURL(srv.URL))
	ctx := context.Background()

	token, err := auth.AccessToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc", token)
	assert.EqualValues(t, 1, calls.Load())

	token, err = auth.AccessToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc", token)
	assert.EqualValues(t, 2, calls.Load())
}

func TestAuthorizerUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{"reason": "Invalid client_id or client_secret", "error": "invalid_client"})
	}))
	defer srv.Close()

	auth := NewAuthorizer("account-id", "client-id", "client-secret",
		WithTokenURL(srv.URL),
		WithAuthorizerLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	token, err := auth.AccessToken(context.Background())
	require.Error(t, err)
	assert.Empty(t, token)
	assert.Contains(t, err.Error(), "401")
}

func TestAuthorizerFailedRefreshKeepsCache(t *testing.T) {
	var fail atomic.Bool
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if fail.Load() {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"access_token": "T1", "expires_in": 3600})
	}))
	defer srv.Close()

	t0 := time.Now()
	now := t0
	auth := NewAuthorizer("account-id", "client-id", "client-secret",
		WithTokenURL(srv.URL),
		WithClock(func() time.Time { return now }),
		WithAuthorizerLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	ctx := context.Background()

	token, err := auth.AccessToken(ctx)
	require.NoError(t, err)
	require.Equal(t, "T1", token)

	// A refresh attempt that fails must not corrupt the cached pair.
	fail.Store(true)
	now = t0.Add(time.Hour)
	_, err = auth.AccessToken(ctx)
	require.Error(t, err)
	assert.Equal(t, "T1", auth.accessToken)
	assert.Equal(t, t0.Add(3600*time.Second-expiryMargin), auth.expiresAt)

	// The failure is not sticky: the next call performs a fresh exchange.
	fail.Store(false)
	token, err = auth.AccessToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "T1", token)
	assert.EqualValues(t, 3, calls.Load())
}

func TestAuthorizerTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	auth := NewAuthorizer("account-id", "client-id", "client-secret",
		WithTokenURL(srv.URL),
		WithAuthorizerLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	token, err := auth.AccessToken(context.Background())
	require.Error(t, err)
	assert.Empty(t, token)
}

func TestAuthorizerConcurrentSingleExchange(t *testing.T) {
	var calls atomic.Int64
	srv := newTokenServer(t, &calls, "T", 3600)
	defer srv.Close()

	auth := NewAuthorizer("account-id", "client-id", "client-secret", WithTokenURL(srv.URL))
	ctx := context.Background()

	done := make(chan error, 8)
	for range 8 {
		go func() {
			_, err := auth.AccessToken(ctx)
			done <- err
		}()
	}
	for range 8 {
		require.NoError(t, <-done)
	}
	assert.EqualValues(t, 1, calls.Load())
}
