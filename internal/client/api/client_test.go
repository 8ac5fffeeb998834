package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mzarzor/imagestudio/internal/common"
)

func TestLoginStoresToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/login", r.URL.Path)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "alice@example.com", req["email"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "tok-123",
			"identity":     map[string]any{"id": "u1", "email": "alice@example.com"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	identity, err := c.Login(context.Background(), "alice@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", identity.Email)
	assert.Equal(t, "tok-123", c.Token())
}

func TestBearerTokenSent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]any{"items": []any{}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	c.SetToken("tok-123")
	items, err := c.History(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestUnauthorizedMapsToSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid credentials"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Login(context.Background(), "x", "y")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestBlockedMapsToSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusLocked)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error": "too many failed attempts", "retry_at": "2025-06-02T12:00:00Z",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.AdminLogin(context.Background(), "a", "b", "")
	require.ErrorIs(t, err, ErrBlocked)
	assert.Contains(t, err.Error(), "2025-06-02T12:00:00Z")
}

func TestNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "not found"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	err := c.DeleteHistoryItem(context.Background(), "nope")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestServerUnavailable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1")
	_, err := c.Session(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}
