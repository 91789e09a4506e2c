package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/raywall/dispatch-console/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOAuth2Fetcher(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.Form.Get("grant_type"))
		assert.Equal(t, "console", r.Form.Get("client_id"))
		assert.Equal(t, "mocks:write", r.Form.Get("scope"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token": "mock-jwt-xyz", "expires_in": 3600, "token_type": "Bearer"}`))
	}))
	defer server.Close()

	cfg := config.AuthConf{
		TokenURL:     server.URL,
		ClientID:     "console",
		ClientSecret: "my-secret",
		Scope:        "mocks:write",
	}

	token, ttl, err := NewOAuth2Fetcher(cfg, server.Client())(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "mock-jwt-xyz", token)
	assert.Equal(t, time.Hour, ttl)
}

func TestNewOAuth2Fetcher_Errors(t *testing.T) {
	t.Run("Status de erro", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		_, _, err := NewOAuth2Fetcher(config.AuthConf{TokenURL: server.URL}, server.Client())(context.Background())
		assert.ErrorContains(t, err, "401")
	})

	t.Run("Token vazio", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"expires_in": 10}`))
		}))
		defer server.Close()

		_, _, err := NewOAuth2Fetcher(config.AuthConf{TokenURL: server.URL}, server.Client())(context.Background())
		assert.ErrorContains(t, err, "access_token")
	})
}

type staticSource struct {
	token string
	err   error
}

func (s staticSource) Get() (string, error) { return s.token, s.err }

func TestTransport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(r.Header.Get("Authorization")))
	}))
	defer server.Close()

	t.Run("Injeta bearer", func(t *testing.T) {
		client := &http.Client{Transport: &Transport{Source: staticSource{token: "abc"}}}
		req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
		resp, err := client.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		buf := make([]byte, 64)
		n, _ := resp.Body.Read(buf)
		assert.Equal(t, "Bearer abc", string(buf[:n]))
		assert.Empty(t, req.Header.Get("Authorization"), "requisição original não deve ser alterada")
	})

	t.Run("Sem token", func(t *testing.T) {
		client := &http.Client{Transport: &Transport{Source: staticSource{err: assert.AnError}}}
		_, err := client.Get(server.URL)
		assert.Error(t, err)
	})
}
