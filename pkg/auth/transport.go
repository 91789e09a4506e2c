package auth

import (
	"fmt"
	"net/http"
)

// TokenSource é satisfeito por *Manager.
type TokenSource interface {
	Get() (string, error)
}

// Transport adiciona "Authorization: Bearer <token>" em cada requisição.
type Transport struct {
	Source TokenSource
	Base   http.RoundTripper
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, err := t.Source.Get()
	if err != nil {
		return nil, fmt.Errorf("sem token para o backend: %w", err)
	}

	// RoundTrip não deve alterar a requisição original
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Bearer "+token)

	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(clone)
}
