// Package auth mantém um token OAuth2 (client credentials) renovado em
// background para as chamadas ao backend de mocks.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/raywall/dispatch-console/pkg/config"
	"github.com/rs/zerolog"
)

// tokenResponse mapeia a resposta padrão da RFC 6749 (OAuth2)
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// TokenFetcher define a função que sabe como buscar um novo token.
type TokenFetcher func(ctx context.Context) (string, time.Duration, error)

// Manager gerencia o ciclo de vida do token de forma thread-safe.
type Manager struct {
	mu          sync.RWMutex
	token       string
	initialized bool

	fetcher  TokenFetcher
	logger   zerolog.Logger
	stopChan chan struct{}
	stopOnce sync.Once
	retry    time.Duration
}

// NewManager cria um gerenciador genérico.
func NewManager(fetcher TokenFetcher, logger zerolog.Logger) *Manager {
	return &Manager{
		fetcher:  fetcher,
		logger:   logger.With().Str("component", "auth").Logger(),
		stopChan: make(chan struct{}),
		retry:    10 * time.Second,
	}
}

// Start busca o primeiro token de forma síncrona e inicia a renovação em background.
func (m *Manager) Start(ctx context.Context) error {
	token, ttl, err := m.fetcher(ctx)
	if err != nil {
		return fmt.Errorf("falha inicial ao obter token: %w", err)
	}
	m.setToken(token)

	go m.refreshLoop(ctx, ttl)
	return nil
}

// Get retorna o token atual.
func (m *Manager) Get() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.initialized {
		return "", fmt.Errorf("auth manager não inicializado")
	}
	return m.token, nil
}

// Stop encerra a renovação. Pode ser chamado mais de uma vez.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() { close(m.stopChan) })
}

func (m *Manager) setToken(t string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = t
	m.initialized = true
}

func (m *Manager) refreshLoop(ctx context.Context, initialTTL time.Duration) {
	timer := time.NewTimer(calculateWait(initialTTL))
	defer timer.Stop()

	for {
		select {
		case <-m.stopChan:
			return
		case <-ctx.Done():
			return
		case <-timer.C:
			token, ttl, err := m.fetcher(ctx)
			wait := m.retry
			if err != nil {
				m.logger.Warn().Err(err).Dur("retry_in", wait).Msg("Falha ao renovar token")
			} else {
				m.setToken(token)
				wait = calculateWait(ttl)
				m.logger.Debug().Dur("next_refresh", wait).Msg("Token renovado")
			}
			timer.Reset(wait)
		}
	}
}

// calculateWait renova com 80% do tempo de vida.
func calculateWait(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(float64(ttl) * 0.8)
}

// NewOAuth2Manager cria o Manager já configurado para Client Credentials.
func NewOAuth2Manager(cfg config.AuthConf, logger zerolog.Logger) *Manager {
	return NewManager(NewOAuth2Fetcher(cfg, &http.Client{Timeout: 10 * time.Second}), logger)
}

// NewOAuth2Fetcher cria a função de busca para o fluxo Client Credentials.
func NewOAuth2Fetcher(cfg config.AuthConf, client *http.Client) TokenFetcher {
	return func(ctx context.Context) (string, time.Duration, error) {
		data := url.Values{}
		data.Set("grant_type", "client_credentials")
		data.Set("client_id", cfg.ClientID)
		data.Set("client_secret", cfg.ClientSecret)
		if cfg.Scope != "" {
			data.Set("scope", cfg.Scope)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.TokenURL, strings.NewReader(data.Encode()))
		if err != nil {
			return "", 0, fmt.Errorf("erro ao criar request: %w", err)
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Accept", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			return "", 0, fmt.Errorf("erro de conexão oauth: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			return "", 0, fmt.Errorf("oauth provider retornou erro: %d", resp.StatusCode)
		}

		var tokenResp tokenResponse
		if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
			return "", 0, fmt.Errorf("erro decode json token: %w", err)
		}
		if tokenResp.AccessToken == "" {
			return "", 0, fmt.Errorf("access_token veio vazio")
		}

		return tokenResp.AccessToken, time.Duration(tokenResp.ExpiresIn) * time.Second, nil
	}
}
