package config

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/raywall/dispatch-console/pkg/gateway"
	"github.com/raywall/dispatch-console/tools/emulator"
	"github.com/rs/zerolog/log"
)

// ServerConfig descreve um backend emulado numa porta.
type ServerConfig struct {
	Port        int    `json:"port"`
	Fixture     string `json:"fixture"`
	LatencyMs   int    `json:"latency_ms,omitempty"`
	FailUpdates bool   `json:"fail_updates,omitempty"`
	FailMessage string `json:"fail_message,omitempty"`
}

// Handler carrega a fixture e monta o roteador do backend.
func (s *ServerConfig) Handler() (http.Handler, error) {
	store := gateway.NewMemoryGateway()
	if s.Fixture != "" {
		var err error
		if store, err = gateway.LoadFixture(s.Fixture); err != nil {
			return nil, err
		}
	}

	logger := log.With().Int("port", s.Port).Logger()
	backend := emulator.NewBackend(store, emulator.Options{
		Latency:     time.Duration(s.LatencyMs) * time.Millisecond,
		FailUpdates: s.FailUpdates,
		FailMessage: s.FailMessage,
	}, logger)
	return backend.Router(), nil
}

// Start serve o backend até ctx ser cancelado.
func (s *ServerConfig) Start(ctx context.Context) error {
	handler, err := s.Handler()
	if err != nil {
		return err
	}

	srv := &http.Server{Addr: fmt.Sprintf(":%d", s.Port), Handler: handler, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()

	log.Info().Msgf("Iniciando backend emulado na porta %d", s.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("servidor porta %d: %w", s.Port, err)
	}
	return nil
}
