package override

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/raywall/dispatch-console/pkg/metrics"
	"github.com/rs/zerolog"
)

// Session é uma página aberta: um controller com id próprio. Fechar a sessão
// descarta o rascunho.
type Session struct {
	ID         string
	Controller *Controller
	CreatedAt  time.Time

	lastUsed time.Time
}

// Sessions é o registro de sessões abertas.
type Sessions struct {
	mu       sync.Mutex
	sessions map[string]*Session

	newController func() *Controller
	metrics       metrics.Provider
	logger        zerolog.Logger
	now           func() time.Time
}

func NewSessions(newController func() *Controller, m metrics.Provider, logger zerolog.Logger) *Sessions {
	return &Sessions{
		sessions:      make(map[string]*Session),
		newController: newController,
		metrics:       m,
		logger:        logger.With().Str("component", "sessions").Logger(),
		now:           time.Now,
	}
}

// Open cria uma sessão com um controller novo, ainda não inicializado.
func (s *Sessions) Open(serviceID string) *Session {
	now := s.now()
	sess := &Session{
		ID:         uuid.NewString(),
		Controller: s.newController(),
		CreatedAt:  now,
		lastUsed:   now,
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	active := len(s.sessions)
	s.mu.Unlock()

	s.metrics.Count(metrics.SessionsOpened, 1, []string{"service:" + serviceID})
	s.metrics.Gauge(metrics.SessionsActive, float64(active), nil)
	return sess
}

// Get devolve a sessão e renova seu tempo de uso.
func (s *Sessions) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if ok {
		sess.lastUsed = s.now()
	}
	return sess, ok
}

// Close descarta a sessão.
func (s *Sessions) Close(id string) bool {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	active := len(s.sessions)
	s.mu.Unlock()

	if ok {
		s.metrics.Gauge(metrics.SessionsActive, float64(active), nil)
	}
	return ok
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Expire fecha sessões sem uso há mais de idle e devolve quantas foram fechadas.
func (s *Sessions) Expire(idle time.Duration) int {
	cutoff := s.now().Add(-idle)

	s.mu.Lock()
	expired := 0
	for id, sess := range s.sessions {
		if sess.lastUsed.Before(cutoff) {
			delete(s.sessions, id)
			expired++
		}
	}
	active := len(s.sessions)
	s.mu.Unlock()

	if expired > 0 {
		s.metrics.Gauge(metrics.SessionsActive, float64(active), nil)
		s.logger.Info().Int("expired", expired).Int("active", active).Msg("Sessões ociosas descartadas")
	}
	return expired
}

// RunExpiry chama Expire a cada interval até o contexto terminar.
func (s *Sessions) RunExpiry(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Expire(idle)
		}
	}
}
