// Package notify implementa a superfície de notificações (toasts) do console.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Type é a severidade de uma notificação.
type Type string

const (
	TypeSuccess Type = "success"
	TypeInfo    Type = "info"
	TypeWarning Type = "warning"
	TypeDanger  Type = "danger"
)

// Notification é uma mensagem exibida ao operador até ser dispensada.
type Notification struct {
	ID           string    `json:"id"`
	Type         Type      `json:"type"`
	Header       string    `json:"header"`
	Message      string    `json:"message"`
	IsPersistent bool      `json:"isPersistent"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Sink é o contrato consumido pelo controller.
type Sink interface {
	Message(t Type, header, message string) Notification
	Remove(n Notification) bool
}

// Center guarda as notificações ativas e distribui novas mensagens para assinantes.
type Center struct {
	mu            sync.RWMutex
	notifications []Notification
	subscribers   map[int]chan Notification
	nextSub       int
	logger        zerolog.Logger
	now           func() time.Time
}

// NewCenter cria uma central vazia.
func NewCenter(logger zerolog.Logger) *Center {
	return &Center{
		subscribers: make(map[int]chan Notification),
		logger:      logger.With().Str("component", "notifications").Logger(),
		now:         time.Now,
	}
}

// Message registra uma nova notificação e a devolve.
func (c *Center) Message(t Type, header, message string) Notification {
	n := Notification{
		ID:        uuid.NewString(),
		Type:      t,
		Header:    header,
		Message:   message,
		CreatedAt: c.now(),
	}

	c.mu.Lock()
	c.notifications = append(c.notifications, n)
	for _, ch := range c.subscribers {
		// Assinante lento perde a mensagem; a lista continua disponível via Notifications.
		select {
		case ch <- n:
		default:
		}
	}
	c.mu.Unlock()

	ev := c.logger.Info()
	if t == TypeDanger {
		ev = c.logger.Warn()
	}
	ev.Str("type", string(t)).Str("header", header).Msg(message)
	return n
}

// Remove dispensa a notificação pelo ID. Retorna false se ela não estiver ativa.
func (c *Center) Remove(n Notification) bool {
	return c.RemoveByID(n.ID)
}

// RemoveByID dispensa a notificação com o ID informado.
func (c *Center) RemoveByID(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, existing := range c.notifications {
		if existing.ID == id {
			c.notifications = append(c.notifications[:i], c.notifications[i+1:]...)
			return true
		}
	}
	return false
}

// Notifications devolve uma cópia das notificações ativas, da mais antiga para a mais nova.
func (c *Center) Notifications() []Notification {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Notification(nil), c.notifications...)
}

// Subscribe registra um assinante. A função devolvida cancela a assinatura e fecha o canal.
func (c *Center) Subscribe(buffer int) (<-chan Notification, func()) {
	ch := make(chan Notification, buffer)

	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subscribers[id] = ch
	c.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subscribers, id)
			c.mu.Unlock()
			close(ch)
		})
	}
}
