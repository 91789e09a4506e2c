// Package gateway contém os backends de leitura (Directory) e escrita (Persister)
// de serviços mockados usados pelo console.
package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/raywall/dispatch-console/pkg/model"
)

var (
	// ErrServiceNotFound indica que o id de serviço não existe no backend.
	ErrServiceNotFound = errors.New("service not found")
	// ErrOperationNotFound indica que o serviço não tem operação com o nome pedido.
	ErrOperationNotFound = errors.New("operation not found")
)

// Directory resolve a ServiceView de um serviço.
type Directory interface {
	GetServiceView(ctx context.Context, serviceID string) (*model.ServiceView, error)
}

// Persister grava as propriedades de dispatch de uma operação.
type Persister interface {
	UpdateOperationProperties(ctx context.Context, svc model.Service, operationName string, props model.OperationProperties) error
}

// Gateway é um backend completo.
type Gateway interface {
	Directory
	Persister
}

// Invalidator é implementado por gateways com cache.
type Invalidator interface {
	Invalidate(ctx context.Context, serviceID string) error
}

// HTTPError é uma resposta de erro do backend HTTP.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Message)
}
