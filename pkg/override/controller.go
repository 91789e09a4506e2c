// Package override implementa a página de sobrescrita de dispatch de uma operação:
// resolve o serviço, mantém um rascunho editável das propriedades de dispatch e o
// persiste no backend, notificando o operador do resultado.
package override

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/raywall/dispatch-console/pkg/dispatch"
	"github.com/raywall/dispatch-console/pkg/gateway"
	"github.com/raywall/dispatch-console/pkg/metrics"
	"github.com/raywall/dispatch-console/pkg/model"
	"github.com/raywall/dispatch-console/pkg/notify"
	"github.com/raywall/dispatch-console/pkg/rules"
	"github.com/rs/zerolog"
)

// Mensagens exibidas após o Save.
const (
	MsgSaved        = "Dispatch properties have been updated"
	msgSaveFailedFn = "Dispatch properties cannot be updated (%s)"
)

var (
	// ErrOperationNotFound é devolvido por Initialize quando o serviço não tem a operação.
	ErrOperationNotFound = gateway.ErrOperationNotFound
	// ErrNotInitialized é devolvido quando não há operação resolvida.
	ErrNotInitialized = errors.New("controller has no resolved operation")
	// ErrUnknownExample indica um nome fora do catálogo de exemplos.
	ErrUnknownExample = errors.New("unknown example rule")
)

// State é uma fotografia imutável do controller.
type State struct {
	ServiceID     string                     `json:"serviceId"`
	OperationName string                     `json:"operationName"`
	ServiceView   *model.ServiceView         `json:"serviceView,omitempty"`
	Operation     *model.Operation           `json:"operation,omitempty"`
	Draft         *model.OperationProperties `json:"draft,omitempty"`
}

// Controller liga uma ServiceView resolvida (somente leitura) a um rascunho mutável.
type Controller struct {
	mu sync.Mutex

	directory gateway.Directory
	persister gateway.Persister
	sink      notify.Sink
	guards    *rules.GuardSet
	metrics   metrics.Provider
	logger    zerolog.Logger

	serviceID     string
	operationName string
	view          *model.ServiceView
	operation     *model.Operation
	draft         *model.OperationProperties
}

// NewController cria um controller sem estado resolvido. guards pode ser nil.
func NewController(dir gateway.Directory, persister gateway.Persister, sink notify.Sink, guards *rules.GuardSet, m metrics.Provider, logger zerolog.Logger) *Controller {
	return &Controller{
		directory: dir,
		persister: persister,
		sink:      sink,
		guards:    guards,
		metrics:   m,
		logger:    logger,
	}
}

// Initialize resolve a ServiceView e procura a operação por varredura linear; vale a
// primeira com o nome. Sem correspondência, operação e rascunho ficam vazios e o
// retorno é ErrOperationNotFound.
func (c *Controller) Initialize(ctx context.Context, serviceID, operationName string) error {
	c.mu.Lock()
	c.serviceID, c.operationName = serviceID, operationName
	c.view, c.operation, c.draft = nil, nil, nil
	c.mu.Unlock()

	view, err := c.directory.GetServiceView(ctx, serviceID)
	if err != nil {
		c.metrics.Count(metrics.InitializeFailed, 1, []string{"reason:service"})
		return fmt.Errorf("resolving service '%s': %w", serviceID, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.view = view
	for i := range view.Service.Operations {
		if view.Service.Operations[i].Name == operationName {
			op := view.Service.Operations[i]
			draft := op.Properties()
			c.operation, c.draft = &op, &draft
			break
		}
	}

	if c.operation == nil {
		c.metrics.Count(metrics.InitializeFailed, 1, []string{"reason:operation"})
		return fmt.Errorf("%w: '%s' in service '%s'", ErrOperationNotFound, operationName, serviceID)
	}

	c.logger.Debug().
		Str("service", serviceID).
		Str("operation", operationName).
		Msg("Operação resolvida")
	return nil
}

// Reset recria o rascunho a partir da operação resolvida.
func (c *Controller) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.operation == nil {
		return ErrNotInitialized
	}
	draft := c.operation.Properties()
	c.draft = &draft
	return nil
}

// ApplyExampleRule copia text para dispatcherRules, sem validação.
func (c *Controller) ApplyExampleRule(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.draft == nil {
		return ErrNotInitialized
	}
	c.draft.DispatcherRules = text
	return nil
}

// ApplyExample copia uma regra do catálogo para o rascunho.
func (c *Controller) ApplyExample(name string) error {
	text, ok := dispatch.Example(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownExample, name)
	}
	return c.ApplyExampleRule(text)
}

// EditDraft aplica uma edição parcial ao rascunho.
func (c *Controller) EditDraft(patch model.PropertiesPatch) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.draft == nil {
		return ErrNotInitialized
	}
	draft := patch.Apply(*c.draft)
	c.draft = &draft
	return nil
}

// Save envia o rascunho ao backend e emite exatamente uma notificação: sucesso ou
// perigo. O rascunho nunca é alterado, e não há retry nem rollback.
func (c *Controller) Save(ctx context.Context) error {
	c.mu.Lock()
	if c.operation == nil || c.draft == nil {
		c.mu.Unlock()
		return ErrNotInitialized
	}
	svc := c.view.Service.Clone()
	operationName := c.operationName
	current := c.operation.Properties()
	payload := *c.draft
	c.mu.Unlock()

	tags := []string{"service:" + svc.ID}

	if err := c.guards.Check(svc, operationName, current, payload); err != nil {
		var guardErr *rules.GuardError
		if errors.As(err, &guardErr) {
			c.metrics.Count(metrics.GuardRejected, 1, []string{"guard:" + guardErr.ID})
		}
		return c.saveFailed(operationName, tags, err)
	}

	c.logger.Debug().
		Str("service", svc.ID).
		Str("operation", operationName).
		Int64("defaultDelay", payload.DefaultDelay).
		Str("dispatcher", payload.Dispatcher).
		Str("dispatcherRules", payload.DispatcherRules).
		Msg("Enviando propriedades de dispatch")

	start := time.Now()
	err := c.persister.UpdateOperationProperties(ctx, svc, operationName, payload)
	c.metrics.Histogram(metrics.SaveLatency, float64(time.Since(start).Milliseconds()), tags)
	if err != nil {
		return c.saveFailed(operationName, tags, err)
	}

	c.metrics.Count(metrics.SaveTotal, 1, append(tags, "outcome:success"))
	c.sink.Message(notify.TypeSuccess, operationName, MsgSaved)
	c.logger.Info().Str("service", svc.ID).Str("operation", operationName).Msg(MsgSaved)
	return nil
}

func (c *Controller) saveFailed(operationName string, tags []string, err error) error {
	c.metrics.Count(metrics.SaveTotal, 1, append(tags, "outcome:failure"))
	c.sink.Message(notify.TypeDanger, operationName, fmt.Sprintf(msgSaveFailedFn, err.Error()))
	return err
}

// DismissNotification remove a notificação da lista ativa.
func (c *Controller) DismissNotification(n notify.Notification) bool {
	return c.sink.Remove(n)
}

// State devolve cópias do estado atual.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := State{ServiceID: c.serviceID, OperationName: c.operationName}
	if c.view != nil {
		v := c.view.Clone()
		st.ServiceView = &v
	}
	if c.operation != nil {
		op := *c.operation
		if op.ResourcePaths != nil {
			op.ResourcePaths = append([]string(nil), op.ResourcePaths...)
		}
		st.Operation = &op
	}
	if c.draft != nil {
		d := *c.draft
		st.Draft = &d
	}
	return st
}
