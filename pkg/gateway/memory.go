package gateway

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/raywall/dispatch-console/pkg/model"
	"gopkg.in/yaml.v3"
)

// Fixture é o formato do arquivo (YAML ou JSON) que popula o MemoryGateway.
type Fixture struct {
	Services []model.ServiceView `yaml:"services"`
}

// MemoryGateway guarda ServiceViews em memória. Usado pelo emulador e nos testes.
type MemoryGateway struct {
	mu       sync.RWMutex
	services map[string]model.ServiceView
}

func NewMemoryGateway(views ...model.ServiceView) *MemoryGateway {
	g := &MemoryGateway{services: make(map[string]model.ServiceView, len(views))}
	for _, v := range views {
		g.services[v.Service.ID] = v.Clone()
	}
	return g
}

// LoadFixture lê um arquivo de fixture. JSON também é aceito, por ser YAML válido.
func LoadFixture(path string) (*MemoryGateway, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("falha ao ler fixture: %w", err)
	}
	return ParseFixture(data)
}

func ParseFixture(data []byte) (*MemoryGateway, error) {
	var fx Fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("fixture malformada: %w", err)
	}
	for i, v := range fx.Services {
		if v.Service.ID == "" {
			return nil, fmt.Errorf("fixture: serviço na posição %d sem id", i)
		}
	}
	return NewMemoryGateway(fx.Services...), nil
}

func (g *MemoryGateway) GetServiceView(_ context.Context, serviceID string) (*model.ServiceView, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	view, ok := g.services[serviceID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrServiceNotFound, serviceID)
	}
	out := view.Clone()
	return &out, nil
}

// UpdateOperationProperties altera a primeira operação com o nome informado.
func (g *MemoryGateway) UpdateOperationProperties(_ context.Context, svc model.Service, operationName string, props model.OperationProperties) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	view, ok := g.services[svc.ID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrServiceNotFound, svc.ID)
	}
	idx, ok := view.Service.OperationIndex()[operationName]
	if !ok {
		return fmt.Errorf("%w: %s", ErrOperationNotFound, operationName)
	}

	op := &view.Service.Operations[idx]
	op.DefaultDelay = props.DefaultDelay
	op.Dispatcher = props.Dispatcher
	op.DispatcherRules = props.DispatcherRules
	g.services[svc.ID] = view
	return nil
}

// Put insere ou substitui um serviço.
func (g *MemoryGateway) Put(view model.ServiceView) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.services[view.Service.ID] = view.Clone()
}

// List devolve os serviços ordenados por nome e versão.
func (g *MemoryGateway) List() []model.Service {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]model.Service, 0, len(g.services))
	for _, v := range g.services {
		out = append(out, v.Service.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Version < out[j].Version
	})
	return out
}
