// Package model define as entidades do console: serviços mockados, suas operações
// e a cópia editável das propriedades de dispatch de uma operação.
package model

// ServiceType identifica o protocolo do serviço mockado.
type ServiceType string

const (
	ServiceTypeREST         ServiceType = "REST"
	ServiceTypeSOAP         ServiceType = "SOAP_HTTP"
	ServiceTypeGraphQL      ServiceType = "GRAPHQL"
	ServiceTypeGRPC         ServiceType = "GRPC"
	ServiceTypeEvent        ServiceType = "EVENT"
	ServiceTypeGenericREST  ServiceType = "GENERIC_REST"
	ServiceTypeGenericEvent ServiceType = "GENERIC_EVENT"
)

// Operation é um endpoint de um serviço mockado. O nome é a chave dentro do serviço.
type Operation struct {
	Name            string   `json:"name" yaml:"name" dynamodbav:"name"`
	Method          string   `json:"method,omitempty" yaml:"method" dynamodbav:"method,omitempty"`
	InputName       string   `json:"inputName,omitempty" yaml:"inputName" dynamodbav:"inputName,omitempty"`
	OutputName      string   `json:"outputName,omitempty" yaml:"outputName" dynamodbav:"outputName,omitempty"`
	DefaultDelay    int64    `json:"defaultDelay" yaml:"defaultDelay" dynamodbav:"defaultDelay"`
	Dispatcher      string   `json:"dispatcher,omitempty" yaml:"dispatcher" dynamodbav:"dispatcher,omitempty"`
	DispatcherRules string   `json:"dispatcherRules,omitempty" yaml:"dispatcherRules" dynamodbav:"dispatcherRules,omitempty"`
	ResourcePaths   []string `json:"resourcePaths,omitempty" yaml:"resourcePaths" dynamodbav:"resourcePaths,omitempty"`
}

// Properties extrai uma cópia dos três campos mutáveis da operação.
func (o Operation) Properties() OperationProperties {
	return OperationProperties{
		DefaultDelay:    o.DefaultDelay,
		Dispatcher:      o.Dispatcher,
		DispatcherRules: o.DispatcherRules,
	}
}

// Service agrupa operações ordenadas. Nomes de operação são únicos no serviço.
type Service struct {
	ID         string            `json:"id" yaml:"id" dynamodbav:"id"`
	Name       string            `json:"name" yaml:"name" dynamodbav:"name"`
	Version    string            `json:"version" yaml:"version" dynamodbav:"version"`
	Type       ServiceType       `json:"type" yaml:"type" dynamodbav:"type"`
	Labels     map[string]string `json:"labels,omitempty" yaml:"labels" dynamodbav:"labels,omitempty"`
	Operations []Operation       `json:"operations" yaml:"operations" dynamodbav:"operations"`
}

// FindOperation percorre as operações em ordem e devolve a primeira com o nome informado.
func (s Service) FindOperation(name string) (Operation, bool) {
	for i := range s.Operations {
		if s.Operations[i].Name == name {
			return s.Operations[i], true
		}
	}
	return Operation{}, false
}

// OperationIndex monta um índice nome -> posição. Em nomes repetidos vale a primeira
// ocorrência, o mesmo resultado de FindOperation.
func (s Service) OperationIndex() map[string]int {
	idx := make(map[string]int, len(s.Operations))
	for i, op := range s.Operations {
		if _, seen := idx[op.Name]; !seen {
			idx[op.Name] = i
		}
	}
	return idx
}

// Clone devolve uma cópia profunda do serviço.
func (s Service) Clone() Service {
	out := s
	if s.Labels != nil {
		out.Labels = make(map[string]string, len(s.Labels))
		for k, v := range s.Labels {
			out.Labels[k] = v
		}
	}
	if s.Operations != nil {
		out.Operations = make([]Operation, len(s.Operations))
		for i, op := range s.Operations {
			if op.ResourcePaths != nil {
				op.ResourcePaths = append([]string(nil), op.ResourcePaths...)
			}
			out.Operations[i] = op
		}
	}
	return out
}

// ServiceView é o agregado somente-leitura de um serviço usado para exibição.
type ServiceView struct {
	Service Service `json:"service" yaml:"service"`
	// MessagesMap conta exemplos de request/response por nome de operação.
	MessagesMap map[string]int `json:"messagesMap,omitempty" yaml:"messagesMap"`
}

// Clone devolve uma cópia profunda da view.
func (v ServiceView) Clone() ServiceView {
	out := ServiceView{Service: v.Service.Clone()}
	if v.MessagesMap != nil {
		out.MessagesMap = make(map[string]int, len(v.MessagesMap))
		for k, n := range v.MessagesMap {
			out.MessagesMap[k] = n
		}
	}
	return out
}
