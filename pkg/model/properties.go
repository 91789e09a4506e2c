package model

// OperationProperties são os campos mutáveis de uma operação: o rascunho editado no
// console e o payload enviado ao backend.
type OperationProperties struct {
	DefaultDelay    int64  `json:"defaultDelay"`
	Dispatcher      string `json:"dispatcher"`
	DispatcherRules string `json:"dispatcherRules"`
}

// PropertiesPatch é uma edição parcial do rascunho. Campos nil não são alterados.
type PropertiesPatch struct {
	DefaultDelay    *int64  `json:"defaultDelay,omitempty"`
	Dispatcher      *string `json:"dispatcher,omitempty"`
	DispatcherRules *string `json:"dispatcherRules,omitempty"`
}

// Apply devolve uma cópia de p com o patch aplicado.
func (patch PropertiesPatch) Apply(p OperationProperties) OperationProperties {
	if patch.DefaultDelay != nil {
		p.DefaultDelay = *patch.DefaultDelay
	}
	if patch.Dispatcher != nil {
		p.Dispatcher = *patch.Dispatcher
	}
	if patch.DispatcherRules != nil {
		p.DispatcherRules = *patch.DispatcherRules
	}
	return p
}

// AsMap expõe as propriedades com os nomes de campo JSON (usado pelo CEL e pelo GraphQL).
func (p OperationProperties) AsMap() map[string]interface{} {
	return map[string]interface{}{
		"defaultDelay":    p.DefaultDelay,
		"dispatcher":      p.Dispatcher,
		"dispatcherRules": p.DispatcherRules,
	}
}
