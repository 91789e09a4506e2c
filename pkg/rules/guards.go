package rules

import (
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/raywall/dispatch-console/pkg/model"
)

// Guard é uma regra avaliada antes de enviar o rascunho ao backend.
type Guard struct {
	ID      string
	Expr    string
	Message string
}

// GuardError indica que uma guarda reprovou o rascunho.
type GuardError struct {
	ID      string
	Message string
}

func (e *GuardError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("guard '%s' rejected the draft", e.ID)
	}
	return e.Message
}

type compiledGuard struct {
	Guard
	prg cel.Program
}

// GuardSet é um conjunto de guardas já compiladas, avaliadas na ordem de declaração.
type GuardSet struct {
	guards []compiledGuard
}

// NewGuardSet compila todas as guardas e falha na primeira expressão inválida.
func NewGuardSet(rm *RuleManager, guards []Guard) (*GuardSet, error) {
	set := &GuardSet{}
	for _, g := range guards {
		prg, err := rm.CompileProgram(g.Expr)
		if err != nil {
			return nil, fmt.Errorf("guard '%s': %w", g.ID, err)
		}
		set.guards = append(set.guards, compiledGuard{Guard: g, prg: prg})
	}
	return set, nil
}

// Len devolve o número de guardas do conjunto.
func (s *GuardSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.guards)
}

// Check avalia as guardas contra o rascunho. Devolve *GuardError na primeira reprovação.
// Um conjunto nil aprova tudo.
func (s *GuardSet) Check(svc model.Service, operation string, current, draft model.OperationProperties) error {
	if s == nil {
		return nil
	}

	ctx := map[string]interface{}{
		"draft":   draft.AsMap(),
		"current": current.AsMap(),
		"service": map[string]interface{}{
			"id":      svc.ID,
			"name":    svc.Name,
			"version": svc.Version,
			"type":    string(svc.Type),
		},
		"operation": operation,
	}

	for _, g := range s.guards {
		ok, err := evalBool(g.prg, ctx)
		if err != nil {
			return fmt.Errorf("guard '%s': %w", g.ID, err)
		}
		if !ok {
			return &GuardError{ID: g.ID, Message: g.Message}
		}
	}
	return nil
}
