// Package graphql expõe os serviços mockados e a edição de dispatch via GraphQL.
package graphql

import (
	"context"

	"github.com/graphql-go/graphql"
	"github.com/raywall/dispatch-console/pkg/gateway"
	"github.com/raywall/dispatch-console/pkg/notify"
	"github.com/raywall/dispatch-console/pkg/override"
)

type Engine struct {
	Schema graphql.Schema
}

// NewEngine monta o schema. newController cria um controller descartável por mutation.
func NewEngine(dir gateway.Directory, center *notify.Center, newController func() *override.Controller) (*Engine, error) {
	schema, err := buildSchema(&resolver{
		directory:     dir,
		center:        center,
		newController: newController,
	})
	if err != nil {
		return nil, err
	}
	return &Engine{Schema: schema}, nil
}

func (e *Engine) Execute(ctx context.Context, query string, variables map[string]interface{}) *graphql.Result {
	return graphql.Do(graphql.Params{
		Schema:         e.Schema,
		RequestString:  query,
		VariableValues: variables,
		Context:        ctx,
	})
}
