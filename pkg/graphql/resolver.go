package graphql

import (
	"context"

	"github.com/graphql-go/graphql"
	"github.com/raywall/dispatch-console/pkg/dispatch"
	"github.com/raywall/dispatch-console/pkg/gateway"
	"github.com/raywall/dispatch-console/pkg/model"
	"github.com/raywall/dispatch-console/pkg/notify"
	"github.com/raywall/dispatch-console/pkg/override"
)

type resolver struct {
	directory     gateway.Directory
	center        *notify.Center
	newController func() *override.Controller
}

func contextOf(p graphql.ResolveParams) context.Context {
	if p.Context == nil {
		return context.Background()
	}
	return p.Context
}

// fetchService busca a view em uma goroutine e devolve um thunk, permitindo que o
// executor resolva campos irmãos em paralelo.
func (r *resolver) fetchService(p graphql.ResolveParams, id string, pick func(*model.ServiceView) interface{}) (interface{}, error) {
	type result struct {
		val interface{}
		err error
	}
	ch := make(chan result, 1)

	go func(ctx context.Context) {
		view, err := r.directory.GetServiceView(ctx, id)
		if err != nil {
			ch <- result{err: err}
			return
		}
		ch <- result{val: pick(view)}
	}(contextOf(p))

	return func() (interface{}, error) {
		res := <-ch
		return res.val, res.err
	}, nil
}

func (r *resolver) service(p graphql.ResolveParams) (interface{}, error) {
	id, _ := p.Args["id"].(string)
	return r.fetchService(p, id, func(v *model.ServiceView) interface{} {
		return v.Service
	})
}

func (r *resolver) operation(p graphql.ResolveParams) (interface{}, error) {
	id, _ := p.Args["serviceId"].(string)
	name, _ := p.Args["name"].(string)
	return r.fetchService(p, id, func(v *model.ServiceView) interface{} {
		if op, ok := v.Service.FindOperation(name); ok {
			return op
		}
		return nil
	})
}

func (r *resolver) examples(p graphql.ResolveParams) (interface{}, error) {
	var out []map[string]interface{}
	for _, op := range dispatch.Operators() {
		text, _ := dispatch.Example(op)
		out = append(out, map[string]interface{}{"operator": op, "rule": text})
	}
	return out, nil
}

func (r *resolver) dispatchers(p graphql.ResolveParams) (interface{}, error) {
	return dispatch.Dispatchers(), nil
}

func (r *resolver) notifications(p graphql.ResolveParams) (interface{}, error) {
	return r.center.Notifications(), nil
}

func (r *resolver) dismissNotification(p graphql.ResolveParams) (interface{}, error) {
	id, _ := p.Args["id"].(string)
	return r.center.RemoveByID(id), nil
}

// updateOperationProperties percorre o mesmo fluxo da página: Initialize, edição do
// rascunho e Save. Erros de Save vão no resultado; erros de Initialize são erros GraphQL.
func (r *resolver) updateOperationProperties(p graphql.ResolveParams) (interface{}, error) {
	ctx := contextOf(p)
	serviceID, _ := p.Args["serviceId"].(string)
	name, _ := p.Args["name"].(string)

	ctrl := r.newController()
	if err := ctrl.Initialize(ctx, serviceID, name); err != nil {
		return nil, err
	}

	var patch model.PropertiesPatch
	if v, ok := p.Args["defaultDelay"].(int); ok {
		d := int64(v)
		patch.DefaultDelay = &d
	}
	if v, ok := p.Args["dispatcher"].(string); ok {
		patch.Dispatcher = &v
	}
	if v, ok := p.Args["dispatcherRules"].(string); ok {
		patch.DispatcherRules = &v
	}
	if err := ctrl.EditDraft(patch); err != nil {
		return nil, err
	}

	result := map[string]interface{}{"ok": true}
	if err := ctrl.Save(ctx); err != nil {
		result["ok"] = false
		result["error"] = err.Error()
	}
	if draft := ctrl.State().Draft; draft != nil {
		result["properties"] = *draft
	}
	return result, nil
}
