package graphql

import (
	"context"
	"testing"

	"github.com/raywall/dispatch-console/pkg/gateway"
	"github.com/raywall/dispatch-console/pkg/metrics"
	"github.com/raywall/dispatch-console/pkg/model"
	"github.com/raywall/dispatch-console/pkg/notify"
	"github.com/raywall/dispatch-console/pkg/override"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T) (*Engine, *gateway.MemoryGateway, *notify.Center) {
	t.Helper()
	gw := gateway.NewMemoryGateway(model.ServiceView{
		Service: model.Service{
			ID:      "beer-api",
			Name:    "Beer Catalog API",
			Version: "0.9",
			Type:    model.ServiceTypeREST,
			Operations: []model.Operation{
				{Name: "getBeer", DefaultDelay: 100, Dispatcher: "SCRIPT", DispatcherRules: "{}"},
			},
		},
	})
	center := notify.NewCenter(zerolog.Nop())
	engine, err := NewEngine(gw, center, func() *override.Controller {
		return override.NewController(gw, gw, center, nil, metrics.Multi{}, zerolog.Nop())
	})
	require.NoError(t, err)
	return engine, gw, center
}

func TestEngine_Schema(t *testing.T) {
	engine, _, _ := newEngine(t)

	assert.NotNil(t, engine.Schema.Type("Service"))
	assert.NotNil(t, engine.Schema.QueryType().Fields()["operation"])
	assert.NotNil(t, engine.Schema.MutationType().Fields()["updateOperationProperties"])

	res := engine.Execute(context.Background(), "{ __schema { types { name } } }", nil)
	assert.Empty(t, res.Errors)
}

func TestEngine_Queries(t *testing.T) {
	engine, _, _ := newEngine(t)
	ctx := context.Background()

	t.Run("service", func(t *testing.T) {
		res := engine.Execute(ctx, `{ service(id: "beer-api") { id name type operations { name defaultDelay dispatcher } } }`, nil)
		require.Empty(t, res.Errors)

		svc := res.Data.(map[string]interface{})["service"].(map[string]interface{})
		assert.Equal(t, "beer-api", svc["id"])
		assert.Equal(t, "REST", svc["type"])
		ops := svc["operations"].([]interface{})
		require.Len(t, ops, 1)
		assert.Equal(t, 100, ops[0].(map[string]interface{})["defaultDelay"])
	})

	t.Run("operation", func(t *testing.T) {
		res := engine.Execute(ctx, `query($s: ID!, $n: String!) { operation(serviceId: $s, name: $n) { dispatcher dispatcherRules } }`,
			map[string]interface{}{"s": "beer-api", "n": "getBeer"})
		require.Empty(t, res.Errors)
		op := res.Data.(map[string]interface{})["operation"].(map[string]interface{})
		assert.Equal(t, "SCRIPT", op["dispatcher"])
	})

	t.Run("operation inexistente é null", func(t *testing.T) {
		res := engine.Execute(ctx, `{ operation(serviceId: "beer-api", name: "nope") { name } }`, nil)
		require.Empty(t, res.Errors)
		assert.Nil(t, res.Data.(map[string]interface{})["operation"])
	})

	t.Run("service inexistente gera erro", func(t *testing.T) {
		res := engine.Execute(ctx, `{ service(id: "nope") { id } }`, nil)
		require.NotEmpty(t, res.Errors)
		assert.Contains(t, res.Errors[0].Message, "service not found")
	})

	t.Run("catálogos", func(t *testing.T) {
		res := engine.Execute(ctx, `{ examples { operator rule } dispatchers }`, nil)
		require.Empty(t, res.Errors)
		data := res.Data.(map[string]interface{})
		assert.Len(t, data["examples"], 5)
		assert.NotEmpty(t, data["dispatchers"])
	})
}

func TestEngine_UpdateOperationProperties(t *testing.T) {
	engine, gw, center := newEngine(t)
	ctx := context.Background()

	res := engine.Execute(ctx, `mutation {
		updateOperationProperties(serviceId: "beer-api", name: "getBeer", defaultDelay: 250, dispatcherRules: "x") {
			ok error properties { defaultDelay dispatcher dispatcherRules }
		}
	}`, nil)
	require.Empty(t, res.Errors)

	out := res.Data.(map[string]interface{})["updateOperationProperties"].(map[string]interface{})
	assert.Equal(t, true, out["ok"])
	props := out["properties"].(map[string]interface{})
	assert.Equal(t, 250, props["defaultDelay"])
	assert.Equal(t, "SCRIPT", props["dispatcher"])

	view, _ := gw.GetServiceView(ctx, "beer-api")
	op, _ := view.Service.FindOperation("getBeer")
	assert.Equal(t, model.OperationProperties{DefaultDelay: 250, Dispatcher: "SCRIPT", DispatcherRules: "x"}, op.Properties())

	notes := center.Notifications()
	require.Len(t, notes, 1)
	assert.Equal(t, notify.TypeSuccess, notes[0].Type)

	t.Run("dismissNotification", func(t *testing.T) {
		res := engine.Execute(ctx, `mutation($id: ID!) { dismissNotification(id: $id) }`, map[string]interface{}{"id": notes[0].ID})
		require.Empty(t, res.Errors)
		assert.Equal(t, true, res.Data.(map[string]interface{})["dismissNotification"])
		assert.Empty(t, center.Notifications())
	})

	t.Run("operação inexistente", func(t *testing.T) {
		res := engine.Execute(ctx, `mutation { updateOperationProperties(serviceId: "beer-api", name: "nope") { ok } }`, nil)
		require.NotEmpty(t, res.Errors)
	})
}
