package gateway

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/raywall/dispatch-console/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSQLite(t *testing.T) *SQLGateway {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "console.db")
	g, err := OpenSQL(context.Background(), DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { g.Close() })
	return g
}

func TestSQLGateway_SQLite(t *testing.T) {
	ctx := context.Background()
	g := openSQLite(t)
	require.NoError(t, g.PutServiceView(ctx, beerView()))

	t.Run("Round trip", func(t *testing.T) {
		view, err := g.GetServiceView(ctx, "beer-api")
		require.NoError(t, err)

		want := beerView()
		want.Service.Operations[0].ResourcePaths = []string{}
		assert.Equal(t, want, *view)
	})

	t.Run("Update", func(t *testing.T) {
		require.NoError(t, g.UpdateOperationProperties(ctx, model.Service{ID: "beer-api"}, "getBeer", newProps()))

		view, _ := g.GetServiceView(ctx, "beer-api")
		op, _ := view.Service.FindOperation("getBeer")
		assert.Equal(t, newProps(), op.Properties())

		first, _ := view.Service.FindOperation("GET /beer")
		assert.Equal(t, "URI_PARAMS", first.Dispatcher, "outras operações não mudam")
	})

	t.Run("Put substitui operações", func(t *testing.T) {
		v := beerView()
		v.Service.ID = "short"
		v.Service.Operations = v.Service.Operations[:1]
		require.NoError(t, g.PutServiceView(ctx, v))
		require.NoError(t, g.PutServiceView(ctx, v))

		view, err := g.GetServiceView(ctx, "short")
		require.NoError(t, err)
		assert.Len(t, view.Service.Operations, 1)
	})

	t.Run("Erros", func(t *testing.T) {
		_, err := g.GetServiceView(ctx, "nope")
		assert.ErrorIs(t, err, ErrServiceNotFound)

		err = g.UpdateOperationProperties(ctx, model.Service{ID: "nope"}, "getBeer", newProps())
		assert.ErrorIs(t, err, ErrServiceNotFound)

		err = g.UpdateOperationProperties(ctx, model.Service{ID: "beer-api"}, "deleteBeer", newProps())
		assert.ErrorIs(t, err, ErrOperationNotFound)
	})
}

func TestSQLGateway_Rebind(t *testing.T) {
	pg := NewSQLGateway(nil, DriverPostgres)
	assert.Equal(t, "SELECT * FROM t WHERE a = $1 AND b = $2", pg.rebind("SELECT * FROM t WHERE a = ? AND b = ?"))

	lite := NewSQLGateway(nil, DriverSQLite)
	assert.Equal(t, "a = ?", lite.rebind("a = ?"))
}
