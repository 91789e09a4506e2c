package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/raywall/dispatch-console/pkg/metrics"
	"github.com/raywall/dispatch-console/pkg/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRedis struct {
	mock.Mock
}

func (m *MockRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	args := m.Called(key)
	return redis.NewStringResult(args.String(0), args.Error(1))
}

func (m *MockRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	args := m.Called(key, value, expiration)
	return redis.NewStatusResult("OK", args.Error(0))
}

func (m *MockRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	args := m.Called(keys)
	return redis.NewIntResult(1, args.Error(0))
}

type MockMetrics struct {
	mock.Mock
}

func (m *MockMetrics) Count(name string, value float64, tags []string) error {
	m.Called(name)
	return nil
}
func (m *MockMetrics) Gauge(name string, value float64, tags []string) error     { return nil }
func (m *MockMetrics) Histogram(name string, value float64, tags []string) error { return nil }

// countingGateway conta as chamadas ao backend.
type countingGateway struct {
	*MemoryGateway
	gets int
}

func (c *countingGateway) GetServiceView(ctx context.Context, id string) (*model.ServiceView, error) {
	c.gets++
	return c.MemoryGateway.GetServiceView(ctx, id)
}

func TestCachedGateway_GetServiceView(t *testing.T) {
	ctx := context.Background()

	t.Run("Hit não chama o backend", func(t *testing.T) {
		raw, _ := json.Marshal(beerView())
		rdb, m := new(MockRedis), new(MockMetrics)
		rdb.On("Get", "svc:beer-api").Return(string(raw), nil)
		m.On("Count", metrics.CacheHit)

		backend := &countingGateway{MemoryGateway: NewMemoryGateway()}
		gw := NewCachedGateway(backend, rdb, time.Minute, "svc:", m, zerolog.Nop())

		view, err := gw.GetServiceView(ctx, "beer-api")
		require.NoError(t, err)
		assert.Equal(t, "beer-api", view.Service.ID)
		assert.Zero(t, backend.gets)
		m.AssertExpectations(t)
	})

	t.Run("Miss consulta o backend e grava", func(t *testing.T) {
		rdb, m := new(MockRedis), new(MockMetrics)
		rdb.On("Get", "svc:beer-api").Return("", redis.Nil)
		rdb.On("Set", "svc:beer-api", mock.Anything, time.Minute).Return(nil)
		m.On("Count", metrics.CacheMiss)

		backend := &countingGateway{MemoryGateway: NewMemoryGateway(beerView())}
		gw := NewCachedGateway(backend, rdb, time.Minute, "svc:", m, zerolog.Nop())

		view, err := gw.GetServiceView(ctx, "beer-api")
		require.NoError(t, err)
		assert.Equal(t, beerView(), *view)
		assert.Equal(t, 1, backend.gets)
		rdb.AssertExpectations(t)
	})

	t.Run("Redis fora do ar cai para o backend", func(t *testing.T) {
		rdb, m := new(MockRedis), new(MockMetrics)
		rdb.On("Get", mock.Anything).Return("", errors.New("dial tcp: refused"))
		rdb.On("Set", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("dial tcp: refused"))
		m.On("Count", metrics.CacheMiss)

		gw := NewCachedGateway(NewMemoryGateway(beerView()), rdb, time.Minute, "svc:", m, zerolog.Nop())
		_, err := gw.GetServiceView(ctx, "beer-api")
		assert.NoError(t, err)
	})

	t.Run("Backend sem o serviço", func(t *testing.T) {
		rdb, m := new(MockRedis), new(MockMetrics)
		rdb.On("Get", mock.Anything).Return("", redis.Nil)
		m.On("Count", metrics.CacheMiss)

		gw := NewCachedGateway(NewMemoryGateway(), rdb, time.Minute, "svc:", m, zerolog.Nop())
		_, err := gw.GetServiceView(ctx, "beer-api")
		assert.ErrorIs(t, err, ErrServiceNotFound)
		rdb.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCachedGateway_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("Sucesso invalida a entrada", func(t *testing.T) {
		rdb := new(MockRedis)
		rdb.On("Del", []string{"svc:beer-api"}).Return(nil)

		gw := NewCachedGateway(NewMemoryGateway(beerView()), rdb, time.Minute, "svc:", &MockMetrics{}, zerolog.Nop())
		require.NoError(t, gw.UpdateOperationProperties(ctx, beerView().Service, "getBeer", newProps()))
		rdb.AssertExpectations(t)
	})

	t.Run("Falha não invalida", func(t *testing.T) {
		rdb := new(MockRedis)
		gw := NewCachedGateway(NewMemoryGateway(), rdb, time.Minute, "svc:", &MockMetrics{}, zerolog.Nop())

		err := gw.UpdateOperationProperties(ctx, beerView().Service, "getBeer", newProps())
		assert.ErrorIs(t, err, ErrServiceNotFound)
		rdb.AssertNotCalled(t, "Del", mock.Anything)
	})

	t.Run("Invalidate", func(t *testing.T) {
		rdb := new(MockRedis)
		rdb.On("Del", []string{"svc:x"}).Return(nil)

		var inv Invalidator = NewCachedGateway(NewMemoryGateway(), rdb, time.Minute, "svc:", &MockMetrics{}, zerolog.Nop())
		assert.NoError(t, inv.Invalidate(ctx, "x"))
	})
}
