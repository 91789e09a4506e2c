package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/raywall/dispatch-console/pkg/metrics"
	"github.com/raywall/dispatch-console/pkg/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisClient é o subconjunto de *redis.Client usado pelo cache (permite Mocking).
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// CachedGateway guarda ServiceViews em Redis. Toda escrita remove a entrada do serviço.
type CachedGateway struct {
	next    Gateway
	client  RedisClient
	ttl     time.Duration
	prefix  string
	metrics metrics.Provider
	logger  zerolog.Logger
}

func NewCachedGateway(next Gateway, client RedisClient, ttl time.Duration, prefix string, m metrics.Provider, logger zerolog.Logger) *CachedGateway {
	return &CachedGateway{
		next:    next,
		client:  client,
		ttl:     ttl,
		prefix:  prefix,
		metrics: m,
		logger:  logger.With().Str("component", "cache").Logger(),
	}
}

func (c *CachedGateway) key(serviceID string) string {
	return c.prefix + serviceID
}

// GetServiceView tenta o Redis primeiro. Falhas do Redis caem para o backend.
func (c *CachedGateway) GetServiceView(ctx context.Context, serviceID string) (*model.ServiceView, error) {
	key := c.key(serviceID)

	raw, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		var view model.ServiceView
		if jsonErr := json.Unmarshal([]byte(raw), &view); jsonErr == nil {
			c.metrics.Count(metrics.CacheHit, 1, nil)
			return &view, nil
		}
		c.logger.Warn().Str("key", key).Msg("Entrada de cache corrompida, ignorando")
	case errors.Is(err, redis.Nil):
	default:
		c.logger.Warn().Err(err).Str("key", key).Msg("Falha ao ler cache")
	}
	c.metrics.Count(metrics.CacheMiss, 1, nil)

	view, err := c.next.GetServiceView(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(view); err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("Falha ao gravar cache")
		}
	}
	return view, nil
}

func (c *CachedGateway) UpdateOperationProperties(ctx context.Context, svc model.Service, operationName string, props model.OperationProperties) error {
	if err := c.next.UpdateOperationProperties(ctx, svc, operationName, props); err != nil {
		return err
	}
	if err := c.Invalidate(ctx, svc.ID); err != nil {
		c.logger.Warn().Err(err).Str("service", svc.ID).Msg("Falha ao invalidar cache após update")
	}
	return nil
}

// Invalidate remove a ServiceView do cache.
func (c *CachedGateway) Invalidate(ctx context.Context, serviceID string) error {
	return c.client.Del(ctx, c.key(serviceID)).Err()
}
