package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/raywall/dispatch-console/pkg/auth"
	"github.com/raywall/dispatch-console/pkg/config"
	"github.com/raywall/dispatch-console/pkg/metrics"
	"github.com/raywall/dispatch-console/pkg/secrets"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// New monta o backend configurado e, se habilitado, o cache Redis na frente dele.
// A função retornada libera conexões e para a renovação de token.
func New(ctx context.Context, cfg *config.ConsoleConfig, m metrics.Provider, logger zerolog.Logger) (Gateway, func(), error) {
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	backend, err := newBackend(ctx, cfg.Backend, logger, &closers)
	if err != nil {
		closeAll()
		return nil, nil, err
	}
	logger.Info().Str("backend", cfg.Backend.Type).Msg("Backend de serviços configurado")

	redisCfg := cfg.Cache.Redis
	if !redisCfg.Enabled {
		return backend, closeAll, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     redisCfg.Addr,
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
	})
	closers = append(closers, func() { client.Close() })
	logger.Info().Str("addr", redisCfg.Addr).Dur("ttl", redisCfg.GetTTL()).Msg("Cache Redis habilitado")

	return NewCachedGateway(backend, client, redisCfg.GetTTL(), redisCfg.Prefix, m, logger), closeAll, nil
}

func newBackend(ctx context.Context, cfg config.BackendConf, logger zerolog.Logger, closers *[]func()) (Gateway, error) {
	switch cfg.Type {
	case "http":
		client := &http.Client{Timeout: cfg.HTTP.GetTimeout()}
		if cfg.HTTP.Auth != nil {
			mgr := auth.NewOAuth2Manager(*cfg.HTTP.Auth, logger)
			if err := mgr.Start(ctx); err != nil {
				return nil, err
			}
			*closers = append(*closers, mgr.Stop)
			client.Transport = &auth.Transport{Source: mgr}
		}
		return NewHTTPGateway(cfg.HTTP.BaseURL, client), nil

	case "dynamodb":
		awsCfg, err := secrets.GetAWSConfig(ctx, cfg.DynamoDB.Region)
		if err != nil {
			return nil, fmt.Errorf("falha ao carregar credenciais AWS: %w", err)
		}
		return NewDynamoGateway(dynamodb.NewFromConfig(awsCfg), cfg.DynamoDB.Table), nil

	case DriverPostgres, DriverSQLite:
		g, err := OpenSQL(ctx, cfg.Type, cfg.SQL.DSN)
		if err != nil {
			return nil, err
		}
		*closers = append(*closers, func() { g.Close() })
		return g, nil

	case "memory":
		if cfg.Memory.Fixture == "" {
			return NewMemoryGateway(), nil
		}
		return LoadFixture(cfg.Memory.Fixture)
	}
	return nil, fmt.Errorf("backend desconhecido: %s", cfg.Type)
}
