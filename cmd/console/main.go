package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/raywall/dispatch-console/pkg/config"
	"github.com/raywall/dispatch-console/pkg/gateway"
	"github.com/raywall/dispatch-console/pkg/graphql"
	"github.com/raywall/dispatch-console/pkg/logger"
	"github.com/raywall/dispatch-console/pkg/notify"
	"github.com/raywall/dispatch-console/pkg/observability"
	"github.com/raywall/dispatch-console/pkg/override"
	"github.com/raywall/dispatch-console/pkg/rules"
	"github.com/raywall/dispatch-console/pkg/secrets"
	"github.com/raywall/dispatch-console/pkg/transport"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	sessionIdle     = 30 * time.Minute
	sessionSweepInt = time.Minute
)

var (
	configPath string
	// Variáveis injetáveis para mocking
	serverStarter = transport.StartHTTPServer
	lambdaStarter = func(handler interface{}) { lambda.Start(handler) }
	sqsStarter    = func(ctx context.Context, cfg *config.ConsoleConfig, inv gateway.Invalidator, app *App) error {
		awsCfg, err := secrets.GetAWSConfig(ctx, os.Getenv("AWS_REGION"))
		if err != nil {
			return fmt.Errorf("falha ao carregar credenciais AWS: %w", err)
		}
		s := transport.NewSQSInvalidator(sqs.NewFromConfig(awsCfg), cfg.Cache.InvalidationSQS, inv, app.Metrics.Provider, app.Logger)
		go s.Start(ctx)
		return nil
	}
)

func init() {
	configPath = os.Getenv("CONFIG_FILE_PATH")
}

func main() {
	if configPath == "" {
		log.Fatal().Msg("FATAL: CONFIG_FILE_PATH não definido")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, configPath); err != nil {
		log.Fatal().Err(err).Msg("FATAL")
	}
}

// App agrupa as dependências montadas no boot.
type App struct {
	Config   *config.ConsoleConfig
	Logger   zerolog.Logger
	Metrics  *observability.Setup
	Gateway  gateway.Gateway
	Center   *notify.Center
	Sessions *override.Sessions
	Handler  http.Handler

	closeFn func()
}

// Close libera conexões do gateway e para a renovação de token.
func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

// build monta o grafo de dependências a partir da configuração.
func build(ctx context.Context, cfg *config.ConsoleConfig) (*App, error) {
	lg := logger.Configure(cfg.Console.Logging, cfg.Console.Name)
	log.Logger = lg

	obs, err := observability.SetupMetrics(cfg.Console.Metrics)
	if err != nil {
		return nil, err
	}

	gw, closeFn, err := gateway.New(ctx, cfg, obs.Provider, lg)
	if err != nil {
		return nil, err
	}

	rm, err := rules.NewRuleManager()
	if err != nil {
		closeFn()
		return nil, err
	}
	guards, err := rules.NewGuardSet(rm, cfg.RuleGuards())
	if err != nil {
		closeFn()
		return nil, err
	}

	center := notify.NewCenter(lg)
	newController := func() *override.Controller {
		return override.NewController(gw, gw, center, guards, obs.Provider, lg)
	}
	sessions := override.NewSessions(newController, obs.Provider, lg)

	opts := transport.RouterOptions{}
	if cfg.GraphQL.Enabled {
		engine, err := graphql.NewEngine(gw, center, newController)
		if err != nil {
			closeFn()
			return nil, fmt.Errorf("falha ao montar schema GraphQL: %w", err)
		}
		opts.GraphQL, opts.GraphQLRoute = engine, cfg.GraphQL.Route
	}
	if obs.Registry != nil {
		opts.Metrics = promhttp.HandlerFor(obs.Registry, promhttp.HandlerOpts{})
		opts.MetricsRoute = cfg.Console.Metrics.Prometheus.Route
	}

	api := transport.NewAPI(sessions, center, cfg.Console.GetTimeout())
	return &App{
		Config:   cfg,
		Logger:   lg,
		Metrics:  obs,
		Gateway:  gw,
		Center:   center,
		Sessions: sessions,
		Handler:  transport.NewRouter(api, lg, obs.Provider, opts),
		closeFn:  closeFn,
	}, nil
}

// run contém a lógica principal testável
func run(ctx context.Context, cfgPath string) error {
	cfg, err := config.Load(ctx, cfgPath)
	if err != nil {
		return err
	}

	app, err := build(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go app.Sessions.RunExpiry(ctx, sessionSweepInt, sessionIdle)

	if cfg.Cache.InvalidationSQS != "" {
		inv, ok := app.Gateway.(gateway.Invalidator)
		if !ok {
			return fmt.Errorf("invalidação via SQS exige cache Redis")
		}
		if err := sqsStarter(ctx, cfg, inv, app); err != nil {
			return err
		}
	}

	switch cfg.Console.Runtime {
	case "local", "ec2", "ecs", "eks":
		return serverStarter(ctx, cfg.Console.Port, app.Handler, app.Logger)
	case "lambda":
		lambdaStarter(transport.NewLambdaHandler(app.Handler).Handle)
		return nil
	}
	return fmt.Errorf("runtime desconhecido: %s", cfg.Console.Runtime)
}
