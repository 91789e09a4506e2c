package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/raywall/dispatch-console/pkg/config"
	"github.com/raywall/dispatch-console/pkg/gateway"
	"github.com/raywall/dispatch-console/pkg/model"
	"github.com/raywall/dispatch-console/pkg/secrets"
)

// seeder é implementado pelos backends que aceitam carga direta de ServiceViews.
type seeder interface {
	PutServiceView(ctx context.Context, view model.ServiceView) error
}

// Report é a saída do comando validate.
type Report struct {
	Valid   bool     `json:"valid"`
	Console string   `json:"console,omitempty"`
	Runtime string   `json:"runtime,omitempty"`
	Backend string   `json:"backend,omitempty"`
	Guards  int      `json:"guards"`
	Cache   bool     `json:"cache"`
	Errors  []string `json:"errors,omitempty"`
}

// Injetável para testes
var openSeeder = func(ctx context.Context, cfg config.BackendConf) (seeder, func(), error) {
	switch cfg.Type {
	case gateway.DriverPostgres, gateway.DriverSQLite:
		g, err := gateway.OpenSQL(ctx, cfg.Type, cfg.SQL.DSN)
		if err != nil {
			return nil, nil, err
		}
		return g, func() { g.Close() }, nil
	case "dynamodb":
		awsCfg, err := secrets.GetAWSConfig(ctx, cfg.DynamoDB.Region)
		if err != nil {
			return nil, nil, fmt.Errorf("falha ao carregar credenciais AWS: %w", err)
		}
		return gateway.NewDynamoGateway(dynamodb.NewFromConfig(awsCfg), cfg.DynamoDB.Table), func() {}, nil
	}
	return nil, nil, fmt.Errorf("backend '%s' não aceita seed", cfg.Type)
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

// run devolve o código de saída do processo.
func run(args []string, out io.Writer) int {
	if len(args) < 1 {
		fmt.Fprintln(out, "Comandos esperados: validate, seed")
		return 1
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(out)
		file := fs.String("file", "", "Caminho do arquivo YAML ou S3/DynamoDB URI")
		if err := fs.Parse(args[1:]); err != nil {
			return 1
		}
		if *file == "" {
			fmt.Fprintln(out, "Erro: flag -file é obrigatória")
			return 1
		}
		return runValidate(context.Background(), *file, os.Getenv("OUTPUT_FORMAT") == "json", out)

	case "seed":
		fs := flag.NewFlagSet("seed", flag.ContinueOnError)
		fs.SetOutput(out)
		file := fs.String("file", "", "Configuração do console (define o backend de destino)")
		fixture := fs.String("fixture", "", "Fixture YAML/JSON com os serviços")
		if err := fs.Parse(args[1:]); err != nil {
			return 1
		}
		if *file == "" || *fixture == "" {
			fmt.Fprintln(out, "Erro: flags -file e -fixture são obrigatórias")
			return 1
		}
		if err := runSeed(context.Background(), *file, *fixture, out); err != nil {
			fmt.Fprintf(out, "Erro no seed: %v\n", err)
			return 1
		}
		return 0
	}

	fmt.Fprintln(out, "Comando desconhecido")
	return 1
}

func runValidate(ctx context.Context, path string, asJSON bool, out io.Writer) int {
	report := Report{}
	cfg, err := config.Load(ctx, path)
	if err != nil {
		report.Errors = append(report.Errors, err.Error())
	} else {
		report = Report{
			Valid:   true,
			Console: cfg.Console.Name,
			Runtime: cfg.Console.Runtime,
			Backend: cfg.Backend.Type,
			Guards:  len(cfg.Guards),
			Cache:   cfg.Cache.Redis.Enabled,
		}
	}

	if asJSON {
		data, _ := json.Marshal(report)
		fmt.Fprintln(out, string(data))
	} else if report.Valid {
		fmt.Fprintf(out, "Configuração válida: console=%s runtime=%s backend=%s guards=%d\n",
			report.Console, report.Runtime, report.Backend, report.Guards)
	} else {
		fmt.Fprintln(out, "A configuração contém erros:")
		for _, e := range report.Errors {
			fmt.Fprintf(out, " - %s\n", e)
		}
	}

	if !report.Valid {
		return 1
	}
	return 0
}

func runSeed(ctx context.Context, configPath, fixturePath string, out io.Writer) error {
	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return err
	}

	store, err := gateway.LoadFixture(fixturePath)
	if err != nil {
		return err
	}

	target, closeFn, err := openSeeder(ctx, cfg.Backend)
	if err != nil {
		return err
	}
	defer closeFn()

	for _, svc := range store.List() {
		view, err := store.GetServiceView(ctx, svc.ID)
		if err != nil {
			return err
		}
		if err := target.PutServiceView(ctx, *view); err != nil {
			return fmt.Errorf("serviço '%s': %w", svc.ID, err)
		}
		fmt.Fprintf(out, "Serviço gravado: %s (%s %s, %d operações)\n", svc.ID, svc.Name, svc.Version, len(svc.Operations))
	}
	return nil
}
