package config

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/raywall/dispatch-console/pkg/config/injector"
	"github.com/raywall/dispatch-console/pkg/secrets"
	"gopkg.in/yaml.v2"
)

// DefaultGraphQLRoute é usada quando graphql.enabled=true sem rota explícita.
const DefaultGraphQLRoute = "/graphql"

// Load é o atalho usado pelo cmd/console.
func Load(ctx context.Context, source string) (*ConsoleConfig, error) {
	return NewLoader().Load(ctx, source)
}

// --- Interfaces para Mocking ---

type S3Downloader interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type DynamoGetter interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

// Loader lê a configuração do console de arquivo local, S3 ou DynamoDB.
type Loader struct {
	validator *ConfigValidator
	injector  *injector.Injector
}

func NewLoader() *Loader {
	return &Loader{
		validator: NewValidator(),
		injector:  injector.New(),
	}
}

// WithInjector troca o injector (útil para testes com SSM/Secrets falsos).
func (l *Loader) WithInjector(inj *injector.Injector) *Loader {
	l.injector = inj
	return l
}

// Load detecta o esquema da fonte e carrega a configuração.
func (l *Loader) Load(ctx context.Context, source string) (*ConsoleConfig, error) {
	var rawData []byte
	var err error

	switch {
	case strings.HasPrefix(source, "s3://"):
		cfg, cfgErr := secrets.GetAWSConfig(ctx, os.Getenv("AWS_REGION"))
		if cfgErr != nil {
			return nil, fmt.Errorf("falha ao carregar credenciais AWS: %w", cfgErr)
		}
		rawData, err = l.loadFromS3Internal(ctx, s3.NewFromConfig(cfg), source)

	case strings.HasPrefix(source, "dynamodb://"):
		cfg, cfgErr := secrets.GetAWSConfig(ctx, os.Getenv("AWS_REGION"))
		if cfgErr != nil {
			return nil, fmt.Errorf("falha ao carregar credenciais AWS: %w", cfgErr)
		}
		rawData, err = l.loadFromDynamoDBInternal(ctx, dynamodb.NewFromConfig(cfg), source)

	default:
		rawData, err = l.loadFromFile(source)
	}

	if err != nil {
		return nil, fmt.Errorf("falha leitura config (%s): %w", source, err)
	}

	return l.Parse(ctx, rawData)
}

func (l *Loader) loadFromFile(path string) ([]byte, error) {
	return os.ReadFile(strings.TrimPrefix(path, "file://"))
}

func (l *Loader) loadFromS3Internal(ctx context.Context, client S3Downloader, uri string) ([]byte, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("URL S3 inválida: %w", err)
	}
	bucket := u.Host
	key := strings.TrimPrefix(u.Path, "/")

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	})
	if err != nil {
		return nil, err
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}

// loadFromDynamoDBInternal aceita dynamodb://tabela/chave?col=config&pk=id
func (l *Loader) loadFromDynamoDBInternal(ctx context.Context, client DynamoGetter, uri string) ([]byte, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("URL DynamoDB inválida: %w", err)
	}

	tableName := u.Host
	pkValue := strings.TrimPrefix(u.Path, "/")

	colName := u.Query().Get("col")
	if colName == "" {
		colName = "config"
	}
	pkName := u.Query().Get("pk")
	if pkName == "" {
		pkName = "id"
	}

	out, err := client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &tableName,
		Key: map[string]types.AttributeValue{
			pkName: &types.AttributeValueMemberS{Value: pkValue},
		},
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("item '%s' não encontrado na tabela '%s'", pkValue, tableName)
	}

	var itemMap map[string]interface{}
	if err := attributevalue.UnmarshalMap(out.Item, &itemMap); err != nil {
		return nil, err
	}

	content, ok := itemMap[colName].(string)
	if !ok {
		return nil, fmt.Errorf("coluna '%s' inválida ou vazia no DynamoDB", colName)
	}
	return []byte(content), nil
}

// Parse decodifica, injeta referências externas, aplica padrões e valida.
func (l *Loader) Parse(ctx context.Context, data []byte) (*ConsoleConfig, error) {
	var cfg ConsoleConfig

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("YAML malformado: %w", err)
	}

	if l.injector != nil {
		if err := l.injector.Inject(ctx, &cfg); err != nil {
			return nil, fmt.Errorf("falha na injeção de variáveis: %w", err)
		}
	}

	applyDefaults(&cfg)

	if l.validator != nil {
		if err := l.validator.Validate(&cfg); err != nil {
			return nil, fmt.Errorf("validação da configuração falhou: %w", err)
		}
	}

	return &cfg, nil
}

func applyDefaults(cfg *ConsoleConfig) {
	if cfg.GraphQL.Enabled && cfg.GraphQL.Route == "" {
		cfg.GraphQL.Route = DefaultGraphQLRoute
	}
	if cfg.Console.Metrics.Prometheus.Enabled && cfg.Console.Metrics.Prometheus.Route == "" {
		cfg.Console.Metrics.Prometheus.Route = "/metrics"
	}
	if cfg.Console.Logging.Level == "" {
		cfg.Console.Logging.Level = "info"
	}
	if cfg.Console.Logging.Format == "" {
		cfg.Console.Logging.Format = "json"
	}
	if cfg.Cache.Redis.Prefix == "" {
		cfg.Cache.Redis.Prefix = "console:svc:"
	}
}
