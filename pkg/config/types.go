package config

import "time"

// ConsoleConfig representa a estrutura raiz do arquivo YAML do console.
type ConsoleConfig struct {
	Version string         `yaml:"version" validate:"required"`
	Console ConsoleDetails `yaml:"console" validate:"required"`
	Backend BackendConf    `yaml:"backend" validate:"required"`
	Cache   CacheConf      `yaml:"cache"`
	Guards  []GuardConf    `yaml:"guards" validate:"dive"`
	GraphQL GraphQLConf    `yaml:"graphql"`
}

// ConsoleDetails contém os metadados e configurações de runtime do console.
type ConsoleDetails struct {
	Name    string      `yaml:"name" validate:"required,hostname_rfc1123"`
	Runtime string      `yaml:"runtime" validate:"required,oneof=local lambda ecs eks ec2"`
	Port    int         `yaml:"port" validate:"required_if=Runtime local"`
	Timeout string      `yaml:"timeout" validate:"required"` // Ex: "500ms", "2s"
	Logging LoggingConf `yaml:"logging"`
	Metrics MetricsConf `yaml:"metrics"`
}

// BackendConf escolhe onde os serviços mockados são lidos e atualizados.
type BackendConf struct {
	Type     string        `yaml:"type" validate:"required,oneof=http dynamodb postgres sqlite memory"`
	HTTP     HTTPBackend   `yaml:"http"`
	DynamoDB DynamoBackend `yaml:"dynamodb"`
	SQL      SQLBackend    `yaml:"sql"`
	Memory   MemoryBackend `yaml:"memory"`
}

// HTTPBackend aponta para a API REST do servidor de mocks.
type HTTPBackend struct {
	BaseURL string    `yaml:"base_url" env:"CONSOLE_BACKEND_URL" validate:"omitempty,url"`
	Timeout string    `yaml:"timeout"`
	Auth    *AuthConf `yaml:"auth"`
}

// AuthConf habilita o fluxo OAuth2 client-credentials contra o backend.
type AuthConf struct {
	TokenURL     string `yaml:"token_url" validate:"required,url"`
	ClientID     string `yaml:"client_id" validate:"required"`
	ClientSecret string `yaml:"client_secret" validate:"required"`
	Scope        string `yaml:"scope"`
}

type DynamoBackend struct {
	Table  string `yaml:"table" env:"CONSOLE_DYNAMODB_TABLE"`
	Region string `yaml:"region" env:"AWS_REGION"`
}

type SQLBackend struct {
	DSN string `yaml:"dsn" env:"CONSOLE_DB_DSN"`
}

type MemoryBackend struct {
	Fixture string `yaml:"fixture"`
}

// CacheConf configura o cache de ServiceViews e sua invalidação.
type CacheConf struct {
	Redis           RedisConf `yaml:"redis"`
	InvalidationSQS string    `yaml:"invalidation_sqs" env:"CONSOLE_INVALIDATION_QUEUE"`
}

type RedisConf struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr" validate:"required_if=Enabled true"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	TTL      string `yaml:"ttl"`
	Prefix   string `yaml:"prefix"`
}

// GuardConf é uma regra CEL avaliada antes de salvar o rascunho.
type GuardConf struct {
	ID   string `yaml:"id" validate:"required"`
	Expr string `yaml:"expr" validate:"required"`
	Msg  string `yaml:"msg"`
}

type GraphQLConf struct {
	Enabled bool   `yaml:"enabled"`
	Route   string `yaml:"route" validate:"omitempty,startswith=/"`
}

type LoggingConf struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format  string `yaml:"format" validate:"omitempty,oneof=json console"`
}

type MetricsConf struct {
	Datadog    DatadogConf    `yaml:"datadog"`
	Prometheus PrometheusConf `yaml:"prometheus"`
}

type DatadogConf struct {
	Enabled   bool   `yaml:"enabled" env:"DD_ENABLED"`
	Addr      string `yaml:"addr" env:"DD_AGENT_HOST" validate:"required_if=Enabled true"`
	Namespace string `yaml:"namespace"`
}

type PrometheusConf struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
	Route     string `yaml:"route"`
}

// GetTimeout converte o timeout do console, com 30s como padrão.
func (c ConsoleDetails) GetTimeout() time.Duration {
	return parseDuration(c.Timeout, 30*time.Second)
}

// GetTimeout converte o timeout do backend HTTP, com 10s como padrão.
func (h HTTPBackend) GetTimeout() time.Duration {
	return parseDuration(h.Timeout, 10*time.Second)
}

// GetTTL converte o TTL do cache, com 5 minutos como padrão.
func (r RedisConf) GetTTL() time.Duration {
	return parseDuration(r.TTL, 5*time.Minute)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
